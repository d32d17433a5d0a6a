package subd

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/meshkit/subdiv/internal/parallel"
	"github.com/meshkit/subdiv/pkg/cage"
	"github.com/meshkit/subdiv/pkg/geom"
)

// Refine builds every stored level in dependency order: halfedge
// topology, then creases, corner UVs and vertex points. The kernels are
// also callable one at a time with the same ordering constraints.
func (s *Subd) Refine() {
	s.RefineHalfedges()
	s.RefineCreases()
	s.RefineVertexUvs()
	s.RefineVertexPoints()
}

// RefineHalfedges writes the halfedge topology of every refined level.
// It resets the packed corner UVs to zero; RefineVertexUvs runs after.
func (s *Subd) RefineHalfedges() {
	s.refineCageHalfedges()
	for d := int32(1); d < s.maxDepth; d++ {
		s.refineHalfedges(d)
	}
}

// edgeBit says which radial child edge the corner child of h runs along.
// The higher halfedge of a twin pair, or a twinless one, keeps the even
// child; its twin takes the odd one. EdgeToHalfedgeID leans on the same
// split when it replays a walk upward.
func edgeBit(h, twin int32) int32 {
	if twin >= 0 && h < twin {
		return 1
	}
	return 0
}

// refineCageHalfedges splits every cage n-gon into quads, one per corner
// halfedge. Child ids of halfedge h are 4h..4h+3, walking corner, edge
// point, face point, previous edge point. Vertex ids at the next level
// put the carried-over vertices first, then face points at V+f, then
// edge points at V+F+e.
func (s *Subd) refineCageHalfedges() {
	c := s.cage
	vertexCount := c.VertexCount()
	edgeCount := c.EdgeCount()
	faceCount := c.FaceCount()
	out := s.levelHalfedges(1)
	parallel.For(int(c.HalfedgeCount()), func(lo, hi int) {
		for h := int32(lo); h < int32(hi); h++ {
			twin := c.HalfedgeTwinID(h)
			next := c.HalfedgeNextID(h)
			prev := c.HalfedgePrevID(h)
			edge := c.HalfedgeEdgeID(h)
			prevEdge := c.HalfedgeEdgeID(prev)
			prevTwin := c.HalfedgeTwinID(prev)
			twinNext := int32(-1)
			if twin >= 0 {
				twinNext = c.HalfedgeNextID(twin)
			}

			out[4*h+0] = Halfedge{
				Twin: 4*twinNext + 3,
				Edge: 2*edge + edgeBit(h, twin),
				Vert: c.HalfedgeVertexID(h),
			}
			out[4*h+1] = Halfedge{
				Twin: 4*next + 2,
				Edge: 2*edgeCount + h,
				Vert: vertexCount + faceCount + edge,
			}
			out[4*h+2] = Halfedge{
				Twin: 4*prev + 1,
				Edge: 2*edgeCount + prev,
				Vert: vertexCount + c.HalfedgeFaceID(h),
			}
			out[4*h+3] = Halfedge{
				Twin: 4 * prevTwin,
				Edge: 2*prevEdge + 1 - edgeBit(prev, prevTwin),
				Vert: vertexCount + faceCount + prevEdge,
			}
		}
	})
}

// refineHalfedges is the all-quads step from one refined level to the
// next. Same child scheme as the cage step, with next and prev derived
// from the id. Negative twins pass through the child arithmetic below
// zero, so boundaries need no special casing.
func (s *Subd) refineHalfedges(depth int32) {
	c := s.cage
	vertexCount := c.VertexCountAtDepth(depth)
	edgeCount := c.EdgeCountAtDepth(depth)
	faceCount := c.FaceCountAtDepth(depth)
	in := s.levelHalfedges(depth)
	out := s.levelHalfedges(depth + 1)
	parallel.For(len(in), func(lo, hi int) {
		for h := int32(lo); h < int32(hi); h++ {
			twin := in[h].Twin
			next := QuadNextID(h)
			prev := QuadPrevID(h)
			edge := in[h].Edge
			prevEdge := in[prev].Edge
			prevTwin := in[prev].Twin
			twinNext := QuadNextID(twin)

			out[4*h+0] = Halfedge{
				Twin: 4*twinNext + 3,
				Edge: 2*edge + edgeBit(h, twin),
				Vert: in[h].Vert,
			}
			out[4*h+1] = Halfedge{
				Twin: 4*next + 2,
				Edge: 2*edgeCount + h,
				Vert: vertexCount + faceCount + edge,
			}
			out[4*h+2] = Halfedge{
				Twin: 4*prev + 1,
				Edge: 2*edgeCount + prev,
				Vert: vertexCount + QuadFaceID(h),
			}
			out[4*h+3] = Halfedge{
				Twin: 4 * prevTwin,
				Edge: 2*prevEdge + 1 - edgeBit(prev, prevTwin),
				Vert: vertexCount + faceCount + prevEdge,
			}
		}
	})
}

// RefineCreases writes the crease chains of every refined level.
func (s *Subd) RefineCreases() {
	s.refineCageCreases()
	for d := int32(1); d < s.maxDepth; d++ {
		s.refineCreases(d)
	}
}

// refineCageCreases splits each cage crease into children 2e and 2e+1,
// the halves toward the previous and the next crease. Sharpness follows
// the Chaikin rule minus the per-level decay; chain ends (self links)
// propagate as self links, so an isolated crease decays uniformly.
func (s *Subd) refineCageCreases() {
	c := s.cage
	out := s.levelCreases(1)
	parallel.For(int(c.CreaseCount()), func(lo, hi int) {
		for e := int32(lo); e < int32(hi); e++ {
			next := c.CreaseNextID(e)
			prev := c.CreasePrevID(e)
			sharp := c.CreaseSharpness(e)
			nextSharp := c.CreaseSharpness(next)
			prevSharp := c.CreaseSharpness(prev)

			prevBit := int32(0)
			if prev != e && c.CreaseNextID(prev) == e {
				prevBit = 1
			}
			nextBit := int32(1)
			if next != e && c.CreasePrevID(next) == e {
				nextBit = 0
			}
			out[2*e+0] = cage.Crease{
				Sharpness: max(0, (prevSharp+3*sharp)/4-1),
				Next:      2*e + 1,
				Prev:      2*prev + prevBit,
			}
			out[2*e+1] = cage.Crease{
				Sharpness: max(0, (3*sharp+nextSharp)/4-1),
				Next:      2*next + nextBit,
				Prev:      2 * e,
			}
		}
	})
}

func (s *Subd) refineCreases(depth int32) {
	count := s.cage.CreaseCountAtDepth(depth)
	out := s.levelCreases(depth + 1)
	parallel.For(int(count), func(lo, hi int) {
		for e := int32(lo); e < int32(hi); e++ {
			next := s.CreaseNextID(e, depth)
			prev := s.CreasePrevID(e, depth)
			sharp := s.CreaseSharpness(e, depth)
			nextSharp := s.CreaseSharpness(next, depth)
			prevSharp := s.CreaseSharpness(prev, depth)

			prevBit := int32(0)
			if prev != e && s.CreaseNextID(prev, depth) == e {
				prevBit = 1
			}
			nextBit := int32(1)
			if next != e && s.CreasePrevID(next, depth) == e {
				nextBit = 0
			}
			out[2*e+0] = cage.Crease{
				Sharpness: max(0, (prevSharp+3*sharp)/4-1),
				Next:      2*e + 1,
				Prev:      2*prev + prevBit,
			}
			out[2*e+1] = cage.Crease{
				Sharpness: max(0, (3*sharp+nextSharp)/4-1),
				Next:      2*next + nextBit,
				Prev:      2 * e,
			}
		}
	})
}

// RefineVertexUvs writes the packed corner UVs of every refined level.
// Call after RefineHalfedges, which clears the UV words. UVs refine per
// corner rather than per vertex, which keeps seams intact: a corner only
// ever averages UVs from its own face. No-op for cages without UVs.
func (s *Subd) RefineVertexUvs() {
	if s.cage.UvCount() == 0 {
		return
	}
	s.refineCageVertexUvs()
	for d := int32(1); d < s.maxDepth; d++ {
		s.refineVertexUvs(d)
	}
}

// cageCornerUv reads a corner UV, zero for corners without one.
func cageCornerUv(c *cage.Mesh, h int32) mgl32.Vec2 {
	if c.HalfedgeUvID(h) < 0 {
		return mgl32.Vec2{}
	}
	return c.HalfedgeVertexUv(h)
}

func (s *Subd) refineCageVertexUvs() {
	c := s.cage
	out := s.levelHalfedges(1)
	parallel.For(int(c.HalfedgeCount()), func(lo, hi int) {
		for h := int32(lo); h < int32(hi); h++ {
			uv := cageCornerUv(c, h)
			nextUv := cageCornerUv(c, c.HalfedgeNextID(h))
			prevUv := cageCornerUv(c, c.HalfedgePrevID(h))

			h0 := c.FaceToHalfedgeID(c.HalfedgeFaceID(h))
			faceUv := cageCornerUv(c, h0)
			n := int32(1)
			for hh := c.HalfedgeNextID(h0); hh != h0; hh = c.HalfedgeNextID(hh) {
				faceUv = faceUv.Add(cageCornerUv(c, hh))
				n++
			}
			faceUv = faceUv.Mul(1 / float32(n))

			out[4*h+0].UV = geom.EncodeUV(uv)
			out[4*h+1].UV = geom.EncodeUV(geom.Lerp2(uv, nextUv, 0.5))
			out[4*h+2].UV = geom.EncodeUV(faceUv)
			out[4*h+3].UV = geom.EncodeUV(geom.Lerp2(uv, prevUv, 0.5))
		}
	})
}

func (s *Subd) refineVertexUvs(depth int32) {
	in := s.levelHalfedges(depth)
	out := s.levelHalfedges(depth + 1)
	parallel.For(len(in), func(lo, hi int) {
		for h := int32(lo); h < int32(hi); h++ {
			uv := geom.DecodeUV(in[h].UV)
			nextUv := geom.DecodeUV(in[QuadNextID(h)].UV)
			prevUv := geom.DecodeUV(in[QuadPrevID(h)].UV)

			h0 := QuadFaceToHalfedgeID(QuadFaceID(h))
			faceUv := mgl32.Vec2{}
			for i := int32(0); i < 4; i++ {
				faceUv = faceUv.Add(geom.DecodeUV(in[h0+i].UV))
			}
			faceUv = faceUv.Mul(0.25)

			out[4*h+0].UV = in[h].UV
			out[4*h+1].UV = geom.EncodeUV(geom.Lerp2(uv, nextUv, 0.5))
			out[4*h+2].UV = geom.EncodeUV(faceUv)
			out[4*h+3].UV = geom.EncodeUV(geom.Lerp2(uv, prevUv, 0.5))
		}
	})
}

// RefineVertexPoints writes the vertex points of every refined level.
// Call after RefineHalfedges and RefineCreases. Each level runs three
// gather passes over disjoint output ranges, face points first so the
// smooth edge and vertex rules can read them back.
func (s *Subd) RefineVertexPoints() {
	s.refineCageVertexPoints()
	for d := int32(1); d < s.maxDepth; d++ {
		s.refineVertexPoints(d)
	}
}

func (s *Subd) refineCageVertexPoints() {
	c := s.cage
	vertexCount := c.VertexCount()
	faceCount := c.FaceCount()
	out := s.levelVertexPoints(1)

	// face points: n-gon centroids
	parallel.For(int(faceCount), func(lo, hi int) {
		for f := int32(lo); f < int32(hi); f++ {
			h0 := c.FaceToHalfedgeID(f)
			sum := c.HalfedgeVertexPoint(h0)
			n := int32(1)
			for h := c.HalfedgeNextID(h0); h != h0; h = c.HalfedgeNextID(h) {
				sum = sum.Add(c.HalfedgeVertexPoint(h))
				n++
			}
			out[vertexCount+f] = sum.Mul(1 / float32(n))
		}
	})

	// edge points
	parallel.For(int(c.EdgeCount()), func(lo, hi int) {
		for e := int32(lo); e < int32(hi); e++ {
			h := c.EdgeToHalfedgeID(e)
			twin := c.HalfedgeTwinID(h)
			p0 := c.HalfedgeVertexPoint(h)
			p1 := c.HalfedgeVertexPoint(c.HalfedgeNextID(h))
			mid := geom.Lerp3(p0, p1, 0.5)
			if twin < 0 {
				out[vertexCount+faceCount+e] = mid
				continue
			}
			fp0 := out[vertexCount+c.HalfedgeFaceID(h)]
			fp1 := out[vertexCount+c.HalfedgeFaceID(twin)]
			smooth := p0.Add(p1).Add(fp0).Add(fp1).Mul(0.25)
			out[vertexCount+faceCount+e] = geom.Lerp3(smooth, mid, geom.Saturate(c.CreaseSharpness(e)))
		}
	})

	// vertex points
	parallel.For(int(vertexCount), func(lo, hi int) {
		for v := int32(lo); v < int32(hi); v++ {
			pos := c.VertexPoint(v)
			h0 := c.VertexToHalfedgeID(v)
			if h0 < 0 {
				out[v] = pos
				continue
			}

			// rewind so an open fan starts at its boundary
			first := h0
			for {
				p := c.PrevVertexHalfedgeID(first)
				if p < 0 || p == h0 {
					break
				}
				first = p
			}

			var (
				faceSum   mgl32.Vec3
				midSum    mgl32.Vec3
				creaseSum mgl32.Vec3
				faceN     int32
				edgeN     int32
				sharpN    int32
				sharpSum  float32
			)
			h := first
			for {
				far := c.HalfedgeVertexPoint(c.HalfedgeNextID(h))
				twin := c.HalfedgeTwinID(h)
				midSum = midSum.Add(geom.Lerp3(pos, far, 0.5))
				edgeN++
				sharp := c.CreaseSharpness(c.HalfedgeEdgeID(h))
				if twin < 0 || sharp > 0 {
					w := geom.Saturate(sharp)
					if twin < 0 {
						w = 1
					}
					if sharpN < 2 {
						creaseSum = creaseSum.Add(far)
					}
					sharpN++
					sharpSum += w
				}
				faceSum = faceSum.Add(out[vertexCount+c.HalfedgeFaceID(h)])
				faceN++
				if twin < 0 {
					// the incoming boundary edge closes the fan
					pin := c.HalfedgePrevID(first)
					pfar := c.HalfedgeVertexPoint(pin)
					midSum = midSum.Add(geom.Lerp3(pos, pfar, 0.5))
					edgeN++
					if sharpN < 2 {
						creaseSum = creaseSum.Add(pfar)
					}
					sharpN++
					sharpSum++
					break
				}
				h = c.NextVertexHalfedgeID(h)
				if h == first {
					break
				}
			}

			out[v] = vertexRule(pos, faceSum, midSum, creaseSum, faceN, edgeN, sharpN, sharpSum)
		}
	})
}

func (s *Subd) refineVertexPoints(depth int32) {
	c := s.cage
	vertexCount := c.VertexCountAtDepth(depth)
	faceCount := c.FaceCountAtDepth(depth)
	in := s.levelHalfedges(depth)
	inPos := s.levelVertexPoints(depth)
	out := s.levelVertexPoints(depth + 1)

	// face points: quad centroids
	parallel.For(int(faceCount), func(lo, hi int) {
		for f := int32(lo); f < int32(hi); f++ {
			h := QuadFaceToHalfedgeID(f)
			sum := inPos[in[h].Vert]
			for i := int32(1); i < 4; i++ {
				sum = sum.Add(inPos[in[h+i].Vert])
			}
			out[vertexCount+f] = sum.Mul(0.25)
		}
	})

	// edge points, locating one halfedge per edge through the arithmetic
	// resolver since refined levels store no edge map
	parallel.For(int(c.EdgeCountAtDepth(depth)), func(lo, hi int) {
		for e := int32(lo); e < int32(hi); e++ {
			h := s.EdgeToHalfedgeID(e, depth)
			twin := in[h].Twin
			p0 := inPos[in[h].Vert]
			p1 := inPos[in[QuadNextID(h)].Vert]
			mid := geom.Lerp3(p0, p1, 0.5)
			if twin < 0 {
				out[vertexCount+faceCount+e] = mid
				continue
			}
			fp0 := out[vertexCount+QuadFaceID(h)]
			fp1 := out[vertexCount+QuadFaceID(twin)]
			smooth := p0.Add(p1).Add(fp0).Add(fp1).Mul(0.25)
			out[vertexCount+faceCount+e] = geom.Lerp3(smooth, mid, geom.Saturate(s.CreaseSharpness(e, depth)))
		}
	})

	// vertex points: one ring walk per vertex over a transient
	// vertex-to-halfedge sweep of the level
	toHalfedge := make([]int32, vertexCount)
	for i := range toHalfedge {
		toHalfedge[i] = -1
	}
	for h := range in {
		if v := in[h].Vert; toHalfedge[v] < 0 {
			toHalfedge[v] = int32(h)
		}
	}
	parallel.For(int(vertexCount), func(lo, hi int) {
		for v := int32(lo); v < int32(hi); v++ {
			pos := inPos[v]
			h0 := toHalfedge[v]
			if h0 < 0 {
				out[v] = pos
				continue
			}

			first := h0
			for {
				p := in[QuadPrevID(first)].Twin
				if p < 0 || p == h0 {
					break
				}
				first = p
			}

			var (
				faceSum   mgl32.Vec3
				midSum    mgl32.Vec3
				creaseSum mgl32.Vec3
				faceN     int32
				edgeN     int32
				sharpN    int32
				sharpSum  float32
			)
			h := first
			for {
				far := inPos[in[QuadNextID(h)].Vert]
				twin := in[h].Twin
				midSum = midSum.Add(geom.Lerp3(pos, far, 0.5))
				edgeN++
				sharp := s.CreaseSharpness(in[h].Edge, depth)
				if twin < 0 || sharp > 0 {
					w := geom.Saturate(sharp)
					if twin < 0 {
						w = 1
					}
					if sharpN < 2 {
						creaseSum = creaseSum.Add(far)
					}
					sharpN++
					sharpSum += w
				}
				faceSum = faceSum.Add(out[vertexCount+QuadFaceID(h)])
				faceN++
				if twin < 0 {
					pin := QuadPrevID(first)
					pfar := inPos[in[pin].Vert]
					midSum = midSum.Add(geom.Lerp3(pos, pfar, 0.5))
					edgeN++
					if sharpN < 2 {
						creaseSum = creaseSum.Add(pfar)
					}
					sharpN++
					sharpSum++
					break
				}
				h = QuadNextID(twin)
				if h == first {
					break
				}
			}

			out[v] = vertexRule(pos, faceSum, midSum, creaseSum, faceN, edgeN, sharpN, sharpSum)
		}
	})
}

// vertexRule applies the creased vertex stencil to one gathered ring.
// Up to one semi-sharp incident edge the vertex is smooth, two make a
// crease blended by the average saturated sharpness, three or more pin
// it in place.
func vertexRule(pos, faceSum, midSum, creaseSum mgl32.Vec3, faceN, edgeN, sharpN int32, sharpSum float32) mgl32.Vec3 {
	if sharpN >= 3 {
		return pos
	}
	n := float32(edgeN)
	q := faceSum.Mul(1 / float32(faceN))
	r := midSum.Mul(1 / n)
	smooth := q.Add(r.Mul(2)).Add(pos.Mul(n - 3)).Mul(1 / n)
	if sharpN == 2 {
		crease := creaseSum.Add(pos.Mul(6)).Mul(0.125)
		return geom.Lerp3(smooth, crease, sharpSum/2)
	}
	return smooth
}
