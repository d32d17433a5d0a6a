// Package subd implements the refined half of a Catmull-Clark subdivision
// structure: flat per-level topology and attribute arrays over a control
// cage, sized up front with closed-form counts, with O(1) accessors at
// every level and uniform refinement kernels.
//
// Level 0 is the cage itself, referenced rather than copied; the arrays
// here cover levels 1..MaxDepth, and level-d records of a quantity start
// at that quantity's cumulative count through depth d-1. Every level past
// the cage is all-quads, so a halfedge id encodes its own face cycle and
// only the varying links are stored.
package subd

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/meshkit/subdiv/pkg/cage"
	"github.com/meshkit/subdiv/pkg/geom"
)

// Halfedge is the semi-regular record stored at refined levels. Next,
// Prev and Face are quad arithmetic on the id; UV is a packed word
// (geom.EncodeUV).
type Halfedge struct {
	Twin int32
	Edge int32
	Vert int32
	UV   int32
}

// Subd owns the refined levels of one cage. Arrays are allocated once by
// New and filled by the Refine kernels; accessors are valid for a level
// once the corresponding kernel has run.
type Subd struct {
	cage     *cage.Mesh
	maxDepth int32

	halfedges    []Halfedge
	creases      []cage.Crease
	vertexPoints []mgl32.Vec3
}

// New allocates a hierarchy over the cage holding levels 1..maxDepth,
// maxDepth >= 1. Counting overflows int32 near depth 14 even for tiny
// cages, far past practical refinement; it is not checked.
func New(c *cage.Mesh, maxDepth int32) *Subd {
	return &Subd{
		cage:         c,
		maxDepth:     maxDepth,
		halfedges:    make([]Halfedge, CumulativeHalfedgeCountAtDepth(c, maxDepth)),
		creases:      make([]cage.Crease, CumulativeCreaseCountAtDepth(c, maxDepth)),
		vertexPoints: make([]mgl32.Vec3, CumulativeVertexCountAtDepth(c, maxDepth)),
	}
}

// Cage returns the control mesh the hierarchy refines.
func (s *Subd) Cage() *cage.Mesh { return s.cage }

// MaxDepth returns the deepest stored level.
func (s *Subd) MaxDepth() int32 { return s.maxDepth }

// Cumulative counts total a per-level formula over levels 1..depth. They
// are both the storage sizes of a hierarchy and the start offsets of each
// level's records, so depth 0 yields 0: the cage level is not stored.

// CumulativeHalfedgeCountAtDepth returns the halfedges stored by a
// hierarchy of that depth.
func CumulativeHalfedgeCountAtDepth(c *cage.Mesh, depth int32) int32 {
	h1 := c.HalfedgeCount() << 2
	return h1 * (int32(1)<<(depth<<1) - 1) / 3
}

// CumulativeFaceCountAtDepth returns the faces across levels 1..depth.
// Refined levels are all-quads, so this is a quarter of the halfedges.
func CumulativeFaceCountAtDepth(c *cage.Mesh, depth int32) int32 {
	return CumulativeHalfedgeCountAtDepth(c, depth) >> 2
}

// CumulativeCreaseCountAtDepth returns the creases across levels 1..depth.
func CumulativeCreaseCountAtDepth(c *cage.Mesh, depth int32) int32 {
	c1 := c.CreaseCount() << 1
	return c1 * (int32(1)<<depth - 1)
}

// CumulativeEdgeCountAtDepth returns the edges across levels 1..depth.
func CumulativeEdgeCountAtDepth(c *cage.Mesh, depth int32) int32 {
	e1 := c.EdgeCount()<<1 + c.HalfedgeCount()
	h1 := c.HalfedgeCount() << 2
	a := int32(1)<<depth - 1
	return a * (6*e1 + a*h1 - h1) / 6
}

// CumulativeVertexCountAtDepth returns the vertex points stored by a
// hierarchy of that depth.
func CumulativeVertexCountAtDepth(c *cage.Mesh, depth int32) int32 {
	v1 := c.VertexCount() + c.EdgeCount() + c.FaceCount()
	e1 := c.EdgeCount()<<1 + c.HalfedgeCount()
	f1 := c.HalfedgeCount()
	a := int32(1)<<depth - 1
	b := (int32(1)<<(depth<<1) - 1) / 3
	return a*(e1-2*f1) + b*f1 + depth*(f1-e1+v1)
}

// CumulativeHalfedgeCount returns the total halfedges stored by s.
func (s *Subd) CumulativeHalfedgeCount() int32 {
	return CumulativeHalfedgeCountAtDepth(s.cage, s.maxDepth)
}

// CumulativeFaceCount returns the total faces across the stored levels.
func (s *Subd) CumulativeFaceCount() int32 {
	return CumulativeFaceCountAtDepth(s.cage, s.maxDepth)
}

// CumulativeCreaseCount returns the total creases stored by s.
func (s *Subd) CumulativeCreaseCount() int32 {
	return CumulativeCreaseCountAtDepth(s.cage, s.maxDepth)
}

// CumulativeEdgeCount returns the total edges across the stored levels.
func (s *Subd) CumulativeEdgeCount() int32 {
	return CumulativeEdgeCountAtDepth(s.cage, s.maxDepth)
}

// CumulativeVertexCount returns the total vertex points stored by s.
func (s *Subd) CumulativeVertexCount() int32 {
	return CumulativeVertexCountAtDepth(s.cage, s.maxDepth)
}

// Quad-level connectivity is pure arithmetic: halfedge h sits in face
// h>>2 at corner h&3, and the face cycle walks the low two bits. The
// functions are total on negative ids, which stay negative.

// QuadFaceID returns the face of a quad-level halfedge.
func QuadFaceID(h int32) int32 { return h >> 2 }

// QuadNextID returns the next halfedge inside a quad.
func QuadNextID(h int32) int32 { return h&^3 | (h+1)&3 }

// QuadPrevID returns the previous halfedge inside a quad.
func QuadPrevID(h int32) int32 { return h&^3 | (h+3)&3 }

// QuadFaceToHalfedgeID returns the first halfedge of a quad-level face.
func QuadFaceToHalfedgeID(f int32) int32 { return f << 2 }

// levelHalfedges returns the record slice of one level, depth >= 1.
func (s *Subd) levelHalfedges(depth int32) []Halfedge {
	lo := CumulativeHalfedgeCountAtDepth(s.cage, depth-1)
	hi := CumulativeHalfedgeCountAtDepth(s.cage, depth)
	return s.halfedges[lo:hi]
}

// levelCreases returns the crease slice of one level, depth >= 1.
func (s *Subd) levelCreases(depth int32) []cage.Crease {
	lo := CumulativeCreaseCountAtDepth(s.cage, depth-1)
	hi := CumulativeCreaseCountAtDepth(s.cage, depth)
	return s.creases[lo:hi]
}

// levelVertexPoints returns the position slice of one level, depth >= 1.
func (s *Subd) levelVertexPoints(depth int32) []mgl32.Vec3 {
	lo := CumulativeVertexCountAtDepth(s.cage, depth-1)
	hi := CumulativeVertexCountAtDepth(s.cage, depth)
	return s.vertexPoints[lo:hi]
}

// HalfedgeTwinID returns the opposite halfedge at a level, negative when
// the halfedge borders a boundary.
func (s *Subd) HalfedgeTwinID(h, depth int32) int32 {
	return s.levelHalfedges(depth)[h].Twin
}

// HalfedgeEdgeID returns the edge a halfedge runs along at a level.
func (s *Subd) HalfedgeEdgeID(h, depth int32) int32 {
	return s.levelHalfedges(depth)[h].Edge
}

// HalfedgeVertexID returns the origin vertex of a halfedge at a level.
func (s *Subd) HalfedgeVertexID(h, depth int32) int32 {
	return s.levelHalfedges(depth)[h].Vert
}

// HalfedgeNextID returns the next halfedge inside the face.
func (s *Subd) HalfedgeNextID(h, depth int32) int32 {
	return QuadNextID(h)
}

// HalfedgePrevID returns the previous halfedge inside the face.
func (s *Subd) HalfedgePrevID(h, depth int32) int32 {
	return QuadPrevID(h)
}

// HalfedgeFaceID returns the face of a halfedge.
func (s *Subd) HalfedgeFaceID(h, depth int32) int32 {
	return QuadFaceID(h)
}

// HalfedgeSharpness returns the sharpness of the halfedge's edge.
func (s *Subd) HalfedgeSharpness(h, depth int32) float32 {
	return s.CreaseSharpness(s.HalfedgeEdgeID(h, depth), depth)
}

// HalfedgeVertexPoint returns the position of the halfedge's origin.
func (s *Subd) HalfedgeVertexPoint(h, depth int32) mgl32.Vec3 {
	return s.VertexPoint(s.HalfedgeVertexID(h, depth), depth)
}

// HalfedgeVertexUv returns the decoded corner UV of the halfedge.
func (s *Subd) HalfedgeVertexUv(h, depth int32) mgl32.Vec2 {
	return geom.DecodeUV(s.levelHalfedges(depth)[h].UV)
}

// FaceToHalfedgeID returns the first halfedge of a face at a level.
func (s *Subd) FaceToHalfedgeID(f, depth int32) int32 {
	return QuadFaceToHalfedgeID(f)
}

// VertexPoint returns the position of vertex v at a level, depth >= 1;
// the cage serves depth 0.
func (s *Subd) VertexPoint(v, depth int32) mgl32.Vec3 {
	return s.levelVertexPoints(depth)[v]
}

// NextVertexHalfedgeID returns the next halfedge pivoting about the same
// vertex. Past a boundary the result is some negative id, not a
// normalized -1: the quad arithmetic runs on the raw twin. Callers stop
// rotating on the first negative result.
func (s *Subd) NextVertexHalfedgeID(h, depth int32) int32 {
	return QuadNextID(s.HalfedgeTwinID(h, depth))
}

// PrevVertexHalfedgeID returns the previous halfedge pivoting about the
// same vertex, negative past a boundary.
func (s *Subd) PrevVertexHalfedgeID(h, depth int32) int32 {
	return s.HalfedgeTwinID(QuadPrevID(h), depth)
}

// Crease accessors keep a sentinel for the edges that outgrow their
// creases: the crease count doubles per level while the edge count grows
// faster, and an edge id at or past the crease count is smooth. Such ids
// read as sharpness 0 and self-linked chains without touching storage.

// CreaseSharpness returns the sharpness of edge e at a level.
func (s *Subd) CreaseSharpness(e, depth int32) float32 {
	if e >= s.cage.CreaseCountAtDepth(depth) {
		return 0
	}
	return s.levelCreases(depth)[e].Sharpness
}

// CreaseNextID returns the next crease along the chain through e.
func (s *Subd) CreaseNextID(e, depth int32) int32 {
	if e >= s.cage.CreaseCountAtDepth(depth) {
		return e
	}
	return s.levelCreases(depth)[e].Next
}

// CreasePrevID returns the previous crease along the chain through e.
func (s *Subd) CreasePrevID(e, depth int32) int32 {
	if e >= s.cage.CreaseCountAtDepth(depth) {
		return e
	}
	return s.levelCreases(depth)[e].Prev
}

// EdgeToHalfedgeID returns a halfedge running along edge e at a level,
// depth >= 1, in O(depth) time and constant space: there is no stored
// edge map past the cage.
//
// Edge ids at a refined level fall in bands relative to the parent
// level: the two radial halves of parent edge p are 2p and 2p+1, and the
// spoke edges fanning out inside a parent quad sit past twice the parent
// edge count, indexed by the parent halfedge they bisect. The walk peels
// one level at a time: a spoke id resolves immediately from its parent
// halfedge, a radial id records which half it is (one bit) and halves
// into the parent edge id. Whatever level the walk stops at, the
// recorded bits replay top-down to lift the seed halfedge back to the
// queried level. Every seed and intermediate is the higher halfedge of
// its twin pair (or twinless), which is what lets a 0 bit map straight
// to the even child edge; the refinement kernels uphold that convention.
func (s *Subd) EdgeToHalfedgeID(e, depth int32) int32 {
	heap := int32(1)
	result := int32(0)
	d := depth
	for ; d > 1; d-- {
		edgeCount := s.cage.EdgeCountAtDepth(d - 1)
		if e >= edgeCount<<1 {
			h := e - edgeCount<<1
			result = max(4*h+1, 4*QuadNextID(h)+2)
			break
		}
		heap = heap<<1 | e&1
		e >>= 1
	}
	if d == 1 {
		result = edgeToHalfedgeFirst(s.cage, e)
	}
	for heap > 1 {
		if heap&1 != 0 {
			result = 4*QuadNextID(result) + 3
		} else {
			result = 4 * result
		}
		heap >>= 1
	}
	return result
}

// edgeToHalfedgeFirst seeds the replay with a level-1 halfedge of a
// level-1 edge, working from the cage's stored edge map.
func edgeToHalfedgeFirst(c *cage.Mesh, e int32) int32 {
	edgeCount := c.EdgeCount()
	if e >= edgeCount<<1 {
		h := e - edgeCount<<1
		return max(4*h+1, 4*c.HalfedgeNextID(h)+2)
	}
	h := c.EdgeToHalfedgeID(e >> 1)
	twin := c.HalfedgeTwinID(h)
	if twin < 0 {
		if e&1 == 0 {
			return 4 * h
		}
		return 4*c.HalfedgeNextID(h) + 3
	}
	if e&1 == 0 {
		return max(4*twin, 4*c.HalfedgeNextID(h)+3)
	}
	return max(4*h, 4*c.HalfedgeNextID(twin)+3)
}
