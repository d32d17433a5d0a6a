package cage

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	ErrFaceTooSmall        = errors.New("face needs at least 3 corners")
	ErrUvArityMismatch     = errors.New("face uv list length differs from its vertex list")
	ErrVertexOutOfRange    = errors.New("face vertex id out of range")
	ErrUvOutOfRange        = errors.New("face uv id out of range")
	ErrDegenerateFace      = errors.New("face repeats consecutive vertices")
	ErrNonManifold         = errors.New("edge shared by more than two halfedges")
	ErrInconsistentWinding = errors.New("neighboring faces wind the same way")
	ErrEdgeNotFound        = errors.New("sharp edge endpoints do not form a mesh edge")
)

// Builder assembles a Mesh from polygon soup. Stage vertices, UVs, faces
// and sharp edges in any order, then call Build once; the cage arrays come
// out at their exact final sizes.
type Builder struct {
	positions  []mgl32.Vec3
	uvs        []mgl32.Vec2
	faceVerts  [][]int32
	faceUvs    [][]int32
	sharp      []sharpEdge
	linkChains bool
}

type sharpEdge struct {
	v0, v1    int32
	sharpness float32
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// AddVertex stages a control vertex and returns its id.
func (b *Builder) AddVertex(p mgl32.Vec3) int32 {
	b.positions = append(b.positions, p)
	return int32(len(b.positions) - 1)
}

// AddUV stages a control UV and returns its id.
func (b *Builder) AddUV(uv mgl32.Vec2) int32 {
	b.uvs = append(b.uvs, uv)
	return int32(len(b.uvs) - 1)
}

// AddFace stages one n-gon given counter-clockwise vertex ids. uvIDs may
// be nil for meshes without UVs, otherwise it runs corner for corner with
// vertexIDs. Id ranges are checked by Build, which knows the final counts.
func (b *Builder) AddFace(vertexIDs []int32, uvIDs []int32) error {
	if len(vertexIDs) < 3 {
		return fmt.Errorf("%w: got %d", ErrFaceTooSmall, len(vertexIDs))
	}
	if uvIDs != nil && len(uvIDs) != len(vertexIDs) {
		return fmt.Errorf("%w: %d vertices, %d uvs", ErrUvArityMismatch, len(vertexIDs), len(uvIDs))
	}
	b.faceVerts = append(b.faceVerts, append([]int32(nil), vertexIDs...))
	if uvIDs == nil {
		b.faceUvs = append(b.faceUvs, nil)
	} else {
		b.faceUvs = append(b.faceUvs, append([]int32(nil), uvIDs...))
	}
	return nil
}

// SetEdgeSharpness stages a semi-sharp crease on the edge between two
// vertices. Negative sharpness clamps to smooth. Build fails if the mesh
// ends up without such an edge.
func (b *Builder) SetEdgeSharpness(v0, v1 int32, sharpness float32) error {
	if v0 == v1 {
		return fmt.Errorf("%w: %d-%d", ErrEdgeNotFound, v0, v1)
	}
	b.sharp = append(b.sharp, sharpEdge{v0, v1, max(sharpness, 0)})
	return nil
}

// LinkCreaseChains makes Build connect creases that meet at a vertex with
// exactly two incident sharp edges, so sharpness propagates along feature
// curves instead of decaying at every chain end.
func (b *Builder) LinkCreaseChains() {
	b.linkChains = true
}

// Build validates the staged soup, matches twins and returns the cage.
// Edge ids are handed out in first-encounter halfedge order, which keeps
// EdgeToHalfedge[e] at the lowest-id halfedge of each edge.
func (b *Builder) Build() (*Mesh, error) {
	vertexCount := int32(len(b.positions))
	uvCount := int32(len(b.uvs))
	faceCount := int32(len(b.faceVerts))

	var halfedgeCount int32
	for f, verts := range b.faceVerts {
		n := len(verts)
		for i, v := range verts {
			if v < 0 || v >= vertexCount {
				return nil, fmt.Errorf("%w: face %d corner %d id %d", ErrVertexOutOfRange, f, i, v)
			}
			if v == verts[(i+1)%n] {
				return nil, fmt.Errorf("%w: face %d corner %d", ErrDegenerateFace, f, i)
			}
		}
		for i, u := range b.faceUvs[f] {
			if u < 0 || u >= uvCount {
				return nil, fmt.Errorf("%w: face %d corner %d id %d", ErrUvOutOfRange, f, i, u)
			}
		}
		halfedgeCount += int32(n)
	}

	origin := make([]int32, 0, halfedgeCount)
	dest := make([]int32, 0, halfedgeCount)
	for _, verts := range b.faceVerts {
		n := len(verts)
		for i := range verts {
			origin = append(origin, verts[i])
			dest = append(dest, verts[(i+1)%n])
		}
	}

	type edgeScratch struct {
		first int32
		twin  int32
	}
	edges := make([]edgeScratch, 0, halfedgeCount/2+1)
	edgeOf := make([]int32, halfedgeCount)
	lookup := make(map[uint64]int32, halfedgeCount)
	for h := int32(0); h < halfedgeCount; h++ {
		key := edgeKey(origin[h], dest[h])
		e, seen := lookup[key]
		if !seen {
			lookup[key] = int32(len(edges))
			edgeOf[h] = int32(len(edges))
			edges = append(edges, edgeScratch{first: h, twin: -1})
			continue
		}
		if edges[e].twin >= 0 {
			return nil, fmt.Errorf("%w: vertices %d-%d", ErrNonManifold, origin[h], dest[h])
		}
		if origin[edges[e].first] == origin[h] {
			return nil, fmt.Errorf("%w: vertices %d-%d", ErrInconsistentWinding, origin[h], dest[h])
		}
		edges[e].twin = h
		edgeOf[h] = e
	}
	edgeCount := int32(len(edges))

	m := New(vertexCount, uvCount, halfedgeCount, edgeCount, faceCount)
	copy(m.VertexPoints, b.positions)
	copy(m.Uvs, b.uvs)
	for i := range m.VertexToHalfedge {
		m.VertexToHalfedge[i] = -1
	}

	base := int32(0)
	for f, verts := range b.faceVerts {
		n := int32(len(verts))
		m.FaceToHalfedge[f] = base
		for i := int32(0); i < n; i++ {
			id := base + i
			uv := int32(-1)
			if b.faceUvs[f] != nil {
				uv = b.faceUvs[f][i]
			}
			m.Halfedges[id] = Halfedge{
				Twin: -1,
				Next: base + (i+1)%n,
				Prev: base + (i+n-1)%n,
				Face: int32(f),
				Edge: edgeOf[id],
				Vert: verts[i],
				UV:   uv,
			}
			if m.VertexToHalfedge[verts[i]] < 0 {
				m.VertexToHalfedge[verts[i]] = id
			}
		}
		base += n
	}
	for e, s := range edges {
		m.EdgeToHalfedge[e] = s.first
		if s.twin >= 0 {
			m.Halfedges[s.first].Twin = s.twin
			m.Halfedges[s.twin].Twin = s.first
		}
	}

	for _, se := range b.sharp {
		e, ok := lookup[edgeKey(se.v0, se.v1)]
		if !ok {
			return nil, fmt.Errorf("%w: vertices %d-%d", ErrEdgeNotFound, se.v0, se.v1)
		}
		m.Creases[e].Sharpness = se.sharpness
	}
	if b.linkChains {
		linkCreaseChains(m)
	}
	return m, nil
}

func edgeKey(v0, v1 int32) uint64 {
	if v0 > v1 {
		v0, v1 = v1, v0
	}
	return uint64(uint32(v0))<<32 | uint64(uint32(v1))
}

// linkCreaseChains connects creases that meet at a vertex with exactly two
// incident sharp edges. A crease runs the way its lowest halfedge does;
// the bond takes the Next slot on the crease arriving at the vertex and
// the Prev slot on the one leaving it, so consistently wound chains read
// tail to head. Opposed orientations bond through matching slots instead,
// which the subdivision rule accepts just the same.
func linkCreaseChains(m *Mesh) {
	incident := make([][]int32, m.VertexCount())
	for e := int32(0); e < m.EdgeCount(); e++ {
		if m.Creases[e].Sharpness <= 0 {
			continue
		}
		h := m.EdgeToHalfedge[e]
		v0 := m.Halfedges[h].Vert
		v1 := m.Halfedges[m.Halfedges[h].Next].Vert
		incident[v0] = append(incident[v0], e)
		incident[v1] = append(incident[v1], e)
	}
	for v, pair := range incident {
		if len(pair) != 2 {
			continue
		}
		linkCrease(m, pair[0], pair[1], int32(v))
		linkCrease(m, pair[1], pair[0], int32(v))
	}
}

// linkCrease points a's slot at the shared vertex toward b.
func linkCrease(m *Mesh, a, b, v int32) {
	h := m.EdgeToHalfedge[a]
	head := m.Halfedges[m.Halfedges[h].Next].Vert
	if head == v {
		m.Creases[a].Next = b
	} else {
		m.Creases[a].Prev = b
	}
}
