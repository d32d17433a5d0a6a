// Package cage implements the control mesh of a Catmull-Clark subdivision
// hierarchy: a flat, index-based halfedge structure with exact-sized arrays
// and closed-form element counts for every subdivision level.
//
// Ids are int32 throughout. A negative id means "absent"; in particular a
// halfedge with Twin < 0 lies on a boundary. Accessors do not validate their
// arguments: indices are the caller's contract, exactly like the raw arrays.
package cage

import "github.com/go-gl/mathgl/mgl32"

// Halfedge is the full control-mesh record. Faces are arbitrary n-gons at
// this level, so the cycle links are stored rather than derived.
type Halfedge struct {
	Twin int32
	Next int32
	Prev int32
	Face int32
	Edge int32
	Vert int32
	UV   int32
}

// Crease carries the semi-sharp state of one edge. Creases form doubly
// linked chains along sharp feature curves; a crease outside any chain
// links to itself. The cage keeps one crease record per edge.
type Crease struct {
	Sharpness float32
	Next      int32
	Prev      int32
}

// Mesh is a manifold control cage. All arrays are allocated once at their
// exact size and never grown; Build (or a format loader) fills them.
//
// EdgeToHalfedge[e] holds the lowest-id halfedge of edge e. The subdivision
// resolver depends on that ordering, so loaders must preserve it.
type Mesh struct {
	VertexToHalfedge []int32
	EdgeToHalfedge   []int32
	FaceToHalfedge   []int32

	Halfedges []Halfedge
	Creases   []Crease

	VertexPoints []mgl32.Vec3
	Uvs          []mgl32.Vec2
}

// New returns a cage with every array sized up front. Creases start smooth
// and self-linked. The mesh holds no OS resources; dropping the last
// reference releases it.
func New(vertexCount, uvCount, halfedgeCount, edgeCount, faceCount int32) *Mesh {
	m := &Mesh{
		VertexToHalfedge: make([]int32, vertexCount),
		EdgeToHalfedge:   make([]int32, edgeCount),
		FaceToHalfedge:   make([]int32, faceCount),
		Halfedges:        make([]Halfedge, halfedgeCount),
		Creases:          make([]Crease, edgeCount),
		VertexPoints:     make([]mgl32.Vec3, vertexCount),
		Uvs:              make([]mgl32.Vec2, uvCount),
	}
	for i := range m.Creases {
		m.Creases[i].Next = int32(i)
		m.Creases[i].Prev = int32(i)
	}
	return m
}

// VertexCount returns the number of control vertices.
func (m *Mesh) VertexCount() int32 { return int32(len(m.VertexPoints)) }

// UvCount returns the number of control UVs. Zero for meshes without UVs.
func (m *Mesh) UvCount() int32 { return int32(len(m.Uvs)) }

// HalfedgeCount returns the number of halfedges.
func (m *Mesh) HalfedgeCount() int32 { return int32(len(m.Halfedges)) }

// EdgeCount returns the number of edges.
func (m *Mesh) EdgeCount() int32 { return int32(len(m.EdgeToHalfedge)) }

// CreaseCount returns the number of crease records, one per edge.
func (m *Mesh) CreaseCount() int32 { return int32(len(m.Creases)) }

// FaceCount returns the number of faces.
func (m *Mesh) FaceCount() int32 { return int32(len(m.FaceToHalfedge)) }

// HalfedgeTwinID returns the opposite halfedge, or -1 on a boundary.
func (m *Mesh) HalfedgeTwinID(h int32) int32 { return m.Halfedges[h].Twin }

// HalfedgeNextID returns the next halfedge inside the same face.
func (m *Mesh) HalfedgeNextID(h int32) int32 { return m.Halfedges[h].Next }

// HalfedgePrevID returns the previous halfedge inside the same face.
func (m *Mesh) HalfedgePrevID(h int32) int32 { return m.Halfedges[h].Prev }

// HalfedgeFaceID returns the face the halfedge belongs to.
func (m *Mesh) HalfedgeFaceID(h int32) int32 { return m.Halfedges[h].Face }

// HalfedgeEdgeID returns the edge the halfedge runs along.
func (m *Mesh) HalfedgeEdgeID(h int32) int32 { return m.Halfedges[h].Edge }

// HalfedgeVertexID returns the vertex the halfedge points out of.
func (m *Mesh) HalfedgeVertexID(h int32) int32 { return m.Halfedges[h].Vert }

// HalfedgeUvID returns the corner UV id, or -1 when the mesh has no UVs.
func (m *Mesh) HalfedgeUvID(h int32) int32 { return m.Halfedges[h].UV }

// HalfedgeSharpness returns the sharpness of the halfedge's edge.
func (m *Mesh) HalfedgeSharpness(h int32) float32 {
	return m.Creases[m.Halfedges[h].Edge].Sharpness
}

// HalfedgeVertexPoint returns the position of the halfedge's origin vertex.
func (m *Mesh) HalfedgeVertexPoint(h int32) mgl32.Vec3 {
	return m.VertexPoints[m.Halfedges[h].Vert]
}

// HalfedgeVertexUv returns the corner UV of the halfedge. Only meaningful
// when UvCount() > 0.
func (m *Mesh) HalfedgeVertexUv(h int32) mgl32.Vec2 {
	return m.Uvs[m.Halfedges[h].UV]
}

// CreaseSharpness returns the sharpness of edge e.
func (m *Mesh) CreaseSharpness(e int32) float32 { return m.Creases[e].Sharpness }

// CreaseNextID returns the next crease along the chain through e.
func (m *Mesh) CreaseNextID(e int32) int32 { return m.Creases[e].Next }

// CreasePrevID returns the previous crease along the chain through e.
func (m *Mesh) CreasePrevID(e int32) int32 { return m.Creases[e].Prev }

// VertexPoint returns the position of vertex v.
func (m *Mesh) VertexPoint(v int32) mgl32.Vec3 { return m.VertexPoints[v] }

// Uv returns UV u.
func (m *Mesh) Uv(u int32) mgl32.Vec2 { return m.Uvs[u] }

// VertexToHalfedgeID returns a halfedge pointing out of vertex v.
func (m *Mesh) VertexToHalfedgeID(v int32) int32 { return m.VertexToHalfedge[v] }

// EdgeToHalfedgeID returns the lowest-id halfedge of edge e.
func (m *Mesh) EdgeToHalfedgeID(e int32) int32 { return m.EdgeToHalfedge[e] }

// FaceToHalfedgeID returns the first halfedge of face f.
func (m *Mesh) FaceToHalfedgeID(f int32) int32 { return m.FaceToHalfedge[f] }

// NextVertexHalfedgeID returns the next halfedge pivoting about the same
// vertex, or -1 when the rotation crosses a boundary.
func (m *Mesh) NextVertexHalfedgeID(h int32) int32 {
	twin := m.Halfedges[h].Twin
	if twin < 0 {
		return -1
	}
	return m.Halfedges[twin].Next
}

// PrevVertexHalfedgeID returns the previous halfedge pivoting about the
// same vertex. The result is the stored twin of prev(h), so it is negative
// when that side of the vertex is open; unlike the forward rotation there
// is no -1 normalization.
func (m *Mesh) PrevVertexHalfedgeID(h int32) int32 {
	return m.Halfedges[m.Halfedges[h].Prev].Twin
}
