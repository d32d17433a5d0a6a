package cage

// Catmull-Clark splits every n-gon into n quads, so one subdivision step
// maps the element counts as
//
//	F' = H    E' = 2E + H    H' = 4H    V' = V + E + F    C' = 2C
//
// and every level past the first is all-quads (H = 4F). Iterating those
// rules from the cage counts gives closed forms, so sizing any level is
// O(1) and the whole hierarchy can be allocated without walking levels.
// Depths must be non-negative; counts overflow int32 around depth 14 even
// for small cages, which is far beyond practical refinement.

// FaceCountAtDepth returns the face count at a subdivision level.
func (m *Mesh) FaceCountAtDepth(depth int32) int32 {
	if depth == 0 {
		return m.FaceCount()
	}
	// one quad per cage halfedge at level 1, then 4x per level
	return m.HalfedgeCount() << ((depth - 1) << 1)
}

// EdgeCountAtDepth returns the edge count at a subdivision level.
func (m *Mesh) EdgeCountAtDepth(depth int32) int32 {
	if depth == 0 {
		return m.EdgeCount()
	}
	e := m.EdgeCount()
	h := m.HalfedgeCount()
	pow := int32(1)<<depth - 1
	return (e<<1 + pow*h) << (depth - 1)
}

// HalfedgeCountAtDepth returns the halfedge count at a subdivision level.
func (m *Mesh) HalfedgeCountAtDepth(depth int32) int32 {
	return m.HalfedgeCount() << (depth << 1)
}

// CreaseCountAtDepth returns the crease count at a subdivision level. Both
// halves of a subdivided crease stay creases, so the count doubles per
// level regardless of sharpness.
func (m *Mesh) CreaseCountAtDepth(depth int32) int32 {
	return m.CreaseCount() << depth
}

// VertexCountAtDepth returns the vertex count at a subdivision level.
func (m *Mesh) VertexCountAtDepth(depth int32) int32 {
	if depth == 0 {
		return m.VertexCount()
	}
	v1 := m.VertexCount() + m.EdgeCount() + m.FaceCount()
	e1 := m.EdgeCount()<<1 + m.HalfedgeCount()
	f1 := m.HalfedgeCount()
	t := int32(1)<<(depth-1) - 1
	return v1 + t*(e1+t*f1)
}
