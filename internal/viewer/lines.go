package viewer

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/meshkit/subdiv/pkg/cage"
	"github.com/meshkit/subdiv/pkg/subd"
)

// CageLines returns one line segment per cage edge as packed xyz pairs.
// Each edge is emitted once, from its lowest halfedge.
func CageLines(m *cage.Mesh) []float32 {
	lines := make([]float32, 0, m.EdgeCount()*6)
	for h := int32(0); h < m.HalfedgeCount(); h++ {
		if twin := m.HalfedgeTwinID(h); twin >= 0 && twin < h {
			continue
		}
		p0 := m.HalfedgeVertexPoint(h)
		p1 := m.HalfedgeVertexPoint(m.HalfedgeNextID(h))
		lines = append(lines, p0[0], p0[1], p0[2], p1[0], p1[1], p1[2])
	}
	return lines
}

// LevelLines returns one line segment per edge of a refined level.
// Depth 0 falls back to the cage wires.
func LevelLines(s *subd.Subd, depth int32) []float32 {
	if depth == 0 {
		return CageLines(s.Cage())
	}
	m := s.Cage()
	lines := make([]float32, 0, m.EdgeCountAtDepth(depth)*6)
	for h := int32(0); h < m.HalfedgeCountAtDepth(depth); h++ {
		if twin := s.HalfedgeTwinID(h, depth); twin >= 0 && twin < h {
			continue
		}
		p0 := s.HalfedgeVertexPoint(h, depth)
		p1 := s.HalfedgeVertexPoint(s.HalfedgeNextID(h, depth), depth)
		lines = append(lines, p0[0], p0[1], p0[2], p1[0], p1[1], p1[2])
	}
	return lines
}

// MeshBounds returns the axis-aligned bounding box of the cage vertices.
func MeshBounds(m *cage.Mesh) (mgl32.Vec3, mgl32.Vec3) {
	if m.VertexCount() == 0 {
		return mgl32.Vec3{}, mgl32.Vec3{}
	}
	lo, hi := m.VertexPoints[0], m.VertexPoints[0]
	for _, p := range m.VertexPoints[1:] {
		for i := 0; i < 3; i++ {
			lo[i] = min(lo[i], p[i])
			hi[i] = max(hi[i], p[i])
		}
	}
	return lo, hi
}
