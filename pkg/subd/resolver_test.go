package subd

import (
	"testing"

	"github.com/meshkit/subdiv/pkg/cage"
)

// The resolver has to agree with the edge ids the refinement kernels
// write. Round-tripping every edge of every level is the strongest check:
// resolve to a halfedge, then ask the stored topology which edge that
// halfedge runs along.
func TestEdgeToHalfedgeRoundTrip(t *testing.T) {
	meshes := map[string]*cage.Mesh{
		"quad": buildQuad(t),
		"cube": buildCube(t),
	}
	for name, m := range meshes {
		t.Run(name, func(t *testing.T) {
			s := New(m, 3)
			s.RefineHalfedges()
			for depth := int32(1); depth <= 3; depth++ {
				halfedgeCount := m.HalfedgeCountAtDepth(depth)
				for e := int32(0); e < m.EdgeCountAtDepth(depth); e++ {
					h := s.EdgeToHalfedgeID(e, depth)
					if h < 0 || h >= halfedgeCount {
						t.Fatalf("EdgeToHalfedgeID(%d, %d) = %d, out of range", e, depth, h)
					}
					if got := s.HalfedgeEdgeID(h, depth); got != e {
						t.Errorf("EdgeToHalfedgeID(%d, %d) = %d, which runs along edge %d", e, depth, h, got)
					}
					if twin := s.HalfedgeTwinID(h, depth); twin >= 0 && twin > h {
						t.Errorf("EdgeToHalfedgeID(%d, %d) = %d, not the higher of pair (twin %d)", e, depth, h, twin)
					}
				}
			}
		})
	}
}

// Hand-walked paths covering each seeding branch: radial halves of
// interior and boundary cage edges, spokes seeded at the cage, spokes
// met mid-walk, and replayed descents through both bit values.
func TestEdgeToHalfedgeKnownPaths(t *testing.T) {
	quad := New(buildQuad(t), 2)
	cube := New(buildCube(t), 2)

	tests := []struct {
		name  string
		s     *Subd
		e     int32
		depth int32
		want  int32
	}{
		{"quad boundary even half", quad, 0, 1, 0},
		{"quad boundary odd half", quad, 1, 1, 7},
		{"quad spoke", quad, 8, 1, 6},
		{"quad descent odd then odd", quad, 3, 2, 19},
		{"quad spoke seed even replay", quad, 16, 2, 24},
		{"quad spoke seed odd replay", quad, 17, 2, 31},
		{"quad spoke at queried level", quad, 25, 2, 10},
		{"cube interior even half", cube, 0, 1, 80},
		{"cube interior odd half", cube, 1, 1, 87},
		{"cube spoke", cube, 29, 1, 26},
	}
	for _, tt := range tests {
		if got := tt.s.EdgeToHalfedgeID(tt.e, tt.depth); got != tt.want {
			t.Errorf("%s: EdgeToHalfedgeID(%d, %d) = %d, want %d", tt.name, tt.e, tt.depth, got, tt.want)
		}
	}
}

// Radial edge halves stay glued to their parent: the even and odd child
// of parent edge p cover p's two sides, so the parent of a child edge id
// below 2E is id>>1.
func TestEdgeChildParentRelation(t *testing.T) {
	m := buildCube(t)
	s := New(m, 2)
	s.RefineHalfedges()

	for e := int32(0); e < m.EdgeCount()<<1; e++ {
		h := s.EdgeToHalfedgeID(e, 1)
		// the corner child 4p+0 runs along a radial child of the edge of p
		parent := e >> 1
		hv := s.HalfedgeVertexID(h, 1)
		ph := m.EdgeToHalfedgeID(parent)
		pt := m.HalfedgeTwinID(ph)
		v0 := m.HalfedgeVertexID(ph)
		v1 := m.HalfedgeVertexID(m.HalfedgeNextID(ph))
		mid := m.VertexCount() + m.FaceCount() + parent
		ok := hv == v0 || hv == v1 || hv == mid
		if !ok {
			t.Errorf("edge %d at depth 1: halfedge %d starts at vertex %d, not on parent edge %d (%d-%d, mid %d, twin %d)",
				e, h, hv, parent, v0, v1, mid, pt)
		}
	}
}
