package cage

import "testing"

func TestCountsMatchOneStepRules(t *testing.T) {
	cases := []struct {
		name       string
		v, h, e, f int32
	}{
		{"quad", 4, 4, 4, 1},
		{"triangle", 3, 3, 3, 1},
		{"cube", 8, 24, 12, 6},
		{"pentagon+triangle", 6, 8, 7, 2},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			m := New(c.v, 0, c.h, c.e, c.f)
			if got := m.VertexCountAtDepth(0); got != c.v {
				t.Errorf("VertexCountAtDepth(0) = %d, want %d", got, c.v)
			}
			if got := m.EdgeCountAtDepth(0); got != c.e {
				t.Errorf("EdgeCountAtDepth(0) = %d, want %d", got, c.e)
			}
			if got := m.FaceCountAtDepth(0); got != c.f {
				t.Errorf("FaceCountAtDepth(0) = %d, want %d", got, c.f)
			}
			if got := m.HalfedgeCountAtDepth(0); got != c.h {
				t.Errorf("HalfedgeCountAtDepth(0) = %d, want %d", got, c.h)
			}
			if got := m.CreaseCountAtDepth(0); got != c.e {
				t.Errorf("CreaseCountAtDepth(0) = %d, want %d", got, c.e)
			}

			v, e, f, h, cr := c.v, c.e, c.f, c.h, c.e
			for d := int32(1); d <= 6; d++ {
				v, e, f, h, cr = v+e+f, 2*e+h, h, 4*h, 2*cr
				if got := m.VertexCountAtDepth(d); got != v {
					t.Errorf("VertexCountAtDepth(%d) = %d, want %d", d, got, v)
				}
				if got := m.EdgeCountAtDepth(d); got != e {
					t.Errorf("EdgeCountAtDepth(%d) = %d, want %d", d, got, e)
				}
				if got := m.FaceCountAtDepth(d); got != f {
					t.Errorf("FaceCountAtDepth(%d) = %d, want %d", d, got, f)
				}
				if got := m.HalfedgeCountAtDepth(d); got != h {
					t.Errorf("HalfedgeCountAtDepth(%d) = %d, want %d", d, got, h)
				}
				if got := m.CreaseCountAtDepth(d); got != cr {
					t.Errorf("CreaseCountAtDepth(%d) = %d, want %d", d, got, cr)
				}
			}
		})
	}
}

func TestCubeCountsAtDepth(t *testing.T) {
	m := New(8, 0, 24, 12, 6)
	cases := []struct {
		depth      int32
		v, e, f, h int32
	}{
		{1, 26, 48, 24, 96},
		{2, 98, 192, 96, 384},
		{3, 386, 768, 384, 1536},
	}
	for _, c := range cases {
		if got := m.VertexCountAtDepth(c.depth); got != c.v {
			t.Errorf("VertexCountAtDepth(%d) = %d, want %d", c.depth, got, c.v)
		}
		if got := m.EdgeCountAtDepth(c.depth); got != c.e {
			t.Errorf("EdgeCountAtDepth(%d) = %d, want %d", c.depth, got, c.e)
		}
		if got := m.FaceCountAtDepth(c.depth); got != c.f {
			t.Errorf("FaceCountAtDepth(%d) = %d, want %d", c.depth, got, c.f)
		}
		if got := m.HalfedgeCountAtDepth(c.depth); got != c.h {
			t.Errorf("HalfedgeCountAtDepth(%d) = %d, want %d", c.depth, got, c.h)
		}
	}
}
