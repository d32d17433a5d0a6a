package viewer

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/meshkit/subdiv/pkg/cage"
	"github.com/meshkit/subdiv/pkg/subd"
)

func buildQuad(t *testing.T) *cage.Mesh {
	t.Helper()
	b := cage.NewBuilder()
	b.AddVertex(mgl32.Vec3{0, 0, 0})
	b.AddVertex(mgl32.Vec3{1, 0, 0})
	b.AddVertex(mgl32.Vec3{1, 1, 0})
	b.AddVertex(mgl32.Vec3{0, 1, 0})
	if err := b.AddFace([]int32{0, 1, 2, 3}, nil); err != nil {
		t.Fatalf("AddFace failed: %v", err)
	}
	m, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return m
}

// segmentKey orders the endpoints so direction does not matter.
func segmentKey(lines []float32, i int) [6]float32 {
	a := [3]float32{lines[i], lines[i+1], lines[i+2]}
	b := [3]float32{lines[i+3], lines[i+4], lines[i+5]}
	if b[0] < a[0] || (b[0] == a[0] && (b[1] < a[1] || (b[1] == a[1] && b[2] < a[2]))) {
		a, b = b, a
	}
	return [6]float32{a[0], a[1], a[2], b[0], b[1], b[2]}
}

func TestCageLines(t *testing.T) {
	m := buildQuad(t)
	lines := CageLines(m)

	if len(lines) != 24 {
		t.Fatalf("expected 24 floats (4 edges), got %d", len(lines))
	}

	got := make(map[[6]float32]bool)
	for i := 0; i < len(lines); i += 6 {
		got[segmentKey(lines, i)] = true
	}
	want := [][6]float32{
		{0, 0, 0, 1, 0, 0},
		{1, 0, 0, 1, 1, 0},
		{0, 1, 0, 1, 1, 0},
		{0, 0, 0, 0, 1, 0},
	}
	for _, seg := range want {
		if !got[seg] {
			t.Errorf("missing edge segment %v", seg)
		}
	}
}

func TestLevelLines(t *testing.T) {
	m := buildQuad(t)
	s := subd.New(m, 2)
	s.Refine()

	for depth := int32(1); depth <= 2; depth++ {
		lines := LevelLines(s, depth)
		wantSegments := int(m.EdgeCountAtDepth(depth))
		if len(lines) != wantSegments*6 {
			t.Errorf("depth %d: expected %d segments, got %d floats", depth, wantSegments, len(lines))
		}
		for i := 0; i < len(lines); i += 6 {
			p0 := mgl32.Vec3{lines[i], lines[i+1], lines[i+2]}
			p1 := mgl32.Vec3{lines[i+3], lines[i+4], lines[i+5]}
			if p0.Sub(p1).Len() < 1e-7 {
				t.Errorf("depth %d: degenerate segment at %d", depth, i/6)
			}
		}
	}
}

func TestLevelLinesDepthZeroIsCage(t *testing.T) {
	m := buildQuad(t)
	s := subd.New(m, 1)
	s.Refine()

	cageLines := CageLines(m)
	levelLines := LevelLines(s, 0)
	if len(cageLines) != len(levelLines) {
		t.Fatalf("expected identical lengths, got %d and %d", len(cageLines), len(levelLines))
	}
	for i := range cageLines {
		if cageLines[i] != levelLines[i] {
			t.Fatalf("segment data diverges at %d", i)
		}
	}
}

func TestMeshBounds(t *testing.T) {
	m := buildQuad(t)
	lo, hi := MeshBounds(m)

	if lo != (mgl32.Vec3{0, 0, 0}) {
		t.Errorf("lo = %v, want origin", lo)
	}
	if hi != (mgl32.Vec3{1, 1, 0}) {
		t.Errorf("hi = %v, want (1,1,0)", hi)
	}
}
