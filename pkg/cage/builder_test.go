package cage

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

// buildQuad returns the unit quad in the XY plane: one face, four vertices,
// every edge on the boundary.
func buildQuad(t *testing.T) *Mesh {
	t.Helper()
	b := NewBuilder()
	b.AddVertex(mgl32.Vec3{0, 0, 0})
	b.AddVertex(mgl32.Vec3{1, 0, 0})
	b.AddVertex(mgl32.Vec3{1, 1, 0})
	b.AddVertex(mgl32.Vec3{0, 1, 0})
	if err := b.AddFace([]int32{0, 1, 2, 3}, nil); err != nil {
		t.Fatalf("AddFace() error = %v", err)
	}
	m, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return m
}

// buildCube returns the unit cube: closed, all quads, outward winding.
func buildCube(t *testing.T) *Mesh {
	t.Helper()
	b := NewBuilder()
	for _, p := range [][3]float32{
		{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
		{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1},
	} {
		b.AddVertex(mgl32.Vec3{p[0], p[1], p[2]})
	}
	for _, f := range [][]int32{
		{0, 3, 2, 1},
		{4, 5, 6, 7},
		{0, 1, 5, 4},
		{1, 2, 6, 5},
		{2, 3, 7, 6},
		{3, 0, 4, 7},
	} {
		if err := b.AddFace(f, nil); err != nil {
			t.Fatalf("AddFace(%v) error = %v", f, err)
		}
	}
	m, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return m
}

func TestBuildQuadCounts(t *testing.T) {
	m := buildQuad(t)
	if got := m.VertexCount(); got != 4 {
		t.Errorf("VertexCount() = %d, want 4", got)
	}
	if got := m.HalfedgeCount(); got != 4 {
		t.Errorf("HalfedgeCount() = %d, want 4", got)
	}
	if got := m.EdgeCount(); got != 4 {
		t.Errorf("EdgeCount() = %d, want 4", got)
	}
	if got := m.CreaseCount(); got != 4 {
		t.Errorf("CreaseCount() = %d, want 4", got)
	}
	if got := m.FaceCount(); got != 1 {
		t.Errorf("FaceCount() = %d, want 1", got)
	}
	for h := int32(0); h < 4; h++ {
		if got := m.HalfedgeTwinID(h); got != -1 {
			t.Errorf("HalfedgeTwinID(%d) = %d, want -1", h, got)
		}
	}
}

func TestBuildCubeCounts(t *testing.T) {
	m := buildCube(t)
	if got := m.VertexCount(); got != 8 {
		t.Errorf("VertexCount() = %d, want 8", got)
	}
	if got := m.HalfedgeCount(); got != 24 {
		t.Errorf("HalfedgeCount() = %d, want 24", got)
	}
	if got := m.EdgeCount(); got != 12 {
		t.Errorf("EdgeCount() = %d, want 12", got)
	}
	if got := m.FaceCount(); got != 6 {
		t.Errorf("FaceCount() = %d, want 6", got)
	}
}

func TestBuildEdgeMapIsLowestHalfedge(t *testing.T) {
	m := buildCube(t)
	for e := int32(0); e < m.EdgeCount(); e++ {
		h := m.EdgeToHalfedgeID(e)
		if got := m.HalfedgeEdgeID(h); got != e {
			t.Errorf("HalfedgeEdgeID(EdgeToHalfedgeID(%d)) = %d, want %d", e, got, e)
		}
		if twin := m.HalfedgeTwinID(h); twin >= 0 && twin < h {
			t.Errorf("EdgeToHalfedgeID(%d) = %d, twin %d is lower", e, h, twin)
		}
	}
}

func TestBuildFaceErrors(t *testing.T) {
	b := NewBuilder()
	if err := b.AddFace([]int32{0, 1}, nil); !errors.Is(err, ErrFaceTooSmall) {
		t.Errorf("AddFace(2 corners) error = %v, want ErrFaceTooSmall", err)
	}
	if err := b.AddFace([]int32{0, 1, 2}, []int32{0}); !errors.Is(err, ErrUvArityMismatch) {
		t.Errorf("AddFace(uv mismatch) error = %v, want ErrUvArityMismatch", err)
	}
}

func TestBuildVertexOutOfRange(t *testing.T) {
	b := NewBuilder()
	b.AddVertex(mgl32.Vec3{})
	b.AddVertex(mgl32.Vec3{})
	b.AddVertex(mgl32.Vec3{})
	if err := b.AddFace([]int32{0, 1, 7}, nil); err != nil {
		t.Fatalf("AddFace() error = %v", err)
	}
	if _, err := b.Build(); !errors.Is(err, ErrVertexOutOfRange) {
		t.Errorf("Build() error = %v, want ErrVertexOutOfRange", err)
	}
}

func TestBuildDegenerateFace(t *testing.T) {
	b := NewBuilder()
	for i := 0; i < 3; i++ {
		b.AddVertex(mgl32.Vec3{})
	}
	if err := b.AddFace([]int32{0, 1, 1, 2}, nil); err != nil {
		t.Fatalf("AddFace() error = %v", err)
	}
	if _, err := b.Build(); !errors.Is(err, ErrDegenerateFace) {
		t.Errorf("Build() error = %v, want ErrDegenerateFace", err)
	}
}

func TestBuildNonManifold(t *testing.T) {
	b := NewBuilder()
	for i := 0; i < 5; i++ {
		b.AddVertex(mgl32.Vec3{})
	}
	// three triangles around the 0-1 edge
	b.AddFace([]int32{0, 1, 2}, nil)
	b.AddFace([]int32{1, 0, 3}, nil)
	b.AddFace([]int32{0, 1, 4}, nil)
	if _, err := b.Build(); !errors.Is(err, ErrNonManifold) {
		t.Errorf("Build() error = %v, want ErrNonManifold", err)
	}
}

func TestBuildInconsistentWinding(t *testing.T) {
	b := NewBuilder()
	for i := 0; i < 4; i++ {
		b.AddVertex(mgl32.Vec3{})
	}
	// both faces traverse 0->1
	b.AddFace([]int32{0, 1, 2}, nil)
	b.AddFace([]int32{0, 1, 3}, nil)
	if _, err := b.Build(); !errors.Is(err, ErrInconsistentWinding) {
		t.Errorf("Build() error = %v, want ErrInconsistentWinding", err)
	}
}

func TestBuildSharpEdge(t *testing.T) {
	b := NewBuilder()
	b.AddVertex(mgl32.Vec3{0, 0, 0})
	b.AddVertex(mgl32.Vec3{1, 0, 0})
	b.AddVertex(mgl32.Vec3{1, 1, 0})
	b.AddVertex(mgl32.Vec3{0, 1, 0})
	b.AddFace([]int32{0, 1, 2, 3}, nil)
	if err := b.SetEdgeSharpness(1, 0, 2.5); err != nil {
		t.Fatalf("SetEdgeSharpness() error = %v", err)
	}
	m, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	e := m.HalfedgeEdgeID(0) // halfedge 0 runs 0->1
	if got := m.CreaseSharpness(e); got != 2.5 {
		t.Errorf("CreaseSharpness(%d) = %v, want 2.5", e, got)
	}
	if got := m.HalfedgeSharpness(0); got != 2.5 {
		t.Errorf("HalfedgeSharpness(0) = %v, want 2.5", got)
	}
}

func TestBuildSharpEdgeMissing(t *testing.T) {
	b := NewBuilder()
	b.AddVertex(mgl32.Vec3{})
	b.AddVertex(mgl32.Vec3{})
	b.AddVertex(mgl32.Vec3{})
	b.AddFace([]int32{0, 1, 2}, nil)
	if err := b.SetEdgeSharpness(0, 0, 1); !errors.Is(err, ErrEdgeNotFound) {
		t.Errorf("SetEdgeSharpness(0,0) error = %v, want ErrEdgeNotFound", err)
	}
	b2 := NewBuilder()
	b2.AddVertex(mgl32.Vec3{})
	b2.AddVertex(mgl32.Vec3{})
	b2.AddVertex(mgl32.Vec3{})
	b2.AddVertex(mgl32.Vec3{})
	b2.AddFace([]int32{0, 1, 2}, nil)
	b2.SetEdgeSharpness(0, 3, 1)
	if _, err := b2.Build(); !errors.Is(err, ErrEdgeNotFound) {
		t.Errorf("Build() error = %v, want ErrEdgeNotFound", err)
	}
}

func TestBuildLinkCreaseChains(t *testing.T) {
	b := NewBuilder()
	b.AddVertex(mgl32.Vec3{0, 0, 0})
	b.AddVertex(mgl32.Vec3{1, 0, 0})
	b.AddVertex(mgl32.Vec3{1, 1, 0})
	b.AddVertex(mgl32.Vec3{0, 1, 0})
	b.AddFace([]int32{0, 1, 2, 3}, nil)
	b.SetEdgeSharpness(0, 1, 3)
	b.SetEdgeSharpness(1, 2, 3)
	b.LinkCreaseChains()
	m, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	a := m.HalfedgeEdgeID(0) // 0->1
	c := m.HalfedgeEdgeID(1) // 1->2
	if !creaseLinked(m, a, c) || !creaseLinked(m, c, a) {
		t.Errorf("creases %d and %d not mutually linked: a={next %d prev %d} c={next %d prev %d}",
			a, c, m.CreaseNextID(a), m.CreasePrevID(a), m.CreaseNextID(c), m.CreasePrevID(c))
	}
	// the chain runs 0->1->2, so a feeds c
	if m.CreaseNextID(a) != c || m.CreasePrevID(c) != a {
		t.Errorf("chain not oriented: next(%d) = %d, prev(%d) = %d, want %d and %d",
			a, m.CreaseNextID(a), c, m.CreasePrevID(c), c, a)
	}
	// the two smooth edges stay self-linked
	for e := int32(0); e < m.EdgeCount(); e++ {
		if m.CreaseSharpness(e) > 0 {
			continue
		}
		if m.CreaseNextID(e) != e || m.CreasePrevID(e) != e {
			t.Errorf("smooth crease %d links = {next %d prev %d}, want self", e, m.CreaseNextID(e), m.CreasePrevID(e))
		}
	}
}

func creaseLinked(m *Mesh, a, b int32) bool {
	return m.CreaseNextID(a) == b || m.CreasePrevID(a) == b
}

func TestBuildWithUvs(t *testing.T) {
	b := NewBuilder()
	b.AddVertex(mgl32.Vec3{0, 0, 0})
	b.AddVertex(mgl32.Vec3{1, 0, 0})
	b.AddVertex(mgl32.Vec3{1, 1, 0})
	b.AddVertex(mgl32.Vec3{0, 1, 0})
	b.AddUV(mgl32.Vec2{0, 0})
	b.AddUV(mgl32.Vec2{1, 0})
	b.AddUV(mgl32.Vec2{1, 1})
	b.AddUV(mgl32.Vec2{0, 1})
	if err := b.AddFace([]int32{0, 1, 2, 3}, []int32{0, 1, 2, 3}); err != nil {
		t.Fatalf("AddFace() error = %v", err)
	}
	m, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if got := m.UvCount(); got != 4 {
		t.Errorf("UvCount() = %d, want 4", got)
	}
	if got := m.HalfedgeUvID(2); got != 2 {
		t.Errorf("HalfedgeUvID(2) = %d, want 2", got)
	}
	want := mgl32.Vec2{1, 1}
	if got := m.HalfedgeVertexUv(2); got != want {
		t.Errorf("HalfedgeVertexUv(2) = %v, want %v", got, want)
	}
}
