package geom

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestLerp(t *testing.T) {
	got := Lerp(2, 6, 0.25)
	want := float32(3)
	if got != want {
		t.Errorf("Lerp() = %v, want %v", got, want)
	}
}

func TestLerp3(t *testing.T) {
	a := mgl32.Vec3{0, 0, 0}
	b := mgl32.Vec3{2, 4, 8}
	got := Lerp3(a, b, 0.5)
	want := mgl32.Vec3{1, 2, 4}
	if got != want {
		t.Errorf("Lerp3() = %v, want %v", got, want)
	}
}

func TestSaturate(t *testing.T) {
	cases := []struct {
		in, want float32
	}{
		{-0.5, 0},
		{0, 0},
		{0.25, 0.25},
		{1, 1},
		{3.7, 1},
	}
	for _, c := range cases {
		if got := Saturate(c.in); got != c.want {
			t.Errorf("Saturate(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestSign(t *testing.T) {
	if got := Sign(-4); got != -1 {
		t.Errorf("Sign(-4) = %v, want -1", got)
	}
	if got := Sign(0); got != 0 {
		t.Errorf("Sign(0) = %v, want 0", got)
	}
	if got := Sign(0.01); got != 1 {
		t.Errorf("Sign(0.01) = %v, want 1", got)
	}
}

func TestUVCodecQuantizes(t *testing.T) {
	uvs := []mgl32.Vec2{
		{0, 0},
		{1, 1},
		{0.5, 0.25},
		{0.123, 0.987},
	}
	for _, uv := range uvs {
		got := DecodeUV(EncodeUV(uv))
		const step = 1.0 / 65535.0
		if mgl32.Abs(got[0]-uv[0]) > step || mgl32.Abs(got[1]-uv[1]) > step {
			t.Errorf("DecodeUV(EncodeUV(%v)) = %v, want within %v", uv, got, step)
		}
	}
}

func TestUVCodecStableOnEncodedWords(t *testing.T) {
	words := []int32{0, 0x7FFF7FFF, 0x0000FFFF, -1 /* 0xFFFFFFFF */, 0x12345678}
	for _, w := range words {
		if got := EncodeUV(DecodeUV(w)); got != w {
			t.Errorf("EncodeUV(DecodeUV(%#x)) = %#x, want %#x", w, got, w)
		}
	}
}
