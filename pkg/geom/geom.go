// Package geom provides the scalar helpers and fixed-point UV codec shared
// by the subdivision kernels. Vector and matrix types come from mgl32.
package geom

import "github.com/go-gl/mathgl/mgl32"

// Lerp returns a + (b-a)*t.
func Lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

// Lerp2 interpolates component-wise between two UV pairs.
func Lerp2(a, b mgl32.Vec2, t float32) mgl32.Vec2 {
	return mgl32.Vec2{
		Lerp(a[0], b[0], t),
		Lerp(a[1], b[1], t),
	}
}

// Lerp3 interpolates component-wise between two points.
func Lerp3(a, b mgl32.Vec3, t float32) mgl32.Vec3 {
	return mgl32.Vec3{
		Lerp(a[0], b[0], t),
		Lerp(a[1], b[1], t),
		Lerp(a[2], b[2], t),
	}
}

// Saturate clamps x to [0, 1].
func Saturate(x float32) float32 {
	return mgl32.Clamp(x, 0, 1)
}

// Sign returns -1, 0 or 1 matching the sign of x.
func Sign(x float32) float32 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}
