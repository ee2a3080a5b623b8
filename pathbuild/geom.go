package pathbuild

import (
	"github.com/arl/gogeo/f32/d3"
	"github.com/arl/math32"
)

// triArea2D is the signed xz-plane area of triangle abc, used by the
// funnel algorithm's left/right turn tests.
//
// Grounded on detour/common.go:TriArea2D.
func triArea2D(a, b, c d3.Vec3) float32 {
	abx := b[0] - a[0]
	abz := b[2] - a[2]
	acx := c[0] - a[0]
	acz := c[2] - a[2]
	return acx*abz - abx*acz
}

func approxEqual(a, b d3.Vec3) bool {
	const eps = 1e-4
	return math32.Abs(a[0]-b[0]) < eps && math32.Abs(a[2]-b[2]) < eps
}

func dist2D(a, b d3.Vec3) float32 {
	dx, dz := a[0]-b[0], a[2]-b[2]
	return math32.Sqrt(dx*dx + dz*dz)
}

func lerp(a, b d3.Vec3, t float32) d3.Vec3 {
	return d3.Vec3{
		a[0] + (b[0]-a[0])*t,
		a[1] + (b[1]-a[1])*t,
		a[2] + (b[2]-a[2])*t,
	}
}

func midpoint(a, b d3.Vec3) d3.Vec3 {
	return lerp(a, b, 0.5)
}
