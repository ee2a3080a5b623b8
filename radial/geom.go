package radial

import (
	"github.com/arl/gogeo/f32/d3"
	"github.com/arl/math32"
)

// triArea2D is the signed xz-plane area of triangle abc.
//
// Grounded on detour/common.go:TriArea2D.
func triArea2D(a, b, c d3.Vec3) float32 {
	abx := b[0] - a[0]
	abz := b[2] - a[2]
	acx := c[0] - a[0]
	acz := c[2] - a[2]
	return acx*abz - abx*acz
}

func sub2D(a, b d3.Vec3) (float32, float32) { return a[0] - b[0], a[2] - b[2] }

func dist2D(a, b d3.Vec3) float32 {
	dx, dz := sub2D(a, b)
	return math32.Sqrt(dx*dx + dz*dz)
}

func approxEqual(a, b d3.Vec3) bool {
	return dist2D(a, b) < LinkDist
}

func add(a, b d3.Vec3) d3.Vec3 { return d3.Vec3{a[0] + b[0], a[1] + b[1], a[2] + b[2]} }

func scale(a d3.Vec3, s float32) d3.Vec3 { return d3.Vec3{a[0] * s, a[1] * s, a[2] * s} }

func isZero2D(v d3.Vec3) bool { return v[0] == 0 && v[2] == 0 }

func normalize2D(v d3.Vec3) d3.Vec3 {
	d := math32.Sqrt(v[0]*v[0] + v[2]*v[2])
	if d < 1e-8 {
		return d3.Vec3{0, 0, 0}
	}
	return d3.Vec3{v[0] / d, 0, v[2] / d}
}

// intersectSegSeg2D reports whether segment ap-aq intersects bp-bq in
// the xz-plane, and the intersection parameters along each.
//
// Grounded on detour/common.go:IntersectSegSeg2D.
func intersectSegSeg2D(ap, aq, bp, bq d3.Vec3) (hit bool, s, t float32) {
	ux, uz := sub2D(aq, ap)
	vx, vz := sub2D(bq, bp)
	wx, wz := sub2D(ap, bp)

	d := ux*vz - uz*vx
	if math32.Abs(d) < 1e-6 {
		return false, 0, 0
	}
	s = (vx*wz - vz*wx) / d
	t = (ux*wz - uz*wx) / d
	return true, s, t
}

func segPoint(p, q d3.Vec3, t float32) d3.Vec3 {
	return d3.Vec3{
		p[0] + (q[0]-p[0])*t,
		p[1] + (q[1]-p[1])*t,
		p[2] + (q[2]-p[2])*t,
	}
}
