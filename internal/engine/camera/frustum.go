package camera

import (
	"github.com/Faultbox/midgard-batch/pkg/math"
)

// Plane is ax + by + cz + d = 0 with the positive half-space inside.
type Plane struct {
	Normal   math.Vec3
	Distance float32
}

// Signed returns the signed distance from p to the plane.
func (p Plane) Signed(v math.Vec3) float32 {
	return p.Normal.Dot(v) + p.Distance
}

// Frustum holds the six view planes: left, right, bottom, top, near, far.
type Frustum struct {
	Planes [6]Plane
}

const (
	FrustumLeft = iota
	FrustumRight
	FrustumBottom
	FrustumTop
	FrustumNear
	FrustumFar
)

// FrustumFromMatrix extracts normalized planes from a column-major
// view-projection matrix (Gribb/Hartmann).
func FrustumFromMatrix(m math.Mat4) Frustum {
	row := func(i int) [4]float32 {
		return [4]float32{m[i], m[4+i], m[8+i], m[12+i]}
	}
	r0, r1, r2, r3 := row(0), row(1), row(2), row(3)

	combine := func(a, b [4]float32, sign float32) Plane {
		p := Plane{
			Normal:   math.Vec3{X: a[0] + sign*b[0], Y: a[1] + sign*b[1], Z: a[2] + sign*b[2]},
			Distance: a[3] + sign*b[3],
		}
		if l := p.Normal.Length(); l > 0 {
			p.Normal = p.Normal.Scale(1 / l)
			p.Distance /= l
		}
		return p
	}

	var f Frustum
	f.Planes[FrustumLeft] = combine(r3, r0, 1)
	f.Planes[FrustumRight] = combine(r3, r0, -1)
	f.Planes[FrustumBottom] = combine(r3, r1, 1)
	f.Planes[FrustumTop] = combine(r3, r1, -1)
	f.Planes[FrustumNear] = combine(r3, r2, 1)
	f.Planes[FrustumFar] = combine(r3, r2, -1)
	return f
}

// SphereVisible reports whether any part of the sphere is inside. A sphere
// is rejected only when it lies wholly outside one plane.
func (f *Frustum) SphereVisible(center math.Vec3, radius float32) bool {
	for _, p := range f.Planes {
		if p.Signed(center) < -radius {
			return false
		}
	}
	return true
}

// PointInside reports whether p is inside every plane.
func (f *Frustum) PointInside(p math.Vec3) bool {
	return f.SphereVisible(p, 0)
}
