package scene

import (
	"github.com/Faultbox/midgard-batch/internal/engine/geom"
	"github.com/Faultbox/midgard-batch/pkg/math"
)

// quad appends two counter-clockwise triangles for corners a b c d given
// in order around the face.
func quad(dst []geom.Vertex, a, b, c, d math.Vec3) []geom.Vertex {
	n := b.Sub(a).Cross(c.Sub(a)).Normalize()
	uv := [4]math.Vec2{{X: 0, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 0}, {X: 0, Y: 0}}
	v := func(p math.Vec3, i int) geom.Vertex {
		return geom.Vertex{Pos: p, Normal: n, UV: uv[i], UV2: uv[i]}
	}
	return append(dst,
		v(a, 0), v(b, 1), v(c, 2),
		v(a, 0), v(c, 2), v(d, 3),
	)
}

// box returns the 12 triangles of an axis-aligned box standing on y=0.
func box(w, h, d float32) []geom.Vertex {
	x0, x1 := -w/2, w/2
	z0, z1 := -d/2, d/2
	p := func(x, y, z float32) math.Vec3 { return math.Vec3{X: x, Y: y, Z: z} }

	out := make([]geom.Vertex, 0, 36)
	out = quad(out, p(x0, 0, z1), p(x1, 0, z1), p(x1, h, z1), p(x0, h, z1)) // front
	out = quad(out, p(x1, 0, z0), p(x0, 0, z0), p(x0, h, z0), p(x1, h, z0)) // back
	out = quad(out, p(x1, 0, z1), p(x1, 0, z0), p(x1, h, z0), p(x1, h, z1)) // right
	out = quad(out, p(x0, 0, z0), p(x0, 0, z1), p(x0, h, z1), p(x0, h, z0)) // left
	out = quad(out, p(x0, h, z1), p(x1, h, z1), p(x1, h, z0), p(x0, h, z0)) // top
	out = quad(out, p(x0, 0, z0), p(x1, 0, z0), p(x1, 0, z1), p(x0, 0, z1)) // bottom
	return out
}

// roof returns a four-sided pyramid of height h on top of a w by d box
// of height base.
func roof(w, d, base, h float32) []geom.Vertex {
	x0, x1 := -w/2, w/2
	z0, z1 := -d/2, d/2
	apex := math.Vec3{Y: base + h}
	c := [4]math.Vec3{
		{X: x0, Y: base, Z: z1},
		{X: x1, Y: base, Z: z1},
		{X: x1, Y: base, Z: z0},
		{X: x0, Y: base, Z: z0},
	}
	out := make([]geom.Vertex, 0, 12)
	for i := range c {
		a, b := c[i], c[(i+1)%4]
		n := b.Sub(a).Cross(apex.Sub(a)).Normalize()
		out = append(out,
			geom.Vertex{Pos: a, Normal: n, UV: math.Vec2{X: 0, Y: 1}},
			geom.Vertex{Pos: b, Normal: n, UV: math.Vec2{X: 1, Y: 1}},
			geom.Vertex{Pos: apex, Normal: n, UV: math.Vec2{X: 0.5}},
		)
	}
	return out
}

// billboard returns two crossed upright quads, the usual far stand-in for
// a prop. Normals are left zero so the quads are unlit.
func billboard(w, h float32) []geom.Vertex {
	p := func(x, y, z float32) math.Vec3 { return math.Vec3{X: x, Y: y, Z: z} }
	out := make([]geom.Vertex, 0, 12)
	out = quad(out, p(-w/2, 0, 0), p(w/2, 0, 0), p(w/2, h, 0), p(-w/2, h, 0))
	out = quad(out, p(0, 0, w/2), p(0, 0, -w/2), p(0, h, -w/2), p(0, h, w/2))
	for i := range out {
		out[i].Normal = math.Vec3{}
	}
	return out
}
