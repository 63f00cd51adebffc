package picking

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/midgard-batch/pkg/math"
)

// Rect is a screen-space rectangle in normalized coordinates.
type Rect struct {
	Min math.Vec2
	Max math.Vec2
}

// EmptyRect returns a rectangle that contains nothing until extended.
func EmptyRect() Rect {
	return Rect{
		Min: math.Vec2{X: math32.MaxFloat32, Y: math32.MaxFloat32},
		Max: math.Vec2{X: -math32.MaxFloat32, Y: -math32.MaxFloat32},
	}
}

// Extend grows r to include p.
func (r *Rect) Extend(p math.Vec2) {
	r.Min.X = math32.Min(r.Min.X, p.X)
	r.Min.Y = math32.Min(r.Min.Y, p.Y)
	r.Max.X = math32.Max(r.Max.X, p.X)
	r.Max.Y = math32.Max(r.Max.Y, p.Y)
}

// Empty reports whether nothing was added.
func (r Rect) Empty() bool {
	return r.Min.X > r.Max.X || r.Min.Y > r.Max.Y
}

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p math.Vec2) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// PointInTriangle reports whether p lies inside triangle abc or on its
// edges, for either winding.
func PointInTriangle(a, b, c, p math.Vec2) bool {
	// Cheap reject on the triangle's bounding rectangle.
	if p.X < a.X && p.X < b.X && p.X < c.X {
		return false
	}
	if p.X > a.X && p.X > b.X && p.X > c.X {
		return false
	}
	if p.Y < a.Y && p.Y < b.Y && p.Y < c.Y {
		return false
	}
	if p.Y > a.Y && p.Y > b.Y && p.Y > c.Y {
		return false
	}

	d1 := b.Sub(a).Cross(p.Sub(a))
	d2 := c.Sub(b).Cross(p.Sub(b))
	d3 := a.Sub(c).Cross(p.Sub(c))
	neg := d1 < 0 || d2 < 0 || d3 < 0
	pos := d1 > 0 || d2 > 0 || d3 > 0
	return !(neg && pos)
}
