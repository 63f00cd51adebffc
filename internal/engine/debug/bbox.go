// Package debug builds line geometry for debug overlays and saves frame
// captures.
package debug

import "github.com/Faultbox/midgard-batch/pkg/math"

// BoxLineVertices is the vertex count of a box outline (12 edges x 2).
const BoxLineVertices = 24

// DefaultBoxPadding is the outline inflation used for selection boxes.
const DefaultBoxPadding = 0.1

// BoxLines returns the 12 edges of the box lo..hi as line-list positions,
// three floats per vertex.
func BoxLines(lo, hi math.Vec3) []float32 {
	c := [8]math.Vec3{
		{X: lo.X, Y: lo.Y, Z: lo.Z}, {X: hi.X, Y: lo.Y, Z: lo.Z},
		{X: hi.X, Y: lo.Y, Z: hi.Z}, {X: lo.X, Y: lo.Y, Z: hi.Z},
		{X: lo.X, Y: hi.Y, Z: lo.Z}, {X: hi.X, Y: hi.Y, Z: lo.Z},
		{X: hi.X, Y: hi.Y, Z: hi.Z}, {X: lo.X, Y: hi.Y, Z: hi.Z},
	}
	// Bottom ring, top ring, then the uprights.
	edges := [12][2]int{
		{0, 1}, {1, 2}, {2, 3}, {3, 0},
		{4, 5}, {5, 6}, {6, 7}, {7, 4},
		{0, 4}, {1, 5}, {2, 6}, {3, 7},
	}
	out := make([]float32, 0, BoxLineVertices*3)
	for _, e := range edges {
		a, b := c[e[0]], c[e[1]]
		out = append(out, a.X, a.Y, a.Z, b.X, b.Y, b.Z)
	}
	return out
}

// PaddedBoxLines is BoxLines on the box grown by pad on every side, with
// inverted corners put back in order.
func PaddedBoxLines(lo, hi math.Vec3, pad float32) []float32 {
	lo, hi = lo.Min(hi), lo.Max(hi)
	p := math.Vec3{X: pad, Y: pad, Z: pad}
	return BoxLines(lo.Sub(p), hi.Add(p))
}
