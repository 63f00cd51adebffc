// Package geom implements the hierarchical geometry index.
//
// Geometry is stored in a six-level tree: category, texture pair, object,
// LOD range, layer (batch set) and batch. Every level is a growable array
// scanned linearly; fan-out per level is small and the scan order is the
// render order, so lookups stay deterministic.
package geom

import (
	"github.com/Faultbox/midgard-batch/pkg/math"
)

// LODInfinity is the open upper bound used for the farthest LOD band.
const LODInfinity float32 = 1000000

// Vertex is one textured vertex with two UV sets for dual texturing.
type Vertex struct {
	Pos    math.Vec3
	Normal math.Vec3
	UV     math.Vec2
	UV2    math.Vec2
}

// Color is a linear RGBA color.
type Color struct {
	R, G, B, A float32
}

// Material is a fixed-function lighting material. Two materials match
// only if every field is equal.
type Material struct {
	Diffuse  Color
	Ambient  Color
	Specular Color
	Emissive Color
	Power    float32
}

// State is a set of blend and render state flags.
type State uint32

const (
	StateNormal State = 0
	// StateTTextureBlack makes black texels transparent.
	StateTTextureBlack State = 1 << (iota - 1)
	StateTTextureWhite
	StateTDiffuse
	StateWrap
	StateClamp
	StateLight
	StateDualBlack
	StateDualWhite
	StatePart1
	StatePart2
	StatePart3
	StatePart4
	StateTwoFace
	StateAlpha
	StateSecond
	StateFog
	StateTColorBlack
	StateTColorWhite
)

// stateDual covers the dual-texture bits, which lookups ignore.
const stateDual = StateDualBlack | StateDualWhite

// Has reports whether all bits of f are set.
func (s State) Has(f State) bool {
	return s&f == f
}

// PrimitiveKind is the vertex layout of a batch.
type PrimitiveKind uint8

const (
	// Triangles is an independent triangle list (3 vertices each).
	Triangles PrimitiveKind = iota
	// Surface is one or more triangle strips.
	Surface
)

func (k PrimitiveKind) String() string {
	switch k {
	case Triangles:
		return "triangles"
	case Surface:
		return "surface"
	default:
		return "unknown"
	}
}

// Category is the top-level index key. Categories render in ascending
// order.
type Category uint8

const (
	CategoryTriangles Category = iota
	CategorySurfaces
)

// CategoryOf returns the category geometry of the given kind is filed
// under.
func CategoryOf(kind PrimitiveKind) Category {
	if kind == Surface {
		return CategorySurfaces
	}
	return CategoryTriangles
}

// TexturePair names the primary and secondary texture. Name2 is empty when
// there is no second texture. Names compare case-sensitively.
type TexturePair struct {
	Name1 string
	Name2 string
}

// Tex is shorthand for a TexturePair.
func Tex(name1, name2 string) TexturePair {
	return TexturePair{Name1: name1, Name2: name2}
}

// LODRange is the half-open camera distance band [Min, Max).
type LODRange struct {
	Min float32
	Max float32
}

// Contains reports whether distance d falls inside the band.
func (r LODRange) Contains(d float32) bool {
	return d >= r.Min && d < r.Max
}

// Valid reports whether the band is non-empty with a non-negative start.
func (r LODRange) Valid() bool {
	// NaN fails both comparisons.
	return r.Min >= 0 && r.Max > r.Min
}

// Key locates a batch. Layer selects the batch set inside the LOD bucket;
// lower layers draw first. SearchKey matches Layer; the other lookups
// scan every layer.
type Key struct {
	Material Material
	State    State
	Texture  TexturePair
	LOD      LODRange
	Layer    uint8
}

// Triangle is one extracted triangle with its render attributes.
type Triangle struct {
	V        [3]Vertex
	Material Material
	State    State
	Texture  TexturePair
}
