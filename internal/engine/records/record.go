// Package records holds the flat per-object state table indexed by object
// rank: flags, world transform, bounds, camera distance and shadow link.
// It shares only the rank with the geometry index.
package records

import (
	"github.com/Faultbox/midgard-batch/pkg/math"
)

// Flags is the per-object switch set.
type Flags uint8

const (
	// Visible is the result of the last frustum test.
	Visible Flags = 1 << iota
	// Hidden suppresses drawing regardless of culling.
	Hidden
	// Detectable makes the object a picking candidate.
	Detectable
	// DrawWorld draws the object in the world pass, behind the UI.
	DrawWorld
	// DrawFront draws the object in the front pass, over the UI.
	DrawFront
)

// ObjectType classifies a record for pass selection and picking.
type ObjectType uint8

const (
	TypeNull ObjectType = iota
	TypeTerrain
	TypeFixed
	TypeVehicle
	TypeDescendant
	TypeQuartz
	TypeMetal
)

var typeNames = [...]string{"null", "terrain", "fixed", "vehicle", "descendant", "quartz", "metal"}

func (t ObjectType) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "unknown"
}

// Record is the non-geometric state of one object.
type Record struct {
	Used      bool
	Type      ObjectType
	Flags     Flags
	Triangles int
	Transform math.Mat4
	// Distance from the eye to the transform origin, refreshed each frame.
	Distance float32
	// BBoxMin and BBoxMax are in object space and always contain the origin.
	BBoxMin math.Vec3
	BBoxMax math.Vec3
	Radius  float32
	// Shadow is the rank in the shadow table, or -1.
	Shadow       int
	Transparency float32
}

// Has reports whether every bit of f is set.
func (r *Record) Has(f Flags) bool {
	return r.Flags&f == f
}

// Set turns the bits of f on or off.
func (r *Record) Set(f Flags, on bool) {
	if on {
		r.Flags |= f
	} else {
		r.Flags &^= f
	}
}

// Include grows the bounding box to cover p and refreshes the radius.
func (r *Record) Include(p math.Vec3) {
	r.BBoxMin = r.BBoxMin.Min(p)
	r.BBoxMax = r.BBoxMax.Max(p)
	r.Radius = max(r.BBoxMin.Length(), r.BBoxMax.Length())
}

// ResetBounds collapses the bounding box onto the origin.
func (r *Record) ResetBounds() {
	r.BBoxMin = math.Vec3{}
	r.BBoxMax = math.Vec3{}
	r.Radius = 0
}

// Transparent reports whether the object draws in the transparent pass.
func (r *Record) Transparent() bool {
	return r.Transparency > 0
}

// Drawable reports whether the world pass should consider the object.
func (r *Record) Drawable() bool {
	return r.Used && !r.Has(Hidden) && r.Has(DrawWorld)
}

func newRecord() Record {
	return Record{
		Used:      true,
		Flags:     DrawWorld | Detectable,
		Transform: math.Identity(),
		Shadow:    -1,
	}
}
