// Package render walks the geometry index once per frame and turns it
// into device calls, binding each texture, material and state only when
// it changes.
package render

import (
	"github.com/Faultbox/midgard-batch/internal/engine/geom"
	"github.com/Faultbox/midgard-batch/pkg/math"
)

// Device is the graphics backend the traversal drives.
type Device interface {
	// Begin starts a frame with no texture bound.
	Begin()
	End()
	SetWorld(m math.Mat4)
	// BindTexture binds name on stage 0 (primary) or 1 (second). An
	// empty name unbinds the stage.
	BindTexture(stage int, name string)
	SetMaterial(m geom.Material)
	// SetState applies blend state flags. transparency is the object's
	// transparency, used by the transparent pass.
	SetState(s geom.State, transparency float32)
	Draw(b *geom.Batch)
}

// BoxDrawer is implemented by devices that can outline a bounding box,
// used to highlight the picked object.
type BoxDrawer interface {
	DrawBox(world math.Mat4, lo, hi math.Vec3, color geom.Color)
}

// Op identifies a recorded device call.
type Op uint8

const (
	OpBegin Op = iota
	OpEnd
	OpWorld
	OpTexture
	OpMaterial
	OpState
	OpDraw
	OpBox
)

var opNames = [...]string{"begin", "end", "world", "texture", "material", "state", "draw", "box"}

func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return "unknown"
}

// Call is one recorded device call. Only the fields relevant to Op are
// set.
type Call struct {
	Op           Op
	Stage        int
	Texture      string
	Material     geom.Material
	State        geom.State
	Transparency float32
	World        math.Mat4
	Kind         geom.PrimitiveKind
	Vertices     int
	Triangles    int
}

// Recorder is a Device that records every call. It backs the headless
// stats tool and the tests.
type Recorder struct {
	Calls []Call
}

var (
	_ Device    = (*Recorder)(nil)
	_ BoxDrawer = (*Recorder)(nil)
)

func (r *Recorder) Begin() { r.Calls = append(r.Calls, Call{Op: OpBegin}) }
func (r *Recorder) End()   { r.Calls = append(r.Calls, Call{Op: OpEnd}) }

func (r *Recorder) SetWorld(m math.Mat4) {
	r.Calls = append(r.Calls, Call{Op: OpWorld, World: m})
}

func (r *Recorder) BindTexture(stage int, name string) {
	r.Calls = append(r.Calls, Call{Op: OpTexture, Stage: stage, Texture: name})
}

func (r *Recorder) SetMaterial(m geom.Material) {
	r.Calls = append(r.Calls, Call{Op: OpMaterial, Material: m})
}

func (r *Recorder) SetState(s geom.State, transparency float32) {
	r.Calls = append(r.Calls, Call{Op: OpState, State: s, Transparency: transparency})
}

func (r *Recorder) Draw(b *geom.Batch) {
	r.Calls = append(r.Calls, Call{
		Op:        OpDraw,
		Kind:      b.Kind,
		Material:  b.Material,
		State:     b.State,
		Vertices:  len(b.Vertices),
		Triangles: b.Triangles(),
	})
}

func (r *Recorder) DrawBox(world math.Mat4, _, _ math.Vec3, _ geom.Color) {
	r.Calls = append(r.Calls, Call{Op: OpBox, World: world})
}

// Count returns how many calls of op were recorded.
func (r *Recorder) Count(op Op) int {
	n := 0
	for _, c := range r.Calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Filter returns the recorded calls of op in order.
func (r *Recorder) Filter(op Op) []Call {
	var out []Call
	for _, c := range r.Calls {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// Reset drops all recorded calls and keeps the buffer.
func (r *Recorder) Reset() {
	r.Calls = r.Calls[:0]
}
