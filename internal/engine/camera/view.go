package camera

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/midgard-batch/pkg/math"
)

// View is the eye, projection and viewport shared by culling, LOD
// distance and picking. Matrices are rebuilt on every setter.
type View struct {
	Eye    math.Vec3
	LookAt math.Vec3
	Up     math.Vec3

	// FovY is the vertical field of view in radians.
	FovY   float32
	Near   float32
	Far    float32
	Width  int
	Height int

	view        math.Mat4
	proj        math.Mat4
	viewProj    math.Mat4
	invViewProj math.Mat4
	frustum     Frustum
}

// NewView creates a view looking down -Z from the origin.
func NewView(width, height int, fovDegrees, near, far float32) *View {
	v := &View{
		LookAt: math.Vec3{Z: -1},
		Up:     math.Vec3{Y: 1},
		FovY:   fovDegrees * math32.Pi / 180,
		Near:   near,
		Far:    far,
		Width:  max(width, 1),
		Height: max(height, 1),
	}
	v.update()
	return v
}

// SetViewParams moves the eye.
func (v *View) SetViewParams(eye, lookAt, up math.Vec3) {
	v.Eye, v.LookAt, v.Up = eye, lookAt, up
	v.update()
}

// SetViewport changes the viewport size in pixels.
func (v *View) SetViewport(width, height int) {
	v.Width, v.Height = max(width, 1), max(height, 1)
	v.update()
}

// SetProjection changes field of view and clip planes.
func (v *View) SetProjection(fovDegrees, near, far float32) {
	v.FovY = fovDegrees * math32.Pi / 180
	v.Near, v.Far = near, far
	v.update()
}

// Aspect returns width over height.
func (v *View) Aspect() float32 {
	return float32(v.Width) / float32(v.Height)
}

func (v *View) update() {
	v.view = math.LookAt(v.Eye, v.LookAt, v.Up)
	v.proj = math.Perspective(v.FovY, v.Aspect(), v.Near, v.Far)
	v.viewProj = v.proj.Mul(v.view)
	v.invViewProj = v.viewProj.Inverse()
	v.frustum = FrustumFromMatrix(v.viewProj)
}

// ViewMatrix returns the world to eye matrix.
func (v *View) ViewMatrix() math.Mat4 { return v.view }

// Projection returns the eye to clip matrix.
func (v *View) Projection() math.Mat4 { return v.proj }

// ViewProj returns projection * view.
func (v *View) ViewProj() math.Mat4 { return v.viewProj }

// InverseViewProj returns the inverse of ViewProj, used to unproject.
func (v *View) InverseViewProj() math.Mat4 { return v.invViewProj }

// Frustum returns the world-space view frustum.
func (v *View) Frustum() *Frustum { return &v.frustum }

// Project maps a world point to normalized screen space: x and y in [0,1]
// with y up, z the eye-space depth. Points closer than the near plane are
// rejected.
func (v *View) Project(world math.Vec3) (math.Vec3, bool) {
	p := v.view.TransformPoint(world)
	depth := -p.Z
	if depth < v.Near {
		return math.Vec3{}, false
	}
	x := (p.X / depth) * v.proj[0]
	y := (p.Y / depth) * v.proj[5]
	return math.Vec3{X: (x + 1) / 2, Y: (y + 1) / 2, Z: depth}, true
}

// Normalize converts a pixel position (origin top left) into the
// normalized screen space used by Project.
func (v *View) Normalize(px, py float32) math.Vec2 {
	return math.Vec2{X: px / float32(v.Width), Y: 1 - py/float32(v.Height)}
}
