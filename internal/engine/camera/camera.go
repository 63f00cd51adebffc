// Package camera provides the engine view (eye, projection, frustum and
// world to screen projection) and the orbit camera that drives it.
package camera

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/midgard-batch/pkg/math"
)

// OrbitCamera orbits around a center point.
type OrbitCamera struct {
	Center math.Vec3

	// Spherical coordinates
	Distance  float32 // Distance from center
	RotationX float32 // Pitch (vertical angle, radians)
	RotationY float32 // Yaw (horizontal angle, radians)

	// Constraints
	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	// Sensitivity
	DragSensitivity float32
	ZoomSensitivity float32
}

// NewOrbitCamera creates a new orbit camera with default settings.
func NewOrbitCamera() *OrbitCamera {
	return &OrbitCamera{
		Distance:        60.0,
		RotationX:       0.5,
		MinDistance:     2.0,
		MaxDistance:     2000.0,
		MinPitch:        0.05,
		MaxPitch:        1.5,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
	}
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() math.Vec3 {
	sx, cx := math32.Sincos(c.RotationX)
	sy, cy := math32.Sincos(c.RotationY)
	return c.Center.Add(math.Vec3{
		X: c.Distance * cx * sy,
		Y: c.Distance * sx,
		Z: c.Distance * cx * cy,
	})
}

// Apply points v from the camera position at the center.
func (c *OrbitCamera) Apply(v *View) {
	v.SetViewParams(c.Position(), c.Center, math.Vec3{Y: 1})
}

// HandleDrag updates rotation based on mouse drag delta.
func (c *OrbitCamera) HandleDrag(deltaX, deltaY float32) {
	c.RotationY -= deltaX * c.DragSensitivity
	c.RotationX += deltaY * c.DragSensitivity
	c.RotationX = math32.Min(math32.Max(c.RotationX, c.MinPitch), c.MaxPitch)
}

// HandleZoom updates distance based on scroll wheel delta.
func (c *OrbitCamera) HandleZoom(delta float32) {
	c.Distance -= delta * c.Distance * c.ZoomSensitivity
	c.Distance = math32.Min(math32.Max(c.Distance, c.MinDistance), c.MaxDistance)
}

// HandleMovement pans the center point on the ground plane relative to
// the current yaw.
func (c *OrbitCamera) HandleMovement(forward, right, up float32) {
	// Speed scales with distance for consistent feel
	speed := c.Distance * 0.01
	sy, cy := math32.Sincos(c.RotationY)

	// Negate forward so it moves into the scene.
	c.Center.X += (-sy*forward + cy*right) * speed
	c.Center.Z += (-cy*forward - sy*right) * speed
	c.Center.Y += up * speed
}

// FitToBounds centers the camera on a box and backs off far enough to see
// all of it.
func (c *OrbitCamera) FitToBounds(lo, hi math.Vec3) {
	c.Center = lo.Add(hi).Scale(0.5)
	size := math32.Max(hi.X-lo.X, hi.Z-lo.Z)
	c.Distance = math32.Min(math32.Max(size*0.8, c.MinDistance), c.MaxDistance)
	c.RotationX = 0.6
	c.RotationY = 0
}
