package render

import (
	"github.com/Faultbox/midgard-batch/internal/engine/geom"
	"github.com/Faultbox/midgard-batch/pkg/math"
)

// StateCache forwards to a Device and drops binds that repeat the last
// bound value. Counters record only the binds that reached the device.
type StateCache struct {
	dev Device

	tex      [2]string
	mat      geom.Material
	matValid bool
	state    geom.State
	transp   float32
	stValid  bool

	TextureBinds  int
	MaterialBinds int
	StateBinds    int
	WorldBinds    int
	DrawCalls     int
	Triangles     int
}

// NewStateCache wraps dev.
func NewStateCache(dev Device) *StateCache {
	return &StateCache{dev: dev}
}

// Device returns the wrapped device.
func (c *StateCache) Device() Device {
	return c.dev
}

// Invalidate forgets the bound material and state and assumes no texture
// is bound, which is how Device.Begin leaves the device.
func (c *StateCache) Invalidate() {
	c.tex = [2]string{}
	c.matValid = false
	c.stValid = false
}

// ResetCounters zeroes the bind counters.
func (c *StateCache) ResetCounters() {
	c.TextureBinds, c.MaterialBinds, c.StateBinds = 0, 0, 0
	c.WorldBinds, c.DrawCalls, c.Triangles = 0, 0, 0
}

// BindTexture forwards name for stage 0 or 1 unless it is already bound.
func (c *StateCache) BindTexture(stage int, name string) {
	if stage < 0 || stage > 1 {
		return
	}
	if c.tex[stage] == name {
		return
	}
	c.tex[stage] = name
	c.TextureBinds++
	c.dev.BindTexture(stage, name)
}

// SetMaterial forwards m unless it is already the current material.
func (c *StateCache) SetMaterial(m geom.Material) {
	if c.matValid && c.mat == m {
		return
	}
	c.mat, c.matValid = m, true
	c.MaterialBinds++
	c.dev.SetMaterial(m)
}

// SetState forwards the state and transparency unless both are current.
func (c *StateCache) SetState(s geom.State, transparency float32) {
	if c.stValid && c.state == s && c.transp == transparency {
		return
	}
	c.state, c.transp, c.stValid = s, transparency, true
	c.StateBinds++
	c.dev.SetState(s, transparency)
}

// SetWorld is never cached: each object sets its own transform once.
func (c *StateCache) SetWorld(m math.Mat4) {
	c.WorldBinds++
	c.dev.SetWorld(m)
}

// Draw forwards b and counts the call and its triangles.
func (c *StateCache) Draw(b *geom.Batch) {
	c.DrawCalls++
	c.Triangles += b.Triangles()
	c.dev.Draw(b)
}
