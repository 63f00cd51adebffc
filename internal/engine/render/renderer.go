package render

import (
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-batch/internal/engine/camera"
	"github.com/Faultbox/midgard-batch/internal/engine/geom"
	"github.com/Faultbox/midgard-batch/internal/engine/records"
	"github.com/Faultbox/midgard-batch/internal/logger"
)

// TransparentState is applied to every batch of a transparent object.
const TransparentState = geom.StateTTextureBlack | geom.StateTwoFace

// Options tunes the traversal.
type Options struct {
	// Culling enables the bounding sphere frustum test.
	Culling bool
}

// Stats counts what one frame did.
type Stats struct {
	DrawCalls     int `yaml:"draw_calls"`
	Triangles     int `yaml:"triangles"`
	TextureBinds  int `yaml:"texture_binds"`
	MaterialBinds int `yaml:"material_binds"`
	StateBinds    int `yaml:"state_binds"`
	WorldBinds    int `yaml:"world_binds"`
	ObjectsDrawn  int `yaml:"objects_drawn"`
	ObjectsCulled int `yaml:"objects_culled"`
}

// Add accumulates o into s.
func (s *Stats) Add(o Stats) {
	s.DrawCalls += o.DrawCalls
	s.Triangles += o.Triangles
	s.TextureBinds += o.TextureBinds
	s.MaterialBinds += o.MaterialBinds
	s.StateBinds += o.StateBinds
	s.WorldBinds += o.WorldBinds
	s.ObjectsDrawn += o.ObjectsDrawn
	s.ObjectsCulled += o.ObjectsCulled
}

type pass uint8

const (
	passTerrain pass = iota
	passOpaque
	passTransparent
	passFront
)

// Renderer drives a Device from the geometry index and record table.
// Distances in the table must be current before Frame is called.
type Renderer struct {
	cache *StateCache
	opts  Options
	log   *zap.Logger

	// drawn stamps ranks drawn in the current frame so that an object
	// spread over several textures is counted once.
	drawn []uint32
	frame uint32
	stats Stats
}

// New creates a renderer over dev.
func New(dev Device, opts Options) *Renderer {
	return &Renderer{
		cache: NewStateCache(dev),
		opts:  opts,
		log:   logger.Named("render"),
	}
}

// Device returns the wrapped device.
func (r *Renderer) Device() Device {
	return r.cache.Device()
}

// SetCulling toggles the frustum test.
func (r *Renderer) SetCulling(on bool) {
	r.opts.Culling = on
	r.log.Debug("culling changed", zap.Bool("enabled", on))
}

// Frame draws the world: terrain first, then opaque objects, then
// transparent objects, each in tree order. Objects that are hidden, not
// DrawWorld or outside the frustum are skipped, and an LOD bucket is used
// only when its range contains the object's distance.
func (r *Renderer) Frame(tree *geom.Tree, table *records.Table, view *camera.View) Stats {
	r.begin(table)
	r.cull(table, view)

	r.pass(tree, table, passTerrain)
	r.pass(tree, table, passOpaque)
	r.pass(tree, table, passTransparent)

	return r.end()
}

// FrameFront draws objects flagged DrawFront, meant to run after the UI.
func (r *Renderer) FrameFront(tree *geom.Tree, table *records.Table, view *camera.View) Stats {
	r.begin(table)
	r.cull(table, view)
	r.pass(tree, table, passFront)
	return r.end()
}

func (r *Renderer) begin(table *records.Table) {
	if n := table.Capacity(); len(r.drawn) < n {
		r.drawn = make([]uint32, n)
	}
	r.frame++
	if r.frame == 0 {
		clear(r.drawn)
		r.frame = 1
	}
	r.stats = Stats{}
	r.cache.ResetCounters()
	r.cache.Invalidate()
}

func (r *Renderer) end() Stats {
	s := r.stats
	s.DrawCalls = r.cache.DrawCalls
	s.Triangles = r.cache.Triangles
	s.TextureBinds = r.cache.TextureBinds
	s.MaterialBinds = r.cache.MaterialBinds
	s.StateBinds = r.cache.StateBinds
	s.WorldBinds = r.cache.WorldBinds
	return s
}

// cull refreshes the Visible flag of every record from its bounding
// sphere: the transformed origin with the radius scaled by the largest
// axis scale.
func (r *Renderer) cull(table *records.Table, view *camera.View) {
	f := view.Frustum()
	table.Each(func(_ int, rec *records.Record) {
		visible := true
		if r.opts.Culling {
			center := rec.Transform.Translation()
			radius := rec.Radius * rec.Transform.MaxScale()
			visible = f.SphereVisible(center, radius)
		}
		rec.Set(records.Visible, visible)
		if !visible && !rec.Has(records.Hidden) {
			r.stats.ObjectsCulled++
		}
	})
}

func accepts(p pass, rec *records.Record) bool {
	if !rec.Used || rec.Has(records.Hidden) || !rec.Has(records.Visible) {
		return false
	}
	switch p {
	case passTerrain:
		return rec.Has(records.DrawWorld) && rec.Type == records.TypeTerrain
	case passOpaque:
		return rec.Has(records.DrawWorld) && rec.Type != records.TypeTerrain && !rec.Transparent()
	case passTransparent:
		return rec.Has(records.DrawWorld) && rec.Type != records.TypeTerrain && rec.Transparent()
	case passFront:
		return rec.Has(records.DrawFront)
	}
	return false
}

func (r *Renderer) pass(tree *geom.Tree, table *records.Table, p pass) {
	var (
		tex      geom.TexturePair
		texBound bool
		rec      *records.Record
		worldSet bool
	)

	tree.Walk(geom.Walker{
		Texture: func(t geom.TexturePair) bool {
			tex, texBound = t, false
			return true
		},
		Object: func(rank int) bool {
			got, err := table.Get(rank)
			if err != nil {
				// Geometry for a rank without a record is never drawn.
				return false
			}
			if !accepts(p, got) {
				return false
			}
			rec, worldSet = got, false
			return true
		},
		LOD: func(_ int, lod geom.LODRange) bool {
			return lod.Contains(rec.Distance)
		},
		Batch: func(rank int, _ geom.BatchID, b *geom.Batch) bool {
			if !texBound {
				r.cache.BindTexture(0, tex.Name1)
				r.cache.BindTexture(1, tex.Name2)
				texBound = true
			}
			if !worldSet {
				r.cache.SetWorld(rec.Transform)
				worldSet = true
			}
			r.cache.SetMaterial(b.Material)
			if p == passTransparent {
				r.cache.SetState(TransparentState, rec.Transparency)
			} else {
				r.cache.SetState(b.State, 0)
			}
			r.cache.Draw(b)

			if r.drawn[rank] != r.frame {
				r.drawn[rank] = r.frame
				r.stats.ObjectsDrawn++
			}
			return true
		},
	})
}
