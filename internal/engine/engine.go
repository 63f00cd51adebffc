// Package engine is the scene context: it owns the geometry index, the
// object record table, the view and the renderer, and exposes the
// operations game code uses to build, move, draw and pick objects.
//
// An Engine is single-threaded. Every method must be called from the
// goroutine that runs the frame loop.
package engine

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-batch/internal/config"
	"github.com/Faultbox/midgard-batch/internal/engine/camera"
	"github.com/Faultbox/midgard-batch/internal/engine/geom"
	"github.com/Faultbox/midgard-batch/internal/engine/records"
	"github.com/Faultbox/midgard-batch/internal/engine/render"
	"github.com/Faultbox/midgard-batch/internal/logger"
	"github.com/Faultbox/midgard-batch/pkg/math"
)

// Engine ties the geometry index to the per-object records and draws them.
type Engine struct {
	tree     *geom.Tree
	table    *records.Table
	view     *camera.View
	renderer *render.Renderer
	dev      render.Device
	log      *zap.Logger

	lod       lodState
	detail    DetailMode
	compactAt int

	// updateBounds is set by insertions that asked for a deferred bbox
	// recompute; Update clears it.
	updateBounds bool

	highlight      int
	highlightColor geom.Color
}

// New creates an engine from cfg drawing to dev. A nil cfg uses the
// defaults.
func New(cfg *config.Config, dev render.Device) *Engine {
	if cfg == nil {
		cfg = config.Default()
	}
	g := cfg.Engine.Growth
	e := &Engine{
		tree: geom.NewTree(geom.Options{
			CategoryStep: g.Category,
			TextureStep:  g.Texture,
			ObjectStep:   g.Object,
			LODStep:      g.LOD,
			LayerStep:    g.Layer,
			BatchStep:    g.Batch,
			VertexStep:   g.Vertex,
			MaxVertices:  cfg.Engine.MaxVertices,
		}),
		table: records.NewTable(cfg.Engine.MaxObjects, cfg.Engine.MaxShadows),
		view: camera.NewView(cfg.Window.Width, cfg.Window.Height,
			cfg.Render.FovDegrees, cfg.Render.NearPlane, cfg.Render.FarPlane),
		renderer:       render.New(dev, render.Options{Culling: cfg.Render.Culling}),
		dev:            dev,
		log:            logger.Named("engine"),
		compactAt:      cfg.Engine.CompactThreshold,
		highlight:      -1,
		highlightColor: geom.Color{R: 1, G: 1, A: 1},
	}
	e.lod = newLODState(cfg, e.view.Width)

	e.log.Info("engine created",
		zap.Int("max_objects", cfg.Engine.MaxObjects),
		zap.Int("max_shadows", cfg.Engine.MaxShadows),
		zap.Int("width", e.view.Width),
		zap.Int("height", e.view.Height))
	return e
}

// ApplyConfig takes new LOD, projection and culling settings from cfg and
// remaps existing LOD bands. Capacities and growth steps are fixed at New.
func (e *Engine) ApplyConfig(cfg *config.Config) {
	e.view.SetProjection(cfg.Render.FovDegrees, cfg.Render.NearPlane, cfg.Render.FarPlane)
	e.renderer.SetCulling(cfg.Render.Culling)
	e.compactAt = cfg.Engine.CompactThreshold

	e.lod.limit = [2]float32{cfg.LOD.Near, cfg.LOD.Far}
	e.lod.terrainVision = cfg.LOD.TerrainVision
	e.lod.objectDetail = cfg.LOD.ObjectDetail
	e.lod.clipping = cfg.Render.ClippingDistance
	if cfg.LOD.ReferenceWidth > 0 {
		e.lod.referenceWidth = float32(cfg.LOD.ReferenceWidth)
	}
	n := e.ChangeLOD()
	e.log.Info("config applied", zap.Int("lod_ranges_moved", n))
}

// Tree returns the geometry index.
func (e *Engine) Tree() *geom.Tree { return e.tree }

// Table returns the object record table.
func (e *Engine) Table() *records.Table { return e.table }

// View returns the camera view.
func (e *Engine) View() *camera.View { return e.view }

// Renderer returns the frame renderer.
func (e *Engine) Renderer() *render.Renderer { return e.renderer }

// SetViewParams moves the eye.
func (e *Engine) SetViewParams(eye, lookAt, up math.Vec3) {
	e.view.SetViewParams(eye, lookAt, up)
}

// SetViewport changes the viewport. LOD limits scale with the width, so
// callers usually follow with ChangeLOD.
func (e *Engine) SetViewport(width, height int) {
	e.view.SetViewport(width, height)
	e.lod.width = float32(e.view.Width)
}

// CreateObject claims an object slot. The new object has no geometry.
func (e *Engine) CreateObject() (int, error) {
	rank, err := e.table.Create()
	if err != nil {
		return -1, err
	}
	e.log.Debug("object created", zap.Int("rank", rank))
	return rank, nil
}

// DeleteObject discards rank's geometry, record and shadow. The slot can
// be reused by the next CreateObject.
func (e *Engine) DeleteObject(rank int) error {
	if err := e.table.Release(rank); err != nil {
		return err
	}
	freed := e.tree.DeleteObject(rank)
	if e.highlight == rank {
		e.highlight = -1
	}
	e.log.Debug("object deleted", zap.Int("rank", rank), zap.Int("batches", freed))

	if e.compactAt > 0 && e.tree.Tombstones() >= e.compactAt {
		e.tree.Compact()
	}
	return nil
}

// FlushObjects deletes every object.
func (e *Engine) FlushObjects() {
	e.tree.Flush()
	e.table.Flush()
	e.highlight = -1
	e.updateBounds = false
	e.log.Debug("objects flushed")
}

// RemainingObjects returns how many objects may still be created, keeping
// a small reserve so callers can fail gracefully before the table is full.
func (e *Engine) RemainingObjects() int {
	return e.table.Remaining()
}

func (e *Engine) record(rank int) (*records.Record, error) {
	rec, err := e.table.Get(rank)
	if err != nil {
		return nil, fmt.Errorf("object %d: %w", rank, err)
	}
	return rec, nil
}

// SetObjectTransform sets rank's world matrix.
func (e *Engine) SetObjectTransform(rank int, m math.Mat4) error {
	rec, err := e.record(rank)
	if err != nil {
		return err
	}
	rec.Transform = m
	return nil
}

// ObjectTransform returns rank's world matrix.
func (e *Engine) ObjectTransform(rank int) (math.Mat4, error) {
	rec, err := e.record(rank)
	if err != nil {
		return math.Mat4{}, err
	}
	return rec.Transform, nil
}

// SetObjectType sets rank's type. Terrain draws first and is never picked.
func (e *Engine) SetObjectType(rank int, t records.ObjectType) error {
	rec, err := e.record(rank)
	if err != nil {
		return err
	}
	rec.Type = t
	return nil
}

// ObjectType returns rank's type.
func (e *Engine) ObjectType(rank int) (records.ObjectType, error) {
	rec, err := e.record(rank)
	if err != nil {
		return records.TypeNull, err
	}
	return rec.Type, nil
}

func (e *Engine) setFlag(rank int, f records.Flags, on bool) error {
	rec, err := e.record(rank)
	if err != nil {
		return err
	}
	rec.Set(f, on)
	return nil
}

// SetObjectHide hides or shows rank.
func (e *Engine) SetObjectHide(rank int, hide bool) error {
	return e.setFlag(rank, records.Hidden, hide)
}

// SetObjectDetect makes rank a picking candidate or not.
func (e *Engine) SetObjectDetect(rank int, detect bool) error {
	return e.setFlag(rank, records.Detectable, detect)
}

// SetDrawWorld puts rank in the world pass.
func (e *Engine) SetDrawWorld(rank int, on bool) error {
	return e.setFlag(rank, records.DrawWorld, on)
}

// SetDrawFront puts rank in the front pass drawn over the UI.
func (e *Engine) SetDrawFront(rank int, on bool) error {
	return e.setFlag(rank, records.DrawFront, on)
}

// SetObjectTransparency sets rank's transparency. Any value above zero
// moves the object to the transparent pass.
func (e *Engine) SetObjectTransparency(rank int, value float32) error {
	rec, err := e.record(rank)
	if err != nil {
		return err
	}
	rec.Transparency = value
	return nil
}

// BBox returns rank's object-space bounding box. It always contains the
// local origin.
func (e *Engine) BBox(rank int) (lo, hi math.Vec3, err error) {
	rec, err := e.record(rank)
	if err != nil {
		return lo, hi, err
	}
	return rec.BBoxMin, rec.BBoxMax, nil
}

// TotalTriangles returns how many triangles were added for rank.
func (e *Engine) TotalTriangles(rank int) (int, error) {
	rec, err := e.record(rank)
	if err != nil {
		return 0, err
	}
	return rec.Triangles, nil
}

// CreateShadow links a shadow slot to rank, reusing an existing one.
func (e *Engine) CreateShadow(rank int) (*records.Shadow, error) {
	return e.table.CreateShadow(rank)
}

// DeleteShadow frees rank's shadow slot.
func (e *Engine) DeleteShadow(rank int) error {
	return e.table.DeleteShadow(rank)
}

// Shadow returns the shadow linked to rank.
func (e *Engine) Shadow(rank int) (*records.Shadow, error) {
	return e.table.Shadow(rank)
}

// SetHighlight outlines rank's bounding box each frame on devices that
// can draw boxes. A negative rank clears it.
func (e *Engine) SetHighlight(rank int) {
	if rank >= 0 && !e.table.Used(rank) {
		rank = -1
	}
	e.highlight = rank
}

// Highlight returns the highlighted rank or -1.
func (e *Engine) Highlight() int {
	return e.highlight
}
