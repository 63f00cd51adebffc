package engine

import (
	"github.com/Faultbox/midgard-batch/internal/engine/records"
	"github.com/Faultbox/midgard-batch/internal/engine/render"
)

// Render draws one frame: pending bounds are recomputed, distances
// refreshed, the world passes drawn, the highlighted object outlined and
// the front pass drawn last.
func (e *Engine) Render() render.Stats {
	e.Update()
	e.ComputeDistances()

	e.dev.Begin()
	stats := e.renderer.Frame(e.tree, e.table, e.view)
	e.drawHighlight()
	front := e.renderer.FrameFront(e.tree, e.table, e.view)
	// Culling ran twice over the same records.
	front.ObjectsCulled = 0
	stats.Add(front)
	e.dev.End()
	return stats
}

func (e *Engine) drawHighlight() {
	if e.highlight < 0 {
		return
	}
	boxes, ok := e.dev.(render.BoxDrawer)
	if !ok {
		return
	}
	rec, err := e.table.Get(e.highlight)
	if err != nil || rec.Has(records.Hidden) {
		return
	}
	boxes.DrawBox(rec.Transform, rec.BBoxMin, rec.BBoxMax, e.highlightColor)
}
