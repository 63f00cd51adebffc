package engine

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/midgard-batch/internal/engine/geom"
	"github.com/Faultbox/midgard-batch/internal/engine/picking"
	"github.com/Faultbox/midgard-batch/internal/engine/records"
	"github.com/Faultbox/midgard-batch/pkg/math"
)

// Hit is a picked triangle. Triangle is in object space. Depth is the
// mean eye-space depth of the projected triangle for screen picks and the
// distance along the ray for ray picks.
type Hit struct {
	Rank     int
	Triangle geom.Triangle
	Depth    float32
}

// DetectObject returns the object under screen point p, in normalized
// coordinates with the origin bottom left (see camera.View.Normalize).
// Terrain, hidden and non-detectable objects are skipped. Only the LOD
// band matching the object's current distance is tested, and the nearest
// triangle wins.
func (e *Engine) DetectObject(p math.Vec2) (int, bool) {
	h, ok := e.pick(p, -1)
	if !ok {
		return -1, false
	}
	return h.Rank, true
}

// DetectTriangle returns the nearest triangle of rank under screen point p.
func (e *Engine) DetectTriangle(p math.Vec2, rank int) (Hit, bool) {
	if rank < 0 {
		return Hit{Rank: -1}, false
	}
	return e.pick(p, rank)
}

func pickable(rec *records.Record) bool {
	return rec.Type != records.TypeTerrain && rec.Has(records.Detectable) && !rec.Has(records.Hidden)
}

// pick runs the two picking phases. only restricts the search to one rank
// when non-negative.
func (e *Engine) pick(p math.Vec2, only int) (Hit, bool) {
	e.Update()
	e.ComputeDistances()

	// Coarse phase: the projected bbox must contain p.
	candidates := make([]bool, e.table.Span())
	e.table.Each(func(rank int, rec *records.Record) {
		if only >= 0 && rank != only {
			return
		}
		if pickable(rec) {
			candidates[rank] = e.screenRect(rec).Contains(p)
		}
	})

	best := Hit{Rank: -1, Depth: math32.MaxFloat32}
	e.walkCandidates(candidates, func(rank int, rec *records.Record, tri geom.Triangle) {
		if d, ok := e.screenHit(rec, p, &tri); ok && d < best.Depth {
			best = Hit{Rank: rank, Triangle: tri, Depth: d}
		}
	})
	return best, best.Rank >= 0
}

// screenRect is the screen rectangle covering the projected bbox corners.
// Corners behind the eye are left out.
func (e *Engine) screenRect(rec *records.Record) picking.Rect {
	r := picking.EmptyRect()
	for _, c := range picking.Corners(rec.BBoxMin, rec.BBoxMax) {
		if s, ok := e.view.Project(rec.Transform.TransformPoint(c)); ok {
			r.Extend(s.XY())
		}
	}
	return r
}

// screenHit projects tri and tests p against it. It reports the mean
// depth of the three projected vertices.
func (e *Engine) screenHit(rec *records.Record, p math.Vec2, tri *geom.Triangle) (float32, bool) {
	var s [3]math.Vec3
	for i := range s {
		var ok bool
		s[i], ok = e.view.Project(rec.Transform.TransformPoint(tri.V[i].Pos))
		if !ok {
			return 0, false
		}
	}
	if !picking.PointInTriangle(s[0].XY(), s[1].XY(), s[2].XY(), p) {
		return 0, false
	}
	return (s[0].Z + s[1].Z + s[2].Z) / 3, true
}

// walkCandidates calls fn for every triangle of the flagged ranks in the
// LOD band matching each object's distance.
func (e *Engine) walkCandidates(candidates []bool, fn func(rank int, rec *records.Record, tri geom.Triangle)) {
	var (
		tex geom.TexturePair
		rec *records.Record
	)
	e.tree.Walk(geom.Walker{
		Texture: func(t geom.TexturePair) bool {
			tex = t
			return true
		},
		Object: func(rank int) bool {
			if rank >= len(candidates) || !candidates[rank] {
				return false
			}
			r, err := e.table.Get(rank)
			if err != nil {
				return false
			}
			rec = r
			return true
		},
		LOD: func(_ int, lod geom.LODRange) bool {
			return lod.Contains(rec.Distance)
		},
		Batch: func(rank int, _ geom.BatchID, b *geom.Batch) bool {
			b.EachTriangle(func(v0, v1, v2 *geom.Vertex) bool {
				fn(rank, rec, geom.Triangle{
					V:        [3]geom.Vertex{*v0, *v1, *v2},
					Material: b.Material,
					State:    b.State,
					Texture:  tex,
				})
				return true
			})
			return true
		},
	})
}

// PickRay returns the world ray through pixel (px, py), origin top left.
func (e *Engine) PickRay(px, py float32) picking.Ray {
	return picking.ScreenToRay(px, py, float32(e.view.Width), float32(e.view.Height), e.view.InverseViewProj())
}

// CastRay returns the nearest triangle hit by ray among the objects
// DetectObject would consider. World boxes reject objects first.
func (e *Engine) CastRay(ray picking.Ray) (Hit, bool) {
	e.Update()
	e.ComputeDistances()

	candidates := make([]bool, e.table.Span())
	e.table.Each(func(rank int, rec *records.Record) {
		if !pickable(rec) {
			return
		}
		box := picking.TransformAABB(picking.AABB{Min: rec.BBoxMin, Max: rec.BBoxMax}, rec.Transform)
		_, candidates[rank] = ray.IntersectAABB(box)
	})

	best := Hit{Rank: -1, Depth: math32.MaxFloat32}
	e.walkCandidates(candidates, func(rank int, rec *records.Record, tri geom.Triangle) {
		a := rec.Transform.TransformPoint(tri.V[0].Pos)
		b := rec.Transform.TransformPoint(tri.V[1].Pos)
		c := rec.Transform.TransformPoint(tri.V[2].Pos)
		if t, ok := ray.IntersectTriangle(a, b, c); ok && t < best.Depth {
			best = Hit{Rank: rank, Triangle: tri, Depth: t}
		}
	})
	return best, best.Rank >= 0
}
