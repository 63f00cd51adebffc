package engine

import (
	"fmt"

	"github.com/Faultbox/midgard-batch/internal/engine/geom"
	"github.com/Faultbox/midgard-batch/internal/engine/records"
)

// AddTriangle files a triangle list (3 vertices per triangle) for rank
// under key. When deferBounds is set the bounding box is left for Update
// to recompute, which is cheaper when many pieces are added at once.
func (e *Engine) AddTriangle(rank int, verts []geom.Vertex, key geom.Key, deferBounds bool) (geom.BatchID, error) {
	rec, err := e.record(rank)
	if err != nil {
		return geom.BatchID{}, err
	}
	id, err := e.tree.AddTriangles(rank, verts, key)
	if err != nil {
		return geom.BatchID{}, fmt.Errorf("object %d: %w", rank, err)
	}
	e.lod.remember()
	e.grow(rec, verts, deferBounds)
	rec.Triangles += len(verts) / 3
	return id, nil
}

// AddSurface files one triangle strip for rank under key.
func (e *Engine) AddSurface(rank int, verts []geom.Vertex, key geom.Key, deferBounds bool) (geom.BatchID, error) {
	rec, err := e.record(rank)
	if err != nil {
		return geom.BatchID{}, err
	}
	id, err := e.tree.AddSurface(rank, verts, key)
	if err != nil {
		return geom.BatchID{}, fmt.Errorf("object %d: %w", rank, err)
	}
	e.grow(rec, verts, deferBounds)
	rec.Triangles += len(verts) - 2
	return id, nil
}

// AddQuick files a prebuilt batch for rank. The engine takes ownership of
// b's vertices.
func (e *Engine) AddQuick(rank int, b *geom.Batch, tex geom.TexturePair, lod geom.LODRange, deferBounds bool) (geom.BatchID, error) {
	rec, err := e.record(rank)
	if err != nil {
		return geom.BatchID{}, err
	}
	if b == nil {
		return geom.BatchID{}, geom.ErrEmptyVertices
	}
	verts := b.Vertices
	id, err := e.tree.AddQuick(rank, b, tex, lod, 0)
	if err != nil {
		return geom.BatchID{}, fmt.Errorf("object %d: %w", rank, err)
	}
	e.grow(rec, verts, deferBounds)
	// The tree has filled in b's strip runs.
	rec.Triangles += b.Triangles()
	return id, nil
}

func (e *Engine) grow(rec *records.Record, verts []geom.Vertex, deferBounds bool) {
	if deferBounds {
		e.updateBounds = true
		return
	}
	for i := range verts {
		rec.Include(verts[i].Pos)
	}
}

// Update recomputes every object's bounding box from its geometry if an
// insertion deferred it. Render calls it before drawing.
func (e *Engine) Update() {
	if !e.updateBounds {
		return
	}
	bounds := e.tree.Bounds()
	e.table.Each(func(rank int, rec *records.Record) {
		rec.ResetBounds()
		if box, ok := bounds[rank]; ok {
			rec.Include(box.Min)
			rec.Include(box.Max)
		}
	})
	e.updateBounds = false
}

// SearchTriangle returns the batch stored for rank under the full key,
// layer included. Dual-texture state bits are ignored.
func (e *Engine) SearchTriangle(rank int, key geom.Key) (geom.BatchID, bool) {
	return e.tree.SearchKey(rank, key)
}

// SearchTexture returns the first batch of rank under the texture pair and
// LOD band, whatever its material.
func (e *Engine) SearchTexture(rank int, tex geom.TexturePair, lod geom.LODRange) (geom.BatchID, bool) {
	return e.tree.SearchTexture(rank, tex, lod)
}

// Batch resolves a handle. The pointer is valid until the next mutating
// call.
func (e *Engine) Batch(id geom.BatchID) (*geom.Batch, bool) {
	return e.tree.Batch(id)
}

// Triangles exports a deterministic share of rank's triangles in the exact
// LOD band. percent is in [0,1]; limit <= 0 means no limit.
func (e *Engine) Triangles(rank int, lod geom.LODRange, percent float32, limit int) ([]geom.Triangle, error) {
	if _, err := e.record(rank); err != nil {
		return nil, err
	}
	return e.tree.Triangles(rank, lod, percent, limit), nil
}

// ChangeSecondTexture switches every texture pair of rank to name2 as its
// second texture. Returns how many pairs moved.
func (e *Engine) ChangeSecondTexture(rank int, name2 string) (int, error) {
	if _, err := e.record(rank); err != nil {
		return 0, err
	}
	return e.tree.ChangeSecondTexture(rank, name2)
}

// ChangeTextureMapping recomputes the UVs of the batch under key from the
// vertex positions.
func (e *Engine) ChangeTextureMapping(rank int, key geom.Key, mode geom.Mapping, au, bu, av, bv float32) error {
	if _, err := e.record(rank); err != nil {
		return err
	}
	return e.tree.ChangeTextureMapping(rank, key, mode, au, bu, av, bv)
}

// TrackTextureMapping lays track UVs along the batch under key.
func (e *Engine) TrackTextureMapping(rank int, key geom.Key, tr geom.Track) error {
	if _, err := e.record(rank); err != nil {
		return err
	}
	return e.tree.TrackTextureMapping(rank, key, tr)
}
