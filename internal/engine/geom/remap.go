package geom

import (
	"fmt"

	"go.uber.org/zap"
)

// ChangeSecondTexture moves every bucket of rank to the texture pair
// (Name1, name2), keeping its primary texture. Geometry that lands next to
// an existing bucket of the same object is merged into it. Returns the
// number of buckets moved.
func (t *Tree) ChangeSecondTexture(rank int, name2 string) (int, error) {
	if rank < 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidRank, rank)
	}

	moved := 0
	present := false
	for ci := 0; ci < t.categories.len(); ci++ {
		cat := t.categories.at(ci)
		// Buckets created by the move already carry name2 and need no visit.
		n := cat.textures.len()
		for ti := 0; ti < n; ti++ {
			tb := cat.textures.at(ti)
			src := findObject(tb, rank)
			if src == nil {
				continue
			}
			present = true
			if tb.tex.Name2 == name2 {
				continue
			}

			obj := *src
			src.dead = true
			src.lods = growable[lodBucket]{}
			tb.live--
			t.tombstones++
			target := Tex(tb.tex.Name1, name2)

			// tb is invalid past this point: the texture array may grow.
			t.mergeObject(t.texture(cat, target), obj)
			moved++
		}
	}
	if !present {
		return 0, fmt.Errorf("%w: rank %d", ErrNotFound, rank)
	}
	if moved > 0 {
		t.log.Debug("second texture changed", zap.Int("rank", rank), zap.String("texture", name2), zap.Int("buckets", moved))
	}
	return moved, nil
}

// mergeObject files obj under dst, merging with a live bucket of the same
// rank if one exists.
func (t *Tree) mergeObject(dst *textureBucket, obj objectBucket) {
	existing := findObject(dst, obj.rank)
	if existing == nil {
		dst.objects.push(obj)
		dst.live++
		return
	}
	for li := 0; li < obj.lods.len(); li++ {
		src := obj.lods.at(li)
		t.mergeLOD(t.lod(existing, src.lod), src)
	}
}

// mergeLOD moves every batch of src into dst, layer by layer. Batches with
// a matching kind, material and state are merged into one.
func (t *Tree) mergeLOD(dst, src *lodBucket) {
	for si := 0; si < src.layers.len(); si++ {
		from := src.layers.at(si)
		to := t.layer(dst, from.layer)
		for _, id := range from.batches.items {
			b := t.arena.get(id)
			if b == nil {
				continue
			}
			if match, ok := t.findInSet(to, b.Kind, b.Material, b.State); ok && match != id {
				t.arena.get(match).absorb(b, t.opts.VertexStep)
				t.arena.release(id)
				continue
			}
			to.batches.push(id)
		}
	}
}

// RemapLOD rewrites every LOD range through fn. Ranges of one object that
// become equal are merged so each range stays unique per object. Returns
// the number of ranges changed.
func (t *Tree) RemapLOD(fn func(LODRange) LODRange) int {
	changed := 0
	for ci := 0; ci < t.categories.len(); ci++ {
		cat := t.categories.at(ci)
		for ti := 0; ti < cat.textures.len(); ti++ {
			tb := cat.textures.at(ti)
			for oi := 0; oi < tb.objects.len(); oi++ {
				obj := tb.objects.at(oi)
				if obj.dead {
					continue
				}
				remapped := false
				for li := 0; li < obj.lods.len(); li++ {
					l := obj.lods.at(li)
					if next := fn(l.lod); next != l.lod {
						l.lod = next
						changed++
						remapped = true
					}
				}
				if remapped {
					t.dedupeLODs(obj)
				}
			}
		}
	}
	return changed
}

func (t *Tree) dedupeLODs(obj *objectBucket) {
	merged := make([]bool, obj.lods.len())
	for i := 0; i < obj.lods.len(); i++ {
		if merged[i] {
			continue
		}
		for j := i + 1; j < obj.lods.len(); j++ {
			if !merged[j] && obj.lods.at(j).lod == obj.lods.at(i).lod {
				t.mergeLOD(obj.lods.at(i), obj.lods.at(j))
				merged[j] = true
			}
		}
	}
	k := 0
	obj.lods.filter(func(*lodBucket) bool {
		keep := !merged[k]
		k++
		return keep
	})
}
