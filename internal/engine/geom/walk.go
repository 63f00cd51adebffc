package geom

// Walker receives the tree in render order. Every callback is optional.
// Returning false from Category, Texture, Object or LOD skips that
// subtree; returning false from Batch stops the walk.
//
// The tree must not be mutated during a walk. Batch pointers passed to
// the Batch callback may be modified in place (vertex attributes only).
type Walker struct {
	Category func(c Category) bool
	Texture  func(tex TexturePair) bool
	Object   func(rank int) bool
	LOD      func(rank int, lod LODRange) bool
	Batch    func(rank int, id BatchID, b *Batch) bool
}

// Walk visits live geometry category by category, then texture pair,
// object, LOD range, layer and batch. Tombstoned objects are skipped.
func (t *Tree) Walk(w Walker) {
	for ci := 0; ci < t.categories.len(); ci++ {
		cat := t.categories.at(ci)
		if w.Category != nil && !w.Category(cat.category) {
			continue
		}
		for ti := 0; ti < cat.textures.len(); ti++ {
			tb := cat.textures.at(ti)
			if tb.live == 0 {
				continue
			}
			if w.Texture != nil && !w.Texture(tb.tex) {
				continue
			}
			for oi := 0; oi < tb.objects.len(); oi++ {
				obj := tb.objects.at(oi)
				if obj.dead {
					continue
				}
				if w.Object != nil && !w.Object(obj.rank) {
					continue
				}
				if !t.walkObject(obj, w) {
					return
				}
			}
		}
	}
}

func (t *Tree) walkObject(obj *objectBucket, w Walker) bool {
	for li := 0; li < obj.lods.len(); li++ {
		l := obj.lods.at(li)
		if w.LOD != nil && !w.LOD(obj.rank, l.lod) {
			continue
		}
		if w.Batch == nil {
			continue
		}
		for si := 0; si < l.layers.len(); si++ {
			for _, id := range l.layers.at(si).batches.items {
				b := t.arena.get(id)
				if b == nil {
					continue
				}
				if !w.Batch(obj.rank, id, b) {
					return false
				}
			}
		}
	}
	return true
}
