package geom

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-batch/internal/logger"
)

// Options sets the growth increment of each level and the vertex budget.
type Options struct {
	CategoryStep int
	TextureStep  int
	ObjectStep   int
	LODStep      int
	LayerStep    int
	BatchStep    int
	VertexStep   int
	// MaxVertices caps the total stored vertex count. Zero means no cap.
	MaxVertices int
}

// DefaultOptions returns the standard growth increments.
func DefaultOptions() Options {
	return Options{
		CategoryStep: 4,
		TextureStep:  50,
		ObjectStep:   100,
		LODStep:      5,
		LayerStep:    10,
		BatchStep:    100,
		VertexStep:   200,
	}
}

type categoryBucket struct {
	category Category
	textures growable[textureBucket]
}

type textureBucket struct {
	tex     TexturePair
	objects growable[objectBucket]
	live    int
}

type objectBucket struct {
	rank int
	dead bool
	lods growable[lodBucket]
}

type lodBucket struct {
	lod    LODRange
	layers growable[batchSet]
}

type batchSet struct {
	layer   uint8
	batches growable[BatchID]
}

// Tree is the geometry index. It is not safe for concurrent use.
type Tree struct {
	opts       Options
	categories growable[categoryBucket]
	arena      arena
	vertices   int
	tombstones int
	log        *zap.Logger
}

// NewTree creates an empty index.
func NewTree(opts Options) *Tree {
	return &Tree{
		opts:       opts,
		categories: newGrowable[categoryBucket](opts.CategoryStep),
		log:        logger.Named("geom"),
	}
}

// AddTriangles appends a triangle list for rank under key. The vertex
// count must be a non-zero multiple of 3.
func (t *Tree) AddTriangles(rank int, verts []Vertex, key Key) (BatchID, error) {
	if len(verts)%3 != 0 {
		return BatchID{}, fmt.Errorf("%w: %d vertices for triangle list", ErrBadVertexCount, len(verts))
	}
	return t.add(rank, Triangles, verts, key)
}

// AddSurface appends one triangle strip for rank under key. Strips that
// share a key are merged into one batch as separate runs.
func (t *Tree) AddSurface(rank int, verts []Vertex, key Key) (BatchID, error) {
	if len(verts) > 0 && len(verts) < 3 {
		return BatchID{}, fmt.Errorf("%w: %d vertices for strip", ErrBadVertexCount, len(verts))
	}
	return t.add(rank, Surface, verts, key)
}

// AddQuick files a prebuilt batch for rank. The tree takes ownership of
// b's vertex storage. If a batch with the same kind, material and state
// already exists under the key, b's geometry is merged into it. A surface
// with no strip runs is taken as one strip and b.Strips is set to match.
func (t *Tree) AddQuick(rank int, b *Batch, tex TexturePair, lod LODRange, layer uint8) (BatchID, error) {
	if b == nil || len(b.Vertices) == 0 {
		return BatchID{}, ErrEmptyVertices
	}
	if err := validateBatch(b); err != nil {
		return BatchID{}, err
	}
	key := Key{Material: b.Material, State: b.State, Texture: tex, LOD: lod, Layer: layer}
	if err := t.validate(rank, len(b.Vertices), key); err != nil {
		return BatchID{}, err
	}

	// A surface without runs is one strip.
	if b.Kind == Surface && len(b.Strips) == 0 {
		b.Strips = []int{len(b.Vertices)}
	}

	set := t.descend(rank, b.Kind, key)
	t.vertices += len(b.Vertices)
	if id, ok := t.findInSet(set, b.Kind, b.Material, b.State); ok {
		t.arena.get(id).absorb(b, t.opts.VertexStep)
		return id, nil
	}

	id := t.arena.alloc(*b)
	set.batches.push(id)
	return id, nil
}

func validateBatch(b *Batch) error {
	switch b.Kind {
	case Triangles:
		if len(b.Vertices)%3 != 0 {
			return fmt.Errorf("%w: %d vertices for triangle list", ErrBadVertexCount, len(b.Vertices))
		}
	case Surface:
		total := 0
		for _, s := range b.Strips {
			if s < 3 {
				return fmt.Errorf("%w: strip of %d vertices", ErrBadVertexCount, s)
			}
			total += s
		}
		if len(b.Strips) > 0 && total != len(b.Vertices) {
			return fmt.Errorf("%w: strips cover %d of %d vertices", ErrBadVertexCount, total, len(b.Vertices))
		}
		if len(b.Vertices) < 3 {
			return fmt.Errorf("%w: %d vertices for strip", ErrBadVertexCount, len(b.Vertices))
		}
	default:
		return fmt.Errorf("%w: unknown primitive kind %d", ErrBadVertexCount, b.Kind)
	}
	return nil
}

func (t *Tree) validate(rank, n int, key Key) error {
	switch {
	case rank < 0:
		return fmt.Errorf("%w: %d", ErrInvalidRank, rank)
	case n == 0:
		return ErrEmptyVertices
	case key.Texture.Name1 == "":
		return ErrEmptyTexture
	case !key.LOD.Valid():
		return fmt.Errorf("%w: [%g, %g)", ErrInvalidRange, key.LOD.Min, key.LOD.Max)
	}
	if t.opts.MaxVertices > 0 && t.vertices+n > t.opts.MaxVertices {
		t.log.Warn("vertex budget exhausted",
			zap.Int("rank", rank),
			zap.Int("stored", t.vertices),
			zap.Int("requested", n),
			zap.Int("max", t.opts.MaxVertices))
		return fmt.Errorf("%w: %d stored, %d requested, max %d", ErrCapacity, t.vertices, n, t.opts.MaxVertices)
	}
	return nil
}

func (t *Tree) add(rank int, kind PrimitiveKind, verts []Vertex, key Key) (BatchID, error) {
	if err := t.validate(rank, len(verts), key); err != nil {
		return BatchID{}, err
	}

	set := t.descend(rank, kind, key)
	t.vertices += len(verts)
	if id, ok := t.findInSet(set, kind, key.Material, key.State); ok {
		t.arena.get(id).appendRun(verts, t.opts.VertexStep)
		return id, nil
	}

	b := Batch{Kind: kind, Material: key.Material, State: key.State}
	b.appendRun(verts, t.opts.VertexStep)
	id := t.arena.alloc(b)
	set.batches.push(id)
	return id, nil
}

// descend finds or creates every level down to the batch set for key.
// The returned pointer survives arena allocation but not another descend.
func (t *Tree) descend(rank int, kind PrimitiveKind, key Key) *batchSet {
	cat := t.category(CategoryOf(kind))
	tex := t.texture(cat, key.Texture)
	obj := t.object(tex, rank)
	lod := t.lod(obj, key.LOD)
	return t.layer(lod, key.Layer)
}

func (t *Tree) category(c Category) *categoryBucket {
	cats := &t.categories
	for i := 0; i < cats.len(); i++ {
		if cats.at(i).category == c {
			return cats.at(i)
		}
	}
	// Keep categories sorted so traversal order is fixed.
	pos := cats.len()
	for i := 0; i < cats.len(); i++ {
		if cats.at(i).category > c {
			pos = i
			break
		}
	}
	cats.insert(pos, categoryBucket{
		category: c,
		textures: newGrowable[textureBucket](t.opts.TextureStep),
	})
	return cats.at(pos)
}

func (t *Tree) texture(cat *categoryBucket, tex TexturePair) *textureBucket {
	for i := 0; i < cat.textures.len(); i++ {
		if cat.textures.at(i).tex == tex {
			return cat.textures.at(i)
		}
	}
	i := cat.textures.push(textureBucket{
		tex:     tex,
		objects: newGrowable[objectBucket](t.opts.ObjectStep),
	})
	return cat.textures.at(i)
}

func (t *Tree) object(tex *textureBucket, rank int) *objectBucket {
	if obj := findObject(tex, rank); obj != nil {
		return obj
	}
	i := tex.objects.push(objectBucket{
		rank: rank,
		lods: newGrowable[lodBucket](t.opts.LODStep),
	})
	tex.live++
	return tex.objects.at(i)
}

func findObject(tex *textureBucket, rank int) *objectBucket {
	for i := 0; i < tex.objects.len(); i++ {
		obj := tex.objects.at(i)
		if obj.rank == rank && !obj.dead {
			return obj
		}
	}
	return nil
}

func (t *Tree) lod(obj *objectBucket, r LODRange) *lodBucket {
	if l := findLOD(obj, r); l != nil {
		return l
	}
	i := obj.lods.push(lodBucket{
		lod:    r,
		layers: newGrowable[batchSet](t.opts.LayerStep),
	})
	return obj.lods.at(i)
}

func findLOD(obj *objectBucket, r LODRange) *lodBucket {
	for i := 0; i < obj.lods.len(); i++ {
		if obj.lods.at(i).lod == r {
			return obj.lods.at(i)
		}
	}
	return nil
}

func (t *Tree) layer(l *lodBucket, layer uint8) *batchSet {
	pos := l.layers.len()
	for i := 0; i < l.layers.len(); i++ {
		s := l.layers.at(i)
		if s.layer == layer {
			return s
		}
		if s.layer > layer {
			pos = i
			break
		}
	}
	l.layers.insert(pos, batchSet{
		layer:   layer,
		batches: newGrowable[BatchID](t.opts.BatchStep),
	})
	return l.layers.at(pos)
}

// findInSet is a linear scan: batch sets hold a handful of entries and
// the first match in order must win.
func (t *Tree) findInSet(set *batchSet, kind PrimitiveKind, mat Material, state State) (BatchID, bool) {
	for _, id := range set.batches.items {
		if b := t.arena.get(id); b != nil && b.matches(kind, mat, state) {
			return id, true
		}
	}
	return BatchID{}, false
}

// Batch resolves a handle. The pointer is invalidated by the next
// mutating call on the tree.
func (t *Tree) Batch(id BatchID) (*Batch, bool) {
	b := t.arena.get(id)
	return b, b != nil
}

// SearchTriangle returns the first batch in traversal order for rank
// matching material, state, texture pair and exact LOD range in any
// layer. The dual-texture state bits are ignored when comparing state.
func (t *Tree) SearchTriangle(rank int, mat Material, state State, tex TexturePair, lod LODRange) (BatchID, bool) {
	return t.search(rank, mat, state, tex, lod, anyLayer)
}

// SearchKey is SearchTriangle restricted to key.Layer, so it returns the
// batch an insertion with the same key filled.
func (t *Tree) SearchKey(rank int, key Key) (BatchID, bool) {
	return t.search(rank, key.Material, key.State, key.Texture, key.LOD, int(key.Layer))
}

func (t *Tree) search(rank int, mat Material, state State, tex TexturePair, lod LODRange, layer int) (BatchID, bool) {
	var found BatchID
	ok := false
	t.eachBatch(rank, tex, lod, layer, func(id BatchID, b *Batch) bool {
		if b.Material == mat && b.State&^stateDual == state&^stateDual {
			found, ok = id, true
			return false
		}
		return true
	})
	return found, ok
}

// SearchTexture returns the first batch for rank under texture pair and
// exact LOD range, regardless of material and state.
func (t *Tree) SearchTexture(rank int, tex TexturePair, lod LODRange) (BatchID, bool) {
	ids := t.batchesFor(rank, tex, lod, 1)
	if len(ids) == 0 {
		return BatchID{}, false
	}
	return ids[0], true
}

// Batches returns every batch for rank under texture pair and exact LOD
// range, in traversal order.
func (t *Tree) Batches(rank int, tex TexturePair, lod LODRange) []BatchID {
	return t.batchesFor(rank, tex, lod, 0)
}

func (t *Tree) batchesFor(rank int, tex TexturePair, lod LODRange, limit int) []BatchID {
	var ids []BatchID
	t.eachBatch(rank, tex, lod, anyLayer, func(id BatchID, _ *Batch) bool {
		ids = append(ids, id)
		return limit <= 0 || len(ids) < limit
	})
	return ids
}

// anyLayer makes eachBatch visit every layer.
const anyLayer = -1

// eachBatch visits batches of one object under a texture pair and LOD
// range across all categories, in one layer or in all of them.
func (t *Tree) eachBatch(rank int, tex TexturePair, lod LODRange, layer int, fn func(BatchID, *Batch) bool) {
	for ci := 0; ci < t.categories.len(); ci++ {
		cat := t.categories.at(ci)
		for ti := 0; ti < cat.textures.len(); ti++ {
			tb := cat.textures.at(ti)
			if tb.tex != tex {
				continue
			}
			obj := findObject(tb, rank)
			if obj == nil {
				continue
			}
			l := findLOD(obj, lod)
			if l == nil {
				continue
			}
			for si := 0; si < l.layers.len(); si++ {
				set := l.layers.at(si)
				if layer != anyLayer && int(set.layer) != layer {
					continue
				}
				for _, id := range set.batches.items {
					b := t.arena.get(id)
					if b == nil {
						continue
					}
					if !fn(id, b) {
						return
					}
				}
			}
		}
	}
}

// DeleteObject discards all geometry of rank. Its object buckets become
// tombstones until Compact; emptied texture buckets are kept. Returns
// the number of batches freed.
func (t *Tree) DeleteObject(rank int) int {
	freed := 0
	for ci := 0; ci < t.categories.len(); ci++ {
		cat := t.categories.at(ci)
		for ti := 0; ti < cat.textures.len(); ti++ {
			tb := cat.textures.at(ti)
			obj := findObject(tb, rank)
			if obj == nil {
				continue
			}
			freed += t.freeObject(obj)
			obj.dead = true
			tb.live--
			t.tombstones++
		}
	}
	if freed > 0 {
		t.log.Debug("object geometry deleted", zap.Int("rank", rank), zap.Int("batches", freed))
	}
	return freed
}

func (t *Tree) freeObject(obj *objectBucket) int {
	freed := 0
	for li := 0; li < obj.lods.len(); li++ {
		l := obj.lods.at(li)
		for si := 0; si < l.layers.len(); si++ {
			for _, id := range l.layers.at(si).batches.items {
				t.vertices -= t.arena.release(id)
				freed++
			}
		}
	}
	obj.lods.reset()
	return freed
}

// Tombstones returns how many deleted object buckets await compaction.
func (t *Tree) Tombstones() int {
	return t.tombstones
}

// CompactResult reports what Compact removed.
type CompactResult struct {
	Objects    int
	Textures   int
	Categories int
}

// Compact drops tombstoned object buckets and then texture and category
// buckets left without live objects. Relative order is preserved, so
// traversal order of the remaining geometry does not change.
func (t *Tree) Compact() CompactResult {
	var res CompactResult
	for ci := 0; ci < t.categories.len(); ci++ {
		cat := t.categories.at(ci)
		for ti := 0; ti < cat.textures.len(); ti++ {
			tb := cat.textures.at(ti)
			res.Objects += tb.objects.filter(func(o *objectBucket) bool { return !o.dead })
		}
		res.Textures += cat.textures.filter(func(tb *textureBucket) bool { return tb.live > 0 })
	}
	res.Categories = t.categories.filter(func(c *categoryBucket) bool { return c.textures.len() > 0 })
	t.tombstones = 0

	t.log.Debug("geometry compacted",
		zap.Int("objects", res.Objects),
		zap.Int("textures", res.Textures),
		zap.Int("categories", res.Categories))
	return res
}

// Flush discards all geometry.
func (t *Tree) Flush() {
	t.categories.reset()
	t.arena.reset()
	t.vertices = 0
	t.tombstones = 0
}

// Stats counts the contents of the tree.
type Stats struct {
	Categories    int `yaml:"categories"`
	Textures      int `yaml:"textures"`
	EmptyTextures int `yaml:"empty_textures"`
	Objects       int `yaml:"objects"`
	Tombstones    int `yaml:"tombstones"`
	LODs          int `yaml:"lods"`
	Layers        int `yaml:"layers"`
	Batches       int `yaml:"batches"`
	Vertices      int `yaml:"vertices"`
	Triangles     int `yaml:"triangles"`
}

// Stats walks the tree and counts buckets at every level.
func (t *Tree) Stats() Stats {
	s := Stats{Categories: t.categories.len(), Tombstones: t.tombstones, Vertices: t.vertices}
	for ci := 0; ci < t.categories.len(); ci++ {
		cat := t.categories.at(ci)
		s.Textures += cat.textures.len()
		for ti := 0; ti < cat.textures.len(); ti++ {
			tb := cat.textures.at(ti)
			if tb.live == 0 {
				s.EmptyTextures++
			}
			for oi := 0; oi < tb.objects.len(); oi++ {
				obj := tb.objects.at(oi)
				if obj.dead {
					continue
				}
				s.Objects++
				s.LODs += obj.lods.len()
				for li := 0; li < obj.lods.len(); li++ {
					l := obj.lods.at(li)
					s.Layers += l.layers.len()
					for si := 0; si < l.layers.len(); si++ {
						for _, id := range l.layers.at(si).batches.items {
							if b := t.arena.get(id); b != nil {
								s.Batches++
								s.Triangles += b.Triangles()
							}
						}
					}
				}
			}
		}
	}
	return s
}
