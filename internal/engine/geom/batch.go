package geom

// Batch is a run of vertices sharing one material, state and primitive
// kind, drawn with a single call.
type Batch struct {
	Kind     PrimitiveKind
	Material Material
	State    State
	Vertices []Vertex
	// Strips holds the vertex count of each strip run for Surface
	// batches. Runs are stored back to back in Vertices.
	Strips []int
}

// NewBatch returns an empty batch for use with AddQuick.
func NewBatch(kind PrimitiveKind, mat Material, state State) *Batch {
	return &Batch{Kind: kind, Material: mat, State: state}
}

// Triangles returns how many triangles the batch draws.
func (b *Batch) Triangles() int {
	if b.Kind == Triangles {
		return len(b.Vertices) / 3
	}
	n := 0
	for _, s := range b.Strips {
		if s > 2 {
			n += s - 2
		}
	}
	return n
}

// EachTriangle calls fn for every triangle in draw order until fn returns
// false. Odd strip triangles are emitted with swapped leading vertices so
// every triangle keeps the strip's winding.
func (b *Batch) EachTriangle(fn func(a, b, c *Vertex) bool) {
	v := b.Vertices
	if b.Kind == Triangles {
		for i := 0; i+2 < len(v); i += 3 {
			if !fn(&v[i], &v[i+1], &v[i+2]) {
				return
			}
		}
		return
	}
	start := 0
	for _, run := range b.Strips {
		for i := 0; i+2 < run; i++ {
			j := start + i
			var ok bool
			if i%2 == 0 {
				ok = fn(&v[j], &v[j+1], &v[j+2])
			} else {
				ok = fn(&v[j+1], &v[j], &v[j+2])
			}
			if !ok {
				return
			}
		}
		start += run
	}
}

func (b *Batch) matches(kind PrimitiveKind, mat Material, state State) bool {
	return b.Kind == kind && b.Material == mat && b.State == state
}

// appendRun adds vertices to the batch. Surface input becomes one new
// strip run.
func (b *Batch) appendRun(verts []Vertex, step int) {
	b.Vertices = growVertices(b.Vertices, verts, step)
	if b.Kind == Surface {
		b.Strips = append(b.Strips, len(verts))
	}
}

// absorb moves all geometry of src into b.
func (b *Batch) absorb(src *Batch, step int) {
	b.Vertices = growVertices(b.Vertices, src.Vertices, step)
	if b.Kind == Surface {
		b.Strips = append(b.Strips, src.Strips...)
	}
}

// BatchID is a generation-checked handle to a batch. The zero value never
// resolves.
type BatchID struct {
	index int32
	gen   uint32
}

// Valid reports whether the handle was ever issued.
func (id BatchID) Valid() bool {
	return id.gen != 0
}

type slot struct {
	gen   uint32
	live  bool
	batch Batch
}

// arena stores every batch of the tree. Released slots are recycled with a
// bumped generation so old handles stop resolving.
type arena struct {
	slots []slot
	free  []int32
}

func (a *arena) alloc(b Batch) BatchID {
	if n := len(a.free); n > 0 {
		i := a.free[n-1]
		a.free = a.free[:n-1]
		s := &a.slots[i]
		s.live = true
		s.batch = b
		return BatchID{index: i, gen: s.gen}
	}
	a.slots = append(a.slots, slot{gen: 1, live: true, batch: b})
	return BatchID{index: int32(len(a.slots) - 1), gen: 1}
}

func (a *arena) get(id BatchID) *Batch {
	if id.index < 0 || int(id.index) >= len(a.slots) {
		return nil
	}
	s := &a.slots[id.index]
	if !s.live || s.gen != id.gen {
		return nil
	}
	return &s.batch
}

func (a *arena) release(id BatchID) int {
	s := &a.slots[id.index]
	if !s.live || s.gen != id.gen {
		return 0
	}
	n := len(s.batch.Vertices)
	s.live = false
	s.gen++
	s.batch = Batch{}
	a.free = append(a.free, id.index)
	return n
}

func (a *arena) reset() {
	a.slots = nil
	a.free = nil
}

func (a *arena) live() int {
	return len(a.slots) - len(a.free)
}
