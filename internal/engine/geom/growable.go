package geom

// growable is an owned array that grows by a fixed increment rather than
// doubling. Growth copies into a new backing store, so addresses of
// elements are invalid after any push.
type growable[T any] struct {
	items []T
	step  int
}

func newGrowable[T any](step int) growable[T] {
	if step < 1 {
		step = 1
	}
	return growable[T]{step: step}
}

// ensure makes room for n more items. New capacity is cap + step + n.
func (g *growable[T]) ensure(n int) {
	if len(g.items)+n <= cap(g.items) {
		return
	}
	next := make([]T, len(g.items), cap(g.items)+g.step+n)
	copy(next, g.items)
	g.items = next
}

// push appends v and returns its index.
func (g *growable[T]) push(v T) int {
	g.ensure(1)
	g.items = append(g.items, v)
	return len(g.items) - 1
}

// insert places v at index i, shifting later items right.
func (g *growable[T]) insert(i int, v T) {
	g.ensure(1)
	g.items = append(g.items, v)
	copy(g.items[i+1:], g.items[i:])
	g.items[i] = v
}

func (g *growable[T]) at(i int) *T {
	return &g.items[i]
}

func (g *growable[T]) len() int {
	return len(g.items)
}

func (g *growable[T]) capacity() int {
	return cap(g.items)
}

// filter keeps items for which keep returns true, preserving order, and
// returns how many were dropped. Capacity is kept.
func (g *growable[T]) filter(keep func(*T) bool) int {
	n := 0
	for i := range g.items {
		if keep(&g.items[i]) {
			g.items[n] = g.items[i]
			n++
		}
	}
	dropped := len(g.items) - n
	var zero T
	for i := n; i < len(g.items); i++ {
		g.items[i] = zero
	}
	g.items = g.items[:n]
	return dropped
}

func (g *growable[T]) reset() {
	g.items = nil
}

// growVertices appends src to dst using the same fixed-increment policy.
func growVertices(dst, src []Vertex, step int) []Vertex {
	if len(dst)+len(src) > cap(dst) {
		next := make([]Vertex, len(dst), cap(dst)+step+len(src))
		copy(next, dst)
		dst = next
	}
	return append(dst, src...)
}
