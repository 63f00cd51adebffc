package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrowableFixedIncrement(t *testing.T) {
	g := newGrowable[int](5)
	assert.Equal(t, 0, g.capacity())

	g.push(1)
	// cap + step + n = 0 + 5 + 1
	assert.Equal(t, 6, g.capacity())

	for i := 0; i < 5; i++ {
		g.push(i)
	}
	assert.Equal(t, 6, g.capacity(), "no growth while spare room remains")

	g.push(99)
	assert.Equal(t, 12, g.capacity())
	assert.Equal(t, 7, g.len())
	assert.Equal(t, 99, *g.at(6))
}

func TestGrowablePreservesContents(t *testing.T) {
	g := newGrowable[int](2)
	for i := 0; i < 100; i++ {
		g.push(i)
	}
	require.Equal(t, 100, g.len())
	for i := 0; i < 100; i++ {
		assert.Equal(t, i, *g.at(i))
	}
}

func TestGrowableInsertAndFilter(t *testing.T) {
	g := newGrowable[int](1)
	g.push(1)
	g.push(3)
	g.insert(1, 2)
	g.insert(0, 0)
	assert.Equal(t, []int{0, 1, 2, 3}, g.items)

	dropped := g.filter(func(v *int) bool { return *v%2 == 0 })
	assert.Equal(t, 2, dropped)
	assert.Equal(t, []int{0, 2}, g.items)
}

func TestGrowableZeroStep(t *testing.T) {
	g := newGrowable[string](0)
	g.push("a")
	assert.Equal(t, 2, g.capacity())
}

func TestGrowVertices(t *testing.T) {
	var dst []Vertex
	src := make([]Vertex, 3)
	dst = growVertices(dst, src, 10)
	assert.Len(t, dst, 3)
	assert.Equal(t, 13, cap(dst))

	dst = growVertices(dst, make([]Vertex, 10), 10)
	assert.Len(t, dst, 13)
	assert.Equal(t, 13, cap(dst))

	dst = growVertices(dst, src, 10)
	assert.Equal(t, 26, cap(dst))
}
