package terrain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateIsDeterministic(t *testing.T) {
	a := Generate(8, 4, 10, 5)
	b := Generate(8, 4, 10, 5)
	assert.Equal(t, a, b)
	require.Len(t, a.Altitudes, 9)
	require.Len(t, a.Altitudes[0], 5)

	w, d := a.Size()
	assert.Equal(t, float32(80), w)
	assert.Equal(t, float32(40), d)
}

func TestHeightAtInterpolates(t *testing.T) {
	h := &Heightmap{
		Altitudes: [][]float32{{0, 2}, {4, 6}},
		TilesX:    1,
		TilesZ:    1,
		TileZoom:  10,
	}
	assert.Equal(t, float32(0), h.HeightAt(0, 0))
	assert.Equal(t, float32(6), h.HeightAt(10, 10))
	assert.Equal(t, float32(3), h.HeightAt(5, 5))
	assert.Equal(t, float32(2), h.HeightAt(0, 10))

	// Clamped outside the grid.
	assert.Equal(t, float32(0), h.HeightAt(-5, -5))
	assert.Equal(t, float32(6), h.HeightAt(50, 50))

	var none *Heightmap
	assert.Zero(t, none.HeightAt(1, 1))
}

func TestBuildStrips(t *testing.T) {
	h := Generate(4, 3, 2, 0)
	strips := BuildStrips(h, 2)
	require.Len(t, strips, 3)
	for _, s := range strips {
		assert.Len(t, s, 10)
	}

	first := strips[0]
	assert.Equal(t, float32(0), first[0].Pos.Z)
	assert.Equal(t, float32(2), first[1].Pos.Z)
	assert.Equal(t, float32(8), first[9].Pos.X)
	assert.Equal(t, float32(2), first[9].UV.X)

	// A flat field points every normal straight up.
	for _, v := range first {
		assert.InDelta(t, 1, v.Normal.Y, 1e-6)
	}
}
