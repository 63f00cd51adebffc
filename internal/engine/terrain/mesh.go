package terrain

import (
	"github.com/Faultbox/midgard-batch/internal/engine/geom"
	"github.com/Faultbox/midgard-batch/pkg/math"
)

// BuildStrips returns one triangle strip per row of tiles. Each strip has
// 2*(TilesX+1) vertices and winds counter-clockwise seen from above. UVs
// repeat once every uvTiles tiles.
func BuildStrips(h *Heightmap, uvTiles float32) [][]geom.Vertex {
	if uvTiles <= 0 {
		uvTiles = 1
	}
	strips := make([][]geom.Vertex, 0, h.TilesZ)
	for z := 0; z < h.TilesZ; z++ {
		strip := make([]geom.Vertex, 0, 2*(h.TilesX+1))
		for x := 0; x <= h.TilesX; x++ {
			strip = append(strip, h.vertex(x, z, uvTiles), h.vertex(x, z+1, uvTiles))
		}
		strips = append(strips, strip)
	}
	return strips
}

func (h *Heightmap) vertex(x, z int, uvTiles float32) geom.Vertex {
	return geom.Vertex{
		Pos: math.Vec3{
			X: float32(x) * h.TileZoom,
			Y: h.Altitudes[x][z],
			Z: float32(z) * h.TileZoom,
		},
		Normal: h.normal(x, z),
		UV:     math.Vec2{X: float32(x) / uvTiles, Y: float32(z) / uvTiles},
		UV2:    math.Vec2{X: float32(x) / float32(h.TilesX), Y: float32(z) / float32(h.TilesZ)},
	}
}

// normal uses central differences, so corners shared by neighboring
// tiles get one smooth normal.
func (h *Heightmap) normal(x, z int) math.Vec3 {
	x0, x1 := max(x-1, 0), min(x+1, h.TilesX)
	z0, z1 := max(z-1, 0), min(z+1, h.TilesZ)
	dx := (h.Altitudes[x1][z] - h.Altitudes[x0][z]) / (float32(x1-x0) * h.TileZoom)
	dz := (h.Altitudes[x][z1] - h.Altitudes[x][z0]) / (float32(z1-z0) * h.TileZoom)
	return math.Vec3{X: -dx, Y: 1, Z: -dz}.Normalize()
}
