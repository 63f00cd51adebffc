package terrain

import (
	"github.com/chewxy/math32"
)

// Generate builds a rolling height field from a sum of two sine waves.
// The same arguments always give the same field.
func Generate(tilesX, tilesZ int, zoom, amplitude float32) *Heightmap {
	tilesX = max(tilesX, 1)
	tilesZ = max(tilesZ, 1)
	alt := make([][]float32, tilesX+1)
	for x := range alt {
		alt[x] = make([]float32, tilesZ+1)
		for z := range alt[x] {
			fx := float32(x) / float32(tilesX) * 2 * math32.Pi
			fz := float32(z) / float32(tilesZ) * 2 * math32.Pi
			alt[x][z] = amplitude * (0.6*math32.Sin(fx) + 0.4*math32.Cos(2*fz))
		}
	}
	return &Heightmap{Altitudes: alt, TilesX: tilesX, TilesZ: tilesZ, TileZoom: zoom}
}

// HeightAt returns the bilinearly interpolated height at a world position.
// Positions outside the grid are clamped to its edge.
func (h *Heightmap) HeightAt(worldX, worldZ float32) float32 {
	if h == nil || len(h.Altitudes) == 0 {
		return 0
	}
	fx := clampf(worldX/h.TileZoom, 0, float32(h.TilesX))
	fz := clampf(worldZ/h.TileZoom, 0, float32(h.TilesZ))

	cx := min(int(fx), h.TilesX-1)
	cz := min(int(fz), h.TilesZ-1)
	tx := fx - float32(cx)
	tz := fz - float32(cz)

	south := h.Altitudes[cx][cz]*(1-tx) + h.Altitudes[cx+1][cz]*tx
	north := h.Altitudes[cx][cz+1]*(1-tx) + h.Altitudes[cx+1][cz+1]*tx
	return south*(1-tz) + north*tz
}

func clampf(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
