// Package terrain builds a procedural height field and turns it into
// triangle strips for the geometry index.
package terrain

// Heightmap stores corner heights on a regular grid. Altitudes has
// (TilesX+1) columns of (TilesZ+1) heights; the grid starts at the origin
// and spans TilesX*TileZoom by TilesZ*TileZoom world units.
type Heightmap struct {
	Altitudes [][]float32
	TilesX    int
	TilesZ    int
	TileZoom  float32
}

// Size returns the world extent along X and Z.
func (h *Heightmap) Size() (float32, float32) {
	return float32(h.TilesX) * h.TileZoom, float32(h.TilesZ) * h.TileZoom
}
