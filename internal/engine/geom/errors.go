package geom

import "errors"

var (
	ErrInvalidRank    = errors.New("geom: invalid object rank")
	ErrEmptyVertices  = errors.New("geom: no vertices")
	ErrBadVertexCount = errors.New("geom: vertex count does not fit primitive kind")
	ErrEmptyTexture   = errors.New("geom: primary texture name is empty")
	ErrInvalidRange   = errors.New("geom: invalid LOD range")
	ErrCapacity       = errors.New("geom: vertex capacity exhausted")
	ErrStaleHandle    = errors.New("geom: stale batch handle")
	ErrNotFound       = errors.New("geom: no matching geometry")
)
