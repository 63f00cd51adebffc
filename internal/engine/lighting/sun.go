// Package lighting holds the directional light used by the GL device.
package lighting

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/midgard-batch/pkg/math"
)

// Sun is a directional light placed by angles in degrees. Longitude turns
// around Y, latitude is the elevation above the horizon.
type Sun struct {
	Longitude float32
	Latitude  float32
	Ambient   float32
}

// DefaultSun lights the scene from above and slightly in front.
func DefaultSun() Sun {
	return Sun{Longitude: 45, Latitude: 50, Ambient: 0.35}
}

// Direction returns the unit vector pointing towards the sun.
func (s Sun) Direction() math.Vec3 {
	lon := s.Longitude * math32.Pi / 180
	lat := s.Latitude * math32.Pi / 180
	sinLat, cosLat := math32.Sincos(lat)
	sinLon, cosLon := math32.Sincos(lon)
	return math.Vec3{X: cosLat * sinLon, Y: sinLat, Z: cosLat * cosLon}
}
