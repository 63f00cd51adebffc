package gldevice

import "github.com/Faultbox/midgard-batch/internal/engine/geom"

// floatsPerVertex is position, normal, UV and second UV.
const floatsPerVertex = 10

// pack appends the interleaved vertex stream for verts to dst.
func pack(dst []float32, verts []geom.Vertex) []float32 {
	for _, v := range verts {
		dst = append(dst,
			v.Pos.X, v.Pos.Y, v.Pos.Z,
			v.Normal.X, v.Normal.Y, v.Normal.Z,
			v.UV.X, v.UV.Y,
			v.UV2.X, v.UV2.Y)
	}
	return dst
}

// stripRanges turns per-strip vertex counts into MultiDrawArrays ranges.
// Strips too short to form a triangle are skipped.
func stripRanges(strips []int) (first, count []int32) {
	offset := int32(0)
	for _, n := range strips {
		if n >= 3 {
			first = append(first, offset)
			count = append(count, int32(n))
		}
		offset += int32(n)
	}
	return first, count
}

type blendMode struct {
	blend      bool
	depthWrite bool
	cull       bool
	alpha      float32
}

// blendFor maps a batch state and object transparency to fixed GL state.
// Transparent draws keep depth testing but stop writing depth.
func blendFor(s geom.State, transparency float32) blendMode {
	m := blendMode{depthWrite: true, cull: !s.Has(geom.StateTwoFace), alpha: 1}
	if transparency > 0 {
		m.blend = true
		m.depthWrite = false
		m.alpha = max(0, 1-transparency)
	}
	if s.Has(geom.StateAlpha) {
		m.blend = true
		m.depthWrite = false
	}
	return m
}
