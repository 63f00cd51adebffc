package engine

import (
	"github.com/chewxy/math32"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-batch/internal/config"
	"github.com/Faultbox/midgard-batch/internal/engine/geom"
)

// lodEpsilon is the tolerance used to recognise a band built from the
// previous limits.
const lodEpsilon = 1e-3

// lodState holds the LOD breakpoints and the scaling inputs that were
// current when geometry was last added, so ChangeLOD can find the bands
// built from them.
type lodState struct {
	limit          [2]float32
	terrainVision  float32
	objectDetail   float32
	clipping       float32
	width          float32
	referenceWidth float32

	lastWidth    float32
	lastDetail   float32
	lastClipping float32
}

func newLODState(cfg *config.Config, width int) lodState {
	s := lodState{
		limit:          [2]float32{cfg.LOD.Near, cfg.LOD.Far},
		terrainVision:  cfg.LOD.TerrainVision,
		objectDetail:   cfg.LOD.ObjectDetail,
		clipping:       cfg.Render.ClippingDistance,
		width:          float32(width),
		referenceWidth: float32(cfg.LOD.ReferenceWidth),
	}
	if s.referenceWidth <= 0 {
		s.referenceWidth = 640
	}
	s.remember()
	return s
}

// remember records the current inputs as the ones geometry was built with.
func (s *lodState) remember() {
	s.lastWidth = s.width
	s.lastDetail = s.objectDetail
	s.lastClipping = s.clipping
}

// scaled returns breakpoint rank stretched for the viewport width and
// pushed out by the object detail. Wider windows and higher detail keep
// fine geometry further away.
func (s *lodState) scaled(rank int, last bool) float32 {
	width, detail := s.width, s.objectDetail
	if last {
		width, detail = s.lastWidth, s.lastDetail
	}
	l := s.limit[rank]*width/s.referenceWidth + s.limit[0]*(detail*2)
	return max(l, 0)
}

func near(a, b float32) bool {
	return math32.Abs(a-b) < lodEpsilon
}

// SetLimitLOD sets breakpoint rank (0 near, 1 far) before scaling.
// Other ranks are ignored.
func (e *Engine) SetLimitLOD(rank int, distance float32) {
	if rank < 0 || rank > 1 {
		return
	}
	e.lod.limit[rank] = distance
	e.log.Info("lod limit changed", zap.Int("rank", rank), zap.Float32("distance", distance))
}

// LimitLOD returns breakpoint rank scaled for the current viewport and
// object detail, or for the ones in effect when geometry was last added
// if last is set. The result is never negative.
func (e *Engine) LimitLOD(rank int, last bool) float32 {
	if rank < 0 || rank > 1 {
		return 0
	}
	return e.lod.scaled(rank, last)
}

// SetTerrainVision sets the terrain view range before the clipping factor.
func (e *Engine) SetTerrainVision(d float32) {
	e.lod.terrainVision = d
}

// SetObjectDetail sets the object detail factor.
func (e *Engine) SetObjectDetail(d float32) {
	e.lod.objectDetail = d
}

// ObjectDetail returns the object detail factor.
func (e *Engine) ObjectDetail() float32 {
	return e.lod.objectDetail
}

// SetClippingDistance sets the factor applied to the terrain view range.
func (e *Engine) SetClippingDistance(d float32) {
	e.lod.clipping = d
}

// ChangeLOD moves every standard band built with the previous limits to
// the current ones: [0,near), [near,far), [far,inf) and the terrain band
// [0,terrain). Other bands are left alone. Returns how many bands moved.
func (e *Engine) ChangeLOD() int {
	s := &e.lod
	old0, old1 := s.scaled(0, true), s.scaled(1, true)
	new0, new1 := s.scaled(0, false), s.scaled(1, false)
	oldTerrain := s.terrainVision * s.lastClipping
	newTerrain := s.terrainVision * s.clipping

	n := e.tree.RemapLOD(func(r geom.LODRange) geom.LODRange {
		switch {
		case near(r.Min, 0) && near(r.Max, old0):
			r.Max = new0
		case near(r.Min, old0) && near(r.Max, old1):
			r.Min, r.Max = new0, new1
		case near(r.Min, old1) && near(r.Max, geom.LODInfinity):
			r.Min = new1
		case near(r.Min, 0) && near(r.Max, oldTerrain):
			r.Max = newTerrain
		}
		return r
	})
	s.remember()

	e.log.Debug("lod bands remapped",
		zap.Float32("near", new0),
		zap.Float32("far", new1),
		zap.Float32("terrain", newTerrain),
		zap.Int("changed", n))
	return n
}

// DetailMode overrides the per-object camera distance used for LOD
// selection, for comparing detail levels.
type DetailMode uint8

const (
	// DetailAuto uses the real camera distance.
	DetailAuto DetailMode = iota
	// DetailLow places every object past the far breakpoint.
	DetailLow
	// DetailMedium places every object between the breakpoints.
	DetailMedium
	// DetailHigh places every object at the eye.
	DetailHigh
)

var detailNames = [...]string{"auto", "low", "medium", "high"}

func (m DetailMode) String() string {
	if int(m) < len(detailNames) {
		return detailNames[m]
	}
	return "unknown"
}

// SetDetailMode selects how object distances are computed. Terrain always
// uses its real distance.
func (e *Engine) SetDetailMode(m DetailMode) {
	e.detail = m
	e.log.Debug("detail mode changed", zap.Stringer("mode", m))
}

// DetailMode returns the distance override in effect.
func (e *Engine) DetailMode() DetailMode {
	return e.detail
}

// ComputeDistances refreshes every object's camera distance.
func (e *Engine) ComputeDistances() {
	eye := e.view.Eye
	switch e.detail {
	case DetailLow:
		e.table.OverrideDistances(eye, 100000)
	case DetailMedium:
		e.table.OverrideDistances(eye, (e.LimitLOD(0, false)+e.LimitLOD(1, false))/2)
	case DetailHigh:
		e.table.OverrideDistances(eye, 0)
	default:
		e.table.ComputeDistances(eye)
	}
}
