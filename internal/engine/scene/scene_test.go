package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/midgard-batch/internal/config"
	"github.com/Faultbox/midgard-batch/internal/engine"
	"github.com/Faultbox/midgard-batch/internal/engine/geom"
	"github.com/Faultbox/midgard-batch/internal/engine/records"
	"github.com/Faultbox/midgard-batch/internal/engine/render"
	"github.com/Faultbox/midgard-batch/pkg/math"
)

func smallOptions() Options {
	opts := DefaultOptions()
	opts.Tiles = 4
	opts.Props = 2
	opts.GlassEvery = 3
	return opts
}

func newEngine() (*engine.Engine, *render.Recorder) {
	cfg := config.Default()
	cfg.Window.Width = 640
	cfg.Window.Height = 480
	dev := &render.Recorder{}
	return engine.New(cfg, dev), dev
}

func TestShapes(t *testing.T) {
	assert.Len(t, box(1, 1, 1), 36)
	assert.Len(t, roof(1, 1, 1, 1), 12)
	assert.Len(t, billboard(1, 1), 12)

	// Box faces point away from the center.
	for _, v := range box(2, 2, 2) {
		c := math.Vec3{Y: 1}
		assert.Greater(t, v.Pos.Sub(c).Dot(v.Normal), float32(0))
	}
}

func TestBuild(t *testing.T) {
	e, _ := newEngine()
	s, err := Build(e, smallOptions())
	require.NoError(t, err)
	require.Len(t, s.Props, 4)

	typ, err := e.ObjectType(s.Terrain)
	require.NoError(t, err)
	assert.Equal(t, records.TypeTerrain, typ)

	tris, err := e.TotalTriangles(s.Terrain)
	require.NoError(t, err)
	assert.Equal(t, 2*4*4, tris)

	for i, rank := range s.Props {
		tris, err := e.TotalTriangles(rank)
		require.NoError(t, err)
		assert.Equal(t, 12+4+12+4, tris, "prop %d", i)

		rec, err := e.Table().Get(rank)
		require.NoError(t, err)
		assert.Equal(t, i == 2, rec.Transparent(), "prop %d", i)
	}

	w, d := s.Height.Size()
	assert.Equal(t, float32(40), w)
	assert.Equal(t, float32(40), d)
	assert.InDelta(t, 20, s.Center().X, 1e-4)
}

func TestBuildFilesEveryBand(t *testing.T) {
	e, _ := newEngine()
	s, err := Build(e, smallOptions())
	require.NoError(t, err)

	rank := s.Props[0]
	tex := DefaultOptions().Textures
	l0, l1 := e.LimitLOD(0, false), e.LimitLOD(1, false)

	_, ok := e.SearchTexture(rank, geom.Tex(tex.Prop, ""), geom.LODRange{Min: 0, Max: l0})
	assert.True(t, ok, "near")
	_, ok = e.SearchTexture(rank, geom.Tex(tex.Prop, ""), geom.LODRange{Min: l0, Max: l1})
	assert.True(t, ok, "middle")
	_, ok = e.SearchTexture(rank, geom.Tex(tex.Far, ""), geom.LODRange{Min: l1, Max: geom.LODInfinity})
	assert.True(t, ok, "far")
	_, ok = e.SearchTexture(s.Terrain, geom.Tex(tex.Ground, tex.Detail), geom.LODRange{Min: 0, Max: geom.LODInfinity})
	assert.True(t, ok, "terrain")
}

func TestRenderDrawsNearBand(t *testing.T) {
	e, dev := newEngine()
	s, err := Build(e, smallOptions())
	require.NoError(t, err)

	c := s.Center()
	e.SetViewParams(c.Add(math.Vec3{Y: 40, Z: 60}), c, math.Vec3{Y: 1})
	stats := e.Render()

	assert.Positive(t, stats.ObjectsDrawn)
	assert.Positive(t, stats.DrawCalls)

	// Billboards are far-band only and the camera is close.
	for _, call := range dev.Filter(render.OpTexture) {
		assert.NotEqual(t, DefaultOptions().Textures.Far, call.Texture)
	}
}
