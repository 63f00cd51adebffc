package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/midgard-batch/internal/config"
	"github.com/Faultbox/midgard-batch/internal/engine/geom"
	"github.com/Faultbox/midgard-batch/internal/engine/records"
	"github.com/Faultbox/midgard-batch/internal/engine/render"
	"github.com/Faultbox/midgard-batch/pkg/math"
)

var (
	matM  = geom.Material{Diffuse: geom.Color{R: 1, G: 1, B: 1, A: 1}}
	matN  = geom.Material{Diffuse: geom.Color{R: 1, A: 1}}
	wall  = geom.Tex("wall.tga", "")
	every = geom.LODRange{Min: 0, Max: 1000}
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Window.Width = 640
	cfg.Window.Height = 480
	cfg.Engine.MaxObjects = 16
	cfg.Engine.MaxShadows = 4
	return cfg
}

func newEngine(t *testing.T) (*Engine, *render.Recorder) {
	t.Helper()
	dev := &render.Recorder{}
	e := New(testConfig(), dev)
	// Eye five units in front of the origin, looking at it.
	e.SetViewParams(math.Vec3{Z: 5}, math.Vec3{}, math.Vec3{Y: 1})
	return e, dev
}

func triangle() []geom.Vertex {
	return []geom.Vertex{
		{Pos: math.Vec3{X: -1, Y: -1}},
		{Pos: math.Vec3{X: 1, Y: -1}},
		{Pos: math.Vec3{Y: 1}},
	}
}

func keyOf(mat geom.Material, lod geom.LODRange) geom.Key {
	return geom.Key{Material: mat, State: geom.StateNormal, Texture: wall, LOD: lod}
}

// addObject creates an object at z with one triangle under lod.
func addObject(t *testing.T, e *Engine, z float32, mat geom.Material, lod geom.LODRange) int {
	t.Helper()
	rank, err := e.CreateObject()
	require.NoError(t, err)
	require.NoError(t, e.SetObjectTransform(rank, math.Translate(0, 0, z)))
	_, err = e.AddTriangle(rank, triangle(), keyOf(mat, lod), false)
	require.NoError(t, err)
	return rank
}

var center = math.Vec2{X: 0.5, Y: 0.5}

func TestEndToEndSingleTriangle(t *testing.T) {
	e, dev := newEngine(t)

	// Rank 0 stays empty so the triangle lands on rank 1.
	_, err := e.CreateObject()
	require.NoError(t, err)
	rank, err := e.CreateObject()
	require.NoError(t, err)
	require.Equal(t, 1, rank)

	_, err = e.AddTriangle(rank, triangle(), keyOf(matM, every), false)
	require.NoError(t, err)
	require.NoError(t, e.SetObjectTransform(rank, math.Identity()))

	stats := e.Render()
	assert.Equal(t, 1, stats.DrawCalls)
	assert.Equal(t, 1, stats.Triangles)
	assert.Equal(t, 1, stats.TextureBinds)

	textures := dev.Filter(render.OpTexture)
	require.Len(t, textures, 1)
	assert.Equal(t, "wall.tga", textures[0].Texture)

	draws := dev.Filter(render.OpDraw)
	require.Len(t, draws, 1)
	assert.Equal(t, 1, draws[0].Triangles)
	assert.Equal(t, matM, draws[0].Material)

	calls := dev.Calls
	assert.Equal(t, render.OpBegin, calls[0].Op)
	assert.Equal(t, render.OpEnd, calls[len(calls)-1].Op)
}

func TestTriangleCounts(t *testing.T) {
	e, _ := newEngine(t)
	rank, err := e.CreateObject()
	require.NoError(t, err)

	_, err = e.AddTriangle(rank, append(triangle(), triangle()...), keyOf(matM, every), false)
	require.NoError(t, err)
	strip := []geom.Vertex{
		{Pos: math.Vec3{X: 0}}, {Pos: math.Vec3{X: 0, Y: 1}},
		{Pos: math.Vec3{X: 1}}, {Pos: math.Vec3{X: 1, Y: 1}},
		{Pos: math.Vec3{X: 2}},
	}
	_, err = e.AddSurface(rank, strip, keyOf(matM, every), false)
	require.NoError(t, err)

	n, err := e.TotalTriangles(rank)
	require.NoError(t, err)
	assert.Equal(t, 2+3, n)

	_, err = e.TotalTriangles(9)
	assert.ErrorIs(t, err, records.ErrUnused)
}

func TestAddQuickCountsTriangles(t *testing.T) {
	e, _ := newEngine(t)
	rank, err := e.CreateObject()
	require.NoError(t, err)

	b := geom.NewBatch(geom.Triangles, matM, geom.StateNormal)
	b.Vertices = append(triangle(), triangle()...)
	id, err := e.AddQuick(rank, b, wall, every, false)
	require.NoError(t, err)

	got, ok := e.SearchTriangle(rank, keyOf(matM, every))
	require.True(t, ok)
	assert.Equal(t, id, got)
	n, _ := e.TotalTriangles(rank)
	assert.Equal(t, 2, n)

	_, err = e.AddQuick(rank, nil, wall, every, false)
	assert.ErrorIs(t, err, geom.ErrEmptyVertices)
}

func TestAddQuickCountsSurfaceWithoutRuns(t *testing.T) {
	e, _ := newEngine(t)
	rank, err := e.CreateObject()
	require.NoError(t, err)

	b := geom.NewBatch(geom.Surface, matM, geom.StateNormal)
	b.Vertices = make([]geom.Vertex, 5)
	for i := range b.Vertices {
		b.Vertices[i].Pos = math.Vec3{X: float32(i / 2), Y: float32(i % 2)}
	}
	id, err := e.AddQuick(rank, b, wall, every, false)
	require.NoError(t, err)

	n, _ := e.TotalTriangles(rank)
	assert.Equal(t, 3, n)
	got, ok := e.Batch(id)
	require.True(t, ok)
	assert.Equal(t, []int{5}, got.Strips)
}

func TestSearchTriangleMatchesLayer(t *testing.T) {
	e, _ := newEngine(t)
	rank, err := e.CreateObject()
	require.NoError(t, err)

	base := keyOf(matM, every)
	roof := base
	roof.Layer = 1
	id0, err := e.AddTriangle(rank, triangle(), base, false)
	require.NoError(t, err)
	id1, err := e.AddTriangle(rank, triangle(), roof, false)
	require.NoError(t, err)

	for _, tc := range []struct {
		key  geom.Key
		want geom.BatchID
	}{{base, id0}, {roof, id1}} {
		got, ok := e.SearchTriangle(rank, tc.key)
		require.True(t, ok)
		assert.Equal(t, tc.want, got, "layer %d", tc.key.Layer)
	}
}

func TestAddRejectsUnknownRank(t *testing.T) {
	e, _ := newEngine(t)
	_, err := e.AddTriangle(3, triangle(), keyOf(matM, every), false)
	assert.ErrorIs(t, err, records.ErrUnused)
	_, err = e.AddTriangle(-1, triangle(), keyOf(matM, every), false)
	assert.ErrorIs(t, err, records.ErrInvalidRank)
	assert.Zero(t, e.Tree().Stats().Batches)
}

func TestAddRejectsMalformedInput(t *testing.T) {
	e, _ := newEngine(t)
	rank, err := e.CreateObject()
	require.NoError(t, err)

	_, err = e.AddTriangle(rank, triangle()[:2], keyOf(matM, every), false)
	assert.ErrorIs(t, err, geom.ErrBadVertexCount)
	_, err = e.AddTriangle(rank, triangle(), geom.Key{Material: matM, LOD: every}, false)
	assert.ErrorIs(t, err, geom.ErrEmptyTexture)

	n, _ := e.TotalTriangles(rank)
	assert.Zero(t, n)
	lo, hi, err := e.BBox(rank)
	require.NoError(t, err)
	assert.Equal(t, math.Vec3{}, lo)
	assert.Equal(t, math.Vec3{}, hi)
}

func TestBBoxGrowsWithGeometry(t *testing.T) {
	e, _ := newEngine(t)
	rank := addObject(t, e, 0, matM, every)

	lo, hi, err := e.BBox(rank)
	require.NoError(t, err)
	assert.Equal(t, math.Vec3{X: -1, Y: -1}, lo)
	assert.Equal(t, math.Vec3{X: 1, Y: 1}, hi)
}

func TestDeferredBounds(t *testing.T) {
	e, _ := newEngine(t)
	rank, err := e.CreateObject()
	require.NoError(t, err)

	far := []geom.Vertex{{Pos: math.Vec3{X: 4}}, {Pos: math.Vec3{X: 5}}, {Pos: math.Vec3{X: 5, Y: 3}}}
	_, err = e.AddTriangle(rank, far, keyOf(matM, every), true)
	require.NoError(t, err)

	_, hi, _ := e.BBox(rank)
	assert.Equal(t, math.Vec3{}, hi, "bounds wait for Update")

	e.Update()
	lo, hi, _ := e.BBox(rank)
	assert.Equal(t, math.Vec3{}, lo)
	assert.Equal(t, math.Vec3{X: 5, Y: 3}, hi)
}

func TestDeletionIsolation(t *testing.T) {
	e, _ := newEngine(t)
	a := addObject(t, e, 0, matM, every)
	b := addObject(t, e, -2, matN, every)
	require.NoError(t, e.SetObjectTransparency(b, 0))
	before, err := e.ObjectTransform(b)
	require.NoError(t, err)

	require.NoError(t, e.DeleteObject(a))

	_, ok := e.SearchTriangle(a, keyOf(matM, every))
	assert.False(t, ok)
	id, ok := e.SearchTriangle(b, keyOf(matN, every))
	require.True(t, ok)
	batch, ok := e.Batch(id)
	require.True(t, ok)
	assert.Equal(t, triangle(), batch.Vertices)

	after, err := e.ObjectTransform(b)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	n, _ := e.TotalTriangles(b)
	assert.Equal(t, 1, n)

	stats := e.Render()
	assert.Equal(t, 1, stats.DrawCalls)

	assert.ErrorIs(t, e.DeleteObject(a), records.ErrUnused)
}

func TestSlotReuseStartsEmpty(t *testing.T) {
	e, _ := newEngine(t)
	a := addObject(t, e, 0, matM, every)
	_, err := e.CreateShadow(a)
	require.NoError(t, err)
	require.NoError(t, e.DeleteObject(a))

	again, err := e.CreateObject()
	require.NoError(t, err)
	assert.Equal(t, a, again)

	_, ok := e.SearchTriangle(again, keyOf(matM, every))
	assert.False(t, ok)
	n, _ := e.TotalTriangles(again)
	assert.Zero(t, n)
	_, hi, _ := e.BBox(again)
	assert.Equal(t, math.Vec3{}, hi)
	_, err = e.Shadow(again)
	assert.ErrorIs(t, err, records.ErrNoShadow)

	stats := e.Render()
	assert.Zero(t, stats.DrawCalls)
}

func TestDeleteCompactsPastThreshold(t *testing.T) {
	cfg := testConfig()
	cfg.Engine.CompactThreshold = 2
	e := New(cfg, &render.Recorder{})

	var ranks []int
	for i := 0; i < 3; i++ {
		rank, err := e.CreateObject()
		require.NoError(t, err)
		_, err = e.AddTriangle(rank, triangle(), keyOf(matM, every), false)
		require.NoError(t, err)
		ranks = append(ranks, rank)
	}

	require.NoError(t, e.DeleteObject(ranks[0]))
	assert.Equal(t, 1, e.Tree().Tombstones())
	require.NoError(t, e.DeleteObject(ranks[1]))
	assert.Zero(t, e.Tree().Tombstones())
	assert.Equal(t, 1, e.Tree().Stats().Objects)
}

func TestFlushObjects(t *testing.T) {
	e, _ := newEngine(t)
	addObject(t, e, 0, matM, every)
	addObject(t, e, -1, matM, every)
	e.FlushObjects()

	assert.Zero(t, e.Tree().Stats().Batches)
	assert.Equal(t, 14, e.RemainingObjects())
	rank, err := e.CreateObject()
	require.NoError(t, err)
	assert.Zero(t, rank)
}

func TestRemainingObjects(t *testing.T) {
	e, _ := newEngine(t)
	assert.Equal(t, 14, e.RemainingObjects())
	for i := 0; i < 14; i++ {
		_, err := e.CreateObject()
		require.NoError(t, err)
	}
	assert.Zero(t, e.RemainingObjects())

	// The reserve can still be claimed.
	_, err := e.CreateObject()
	require.NoError(t, err)
	_, err = e.CreateObject()
	require.NoError(t, err)
	_, err = e.CreateObject()
	assert.ErrorIs(t, err, records.ErrTableFull)
}

func TestFlagSetters(t *testing.T) {
	e, _ := newEngine(t)
	rank := addObject(t, e, 0, matM, every)

	require.NoError(t, e.SetObjectHide(rank, true))
	assert.Zero(t, e.Render().DrawCalls)
	require.NoError(t, e.SetObjectHide(rank, false))

	require.NoError(t, e.SetDrawWorld(rank, false))
	assert.Zero(t, e.Render().DrawCalls)
	require.NoError(t, e.SetDrawFront(rank, true))
	assert.Equal(t, 1, e.Render().DrawCalls, "drawn by the front pass")

	require.NoError(t, e.SetObjectType(rank, records.TypeVehicle))
	typ, err := e.ObjectType(rank)
	require.NoError(t, err)
	assert.Equal(t, records.TypeVehicle, typ)

	assert.ErrorIs(t, e.SetObjectDetect(12, true), records.ErrUnused)
	assert.ErrorIs(t, e.SetObjectTransparency(-3, 1), records.ErrInvalidRank)
}

func TestTransparentObjectDrawsLast(t *testing.T) {
	e, dev := newEngine(t)
	glass := addObject(t, e, 0, matM, every)
	addObject(t, e, -2, matN, every)
	require.NoError(t, e.SetObjectTransparency(glass, 0.5))

	e.Render()
	draws := dev.Filter(render.OpDraw)
	require.Len(t, draws, 2)
	assert.Equal(t, matN, draws[0].Material)
	assert.Equal(t, matM, draws[1].Material)
}

func TestPickingDeterminism(t *testing.T) {
	e, _ := newEngine(t)
	addObject(t, e, -3, matN, every)
	front := addObject(t, e, 0, matM, every)

	for i := 0; i < 5; i++ {
		rank, ok := e.DetectObject(center)
		require.True(t, ok)
		assert.Equal(t, front, rank, "nearest object wins")
	}
}

func TestPickingSkips(t *testing.T) {
	e, _ := newEngine(t)
	back := addObject(t, e, -3, matN, every)
	front := addObject(t, e, 0, matM, every)

	require.NoError(t, e.SetObjectDetect(front, false))
	rank, ok := e.DetectObject(center)
	require.True(t, ok)
	assert.Equal(t, back, rank)

	require.NoError(t, e.SetObjectType(back, records.TypeTerrain))
	_, ok = e.DetectObject(center)
	assert.False(t, ok, "terrain is never picked")

	require.NoError(t, e.SetObjectDetect(front, true))
	require.NoError(t, e.SetObjectHide(front, true))
	_, ok = e.DetectObject(center)
	assert.False(t, ok)
}

func TestPickingMisses(t *testing.T) {
	e, _ := newEngine(t)
	addObject(t, e, 0, matM, every)

	_, ok := e.DetectObject(math.Vec2{X: 0.05, Y: 0.95})
	assert.False(t, ok)

	// Behind the eye.
	e.SetViewParams(math.Vec3{Z: -5}, math.Vec3{Z: -10}, math.Vec3{Y: 1})
	_, ok = e.DetectObject(center)
	assert.False(t, ok)
}

func TestPickingUsesCurrentLOD(t *testing.T) {
	e, _ := newEngine(t)
	rank := addObject(t, e, 0, matM, geom.LODRange{Min: 10, Max: 100})

	_, ok := e.DetectObject(center)
	assert.False(t, ok, "distance 5 is outside [10,100)")

	e.SetViewParams(math.Vec3{Z: 20}, math.Vec3{}, math.Vec3{Y: 1})
	got, ok := e.DetectObject(center)
	require.True(t, ok)
	assert.Equal(t, rank, got)
}

func TestDetectTriangle(t *testing.T) {
	e, _ := newEngine(t)
	other := addObject(t, e, 0, matN, every)
	rank := addObject(t, e, -3, matM, every)

	hit, ok := e.DetectTriangle(center, rank)
	require.True(t, ok)
	assert.Equal(t, rank, hit.Rank)
	assert.Equal(t, matM, hit.Triangle.Material)
	assert.Equal(t, wall, hit.Triangle.Texture)
	assert.InDelta(t, 8, hit.Depth, 1e-3)

	hit, ok = e.DetectTriangle(center, other)
	require.True(t, ok)
	assert.InDelta(t, 5, hit.Depth, 1e-3)

	_, ok = e.DetectTriangle(center, -1)
	assert.False(t, ok)
}

func TestCastRay(t *testing.T) {
	e, _ := newEngine(t)
	addObject(t, e, -3, matN, every)
	front := addObject(t, e, 0, matM, every)

	ray := e.PickRay(320, 240)
	hit, ok := e.CastRay(ray)
	require.True(t, ok)
	assert.Equal(t, front, hit.Rank)
	assert.Greater(t, hit.Depth, float32(0))
	assert.Less(t, hit.Depth, float32(5))

	_, ok = e.CastRay(e.PickRay(5, 5))
	assert.False(t, ok)
}

func TestHighlight(t *testing.T) {
	e, dev := newEngine(t)
	rank := addObject(t, e, 0, matM, every)

	e.SetHighlight(rank)
	e.Render()
	boxes := dev.Filter(render.OpBox)
	require.Len(t, boxes, 1)
	assert.Equal(t, math.Identity(), boxes[0].World)

	require.NoError(t, e.DeleteObject(rank))
	assert.Equal(t, -1, e.Highlight())

	e.SetHighlight(7)
	assert.Equal(t, -1, e.Highlight(), "unused ranks are not highlighted")
}

func TestShadowHelpers(t *testing.T) {
	e, _ := newEngine(t)
	rank := addObject(t, e, 0, matM, every)

	s, err := e.CreateShadow(rank)
	require.NoError(t, err)
	s.Radius = 2
	again, err := e.CreateShadow(rank)
	require.NoError(t, err)
	assert.Same(t, s, again)

	got, err := e.Shadow(rank)
	require.NoError(t, err)
	assert.Equal(t, float32(2), got.Radius)

	require.NoError(t, e.DeleteShadow(rank))
	_, err = e.Shadow(rank)
	assert.ErrorIs(t, err, records.ErrNoShadow)
}

func TestTrianglesExport(t *testing.T) {
	e, _ := newEngine(t)
	rank, err := e.CreateObject()
	require.NoError(t, err)
	verts := make([]geom.Vertex, 0, 30)
	for i := 0; i < 10; i++ {
		verts = append(verts, triangle()...)
	}
	_, err = e.AddTriangle(rank, verts, keyOf(matM, every), false)
	require.NoError(t, err)

	half, err := e.Triangles(rank, every, 0.5, 0)
	require.NoError(t, err)
	assert.Len(t, half, 5)
	again, _ := e.Triangles(rank, every, 0.5, 0)
	assert.Equal(t, half, again)

	none, err := e.Triangles(rank, geom.LODRange{Min: 0, Max: 10}, 1, 0)
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = e.Triangles(8, every, 1, 0)
	assert.ErrorIs(t, err, records.ErrUnused)
}

func TestTextureOps(t *testing.T) {
	e, _ := newEngine(t)
	rank := addObject(t, e, 0, matM, every)

	moved, err := e.ChangeSecondTexture(rank, "dirt.tga")
	require.NoError(t, err)
	assert.Equal(t, 1, moved)
	dual := geom.Key{Material: matM, Texture: geom.Tex("wall.tga", "dirt.tga"), LOD: every}
	_, ok := e.SearchTriangle(rank, dual)
	assert.True(t, ok)
	_, ok = e.SearchTexture(rank, dual.Texture, every)
	assert.True(t, ok)

	require.NoError(t, e.ChangeTextureMapping(rank, dual, geom.MappingX, 1, 0, 1, 0))
	err = e.ChangeTextureMapping(rank, keyOf(matM, every), geom.MappingX, 1, 0, 1, 0)
	assert.ErrorIs(t, err, geom.ErrNotFound)

	err = e.TrackTextureMapping(rank, dual, geom.Track{Factor: 1, Length: 1, Width: 1})
	assert.ErrorIs(t, err, geom.ErrBadVertexCount)

	_, err = e.ChangeSecondTexture(11, "x.tga")
	assert.ErrorIs(t, err, records.ErrUnused)
}
