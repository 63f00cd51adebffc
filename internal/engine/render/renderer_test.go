package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/midgard-batch/internal/engine/camera"
	"github.com/Faultbox/midgard-batch/internal/engine/geom"
	"github.com/Faultbox/midgard-batch/internal/engine/records"
	"github.com/Faultbox/midgard-batch/pkg/math"
)

var (
	matA  = geom.Material{Diffuse: geom.Color{R: 1, A: 1}}
	matB  = geom.Material{Diffuse: geom.Color{G: 1, A: 1}}
	matC  = geom.Material{Diffuse: geom.Color{B: 1, A: 1}}
	wall  = geom.Tex("wall.tga", "")
	stone = geom.Tex("stone.tga", "moss.tga")
	every = geom.LODRange{Min: 0, Max: 1000}
)

type scene struct {
	tree  *geom.Tree
	table *records.Table
	view  *camera.View
	dev   *Recorder
	r     *Renderer
}

func newScene() *scene {
	view := camera.NewView(640, 480, 45, 0.5, 1000)
	view.SetViewParams(math.Vec3{}, math.Vec3{Z: -1}, math.Vec3{Y: 1})
	dev := &Recorder{}
	return &scene{
		tree:  geom.NewTree(geom.DefaultOptions()),
		table: records.NewTable(16, 4),
		view:  view,
		dev:   dev,
		r:     New(dev, Options{Culling: true}),
	}
}

func triangle() []geom.Vertex {
	return []geom.Vertex{
		{Pos: math.Vec3{X: -1, Y: -1}},
		{Pos: math.Vec3{X: 1, Y: -1}},
		{Pos: math.Vec3{Y: 1}},
	}
}

// object creates a record at pos and files one triangle for it.
func (s *scene) object(t *testing.T, pos math.Vec3, mat geom.Material, tex geom.TexturePair, lod geom.LODRange) (int, *records.Record) {
	t.Helper()
	rank, err := s.table.Create()
	require.NoError(t, err)
	rec, err := s.table.Get(rank)
	require.NoError(t, err)
	rec.Transform = math.Translate(pos.X, pos.Y, pos.Z)

	verts := triangle()
	_, err = s.tree.AddTriangles(rank, verts, geom.Key{Material: mat, Texture: tex, LOD: lod})
	require.NoError(t, err)
	for _, v := range verts {
		rec.Include(v.Pos)
	}
	return rank, rec
}

func (s *scene) frame() Stats {
	s.table.ComputeDistances(s.view.Eye)
	s.dev.Reset()
	s.dev.Begin()
	st := s.r.Frame(s.tree, s.table, s.view)
	s.dev.End()
	return st
}

func TestTraversalBindsSharedTextureOnce(t *testing.T) {
	s := newScene()
	s.object(t, math.Vec3{X: -2, Z: -10}, matA, wall, every)
	s.object(t, math.Vec3{X: 2, Z: -10}, matB, wall, every)

	st := s.frame()
	assert.Equal(t, 2, st.DrawCalls)
	assert.Equal(t, 1, st.TextureBinds)
	assert.Equal(t, 2, st.MaterialBinds)
	assert.Equal(t, 2, st.ObjectsDrawn)

	textures := s.dev.Filter(OpTexture)
	require.Len(t, textures, 1)
	assert.Equal(t, "wall.tga", textures[0].Texture)
	mats := s.dev.Filter(OpMaterial)
	require.Len(t, mats, 2)
	assert.Equal(t, matA, mats[0].Material)
	assert.Equal(t, matB, mats[1].Material)
}

func TestTraversalGroupsByTexture(t *testing.T) {
	s := newScene()
	// Interleave textures across objects; the tree regroups them.
	s.object(t, math.Vec3{Z: -10}, matA, wall, every)
	s.object(t, math.Vec3{Z: -12}, matA, stone, every)
	s.object(t, math.Vec3{Z: -14}, matA, wall, every)
	s.object(t, math.Vec3{Z: -16}, matA, stone, every)

	st := s.frame()
	assert.Equal(t, 4, st.DrawCalls)
	// wall, then stone plus its second texture.
	assert.Equal(t, 3, st.TextureBinds)
	assert.Equal(t, 1, st.MaterialBinds)
	assert.Equal(t, 4, st.WorldBinds)

	var names []string
	for _, c := range s.dev.Filter(OpTexture) {
		names = append(names, c.Texture)
	}
	assert.Equal(t, []string{"wall.tga", "stone.tga", "moss.tga"}, names)
}

func TestLODRangeExactness(t *testing.T) {
	tests := []struct {
		distance float32
		drawn    bool
	}{
		{5, false},
		{9.99, false},
		{10, true},
		{30, true},
		{49.9, true},
		{50, false},
		{80, false},
	}
	for _, tt := range tests {
		s := newScene()
		s.object(t, math.Vec3{Z: -tt.distance}, matA, wall, geom.LODRange{Min: 10, Max: 50})
		st := s.frame()
		if tt.drawn {
			assert.Equal(t, 1, st.DrawCalls, "distance %v", tt.distance)
		} else {
			assert.Zero(t, st.DrawCalls, "distance %v", tt.distance)
		}
	}
}

func TestLODSwapsGeometry(t *testing.T) {
	s := newScene()
	rank, rec := s.object(t, math.Vec3{Z: -20}, matA, wall, geom.LODRange{Min: 0, Max: 100})
	_, err := s.tree.AddTriangles(rank, append(triangle(), triangle()...),
		geom.Key{Material: matB, Texture: wall, LOD: geom.LODRange{Min: 100, Max: geom.LODInfinity}})
	require.NoError(t, err)

	s.frame()
	draws := s.dev.Filter(OpDraw)
	require.Len(t, draws, 1)
	assert.Equal(t, matA, draws[0].Material)

	rec.Transform = math.Translate(0, 0, -150)
	s.frame()
	draws = s.dev.Filter(OpDraw)
	require.Len(t, draws, 1)
	assert.Equal(t, matB, draws[0].Material)
	assert.Equal(t, 2, draws[0].Triangles)
}

func TestHiddenAndCulled(t *testing.T) {
	s := newScene()
	_, hidden := s.object(t, math.Vec3{Z: -10}, matA, wall, every)
	hidden.Set(records.Hidden, true)
	s.object(t, math.Vec3{Z: 10}, matB, wall, every) // behind the eye
	_, noWorld := s.object(t, math.Vec3{Z: -12}, matC, wall, every)
	noWorld.Set(records.DrawWorld, false)

	st := s.frame()
	assert.Zero(t, st.DrawCalls)
	assert.Equal(t, 1, st.ObjectsCulled)

	s.r.SetCulling(false)
	st = s.frame()
	assert.Equal(t, 1, st.DrawCalls, "only the object behind the eye comes back")
	assert.Zero(t, st.ObjectsCulled)
}

func TestPassOrder(t *testing.T) {
	s := newScene()
	_, glass := s.object(t, math.Vec3{Z: -10}, matC, wall, every)
	glass.Transparency = 0.5
	s.object(t, math.Vec3{Z: -11}, matB, wall, every)
	_, ground := s.object(t, math.Vec3{Z: -12}, matA, wall, every)
	ground.Type = records.TypeTerrain

	s.frame()
	draws := s.dev.Filter(OpDraw)
	require.Len(t, draws, 3)
	assert.Equal(t, matA, draws[0].Material, "terrain first")
	assert.Equal(t, matB, draws[1].Material, "opaque second")
	assert.Equal(t, matC, draws[2].Material, "transparent last")

	states := s.dev.Filter(OpState)
	last := states[len(states)-1]
	assert.Equal(t, TransparentState, last.State)
	assert.Equal(t, float32(0.5), last.Transparency)
}

func TestFrameFront(t *testing.T) {
	s := newScene()
	_, front := s.object(t, math.Vec3{Z: -10}, matA, wall, every)
	front.Set(records.DrawFront, true)
	front.Set(records.DrawWorld, false)
	s.object(t, math.Vec3{Z: -11}, matB, wall, every)

	s.table.ComputeDistances(s.view.Eye)
	st := s.r.FrameFront(s.tree, s.table, s.view)
	assert.Equal(t, 1, st.DrawCalls)

	st = s.frame()
	assert.Equal(t, 1, st.DrawCalls)
	assert.Equal(t, matB, s.dev.Filter(OpDraw)[0].Material)
}

func TestObjectSpreadOverTexturesCountsOnce(t *testing.T) {
	s := newScene()
	rank, _ := s.object(t, math.Vec3{Z: -10}, matA, wall, every)
	_, err := s.tree.AddTriangles(rank, triangle(), geom.Key{Material: matA, Texture: stone, LOD: every})
	require.NoError(t, err)

	st := s.frame()
	assert.Equal(t, 2, st.DrawCalls)
	assert.Equal(t, 1, st.ObjectsDrawn)
	assert.Equal(t, 2, st.WorldBinds, "world is set once per texture bucket visit")
}

func TestStateCacheDropsRepeats(t *testing.T) {
	dev := &Recorder{}
	c := NewStateCache(dev)

	c.BindTexture(0, "a.tga")
	c.BindTexture(0, "a.tga")
	c.BindTexture(1, "")
	c.BindTexture(2, "ignored.tga")
	c.SetMaterial(matA)
	c.SetMaterial(matA)
	c.SetState(geom.StateNormal, 0)
	c.SetState(geom.StateNormal, 0)
	c.SetState(geom.StateNormal, 0.5)

	assert.Equal(t, 1, c.TextureBinds)
	assert.Equal(t, 1, c.MaterialBinds)
	assert.Equal(t, 2, c.StateBinds)
	assert.Equal(t, 4, len(dev.Calls))

	c.Invalidate()
	c.SetMaterial(matA)
	c.BindTexture(0, "a.tga")
	assert.Equal(t, 2, c.MaterialBinds)
	assert.Equal(t, 2, c.TextureBinds)

	c.ResetCounters()
	assert.Zero(t, c.TextureBinds)
}

func TestStatsAdd(t *testing.T) {
	var total Stats
	total.Add(Stats{DrawCalls: 2, Triangles: 5, ObjectsDrawn: 1})
	total.Add(Stats{DrawCalls: 1, Triangles: 1, ObjectsCulled: 3})
	assert.Equal(t, Stats{DrawCalls: 3, Triangles: 6, ObjectsDrawn: 1, ObjectsCulled: 3}, total)
}

func TestOpString(t *testing.T) {
	assert.Equal(t, "draw", OpDraw.String())
	assert.Equal(t, "unknown", Op(42).String())
}
