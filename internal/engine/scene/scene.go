// Package scene fills an engine with a test field: a terrain object and a
// grid of props that carry one mesh per LOD band. Both the viewer and the
// headless benchmark build their frames from it.
package scene

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-batch/internal/engine"
	"github.com/Faultbox/midgard-batch/internal/engine/geom"
	"github.com/Faultbox/midgard-batch/internal/engine/records"
	"github.com/Faultbox/midgard-batch/internal/engine/terrain"
	"github.com/Faultbox/midgard-batch/internal/logger"
	"github.com/Faultbox/midgard-batch/pkg/math"
)

// Textures names the textures the field uses.
type Textures struct {
	Ground string
	Detail string
	Prop   string
	Roof   string
	Far    string
}

// Options controls the size of the field.
type Options struct {
	Tiles     int
	TileZoom  float32
	Amplitude float32
	// Props is the number of props per side of the grid.
	Props int
	// GlassEvery makes every n-th prop half transparent; 0 disables it.
	GlassEvery int
	Textures   Textures
}

// DefaultOptions returns a 64 by 64 tile field with 12 by 12 props.
func DefaultOptions() Options {
	return Options{
		Tiles:      64,
		TileZoom:   10,
		Amplitude:  12,
		Props:      12,
		GlassEvery: 7,
		Textures: Textures{
			Ground: "ground.tga",
			Detail: "detail.bmp",
			Prop:   "wall.tga",
			Roof:   "roof.tga",
			Far:    "tree.png",
		},
	}
}

var (
	groundMat = geom.Material{
		Diffuse: geom.Color{R: 0.8, G: 0.8, B: 0.8, A: 1},
		Ambient: geom.Color{R: 0.5, G: 0.5, B: 0.5, A: 1},
	}
	propMat = geom.Material{
		Diffuse: geom.Color{R: 1, G: 1, B: 1, A: 1},
		Ambient: geom.Color{R: 0.4, G: 0.4, B: 0.4, A: 1},
	}
	roofMat = geom.Material{
		Diffuse: geom.Color{R: 0.9, G: 0.4, B: 0.3, A: 1},
		Ambient: geom.Color{R: 0.3, G: 0.1, B: 0.1, A: 1},
	}
)

// Scene records what Build created.
type Scene struct {
	Terrain int
	Props   []int
	Height  *terrain.Heightmap
	Lo, Hi  math.Vec3
}

// Center returns the middle of the field's bounding box.
func (s *Scene) Center() math.Vec3 {
	return s.Lo.Add(s.Hi).Scale(0.5)
}

// Build adds the terrain and the prop grid to e. LOD bands are taken from
// the engine's current limits.
func Build(e *engine.Engine, opts Options) (*Scene, error) {
	log := logger.Named("scene")
	s := &Scene{Height: terrain.Generate(opts.Tiles, opts.Tiles, opts.TileZoom, opts.Amplitude)}

	var err error
	if s.Terrain, err = buildTerrain(e, s.Height, opts.Textures); err != nil {
		return nil, err
	}
	if s.Lo, s.Hi, err = e.BBox(s.Terrain); err != nil {
		return nil, err
	}

	w, d := s.Height.Size()
	n := max(opts.Props, 0)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			x := (float32(i) + 0.5) * w / float32(n)
			z := (float32(j) + 0.5) * d / float32(n)
			rank, err := buildProp(e, math.Vec3{X: x, Y: s.Height.HeightAt(x, z), Z: z}, opts.Textures)
			if err != nil {
				return nil, err
			}
			if opts.GlassEvery > 0 && len(s.Props)%opts.GlassEvery == opts.GlassEvery-1 {
				if err := e.SetObjectTransparency(rank, 0.5); err != nil {
					return nil, err
				}
			}
			s.Props = append(s.Props, rank)
		}
	}

	log.Info("scene built",
		zap.Int("terrain", s.Terrain),
		zap.Int("props", len(s.Props)),
		zap.Float32("lod_near", e.LimitLOD(0, false)),
		zap.Float32("lod_far", e.LimitLOD(1, false)))
	return s, nil
}

func buildTerrain(e *engine.Engine, h *terrain.Heightmap, tex Textures) (int, error) {
	rank, err := e.CreateObject()
	if err != nil {
		return 0, fmt.Errorf("terrain: %w", err)
	}
	if err := e.SetObjectType(rank, records.TypeTerrain); err != nil {
		return 0, err
	}
	key := geom.Key{
		Material: groundMat,
		State:    geom.StateNormal | geom.StateSecond,
		Texture:  geom.Tex(tex.Ground, tex.Detail),
		LOD:      geom.LODRange{Min: 0, Max: geom.LODInfinity},
	}
	for _, strip := range terrain.BuildStrips(h, 4) {
		if _, err := e.AddSurface(rank, strip, key, true); err != nil {
			return 0, fmt.Errorf("terrain: %w", err)
		}
	}
	e.Update()
	return rank, nil
}

// buildProp adds a house with a detailed near mesh, a plain box for the
// middle band and a color-keyed billboard beyond the far limit.
func buildProp(e *engine.Engine, at math.Vec3, tex Textures) (int, error) {
	rank, err := e.CreateObject()
	if err != nil {
		return 0, fmt.Errorf("prop: %w", err)
	}
	if err := e.SetObjectType(rank, records.TypeFixed); err != nil {
		return 0, err
	}
	if err := e.SetObjectTransform(rank, math.Translate(at.X, at.Y, at.Z)); err != nil {
		return 0, err
	}

	l0, l1 := e.LimitLOD(0, false), e.LimitLOD(1, false)
	nearBand := geom.LODRange{Min: 0, Max: l0}
	midBand := geom.LODRange{Min: l0, Max: l1}
	farBand := geom.LODRange{Min: l1, Max: geom.LODInfinity}

	walls := geom.Key{Material: propMat, State: geom.StateNormal, Texture: geom.Tex(tex.Prop, ""), LOD: nearBand}
	if _, err := e.AddTriangle(rank, box(4, 3, 4), walls, false); err != nil {
		return 0, err
	}
	top := geom.Key{Material: roofMat, State: geom.StateNormal, Texture: geom.Tex(tex.Roof, ""), LOD: nearBand, Layer: 1}
	if _, err := e.AddTriangle(rank, roof(4.4, 4.4, 3, 2), top, false); err != nil {
		return 0, err
	}

	mid := geom.NewBatch(geom.Triangles, propMat, geom.StateNormal)
	mid.Vertices = box(4, 4, 4)
	if _, err := e.AddQuick(rank, mid, geom.Tex(tex.Prop, ""), midBand, false); err != nil {
		return 0, err
	}

	far := geom.Key{
		Material: propMat,
		State:    geom.StateTTextureBlack | geom.StateTwoFace,
		Texture:  geom.Tex(tex.Far, ""),
		LOD:      farBand,
	}
	if _, err := e.AddTriangle(rank, billboard(5, 5), far, false); err != nil {
		return 0, err
	}
	return rank, nil
}
