// Command batchstat renders the test field headless through a recording
// device and prints draw statistics per detail mode as YAML.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/chewxy/math32"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/midgard-batch/internal/config"
	"github.com/Faultbox/midgard-batch/internal/engine"
	"github.com/Faultbox/midgard-batch/internal/engine/camera"
	"github.com/Faultbox/midgard-batch/internal/engine/geom"
	"github.com/Faultbox/midgard-batch/internal/engine/render"
	"github.com/Faultbox/midgard-batch/internal/engine/scene"
	"github.com/Faultbox/midgard-batch/internal/logger"
	"github.com/Faultbox/midgard-batch/pkg/math"
)

var (
	flagFrames = flag.Int("frames", 120, "Frames rendered per detail mode")
	flagProps  = flag.Int("props", 0, "Props per side of the test field")
	flagDetail = flag.Float64("object-detail", 0, "Object detail applied with ChangeLOD before the run")
	flagOut    = flag.String("out", "", "Write the report to this file instead of stdout")
)

var centerOfScreen = math.Vec2{X: 0.5, Y: 0.5}

// Report is the YAML document batchstat prints.
type Report struct {
	Objects   int          `yaml:"objects"`
	LODNear   float32      `yaml:"lod_near"`
	LODFar    float32      `yaml:"lod_far"`
	LODMoved  int          `yaml:"lod_ranges_moved"`
	Tree      geom.Stats   `yaml:"tree"`
	Modes     []ModeReport `yaml:"modes"`
	Remaining int          `yaml:"remaining_objects"`
}

// ModeReport averages one detail mode over the orbit.
type ModeReport struct {
	Mode      string       `yaml:"mode"`
	Frames    int          `yaml:"frames"`
	PerFrame  render.Stats `yaml:"per_frame"`
	CenterHit int          `yaml:"center_hits"`
}

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	report, err := run(cfg, *flagFrames)
	if err != nil {
		logger.Error("batchstat failed", zap.Error(err))
		os.Exit(1)
	}

	var out io.Writer = os.Stdout
	if *flagOut != "" {
		f, err := os.Create(*flagOut)
		if err != nil {
			logger.Error("creating report", zap.Error(err))
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(report); err != nil {
		logger.Error("writing report", zap.Error(err))
		os.Exit(1)
	}
	_ = enc.Close()
}

func run(cfg *config.Config, frames int) (*Report, error) {
	dev := &render.Recorder{}
	eng := engine.New(cfg, dev)

	opts := scene.DefaultOptions()
	if *flagProps > 0 {
		opts.Props = *flagProps
	}
	field, err := scene.Build(eng, opts)
	if err != nil {
		return nil, err
	}

	r := &Report{Objects: len(field.Props) + 1}
	if *flagDetail > 0 {
		eng.SetObjectDetail(float32(*flagDetail))
		r.LODMoved = eng.ChangeLOD()
	}
	r.LODNear, r.LODFar = eng.LimitLOD(0, false), eng.LimitLOD(1, false)
	r.Tree = eng.Tree().Stats()
	r.Remaining = eng.RemainingObjects()

	orbit := camera.NewOrbitCamera()
	orbit.FitToBounds(field.Lo, field.Hi)
	frames = max(frames, 1)

	for _, mode := range []engine.DetailMode{engine.DetailAuto, engine.DetailLow, engine.DetailMedium, engine.DetailHigh} {
		eng.SetDetailMode(mode)
		var total render.Stats
		hits := 0
		for i := 0; i < frames; i++ {
			orbit.RotationY = 2 * math32.Pi * float32(i) / float32(frames)
			orbit.Apply(eng.View())
			dev.Reset()
			total.Add(eng.Render())
			if _, ok := eng.DetectObject(centerOfScreen); ok {
				hits++
			}
		}
		r.Modes = append(r.Modes, ModeReport{
			Mode:      mode.String(),
			Frames:    frames,
			PerFrame:  average(total, frames),
			CenterHit: hits,
		})
	}
	return r, nil
}

func average(s render.Stats, n int) render.Stats {
	return render.Stats{
		DrawCalls:     s.DrawCalls / n,
		Triangles:     s.Triangles / n,
		TextureBinds:  s.TextureBinds / n,
		MaterialBinds: s.MaterialBinds / n,
		StateBinds:    s.StateBinds / n,
		WorldBinds:    s.WorldBinds / n,
		ObjectsDrawn:  s.ObjectsDrawn / n,
		ObjectsCulled: s.ObjectsCulled / n,
	}
}
