// Command batchview opens a window on the test field and lets you fly
// around it, pick objects and switch detail levels.
//
// Controls: left drag orbits, wheel zooms, WASD/QE pans, click selects,
// 1-4 pick the detail mode (auto, low, medium, high), F12 saves a
// screenshot, Escape quits.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-batch/internal/config"
	"github.com/Faultbox/midgard-batch/internal/engine"
	"github.com/Faultbox/midgard-batch/internal/engine/camera"
	"github.com/Faultbox/midgard-batch/internal/engine/debug"
	"github.com/Faultbox/midgard-batch/internal/engine/input"
	"github.com/Faultbox/midgard-batch/internal/engine/render"
	"github.com/Faultbox/midgard-batch/internal/engine/render/gldevice"
	"github.com/Faultbox/midgard-batch/internal/engine/scene"
	"github.com/Faultbox/midgard-batch/internal/engine/texture"
	"github.com/Faultbox/midgard-batch/internal/engine/window"
	"github.com/Faultbox/midgard-batch/internal/logger"
	"github.com/Faultbox/midgard-batch/pkg/math"
)

var flagProps = flag.Int("props", 0, "Props per side of the test field")

// clickSlop is how far the mouse may move, in pixels, between press and
// release for the release to count as a click.
const clickSlop = 4

var detailKeys = map[sdl.Scancode]engine.DetailMode{
	sdl.SCANCODE_1: engine.DetailAuto,
	sdl.SCANCODE_2: engine.DetailLow,
	sdl.SCANCODE_3: engine.DetailMedium,
	sdl.SCANCODE_4: engine.DetailHigh,
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

	logger.Info("=== Midgard Batch Viewer ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	if err := run(cfg); err != nil {
		logger.Error("viewer error", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("viewer closed normally")
}

type viewer struct {
	win   *window.Window
	in    *input.Input
	dev   *gldevice.Device
	eng   *engine.Engine
	orbit *camera.OrbitCamera
	shots *debug.Screenshots

	capture bool

	downX, downY int
	dragged      bool
}

func run(cfg *config.Config) error {
	win, err := window.New(window.FromConfig("Midgard Batch", cfg.Window))
	if err != nil {
		return err
	}
	defer win.Close()

	dev, err := gldevice.New(texture.NewDirLoader(cfg.Textures.Root))
	if err != nil {
		return err
	}
	defer dev.Close()

	eng := engine.New(cfg, dev)
	dev.SetView(eng.View())
	eng.SetViewport(win.Size())

	opts := scene.DefaultOptions()
	if *flagProps > 0 {
		opts.Props = *flagProps
	}
	field, err := scene.Build(eng, opts)
	if err != nil {
		return fmt.Errorf("building scene: %w", err)
	}

	v := &viewer{
		win:   win,
		in:    input.New(),
		dev:   dev,
		eng:   eng,
		orbit: camera.NewOrbitCamera(),
		shots: debug.NewScreenshots("screenshots", "batchview"),
	}
	v.orbit.FitToBounds(field.Lo, field.Hi)

	var updates <-chan *config.Config
	if path := config.ConfigPath(); path != "" {
		w, err := config.Watch(path)
		if err != nil {
			logger.Warn("config watch disabled", zap.String("path", path), zap.Error(err))
		} else {
			defer w.Close()
			updates = w.Updates()
		}
	}

	var (
		frames   int
		total    render.Stats
		lastTick = time.Now()
	)
	for {
		if v.in.Update() {
			return nil
		}
		if v.handle() {
			return nil
		}

		select {
		case next := <-updates:
			eng.ApplyConfig(next)
		default:
		}

		v.orbit.Apply(eng.View())
		total.Add(eng.Render())
		if v.capture {
			v.saveScreenshot()
		}
		win.SwapBuffers()
		frames++

		if since := time.Since(lastTick); since >= time.Second {
			win.SetTitle(fmt.Sprintf("Midgard Batch | %.0f fps | %d draws | %d tris | %s",
				float64(frames)/since.Seconds(), total.DrawCalls/frames, total.Triangles/frames,
				eng.DetailMode()))
			frames, total, lastTick = 0, render.Stats{}, time.Now()
		}
	}
}

// handle applies this frame's events. It returns true on Escape.
func (v *viewer) handle() bool {
	for _, ev := range v.in.Events() {
		switch ev.Type {
		case input.EventWindowResize:
			v.eng.SetViewport(v.win.Size())
			v.eng.ChangeLOD()

		case input.EventMouseDown:
			if ev.Button == sdl.BUTTON_LEFT {
				v.downX, v.downY, v.dragged = ev.MouseX, ev.MouseY, false
			}

		case input.EventMouseMove:
			if v.in.ButtonHeld(sdl.BUTTON_LEFT) {
				v.orbit.HandleDrag(float32(ev.DeltaX), float32(ev.DeltaY))
				if abs(ev.MouseX-v.downX) > clickSlop || abs(ev.MouseY-v.downY) > clickSlop {
					v.dragged = true
				}
			}

		case input.EventMouseUp:
			if ev.Button == sdl.BUTTON_LEFT && !v.dragged {
				v.pick(ev.MouseX, ev.MouseY)
			}

		case input.EventMouseWheel:
			v.orbit.HandleZoom(float32(ev.DeltaY))

		case input.EventKeyDown:
			switch ev.Key {
			case sdl.SCANCODE_ESCAPE:
				return true
			case sdl.SCANCODE_F12:
				v.capture = true
			}
			if mode, ok := detailKeys[ev.Key]; ok {
				v.eng.SetDetailMode(mode)
			}
		}
	}

	var forward, right, up float32
	keys := sdl.GetKeyboardState()
	if keys[sdl.SCANCODE_W] != 0 {
		forward++
	}
	if keys[sdl.SCANCODE_S] != 0 {
		forward--
	}
	if keys[sdl.SCANCODE_D] != 0 {
		right++
	}
	if keys[sdl.SCANCODE_A] != 0 {
		right--
	}
	if keys[sdl.SCANCODE_E] != 0 {
		up++
	}
	if keys[sdl.SCANCODE_Q] != 0 {
		up--
	}
	if forward != 0 || right != 0 || up != 0 {
		v.orbit.HandleMovement(forward, right, up)
	}
	return false
}

// pick selects the object under the mouse. Mouse coordinates are in
// window points, which differ from drawable pixels on HiDPI displays.
func (v *viewer) pick(mx, my int) {
	pw, ph := v.win.PointSize()
	p := math.Vec2{X: float32(mx) / float32(pw), Y: 1 - float32(my)/float32(ph)}
	rank, ok := v.eng.DetectObject(p)
	if !ok {
		v.eng.SetHighlight(-1)
		return
	}
	v.eng.SetHighlight(rank)
	tris, _ := v.eng.TotalTriangles(rank)
	logger.Info("object picked", zap.Int("rank", rank), zap.Int("triangles", tris))
}

func (v *viewer) saveScreenshot() {
	v.capture = false
	pixels, w, h := v.dev.ReadPixels()
	name, err := v.shots.SavePixels(pixels, w, h)
	if err != nil {
		logger.Warn("screenshot failed", zap.Error(err))
		return
	}
	logger.Info("screenshot saved", zap.String("file", name))
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
