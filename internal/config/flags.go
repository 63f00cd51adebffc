package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file (.yaml or .toml)")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagWindowed   = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth      = flag.Int("width", 0, "Window width")
	flagHeight     = flag.Int("height", 0, "Window height")
	flagMaxObjects = flag.Int("max-objects", 0, "Object table capacity")
	flagLODNear    = flag.Float64("lod-near", 0, "Near LOD limit")
	flagLODFar     = flag.Float64("lod-far", 0, "Far LOD limit")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagWindowed {
		cfg.Window.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Window.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Window.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Window.Height = *flagHeight
	}
	if *flagMaxObjects > 0 {
		cfg.Engine.MaxObjects = *flagMaxObjects
	}
	if *flagLODNear > 0 {
		cfg.LOD.Near = float32(*flagLODNear)
	}
	if *flagLODFar > 0 {
		cfg.LOD.Far = float32(*flagLODFar)
	}
}
