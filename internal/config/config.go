// Package config handles engine configuration loading and management.
package config

// Config holds all engine settings.
type Config struct {
	Engine   EngineConfig  `yaml:"engine" toml:"engine"`
	LOD      LODConfig     `yaml:"lod" toml:"lod"`
	Render   RenderConfig  `yaml:"render" toml:"render"`
	Window   WindowConfig  `yaml:"window" toml:"window"`
	Textures TextureConfig `yaml:"textures" toml:"textures"`
	Logging  LoggingConfig `yaml:"logging" toml:"logging"`
}

// EngineConfig holds capacity and memory settings of the geometry index.
type EngineConfig struct {
	MaxObjects       int          `yaml:"max_objects" toml:"max_objects"`
	MaxShadows       int          `yaml:"max_shadows" toml:"max_shadows"`
	MaxVertices      int          `yaml:"max_vertices" toml:"max_vertices"` // 0 = unlimited
	CompactThreshold int          `yaml:"compact_threshold" toml:"compact_threshold"`
	Growth           GrowthConfig `yaml:"growth" toml:"growth"`
}

// GrowthConfig holds the fixed growth increment of each index level.
type GrowthConfig struct {
	Category int `yaml:"category" toml:"category"`
	Texture  int `yaml:"texture" toml:"texture"`
	Object   int `yaml:"object" toml:"object"`
	LOD      int `yaml:"lod" toml:"lod"`
	Layer    int `yaml:"layer" toml:"layer"`
	Batch    int `yaml:"batch" toml:"batch"`
	Vertex   int `yaml:"vertex" toml:"vertex"`
}

// LODConfig holds the level-of-detail breakpoints.
type LODConfig struct {
	Near           float32 `yaml:"near" toml:"near"`
	Far            float32 `yaml:"far" toml:"far"`
	TerrainVision  float32 `yaml:"terrain_vision" toml:"terrain_vision"`
	ObjectDetail   float32 `yaml:"object_detail" toml:"object_detail"`
	ReferenceWidth int     `yaml:"reference_width" toml:"reference_width"`
}

// RenderConfig holds projection and clipping settings.
type RenderConfig struct {
	FovDegrees       float32 `yaml:"fov_degrees" toml:"fov_degrees"`
	NearPlane        float32 `yaml:"near_plane" toml:"near_plane"`
	FarPlane         float32 `yaml:"far_plane" toml:"far_plane"`
	ClippingDistance float32 `yaml:"clipping_distance" toml:"clipping_distance"`
	Culling          bool    `yaml:"culling" toml:"culling"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Width      int  `yaml:"width" toml:"width"`
	Height     int  `yaml:"height" toml:"height"`
	Fullscreen bool `yaml:"fullscreen" toml:"fullscreen"`
	VSync      bool `yaml:"vsync" toml:"vsync"`
}

// TextureConfig holds texture lookup settings.
type TextureConfig struct {
	Root string `yaml:"root" toml:"root"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level" toml:"level"`
	LogFile string `yaml:"log_file" toml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			MaxObjects:       1200,
			MaxShadows:       500,
			MaxVertices:      0,
			CompactThreshold: 64,
			Growth: GrowthConfig{
				Category: 4,
				Texture:  50,
				Object:   100,
				LOD:      5,
				Layer:    10,
				Batch:    100,
				Vertex:   200,
			},
		},
		LOD: LODConfig{
			Near:           100,
			Far:            200,
			TerrainVision:  1000,
			ObjectDetail:   1,
			ReferenceWidth: 640,
		},
		Render: RenderConfig{
			FovDegrees:       45,
			NearPlane:        0.5,
			FarPlane:         1000,
			ClippingDistance: 1,
			Culling:          true,
		},
		Window: WindowConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
		},
		Textures: TextureConfig{
			Root: "textures",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
