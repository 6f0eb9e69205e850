// Package config handles engine configuration loading and management.
package config

// Config holds all engine settings.
type Config struct {
	Window      WindowConfig     `yaml:"window"`
	Graphics    GraphicsConfig   `yaml:"graphics"`
	Camera      CameraConfig     `yaml:"camera"`
	Scene       SceneConfig      `yaml:"scene"`
	Assets      AssetsConfig     `yaml:"assets"`
	Screenshots ScreenshotConfig `yaml:"screenshots"`
	Logging     LoggingConfig    `yaml:"logging"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
}

// GraphicsConfig holds rendering settings.
type GraphicsConfig struct {
	ClearColor [4]float32 `yaml:"clear_color"`
	// StreamBuffers re-creates mesh buffers every frame instead of caching
	// them for the lifetime of the object.
	StreamBuffers bool `yaml:"stream_buffers"`
}

// CameraConfig holds first-person camera settings.
type CameraConfig struct {
	FOV         float32    `yaml:"fov"` // degrees
	Near        float32    `yaml:"near"`
	Far         float32    `yaml:"far"`
	MoveSpeed   float32    `yaml:"move_speed"`  // units per second
	Sensitivity float32    `yaml:"sensitivity"` // degrees per mouse unit
	InvertY     bool       `yaml:"invert_y"`
	Position    [3]float32 `yaml:"position"`
}

// SceneConfig holds startup scene settings.
type SceneConfig struct {
	Startup       []string   `yaml:"startup"` // objects loaded before the first frame
	LightPosition [3]float32 `yaml:"light_position"`
	LightColor    [3]float32 `yaml:"light_color"`
}

// AssetsConfig holds asset paths.
type AssetsConfig struct {
	Root string `yaml:"root"`
}

// ScreenshotConfig holds screenshot output settings.
type ScreenshotConfig struct {
	Dir string `yaml:"dir"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level        string `yaml:"level"`
	LogFile      string `yaml:"log_file"`
	HistoryLines int    `yaml:"history_lines"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:  "Rat Engine",
			Width:  800,
			Height: 600,
			VSync:  true,
		},
		Graphics: GraphicsConfig{
			ClearColor: [4]float32{0.3, 0.3, 0.5, 1.0},
		},
		Camera: CameraConfig{
			FOV:         70,
			Near:        0.1,
			Far:         1000,
			MoveSpeed:   3,
			Sensitivity: 0.1,
			Position:    [3]float32{0, 0, 3},
		},
		Scene: SceneConfig{
			Startup:       []string{"rat"},
			LightPosition: [3]float32{2, 4, 2},
			LightColor:    [3]float32{1, 1, 1},
		},
		Assets: AssetsConfig{
			Root: "assets",
		},
		Screenshots: ScreenshotConfig{
			Dir: "screenshots",
		},
		Logging: LoggingConfig{
			Level:        "info",
			HistoryLines: 64,
		},
	}
}
