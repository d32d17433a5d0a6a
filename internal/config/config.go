// Package config handles tool configuration loading and management.
package config

// Config holds all tool settings.
type Config struct {
	Subdivision SubdivisionConfig `yaml:"subdivision"`
	Viewer      ViewerConfig      `yaml:"viewer"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// SubdivisionConfig holds refinement settings.
type SubdivisionConfig struct {
	// MaxDepth is the subdivision depth used when no depth is given
	// explicitly. Memory grows 4x per level.
	MaxDepth int `yaml:"max_depth"`
	// Workers bounds the goroutines used by the refinement kernels.
	// Zero means one per CPU.
	Workers int `yaml:"workers"`
}

// ViewerConfig holds display and rendering settings.
type ViewerConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
	ShowCage   bool `yaml:"show_cage"` // overlay the control cage on start
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Subdivision: SubdivisionConfig{
			MaxDepth: 3,
			Workers:  0,
		},
		Viewer: ViewerConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
			ShowCage:   true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
