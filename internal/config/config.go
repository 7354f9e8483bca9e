// Package config handles configuration for the gltftool CLI.
package config

// Config holds all tool settings.
type Config struct {
	Loader  LoaderConfig  `yaml:"loader"`
	Logging LoggingConfig `yaml:"logging"`
}

// LoaderConfig holds scene-loading options. The flags mirror the
// scene.Options fields.
type LoaderConfig struct {
	// SkipSkins disables skin resolution and joint-matrix evaluation.
	SkipSkins bool `yaml:"skip_skins"`
	// SkipAnimations disables animation loading.
	SkipAnimations bool `yaml:"skip_animations"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Loader: LoaderConfig{
			SkipSkins:      false,
			SkipAnimations: false,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
