// Package config loads shadercat configuration from defaults, a YAML file,
// SHADERCAT_ environment variables and command-line flags.
package config

import "time"

// Config holds all configuration options.
type Config struct {
	// SystemDir is the bundled shader directory. Empty means next to the executable.
	SystemDir string `koanf:"system_dir"`
	// UserDirs are the user shader directories in search order.
	UserDirs []string `koanf:"user_dirs"`
	// StatePath is the preference database, or ":memory:".
	StatePath       string      `koanf:"state_path"`
	LogLevel        string      `koanf:"log_level"`
	OutputFormat    string      `koanf:"output"`
	RequireFallback bool        `koanf:"require_fallback"`
	Watch           WatchConfig `koanf:"watch"`

	// ConfigFile is the file the configuration was read from, if any.
	ConfigFile string `koanf:"-"`
}

// WatchConfig holds options for the watch command.
type WatchConfig struct {
	Debounce time.Duration `koanf:"debounce"`
}
