package config

import "time"

// Config file names, tried in order.
const (
	ConfigFileName    = "shadercat.yaml"
	ConfigFileNameAlt = "shadercat.yml"
)

// EnvPrefix prefixes every environment variable the loader reads.
const EnvPrefix = "SHADERCAT_"

// Default configuration values.
const (
	DefaultStateFile       = ".shadercat/prefs.db"
	DefaultLogLevel        = "warn"
	DefaultOutput          = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultRequireFallback = true
	DefaultWatchDebounce   = 200 * time.Millisecond
)

// Defaults returns the lowest-precedence configuration layer.
func Defaults() map[string]any {
	return map[string]any{
		"system_dir":       "",
		"user_dirs":        []string{},
		"state_path":       DefaultStateFile,
		"log_level":        DefaultLogLevel,
		"output":           DefaultOutput,
		"require_fallback": DefaultRequireFallback,
		"watch.debounce":   DefaultWatchDebounce.String(),
	}
}

// Default returns a Config populated with default values.
func Default() *Config {
	return &Config{
		StatePath:       DefaultStateFile,
		LogLevel:        DefaultLogLevel,
		OutputFormat:    DefaultOutput,
		RequireFallback: DefaultRequireFallback,
		Watch:           WatchConfig{Debounce: DefaultWatchDebounce},
	}
}
