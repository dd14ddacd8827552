package config

import (
	"context"
	"log/slog"
)

type (
	// loggerKey is used to store the logger in a command context.
	loggerKey struct{}
	// configKey is used to store the loaded config in a command context.
	configKey struct{}
)

// LoggerKey returns the context key used for storing the logger.
// This lets the commands package retrieve the logger without importing
// the cli package.
func LoggerKey() interface{} {
	return loggerKey{}
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
			return l
		}
	}
	return slog.New(slog.DiscardHandler)
}

// ConfigKey returns the context key used for storing the loaded config.
func ConfigKey() interface{} {
	return configKey{}
}

// GetConfig retrieves the config from the command context, or the
// defaults if none was stored.
func GetConfig(ctx context.Context) *Config {
	if ctx != nil {
		if c, ok := ctx.Value(configKey{}).(*Config); ok {
			return c
		}
	}
	return Default()
}
