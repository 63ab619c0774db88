package config

import (
	_ "embed"
)

//go:embed defaults/forge.yaml
var defaultForgeYAML []byte

// DefaultConfig returns the built-in tool configuration.
func DefaultConfig() Config {
	return Config{
		ContentRoot: ".",
		Database:    "~/.forge/catalog.db",
		LogLevel:    "info",
		Progress: ProgressConfig{
			Enabled:    true,
			EveryLines: 100,
		},
		Serve: ServeConfig{
			Address: ":23235",
		},
	}
}
