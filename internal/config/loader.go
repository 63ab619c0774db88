package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Load loads the forge tool configuration.
// Search order: customPath -> ~/.forge/forge.yaml -> ./forge.yaml -> embedded default
func Load(customPath string) (Config, error) {
	var cfg Config

	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return applyFallbacks(cfg), nil
	}

	// Try user config directory
	if userCfgPath := userConfigPath("forge.yaml"); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if err := yaml.Unmarshal(data, &cfg); err == nil {
				return applyFallbacks(cfg), nil
			}
		}
	}

	// Try local config directory
	if data, err := os.ReadFile("forge.yaml"); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err == nil {
			return applyFallbacks(cfg), nil
		}
	}

	// Fall back to embedded default
	if err := yaml.Unmarshal(defaultForgeYAML, &cfg); err != nil {
		// Embedded config should never fail; use hardcoded defaults
		return DefaultConfig(), nil
	}
	return applyFallbacks(cfg), nil
}

// applyFallbacks fills zero-valued fields from the built-in defaults, so a
// partial config file still produces a usable configuration.
func applyFallbacks(cfg Config) Config {
	def := DefaultConfig()
	if cfg.ContentRoot == "" {
		cfg.ContentRoot = def.ContentRoot
	}
	if cfg.Database == "" {
		cfg.Database = def.Database
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = def.LogLevel
	}
	if cfg.Progress.EveryLines <= 0 {
		cfg.Progress.EveryLines = def.Progress.EveryLines
	}
	if cfg.Serve.Address == "" {
		cfg.Serve.Address = def.Serve.Address
	}
	return cfg
}

// userConfigPath returns the path of a config file in the user's forge
// directory, or empty if the file doesn't exist.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	path := filepath.Join(home, ".forge", filename)
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}
