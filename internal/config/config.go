// Package config provides YAML-based configuration loading for the forge
// tool: where content packages live, where the catalog database goes, and
// how loading reports progress.
package config

// Config contains all configuration for the forge tool.
type Config struct {
	// ContentRoot is the directory content package directories live under.
	ContentRoot string `yaml:"content_root"`

	// Database is the path of the preset catalog database.
	Database string `yaml:"database"`

	// LogLevel selects the diagnostics level: debug, info, warn or error.
	LogLevel string `yaml:"log_level"`

	// Progress controls load progress reporting.
	Progress ProgressConfig `yaml:"progress"`

	// Serve configures the SSH browser server.
	Serve ServeConfig `yaml:"serve"`
}

// ProgressConfig controls load progress reporting.
type ProgressConfig struct {
	// Enabled turns per-file progress reports on.
	Enabled bool `yaml:"enabled"`

	// EveryLines is how many lines pass between reports for one file.
	EveryLines int `yaml:"every_lines"`
}

// ServeConfig configures the SSH browser server.
type ServeConfig struct {
	// Address is the host:port to listen on.
	Address string `yaml:"address"`

	// HostKeyPath is the SSH host key location. Empty means
	// ~/.forge/host_key, generated on first use.
	HostKeyPath string `yaml:"host_key_path"`
}
