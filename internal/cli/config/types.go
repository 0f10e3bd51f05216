// Package config provides configuration management for the EvalBoard
// CLI. Values are layered from defaults, an optional evalboard.yaml
// file, EVALBOARD_ environment variables, and command-line flags.
package config

// Config holds all CLI configuration options.
type Config struct {
	ServerURL     string      `koanf:"server_url"`
	PageSize      int         `koanf:"page_size"`
	SortColumn    string      `koanf:"sort_column"`
	SortDirection string      `koanf:"sort_direction"`
	Verbose       bool        `koanf:"verbose"`
	NoColor       bool        `koanf:"no_color"`
	OutputFormat  string      `koanf:"output"`
	Serve         ServeConfig `koanf:"serve"`
}

// ServeConfig holds configuration for the fixture API server.
type ServeConfig struct {
	Port      int    `koanf:"port"`
	StatePath string `koanf:"state_path"`
}

// Default configuration values
const (
	DefaultServerURL     = "http://localhost:8765"
	DefaultPageSize      = 100
	DefaultSortColumn    = "createdAt"
	DefaultSortDirection = "desc"
	DefaultOutput        = "auto" // Auto-detect: TTY=table, non-TTY=markdown
	DefaultServePort     = 8765
	DefaultStateFile     = ".evalboard/experiments.db"
)
