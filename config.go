package citegraph

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the citegraph engine.
type Config struct {
	// DBPath is the full path to the SQLite database file.
	// If empty, defaults to ~/.citegraph/<DBName>.db
	DBPath string `json:"db_path" yaml:"db_path"`

	// DBName is the name for the database (used when DBPath is empty).
	// Defaults to "citegraph". The file will be <DBName>.db inside the
	// storage directory (~/.citegraph/ or working dir).
	DBName string `json:"db_name" yaml:"db_name"`

	// StorageDir controls where the database is created when DBPath
	// is not explicitly set. Options: "home" (default) uses ~/.citegraph/,
	// "local" uses the current working directory.
	StorageDir string `json:"storage_dir" yaml:"storage_dir"`

	// Search
	SearchLimit int `json:"search_limit" yaml:"search_limit"`
	SnippetLen  int `json:"snippet_len" yaml:"snippet_len"`

	// Network layout viewport
	LayoutWidth  float64 `json:"layout_width" yaml:"layout_width"`
	LayoutHeight float64 `json:"layout_height" yaml:"layout_height"`
	LayoutMargin float64 `json:"layout_margin" yaml:"layout_margin"`

	// ChargeStrength sets node repulsion in the force layout. Negative
	// values repel; the magnitude controls spread.
	ChargeStrength float64 `json:"charge_strength" yaml:"charge_strength"`
}

// DefaultConfig returns a Config with sensible defaults.
// Database is stored in ~/.citegraph/citegraph.db by default.
func DefaultConfig() Config {
	return Config{
		DBName:         "citegraph",
		StorageDir:     "home",
		SearchLimit:    20,
		SnippetLen:     400,
		LayoutWidth:    800,
		LayoutHeight:   600,
		LayoutMargin:   20,
		ChargeStrength: -300,
	}
}

// LoadConfig reads a YAML config file and overlays it on DefaultConfig.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if c.SearchLimit < 0 {
		return fmt.Errorf("%w: search_limit must be >= 0", ErrInvalidConfig)
	}
	if c.LayoutWidth < 0 || c.LayoutHeight < 0 {
		return fmt.Errorf("%w: layout dimensions must be >= 0", ErrInvalidConfig)
	}
	if c.ChargeStrength > 0 {
		return fmt.Errorf("%w: charge_strength must be <= 0", ErrInvalidConfig)
	}
	return nil
}

// resolveDBPath computes the final database path from config fields.
func (c *Config) resolveDBPath() string {
	if c.DBPath != "" {
		return c.DBPath
	}

	name := c.DBName
	if name == "" {
		name = "citegraph"
	}

	switch c.StorageDir {
	case "local", "cwd":
		return name + ".db"
	default: // "home" or empty
		home, err := os.UserHomeDir()
		if err != nil {
			return name + ".db" // fallback to cwd
		}
		dir := filepath.Join(home, ".citegraph")
		return filepath.Join(dir, name+".db")
	}
}
