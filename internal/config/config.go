// Package config loads the analyzer's settings from YAML with
// environment overrides. The database path is always an explicit value
// handed to the entry point, never a package-level constant.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds everything an analysis run needs beyond the snapshot
// itself.
type Config struct {
	// DBPath points at the SQLite snapshot produced by the signal bot.
	DBPath string `yaml:"db_path"`
	// OutputDir is where exported artifacts land.
	OutputDir string `yaml:"output_dir"`
	// ExpiryHours is the window after which a hitless signal counts as
	// expired rather than open.
	ExpiryHours float64 `yaml:"expiry_hours"`
	// TopN bounds the per-symbol leaderboards.
	TopN int `yaml:"top_n"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		DBPath:      "data/signals.db",
		OutputDir:   "out/analysis",
		ExpiryHours: 72,
		TopN:        10,
	}
}

// Load reads the YAML file at path over the defaults, then applies
// environment overrides. A missing file is fine; the defaults stand.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, fmt.Errorf("read config %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if v := os.Getenv("SIGSCOPE_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("SIGSCOPE_OUT"); v != "" {
		cfg.OutputDir = v
	}

	if cfg.ExpiryHours <= 0 {
		cfg.ExpiryHours = Default().ExpiryHours
	}
	if cfg.TopN <= 0 {
		cfg.TopN = Default().TopN
	}
	return cfg, nil
}
