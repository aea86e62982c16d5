// Package config loads tool configuration from a TOML file with defaults
// applied for unset fields.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config holds all runtime configuration parameters.
type Config struct {
	CurveUSamples int    `toml:"curve_u_samples"`
	SurfUSamples  int    `toml:"surf_u_samples"`
	SurfVSamples  int    `toml:"surf_v_samples"`
	Workers       int    `toml:"workers"`
	Mode          string `toml:"mode"` // "pooled" or "sequential"

	// MemoryCeilingGB tears the conversion pool down when process memory
	// exceeds it. Unset selects the default ceiling.
	MemoryCeilingGB float64 `toml:"memory_ceiling_gb"`

	LogLevel string `toml:"log_level"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads and validates configuration from a TOML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config TOML: %w", err)
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// applyDefaults sets default values for unspecified fields.
func applyDefaults(cfg *Config) {
	if cfg.CurveUSamples == 0 {
		cfg.CurveUSamples = 10
	}
	if cfg.SurfUSamples == 0 {
		cfg.SurfUSamples = 10
	}
	if cfg.SurfVSamples == 0 {
		cfg.SurfVSamples = 10
	}
	if cfg.Workers == 0 {
		cfg.Workers = 8
	}
	if cfg.Mode == "" {
		cfg.Mode = "pooled"
	}
	if cfg.MemoryCeilingGB == 0 {
		cfg.MemoryCeilingGB = 8
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
}

// validate checks that values are sensible.
func validate(cfg *Config) error {
	if cfg.CurveUSamples < 2 || cfg.SurfUSamples < 2 || cfg.SurfVSamples < 2 {
		return fmt.Errorf("sample counts must be >= 2")
	}
	if cfg.Workers < 1 {
		return fmt.Errorf("workers must be >= 1")
	}
	if cfg.Mode != "pooled" && cfg.Mode != "sequential" {
		return fmt.Errorf("mode must be %q or %q, got %q", "pooled", "sequential", cfg.Mode)
	}
	if cfg.MemoryCeilingGB < 0 {
		return fmt.Errorf("memory_ceiling_gb must be >= 0")
	}
	return nil
}

// MemoryCeilingBytes converts the configured ceiling to bytes.
func (c *Config) MemoryCeilingBytes() uint64 {
	return uint64(c.MemoryCeilingGB * (1 << 30))
}
