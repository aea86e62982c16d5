package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/brepmaster/uvgraph/pkg/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "uvgraph.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := config.Default()
	if cfg.CurveUSamples != 10 || cfg.SurfUSamples != 10 || cfg.SurfVSamples != 10 {
		t.Errorf("sample defaults = %d/%d/%d, want 10/10/10",
			cfg.CurveUSamples, cfg.SurfUSamples, cfg.SurfVSamples)
	}
	if cfg.Workers != 8 {
		t.Errorf("workers = %d, want 8", cfg.Workers)
	}
	if cfg.Mode != "pooled" {
		t.Errorf("mode = %q, want pooled", cfg.Mode)
	}
	if cfg.MemoryCeilingGB != 8 {
		t.Errorf("memory ceiling = %v GB, want 8", cfg.MemoryCeilingGB)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("log level = %q, want info", cfg.LogLevel)
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
workers = 2
mode = "sequential"
surf_u_samples = 16
memory_ceiling_gb = 1.5
log_level = "debug"
`)
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Workers != 2 || cfg.Mode != "sequential" {
		t.Errorf("workers/mode = %d/%q", cfg.Workers, cfg.Mode)
	}
	if cfg.SurfUSamples != 16 {
		t.Errorf("surf_u_samples = %d, want 16", cfg.SurfUSamples)
	}
	// Unset fields fall back to defaults.
	if cfg.SurfVSamples != 10 || cfg.CurveUSamples != 10 {
		t.Errorf("defaulted samples = %d/%d, want 10/10", cfg.CurveUSamples, cfg.SurfVSamples)
	}
	if cfg.MemoryCeilingGB != 1.5 {
		t.Errorf("memory ceiling = %v, want 1.5", cfg.MemoryCeilingGB)
	}
	if got := cfg.MemoryCeilingBytes(); got != uint64(1.5*(1<<30)) {
		t.Errorf("MemoryCeilingBytes = %d", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := config.Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadInvalid(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"malformed toml", `workers = [`},
		{"bad mode", `mode = "parallel"`},
		{"negative workers", `workers = -1`},
		{"sample below minimum", `curve_u_samples = 1`},
		{"negative ceiling", `memory_ceiling_gb = -2.0`},
	}
	for _, tc := range cases {
		path := writeConfig(t, tc.content)
		if _, err := config.Load(path); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
}
