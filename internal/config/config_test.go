package config

import (
	"os"
	"path/filepath"
	"testing"

	"ratecast/internal/tiers"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	cwd, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Chdir(cwd) }()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load with no config file should not error, got %v", err)
	}

	if cfg.BackendURL != "http://localhost:8000" {
		t.Errorf("Expected default backend URL, got %s", cfg.BackendURL)
	}
	if cfg.BoundStep != tiers.DefaultBoundStep {
		t.Errorf("Expected default bound step, got %d", cfg.BoundStep)
	}
	if cfg.RequestTimeoutSeconds != 30 {
		t.Errorf("Expected 30s timeout default, got %d", cfg.RequestTimeoutSeconds)
	}
}

func TestLoadExplicitMissingFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Error("Expected error for an explicitly named missing file")
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ratecast.yaml")
	content := `
backend_url: http://forecast.example:9000
bound_step: 500000
apply_exemption_average: true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.BackendURL != "http://forecast.example:9000" {
		t.Errorf("Expected overridden backend URL, got %s", cfg.BackendURL)
	}
	if cfg.BoundStep != 500_000 {
		t.Errorf("Expected overridden bound step, got %d", cfg.BoundStep)
	}
	if !cfg.ApplyExemptionAverage {
		t.Error("Expected apply_exemption_average true")
	}
	if cfg.RequestTimeoutSeconds != 30 {
		t.Errorf("Unset fields keep defaults, got timeout %d", cfg.RequestTimeoutSeconds)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty backend url", func(c *Config) { c.BackendURL = "" }},
		{"zero bound step", func(c *Config) { c.BoundStep = 0 }},
		{"negative timeout", func(c *Config) { c.RequestTimeoutSeconds = -1 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}
