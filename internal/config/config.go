// Package config loads ratecast's YAML configuration. Everything has a
// sensible default; a missing file just means running on defaults.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"ratecast/internal/storage"
	"ratecast/internal/tiers"
)

// DefaultFile is the config file looked for when none is given.
const DefaultFile = "ratecast.yaml"

// Config is the full application configuration.
type Config struct {
	// BackendURL locates the forecast backend.
	BackendURL string `yaml:"backend_url"`

	// PolicyFile is where the working policy is persisted between runs.
	PolicyFile string `yaml:"policy_file"`

	// BoundStep is the increment used when opening a new tier above the
	// previous top boundary.
	BoundStep int64 `yaml:"bound_step"`

	// RequestTimeoutSeconds bounds each backend request.
	RequestTimeoutSeconds int `yaml:"request_timeout_seconds"`

	// ApplyExemptionAverage is the default for the forecast's
	// exemption-averaging switch.
	ApplyExemptionAverage bool `yaml:"apply_exemption_average"`
}

// Default returns the configuration used when no file overrides anything.
func Default() Config {
	return Config{
		BackendURL:            "http://localhost:8000",
		PolicyFile:            storage.DefaultPath(),
		BoundStep:             tiers.DefaultBoundStep,
		RequestTimeoutSeconds: 30,
	}
}

// Load reads the configuration at path, layering it over the defaults. An
// empty path means DefaultFile, and a missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects configurations the rest of the program cannot run on.
func (c Config) Validate() error {
	if c.BackendURL == "" {
		return fmt.Errorf("backend_url is required")
	}
	if c.BoundStep <= 0 {
		return fmt.Errorf("bound_step must be positive, got %d", c.BoundStep)
	}
	if c.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("request_timeout_seconds must be positive, got %d", c.RequestTimeoutSeconds)
	}
	return nil
}

// RequestTimeout returns the per-request timeout as a duration.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}
