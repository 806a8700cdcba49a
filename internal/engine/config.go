package engine

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/abhisek/cardiofola/internal/synth"
	"github.com/abhisek/cardiofola/internal/trainer"
)

// Config holds engine configuration.
type Config struct {
	// RetryDelay is the pause between a failed training attempt and the
	// next one. Default: 2s.
	RetryDelay time.Duration `yaml:"retry_delay"`

	// MaxAttempts bounds training attempts per initialization.
	// 0 retries until success or cancellation.
	MaxAttempts int `yaml:"max_attempts"`

	// Seed makes data generation, weight init and shuffling reproducible.
	// 0 means unseeded.
	Seed uint64 `yaml:"seed"`

	Synth   synth.Config   `yaml:"synth"`
	Trainer trainer.Config `yaml:"trainer"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		RetryDelay:  2 * time.Second,
		MaxAttempts: 0,
		Synth:       synth.DefaultConfig(),
		Trainer:     trainer.DefaultConfig(),
	}
}

// ConfigFromEnv builds a Config from environment variables, falling back
// to defaults for unset or unparsable values.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	applyEnv(&cfg)
	return cfg
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("CARDIOFOLA_RETRY_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.RetryDelay = d
		}
	}
	if v := os.Getenv("CARDIOFOLA_MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxAttempts = n
		}
	}
	if v := os.Getenv("CARDIOFOLA_SEED"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.Seed = n
		}
	}
}

// LoadConfigFile reads a YAML config over the defaults. Environment
// variables are applied on top of the file.
func LoadConfigFile(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	applyEnv(&cfg)
	return cfg, cfg.Validate()
}

// Validate checks that the configuration can run.
func (c Config) Validate() error {
	if c.RetryDelay < 0 {
		return fmt.Errorf("retry delay must not be negative, got %s", c.RetryDelay)
	}
	if c.MaxAttempts < 0 {
		return fmt.Errorf("max attempts must not be negative, got %d", c.MaxAttempts)
	}
	if err := c.Synth.Validate(); err != nil {
		return fmt.Errorf("synth: %w", err)
	}
	if err := c.Trainer.Validate(); err != nil {
		return fmt.Errorf("trainer: %w", err)
	}
	return nil
}
