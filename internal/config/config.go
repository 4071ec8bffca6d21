// Package config loads server configuration from an optional YAML file
// with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// VerificationConfig bounds the randomized per-step delay of the
// verification pipeline.
type VerificationConfig struct {
	MinDelayMs int `yaml:"min_delay_ms"`
	MaxDelayMs int `yaml:"max_delay_ms"`
}

// Config holds server configuration
type Config struct {
	Port         string             `yaml:"port"`
	DatabaseURL  string             `yaml:"database_url"`
	JWTSecret    string             `yaml:"jwt_secret"`
	FixturePath  string             `yaml:"fixture_path"`
	Verification VerificationConfig `yaml:"verification"`
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() Config {
	return Config{
		Port: "8080",
		Verification: VerificationConfig{
			MinDelayMs: 250,
			MaxDelayMs: 750,
		},
	}
}

// Load reads configuration from the given YAML file path (skipped when
// empty), then applies environment overrides on top.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(&cfg)

	if cfg.Verification.MinDelayMs < 0 || cfg.Verification.MaxDelayMs < cfg.Verification.MinDelayMs {
		return Config{}, fmt.Errorf("invalid verification delay bounds: min=%d max=%d",
			cfg.Verification.MinDelayMs, cfg.Verification.MaxDelayMs)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWTSecret = v
	}
	if v := os.Getenv("CONFLICTS_FIXTURE"); v != "" {
		cfg.FixturePath = v
	}
	if v := os.Getenv("VERIFY_MIN_DELAY_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Verification.MinDelayMs = n
		}
	}
	if v := os.Getenv("VERIFY_MAX_DELAY_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Verification.MaxDelayMs = n
		}
	}
}
