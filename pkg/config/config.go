// Package config loads nmapsum settings from an optional YAML file, then
// applies environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v10"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/germanamz/nmapsum/pkg/providers/gemini"
)

// Config is the top-level configuration.
type Config struct {
	BaseURL  string `yaml:"base_url" env:"GEMINI_BASE_URL" validate:"required,url"`
	Model    string `yaml:"model" env:"GEMINI_MODEL" validate:"required"`
	LogLevel string `yaml:"log_level" env:"NMAPSUM_LOG_LEVEL" validate:"oneof=debug info warn error"`
	Addr     string `yaml:"addr" env:"NMAPSUM_ADDR" validate:"required"`
	DotOut   string `yaml:"dot_out" env:"NMAPSUM_DOT_OUT"`
}

var validate = validator.New()

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		BaseURL:  gemini.DefaultBaseURL,
		Model:    gemini.DefaultModel,
		LogLevel: "info",
		Addr:     ":8080",
	}
}

// Load reads path on top of Default and then applies environment overrides.
// A missing file is not an error. Environment variables referenced as ${VAR}
// or $VAR in the YAML are expanded before parsing.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path) //nolint:gosec // path is caller-provided configuration, not user input
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("config: load: %w", err)
	default:
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: env: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
