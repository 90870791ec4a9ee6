// Package config loads formctl settings. Precedence is environment over
// file over defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formstate/pkg/state"
)

// Environment variables that override the file.
const (
	EnvConfigPath     = "FORMSTATE_CONFIG"
	EnvBackendURL     = "FORMSTATE_BACKEND_URL"
	EnvBackendTimeout = "FORMSTATE_BACKEND_TIMEOUT"
	EnvValidationMode = "FORMSTATE_VALIDATION_MODE"
	EnvLogLevel       = "FORMSTATE_LOG_LEVEL"
)

var ErrInvalid = errors.New("config: invalid configuration")

type Backend struct {
	// URL is the base the purpose path is appended to. Empty selects the
	// in-process stub backend.
	URL         string            `yaml:"url"`
	Timeout     time.Duration     `yaml:"timeout"`
	DialTimeout time.Duration     `yaml:"dialTimeout"`
	Headers     map[string]string `yaml:"headers"`
}

type Validation struct {
	Mode     string            `yaml:"mode"`
	Messages map[string]string `yaml:"messages"`
}

type Log struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

type Schemas struct {
	Dir string `yaml:"dir"`
}

type Config struct {
	Backend    Backend    `yaml:"backend"`
	Validation Validation `yaml:"validation"`
	Log        Log        `yaml:"log"`
	Schemas    Schemas    `yaml:"schemas"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Backend: Backend{
			Timeout:     15 * time.Second,
			DialTimeout: 5 * time.Second,
		},
		Validation: Validation{Mode: string(state.ValidateOnBlur)},
		Log:        Log{Level: "info"},
	}
}

// Load reads path (or $FORMSTATE_CONFIG when path is empty) on top of the
// defaults, applies environment overrides and validates the result. A
// missing file is only an error when a path was given explicitly.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = os.Getenv(EnvConfigPath)
		explicit = path != ""
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
			}
		case explicit || !errors.Is(err, os.ErrNotExist):
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := strings.TrimSpace(os.Getenv(EnvBackendURL)); v != "" {
		c.Backend.URL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvBackendTimeout)); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalid, EnvBackendTimeout, err)
		}
		c.Backend.Timeout = d
	}
	if v := strings.TrimSpace(os.Getenv(EnvValidationMode)); v != "" {
		c.Validation.Mode = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		c.Log.Level = v
	}
	return nil
}

// Validate checks enumerated values and durations.
func (c Config) Validate() error {
	if _, err := state.ParseMode(c.Validation.Mode); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log level: %w", ErrInvalid, err)
	}
	if c.Backend.Timeout < 0 {
		return fmt.Errorf("%w: backend timeout must not be negative", ErrInvalid)
	}
	return nil
}

// Mode returns the parsed validation mode.
func (c Config) Mode() state.Mode {
	mode, err := state.ParseMode(c.Validation.Mode)
	if err != nil {
		return state.ValidateOnBlur
	}
	return mode
}
