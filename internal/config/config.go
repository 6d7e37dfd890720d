// Package config loads field-scheduler settings from a YAML or JSON file
// with FS_ environment overrides.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix marks environment variables that override file settings.
// FS_TRAVEL__GOOGLE_API_KEY sets travel.google_api_key.
const EnvPrefix = "FS_"

// ErrInvalidConfig is wrapped by every validation failure
var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Server     ServerConfig     `json:"server"`
	Logging    LoggingConfig    `json:"logging"`
	Store      StoreConfig      `json:"store"`
	Scheduling SchedulingConfig `json:"scheduling"`
	Travel     TravelConfig     `json:"travel"`
	Metrics    MetricsConfig    `json:"metrics"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Addr string `json:"addr"`
}

// StoreConfig points at the SQLite project snapshot
type StoreConfig struct {
	Path string `json:"path"`
}

// MetricsConfig toggles the Prometheus endpoint
type MetricsConfig struct {
	Enabled bool `json:"enabled"`
}

// Default returns a configuration with every default applied
func Default() Config {
	cfg := Config{
		Travel:  DefaultTravelConfig(),
		Metrics: MetricsConfig{Enabled: true},
	}
	cfg.SetDefaults()
	return cfg
}

// SetDefaults fills blank fields in every section
func (c *Config) SetDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Store.Path == "" {
		c.Store.Path = "fieldsched.db"
	}
	c.Logging.SetDefaults()
	c.Scheduling.SetDefaults()
	c.Travel.SetDefaults()
}

// Validate checks every section
func (c *Config) Validate() error {
	if err := c.Logging.Validate(); err != nil {
		return err
	}
	if err := c.Scheduling.Validate(); err != nil {
		return err
	}
	return c.Travel.Validate()
}

// Load reads path (when non-empty), applies FS_ environment overrides,
// fills defaults and validates the result.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
