package config

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"field-scheduler/internal/logger"
)

// LoggingConfig selects the log level and output format
type LoggingConfig struct {
	// Level is a zerolog level name such as "debug" or "info".
	Level  string `json:"level"`
	// Format is "json" or "console".
	Format string `json:"format"`
}

// SetDefaults applies sane defaults.
func (c *LoggingConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "json"
	}
}

// Validate checks the level and format names.
func (c LoggingConfig) Validate() error {
	if _, err := zerolog.ParseLevel(strings.ToLower(c.Level)); err != nil {
		return fmt.Errorf("%w: logging.level %q", ErrInvalidConfig, c.Level)
	}
	switch strings.ToLower(c.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("%w: logging.format %q", ErrInvalidConfig, c.Format)
	}
	return nil
}

// Options converts the section into logger options
func (c LoggingConfig) Options() logger.Options {
	return logger.Options{Level: c.Level, Format: c.Format}
}
