package config

import (
	"fmt"
	"time"

	"field-scheduler/internal/distance"
	"field-scheduler/internal/geocoding"
	"field-scheduler/internal/travel"
)

// Travel provider names
const (
	ProviderGoogle = "google"
	ProviderOSM    = "osm"
	ProviderNone   = "none"
)

// TravelConfig configures the geocoding and drive-time providers and the
// slot evaluator.
type TravelConfig struct {
	// Provider is "google", "osm" (Nominatim + OSRM) or "none".
	Provider        string `json:"provider"`
	GoogleAPIKey    string `json:"google_api_key"`
	// Base URLs override the public endpoints, mostly for tests.
	GeocodeBaseURL  string `json:"geocode_base_url"`
	DistanceBaseURL string `json:"distance_base_url"`

	GeocodeTTL   time.Duration `json:"geocode_ttl"`
	DriveTimeTTL time.Duration `json:"drive_time_ttl"`
	HTTPTimeout  time.Duration `json:"http_timeout"`

	BufferMinutes           int           `json:"buffer_minutes"`
	UnknownThresholdMinutes int           `json:"unknown_threshold_minutes"`
	Concurrency             int           `json:"concurrency"`
	CallTimeout             time.Duration `json:"call_timeout"`
	BatchTimeout            time.Duration `json:"batch_timeout"`
}

// DefaultTravelConfig returns the travel defaults
func DefaultTravelConfig() TravelConfig {
	return TravelConfig{
		Provider:                ProviderGoogle,
		GeocodeTTL:              geocoding.DefaultTTL,
		DriveTimeTTL:            distance.DefaultTTL,
		HTTPTimeout:             10 * time.Second,
		BufferMinutes:           travel.DefaultBufferMinutes,
		UnknownThresholdMinutes: travel.DefaultUnknownThresholdMinutes,
		Concurrency:             travel.DefaultConcurrency,
		CallTimeout:             travel.DefaultCallTimeout,
		BatchTimeout:            travel.DefaultBatchTimeout,
	}
}

func (c *TravelConfig) SetDefaults() {
	d := DefaultTravelConfig()
	if c.Provider == "" {
		c.Provider = d.Provider
	}
	if c.GeocodeTTL <= 0 {
		c.GeocodeTTL = d.GeocodeTTL
	}
	if c.DriveTimeTTL <= 0 {
		c.DriveTimeTTL = d.DriveTimeTTL
	}
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = d.HTTPTimeout
	}
}

func (c TravelConfig) Validate() error {
	switch c.Provider {
	case ProviderGoogle, ProviderOSM, ProviderNone:
	default:
		return fmt.Errorf("%w: travel.provider %q", ErrInvalidConfig, c.Provider)
	}
	if c.BufferMinutes < 0 {
		return fmt.Errorf("%w: travel.buffer_minutes must not be negative", ErrInvalidConfig)
	}
	if c.UnknownThresholdMinutes <= 0 {
		return fmt.Errorf("%w: travel.unknown_threshold_minutes must be positive", ErrInvalidConfig)
	}
	if c.Concurrency <= 0 {
		return fmt.Errorf("%w: travel.concurrency must be positive", ErrInvalidConfig)
	}
	if c.CallTimeout <= 0 || c.BatchTimeout <= 0 {
		return fmt.Errorf("%w: travel timeouts must be positive", ErrInvalidConfig)
	}
	return nil
}

// Enabled reports whether travel evaluation can run. Google without an API
// key disables it rather than failing.
func (c TravelConfig) Enabled() bool {
	switch c.Provider {
	case ProviderGoogle:
		return c.GoogleAPIKey != ""
	case ProviderOSM:
		return true
	}
	return false
}

// EvaluatorConfig converts the section into evaluator settings
func (c TravelConfig) EvaluatorConfig() travel.Config {
	return travel.Config{
		BufferMinutes:           c.BufferMinutes,
		UnknownThresholdMinutes: c.UnknownThresholdMinutes,
		Concurrency:             c.Concurrency,
		CallTimeout:             c.CallTimeout,
		BatchTimeout:            c.BatchTimeout,
	}
}
