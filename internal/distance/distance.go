package distance

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"field-scheduler/internal/models"
)

// MetersPerMile converts provider distances to miles
const MetersPerMile = 1609.344

// DriveTimeResult contains a provider's answer for one origin/destination pair
type DriveTimeResult struct {
	DurationSecs   float64
	DistanceMeters float64
}

// Provider looks up driving time between two "lat,lng" location keys
type Provider interface {
	Name() string
	DriveTime(ctx context.Context, origin, dest string) (*DriveTimeResult, error)
}

// ErrDriveTimeFailed is returned when a provider cannot answer
type ErrDriveTimeFailed struct {
	Origin string
	Dest   string
	Reason string
}

func (e *ErrDriveTimeFailed) Error() string {
	return fmt.Sprintf("drive time failed: %s -> %s: %s", e.Origin, e.Dest, e.Reason)
}

// ParseLocationKey parses a "lat,lng" key back into a point
func ParseLocationKey(key string) (models.GeoPoint, error) {
	parts := strings.Split(key, ",")
	if len(parts) != 2 {
		return models.GeoPoint{}, fmt.Errorf("invalid location key %q", key)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return models.GeoPoint{}, fmt.Errorf("invalid latitude in %q: %w", key, err)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return models.GeoPoint{}, fmt.Errorf("invalid longitude in %q: %w", key, err)
	}
	return models.GeoPoint{Lat: lat, Lng: lng}, nil
}
