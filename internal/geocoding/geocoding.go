package geocoding

import (
	"context"
	"fmt"

	"field-scheduler/internal/models"
)

// GeocodingResult contains the result of a geocoding operation
type GeocodingResult struct {
	Coords      models.GeoPoint
	DisplayName string
}

// Geocoder provides address-to-coordinates conversion
type Geocoder interface {
	Name() string
	Geocode(ctx context.Context, address string) (*GeocodingResult, error)
}

// ErrGeocodingFailed is returned when an address cannot be geocoded
type ErrGeocodingFailed struct {
	Address string
	Reason  string
}

func (e *ErrGeocodingFailed) Error() string {
	return fmt.Sprintf("geocoding failed for address: %s - %s", e.Address, e.Reason)
}
