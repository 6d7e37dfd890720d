package geocoding

import (
	"context"
	"strings"
	"time"

	"field-scheduler/internal/cache"
	"field-scheduler/internal/logger"
	"field-scheduler/internal/metrics"
	"field-scheduler/internal/models"
)

// DefaultTTL is how long a geocode result, including a failed lookup, is reused
const DefaultTTL = 24 * time.Hour

// CacheName labels the geocode cache in logs and metrics
const CacheName = "geocode"

// Resolver turns addresses or coordinates into canonical "lat,lng" location
// keys. Lookups are cached by normalized address, and failures are cached
// too so that a bad address is not retried for the life of the entry.
type Resolver struct {
	geocoder Geocoder
	cache    *cache.TTL[*models.GeoPoint]
	log      logger.Logger
	metrics  metrics.Recorder
}

// NewResolver creates a resolver. A nil cache gets a private one with DefaultTTL.
func NewResolver(geocoder Geocoder, c *cache.TTL[*models.GeoPoint], log logger.Logger, rec metrics.Recorder) *Resolver {
	if c == nil {
		c = cache.NewTTL[*models.GeoPoint](CacheName, DefaultTTL)
	}
	return &Resolver{
		geocoder: geocoder,
		cache:    c,
		log:      logger.OrNop(log),
		metrics:  metrics.OrNop(rec),
	}
}

// NormalizeAddress trims, lowercases and collapses internal whitespace
func NormalizeAddress(address string) string {
	return strings.Join(strings.Fields(strings.ToLower(address)), " ")
}

// ResolveLocation returns the location key for ref. Explicit coordinates are
// used directly without a provider call.
func (r *Resolver) ResolveLocation(ctx context.Context, ref models.LocationRef) (string, bool) {
	if ref.Coordinates != nil {
		return ref.Coordinates.Key(), true
	}
	point := r.GeocodeAddress(ctx, ref.Address)
	if point == nil {
		return "", false
	}
	return point.Key(), true
}

// GeocodeAddress returns the coordinates of address, or nil when it cannot
// be resolved. It never returns an error.
func (r *Resolver) GeocodeAddress(ctx context.Context, address string) *models.GeoPoint {
	key := NormalizeAddress(address)
	if key == "" {
		return nil
	}

	if cached, ok := r.cache.Get(key); ok {
		r.metrics.CacheLookup(CacheName, true)
		return cached
	}
	r.metrics.CacheLookup(CacheName, false)

	if r.geocoder == nil {
		return nil
	}

	result, err := r.geocoder.Geocode(ctx, address)
	if err != nil {
		if ctx.Err() != nil {
			// the caller gave up; that says nothing about the address itself
			r.metrics.ProviderRequest(r.geocoder.Name(), metrics.OutcomeTimeout)
			r.log.Debugf("geocode abandoned: address=%s err=%v", key, ctx.Err())
			return nil
		}
		r.metrics.ProviderRequest(r.geocoder.Name(), metrics.OutcomeFailed)
		r.log.Warnf("geocode failed: address=%s err=%v", key, err)
		r.cache.Set(key, nil)
		return nil
	}

	r.metrics.ProviderRequest(r.geocoder.Name(), metrics.OutcomeOK)
	point := result.Coords
	r.cache.Set(key, &point)
	r.log.Debugf("geocode resolved: address=%s lat=%.6f lng=%.6f", key, point.Lat, point.Lng)
	return &point
}

// Reset clears the geocode cache. Intended for test harnesses.
func (r *Resolver) Reset() {
	r.cache.Reset()
}
