package geocoding

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"field-scheduler/internal/cache"
	"field-scheduler/internal/models"
)

type countingGeocoder struct {
	mu     sync.Mutex
	points map[string]models.GeoPoint
	calls  map[string]int
	delay  time.Duration
}

func newCountingGeocoder() *countingGeocoder {
	return &countingGeocoder{points: map[string]models.GeoPoint{}, calls: map[string]int{}}
}

func (g *countingGeocoder) Name() string { return "counting" }

func (g *countingGeocoder) Geocode(ctx context.Context, address string) (*GeocodingResult, error) {
	g.mu.Lock()
	g.calls[address]++
	p, ok := g.points[address]
	g.mu.Unlock()

	if g.delay > 0 {
		select {
		case <-time.After(g.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if !ok {
		return nil, &ErrGeocodingFailed{Address: address, Reason: "no results found"}
	}
	return &GeocodingResult{Coords: p}, nil
}

func (g *countingGeocoder) total() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for _, c := range g.calls {
		n += c
	}
	return n
}

func TestNormalizeAddress(t *testing.T) {
	assert.Equal(t, "123 main st denver co", NormalizeAddress("  123   Main St\tDenver  CO "))
	assert.Equal(t, "", NormalizeAddress("   "))
}

func TestResolveLocationWithCoordinatesSkipsProvider(t *testing.T) {
	g := newCountingGeocoder()
	r := NewResolver(g, nil, nil, nil)

	key, ok := r.ResolveLocation(context.Background(), models.LocationRef{
		Address:     "ignored",
		Coordinates: &models.GeoPoint{Lat: 39.5, Lng: -105.25},
	})
	require.True(t, ok)
	assert.Equal(t, "39.5,-105.25", key)
	assert.Equal(t, 0, g.total())
}

func TestGeocodeAddressCachesByNormalizedAddress(t *testing.T) {
	g := newCountingGeocoder()
	g.points["123 Main St, Denver"] = models.GeoPoint{Lat: 39.7, Lng: -104.9}
	r := NewResolver(g, nil, nil, nil)
	ctx := context.Background()

	first := r.GeocodeAddress(ctx, "123 Main St, Denver")
	require.NotNil(t, first)
	second := r.GeocodeAddress(ctx, "  123 MAIN ST,   denver ")
	require.NotNil(t, second)

	assert.Equal(t, *first, *second)
	assert.Equal(t, 1, g.total())
}

func TestGeocodeAddressNegativeCaching(t *testing.T) {
	g := newCountingGeocoder()
	r := NewResolver(g, nil, nil, nil)
	ctx := context.Background()

	assert.Nil(t, r.GeocodeAddress(ctx, "nowhere"))
	assert.Nil(t, r.GeocodeAddress(ctx, "nowhere"))
	_, ok := r.ResolveLocation(ctx, models.LocationRef{Address: "Nowhere"})
	assert.False(t, ok)
	assert.Equal(t, 1, g.total())
}

func TestGeocodeAddressEntriesExpire(t *testing.T) {
	now := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	c := cache.NewTTL[*models.GeoPoint](CacheName, DefaultTTL, cache.WithClock(func() time.Time { return now }))
	g := newCountingGeocoder()
	g.points["a"] = models.GeoPoint{Lat: 1, Lng: 2}
	r := NewResolver(g, c, nil, nil)

	r.GeocodeAddress(context.Background(), "a")
	now = now.Add(DefaultTTL)
	r.GeocodeAddress(context.Background(), "a")
	assert.Equal(t, 2, g.total())
}

func TestGeocodeAddressDoesNotCacheAbandonedLookups(t *testing.T) {
	g := newCountingGeocoder()
	g.points["slow"] = models.GeoPoint{Lat: 1, Lng: 1}
	g.delay = 200 * time.Millisecond
	r := NewResolver(g, nil, nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.Nil(t, r.GeocodeAddress(ctx, "slow"))

	g.delay = 0
	assert.NotNil(t, r.GeocodeAddress(context.Background(), "slow"))
	assert.Equal(t, 2, g.total())
}

func TestGeocodeAddressBlankAndMissingProvider(t *testing.T) {
	r := NewResolver(nil, nil, nil, nil)
	assert.Nil(t, r.GeocodeAddress(context.Background(), "   "))
	assert.Nil(t, r.GeocodeAddress(context.Background(), "123 Main"))
}

func TestResolverReset(t *testing.T) {
	g := newCountingGeocoder()
	r := NewResolver(g, nil, nil, nil)
	r.GeocodeAddress(context.Background(), "x")
	r.Reset()
	r.GeocodeAddress(context.Background(), "x")
	assert.Equal(t, 2, g.total())
}

func TestErrGeocodingFailedMessage(t *testing.T) {
	var err error = &ErrGeocodingFailed{Address: "a", Reason: "b"}
	var target *ErrGeocodingFailed
	assert.True(t, errors.As(err, &target))
	assert.Equal(t, "geocoding failed for address: a - b", err.Error())
}
