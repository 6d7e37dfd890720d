package geocoding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"field-scheduler/internal/logger"
)

func newTestNominatim(serverURL string) *nominatimGeocoder {
	return &nominatimGeocoder{
		baseURL:     serverURL,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		rateLimiter: time.NewTicker(1 * time.Millisecond),
		log:         logger.NopLogger{},
	}
}

func TestNominatimGeocodeSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/search")
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		assert.NotEmpty(t, r.URL.Query().Get("q"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))

		response := []nominatimResponse{{Lat: "40.7128", Lon: "-74.0060", DisplayName: "New York, NY, USA"}}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}))
	defer server.Close()

	result, err := newTestNominatim(server.URL).Geocode(context.Background(), "New York")
	require.NoError(t, err)
	assert.Equal(t, 40.7128, result.Coords.Lat)
	assert.Equal(t, -74.0060, result.Coords.Lng)
	assert.Equal(t, "New York, NY, USA", result.DisplayName)
}

func TestNominatimGeocodeNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]nominatimResponse{})
	}))
	defer server.Close()

	result, err := newTestNominatim(server.URL).Geocode(context.Background(), "Nonexistent Location")
	require.Error(t, err)
	assert.Nil(t, result)

	geocodingErr, ok := err.(*ErrGeocodingFailed)
	require.True(t, ok)
	assert.Contains(t, geocodingErr.Reason, "no results found")
}

func TestNominatimGeocodeHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Internal Server Error"))
	}))
	defer server.Close()

	_, err := newTestNominatim(server.URL).Geocode(context.Background(), "Test Address")
	require.Error(t, err)
	geocodingErr, ok := err.(*ErrGeocodingFailed)
	require.True(t, ok)
	assert.Contains(t, geocodingErr.Reason, "HTTP 500")
}

func TestNominatimGeocodeInvalidLatLon(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]nominatimResponse{{Lat: "invalid", Lon: "-74.0060"}})
	}))
	defer server.Close()

	_, err := newTestNominatim(server.URL).Geocode(context.Background(), "Test Address")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid latitude")
}

func TestNominatimGeocodeContextCancelled(t *testing.T) {
	g := &nominatimGeocoder{
		baseURL:     "http://127.0.0.1:0",
		httpClient:  http.DefaultClient,
		rateLimiter: time.NewTicker(time.Hour),
		log:         logger.NopLogger{},
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Geocode(ctx, "anything")
	assert.ErrorIs(t, err, context.Canceled)
}
