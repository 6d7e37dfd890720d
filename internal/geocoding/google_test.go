package geocoding

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGoogleGeocoder(t *testing.T, handler http.HandlerFunc) Geocoder {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewGoogleGeocoder(server.URL, "test-key", 5*time.Second, nil)
}

func TestGoogleGeocodeSuccess(t *testing.T) {
	g := newTestGoogleGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/maps/api/geocode/json", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.Equal(t, "1600 Pennsylvania Ave, Denver CO", r.URL.Query().Get("address"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"OK","results":[{"formatted_address":"1600 Pennsylvania St, Denver, CO","geometry":{"location":{"lat":39.7420,"lng":-104.9810}}}]}`))
	})

	result, err := g.Geocode(context.Background(), "1600 Pennsylvania Ave, Denver CO")
	require.NoError(t, err)
	assert.Equal(t, 39.742, result.Coords.Lat)
	assert.Equal(t, -104.981, result.Coords.Lng)
	assert.Equal(t, "1600 Pennsylvania St, Denver, CO", result.DisplayName)
	assert.Equal(t, "google-geocode", g.Name())
}

func TestGoogleGeocodeFailures(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		reason string
	}{
		{"zero results", http.StatusOK, `{"status":"ZERO_RESULTS","results":[]}`, "ZERO_RESULTS"},
		{"denied", http.StatusOK, `{"status":"REQUEST_DENIED","error_message":"bad key","results":[]}`, "bad key"},
		{"http error", http.StatusInternalServerError, `boom`, "HTTP 500"},
		{"invalid json", http.StatusOK, `not json`, ""},
		{"empty results", http.StatusOK, `{"status":"OK","results":[]}`, "no results found"},
		{"missing geometry", http.StatusOK, `{"status":"OK","results":[{"formatted_address":"x"}]}`, "missing geometry"},
		{"missing lng", http.StatusOK, `{"status":"OK","results":[{"geometry":{"location":{"lat":1}}}]}`, "missing geometry"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := newTestGoogleGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			})

			result, err := g.Geocode(context.Background(), "somewhere")
			require.Error(t, err)
			assert.Nil(t, result)

			geoErr, ok := err.(*ErrGeocodingFailed)
			require.True(t, ok)
			assert.Equal(t, "somewhere", geoErr.Address)
			assert.Contains(t, geoErr.Reason, tc.reason)
		})
	}
}

func TestGoogleGeocodeNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	g := NewGoogleGeocoder(url, "k", time.Second, nil)
	_, err := g.Geocode(context.Background(), "anywhere")
	require.Error(t, err)
	assert.IsType(t, &ErrGeocodingFailed{}, err)
}
