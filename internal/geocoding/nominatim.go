package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"field-scheduler/internal/logger"
	"field-scheduler/internal/models"
)

type nominatimGeocoder struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *time.Ticker
	log         logger.Logger
}

type nominatimResponse struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// NewNominatimGeocoder creates an OpenStreetMap Nominatim geocoder limited to
// one request per second, per the public service's usage policy
func NewNominatimGeocoder(baseURL string, timeout time.Duration, log logger.Logger) Geocoder {
	if baseURL == "" {
		baseURL = "https://nominatim.openstreetmap.org"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &nominatimGeocoder{
		baseURL:     baseURL,
		httpClient:  &http.Client{Timeout: timeout},
		rateLimiter: time.NewTicker(1 * time.Second),
		log:         logger.OrNop(log),
	}
}

func (g *nominatimGeocoder) Name() string { return "nominatim" }

func (g *nominatimGeocoder) Geocode(ctx context.Context, address string) (*GeocodingResult, error) {
	select {
	case <-g.rateLimiter.C:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	queryURL := fmt.Sprintf("%s/search?q=%s&format=json&limit=1", g.baseURL, url.QueryEscape(address))
	g.log.Debugf("geocode request: address=%s url=%s", address, queryURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, queryURL, nil)
	if err != nil {
		return nil, &ErrGeocodingFailed{Address: address, Reason: err.Error()}
	}
	req.Header.Set("User-Agent", "FieldScheduler/1.0")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, &ErrGeocodingFailed{Address: address, Reason: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &ErrGeocodingFailed{
			Address: address,
			Reason:  fmt.Sprintf("HTTP %d: %s", resp.StatusCode, string(body)),
		}
	}

	var results []nominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, &ErrGeocodingFailed{Address: address, Reason: err.Error()}
	}

	if len(results) == 0 {
		return nil, &ErrGeocodingFailed{Address: address, Reason: "no results found"}
	}

	result := results[0]
	lat, err := strconv.ParseFloat(result.Lat, 64)
	if err != nil {
		return nil, &ErrGeocodingFailed{Address: address, Reason: "invalid latitude"}
	}
	lng, err := strconv.ParseFloat(result.Lon, 64)
	if err != nil {
		return nil, &ErrGeocodingFailed{Address: address, Reason: "invalid longitude"}
	}

	return &GeocodingResult{
		Coords:      models.GeoPoint{Lat: lat, Lng: lng},
		DisplayName: result.DisplayName,
	}, nil
}
