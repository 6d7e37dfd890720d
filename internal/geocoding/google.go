package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"field-scheduler/internal/logger"
	"field-scheduler/internal/models"
)

const statusOK = "OK"

type googleGeocoder struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        logger.Logger
}

type googleGeocodeResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         *struct {
			Location *struct {
				Lat *float64 `json:"lat"`
				Lng *float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// NewGoogleGeocoder creates a geocoder backed by the Google Geocoding API.
// An empty baseURL selects the public endpoint.
func NewGoogleGeocoder(baseURL, apiKey string, timeout time.Duration, log logger.Logger) Geocoder {
	if baseURL == "" {
		baseURL = "https://maps.googleapis.com"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &googleGeocoder{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		log:        logger.OrNop(log),
	}
}

func (g *googleGeocoder) Name() string { return "google-geocode" }

func (g *googleGeocoder) Geocode(ctx context.Context, address string) (*GeocodingResult, error) {
	params := url.Values{}
	params.Set("address", address)
	params.Set("key", g.apiKey)
	queryURL := fmt.Sprintf("%s/maps/api/geocode/json?%s", g.baseURL, params.Encode())
	g.log.Debugf("geocode request: address=%s", address)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, queryURL, nil)
	if err != nil {
		return nil, &ErrGeocodingFailed{Address: address, Reason: err.Error()}
	}

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

	var payload googleGeocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &ErrGeocodingFailed{Address: address, Reason: err.Error()}
	}

	if payload.Status != statusOK {
		reason := payload.Status
		if payload.ErrorMessage != "" {
			reason = fmt.Sprintf("%s: %s", payload.Status, payload.ErrorMessage)
		}
		return nil, &ErrGeocodingFailed{Address: address, Reason: reason}
	}

	if len(payload.Results) == 0 {
		return nil, &ErrGeocodingFailed{Address: address, Reason: "no results found"}
	}

	first := payload.Results[0]
	if first.Geometry == nil || first.Geometry.Location == nil ||
		first.Geometry.Location.Lat == nil || first.Geometry.Location.Lng == nil {
		return nil, &ErrGeocodingFailed{Address: address, Reason: "missing geometry"}
	}

	return &GeocodingResult{
		Coords: models.GeoPoint{
			Lat: *first.Geometry.Location.Lat,
			Lng: *first.Geometry.Location.Lng,
		},
		DisplayName: first.FormattedAddress,
	}, nil
}
