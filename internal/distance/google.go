package distance

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"field-scheduler/internal/logger"
)

const statusOK = "OK"

type googleMatrix struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        logger.Logger
}

type matrixValue struct {
	Value *float64 `json:"value"`
}

type googleMatrixResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Rows         []struct {
		Elements []struct {
			Status   string       `json:"status"`
			Duration *matrixValue `json:"duration"`
			Distance *matrixValue `json:"distance"`
		} `json:"elements"`
	} `json:"rows"`
}

// NewGoogleMatrix creates a provider backed by the Google Distance Matrix API.
// An empty baseURL selects the public endpoint.
func NewGoogleMatrix(baseURL, apiKey string, timeout time.Duration, log logger.Logger) Provider {
	if baseURL == "" {
		baseURL = "https://maps.googleapis.com"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &googleMatrix{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		log:        logger.OrNop(log),
	}
}

func (g *googleMatrix) Name() string { return "google-distance-matrix" }

func (g *googleMatrix) DriveTime(ctx context.Context, origin, dest string) (*DriveTimeResult, error) {
	params := url.Values{}
	params.Set("origins", origin)
	params.Set("destinations", dest)
	params.Set("mode", "driving")
	params.Set("key", g.apiKey)
	queryURL := fmt.Sprintf("%s/maps/api/distancematrix/json?%s", g.baseURL, params.Encode())
	g.log.Debugf("distance matrix request: origin=%s dest=%s", origin, dest)

	fail := func(reason string) error {
		return &ErrDriveTimeFailed{Origin: origin, Dest: dest, Reason: reason}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, queryURL, nil)
	if err != nil {
		return nil, fail(err.Error())
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fail(err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fail(fmt.Sprintf("HTTP %d: %s", resp.StatusCode, string(body)))
	}

	var payload googleMatrixResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fail(err.Error())
	}

	if payload.Status != statusOK {
		if payload.ErrorMessage != "" {
			return nil, fail(fmt.Sprintf("%s: %s", payload.Status, payload.ErrorMessage))
		}
		return nil, fail(payload.Status)
	}

	if len(payload.Rows) == 0 || len(payload.Rows[0].Elements) == 0 {
		return nil, fail("no elements returned")
	}

	el := payload.Rows[0].Elements[0]
	if el.Status != statusOK {
		return nil, fail(fmt.Sprintf("element status %s", el.Status))
	}
	if el.Duration == nil || el.Duration.Value == nil || el.Distance == nil || el.Distance.Value == nil {
		return nil, fail("missing duration or distance")
	}

	return &DriveTimeResult{
		DurationSecs:   *el.Duration.Value,
		DistanceMeters: *el.Distance.Value,
	}, nil
}
