package distance

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"field-scheduler/internal/logger"
)

type osrmCalculator struct {
	baseURL    string
	httpClient *http.Client
	log        logger.Logger
}

type osrmTableResponse struct {
	Code      string       `json:"code"`
	Distances [][]*float64 `json:"distances"`
	Durations [][]*float64 `json:"durations"`
}

// NewOSRM creates a provider backed by an OSRM table service. An empty
// baseURL selects the public demo server.
func NewOSRM(baseURL string, timeout time.Duration, log logger.Logger) Provider {
	if baseURL == "" {
		baseURL = "https://router.project-osrm.org"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &osrmCalculator{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		log:        logger.OrNop(log),
	}
}

func (c *osrmCalculator) Name() string { return "osrm" }

func (c *osrmCalculator) DriveTime(ctx context.Context, origin, dest string) (*DriveTimeResult, error) {
	fail := func(reason string) error {
		return &ErrDriveTimeFailed{Origin: origin, Dest: dest, Reason: reason}
	}

	from, err := ParseLocationKey(origin)
	if err != nil {
		return nil, fail(err.Error())
	}
	to, err := ParseLocationKey(dest)
	if err != nil {
		return nil, fail(err.Error())
	}

	// OSRM takes lng,lat pairs
	queryURL := fmt.Sprintf("%s/table/v1/driving/%.6f,%.6f;%.6f,%.6f?sources=0&destinations=1&annotations=distance,duration",
		c.baseURL, from.Lng, from.Lat, to.Lng, to.Lat)
	c.log.Debugf("osrm request: origin=%s dest=%s", origin, dest)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, queryURL, nil)
	if err != nil {
		return nil, fail(err.Error())
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fail(err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fail(fmt.Sprintf("HTTP %d: %s", resp.StatusCode, string(body)))
	}

	var osrmResp osrmTableResponse
	if err := json.NewDecoder(resp.Body).Decode(&osrmResp); err != nil {
		return nil, fail(err.Error())
	}

	if osrmResp.Code != "Ok" {
		return nil, fail(fmt.Sprintf("OSRM error: %s", osrmResp.Code))
	}

	if len(osrmResp.Durations) == 0 || len(osrmResp.Durations[0]) == 0 || osrmResp.Durations[0][0] == nil ||
		len(osrmResp.Distances) == 0 || len(osrmResp.Distances[0]) == 0 || osrmResp.Distances[0][0] == nil {
		return nil, fail("no route found")
	}

	return &DriveTimeResult{
		DurationSecs:   *osrmResp.Durations[0][0],
		DistanceMeters: *osrmResp.Distances[0][0],
	}, nil
}
