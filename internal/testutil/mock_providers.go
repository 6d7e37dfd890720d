package testutil

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"field-scheduler/internal/distance"
	"field-scheduler/internal/geocoding"
	"field-scheduler/internal/models"
)

// MockGeocoder is a geocoder with canned answers. Unknown addresses fail.
// It is safe for concurrent use.
type MockGeocoder struct {
	mu      sync.Mutex
	points  map[string]models.GeoPoint
	failing map[string]bool
	calls   map[string]int
	Delay   time.Duration
}

func NewMockGeocoder() *MockGeocoder {
	return &MockGeocoder{
		points:  make(map[string]models.GeoPoint),
		failing: make(map[string]bool),
		calls:   make(map[string]int),
	}
}

// SetPoint registers the coordinates returned for address
func (m *MockGeocoder) SetPoint(address string, p models.GeoPoint) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.points[address] = p
	delete(m.failing, address)
}

// SetFailing makes lookups for address return an error
func (m *MockGeocoder) SetFailing(address string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failing[address] = true
}

func (m *MockGeocoder) Name() string { return "mock-geocoder" }

func (m *MockGeocoder) Geocode(ctx context.Context, address string) (*geocoding.GeocodingResult, error) {
	m.mu.Lock()
	m.calls[address]++
	p, ok := m.points[address]
	failing := m.failing[address]
	delay := m.Delay
	m.mu.Unlock()

	if err := wait(ctx, delay); err != nil {
		return nil, err
	}
	if failing || !ok {
		return nil, &geocoding.ErrGeocodingFailed{Address: address, Reason: "no results found"}
	}
	return &geocoding.GeocodingResult{Coords: p, DisplayName: address}, nil
}

// Calls returns how many times address was looked up
func (m *MockGeocoder) Calls(address string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[address]
}

// TotalCalls returns the number of lookups across all addresses
func (m *MockGeocoder) TotalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		n += c
	}
	return n
}

// MockDriveTime is a drive-time provider. Pairs without an override get a
// duration derived from scaled Euclidean distance at 50 km/h.
type MockDriveTime struct {
	mu          sync.Mutex
	overrides   map[string]distance.DriveTimeResult
	calls       []string
	ScaleFactor float64
	Delay       time.Duration
	Fail        bool
}

func NewMockDriveTime() *MockDriveTime {
	return &MockDriveTime{
		overrides:   make(map[string]distance.DriveTimeResult),
		ScaleFactor: 111000, // 1 degree ≈ 111km in meters
	}
}

func pairKey(origin, dest string) string {
	return origin + "|" + dest
}

// SetMinutes fixes the drive time between two location keys in one direction
func (m *MockDriveTime) SetMinutes(origin, dest string, minutes int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.overrides[pairKey(origin, dest)] = distance.DriveTimeResult{
		DurationSecs:   float64(minutes * 60),
		DistanceMeters: float64(minutes) * 800,
	}
}

func (m *MockDriveTime) Name() string { return "mock-drive-time" }

func (m *MockDriveTime) DriveTime(ctx context.Context, origin, dest string) (*distance.DriveTimeResult, error) {
	m.mu.Lock()
	m.calls = append(m.calls, pairKey(origin, dest))
	override, ok := m.overrides[pairKey(origin, dest)]
	delay, fail, scale := m.Delay, m.Fail, m.ScaleFactor
	m.mu.Unlock()

	if err := wait(ctx, delay); err != nil {
		return nil, err
	}
	if fail {
		return nil, &distance.ErrDriveTimeFailed{Origin: origin, Dest: dest, Reason: "mock failure"}
	}
	if ok {
		return &override, nil
	}

	from, err := distance.ParseLocationKey(origin)
	if err != nil {
		return nil, &distance.ErrDriveTimeFailed{Origin: origin, Dest: dest, Reason: err.Error()}
	}
	to, err := distance.ParseLocationKey(dest)
	if err != nil {
		return nil, &distance.ErrDriveTimeFailed{Origin: origin, Dest: dest, Reason: err.Error()}
	}

	dLat := to.Lat - from.Lat
	dLng := to.Lng - from.Lng
	dist := math.Sqrt(dLat*dLat+dLng*dLng) * scale
	return &distance.DriveTimeResult{DistanceMeters: dist, DurationSecs: dist / 50000 * 3600}, nil
}

// Calls returns the recorded "origin|dest" pairs in call order
func (m *MockDriveTime) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// ResetCalls clears the recorded calls
func (m *MockDriveTime) ResetCalls() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return fmt.Errorf("mock provider: %w", ctx.Err())
	}
}
