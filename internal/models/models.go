package models

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// GeoPoint represents a geographic point
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Key returns the canonical "lat,lng" location key used by the distance providers
func (p GeoPoint) Key() string {
	return fmt.Sprintf("%s,%s", formatCoordinate(p.Lat), formatCoordinate(p.Lng))
}

// RoundCoordinate rounds a coordinate to 6 decimal places (~0.1m precision)
func RoundCoordinate(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

func formatCoordinate(v float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.6f", RoundCoordinate(v)), "0"), ".")
}

// LocationRef identifies a place either by explicit coordinates or by free-text address
type LocationRef struct {
	Address     string    `json:"address,omitempty"`
	Coordinates *GeoPoint `json:"coordinates,omitempty"`
}

// Project is a pending job waiting to be placed on a crew
type Project struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Address       string   `json:"address"`
	Location      string   `json:"location"`
	Amount        float64  `json:"amount"`
	Stage         string   `json:"stage"`
	IsPE          bool     `json:"isPE"`
	DaysInstall   float64  `json:"daysInstall"`
	DaysToInstall *float64 `json:"daysToInstall,omitempty"`
}

// IsRTB reports whether the project is in the "Ready to Build" stage
func (p *Project) IsRTB() bool {
	switch strings.ToLower(strings.TrimSpace(p.Stage)) {
	case "rtb", "ready to build", "ready-to-build", "ready_to_build":
		return true
	}
	return false
}

// InstallDays returns the job length in whole business days (at least 1)
func (p *Project) InstallDays() int {
	if p.DaysInstall <= 0 {
		return 1
	}
	return int(math.Ceil(p.DaysInstall))
}

// Crew is an installation team working out of one location
type Crew struct {
	Name         string         `json:"name"`
	Location     string         `json:"location,omitempty"`
	Color        string         `json:"color,omitempty"`
	Capabilities map[string]int `json:"capabilities,omitempty"`
}

// ExistingBooking occupies a span of business days on a crew
type ExistingBooking struct {
	Crew      string    `json:"crew"`
	StartDate time.Time `json:"startDate"`
	Days      int       `json:"days"`
}

// ScheduleEntry is a project placed on a crew by the optimizer
type ScheduleEntry struct {
	ProjectID    string             `json:"projectId"`
	ProjectName  string             `json:"projectName"`
	Address      string             `json:"address,omitempty"`
	Location     string             `json:"location"`
	Crew         string             `json:"crew"`
	CrewColor    string             `json:"crewColor,omitempty"`
	StartDate    time.Time          `json:"startDate"`
	EndDate      time.Time          `json:"endDate"`
	Days         int                `json:"days"`
	AssigneeName string             `json:"assigneeName,omitempty"`
	Timezone     string             `json:"timezone,omitempty"`
	Score        float64            `json:"score"`
	Components   map[string]float64 `json:"components,omitempty"`
}

// SkipReason is a machine-readable code for why a project was not scheduled
type SkipReason string

const (
	SkipNoLocation SkipReason = "no_location"
	SkipNoCrews    SkipReason = "no_crews"
)

// SkippedProject is a project the optimizer could not place
type SkippedProject struct {
	ProjectID   string     `json:"projectId"`
	ProjectName string     `json:"projectName"`
	Location    string     `json:"location,omitempty"`
	Reason      SkipReason `json:"reason"`
	Message     string     `json:"message"`
}

// TravelEstimate is a drive-time lookup result
type TravelEstimate struct {
	DurationMinutes int     `json:"durationMinutes"`
	DistanceMiles   float64 `json:"distanceMiles"`
	Cached          bool    `json:"cached"`
}

// WarningType classifies a travel finding
type WarningType string

const (
	WarningTight   WarningType = "tight"
	WarningUnknown WarningType = "unknown"
)

// WarningDirection says which side of a slot produced a finding
type WarningDirection string

const (
	DirectionBefore WarningDirection = "before"
	DirectionAfter  WarningDirection = "after"
	DirectionBoth   WarningDirection = "both"
)

// AdjacentJob describes the neighbouring booking behind a travel finding
type AdjacentJob struct {
	Name          string    `json:"name"`
	Time          time.Time `json:"time"`
	TravelMinutes *int      `json:"travelMinutes,omitempty"`
}

// TravelWarning is an advisory annotation attached to a candidate slot
type TravelWarning struct {
	Type                   WarningType      `json:"type"`
	Direction              WarningDirection `json:"direction"`
	PrevJob                *AdjacentJob     `json:"prevJob,omitempty"`
	NextJob                *AdjacentJob     `json:"nextJob,omitempty"`
	AvailableMinutesBefore *int             `json:"availableMinutesBefore,omitempty"`
	AvailableMinutesAfter  *int             `json:"availableMinutesAfter,omitempty"`
}

// PersonBooking is a booked appointment on a person's calendar
type PersonBooking struct {
	Name     string      `json:"name"`
	Start    time.Time   `json:"start"`
	End      time.Time   `json:"end"`
	Location LocationRef `json:"location"`
}

// Slot is a candidate time slot offered for a new appointment
type Slot struct {
	ID            string         `json:"id"`
	Person        string         `json:"person"`
	Start         time.Time      `json:"start"`
	End           time.Time      `json:"end"`
	TravelWarning *TravelWarning `json:"travelWarning,omitempty"`
}
