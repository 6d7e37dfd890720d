package handlers

import (
	"fmt"
	"net/http"

	"field-scheduler/internal/businessday"
	"field-scheduler/internal/models"
	"field-scheduler/internal/priority"
	"field-scheduler/internal/scheduling"
)

// BookingInput is an existing crew booking with a calendar date
type BookingInput struct {
	Crew      string `json:"crew"`
	StartDate string `json:"startDate"`
	Days      int    `json:"days"`
}

// OptimizeRequest is the body of POST /api/v1/schedule/optimize. Omitted
// projects and bookings are read from the store; omitted crews, directors
// and timezones come from the configured roster.
type OptimizeRequest struct {
	Projects            []models.Project         `json:"projects,omitempty"`
	CrewsByLocation     map[string][]models.Crew `json:"crewsByLocation,omitempty"`
	DirectorsByLocation map[string]string        `json:"directorsByLocation,omitempty"`
	TimezonesByLocation map[string]string        `json:"timezonesByLocation,omitempty"`
	StartDate           string                   `json:"startDate,omitempty"`
	Preset              priority.Preset          `json:"preset,omitempty"`
	ExistingBookings    []BookingInput           `json:"existingBookings,omitempty"`
}

// HandleOptimize handles POST /api/v1/schedule/optimize
func (h *Handler) HandleOptimize(w http.ResponseWriter, r *http.Request) {
	var req OptimizeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.handleValidationError(w, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	startDate := businessday.Date(h.now())
	if req.StartDate != "" {
		d, err := businessday.ParseDate(req.StartDate)
		if err != nil {
			h.handleValidationError(w, err.Error())
			return
		}
		startDate = d
	}

	preset := req.Preset
	if preset == "" {
		preset = h.Roster.Preset
	}

	projects := req.Projects
	if projects == nil && h.Projects != nil {
		loaded, err := h.Projects.ListUnscheduled(r.Context())
		if err != nil {
			h.handleInternalError(w, err)
			return
		}
		projects = loaded
	}

	var bookings []models.ExistingBooking
	if req.ExistingBookings != nil {
		bookings = make([]models.ExistingBooking, 0, len(req.ExistingBookings))
		for i, b := range req.ExistingBookings {
			d, err := businessday.ParseDate(b.StartDate)
			if err != nil {
				h.handleValidationError(w, fmt.Sprintf("existingBookings[%d]: %v", i, err))
				return
			}
			bookings = append(bookings, models.ExistingBooking{Crew: b.Crew, StartDate: d, Days: b.Days})
		}
	} else if h.Bookings != nil {
		loaded, err := h.Bookings.ListFrom(r.Context(), startDate)
		if err != nil {
			h.handleInternalError(w, err)
			return
		}
		bookings = loaded
	}

	crews := req.CrewsByLocation
	if crews == nil {
		crews = h.Roster.CrewsByLocation
	}
	directors := req.DirectorsByLocation
	if directors == nil {
		directors = h.Roster.DirectorsByLocation
	}
	timezones := req.TimezonesByLocation
	if timezones == nil {
		timezones = h.Roster.TimezonesByLocation
	}

	h.log().Infof("POST /api/v1/schedule/optimize: projects=%d bookings=%d preset=%s start=%s",
		len(projects), len(bookings), preset, businessday.Format(startDate))

	result := h.Optimizer.Optimize(scheduling.Request{
		Projects:            projects,
		CrewsByLocation:     crews,
		DirectorsByLocation: directors,
		TimezonesByLocation: timezones,
		Options: scheduling.Options{
			StartDate:        startDate,
			Preset:           preset,
			ExistingBookings: bookings,
		},
	})

	h.writeJSON(w, http.StatusOK, result)
}
