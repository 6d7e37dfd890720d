package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"field-scheduler/internal/logger"
	"field-scheduler/internal/models"
	"field-scheduler/internal/priority"
	"field-scheduler/internal/scheduling"
	"field-scheduler/internal/travel"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

// HealthChecker is satisfied by *sqlite.Store
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// ProjectSource supplies unscheduled projects when a request omits them
type ProjectSource interface {
	ListUnscheduled(ctx context.Context) ([]models.Project, error)
}

// BookingSource supplies committed crew days when a request omits them
type BookingSource interface {
	ListFrom(ctx context.Context, from time.Time) ([]models.ExistingBooking, error)
}

// Roster is the configured crew, director and timezone layout
type Roster struct {
	Preset              priority.Preset
	CrewsByLocation     map[string][]models.Crew
	DirectorsByLocation map[string]string
	TimezonesByLocation map[string]string
}

// Handler provides common handler utilities and dependencies
type Handler struct {
	DB        HealthChecker
	Projects  ProjectSource
	Bookings  BookingSource
	Optimizer *scheduling.Optimizer
	Evaluator *travel.Evaluator
	Roster    Roster
	Log       logger.Logger
	// Now returns the current time; the default start date is derived from it
	Now       func() time.Time
}

// ErrorResponse represents an API error
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func (h *Handler) log() logger.Logger {
	return logger.OrNop(h.Log)
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log().Warnf("failed to encode response: %v", err)
	}
}

// writeError writes a JSON error response
func (h *Handler) writeError(w http.ResponseWriter, status int, code, message string, details any) {
	h.writeJSON(w, status, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// handleValidationError handles 400 errors
func (h *Handler) handleValidationError(w http.ResponseWriter, message string) {
	h.writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", message, nil)
}

// handleInternalError handles 500 errors
func (h *Handler) handleInternalError(w http.ResponseWriter, err error) {
	h.log().Errorf("internal error: %v", err)
	h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An error occurred. Please try again.", nil)
}

// decodeJSON decodes the request body into dst, rejecting unknown fields
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4<<20))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
