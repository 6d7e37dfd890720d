package handlers

import (
	"fmt"
	"net/http"

	"field-scheduler/internal/models"
	"field-scheduler/internal/travel"
)

// TravelRequest is the body of POST /api/v1/travel/evaluate
type TravelRequest struct {
	Candidate        models.LocationRef                `json:"candidate"`
	Slots            []models.Slot                     `json:"slots"`
	BookingsByPerson map[string][]models.PersonBooking `json:"bookingsByPerson"`
	BufferMinutes    *int                              `json:"bufferMinutes,omitempty"`
}

// TravelResponse returns the slots with any warnings attached
type TravelResponse struct {
	Slots []models.Slot     `json:"slots"`
	Stats travel.BatchStats `json:"stats"`
}

// HandleEvaluateTravel handles POST /api/v1/travel/evaluate. Travel
// problems never fail the request; slots simply come back without warnings.
func (h *Handler) HandleEvaluateTravel(w http.ResponseWriter, r *http.Request) {
	var req TravelRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.handleValidationError(w, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if req.Candidate.Address == "" && req.Candidate.Coordinates == nil {
		h.handleValidationError(w, "candidate address or coordinates required")
		return
	}
	if req.BufferMinutes != nil && *req.BufferMinutes < 0 {
		h.handleValidationError(w, "bufferMinutes must not be negative")
		return
	}
	if req.Slots == nil {
		req.Slots = []models.Slot{}
	}

	h.log().Infof("POST /api/v1/travel/evaluate: slots=%d persons=%d", len(req.Slots), len(req.BookingsByPerson))

	stats := h.Evaluator.EvaluateBatch(r.Context(), travel.BatchRequest{
		Slots:            req.Slots,
		BookingsByPerson: req.BookingsByPerson,
		Candidate:        req.Candidate,
		BufferMinutes:    req.BufferMinutes,
	})

	h.writeJSON(w, http.StatusOK, TravelResponse{Slots: req.Slots, Stats: stats})
}
