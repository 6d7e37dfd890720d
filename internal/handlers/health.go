package handlers

import "net/http"

// HandleHealthCheck handles GET /api/v1/health
func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	dbStatus := "none"

	if h.DB != nil {
		dbStatus = "connected"
		if err := h.DB.HealthCheck(r.Context()); err != nil {
			status = "degraded"
			dbStatus = "error"
		}
	}

	travelStatus := "disabled"
	if h.Evaluator.Enabled() {
		travelStatus = "enabled"
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"status":   status,
		"version":  Version,
		"database": dbStatus,
		"travel":   travelStatus,
	})
}
