package handlers

import (
	"net/http"
	"time"

	"github.com/zatekoja/placesreview/internal/application/services"
)

// AdminHandler handles maintenance and client configuration requests
type AdminHandler struct {
	admin        *services.AdminService
	pollInterval time.Duration
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(admin *services.AdminService, pollInterval time.Duration) *AdminHandler {
	return &AdminHandler{admin: admin, pollInterval: pollInterval}
}

// Reset handles POST /api/admin/reset
func (h *AdminHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.admin.Reset(r.Context()); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// Counts handles GET /api/admin/counts
func (h *AdminHandler) Counts(w http.ResponseWriter, r *http.Request) {
	counts, err := h.admin.Counts(r.Context())
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, counts)
}

// PollInterval handles GET /api/config/poll-interval
func (h *AdminHandler) PollInterval(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]int64{
		"pollIntervalMs": h.pollInterval.Milliseconds(),
	})
}
