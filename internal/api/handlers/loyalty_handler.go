package handlers

import (
	"net/http"

	"github.com/zatekoja/placesreview/internal/application/services"
)

// LoyaltyHandler handles points and badges
type LoyaltyHandler struct {
	loyalty *services.LoyaltyService
}

// NewLoyaltyHandler creates a new loyalty handler
func NewLoyaltyHandler(loyalty *services.LoyaltyService) *LoyaltyHandler {
	return &LoyaltyHandler{loyalty: loyalty}
}

type pointsRequest struct {
	UserID      string `json:"userId"`
	Points      int    `json:"points"`
	Description string `json:"description"`
}

// GetSummary handles GET /api/loyalty
func (h *LoyaltyHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	summary, err := h.loyalty.Summary(r.Context(), actor)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, summary)
}

// GetHistory handles GET /api/loyalty/history
func (h *LoyaltyHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	history, err := h.loyalty.History(r.Context(), actor)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": history,
		"count":        len(history),
	})
}

// Redeem handles POST /api/loyalty/redeem
func (h *LoyaltyHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	var req pointsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	tx, err := h.loyalty.Redeem(r.Context(), actor, req.Points, req.Description)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, tx)
}

// Award handles POST /api/admin/loyalty/award
func (h *LoyaltyHandler) Award(w http.ResponseWriter, r *http.Request) {
	var req pointsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	tx, err := h.loyalty.Award(r.Context(), req.UserID, req.Points, req.Description)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, tx)
}
