package handlers

import (
	"net/http"

	"github.com/zatekoja/placesreview/internal/application/services"
)

// ReviewHandler handles review-related HTTP requests
type ReviewHandler struct {
	reviews *services.ReviewService
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviews *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

// SubmitReview handles POST /api/places/{id}/reviews
func (h *ReviewHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	var in services.ReviewInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	in.PlaceID = r.PathValue("id")

	review, err := h.reviews.Submit(r.Context(), actor, in)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, review)
}

// ListPlaceReviews handles GET /api/places/{id}/reviews
func (h *ReviewHandler) ListPlaceReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.reviews.ListByPlace(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"reviews": reviews,
		"count":   len(reviews),
	})
}

// ListUserReviews handles GET /api/users/{id}/reviews
func (h *ReviewHandler) ListUserReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.reviews.ListByUser(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"reviews": reviews,
		"count":   len(reviews),
	})
}

// GetStats handles GET /api/places/{id}/stats
func (h *ReviewHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.reviews.Stats(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, stats)
}

// ToggleLike handles POST /api/reviews/{id}/like
func (h *ReviewHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	review, liked, err := h.reviews.ToggleLike(r.Context(), r.PathValue("id"), actor)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"review": review,
		"liked":  liked,
	})
}

// Report handles POST /api/reviews/{id}/report
func (h *ReviewHandler) Report(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	review, err := h.reviews.Report(r.Context(), r.PathValue("id"), actor)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, review)
}

// Respond handles POST /api/reviews/{id}/response
func (h *ReviewHandler) Respond(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	var req struct {
		Text string `json:"text"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	review, err := h.reviews.Respond(r.Context(), actor, r.PathValue("id"), req.Text)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, review)
}
