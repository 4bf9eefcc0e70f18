package handlers

import (
	"net/http"
	"time"

	"github.com/zatekoja/placesreview/internal/api/middleware"
	"github.com/zatekoja/placesreview/internal/application/services"
	"github.com/zatekoja/placesreview/internal/domain/entities"
	apperrors "github.com/zatekoja/placesreview/pkg/errors"
	"github.com/zatekoja/placesreview/pkg/geo"
)

// PlaceHandler handles place-related HTTP requests
type PlaceHandler struct {
	places *services.PlaceService
}

// NewPlaceHandler creates a new place handler
func NewPlaceHandler(places *services.PlaceService) *PlaceHandler {
	return &PlaceHandler{places: places}
}

// AddPlace handles POST /api/places
func (h *PlaceHandler) AddPlace(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	var place entities.Place
	if err := decodeJSON(w, r, &place); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	created, err := h.places.Add(r.Context(), actor, &place)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, created)
}

// ListPlaces handles GET /api/places?category=
func (h *PlaceHandler) ListPlaces(w http.ResponseWriter, r *http.Request) {
	places, err := h.places.List(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"places": places,
		"count":  len(places),
	})
}

// NearbyPlaces handles GET /api/places/nearby?lat=&lng=&radius=
func (h *PlaceHandler) NearbyPlaces(w http.ResponseWriter, r *http.Request) {
	origin, ok, err := originFromQuery(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if !ok {
		respondWithError(w, http.StatusBadRequest, "lat and lng are required")
		return
	}
	radius, _, err := queryFloat(r, "radius")
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	nearby, err := h.places.Nearby(r.Context(), *origin, radius)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"places": nearby,
		"count":  len(nearby),
	})
}

// GetPlace handles GET /api/places/{id}?at=&lat=&lng=
// It returns the place with its status, review stats and optional distance.
func (h *PlaceHandler) GetPlace(w http.ResponseWriter, r *http.Request) {
	var at time.Time
	if raw := r.URL.Query().Get("at"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "at must be an RFC 3339 time")
			return
		}
		at = parsed
	}
	origin, _, err := originFromQuery(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	details, err := h.places.Details(r.Context(), r.PathValue("id"), r.Header.Get(middleware.ActorHeader), at, origin)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, details)
}

// UpdatePlace handles PATCH /api/places/{id}
func (h *PlaceHandler) UpdatePlace(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	patch, err := readRaw(w, r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	place, err := h.places.Update(r.Context(), actor, r.PathValue("id"), patch)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, place)
}

// SetVerified handles PUT /api/admin/places/{id}/verified
func (h *PlaceHandler) SetVerified(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Verified bool `json:"verified"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	place, err := h.places.SetVerified(r.Context(), r.PathValue("id"), req.Verified)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, place)
}

// GetStatus handles GET /api/places/{id}/status
func (h *PlaceHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	st, err := h.places.Status(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, st)
}

// LikePlace handles POST /api/places/{id}/like
func (h *PlaceHandler) LikePlace(w http.ResponseWriter, r *http.Request) {
	h.setLike(w, r, true)
}

// UnlikePlace handles DELETE /api/places/{id}/like
func (h *PlaceHandler) UnlikePlace(w http.ResponseWriter, r *http.Request) {
	h.setLike(w, r, false)
}

func (h *PlaceHandler) setLike(w http.ResponseWriter, r *http.Request, like bool) {
	actor, err := actorID(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	placeID := r.PathValue("id")

	var changed bool
	if like {
		changed, err = h.places.Like(r.Context(), actor, placeID)
	} else {
		changed, err = h.places.Unlike(r.Context(), actor, placeID)
	}
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"placeId": placeID,
		"liked":   like,
		"changed": changed,
	})
}

// LikedPlaces handles GET /api/users/{id}/liked-places
func (h *PlaceHandler) LikedPlaces(w http.ResponseWriter, r *http.Request) {
	places, err := h.places.LikedPlaces(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"places": places,
		"count":  len(places),
	})
}

// originFromQuery reads an optional lat/lng pair.
func originFromQuery(r *http.Request) (*geo.Point, bool, error) {
	lat, hasLat, err := queryFloat(r, "lat")
	if err != nil {
		return nil, false, err
	}
	lng, hasLng, err := queryFloat(r, "lng")
	if err != nil {
		return nil, false, err
	}
	if hasLat != hasLng {
		return nil, false, apperrors.NewValidationError("lat and lng must be given together")
	}
	if !hasLat {
		return nil, false, nil
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return nil, false, apperrors.NewValidationError("coordinates out of range")
	}
	return &geo.Point{Lat: lat, Lng: lng}, true, nil
}
