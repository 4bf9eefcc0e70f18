package handlers

import (
	"net/http"

	"github.com/zatekoja/placesreview/internal/application/services"
	"github.com/zatekoja/placesreview/internal/domain/entities"
	"github.com/zatekoja/placesreview/pkg/geo"
)

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	users *services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

type createUserRequest struct {
	Name     string     `json:"name"`
	Email    string     `json:"email"`
	Phone    string     `json:"phone"`
	Avatar   string     `json:"avatar"`
	Location *geo.Point `json:"location"`
}

// userResponse adds the display badge to the stored user
type userResponse struct {
	*entities.User
	DisplayBadge entities.BadgeTier `json:"displayBadge"`
}

func newUserResponse(u *entities.User) userResponse {
	return userResponse{User: u, DisplayBadge: u.DisplayBadge()}
}

// CreateUser handles POST /api/users
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	user, err := h.users.Create(r.Context(), &entities.User{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Avatar:   req.Avatar,
		Location: req.Location,
	})
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, newUserResponse(user))
}

// ListUsers handles GET /api/users
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	out := make([]userResponse, len(users))
	for i, u := range users {
		out[i] = newUserResponse(u)
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"users": out,
		"count": len(out),
	})
}

// GetUser handles GET /api/users/{id}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, newUserResponse(user))
}

// UpdateProfile handles PATCH /api/users/{id}
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
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
	user, err := h.users.UpdateProfile(r.Context(), actor, r.PathValue("id"), patch)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, newUserResponse(user))
}

// SetExpert handles PUT /api/admin/users/{id}/expert
func (h *UserHandler) SetExpert(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Expert bool `json:"expert"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	user, err := h.users.SetExpert(r.Context(), r.PathValue("id"), req.Expert)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, newUserResponse(user))
}
