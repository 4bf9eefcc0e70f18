package handlers

import (
	"context"
	"net/http"

	"github.com/zatekoja/placesreview/internal/application/services"
	"github.com/zatekoja/placesreview/internal/domain/entities"
)

// NotificationHandler handles the actor's notification feed
type NotificationHandler struct {
	notifications *services.NotificationService
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notifications *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// ListNotifications handles GET /api/notifications?scope=all|personal|place
func (h *NotificationHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	var list func(context.Context, string) ([]*entities.Notification, error)
	switch r.URL.Query().Get("scope") {
	case "", "all":
		list = h.notifications.GetAll
	case string(entities.ScopePersonal):
		list = h.notifications.GetPersonal
	case string(entities.ScopePlace):
		list = h.notifications.GetPlaceScoped
	default:
		respondWithError(w, http.StatusBadRequest, "scope must be all, personal or place")
		return
	}

	notifications, err := list(r.Context(), actor)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"notifications": notifications,
		"count":         len(notifications),
	})
}

// UnreadCounts handles GET /api/notifications/unread
func (h *NotificationHandler) UnreadCounts(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	counts, err := h.notifications.Unread(r.Context(), actor)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, counts)
}

// MarkRead handles POST /api/notifications/{id}/read
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	n, err := h.notifications.MarkReadAs(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, n)
}

// MarkAllRead handles POST /api/notifications/read-all?scope=all|personal|place
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	var mark func(context.Context, string) (int, error)
	switch r.URL.Query().Get("scope") {
	case "", "all":
		mark = h.notifications.MarkAllRead
	case string(entities.ScopePersonal):
		mark = h.notifications.MarkAllPersonalRead
	case string(entities.ScopePlace):
		mark = h.notifications.MarkAllPlaceScopedRead
	default:
		respondWithError(w, http.StatusBadRequest, "scope must be all, personal or place")
		return
	}

	changed, err := mark(r.Context(), actor)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]int{"updated": changed})
}
