package handlers

import (
	"net/http"

	"github.com/zatekoja/placesreview/internal/application/services"
)

// RecordsHandler handles announcements, inquiries and subscriptions
type RecordsHandler struct {
	announcements *services.AnnouncementService
	inquiries     *services.InquiryService
	subscriptions *services.SubscriptionService
}

// NewRecordsHandler creates a new records handler
func NewRecordsHandler(announcements *services.AnnouncementService, inquiries *services.InquiryService, subscriptions *services.SubscriptionService) *RecordsHandler {
	return &RecordsHandler{
		announcements: announcements,
		inquiries:     inquiries,
		subscriptions: subscriptions,
	}
}

// CreateAnnouncement handles POST /api/places/{id}/announcements
func (h *RecordsHandler) CreateAnnouncement(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	var in services.AnnouncementInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	a, err := h.announcements.Create(r.Context(), actor, r.PathValue("id"), in)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, a)
}

// ListAnnouncements handles GET /api/places/{id}/announcements?active=true
func (h *RecordsHandler) ListAnnouncements(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"
	list, err := h.announcements.ListByPlace(r.Context(), r.PathValue("id"), activeOnly)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"announcements": list,
		"count":         len(list),
	})
}

// OpenInquiry handles POST /api/inquiries
func (h *RecordsHandler) OpenInquiry(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	var req struct {
		Subject string `json:"subject"`
		Message string `json:"message"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	inquiry, err := h.inquiries.Open(r.Context(), actor, req.Subject, req.Message)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, inquiry)
}

// ListInquiries handles GET /api/inquiries
func (h *RecordsHandler) ListInquiries(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	list, err := h.inquiries.ListByUser(r.Context(), actor)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"inquiries": list,
		"count":     len(list),
	})
}

// ReplyToInquiry handles POST /api/inquiries/{id}/replies
func (h *RecordsHandler) ReplyToInquiry(w http.ResponseWriter, r *http.Request) {
	h.reply(w, r, false)
}

// StaffReply handles POST /api/admin/inquiries/{id}/replies
func (h *RecordsHandler) StaffReply(w http.ResponseWriter, r *http.Request) {
	h.reply(w, r, true)
}

func (h *RecordsHandler) reply(w http.ResponseWriter, r *http.Request, fromStaff bool) {
	actor, err := actorID(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	var req textRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	inquiry, err := h.inquiries.Reply(r.Context(), actor, r.PathValue("id"), req.Text, fromStaff)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, inquiry)
}

// CloseInquiry handles POST /api/inquiries/{id}/close
func (h *RecordsHandler) CloseInquiry(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	inquiry, err := h.inquiries.Close(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, inquiry)
}

// Subscribe handles POST /api/subscriptions
func (h *RecordsHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	var in services.SubscriptionInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	sub, err := h.subscriptions.Subscribe(r.Context(), actor, in)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, sub)
}

// ListSubscriptions handles GET /api/subscriptions
func (h *RecordsHandler) ListSubscriptions(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	list, err := h.subscriptions.ListByUser(r.Context(), actor)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"subscriptions": list,
		"count":         len(list),
	})
}

// CancelSubscription handles DELETE /api/subscriptions/{id}
func (h *RecordsHandler) CancelSubscription(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	sub, err := h.subscriptions.Cancel(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, sub)
}

// HasFeature handles GET /api/subscriptions/features/{feature}
func (h *RecordsHandler) HasFeature(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	feature := r.PathValue("feature")
	has, err := h.subscriptions.HasFeature(r.Context(), actor, feature)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"feature": feature,
		"enabled": has,
	})
}
