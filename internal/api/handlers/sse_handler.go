package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/zatekoja/placesreview/internal/application/services"
	"github.com/zatekoja/placesreview/internal/infrastructure/observability"
)

// defaultHeartbeat keeps idle streams open through proxies
const defaultHeartbeat = 30 * time.Second

// SSEHandler streams notification events to the actor over Server-Sent Events
type SSEHandler struct {
	notifications *services.NotificationService
	heartbeat     time.Duration

	mu      sync.RWMutex
	clients map[string]int // user -> open streams
}

// NewSSEHandler creates a new SSE handler
func NewSSEHandler(notifications *services.NotificationService, heartbeat time.Duration) *SSEHandler {
	if heartbeat <= 0 {
		heartbeat = defaultHeartbeat
	}
	return &SSEHandler{
		notifications: notifications,
		heartbeat:     heartbeat,
		clients:       make(map[string]int),
	}
}

// StreamNotifications handles GET /api/notifications/stream
// Clients re-query unread counts when an event arrives.
func (h *SSEHandler) StreamNotifications(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	events, err := h.notifications.Subscribe(ctx, actor)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	h.registerClient(actor)
	defer h.unregisterClient(actor)

	logger := observability.LoggerFromContext(ctx)
	h.sendEvent(ctx, w, "connected", map[string]interface{}{
		"userId":    actor,
		"timestamp": time.Now().UTC(),
	})
	flusher.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Debug().Str("user_id", actor).Msg("notification stream closed by client")
			return
		case <-ticker.C:
			h.sendEvent(ctx, w, "heartbeat", map[string]interface{}{
				"timestamp": time.Now().UTC(),
			})
			flusher.Flush()
		case event, ok := <-events:
			if !ok {
				logger.Debug().Str("user_id", actor).Msg("notification stream closed by bus")
				return
			}
			h.sendEvent(ctx, w, string(event.EventType), event)
			flusher.Flush()
		}
	}
}

func (h *SSEHandler) registerClient(userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[userID]++
}

func (h *SSEHandler) unregisterClient(userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[userID]--
	if h.clients[userID] <= 0 {
		delete(h.clients, userID)
	}
}

// sendEvent writes one SSE frame
func (h *SSEHandler) sendEvent(ctx context.Context, w http.ResponseWriter, eventType string, data interface{}) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		observability.LoggerFromContext(ctx).Error().Err(err).Msg("failed to marshal stream event")
		return
	}
	fmt.Fprintf(w, "event: %s\n", eventType)
	fmt.Fprintf(w, "data: %s\n\n", jsonData)
}

// GetClientCount returns the number of open streams
func (h *SSEHandler) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	count := 0
	for _, n := range h.clients {
		count += n
	}
	return count
}
