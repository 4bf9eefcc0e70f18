package events

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/placesreview/internal/domain/entities"
)

const subscriberBuffer = 100

// hub tracks the local subscriber channels of every bus channel.
type hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan *entities.NotificationEvent]struct{}
	closed      bool
}

func newHub() *hub {
	return &hub{subscribers: make(map[string]map[chan *entities.NotificationEvent]struct{})}
}

// add registers a subscriber and reports whether it is the channel's first.
func (h *hub) add(channel string) (chan *entities.NotificationEvent, bool, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, false, false
	}

	first := false
	if h.subscribers[channel] == nil {
		h.subscribers[channel] = make(map[chan *entities.NotificationEvent]struct{})
		first = true
	}
	eventChan := make(chan *entities.NotificationEvent, subscriberBuffer)
	h.subscribers[channel][eventChan] = struct{}{}
	return eventChan, first, true
}

// remove closes one subscriber and reports whether the channel has none left.
func (h *hub) remove(channel string, eventChan chan *entities.NotificationEvent) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	subscribers, exists := h.subscribers[channel]
	if !exists {
		return false
	}
	if _, ok := subscribers[eventChan]; !ok {
		return false
	}
	delete(subscribers, eventChan)
	close(eventChan)

	if len(subscribers) == 0 {
		delete(h.subscribers, channel)
		return true
	}
	return false
}

// drop closes every subscriber of a channel.
func (h *hub) drop(channel string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for subscriber := range h.subscribers[channel] {
		close(subscriber)
	}
	delete(h.subscribers, channel)
}

// shutdown closes every subscriber and refuses new ones.
func (h *hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for channel, subscribers := range h.subscribers {
		for subscriber := range subscribers {
			close(subscriber)
		}
		delete(h.subscribers, channel)
	}
}

func (h *hub) count(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[channel])
}

// broadcast never blocks; a full subscriber misses the event.
func (h *hub) broadcast(channel string, event *entities.NotificationEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for subscriber := range h.subscribers[channel] {
		select {
		case subscriber <- event:
		default:
			log.Warn().Str("channel", channel).Str("event_id", event.ID).Msg("subscriber channel full, skipping event")
		}
	}
}
