package events

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/placesreview/internal/domain/entities"
	"github.com/zatekoja/placesreview/internal/domain/providers"
)

// ErrBusClosed is returned when subscribing to a closed bus
var ErrBusClosed = errors.New("event bus closed")

// MemoryEventBus implements the EventBus interface inside one process
type MemoryEventBus struct {
	hub  *hub
	done chan struct{}
}

// NewMemoryEventBus creates an in-process event bus
func NewMemoryEventBus() providers.EventBus {
	return &MemoryEventBus{hub: newHub(), done: make(chan struct{})}
}

// Publish delivers the event to current subscribers of the channel
func (b *MemoryEventBus) Publish(ctx context.Context, channel string, event *entities.NotificationEvent) error {
	b.hub.broadcast(channel, event)
	return nil
}

// Subscribe subscribes to events on a channel
func (b *MemoryEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.NotificationEvent, error) {
	eventChan, _, ok := b.hub.add(channel)
	if !ok {
		return nil, ErrBusClosed
	}
	log.Debug().Str("channel", channel).Int("subscribers", b.hub.count(channel)).Msg("subscribed")

	go func() {
		select {
		case <-ctx.Done():
			b.hub.remove(channel, eventChan)
		case <-b.done:
		}
	}()
	return eventChan, nil
}

// Unsubscribe drops every subscriber of the channel
func (b *MemoryEventBus) Unsubscribe(ctx context.Context, channel string) error {
	b.hub.drop(channel)
	return nil
}

// Close closes the event bus and all subscriptions
func (b *MemoryEventBus) Close() error {
	select {
	case <-b.done:
		return nil
	default:
	}
	close(b.done)
	b.hub.shutdown()
	return nil
}
