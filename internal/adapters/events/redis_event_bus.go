package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/zatekoja/placesreview/internal/domain/entities"
	"github.com/zatekoja/placesreview/internal/domain/providers"
	redisclient "github.com/zatekoja/placesreview/internal/infrastructure/clients/redis"
)

// RedisEventBus implements the EventBus interface using Redis Pub/Sub so
// that several API processes share one notification feed
type RedisEventBus struct {
	client        *redisclient.Client
	hub           *hub
	subscriptions map[string]*redis.PubSub
	mu            sync.Mutex
	wg            sync.WaitGroup
	ctx           context.Context
	cancel        context.CancelFunc
}

// NewRedisEventBus creates a new Redis-based event bus
func NewRedisEventBus(client *redisclient.Client) providers.EventBus {
	ctx, cancel := context.WithCancel(context.Background())
	return &RedisEventBus{
		client:        client,
		hub:           newHub(),
		subscriptions: make(map[string]*redis.PubSub),
		ctx:           ctx,
		cancel:        cancel,
	}
}

// Publish publishes an event to all subscribers
func (b *RedisEventBus) Publish(ctx context.Context, channel string, event *entities.NotificationEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.client.Client().Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	log.Debug().Str("channel", channel).Str("event_id", event.ID).Msg("published event")
	return nil
}

// Subscribe subscribes to events on a channel
func (b *RedisEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.NotificationEvent, error) {
	b.mu.Lock()
	eventChan, first, ok := b.hub.add(channel)
	if !ok {
		b.mu.Unlock()
		return nil, ErrBusClosed
	}
	if first {
		pubsub := b.client.Client().Subscribe(b.ctx, channel)
		// Wait for the subscription to be confirmed so no publish is missed.
		if _, err := pubsub.Receive(ctx); err != nil {
			_ = pubsub.Close()
			b.hub.remove(channel, eventChan)
			b.mu.Unlock()
			return nil, fmt.Errorf("failed to subscribe to %s: %w", channel, err)
		}
		b.subscriptions[channel] = pubsub
		b.wg.Add(1)
		go b.receiveMessages(channel, pubsub)
	}
	b.mu.Unlock()

	log.Debug().Str("channel", channel).Int("subscribers", b.hub.count(channel)).Msg("subscribed")

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		select {
		case <-ctx.Done():
			b.mu.Lock()
			defer b.mu.Unlock()
			if b.hub.remove(channel, eventChan) {
				b.closeSubscriptionLocked(channel)
			}
		case <-b.ctx.Done():
		}
	}()

	return eventChan, nil
}

// receiveMessages receives messages from Redis and broadcasts them to subscribers
func (b *RedisEventBus) receiveMessages(channel string, pubsub *redis.PubSub) {
	defer b.wg.Done()

	ch := pubsub.Channel()
	for {
		select {
		case <-b.ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}

			var event entities.NotificationEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.Error().Err(err).Str("channel", channel).Msg("failed to unmarshal event")
				continue
			}
			b.hub.broadcast(channel, &event)
		}
	}
}

// closeSubscriptionLocked must be called with b.mu held.
func (b *RedisEventBus) closeSubscriptionLocked(channel string) {
	if pubsub, ok := b.subscriptions[channel]; ok {
		if err := pubsub.Close(); err != nil {
			log.Warn().Err(err).Str("channel", channel).Msg("failed to close subscription")
		}
		delete(b.subscriptions, channel)
		log.Debug().Str("channel", channel).Msg("closed subscription")
	}
}

// Unsubscribe unsubscribes from a channel
func (b *RedisEventBus) Unsubscribe(ctx context.Context, channel string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hub.drop(channel)
	b.closeSubscriptionLocked(channel)
	return nil
}

// Close closes the event bus and all subscriptions
func (b *RedisEventBus) Close() error {
	b.cancel()

	b.mu.Lock()
	var errs []error
	for channel, pubsub := range b.subscriptions {
		if err := pubsub.Close(); err != nil {
			errs = append(errs, err)
		}
		delete(b.subscriptions, channel)
	}
	b.mu.Unlock()

	b.hub.shutdown()
	b.wg.Wait()

	if len(errs) > 0 {
		return fmt.Errorf("errors closing event bus: %v", errs)
	}

	log.Debug().Msg("event bus closed")
	return nil
}
