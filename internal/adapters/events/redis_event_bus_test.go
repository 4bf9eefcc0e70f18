package events_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/placesreview/internal/adapters/events"
	"github.com/zatekoja/placesreview/internal/domain/entities"
	"github.com/zatekoja/placesreview/internal/domain/providers"
	redisclient "github.com/zatekoja/placesreview/internal/infrastructure/clients/redis"
)

func newRedisBus(t *testing.T) providers.EventBus {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	bus := events.NewRedisEventBus(redisclient.NewFromClient(rdb))
	t.Cleanup(func() { bus.Close() })
	return bus
}

func TestRedisEventBus_PublishSubscribe(t *testing.T) {
	bus := newRedisBus(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	channel := providers.GetNotificationChannel("u1")
	ch, err := bus.Subscribe(ctx, channel)
	require.NoError(t, err)

	n := &entities.Notification{UserID: "u1", Type: entities.NotificationBadge, Title: "gold"}
	n.ID = "n1"
	event := entities.NewNotificationEvent("u1", entities.NotificationEventCreated, n)
	require.NoError(t, bus.Publish(ctx, channel, event))

	got := receive(t, ch)
	assert.Equal(t, event.ID, got.ID)
	assert.Equal(t, entities.NotificationEventCreated, got.EventType)
	require.NotNil(t, got.Notification)
	assert.Equal(t, "n1", got.Notification.ID)
	assert.Equal(t, entities.NotificationBadge, got.Notification.Type)
}

func TestRedisEventBus_UnsubscribeClosesLocalChannels(t *testing.T) {
	bus := newRedisBus(t)
	ctx := context.Background()

	ch, err := bus.Subscribe(ctx, "notifications:u1")
	require.NoError(t, err)
	require.NoError(t, bus.Unsubscribe(ctx, "notifications:u1"))

	_, ok := <-ch
	assert.False(t, ok)
}
