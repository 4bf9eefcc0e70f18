package events_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/zatekoja/placesreview/internal/adapters/events"
	"github.com/zatekoja/placesreview/internal/domain/entities"
	"github.com/zatekoja/placesreview/internal/domain/providers"
)

func receive(t *testing.T, ch <-chan *entities.NotificationEvent) *entities.NotificationEvent {
	t.Helper()
	select {
	case event, ok := <-ch:
		require.True(t, ok, "channel closed before an event arrived")
		return event
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func TestMemoryEventBus_FanOut(t *testing.T) {
	defer goleak.VerifyNone(t)

	bus := events.NewMemoryEventBus()
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	channel := providers.GetNotificationChannel("u1")
	first, err := bus.Subscribe(ctx, channel)
	require.NoError(t, err)
	second, err := bus.Subscribe(ctx, channel)
	require.NoError(t, err)
	other, err := bus.Subscribe(ctx, providers.GetNotificationChannel("u2"))
	require.NoError(t, err)

	event := entities.NewNotificationEvent("u1", entities.NotificationEventCreated, nil)
	require.NoError(t, bus.Publish(ctx, channel, event))

	assert.Equal(t, event.ID, receive(t, first).ID)
	assert.Equal(t, event.ID, receive(t, second).ID)
	select {
	case <-other:
		t.Fatal("event leaked to another recipient")
	default:
	}
}

func TestMemoryEventBus_ContextCancelClosesSubscriber(t *testing.T) {
	defer goleak.VerifyNone(t)

	bus := events.NewMemoryEventBus()
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := bus.Subscribe(ctx, "notifications:u1")
	require.NoError(t, err)

	cancel()
	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber not closed after cancel")
	}
}

func TestMemoryEventBus_CloseEndsSubscriptions(t *testing.T) {
	defer goleak.VerifyNone(t)

	bus := events.NewMemoryEventBus()
	ch, err := bus.Subscribe(context.Background(), "notifications:u1")
	require.NoError(t, err)

	require.NoError(t, bus.Close())
	_, ok := <-ch
	assert.False(t, ok)

	_, err = bus.Subscribe(context.Background(), "notifications:u1")
	assert.ErrorIs(t, err, events.ErrBusClosed)
	assert.NoError(t, bus.Close(), "closing twice is harmless")
}
