package providers

import (
	"context"

	"github.com/zatekoja/placesreview/internal/domain/entities"
)

// EventBus fans notification events out to live subscribers
type EventBus interface {
	// Publish publishes an event to all subscribers of the channel
	Publish(ctx context.Context, channel string, event *entities.NotificationEvent) error

	// Subscribe subscribes to events on a channel. The returned channel is
	// closed when ctx is done or the bus is closed.
	Subscribe(ctx context.Context, channel string) (<-chan *entities.NotificationEvent, error)

	// Unsubscribe drops every subscriber of a channel
	Unsubscribe(ctx context.Context, channel string) error

	// Close closes the event bus and all subscriptions
	Close() error
}

const (
	// EventChannelNotificationsPrefix is the prefix for per-recipient channels
	EventChannelNotificationsPrefix = "notifications:"

	// EventChannelAllNotifications receives every notification event
	EventChannelAllNotifications = "notifications:all"
)

// GetNotificationChannel returns the channel name for one recipient
func GetNotificationChannel(userID string) string {
	return EventChannelNotificationsPrefix + userID
}
