package entities

import (
	"time"

	"github.com/google/uuid"
)

// NotificationEventType represents what happened to a recipient's feed
type NotificationEventType string

const (
	NotificationEventCreated NotificationEventType = "notification_created"
	NotificationEventRead    NotificationEventType = "notification_read"
	NotificationEventAllRead NotificationEventType = "notifications_all_read"
)

// NotificationEvent is pushed to observers of a recipient's feed. Observers
// re-query counts on receipt, so the event only carries what changed.
type NotificationEvent struct {
	ID           string                `json:"id"`
	UserID       string                `json:"userId"`
	EventType    NotificationEventType `json:"eventType"`
	Timestamp    time.Time             `json:"timestamp"`
	Notification *Notification         `json:"notification,omitempty"`
	Scope        NotificationScope     `json:"scope,omitempty"`
	Affected     int                   `json:"affected,omitempty"`
}

// NewNotificationEvent creates a new notification event
func NewNotificationEvent(userID string, eventType NotificationEventType, n *Notification) *NotificationEvent {
	return &NotificationEvent{
		ID:           uuid.NewString(),
		UserID:       userID,
		EventType:    eventType,
		Timestamp:    time.Now().UTC(),
		Notification: n,
	}
}
