package services

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/placesreview/internal/domain/entities"
	"github.com/zatekoja/placesreview/internal/domain/messages"
	"github.com/zatekoja/placesreview/internal/domain/providers"
	"github.com/zatekoja/placesreview/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/placesreview/pkg/errors"
)

// NotificationService owns the notification lifecycle and the personal /
// place-scoped partition of a user's feed
type NotificationService struct {
	notifications *Collection[entities.Notification, *entities.Notification]
	users         *Collection[entities.User, *entities.User]
	bus           providers.EventBus
	catalog       *messages.Catalog
	locks         *keyedMutex
	metrics       *observability.Metrics
}

// NewNotificationService creates a new notification service
func NewNotificationService(deps Deps) *NotificationService {
	deps = deps.withDefaults()
	return &NotificationService{
		notifications: NewCollection[entities.Notification](deps.Store, deps.Clock),
		users:         NewCollection[entities.User](deps.Store, deps.Clock),
		bus:           deps.Bus,
		catalog:       deps.Catalog,
		locks:         deps.locks,
		metrics:       deps.Metrics,
	}
}

// Notify creates an unread notification for recipientID. An unknown
// recipient drops the notification and returns (nil, nil).
func (s *NotificationService) Notify(ctx context.Context, recipientID string, typ entities.NotificationType, title, message string, corr entities.Correlation) (*entities.Notification, error) {
	known, err := s.users.Exists(ctx, recipientID)
	if err != nil {
		return nil, err
	}
	if !known {
		observability.LoggerFromContext(ctx).Warn().
			Str("recipient_id", recipientID).
			Str("type", string(typ)).
			Msg("notification dropped: unknown recipient")
		observability.RecordNotification(ctx, s.metrics, string(typ), true)
		return nil, nil
	}

	n, err := s.notifications.Create(ctx, &entities.Notification{
		Correlation: corr,
		UserID:      recipientID,
		Type:        typ,
		Title:       title,
		Message:     message,
		Read:        false,
	})
	if err != nil {
		return nil, err
	}

	observability.RecordNotification(ctx, s.metrics, string(typ), false)
	s.publish(ctx, recipientID, entities.NewNotificationEvent(recipientID, entities.NotificationEventCreated, n))
	return n, nil
}

// NotifyTemplate renders the catalog copy of typ with vars and notifies.
func (s *NotificationService) NotifyTemplate(ctx context.Context, recipientID string, typ entities.NotificationType, vars messages.Vars, corr entities.Correlation) (*entities.Notification, error) {
	title, message := s.catalog.Notification(typ, vars)
	return s.Notify(ctx, recipientID, typ, title, message, corr)
}

// notifyBestEffort is used for side effects of commands: delivery failures
// are logged and never fail the command.
func (s *NotificationService) notifyBestEffort(ctx context.Context, recipientID string, typ entities.NotificationType, vars messages.Vars, corr entities.Correlation) {
	if _, err := s.NotifyTemplate(ctx, recipientID, typ, vars, corr); err != nil {
		observability.LoggerFromContext(ctx).Error().Err(err).
			Str("recipient_id", recipientID).
			Str("type", string(typ)).
			Msg("failed to deliver notification")
	}
}

func (s *NotificationService) publish(ctx context.Context, userID string, event *entities.NotificationEvent) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, providers.GetNotificationChannel(userID), event); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("failed to publish notification event")
	}
}

// Get returns one notification
func (s *NotificationService) Get(ctx context.Context, id string) (*entities.Notification, error) {
	return s.notifications.Get(ctx, id)
}

// GetAll returns every notification of the user, newest first
func (s *NotificationService) GetAll(ctx context.Context, userID string) ([]*entities.Notification, error) {
	return s.inScope(ctx, userID, "")
}

// GetPersonal returns the personal side of the partition, newest first
func (s *NotificationService) GetPersonal(ctx context.Context, userID string) ([]*entities.Notification, error) {
	return s.inScope(ctx, userID, entities.ScopePersonal)
}

// GetPlaceScoped returns the place-scoped side of the partition, newest first
func (s *NotificationService) GetPlaceScoped(ctx context.Context, userID string) ([]*entities.Notification, error) {
	return s.inScope(ctx, userID, entities.ScopePlace)
}

func (s *NotificationService) inScope(ctx context.Context, userID string, scope entities.NotificationScope) ([]*entities.Notification, error) {
	list, err := s.notifications.ListBy(ctx, "userId", userID, func(n *entities.Notification) bool {
		return scope == "" || n.Scope() == scope
	})
	if err != nil {
		return nil, err
	}
	return newestFirst(list), nil
}

// UnreadCounts holds the three badge counters of a user
type UnreadCounts struct {
	All         int `json:"all"`
	Personal    int `json:"personal"`
	PlaceScoped int `json:"placeScoped"`
}

// Unread counts unread notifications in one pass
func (s *NotificationService) Unread(ctx context.Context, userID string) (UnreadCounts, error) {
	var counts UnreadCounts
	list, err := s.notifications.ListBy(ctx, "userId", userID, func(n *entities.Notification) bool {
		return !n.Read
	})
	if err != nil {
		return counts, err
	}
	for _, n := range list {
		counts.All++
		if n.Scope() == entities.ScopePersonal {
			counts.Personal++
		} else {
			counts.PlaceScoped++
		}
	}
	return counts, nil
}

// UnreadCount counts every unread notification of the user
func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	counts, err := s.Unread(ctx, userID)
	return counts.All, err
}

// UnreadPersonalCount counts unread personal notifications
func (s *NotificationService) UnreadPersonalCount(ctx context.Context, userID string) (int, error) {
	counts, err := s.Unread(ctx, userID)
	return counts.Personal, err
}

// UnreadPlaceScopedCount counts unread place-scoped notifications
func (s *NotificationService) UnreadPlaceScopedCount(ctx context.Context, userID string) (int, error) {
	counts, err := s.Unread(ctx, userID)
	return counts.PlaceScoped, err
}

// MarkRead sets read=true. Marking an already-read notification is a no-op.
func (s *NotificationService) MarkRead(ctx context.Context, id string) (*entities.Notification, error) {
	unlock := s.locks.Lock("notification:" + id)
	defer unlock()

	changed := false
	n, err := s.notifications.Update(ctx, id, func(n *entities.Notification) error {
		if n.Read {
			return errUnchanged
		}
		n.Read = true
		changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if changed {
		event := entities.NewNotificationEvent(n.UserID, entities.NotificationEventRead, n)
		event.Scope = n.Scope()
		event.Affected = 1
		s.publish(ctx, n.UserID, event)
	}
	return n, nil
}

// MarkReadAs marks a notification read on behalf of actorID, who must be its recipient
func (s *NotificationService) MarkReadAs(ctx context.Context, actorID, id string) (*entities.Notification, error) {
	n, err := s.notifications.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if n.UserID != actorID {
		return nil, apperrors.NewForbiddenError("notification belongs to another user")
	}
	return s.MarkRead(ctx, id)
}

// MarkAllRead marks every currently-unread notification of the user read and
// returns how many changed. Notifications created afterwards stay unread.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int, error) {
	return s.markAll(ctx, userID, "")
}

// MarkAllPersonalRead marks the currently-unread personal notifications read
func (s *NotificationService) MarkAllPersonalRead(ctx context.Context, userID string) (int, error) {
	return s.markAll(ctx, userID, entities.ScopePersonal)
}

// MarkAllPlaceScopedRead marks the currently-unread place-scoped notifications read
func (s *NotificationService) MarkAllPlaceScopedRead(ctx context.Context, userID string) (int, error) {
	return s.markAll(ctx, userID, entities.ScopePlace)
}

func (s *NotificationService) markAll(ctx context.Context, userID string, scope entities.NotificationScope) (int, error) {
	unlock := s.locks.Lock("notifications:" + userID)
	defer unlock()

	updated, err := s.notifications.UpdateWhere(ctx, "userId", userID, func(n *entities.Notification) bool {
		if n.Read || (scope != "" && n.Scope() != scope) {
			return false
		}
		n.Read = true
		return true
	})
	if err != nil {
		return 0, err
	}
	if len(updated) > 0 {
		event := entities.NewNotificationEvent(userID, entities.NotificationEventAllRead, nil)
		event.Scope = scope
		event.Affected = len(updated)
		s.publish(ctx, userID, event)
	}
	return len(updated), nil
}

// Subscribe streams the user's notification events until ctx ends
func (s *NotificationService) Subscribe(ctx context.Context, userID string) (<-chan *entities.NotificationEvent, error) {
	if s.bus == nil {
		return nil, apperrors.NewInternalError("notification stream unavailable", nil)
	}
	if _, err := s.users.Get(ctx, userID); err != nil {
		return nil, err
	}
	return s.bus.Subscribe(ctx, providers.GetNotificationChannel(userID))
}
