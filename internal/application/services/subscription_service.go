package services

import (
	"context"
	"time"

	"github.com/zatekoja/placesreview/internal/domain/entities"
	apperrors "github.com/zatekoja/placesreview/pkg/errors"
)

// SubscriptionService handles feature-gating subscriptions
type SubscriptionService struct {
	subscriptions *Collection[entities.Subscription, *entities.Subscription]
	users         *Collection[entities.User, *entities.User]
	now           Clock
}

// NewSubscriptionService creates a new subscription service
func NewSubscriptionService(deps Deps) *SubscriptionService {
	deps = deps.withDefaults()
	return &SubscriptionService{
		subscriptions: NewCollection[entities.Subscription](deps.Store, deps.Clock),
		users:         NewCollection[entities.User](deps.Store, deps.Clock),
		now:           deps.Clock,
	}
}

// SubscriptionInput describes a new subscription
type SubscriptionInput struct {
	Plan     entities.SubscriptionPlan `json:"plan"`
	Features []string                  `json:"features"`
	EndsAt   *time.Time                `json:"endsAt,omitempty"`
}

// Subscribe starts an active subscription for userID now
func (s *SubscriptionService) Subscribe(ctx context.Context, userID string, in SubscriptionInput) (*entities.Subscription, error) {
	if _, err := s.users.Get(ctx, userID); err != nil {
		return nil, err
	}
	features := in.Features
	if features == nil {
		features = []string{}
	}
	return s.subscriptions.Create(ctx, &entities.Subscription{
		UserID:   userID,
		Plan:     in.Plan,
		Features: features,
		Status:   entities.SubscriptionActive,
		StartsAt: s.now().UTC(),
		EndsAt:   in.EndsAt,
	})
}

// Cancel stops a subscription. Only its owner may cancel it.
func (s *SubscriptionService) Cancel(ctx context.Context, actorID, id string) (*entities.Subscription, error) {
	return s.subscriptions.Update(ctx, id, func(sub *entities.Subscription) error {
		if sub.UserID != actorID {
			return apperrors.NewForbiddenError("only the subscriber can cancel")
		}
		if sub.Status != entities.SubscriptionActive {
			return errUnchanged
		}
		sub.Status = entities.SubscriptionCancelled
		return nil
	})
}

// ListByUser returns a user's subscriptions, newest first
func (s *SubscriptionService) ListByUser(ctx context.Context, userID string) ([]*entities.Subscription, error) {
	list, err := s.subscriptions.ListBy(ctx, "userId", userID, nil)
	if err != nil {
		return nil, err
	}
	return newestFirst(list), nil
}

// HasFeature reports whether an active, unexpired subscription of userID
// lists feature
func (s *SubscriptionService) HasFeature(ctx context.Context, userID, feature string) (bool, error) {
	now := s.now()
	list, err := s.subscriptions.ListBy(ctx, "userId", userID, func(sub *entities.Subscription) bool {
		return sub.Grants(feature, now)
	})
	if err != nil {
		return false, err
	}
	return len(list) > 0, nil
}
