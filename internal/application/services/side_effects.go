package services

import (
	"context"

	"github.com/zatekoja/placesreview/internal/domain/entities"
	"github.com/zatekoja/placesreview/internal/domain/messages"
	"github.com/zatekoja/placesreview/internal/domain/repositories"
	"github.com/zatekoja/placesreview/internal/infrastructure/observability"
)

// notifyPlaceLikers notifies every user who liked place, skipping the actor
// and the owner (who gets a dedicated notification).
func notifyPlaceLikers(ctx context.Context, likes repositories.LikedPlaceRepository, notifier *NotificationService, place *entities.Place, actorID string, typ entities.NotificationType, vars messages.Vars, corr entities.Correlation) {
	likers, err := likes.PlaceLikers(ctx, place.ID)
	if err != nil {
		observability.LoggerFromContext(ctx).Error().Err(err).Str("place_id", place.ID).Msg("failed to list place likers")
		return
	}
	for _, userID := range likers {
		if userID == actorID || place.IsOwnedBy(userID) {
			continue
		}
		notifier.notifyBestEffort(ctx, userID, typ, vars, corr)
	}
}

// rewardBestEffort awards points for a completed command. A failed award is
// logged; the command already succeeded.
func rewardBestEffort(ctx context.Context, loyalty *LoyaltyService, userID string, points int, description string) {
	if loyalty == nil || points <= 0 {
		return
	}
	if _, err := loyalty.Award(ctx, userID, points, description); err != nil {
		observability.LoggerFromContext(ctx).Error().Err(err).
			Str("user_id", userID).
			Int("points", points).
			Msg("failed to award points")
	}
}
