package services

import (
	"context"
	"strings"
	"time"

	"github.com/zatekoja/placesreview/internal/domain/entities"
	"github.com/zatekoja/placesreview/internal/domain/messages"
	"github.com/zatekoja/placesreview/internal/domain/repositories"
	apperrors "github.com/zatekoja/placesreview/pkg/errors"
)

// AnnouncementService handles owner broadcasts
type AnnouncementService struct {
	announcements *Collection[entities.Announcement, *entities.Announcement]
	places        *Collection[entities.Place, *entities.Place]
	likes         repositories.LikedPlaceRepository
	notifier      *NotificationService
	now           Clock
}

// NewAnnouncementService creates a new announcement service
func NewAnnouncementService(deps Deps, notifier *NotificationService) *AnnouncementService {
	deps = deps.withDefaults()
	return &AnnouncementService{
		announcements: NewCollection[entities.Announcement](deps.Store, deps.Clock),
		places:        NewCollection[entities.Place](deps.Store, deps.Clock),
		likes:         deps.Store,
		notifier:      notifier,
		now:           deps.Clock,
	}
}

// AnnouncementInput is what an owner publishes
type AnnouncementInput struct {
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// Create publishes an announcement on a place owned by actorID and notifies
// the users who liked the place
func (s *AnnouncementService) Create(ctx context.Context, actorID, placeID string, in AnnouncementInput) (*entities.Announcement, error) {
	place, err := s.places.Get(ctx, placeID)
	if err != nil {
		return nil, err
	}
	if !place.IsOwnedBy(actorID) {
		return nil, apperrors.NewForbiddenError("only the place owner can publish announcements")
	}
	if in.ExpiresAt != nil && !in.ExpiresAt.After(s.now()) {
		return nil, apperrors.NewValidationError("announcement expiry must be in the future")
	}

	a, err := s.announcements.Create(ctx, &entities.Announcement{
		PlaceID:   place.ID,
		OwnerID:   actorID,
		Title:     strings.TrimSpace(in.Title),
		Body:      strings.TrimSpace(in.Body),
		ExpiresAt: in.ExpiresAt,
	})
	if err != nil {
		return nil, err
	}

	notifyPlaceLikers(ctx, s.likes, s.notifier, place, actorID, entities.NotificationAnnouncement,
		messages.Vars{"place": place.Name, "title": a.Title},
		entities.Correlation{PlaceID: place.ID, ActionURL: "/places/" + place.ID})
	return a, nil
}

// ListByPlace returns a place's announcements newest first. With activeOnly,
// expired ones are left out.
func (s *AnnouncementService) ListByPlace(ctx context.Context, placeID string, activeOnly bool) ([]*entities.Announcement, error) {
	now := s.now()
	list, err := s.announcements.ListBy(ctx, "placeId", placeID, func(a *entities.Announcement) bool {
		return !activeOnly || a.Active(now)
	})
	if err != nil {
		return nil, err
	}
	return newestFirst(list), nil
}
