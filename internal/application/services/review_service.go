package services

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/zatekoja/placesreview/internal/domain/entities"
	"github.com/zatekoja/placesreview/internal/domain/messages"
	"github.com/zatekoja/placesreview/internal/domain/repositories"
	"github.com/zatekoja/placesreview/pkg/config"
	apperrors "github.com/zatekoja/placesreview/pkg/errors"
)

// ReviewService handles review submission and the statistics derived from a
// place's reviews
type ReviewService struct {
	reviews  *Collection[entities.Review, *entities.Review]
	places   *Collection[entities.Place, *entities.Place]
	users    *Collection[entities.User, *entities.User]
	likes    repositories.LikedPlaceRepository
	notifier *NotificationService
	loyalty  *LoyaltyService
	rewards  config.RewardConfig
	locks    *keyedMutex
	now      Clock
}

// NewReviewService creates a new review service
func NewReviewService(deps Deps, notifier *NotificationService, loyalty *LoyaltyService) *ReviewService {
	deps = deps.withDefaults()
	return &ReviewService{
		reviews:  NewCollection[entities.Review](deps.Store, deps.Clock),
		places:   NewCollection[entities.Place](deps.Store, deps.Clock),
		users:    NewCollection[entities.User](deps.Store, deps.Clock),
		likes:    deps.Store,
		notifier: notifier,
		loyalty:  loyalty,
		rewards:  deps.Rewards,
		locks:    deps.locks,
		now:      deps.Clock,
	}
}

// ReviewInput is what an author submits
type ReviewInput struct {
	PlaceID string                  `json:"placeId"`
	Rating  int                     `json:"rating"`
	Comment string                  `json:"comment"`
	Details *entities.ReviewDetails `json:"reviewDetails,omitempty"`
}

// Submit creates a review by actorID, notifies the owner and the users who
// liked the place, and awards review points
func (s *ReviewService) Submit(ctx context.Context, actorID string, in ReviewInput) (*entities.Review, error) {
	if in.Rating < entities.MinRating || in.Rating > entities.MaxRating {
		return nil, apperrors.NewValidationError("rating must be between 1 and 5")
	}
	author, err := s.users.Get(ctx, actorID)
	if err != nil {
		return nil, err
	}
	place, err := s.places.Get(ctx, in.PlaceID)
	if err != nil {
		return nil, err
	}

	review, err := s.reviews.Create(ctx, &entities.Review{
		PlaceID: place.ID,
		UserID:  author.ID,
		Rating:  in.Rating,
		Comment: strings.TrimSpace(in.Comment),
		Details: in.Details,
		Likes:   []string{},
	})
	if err != nil {
		return nil, err
	}

	vars := messages.Vars{
		"author": author.Name,
		"place":  place.Name,
		"rating": strconv.Itoa(review.Rating),
	}
	corr := entities.Correlation{
		PlaceID:   place.ID,
		ReviewID:  review.ID,
		ActionURL: "/places/" + place.ID + "#review-" + review.ID,
	}
	if !place.IsOwnedBy(author.ID) {
		s.notifier.notifyBestEffort(ctx, place.OwnerID, entities.NotificationReview, vars, corr)
	}
	s.notifyLikers(ctx, place, author.ID, entities.NotificationNewReviewOnLikedPlace, vars, corr)

	points := s.rewards.Review
	if review.Details.Answered() {
		points += s.rewards.ReviewDetails
	}
	s.reward(ctx, author.ID, points, "review:"+place.Name)
	return review, nil
}

// notifyLikers notifies every user who liked the place except the actor and the owner.
func (s *ReviewService) notifyLikers(ctx context.Context, place *entities.Place, actorID string, typ entities.NotificationType, vars messages.Vars, corr entities.Correlation) {
	notifyPlaceLikers(ctx, s.likes, s.notifier, place, actorID, typ, vars, corr)
}

func (s *ReviewService) reward(ctx context.Context, userID string, points int, description string) {
	rewardBestEffort(ctx, s.loyalty, userID, points, description)
}

// Get retrieves a review by ID
func (s *ReviewService) Get(ctx context.Context, id string) (*entities.Review, error) {
	return s.reviews.Get(ctx, id)
}

// ListByPlace returns the place's reviews, newest first
func (s *ReviewService) ListByPlace(ctx context.Context, placeID string) ([]*entities.Review, error) {
	reviews, err := s.reviews.ListBy(ctx, "placeId", placeID, nil)
	if err != nil {
		return nil, err
	}
	return newestFirst(reviews), nil
}

// ListByUser returns the reviews written by a user, newest first
func (s *ReviewService) ListByUser(ctx context.Context, userID string) ([]*entities.Review, error) {
	reviews, err := s.reviews.ListBy(ctx, "userId", userID, nil)
	if err != nil {
		return nil, err
	}
	return newestFirst(reviews), nil
}

// AverageRating is the mean rating of the place, or 0 without reviews
func (s *ReviewService) AverageRating(ctx context.Context, placeID string) (float64, error) {
	reviews, err := s.reviews.ListBy(ctx, "placeId", placeID, nil)
	if err != nil {
		return 0, err
	}
	return entities.AverageRating(reviews), nil
}

// PlaceStats summarizes a place's reviews
type PlaceStats struct {
	Count         int         `json:"count"`
	Average       float64     `json:"average"`
	DisplayRating float64     `json:"displayRating"`
	Distribution  map[int]int `json:"distribution"`
	Likes         int         `json:"likes"`
	Reports       int         `json:"reports"`
	Responded     int         `json:"responded"`
}

// Stats computes the review statistics of a place
func (s *ReviewService) Stats(ctx context.Context, placeID string) (*PlaceStats, error) {
	reviews, err := s.reviews.ListBy(ctx, "placeId", placeID, nil)
	if err != nil {
		return nil, err
	}
	return statsOf(reviews), nil
}

func statsOf(reviews []*entities.Review) *PlaceStats {
	stats := &PlaceStats{Distribution: make(map[int]int, entities.MaxRating)}
	for r := entities.MinRating; r <= entities.MaxRating; r++ {
		stats.Distribution[r] = 0
	}
	for _, r := range reviews {
		stats.Count++
		stats.Distribution[r.Rating]++
		stats.Likes += len(r.Likes)
		stats.Reports += r.Reports
		if r.OwnerResponse != nil {
			stats.Responded++
		}
	}
	stats.Average = entities.AverageRating(reviews)
	stats.DisplayRating = entities.RoundRating(stats.Average)
	return stats
}

// ToggleLike adds userID to the review's likes or removes it, and reports
// whether the user now likes the review. A new like notifies the author.
func (s *ReviewService) ToggleLike(ctx context.Context, reviewID, userID string) (*entities.Review, bool, error) {
	liker, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, false, err
	}

	unlock := s.locks.Lock("review:" + reviewID)
	defer unlock()

	var liked bool
	review, err := s.reviews.Update(ctx, reviewID, func(r *entities.Review) error {
		liked = r.ToggleLike(userID)
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	if liked && review.UserID != userID {
		s.notifier.notifyBestEffort(ctx, review.UserID, entities.NotificationLike, messages.Vars{
			"author": liker.Name,
		}, entities.Correlation{
			PlaceID:   review.PlaceID,
			ReviewID:  review.ID,
			ActionURL: "/places/" + review.PlaceID + "#review-" + review.ID,
		})
	}
	return review, liked, nil
}

// Report increments the review's report counter. Repeated reports by the
// same actor all count. The place owner is notified.
func (s *ReviewService) Report(ctx context.Context, reviewID, actorID string) (*entities.Review, error) {
	unlock := s.locks.Lock("review:" + reviewID)
	defer unlock()

	review, err := s.reviews.Update(ctx, reviewID, func(r *entities.Review) error {
		r.Reports++
		return nil
	})
	if err != nil {
		return nil, err
	}

	if place, err := s.places.Get(ctx, review.PlaceID); err == nil && !place.IsOwnedBy(actorID) {
		s.notifier.notifyBestEffort(ctx, place.OwnerID, entities.NotificationReport, messages.Vars{
			"place":   place.Name,
			"reports": strconv.Itoa(review.Reports),
		}, entities.Correlation{PlaceID: place.ID, ReviewID: review.ID})
	}
	return review, nil
}

// Respond sets the owner's public reply. Only the place owner may respond.
func (s *ReviewService) Respond(ctx context.Context, actorID, reviewID, text string) (*entities.Review, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.NewValidationError("response text is required")
	}
	review, err := s.reviews.Get(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	place, err := s.places.Get(ctx, review.PlaceID)
	if err != nil {
		return nil, err
	}
	if !place.IsOwnedBy(actorID) {
		return nil, apperrors.NewForbiddenError("only the place owner can respond to reviews")
	}

	unlock := s.locks.Lock("review:" + reviewID)
	defer unlock()

	review, err = s.reviews.Update(ctx, reviewID, func(r *entities.Review) error {
		r.OwnerResponse = &entities.OwnerResponse{Text: text, RespondedAt: s.now().UTC().Truncate(time.Second)}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if review.UserID != actorID {
		s.notifier.notifyBestEffort(ctx, review.UserID, entities.NotificationResponse, messages.Vars{
			"place": place.Name,
			"text":  text,
		}, entities.Correlation{
			PlaceID:   place.ID,
			ReviewID:  review.ID,
			ActionURL: "/places/" + place.ID + "#review-" + review.ID,
		})
	}
	return review, nil
}
