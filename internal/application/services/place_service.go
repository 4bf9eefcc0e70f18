package services

import (
	"context"
	"encoding/json"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/zatekoja/placesreview/internal/domain/entities"
	"github.com/zatekoja/placesreview/internal/domain/repositories"
	"github.com/zatekoja/placesreview/internal/domain/status"
	"github.com/zatekoja/placesreview/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/placesreview/pkg/errors"
	"github.com/zatekoja/placesreview/pkg/geo"
)

// placeProtectedFields cannot be changed through UpdatePlace.
var placeProtectedFields = []string{"ownerId", "verified", "isClaimed"}

// PlaceService handles places, their opening status and the likedPlaces relation
type PlaceService struct {
	places  *Collection[entities.Place, *entities.Place]
	users   *Collection[entities.User, *entities.User]
	likes   repositories.LikedPlaceRepository
	reviews *ReviewService
	status  *status.Engine
	now     Clock
}

// NewPlaceService creates a new place service
func NewPlaceService(deps Deps, reviews *ReviewService) *PlaceService {
	deps = deps.withDefaults()
	return &PlaceService{
		places:  NewCollection[entities.Place](deps.Store, deps.Clock),
		users:   NewCollection[entities.User](deps.Store, deps.Clock),
		likes:   deps.Store,
		reviews: reviews,
		status:  deps.Status,
		now:     deps.Clock,
	}
}

// Add creates a place owned and claimed by actorID
func (s *PlaceService) Add(ctx context.Context, actorID string, place *entities.Place) (*entities.Place, error) {
	if _, err := s.users.Get(ctx, actorID); err != nil {
		return nil, err
	}
	if err := s.status.ValidateHours(place.Hours); err != nil {
		return nil, err
	}
	place.OwnerID = actorID
	place.IsClaimed = true
	place.Verified = false

	created, err := s.places.Create(ctx, place)
	if err != nil {
		return nil, err
	}
	observability.LoggerFromContext(ctx).Info().
		Str("place_id", created.ID).
		Str("owner_id", actorID).
		Msg("place added")
	return created, nil
}

// Get retrieves a place by ID
func (s *PlaceService) Get(ctx context.Context, id string) (*entities.Place, error) {
	return s.places.Get(ctx, id)
}

// List returns every place, optionally restricted to one category
func (s *PlaceService) List(ctx context.Context, category string) ([]*entities.Place, error) {
	return s.places.List(ctx, func(p *entities.Place) bool {
		return category == "" || p.Category == category
	})
}

// ListByOwner returns the places owned by a user
func (s *PlaceService) ListByOwner(ctx context.Context, ownerID string) ([]*entities.Place, error) {
	return s.places.ListBy(ctx, "ownerId", ownerID, nil)
}

// Update patches a place. Only the owner may update it.
func (s *PlaceService) Update(ctx context.Context, actorID, id string, patch json.RawMessage) (*entities.Place, error) {
	place, err := s.places.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !place.IsOwnedBy(actorID) {
		return nil, apperrors.NewForbiddenError("only the place owner can update it")
	}
	var fields struct {
		Hours entities.WeeklyHours `json:"hours"`
	}
	if err := json.Unmarshal(patch, &fields); err != nil {
		return nil, apperrors.NewValidationError("patch must be a JSON object")
	}
	if err := s.status.ValidateHours(fields.Hours); err != nil {
		return nil, err
	}
	return s.places.Patch(ctx, id, patch, placeProtectedFields...)
}

// SetVerified flags a place as verified by an operator
func (s *PlaceService) SetVerified(ctx context.Context, id string, verified bool) (*entities.Place, error) {
	return s.places.Update(ctx, id, func(p *entities.Place) error {
		if p.Verified == verified {
			return errUnchanged
		}
		p.Verified = verified
		return nil
	})
}

// Like records that userID likes placeID and reports whether it is new
func (s *PlaceService) Like(ctx context.Context, userID, placeID string) (bool, error) {
	if err := s.checkPair(ctx, userID, placeID); err != nil {
		return false, err
	}
	return s.likes.Like(ctx, userID, placeID)
}

// Unlike removes the like and reports whether it existed
func (s *PlaceService) Unlike(ctx context.Context, userID, placeID string) (bool, error) {
	if err := s.checkPair(ctx, userID, placeID); err != nil {
		return false, err
	}
	return s.likes.Unlike(ctx, userID, placeID)
}

// IsLiked reports whether userID likes placeID
func (s *PlaceService) IsLiked(ctx context.Context, userID, placeID string) (bool, error) {
	return s.likes.IsLiked(ctx, userID, placeID)
}

// LikedPlaces returns the places a user liked, oldest like first. Places
// removed since are skipped.
func (s *PlaceService) LikedPlaces(ctx context.Context, userID string) ([]*entities.Place, error) {
	ids, err := s.likes.LikedPlaces(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]*entities.Place, 0, len(ids))
	for _, id := range ids {
		p, err := s.places.Get(ctx, id)
		if apperrors.IsNotFound(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *PlaceService) checkPair(ctx context.Context, userID, placeID string) error {
	if _, err := s.users.Get(ctx, userID); err != nil {
		return err
	}
	_, err := s.places.Get(ctx, placeID)
	return err
}

// NearbyPlace is a place with its distance from the search origin
type NearbyPlace struct {
	Place      *entities.Place `json:"place"`
	DistanceKm float64         `json:"distanceKm"`
}

// Nearby lists places with a location, nearest first. A radius of zero or
// less disables the cutoff.
func (s *PlaceService) Nearby(ctx context.Context, origin geo.Point, radiusKm float64) ([]NearbyPlace, error) {
	located, err := s.places.List(ctx, func(p *entities.Place) bool {
		return p.Location != nil
	})
	if err != nil {
		return nil, err
	}
	points := make([]geo.Point, len(located))
	for i, p := range located {
		points[i] = *p.Location
	}
	ranked := geo.RankByDistance(origin, points, radiusKm)
	out := make([]NearbyPlace, len(ranked))
	for i, r := range ranked {
		out[i] = NearbyPlace{Place: located[r.Index], DistanceKm: r.DistanceKm}
	}
	return out, nil
}

// Status evaluates the opening status of a place at the current instant
func (s *PlaceService) Status(ctx context.Context, placeID string) (status.Status, error) {
	place, err := s.places.Get(ctx, placeID)
	if err != nil {
		return status.Status{}, err
	}
	return s.status.Evaluate(place.Hours, s.now()), nil
}

// PlaceDetails is the aggregated view of one place
type PlaceDetails struct {
	Place      *entities.Place `json:"place"`
	Status     status.Status   `json:"status"`
	Stats      *PlaceStats     `json:"stats"`
	Liked      bool            `json:"liked"`
	DistanceKm *float64        `json:"distanceKm,omitempty"`
}

// Details assembles the place with its status at the given instant (now when
// zero), its review stats, whether viewerID liked it and, when origin is set,
// its distance.
func (s *PlaceService) Details(ctx context.Context, placeID, viewerID string, at time.Time, origin *geo.Point) (*PlaceDetails, error) {
	place, err := s.places.Get(ctx, placeID)
	if err != nil {
		return nil, err
	}
	if at.IsZero() {
		at = s.now()
	}

	details := &PlaceDetails{
		Place:  place,
		Status: s.status.Evaluate(place.Hours, at),
	}
	if origin != nil && place.Location != nil {
		d := geo.Distance(*origin, *place.Location)
		details.DistanceKm = &d
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		stats, err := s.reviews.Stats(gctx, placeID)
		details.Stats = stats
		return err
	})
	if viewerID != "" {
		g.Go(func() error {
			liked, err := s.likes.IsLiked(gctx, viewerID, placeID)
			details.Liked = liked
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return details, nil
}
