package services

import (
	"context"
	"encoding/json"

	"github.com/zatekoja/placesreview/internal/domain/entities"
	apperrors "github.com/zatekoja/placesreview/pkg/errors"
)

// UserService handles business logic for users
type UserService struct {
	users *Collection[entities.User, *entities.User]
}

// NewUserService creates a new user service
func NewUserService(deps Deps) *UserService {
	deps = deps.withDefaults()
	return &UserService{users: NewCollection[entities.User](deps.Store, deps.Clock)}
}

// Create registers a user with an empty points balance
func (s *UserService) Create(ctx context.Context, user *entities.User) (*entities.User, error) {
	user.LoyaltyPoints = 0
	user.LoyaltyBadge = entities.BadgeBronze
	return s.users.Create(ctx, user)
}

// Get retrieves a user by ID
func (s *UserService) Get(ctx context.Context, id string) (*entities.User, error) {
	return s.users.Get(ctx, id)
}

// List returns every user in creation order
func (s *UserService) List(ctx context.Context) ([]*entities.User, error) {
	return s.users.List(ctx, nil)
}

// UpdateProfile patches the actor's own profile. Points and badges are not patchable.
func (s *UserService) UpdateProfile(ctx context.Context, actorID, id string, patch json.RawMessage) (*entities.User, error) {
	if actorID != id {
		return nil, apperrors.NewForbiddenError("users can only edit their own profile")
	}
	return s.users.Patch(ctx, id, patch, "loyaltyPoints", "loyaltyBadge", "verifiedBadge")
}

// SetExpert grants or revokes the expert reviewer flag
func (s *UserService) SetExpert(ctx context.Context, id string, expert bool) (*entities.User, error) {
	return s.users.Update(ctx, id, func(u *entities.User) error {
		if u.VerifiedBadge == expert {
			return errUnchanged
		}
		u.VerifiedBadge = expert
		return nil
	})
}
