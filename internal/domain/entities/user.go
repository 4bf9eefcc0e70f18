package entities

import (
	"strings"

	apperrors "github.com/zatekoja/placesreview/pkg/errors"
	"github.com/zatekoja/placesreview/pkg/geo"
)

// User represents an actor of the platform
type User struct {
	Meta
	Name          string     `json:"name"`
	Email         string     `json:"email,omitempty"`
	Phone         string     `json:"phone,omitempty"`
	Avatar        string     `json:"avatar,omitempty"`
	LoyaltyPoints int        `json:"loyaltyPoints"`
	LoyaltyBadge  BadgeTier  `json:"loyaltyBadge"`
	VerifiedBadge bool       `json:"verifiedBadge,omitempty"`
	Location      *geo.Point `json:"location,omitempty"`
}

// Kind implements Entity
func (u *User) Kind() Kind { return KindUser }

// Validate implements Entity
func (u *User) Validate() error {
	if strings.TrimSpace(u.Name) == "" {
		return apperrors.NewValidationError("user name is required")
	}
	if u.LoyaltyPoints < 0 {
		return apperrors.NewValidationError("loyalty points cannot be negative")
	}
	return nil
}

// DisplayBadge is the badge shown next to the user's name. The expert flag
// wins over the points-derived tier.
func (u *User) DisplayBadge() BadgeTier {
	if u.VerifiedBadge {
		return BadgeExpert
	}
	return BadgeForPoints(u.LoyaltyPoints)
}
