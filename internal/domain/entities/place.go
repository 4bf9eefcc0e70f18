package entities

import (
	"fmt"
	"regexp"
	"strings"

	apperrors "github.com/zatekoja/placesreview/pkg/errors"
	"github.com/zatekoja/placesreview/pkg/geo"
)

// Place represents a reviewable venue owned by exactly one user
type Place struct {
	Meta
	OwnerID     string      `json:"ownerId"`
	Name        string      `json:"name"`
	Category    string      `json:"category,omitempty"`
	PlaceType   string      `json:"placeType,omitempty"`
	Description string      `json:"description,omitempty"`
	Address     string      `json:"address,omitempty"`
	Phone       string      `json:"phone,omitempty"`
	Images      []string    `json:"images,omitempty"`
	Location    *geo.Point  `json:"location,omitempty"`
	Hours       WeeklyHours `json:"hours,omitempty"`
	IsClaimed   bool        `json:"isClaimed"`
	Verified    bool        `json:"verified"`
}

// DayHours is the declared schedule of one weekday.
type DayHours struct {
	Open   string `json:"open"`
	Close  string `json:"close"`
	Closed bool   `json:"closed"`
}

// WeeklyHours is keyed by localized day name.
type WeeklyHours map[string]DayHours

var clockPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// ValidClock reports whether s is a 24-hour HH:MM time.
func ValidClock(s string) bool {
	return clockPattern.MatchString(s)
}

// Validate rejects any open day whose open/close is not HH:MM.
func (h WeeklyHours) Validate() error {
	for day, entry := range h {
		if strings.TrimSpace(day) == "" {
			return apperrors.NewValidationError("hours contain an empty day name")
		}
		if entry.Closed {
			continue
		}
		if !ValidClock(entry.Open) {
			return apperrors.NewValidationError(fmt.Sprintf("invalid opening time %q for %s", entry.Open, day))
		}
		if !ValidClock(entry.Close) {
			return apperrors.NewValidationError(fmt.Sprintf("invalid closing time %q for %s", entry.Close, day))
		}
	}
	return nil
}

// Kind implements Entity
func (p *Place) Kind() Kind { return KindPlace }

// Validate implements Entity
func (p *Place) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return apperrors.NewValidationError("place name is required")
	}
	if p.OwnerID == "" {
		return apperrors.NewValidationError("place owner is required")
	}
	if p.Location != nil {
		if p.Location.Lat < -90 || p.Location.Lat > 90 || p.Location.Lng < -180 || p.Location.Lng > 180 {
			return apperrors.NewValidationError("place location is out of range")
		}
	}
	return p.Hours.Validate()
}

// IsOwnedBy reports whether userID owns the place.
func (p *Place) IsOwnedBy(userID string) bool {
	return userID != "" && p.OwnerID == userID
}
