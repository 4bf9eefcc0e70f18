package entities

import (
	"fmt"
	"math"
	"strings"
	"time"

	apperrors "github.com/zatekoja/placesreview/pkg/errors"
)

const (
	MinRating = 1
	MaxRating = 5
)

// Review represents a user review of a place
type Review struct {
	Meta
	PlaceID       string         `json:"placeId"`
	UserID        string         `json:"userId"`
	Rating        int            `json:"rating"`
	Comment       string         `json:"comment"`
	Details       *ReviewDetails `json:"reviewDetails,omitempty"`
	Likes         []string       `json:"likes"`
	Reports       int            `json:"reports"`
	OwnerResponse *OwnerResponse `json:"ownerResponse,omitempty"`
}

// OwnerResponse is the place owner's public reply to a review.
type OwnerResponse struct {
	Text        string    `json:"text"`
	RespondedAt time.Time `json:"respondedAt"`
}

// Kind implements Entity
func (r *Review) Kind() Kind { return KindReview }

// Validate implements Entity
func (r *Review) Validate() error {
	if r.PlaceID == "" {
		return apperrors.NewValidationError("review place is required")
	}
	if r.UserID == "" {
		return apperrors.NewValidationError("review author is required")
	}
	if r.Rating < MinRating || r.Rating > MaxRating {
		return apperrors.NewValidationError(fmt.Sprintf("rating must be between %d and %d", MinRating, MaxRating))
	}
	if r.Reports < 0 {
		return apperrors.NewValidationError("reports cannot be negative")
	}
	seen := make(map[string]struct{}, len(r.Likes))
	for _, id := range r.Likes {
		if _, dup := seen[id]; dup {
			return apperrors.NewValidationError("duplicate like from " + id)
		}
		seen[id] = struct{}{}
	}
	if r.OwnerResponse != nil && strings.TrimSpace(r.OwnerResponse.Text) == "" {
		return apperrors.NewValidationError("owner response cannot be empty")
	}
	if r.Details != nil {
		return r.Details.Validate()
	}
	return nil
}

// LikedBy reports whether userID is in the likes set.
func (r *Review) LikedBy(userID string) bool {
	for _, id := range r.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// ToggleLike removes userID from the likes set when present, appends it otherwise,
// and reports whether the user now likes the review.
func (r *Review) ToggleLike(userID string) bool {
	for i, id := range r.Likes {
		if id == userID {
			r.Likes = append(r.Likes[:i:i], r.Likes[i+1:]...)
			return false
		}
	}
	r.Likes = append(r.Likes, userID)
	return true
}

// AverageRating is the arithmetic mean of the ratings, or exactly 0 with no reviews.
func AverageRating(reviews []*Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	return float64(sum) / float64(len(reviews))
}

// RoundRating rounds an average to one decimal for display.
func RoundRating(avg float64) float64 {
	return math.Round(avg*10) / 10
}

// PriceRange facet
type PriceRange string

const (
	PriceBudget    PriceRange = "budget"
	PriceModerate  PriceRange = "moderate"
	PriceExpensive PriceRange = "expensive"
	PriceLuxury    PriceRange = "luxury"
)

// Parking facet
type Parking string

const (
	ParkingAvailable Parking = "available"
	ParkingLimited   Parking = "limited"
	ParkingNone      Parking = "none"
)

// WaitTime facet
type WaitTime string

const (
	WaitNone     WaitTime = "none"
	WaitShort    WaitTime = "short"
	WaitModerate WaitTime = "moderate"
	WaitLong     WaitTime = "long"
)

// Quality grades cleanliness, service, atmosphere and value for money.
type Quality string

const (
	QualityExcellent Quality = "excellent"
	QualityGood      Quality = "good"
	QualityAverage   Quality = "average"
	QualityPoor      Quality = "poor"
)

// Accessibility facet
type Accessibility string

const (
	AccessibilityFull    Accessibility = "full"
	AccessibilityPartial Accessibility = "partial"
	AccessibilityNone    Accessibility = "none"
)

// Wifi facet
type Wifi string

const (
	WifiFree Wifi = "free"
	WifiPaid Wifi = "paid"
	WifiNone Wifi = "none"
)

// ReviewDetails holds the structured, category-specific facets of a review.
// Every facet is optional; an empty value means "not answered".
type ReviewDetails struct {
	PriceRange     PriceRange    `json:"priceRange,omitempty"`
	Parking        Parking       `json:"parking,omitempty"`
	WaitTime       WaitTime      `json:"waitTime,omitempty"`
	Cleanliness    Quality       `json:"cleanliness,omitempty"`
	Service        Quality       `json:"service,omitempty"`
	Accessibility  Accessibility `json:"accessibility,omitempty"`
	Wifi           Wifi          `json:"wifi,omitempty"`
	Atmosphere     Quality       `json:"atmosphere,omitempty"`
	ValueForMoney  Quality       `json:"valueForMoney,omitempty"`
	WouldRecommend *bool         `json:"wouldRecommend,omitempty"`
	VisitAgain     *bool         `json:"visitAgain,omitempty"`
}

// Validate checks every answered facet against its closed set.
func (d *ReviewDetails) Validate() error {
	checks := []struct {
		facet string
		value string
		ok    bool
	}{
		{"priceRange", string(d.PriceRange), oneOf(d.PriceRange, PriceBudget, PriceModerate, PriceExpensive, PriceLuxury)},
		{"parking", string(d.Parking), oneOf(d.Parking, ParkingAvailable, ParkingLimited, ParkingNone)},
		{"waitTime", string(d.WaitTime), oneOf(d.WaitTime, WaitNone, WaitShort, WaitModerate, WaitLong)},
		{"cleanliness", string(d.Cleanliness), validQuality(d.Cleanliness)},
		{"service", string(d.Service), validQuality(d.Service)},
		{"accessibility", string(d.Accessibility), oneOf(d.Accessibility, AccessibilityFull, AccessibilityPartial, AccessibilityNone)},
		{"wifi", string(d.Wifi), oneOf(d.Wifi, WifiFree, WifiPaid, WifiNone)},
		{"atmosphere", string(d.Atmosphere), validQuality(d.Atmosphere)},
		{"valueForMoney", string(d.ValueForMoney), validQuality(d.ValueForMoney)},
	}
	for _, c := range checks {
		if c.value != "" && !c.ok {
			return apperrors.NewValidationError(fmt.Sprintf("invalid %s value %q", c.facet, c.value))
		}
	}
	return nil
}

// Answered reports whether at least one facet was filled in.
func (d *ReviewDetails) Answered() bool {
	if d == nil {
		return false
	}
	return d.PriceRange != "" || d.Parking != "" || d.WaitTime != "" || d.Cleanliness != "" ||
		d.Service != "" || d.Accessibility != "" || d.Wifi != "" || d.Atmosphere != "" ||
		d.ValueForMoney != "" || d.WouldRecommend != nil || d.VisitAgain != nil
}

func validQuality(q Quality) bool {
	return oneOf(q, QualityExcellent, QualityGood, QualityAverage, QualityPoor)
}

func oneOf[T comparable](v T, allowed ...T) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
