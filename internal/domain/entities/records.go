package entities

import (
	"strings"
	"time"

	apperrors "github.com/zatekoja/placesreview/pkg/errors"
)

// Announcement is owner-authored broadcast content for a place
type Announcement struct {
	Meta
	PlaceID   string     `json:"placeId"`
	OwnerID   string     `json:"ownerId"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// Kind implements Entity
func (a *Announcement) Kind() Kind { return KindAnnouncement }

// Validate implements Entity
func (a *Announcement) Validate() error {
	if a.PlaceID == "" || a.OwnerID == "" {
		return apperrors.NewValidationError("announcement place and owner are required")
	}
	if strings.TrimSpace(a.Title) == "" {
		return apperrors.NewValidationError("announcement title is required")
	}
	return nil
}

// Active reports whether the announcement is still shown at t.
func (a *Announcement) Active(t time.Time) bool {
	return a.ExpiresAt == nil || t.Before(*a.ExpiresAt)
}

// InquiryStatus tracks a support thread
type InquiryStatus string

const (
	InquiryOpen     InquiryStatus = "open"
	InquiryAnswered InquiryStatus = "answered"
	InquiryClosed   InquiryStatus = "closed"
)

// Inquiry is a user-initiated support thread
type Inquiry struct {
	Meta
	UserID  string          `json:"userId"`
	Subject string          `json:"subject"`
	Message string          `json:"message"`
	Status  InquiryStatus   `json:"status"`
	Replies []*InquiryReply `json:"replies"`
}

// InquiryReply is one message in an inquiry thread
type InquiryReply struct {
	AuthorID  string    `json:"authorId"`
	Text      string    `json:"text"`
	FromStaff bool      `json:"fromStaff"`
	CreatedAt time.Time `json:"createdAt"`
}

// Kind implements Entity
func (i *Inquiry) Kind() Kind { return KindInquiry }

// Validate implements Entity
func (i *Inquiry) Validate() error {
	if i.UserID == "" {
		return apperrors.NewValidationError("inquiry user is required")
	}
	if strings.TrimSpace(i.Subject) == "" || strings.TrimSpace(i.Message) == "" {
		return apperrors.NewValidationError("inquiry subject and message are required")
	}
	switch i.Status {
	case InquiryOpen, InquiryAnswered, InquiryClosed:
	default:
		return apperrors.NewValidationError("unknown inquiry status " + string(i.Status))
	}
	return nil
}

// SubscriptionPlan names a paid tier
type SubscriptionPlan string

const (
	PlanFree     SubscriptionPlan = "free"
	PlanPro      SubscriptionPlan = "pro"
	PlanBusiness SubscriptionPlan = "business"
)

// SubscriptionStatus of a feature-gating record
type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
	SubscriptionExpired   SubscriptionStatus = "expired"
)

// Subscription gates features for a user
type Subscription struct {
	Meta
	UserID   string             `json:"userId"`
	Plan     SubscriptionPlan   `json:"plan"`
	Features []string           `json:"features"`
	Status   SubscriptionStatus `json:"status"`
	StartsAt time.Time          `json:"startsAt"`
	EndsAt   *time.Time         `json:"endsAt,omitempty"`
}

// Kind implements Entity
func (s *Subscription) Kind() Kind { return KindSubscription }

// Validate implements Entity
func (s *Subscription) Validate() error {
	if s.UserID == "" {
		return apperrors.NewValidationError("subscription user is required")
	}
	if !oneOf(s.Plan, PlanFree, PlanPro, PlanBusiness) {
		return apperrors.NewValidationError("unknown plan " + string(s.Plan))
	}
	if !oneOf(s.Status, SubscriptionActive, SubscriptionCancelled, SubscriptionExpired) {
		return apperrors.NewValidationError("unknown subscription status " + string(s.Status))
	}
	if s.EndsAt != nil && !s.EndsAt.After(s.StartsAt) {
		return apperrors.NewValidationError("subscription must end after it starts")
	}
	return nil
}

// Grants reports whether the subscription unlocks feature at t.
func (s *Subscription) Grants(feature string, t time.Time) bool {
	if s.Status != SubscriptionActive || t.Before(s.StartsAt) {
		return false
	}
	if s.EndsAt != nil && !t.Before(*s.EndsAt) {
		return false
	}
	for _, f := range s.Features {
		if f == feature {
			return true
		}
	}
	return false
}
