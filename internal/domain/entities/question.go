package entities

import (
	"strings"
	"time"

	apperrors "github.com/zatekoja/placesreview/pkg/errors"
)

// Question is asked about a place and owns its answers in order
type Question struct {
	Meta
	PlaceID string    `json:"placeId"`
	UserID  string    `json:"userId"`
	Text    string    `json:"text"`
	Answers []*Answer `json:"answers"`
}

// Answer to a question. IsOwner is true when the place owner wrote it.
type Answer struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Text      string    `json:"text"`
	IsOwner   bool      `json:"isOwner"`
	CreatedAt time.Time `json:"createdAt"`
}

// Kind implements Entity
func (q *Question) Kind() Kind { return KindQuestion }

// Validate implements Entity
func (q *Question) Validate() error {
	if q.PlaceID == "" {
		return apperrors.NewValidationError("question place is required")
	}
	if q.UserID == "" {
		return apperrors.NewValidationError("question author is required")
	}
	if strings.TrimSpace(q.Text) == "" {
		return apperrors.NewValidationError("question text is required")
	}
	for _, a := range q.Answers {
		if a.ID == "" || a.UserID == "" || strings.TrimSpace(a.Text) == "" {
			return apperrors.NewValidationError("answer needs an id, an author and text")
		}
	}
	return nil
}

// HasOwnerAnswer reports whether the place owner already answered.
func (q *Question) HasOwnerAnswer() bool {
	for _, a := range q.Answers {
		if a.IsOwner {
			return true
		}
	}
	return false
}
