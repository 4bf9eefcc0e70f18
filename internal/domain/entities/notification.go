package entities

import (
	"fmt"
	"strings"

	apperrors "github.com/zatekoja/placesreview/pkg/errors"
)

// NotificationType represents the notification purpose
type NotificationType string

const (
	NotificationReview                  NotificationType = "review"
	NotificationResponse                NotificationType = "response"
	NotificationQuestion                NotificationType = "question"
	NotificationAnswer                  NotificationType = "answer"
	NotificationLike                    NotificationType = "like"
	NotificationReport                  NotificationType = "report"
	NotificationAnnouncement            NotificationType = "announcement"
	NotificationLoyalty                 NotificationType = "loyalty"
	NotificationBadge                   NotificationType = "badge"
	NotificationSystem                  NotificationType = "system"
	NotificationNewReviewOnLikedPlace   NotificationType = "new_review_on_liked_place"
	NotificationNewQuestionOnOwnedPlace NotificationType = "new_question_on_owned_place"
)

// AllNotificationTypes lists the closed enumeration.
func AllNotificationTypes() []NotificationType {
	return []NotificationType{
		NotificationReview,
		NotificationResponse,
		NotificationQuestion,
		NotificationAnswer,
		NotificationLike,
		NotificationReport,
		NotificationAnnouncement,
		NotificationLoyalty,
		NotificationBadge,
		NotificationSystem,
		NotificationNewReviewOnLikedPlace,
		NotificationNewQuestionOnOwnedPlace,
	}
}

// NotificationScope splits the notification feed in two.
type NotificationScope string

const (
	// ScopePersonal covers the recipient's own content, points and badges.
	ScopePersonal NotificationScope = "personal"
	// ScopePlace covers activity on places the recipient owns, follows or liked.
	ScopePlace NotificationScope = "place"
)

// Scope maps every type to exactly one side of the partition. Adding a type
// without a case here panics on first use.
func (t NotificationType) Scope() NotificationScope {
	switch t {
	case NotificationAnswer,
		NotificationLike,
		NotificationLoyalty,
		NotificationBadge,
		NotificationSystem,
		NotificationReport:
		return ScopePersonal
	case NotificationReview,
		NotificationResponse,
		NotificationQuestion,
		NotificationAnnouncement,
		NotificationNewReviewOnLikedPlace,
		NotificationNewQuestionOnOwnedPlace:
		return ScopePlace
	}
	panic(fmt.Sprintf("notification type %q has no scope", string(t)))
}

// Valid reports whether t belongs to the enumeration.
func (t NotificationType) Valid() bool {
	for _, known := range AllNotificationTypes() {
		if t == known {
			return true
		}
	}
	return false
}

// Correlation links a notification to the entities it is about.
type Correlation struct {
	PlaceID    string `json:"placeId,omitempty"`
	ReviewID   string `json:"reviewId,omitempty"`
	QuestionID string `json:"questionId,omitempty"`
	AnswerID   string `json:"answerId,omitempty"`
	ActionURL  string `json:"actionUrl,omitempty"`
}

// Notification is a message to exactly one recipient
type Notification struct {
	Meta
	Correlation
	UserID  string           `json:"userId"`
	Type    NotificationType `json:"type"`
	Title   string           `json:"title"`
	Message string           `json:"message"`
	Read    bool             `json:"read"`
}

// Kind implements Entity
func (n *Notification) Kind() Kind { return KindNotification }

// Validate implements Entity
func (n *Notification) Validate() error {
	if n.UserID == "" {
		return apperrors.NewValidationError("notification recipient is required")
	}
	if !n.Type.Valid() {
		return apperrors.NewValidationError(fmt.Sprintf("unknown notification type %q", string(n.Type)))
	}
	if strings.TrimSpace(n.Title) == "" && strings.TrimSpace(n.Message) == "" {
		return apperrors.NewValidationError("notification needs a title or a message")
	}
	return nil
}

// Scope is the partition side of the notification.
func (n *Notification) Scope() NotificationScope {
	return n.Type.Scope()
}
