package services

import (
	"context"
	"strings"

	"github.com/zatekoja/placesreview/internal/domain/entities"
	"github.com/zatekoja/placesreview/internal/domain/messages"
	apperrors "github.com/zatekoja/placesreview/pkg/errors"
)

// InquiryService handles user support threads
type InquiryService struct {
	inquiries *Collection[entities.Inquiry, *entities.Inquiry]
	users     *Collection[entities.User, *entities.User]
	notifier  *NotificationService
	locks     *keyedMutex
	now       Clock
}

// NewInquiryService creates a new inquiry service
func NewInquiryService(deps Deps, notifier *NotificationService) *InquiryService {
	deps = deps.withDefaults()
	return &InquiryService{
		inquiries: NewCollection[entities.Inquiry](deps.Store, deps.Clock),
		users:     NewCollection[entities.User](deps.Store, deps.Clock),
		notifier:  notifier,
		locks:     deps.locks,
		now:       deps.Clock,
	}
}

// Open starts a thread for actorID
func (s *InquiryService) Open(ctx context.Context, actorID, subject, message string) (*entities.Inquiry, error) {
	if _, err := s.users.Get(ctx, actorID); err != nil {
		return nil, err
	}
	return s.inquiries.Create(ctx, &entities.Inquiry{
		UserID:  actorID,
		Subject: strings.TrimSpace(subject),
		Message: strings.TrimSpace(message),
		Status:  entities.InquiryOpen,
		Replies: []*entities.InquiryReply{},
	})
}

// Get retrieves an inquiry by ID
func (s *InquiryService) Get(ctx context.Context, id string) (*entities.Inquiry, error) {
	return s.inquiries.Get(ctx, id)
}

// ListByUser returns a user's inquiries, newest first
func (s *InquiryService) ListByUser(ctx context.Context, userID string) ([]*entities.Inquiry, error) {
	list, err := s.inquiries.ListBy(ctx, "userId", userID, nil)
	if err != nil {
		return nil, err
	}
	return newestFirst(list), nil
}

// Reply appends a message to the thread. A staff reply marks the inquiry
// answered and sends the user a system notification; a reply by the user
// reopens it. Closed threads accept no replies.
func (s *InquiryService) Reply(ctx context.Context, actorID, id, text string, fromStaff bool) (*entities.Inquiry, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.NewValidationError("reply text is required")
	}

	unlock := s.locks.Lock("inquiry:" + id)
	defer unlock()

	inquiry, err := s.inquiries.Update(ctx, id, func(i *entities.Inquiry) error {
		if i.Status == entities.InquiryClosed {
			return apperrors.NewConflictError("inquiry is closed")
		}
		if !fromStaff && i.UserID != actorID {
			return apperrors.NewForbiddenError("only the inquiry author can reply")
		}
		i.Replies = append(i.Replies, &entities.InquiryReply{
			AuthorID:  actorID,
			Text:      text,
			FromStaff: fromStaff,
			CreatedAt: s.now().UTC(),
		})
		if fromStaff {
			i.Status = entities.InquiryAnswered
		} else {
			i.Status = entities.InquiryOpen
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if fromStaff {
		s.notifier.notifyBestEffort(ctx, inquiry.UserID, entities.NotificationSystem, messages.Vars{
			"subject": inquiry.Subject,
			"text":    text,
		}, entities.Correlation{ActionURL: "/inquiries/" + inquiry.ID})
	}
	return inquiry, nil
}

// Close ends the thread. Only its author may close it.
func (s *InquiryService) Close(ctx context.Context, actorID, id string) (*entities.Inquiry, error) {
	unlock := s.locks.Lock("inquiry:" + id)
	defer unlock()

	return s.inquiries.Update(ctx, id, func(i *entities.Inquiry) error {
		if i.UserID != actorID {
			return apperrors.NewForbiddenError("only the inquiry author can close it")
		}
		if i.Status == entities.InquiryClosed {
			return errUnchanged
		}
		i.Status = entities.InquiryClosed
		return nil
	})
}
