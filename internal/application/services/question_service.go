package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/zatekoja/placesreview/internal/domain/entities"
	"github.com/zatekoja/placesreview/internal/domain/messages"
	"github.com/zatekoja/placesreview/internal/domain/repositories"
	"github.com/zatekoja/placesreview/pkg/config"
	apperrors "github.com/zatekoja/placesreview/pkg/errors"
)

// QuestionService handles questions about places and their answers
type QuestionService struct {
	questions *Collection[entities.Question, *entities.Question]
	places    *Collection[entities.Place, *entities.Place]
	users     *Collection[entities.User, *entities.User]
	likes     repositories.LikedPlaceRepository
	notifier  *NotificationService
	loyalty   *LoyaltyService
	rewards   config.RewardConfig
	locks     *keyedMutex
	now       Clock
}

// NewQuestionService creates a new question service
func NewQuestionService(deps Deps, notifier *NotificationService, loyalty *LoyaltyService) *QuestionService {
	deps = deps.withDefaults()
	return &QuestionService{
		questions: NewCollection[entities.Question](deps.Store, deps.Clock),
		places:    NewCollection[entities.Place](deps.Store, deps.Clock),
		users:     NewCollection[entities.User](deps.Store, deps.Clock),
		likes:     deps.Store,
		notifier:  notifier,
		loyalty:   loyalty,
		rewards:   deps.Rewards,
		locks:     deps.locks,
		now:       deps.Clock,
	}
}

// Ask creates a question about a place. The owner and the users who liked the
// place are notified, and the asker earns question points.
func (s *QuestionService) Ask(ctx context.Context, actorID, placeID, text string) (*entities.Question, error) {
	text = strings.TrimSpace(text)
	asker, err := s.users.Get(ctx, actorID)
	if err != nil {
		return nil, err
	}
	place, err := s.places.Get(ctx, placeID)
	if err != nil {
		return nil, err
	}

	q, err := s.questions.Create(ctx, &entities.Question{
		PlaceID: place.ID,
		UserID:  asker.ID,
		Text:    text,
		Answers: []*entities.Answer{},
	})
	if err != nil {
		return nil, err
	}

	vars := messages.Vars{"author": asker.Name, "place": place.Name, "text": q.Text}
	corr := entities.Correlation{
		PlaceID:    place.ID,
		QuestionID: q.ID,
		ActionURL:  "/places/" + place.ID + "#question-" + q.ID,
	}
	if !place.IsOwnedBy(asker.ID) {
		s.notifier.notifyBestEffort(ctx, place.OwnerID, entities.NotificationNewQuestionOnOwnedPlace, vars, corr)
	}
	notifyPlaceLikers(ctx, s.likes, s.notifier, place, asker.ID, entities.NotificationQuestion, vars, corr)
	rewardBestEffort(ctx, s.loyalty, asker.ID, s.rewards.Question, "question:"+place.Name)
	return q, nil
}

// Answer appends an answer to a question. The asker is notified unless they
// answered themselves.
func (s *QuestionService) Answer(ctx context.Context, actorID, questionID, text string) (*entities.Question, *entities.Answer, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil, apperrors.NewValidationError("answer text is required")
	}
	author, err := s.users.Get(ctx, actorID)
	if err != nil {
		return nil, nil, err
	}
	current, err := s.questions.Get(ctx, questionID)
	if err != nil {
		return nil, nil, err
	}
	place, err := s.places.Get(ctx, current.PlaceID)
	if err != nil {
		return nil, nil, err
	}

	answer := &entities.Answer{
		ID:        uuid.NewString(),
		UserID:    author.ID,
		Text:      text,
		IsOwner:   place.IsOwnedBy(author.ID),
		CreatedAt: s.now().UTC(),
	}

	unlock := s.locks.Lock("question:" + questionID)
	defer unlock()

	q, err := s.questions.Update(ctx, questionID, func(q *entities.Question) error {
		q.Answers = append(q.Answers, answer)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	if q.UserID != author.ID {
		s.notifier.notifyBestEffort(ctx, q.UserID, entities.NotificationAnswer, messages.Vars{
			"author": author.Name,
			"place":  place.Name,
			"text":   text,
		}, entities.Correlation{
			PlaceID:    place.ID,
			QuestionID: q.ID,
			AnswerID:   answer.ID,
			ActionURL:  "/places/" + place.ID + "#question-" + q.ID,
		})
	}
	rewardBestEffort(ctx, s.loyalty, author.ID, s.rewards.Answer, "answer:"+place.Name)
	return q, answer, nil
}

// Get retrieves a question by ID
func (s *QuestionService) Get(ctx context.Context, id string) (*entities.Question, error) {
	return s.questions.Get(ctx, id)
}

// ListByPlace returns the questions about a place, newest first
func (s *QuestionService) ListByPlace(ctx context.Context, placeID string) ([]*entities.Question, error) {
	list, err := s.questions.ListBy(ctx, "placeId", placeID, nil)
	if err != nil {
		return nil, err
	}
	return newestFirst(list), nil
}
