package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/placesreview/internal/domain/entities"
	apperrors "github.com/zatekoja/placesreview/pkg/errors"
)

func TestQuestionService_AskAndAnswer(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner")
	asker := f.user(t, "asker")
	fan := f.user(t, "fan")
	helper := f.user(t, "helper")
	place := f.place(t, owner.ID, "مكتبة")
	_, err := f.svc.Places.Like(f.ctx, fan.ID, place.ID)
	require.NoError(t, err)
	_, err = f.svc.Places.Like(f.ctx, owner.ID, place.ID)
	require.NoError(t, err)

	q, err := f.svc.Questions.Ask(f.ctx, asker.ID, place.ID, "هل يوجد واي فاي؟")
	require.NoError(t, err)
	assert.Empty(t, q.Answers)

	ownerNotes := f.notificationsOf(t, owner.ID, entities.NotificationNewQuestionOnOwnedPlace)
	require.Len(t, ownerNotes, 1)
	assert.Equal(t, q.ID, ownerNotes[0].QuestionID)
	assert.Empty(t, f.notificationsOf(t, owner.ID, entities.NotificationQuestion))
	assert.Len(t, f.notificationsOf(t, fan.ID, entities.NotificationQuestion), 1)

	q, answer, err := f.svc.Questions.Answer(f.ctx, owner.ID, q.ID, "نعم")
	require.NoError(t, err)
	assert.True(t, answer.IsOwner)
	require.Len(t, q.Answers, 1)

	_, second, err := f.svc.Questions.Answer(f.ctx, helper.ID, q.ID, "مجاني")
	require.NoError(t, err)
	assert.False(t, second.IsOwner)

	answers := f.notificationsOf(t, asker.ID, entities.NotificationAnswer)
	require.Len(t, answers, 2)
	assert.Equal(t, second.ID, answers[0].AnswerID)

	_, _, err = f.svc.Questions.Answer(f.ctx, asker.ID, q.ID, "شكرا")
	require.NoError(t, err)
	assert.Len(t, f.notificationsOf(t, asker.ID, entities.NotificationAnswer), 2)

	askerPoints, err := f.svc.Loyalty.Balance(f.ctx, asker.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, askerPoints)
	helperPoints, err := f.svc.Loyalty.Balance(f.ctx, helper.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, helperPoints)

	got, err := f.svc.Questions.Get(f.ctx, q.ID)
	require.NoError(t, err)
	assert.Len(t, got.Answers, 3)
	assert.True(t, got.HasOwnerAnswer())
}

func TestQuestionService_Validation(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner")
	place := f.place(t, owner.ID, "p")

	_, err := f.svc.Questions.Ask(f.ctx, owner.ID, place.ID, "  ")
	assert.True(t, apperrors.IsValidation(err))
	_, err = f.svc.Questions.Ask(f.ctx, owner.ID, "missing", "why?")
	assert.True(t, apperrors.IsNotFound(err))
	_, _, err = f.svc.Questions.Answer(f.ctx, owner.ID, "missing", "because")
	assert.True(t, apperrors.IsNotFound(err))
	_, _, err = f.svc.Questions.Answer(f.ctx, owner.ID, "missing", "")
	assert.True(t, apperrors.IsValidation(err))
}

func TestQuestionService_ListNewestFirst(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner")
	place := f.place(t, owner.ID, "p")

	first, err := f.svc.Questions.Ask(f.ctx, owner.ID, place.ID, "one")
	require.NoError(t, err)
	second, err := f.svc.Questions.Ask(f.ctx, owner.ID, place.ID, "two")
	require.NoError(t, err)

	list, err := f.svc.Questions.ListByPlace(f.ctx, place.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
}
