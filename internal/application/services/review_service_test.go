package services_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/zatekoja/placesreview/internal/application/services"
	"github.com/zatekoja/placesreview/internal/domain/entities"
	apperrors "github.com/zatekoja/placesreview/pkg/errors"
)

func TestReviewService_Submit(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner")
	author := f.user(t, "author")
	fan := f.user(t, "fan")
	place := f.place(t, owner.ID, "مقهى الورد")

	_, err := f.svc.Places.Like(f.ctx, fan.ID, place.ID)
	require.NoError(t, err)
	_, err = f.svc.Places.Like(f.ctx, author.ID, place.ID)
	require.NoError(t, err)

	review, err := f.svc.Reviews.Submit(f.ctx, author.ID, services.ReviewInput{
		PlaceID: place.ID,
		Rating:  4,
		Comment: "  قهوة ممتازة ",
	})
	require.NoError(t, err)
	assert.Equal(t, "قهوة ممتازة", review.Comment)
	assert.Empty(t, review.Likes)

	ownerNotes := f.notificationsOf(t, owner.ID, entities.NotificationReview)
	require.Len(t, ownerNotes, 1)
	assert.Equal(t, review.ID, ownerNotes[0].ReviewID)
	assert.Equal(t, place.ID, ownerNotes[0].PlaceID)
	assert.Contains(t, ownerNotes[0].Message, "author")

	assert.Len(t, f.notificationsOf(t, fan.ID, entities.NotificationNewReviewOnLikedPlace), 1)
	assert.Empty(t, f.notificationsOf(t, author.ID, entities.NotificationNewReviewOnLikedPlace))

	balance, err := f.svc.Loyalty.Balance(f.ctx, author.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, balance)
}

func TestReviewService_SubmitWithDetailsEarnsBonus(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner")
	author := f.user(t, "author")
	place := f.place(t, owner.ID, "p")

	yes := true
	_, err := f.svc.Reviews.Submit(f.ctx, author.ID, services.ReviewInput{
		PlaceID: place.ID,
		Rating:  5,
		Details: &entities.ReviewDetails{Wifi: entities.WifiFree, WouldRecommend: &yes},
	})
	require.NoError(t, err)

	balance, err := f.svc.Loyalty.Balance(f.ctx, author.ID)
	require.NoError(t, err)
	assert.Equal(t, 15, balance)
}

func TestReviewService_OwnReviewDoesNotNotifyOwner(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner")
	place := f.place(t, owner.ID, "p")

	_, err := f.svc.Reviews.Submit(f.ctx, owner.ID, services.ReviewInput{PlaceID: place.ID, Rating: 5})
	require.NoError(t, err)
	assert.Empty(t, f.notificationsOf(t, owner.ID, entities.NotificationReview))
}

func TestReviewService_SubmitValidation(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner")
	place := f.place(t, owner.ID, "p")

	tests := []struct {
		name  string
		actor string
		in    services.ReviewInput
		check func(error) bool
	}{
		{"rating too low", owner.ID, services.ReviewInput{PlaceID: place.ID, Rating: 0}, apperrors.IsValidation},
		{"rating too high", owner.ID, services.ReviewInput{PlaceID: place.ID, Rating: 6}, apperrors.IsValidation},
		{"unknown place", owner.ID, services.ReviewInput{PlaceID: "nope", Rating: 3}, apperrors.IsNotFound},
		{"unknown author", "ghost", services.ReviewInput{PlaceID: place.ID, Rating: 3}, apperrors.IsNotFound},
		{"bad facet", owner.ID, services.ReviewInput{PlaceID: place.ID, Rating: 3, Details: &entities.ReviewDetails{Wifi: "fast"}}, apperrors.IsValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Reviews.Submit(f.ctx, tt.actor, tt.in)
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error %v", err)
		})
	}
}

func TestReviewService_AverageAndStats(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner")
	place := f.place(t, owner.ID, "p")

	avg, err := f.svc.Reviews.AverageRating(f.ctx, place.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, avg)

	for _, rating := range []int{5, 5, 4} {
		u := f.user(t, "reviewer")
		_, err := f.svc.Reviews.Submit(f.ctx, u.ID, services.ReviewInput{PlaceID: place.ID, Rating: rating})
		require.NoError(t, err)
	}

	avg, err = f.svc.Reviews.AverageRating(f.ctx, place.ID)
	require.NoError(t, err)
	assert.InDelta(t, 14.0/3.0, avg, 1e-9)

	stats, err := f.svc.Reviews.Stats(f.ctx, place.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Count)
	assert.Equal(t, 4.7, stats.DisplayRating)
	assert.Equal(t, map[int]int{1: 0, 2: 0, 3: 0, 4: 1, 5: 2}, stats.Distribution)
}

func TestReviewService_ToggleLike(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner")
	author := f.user(t, "author")
	fan := f.user(t, "fan")
	place := f.place(t, owner.ID, "p")
	review, err := f.svc.Reviews.Submit(f.ctx, author.ID, services.ReviewInput{PlaceID: place.ID, Rating: 3})
	require.NoError(t, err)

	liked, ok, err := f.svc.Reviews.ToggleLike(f.ctx, review.ID, fan.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{fan.ID}, liked.Likes)

	unliked, ok, err := f.svc.Reviews.ToggleLike(f.ctx, review.ID, fan.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, unliked.Likes)

	assert.Len(t, f.notificationsOf(t, author.ID, entities.NotificationLike), 1)

	_, _, err = f.svc.Reviews.ToggleLike(f.ctx, review.ID, author.ID)
	require.NoError(t, err)
	assert.Len(t, f.notificationsOf(t, author.ID, entities.NotificationLike), 1)

	_, _, err = f.svc.Reviews.ToggleLike(f.ctx, "missing", fan.ID)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestReviewService_ConcurrentLikesAndReportsAreNotLost(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner")
	author := f.user(t, "author")
	place := f.place(t, owner.ID, "p")
	review, err := f.svc.Reviews.Submit(f.ctx, author.ID, services.ReviewInput{PlaceID: place.ID, Rating: 4})
	require.NoError(t, err)

	const fans = 20
	ids := make([]string, fans)
	for i := range ids {
		ids[i] = f.user(t, fmt.Sprintf("fan-%d", i)).ID
	}

	var g errgroup.Group
	for _, id := range ids {
		g.Go(func() error {
			_, liked, err := f.svc.Reviews.ToggleLike(f.ctx, review.ID, id)
			if err == nil && !liked {
				err = fmt.Errorf("like by %s was applied as an unlike", id)
			}
			return err
		})
		g.Go(func() error {
			_, err := f.svc.Reviews.Report(f.ctx, review.ID, id)
			return err
		})
	}
	require.NoError(t, g.Wait())

	got, err := f.svc.Reviews.Get(f.ctx, review.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, ids, got.Likes)
	assert.Equal(t, fans, got.Reports)
	assert.Len(t, f.notificationsOf(t, author.ID, entities.NotificationLike), fans)
}

func TestReviewService_ReportIsNotDeduplicated(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner")
	author := f.user(t, "author")
	reporter := f.user(t, "reporter")
	place := f.place(t, owner.ID, "p")
	review, err := f.svc.Reviews.Submit(f.ctx, author.ID, services.ReviewInput{PlaceID: place.ID, Rating: 1})
	require.NoError(t, err)

	for range 2 {
		_, err = f.svc.Reviews.Report(f.ctx, review.ID, reporter.ID)
		require.NoError(t, err)
	}

	got, err := f.svc.Reviews.Get(f.ctx, review.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Reports)
	assert.Len(t, f.notificationsOf(t, owner.ID, entities.NotificationReport), 2)
}

func TestReviewService_Respond(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner")
	author := f.user(t, "author")
	place := f.place(t, owner.ID, "p")
	review, err := f.svc.Reviews.Submit(f.ctx, author.ID, services.ReviewInput{PlaceID: place.ID, Rating: 2})
	require.NoError(t, err)

	_, err = f.svc.Reviews.Respond(f.ctx, author.ID, review.ID, "thanks")
	assert.True(t, apperrors.IsForbidden(err))

	_, err = f.svc.Reviews.Respond(f.ctx, owner.ID, review.ID, "   ")
	assert.True(t, apperrors.IsValidation(err))

	responded, err := f.svc.Reviews.Respond(f.ctx, owner.ID, review.ID, "نعتذر")
	require.NoError(t, err)
	require.NotNil(t, responded.OwnerResponse)
	assert.Equal(t, "نعتذر", responded.OwnerResponse.Text)
	assert.Len(t, f.notificationsOf(t, author.ID, entities.NotificationResponse), 1)
}

func TestReviewService_ListsNewestFirst(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner")
	author := f.user(t, "author")
	place := f.place(t, owner.ID, "p")

	first, err := f.svc.Reviews.Submit(f.ctx, author.ID, services.ReviewInput{PlaceID: place.ID, Rating: 2})
	require.NoError(t, err)
	second, err := f.svc.Reviews.Submit(f.ctx, author.ID, services.ReviewInput{PlaceID: place.ID, Rating: 3})
	require.NoError(t, err)

	byPlace, err := f.svc.Reviews.ListByPlace(f.ctx, place.ID)
	require.NoError(t, err)
	require.Len(t, byPlace, 2)
	assert.Equal(t, second.ID, byPlace[0].ID)
	assert.Equal(t, first.ID, byPlace[1].ID)

	byUser, err := f.svc.Reviews.ListByUser(f.ctx, author.ID)
	require.NoError(t, err)
	assert.Len(t, byUser, 2)
}
