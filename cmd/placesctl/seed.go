package main

import (
	"context"
	"fmt"

	"github.com/zatekoja/placesreview/internal/application/services"
	"github.com/zatekoja/placesreview/internal/domain/entities"
	"github.com/zatekoja/placesreview/pkg/geo"
)

type seedResult struct {
	Users     int
	Places    int
	Reviews   int
	Questions int
}

func weekdays(opens, closes string) entities.WeeklyHours {
	hours := entities.WeeklyHours{}
	for _, day := range []string{"الأحد", "الاثنين", "الثلاثاء", "الأربعاء", "الخميس", "السبت"} {
		hours[day] = entities.DayHours{Open: opens, Close: closes}
	}
	hours["الجمعة"] = entities.DayHours{Open: "16:00", Close: closes}
	return hours
}

// seed goes through the services, so the demo data carries points and
// notifications too.
func seed(ctx context.Context, svc *services.Services) (*seedResult, error) {
	result := &seedResult{}

	names := []string{"نورة", "فهد", "ليلى", "خالد"}
	users := make([]*entities.User, 0, len(names))
	for _, name := range names {
		u, err := svc.Users.Create(ctx, &entities.User{Name: name})
		if err != nil {
			return nil, fmt.Errorf("failed to create user %s: %w", name, err)
		}
		users = append(users, u)
		result.Users++
	}
	owner := users[0]

	places := []*entities.Place{
		{
			Name:     "مقهى الرياض",
			Category: "cafe",
			Address:  "طريق الملك فهد، الرياض",
			Location: &geo.Point{Lat: 24.7136, Lng: 46.6753},
			Hours:    weekdays("07:00", "23:00"),
		},
		{
			Name:     "مطعم البحر",
			Category: "restaurant",
			Address:  "الكورنيش، جدة",
			Location: &geo.Point{Lat: 21.4858, Lng: 39.1925},
			Hours:    weekdays("12:00", "02:00"),
		},
		{
			Name:     "مكتبة الدمام",
			Category: "bookstore",
			Address:  "شارع الملك سعود، الدمام",
			Location: &geo.Point{Lat: 26.4207, Lng: 50.0888},
		},
	}
	for _, p := range places {
		if _, err := svc.Places.Add(ctx, owner.ID, p); err != nil {
			return nil, fmt.Errorf("failed to create place %s: %w", p.Name, err)
		}
		result.Places++
	}

	recommend := true
	reviews := []struct {
		author  *entities.User
		place   *entities.Place
		rating  int
		comment string
		details *entities.ReviewDetails
	}{
		{users[1], places[0], 5, "قهوة ممتازة وخدمة سريعة", &entities.ReviewDetails{
			Service: entities.QualityExcellent, Wifi: entities.WifiFree, WouldRecommend: &recommend,
		}},
		{users[2], places[0], 4, "مكان هادئ", nil},
		{users[3], places[1], 3, "الانتظار طويل", &entities.ReviewDetails{WaitTime: entities.WaitLong}},
		{users[1], places[2], 5, "تشكيلة رائعة", nil},
	}
	for _, r := range reviews {
		if _, err := svc.Reviews.Submit(ctx, r.author.ID, services.ReviewInput{
			PlaceID: r.place.ID,
			Rating:  r.rating,
			Comment: r.comment,
			Details: r.details,
		}); err != nil {
			return nil, fmt.Errorf("failed to create review for %s: %w", r.place.Name, err)
		}
		result.Reviews++
	}

	if _, err := svc.Places.Like(ctx, users[2].ID, places[1].ID); err != nil {
		return nil, err
	}
	q, err := svc.Questions.Ask(ctx, users[2].ID, places[1].ID, "هل يوجد مواقف للسيارات؟")
	if err != nil {
		return nil, err
	}
	result.Questions++
	if _, _, err := svc.Questions.Answer(ctx, owner.ID, q.ID, "نعم، يوجد موقف خاص"); err != nil {
		return nil, err
	}
	return result, nil
}
