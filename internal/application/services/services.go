package services

import (
	"time"

	"github.com/zatekoja/placesreview/internal/domain/messages"
	"github.com/zatekoja/placesreview/internal/domain/providers"
	"github.com/zatekoja/placesreview/internal/domain/repositories"
	"github.com/zatekoja/placesreview/internal/domain/status"
	"github.com/zatekoja/placesreview/internal/infrastructure/observability"
	"github.com/zatekoja/placesreview/pkg/config"
)

// Deps are the collaborators shared by every service
type Deps struct {
	Store   repositories.Store
	Bus     providers.EventBus
	Catalog *messages.Catalog
	Status  *status.Engine
	Rewards config.RewardConfig
	Metrics *observability.Metrics
	Clock   Clock

	locks *keyedMutex
}

// DefaultRewards is the points schedule used when none is configured
func DefaultRewards() config.RewardConfig {
	return config.RewardConfig{Review: 10, ReviewDetails: 5, Question: 5, Answer: 5}
}

// Services groups the domain services over one store
type Services struct {
	Users         *UserService
	Places        *PlaceService
	Reviews       *ReviewService
	Notifications *NotificationService
	Loyalty       *LoyaltyService
	Questions     *QuestionService
	Announcements *AnnouncementService
	Inquiries     *InquiryService
	Subscriptions *SubscriptionService
	Admin         *AdminService
}

// withDefaults fills the optional collaborators.
func (deps Deps) withDefaults() Deps {
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.Catalog == nil {
		deps.Catalog = messages.Default()
	}
	if deps.Status == nil {
		deps.Status = status.NewEngine(deps.Catalog, time.UTC, status.DefaultClosingSoonWithin)
	}
	if deps.Rewards == (config.RewardConfig{}) {
		deps.Rewards = DefaultRewards()
	}
	if deps.locks == nil {
		deps.locks = newKeyedMutex()
	}
	return deps
}

// New wires the services around one lock table.
func New(deps Deps) *Services {
	deps = deps.withDefaults()

	notifications := NewNotificationService(deps)
	loyalty := NewLoyaltyService(deps, notifications)
	reviews := NewReviewService(deps, notifications, loyalty)

	return &Services{
		Users:         NewUserService(deps),
		Places:        NewPlaceService(deps, reviews),
		Reviews:       reviews,
		Notifications: notifications,
		Loyalty:       loyalty,
		Questions:     NewQuestionService(deps, notifications, loyalty),
		Announcements: NewAnnouncementService(deps, notifications),
		Inquiries:     NewInquiryService(deps, notifications),
		Subscriptions: NewSubscriptionService(deps),
		Admin:         NewAdminService(deps),
	}
}
