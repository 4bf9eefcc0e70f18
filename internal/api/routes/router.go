package routes

import (
	"net/http"
	"time"

	"github.com/zatekoja/placesreview/internal/api/handlers"
	"github.com/zatekoja/placesreview/internal/api/middleware"
	"github.com/zatekoja/placesreview/internal/application/services"
	"github.com/zatekoja/placesreview/internal/infrastructure/observability"
)

// Options tune the HTTP surface
type Options struct {
	AllowedOrigins []string
	PollInterval   time.Duration
	Heartbeat      time.Duration
	Metrics        *observability.Metrics
}

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	userHandler         *handlers.UserHandler
	placeHandler        *handlers.PlaceHandler
	reviewHandler       *handlers.ReviewHandler
	questionHandler     *handlers.QuestionHandler
	notificationHandler *handlers.NotificationHandler
	sseHandler          *handlers.SSEHandler
	loyaltyHandler      *handlers.LoyaltyHandler
	recordsHandler      *handlers.RecordsHandler
	adminHandler        *handlers.AdminHandler

	allowedOrigins []string
	metrics        *observability.Metrics
}

// NewRouter creates a new router over the domain services
func NewRouter(svc *services.Services, opts Options) *Router {
	return &Router{
		mux: http.NewServeMux(),

		userHandler:         handlers.NewUserHandler(svc.Users),
		placeHandler:        handlers.NewPlaceHandler(svc.Places),
		reviewHandler:       handlers.NewReviewHandler(svc.Reviews),
		questionHandler:     handlers.NewQuestionHandler(svc.Questions),
		notificationHandler: handlers.NewNotificationHandler(svc.Notifications),
		sseHandler:          handlers.NewSSEHandler(svc.Notifications, opts.Heartbeat),
		loyaltyHandler:      handlers.NewLoyaltyHandler(svc.Loyalty),
		recordsHandler:      handlers.NewRecordsHandler(svc.Announcements, svc.Inquiries, svc.Subscriptions),
		adminHandler:        handlers.NewAdminHandler(svc.Admin, opts.PollInterval),

		allowedOrigins: opts.AllowedOrigins,
		metrics:        opts.Metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Users
	r.mux.HandleFunc("POST /api/users", r.userHandler.CreateUser)
	r.mux.HandleFunc("GET /api/users", r.userHandler.ListUsers)
	r.mux.HandleFunc("GET /api/users/{id}", r.userHandler.GetUser)
	r.mux.HandleFunc("PATCH /api/users/{id}", r.userHandler.UpdateProfile)
	r.mux.HandleFunc("GET /api/users/{id}/reviews", r.reviewHandler.ListUserReviews)
	r.mux.HandleFunc("GET /api/users/{id}/liked-places", r.placeHandler.LikedPlaces)

	// Places
	r.mux.HandleFunc("POST /api/places", r.placeHandler.AddPlace)
	r.mux.HandleFunc("GET /api/places", r.placeHandler.ListPlaces)
	r.mux.HandleFunc("GET /api/places/nearby", r.placeHandler.NearbyPlaces)
	r.mux.HandleFunc("GET /api/places/{id}", r.placeHandler.GetPlace)
	r.mux.HandleFunc("PATCH /api/places/{id}", r.placeHandler.UpdatePlace)
	r.mux.HandleFunc("GET /api/places/{id}/status", r.placeHandler.GetStatus)
	r.mux.HandleFunc("POST /api/places/{id}/like", r.placeHandler.LikePlace)
	r.mux.HandleFunc("DELETE /api/places/{id}/like", r.placeHandler.UnlikePlace)

	// Reviews
	r.mux.HandleFunc("POST /api/places/{id}/reviews", r.reviewHandler.SubmitReview)
	r.mux.HandleFunc("GET /api/places/{id}/reviews", r.reviewHandler.ListPlaceReviews)
	r.mux.HandleFunc("GET /api/places/{id}/stats", r.reviewHandler.GetStats)
	r.mux.HandleFunc("POST /api/reviews/{id}/like", r.reviewHandler.ToggleLike)
	r.mux.HandleFunc("POST /api/reviews/{id}/report", r.reviewHandler.Report)
	r.mux.HandleFunc("POST /api/reviews/{id}/response", r.reviewHandler.Respond)

	// Questions
	r.mux.HandleFunc("POST /api/places/{id}/questions", r.questionHandler.AskQuestion)
	r.mux.HandleFunc("GET /api/places/{id}/questions", r.questionHandler.ListQuestions)
	r.mux.HandleFunc("POST /api/questions/{id}/answers", r.questionHandler.AnswerQuestion)

	// Notifications
	r.mux.HandleFunc("GET /api/notifications", r.notificationHandler.ListNotifications)
	r.mux.HandleFunc("GET /api/notifications/unread", r.notificationHandler.UnreadCounts)
	r.mux.HandleFunc("GET /api/notifications/stream", r.sseHandler.StreamNotifications)
	r.mux.HandleFunc("POST /api/notifications/read-all", r.notificationHandler.MarkAllRead)
	r.mux.HandleFunc("POST /api/notifications/{id}/read", r.notificationHandler.MarkRead)

	// Loyalty
	r.mux.HandleFunc("GET /api/loyalty", r.loyaltyHandler.GetSummary)
	r.mux.HandleFunc("GET /api/loyalty/history", r.loyaltyHandler.GetHistory)
	r.mux.HandleFunc("POST /api/loyalty/redeem", r.loyaltyHandler.Redeem)

	// Announcements, inquiries, subscriptions
	r.mux.HandleFunc("POST /api/places/{id}/announcements", r.recordsHandler.CreateAnnouncement)
	r.mux.HandleFunc("GET /api/places/{id}/announcements", r.recordsHandler.ListAnnouncements)
	r.mux.HandleFunc("POST /api/inquiries", r.recordsHandler.OpenInquiry)
	r.mux.HandleFunc("GET /api/inquiries", r.recordsHandler.ListInquiries)
	r.mux.HandleFunc("POST /api/inquiries/{id}/replies", r.recordsHandler.ReplyToInquiry)
	r.mux.HandleFunc("POST /api/inquiries/{id}/close", r.recordsHandler.CloseInquiry)
	r.mux.HandleFunc("POST /api/subscriptions", r.recordsHandler.Subscribe)
	r.mux.HandleFunc("GET /api/subscriptions", r.recordsHandler.ListSubscriptions)
	r.mux.HandleFunc("DELETE /api/subscriptions/{id}", r.recordsHandler.CancelSubscription)
	r.mux.HandleFunc("GET /api/subscriptions/features/{feature}", r.recordsHandler.HasFeature)

	// Trusted collaborators
	r.mux.HandleFunc("POST /api/admin/reset", r.adminHandler.Reset)
	r.mux.HandleFunc("GET /api/admin/counts", r.adminHandler.Counts)
	r.mux.HandleFunc("PUT /api/admin/users/{id}/expert", r.userHandler.SetExpert)
	r.mux.HandleFunc("PUT /api/admin/places/{id}/verified", r.placeHandler.SetVerified)
	r.mux.HandleFunc("POST /api/admin/loyalty/award", r.loyaltyHandler.Award)
	r.mux.HandleFunc("POST /api/admin/inquiries/{id}/replies", r.recordsHandler.StaffReply)

	r.mux.HandleFunc("GET /api/config/poll-interval", r.adminHandler.PollInterval)

	// Apply middleware; CORS runs first so preflights skip logging and tracing
	var handler http.Handler = r.mux
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}
