package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/zatekoja/placesreview/internal/infrastructure/observability"
)

const (
	// RequestIDHeader carries the request id in both directions
	RequestIDHeader = "X-Request-ID"
	// ActorHeader names the acting user
	ActorHeader = "X-Actor-ID"
)

// LoggingMiddleware attaches a request-scoped zerolog logger to the context
// and logs every request once it completes
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, requestID)

		logger := log.With().
			Str("request_id", requestID).
			Str("actor_id", r.Header.Get(ActorHeader)).
			Logger()
		ctx := observability.ContextWithLogger(r.Context(), logger)

		rec := recorderFor(w)
		next.ServeHTTP(rec, r.WithContext(ctx))

		event := logger.Info()
		if rec.statusCode >= http.StatusInternalServerError {
			event = logger.Error()
		}
		event.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.statusCode).
			Dur("duration", time.Since(start)).
			Msg("request handled")
	})
}
