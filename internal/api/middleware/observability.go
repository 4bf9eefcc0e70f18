package middleware

import (
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/zatekoja/placesreview/internal/infrastructure/observability"
)

// ObservabilityMiddleware opens one span per request and records the request
// metric. 5xx responses mark the span as failed.
func ObservabilityMiddleware(metrics *observability.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := recorderFor(w)

			// Pattern is only set once the mux matched.
			route := r.Pattern
			if route == "" {
				route = r.URL.Path
			}
			ctx, span := observability.StartSpan(r.Context(), r.Method+" "+route)
			defer span.End()

			observability.SetSpanAttributes(span,
				attribute.String("http.method", r.Method),
				attribute.String("http.route", route),
				attribute.String("places.actor_id", r.Header.Get(ActorHeader)),
				attribute.String("places.request_id", w.Header().Get(RequestIDHeader)),
			)

			next.ServeHTTP(rec, r.WithContext(ctx))

			span.SetAttributes(attribute.Int("http.status_code", rec.statusCode))
			if rec.statusCode >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(rec.statusCode))
			}
			observability.RecordRequestMetric(ctx, metrics, r.Method, route, rec.statusCode, time.Since(start))
		})
	}
}
