package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareChain_SharesRecorderAndFlushes(t *testing.T) {
	var flushed bool
	handler := LoggingMiddleware(ObservabilityMiddleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, isRecorder := w.(*statusRecorder)
		assert.True(t, isRecorder)
		assert.Same(t, w, recorderFor(w))

		flusher, ok := w.(http.Flusher)
		require.True(t, ok)
		w.WriteHeader(http.StatusTeapot)
		flusher.Flush()
		flushed = true
	})))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stream", nil))

	assert.True(t, flushed)
	assert.True(t, w.Flushed)
	assert.Equal(t, http.StatusTeapot, w.Code)
}
