package middleware

import "net/http"

// statusRecorder captures the response status for logging, metrics and spans.
// It forwards Flush so notification streams keep working behind it.
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

// recorderFor reuses an outer recorder instead of stacking wrappers
func recorderFor(w http.ResponseWriter) *statusRecorder {
	if rec, ok := w.(*statusRecorder); ok {
		return rec
	}
	return &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *statusRecorder) WriteHeader(statusCode int) {
	rw.statusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}

func (rw *statusRecorder) Flush() {
	if flusher, ok := rw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}
