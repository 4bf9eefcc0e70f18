package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/zatekoja/placesreview/internal/api/middleware"
	"github.com/zatekoja/placesreview/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/placesreview/pkg/errors"
)

// maxBodyBytes bounds request payloads
const maxBodyBytes = 1 << 20

func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}

// respondWithAppError maps an AppError type onto its HTTP status. Internal
// errors are logged and their detail is not sent to the client.
func respondWithAppError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		appErr = apperrors.NewInternalError("unexpected error", err)
	}

	switch appErr.Type {
	case apperrors.ErrorTypeValidation:
		respondWithError(w, http.StatusBadRequest, appErr.Message)
	case apperrors.ErrorTypeNotFound:
		respondWithError(w, http.StatusNotFound, appErr.Message)
	case apperrors.ErrorTypeInsufficientPoints, apperrors.ErrorTypeConflict:
		respondWithJSON(w, http.StatusConflict, map[string]string{
			"error": appErr.Message,
			"code":  string(appErr.Type),
		})
	case apperrors.ErrorTypeForbidden:
		respondWithError(w, http.StatusForbidden, appErr.Message)
	default:
		observability.LoggerFromContext(r.Context()).Error().Err(err).
			Str("path", r.URL.Path).
			Msg("request failed")
		respondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}

// decodeJSON reads a bounded JSON body into dst
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperrors.NewValidationError("request body is required")
		}
		return apperrors.NewValidationError("invalid request payload")
	}
	return nil
}

// readRaw returns the bounded body for patch endpoints
func readRaw(w http.ResponseWriter, r *http.Request) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := decodeJSON(w, r, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// actorID returns the acting user named by the X-Actor-ID header
func actorID(r *http.Request) (string, error) {
	actor := strings.TrimSpace(r.Header.Get(middleware.ActorHeader))
	if actor == "" {
		return "", apperrors.NewValidationError(middleware.ActorHeader + " header is required")
	}
	return actor, nil
}

func queryFloat(r *http.Request, name string) (float64, bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, apperrors.NewValidationError("invalid " + name + " parameter")
	}
	return v, true, nil
}
