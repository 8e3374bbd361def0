package httpx

import (
	"errors"
	"net/http"

	"bookreview/internal/apperr"

	"go.uber.org/zap"
)

// WriteError maps err onto the status code and envelope for its kind.
// Internal errors are checked first so an internal failure wrapping a
// not-found cause still answers 500; they are logged and answered with a
// generic message.
func WriteError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error, notFoundMsg string) {
	switch {
	case errors.Is(err, apperr.ErrInternal):
		logInternal(r, log, err)
		JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Server error", nil)
	case errors.Is(err, apperr.ErrValidation):
		JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", apperr.Message(err, "Invalid input"), nil)
	case errors.Is(err, apperr.ErrNotFound):
		JSONError(w, r, http.StatusNotFound, "NOT_FOUND", apperr.Message(err, notFoundMsg), nil)
	case errors.Is(err, apperr.ErrUnauthorized):
		JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", apperr.Message(err, "Not authorized"), nil)
	case errors.Is(err, apperr.ErrConflict):
		JSONError(w, r, http.StatusBadRequest, "CONFLICT", apperr.Message(err, "Resource already exists"), nil)
	default:
		logInternal(r, log, err)
		JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Server error", nil)
	}
}

func logInternal(r *http.Request, log *zap.Logger, err error) {
	log.Error("request failed",
		zap.String("request_id", RequestIDFrom(r)),
		zap.String("user_id", UserIDFrom(r)),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
}
