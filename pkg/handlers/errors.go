package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/roomboard-io/roomboard-engine/pkg/apperrors"
)

// writeServiceError maps a service error to an HTTP response. Denials
// surface as 404 unless the service chose to expose 403; validation
// messages pass through verbatim since services phrase them for users.
func writeServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var status int
	var code string
	var message string

	var wipErr *apperrors.WIPLimitError
	switch {
	case errors.As(err, &wipErr):
		status, code, message = http.StatusConflict, "wip_limit_reached", wipErr.Error()
	case errors.Is(err, apperrors.ErrLastOwner):
		status, code, message = http.StatusConflict, "last_owner", apperrors.ErrLastOwner.Error()
	case errors.Is(err, apperrors.ErrConflict):
		status, code, message = http.StatusConflict, "conflict", err.Error()
	case errors.Is(err, apperrors.ErrValidation):
		status, code, message = http.StatusBadRequest, "validation_failed", err.Error()
	case errors.Is(err, apperrors.ErrForbidden):
		status, code, message = http.StatusForbidden, "forbidden", "You do not have permission to do that"
	case errors.Is(err, apperrors.ErrNotFound):
		status, code, message = http.StatusNotFound, "not_found", "Resource not found"
	default:
		logger.Error("Unhandled service error", zap.Error(err))
		status, code, message = http.StatusInternalServerError, "internal_error", "Something went wrong"
	}

	if err := ErrorResponse(w, status, code, message); err != nil {
		logger.Error("Failed to write error response", zap.Error(err))
	}
}

// writeInvalidID is the shared response for malformed ids in paths.
func writeInvalidID(w http.ResponseWriter, logger *zap.Logger, what string) {
	if err := ErrorResponse(w, http.StatusBadRequest, "invalid_id", "Invalid "+what+" ID format"); err != nil {
		logger.Error("Failed to write error response", zap.Error(err))
	}
}

// writeInvalidBody is the shared response for undecodable request bodies.
func writeInvalidBody(w http.ResponseWriter, logger *zap.Logger) {
	if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
		logger.Error("Failed to write error response", zap.Error(err))
	}
}
