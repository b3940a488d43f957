package helpers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"explorewithme/internal/domain"
)

// Error codes for API error responses. Use these with WriteJSONError.
const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeUnauthorized     = "unauthorized"
	ErrCodeForbidden        = "forbidden"
	ErrCodeNotFound         = "not_found"
	ErrCodeValidation       = "validation_failed"
	ErrCodeCapacityExceeded = "capacity_exceeded"
	ErrCodeDateConstraint   = "date_constraint"
	ErrCodeInvalidState     = "invalid_state"
	ErrCodeConflict         = "conflict"
	ErrCodeInternalError    = "internal_error"
)

// RetryAfterSeconds is sent with conflict responses.
const RetryAfterSeconds = "1"

// APIError is the error object in the standardized API response envelope.
// swagger:model APIError
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIResponse is the standardized envelope for all API responses.
// On success: Data is set, Error is nil. On error: Data is nil, Error is set.
// swagger:model APIResponse
type APIResponse struct {
	Data  any       `json:"data"`
	Error *APIError `json:"error"`
}

// WriteJSONSuccess sets Content-Type to application/json, writes statusCode, and
// encodes an APIResponse with the given data and error set to nil.
func WriteJSONSuccess(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(APIResponse{Data: data, Error: nil})
}

// WriteJSONError sets Content-Type to application/json, writes statusCode, and
// encodes an APIResponse with data nil and the given error code and message.
func WriteJSONError(w http.ResponseWriter, statusCode int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(APIResponse{
		Data:  nil,
		Error: &APIError{Code: code, Message: message},
	})
}

// WriteDomainError maps a service error to its HTTP status and error code.
// Unrecognised errors are logged and reported as 500 without their message.
func WriteDomainError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		WriteJSONError(w, http.StatusNotFound, ErrCodeNotFound, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		WriteJSONError(w, http.StatusForbidden, ErrCodeForbidden, err.Error())
	case errors.Is(err, domain.ErrValidation):
		WriteJSONError(w, http.StatusConflict, ErrCodeValidation, err.Error())
	case errors.Is(err, domain.ErrCapacityExceeded):
		WriteJSONError(w, http.StatusConflict, ErrCodeCapacityExceeded, err.Error())
	case errors.Is(err, domain.ErrDateConstraintViolation):
		WriteJSONError(w, http.StatusBadRequest, ErrCodeDateConstraint, err.Error())
	case errors.Is(err, domain.ErrInvalidStateTransition):
		WriteJSONError(w, http.StatusConflict, ErrCodeInvalidState, err.Error())
	case errors.Is(err, domain.ErrConflict):
		w.Header().Set("Retry-After", RetryAfterSeconds)
		WriteJSONError(w, http.StatusConflict, ErrCodeConflict, "event is busy, retry later")
	default:
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		WriteJSONError(w, http.StatusInternalServerError, ErrCodeInternalError, "internal error")
	}
}
