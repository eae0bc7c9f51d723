package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/domain/apperr"
	ratesvc "github.com/Brahim-Amzil/3arida-sub004/backend/internal/services/rate"
)

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type RateLimitError struct {
	Code          string `json:"code"`
	Message       string `json:"message"`
	RetryAfterSec int64  `json:"retry_after_sec"`
}

func Write(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// WriteError maps a service error onto a status code and a user safe body.
func WriteError(w http.ResponseWriter, err error) {
	status, code := Classify(err)
	msg := apperr.Message(err)

	if status == http.StatusTooManyRequests {
		var limited *ratesvc.LimitedError
		retry := int64(0)
		if stderrors.As(err, &limited) {
			retry = limited.RetryAfterSec
		}
		Write(w, status, RateLimitError{Code: code, Message: msg, RetryAfterSec: retry})
		return
	}

	body := APIError{Code: code, Message: msg}
	var verr *apperr.ValidationError
	if stderrors.As(err, &verr) {
		body.Field = verr.Field
	}
	Write(w, status, body)
}

func Classify(err error) (int, string) {
	switch {
	case stderrors.Is(err, apperr.ErrValidation):
		return http.StatusBadRequest, "VALIDATION_ERROR"
	case stderrors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case stderrors.Is(err, apperr.ErrUnauthorizedAccess):
		return http.StatusForbidden, "FORBIDDEN"
	case stderrors.Is(err, apperr.ErrInvalidPetitionState):
		return http.StatusConflict, "INVALID_PETITION_STATE"
	case stderrors.Is(err, apperr.ErrDuplicateOpenAppeal):
		return http.StatusConflict, "DUPLICATE_OPEN_APPEAL"
	case stderrors.Is(err, apperr.ErrInvalidTransition):
		return http.StatusConflict, "INVALID_TRANSITION"
	case stderrors.Is(err, apperr.ErrConflict):
		return http.StatusConflict, "CONFLICT"
	case stderrors.Is(err, apperr.ErrAppealClosed):
		return http.StatusConflict, "APPEAL_CLOSED"
	case stderrors.Is(err, apperr.ErrDuplicateSignature):
		return http.StatusConflict, "ALREADY_SIGNED"
	case stderrors.Is(err, apperr.ErrRateLimited):
		return http.StatusTooManyRequests, "RATE_LIMITED"
	case stderrors.Is(err, apperr.ErrDependencyFailure):
		return http.StatusServiceUnavailable, "DEPENDENCY_FAILURE"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}
