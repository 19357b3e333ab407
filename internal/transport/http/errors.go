package http

import (
	"encoding/json"
	"net/http"

	"github.com/talasbekov/rental-project-sub000/internal/domain"
)

const (
	codeMethodNotAllowed     = "method_not_allowed"
	codeNotFound             = "not_found"
	codeForbidden            = "forbidden"
	codeInvalidRequestBody   = "invalid_request_body"
	codeValidationFailed     = "validation_failed"
	codeInvalidDate          = "invalid_date"
	codeInvalidRange         = "invalid_range"
	codeNotAvailable         = "not_available"
	codeLockTimeout          = "lock_timeout"
	codeInvalidID            = "invalid_id"
	codeResourceNotFound     = "resource_not_found"
	codeReservationNotFound  = "reservation_not_found"
	codeHoldExpired          = "hold_expired"
	codeInvalidTransition    = "invalid_transition"
	codeResourceNameRequired = "resource_name_required"
	codeInvalidDailyRate     = "invalid_daily_rate"
	codeInvalidStatus        = "invalid_status"
	codeInternalError        = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

// writeDomainError maps the engine's error taxonomy onto HTTP. NotAvailable
// is a conflict the caller resolves by changing dates; LockTimeout is the
// only retryable conflict.
func writeDomainError(w http.ResponseWriter, err error) {
	switch err {
	case domain.ErrInvalidRange:
		writeError(w, http.StatusBadRequest, codeInvalidRange, err.Error())
	case domain.ErrInvalidID:
		writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
	case domain.ErrInvalidStatus:
		writeError(w, http.StatusBadRequest, codeInvalidStatus, err.Error())
	case domain.ErrResourceNameRequired:
		writeError(w, http.StatusBadRequest, codeResourceNameRequired, err.Error())
	case domain.ErrInvalidDailyRate:
		writeError(w, http.StatusBadRequest, codeInvalidDailyRate, err.Error())
	case domain.ErrResourceNotFound:
		writeError(w, http.StatusNotFound, codeResourceNotFound, err.Error())
	case domain.ErrReservationNotFound:
		writeError(w, http.StatusNotFound, codeReservationNotFound, err.Error())
	case domain.ErrNotAvailable:
		writeError(w, http.StatusConflict, codeNotAvailable, err.Error())
	case domain.ErrHoldExpired:
		writeError(w, http.StatusConflict, codeHoldExpired, err.Error())
	case domain.ErrInvalidTransition:
		writeError(w, http.StatusConflict, codeInvalidTransition, err.Error())
	case domain.ErrLockTimeout:
		writeError(w, http.StatusServiceUnavailable, codeLockTimeout, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}
