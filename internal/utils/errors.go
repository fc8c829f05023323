package utils

import (
	"errors"
	"net/http"
)

// Domain-level errors shared by services and controllers.
var (
	ErrInvalidPhone           = errors.New("invalid_phone")
	ErrMissingSession         = errors.New("missing_session")
	ErrSessionExpired         = errors.New("session_expired")
	ErrRowVersionConflict     = errors.New("row_version_conflict")
	ErrExternalServiceFailure = errors.New("external_service_failure")
	ErrFlowLocked             = errors.New("flow_locked")
	ErrUnknownFlow            = errors.New("unknown_flow")
	ErrUtilityAuthTimeout     = errors.New("utility_auth_timeout")
	ErrNotFound               = errors.New("not_found")
)

// AppError carries an HTTP status and public message from services to controllers.
type AppError struct {
	StatusCode int
	Code       string
	Message    string
	Details    any
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// HandleAppError writes err as a JSON error body. Non-AppErrors become 500s.
func HandleAppError(w http.ResponseWriter, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		RespondErrorWithCode(w, appErr.StatusCode, appErr.Code, appErr.Message, appErr.Details, appErr.Err)
		return
	}
	RespondErrorWithCode(w, http.StatusInternalServerError, ErrCodeInternal, "An unexpected error occurred", nil, err)
}
