package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/models"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/session"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/signature"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/utils"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/utils/dcarbon"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/wizard"
)

const maxJSONBody = 1 << 20

var validate = utils.NewValidator()

// respondError maps any service error onto the portal's error responses.
// Remote messages are passed through verbatim; transport failures get a
// generic message.
func respondError(w http.ResponseWriter, err error) {
	var (
		vErr   *utils.ValidationError
		appErr *utils.AppError
		apiErr *dcarbon.APIError
	)
	switch {
	case errors.As(err, &vErr):
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, vErr.Error(), vErr.Fields, err)
	case errors.As(err, &appErr):
		utils.HandleAppError(w, appErr)
	case errors.Is(err, utils.ErrFlowLocked):
		utils.RespondErrorWithCode(w, http.StatusConflict, utils.ErrCodeFlowLocked,
			"The registration type cannot be changed", nil, err)
	case errors.Is(err, utils.ErrUnknownFlow):
		utils.RespondErrorWithCode(w, http.StatusNotFound, utils.ErrCodeNotFound,
			"Unknown registration type", nil, err)
	case errors.Is(err, wizard.ErrNotStarted):
		utils.RespondErrorWithCode(w, http.StatusConflict, utils.ErrCodeConflict,
			"Start a registration first", nil, err)
	case errors.Is(err, wizard.ErrCompleted):
		utils.RespondErrorWithCode(w, http.StatusConflict, utils.ErrCodeConflict,
			"Registration is already complete", nil, err)
	case errors.Is(err, signature.ErrBusy):
		utils.RespondErrorWithCode(w, http.StatusConflict, utils.ErrCodeConflict,
			"A signature upload is already in progress", nil, err)
	case errors.Is(err, utils.ErrMissingSession):
		utils.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeUnauthorized,
			"Your session has ended. Please sign in again.", nil, err)
	case errors.Is(err, utils.ErrRowVersionConflict):
		utils.RespondErrorWithCode(w, http.StatusConflict, utils.ErrCodeRowVersionConflict,
			"Your session was updated elsewhere. Please try again.", nil, err)
	case errors.Is(err, dcarbon.ErrTransport):
		utils.RespondErrorWithCode(w, http.StatusBadGateway, utils.ErrCodeExternalServiceFailure,
			dcarbon.UserMessage(err), nil, err)
	case errors.As(err, &apiErr):
		status := apiErr.StatusCode
		if status < http.StatusBadRequest || status >= http.StatusInternalServerError {
			status = http.StatusBadGateway
		}
		utils.RespondErrorWithCode(w, status, utils.ErrCodeUpstream, dcarbon.UserMessage(err), nil, err)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		utils.RespondErrorWithCode(w, http.StatusGatewayTimeout, utils.ErrCodeTimeout,
			"The request took too long. Please try again.", nil, err)
	default:
		utils.HandleAppError(w, err)
	}
}

// decodeJSON reads an optional JSON body into dst. An empty body leaves dst
// untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload,
			"Invalid JSON payload", nil, err)
		return false
	}
	return true
}

// decodeAndValidate is decodeJSON followed by the struct's validate tags.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if !decodeJSON(w, r, dst) {
		return false
	}
	if err := utils.AsValidationError(utils.FieldErrors(validate.Struct(dst))); err != nil {
		respondError(w, err)
		return false
	}
	return true
}

// currentSession returns the session attached by SessionMiddleware.
func currentSession(w http.ResponseWriter, r *http.Request) (*models.Session, bool) {
	sess := session.FromContext(r.Context())
	if sess == nil {
		respondError(w, utils.ErrMissingSession)
		return nil, false
	}
	return sess, true
}

// readFormFile reads one multipart file field, refusing anything over limit.
func readFormFile(r *http.Request, field string, limit int64) (string, []byte, error) {
	f, hdr, err := r.FormFile(field)
	if err != nil {
		return "", nil, utils.NewValidationError(field, "Please choose a file to upload")
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return "", nil, err
	}
	if int64(len(data)) > limit {
		return "", nil, utils.NewValidationError(field, "File is too large")
	}
	return hdr.Filename, data, nil
}
