package services

import (
	"context"
	"net/http"

	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/models"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/utils"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/utils/dcarbon"
)

// remoteCtx returns ctx carrying the session's API token and the user id.
// Anonymous sessions get a 401 AppError.
func remoteCtx(ctx context.Context, sess *models.Session) (context.Context, string, error) {
	if !sess.Authenticated() {
		return nil, "", loginRequired()
	}
	return dcarbon.ContextWithToken(ctx, sess.AuthToken), sess.UserID, nil
}

func loginRequired() error {
	return &utils.AppError{
		StatusCode: http.StatusUnauthorized,
		Code:       utils.ErrCodeUnauthorized,
		Message:    "Please log in to continue",
		Err:        utils.ErrMissingSession,
	}
}

func forbidden(msg string) error {
	return &utils.AppError{StatusCode: http.StatusForbidden, Code: utils.ErrCodeUnauthorized, Message: msg}
}

func notFound(msg string, err error) error {
	return &utils.AppError{StatusCode: http.StatusNotFound, Code: utils.ErrCodeNotFound, Message: msg, Err: err}
}
