package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/constants"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/session"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/utils"
)

// SessionMiddleware loads the portal session named by the request's token
// and attaches it to the request context. Requests without a valid, live
// session get a 401.
//   - browsers send the token in SessionCookieName
//   - other clients send Authorization: Bearer ...
func SessionMiddleware(store session.Store, secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr, err := extractSessionToken(r)
			if err != nil {
				utils.RespondErrorWithCode(
					w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, err.Error(), nil,
				)
				return
			}

			sessionID, vErr := ValidateSessionToken(tokenStr, secret)
			if vErr != nil {
				if errors.Is(vErr, jwt.ErrTokenExpired) {
					utils.RespondErrorWithCode(
						w, http.StatusUnauthorized, utils.ErrCodeTokenExpired, "Session expired", nil, vErr,
					)
					return
				}
				utils.RespondErrorWithCode(
					w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid session token", nil, vErr,
				)
				return
			}

			sess, err := store.GetByID(r.Context(), sessionID)
			if err != nil {
				utils.RespondErrorWithCode(
					w, http.StatusInternalServerError, utils.ErrCodeInternal, "Could not load session", nil, err,
				)
				return
			}
			if sess == nil {
				utils.RespondErrorWithCode(
					w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Session not found", nil,
				)
				return
			}
			if sess.Expired(time.Now()) {
				utils.RespondErrorWithCode(
					w, http.StatusUnauthorized, utils.ErrCodeTokenExpired, "Session expired", nil,
				)
				return
			}

			next.ServeHTTP(w, r.WithContext(session.WithSession(r.Context(), sess)))
		})
	}
}

// RequireLogin rejects sessions that carry no remote API identity. It must
// run after SessionMiddleware.
func RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !session.FromContext(r.Context()).Authenticated() {
			utils.RespondErrorWithCode(
				w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Please log in to continue", nil,
			)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func extractSessionToken(r *http.Request) (string, error) {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer "), nil
	}
	if c, err := r.Cookie(constants.SessionCookieName); err == nil && c.Value != "" {
		return c.Value, nil
	}
	return "", errors.New("missing session token")
}

// SetSessionCookie writes the session token for browser clients.
func SetSessionCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the browser's session cookie.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
}
