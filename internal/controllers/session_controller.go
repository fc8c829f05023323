package controllers

import (
	"net/http"

	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/dtos"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/middleware"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/services"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/utils"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/utils/dcarbon"
)

type SessionController struct {
	sessions services.SessionService
}

func NewSessionController(sessions services.SessionService) *SessionController {
	return &SessionController{sessions: sessions}
}

// ----------------------------------------------------------------
// POST /api/v1/portal/session/login
// ----------------------------------------------------------------
func (c *SessionController) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	issued, user, err := c.sessions.Login(r.Context(), dcarbon.LoginRequest{Email: req.Email, Password: req.Password})
	if err != nil {
		respondError(w, err)
		return
	}

	middleware.SetSessionCookie(w, issued.Token, issued.ExpiresAt)
	utils.RespondWithJSON(w, http.StatusOK, dtos.SessionResponse{
		Token:     issued.Token,
		ExpiresAt: issued.ExpiresAt,
		User:      user,
	})
}

// ----------------------------------------------------------------
// POST /api/v1/portal/session/logout
// ----------------------------------------------------------------
func (c *SessionController) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	if err := c.sessions.Logout(r.Context(), sess); err != nil {
		respondError(w, err)
		return
	}
	middleware.ClearSessionCookie(w)
	utils.RespondWithJSON(w, http.StatusOK, dtos.MessageResponse{Message: "Signed out"})
}
