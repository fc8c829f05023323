package services

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/models"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/session"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/utils"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/utils/dcarbon"
)

// MsgUtilityAuthTimeout is shown when polling gives up.
const MsgUtilityAuthTimeout = "Utility authorization timed out. Please complete the authorization with your utility and try again."

// UtilityAPI drives the utility authorization handshake.
type UtilityAPI interface {
	InitiateUtilityAuth(ctx context.Context, userID string, req dcarbon.UtilityAuthRequest) (*dcarbon.UtilityAuthInitiation, error)
	UtilityAuthStatus(ctx context.Context, userID, authEmail string) (*models.UtilityAuthStatus, error)
}

// UtilityInfo is what the session remembers about the last authorization.
type UtilityInfo struct {
	dcarbon.UtilityAuthRequest
	dcarbon.UtilityAuthInitiation
	Authorized bool `json:"authorized"`
}

// PollPolicy bounds the status polling.
type PollPolicy struct {
	Interval time.Duration
	Attempts int
}

type UtilityService interface {
	Authorize(ctx context.Context, sess *models.Session, req dcarbon.UtilityAuthRequest) (*UtilityInfo, error)
	Wait(ctx context.Context, sess *models.Session, authEmail string) (*models.UtilityAuthStatus, error)
}

type utilityService struct {
	api      UtilityAPI
	sessions SessionService
	policy   func() PollPolicy
}

// NewUtilityService reads the poll policy on every Wait so flag changes
// apply without a restart.
func NewUtilityService(api UtilityAPI, sessions SessionService, policy func() PollPolicy) UtilityService {
	return &utilityService{api: api, sessions: sessions, policy: policy}
}

// Authorize starts the authorization and remembers it in the session.
func (s *utilityService) Authorize(ctx context.Context, sess *models.Session, req dcarbon.UtilityAuthRequest) (*UtilityInfo, error) {
	rctx, userID, err := remoteCtx(ctx, sess)
	if err != nil {
		return nil, err
	}
	req.UtilityProvider = strings.TrimSpace(req.UtilityProvider)
	req.UtilityAuthEmail = strings.TrimSpace(strings.ToLower(req.UtilityAuthEmail))

	started, err := s.api.InitiateUtilityAuth(rctx, userID, req)
	if err != nil {
		return nil, err
	}
	info := &UtilityInfo{UtilityAuthRequest: req}
	if started != nil {
		info.UtilityAuthInitiation = *started
	}
	if err := session.SetJSON(sess, session.KeyUtilityInfoResponse, info); err != nil {
		return nil, err
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	return info, nil
}

// Wait polls the status endpoint every Interval for at most Attempts tries.
// A remote error stops polling immediately.
func (s *utilityService) Wait(ctx context.Context, sess *models.Session, authEmail string) (*models.UtilityAuthStatus, error) {
	rctx, userID, err := remoteCtx(ctx, sess)
	if err != nil {
		return nil, err
	}

	var info UtilityInfo
	_, _ = session.GetJSON(sess, session.KeyUtilityInfoResponse, &info)
	authEmail = strings.TrimSpace(strings.ToLower(authEmail))
	if authEmail == "" {
		authEmail = info.UtilityAuthEmail
	}
	if authEmail == "" {
		return nil, utils.NewValidationError("utilityAuthEmail", "Start a utility authorization first")
	}

	p := s.policy()
	if p.Attempts < 1 {
		p.Attempts = 1
	}

	for attempt := 1; attempt <= p.Attempts; attempt++ {
		status, err := s.api.UtilityAuthStatus(rctx, userID, authEmail)
		if err != nil {
			return nil, err
		}
		if status != nil && status.Authorized {
			if info.UtilityAuthEmail == authEmail {
				info.Authorized = true
				if err := session.SetJSON(sess, session.KeyUtilityInfoResponse, info); err == nil {
					if err := s.sessions.Save(ctx, sess); err != nil {
						utils.Logger.WithError(err).Warn("could not save utility authorization")
					}
				}
			}
			return status, nil
		}
		if attempt == p.Attempts {
			break
		}

		t := time.NewTimer(p.Interval)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
	}

	utils.Logger.WithField("userId", userID).Warnf("utility authorization not observed after %d attempts", p.Attempts)
	return nil, &utils.AppError{
		StatusCode: http.StatusGatewayTimeout,
		Code:       utils.ErrCodeTimeout,
		Message:    MsgUtilityAuthTimeout,
		Err:        utils.ErrUtilityAuthTimeout,
	}
}
