package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"

	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/middleware"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/models"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/session"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/utils"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/utils/dcarbon"
)

const cleanupRetryDelay = 3 * time.Second

// IssuedSession is a freshly created session and the token that names it.
type IssuedSession struct {
	Session   *models.Session
	Token     string
	ExpiresAt time.Time
}

// LoginAPI is the remote call behind Login.
type LoginAPI interface {
	Login(ctx context.Context, req dcarbon.LoginRequest) (*models.LoginResult, error)
}

// SessionForgetter drops per-session in-memory state on logout and expiry.
type SessionForgetter interface {
	Forget(sessionID string)
	ForgetIdle(cutoff time.Time) int
}

type SessionService interface {
	Start(ctx context.Context) (*IssuedSession, error)
	Login(ctx context.Context, req dcarbon.LoginRequest) (*IssuedSession, *models.User, error)
	Logout(ctx context.Context, sess *models.Session) error
	Save(ctx context.Context, snap *models.Session) error
	CleanupExpired(ctx context.Context) error
}

type sessionService struct {
	store      session.Store
	api        LoginAPI
	secret     []byte
	ttl        time.Duration
	forgetters []SessionForgetter
}

func NewSessionService(
	store session.Store,
	api LoginAPI,
	secret []byte,
	ttl time.Duration,
	forgetters ...SessionForgetter,
) SessionService {
	return &sessionService{
		store:      store,
		api:        api,
		secret:     secret,
		ttl:        ttl,
		forgetters: forgetters,
	}
}

// ----------------------------------------------------------------------------
// Public API
// ----------------------------------------------------------------------------

// Start creates an anonymous session, as opening the site did in the browser.
func (s *sessionService) Start(ctx context.Context) (*IssuedSession, error) {
	return s.issue(ctx, nil)
}

// Login authenticates against the remote API and opens a new session that
// carries the returned identity.
func (s *sessionService) Login(ctx context.Context, req dcarbon.LoginRequest) (*IssuedSession, *models.User, error) {
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	var fields []utils.FieldError
	if req.Email == "" {
		fields = append(fields, utils.FieldError{Field: "email", Message: "Email is required"})
	}
	if req.Password == "" {
		fields = append(fields, utils.FieldError{Field: "password", Message: "Password is required"})
	}
	if err := utils.AsValidationError(fields); err != nil {
		return nil, nil, err
	}

	res, err := s.api.Login(ctx, req)
	if err != nil {
		return nil, nil, err
	}
	issued, err := s.issue(ctx, res)
	if err != nil {
		return nil, nil, err
	}
	utils.Logger.WithField("userId", res.User.ID).Info("portal login")
	return issued, &res.User, nil
}

// Logout deletes the session and forgets any in-memory state tied to it.
func (s *sessionService) Logout(ctx context.Context, sess *models.Session) error {
	if sess == nil {
		return utils.ErrMissingSession
	}
	for _, f := range s.forgetters {
		f.Forget(sess.GetID())
	}
	return s.store.Delete(ctx, sess.GetID())
}

// Save writes a mutated snapshot back. Identity and values replace what is
// stored; concurrent writers to the same key are last-write-wins.
func (s *sessionService) Save(ctx context.Context, snap *models.Session) error {
	return s.store.UpdateWithRetry(ctx, snap.GetID(), func(cur *models.Session) error {
		cur.UserID = snap.UserID
		cur.AuthToken = snap.AuthToken
		cur.UserType = snap.UserType
		cur.PartnerType = snap.PartnerType
		cur.Values = snap.Clone().Values
		return nil
	})
}

// CleanupExpired removes expired sessions, retrying once on a transient
// database error.
func (s *sessionService) CleanupExpired(ctx context.Context) error {
	n, err := s.sweep(ctx)
	if err != nil && isTransient(err) {
		utils.Logger.WithError(err).Warn("session cleanup hit transient DB error; retrying once")
		time.Sleep(cleanupRetryDelay)
		n, err = s.sweep(ctx)
	}
	if err != nil {
		utils.Logger.WithError(err).Error("Failed to cleanup expired portal sessions")
		return err
	}
	idle := 0
	for _, f := range s.forgetters {
		idle += f.ForgetIdle(time.Now().Add(-s.ttl))
	}
	utils.Logger.Infof("Session cleanup removed %d expired sessions and %d idle widgets", n, idle)
	return nil
}

// ----------------------------------------------------------------------------
// internals
// ----------------------------------------------------------------------------

func (s *sessionService) issue(ctx context.Context, login *models.LoginResult) (*IssuedSession, error) {
	now := time.Now()
	sess := &models.Session{
		ID:        uuid.New(),
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if login != nil {
		if err := session.ApplyLogin(sess, login); err != nil {
			return nil, err
		}
	}
	if err := s.store.Create(ctx, sess); err != nil {
		return nil, err
	}
	token, err := middleware.IssueSessionToken(s.secret, sess.ID, sess.ExpiresAt)
	if err != nil {
		return nil, err
	}
	return &IssuedSession{Session: sess, Token: token, ExpiresAt: sess.ExpiresAt}, nil
}

func (s *sessionService) sweep(ctx context.Context) (int64, error) {
	return s.store.DeleteExpired(ctx, time.Now())
}

func isTransient(err error) bool {
	return errors.Is(err, io.EOF) || pgconn.SafeToRetry(err) ||
		strings.Contains(err.Error(), "connection was closed")
}
