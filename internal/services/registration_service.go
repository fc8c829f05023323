package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/models"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/session"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/utils"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/wizard"
)

const maxFinancialAgreementBytes = 10 << 20

var financialAgreementTypes = []string{
	"application/pdf",
	"image/jpeg",
	"image/png",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// StartResult is a new session positioned at the first wizard step.
type StartResult struct {
	Issued *IssuedSession
	View   wizard.View
}

type RegistrationService interface {
	Start(ctx context.Context, typeParam, referral string) (*StartResult, error)
	View(ctx context.Context, sess *models.Session, flow wizard.Flow) (wizard.View, error)
	Advance(ctx context.Context, sess *models.Session, flow wizard.Flow, stepData json.RawMessage) (wizard.View, error)
	Back(ctx context.Context, sess *models.Session, flow wizard.Flow) (wizard.View, error)
	StageFinancialAgreement(ctx context.Context, sess *models.Session, filename string, data []byte) (*session.TempFile, error)
}

type registrationService struct {
	engine     *wizard.Engine
	sessions   SessionService
	agreements AgreementService
	notifier   NotificationService
}

func NewRegistrationService(
	engine *wizard.Engine,
	sessions SessionService,
	agreements AgreementService,
	notifier NotificationService,
) RegistrationService {
	return &registrationService{
		engine:     engine,
		sessions:   sessions,
		agreements: agreements,
		notifier:   notifier,
	}
}

// ----------------------------------------------------------------------------
// Public API
// ----------------------------------------------------------------------------

// Start opens a fresh session and wizard from an entry link.
func (s *registrationService) Start(ctx context.Context, typeParam, referral string) (*StartResult, error) {
	issued, err := s.sessions.Start(ctx)
	if err != nil {
		return nil, err
	}
	sess := issued.Session
	st, err := s.engine.Start(sess, strings.TrimSpace(typeParam), strings.TrimSpace(referral))
	if err != nil {
		_ = s.sessions.Logout(ctx, sess)
		return nil, err
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	return &StartResult{Issued: issued, View: s.view(ctx, sess, st)}, nil
}

// View selects flow (when it differs from the current one and switching is
// allowed) and returns the current position.
func (s *registrationService) View(ctx context.Context, sess *models.Session, flow wizard.Flow) (wizard.View, error) {
	st, err := s.selectFlow(ctx, sess, flow)
	if err != nil {
		return wizard.View{}, err
	}
	return s.view(ctx, sess, st), nil
}

// Advance submits the current step. The session is saved whether the remote
// call succeeded or not, since step data is kept across failures.
func (s *registrationService) Advance(ctx context.Context, sess *models.Session, flow wizard.Flow, stepData json.RawMessage) (wizard.View, error) {
	if _, err := s.selectFlow(ctx, sess, flow); err != nil {
		return wizard.View{}, err
	}
	before, err := s.engine.Load(sess)
	if err != nil {
		return wizard.View{}, err
	}

	st, advErr := s.engine.Advance(ctx, sess, stepData)
	if saveErr := s.sessions.Save(ctx, sess); saveErr != nil {
		return wizard.View{}, saveErr
	}
	if st == nil {
		st = before
	}
	view := s.view(ctx, sess, st)
	if advErr != nil {
		return view, advErr
	}

	if st.Completed && !before.Completed {
		s.onComplete(ctx, sess)
	}
	return view, nil
}

func (s *registrationService) Back(ctx context.Context, sess *models.Session, flow wizard.Flow) (wizard.View, error) {
	if _, err := s.selectFlow(ctx, sess, flow); err != nil {
		return wizard.View{}, err
	}
	st, err := s.engine.Back(sess)
	if err != nil {
		return wizard.View{}, err
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return wizard.View{}, err
	}
	return s.view(ctx, sess, st), nil
}

// StageFinancialAgreement keeps a chosen finance agreement in the session
// until the financial step uploads it. Picking a new file discards any
// earlier upload.
func (s *registrationService) StageFinancialAgreement(ctx context.Context, sess *models.Session, filename string, data []byte) (*session.TempFile, error) {
	if len(data) == 0 {
		return nil, utils.NewValidationError("financialAgreement", "Please choose a file to upload")
	}
	if len(data) > maxFinancialAgreementBytes {
		return nil, utils.NewValidationError("financialAgreement", "File must be 10 MB or smaller")
	}
	mt := mimetype.Detect(data)
	if !mimetype.EqualsAny(mt.String(), financialAgreementTypes...) {
		return nil, utils.NewValidationError("financialAgreement", "File must be a PDF, Word document or image")
	}

	name := filepath.Base(strings.TrimSpace(filename))
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "financial-agreement" + mt.Extension()
	}
	tf := session.NewTempFile(name, mt.String(), data)
	if err := session.SetTempFinancialAgreement(sess, tf); err != nil {
		return nil, err
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	return &tf, nil
}

// ----------------------------------------------------------------------------
// internals
// ----------------------------------------------------------------------------

// view renders st with the current step's dropdown options.
func (s *registrationService) view(ctx context.Context, sess *models.Session, st *wizard.State) wizard.View {
	v := wizard.NewView(sess, st)
	v.Options = s.engine.Options(ctx, sess, st)
	return v
}

func (s *registrationService) selectFlow(ctx context.Context, sess *models.Session, flow wizard.Flow) (*wizard.State, error) {
	cur, err := s.engine.Load(sess)
	if err != nil && !errors.Is(err, wizard.ErrNotStarted) {
		return nil, err
	}
	if cur != nil && cur.Flow == flow {
		return cur, nil
	}
	st, err := s.engine.Select(sess, flow)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	return st, nil
}

// onComplete sends the completion email. Failures are logged only; the
// registration itself already succeeded.
func (s *registrationService) onComplete(ctx context.Context, sess *models.Session) {
	utils.Logger.WithField("userId", sess.UserID).Info("registration completed")
	if s.notifier == nil || !s.notifier.Enabled() {
		return
	}

	var user models.User
	if ok, err := session.GetJSON(sess, session.KeyLoginResponse, &user); err != nil || !ok {
		utils.Logger.WithError(err).Warn("completion email skipped: no user in session")
		return
	}
	doc, err := s.agreements.Document(ctx, sess)
	if err != nil {
		utils.Logger.WithError(err).Warn("completion email: agreement PDF unavailable")
		doc = nil
	}
	if err := s.notifier.SendRegistrationComplete(ctx, &user, doc); err != nil {
		utils.Logger.WithError(fmt.Errorf("completion email: %w", err)).Error("failed to send completion email")
	}
}
