package services

import (
	"context"

	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/models"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/session"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/signature"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/utils"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/utils/dcarbon"
)

// SignatureAPI uploads the captured signature image.
type SignatureAPI interface {
	UploadSignature(ctx context.Context, userID string, f dcarbon.File) (*models.Agreement, error)
}

// SignatureInput is one capture in any mode. Strokes replace whatever was
// drawn before.
type SignatureInput struct {
	Mode    signature.Mode
	Strokes [][]signature.Point
	Text    string
	Upload  []byte
}

type SignatureService interface {
	SessionForgetter
	Submit(ctx context.Context, sess *models.Session, in SignatureInput) (signature.Snapshot, error)
	Progress(sess *models.Session) signature.Snapshot
}

type signatureService struct {
	*sessionCache[*signature.Widget]
	api      SignatureAPI
	sessions SessionService
}

func NewSignatureService(api SignatureAPI, sessions SessionService, opts ...signature.Option) SignatureService {
	return &signatureService{
		sessionCache: newSessionCache(func() *signature.Widget { return signature.NewWidget(opts...) }),
		api:          api,
		sessions:     sessions,
	}
}

// Submit captures the signature in the requested mode and uploads it. On
// success the hosted URL is saved in the session, which unlocks the
// agreement step.
func (s *signatureService) Submit(ctx context.Context, sess *models.Session, in SignatureInput) (signature.Snapshot, error) {
	rctx, userID, err := remoteCtx(ctx, sess)
	if err != nil {
		return signature.Snapshot{}, err
	}
	w := s.get(sess.GetID())

	if err := capture(w, in); err != nil {
		return w.Snapshot(), err
	}

	url, err := w.Submit(rctx, func(ctx context.Context, f dcarbon.File) (string, error) {
		a, err := s.api.UploadSignature(ctx, userID, f)
		if err != nil {
			return "", err
		}
		if a == nil {
			return "", nil
		}
		return a.SignatureURL, nil
	})
	if err != nil {
		return w.Snapshot(), err
	}

	if err := session.SetJSON(sess, session.KeySignatureURL, url); err != nil {
		return w.Snapshot(), err
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return w.Snapshot(), err
	}
	utils.Logger.WithField("userId", userID).Info("signature uploaded")
	return w.Snapshot(), nil
}

// Progress reports the widget of the session without creating one.
func (s *signatureService) Progress(sess *models.Session) signature.Snapshot {
	w, ok := s.peek(sess.GetID())
	if !ok {
		return signature.Snapshot{Mode: signature.ModeDraw, Status: signature.StatusIdle}
	}
	return w.Snapshot()
}

func capture(w *signature.Widget, in SignatureInput) error {
	switch in.Mode {
	case signature.ModeType:
		return w.Type(in.Text)
	case signature.ModeUpload:
		if len(in.Upload) == 0 {
			return utils.NewValidationError("signature", signature.MsgUploadRequired)
		}
		return w.Upload(in.Upload)
	default:
		if err := w.Clear(); err != nil {
			return err
		}
		return w.Draw(in.Strokes)
	}
}

var _ SessionForgetter = (*sessionCache[*signature.Widget])(nil)
