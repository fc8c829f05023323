package services

import (
	"context"
	"time"

	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/agreementpdf"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/models"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/session"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/utils"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/utils/dcarbon"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/wizard"
)

// AgreementAPI is the remote surface of the agreement views.
type AgreementAPI interface {
	GetUser(ctx context.Context, userID string) (*models.User, error)
	GetAgreement(ctx context.Context, userID string) (*models.Agreement, error)
	AcceptAgreementTerms(ctx context.Context, userID string, terms dcarbon.AgreementTerms) (*models.Agreement, error)
}

type AgreementService interface {
	Get(ctx context.Context, sess *models.Session) (*models.Agreement, error)
	Accept(ctx context.Context, sess *models.Session, terms dcarbon.AgreementTerms) (*models.Agreement, error)
	Document(ctx context.Context, sess *models.Session) (*agreementpdf.Document, error)
}

type agreementService struct {
	api AgreementAPI
	gen *agreementpdf.Generator
}

func NewAgreementService(api AgreementAPI, gen *agreementpdf.Generator) AgreementService {
	if gen == nil {
		gen = agreementpdf.NewGenerator(nil)
	}
	return &agreementService{api: api, gen: gen}
}

// Get returns the user's agreement record; a user who never accepted gets an
// empty record rather than a 404.
func (s *agreementService) Get(ctx context.Context, sess *models.Session) (*models.Agreement, error) {
	rctx, userID, err := remoteCtx(ctx, sess)
	if err != nil {
		return nil, err
	}
	a, err := s.api.GetAgreement(rctx, userID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		a = &models.Agreement{UserID: userID}
	}
	if a.SignatureURL == "" {
		a.SignatureURL = sessionSignatureURL(sess)
	}
	return a, nil
}

// Accept records acceptance outside the wizard. The same rules apply:
// terms and privacy always, REC for everyone but partners, and a captured
// signature.
func (s *agreementService) Accept(ctx context.Context, sess *models.Session, terms dcarbon.AgreementTerms) (*models.Agreement, error) {
	rctx, userID, err := remoteCtx(ctx, sess)
	if err != nil {
		return nil, err
	}

	var fields []utils.FieldError
	if !terms.TermsAccepted {
		fields = append(fields, utils.FieldError{Field: "termsAccepted", Message: "You must accept the terms and conditions"})
	}
	if !terms.PrivacyAccepted {
		fields = append(fields, utils.FieldError{Field: "privacyAccepted", Message: "You must accept the privacy policy"})
	}
	if sess.UserType != models.UserTypePartner && !terms.RECAccepted {
		fields = append(fields, utils.FieldError{Field: "recAccepted", Message: "You must accept the REC agreement"})
	}
	if _, ok := sess.Values[session.KeySignatureURL]; !ok {
		fields = append(fields, utils.FieldError{Field: "signature", Message: "Please sign the agreement first"})
	}
	if err := utils.AsValidationError(fields); err != nil {
		return nil, err
	}

	return s.api.AcceptAgreementTerms(rctx, userID, terms)
}

// Document renders the agreement PDF for the session's user type with the
// captured signature.
func (s *agreementService) Document(ctx context.Context, sess *models.Session) (*agreementpdf.Document, error) {
	rctx, userID, err := remoteCtx(ctx, sess)
	if err != nil {
		return nil, err
	}

	user, err := s.api.GetUser(rctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, notFound("User not found", utils.ErrNotFound)
	}

	sigURL := sessionSignatureURL(sess)
	if sigURL == "" {
		if a, aErr := s.api.GetAgreement(rctx, userID); aErr == nil && a != nil {
			sigURL = a.SignatureURL
		} else if aErr != nil {
			utils.Logger.WithError(aErr).Warn("agreement lookup failed; rendering unsigned")
		}
	}
	if sigURL == "" {
		sigURL = user.SignatureURL
	}

	userType, partnerType := sess.UserType, sess.PartnerType
	if user.UserType != "" {
		userType, partnerType = user.UserType, user.PartnerType
	}
	tmpl := agreementpdf.TemplateFor(userType, partnerType, wizard.CommercialRole(sess))
	id := agreementpdf.Identity{
		Name:    user.FullName(),
		Company: user.CompanyName,
		Date:    time.Now(),
	}
	return s.gen.Generate(ctx, tmpl, id, sigURL)
}

func sessionSignatureURL(sess *models.Session) string {
	var url string
	if _, err := session.GetJSON(sess, session.KeySignatureURL, &url); err != nil {
		return ""
	}
	return url
}
