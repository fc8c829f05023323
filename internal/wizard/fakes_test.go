package wizard

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/facility"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/models"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/utils/dcarbon"
)

// fakeAPI records every call. Set the *Err fields to fail a call.
type fakeAPI struct {
	mu    sync.Mutex
	calls map[string]int

	registerReferral string
	financialInfo    *models.FinancialInfo
	owners           []models.Owner
	financeTypes     []dcarbon.FinanceType
	installers       []dcarbon.Installer

	uploadErr     error
	financialErr  error
	commercialErr error
	listErr       error
}

func newFakeAPI() *fakeAPI { return &fakeAPI{calls: map[string]int{}} }

func (f *fakeAPI) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
}

func (f *fakeAPI) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeAPI) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeAPI) Register(_ context.Context, req dcarbon.RegisterRequest, referral string) (*models.LoginResult, error) {
	f.record("Register")
	f.registerReferral = referral
	return &models.LoginResult{
		User:  models.User{ID: "user-1", Email: req.Email, UserType: req.UserType},
		Token: "token-1",
	}, nil
}

func (f *fakeAPI) UpdateCommercialDetails(context.Context, string, dcarbon.CommercialDetails) error {
	f.record("UpdateCommercialDetails")
	return f.commercialErr
}

func (f *fakeAPI) UpdateOwners(_ context.Context, _ string, owners []models.Owner) error {
	f.record("UpdateOwners")
	f.owners = owners
	return nil
}

func (f *fakeAPI) UpdatePartnerDetails(context.Context, string, dcarbon.PartnerDetails) error {
	f.record("UpdatePartnerDetails")
	return nil
}

func (f *fakeAPI) UpdateFinancialInfo(_ context.Context, _ string, info models.FinancialInfo) (*models.FinancialInfo, error) {
	f.record("UpdateFinancialInfo")
	if f.financialErr != nil {
		return nil, f.financialErr
	}
	f.financialInfo = &info
	return &info, nil
}

func (f *fakeAPI) UploadFinancialAgreement(context.Context, string, dcarbon.File) (*dcarbon.UploadResult, error) {
	f.record("UploadFinancialAgreement")
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	return &dcarbon.UploadResult{URL: "https://files.example/loan.pdf"}, nil
}

func (f *fakeAPI) AcceptAgreementTerms(_ context.Context, userID string, terms dcarbon.AgreementTerms) (*models.Agreement, error) {
	f.record("AcceptAgreementTerms")
	return &models.Agreement{UserID: userID, TermsAccepted: terms.TermsAccepted, PrivacyAccepted: terms.PrivacyAccepted}, nil
}

func (f *fakeAPI) ListFinanceTypes(context.Context) ([]dcarbon.FinanceType, error) {
	f.record("ListFinanceTypes")
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.financeTypes, nil
}

func (f *fakeAPI) ListInstallers(context.Context) ([]dcarbon.Installer, error) {
	f.record("ListInstallers")
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.installers, nil
}

type fakeCreator struct {
	calls int
	kind  dcarbon.FacilityKind
	in    *facility.Input
}

func (c *fakeCreator) Create(_ context.Context, _ string, kind dcarbon.FacilityKind, in *facility.Input) (*models.Facility, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	c.calls++
	c.kind = kind
	c.in = in
	return &models.Facility{ID: "f1"}, nil
}

func newSession() *models.Session {
	return &models.Session{ID: uuid.New()}
}

func authedSession() *models.Session {
	s := newSession()
	s.UserID = "user-1"
	s.AuthToken = "token-1"
	return s
}

// fakeForms serves one confirmed facility form per session.
type fakeForms struct {
	forms     map[string]facility.FormSnapshot
	forgotten []string
}

func confirmedForm(sess *models.Session) *fakeForms {
	return &fakeForms{forms: map[string]facility.FormSnapshot{
		sess.GetID(): {
			State:     facility.FormReady,
			AuthEmail: "ops@acme.co",
			Meters: []models.Meter{
				{UID: "m1", ServiceClass: "electric", ServiceAddress: "9 Meter Ln"},
				{UID: "m2", ServiceClass: "electric", ServiceAddress: "10 Meter Ln"},
			},
			MeterID: "m1",
		},
	}}
}

func (f *fakeForms) FormFor(sessionID string) (facility.FormSnapshot, bool) {
	s, ok := f.forms[sessionID]
	return s, ok
}

func (f *fakeForms) Forget(sessionID string) {
	f.forgotten = append(f.forgotten, sessionID)
	delete(f.forms, sessionID)
}
