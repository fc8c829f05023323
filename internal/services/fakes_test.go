package services

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/models"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/session"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/utils/dcarbon"
)

var (
	testSecret = []byte("services-test-secret")
	farFuture  = time.Now().AddDate(100, 0, 0)
)

type failingFetcher struct{}

func (failingFetcher) Fetch(context.Context, string) ([]byte, error) {
	return nil, errors.New("signature host unreachable")
}

// fakeRemote implements every remote interface the services use. Unset
// function fields return empty results.
type fakeRemote struct {
	mu    sync.Mutex
	calls map[string]int

	login          func(dcarbon.LoginRequest) (*models.LoginResult, error)
	getUser        func(string) (*models.User, error)
	getAgreement   func(string) (*models.Agreement, error)
	acceptTerms    func(dcarbon.AgreementTerms) (*models.Agreement, error)
	uploadSig      func(dcarbon.File) (*models.Agreement, error)
	listFacilities func(url.Values) (*models.FacilityPage, error)
	getFacility    func(string) (*models.Facility, error)
	createFacility func(dcarbon.FacilityKind, any) (*models.Facility, error)
	updateFacility func(string, map[string]any) (*models.Facility, error)
	meters         []models.Meter
	accounts       []models.UtilityAccount
	initiateAuth   func(dcarbon.UtilityAuthRequest) (*dcarbon.UtilityAuthInitiation, error)
	authStatus     func(attempt int) (*models.UtilityAuthStatus, error)
	stats          *models.RECStats
}

func newFakeRemote() *fakeRemote { return &fakeRemote{calls: map[string]int{}} }

func (f *fakeRemote) record(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
	return f.calls[name]
}

func (f *fakeRemote) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeRemote) Login(_ context.Context, req dcarbon.LoginRequest) (*models.LoginResult, error) {
	f.record("Login")
	if f.login != nil {
		return f.login(req)
	}
	return &models.LoginResult{User: models.User{ID: "user-1", Email: req.Email, UserType: models.UserTypeResidential}, Token: "tok-1"}, nil
}

func (f *fakeRemote) GetUser(_ context.Context, userID string) (*models.User, error) {
	f.record("GetUser")
	if f.getUser != nil {
		return f.getUser(userID)
	}
	return &models.User{ID: userID, FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"}, nil
}

func (f *fakeRemote) GetAgreement(_ context.Context, userID string) (*models.Agreement, error) {
	f.record("GetAgreement")
	if f.getAgreement != nil {
		return f.getAgreement(userID)
	}
	return nil, nil
}

func (f *fakeRemote) AcceptAgreementTerms(_ context.Context, userID string, terms dcarbon.AgreementTerms) (*models.Agreement, error) {
	f.record("AcceptAgreementTerms")
	if f.acceptTerms != nil {
		return f.acceptTerms(terms)
	}
	return &models.Agreement{UserID: userID, TermsAccepted: terms.TermsAccepted, PrivacyAccepted: terms.PrivacyAccepted}, nil
}

func (f *fakeRemote) UploadSignature(_ context.Context, _ string, file dcarbon.File) (*models.Agreement, error) {
	f.record("UploadSignature")
	if f.uploadSig != nil {
		return f.uploadSig(file)
	}
	return &models.Agreement{SignatureURL: "https://files.example/sig.png"}, nil
}

func (f *fakeRemote) ListFacilities(_ context.Context, _ string, q url.Values) (*models.FacilityPage, error) {
	f.record("ListFacilities")
	if f.listFacilities != nil {
		return f.listFacilities(q)
	}
	return &models.FacilityPage{}, nil
}

func (f *fakeRemote) GetFacility(_ context.Context, id string) (*models.Facility, error) {
	f.record("GetFacility")
	if f.getFacility != nil {
		return f.getFacility(id)
	}
	return &models.Facility{ID: id, UserID: "user-1"}, nil
}

func (f *fakeRemote) CreateFacility(_ context.Context, _ string, kind dcarbon.FacilityKind, payload any) (*models.Facility, error) {
	f.record("CreateFacility")
	if f.createFacility != nil {
		return f.createFacility(kind, payload)
	}
	return &models.Facility{ID: "fac-new"}, nil
}

func (f *fakeRemote) UpdateFacility(_ context.Context, id string, patch map[string]any) (*models.Facility, error) {
	f.record("UpdateFacility")
	if f.updateFacility != nil {
		return f.updateFacility(id, patch)
	}
	return &models.Facility{ID: id}, nil
}

func (f *fakeRemote) GetFinancialInfo(context.Context, string) (*models.FinancialInfo, error) {
	f.record("GetFinancialInfo")
	return nil, nil
}

func (f *fakeRemote) ListUtilityProviders(context.Context) ([]models.UtilityProvider, error) {
	f.record("ListUtilityProviders")
	return []models.UtilityProvider{{ID: "p1", Name: "PG&E"}}, nil
}

func (f *fakeRemote) ListUtilityAccounts(context.Context, string) ([]models.UtilityAccount, error) {
	f.record("ListUtilityAccounts")
	return f.accounts, nil
}

func (f *fakeRemote) ListMeters(context.Context, string, string) ([]models.Meter, error) {
	f.record("ListMeters")
	return f.meters, nil
}

func (f *fakeRemote) InitiateUtilityAuth(_ context.Context, _ string, req dcarbon.UtilityAuthRequest) (*dcarbon.UtilityAuthInitiation, error) {
	f.record("InitiateUtilityAuth")
	if f.initiateAuth != nil {
		return f.initiateAuth(req)
	}
	return &dcarbon.UtilityAuthInitiation{AuthorizationURL: "https://utility.example/auth"}, nil
}

func (f *fakeRemote) UtilityAuthStatus(context.Context, string, string) (*models.UtilityAuthStatus, error) {
	n := f.record("UtilityAuthStatus")
	if f.authStatus != nil {
		return f.authStatus(n)
	}
	return &models.UtilityAuthStatus{}, nil
}

func (f *fakeRemote) RECStats(context.Context, string) (*models.RECStats, error) {
	f.record("RECStats")
	return f.stats, nil
}

// newSessions returns a SessionService over a fresh in-memory store.
func newSessions(t *testing.T, remote *fakeRemote, forgetters ...SessionForgetter) (SessionService, *session.MemoryStore) {
	t.Helper()
	store := session.NewMemoryStore()
	return NewSessionService(store, remote, testSecret, time.Hour, forgetters...), store
}

// storedSession creates an authenticated session in store and returns its
// snapshot.
func storedSession(t *testing.T, store *session.MemoryStore, userType models.UserType) *models.Session {
	t.Helper()
	s := &models.Session{ID: uuid.New(), ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, session.ApplyLogin(s, &models.LoginResult{
		User:  models.User{ID: "user-1", Email: "ada@example.com", FirstName: "Ada", UserType: userType},
		Token: "tok-1",
	}))
	require.NoError(t, store.Create(context.Background(), s))
	return s
}
