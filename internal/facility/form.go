package facility

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/models"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/utils"
)

// FormState is the dependent-dropdown state of a facility form.
type FormState string

const (
	FormIdle             FormState = "idle"
	FormLoadingProviders FormState = "loading_providers"
	FormLoadingAccounts  FormState = "loading_accounts"
	FormLoadingMeters    FormState = "loading_meters"
	FormReady            FormState = "ready"
)

const (
	noticeProviders = "Could not load utility providers"
	noticeAccounts  = "Could not load utility accounts"
	noticeMeters    = "Could not load meters"
)

var (
	ErrNoAccountSelected = errors.New("no utility account selected")
	ErrUnknownMeter      = errors.New("unknown meter")
)

// DropdownSource resolves the chained dropdown data.
type DropdownSource interface {
	ListUtilityProviders(ctx context.Context) ([]models.UtilityProvider, error)
	ListUtilityAccounts(ctx context.Context, userID string) ([]models.UtilityAccount, error)
	ListMeters(ctx context.Context, userID, authEmail string) ([]models.Meter, error)
}

// FormSnapshot is the serialisable view of a Form.
type FormSnapshot struct {
	State         FormState                `json:"state"`
	Providers     []models.UtilityProvider `json:"providers"`
	Accounts      []models.UtilityAccount  `json:"accounts"`
	Meters        []models.Meter           `json:"meters"`
	AuthEmail     string                   `json:"utilityAuthEmail,omitempty"`
	MeterID       string                   `json:"meterId,omitempty"`
	SameAddress   *bool                    `json:"sameAddress,omitempty"`
	Address       string                   `json:"address"`
	AddressLocked bool                     `json:"addressLocked"`
	Notices       []string                 `json:"notices,omitempty"`
}

// Form drives provider → account → meter loading for one create/edit form.
// Every selection change starts a new generation and cancels the request of
// the previous one; results from an old generation are dropped.
type Form struct {
	src    DropdownSource
	userID string

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
	snap   FormSnapshot
}

func NewForm(src DropdownSource, userID string) *Form {
	return &Form{src: src, userID: userID, snap: FormSnapshot{State: FormIdle}}
}

func (f *Form) Snapshot() FormSnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.copySnap()
}

// Open loads providers then accounts. Load failures degrade to empty lists
// with a notice.
func (f *Form) Open(ctx context.Context) FormSnapshot {
	gen, rctx := f.begin(ctx, func(s *FormSnapshot) {
		*s = FormSnapshot{State: FormLoadingProviders}
	})
	defer f.end(gen)

	providers, err := f.src.ListUtilityProviders(rctx)
	if !f.apply(gen, func(s *FormSnapshot) {
		s.Providers = orEmpty(providers, err, s, noticeProviders)
		s.State = FormLoadingAccounts
	}) {
		return f.Snapshot()
	}

	accounts, err := f.src.ListUtilityAccounts(rctx, f.userID)
	f.apply(gen, func(s *FormSnapshot) {
		s.Accounts = orEmpty(accounts, err, s, noticeAccounts)
		s.Meters = []models.Meter{}
		s.State = FormReady
	})
	return f.Snapshot()
}

// SelectAccount loads the electric meters of the account keyed by authEmail.
// The meter selection and address confirmation are reset.
func (f *Form) SelectAccount(ctx context.Context, authEmail string) FormSnapshot {
	gen, rctx := f.begin(ctx, func(s *FormSnapshot) {
		s.State = FormLoadingMeters
		s.AuthEmail = authEmail
		s.Meters = nil
		s.MeterID = ""
		s.SameAddress = nil
		s.Address = ""
		s.AddressLocked = false
	})
	defer f.end(gen)

	meters, err := f.src.ListMeters(rctx, f.userID, authEmail)
	f.apply(gen, func(s *FormSnapshot) {
		s.Meters = electricOnly(orEmpty(meters, err, s, noticeMeters))
		s.State = FormReady
	})
	return f.Snapshot()
}

// SelectMeter picks one of the loaded meters.
func (f *Form) SelectMeter(meterID string) (FormSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.snap.AuthEmail == "" {
		return f.copySnap(), ErrNoAccountSelected
	}
	if findMeter(f.snap.Meters, meterID) == nil {
		return f.copySnap(), ErrUnknownMeter
	}
	f.snap.MeterID = meterID
	f.snap.SameAddress = nil
	f.snap.Address = ""
	f.snap.AddressLocked = false
	return f.copySnap(), nil
}

// ConfirmAddress records whether the installation address equals the meter's
// service address. Same → auto-filled and locked; otherwise manual is used.
func (f *Form) ConfirmAddress(same bool, manual string) (FormSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if same {
		m := findMeter(f.snap.Meters, f.snap.MeterID)
		if m == nil {
			return f.copySnap(), utils.NewValidationError("meterId", "Select a meter first")
		}
		f.snap.Address = m.ServiceAddress
		f.snap.AddressLocked = true
	} else {
		f.snap.Address = strings.TrimSpace(manual)
		f.snap.AddressLocked = false
	}
	f.snap.SameAddress = utils.Ptr(same)
	return f.copySnap(), nil
}

func (f *Form) begin(ctx context.Context, reset func(*FormSnapshot)) (uint64, context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cancel != nil {
		f.cancel()
	}
	f.gen++
	rctx, cancel := context.WithCancel(ctx)
	f.cancel = cancel
	reset(&f.snap)
	return f.gen, rctx
}

func (f *Form) end(gen uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.gen == gen && f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
}

// apply runs mutate only if gen is still current.
func (f *Form) apply(gen uint64, mutate func(*FormSnapshot)) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.gen {
		return false
	}
	mutate(&f.snap)
	return true
}

func (f *Form) copySnap() FormSnapshot {
	cp := f.snap
	cp.Providers = cloneSlice(f.snap.Providers)
	cp.Accounts = cloneSlice(f.snap.Accounts)
	cp.Meters = cloneSlice(f.snap.Meters)
	cp.Notices = cloneSlice(f.snap.Notices)
	return cp
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append(make([]T, 0, len(s)), s...)
}

func orEmpty[T any](items []T, err error, s *FormSnapshot, notice string) []T {
	if err != nil {
		utils.Logger.WithError(err).Warn(notice)
		s.Notices = append(s.Notices, notice)
		return []T{}
	}
	if items == nil {
		return []T{}
	}
	return items
}

func electricOnly(in []models.Meter) []models.Meter {
	out := make([]models.Meter, 0, len(in))
	for _, m := range in {
		if m.IsElectric() {
			out = append(out, m)
		}
	}
	return out
}

func findMeter(ms []models.Meter, uid string) *models.Meter {
	for i := range ms {
		if ms[i].UID == uid {
			return &ms[i]
		}
	}
	return nil
}
