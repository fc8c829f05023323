package wizard

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/facility"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/models"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/session"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/utils"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/utils/dcarbon"
)

var (
	ErrNotStarted = errors.New("registration not started")
	ErrCompleted  = errors.New("registration already completed")
)

// ValidationError lists field messages for a rejected step.
type ValidationError = utils.ValidationError

var validate = utils.NewValidator()

// API is the subset of the remote API the steps call.
type API interface {
	Register(ctx context.Context, req dcarbon.RegisterRequest, referralCode string) (*models.LoginResult, error)
	UpdateCommercialDetails(ctx context.Context, userID string, d dcarbon.CommercialDetails) error
	UpdateOwners(ctx context.Context, userID string, owners []models.Owner) error
	UpdatePartnerDetails(ctx context.Context, userID string, d dcarbon.PartnerDetails) error
	UpdateFinancialInfo(ctx context.Context, userID string, info models.FinancialInfo) (*models.FinancialInfo, error)
	UploadFinancialAgreement(ctx context.Context, userID string, f dcarbon.File) (*dcarbon.UploadResult, error)
	AcceptAgreementTerms(ctx context.Context, userID string, terms dcarbon.AgreementTerms) (*models.Agreement, error)
	ListFinanceTypes(ctx context.Context) ([]dcarbon.FinanceType, error)
	ListInstallers(ctx context.Context) ([]dcarbon.Installer, error)
}

// FacilityCreator submits the final facility step.
type FacilityCreator interface {
	Create(ctx context.Context, userID string, kind dcarbon.FacilityKind, in *facility.Input) (*models.Facility, error)
}

// FormLookup finds the facility form confirmed in the session and drops it
// once the facility exists.
type FormLookup interface {
	facility.FormLookup
	Forget(sessionID string)
}

// Engine runs wizard transitions against a session snapshot. It never
// persists the session itself; callers save the mutated snapshot.
type Engine struct {
	api        API
	facilities FacilityCreator
	forms      FormLookup
	phones     utils.PhoneVerifier
}

// NewEngine wires the steps' collaborators. A nil phones falls back to
// syntax-only checking. With a nil forms the facility step is always refused.
func NewEngine(api API, facilities FacilityCreator, forms FormLookup, phones utils.PhoneVerifier) *Engine {
	if phones == nil {
		phones = utils.SyntaxOnlyPhoneVerifier{}
	}
	return &Engine{api: api, facilities: facilities, forms: forms, phones: phones}
}

// Start begins a new wizard from the registration entry link. A non-empty
// typeParam selects and locks the flow; referral pre-fills a locked
// referralCode.
func (e *Engine) Start(sess *models.Session, typeParam, referral string) (*State, error) {
	st := &State{Flow: FlowResidential, Seeds: map[string]string{}}
	if typeParam != "" {
		ent, err := lookupEntry(typeParam)
		if err != nil {
			return nil, err
		}
		st.Flow = ent.flow
		st.FlowLocked = true
		for k, v := range ent.seeds {
			st.Seeds[k] = v
		}
	}
	if referral != "" {
		st.Seeds["referralCode"] = referral
	}
	if len(st.Seeds) == 0 {
		st.Seeds = nil
	}
	if err := saveState(sess, st); err != nil {
		return nil, err
	}
	return st, nil
}

// Load returns the current state, or ErrNotStarted.
func (e *Engine) Load(sess *models.Session) (*State, error) {
	st, err := loadState(sess)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, ErrNotStarted
	}
	return st, nil
}

// Select switches to flow. Switching is refused once the flow is locked by a
// deep link or the account has been created.
func (e *Engine) Select(sess *models.Session, flow Flow) (*State, error) {
	if _, ok := flowSteps[flow]; !ok {
		return nil, utils.ErrUnknownFlow
	}
	st, err := loadState(sess)
	if err != nil {
		return nil, err
	}
	if st == nil {
		st = &State{Flow: flow}
	}
	if st.Flow == flow {
		return st, saveState(sess, st)
	}
	if st.FlowLocked || sess.Authenticated() {
		return nil, utils.ErrFlowLocked
	}
	st.Flow = flow
	st.Step = 0
	st.Completed = false
	return st, saveState(sess, st)
}

// Advance validates stepData for the current step, saves it into the session,
// calls the remote API and moves to the next step on success. Field
// validation failures return *ValidationError without any network call;
// remote failures leave the step unchanged.
func (e *Engine) Advance(ctx context.Context, sess *models.Session, stepData json.RawMessage) (*State, error) {
	st, err := e.Load(sess)
	if err != nil {
		return nil, err
	}
	if st.Completed {
		return st, ErrCompleted
	}

	stepName := st.StepName()
	form := newForm(st.Flow, stepName)
	if form == nil {
		return st, utils.ErrUnknownFlow
	}

	merged, err := mergeSeeds(stepData, st.Seeds, form)
	if err != nil {
		return st, err
	}
	if err := json.Unmarshal(merged, form); err != nil {
		return st, utils.NewValidationError("", "Invalid form data")
	}
	if n, ok := form.(normalizer); ok {
		n.normalize()
	}

	env := &stepEnv{flow: st.Flow, sess: sess, eng: e}
	if err := utils.AsValidationError(form.validate(env)); err != nil {
		return st, err
	}

	saved := form
	if r, ok := form.(redactor); ok {
		saved = r.redacted()
	}
	if err := session.SetJSON(sess, session.WizardStepKey(string(st.Flow), stepName), saved); err != nil {
		return st, err
	}

	callCtx := ctx
	if sess.AuthToken != "" {
		callCtx = dcarbon.ContextWithToken(ctx, sess.AuthToken)
	}
	if err := form.submit(callCtx, env); err != nil {
		utils.Logger.WithError(err).WithField("flow", st.Flow).WithField("step", stepName).
			Warn("wizard step submit failed")
		return st, err
	}

	next := *st
	if next.Step+1 >= len(flowSteps[st.Flow]) {
		next.Completed = true
	} else {
		next.Step++
	}
	if err := saveState(sess, &next); err != nil {
		return st, err
	}
	return &next, nil
}

// Back moves one step back without validating. Saved step data is kept.
func (e *Engine) Back(sess *models.Session) (*State, error) {
	st, err := e.Load(sess)
	if err != nil {
		return nil, err
	}
	if st.Completed {
		return st, ErrCompleted
	}
	if st.Step > 0 {
		st.Step--
	}
	return st, saveState(sess, st)
}
