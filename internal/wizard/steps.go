package wizard

import (
	"context"
	"strings"

	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/facility"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/models"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/session"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/utils"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/utils/dcarbon"
)

// stepEnv is what a step sees while validating and submitting.
type stepEnv struct {
	flow Flow
	sess *models.Session
	eng  *Engine
}

// stepForm is one step's input. validate must not touch the network.
type stepForm interface {
	validate(env *stepEnv) []utils.FieldError
	submit(ctx context.Context, env *stepEnv) error
}

// normalizer is implemented by forms with phone fields.
type normalizer interface{ normalize() }

// redactor blanks fields that must not be kept in the session.
type redactor interface{ redacted() stepForm }

func newForm(flow Flow, step string) stepForm {
	switch step {
	case StepAccount:
		return &accountForm{}
	case StepCompany:
		return &companyForm{}
	case StepOwners:
		return &ownersForm{}
	case StepFinancial:
		return &financialForm{}
	case StepPartner:
		return &partnerForm{}
	case StepAgreement:
		return &agreementForm{}
	case StepFacility:
		return &facilityForm{}
	}
	return nil
}

func requireUser(env *stepEnv) (string, error) {
	if !env.sess.Authenticated() {
		return "", utils.ErrMissingSession
	}
	return env.sess.UserID, nil
}

// ---------------------------------------------------------------------------
// account
// ---------------------------------------------------------------------------

type accountForm struct {
	FirstName       string `json:"firstName" validate:"required"`
	LastName        string `json:"lastName" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	PhoneNumber     string `json:"phoneNumber" validate:"required,usphone"`
	Password        string `json:"password,omitempty" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword,omitempty" validate:"required,eqfield=Password"`
	ReferralCode    string `json:"referralCode,omitempty"`
}

func (f *accountForm) normalize() {
	f.PhoneNumber = utils.FormatUSPhone(f.PhoneNumber)
	f.Email = strings.TrimSpace(f.Email)
	f.ReferralCode = strings.TrimSpace(f.ReferralCode)
}

func (f *accountForm) redacted() stepForm {
	cp := *f
	cp.Password, cp.ConfirmPassword = "", ""
	return &cp
}

func (f *accountForm) validate(*stepEnv) []utils.FieldError {
	return utils.FieldErrors(validate.Struct(f))
}

func (f *accountForm) submit(ctx context.Context, env *stepEnv) error {
	// going back to this step after registering must not register twice
	if env.sess.Authenticated() {
		return nil
	}
	if ok, err := env.eng.phones.VerifyPhone(ctx, f.PhoneNumber); err != nil {
		utils.Logger.WithError(err).Warn("phone verification unavailable, accepting syntactically valid number")
	} else if !ok {
		return utils.NewValidationError("phoneNumber", "Phone number could not be verified")
	}

	res, err := env.eng.api.Register(ctx, dcarbon.RegisterRequest{
		FirstName:   f.FirstName,
		LastName:    f.LastName,
		Email:       f.Email,
		PhoneNumber: f.PhoneNumber,
		Password:    f.Password,
		UserType:    env.flow.UserType(),
	}, f.ReferralCode)
	if err != nil {
		return err
	}
	return session.ApplyLogin(env.sess, res)
}

// ---------------------------------------------------------------------------
// company (commercial flows)
// ---------------------------------------------------------------------------

type companyForm struct {
	EntityType     models.EntityType     `json:"entityType" validate:"required,oneof=individual company"`
	CommercialRole models.CommercialRole `json:"commercialRole" validate:"required,oneof=owner operator both"`
	CompanyName    string                `json:"companyName" validate:"required_if=EntityType company"`
	CompanyAddress string                `json:"companyAddress" validate:"required"`
	CompanyWebsite string                `json:"companyWebsite,omitempty" validate:"omitempty,url"`
	OwnerEmail     string                `json:"ownerEmail,omitempty" validate:"omitempty,email"`
}

func (f *companyForm) validate(env *stepEnv) []utils.FieldError {
	fields := utils.FieldErrors(validate.Struct(f))
	switch env.flow {
	case FlowCommercialOperator:
		if f.CommercialRole != "" && f.CommercialRole != models.CommercialRoleOperator {
			fields = append(fields, utils.FieldError{Field: "commercialRole", Message: "Operators must register with the operator role"})
		}
		if f.OwnerEmail == "" {
			fields = append(fields, utils.FieldError{Field: "ownerEmail", Message: "Owner email is required"})
		}
	case FlowCommercialOwner:
		if f.CommercialRole == models.CommercialRoleOperator {
			fields = append(fields, utils.FieldError{Field: "commercialRole", Message: "Use the operator registration to register as an operator"})
		}
	}
	return fields
}

func (f *companyForm) submit(ctx context.Context, env *stepEnv) error {
	userID, err := requireUser(env)
	if err != nil {
		return err
	}
	return env.eng.api.UpdateCommercialDetails(ctx, userID, dcarbon.CommercialDetails{
		EntityType:     f.EntityType,
		CommercialRole: f.CommercialRole,
		CompanyName:    f.CompanyName,
		CompanyAddress: f.CompanyAddress,
		CompanyWebsite: f.CompanyWebsite,
		OwnerEmail:     f.OwnerEmail,
	})
}

// ---------------------------------------------------------------------------
// owners
// ---------------------------------------------------------------------------

type ownersForm struct {
	Owners []models.Owner `json:"owners" validate:"dive"`
}

func (f *ownersForm) normalize() {
	for i := range f.Owners {
		f.Owners[i].FullName = strings.TrimSpace(f.Owners[i].FullName)
		if f.Owners[i].PhoneNumber != "" {
			f.Owners[i].PhoneNumber = utils.FormatUSPhone(f.Owners[i].PhoneNumber)
		}
	}
}

func (f *ownersForm) validate(*stepEnv) []utils.FieldError {
	fields := utils.FieldErrors(validate.Struct(f))
	var total float64
	for _, o := range f.Owners {
		total += o.OwnershipPercentage
	}
	if total > 100 {
		fields = append(fields, utils.FieldError{Field: "owners", Message: "Ownership percentages cannot exceed 100% in total"})
	}
	return fields
}

func (f *ownersForm) submit(ctx context.Context, env *stepEnv) error {
	userID, err := requireUser(env)
	if err != nil {
		return err
	}
	owners := f.Owners
	if owners == nil {
		owners = []models.Owner{}
	}
	return env.eng.api.UpdateOwners(ctx, userID, owners)
}

// ---------------------------------------------------------------------------
// financial
// ---------------------------------------------------------------------------

type financialForm struct {
	FinanceType    string   `json:"financeType" validate:"required"`
	FinanceCompany string   `json:"financeCompany,omitempty"`
	Installer      string   `json:"installer,omitempty"`
	SystemSizeKW   *float64 `json:"systemSize,omitempty" validate:"omitempty,gt=0"`
	COD            string   `json:"cod,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

func (f *financialForm) validate(env *stepEnv) []utils.FieldError {
	fields := utils.FieldErrors(validate.Struct(f))
	if !models.RequiresAgreementUpload(f.FinanceType) {
		return fields
	}
	if strings.TrimSpace(f.FinanceCompany) == "" {
		fields = append(fields, utils.FieldError{Field: "financeCompany", Message: "Finance company is required"})
	}
	tmp, err := session.TempFinancialAgreement(env.sess)
	if err != nil || tmp == nil {
		fields = append(fields, utils.FieldError{Field: "financialAgreement", Message: "Please upload your finance agreement"})
	}
	return fields
}

// submit checks the choices against the remote finance type and installer
// lists, uploads the bridged agreement file once, then saves the financial
// info. A completed upload is remembered in the session so a failed save
// does not upload again.
func (f *financialForm) submit(ctx context.Context, env *stepEnv) error {
	userID, err := requireUser(env)
	if err != nil {
		return err
	}
	opts := env.eng.financialOptions(ctx)
	if err := utils.AsValidationError(opts.check(f.FinanceType, f.Installer)); err != nil {
		return err
	}
	info := models.FinancialInfo{
		FinanceType:    f.FinanceType,
		FinanceCompany: f.FinanceCompany,
		Installer:      f.Installer,
		SystemSizeKW:   f.SystemSizeKW,
		COD:            f.COD,
	}

	if models.RequiresAgreementUpload(f.FinanceType) {
		tmp, err := session.TempFinancialAgreement(env.sess)
		if err != nil {
			return err
		}
		if tmp.UploadedURL == "" {
			data, err := tmp.Bytes()
			if err != nil {
				return utils.NewValidationError("financialAgreement", "Please upload your finance agreement again")
			}
			res, err := env.eng.api.UploadFinancialAgreement(ctx, userID, dcarbon.File{
				Filename:    tmp.Filename,
				ContentType: tmp.ContentType,
				Data:        data,
			})
			if err != nil {
				return err
			}
			tmp.UploadedURL = res.URL
			if err := session.SetTempFinancialAgreement(env.sess, *tmp); err != nil {
				return err
			}
		}
		info.AgreementDocURL = tmp.UploadedURL
	}

	saved, err := env.eng.api.UpdateFinancialInfo(ctx, userID, info)
	if err != nil {
		return err
	}
	session.Remove(env.sess, session.KeyTempFinancialAgreement)
	return session.SetJSON(env.sess, session.KeyFinancialInfoResponse, saved)
}

// ---------------------------------------------------------------------------
// partner details
// ---------------------------------------------------------------------------

type partnerForm struct {
	PartnerType models.PartnerType `json:"partnerType" validate:"required,oneof=INSTALLER SALES_AGENT FINANCE_COMPANY"`
	CompanyName string             `json:"companyName" validate:"required"`
	Address     string             `json:"address" validate:"required"`
	PhoneNumber string             `json:"phoneNumber" validate:"required,usphone"`
}

func (f *partnerForm) normalize() {
	f.PhoneNumber = utils.FormatUSPhone(f.PhoneNumber)
	f.PartnerType = models.PartnerType(strings.ToUpper(strings.TrimSpace(string(f.PartnerType))))
}

func (f *partnerForm) validate(*stepEnv) []utils.FieldError {
	return utils.FieldErrors(validate.Struct(f))
}

func (f *partnerForm) submit(ctx context.Context, env *stepEnv) error {
	userID, err := requireUser(env)
	if err != nil {
		return err
	}
	err = env.eng.api.UpdatePartnerDetails(ctx, userID, dcarbon.PartnerDetails{
		PartnerType: f.PartnerType,
		CompanyName: f.CompanyName,
		Address:     f.Address,
		PhoneNumber: f.PhoneNumber,
	})
	if err != nil {
		return err
	}
	pt := f.PartnerType
	env.sess.PartnerType = &pt
	return session.SetJSON(env.sess, session.KeyPartnerType, pt)
}

// ---------------------------------------------------------------------------
// agreement
// ---------------------------------------------------------------------------

type agreementForm struct {
	TermsAccepted   bool `json:"termsAccepted"`
	PrivacyAccepted bool `json:"privacyAccepted"`
	RECAccepted     bool `json:"recAccepted"`
}

func (f *agreementForm) validate(env *stepEnv) []utils.FieldError {
	var fields []utils.FieldError
	if !f.TermsAccepted {
		fields = append(fields, utils.FieldError{Field: "termsAccepted", Message: "You must accept the terms and conditions"})
	}
	if !f.PrivacyAccepted {
		fields = append(fields, utils.FieldError{Field: "privacyAccepted", Message: "You must accept the privacy policy"})
	}
	if env.flow != FlowPartner && !f.RECAccepted {
		fields = append(fields, utils.FieldError{Field: "recAccepted", Message: "You must accept the REC sale agreement"})
	}
	if _, ok := env.sess.Values[session.KeySignatureURL]; !ok {
		fields = append(fields, utils.FieldError{Field: "signature", Message: "Please sign the agreement"})
	}
	return fields
}

func (f *agreementForm) submit(ctx context.Context, env *stepEnv) error {
	userID, err := requireUser(env)
	if err != nil {
		return err
	}
	_, err = env.eng.api.AcceptAgreementTerms(ctx, userID, dcarbon.AgreementTerms{
		TermsAccepted:   f.TermsAccepted,
		PrivacyAccepted: f.PrivacyAccepted,
		RECAccepted:     f.RECAccepted,
	})
	return err
}

// ---------------------------------------------------------------------------
// facility
// ---------------------------------------------------------------------------

type facilityForm struct {
	facility.Input
}

func (f *facilityForm) validate(env *stepEnv) []utils.FieldError {
	if f.CommercialRole == "" && env.flow != FlowResidential {
		f.CommercialRole = savedCommercialRole(env)
	}
	var confirmed *facility.FormSnapshot
	if env.eng.forms != nil {
		if snap, ok := env.eng.forms.FormFor(env.sess.GetID()); ok {
			confirmed = &snap
		}
	}
	if fields := fieldsOf(f.Input.BindForm(confirmed)); len(fields) > 0 {
		return fields
	}
	return fieldsOf(f.Input.Validate())
}

func (f *facilityForm) submit(ctx context.Context, env *stepEnv) error {
	userID, err := requireUser(env)
	if err != nil {
		return err
	}
	kind := dcarbon.FacilityKindCommercial
	if env.flow == FlowResidential {
		kind = dcarbon.FacilityKindResidential
	}
	if _, err := env.eng.facilities.Create(ctx, userID, kind, &f.Input); err != nil {
		return err
	}
	if env.eng.forms != nil {
		env.eng.forms.Forget(env.sess.GetID())
	}
	return nil
}

func savedCommercialRole(env *stepEnv) models.CommercialRole {
	var company companyForm
	ok, err := session.GetJSON(env.sess, session.WizardStepKey(string(env.flow), StepCompany), &company)
	if err != nil || !ok {
		return ""
	}
	return company.CommercialRole
}

func fieldsOf(err error) []utils.FieldError {
	if err == nil {
		return nil
	}
	if verr, ok := err.(*utils.ValidationError); ok {
		return verr.Fields
	}
	return utils.FieldErrors(err)
}
