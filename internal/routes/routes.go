package routes

const (
	// Health
	Health = "/health"

	// Portal base
	Base = "/api/v1/portal"

	// Session
	SessionLogin  = Base + "/session/login"
	SessionLogout = Base + "/session/logout"

	// Registration wizard
	RegistrationStart              = Base + "/registration/start"
	RegistrationFinancialAgreement = Base + "/registration/financial-agreement"
	RegistrationFlow               = Base + "/registration/{flow}"
	RegistrationAdvance            = Base + "/registration/{flow}/advance"
	RegistrationBack               = Base + "/registration/{flow}/back"

	// Signature
	Signature         = Base + "/signature"
	SignatureProgress = Base + "/signature/progress"

	// Agreement
	Agreement       = Base + "/agreement"
	AgreementAccept = Base + "/agreement/accept"
	AgreementPDF    = Base + "/agreement/pdf"

	// Facilities
	Facilities          = Base + "/facilities"
	FacilityByID        = Base + "/facilities/{id}"
	FacilityForm        = Base + "/facilities/form"
	FacilityFormAccount = Base + "/facilities/form/account"
	FacilityFormMeter   = Base + "/facilities/form/meter"
	FacilityFormAddress = Base + "/facilities/form/address"

	// Utility authorization
	UtilityAuthorize     = Base + "/utility/authorize"
	UtilityAuthorizeWait = Base + "/utility/authorize/wait"

	// Stats + dashboard
	Stats     = Base + "/stats"
	Dashboard = Base + "/dashboard"
)
