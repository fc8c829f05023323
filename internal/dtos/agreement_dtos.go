package dtos

type AcceptAgreementRequest struct {
	TermsAccepted   bool `json:"termsAccepted"`
	PrivacyAccepted bool `json:"privacyAccepted"`
	RECAccepted     bool `json:"recAccepted"`
}
