package models

import "time"

// Agreement is the per-user acceptance record.
type Agreement struct {
	UserID          string     `json:"userId"`
	TermsAccepted   bool       `json:"termsAccepted"`
	PrivacyAccepted bool       `json:"privacyAccepted"`
	RECAccepted     bool       `json:"recAccepted"`
	SignatureURL    string     `json:"signature,omitempty"`
	AcceptedAt      *time.Time `json:"acceptedAt,omitempty"`
}

func (a *Agreement) Complete() bool {
	return a != nil && a.TermsAccepted && a.PrivacyAccepted && a.SignatureURL != ""
}
