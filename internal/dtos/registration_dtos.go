package dtos

import (
	"time"

	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/wizard"
)

// RegistrationResponse is the wizard position after any registration call.
// Token is set only by the start endpoint.
type RegistrationResponse struct {
	Token     string      `json:"token,omitempty"`
	ExpiresAt *time.Time  `json:"expiresAt,omitempty"`
	Wizard    wizard.View `json:"wizard"`
}

type FinancialAgreementResponse struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Size        int    `json:"size"`
}
