package models

import "strings"

const FinanceTypeCash = "cash"

type FinancialInfo struct {
	UserID          string   `json:"userId,omitempty"`
	FinanceType     string   `json:"financeType"`
	FinanceCompany  string   `json:"financeCompany,omitempty"`
	Installer       string   `json:"installer,omitempty"`
	SystemSizeKW    *float64 `json:"systemSize,omitempty"`
	COD             string   `json:"cod,omitempty"`
	AgreementDocURL string   `json:"financialAgreementUrl,omitempty"`
}

// RequiresAgreementUpload reports whether financeType needs a document.
func RequiresAgreementUpload(financeType string) bool {
	ft := strings.ToLower(strings.TrimSpace(financeType))
	return ft != "" && ft != FinanceTypeCash
}

// Owner is a commercial co-owner collected locally until submission.
type Owner struct {
	FullName            string  `json:"fullName" validate:"required"`
	OwnershipPercentage float64 `json:"ownershipPercentage" validate:"gt=0,lte=100"`
	Email               string  `json:"email,omitempty" validate:"omitempty,email"`
	PhoneNumber         string  `json:"phoneNumber,omitempty" validate:"omitempty,usphone"`
	Address             string  `json:"address,omitempty"`
}
