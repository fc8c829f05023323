package dcarbon

import "github.com/gloriousnetworker/DCarbon-project-sub003/internal/models"

// RegisterRequest is the body of the register endpoint. The referral code
// travels as a query parameter and is deliberately absent here.
type RegisterRequest struct {
	FirstName   string          `json:"firstName"`
	LastName    string          `json:"lastName"`
	Email       string          `json:"email"`
	PhoneNumber string          `json:"phoneNumber"`
	Password    string          `json:"password"`
	UserType    models.UserType `json:"userType"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CommercialDetails is the company step of the commercial flows.
type CommercialDetails struct {
	EntityType     models.EntityType     `json:"entityType"`
	CommercialRole models.CommercialRole `json:"commercialRole"`
	CompanyName    string                `json:"companyName,omitempty"`
	CompanyAddress string                `json:"companyAddress"`
	CompanyWebsite string                `json:"companyWebsite,omitempty"`
	OwnerEmail     string                `json:"ownerEmail,omitempty"`
}

type PartnerDetails struct {
	PartnerType models.PartnerType `json:"partnerType"`
	CompanyName string             `json:"companyName"`
	Address     string             `json:"address"`
	PhoneNumber string             `json:"phoneNumber"`
}

type AgreementTerms struct {
	TermsAccepted   bool `json:"termsAccepted"`
	PrivacyAccepted bool `json:"privacyAccepted"`
	RECAccepted     bool `json:"recAccepted"`
}

// UploadResult is what the upload endpoints return.
type UploadResult struct {
	URL string `json:"url"`
}

// FacilityKind selects the facility creation endpoint.
type FacilityKind string

const (
	FacilityKindResidential FacilityKind = "residential"
	FacilityKindCommercial  FacilityKind = "commercial"
)

// UtilityAuthRequest starts a utility authorization for one provider.
type UtilityAuthRequest struct {
	UtilityProvider  string `json:"utilityProvider"`
	UtilityAuthEmail string `json:"utilityAuthEmail"`
}

type UtilityAuthInitiation struct {
	AuthorizationURL string `json:"authorizationUrl"`
	ReferenceID      string `json:"referenceId,omitempty"`
}

type Installer struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	CompanyName string `json:"companyName,omitempty"`
}

type FinanceType struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
