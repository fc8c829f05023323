package models

type UserType string

const (
	UserTypeResidential UserType = "RESIDENTIAL"
	UserTypeCommercial  UserType = "COMMERCIAL"
	UserTypePartner     UserType = "PARTNER"
)

type PartnerType string

const (
	PartnerTypeInstaller      PartnerType = "INSTALLER"
	PartnerTypeSalesAgent     PartnerType = "SALES_AGENT"
	PartnerTypeFinanceCompany PartnerType = "FINANCE_COMPANY"
)

// User is the remote API's user record as the portal sees it.
type User struct {
	ID                string       `json:"id"`
	FirstName         string       `json:"firstName"`
	LastName          string       `json:"lastName"`
	Email             string       `json:"email"`
	PhoneNumber       string       `json:"phoneNumber"`
	UserType          UserType     `json:"userType"`
	PartnerType       *PartnerType `json:"partnerType,omitempty"`
	ReferralCode      string       `json:"referralCode,omitempty"`
	AgreementAccepted bool         `json:"agreementAccepted"`
	SignatureURL      string       `json:"signature,omitempty"`
	CompanyName       string       `json:"companyName,omitempty"`
}

func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// LoginResult is the data envelope of the login and register endpoints.
type LoginResult struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}
