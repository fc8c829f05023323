package models

import "strings"

// ServiceClassElectric is the only meter class a facility may use.
const ServiceClassElectric = "electric"

type UtilityProvider struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	GreenButton bool   `json:"greenButton,omitempty"`
}

// UtilityAccount is a linked utility login, keyed by its auth email.
type UtilityAccount struct {
	ID               string `json:"id"`
	AuthEmail        string `json:"utilityAuthEmail"`
	UtilityProvider  string `json:"utilityProvider"`
	AuthorizationUID string `json:"authorizationUid,omitempty"`
}

type Meter struct {
	UID            string   `json:"uid"`
	MeterNumbers   []string `json:"meterNumbers"`
	ServiceClass   string   `json:"serviceClass"`
	ServiceAddress string   `json:"serviceAddress"`
	BillingAddress string   `json:"billingAddress,omitempty"`
}

func (m Meter) IsElectric() bool { return strings.EqualFold(m.ServiceClass, ServiceClassElectric) }

// UtilityAuthStatus is the polled authorization state of a utility account.
type UtilityAuthStatus struct {
	Authorized bool   `json:"authorized"`
	Status     string `json:"status,omitempty"`
}
