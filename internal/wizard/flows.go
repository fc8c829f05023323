// Package wizard drives the multi-step registration flows. Each step validates
// locally, saves its data into the session, then calls the remote API; the
// step index only moves forward on a successful call.
package wizard

import (
	"strings"

	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/models"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/utils"
)

type Flow string

const (
	FlowResidential        Flow = "residential"
	FlowCommercialOwner    Flow = "commercial-owner"
	FlowCommercialOperator Flow = "commercial-operator"
	FlowPartner            Flow = "partner"
)

// Step names. They are also the session sub-keys of the step data.
const (
	StepAccount   = "account"
	StepCompany   = "company"
	StepOwners    = "owners"
	StepFinancial = "financial"
	StepPartner   = "partner-details"
	StepAgreement = "agreement"
	StepFacility  = "facility"
)

var flowSteps = map[Flow][]string{
	FlowResidential:        {StepAccount, StepFinancial, StepAgreement, StepFacility},
	FlowCommercialOwner:    {StepAccount, StepCompany, StepOwners, StepFinancial, StepAgreement, StepFacility},
	FlowCommercialOperator: {StepAccount, StepCompany, StepAgreement, StepFacility},
	FlowPartner:            {StepAccount, StepPartner, StepAgreement},
}

// Steps returns the ordered step names of f, or nil for an unknown flow.
func Steps(f Flow) []string {
	return append([]string(nil), flowSteps[f]...)
}

func ParseFlow(s string) (Flow, error) {
	f := Flow(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := flowSteps[f]; !ok {
		return "", utils.ErrUnknownFlow
	}
	return f, nil
}

func (f Flow) UserType() models.UserType {
	switch f {
	case FlowCommercialOwner, FlowCommercialOperator:
		return models.UserTypeCommercial
	case FlowPartner:
		return models.UserTypePartner
	}
	return models.UserTypeResidential
}

// entry describes what a deep-link "type" value selects and seeds.
type entry struct {
	flow  Flow
	seeds map[string]string
}

var entries = map[string]entry{
	"residential":         {flow: FlowResidential},
	"commercial":          {flow: FlowCommercialOwner},
	"owner":               {flow: FlowCommercialOwner},
	"commercial-owner":    {flow: FlowCommercialOwner},
	"operator":            {flow: FlowCommercialOperator, seeds: map[string]string{"commercialRole": string(models.CommercialRoleOperator)}},
	"commercial-operator": {flow: FlowCommercialOperator, seeds: map[string]string{"commercialRole": string(models.CommercialRoleOperator)}},
	"partner":             {flow: FlowPartner},
	"installer":           {flow: FlowPartner, seeds: map[string]string{"partnerType": string(models.PartnerTypeInstaller)}},
	"sales-agent":         {flow: FlowPartner, seeds: map[string]string{"partnerType": string(models.PartnerTypeSalesAgent)}},
	"finance-company":     {flow: FlowPartner, seeds: map[string]string{"partnerType": string(models.PartnerTypeFinanceCompany)}},
}

func lookupEntry(typeParam string) (entry, error) {
	key := strings.ToLower(strings.TrimSpace(typeParam))
	key = strings.ReplaceAll(key, "_", "-")
	e, ok := entries[key]
	if !ok {
		return entry{}, utils.ErrUnknownFlow
	}
	return e, nil
}
