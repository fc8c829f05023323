package agreementpdf

import "github.com/gloriousnetworker/DCarbon-project-sub003/internal/models"

type Template string

const (
	TemplateResidential        Template = "residential"
	TemplateCommercialOwner    Template = "commercial-owner"
	TemplateCommercialOperator Template = "commercial-operator"
	TemplateInstaller          Template = "installer"
	TemplateSalesAgent         Template = "sales-agent"
	TemplateFinanceCompany     Template = "finance-company"
)

type templateDef struct {
	title    string
	filename string
	body     []string
}

// TemplateFor picks the agreement for a user. role only matters for
// commercial users.
func TemplateFor(userType models.UserType, partnerType *models.PartnerType, role models.CommercialRole) Template {
	switch userType {
	case models.UserTypePartner:
		if partnerType != nil {
			switch *partnerType {
			case models.PartnerTypeSalesAgent:
				return TemplateSalesAgent
			case models.PartnerTypeFinanceCompany:
				return TemplateFinanceCompany
			}
		}
		return TemplateInstaller
	case models.UserTypeCommercial:
		if role == models.CommercialRoleOperator {
			return TemplateCommercialOperator
		}
		return TemplateCommercialOwner
	}
	return TemplateResidential
}

// Filename is the fixed download name of t.
func (t Template) Filename() string {
	if def, ok := templates[t]; ok {
		return def.filename
	}
	return templates[TemplateResidential].filename
}

var recServicesClauses = []string{
	"1. Appointment. The Customer appoints DCarbon Solutions as its exclusive agent to register the Facility with the applicable renewable energy certificate (REC) tracking system, to aggregate the RECs generated by the Facility and to market and sell those RECs on the Customer's behalf.",
	"2. Term. This Agreement begins on the date it is signed and continues for an initial term of five (5) years. It renews automatically for successive one (1) year terms unless either party gives written notice of non-renewal at least sixty (60) days before the end of the current term.",
	"3. Facility Data. The Customer authorizes DCarbon Solutions to obtain generation and consumption data for the Facility from the Customer's utility and from any monitoring system installed at the Facility, and to share that data with the REC tracking system and with buyers of the RECs.",
	"4. Revenue Share. DCarbon Solutions will remit to the Customer the percentage of net REC sale proceeds stated in the Customer's dashboard, after deduction of registration, tracking system and transfer fees. Payments are made quarterly for RECs sold during the preceding quarter.",
	"5. Ownership of Attributes. The Customer represents that it owns, or is authorized to transfer, all environmental attributes associated with the electricity generated by the Facility and that those attributes have not been sold, pledged or claimed by any other person.",
	"6. Customer Obligations. The Customer will keep the Facility in good working order, promptly notify DCarbon Solutions of any change of ownership, outage, relocation or modification of the Facility, and maintain the utility authorization required to retrieve meter data.",
	"7. No Guarantee. REC prices are set by the market. DCarbon Solutions does not guarantee any minimum price, volume or revenue and is not liable for losses caused by changes in market conditions, program rules or the availability of buyers.",
	"8. Confidentiality. Each party will keep the other party's non-public information confidential and use it only for the purposes of this Agreement, except where disclosure is required by law or by the rules of a REC tracking system.",
	"9. Termination. Either party may terminate this Agreement on thirty (30) days' written notice if the other party materially breaches it and fails to cure the breach within that period. RECs generated before termination remain subject to this Agreement.",
	"10. Limitation of Liability. Neither party is liable for indirect, incidental or consequential damages. Each party's total liability under this Agreement is limited to the amounts paid or payable to the Customer in the twelve (12) months preceding the claim.",
	"11. Governing Law. This Agreement is governed by the laws of the State of California, without regard to its conflict of laws rules.",
	"12. Electronic Signature. The parties agree that this Agreement may be signed electronically and that an electronic signature has the same effect as a handwritten signature.",
}

var partnerClauses = []string{
	"1. Relationship. The Partner is an independent contractor. Nothing in this Agreement creates an employment, partnership or joint venture relationship between the Partner and DCarbon Solutions.",
	"2. Referrals. The Partner may refer facility owners and operators to DCarbon Solutions using the referral code and invitation links provided in the Partner dashboard. A referral is credited to the Partner when the referred customer completes registration using that code.",
	"3. Conduct. The Partner will describe the DCarbon REC program accurately, will not promise any specific REC price or revenue, and will comply with all applicable consumer protection, privacy and solicitation laws.",
	"4. Customer Data. The Partner will use customer information obtained through the program only to support that customer's enrollment and will protect it with reasonable administrative, technical and physical safeguards.",
	"5. Term and Termination. This Agreement continues until terminated by either party on thirty (30) days' written notice. Commissions earned before termination remain payable in accordance with this Agreement.",
	"6. Limitation of Liability. Neither party is liable for indirect, incidental or consequential damages arising out of this Agreement.",
	"7. Governing Law. This Agreement is governed by the laws of the State of California.",
}

func withPreamble(preamble string, clauses []string, extra ...string) []string {
	out := append([]string{preamble}, clauses...)
	return append(out, extra...)
}

var templates = map[Template]templateDef{
	TemplateResidential: {
		title:    "Residential REC Services Agreement",
		filename: "DCarbon_Residential_REC_Agreement.pdf",
		body: withPreamble(
			"This Residential REC Services Agreement is entered into between DCarbon Solutions and the homeowner identified below (the \"Customer\") in respect of the residential solar facility registered in the Customer's account (the \"Facility\").",
			recServicesClauses,
			"13. Residential Customers. Where the Facility is financed or leased, the Customer confirms that the finance agreement uploaded to its account permits the Customer to sell the RECs generated by the Facility.",
		),
	},
	TemplateCommercialOwner: {
		title:    "Commercial Owner REC Services Agreement",
		filename: "DCarbon_Commercial_Owner_REC_Agreement.pdf",
		body: withPreamble(
			"This Commercial REC Services Agreement is entered into between DCarbon Solutions and the facility owner identified below (the \"Customer\") in respect of each commercial facility registered in the Customer's account (each, a \"Facility\").",
			recServicesClauses,
			"13. Operators. Where a third party operates a Facility, the Customer authorizes that operator to provide Facility data and to manage the Facility's registration on the Customer's behalf.",
			"14. Ownership Interests. The Customer confirms that the ownership percentages recorded in its registration are accurate and that REC proceeds may be distributed in accordance with them.",
		),
	},
	TemplateCommercialOperator: {
		title:    "Commercial Operator REC Agreement",
		filename: "DCarbon_Commercial_Operator_REC_Agreement.pdf",
		body: withPreamble(
			"This Commercial Operator REC Agreement is entered into between DCarbon Solutions and the facility operator identified below (the \"Operator\"). The Operator manages one or more facilities on behalf of their owners.",
			recServicesClauses,
			"13. Operator Authority. The Operator represents that the owner of each Facility has authorized it to register that Facility and to provide Facility data, and will provide evidence of that authority on request.",
		),
	},
	TemplateInstaller: {
		title:    "Installer Partner Agreement",
		filename: "DCarbon_Installer_Agreement.pdf",
		body: withPreamble(
			"This Installer Partner Agreement is entered into between DCarbon Solutions and the installer identified below (the \"Partner\").",
			partnerClauses,
			"8. Installation Records. The Partner will provide commissioning dates, system sizes and interconnection approvals for facilities it installed when requested to support REC registration.",
		),
	},
	TemplateSalesAgent: {
		title:    "Sales Agent Agreement",
		filename: "DCarbon_Sales_Agent_Agreement.pdf",
		body: withPreamble(
			"This Sales Agent Agreement is entered into between DCarbon Solutions and the sales agent identified below (the \"Partner\").",
			partnerClauses,
			"8. Commissions. The Partner earns the commission shown in the Partner dashboard for each referred customer whose facility completes registration and generates RECs that are sold.",
		),
	},
	TemplateFinanceCompany: {
		title:    "Finance Company Partner Agreement",
		filename: "DCarbon_Finance_Company_Agreement.pdf",
		body: withPreamble(
			"This Finance Company Partner Agreement is entered into between DCarbon Solutions and the finance company identified below (the \"Partner\").",
			partnerClauses,
			"8. Financed Facilities. Where the Partner holds an interest in a financed facility, the Partner consents to the registration of that facility and to the sale of its RECs in accordance with the customer's REC services agreement.",
		),
	},
}
