package dcarbon

const (
	pathRegister              = "/api/user/register"
	pathLogin                 = "/api/user/login"
	pathUser                  = "/api/user/get-one-user/%s"
	pathCommercialDetails     = "/api/user/commercial-registration/%s"
	pathCommercialOwners      = "/api/user/commercial-owners/%s"
	pathPartnerDetails        = "/api/user/update-partner-details/%s"
	pathFinancialInfo         = "/api/user/financial-info/%s"
	pathFinancialAgreement    = "/api/user/update-financial-agreement/%s"
	pathAcceptAgreementTerms  = "/api/user/accept-user-agreement-terms/%s"
	pathUpdateAgreement       = "/api/user/update-user-agreement/%s"
	pathAgreement             = "/api/user/agreement/%s"
	pathInstallers            = "/api/user/get-all-installers"
	pathFinanceTypes          = "/api/user/finance-types"
	pathUserFacilities        = "/api/facility/get-user-facilities-by-userId/%s"
	pathFacility              = "/api/facility/%s"
	pathCreateFacility        = "/api/facility/create-%s-facility/%s"
	pathUpdateFacility        = "/api/facility/update-facility/%s"
	pathUtilityProviders      = "/api/utility-providers"
	pathUtilityAccounts       = "/api/auth/utility-auth/%s"
	pathUserMeters            = "/api/auth/user-meters/%s"
	pathInitiateUtilityAuth   = "/api/auth/initiate-utility-auth/%s"
	pathUtilityAuthStatus     = "/api/auth/utility-auth-status/%s"
	pathRECStats              = "/api/rec/user-stats/%s"
	formFieldSignature        = "signature"
	formFieldFinanceAgreement = "financialAgreement"
)
