package dtos

type UtilityAuthorizeRequest struct {
	UtilityProvider  string `json:"utilityProvider" validate:"required"`
	UtilityAuthEmail string `json:"utilityAuthEmail" validate:"required,email"`
}

// UtilityWaitRequest names the account to wait for. Empty means the account
// of the last authorization started in this session.
type UtilityWaitRequest struct {
	UtilityAuthEmail string `json:"utilityAuthEmail" validate:"omitempty,email"`
}
