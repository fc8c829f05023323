package controllers

import (
	"net/http"

	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/dtos"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/services"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/utils"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/utils/dcarbon"
)

// UtilityController starts a utility authorization and waits for it.
type UtilityController struct {
	utility services.UtilityService
}

func NewUtilityController(utility services.UtilityService) *UtilityController {
	return &UtilityController{utility: utility}
}

// ----------------------------------------------------------------
// POST /api/v1/portal/utility/authorize
// ----------------------------------------------------------------
func (c *UtilityController) AuthorizeHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	var req dtos.UtilityAuthorizeRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	info, err := c.utility.Authorize(r.Context(), sess, dcarbon.UtilityAuthRequest{
		UtilityProvider:  req.UtilityProvider,
		UtilityAuthEmail: req.UtilityAuthEmail,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, info)
}

// ----------------------------------------------------------------
// POST /api/v1/portal/utility/authorize/wait
// Blocks until the utility reports the account authorized or polling
// gives up.
// ----------------------------------------------------------------
func (c *UtilityController) WaitHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	var req dtos.UtilityWaitRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	status, err := c.utility.Wait(r.Context(), sess, req.UtilityAuthEmail)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, status)
}
