package controllers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/constants"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/dtos"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/middleware"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/models"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/services"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/utils"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/wizard"
)

const fieldFinancialAgreement = "financialAgreement"

// RegistrationController exposes the registration wizard.
type RegistrationController struct {
	registration services.RegistrationService
}

func NewRegistrationController(registration services.RegistrationService) *RegistrationController {
	return &RegistrationController{registration: registration}
}

// ----------------------------------------------------------------
// GET /api/v1/portal/registration/start?type=&referral=
// ----------------------------------------------------------------
func (c *RegistrationController) StartHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	referral := q.Get("referral")
	if referral == "" {
		referral = q.Get("referralCode")
	}

	res, err := c.registration.Start(r.Context(), q.Get("type"), referral)
	if err != nil {
		respondError(w, err)
		return
	}

	middleware.SetSessionCookie(w, res.Issued.Token, res.Issued.ExpiresAt)
	utils.RespondWithJSON(w, http.StatusCreated, dtos.RegistrationResponse{
		Token:     res.Issued.Token,
		ExpiresAt: &res.Issued.ExpiresAt,
		Wizard:    res.View,
	})
}

// ----------------------------------------------------------------
// GET /api/v1/portal/registration/{flow}
// ----------------------------------------------------------------
func (c *RegistrationController) ViewHandler(w http.ResponseWriter, r *http.Request) {
	sess, flow, ok := c.flowRequest(w, r)
	if !ok {
		return
	}
	view, err := c.registration.View(r.Context(), sess, flow)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.RegistrationResponse{Wizard: view})
}

// ----------------------------------------------------------------
// POST /api/v1/portal/registration/{flow}/advance
// ----------------------------------------------------------------
func (c *RegistrationController) AdvanceHandler(w http.ResponseWriter, r *http.Request) {
	sess, flow, ok := c.flowRequest(w, r)
	if !ok {
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusRequestEntityTooLarge, utils.ErrCodeInvalidPayload,
			"Step data is too large", nil, err)
		return
	}
	if len(body) == 0 {
		body = []byte("{}")
	}
	if !json.Valid(body) {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload,
			"Invalid JSON payload", nil, nil)
		return
	}

	view, err := c.registration.Advance(r.Context(), sess, flow, body)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.RegistrationResponse{Wizard: view})
}

// ----------------------------------------------------------------
// POST /api/v1/portal/registration/{flow}/back
// ----------------------------------------------------------------
func (c *RegistrationController) BackHandler(w http.ResponseWriter, r *http.Request) {
	sess, flow, ok := c.flowRequest(w, r)
	if !ok {
		return
	}
	view, err := c.registration.Back(r.Context(), sess, flow)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.RegistrationResponse{Wizard: view})
}

// ----------------------------------------------------------------
// POST /api/v1/portal/registration/financial-agreement  (multipart)
// ----------------------------------------------------------------
func (c *RegistrationController) FinancialAgreementHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, constants.MaxMultipartMemory)
	if err := r.ParseMultipartForm(constants.MaxMultipartMemory); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload,
			"Expected a multipart upload", nil, err)
		return
	}
	name, data, err := readFormFile(r, fieldFinancialAgreement, constants.MaxMultipartMemory)
	if err != nil {
		respondError(w, err)
		return
	}

	tf, err := c.registration.StageFinancialAgreement(r.Context(), sess, name, data)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.FinancialAgreementResponse{
		Filename:    tf.Filename,
		ContentType: tf.ContentType,
		Size:        len(data),
	})
}

func (c *RegistrationController) flowRequest(w http.ResponseWriter, r *http.Request) (sess *models.Session, flow wizard.Flow, ok bool) {
	sess, ok = currentSession(w, r)
	if !ok {
		return nil, "", false
	}
	flow, err := wizard.ParseFlow(mux.Vars(r)["flow"])
	if err != nil {
		respondError(w, err)
		return nil, "", false
	}
	return sess, flow, true
}
