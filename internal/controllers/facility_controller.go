package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/dtos"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/facility"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/services"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/utils"
)

type FacilityController struct {
	facilities services.FacilityService
}

func NewFacilityController(facilities services.FacilityService) *FacilityController {
	return &FacilityController{facilities: facilities}
}

// ----------------------------------------------------------------
// GET /api/v1/portal/facilities?page=&facilityName=&status=...
// ----------------------------------------------------------------
func (c *FacilityController) ListHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	resp, err := c.facilities.List(r.Context(), sess, facility.ParseListQuery(r.URL.Query()))
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// ----------------------------------------------------------------
// GET /api/v1/portal/facilities/{id}
// ----------------------------------------------------------------
func (c *FacilityController) GetHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	resp, err := c.facilities.Get(r.Context(), sess, mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// ----------------------------------------------------------------
// POST /api/v1/portal/facilities
// Fields left empty are taken from the session's confirmed form.
// ----------------------------------------------------------------
func (c *FacilityController) CreateHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	var in facility.Input
	if !decodeJSON(w, r, &in) {
		return
	}
	f, err := c.facilities.Create(r.Context(), sess, &in)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, f)
}

// ----------------------------------------------------------------
// PATCH /api/v1/portal/facilities/{id}
// ----------------------------------------------------------------
func (c *FacilityController) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	var in facility.EditInput
	if !decodeJSON(w, r, &in) {
		return
	}
	f, err := c.facilities.Update(r.Context(), sess, mux.Vars(r)["id"], &in)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, f)
}

// ----------------------------------------------------------------
// POST /api/v1/portal/facilities/form
// ----------------------------------------------------------------
func (c *FacilityController) OpenFormHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	snap, err := c.facilities.OpenForm(r.Context(), sess)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, snap)
}

// ----------------------------------------------------------------
// PUT /api/v1/portal/facilities/form/account
// ----------------------------------------------------------------
func (c *FacilityController) SelectAccountHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	var req dtos.FormAccountRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	snap, err := c.facilities.SelectAccount(r.Context(), sess, req.UtilityAuthEmail)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, snap)
}

// ----------------------------------------------------------------
// PUT /api/v1/portal/facilities/form/meter
// ----------------------------------------------------------------
func (c *FacilityController) SelectMeterHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	var req dtos.FormMeterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	snap, err := c.facilities.SelectMeter(r.Context(), sess, req.MeterID)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, snap)
}

// ----------------------------------------------------------------
// PUT /api/v1/portal/facilities/form/address
// ----------------------------------------------------------------
func (c *FacilityController) ConfirmAddressHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	var req dtos.FormAddressRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	snap, err := c.facilities.ConfirmAddress(r.Context(), sess, *req.SameAddress, req.Address)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, snap)
}
