package controllers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/dtos"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/services"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/utils"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/utils/dcarbon"
)

type AgreementController struct {
	agreements services.AgreementService
}

func NewAgreementController(agreements services.AgreementService) *AgreementController {
	return &AgreementController{agreements: agreements}
}

// ----------------------------------------------------------------
// GET /api/v1/portal/agreement
// ----------------------------------------------------------------
func (c *AgreementController) GetHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	a, err := c.agreements.Get(r.Context(), sess)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, a)
}

// ----------------------------------------------------------------
// POST /api/v1/portal/agreement/accept
// ----------------------------------------------------------------
func (c *AgreementController) AcceptHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	var req dtos.AcceptAgreementRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	a, err := c.agreements.Accept(r.Context(), sess, dcarbon.AgreementTerms{
		TermsAccepted:   req.TermsAccepted,
		PrivacyAccepted: req.PrivacyAccepted,
		RECAccepted:     req.RECAccepted,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, a)
}

// ----------------------------------------------------------------
// GET /api/v1/portal/agreement/pdf
// ----------------------------------------------------------------
func (c *AgreementController) PDFHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	doc, err := c.agreements.Document(r.Context(), sess)
	if err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, doc.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.Data)))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(doc.Data); err != nil {
		utils.Logger.WithError(err).Warn("agreement PDF write interrupted")
	}
}
