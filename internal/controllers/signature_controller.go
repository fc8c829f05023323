package controllers

import (
	"mime"
	"net/http"

	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/constants"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/dtos"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/services"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/signature"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/utils"
)

const fieldSignature = "signature"

type SignatureController struct {
	signatures services.SignatureService
}

func NewSignatureController(signatures services.SignatureService) *SignatureController {
	return &SignatureController{signatures: signatures}
}

// ----------------------------------------------------------------
// POST /api/v1/portal/signature
// JSON for draw/type, multipart "signature" file for upload.
// ----------------------------------------------------------------
func (c *SignatureController) SubmitHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	var in services.SignatureInput
	if isMultipart(r) {
		r.Body = http.MaxBytesReader(w, r.Body, constants.MaxMultipartMemory)
		if err := r.ParseMultipartForm(constants.MaxMultipartMemory); err != nil {
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload,
				"Invalid signature upload", nil, err)
			return
		}
		_, data, err := readFormFile(r, fieldSignature, constants.MaxMultipartMemory)
		if err != nil {
			respondError(w, err)
			return
		}
		in = services.SignatureInput{Mode: signature.ModeUpload, Upload: data}
	} else {
		var req dtos.SignatureRequest
		if !decodeAndValidate(w, r, &req) {
			return
		}
		mode, _ := signature.ParseMode(req.Mode)
		in = services.SignatureInput{Mode: mode, Strokes: req.Strokes, Text: req.Text}
	}

	snap, err := c.signatures.Submit(r.Context(), sess, in)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, snap)
}

// ----------------------------------------------------------------
// GET /api/v1/portal/signature/progress
// ----------------------------------------------------------------
func (c *SignatureController) ProgressHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, c.signatures.Progress(sess))
}

func isMultipart(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "multipart/form-data"
}
