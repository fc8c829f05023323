package signature

import (
	"errors"

	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/utils"
)

var (
	ErrUploadMissing  = errors.New("no signature image uploaded")
	ErrUploadTooLarge = errors.New("signature image exceeds 10 MB")
	ErrUploadNotImage = errors.New("signature file is not an image")
	ErrBusy           = errors.New("signature upload already in progress")
)

// User-facing validation messages.
const (
	MsgDrawRequired   = "Please draw your signature"
	MsgTypeRequired   = "Please type your signature"
	MsgUploadRequired = "Please upload an image of your signature"
	MsgUploadTooLarge = "Signature image must be 10 MB or smaller"
	MsgUploadNotImage = "Signature file must be an image"
	MsgStrokeOutside  = "Signature strokes must stay inside the 600x200 canvas"
	MsgTooManyPoints  = "Signature has too many points; clear the canvas and sign again"
)

func validationFor(err error) error {
	switch {
	case errors.Is(err, ErrUploadTooLarge):
		return utils.NewValidationError("signature", MsgUploadTooLarge)
	case errors.Is(err, ErrUploadNotImage):
		return utils.NewValidationError("signature", MsgUploadNotImage)
	case errors.Is(err, ErrUploadMissing):
		return utils.NewValidationError("signature", MsgUploadRequired)
	}
	return err
}
