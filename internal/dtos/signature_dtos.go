package dtos

import "github.com/gloriousnetworker/DCarbon-project-sub003/internal/signature"

// SignatureRequest is the JSON form of a signature submission. Uploads use
// multipart instead.
type SignatureRequest struct {
	Mode    string              `json:"mode" validate:"required,oneof=draw type"`
	Strokes [][]signature.Point `json:"strokes,omitempty" validate:"max=200,dive,max=5000,dive"`
	Text    string              `json:"text,omitempty"`
}
