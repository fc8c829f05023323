package dtos

import "github.com/gloriousnetworker/DCarbon-project-sub003/internal/models"

// FacilityWithProgress is a facility card: the record plus its progress stage.
type FacilityWithProgress struct {
	models.Facility
	ProgressStage int `json:"progressStage"`
}

type FacilityListResponse struct {
	Facilities []FacilityWithProgress `json:"facilities"`
	Page       int                    `json:"page"`
	Limit      int                    `json:"limit"`
	TotalPages int                    `json:"totalPages"`
	Total      int                    `json:"total"`
}

type FormAccountRequest struct {
	UtilityAuthEmail string `json:"utilityAuthEmail" validate:"required,email"`
}

type FormMeterRequest struct {
	MeterID string `json:"meterId" validate:"required"`
}

type FormAddressRequest struct {
	SameAddress *bool  `json:"sameAddress" validate:"required"`
	Address     string `json:"address"`
}
