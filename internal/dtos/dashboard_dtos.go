package dtos

import "github.com/gloriousnetworker/DCarbon-project-sub003/internal/models"

type DashboardResponse struct {
	UserType    models.UserType     `json:"userType"`
	PartnerType *models.PartnerType `json:"partnerType,omitempty"`
	Views       []string            `json:"views"`
	DefaultView string              `json:"defaultView"`
}
