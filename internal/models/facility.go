package models

import "time"

type CommercialRole string

const (
	CommercialRoleOwner    CommercialRole = "owner"
	CommercialRoleOperator CommercialRole = "operator"
	CommercialRoleBoth     CommercialRole = "both"
)

type EntityType string

const (
	EntityTypeIndividual EntityType = "individual"
	EntityTypeCompany    EntityType = "company"
)

const (
	FacilityStatusPending  = "pending"
	FacilityStatusVerified = "verified"
)

// Facility is a site enrolled for REC generation.
type Facility struct {
	ID                string         `json:"id"`
	UserID            string         `json:"userId,omitempty"`
	FacilityName      string         `json:"facilityName"`
	Nickname          string         `json:"nickname,omitempty"`
	Address           string         `json:"address"`
	UtilityProvider   string         `json:"utilityProvider"`
	MeterIDs          []string       `json:"meterIds,omitempty"`
	CommercialRole    CommercialRole `json:"commercialRole,omitempty"`
	EntityType        EntityType     `json:"entityType,omitempty"`
	Status            string         `json:"status"`
	CreatedAt         time.Time      `json:"createdAt"`
	COD               *time.Time     `json:"cod,omitempty"`
	SystemSizeKW      *float64       `json:"systemSize,omitempty"`
	StorageCapacity   *float64       `json:"storageCapacity,omitempty"`
	NetMetering       *bool          `json:"netMetering,omitempty"`
	RegistrationStage int            `json:"registrationStage,omitempty"`
}

// FacilityPage is one page of the paginated facility list.
type FacilityPage struct {
	Facilities []Facility `json:"facilities"`
	Page       int        `json:"page"`
	TotalPages int        `json:"totalPages"`
	Total      int        `json:"total"`
}
