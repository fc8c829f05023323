package facility

import (
	"context"
	"strings"

	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/models"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/utils"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/utils/dcarbon"
)

// PayloadShape selects how meters are sent on facility creation.
type PayloadShape string

const (
	ShapeMeterIDs PayloadShape = "meterIds"
	ShapeMeterID  PayloadShape = "meterId"
)

// ParsePayloadShape falls back to ShapeMeterIDs for unknown values.
func ParsePayloadShape(s string) PayloadShape {
	if PayloadShape(s) == ShapeMeterID {
		return ShapeMeterID
	}
	return ShapeMeterIDs
}

var validate = utils.NewValidator()

// Input is a facility create request.
type Input struct {
	FacilityName    string                `json:"facilityName" validate:"required"`
	Nickname        string                `json:"nickname"`
	UtilityProvider string                `json:"utilityProvider" validate:"required"`
	AuthEmail       string                `json:"utilityAuthEmail" validate:"required,email"`
	MeterIDs        []string              `json:"meterIds" validate:"dive,required"`
	SameAddress     *bool                 `json:"sameAddress"`
	Address         string                `json:"address"`
	CommercialRole  models.CommercialRole `json:"commercialRole" validate:"omitempty,oneof=owner operator both"`
	EntityType      models.EntityType     `json:"entityType" validate:"omitempty,oneof=individual company"`
	COD             string                `json:"cod" validate:"omitempty,datetime=2006-01-02"`
	SystemSizeKW    *float64              `json:"systemSize" validate:"omitempty,gt=0"`
	StorageCapacity *float64              `json:"storageCapacity" validate:"omitempty,gte=0"`
	NetMetering     *bool                 `json:"netMetering"`
}

// Validate checks tags and the meter/address rules: at least one meter, and
// an explicit same-address confirmation or a manual address.
func (in *Input) Validate() error {
	in.FacilityName = strings.TrimSpace(in.FacilityName)
	in.Address = strings.TrimSpace(in.Address)

	fields := utils.FieldErrors(validate.Struct(in))
	if len(in.MeterIDs) == 0 {
		fields = append(fields, utils.FieldError{Field: "meterIds", Message: "Select a meter"})
	}
	switch {
	case in.SameAddress == nil:
		fields = append(fields, utils.FieldError{
			Field:   "sameAddress",
			Message: "Confirm whether the installation address matches the meter's service address",
		})
	case in.Address == "":
		fields = append(fields, utils.FieldError{Field: "address", Message: "Address is required"})
	}
	return utils.AsValidationError(fields)
}

// FormLookup finds the facility form a session has open.
type FormLookup interface {
	FormFor(sessionID string) (FormSnapshot, bool)
}

// BindForm checks in against the form the user confirmed and copies the
// form's selections into fields the request left empty. Every meter must be
// one of the form's electric meters, and a same-address confirmation always
// takes the confirmed meter's service address. A nil form is refused.
func (in *Input) BindForm(s *FormSnapshot) error {
	if s == nil || s.MeterID == "" {
		return utils.NewValidationError("meterIds", "Select a utility meter in the facility form first")
	}

	var fields []utils.FieldError
	switch {
	case in.AuthEmail == "":
		in.AuthEmail = s.AuthEmail
	case s.AuthEmail != "" && !strings.EqualFold(strings.TrimSpace(in.AuthEmail), s.AuthEmail):
		fields = append(fields, utils.FieldError{Field: "utilityAuthEmail", Message: "Use the utility account selected in the form"})
	}

	if len(in.MeterIDs) == 0 {
		in.MeterIDs = []string{s.MeterID}
	}
	for _, id := range in.MeterIDs {
		if m := findMeter(s.Meters, id); m == nil || !m.IsElectric() {
			fields = append(fields, utils.FieldError{Field: "meterIds", Message: "Select one of the listed electric meters"})
			break
		}
	}

	if in.SameAddress == nil && s.SameAddress != nil {
		in.SameAddress = utils.Ptr(*s.SameAddress)
	}
	switch {
	case in.SameAddress != nil && *in.SameAddress:
		m := findMeter(s.Meters, s.MeterID)
		if m == nil || strings.TrimSpace(m.ServiceAddress) == "" {
			fields = append(fields, utils.FieldError{Field: "sameAddress", Message: "The selected meter has no service address; enter the address manually"})
			break
		}
		in.Address = m.ServiceAddress
	case in.Address == "" && !s.AddressLocked:
		in.Address = s.Address
	}
	return utils.AsValidationError(fields)
}

// CreatePayload renders in for the remote create endpoint in the given shape.
func CreatePayload(in *Input, shape PayloadShape) map[string]any {
	p := map[string]any{
		"facilityName":     in.FacilityName,
		"utilityProvider":  in.UtilityProvider,
		"utilityAuthEmail": in.AuthEmail,
		"address":          in.Address,
	}
	if shape == ShapeMeterID {
		p["meterId"] = in.MeterIDs[0]
	} else {
		p["meterIds"] = in.MeterIDs
	}
	if in.Nickname != "" {
		p["nickname"] = in.Nickname
	}
	if in.CommercialRole != "" {
		p["commercialRole"] = in.CommercialRole
	}
	if in.EntityType != "" {
		p["entityType"] = in.EntityType
	}
	if in.COD != "" {
		p["cod"] = in.COD
	}
	if in.SystemSizeKW != nil {
		p["systemSize"] = *in.SystemSizeKW
	}
	if in.StorageCapacity != nil {
		p["storageCapacity"] = *in.StorageCapacity
	}
	if in.NetMetering != nil {
		p["netMetering"] = *in.NetMetering
	}
	return p
}

// EditInput is a partial facility update. Nil fields are left unchanged.
type EditInput struct {
	FacilityName    *string  `json:"facilityName" validate:"omitempty,min=1"`
	Nickname        *string  `json:"nickname"`
	Address         *string  `json:"address" validate:"omitempty,min=1"`
	COD             *string  `json:"cod" validate:"omitempty,datetime=2006-01-02"`
	SystemSizeKW    *float64 `json:"systemSize" validate:"omitempty,gt=0"`
	StorageCapacity *float64 `json:"storageCapacity" validate:"omitempty,gte=0"`
	NetMetering     *bool    `json:"netMetering"`
}

func (in *EditInput) Validate() error {
	return utils.AsValidationError(utils.FieldErrors(validate.Struct(in)))
}

// Patch returns only the fields that were set.
func (in *EditInput) Patch() map[string]any {
	p := map[string]any{}
	if in.FacilityName != nil {
		p["facilityName"] = strings.TrimSpace(*in.FacilityName)
	}
	if in.Nickname != nil {
		p["nickname"] = *in.Nickname
	}
	if in.Address != nil {
		p["address"] = strings.TrimSpace(*in.Address)
	}
	if in.COD != nil {
		p["cod"] = *in.COD
	}
	if in.SystemSizeKW != nil {
		p["systemSize"] = *in.SystemSizeKW
	}
	if in.StorageCapacity != nil {
		p["storageCapacity"] = *in.StorageCapacity
	}
	if in.NetMetering != nil {
		p["netMetering"] = *in.NetMetering
	}
	return p
}

// CreateAPI is the remote call a Creator makes.
type CreateAPI interface {
	CreateFacility(ctx context.Context, userID string, kind dcarbon.FacilityKind, payload any) (*models.Facility, error)
}

// Creator validates and submits facility create requests.
type Creator struct {
	api   CreateAPI
	shape func(ctx context.Context) PayloadShape
}

// NewCreator uses shape to pick the payload shape per request. A nil shape
// means ShapeMeterIDs.
func NewCreator(api CreateAPI, shape func(ctx context.Context) PayloadShape) *Creator {
	if shape == nil {
		shape = func(context.Context) PayloadShape { return ShapeMeterIDs }
	}
	return &Creator{api: api, shape: shape}
}

// Create validates in and posts it. Validation failures never reach the network.
func (c *Creator) Create(ctx context.Context, userID string, kind dcarbon.FacilityKind, in *Input) (*models.Facility, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return c.api.CreateFacility(ctx, userID, kind, CreatePayload(in, c.shape(ctx)))
}
