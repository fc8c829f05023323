package services

import (
	"context"
	"net/url"

	"golang.org/x/sync/errgroup"

	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/dtos"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/facility"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/models"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/utils"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/utils/dcarbon"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/wizard"
)

// progressConcurrency bounds how many facility cards compute their stage at
// once.
const progressConcurrency = 4

// FacilityAPI is everything the facility views need from the remote API.
type FacilityAPI interface {
	facility.CreateAPI
	facility.ProgressSource
	facility.DropdownSource
	ListFacilities(ctx context.Context, userID string, query url.Values) (*models.FacilityPage, error)
	GetFacility(ctx context.Context, facilityID string) (*models.Facility, error)
	UpdateFacility(ctx context.Context, facilityID string, patch map[string]any) (*models.Facility, error)
}

type FacilityService interface {
	SessionForgetter
	facility.FormLookup
	List(ctx context.Context, sess *models.Session, q facility.ListQuery) (*dtos.FacilityListResponse, error)
	Get(ctx context.Context, sess *models.Session, id string) (*dtos.FacilityWithProgress, error)
	Create(ctx context.Context, sess *models.Session, in *facility.Input) (*models.Facility, error)
	Update(ctx context.Context, sess *models.Session, id string, in *facility.EditInput) (*models.Facility, error)

	OpenForm(ctx context.Context, sess *models.Session) (facility.FormSnapshot, error)
	SelectAccount(ctx context.Context, sess *models.Session, authEmail string) (facility.FormSnapshot, error)
	SelectMeter(ctx context.Context, sess *models.Session, meterID string) (facility.FormSnapshot, error)
	ConfirmAddress(ctx context.Context, sess *models.Session, same bool, address string) (facility.FormSnapshot, error)
}

type facilityService struct {
	*sessionCache[*facility.Form]
	api     FacilityAPI
	creator *facility.Creator
}

func NewFacilityService(api FacilityAPI, creator *facility.Creator) FacilityService {
	if creator == nil {
		creator = facility.NewCreator(api, nil)
	}
	return &facilityService{
		sessionCache: newSessionCache[*facility.Form](nil),
		api:          api,
		creator:      creator,
	}
}

// ----------------------------------------------------------------------------
// List / detail
// ----------------------------------------------------------------------------

// List fetches one page, re-applies the filters locally, and computes each
// card's progress stage.
func (s *facilityService) List(ctx context.Context, sess *models.Session, q facility.ListQuery) (*dtos.FacilityListResponse, error) {
	rctx, userID, err := remoteCtx(ctx, sess)
	if err != nil {
		return nil, err
	}
	page, err := s.api.ListFacilities(rctx, userID, q.Values())
	if err != nil {
		return nil, err
	}
	if page == nil {
		page = &models.FacilityPage{}
	}

	filtered := facility.FilterLocal(page.Facilities, q)
	cards := make([]dtos.FacilityWithProgress, len(filtered))

	g, gctx := errgroup.WithContext(rctx)
	g.SetLimit(progressConcurrency)
	for i := range filtered {
		g.Go(func() error {
			cards[i] = dtos.FacilityWithProgress{
				Facility:      filtered[i],
				ProgressStage: facility.Stage(gctx, s.api, userID, &filtered[i]),
			}
			return nil
		})
	}
	_ = g.Wait()

	pageNum := page.Page
	if pageNum < 1 {
		pageNum = max(q.Page, 1)
	}
	return &dtos.FacilityListResponse{
		Facilities: cards,
		Page:       pageNum,
		Limit:      facility.PageLimit,
		TotalPages: page.TotalPages,
		Total:      page.Total,
	}, nil
}

func (s *facilityService) Get(ctx context.Context, sess *models.Session, id string) (*dtos.FacilityWithProgress, error) {
	rctx, userID, err := remoteCtx(ctx, sess)
	if err != nil {
		return nil, err
	}
	f, err := s.owned(rctx, userID, id)
	if err != nil {
		return nil, err
	}
	return &dtos.FacilityWithProgress{
		Facility:      *f,
		ProgressStage: facility.Stage(rctx, s.api, userID, f),
	}, nil
}

// ----------------------------------------------------------------------------
// Create / update
// ----------------------------------------------------------------------------

// Create submits a new facility. The request must match the meter and
// address the user confirmed in the session's open form.
func (s *facilityService) Create(ctx context.Context, sess *models.Session, in *facility.Input) (*models.Facility, error) {
	rctx, userID, err := remoteCtx(ctx, sess)
	if err != nil {
		return nil, err
	}

	var kind dcarbon.FacilityKind
	switch sess.UserType {
	case models.UserTypeCommercial:
		kind = dcarbon.FacilityKindCommercial
		if in.CommercialRole == "" {
			in.CommercialRole = wizard.CommercialRole(sess)
		}
	case models.UserTypeResidential, "":
		kind = dcarbon.FacilityKindResidential
	default:
		return nil, forbidden("Partners cannot register facilities")
	}

	var confirmed *facility.FormSnapshot
	if snap, ok := s.FormFor(sess.GetID()); ok {
		confirmed = &snap
	}
	if err := in.BindForm(confirmed); err != nil {
		return nil, err
	}

	f, err := s.creator.Create(rctx, userID, kind, in)
	if err != nil {
		return nil, err
	}
	s.Forget(sess.GetID())
	utils.Logger.WithField("userId", userID).WithField("facilityId", f.ID).Info("facility created")
	return f, nil
}

func (s *facilityService) Update(ctx context.Context, sess *models.Session, id string, in *facility.EditInput) (*models.Facility, error) {
	rctx, userID, err := remoteCtx(ctx, sess)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	patch := in.Patch()
	if len(patch) == 0 {
		return nil, utils.NewValidationError("", "Nothing to update")
	}
	if _, err := s.owned(rctx, userID, id); err != nil {
		return nil, err
	}
	return s.api.UpdateFacility(rctx, id, patch)
}

// ----------------------------------------------------------------------------
// Create/edit form
// ----------------------------------------------------------------------------

// FormFor returns the session's open form, if any.
func (s *facilityService) FormFor(sessionID string) (facility.FormSnapshot, bool) {
	form, ok := s.peek(sessionID)
	if !ok || form == nil {
		return facility.FormSnapshot{}, false
	}
	return form.Snapshot(), true
}

// OpenForm starts a fresh dropdown form for the session, replacing any
// previous one.
func (s *facilityService) OpenForm(ctx context.Context, sess *models.Session) (facility.FormSnapshot, error) {
	rctx, userID, err := remoteCtx(ctx, sess)
	if err != nil {
		return facility.FormSnapshot{}, err
	}
	form := facility.NewForm(s.api, userID)
	s.put(sess.GetID(), form)
	return form.Open(rctx), nil
}

func (s *facilityService) SelectAccount(ctx context.Context, sess *models.Session, authEmail string) (facility.FormSnapshot, error) {
	rctx, _, err := remoteCtx(ctx, sess)
	if err != nil {
		return facility.FormSnapshot{}, err
	}
	form, err := s.form(sess)
	if err != nil {
		return facility.FormSnapshot{}, err
	}
	return form.SelectAccount(rctx, authEmail), nil
}

func (s *facilityService) SelectMeter(_ context.Context, sess *models.Session, meterID string) (facility.FormSnapshot, error) {
	form, err := s.form(sess)
	if err != nil {
		return facility.FormSnapshot{}, err
	}
	snap, err := form.SelectMeter(meterID)
	switch err {
	case facility.ErrNoAccountSelected:
		return snap, utils.NewValidationError("utilityAuthEmail", "Select a utility account first")
	case facility.ErrUnknownMeter:
		return snap, utils.NewValidationError("meterId", "Select one of the listed meters")
	}
	return snap, err
}

func (s *facilityService) ConfirmAddress(_ context.Context, sess *models.Session, same bool, address string) (facility.FormSnapshot, error) {
	form, err := s.form(sess)
	if err != nil {
		return facility.FormSnapshot{}, err
	}
	if !same && address == "" {
		return form.Snapshot(), utils.NewValidationError("address", "Address is required")
	}
	return form.ConfirmAddress(same, address)
}

// ----------------------------------------------------------------------------
// internals
// ----------------------------------------------------------------------------

func (s *facilityService) form(sess *models.Session) (*facility.Form, error) {
	form, ok := s.peek(sess.GetID())
	if !ok || form == nil {
		return nil, notFound("Open the facility form first", utils.ErrNotFound)
	}
	return form, nil
}

// owned fetches a facility and hides ones that belong to another user.
func (s *facilityService) owned(ctx context.Context, userID, id string) (*models.Facility, error) {
	f, err := s.api.GetFacility(ctx, id)
	if err != nil {
		if dcarbon.IsNotFound(err) {
			return nil, notFound("Facility not found", err)
		}
		return nil, err
	}
	if f == nil || (f.UserID != "" && f.UserID != userID) {
		return nil, notFound("Facility not found", utils.ErrNotFound)
	}
	return f, nil
}
