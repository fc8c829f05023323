package services

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/facility"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/models"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/utils"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/utils/dcarbon"
)

func TestFacilityService_ListComputesStages(t *testing.T) {
	remote := newFakeRemote()
	var sent url.Values
	remote.listFacilities = func(q url.Values) (*models.FacilityPage, error) {
		sent = q
		return &models.FacilityPage{
			Facilities: []models.Facility{
				{ID: "f1", FacilityName: "Barn Roof", RegistrationStage: facility.StageVerified},
				{ID: "f2", FacilityName: "Garage"},
			},
			Page: 1, TotalPages: 3, Total: 22,
		}, nil
	}
	_, store := newSessions(t, remote)
	sess := storedSession(t, store, models.UserTypeResidential)
	svc := NewFacilityService(remote, nil)

	out, err := svc.List(context.Background(), sess, facility.ListQuery{Status: "All"})
	require.NoError(t, err)

	assert.Equal(t, "10", sent.Get("limit"))
	assert.Empty(t, sent.Get("status"))
	require.Len(t, out.Facilities, 2)
	assert.Equal(t, facility.StageVerified, out.Facilities[0].ProgressStage)
	assert.Equal(t, facility.StageRegistered, out.Facilities[1].ProgressStage)
	assert.Equal(t, 3, out.TotalPages)
	assert.Equal(t, facility.PageLimit, out.Limit)
}

func TestFacilityService_GetHidesForeignFacilities(t *testing.T) {
	remote := newFakeRemote()
	remote.getFacility = func(id string) (*models.Facility, error) {
		return &models.Facility{ID: id, UserID: "someone-else"}, nil
	}
	_, store := newSessions(t, remote)
	sess := storedSession(t, store, models.UserTypeResidential)
	svc := NewFacilityService(remote, nil)

	_, err := svc.Get(context.Background(), sess, "f9")
	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusNotFound, appErr.StatusCode)
}

func TestFacilityService_PartnersCannotCreate(t *testing.T) {
	remote := newFakeRemote()
	_, store := newSessions(t, remote)
	sess := storedSession(t, store, models.UserTypePartner)
	svc := NewFacilityService(remote, nil)

	_, err := svc.Create(context.Background(), sess, &facility.Input{})
	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusForbidden, appErr.StatusCode)
	assert.Zero(t, remote.count("CreateFacility"))
}

func TestFacilityService_CreateUsesConfirmedForm(t *testing.T) {
	remote := newFakeRemote()
	remote.accounts = []models.UtilityAccount{{ID: "a1", AuthEmail: "meter@example.com"}}
	remote.meters = []models.Meter{
		{UID: "m-gas", ServiceClass: "gas", ServiceAddress: "1 Gas St"},
		{UID: "m-1", ServiceClass: "electric", ServiceAddress: "12 Solar Way"},
	}
	var gotKind dcarbon.FacilityKind
	var gotPayload map[string]any
	remote.createFacility = func(kind dcarbon.FacilityKind, payload any) (*models.Facility, error) {
		gotKind = kind
		gotPayload = payload.(map[string]any)
		return &models.Facility{ID: "fac-new"}, nil
	}
	_, store := newSessions(t, remote)
	sess := storedSession(t, store, models.UserTypeResidential)
	svc := NewFacilityService(remote, nil)
	ctx := context.Background()

	snap, err := svc.OpenForm(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, facility.FormReady, snap.State)

	snap, err = svc.SelectAccount(ctx, sess, "meter@example.com")
	require.NoError(t, err)
	require.Len(t, snap.Meters, 1)

	_, err = svc.SelectMeter(ctx, sess, "m-gas")
	var vErr *utils.ValidationError
	require.ErrorAs(t, err, &vErr)

	_, err = svc.SelectMeter(ctx, sess, "m-1")
	require.NoError(t, err)
	snap, err = svc.ConfirmAddress(ctx, sess, true, "")
	require.NoError(t, err)
	assert.Equal(t, "12 Solar Way", snap.Address)

	_, err = svc.Create(ctx, sess, &facility.Input{
		FacilityName:    "Home Array",
		UtilityProvider: "p1",
		MeterIDs:        []string{"m-gas"},
	})
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "meterIds", vErr.Fields[0].Field)
	assert.Zero(t, remote.count("CreateFacility"))

	f, err := svc.Create(ctx, sess, &facility.Input{
		FacilityName:    "Home Array",
		UtilityProvider: "p1",
		Address:         "ignored when locked",
	})
	require.NoError(t, err)
	assert.Equal(t, "fac-new", f.ID)
	assert.Equal(t, dcarbon.FacilityKindResidential, gotKind)
	assert.Equal(t, "12 Solar Way", gotPayload["address"])
	assert.Equal(t, []string{"m-1"}, gotPayload["meterIds"])
	assert.Equal(t, "meter@example.com", gotPayload["utilityAuthEmail"])

	// the form is dropped once the facility exists
	_, err = svc.SelectMeter(ctx, sess, "m-1")
	require.ErrorAs(t, err, new(*utils.AppError))
}

func TestFacilityService_CreateValidationSkipsRemote(t *testing.T) {
	remote := newFakeRemote()
	_, store := newSessions(t, remote)
	sess := storedSession(t, store, models.UserTypeCommercial)
	svc := NewFacilityService(remote, nil)

	_, err := svc.Create(context.Background(), sess, &facility.Input{FacilityName: "Plant"})
	var vErr *utils.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Zero(t, remote.count("CreateFacility"))
}

func TestFacilityService_CreateRequiresOpenForm(t *testing.T) {
	remote := newFakeRemote()
	_, store := newSessions(t, remote)
	sess := storedSession(t, store, models.UserTypeResidential)
	svc := NewFacilityService(remote, nil)

	_, err := svc.Create(context.Background(), sess, &facility.Input{
		FacilityName:    "Home Array",
		UtilityProvider: "p1",
		AuthEmail:       "meter@example.com",
		MeterIDs:        []string{"never-listed"},
		SameAddress:     utils.Ptr(true),
		Address:         "anything I like",
	})
	var vErr *utils.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "meterIds", vErr.Fields[0].Field)
	assert.Zero(t, remote.count("CreateFacility"))
}

func TestFacilityService_Update(t *testing.T) {
	remote := newFakeRemote()
	var gotPatch map[string]any
	remote.updateFacility = func(id string, patch map[string]any) (*models.Facility, error) {
		gotPatch = patch
		return &models.Facility{ID: id, Nickname: "Roof"}, nil
	}
	_, store := newSessions(t, remote)
	sess := storedSession(t, store, models.UserTypeResidential)
	svc := NewFacilityService(remote, nil)

	t.Run("empty patch", func(t *testing.T) {
		_, err := svc.Update(context.Background(), sess, "f1", &facility.EditInput{})
		var vErr *utils.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Zero(t, remote.count("UpdateFacility"))
	})

	t.Run("nickname only", func(t *testing.T) {
		f, err := svc.Update(context.Background(), sess, "f1", &facility.EditInput{Nickname: utils.Ptr("Roof")})
		require.NoError(t, err)
		assert.Equal(t, "Roof", f.Nickname)
		assert.Equal(t, map[string]any{"nickname": "Roof"}, gotPatch)
	})
}

func TestFacilityService_FormNeedsOpen(t *testing.T) {
	remote := newFakeRemote()
	_, store := newSessions(t, remote)
	sess := storedSession(t, store, models.UserTypeResidential)
	svc := NewFacilityService(remote, nil)

	_, err := svc.ConfirmAddress(context.Background(), sess, true, "")
	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusNotFound, appErr.StatusCode)
}
