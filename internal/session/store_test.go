package session

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/models"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/utils"
)

func TestMemoryStore_UpdateIsolation(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	s := &models.Session{ID: uuid.New(), ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, st.Create(ctx, s))

	snapshot, err := st.GetByID(ctx, s.GetID())
	require.NoError(t, err)
	require.NoError(t, SetJSON(snapshot, KeyUserID, "leaked"))

	fresh, err := st.GetByID(ctx, s.GetID())
	require.NoError(t, err)
	_, present := fresh.Values[KeyUserID]
	assert.False(t, present, "snapshots must not alias stored values")

	require.NoError(t, st.UpdateWithRetry(ctx, s.GetID(), func(cur *models.Session) error {
		return SetJSON(cur, KeyUserID, "u1")
	}))
	fresh, _ = st.GetByID(ctx, s.GetID())
	var uid string
	ok, err := GetJSON(fresh, KeyUserID, &uid)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "u1", uid)
	assert.Equal(t, int64(2), fresh.RowVersion)
}

func TestMemoryStore_MissingAndExpired(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()

	got, err := st.GetByID(ctx, uuid.NewString())
	require.NoError(t, err)
	assert.Nil(t, got)

	err = st.UpdateWithRetry(ctx, uuid.NewString(), func(*models.Session) error { return nil })
	assert.ErrorIs(t, err, utils.ErrMissingSession)

	old := &models.Session{ID: uuid.New(), ExpiresAt: time.Now().Add(-time.Second)}
	live := &models.Session{ID: uuid.New(), ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, st.Create(ctx, old))
	require.NoError(t, st.Create(ctx, live))

	n, err := st.DeleteExpired(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	got, _ = st.GetByID(ctx, live.GetID())
	assert.NotNil(t, got)
}

func TestApplyLoginAndClear(t *testing.T) {
	pt := models.PartnerTypeSalesAgent
	s := &models.Session{ID: uuid.New()}
	require.NoError(t, ApplyLogin(s, &models.LoginResult{
		User:  models.User{ID: "u9", UserType: models.UserTypePartner, PartnerType: &pt},
		Token: "tok",
	}))

	assert.True(t, s.Authenticated())
	assert.Contains(t, s.Values, KeyLoginResponse)
	assert.NotContains(t, string(s.Values[KeyLoginResponse]), "tok")

	Clear(s)
	assert.False(t, s.Authenticated())
	assert.Empty(t, s.Values)
}

func TestTempFinancialAgreement(t *testing.T) {
	s := &models.Session{}
	f, err := TempFinancialAgreement(s)
	require.NoError(t, err)
	assert.Nil(t, f)

	require.NoError(t, SetTempFinancialAgreement(s, NewTempFile("loan.pdf", "application/pdf", []byte("%PDF-1.4"))))
	f, err = TempFinancialAgreement(s)
	require.NoError(t, err)
	require.NotNil(t, f)
	data, err := f.Bytes()
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4"), data)
	assert.Equal(t, "wizard:residential:financial", WizardStepKey("residential", "financial"))
}
