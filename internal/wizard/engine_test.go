package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/models"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/session"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/utils"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/utils/dcarbon"
)

const validAccount = `{
	"firstName": "Ada",
	"lastName": "Lovelace",
	"email": "ada@example.com",
	"phoneNumber": "555 123 4567",
	"password": "secret1",
	"confirmPassword": "secret1"
}`

func TestAdvance_EmptyRequiredFieldsNeverCallNetwork(t *testing.T) {
	for flow, steps := range flowSteps {
		for i, step := range steps {
			t.Run(string(flow)+"/"+step, func(t *testing.T) {
				api := newFakeAPI()
				creator := &fakeCreator{}
				eng := NewEngine(api, creator, nil, nil)

				sess := authedSession()
				require.NoError(t, saveState(sess, &State{Flow: flow, Step: i}))

				body := `{}`
				if step == StepOwners {
					body = `{"owners":[{}]}`
				}
				st, err := eng.Advance(context.Background(), sess, json.RawMessage(body))

				var verr *ValidationError
				require.True(t, errors.As(err, &verr), "got %v", err)
				assert.NotEmpty(t, verr.Fields)
				assert.Equal(t, i, st.Step)
				assert.Zero(t, api.total())
				assert.Zero(t, creator.calls)
			})
		}
	}
}

func TestAdvance_ResidentialReferralEndToEnd(t *testing.T) {
	var gotQuery, gotBody string
	srv := newRemote(t, func(path, query, body string) (int, string) {
		gotQuery, gotBody = query, body
		return 201, `{"status":"success","data":{"user":{"id":"u-77","userType":"RESIDENTIAL"},"token":"tok-77"}}`
	})
	client, err := dcarbon.NewClient(srv.URL, srv.Client())
	require.NoError(t, err)

	eng := NewEngine(client, &fakeCreator{}, nil, nil)
	sess := newSession()

	st, err := eng.Start(sess, "residential", "ABC123")
	require.NoError(t, err)
	assert.True(t, st.FlowLocked)

	view := NewView(sess, st)
	assert.Equal(t, map[string]string{"referralCode": "ABC123"}, view.Locked)

	// a tampered referral is refused before any request
	_, err = eng.Advance(context.Background(), sess, json.RawMessage(`{"referralCode":"HACKED"}`))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "referralCode", verr.Fields[0].Field)
	assert.Empty(t, gotQuery)

	st, err = eng.Advance(context.Background(), sess, json.RawMessage(validAccount))
	require.NoError(t, err)
	assert.Equal(t, 1, st.Step)
	assert.Equal(t, StepFinancial, st.StepName())

	assert.Equal(t, "referralCode=ABC123", gotQuery)
	assert.NotContains(t, gotBody, "referralCode")
	assert.NotContains(t, gotBody, "ABC123")
	assert.Contains(t, gotBody, `"phoneNumber":"(555)123-4567"`)

	assert.Equal(t, "u-77", sess.UserID)
	assert.Equal(t, "tok-77", sess.AuthToken)

	var saved map[string]any
	ok, err := session.GetJSON(sess, session.WizardStepKey("residential", StepAccount), &saved)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "ABC123", saved["referralCode"])
	assert.NotContains(t, saved, "password")
}

func TestAdvance_FinanceCashSkipsUpload(t *testing.T) {
	api := newFakeAPI()
	eng := NewEngine(api, &fakeCreator{}, nil, nil)
	sess := authedSession()
	require.NoError(t, saveState(sess, &State{Flow: FlowResidential, Step: 1}))

	st, err := eng.Advance(context.Background(), sess, json.RawMessage(`{"financeType":"cash"}`))
	require.NoError(t, err)
	assert.Equal(t, StepAgreement, st.StepName())
	assert.Zero(t, api.count("UploadFinancialAgreement"))
	assert.Equal(t, 1, api.count("UpdateFinancialInfo"))
	assert.Contains(t, sess.Values, session.KeyFinancialInfoResponse)
}

func TestAdvance_FinanceChoicesMatchRemoteLists(t *testing.T) {
	api := newFakeAPI()
	api.financeTypes = []dcarbon.FinanceType{{ID: "cash", Name: "Cash"}, {ID: "loan", Name: "Loan"}}
	api.installers = []dcarbon.Installer{{ID: "i-1", Name: "SunCo"}}
	eng := NewEngine(api, &fakeCreator{}, nil, nil)
	sess := authedSession()
	require.NoError(t, saveState(sess, &State{Flow: FlowResidential, Step: 1}))

	require.NoError(t, session.SetTempFinancialAgreement(sess, session.NewTempFile("deal.pdf", "application/pdf", []byte("%PDF"))))

	_, err := eng.Advance(context.Background(), sess, json.RawMessage(
		`{"financeType":"barter","financeCompany":"SunBank","installer":"Nobody"}`))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Fields, 2)
	assert.Equal(t, "financeType", verr.Fields[0].Field)
	assert.Equal(t, "installer", verr.Fields[1].Field)
	assert.Zero(t, api.count("UploadFinancialAgreement"))
	assert.Zero(t, api.count("UpdateFinancialInfo"))

	st, err := eng.Advance(context.Background(), sess, json.RawMessage(`{"financeType":"CASH","installer":"sunco"}`))
	require.NoError(t, err)
	assert.Equal(t, StepAgreement, st.StepName())
	require.NotNil(t, api.financialInfo)
	assert.Equal(t, "sunco", api.financialInfo.Installer)
}

func TestAdvance_FinanceListsUnavailableDegrade(t *testing.T) {
	api := newFakeAPI()
	api.listErr = &dcarbon.APIError{StatusCode: 503, Message: "unavailable"}
	eng := NewEngine(api, &fakeCreator{}, nil, nil)
	sess := authedSession()
	st := &State{Flow: FlowResidential, Step: 1}
	require.NoError(t, saveState(sess, st))

	opts := eng.Options(context.Background(), sess, st)
	require.NotNil(t, opts)
	assert.Empty(t, opts.FinanceTypes)
	assert.Empty(t, opts.Installers)
	assert.Equal(t, []string{noticeFinanceTypes, noticeInstallers}, opts.Notices)

	next, err := eng.Advance(context.Background(), sess, json.RawMessage(`{"financeType":"cash","installer":"Anyone"}`))
	require.NoError(t, err)
	assert.Equal(t, StepAgreement, next.StepName())
	assert.Equal(t, 1, api.count("UpdateFinancialInfo"))
}

func TestOptions_OnlyForFinancialStep(t *testing.T) {
	api := newFakeAPI()
	api.financeTypes = []dcarbon.FinanceType{{ID: "ppa", Name: "PPA"}}
	eng := NewEngine(api, &fakeCreator{}, nil, nil)
	sess := authedSession()

	assert.Nil(t, eng.Options(context.Background(), sess, &State{Flow: FlowResidential, Step: 0}))
	assert.Zero(t, api.total())

	opts := eng.Options(context.Background(), sess, &State{Flow: FlowResidential, Step: 1})
	require.NotNil(t, opts)
	assert.Equal(t, api.financeTypes, opts.FinanceTypes)
	assert.Empty(t, opts.Notices)
}

func TestAdvance_FinanceNonCashRequiresUpload(t *testing.T) {
	api := newFakeAPI()
	eng := NewEngine(api, &fakeCreator{}, nil, nil)
	sess := authedSession()
	require.NoError(t, saveState(sess, &State{Flow: FlowResidential, Step: 1}))
	body := json.RawMessage(`{"financeType":"loan","financeCompany":"SunBank"}`)

	_, err := eng.Advance(context.Background(), sess, body)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "financialAgreement", verr.Fields[0].Field)
	assert.Zero(t, api.total())

	require.NoError(t, session.SetTempFinancialAgreement(sess, session.NewTempFile("loan.pdf", "application/pdf", []byte("%PDF"))))

	st, err := eng.Advance(context.Background(), sess, body)
	require.NoError(t, err)
	assert.Equal(t, StepAgreement, st.StepName())
	assert.Equal(t, 1, api.count("UploadFinancialAgreement"))
	require.NotNil(t, api.financialInfo)
	assert.Equal(t, "https://files.example/loan.pdf", api.financialInfo.AgreementDocURL)
	assert.NotContains(t, sess.Values, session.KeyTempFinancialAgreement)
}

func TestAdvance_FinancePartialFailureDoesNotReupload(t *testing.T) {
	api := newFakeAPI()
	api.financialErr = &dcarbon.APIError{StatusCode: 400, Message: "Installer is not registered"}
	eng := NewEngine(api, &fakeCreator{}, nil, nil)
	sess := authedSession()
	require.NoError(t, saveState(sess, &State{Flow: FlowResidential, Step: 1}))
	require.NoError(t, session.SetTempFinancialAgreement(sess, session.NewTempFile("loan.pdf", "application/pdf", []byte("%PDF"))))
	body := json.RawMessage(`{"financeType":"ppa","financeCompany":"SunBank"}`)

	st, err := eng.Advance(context.Background(), sess, body)
	require.Error(t, err)
	assert.Equal(t, "Installer is not registered", dcarbon.UserMessage(err))
	assert.Equal(t, StepFinancial, st.StepName())

	tmp, err := session.TempFinancialAgreement(sess)
	require.NoError(t, err)
	assert.Equal(t, "https://files.example/loan.pdf", tmp.UploadedURL)

	api.financialErr = nil
	_, err = eng.Advance(context.Background(), sess, body)
	require.NoError(t, err)
	assert.Equal(t, 1, api.count("UploadFinancialAgreement"))
	assert.Equal(t, 2, api.count("UpdateFinancialInfo"))
}

func TestAdvance_RemoteFailureStaysOnStep(t *testing.T) {
	api := newFakeAPI()
	api.commercialErr = &dcarbon.APIError{StatusCode: 422, Message: "Company address is invalid"}
	eng := NewEngine(api, &fakeCreator{}, nil, nil)
	sess := authedSession()
	require.NoError(t, saveState(sess, &State{Flow: FlowCommercialOwner, Step: 1}))

	st, err := eng.Advance(context.Background(), sess, json.RawMessage(
		`{"entityType":"company","commercialRole":"owner","companyName":"Acme","companyAddress":"1 Main"}`))
	require.Error(t, err)
	assert.Equal(t, "Company address is invalid", dcarbon.UserMessage(err))
	assert.Equal(t, 1, st.Step)

	loaded, err := eng.Load(sess)
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.Step)
	assert.Contains(t, sess.Values, session.WizardStepKey(string(FlowCommercialOwner), StepCompany))
}

func TestAdvance_OwnersPercentagesBounded(t *testing.T) {
	api := newFakeAPI()
	eng := NewEngine(api, &fakeCreator{}, nil, nil)
	sess := authedSession()
	require.NoError(t, saveState(sess, &State{Flow: FlowCommercialOwner, Step: 2}))

	_, err := eng.Advance(context.Background(), sess, json.RawMessage(
		`{"owners":[{"fullName":"A","ownershipPercentage":60},{"fullName":"B","ownershipPercentage":50}]}`))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Zero(t, api.total())

	st, err := eng.Advance(context.Background(), sess, json.RawMessage(
		`{"owners":[{"fullName":"A","ownershipPercentage":60,"phoneNumber":"5551234567"},{"fullName":"B","ownershipPercentage":40}]}`))
	require.NoError(t, err)
	assert.Equal(t, StepFinancial, st.StepName())
	require.Len(t, api.owners, 2)
	assert.Equal(t, "(555)123-4567", api.owners[0].PhoneNumber)
}

func TestAdvance_AgreementNeedsSignature(t *testing.T) {
	api := newFakeAPI()
	eng := NewEngine(api, &fakeCreator{}, nil, nil)
	sess := authedSession()
	require.NoError(t, saveState(sess, &State{Flow: FlowPartner, Step: 2}))
	body := json.RawMessage(`{"termsAccepted":true,"privacyAccepted":true}`)

	_, err := eng.Advance(context.Background(), sess, body)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "signature", verr.Fields[0].Field)

	require.NoError(t, session.SetJSON(sess, session.KeySignatureURL, "https://cdn/sig.png"))
	st, err := eng.Advance(context.Background(), sess, body)
	require.NoError(t, err)
	assert.True(t, st.Completed)
	assert.Equal(t, 2, st.Step)

	_, err = eng.Advance(context.Background(), sess, body)
	assert.ErrorIs(t, err, ErrCompleted)
}

func TestAdvance_FacilityStepUsesCompanyRole(t *testing.T) {
	api := newFakeAPI()
	creator := &fakeCreator{}
	sess := authedSession()
	forms := confirmedForm(sess)
	eng := NewEngine(api, creator, forms, nil)
	require.NoError(t, session.SetJSON(sess, session.WizardStepKey(string(FlowCommercialOperator), StepCompany),
		map[string]string{"commercialRole": "operator"}))
	require.NoError(t, saveState(sess, &State{Flow: FlowCommercialOperator, Step: 3}))

	st, err := eng.Advance(context.Background(), sess, json.RawMessage(`{
		"facilityName":"Warehouse Roof","utilityProvider":"PG&E","utilityAuthEmail":"ops@acme.co",
		"meterIds":["m1"],"sameAddress":false,"address":"2 Dock Rd"}`))
	require.NoError(t, err)
	assert.True(t, st.Completed)
	assert.Equal(t, dcarbon.FacilityKindCommercial, creator.kind)
	assert.Equal(t, models.CommercialRoleOperator, creator.in.CommercialRole)
	assert.Equal(t, "2 Dock Rd", creator.in.Address)
	assert.Equal(t, []string{sess.GetID()}, forms.forgotten)
}

func TestAdvance_FacilityStepBindsConfirmedForm(t *testing.T) {
	const body = `{"facilityName":"Home Array","utilityProvider":"PG&E",
		"meterIds":%s,"sameAddress":true,"address":"anything I like"}`

	cases := []struct {
		name     string
		meterIDs string
		noForm   bool
		field    string
	}{
		{name: "no form open", meterIDs: `["m1"]`, noForm: true, field: "meterIds"},
		{name: "meter never listed", meterIDs: `["never-listed"]`, field: "meterIds"},
		{name: "second meter not in form", meterIDs: `["m1","m-gas"]`, field: "meterIds"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			creator := &fakeCreator{}
			sess := authedSession()
			forms := confirmedForm(sess)
			if tc.noForm {
				forms = &fakeForms{}
			}
			eng := NewEngine(newFakeAPI(), creator, forms, nil)
			require.NoError(t, saveState(sess, &State{Flow: FlowResidential, Step: 3}))

			st, err := eng.Advance(context.Background(), sess, json.RawMessage(fmt.Sprintf(body, tc.meterIDs)))
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Fields[0].Field)
			assert.Equal(t, 3, st.Step)
			assert.Zero(t, creator.calls)
		})
	}

	t.Run("same address comes from the confirmed meter", func(t *testing.T) {
		creator := &fakeCreator{}
		sess := authedSession()
		eng := NewEngine(newFakeAPI(), creator, confirmedForm(sess), nil)
		require.NoError(t, saveState(sess, &State{Flow: FlowResidential, Step: 3}))

		st, err := eng.Advance(context.Background(), sess, json.RawMessage(fmt.Sprintf(body, `["m1"]`)))
		require.NoError(t, err)
		assert.True(t, st.Completed)
		assert.Equal(t, "9 Meter Ln", creator.in.Address)
		assert.Equal(t, "ops@acme.co", creator.in.AuthEmail)
		assert.Equal(t, dcarbon.FacilityKindResidential, creator.kind)
	})
}

func TestAdvance_SeedMatchIgnoresCase(t *testing.T) {
	api := newFakeAPI()
	eng := NewEngine(api, &fakeCreator{}, nil, nil)
	sess := authedSession()
	require.NoError(t, saveState(sess, &State{
		Flow: FlowPartner, Step: 1, FlowLocked: true,
		Seeds: map[string]string{"partnerType": string(models.PartnerTypeInstaller)},
	}))

	_, err := eng.Advance(context.Background(), sess, json.RawMessage(
		`{"partnerType":"sales_agent","companyName":"SunCo","address":"1 Main St","phoneNumber":"5551234567"}`))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "partnerType", verr.Fields[0].Field)
	assert.Zero(t, api.total())

	st, err := eng.Advance(context.Background(), sess, json.RawMessage(
		`{"partnerType":"installer","companyName":"SunCo","address":"1 Main St","phoneNumber":"5551234567"}`))
	require.NoError(t, err)
	assert.Equal(t, StepAgreement, st.StepName())
	assert.Equal(t, 1, api.count("UpdatePartnerDetails"))
}

func TestBack_FloorsAndKeepsData(t *testing.T) {
	api := newFakeAPI()
	eng := NewEngine(api, &fakeCreator{}, nil, nil)
	sess := newSession()
	_, err := eng.Start(sess, "", "")
	require.NoError(t, err)

	st, err := eng.Back(sess)
	require.NoError(t, err)
	assert.Equal(t, 0, st.Step)

	_, err = eng.Advance(context.Background(), sess, json.RawMessage(validAccount))
	require.NoError(t, err)
	st, err = eng.Back(sess)
	require.NoError(t, err)
	assert.Equal(t, StepAccount, st.StepName())

	assert.Contains(t, sess.Values, session.WizardStepKey("residential", StepAccount))

	// re-submitting the account step of an existing account does not register again
	st, err = eng.Advance(context.Background(), sess, json.RawMessage(validAccount))
	require.NoError(t, err)
	assert.Equal(t, StepFinancial, st.StepName())
	assert.Equal(t, 1, api.count("Register"))
}

func TestSelect_LockedFlow(t *testing.T) {
	eng := NewEngine(newFakeAPI(), &fakeCreator{}, nil, nil)

	sess := newSession()
	st, err := eng.Start(sess, "operator", "")
	require.NoError(t, err)
	assert.Equal(t, FlowCommercialOperator, st.Flow)
	assert.Equal(t, "operator", st.Seeds["commercialRole"])

	_, err = eng.Select(sess, FlowResidential)
	assert.ErrorIs(t, err, utils.ErrFlowLocked)

	free := newSession()
	_, err = eng.Start(free, "", "")
	require.NoError(t, err)
	st, err = eng.Select(free, FlowPartner)
	require.NoError(t, err)
	assert.Equal(t, FlowPartner, st.Flow)

	_, err = eng.Start(free, "astronaut", "")
	assert.ErrorIs(t, err, utils.ErrUnknownFlow)
}

func TestAdvance_NotStarted(t *testing.T) {
	eng := NewEngine(newFakeAPI(), &fakeCreator{}, nil, nil)
	_, err := eng.Advance(context.Background(), newSession(), json.RawMessage(`{}`))
	assert.ErrorIs(t, err, ErrNotStarted)
}
