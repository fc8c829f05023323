package session

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/models"
)

// Keys under Session.Values. Names match the storage keys the web client used.
const (
	KeyUserID                 = "userId"
	KeyAuthToken              = "authToken"
	KeyUserType               = "userType"
	KeyPartnerType            = "partnerType"
	KeyFinancialInfoResponse  = "financialInfoResponse"
	KeyUtilityInfoResponse    = "utilityInfoResponse"
	KeyLoginResponse          = "loginResponse"
	KeyTempFinancialAgreement = "tempFinancialAgreement"
	KeyWizardState            = "wizard"
	KeySignatureURL           = "signatureUrl"
	keyWizardStepPrefix       = "wizard:"
)

// WizardStepKey is where a flow step's submitted data lives.
func WizardStepKey(flow, step string) string {
	return fmt.Sprintf("%s%s:%s", keyWizardStepPrefix, flow, step)
}

// SetJSON stores v under key, replacing any previous value.
func SetJSON(s *models.Session, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("session: marshal %s: %w", key, err)
	}
	if s.Values == nil {
		s.Values = map[string]json.RawMessage{}
	}
	s.Values[key] = raw
	return nil
}

// GetJSON decodes key into out. ok is false when the key is absent.
func GetJSON(s *models.Session, key string, out any) (ok bool, err error) {
	raw, ok := s.Values[key]
	if !ok || len(raw) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return true, fmt.Errorf("session: unmarshal %s: %w", key, err)
	}
	return true, nil
}

func Remove(s *models.Session, key string) {
	delete(s.Values, key)
}

// ApplyLogin records identity from a login or register response.
func ApplyLogin(s *models.Session, res *models.LoginResult) error {
	s.UserID = res.User.ID
	s.AuthToken = res.Token
	s.UserType = res.User.UserType
	s.PartnerType = res.User.PartnerType

	if err := SetJSON(s, KeyUserID, res.User.ID); err != nil {
		return err
	}
	if err := SetJSON(s, KeyUserType, res.User.UserType); err != nil {
		return err
	}
	if res.User.PartnerType != nil {
		if err := SetJSON(s, KeyPartnerType, *res.User.PartnerType); err != nil {
			return err
		}
	}
	// the token lives only in the encrypted column
	return SetJSON(s, KeyLoginResponse, res.User)
}

// Clear drops identity and every cached value, as logout did in the browser.
func Clear(s *models.Session) {
	s.UserID = ""
	s.AuthToken = ""
	s.UserType = ""
	s.PartnerType = nil
	s.Values = map[string]json.RawMessage{}
}

// TempFile is a file chosen in one request and uploaded in a later one.
type TempFile struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Data        string `json:"data"`
	UploadedURL string `json:"uploadedUrl,omitempty"`
}

func NewTempFile(filename, contentType string, data []byte) TempFile {
	return TempFile{
		Filename:    filename,
		ContentType: contentType,
		Data:        base64.StdEncoding.EncodeToString(data),
	}
}

func (f TempFile) Bytes() ([]byte, error) {
	return base64.StdEncoding.DecodeString(f.Data)
}

func TempFinancialAgreement(s *models.Session) (*TempFile, error) {
	var f TempFile
	ok, err := GetJSON(s, KeyTempFinancialAgreement, &f)
	if err != nil || !ok {
		return nil, err
	}
	return &f, nil
}

func SetTempFinancialAgreement(s *models.Session, f TempFile) error {
	return SetJSON(s, KeyTempFinancialAgreement, f)
}
