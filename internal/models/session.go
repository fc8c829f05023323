package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Session is the portal's server-side replacement for browser local storage.
type Session struct {
	Versioned

	ID          uuid.UUID                  `json:"id"`
	UserID      string                     `json:"userId,omitempty"`
	AuthToken   string                     `json:"-"`
	UserType    UserType                   `json:"userType,omitempty"`
	PartnerType *PartnerType               `json:"partnerType,omitempty"`
	Values      map[string]json.RawMessage `json:"values,omitempty"`
	CreatedAt   time.Time                  `json:"createdAt"`
	UpdatedAt   time.Time                  `json:"updatedAt"`
	ExpiresAt   time.Time                  `json:"expiresAt"`
}

func (s *Session) GetID() string { return s.ID.String() }

func (s *Session) Authenticated() bool {
	return s != nil && s.UserID != "" && s.AuthToken != ""
}

func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// Clone returns a deep copy so stores never share the Values map.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	cp := *s
	if s.PartnerType != nil {
		pt := *s.PartnerType
		cp.PartnerType = &pt
	}
	cp.Values = make(map[string]json.RawMessage, len(s.Values))
	for k, v := range s.Values {
		cp.Values[k] = append(json.RawMessage(nil), v...)
	}
	return &cp
}
