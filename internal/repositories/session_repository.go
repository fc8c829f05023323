package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/models"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/utils"
)

const sessionMaxRetries = 3

// SessionRepository persists portal sessions. The remote API bearer token is
// encrypted at rest with tokenKey.
type SessionRepository struct {
	db         DB
	tokenKey   []byte
	selectByID string
}

func NewSessionRepository(db DB, tokenKey []byte) *SessionRepository {
	return &SessionRepository{
		db:         db,
		tokenKey:   tokenKey,
		selectByID: baseSelectSession() + " WHERE id=$1",
	}
}

func (r *SessionRepository) Create(ctx context.Context, s *models.Session) error {
	enc, values, err := r.encode(s)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO portal_sessions (
			id, user_id, auth_token, user_type, partner_type, values,
			created_at, updated_at, expires_at, row_version
		) VALUES ($1,$2,$3,$4,$5,$6, NOW(), NOW(), $7, 1)
	`, s.ID, s.UserID, enc, string(s.UserType), partnerTypeArg(s.PartnerType), values, s.ExpiresAt)
	if err != nil {
		return err
	}
	s.RowVersion = 1
	return nil
}

// GetByID returns (nil, nil) when no session exists.
func (r *SessionRepository) GetByID(ctx context.Context, id string) (*models.Session, error) {
	return r.scan(r.db.QueryRow(ctx, r.selectByID, id))
}

func (r *SessionRepository) UpdateIfVersion(ctx context.Context, s *models.Session, expected int64) (pgconn.CommandTag, error) {
	enc, values, err := r.encode(s)
	if err != nil {
		return nil, err
	}
	return r.db.Exec(ctx, `
		UPDATE portal_sessions SET
			user_id=$1, auth_token=$2, user_type=$3, partner_type=$4, values=$5,
			expires_at=$6, updated_at=NOW(), row_version=row_version+1
		WHERE id=$7 AND row_version=$8
	`, s.UserID, enc, string(s.UserType), partnerTypeArg(s.PartnerType), values, s.ExpiresAt, s.ID, expected)
}

func (r *SessionRepository) UpdateWithRetry(ctx context.Context, id string, mutate func(*models.Session) error) error {
	err := WithRetry(ctx, sessionMaxRetries, id, r.GetByID, r.UpdateIfVersion, mutate)
	if errors.Is(err, pgx.ErrNoRows) {
		return utils.ErrMissingSession
	}
	return err
}

func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM portal_sessions WHERE id=$1`, id)
	return err
}

func (r *SessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM portal_sessions WHERE expires_at < $1`, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *SessionRepository) encode(s *models.Session) (string, []byte, error) {
	enc := ""
	if s.AuthToken != "" {
		var err error
		enc, err = utils.Encrypt(r.tokenKey, s.AuthToken)
		if err != nil {
			return "", nil, fmt.Errorf("encrypt auth token: %w", err)
		}
	}
	vals := s.Values
	if vals == nil {
		vals = map[string]json.RawMessage{}
	}
	raw, err := json.Marshal(vals)
	if err != nil {
		return "", nil, fmt.Errorf("marshal session values: %w", err)
	}
	return enc, raw, nil
}

func baseSelectSession() string {
	return `
		SELECT id, user_id, auth_token, user_type, partner_type, values,
		       created_at, updated_at, expires_at, row_version
		FROM portal_sessions`
}

func (r *SessionRepository) scan(row pgx.Row) (*models.Session, error) {
	var (
		s           models.Session
		id          uuid.UUID
		enc         string
		userType    string
		partnerType *string
		values      []byte
	)
	if err := row.Scan(&id, &s.UserID, &enc, &userType, &partnerType, &values,
		&s.CreatedAt, &s.UpdatedAt, &s.ExpiresAt, &s.RowVersion); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	s.ID = id
	s.UserType = models.UserType(userType)
	if partnerType != nil && *partnerType != "" {
		pt := models.PartnerType(*partnerType)
		s.PartnerType = &pt
	}
	if enc != "" {
		tok, err := utils.Decrypt(r.tokenKey, enc)
		if err != nil {
			return nil, fmt.Errorf("decrypt auth token: %w", err)
		}
		s.AuthToken = tok
	}
	s.Values = map[string]json.RawMessage{}
	if len(values) > 0 {
		if err := json.Unmarshal(values, &s.Values); err != nil {
			return nil, fmt.Errorf("unmarshal session values: %w", err)
		}
	}
	return &s, nil
}

func partnerTypeArg(pt *models.PartnerType) any {
	if pt == nil {
		return nil
	}
	return string(*pt)
}
