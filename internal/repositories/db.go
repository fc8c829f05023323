package repositories

import (
	"context"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
)

// DB is the subset of *pgxpool.Pool the repositories use.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const createSessionsTable = `
	CREATE TABLE IF NOT EXISTS portal_sessions (
		id            UUID PRIMARY KEY,
		user_id       TEXT NOT NULL DEFAULT '',
		auth_token    TEXT NOT NULL DEFAULT '',
		user_type     TEXT NOT NULL DEFAULT '',
		partner_type  TEXT,
		values        JSONB NOT NULL DEFAULT '{}'::jsonb,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		expires_at    TIMESTAMPTZ NOT NULL,
		row_version   BIGINT NOT NULL DEFAULT 1
	);
	CREATE INDEX IF NOT EXISTS portal_sessions_expires_at_idx ON portal_sessions (expires_at);
`

// EnsureSchema creates the tables the portal owns.
func EnsureSchema(ctx context.Context, db DB) error {
	_, err := db.Exec(ctx, createSessionsTable)
	return err
}
