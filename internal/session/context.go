package session

import (
	"context"

	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/models"
)

type ctxKey struct{}

// WithSession attaches the request's session snapshot to ctx.
func WithSession(ctx context.Context, s *models.Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the snapshot attached by the session middleware, or nil.
func FromContext(ctx context.Context) *models.Session {
	s, _ := ctx.Value(ctxKey{}).(*models.Session)
	return s
}
