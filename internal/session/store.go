// Package session replaces the browser's persistent key/value storage with an
// explicit server-side session that handlers read and write through one
// accessor module.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/models"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/utils"
)

// Store persists sessions. GetByID returns (nil, nil) for unknown ids.
type Store interface {
	Create(ctx context.Context, s *models.Session) error
	GetByID(ctx context.Context, id string) (*models.Session, error)
	UpdateWithRetry(ctx context.Context, id string, mutate func(*models.Session) error) error
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// MemoryStore is a process-local Store. Used when Postgres sessions are
// disabled and as the fake in tests.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*models.Session)}
}

func (m *MemoryStore) Create(_ context.Context, s *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	s.RowVersion = 1
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now
	m.sessions[s.GetID()] = s.Clone()
	return nil
}

func (m *MemoryStore) GetByID(_ context.Context, id string) (*models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	return s.Clone(), nil
}

func (m *MemoryStore) UpdateWithRetry(_ context.Context, id string, mutate func(*models.Session) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.sessions[id]
	if !ok {
		return utils.ErrMissingSession
	}
	next := cur.Clone()
	if err := mutate(next); err != nil {
		return err
	}
	next.RowVersion = cur.RowVersion + 1
	next.UpdatedAt = time.Now()
	m.sessions[id] = next
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *MemoryStore) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, s := range m.sessions {
		if s.Expired(now) {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}
