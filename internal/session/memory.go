package session

import (
	"context"
	"sync"
)

type memoryStore struct {
	mu       sync.RWMutex
	sessions map[int64]Session
}

// NewMemoryStore constructs the default in-memory Store. Contents are
// lost on restart, which the onboarding design accepts.
func NewMemoryStore() Store {
	return &memoryStore{
		sessions: make(map[int64]Session),
	}
}

// Get returns a copy of the stored session so callers can mutate it
// freely before calling Put.
func (m *memoryStore) Get(_ context.Context, userID int64) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sess, ok := m.sessions[userID]
	if !ok {
		return nil, ErrNotFound
	}
	copied := sess
	return &copied, nil
}

func (m *memoryStore) Put(_ context.Context, sess *Session) error {
	if sess == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.UserID] = *sess
	return nil
}

func (m *memoryStore) Delete(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
	return nil
}
