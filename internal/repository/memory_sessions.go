package repository

import (
	"context"
	"fmt"
	"sync"

	"deskhive/internal/domain"
)

// MemorySessionsRepository in-memory session repository for dev and tests.
type MemorySessionsRepository struct {
	mu       sync.RWMutex
	sessions map[string]*domain.UserSession
}

// NewMemorySessionsRepository creates the in-memory session repository.
func NewMemorySessionsRepository() *MemorySessionsRepository {
	return &MemorySessionsRepository{sessions: map[string]*domain.UserSession{}}
}

var _ SessionsRepository = (*MemorySessionsRepository)(nil)

func (r *MemorySessionsRepository) CreateSession(_ context.Context, s *domain.UserSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *s
	cp.CreatedAt = nowNull()
	r.sessions[s.SessionID] = &cp
	return nil
}

func (r *MemorySessionsRepository) GetSession(_ context.Context, sessionID string) (*domain.UserSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", sessionID, domain.ErrNotFound)
	}
	cp := *s
	return &cp, nil
}

func (r *MemorySessionsRepository) SetSessionStatus(_ context.Context, sessionID, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		return fmt.Errorf("session %s: %w", sessionID, domain.ErrNotFound)
	}
	s.Status = status
	return nil
}
