package repository

import (
	"context"

	"deskhive/internal/domain"
)

// SessionsRepository user session data access.
type SessionsRepository interface {
	// CreateSession inserts an active session row.
	CreateSession(ctx context.Context, s *domain.UserSession) error

	// GetSession returns the session by id, domain.ErrNotFound otherwise.
	GetSession(ctx context.Context, sessionID string) (*domain.UserSession, error)

	// SetSessionStatus updates the session status (logout, expiry).
	SetSessionStatus(ctx context.Context, sessionID, status string) error
}
