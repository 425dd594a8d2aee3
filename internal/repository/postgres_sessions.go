package repository

import (
	"context"
	"database/sql"
	"fmt"

	"deskhive/internal/domain"
)

// PostgresSessionsRepository session repository implementation.
type PostgresSessionsRepository struct {
	db *sql.DB
}

// NewPostgresSessionsRepository creates the session repository.
func NewPostgresSessionsRepository(db *sql.DB) *PostgresSessionsRepository {
	return &PostgresSessionsRepository{db: db}
}

var _ SessionsRepository = (*PostgresSessionsRepository)(nil)

func (r *PostgresSessionsRepository) CreateSession(ctx context.Context, s *domain.UserSession) error {
	query := `
		INSERT INTO user_sessions (session_id, user_id, token, status, expires_at)
		VALUES ($1::uuid, $2::uuid, $3, $4, $5)
	`

	_, err := r.db.ExecContext(ctx, query, s.SessionID, s.UserID, s.Token, s.Status, s.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (r *PostgresSessionsRepository) GetSession(ctx context.Context, sessionID string) (*domain.UserSession, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session_id is required")
	}

	query := `
		SELECT session_id::text,
		       user_id::text,
		       token,
		       status,
		       created_at,
		       expires_at
		  FROM user_sessions
		 WHERE session_id = $1::uuid
	`

	var s domain.UserSession
	err := r.db.QueryRowContext(ctx, query, sessionID).Scan(
		&s.SessionID,
		&s.UserID,
		&s.Token,
		&s.Status,
		&s.CreatedAt,
		&s.ExpiresAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("session %s: %w", sessionID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &s, nil
}

func (r *PostgresSessionsRepository) SetSessionStatus(ctx context.Context, sessionID, status string) error {
	query := `UPDATE user_sessions SET status = $2 WHERE session_id = $1::uuid`

	result, err := r.db.ExecContext(ctx, query, sessionID, status)
	if err != nil {
		return fmt.Errorf("failed to set session status: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("session %s: %w", sessionID, domain.ErrNotFound)
	}
	return nil
}
