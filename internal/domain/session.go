package domain

import "database/sql"

// Session status values.
const (
	SessionActive   = "active"
	SessionInactive = "inactive"
	SessionExpired  = "expired"
)

// UserSession credential session model (user_sessions table).
// A bearer token is only honored while its session row is 'active'.
type UserSession struct {
	SessionID string `db:"session_id"`
	UserID    string `db:"user_id"`
	Token     string `db:"token"` // UNIQUE
	Status    string `db:"status"`

	CreatedAt sql.NullTime `db:"created_at"`
	ExpiresAt sql.NullTime `db:"expires_at"`
}
