package domain

import "database/sql"

// User roles.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User account model (users table).
type User struct {
	UserID    string `db:"user_id"`
	CompanyID string `db:"company_id"`

	Email        string `db:"email"`         // NOT NULL, UNIQUE
	PasswordHash []byte `db:"password_hash"` // NOT NULL

	Role     string `db:"role"` // 'admin' | 'user'
	IsActive bool   `db:"is_active"`

	LastLoginAt sql.NullTime `db:"last_login_at"`

	CreatedAt sql.NullTime `db:"created_at"`
	UpdatedAt sql.NullTime `db:"updated_at"`
	DeletedAt sql.NullTime `db:"deleted_at"`
}

// Actor is the resolved caller of a core operation: built once at the
// access-control boundary and passed explicitly into every service call.
// Services never read caller identity from ambient state.
type Actor struct {
	UserID    string
	CompanyID string
	Role      string
}

// IsAdmin reports whether the actor may use company-wide/admin operations.
func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }
