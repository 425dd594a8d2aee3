package repository

import (
	"context"

	"deskhive/internal/domain"
)

// UsersRepository user account data access.
type UsersRepository interface {
	// GetUser returns a live user scoped to a company.
	GetUser(ctx context.Context, companyID, userID string) (*domain.User, error)

	// GetUserByEmail looks a user up across companies (login path).
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)

	// CreateUser inserts a new user and returns its id.
	CreateUser(ctx context.Context, user *domain.User) (string, error)

	// ListActiveUsers returns all active, live users of a company.
	ListActiveUsers(ctx context.Context, companyID string) ([]*domain.User, error)

	// ListActiveAdmins returns active admin-role users of a company.
	ListActiveAdmins(ctx context.Context, companyID string) ([]*domain.User, error)

	// FilterActiveUserIDs returns the subset of ids that are active, live
	// users of the company. Used for guest validation.
	FilterActiveUserIDs(ctx context.Context, companyID string, userIDs []string) (map[string]bool, error)

	// UpdateLastLogin stamps last_login_at = now.
	UpdateLastLogin(ctx context.Context, userID string) error
}
