package repository

import (
	"context"
	"database/sql"
	"fmt"

	"deskhive/internal/domain"

	"github.com/lib/pq"
)

// PostgresUsersRepository user repository implementation.
type PostgresUsersRepository struct {
	db *sql.DB
}

// NewPostgresUsersRepository creates the user repository.
func NewPostgresUsersRepository(db *sql.DB) *PostgresUsersRepository {
	return &PostgresUsersRepository{db: db}
}

var _ UsersRepository = (*PostgresUsersRepository)(nil)

const userColumns = `
	user_id::text,
	company_id::text,
	email,
	password_hash,
	role,
	is_active,
	last_login_at,
	created_at,
	updated_at
`

func scanUser(row interface{ Scan(...any) error }) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.UserID,
		&u.CompanyID,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.IsActive,
		&u.LastLoginAt,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *PostgresUsersRepository) GetUser(ctx context.Context, companyID, userID string) (*domain.User, error) {
	if companyID == "" || userID == "" {
		return nil, fmt.Errorf("company_id and user_id are required")
	}

	query := `
		SELECT ` + userColumns + `
		  FROM users
		 WHERE company_id = $1::uuid
		   AND user_id = $2::uuid
		   AND deleted_at IS NULL
	`

	u, err := scanUser(r.db.QueryRowContext(ctx, query, companyID, userID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("user %s: %w", userID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

func (r *PostgresUsersRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}

	query := `
		SELECT ` + userColumns + `
		  FROM users
		 WHERE email = $1
		   AND deleted_at IS NULL
	`

	u, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("user by email: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return u, nil
}

func (r *PostgresUsersRepository) CreateUser(ctx context.Context, user *domain.User) (string, error) {
	query := `
		INSERT INTO users (company_id, email, password_hash, role, is_active)
		VALUES ($1::uuid, $2, $3, $4, $5)
		RETURNING user_id::text
	`

	var id string
	err := r.db.QueryRowContext(ctx, query,
		user.CompanyID,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.IsActive,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to create user: %w", err)
	}
	return id, nil
}

func (r *PostgresUsersRepository) ListActiveUsers(ctx context.Context, companyID string) ([]*domain.User, error) {
	return r.listUsers(ctx, companyID, false)
}

func (r *PostgresUsersRepository) ListActiveAdmins(ctx context.Context, companyID string) ([]*domain.User, error) {
	return r.listUsers(ctx, companyID, true)
}

func (r *PostgresUsersRepository) listUsers(ctx context.Context, companyID string, adminsOnly bool) ([]*domain.User, error) {
	if companyID == "" {
		return nil, fmt.Errorf("company_id is required")
	}

	query := `
		SELECT ` + userColumns + `
		  FROM users
		 WHERE company_id = $1::uuid
		   AND is_active = true
		   AND deleted_at IS NULL
	`
	args := []any{companyID}
	if adminsOnly {
		query += ` AND role = $2`
		args = append(args, domain.RoleAdmin)
	}
	query += ` ORDER BY email`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var out []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *PostgresUsersRepository) FilterActiveUserIDs(ctx context.Context, companyID string, userIDs []string) (map[string]bool, error) {
	if companyID == "" {
		return nil, fmt.Errorf("company_id is required")
	}
	if len(userIDs) == 0 {
		return map[string]bool{}, nil
	}

	query := `
		SELECT user_id::text
		  FROM users
		 WHERE company_id = $1::uuid
		   AND user_id = ANY($2::uuid[])
		   AND is_active = true
		   AND deleted_at IS NULL
	`

	rows, err := r.db.QueryContext(ctx, query, companyID, pq.Array(userIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to filter user ids: %w", err)
	}
	defer rows.Close()

	found := make(map[string]bool, len(userIDs))
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		found[id] = true
	}
	return found, rows.Err()
}

func (r *PostgresUsersRepository) UpdateLastLogin(ctx context.Context, userID string) error {
	query := `UPDATE users SET last_login_at = NOW() WHERE user_id = $1::uuid`
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to update last_login_at: %w", err)
	}
	return nil
}
