package repository

import (
	"context"
	"database/sql"
	"fmt"

	"deskhive/internal/domain"
)

// PostgresCompaniesRepository company repository implementation.
type PostgresCompaniesRepository struct {
	db *sql.DB
}

// NewPostgresCompaniesRepository creates the company repository.
func NewPostgresCompaniesRepository(db *sql.DB) *PostgresCompaniesRepository {
	return &PostgresCompaniesRepository{db: db}
}

var _ CompaniesRepository = (*PostgresCompaniesRepository)(nil)

func (r *PostgresCompaniesRepository) GetCompany(ctx context.Context, companyID string) (*domain.Company, error) {
	if companyID == "" {
		return nil, fmt.Errorf("company_id is required")
	}

	query := `
		SELECT company_id::text,
		       name,
		       contact_email,
		       invitation_code,
		       created_at,
		       updated_at
		  FROM companies
		 WHERE company_id = $1::uuid
		   AND deleted_at IS NULL
	`

	var c domain.Company
	err := r.db.QueryRowContext(ctx, query, companyID).Scan(
		&c.CompanyID,
		&c.Name,
		&c.ContactEmail,
		&c.InvitationCode,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("company %s: %w", companyID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	return &c, nil
}

func (r *PostgresCompaniesRepository) GetCompanyByInvitationCode(ctx context.Context, code string) (*domain.Company, error) {
	if code == "" {
		return nil, fmt.Errorf("invitation code is required")
	}

	query := `
		SELECT company_id::text,
		       name,
		       contact_email,
		       invitation_code,
		       created_at,
		       updated_at
		  FROM companies
		 WHERE invitation_code = $1
		   AND deleted_at IS NULL
	`

	var c domain.Company
	err := r.db.QueryRowContext(ctx, query, code).Scan(
		&c.CompanyID,
		&c.Name,
		&c.ContactEmail,
		&c.InvitationCode,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("invitation code: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get company by invitation code: %w", err)
	}
	return &c, nil
}

func (r *PostgresCompaniesRepository) ListActiveDomains(ctx context.Context, companyID string) ([]*domain.EmailDomain, error) {
	if companyID == "" {
		return nil, fmt.Errorf("company_id is required")
	}

	query := `
		SELECT domain_id::text,
		       company_id::text,
		       domain,
		       is_active,
		       created_at
		  FROM domains
		 WHERE company_id = $1::uuid
		   AND is_active = true
		 ORDER BY domain
	`

	rows, err := r.db.QueryContext(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list domains: %w", err)
	}
	defer rows.Close()

	var out []*domain.EmailDomain
	for rows.Next() {
		var d domain.EmailDomain
		if err := rows.Scan(&d.DomainID, &d.CompanyID, &d.Domain, &d.IsActive, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan domain: %w", err)
		}
		out = append(out, &d)
	}
	return out, rows.Err()
}
