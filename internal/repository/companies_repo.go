package repository

import (
	"context"

	"deskhive/internal/domain"
)

// CompaniesRepository company (tenant) data access.
// Repository layer owns the "never read soft-deleted rows" rule: every
// query filters deleted_at IS NULL.
type CompaniesRepository interface {
	// GetCompany returns a live company by id, domain.ErrNotFound otherwise.
	GetCompany(ctx context.Context, companyID string) (*domain.Company, error)

	// GetCompanyByInvitationCode resolves a registration invitation code.
	GetCompanyByInvitationCode(ctx context.Context, code string) (*domain.Company, error)

	// ListActiveDomains returns the active email domains of a company,
	// each normalized to start with '@'.
	ListActiveDomains(ctx context.Context, companyID string) ([]*domain.EmailDomain, error)
}
