package repository

import (
	"context"
	"fmt"
	"sync"

	"deskhive/internal/domain"
)

// MemoryCompaniesRepository in-memory company repository for dev and tests.
type MemoryCompaniesRepository struct {
	mu        sync.RWMutex
	companies map[string]*domain.Company
	domains   map[string][]*domain.EmailDomain // companyID -> domains
}

// NewMemoryCompaniesRepository creates the in-memory company repository.
func NewMemoryCompaniesRepository() *MemoryCompaniesRepository {
	return &MemoryCompaniesRepository{
		companies: map[string]*domain.Company{},
		domains:   map[string][]*domain.EmailDomain{},
	}
}

var _ CompaniesRepository = (*MemoryCompaniesRepository)(nil)

// SeedCompany registers a company (tests, dev bootstrap).
func (r *MemoryCompaniesRepository) SeedCompany(c *domain.Company) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	r.companies[c.CompanyID] = &cp
}

// SeedDomain registers an email domain for a company.
func (r *MemoryCompaniesRepository) SeedDomain(d *domain.EmailDomain) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *d
	r.domains[d.CompanyID] = append(r.domains[d.CompanyID], &cp)
}

func (r *MemoryCompaniesRepository) GetCompany(_ context.Context, companyID string) (*domain.Company, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.companies[companyID]
	if !ok || c.DeletedAt.Valid {
		return nil, fmt.Errorf("company %s: %w", companyID, domain.ErrNotFound)
	}
	cp := *c
	return &cp, nil
}

func (r *MemoryCompaniesRepository) GetCompanyByInvitationCode(_ context.Context, code string) (*domain.Company, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.companies {
		if c.InvitationCode == code && !c.DeletedAt.Valid {
			cp := *c
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("invitation code: %w", domain.ErrNotFound)
}

func (r *MemoryCompaniesRepository) ListActiveDomains(_ context.Context, companyID string) ([]*domain.EmailDomain, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.EmailDomain
	for _, d := range r.domains[companyID] {
		if d.IsActive {
			cp := *d
			out = append(out, &cp)
		}
	}
	return out, nil
}
