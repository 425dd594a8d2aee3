package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"deskhive/internal/domain"

	"github.com/google/uuid"
)

// MemoryWorkspacesRepository in-memory workspace repository for dev and tests.
type MemoryWorkspacesRepository struct {
	mu         sync.RWMutex
	workspaces map[string]*domain.Workspace
}

// NewMemoryWorkspacesRepository creates the in-memory workspace repository.
func NewMemoryWorkspacesRepository() *MemoryWorkspacesRepository {
	return &MemoryWorkspacesRepository{workspaces: map[string]*domain.Workspace{}}
}

var _ WorkspacesRepository = (*MemoryWorkspacesRepository)(nil)

func (r *MemoryWorkspacesRepository) GetWorkspace(_ context.Context, companyID, workspaceID string) (*domain.Workspace, error) {
	return r.get(companyID, workspaceID, false)
}

func (r *MemoryWorkspacesRepository) FindAvailableWorkspace(_ context.Context, companyID, workspaceID string) (*domain.Workspace, error) {
	return r.get(companyID, workspaceID, true)
}

func (r *MemoryWorkspacesRepository) get(companyID, workspaceID string, availableOnly bool) (*domain.Workspace, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ws, ok := r.workspaces[workspaceID]
	if !ok || ws.DeletedAt.Valid || ws.CompanyID != companyID {
		return nil, fmt.Errorf("workspace %s: %w", workspaceID, domain.ErrNotFound)
	}
	if availableOnly && !ws.IsAvailable {
		return nil, fmt.Errorf("workspace %s: %w", workspaceID, domain.ErrNotFound)
	}
	cp := *ws
	return &cp, nil
}

func (r *MemoryWorkspacesRepository) ListWorkspaces(_ context.Context, companyID string, filters WorkspaceFilters, page, size int) ([]*domain.Workspace, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var all []*domain.Workspace
	for _, ws := range r.workspaces {
		if ws.DeletedAt.Valid || ws.CompanyID != companyID {
			continue
		}
		if filters.AvailableOnly && !ws.IsAvailable {
			continue
		}
		if filters.Search != "" && !strings.Contains(strings.ToLower(ws.Name), strings.ToLower(filters.Search)) {
			continue
		}
		cp := *ws
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })

	total := len(all)
	start, end := pageBounds(total, page, size)
	return all[start:end], total, nil
}

func (r *MemoryWorkspacesRepository) CreateWorkspace(_ context.Context, ws *domain.Workspace) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := uuid.NewString()
	cp := *ws
	cp.WorkspaceID = id
	cp.CreatedAt = nowNull()
	cp.UpdatedAt = nowNull()
	r.workspaces[id] = &cp
	return id, nil
}

func (r *MemoryWorkspacesRepository) UpdateWorkspace(_ context.Context, ws *domain.Workspace) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.workspaces[ws.WorkspaceID]
	if !ok || existing.DeletedAt.Valid || existing.CompanyID != ws.CompanyID {
		return fmt.Errorf("workspace %s: %w", ws.WorkspaceID, domain.ErrNotFound)
	}
	existing.Name = ws.Name
	existing.Description = ws.Description
	existing.Capacity = ws.Capacity
	existing.IsAvailable = ws.IsAvailable
	if len(ws.Equipment) > 0 {
		existing.Equipment = append([]byte(nil), ws.Equipment...)
	}
	existing.UpdatedAt = nowNull()
	return nil
}

func (r *MemoryWorkspacesRepository) ArchiveWorkspace(_ context.Context, companyID, workspaceID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ws, ok := r.workspaces[workspaceID]
	if !ok || ws.DeletedAt.Valid || ws.CompanyID != companyID {
		return fmt.Errorf("workspace %s: %w", workspaceID, domain.ErrNotFound)
	}
	ws.DeletedAt = nowNull()
	return nil
}
