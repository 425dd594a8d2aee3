package repository

import (
	"context"

	"deskhive/internal/domain"
)

// WorkspaceFilters workspace list filters.
type WorkspaceFilters struct {
	AvailableOnly bool   // only is_available = true
	Search        string // optional, matches name (substring)
}

// WorkspacesRepository workspace data access.
type WorkspacesRepository interface {
	// GetWorkspace returns a live workspace scoped to a company.
	GetWorkspace(ctx context.Context, companyID, workspaceID string) (*domain.Workspace, error)

	// FindAvailableWorkspace returns the workspace only if it is live,
	// belongs to the company and is marked available; domain.ErrNotFound
	// otherwise. This is the reservation engine's lookup.
	FindAvailableWorkspace(ctx context.Context, companyID, workspaceID string) (*domain.Workspace, error)

	// ListWorkspaces lists live workspaces of a company.
	ListWorkspaces(ctx context.Context, companyID string, filters WorkspaceFilters, page, size int) ([]*domain.Workspace, int, error)

	// CreateWorkspace inserts a workspace and returns its id.
	CreateWorkspace(ctx context.Context, ws *domain.Workspace) (string, error)

	// UpdateWorkspace persists name/description/capacity/availability/equipment.
	UpdateWorkspace(ctx context.Context, ws *domain.Workspace) error

	// ArchiveWorkspace soft-deletes a workspace.
	ArchiveWorkspace(ctx context.Context, companyID, workspaceID string) error
}
