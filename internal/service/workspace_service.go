package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"deskhive/internal/domain"
	"deskhive/internal/repository"

	"go.uber.org/zap"
)

// WorkspaceService workspace management. Listing is open to every company
// user (they need to see what they can book); mutations are admin-only.
type WorkspaceService interface {
	ListWorkspaces(ctx context.Context, actor domain.Actor, filters repository.WorkspaceFilters, page, size int) ([]*WorkspaceDTO, int, error)
	GetWorkspace(ctx context.Context, actor domain.Actor, workspaceID string) (*WorkspaceDTO, error)
	CreateWorkspace(ctx context.Context, req CreateWorkspaceRequest) (*WorkspaceDTO, error)
	UpdateWorkspace(ctx context.Context, req UpdateWorkspaceRequest) (*WorkspaceDTO, error)
	ArchiveWorkspace(ctx context.Context, actor domain.Actor, workspaceID string) error
}

type workspaceService struct {
	workspaces repository.WorkspacesRepository
	logger     *zap.Logger
}

// NewWorkspaceService creates the workspace service.
func NewWorkspaceService(workspaces repository.WorkspacesRepository, logger *zap.Logger) WorkspaceService {
	return &workspaceService{workspaces: workspaces, logger: logger}
}

// ============================================
// Request/Response DTOs
// ============================================

// CreateWorkspaceRequest admin-created workspace.
type CreateWorkspaceRequest struct {
	Actor       domain.Actor
	Name        string
	Description string
	Capacity    int
	IsAvailable bool
	Equipment   json.RawMessage // optional {"feature": bool, ...}
}

// UpdateWorkspaceRequest patch; nil fields keep the current value.
type UpdateWorkspaceRequest struct {
	Actor       domain.Actor
	WorkspaceID string
	Name        *string
	Description *string
	Capacity    *int
	IsAvailable *bool
	Equipment   json.RawMessage // nil keeps current equipment
}

// WorkspaceDTO camelCase projection of a workspace.
type WorkspaceDTO struct {
	WorkspaceID string          `json:"workspaceId"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Capacity    int             `json:"capacity"`
	IsAvailable bool            `json:"isAvailable"`
	Equipment   json.RawMessage `json:"equipment,omitempty"`
	CreatedAt   *time.Time      `json:"createdAt,omitempty"`
}

func toWorkspaceDTO(ws *domain.Workspace) *WorkspaceDTO {
	dto := &WorkspaceDTO{
		WorkspaceID: ws.WorkspaceID,
		Name:        ws.Name,
		Capacity:    ws.Capacity,
		IsAvailable: ws.IsAvailable,
		Equipment:   ws.Equipment,
	}
	if ws.Description.Valid {
		dto.Description = ws.Description.String
	}
	if ws.CreatedAt.Valid {
		t := ws.CreatedAt.Time
		dto.CreatedAt = &t
	}
	return dto
}

// ============================================
// Operations
// ============================================

func (s *workspaceService) ListWorkspaces(ctx context.Context, actor domain.Actor, filters repository.WorkspaceFilters, page, size int) ([]*WorkspaceDTO, int, error) {
	list, total, err := s.workspaces.ListWorkspaces(ctx, actor.CompanyID, filters, page, size)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list workspaces: %w", err)
	}
	out := make([]*WorkspaceDTO, 0, len(list))
	for _, ws := range list {
		out = append(out, toWorkspaceDTO(ws))
	}
	return out, total, nil
}

func (s *workspaceService) GetWorkspace(ctx context.Context, actor domain.Actor, workspaceID string) (*WorkspaceDTO, error) {
	ws, err := s.workspaces.GetWorkspace(ctx, actor.CompanyID, workspaceID)
	if err != nil {
		return nil, err
	}
	return toWorkspaceDTO(ws), nil
}

func (s *workspaceService) CreateWorkspace(ctx context.Context, req CreateWorkspaceRequest) (*WorkspaceDTO, error) {
	if !req.Actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	if req.Name == "" {
		return nil, fmt.Errorf("workspace name is required")
	}
	if req.Capacity < 1 {
		return nil, fmt.Errorf("capacity must be at least 1")
	}

	ws := &domain.Workspace{
		CompanyID:   req.Actor.CompanyID,
		Name:        req.Name,
		Capacity:    req.Capacity,
		IsAvailable: req.IsAvailable,
		Equipment:   req.Equipment,
	}
	if req.Description != "" {
		ws.Description = sql.NullString{String: req.Description, Valid: true}
	}

	id, err := s.workspaces.CreateWorkspace(ctx, ws)
	if err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}

	created, err := s.workspaces.GetWorkspace(ctx, req.Actor.CompanyID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload workspace: %w", err)
	}
	return toWorkspaceDTO(created), nil
}

func (s *workspaceService) UpdateWorkspace(ctx context.Context, req UpdateWorkspaceRequest) (*WorkspaceDTO, error) {
	if !req.Actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}

	ws, err := s.workspaces.GetWorkspace(ctx, req.Actor.CompanyID, req.WorkspaceID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if *req.Name == "" {
			return nil, fmt.Errorf("workspace name is required")
		}
		ws.Name = *req.Name
	}
	if req.Description != nil {
		ws.Description = sql.NullString{String: *req.Description, Valid: *req.Description != ""}
	}
	if req.Capacity != nil {
		if *req.Capacity < 1 {
			return nil, fmt.Errorf("capacity must be at least 1")
		}
		ws.Capacity = *req.Capacity
	}
	if req.IsAvailable != nil {
		ws.IsAvailable = *req.IsAvailable
	}
	if req.Equipment != nil {
		ws.Equipment = req.Equipment
	}

	if err := s.workspaces.UpdateWorkspace(ctx, ws); err != nil {
		return nil, err
	}

	updated, err := s.workspaces.GetWorkspace(ctx, req.Actor.CompanyID, req.WorkspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload workspace: %w", err)
	}
	return toWorkspaceDTO(updated), nil
}

func (s *workspaceService) ArchiveWorkspace(ctx context.Context, actor domain.Actor, workspaceID string) error {
	if !actor.IsAdmin() {
		return domain.ErrForbidden
	}
	if err := s.workspaces.ArchiveWorkspace(ctx, actor.CompanyID, workspaceID); err != nil {
		return err
	}
	s.logger.Info("workspace archived",
		zap.String("workspace_id", workspaceID),
		zap.String("company_id", actor.CompanyID),
	)
	return nil
}
