package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"deskhive/internal/domain"
)

// PostgresWorkspacesRepository workspace repository implementation.
type PostgresWorkspacesRepository struct {
	db *sql.DB
}

// NewPostgresWorkspacesRepository creates the workspace repository.
func NewPostgresWorkspacesRepository(db *sql.DB) *PostgresWorkspacesRepository {
	return &PostgresWorkspacesRepository{db: db}
}

var _ WorkspacesRepository = (*PostgresWorkspacesRepository)(nil)

const workspaceColumns = `
	workspace_id::text,
	company_id::text,
	name,
	description,
	capacity,
	is_available,
	COALESCE(equipment, '{}'::jsonb),
	created_at,
	updated_at
`

func scanWorkspace(row interface{ Scan(...any) error }) (*domain.Workspace, error) {
	var ws domain.Workspace
	var equipmentRaw json.RawMessage
	err := row.Scan(
		&ws.WorkspaceID,
		&ws.CompanyID,
		&ws.Name,
		&ws.Description,
		&ws.Capacity,
		&ws.IsAvailable,
		&equipmentRaw,
		&ws.CreatedAt,
		&ws.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	ws.Equipment = equipmentRaw
	return &ws, nil
}

func (r *PostgresWorkspacesRepository) GetWorkspace(ctx context.Context, companyID, workspaceID string) (*domain.Workspace, error) {
	return r.getWorkspace(ctx, companyID, workspaceID, false)
}

func (r *PostgresWorkspacesRepository) FindAvailableWorkspace(ctx context.Context, companyID, workspaceID string) (*domain.Workspace, error) {
	return r.getWorkspace(ctx, companyID, workspaceID, true)
}

func (r *PostgresWorkspacesRepository) getWorkspace(ctx context.Context, companyID, workspaceID string, availableOnly bool) (*domain.Workspace, error) {
	if companyID == "" || workspaceID == "" {
		return nil, fmt.Errorf("company_id and workspace_id are required")
	}

	query := `
		SELECT ` + workspaceColumns + `
		  FROM workspaces
		 WHERE company_id = $1::uuid
		   AND workspace_id = $2::uuid
		   AND deleted_at IS NULL
	`
	if availableOnly {
		query += ` AND is_available = true`
	}

	ws, err := scanWorkspace(r.db.QueryRowContext(ctx, query, companyID, workspaceID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("workspace %s: %w", workspaceID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get workspace: %w", err)
	}
	return ws, nil
}

func (r *PostgresWorkspacesRepository) ListWorkspaces(ctx context.Context, companyID string, filters WorkspaceFilters, page, size int) ([]*domain.Workspace, int, error) {
	if companyID == "" {
		return nil, 0, fmt.Errorf("company_id is required")
	}
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 50
	}

	where := []string{"company_id = $1::uuid", "deleted_at IS NULL"}
	args := []any{companyID}
	if filters.AvailableOnly {
		where = append(where, "is_available = true")
	}
	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		where = append(where, fmt.Sprintf("name ILIKE $%d", len(args)))
	}
	cond := strings.Join(where, " AND ")

	var total int
	countQuery := `SELECT COUNT(*) FROM workspaces WHERE ` + cond
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count workspaces: %w", err)
	}

	args = append(args, size, (page-1)*size)
	query := `
		SELECT ` + workspaceColumns + `
		  FROM workspaces
		 WHERE ` + cond + `
		 ORDER BY name
		 LIMIT $` + fmt.Sprint(len(args)-1) + ` OFFSET $` + fmt.Sprint(len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list workspaces: %w", err)
	}
	defer rows.Close()

	var out []*domain.Workspace
	for rows.Next() {
		ws, err := scanWorkspace(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan workspace: %w", err)
		}
		out = append(out, ws)
	}
	return out, total, rows.Err()
}

func (r *PostgresWorkspacesRepository) CreateWorkspace(ctx context.Context, ws *domain.Workspace) (string, error) {
	query := `
		INSERT INTO workspaces (company_id, name, description, capacity, is_available, equipment)
		VALUES ($1::uuid, $2, $3, $4, $5, COALESCE($6::jsonb, '{}'::jsonb))
		RETURNING workspace_id::text
	`

	var id string
	err := r.db.QueryRowContext(ctx, query,
		ws.CompanyID,
		ws.Name,
		ws.Description,
		ws.Capacity,
		ws.IsAvailable,
		nullableJSON(ws.Equipment),
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to create workspace: %w", err)
	}
	return id, nil
}

func (r *PostgresWorkspacesRepository) UpdateWorkspace(ctx context.Context, ws *domain.Workspace) error {
	query := `
		UPDATE workspaces
		   SET name = $3,
		       description = $4,
		       capacity = $5,
		       is_available = $6,
		       equipment = COALESCE($7::jsonb, equipment),
		       updated_at = NOW()
		 WHERE company_id = $1::uuid
		   AND workspace_id = $2::uuid
		   AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query,
		ws.CompanyID,
		ws.WorkspaceID,
		ws.Name,
		ws.Description,
		ws.Capacity,
		ws.IsAvailable,
		nullableJSON(ws.Equipment),
	)
	if err != nil {
		return fmt.Errorf("failed to update workspace: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("workspace %s: %w", ws.WorkspaceID, domain.ErrNotFound)
	}
	return nil
}

func (r *PostgresWorkspacesRepository) ArchiveWorkspace(ctx context.Context, companyID, workspaceID string) error {
	query := `
		UPDATE workspaces
		   SET deleted_at = NOW()
		 WHERE company_id = $1::uuid
		   AND workspace_id = $2::uuid
		   AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, companyID, workspaceID)
	if err != nil {
		return fmt.Errorf("failed to archive workspace: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("workspace %s: %w", workspaceID, domain.ErrNotFound)
	}
	return nil
}

// nullableJSON maps empty JSON to NULL so COALESCE defaults apply.
func nullableJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}
