package domain

import (
	"database/sql"
	"encoding/json"
)

// Workspace bookable space model (workspaces table).
// Equipment is a free-form set of named boolean features
// (e.g. {"projector": true, "whiteboard": false}).
type Workspace struct {
	WorkspaceID string `db:"workspace_id"`
	CompanyID   string `db:"company_id"`

	Name        string         `db:"name"` // NOT NULL
	Description sql.NullString `db:"description"`
	Capacity    int            `db:"capacity"` // > 0
	IsAvailable bool           `db:"is_available"`

	Equipment json.RawMessage `db:"equipment"` // JSONB, nullable

	CreatedAt sql.NullTime `db:"created_at"`
	UpdatedAt sql.NullTime `db:"updated_at"`
	DeletedAt sql.NullTime `db:"deleted_at"`
}
