package domain

import "database/sql"

// Company tenant model (companies table).
// Every user, workspace and reservation belongs to exactly one company.
type Company struct {
	CompanyID string `db:"company_id"` // UUID, PRIMARY KEY

	Name         string         `db:"name"`          // NOT NULL
	ContactEmail sql.NullString `db:"contact_email"` // nullable
	// InvitationCode admits new users during self-registration. UNIQUE.
	InvitationCode string `db:"invitation_code"`

	CreatedAt sql.NullTime `db:"created_at"`
	UpdatedAt sql.NullTime `db:"updated_at"`
	DeletedAt sql.NullTime `db:"deleted_at"` // soft-delete tombstone
}

// EmailDomain (domains table) restricts which email domains may register
// under a company. Value is normalized to always start with '@'.
type EmailDomain struct {
	DomainID  string `db:"domain_id"`
	CompanyID string `db:"company_id"`
	Domain    string `db:"domain"` // e.g. "@acme.com"
	IsActive  bool   `db:"is_active"`

	CreatedAt sql.NullTime `db:"created_at"`
}
