package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"deskhive/internal/domain"
)

// PostgresReservationsRepository reservation repository implementation.
type PostgresReservationsRepository struct {
	db *sql.DB
}

// NewPostgresReservationsRepository creates the reservation repository.
func NewPostgresReservationsRepository(db *sql.DB) *PostgresReservationsRepository {
	return &PostgresReservationsRepository{db: db}
}

var _ ReservationsRepository = (*PostgresReservationsRepository)(nil)

const reservationColumns = `
	reservation_id::text,
	user_id::text,
	workspace_id::text,
	start_time,
	end_time,
	number_of_people,
	COALESCE(guests, '[]'::jsonb),
	status,
	created_at,
	updated_at
`

func scanReservation(row interface{ Scan(...any) error }) (*domain.Reservation, error) {
	var res domain.Reservation
	var guestsRaw json.RawMessage
	err := row.Scan(
		&res.ReservationID,
		&res.UserID,
		&res.WorkspaceID,
		&res.StartTime,
		&res.EndTime,
		&res.NumberOfPeople,
		&guestsRaw,
		&res.Status,
		&res.CreatedAt,
		&res.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(guestsRaw) > 0 {
		if err := json.Unmarshal(guestsRaw, &res.Guests); err != nil {
			return nil, fmt.Errorf("failed to decode guests: %w", err)
		}
	}
	return &res, nil
}

func (r *PostgresReservationsRepository) GetReservation(ctx context.Context, reservationID string) (*domain.Reservation, error) {
	if reservationID == "" {
		return nil, fmt.Errorf("reservation_id is required")
	}

	query := `
		SELECT ` + reservationColumns + `
		  FROM reservations
		 WHERE reservation_id = $1::uuid
		   AND deleted_at IS NULL
	`

	res, err := scanReservation(r.db.QueryRowContext(ctx, query, reservationID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("reservation %s: %w", reservationID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}
	return res, nil
}

// CreateConfirmed runs the overlap check and the insert in one transaction,
// holding a row lock on the workspace so concurrent writers for the same
// workspace serialize. Without the lock two requests could both pass the
// check and double-book.
func (r *PostgresReservationsRepository) CreateConfirmed(ctx context.Context, res *domain.Reservation) (string, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := lockWorkspaceAndCheckOverlap(ctx, tx, res.WorkspaceID, res.StartTime, res.EndTime, ""); err != nil {
		return "", err
	}

	guests, err := guestsJSON(res.Guests)
	if err != nil {
		return "", err
	}

	var id string
	err = tx.QueryRowContext(ctx, `
		INSERT INTO reservations (user_id, workspace_id, start_time, end_time, number_of_people, guests, status)
		VALUES ($1::uuid, $2::uuid, $3, $4, $5, $6::jsonb, $7)
		RETURNING reservation_id::text
	`,
		res.UserID,
		res.WorkspaceID,
		res.StartTime,
		res.EndTime,
		res.NumberOfPeople,
		guests,
		domain.ReservationConfirmed,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to insert reservation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit reservation: %w", err)
	}
	return id, nil
}

// UpdateChecked re-runs the overlap check (excluding the reservation itself)
// and persists the new time range, people count and guests atomically.
func (r *PostgresReservationsRepository) UpdateChecked(ctx context.Context, res *domain.Reservation) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := lockWorkspaceAndCheckOverlap(ctx, tx, res.WorkspaceID, res.StartTime, res.EndTime, res.ReservationID); err != nil {
		return err
	}

	guests, err := guestsJSON(res.Guests)
	if err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE reservations
		   SET start_time = $2,
		       end_time = $3,
		       number_of_people = $4,
		       guests = $5::jsonb,
		       updated_at = NOW()
		 WHERE reservation_id = $1::uuid
		   AND deleted_at IS NULL
	`,
		res.ReservationID,
		res.StartTime,
		res.EndTime,
		res.NumberOfPeople,
		guests,
	)
	if err != nil {
		return fmt.Errorf("failed to update reservation: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("reservation %s: %w", res.ReservationID, domain.ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reservation update: %w", err)
	}
	return nil
}

func (r *PostgresReservationsRepository) SetStatus(ctx context.Context, reservationID, status string) error {
	query := `
		UPDATE reservations
		   SET status = $2,
		       updated_at = NOW()
		 WHERE reservation_id = $1::uuid
		   AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, reservationID, status)
	if err != nil {
		return fmt.Errorf("failed to set reservation status: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("reservation %s: %w", reservationID, domain.ErrNotFound)
	}
	return nil
}

func (r *PostgresReservationsRepository) HasOverlap(ctx context.Context, workspaceID string, start, end time.Time, excludeID string) (bool, error) {
	if workspaceID == "" {
		return false, fmt.Errorf("workspace_id is required")
	}
	return hasOverlap(ctx, r.db, workspaceID, start, end, excludeID)
}

func (r *PostgresReservationsRepository) ListByUser(ctx context.Context, userID string, filters ReservationFilters, page, size int) ([]*domain.Reservation, int, error) {
	return r.list(ctx, "user_id = $1::uuid", userID, filters, page, size)
}

func (r *PostgresReservationsRepository) ListByCompany(ctx context.Context, companyID string, filters ReservationFilters, page, size int) ([]*domain.Reservation, int, error) {
	cond := `workspace_id IN (SELECT workspace_id FROM workspaces WHERE company_id = $1::uuid AND deleted_at IS NULL)`
	return r.list(ctx, cond, companyID, filters, page, size)
}

func (r *PostgresReservationsRepository) ListByWorkspace(ctx context.Context, workspaceID string, filters ReservationFilters, page, size int) ([]*domain.Reservation, int, error) {
	return r.list(ctx, "workspace_id = $1::uuid", workspaceID, filters, page, size)
}

func (r *PostgresReservationsRepository) list(ctx context.Context, scopeCond, scopeArg string, filters ReservationFilters, page, size int) ([]*domain.Reservation, int, error) {
	if scopeArg == "" {
		return nil, 0, fmt.Errorf("scope id is required")
	}
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	if size > 100 {
		size = 100
	}

	where := []string{scopeCond, "deleted_at IS NULL"}
	args := []any{scopeArg}
	if filters.Status != "" {
		args = append(args, filters.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	switch filters.Timeframe {
	case TimeframeUpcoming:
		where = append(where, "start_time > NOW()")
	case TimeframePast:
		where = append(where, "end_time < NOW()")
	case TimeframeCurrent:
		where = append(where, "start_time <= NOW()", "end_time >= NOW()")
	}
	cond := strings.Join(where, " AND ")

	var total int
	countQuery := `SELECT COUNT(*) FROM reservations WHERE ` + cond
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count reservations: %w", err)
	}

	args = append(args, size, (page-1)*size)
	query := `
		SELECT ` + reservationColumns + `
		  FROM reservations
		 WHERE ` + cond + `
		 ORDER BY start_time DESC
		 LIMIT $` + fmt.Sprint(len(args)-1) + ` OFFSET $` + fmt.Sprint(len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reservations: %w", err)
	}
	defer rows.Close()

	var out []*domain.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan reservation: %w", err)
		}
		out = append(out, res)
	}
	return out, total, rows.Err()
}

func (r *PostgresReservationsRepository) ListConfirmedStartingBetween(ctx context.Context, from, to time.Time) ([]*domain.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		  FROM reservations
		 WHERE status = $1
		   AND start_time >= $2
		   AND start_time <= $3
		   AND deleted_at IS NULL
		 ORDER BY start_time
	`

	rows, err := r.db.QueryContext(ctx, query, domain.ReservationConfirmed, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations by start window: %w", err)
	}
	defer rows.Close()

	var out []*domain.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reservation: %w", err)
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// lockWorkspaceAndCheckOverlap takes a FOR UPDATE lock on the workspace row
// and then runs the half-open overlap test against live confirmed
// reservations. Must be called inside a transaction.
func lockWorkspaceAndCheckOverlap(ctx context.Context, tx *sql.Tx, workspaceID string, start, end time.Time, excludeID string) error {
	var locked string
	err := tx.QueryRowContext(ctx,
		`SELECT workspace_id::text FROM workspaces WHERE workspace_id = $1::uuid AND deleted_at IS NULL FOR UPDATE`,
		workspaceID,
	).Scan(&locked)
	if err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("workspace %s: %w", workspaceID, domain.ErrNotFound)
		}
		return fmt.Errorf("failed to lock workspace: %w", err)
	}

	overlaps, err := hasOverlap(ctx, tx, workspaceID, start, end, excludeID)
	if err != nil {
		return err
	}
	if overlaps {
		return fmt.Errorf("workspace %s [%s, %s): %w", workspaceID,
			start.Format(time.RFC3339), end.Format(time.RFC3339), domain.ErrConflict)
	}
	return nil
}

// hasOverlap implements the invariant's half-open interval test:
// existing.start < new.end AND existing.end > new.start.
func hasOverlap(ctx context.Context, q querier, workspaceID string, start, end time.Time, excludeID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			  FROM reservations
			 WHERE workspace_id = $1::uuid
			   AND status = $2
			   AND deleted_at IS NULL
			   AND start_time < $4
			   AND end_time > $3
			   AND ($5::uuid IS NULL OR reservation_id <> $5::uuid)
		)
	`

	var exclude any
	if excludeID != "" {
		exclude = excludeID
	}
	var exists bool
	err := q.QueryRowContext(ctx, query, workspaceID, domain.ReservationConfirmed, start, end, exclude).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to run overlap check: %w", err)
	}
	return exists, nil
}

func guestsJSON(guests []string) ([]byte, error) {
	if guests == nil {
		guests = []string{}
	}
	b, err := json.Marshal(guests)
	if err != nil {
		return nil, fmt.Errorf("failed to encode guests: %w", err)
	}
	return b, nil
}
