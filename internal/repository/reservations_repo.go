package repository

import (
	"context"
	"time"

	"deskhive/internal/domain"
)

// Timeframe filter values for reservation listing.
const (
	TimeframeUpcoming = "upcoming" // start > now
	TimeframePast     = "past"     // end < now
	TimeframeCurrent  = "current"  // start <= now <= end
)

// ReservationFilters reservation list filters. Status and Timeframe combine
// as AND when both are set.
type ReservationFilters struct {
	Status    string // optional: pending/confirmed/cancelled
	Timeframe string // optional: upcoming/past/current
}

// ReservationsRepository reservation data access.
//
// CreateConfirmed and UpdateChecked enforce the overlap invariant at write
// time: the Postgres implementation locks the workspace row (SELECT ... FOR
// UPDATE) inside a transaction so that check-then-write is serialized per
// workspace and two concurrent requests cannot double-book. They return
// domain.ErrConflict when the interval overlaps a live confirmed reservation.
type ReservationsRepository interface {
	// GetReservation returns a live reservation by id (no scoping).
	GetReservation(ctx context.Context, reservationID string) (*domain.Reservation, error)

	// CreateConfirmed inserts the reservation with status 'confirmed' after
	// an overlap check, atomically. Returns the new id.
	CreateConfirmed(ctx context.Context, res *domain.Reservation) (string, error)

	// UpdateChecked persists time range, people count and guests after an
	// overlap check that excludes the reservation itself.
	UpdateChecked(ctx context.Context, res *domain.Reservation) error

	// SetStatus updates the status only (cancel path).
	SetStatus(ctx context.Context, reservationID, status string) error

	// HasOverlap reports whether [start, end) overlaps any live confirmed
	// reservation on the workspace, optionally excluding one reservation id.
	// Read-only; used by the availability check.
	HasOverlap(ctx context.Context, workspaceID string, start, end time.Time, excludeID string) (bool, error)

	// ListByUser lists a user's live reservations, newest start first.
	ListByUser(ctx context.Context, userID string, filters ReservationFilters, page, size int) ([]*domain.Reservation, int, error)

	// ListByCompany lists live reservations on all of a company's
	// workspaces (admin view), newest start first.
	ListByCompany(ctx context.Context, companyID string, filters ReservationFilters, page, size int) ([]*domain.Reservation, int, error)

	// ListByWorkspace lists live reservations of one workspace.
	ListByWorkspace(ctx context.Context, workspaceID string, filters ReservationFilters, page, size int) ([]*domain.Reservation, int, error)

	// ListConfirmedStartingBetween returns live confirmed reservations with
	// start_time in [from, to]. Used by the reminder scan.
	ListConfirmedStartingBetween(ctx context.Context, from, to time.Time) ([]*domain.Reservation, error)
}
