package domain

import (
	"database/sql"
	"time"
)

// Reservation status values.
const (
	ReservationPending   = "pending"
	ReservationConfirmed = "confirmed"
	ReservationCancelled = "cancelled"
)

// GuestExternal marks a guest entry that is not a company user.
const GuestExternal = "external"

// Reservation booking model (reservations table).
//
// Intervals are half-open [StartTime, EndTime): two reservations on the same
// workspace conflict iff a.StartTime < b.EndTime AND a.EndTime > b.StartTime,
// so back-to-back bookings that touch at a boundary are allowed.
type Reservation struct {
	ReservationID string `db:"reservation_id"`
	UserID        string `db:"user_id"` // requester/owner
	WorkspaceID   string `db:"workspace_id"`

	StartTime      time.Time `db:"start_time"` // strictly before EndTime
	EndTime        time.Time `db:"end_time"`
	NumberOfPeople int       `db:"number_of_people"` // <= workspace capacity

	// Guests: each entry is either a user id of an active company user or
	// the literal GuestExternal marker. JSONB array, nullable.
	Guests []string `db:"guests"`

	Status string `db:"status"` // pending | confirmed | cancelled

	CreatedAt sql.NullTime `db:"created_at"`
	UpdatedAt sql.NullTime `db:"updated_at"`
	DeletedAt sql.NullTime `db:"deleted_at"`
}

// Overlaps reports whether the reservation's interval overlaps [start, end).
func (r *Reservation) Overlaps(start, end time.Time) bool {
	return r.StartTime.Before(end) && r.EndTime.After(start)
}
