package domain

import "errors"

// Error taxonomy for core operations. Services wrap these with %w and the
// HTTP layer maps them to status codes with errors.Is.
var (
	// ErrNotFound: entity absent, soft-deleted, or not visible to the
	// actor's company/ownership scope. Deliberately indistinguishable from
	// "exists in another tenant".
	ErrNotFound = errors.New("not found")

	// Request-level validation failures (HTTP 400).
	ErrInvalidRange     = errors.New("start time must be before end time")
	ErrPastDate         = errors.New("start time must not be in the past")
	ErrCapacityExceeded = errors.New("number of people exceeds workspace capacity")
	ErrInvalidGuest     = errors.New("invalid guest")

	// ErrConflict: requested interval overlaps a confirmed reservation (HTTP 409).
	ErrConflict = errors.New("workspace already reserved for this time range")

	// State-machine violations on update/cancel (HTTP 400).
	ErrAlreadyCancelled      = errors.New("reservation is already cancelled")
	ErrAlreadyEnded          = errors.New("reservation has already ended")
	ErrReservationInProgress = errors.New("reservation has already started")

	// Produced at the access-control boundary (HTTP 401/403).
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)
