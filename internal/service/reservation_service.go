package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"deskhive/internal/domain"
	"deskhive/internal/repository"

	"go.uber.org/zap"
)

// ReservationService is the reservation engine: it owns the validation
// chain, conflict detection and the reservation lifecycle, and drives
// notification side effects through post-commit hooks.
type ReservationService interface {
	CreateReservation(ctx context.Context, req CreateReservationRequest) (*ReservationDTO, error)
	GetReservation(ctx context.Context, actor domain.Actor, reservationID string) (*ReservationDTO, error)
	UpdateReservation(ctx context.Context, req UpdateReservationRequest) (*ReservationDTO, error)
	CancelReservation(ctx context.Context, actor domain.Actor, reservationID string) error
	CheckAvailability(ctx context.Context, req CheckAvailabilityRequest) (*AvailabilityResponse, error)
	ListMyReservations(ctx context.Context, actor domain.Actor, filters repository.ReservationFilters, page, size int) ([]*ReservationDTO, int, error)
	ListCompanyReservations(ctx context.Context, actor domain.Actor, filters repository.ReservationFilters, page, size int) ([]*ReservationDTO, int, error)
	ListWorkspaceReservations(ctx context.Context, actor domain.Actor, workspaceID string, filters repository.ReservationFilters, page, size int) ([]*ReservationDTO, int, error)

	// AddPostCommitHook registers a best-effort side effect invoked after a
	// successful mutation. Hook failures are logged and never affect the
	// already-committed result.
	AddPostCommitHook(hook ReservationHook)
}

// Reservation lifecycle event types passed to post-commit hooks.
const (
	EventReservationConfirmed = "reservation_confirmed"
	EventReservationModified  = "reservation_modified"
	EventReservationCancelled = "reservation_cancelled"
)

// ReservationEvent is handed to post-commit hooks after the primary write.
type ReservationEvent struct {
	Type        string
	Actor       domain.Actor
	Reservation *domain.Reservation
	Workspace   *domain.Workspace
}

// ReservationHook is one best-effort post-commit side effect.
type ReservationHook func(ctx context.Context, ev ReservationEvent) error

type reservationService struct {
	reservations repository.ReservationsRepository
	workspaces   repository.WorkspacesRepository
	users        repository.UsersRepository
	hooks        []ReservationHook
	logger       *zap.Logger
}

// NewReservationService creates the reservation engine.
func NewReservationService(
	reservations repository.ReservationsRepository,
	workspaces repository.WorkspacesRepository,
	users repository.UsersRepository,
	logger *zap.Logger,
) ReservationService {
	return &reservationService{
		reservations: reservations,
		workspaces:   workspaces,
		users:        users,
		logger:       logger,
	}
}

// ============================================
// Request/Response DTOs
// ============================================

// CreateReservationRequest create a reservation.
type CreateReservationRequest struct {
	Actor          domain.Actor
	WorkspaceID    string
	NumberOfPeople int
	StartTime      time.Time
	EndTime        time.Time
	Guests         []string // optional: user ids or domain.GuestExternal
}

// UpdateReservationRequest patch an existing reservation. Nil fields keep
// the current value.
type UpdateReservationRequest struct {
	Actor          domain.Actor
	ReservationID  string
	NumberOfPeople *int
	StartTime      *time.Time
	EndTime        *time.Time
	Guests         []string // nil keeps current guests
}

// CheckAvailabilityRequest read-only availability probe.
type CheckAvailabilityRequest struct {
	Actor       domain.Actor
	WorkspaceID string
	StartTime   time.Time
	EndTime     time.Time
	// ExcludeReservationID ignores one reservation in the overlap query
	// ("checking while editing").
	ExcludeReservationID string
}

// AvailabilityResponse availability probe result.
type AvailabilityResponse struct {
	Available bool `json:"available"`
	Capacity  int  `json:"capacity"`
}

// ReservationDTO camelCase projection of a reservation.
type ReservationDTO struct {
	ReservationID  string     `json:"reservationId"`
	UserID         string     `json:"userId"`
	WorkspaceID    string     `json:"workspaceId"`
	StartTime      time.Time  `json:"startTime"`
	EndTime        time.Time  `json:"endTime"`
	NumberOfPeople int        `json:"numberOfPeople"`
	Guests         []string   `json:"guests,omitempty"`
	Status         string     `json:"status"`
	CreatedAt      *time.Time `json:"createdAt,omitempty"`
	UpdatedAt      *time.Time `json:"updatedAt,omitempty"`
}

func toReservationDTO(res *domain.Reservation) *ReservationDTO {
	dto := &ReservationDTO{
		ReservationID:  res.ReservationID,
		UserID:         res.UserID,
		WorkspaceID:    res.WorkspaceID,
		StartTime:      res.StartTime,
		EndTime:        res.EndTime,
		NumberOfPeople: res.NumberOfPeople,
		Guests:         res.Guests,
		Status:         res.Status,
	}
	if res.CreatedAt.Valid {
		t := res.CreatedAt.Time
		dto.CreatedAt = &t
	}
	if res.UpdatedAt.Valid {
		t := res.UpdatedAt.Time
		dto.UpdatedAt = &t
	}
	return dto
}

// ============================================
// Mutations
// ============================================

// CreateReservation validates in a fixed order, each step a distinct
// failure mode:
//  1. workspace exists in the actor's company and is available
//  2. number of people fits the workspace capacity
//  3. start < end
//  4. start is not in the past
//  5. no overlap with a live confirmed reservation on the workspace
//  6. guests resolve to active company users or the external marker
//
// The insert re-runs the overlap check under a workspace row lock, so a
// concurrent create racing past step 5 still cannot double-book.
func (s *reservationService) CreateReservation(ctx context.Context, req CreateReservationRequest) (*ReservationDTO, error) {
	ws, err := s.workspaces.FindAvailableWorkspace(ctx, req.Actor.CompanyID, req.WorkspaceID)
	if err != nil {
		return nil, err
	}

	if req.NumberOfPeople < 1 || req.NumberOfPeople > ws.Capacity {
		return nil, fmt.Errorf("%w: requested %d, capacity %d", domain.ErrCapacityExceeded, req.NumberOfPeople, ws.Capacity)
	}
	if !req.StartTime.Before(req.EndTime) {
		return nil, domain.ErrInvalidRange
	}
	if req.StartTime.Before(time.Now()) {
		return nil, domain.ErrPastDate
	}

	overlaps, err := s.reservations.HasOverlap(ctx, req.WorkspaceID, req.StartTime, req.EndTime, "")
	if err != nil {
		return nil, fmt.Errorf("failed to check overlap: %w", err)
	}
	if overlaps {
		return nil, domain.ErrConflict
	}

	if err := s.validateGuests(ctx, req.Actor.CompanyID, req.Guests); err != nil {
		return nil, err
	}

	res := &domain.Reservation{
		UserID:         req.Actor.UserID,
		WorkspaceID:    req.WorkspaceID,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		NumberOfPeople: req.NumberOfPeople,
		Guests:         req.Guests,
	}
	id, err := s.reservations.CreateConfirmed(ctx, res)
	if err != nil {
		return nil, err
	}

	created, err := s.reservations.GetReservation(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload reservation: %w", err)
	}

	s.runHooks(ctx, ReservationEvent{
		Type:        EventReservationConfirmed,
		Actor:       req.Actor,
		Reservation: created,
		Workspace:   ws,
	})
	return toReservationDTO(created), nil
}

func (s *reservationService) UpdateReservation(ctx context.Context, req UpdateReservationRequest) (*ReservationDTO, error) {
	res, ws, err := s.getScoped(ctx, req.Actor, req.ReservationID)
	if err != nil {
		return nil, err
	}

	if res.Status == domain.ReservationCancelled {
		return nil, domain.ErrAlreadyCancelled
	}
	if res.StartTime.Before(time.Now()) {
		return nil, domain.ErrReservationInProgress
	}

	people := res.NumberOfPeople
	if req.NumberOfPeople != nil {
		people = *req.NumberOfPeople
	}
	if people < 1 || people > ws.Capacity {
		return nil, fmt.Errorf("%w: requested %d, capacity %d", domain.ErrCapacityExceeded, people, ws.Capacity)
	}

	// Validate the effective merged time range, not just the delta.
	start, end := res.StartTime, res.EndTime
	if req.StartTime != nil {
		start = *req.StartTime
	}
	if req.EndTime != nil {
		end = *req.EndTime
	}
	if !start.Before(end) {
		return nil, domain.ErrInvalidRange
	}
	if start.Before(time.Now()) {
		return nil, domain.ErrPastDate
	}

	timeChanged := !start.Equal(res.StartTime) || !end.Equal(res.EndTime)
	if timeChanged {
		overlaps, err := s.reservations.HasOverlap(ctx, res.WorkspaceID, start, end, res.ReservationID)
		if err != nil {
			return nil, fmt.Errorf("failed to check overlap: %w", err)
		}
		if overlaps {
			return nil, domain.ErrConflict
		}
	}

	guests := res.Guests
	if req.Guests != nil {
		if err := s.validateGuests(ctx, req.Actor.CompanyID, req.Guests); err != nil {
			return nil, err
		}
		guests = req.Guests
	}

	res.StartTime = start
	res.EndTime = end
	res.NumberOfPeople = people
	res.Guests = guests
	if err := s.reservations.UpdateChecked(ctx, res); err != nil {
		return nil, err
	}

	updated, err := s.reservations.GetReservation(ctx, res.ReservationID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload reservation: %w", err)
	}

	s.runHooks(ctx, ReservationEvent{
		Type:        EventReservationModified,
		Actor:       req.Actor,
		Reservation: updated,
		Workspace:   ws,
	})
	return toReservationDTO(updated), nil
}

func (s *reservationService) CancelReservation(ctx context.Context, actor domain.Actor, reservationID string) error {
	res, ws, err := s.getScoped(ctx, actor, reservationID)
	if err != nil {
		return err
	}

	if res.Status == domain.ReservationCancelled {
		return domain.ErrAlreadyCancelled
	}
	if !res.EndTime.After(time.Now()) {
		return domain.ErrAlreadyEnded
	}

	if err := s.reservations.SetStatus(ctx, reservationID, domain.ReservationCancelled); err != nil {
		return err
	}
	res.Status = domain.ReservationCancelled

	s.runHooks(ctx, ReservationEvent{
		Type:        EventReservationCancelled,
		Actor:       actor,
		Reservation: res,
		Workspace:   ws,
	})
	return nil
}

// ============================================
// Reads
// ============================================

func (s *reservationService) GetReservation(ctx context.Context, actor domain.Actor, reservationID string) (*ReservationDTO, error) {
	res, _, err := s.getScoped(ctx, actor, reservationID)
	if err != nil {
		return nil, err
	}
	return toReservationDTO(res), nil
}

func (s *reservationService) CheckAvailability(ctx context.Context, req CheckAvailabilityRequest) (*AvailabilityResponse, error) {
	ws, err := s.workspaces.FindAvailableWorkspace(ctx, req.Actor.CompanyID, req.WorkspaceID)
	if err != nil {
		return nil, err
	}
	if !req.StartTime.Before(req.EndTime) {
		return nil, domain.ErrInvalidRange
	}

	overlaps, err := s.reservations.HasOverlap(ctx, req.WorkspaceID, req.StartTime, req.EndTime, req.ExcludeReservationID)
	if err != nil {
		return nil, fmt.Errorf("failed to check overlap: %w", err)
	}
	return &AvailabilityResponse{Available: !overlaps, Capacity: ws.Capacity}, nil
}

func (s *reservationService) ListMyReservations(ctx context.Context, actor domain.Actor, filters repository.ReservationFilters, page, size int) ([]*ReservationDTO, int, error) {
	list, total, err := s.reservations.ListByUser(ctx, actor.UserID, filters, page, size)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reservations: %w", err)
	}
	return toDTOs(list), total, nil
}

func (s *reservationService) ListCompanyReservations(ctx context.Context, actor domain.Actor, filters repository.ReservationFilters, page, size int) ([]*ReservationDTO, int, error) {
	if !actor.IsAdmin() {
		return nil, 0, domain.ErrForbidden
	}
	list, total, err := s.reservations.ListByCompany(ctx, actor.CompanyID, filters, page, size)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list company reservations: %w", err)
	}
	return toDTOs(list), total, nil
}

func (s *reservationService) ListWorkspaceReservations(ctx context.Context, actor domain.Actor, workspaceID string, filters repository.ReservationFilters, page, size int) ([]*ReservationDTO, int, error) {
	if !actor.IsAdmin() {
		return nil, 0, domain.ErrForbidden
	}
	// Scope check: the workspace must be visible to the actor's company.
	if _, err := s.workspaces.GetWorkspace(ctx, actor.CompanyID, workspaceID); err != nil {
		return nil, 0, err
	}
	list, total, err := s.reservations.ListByWorkspace(ctx, workspaceID, filters, page, size)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list workspace reservations: %w", err)
	}
	return toDTOs(list), total, nil
}

func toDTOs(list []*domain.Reservation) []*ReservationDTO {
	out := make([]*ReservationDTO, 0, len(list))
	for _, res := range list {
		out = append(out, toReservationDTO(res))
	}
	return out
}

// ============================================
// Internals
// ============================================

// getScoped loads a reservation and enforces visibility: the owner sees
// their own, admins see any reservation in their company. Anything else is
// reported as not found, never as "exists but forbidden".
func (s *reservationService) getScoped(ctx context.Context, actor domain.Actor, reservationID string) (*domain.Reservation, *domain.Workspace, error) {
	res, err := s.reservations.GetReservation(ctx, reservationID)
	if err != nil {
		return nil, nil, err
	}

	ws, err := s.workspaces.GetWorkspace(ctx, actor.CompanyID, res.WorkspaceID)
	if err != nil {
		// Workspace not in the actor's company (or archived).
		return nil, nil, fmt.Errorf("reservation %s: %w", reservationID, domain.ErrNotFound)
	}

	if res.UserID != actor.UserID && !actor.IsAdmin() {
		return nil, nil, fmt.Errorf("reservation %s: %w", reservationID, domain.ErrNotFound)
	}
	return res, ws, nil
}

// validateGuests checks each entry: either the external-guest marker or the
// id of an active user in the same company. The whole request is rejected
// on the first bad entry, with an itemized reason.
func (s *reservationService) validateGuests(ctx context.Context, companyID string, guests []string) error {
	if len(guests) == 0 {
		return nil
	}

	var ids []string
	for _, g := range guests {
		if g == domain.GuestExternal {
			continue
		}
		if g == "" {
			return fmt.Errorf("%w: empty guest entry", domain.ErrInvalidGuest)
		}
		ids = append(ids, g)
	}
	if len(ids) == 0 {
		return nil
	}

	active, err := s.users.FilterActiveUserIDs(ctx, companyID, ids)
	if err != nil {
		return fmt.Errorf("failed to resolve guests: %w", err)
	}
	for _, id := range ids {
		if !active[id] {
			return fmt.Errorf("%w: %q is not an active company user", domain.ErrInvalidGuest, id)
		}
	}
	return nil
}

// AddPostCommitHook registers a post-commit side effect.
func (s *reservationService) AddPostCommitHook(hook ReservationHook) {
	s.hooks = append(s.hooks, hook)
}

// runHooks invokes every post-commit hook with an isolated error boundary:
// a failing or panicking hook is logged and the remaining hooks still run.
// The primary mutation has already committed; nothing here may undo it.
func (s *reservationService) runHooks(ctx context.Context, ev ReservationEvent) {
	for i, hook := range s.hooks {
		func() {
			defer func() {
				if rec := recover(); rec != nil {
					s.logger.Error("reservation hook panicked",
						zap.Int("hook", i),
						zap.String("event", ev.Type),
						zap.Any("panic", rec),
					)
				}
			}()
			if err := hook(ctx, ev); err != nil {
				s.logger.Warn("reservation hook failed",
					zap.Int("hook", i),
					zap.String("event", ev.Type),
					zap.String("reservation_id", ev.Reservation.ReservationID),
					zap.Error(err),
				)
			}
		}()
	}
}

// IsValidationError reports whether the error is a request-level validation
// failure (HTTP 400 family), as opposed to not-found/conflict/infrastructure.
func IsValidationError(err error) bool {
	return errors.Is(err, domain.ErrInvalidRange) ||
		errors.Is(err, domain.ErrPastDate) ||
		errors.Is(err, domain.ErrCapacityExceeded) ||
		errors.Is(err, domain.ErrInvalidGuest) ||
		errors.Is(err, domain.ErrAlreadyCancelled) ||
		errors.Is(err, domain.ErrAlreadyEnded) ||
		errors.Is(err, domain.ErrReservationInProgress)
}
