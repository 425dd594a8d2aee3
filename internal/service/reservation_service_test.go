package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"deskhive/internal/domain"
	"deskhive/internal/repository"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type reservationFixture struct {
	svc          ReservationService
	reservations *repository.MemoryReservationsRepository
	workspaces   *repository.MemoryWorkspacesRepository
	users        *repository.MemoryUsersRepository

	companyID   string
	workspaceID string
	owner       domain.Actor
	colleague   domain.Actor
	admin       domain.Actor
}

func newReservationFixture(t *testing.T) *reservationFixture {
	t.Helper()
	ctx := context.Background()

	workspaces := repository.NewMemoryWorkspacesRepository()
	reservations := repository.NewMemoryReservationsRepository()
	users := repository.NewMemoryUsersRepository()

	companyID := "00000000-0000-0000-0000-00000000c001"

	wsID, err := workspaces.CreateWorkspace(ctx, &domain.Workspace{
		CompanyID:   companyID,
		Name:        "Meeting Room A",
		Capacity:    6,
		IsAvailable: true,
	})
	require.NoError(t, err)
	reservations.RegisterWorkspace(wsID, companyID)

	mkUser := func(id, email, role string) domain.Actor {
		_, err := users.CreateUser(ctx, &domain.User{
			UserID:    id,
			CompanyID: companyID,
			Email:     email,
			Role:      role,
			IsActive:  true,
		})
		require.NoError(t, err)
		return domain.Actor{UserID: id, CompanyID: companyID, Role: role}
	}

	return &reservationFixture{
		svc:          NewReservationService(reservations, workspaces, users, zap.NewNop()),
		reservations: reservations,
		workspaces:   workspaces,
		users:        users,
		companyID:    companyID,
		workspaceID:  wsID,
		owner:        mkUser("00000000-0000-0000-0000-00000000u001", "owner@acme.com", domain.RoleUser),
		colleague:    mkUser("00000000-0000-0000-0000-00000000u002", "colleague@acme.com", domain.RoleUser),
		admin:        mkUser("00000000-0000-0000-0000-00000000u003", "admin@acme.com", domain.RoleAdmin),
	}
}

func (f *reservationFixture) createAt(t *testing.T, actor domain.Actor, start, end time.Time) *ReservationDTO {
	t.Helper()
	dto, err := f.svc.CreateReservation(context.Background(), CreateReservationRequest{
		Actor:          actor,
		WorkspaceID:    f.workspaceID,
		NumberOfPeople: 2,
		StartTime:      start,
		EndTime:        end,
	})
	require.NoError(t, err)
	return dto
}

func in(h time.Duration) time.Time { return time.Now().Add(h).Truncate(time.Second) }

func TestCreateReservation_Success(t *testing.T) {
	f := newReservationFixture(t)

	dto := f.createAt(t, f.owner, in(24*time.Hour), in(26*time.Hour))

	require.NotEmpty(t, dto.ReservationID)
	require.Equal(t, domain.ReservationConfirmed, dto.Status)
	require.Equal(t, f.owner.UserID, dto.UserID)
	require.Equal(t, f.workspaceID, dto.WorkspaceID)
}

func TestCreateReservation_Conflict(t *testing.T) {
	f := newReservationFixture(t)
	f.createAt(t, f.owner, in(24*time.Hour), in(26*time.Hour))

	_, err := f.svc.CreateReservation(context.Background(), CreateReservationRequest{
		Actor:          f.colleague,
		WorkspaceID:    f.workspaceID,
		NumberOfPeople: 2,
		StartTime:      in(25 * time.Hour),
		EndTime:        in(27 * time.Hour),
	})
	require.ErrorIs(t, err, domain.ErrConflict)
}

func TestCreateReservation_BackToBackAllowed(t *testing.T) {
	f := newReservationFixture(t)
	boundary := in(26 * time.Hour)
	f.createAt(t, f.owner, in(24*time.Hour), boundary)

	// [start, end) intervals: a booking starting exactly at the previous
	// end must be accepted.
	dto, err := f.svc.CreateReservation(context.Background(), CreateReservationRequest{
		Actor:          f.colleague,
		WorkspaceID:    f.workspaceID,
		NumberOfPeople: 2,
		StartTime:      boundary,
		EndTime:        in(28 * time.Hour),
	})
	require.NoError(t, err)
	require.Equal(t, domain.ReservationConfirmed, dto.Status)
}

func TestCreateReservation_CapacityExceeded(t *testing.T) {
	f := newReservationFixture(t)

	_, err := f.svc.CreateReservation(context.Background(), CreateReservationRequest{
		Actor:          f.owner,
		WorkspaceID:    f.workspaceID,
		NumberOfPeople: 7, // capacity is 6
		StartTime:      in(24 * time.Hour),
		EndTime:        in(26 * time.Hour),
	})
	require.ErrorIs(t, err, domain.ErrCapacityExceeded)
}

func TestCreateReservation_InvalidRange(t *testing.T) {
	f := newReservationFixture(t)

	_, err := f.svc.CreateReservation(context.Background(), CreateReservationRequest{
		Actor:          f.owner,
		WorkspaceID:    f.workspaceID,
		NumberOfPeople: 2,
		StartTime:      in(26 * time.Hour),
		EndTime:        in(24 * time.Hour),
	})
	require.ErrorIs(t, err, domain.ErrInvalidRange)
}

func TestCreateReservation_PastDate(t *testing.T) {
	f := newReservationFixture(t)

	_, err := f.svc.CreateReservation(context.Background(), CreateReservationRequest{
		Actor:          f.owner,
		WorkspaceID:    f.workspaceID,
		NumberOfPeople: 2,
		StartTime:      in(-2 * time.Hour),
		EndTime:        in(2 * time.Hour),
	})
	require.ErrorIs(t, err, domain.ErrPastDate)
}

func TestCreateReservation_UnknownWorkspace(t *testing.T) {
	f := newReservationFixture(t)

	_, err := f.svc.CreateReservation(context.Background(), CreateReservationRequest{
		Actor:          f.owner,
		WorkspaceID:    "00000000-0000-0000-0000-0000000000ff",
		NumberOfPeople: 2,
		StartTime:      in(24 * time.Hour),
		EndTime:        in(26 * time.Hour),
	})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateReservation_Guests(t *testing.T) {
	f := newReservationFixture(t)
	ctx := context.Background()

	// Colleague id and the external marker are both fine.
	dto, err := f.svc.CreateReservation(ctx, CreateReservationRequest{
		Actor:          f.owner,
		WorkspaceID:    f.workspaceID,
		NumberOfPeople: 3,
		StartTime:      in(24 * time.Hour),
		EndTime:        in(26 * time.Hour),
		Guests:         []string{f.colleague.UserID, domain.GuestExternal},
	})
	require.NoError(t, err)
	require.Equal(t, []string{f.colleague.UserID, domain.GuestExternal}, dto.Guests)

	// An unknown user id rejects the whole request.
	_, err = f.svc.CreateReservation(ctx, CreateReservationRequest{
		Actor:          f.owner,
		WorkspaceID:    f.workspaceID,
		NumberOfPeople: 3,
		StartTime:      in(30 * time.Hour),
		EndTime:        in(31 * time.Hour),
		Guests:         []string{"00000000-0000-0000-0000-0000000000aa"},
	})
	require.ErrorIs(t, err, domain.ErrInvalidGuest)
}

func TestGetReservation_Visibility(t *testing.T) {
	f := newReservationFixture(t)
	ctx := context.Background()
	dto := f.createAt(t, f.owner, in(24*time.Hour), in(26*time.Hour))

	_, err := f.svc.GetReservation(ctx, f.owner, dto.ReservationID)
	require.NoError(t, err)

	_, err = f.svc.GetReservation(ctx, f.admin, dto.ReservationID)
	require.NoError(t, err)

	// A non-owning user gets not-found, never "exists but forbidden".
	_, err = f.svc.GetReservation(ctx, f.colleague, dto.ReservationID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateReservation_MergedRangeValidated(t *testing.T) {
	f := newReservationFixture(t)
	dto := f.createAt(t, f.owner, in(24*time.Hour), in(26*time.Hour))

	// Moving only the end before the kept start must fail on the merged range.
	badEnd := in(23 * time.Hour)
	_, err := f.svc.UpdateReservation(context.Background(), UpdateReservationRequest{
		Actor:         f.owner,
		ReservationID: dto.ReservationID,
		EndTime:       &badEnd,
	})
	require.ErrorIs(t, err, domain.ErrInvalidRange)
}

func TestUpdateReservation_ConflictOnMove(t *testing.T) {
	f := newReservationFixture(t)
	ctx := context.Background()
	f.createAt(t, f.colleague, in(30*time.Hour), in(32*time.Hour))
	dto := f.createAt(t, f.owner, in(24*time.Hour), in(26*time.Hour))

	newStart, newEnd := in(31*time.Hour), in(33*time.Hour)
	_, err := f.svc.UpdateReservation(ctx, UpdateReservationRequest{
		Actor:         f.owner,
		ReservationID: dto.ReservationID,
		StartTime:     &newStart,
		EndTime:       &newEnd,
	})
	require.ErrorIs(t, err, domain.ErrConflict)

	// Shrinking inside its own slot is not a conflict with itself.
	selfStart, selfEnd := in(24*time.Hour+30*time.Minute), in(25*time.Hour)
	updated, err := f.svc.UpdateReservation(ctx, UpdateReservationRequest{
		Actor:         f.owner,
		ReservationID: dto.ReservationID,
		StartTime:     &selfStart,
		EndTime:       &selfEnd,
	})
	require.NoError(t, err)
	require.True(t, updated.StartTime.Equal(selfStart))
}

func TestUpdateReservation_AlreadyStarted(t *testing.T) {
	f := newReservationFixture(t)
	ctx := context.Background()

	// Seed a running reservation directly; the service refuses past starts.
	id, err := f.reservations.CreateConfirmed(ctx, &domain.Reservation{
		UserID:         f.owner.UserID,
		WorkspaceID:    f.workspaceID,
		StartTime:      in(-1 * time.Hour),
		EndTime:        in(1 * time.Hour),
		NumberOfPeople: 2,
	})
	require.NoError(t, err)

	people := 3
	_, err = f.svc.UpdateReservation(ctx, UpdateReservationRequest{
		Actor:          f.owner,
		ReservationID:  id,
		NumberOfPeople: &people,
	})
	require.ErrorIs(t, err, domain.ErrReservationInProgress)
}

func TestCancelReservation(t *testing.T) {
	f := newReservationFixture(t)
	ctx := context.Background()
	dto := f.createAt(t, f.owner, in(24*time.Hour), in(26*time.Hour))

	require.NoError(t, f.svc.CancelReservation(ctx, f.owner, dto.ReservationID))

	// Second cancel is a state-machine violation, not a success.
	err := f.svc.CancelReservation(ctx, f.owner, dto.ReservationID)
	require.ErrorIs(t, err, domain.ErrAlreadyCancelled)

	// The slot frees up immediately.
	avail, err := f.svc.CheckAvailability(ctx, CheckAvailabilityRequest{
		Actor:       f.colleague,
		WorkspaceID: f.workspaceID,
		StartTime:   dto.StartTime,
		EndTime:     dto.EndTime,
	})
	require.NoError(t, err)
	require.True(t, avail.Available)
}

func TestCancelReservation_AlreadyEnded(t *testing.T) {
	f := newReservationFixture(t)
	ctx := context.Background()

	id, err := f.reservations.CreateConfirmed(ctx, &domain.Reservation{
		UserID:         f.owner.UserID,
		WorkspaceID:    f.workspaceID,
		StartTime:      in(-3 * time.Hour),
		EndTime:        in(-1 * time.Hour),
		NumberOfPeople: 2,
	})
	require.NoError(t, err)

	err = f.svc.CancelReservation(ctx, f.owner, id)
	require.ErrorIs(t, err, domain.ErrAlreadyEnded)
}

func TestCheckAvailability_ExcludesOwnReservation(t *testing.T) {
	f := newReservationFixture(t)
	ctx := context.Background()
	dto := f.createAt(t, f.owner, in(24*time.Hour), in(26*time.Hour))

	avail, err := f.svc.CheckAvailability(ctx, CheckAvailabilityRequest{
		Actor:       f.owner,
		WorkspaceID: f.workspaceID,
		StartTime:   dto.StartTime,
		EndTime:     dto.EndTime,
	})
	require.NoError(t, err)
	require.False(t, avail.Available)
	require.Equal(t, 6, avail.Capacity)

	avail, err = f.svc.CheckAvailability(ctx, CheckAvailabilityRequest{
		Actor:                f.owner,
		WorkspaceID:          f.workspaceID,
		StartTime:            dto.StartTime,
		EndTime:              dto.EndTime,
		ExcludeReservationID: dto.ReservationID,
	})
	require.NoError(t, err)
	require.True(t, avail.Available)
}

func TestListReservations_Scoping(t *testing.T) {
	f := newReservationFixture(t)
	ctx := context.Background()
	f.createAt(t, f.owner, in(24*time.Hour), in(25*time.Hour))
	f.createAt(t, f.colleague, in(26*time.Hour), in(27*time.Hour))

	mine, total, err := f.svc.ListMyReservations(ctx, f.owner, repository.ReservationFilters{}, 1, 20)
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, mine, 1)
	require.Equal(t, f.owner.UserID, mine[0].UserID)

	_, _, err = f.svc.ListCompanyReservations(ctx, f.owner, repository.ReservationFilters{}, 1, 20)
	require.ErrorIs(t, err, domain.ErrForbidden)

	all, total, err := f.svc.ListCompanyReservations(ctx, f.admin, repository.ReservationFilters{}, 1, 20)
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Len(t, all, 2)
}

func TestPostCommitHooks_FailureIsolated(t *testing.T) {
	f := newReservationFixture(t)

	var events []string
	f.svc.AddPostCommitHook(func(ctx context.Context, ev ReservationEvent) error {
		return errors.New("notification store down")
	})
	f.svc.AddPostCommitHook(func(ctx context.Context, ev ReservationEvent) error {
		events = append(events, ev.Type)
		return nil
	})

	dto := f.createAt(t, f.owner, in(24*time.Hour), in(26*time.Hour))
	require.NotEmpty(t, dto.ReservationID)
	require.Equal(t, []string{EventReservationConfirmed}, events)

	require.NoError(t, f.svc.CancelReservation(context.Background(), f.owner, dto.ReservationID))
	require.Equal(t, []string{EventReservationConfirmed, EventReservationCancelled}, events)
}
