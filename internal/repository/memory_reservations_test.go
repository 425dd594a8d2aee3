package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"deskhive/internal/domain"

	"github.com/stretchr/testify/require"
)

func TestCreateConfirmed_ConcurrentSameSlot(t *testing.T) {
	repo := NewMemoryReservationsRepository()
	ctx := context.Background()

	start := time.Now().Add(24 * time.Hour)
	end := start.Add(2 * time.Hour)

	const attempts = 16
	var wg sync.WaitGroup
	results := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repo.CreateConfirmed(ctx, &domain.Reservation{
				UserID:         "user-1",
				WorkspaceID:    "ws-1",
				StartTime:      start,
				EndTime:        end,
				NumberOfPeople: 2,
			})
			results[i] = err
		}(i)
	}
	wg.Wait()

	// The check-then-write is atomic: exactly one create wins.
	wins := 0
	for _, err := range results {
		if err == nil {
			wins++
		} else {
			require.ErrorIs(t, err, domain.ErrConflict)
		}
	}
	require.Equal(t, 1, wins)
}

func TestHasOverlap_HalfOpenBoundary(t *testing.T) {
	repo := NewMemoryReservationsRepository()
	ctx := context.Background()

	start := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)
	_, err := repo.CreateConfirmed(ctx, &domain.Reservation{
		UserID:         "user-1",
		WorkspaceID:    "ws-1",
		StartTime:      start,
		EndTime:        end,
		NumberOfPeople: 2,
	})
	require.NoError(t, err)

	cases := []struct {
		name       string
		qs, qe     time.Time
		wantsClash bool
	}{
		{"identical", start, end, true},
		{"contained", start.Add(30 * time.Minute), end.Add(-30 * time.Minute), true},
		{"overlap tail", end.Add(-time.Minute), end.Add(time.Hour), true},
		{"touching after", end, end.Add(time.Hour), false},
		{"touching before", start.Add(-time.Hour), start, false},
		{"disjoint", end.Add(time.Hour), end.Add(2 * time.Hour), false},
	}
	for _, tc := range cases {
		got, err := repo.HasOverlap(ctx, "ws-1", tc.qs, tc.qe, "")
		require.NoError(t, err)
		require.Equal(t, tc.wantsClash, got, tc.name)
	}

	got, err := repo.HasOverlap(ctx, "ws-2", start, end, "")
	require.NoError(t, err)
	require.False(t, got)
}

func TestUpdateChecked_SelfExcluded(t *testing.T) {
	repo := NewMemoryReservationsRepository()
	ctx := context.Background()

	start := time.Now().Add(24 * time.Hour)
	id, err := repo.CreateConfirmed(ctx, &domain.Reservation{
		UserID:         "user-1",
		WorkspaceID:    "ws-1",
		StartTime:      start,
		EndTime:        start.Add(2 * time.Hour),
		NumberOfPeople: 2,
	})
	require.NoError(t, err)

	// Moving within its own slot must not collide with itself.
	err = repo.UpdateChecked(ctx, &domain.Reservation{
		ReservationID:  id,
		StartTime:      start.Add(30 * time.Minute),
		EndTime:        start.Add(90 * time.Minute),
		NumberOfPeople: 3,
	})
	require.NoError(t, err)

	res, err := repo.GetReservation(ctx, id)
	require.NoError(t, err)
	require.Equal(t, 3, res.NumberOfPeople)
	require.True(t, res.StartTime.Equal(start.Add(30*time.Minute)))
}

func TestCancelledReservationsDoNotBlock(t *testing.T) {
	repo := NewMemoryReservationsRepository()
	ctx := context.Background()

	start := time.Now().Add(24 * time.Hour)
	end := start.Add(2 * time.Hour)
	id, err := repo.CreateConfirmed(ctx, &domain.Reservation{
		UserID:         "user-1",
		WorkspaceID:    "ws-1",
		StartTime:      start,
		EndTime:        end,
		NumberOfPeople: 2,
	})
	require.NoError(t, err)

	_, err = repo.CreateConfirmed(ctx, &domain.Reservation{
		UserID:         "user-2",
		WorkspaceID:    "ws-1",
		StartTime:      start,
		EndTime:        end,
		NumberOfPeople: 2,
	})
	require.True(t, errors.Is(err, domain.ErrConflict))

	require.NoError(t, repo.SetStatus(ctx, id, domain.ReservationCancelled))

	_, err = repo.CreateConfirmed(ctx, &domain.Reservation{
		UserID:         "user-2",
		WorkspaceID:    "ws-1",
		StartTime:      start,
		EndTime:        end,
		NumberOfPeople: 2,
	})
	require.NoError(t, err)
}
