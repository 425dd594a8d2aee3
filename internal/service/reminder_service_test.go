package service

import (
	"context"
	"testing"
	"time"

	"deskhive/internal/domain"
	"deskhive/internal/repository"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func seedConfirmed(t *testing.T, repo *repository.MemoryReservationsRepository, userID, workspaceID string, start time.Time) string {
	t.Helper()
	id, err := repo.CreateConfirmed(context.Background(), &domain.Reservation{
		UserID:         userID,
		WorkspaceID:    workspaceID,
		StartTime:      start,
		EndTime:        start.Add(time.Hour),
		NumberOfPeople: 2,
	})
	require.NoError(t, err)
	return id
}

func TestReminderScan_Windows(t *testing.T) {
	ctx := context.Background()
	reservations := repository.NewMemoryReservationsRepository()
	notifRepo := repository.NewMemoryNotificationsRepository()
	users := repository.NewMemoryUsersRepository()
	notifications := NewNotificationService(notifRepo, users, nil, zap.NewNop())

	now := time.Now()
	userDay := "00000000-0000-0000-0000-00000000u101"
	userHour := "00000000-0000-0000-0000-00000000u102"
	userFar := "00000000-0000-0000-0000-00000000u103"

	dayID := seedConfirmed(t, reservations, userDay, "ws-1", now.Add(24*time.Hour))
	hourID := seedConfirmed(t, reservations, userHour, "ws-2", now.Add(58*time.Minute))
	seedConfirmed(t, reservations, userFar, "ws-3", now.Add(72*time.Hour))

	// A cancelled reservation in-window gets no reminder.
	cancelledID := seedConfirmed(t, reservations, userDay, "ws-4", now.Add(24*time.Hour+10*time.Minute))
	require.NoError(t, reservations.SetStatus(ctx, cancelledID, domain.ReservationCancelled))

	svc := NewReminderService(reservations, notifications, time.Hour, zap.NewNop())
	svc.RunOnce(ctx, now)

	actorOf := func(userID string) domain.Actor { return domain.Actor{UserID: userID} }

	dayList, total, err := notifications.ListNotifications(ctx, actorOf(userDay), repository.NotificationFilters{}, 1, 20)
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, dayID, dayList[0].ReservationID)
	require.Equal(t, domain.NotificationPersonal, dayList[0].Type)

	hourList, _, err := notifications.ListNotifications(ctx, actorOf(userHour), repository.NotificationFilters{}, 1, 20)
	require.NoError(t, err)
	require.Len(t, hourList, 1)
	require.Equal(t, hourID, hourList[0].ReservationID)

	farList, _, err := notifications.ListNotifications(ctx, actorOf(userFar), repository.NotificationFilters{}, 1, 20)
	require.NoError(t, err)
	require.Empty(t, farList)
}

func TestReminderScan_NoSuppression(t *testing.T) {
	ctx := context.Background()
	reservations := repository.NewMemoryReservationsRepository()
	notifRepo := repository.NewMemoryNotificationsRepository()
	users := repository.NewMemoryUsersRepository()
	notifications := NewNotificationService(notifRepo, users, nil, zap.NewNop())

	now := time.Now()
	userID := "00000000-0000-0000-0000-00000000u201"
	seedConfirmed(t, reservations, userID, "ws-1", now.Add(24*time.Hour))

	svc := NewReminderService(reservations, notifications, time.Hour, zap.NewNop())
	svc.RunOnce(ctx, now)
	svc.RunOnce(ctx, now.Add(10*time.Minute))

	// Two runs inside the same window mean two reminders. There is no
	// dedup state.
	count, err := notifications.CountUnread(ctx, domain.Actor{UserID: userID})
	require.NoError(t, err)
	require.Equal(t, 2, count)
}
