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

func TestReservationNotificationHook_EndToEnd(t *testing.T) {
	f := newReservationFixture(t)
	ctx := context.Background()

	notifRepo := repository.NewMemoryNotificationsRepository()
	notifications := NewNotificationService(notifRepo, f.users, nil, zap.NewNop())
	f.svc.AddPostCommitHook(NewReservationNotificationHook(notifications, f.users, true, zap.NewNop()))

	dto := f.createAt(t, f.owner, in(24*time.Hour), in(26*time.Hour))

	// Owner gets the confirmation, linked to the reservation.
	ownerList, _, err := notifications.ListNotifications(ctx, domain.Actor{UserID: f.owner.UserID}, repository.NotificationFilters{}, 1, 10)
	require.NoError(t, err)
	require.Len(t, ownerList, 1)
	require.Equal(t, dto.ReservationID, ownerList[0].ReservationID)
	require.Contains(t, ownerList[0].Message, "Meeting Room A")
	require.Contains(t, ownerList[0].Message, "confirmed")

	// notifyAdmins on: the company admin gets the heads-up too.
	adminList, _, err := notifications.ListNotifications(ctx, domain.Actor{UserID: f.admin.UserID}, repository.NotificationFilters{}, 1, 10)
	require.NoError(t, err)
	require.Len(t, adminList, 1)
	require.Contains(t, adminList[0].Message, "New reservation")

	// Uninvolved colleague hears nothing.
	otherList, _, err := notifications.ListNotifications(ctx, domain.Actor{UserID: f.colleague.UserID}, repository.NotificationFilters{}, 1, 10)
	require.NoError(t, err)
	require.Empty(t, otherList)

	// Cancel notifies the owner only.
	require.NoError(t, f.svc.CancelReservation(ctx, f.owner, dto.ReservationID))
	ownerList, _, err = notifications.ListNotifications(ctx, domain.Actor{UserID: f.owner.UserID}, repository.NotificationFilters{}, 1, 10)
	require.NoError(t, err)
	require.Len(t, ownerList, 2)
	require.Contains(t, ownerList[0].Message, "cancelled")

	adminList, _, err = notifications.ListNotifications(ctx, domain.Actor{UserID: f.admin.UserID}, repository.NotificationFilters{}, 1, 10)
	require.NoError(t, err)
	require.Len(t, adminList, 1)
}

func TestReservationNotificationHook_AdminOwnerNotDoubled(t *testing.T) {
	f := newReservationFixture(t)
	ctx := context.Background()

	notifRepo := repository.NewMemoryNotificationsRepository()
	notifications := NewNotificationService(notifRepo, f.users, nil, zap.NewNop())
	f.svc.AddPostCommitHook(NewReservationNotificationHook(notifications, f.users, true, zap.NewNop()))

	// The admin books for themselves: one confirmation, no extra heads-up.
	f.createAt(t, f.admin, in(24*time.Hour), in(26*time.Hour))

	adminList, _, err := notifications.ListNotifications(ctx, domain.Actor{UserID: f.admin.UserID}, repository.NotificationFilters{}, 1, 10)
	require.NoError(t, err)
	require.Len(t, adminList, 1)
	require.Contains(t, adminList[0].Message, "Your reservation")
}
