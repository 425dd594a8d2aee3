package service

import (
	"context"
	"fmt"
	"time"

	"deskhive/internal/repository"

	"go.uber.org/zap"
)

// NewReservationNotificationHook returns the post-commit hook that emits
// the lifecycle notifications: a personal message to the owner for every
// event, plus (when notifyAdmins is on) a heads-up to every active company
// admin on new reservations.
func NewReservationNotificationHook(
	notifications NotificationService,
	users repository.UsersRepository,
	notifyAdmins bool,
	logger *zap.Logger,
) ReservationHook {
	return func(ctx context.Context, ev ReservationEvent) error {
		res := ev.Reservation
		when := fmt.Sprintf("%s from %s to %s",
			res.StartTime.Format("Mon, 02 Jan 2006"),
			res.StartTime.Format("15:04"),
			res.EndTime.Format("15:04"),
		)

		var message string
		switch ev.Type {
		case EventReservationConfirmed:
			message = fmt.Sprintf("Your reservation of %q on %s is confirmed.", ev.Workspace.Name, when)
		case EventReservationModified:
			message = fmt.Sprintf("Your reservation of %q was updated: now %s.", ev.Workspace.Name, when)
		case EventReservationCancelled:
			message = fmt.Sprintf("Your reservation of %q on %s was cancelled.", ev.Workspace.Name, when)
		default:
			return fmt.Errorf("unknown reservation event %q", ev.Type)
		}

		if _, err := notifications.CreatePersonal(ctx, res.UserID, message, res.ReservationID); err != nil {
			return err
		}

		if ev.Type == EventReservationConfirmed && notifyAdmins {
			admins, err := users.ListActiveAdmins(ctx, ev.Actor.CompanyID)
			if err != nil {
				return fmt.Errorf("failed to list admins: %w", err)
			}
			adminMsg := fmt.Sprintf("New reservation of %q on %s.", ev.Workspace.Name, when)
			for _, admin := range admins {
				if admin.UserID == res.UserID {
					continue
				}
				if _, err := notifications.CreatePersonal(ctx, admin.UserID, adminMsg, res.ReservationID); err != nil {
					// Per-admin best effort, same as global fan-out.
					logger.Warn("admin reservation notification failed",
						zap.String("admin_id", admin.UserID),
						zap.Error(err),
					)
				}
			}
		}
		return nil
	}
}

// reminderMessage builds the reminder text for a lead window. The scan is
// cross-company, so the message names the time only, not the workspace.
func reminderMessage(start time.Time, lead time.Duration) string {
	if lead <= time.Hour {
		return fmt.Sprintf("Your reservation starts soon, at %s.", start.Format("15:04"))
	}
	return fmt.Sprintf("Reminder: your reservation is tomorrow, %s at %s.",
		start.Format("Mon, 02 Jan 2006"), start.Format("15:04"))
}
