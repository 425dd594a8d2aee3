package service

import (
	"context"
	"time"

	"deskhive/internal/repository"

	"go.uber.org/zap"
)

// Reminder scan windows. Each run looks for confirmed reservations starting
// around now+24h and around now+1h; the window half-widths absorb ticker
// drift at the default hourly interval.
const (
	dayReminderLead   = 24 * time.Hour
	dayReminderSlack  = 30 * time.Minute
	hourReminderLead  = time.Hour
	hourReminderSlack = 5 * time.Minute
)

// ReminderService scans confirmed reservations and emits reminder
// notifications. It only reads reservations and writes notifications; it
// never touches reservation state, so it cannot contend with live requests.
//
// No suppression state is kept: if the trigger fires twice inside one
// window the owner gets the reminder twice. Accepted imprecision.
type ReminderService struct {
	reservations  repository.ReservationsRepository
	notifications NotificationService
	interval      time.Duration
	logger        *zap.Logger
}

// NewReminderService creates the reminder trigger.
func NewReminderService(
	reservations repository.ReservationsRepository,
	notifications NotificationService,
	interval time.Duration,
	logger *zap.Logger,
) *ReminderService {
	if interval <= 0 {
		interval = time.Hour
	}
	return &ReminderService{
		reservations:  reservations,
		notifications: notifications,
		interval:      interval,
		logger:        logger,
	}
}

// Run blocks, firing a scan once per interval until ctx is cancelled.
func (s *ReminderService) Run(ctx context.Context) {
	s.logger.Info("starting reminder trigger", zap.Duration("interval", s.interval))
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("stopping reminder trigger")
			return
		case <-ticker.C:
			s.RunOnce(ctx, time.Now())
		}
	}
}

// RunOnce executes the two independent window scans for a given "now".
// Scan failures are logged; a failed 24h scan does not block the 1h scan.
func (s *ReminderService) RunOnce(ctx context.Context, now time.Time) {
	s.scanWindow(ctx, now, dayReminderLead, dayReminderSlack)
	s.scanWindow(ctx, now, hourReminderLead, hourReminderSlack)
}

func (s *ReminderService) scanWindow(ctx context.Context, now time.Time, lead, slack time.Duration) {
	from := now.Add(lead - slack)
	to := now.Add(lead + slack)

	list, err := s.reservations.ListConfirmedStartingBetween(ctx, from, to)
	if err != nil {
		s.logger.Error("reminder scan failed",
			zap.Duration("lead", lead),
			zap.Error(err),
		)
		return
	}

	for _, res := range list {
		msg := reminderMessage(res.StartTime, lead)
		if _, err := s.notifications.CreatePersonal(ctx, res.UserID, msg, res.ReservationID); err != nil {
			// Best effort per reservation; the rest of the batch still runs.
			s.logger.Warn("reminder notification failed",
				zap.String("reservation_id", res.ReservationID),
				zap.String("user_id", res.UserID),
				zap.Error(err),
			)
		}
	}

	if len(list) > 0 {
		s.logger.Info("reminder scan emitted notifications",
			zap.Duration("lead", lead),
			zap.Int("count", len(list)),
		)
	}
}
