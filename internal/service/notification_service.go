package service

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"
	"unicode/utf8"

	"deskhive/internal/domain"
	"deskhive/internal/repository"
	"deskhive/internal/store"

	"go.uber.org/zap"
)

// NotificationService notification dispatcher: creates records, manages
// read state, serves the polling endpoints. Nothing is pushed.
type NotificationService interface {
	// CreatePersonal inserts one unread personal notification. Every call
	// creates a new row; callers own dedup (there is none).
	CreatePersonal(ctx context.Context, userID, message, relatedReservationID string) (string, error)

	// CreateGlobal fans one notification out to every active company user
	// not in the exclusion set. Best-effort: a failed recipient is logged
	// and skipped, rows already created stay.
	CreateGlobal(ctx context.Context, req CreateGlobalRequest) (*CreateGlobalResponse, error)

	MarkRead(ctx context.Context, actor domain.Actor, notificationID string) (bool, error)
	MarkAllRead(ctx context.Context, actor domain.Actor) (int, error)
	ListNotifications(ctx context.Context, actor domain.Actor, filters repository.NotificationFilters, page, size int) ([]*NotificationDTO, int, error)
	CountUnread(ctx context.Context, actor domain.Actor) (int, error)
}

type notificationService struct {
	notifications repository.NotificationsRepository
	users         repository.UsersRepository
	cache         store.KV
	logger        *zap.Logger
}

// NewNotificationService creates the notification dispatcher. cache may be
// nil; it only backs the unread counter.
func NewNotificationService(
	notifications repository.NotificationsRepository,
	users repository.UsersRepository,
	cache store.KV,
	logger *zap.Logger,
) NotificationService {
	return &notificationService{
		notifications: notifications,
		users:         users,
		cache:         cache,
		logger:        logger,
	}
}

// ============================================
// Request/Response DTOs
// ============================================

// CreateGlobalRequest admin broadcast to a company.
type CreateGlobalRequest struct {
	Actor          domain.Actor
	Message        string
	ExcludeUserIDs []string
}

// CreateGlobalResponse fan-out result.
type CreateGlobalResponse struct {
	Created int `json:"created"`
	Failed  int `json:"failed"`
}

// NotificationDTO camelCase projection of a notification.
type NotificationDTO struct {
	NotificationID string     `json:"notificationId"`
	Type           string     `json:"type"`
	Message        string     `json:"message"`
	IsRead         bool       `json:"isRead"`
	ReservationID  string     `json:"reservationId,omitempty"`
	CreatedAt      *time.Time `json:"createdAt,omitempty"`
}

const unreadCountTTL = 5 * time.Minute

func unreadCountKey(userID string) string { return "notif:unread:" + userID }

// truncateMessage caps the message at the column limit. The limit counts
// characters, not bytes; a byte slice could cut a multibyte rune in half
// and produce invalid UTF-8 the database rejects.
func truncateMessage(message string) string {
	if utf8.RuneCountInString(message) <= domain.MaxNotificationMessageLen {
		return message
	}
	return string([]rune(message)[:domain.MaxNotificationMessageLen])
}

// ============================================
// Writes
// ============================================

func (s *notificationService) CreatePersonal(ctx context.Context, userID, message, relatedReservationID string) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("user id is required")
	}
	if message == "" {
		return "", fmt.Errorf("message is required")
	}
	message = truncateMessage(message)

	n := &domain.Notification{
		UserID:  userID,
		Type:    domain.NotificationPersonal,
		Message: message,
	}
	if relatedReservationID != "" {
		n.ReservationID = sql.NullString{String: relatedReservationID, Valid: true}
	}

	id, err := s.notifications.Create(ctx, n)
	if err != nil {
		return "", fmt.Errorf("failed to create personal notification: %w", err)
	}
	s.invalidateUnread(ctx, userID)
	return id, nil
}

func (s *notificationService) CreateGlobal(ctx context.Context, req CreateGlobalRequest) (*CreateGlobalResponse, error) {
	if !req.Actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	if req.Message == "" {
		return nil, fmt.Errorf("message is required")
	}
	message := truncateMessage(req.Message)

	recipients, err := s.users.ListActiveUsers(ctx, req.Actor.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipients: %w", err)
	}

	excluded := make(map[string]bool, len(req.ExcludeUserIDs))
	for _, id := range req.ExcludeUserIDs {
		excluded[id] = true
	}

	resp := &CreateGlobalResponse{}
	for _, u := range recipients {
		if excluded[u.UserID] {
			continue
		}
		_, err := s.notifications.Create(ctx, &domain.Notification{
			UserID:  u.UserID,
			Type:    domain.NotificationGlobal,
			Message: message,
		})
		if err != nil {
			// Partial failure: log per recipient, keep going. Rows already
			// created are not rolled back.
			s.logger.Warn("global notification fan-out failed for recipient",
				zap.String("user_id", u.UserID),
				zap.Error(err),
			)
			resp.Failed++
			continue
		}
		s.invalidateUnread(ctx, u.UserID)
		resp.Created++
	}
	return resp, nil
}

func (s *notificationService) MarkRead(ctx context.Context, actor domain.Actor, notificationID string) (bool, error) {
	ok, err := s.notifications.MarkRead(ctx, notificationID, actor.UserID)
	if err != nil {
		return false, fmt.Errorf("failed to mark notification read: %w", err)
	}
	if ok {
		s.invalidateUnread(ctx, actor.UserID)
	}
	return ok, nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, actor domain.Actor) (int, error) {
	n, err := s.notifications.MarkAllRead(ctx, actor.UserID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark all notifications read: %w", err)
	}
	if n > 0 {
		s.invalidateUnread(ctx, actor.UserID)
	}
	return n, nil
}

// ============================================
// Reads
// ============================================

func (s *notificationService) ListNotifications(ctx context.Context, actor domain.Actor, filters repository.NotificationFilters, page, size int) ([]*NotificationDTO, int, error) {
	list, total, err := s.notifications.ListByUser(ctx, actor.UserID, filters, page, size)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list notifications: %w", err)
	}

	out := make([]*NotificationDTO, 0, len(list))
	for _, n := range list {
		dto := &NotificationDTO{
			NotificationID: n.NotificationID,
			Type:           n.Type,
			Message:        n.Message,
			IsRead:         n.IsRead,
		}
		if n.ReservationID.Valid {
			dto.ReservationID = n.ReservationID.String
		}
		if n.CreatedAt.Valid {
			t := n.CreatedAt.Time
			dto.CreatedAt = &t
		}
		out = append(out, dto)
	}
	return out, total, nil
}

// CountUnread reads through the KV cache; a cache failure falls back to the
// database and is never surfaced.
func (s *notificationService) CountUnread(ctx context.Context, actor domain.Actor) (int, error) {
	if s.cache != nil {
		if v, err := s.cache.Get(ctx, unreadCountKey(actor.UserID)); err == nil {
			if count, convErr := strconv.Atoi(v); convErr == nil {
				return count, nil
			}
		}
	}

	count, err := s.notifications.CountUnread(ctx, actor.UserID)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, unreadCountKey(actor.UserID), strconv.Itoa(count), unreadCountTTL); err != nil {
			s.logger.Debug("unread count cache set failed", zap.Error(err))
		}
	}
	return count, nil
}

func (s *notificationService) invalidateUnread(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, unreadCountKey(userID)); err != nil {
		s.logger.Debug("unread count cache invalidation failed",
			zap.String("user_id", userID),
			zap.Error(err),
		)
	}
}
