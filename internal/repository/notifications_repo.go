package repository

import (
	"context"

	"deskhive/internal/domain"
)

// NotificationFilters notification list filters.
type NotificationFilters struct {
	UnreadOnly bool
	Type       string // optional: personal/global
}

// NotificationsRepository notification data access.
type NotificationsRepository interface {
	// Create inserts an unread notification and returns its id. Every call
	// creates a new row; there is no dedup.
	Create(ctx context.Context, n *domain.Notification) (string, error)

	// MarkRead flips is_read only when the notification belongs to userID.
	// Returns false (not an error) when not found or not owned.
	MarkRead(ctx context.Context, notificationID, userID string) (bool, error)

	// MarkAllRead flips every unread notification of the user; returns the
	// number of rows updated.
	MarkAllRead(ctx context.Context, userID string) (int, error)

	// ListByUser lists live notifications newest-first.
	ListByUser(ctx context.Context, userID string, filters NotificationFilters, page, size int) ([]*domain.Notification, int, error)

	// CountUnread counts live unread notifications of the user.
	CountUnread(ctx context.Context, userID string) (int, error)
}
