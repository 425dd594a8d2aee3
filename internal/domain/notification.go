package domain

import "database/sql"

// Notification types.
const (
	NotificationPersonal = "personal"
	NotificationGlobal   = "global"
)

// MaxNotificationMessageLen caps the message column (VARCHAR(500)).
const MaxNotificationMessageLen = 500

// Notification in-app notification model (notifications table).
// Created only as a side effect of reservation lifecycle events or an
// administrator broadcast; clients poll, nothing is pushed.
type Notification struct {
	NotificationID string `db:"notification_id"`
	UserID         string `db:"user_id"` // recipient

	Type    string `db:"type"` // 'personal' | 'global'
	Message string `db:"message"`
	IsRead  bool   `db:"is_read"`

	// ReservationID links back to the reservation that produced the
	// notification; NULL for broadcasts and after hard removal.
	ReservationID sql.NullString `db:"reservation_id"`

	CreatedAt sql.NullTime `db:"created_at"`
	DeletedAt sql.NullTime `db:"deleted_at"`
}
