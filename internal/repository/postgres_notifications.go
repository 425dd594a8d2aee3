package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"deskhive/internal/domain"
)

// PostgresNotificationsRepository notification repository implementation.
type PostgresNotificationsRepository struct {
	db *sql.DB
}

// NewPostgresNotificationsRepository creates the notification repository.
func NewPostgresNotificationsRepository(db *sql.DB) *PostgresNotificationsRepository {
	return &PostgresNotificationsRepository{db: db}
}

var _ NotificationsRepository = (*PostgresNotificationsRepository)(nil)

func (r *PostgresNotificationsRepository) Create(ctx context.Context, n *domain.Notification) (string, error) {
	if n.UserID == "" {
		return "", fmt.Errorf("user_id is required")
	}

	query := `
		INSERT INTO notifications (user_id, type, message, is_read, reservation_id)
		VALUES ($1::uuid, $2, $3, false, $4::uuid)
		RETURNING notification_id::text
	`

	var reservationID any
	if n.ReservationID.Valid {
		reservationID = n.ReservationID.String
	}

	var id string
	err := r.db.QueryRowContext(ctx, query, n.UserID, n.Type, n.Message, reservationID).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to create notification: %w", err)
	}
	return id, nil
}

func (r *PostgresNotificationsRepository) MarkRead(ctx context.Context, notificationID, userID string) (bool, error) {
	if notificationID == "" || userID == "" {
		return false, fmt.Errorf("notification_id and user_id are required")
	}

	// Ownership enforced in the WHERE clause: marking someone else's
	// notification is a no-op, reported as false rather than an error.
	query := `
		UPDATE notifications
		   SET is_read = true
		 WHERE notification_id = $1::uuid
		   AND user_id = $2::uuid
		   AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, notificationID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to mark notification read: %w", err)
	}
	n, _ := result.RowsAffected()
	return n > 0, nil
}

func (r *PostgresNotificationsRepository) MarkAllRead(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, fmt.Errorf("user_id is required")
	}

	query := `
		UPDATE notifications
		   SET is_read = true
		 WHERE user_id = $1::uuid
		   AND is_read = false
		   AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark all notifications read: %w", err)
	}
	n, _ := result.RowsAffected()
	return int(n), nil
}

func (r *PostgresNotificationsRepository) ListByUser(ctx context.Context, userID string, filters NotificationFilters, page, size int) ([]*domain.Notification, int, error) {
	if userID == "" {
		return nil, 0, fmt.Errorf("user_id is required")
	}
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	if size > 100 {
		size = 100
	}

	where := []string{"user_id = $1::uuid", "deleted_at IS NULL"}
	args := []any{userID}
	if filters.UnreadOnly {
		where = append(where, "is_read = false")
	}
	if filters.Type != "" {
		args = append(args, filters.Type)
		where = append(where, fmt.Sprintf("type = $%d", len(args)))
	}
	cond := strings.Join(where, " AND ")

	var total int
	countQuery := `SELECT COUNT(*) FROM notifications WHERE ` + cond
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	args = append(args, size, (page-1)*size)
	query := `
		SELECT notification_id::text,
		       user_id::text,
		       type,
		       message,
		       is_read,
		       reservation_id::text,
		       created_at
		  FROM notifications
		 WHERE ` + cond + `
		 ORDER BY created_at DESC
		 LIMIT $` + fmt.Sprint(len(args)-1) + ` OFFSET $` + fmt.Sprint(len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var out []*domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.NotificationID, &n.UserID, &n.Type, &n.Message, &n.IsRead, &n.ReservationID, &n.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan notification: %w", err)
		}
		out = append(out, &n)
	}
	return out, total, rows.Err()
}

func (r *PostgresNotificationsRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, fmt.Errorf("user_id is required")
	}

	query := `
		SELECT COUNT(*)
		  FROM notifications
		 WHERE user_id = $1::uuid
		   AND is_read = false
		   AND deleted_at IS NULL
	`

	var count int
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}
