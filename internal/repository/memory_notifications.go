package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"deskhive/internal/domain"

	"github.com/google/uuid"
)

// MemoryNotificationsRepository in-memory notification repository for dev
// and tests.
type MemoryNotificationsRepository struct {
	mu            sync.RWMutex
	notifications map[string]*domain.Notification
	seq           int // tie-breaker for newest-first ordering in tests
	order         map[string]int
}

// NewMemoryNotificationsRepository creates the in-memory notification repository.
func NewMemoryNotificationsRepository() *MemoryNotificationsRepository {
	return &MemoryNotificationsRepository{
		notifications: map[string]*domain.Notification{},
		order:         map[string]int{},
	}
}

var _ NotificationsRepository = (*MemoryNotificationsRepository)(nil)

func (r *MemoryNotificationsRepository) Create(_ context.Context, n *domain.Notification) (string, error) {
	if n.UserID == "" {
		return "", fmt.Errorf("user_id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id := uuid.NewString()
	cp := *n
	cp.NotificationID = id
	cp.IsRead = false
	cp.CreatedAt = nowNull()
	r.seq++
	r.order[id] = r.seq
	r.notifications[id] = &cp
	return id, nil
}

func (r *MemoryNotificationsRepository) MarkRead(_ context.Context, notificationID, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.notifications[notificationID]
	if !ok || n.DeletedAt.Valid || n.UserID != userID {
		return false, nil
	}
	n.IsRead = true
	return true, nil
}

func (r *MemoryNotificationsRepository) MarkAllRead(_ context.Context, userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, n := range r.notifications {
		if n.UserID == userID && !n.IsRead && !n.DeletedAt.Valid {
			n.IsRead = true
			count++
		}
	}
	return count, nil
}

func (r *MemoryNotificationsRepository) ListByUser(_ context.Context, userID string, filters NotificationFilters, page, size int) ([]*domain.Notification, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var all []*domain.Notification
	for _, n := range r.notifications {
		if n.DeletedAt.Valid || n.UserID != userID {
			continue
		}
		if filters.UnreadOnly && n.IsRead {
			continue
		}
		if filters.Type != "" && n.Type != filters.Type {
			continue
		}
		cp := *n
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool {
		return r.order[all[i].NotificationID] > r.order[all[j].NotificationID]
	})

	total := len(all)
	start, end := pageBounds(total, page, size)
	return all[start:end], total, nil
}

func (r *MemoryNotificationsRepository) CountUnread(_ context.Context, userID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, n := range r.notifications {
		if n.UserID == userID && !n.IsRead && !n.DeletedAt.Valid {
			count++
		}
	}
	return count, nil
}
