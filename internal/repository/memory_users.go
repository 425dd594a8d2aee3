package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"deskhive/internal/domain"

	"github.com/google/uuid"
)

// MemoryUsersRepository in-memory user repository for dev and tests.
type MemoryUsersRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User
}

// NewMemoryUsersRepository creates the in-memory user repository.
func NewMemoryUsersRepository() *MemoryUsersRepository {
	return &MemoryUsersRepository{users: map[string]*domain.User{}}
}

var _ UsersRepository = (*MemoryUsersRepository)(nil)

func (r *MemoryUsersRepository) GetUser(_ context.Context, companyID, userID string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[userID]
	if !ok || u.DeletedAt.Valid || u.CompanyID != companyID {
		return nil, fmt.Errorf("user %s: %w", userID, domain.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (r *MemoryUsersRepository) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email && !u.DeletedAt.Valid {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("user by email: %w", domain.ErrNotFound)
}

func (r *MemoryUsersRepository) CreateUser(_ context.Context, user *domain.User) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == user.Email && !u.DeletedAt.Valid {
			return "", fmt.Errorf("email already registered")
		}
	}

	id := user.UserID
	if id == "" {
		id = uuid.NewString()
	}
	cp := *user
	cp.UserID = id
	cp.CreatedAt = nowNull()
	cp.UpdatedAt = nowNull()
	r.users[id] = &cp
	return id, nil
}

func (r *MemoryUsersRepository) ListActiveUsers(_ context.Context, companyID string) ([]*domain.User, error) {
	return r.listActive(companyID, "")
}

func (r *MemoryUsersRepository) ListActiveAdmins(_ context.Context, companyID string) ([]*domain.User, error) {
	return r.listActive(companyID, domain.RoleAdmin)
}

func (r *MemoryUsersRepository) listActive(companyID, role string) ([]*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.User
	for _, u := range r.users {
		if u.DeletedAt.Valid || !u.IsActive || u.CompanyID != companyID {
			continue
		}
		if role != "" && u.Role != role {
			continue
		}
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (r *MemoryUsersRepository) FilterActiveUserIDs(_ context.Context, companyID string, userIDs []string) (map[string]bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	found := make(map[string]bool, len(userIDs))
	for _, id := range userIDs {
		u, ok := r.users[id]
		if ok && !u.DeletedAt.Valid && u.IsActive && u.CompanyID == companyID {
			found[id] = true
		}
	}
	return found, nil
}

// Deactivate flips is_active off (tests, dev bootstrap).
func (r *MemoryUsersRepository) Deactivate(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[userID]; ok {
		u.IsActive = false
	}
}

func (r *MemoryUsersRepository) UpdateLastLogin(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u, ok := r.users[userID]; ok {
		u.LastLoginAt = nowNull()
	}
	return nil
}
