package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"deskhive/internal/domain"

	"github.com/google/uuid"
)

// MemoryReservationsRepository in-memory reservation repository for dev and
// tests. The mutex serializes check-then-write, so the overlap invariant
// holds under concurrency the same way the Postgres row lock guarantees it.
type MemoryReservationsRepository struct {
	mu           sync.RWMutex
	reservations map[string]*domain.Reservation
	// workspaceCompany mirrors the workspaces table enough for scoped
	// listing; set by RegisterWorkspace.
	workspaceCompany map[string]string
}

// NewMemoryReservationsRepository creates the in-memory reservation repository.
func NewMemoryReservationsRepository() *MemoryReservationsRepository {
	return &MemoryReservationsRepository{
		reservations:     map[string]*domain.Reservation{},
		workspaceCompany: map[string]string{},
	}
}

var _ ReservationsRepository = (*MemoryReservationsRepository)(nil)

// RegisterWorkspace records the owning company of a workspace so
// ListByCompany can scope correctly.
func (r *MemoryReservationsRepository) RegisterWorkspace(workspaceID, companyID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.workspaceCompany[workspaceID] = companyID
}

func (r *MemoryReservationsRepository) GetReservation(_ context.Context, reservationID string) (*domain.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res, ok := r.reservations[reservationID]
	if !ok || res.DeletedAt.Valid {
		return nil, fmt.Errorf("reservation %s: %w", reservationID, domain.ErrNotFound)
	}
	cp := *res
	return &cp, nil
}

func (r *MemoryReservationsRepository) CreateConfirmed(_ context.Context, res *domain.Reservation) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.overlapsLocked(res.WorkspaceID, res.StartTime, res.EndTime, "") {
		return "", fmt.Errorf("workspace %s: %w", res.WorkspaceID, domain.ErrConflict)
	}

	id := uuid.NewString()
	cp := *res
	cp.ReservationID = id
	cp.Status = domain.ReservationConfirmed
	cp.CreatedAt = nowNull()
	cp.UpdatedAt = nowNull()
	r.reservations[id] = &cp
	return id, nil
}

func (r *MemoryReservationsRepository) UpdateChecked(_ context.Context, res *domain.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.reservations[res.ReservationID]
	if !ok || existing.DeletedAt.Valid {
		return fmt.Errorf("reservation %s: %w", res.ReservationID, domain.ErrNotFound)
	}
	if r.overlapsLocked(existing.WorkspaceID, res.StartTime, res.EndTime, res.ReservationID) {
		return fmt.Errorf("workspace %s: %w", existing.WorkspaceID, domain.ErrConflict)
	}

	existing.StartTime = res.StartTime
	existing.EndTime = res.EndTime
	existing.NumberOfPeople = res.NumberOfPeople
	existing.Guests = append([]string(nil), res.Guests...)
	existing.UpdatedAt = nowNull()
	return nil
}

func (r *MemoryReservationsRepository) SetStatus(_ context.Context, reservationID, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, ok := r.reservations[reservationID]
	if !ok || res.DeletedAt.Valid {
		return fmt.Errorf("reservation %s: %w", reservationID, domain.ErrNotFound)
	}
	res.Status = status
	res.UpdatedAt = nowNull()
	return nil
}

func (r *MemoryReservationsRepository) HasOverlap(_ context.Context, workspaceID string, start, end time.Time, excludeID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.overlapsLocked(workspaceID, start, end, excludeID), nil
}

func (r *MemoryReservationsRepository) overlapsLocked(workspaceID string, start, end time.Time, excludeID string) bool {
	for id, res := range r.reservations {
		if id == excludeID {
			continue
		}
		if res.WorkspaceID != workspaceID || res.Status != domain.ReservationConfirmed || res.DeletedAt.Valid {
			continue
		}
		if res.Overlaps(start, end) {
			return true
		}
	}
	return false
}

func (r *MemoryReservationsRepository) ListByUser(_ context.Context, userID string, filters ReservationFilters, page, size int) ([]*domain.Reservation, int, error) {
	return r.listWhere(func(res *domain.Reservation) bool { return res.UserID == userID }, filters, page, size)
}

func (r *MemoryReservationsRepository) ListByCompany(_ context.Context, companyID string, filters ReservationFilters, page, size int) ([]*domain.Reservation, int, error) {
	return r.listWhere(func(res *domain.Reservation) bool {
		return r.workspaceCompany[res.WorkspaceID] == companyID
	}, filters, page, size)
}

func (r *MemoryReservationsRepository) ListByWorkspace(_ context.Context, workspaceID string, filters ReservationFilters, page, size int) ([]*domain.Reservation, int, error) {
	return r.listWhere(func(res *domain.Reservation) bool { return res.WorkspaceID == workspaceID }, filters, page, size)
}

func (r *MemoryReservationsRepository) listWhere(match func(*domain.Reservation) bool, filters ReservationFilters, page, size int) ([]*domain.Reservation, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	now := time.Now()
	var all []*domain.Reservation
	for _, res := range r.reservations {
		if res.DeletedAt.Valid || !match(res) {
			continue
		}
		if filters.Status != "" && res.Status != filters.Status {
			continue
		}
		switch filters.Timeframe {
		case TimeframeUpcoming:
			if !res.StartTime.After(now) {
				continue
			}
		case TimeframePast:
			if !res.EndTime.Before(now) {
				continue
			}
		case TimeframeCurrent:
			if res.StartTime.After(now) || res.EndTime.Before(now) {
				continue
			}
		}
		cp := *res
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].StartTime.After(all[j].StartTime) })

	total := len(all)
	start, end := pageBounds(total, page, size)
	return all[start:end], total, nil
}

func (r *MemoryReservationsRepository) ListConfirmedStartingBetween(_ context.Context, from, to time.Time) ([]*domain.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.Reservation
	for _, res := range r.reservations {
		if res.DeletedAt.Valid || res.Status != domain.ReservationConfirmed {
			continue
		}
		if res.StartTime.Before(from) || res.StartTime.After(to) {
			continue
		}
		cp := *res
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}
