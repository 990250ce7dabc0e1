package repository

import (
	"context"
	"sync"
	"time"

	"github.com/mna11/ReadMe3D/internal/core/domain"
)

var _ domain.SnapshotRepository = (*InMemorySnapshotRepository)(nil)

// InMemorySnapshotRepository keeps every snapshot per user, oldest first.
type InMemorySnapshotRepository struct {
	store map[string][]*domain.Calendar

	mu sync.RWMutex
}

func NewInMemorySnapshotRepository() *InMemorySnapshotRepository {
	return &InMemorySnapshotRepository{
		store: make(map[string][]*domain.Calendar),
	}
}

func (r *InMemorySnapshotRepository) Save(ctx context.Context, cal *domain.Calendar) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cal.FetchedAt.IsZero() {
		cal.FetchedAt = time.Now().UTC()
	}
	for _, existing := range r.store[cal.Username] {
		if existing.FetchedAt.Equal(cal.FetchedAt) {
			return domain.ErrSnapshotConflict
		}
	}

	snapshots := append(r.store[cal.Username], clone(cal))
	// Keep fetch order even when callers save out of order.
	for i := len(snapshots) - 1; i > 0 && snapshots[i].FetchedAt.Before(snapshots[i-1].FetchedAt); i-- {
		snapshots[i], snapshots[i-1] = snapshots[i-1], snapshots[i]
	}
	r.store[cal.Username] = snapshots
	return nil
}

func (r *InMemorySnapshotRepository) Latest(ctx context.Context, username string) (*domain.Calendar, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshots := r.store[username]
	if len(snapshots) == 0 {
		return nil, domain.ErrSnapshotNotFound
	}
	return clone(snapshots[len(snapshots)-1]), nil
}

func (r *InMemorySnapshotRepository) FetchCalendar(ctx context.Context, username string) (*domain.Calendar, error) {
	return r.Latest(ctx, username)
}

// Count returns how many snapshots exist for the user.
func (r *InMemorySnapshotRepository) Count(username string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.store[username])
}

func clone(cal *domain.Calendar) *domain.Calendar {
	c := *cal
	c.Days = append([]domain.ActivityDay(nil), cal.Days...)
	return &c
}
