package memory

import (
	"context"
	"sync"

	"github.com/nandanugg/landmark-radar/module/core/domain"
	"github.com/nandanugg/landmark-radar/module/core/internal/repository/database"
)

var _ database.PositionRepository = (*PositionRepo)(nil)

const defaultCapacity = 1024

// PositionRepo keeps the most recent samples in a fixed-size ring. Used when
// no database is configured.
type PositionRepo struct {
	mu    sync.RWMutex
	ring  []domain.Position
	next  int
	count int
}

func NewPositionRepo(capacity int) *PositionRepo {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &PositionRepo{ring: make([]domain.Position, capacity)}
}

func (r *PositionRepo) Insert(_ context.Context, pos *domain.Position) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ring[r.next] = *pos
	r.next = (r.next + 1) % len(r.ring)
	if r.count < len(r.ring) {
		r.count++
	}
	return nil
}

// GetLatest returns the most recently inserted sample.
func (r *PositionRepo) GetLatest(_ context.Context) (*domain.Position, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.count == 0 {
		return nil, database.ErrNotFound
	}
	idx := (r.next - 1 + len(r.ring)) % len(r.ring)
	pos := r.ring[idx]
	return &pos, nil
}

// GetHistory returns retained samples inside the window in insertion order.
func (r *PositionRepo) GetHistory(_ context.Context, query *domain.HistoryQuery) ([]domain.Position, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var results []domain.Position
	start := (r.next - r.count + len(r.ring)) % len(r.ring)
	for i := 0; i < r.count; i++ {
		pos := r.ring[(start+i)%len(r.ring)]
		if pos.Timestamp.Before(query.Start) || pos.Timestamp.After(query.End) {
			continue
		}
		results = append(results, pos)
	}
	return results, nil
}
