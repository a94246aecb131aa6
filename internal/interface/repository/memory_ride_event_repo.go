package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"ridenow-service/internal/domain/entity"
	"ridenow-service/internal/domain/repository"

	"github.com/google/uuid"
)

// MemoryRideEventRepository keeps the saga journal in memory
type MemoryRideEventRepository struct {
	mu     sync.Mutex
	events []entity.RideEvent
}

// NewMemoryRideEventRepository creates an empty in-memory journal
func NewMemoryRideEventRepository() *MemoryRideEventRepository {
	return &MemoryRideEventRepository{}
}

var _ repository.RideEventRepository = (*MemoryRideEventRepository)(nil)

func (r *MemoryRideEventRepository) Append(_ context.Context, event *entity.RideEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, *event)
	return nil
}

func (r *MemoryRideEventRepository) FindByRideID(_ context.Context, rideID int64) ([]*entity.RideEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	found := make([]*entity.RideEvent, 0)
	for i := range r.events {
		if r.events[i].RideID == rideID {
			ev := r.events[i]
			found = append(found, &ev)
		}
	}
	sort.SliceStable(found, func(i, j int) bool {
		return found[i].OccurredAt.Before(found[j].OccurredAt)
	})
	return found, nil
}

// BySaga returns every entry written by one saga run, in append order
func (r *MemoryRideEventRepository) BySaga(sagaID string) []entity.RideEvent {
	r.mu.Lock()
	defer r.mu.Unlock()

	var found []entity.RideEvent
	for _, ev := range r.events {
		if ev.SagaID == sagaID {
			found = append(found, ev)
		}
	}
	return found
}
