package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ridenow-service/internal/domain/entity"
	"ridenow-service/internal/domain/repository"
)

// MemoryRideRepository keeps rides in process memory. Used for local runs and tests.
type MemoryRideRepository struct {
	mu     sync.Mutex
	rides  map[int64]*entity.Ride
	nextID int64
}

// NewMemoryRideRepository creates an empty in-memory ride store
func NewMemoryRideRepository() *MemoryRideRepository {
	return &MemoryRideRepository{
		rides: make(map[int64]*entity.Ride),
	}
}

var _ repository.RideRepository = (*MemoryRideRepository)(nil)

// Create stores a copy of ride under a fresh ID
func (r *MemoryRideRepository) Create(_ context.Context, ride *entity.Ride) (*entity.Ride, error) {
	if err := ride.Consistent(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	stored := ride.Clone()
	stored.ID = r.nextID
	now := time.Now().UTC()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.rides[stored.ID] = stored

	return stored.Clone(), nil
}

// Update applies mutator under the store lock
func (r *MemoryRideRepository) Update(_ context.Context, id int64, mutator repository.RideMutator) (*entity.Ride, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.rides[id]
	if !ok {
		return nil, fmt.Errorf("ride %d: %w", id, entity.ErrNotFound)
	}

	next := current.Clone()
	if err := mutator(next); err != nil {
		return nil, err
	}
	if err := checkRideUpdate(current, next); err != nil {
		return nil, err
	}

	next.CreatedAt = current.CreatedAt
	next.UpdatedAt = time.Now().UTC()
	r.rides[id] = next

	return next.Clone(), nil
}

// Get returns a copy of the stored ride
func (r *MemoryRideRepository) Get(_ context.Context, id int64) (*entity.Ride, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ride, ok := r.rides[id]
	if !ok {
		return nil, fmt.Errorf("ride %d: %w", id, entity.ErrNotFound)
	}
	return ride.Clone(), nil
}

// Count returns the number of stored rides
func (r *MemoryRideRepository) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rides)
}
