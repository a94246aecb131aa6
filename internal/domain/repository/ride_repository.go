package repository

import (
	"context"

	"ridenow-service/internal/domain/entity"
)

// RideMutator changes a ride in place; returning an error aborts the update
type RideMutator func(ride *entity.Ride) error

// RideRepository is the durable ride store. Each Create and Update is atomic
// on its own; there is no transaction spanning several calls.
type RideRepository interface {
	// Create assigns an ID and returns the persisted record
	Create(ctx context.Context, ride *entity.Ride) (*entity.Ride, error)
	// Update applies mutator to the current record and persists the result
	Update(ctx context.Context, id int64, mutator RideMutator) (*entity.Ride, error)
	Get(ctx context.Context, id int64) (*entity.Ride, error)
}
