package repository

import (
	"context"

	"ridenow-service/internal/domain/entity"
)

// RideEventRepository defines the interface for the saga journal
type RideEventRepository interface {
	Append(ctx context.Context, event *entity.RideEvent) error
	FindByRideID(ctx context.Context, rideID int64) ([]*entity.RideEvent, error)
}
