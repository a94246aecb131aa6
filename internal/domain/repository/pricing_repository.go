//go:generate mockgen -source=pricing_repository.go -destination=mocks/pricing_repository_mock.go -package=mocks

package repository

import (
	"context"

	"ridenow-service/internal/domain/entity"
)

// PricingRepository defines the interface for route price lookups
type PricingRepository interface {
	GetPrice(ctx context.Context, fromZone, toZone string) (*entity.Price, error)
}
