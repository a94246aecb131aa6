//go:generate mockgen -source=driver_directory_repository.go -destination=mocks/driver_directory_repository_mock.go -package=mocks

package repository

import (
	"context"

	"ridenow-service/internal/domain/entity"
)

// DriverDirectoryRepository defines the operations used against the driver directory service
type DriverDirectoryRepository interface {
	// ListAvailable returns available drivers of a zone in the directory's own order
	ListAvailable(ctx context.Context, zone string) ([]entity.Driver, error)
	SetAvailability(ctx context.Context, driverID int64, available bool) (*entity.Driver, error)
}
