package repository

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"ridenow-service/internal/domain/entity"
	"ridenow-service/internal/domain/repository"
	"ridenow-service/pkg/logger"
	"ridenow-service/pkg/utils"
)

// DriverDirectoryRepository talks to the driver directory (users) service
type DriverDirectoryRepository struct {
	collaboratorClient
}

// NewDriverDirectoryRepository creates a new driver directory client
func NewDriverDirectoryRepository(cfg CollaboratorClientConfig, log logger.Logger) repository.DriverDirectoryRepository {
	return &DriverDirectoryRepository{
		collaboratorClient: newCollaboratorClient(utils.CollaboratorDriverDirectory, cfg, log),
	}
}

// ListAvailable queries GET /drivers?available=true&zone=Z
func (r *DriverDirectoryRepository) ListAvailable(ctx context.Context, zone string) ([]entity.Driver, error) {
	query := url.Values{}
	query.Set("available", "true")
	query.Set("zone", zone)

	resp, err := r.do(ctx, http.MethodGet, "/drivers", query, nil)
	if err != nil {
		return nil, err
	}
	defer drain(resp)

	if resp.StatusCode != http.StatusOK {
		return nil, r.unexpectedStatus(resp)
	}

	var drivers []entity.Driver
	if err := r.decode(resp, &drivers); err != nil {
		return nil, err
	}

	r.logger.Debug("Fetched available drivers", "zone", zone, "count", len(drivers))
	return drivers, nil
}

// SetAvailability calls PATCH /drivers/{id}/availability
func (r *DriverDirectoryRepository) SetAvailability(ctx context.Context, driverID int64, available bool) (*entity.Driver, error) {
	path := fmt.Sprintf("/drivers/%d/availability", driverID)
	resp, err := r.do(ctx, http.MethodPatch, path, nil, map[string]bool{"available": available})
	if err != nil {
		return nil, err
	}
	defer drain(resp)

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, fmt.Errorf("driver %d: %w", driverID, entity.ErrNotFound)
	default:
		return nil, r.unexpectedStatus(resp)
	}

	var driver entity.Driver
	if err := r.decode(resp, &driver); err != nil {
		return nil, err
	}

	r.logger.Info("Driver availability updated", "driverId", driverID, "available", driver.Available)
	return &driver, nil
}
