package repository

import (
	"fmt"

	"ridenow-service/internal/domain/entity"
)

// checkRideUpdate rejects mutations that would break the ride invariants:
// status never regresses, FAILED is absorbing and set fields are immutable.
func checkRideUpdate(current, next *entity.Ride) error {
	if err := next.Consistent(); err != nil {
		return err
	}
	if !current.Advances(next) {
		return fmt.Errorf("%w: ride %d cannot move from %s to %s", entity.ErrInvalidTransition, current.ID, current.Status, next.Status)
	}
	return nil
}
