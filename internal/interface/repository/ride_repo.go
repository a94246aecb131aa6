package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ridenow-service/internal/domain/entity"
	"ridenow-service/internal/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormRideRepository implements the RideRepository interface on PostgreSQL
type GormRideRepository struct {
	db *gorm.DB
}

// NewGormRideRepository creates a new GORM ride repository
func NewGormRideRepository(db *gorm.DB) repository.RideRepository {
	return &GormRideRepository{
		db: db,
	}
}

// Rides GORM model for database mapping
type Rides struct {
	ID            int64    `gorm:"primaryKey;autoIncrement"`
	PassengerName string   `gorm:"column:passenger_name;not null"`
	FromZone      string   `gorm:"column:from_zone;size:16;not null;index:idx_rides_route"`
	ToZone        string   `gorm:"column:to_zone;size:16;not null;index:idx_rides_route"`
	DriverID      *int64   `gorm:"column:driver_id"`
	Amount        *float64 `gorm:"column:amount;type:double precision"`
	PaymentID     *int64   `gorm:"column:payment_id"`
	Status        string   `gorm:"column:status;size:32;not null;index"`
	FailureReason string   `gorm:"column:failure_reason"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName overrides the default table name
func (Rides) TableName() string {
	return "rides"
}

// Create inserts a new ride and returns it with the generated ID
func (r *GormRideRepository) Create(ctx context.Context, ride *entity.Ride) (*entity.Ride, error) {
	if err := ride.Consistent(); err != nil {
		return nil, err
	}

	model := toRideModel(ride)
	model.ID = 0

	// RETURNING * so the caller sees the row as stored, not as sent
	result := r.db.WithContext(ctx).Clauses(clause.Returning{}).Create(model)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to insert ride: %w", result.Error)
	}

	return toRideEntity(model), nil
}

// Update locks the row, applies mutator and saves the result in one transaction
func (r *GormRideRepository) Update(ctx context.Context, id int64, mutator repository.RideMutator) (*entity.Ride, error) {
	var updated *entity.Ride

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model Rides
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&model, "id = ?", id).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("ride %d: %w", id, entity.ErrNotFound)
			}
			return fmt.Errorf("failed to load ride %d: %w", id, err)
		}

		current := toRideEntity(&model)
		next := current.Clone()
		if err := mutator(next); err != nil {
			return err
		}
		if err := checkRideUpdate(current, next); err != nil {
			return err
		}

		saved := toRideModel(next)
		saved.CreatedAt = model.CreatedAt
		if err := tx.Save(saved).Error; err != nil {
			return fmt.Errorf("failed to update ride %d: %w", id, err)
		}

		updated = toRideEntity(saved)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// Get finds a ride by ID
func (r *GormRideRepository) Get(ctx context.Context, id int64) (*entity.Ride, error) {
	var model Rides
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&model)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("ride %d: %w", id, entity.ErrNotFound)
		}
		return nil, result.Error
	}

	return toRideEntity(&model), nil
}

func toRideModel(ride *entity.Ride) *Rides {
	c := ride.Clone()
	return &Rides{
		ID:            c.ID,
		PassengerName: c.PassengerName,
		FromZone:      c.FromZone,
		ToZone:        c.ToZone,
		DriverID:      c.DriverID,
		Amount:        c.Amount,
		PaymentID:     c.PaymentID,
		Status:        string(c.Status),
		FailureReason: c.FailureReason,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

// Convert GORM model to domain entity
func toRideEntity(model *Rides) *entity.Ride {
	ride := &entity.Ride{
		ID:            model.ID,
		PassengerName: model.PassengerName,
		FromZone:      model.FromZone,
		ToZone:        model.ToZone,
		DriverID:      model.DriverID,
		Amount:        model.Amount,
		PaymentID:     model.PaymentID,
		Status:        entity.RideStatus(model.Status),
		FailureReason: model.FailureReason,
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	}
	return ride.Clone()
}
