package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"sync"
	"testing"
	"time"

	"ridenow-service/internal/domain/entity"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

var rideColumns = []string{
	"id", "passenger_name", "from_zone", "to_zone", "driver_id", "amount",
	"payment_id", "status", "failure_reason", "created_at", "updated_at",
}

func newMockRideRepository(t *testing.T) (*GormRideRepository, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	return NewGormRideRepository(db).(*GormRideRepository), mock
}

func rideRow(id int64, status entity.RideStatus, amount float64, paymentID driver.Value, createdAt time.Time) []driver.Value {
	return []driver.Value{id, "Alice", "A", "B", int64(7), amount, paymentID, string(status), "", createdAt, createdAt}
}

func TestRidesModel_AmountIsUnscaled(t *testing.T) {
	s, err := schema.Parse(&Rides{}, &sync.Map{}, schema.NamingStrategy{})
	require.NoError(t, err)

	field := s.LookUpField("Amount")
	require.NotNil(t, field)
	assert.Equal(t, "amount", field.DBName)
	assert.Equal(t, "double precision", field.TagSettings["TYPE"])
	assert.Equal(t, "rides", s.Table)
}

func TestGormRideRepository_CreateReturnsStoredRow(t *testing.T) {
	repo, mock := newMockRideRepository(t)
	createdAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	// the stored amount wins over the one sent
	mock.ExpectQuery(`INSERT INTO "rides" .* RETURNING \*`).
		WillReturnRows(sqlmock.NewRows(rideColumns).AddRow(rideRow(1, entity.RideAssigned, 12.35, nil, createdAt)...))

	provisional, err := entity.NewAssignedRide("Alice", "A", "B", 7, 12.345)
	require.NoError(t, err)

	created, err := repo.Create(context.Background(), provisional)
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, entity.RideAssigned, created.Status)
	require.NotNil(t, created.Amount)
	assert.Equal(t, 12.35, *created.Amount)
	assert.Equal(t, createdAt, created.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormRideRepository_CreateRejectsInconsistentRide(t *testing.T) {
	repo, mock := newMockRideRepository(t)

	_, err := repo.Create(context.Background(), &entity.Ride{Status: entity.RideAssigned})
	assert.ErrorIs(t, err, entity.ErrInvalidTransition)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormRideRepository_Get(t *testing.T) {
	repo, mock := newMockRideRepository(t)
	createdAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectQuery(`SELECT \* FROM "rides" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows(rideColumns).AddRow(rideRow(1, entity.RidePaymentAuthorized, 12.5, int64(99), createdAt)...))
	mock.ExpectQuery(`SELECT \* FROM "rides" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows(rideColumns))

	ride, err := repo.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, entity.RidePaymentAuthorized, ride.Status)
	assert.Equal(t, int64(7), *ride.DriverID)
	assert.Equal(t, 12.5, *ride.Amount)
	assert.Equal(t, int64(99), *ride.PaymentID)

	_, err = repo.Get(context.Background(), 2)
	assert.ErrorIs(t, err, entity.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormRideRepository_Update(t *testing.T) {
	createdAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("payment attached under row lock", func(t *testing.T) {
		repo, mock := newMockRideRepository(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT \* FROM "rides" WHERE id = \$1 .* FOR UPDATE`).
			WillReturnRows(sqlmock.NewRows(rideColumns).AddRow(rideRow(1, entity.RideAssigned, 12.5, nil, createdAt)...))
		mock.ExpectExec(`UPDATE "rides" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		updated, err := repo.Update(context.Background(), 1, func(r *entity.Ride) error {
			return r.AttachPayment(99)
		})
		require.NoError(t, err)
		assert.Equal(t, entity.RidePaymentAuthorized, updated.Status)
		assert.Equal(t, int64(99), *updated.PaymentID)
		assert.Equal(t, 12.5, *updated.Amount)
		assert.Equal(t, createdAt, updated.CreatedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("regression rolled back", func(t *testing.T) {
		repo, mock := newMockRideRepository(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT \* FROM "rides" WHERE id = \$1 .* FOR UPDATE`).
			WillReturnRows(sqlmock.NewRows(rideColumns).AddRow(rideRow(1, entity.RidePaymentAuthorized, 12.5, int64(99), createdAt)...))
		mock.ExpectRollback()

		_, err := repo.Update(context.Background(), 1, func(r *entity.Ride) error {
			r.Status = entity.RideAssigned
			return nil
		})
		assert.ErrorIs(t, err, entity.ErrInvalidTransition)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("mutator error rolled back", func(t *testing.T) {
		repo, mock := newMockRideRepository(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT \* FROM "rides" WHERE id = \$1 .* FOR UPDATE`).
			WillReturnRows(sqlmock.NewRows(rideColumns).AddRow(rideRow(1, entity.RideFailed, 12.5, nil, createdAt)...))
		mock.ExpectRollback()

		_, err := repo.Update(context.Background(), 1, func(r *entity.Ride) error {
			return r.MarkFailed("again")
		})
		assert.ErrorIs(t, err, entity.ErrInvalidTransition)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing ride", func(t *testing.T) {
		repo, mock := newMockRideRepository(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT \* FROM "rides" WHERE id = \$1 .* FOR UPDATE`).
			WillReturnRows(sqlmock.NewRows(rideColumns))
		mock.ExpectRollback()

		_, err := repo.Update(context.Background(), 42, func(*entity.Ride) error { return nil })
		assert.ErrorIs(t, err, entity.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("store failure", func(t *testing.T) {
		repo, mock := newMockRideRepository(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT \* FROM "rides"`).WillReturnError(errors.New("connection reset"))
		mock.ExpectRollback()

		_, err := repo.Update(context.Background(), 1, func(*entity.Ride) error { return nil })
		require.Error(t, err)
		assert.NotErrorIs(t, err, entity.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
