//go:generate mockgen -source=payment_repository.go -destination=mocks/payment_repository_mock.go -package=mocks

package repository

import (
	"context"

	"ridenow-service/internal/domain/entity"
)

// PaymentRepository defines the interface for the payment ledger
type PaymentRepository interface {
	Authorize(ctx context.Context, rideID int64, amount float64, currency string) (*entity.PaymentResult, error)
	Capture(ctx context.Context, paymentID int64) (*entity.PaymentResult, error)
}
