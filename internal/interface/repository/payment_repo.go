package repository

import (
	"context"
	"fmt"
	"net/http"

	"ridenow-service/internal/domain/entity"
	"ridenow-service/internal/domain/repository"
	"ridenow-service/pkg/logger"
	"ridenow-service/pkg/utils"
)

// PaymentRepository handles payment holds against the payment ledger
type PaymentRepository struct {
	collaboratorClient
}

// NewPaymentRepository creates a new payment client. Authorize and capture are
// not idempotent on the ledger side, so requests are never retried.
func NewPaymentRepository(cfg CollaboratorClientConfig, log logger.Logger) repository.PaymentRepository {
	cfg.RetryMax = 0
	return &PaymentRepository{
		collaboratorClient: newCollaboratorClient(utils.CollaboratorPayment, cfg, log),
	}
}

type authorizeRequest struct {
	RideID   int64   `json:"ride_id"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

type captureRequest struct {
	PaymentID int64 `json:"payment_id"`
}

// Authorize places a hold via POST /payments/authorize
func (r *PaymentRepository) Authorize(ctx context.Context, rideID int64, amount float64, currency string) (*entity.PaymentResult, error) {
	resp, err := r.do(ctx, http.MethodPost, "/payments/authorize", nil, authorizeRequest{
		RideID:   rideID,
		Amount:   amount,
		Currency: currency,
	})
	if err != nil {
		return nil, err
	}
	defer drain(resp)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, r.unexpectedStatus(resp)
	}

	var result entity.PaymentResult
	if err := r.decode(resp, &result); err != nil {
		return nil, err
	}
	if result.PaymentID <= 0 || result.Status != entity.PaymentAuthorized {
		return nil, fmt.Errorf("%w: authorize returned payment %d in status %q", entity.ErrUnexpectedResponse, result.PaymentID, result.Status)
	}

	r.logger.Info("Payment authorized", "rideId", rideID, "paymentId", result.PaymentID, "amount", amount, "currency", currency)
	return &result, nil
}

// Capture settles an authorized hold via POST /payments/capture
func (r *PaymentRepository) Capture(ctx context.Context, paymentID int64) (*entity.PaymentResult, error) {
	resp, err := r.do(ctx, http.MethodPost, "/payments/capture", nil, captureRequest{PaymentID: paymentID})
	if err != nil {
		return nil, err
	}
	defer drain(resp)

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, fmt.Errorf("payment %d: %w", paymentID, entity.ErrNotFound)
	case http.StatusBadRequest, http.StatusConflict:
		return nil, fmt.Errorf("payment %d: %w: %s", paymentID, entity.ErrStateConflict, responseDetail(resp))
	default:
		return nil, r.unexpectedStatus(resp)
	}

	var result entity.PaymentResult
	if err := r.decode(resp, &result); err != nil {
		return nil, err
	}
	if result.Status != entity.PaymentCaptured {
		return nil, fmt.Errorf("%w: capture returned status %q", entity.ErrUnexpectedResponse, result.Status)
	}

	r.logger.Info("Payment captured", "paymentId", paymentID)
	return &result, nil
}
