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

// PricingRepository resolves route prices through the pricing service
type PricingRepository struct {
	collaboratorClient
}

// NewPricingRepository creates a new pricing client
func NewPricingRepository(cfg CollaboratorClientConfig, log logger.Logger) repository.PricingRepository {
	return &PricingRepository{
		collaboratorClient: newCollaboratorClient(utils.CollaboratorPricing, cfg, log),
	}
}

// GetPrice queries GET /price?from=A&to=B. The pair is ordered.
func (r *PricingRepository) GetPrice(ctx context.Context, fromZone, toZone string) (*entity.Price, error) {
	fromZone = utils.NormalizeZone(fromZone)
	toZone = utils.NormalizeZone(toZone)

	query := url.Values{}
	query.Set("from", fromZone)
	query.Set("to", toZone)

	resp, err := r.do(ctx, http.MethodGet, "/price", query, nil)
	if err != nil {
		return nil, err
	}
	defer drain(resp)

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, fmt.Errorf("price %s -> %s: %w", fromZone, toZone, entity.ErrNotFound)
	default:
		return nil, r.unexpectedStatus(resp)
	}

	var price entity.Price
	if err := r.decode(resp, &price); err != nil {
		return nil, err
	}
	if price.Amount < 0 {
		return nil, fmt.Errorf("%w: negative price %v for %s -> %s", entity.ErrUnexpectedResponse, price.Amount, fromZone, toZone)
	}

	price.FromZone = utils.NormalizeZone(price.FromZone)
	price.ToZone = utils.NormalizeZone(price.ToZone)
	return &price, nil
}
