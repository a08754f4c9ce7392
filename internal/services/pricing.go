package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethan-stone/charging-session-cost-calculation/internal/costing"
	"github.com/ethan-stone/charging-session-cost-calculation/internal/models"
)

var ErrInvalidRate = errors.New("invalid rate")

// PricingService is the rate lookup backing cost calculation.
type PricingService struct {
	Rates RateStore
}

func NewPricingService(rates RateStore) *PricingService {
	return &PricingService{Rates: rates}
}

func (p *PricingService) GetRate(ctx context.Context, rateId string) (models.Rate, error) {
	rate, err := p.Rates.Get(ctx, rateId)
	if err != nil {
		return models.Rate{}, err
	}
	if rate == nil {
		return models.Rate{}, &costing.RateNotFoundError{RateId: rateId}
	}
	return *rate, nil
}

// CreateRate validates and stores a rate.
func (p *PricingService) CreateRate(ctx context.Context, rate models.Rate) (models.Rate, error) {
	if err := rate.Validate(); err != nil {
		return models.Rate{}, fmt.Errorf("%w: %w", ErrInvalidRate, err)
	}
	return p.Rates.Create(ctx, rate)
}
