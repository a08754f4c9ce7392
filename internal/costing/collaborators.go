package costing

import (
	"context"
	"sync"

	"github.com/ethan-stone/charging-session-cost-calculation/internal/models"
)

// RateLookup resolves a rate by id. Implementations return *RateNotFoundError when the
// rate does not exist.
type RateLookup interface {
	GetRate(ctx context.Context, rateId string) (models.Rate, error)
}

// BillingSubmitter accepts a computed billing record and returns the stored record.
type BillingSubmitter interface {
	SubmitBilling(ctx context.Context, record models.BillingRecord) (models.BillingRecord, error)
}

// StaticRates is an in-memory RateLookup keyed by rate id.
type StaticRates map[string]models.Rate

func (s StaticRates) GetRate(_ context.Context, rateId string) (models.Rate, error) {
	rate, ok := s[rateId]
	if !ok {
		return models.Rate{}, &RateNotFoundError{RateId: rateId}
	}
	return rate, nil
}

// RecordingBilling keeps every submitted record in memory. When Err is set every
// submission fails with it.
type RecordingBilling struct {
	mu      sync.Mutex
	Err     error
	records []models.BillingRecord
}

func (b *RecordingBilling) SubmitBilling(_ context.Context, record models.BillingRecord) (models.BillingRecord, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.Err != nil {
		return models.BillingRecord{}, b.Err
	}
	b.records = append(b.records, record)
	return record, nil
}

func (b *RecordingBilling) Records() []models.BillingRecord {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]models.BillingRecord, len(b.records))
	copy(out, b.records)
	return out
}
