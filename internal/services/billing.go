package services

import (
	"context"
	"fmt"

	"github.com/ethan-stone/charging-session-cost-calculation/internal/models"
	"github.com/rs/zerolog"
)

// BillingService is the billing sink of the cost calculation. A record is first handed
// to every publisher; only when all of them accept it is it written to the ledger and
// the session cost updated.
type BillingService struct {
	Ledger     BillingLedger
	Sessions   SessionStore
	Publishers []BillingPublisher
}

func NewBillingService(ledger BillingLedger, sessions SessionStore, publishers ...BillingPublisher) *BillingService {
	return &BillingService{Ledger: ledger, Sessions: sessions, Publishers: publishers}
}

func (b *BillingService) SubmitBilling(ctx context.Context, rec models.BillingRecord) (models.BillingRecord, error) {
	for _, p := range b.Publishers {
		if err := p.Publish(ctx, rec); err != nil {
			return models.BillingRecord{}, err
		}
	}

	stored, err := b.Ledger.Upsert(ctx, rec)
	if err != nil {
		return models.BillingRecord{}, fmt.Errorf("store billing record: %w", err)
	}
	if err := b.Sessions.SetCost(ctx, rec.SessionId, rec.TotalCost); err != nil {
		return models.BillingRecord{}, fmt.Errorf("set session cost: %w", err)
	}

	zerolog.Ctx(ctx).Info().
		Str("session_id", stored.SessionId).
		Int64("total_cost", stored.TotalCost).
		Msg("billing record submitted")
	return stored, nil
}

func (b *BillingService) GetBilling(ctx context.Context, sessionId string) (*models.BillingRecord, error) {
	return b.Ledger.Get(ctx, sessionId)
}
