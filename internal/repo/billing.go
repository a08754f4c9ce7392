package repo

import (
	"context"
	"errors"

	"github.com/ethan-stone/charging-session-cost-calculation/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BillingRepo is the ledger of computed billing records, one per session. A later
// calculation replaces the earlier record.
type BillingRepo struct{ db *pgxpool.Pool }

func NewBillingRepo(db *pgxpool.Pool) *BillingRepo { return &BillingRepo{db: db} }

func (r *BillingRepo) Upsert(ctx context.Context, rec models.BillingRecord) (models.BillingRecord, error) {
	row := r.db.QueryRow(ctx, `
		insert into billing_records (session_id, total_cost, energy_cost, idle_cost, grace_period_adjustment, calculated_at)
		values ($1,$2,$3,$4,$5,$6)
		on conflict (session_id) do update set
		  total_cost=excluded.total_cost,
		  energy_cost=excluded.energy_cost,
		  idle_cost=excluded.idle_cost,
		  grace_period_adjustment=excluded.grace_period_adjustment,
		  calculated_at=excluded.calculated_at
		returning session_id, total_cost, energy_cost, idle_cost, grace_period_adjustment, calculated_at
	`, rec.SessionId, rec.TotalCost, rec.EnergyCost, rec.IdleCost, rec.GracePeriodAdjustment, rec.CalculatedAt)

	var out models.BillingRecord
	if err := row.Scan(&out.SessionId, &out.TotalCost, &out.EnergyCost, &out.IdleCost, &out.GracePeriodAdjustment, &out.CalculatedAt); err != nil {
		return models.BillingRecord{}, err
	}
	return out, nil
}

func (r *BillingRepo) Get(ctx context.Context, sessionId string) (*models.BillingRecord, error) {
	row := r.db.QueryRow(ctx, `
		select session_id, total_cost, energy_cost, idle_cost, grace_period_adjustment, calculated_at
		from billing_records where session_id=$1
	`, sessionId)
	var rec models.BillingRecord
	if err := row.Scan(&rec.SessionId, &rec.TotalCost, &rec.EnergyCost, &rec.IdleCost, &rec.GracePeriodAdjustment, &rec.CalculatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}
