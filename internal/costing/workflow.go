// Package costing computes the cost of a charging session from meter readings, connector
// status events and a rate.
package costing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethan-stone/charging-session-cost-calculation/internal/models"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type Input struct {
	Session               models.Session
	EnergyReadings        []models.EnergyReading
	ConnectorStatusEvents []models.ConnectorStatusEvent
	// MaxEnergyPerInterval is the ceiling above which a charging interval is treated as
	// a metering anomaly and dropped.
	MaxEnergyPerInterval decimal.Decimal
	GracePeriod          time.Duration
}

// Workflow runs one cost calculation per call. It holds no state between calls.
type Workflow struct {
	Rates   RateLookup
	Billing BillingSubmitter
	Now     func() time.Time
}

func NewWorkflow(rates RateLookup, billing BillingSubmitter) *Workflow {
	return &Workflow{Rates: rates, Billing: billing, Now: time.Now}
}

// Calculate prices the session and submits the billing record. On any failure no record
// is submitted.
func (w *Workflow) Calculate(ctx context.Context, in Input) (models.BillingRecord, error) {
	sessionId := in.Session.SessionId
	log := zerolog.Ctx(ctx).With().Str("session_id", sessionId).Logger()

	charging, idle, err := ExtractIntervals(sessionId, in.EnergyReadings, in.ConnectorStatusEvents)
	if err != nil {
		return models.BillingRecord{}, err
	}
	log.Debug().Int("charging", len(charging)).Int("idle", len(idle)).Msg("intervals extracted")

	validCharging, rejected := ValidateIntervals(charging, MaxEnergyValidator(in.MaxEnergyPerInterval))
	if len(rejected) > 0 {
		log.Warn().Int("rejected", len(rejected)).Str("max_energy", in.MaxEnergyPerInterval.String()).Msg("dropping anomalous charging intervals")
	}

	subs := InterpolatePerSecond(MergeIntervals(validCharging, idle))
	log.Debug().Int("sub_intervals", len(subs)).Msg("intervals interpolated")

	rate, err := w.Rates.GetRate(ctx, in.Session.RateId)
	if err != nil {
		var notFound *RateNotFoundError
		if errors.As(err, &notFound) {
			return models.BillingRecord{}, err
		}
		return models.BillingRecord{}, fmt.Errorf("get rate %s: %w", in.Session.RateId, err)
	}

	loc, err := time.LoadLocation(in.Session.Timezone)
	if err != nil {
		return models.BillingRecord{}, fmt.Errorf("%w %q: %v", ErrInvalidTimezone, in.Session.Timezone, err)
	}

	energyCost := EnergyCost(loc, rate, subs)
	idleCost := IdleCost(loc, rate, subs)
	graceCost := GracePeriodCost(loc, rate, subs, in.GracePeriod)

	adjustedIdle := idleCost - graceCost
	if adjustedIdle < 0 {
		adjustedIdle = 0
	}
	total := ClampCost(energyCost+adjustedIdle, rate.MinCost, rate.MaxCost)

	record := models.BillingRecord{
		SessionId:             sessionId,
		TotalCost:             total,
		EnergyCost:            energyCost,
		IdleCost:              adjustedIdle,
		GracePeriodAdjustment: graceCost,
		CalculatedAt:          w.now(),
	}
	log.Debug().
		Int64("energy_cost", energyCost).
		Int64("idle_cost", idleCost).
		Int64("grace_cost", graceCost).
		Int64("total_cost", total).
		Msg("session priced")

	submitted, err := w.Billing.SubmitBilling(ctx, record)
	if err != nil {
		var billingErr *BillingError
		if errors.As(err, &billingErr) {
			return models.BillingRecord{}, err
		}
		return models.BillingRecord{}, &BillingError{SessionId: sessionId, Err: err}
	}
	return submitted, nil
}

func (w *Workflow) now() time.Time {
	if w.Now == nil {
		return time.Now().UTC()
	}
	return w.Now()
}
