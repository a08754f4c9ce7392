package services

import (
	"context"
	"errors"
	"time"

	"github.com/ethan-stone/charging-session-cost-calculation/internal/costing"
	"github.com/ethan-stone/charging-session-cost-calculation/internal/models"
	"github.com/shopspring/decimal"
)

var ErrSessionNotFound = errors.New("session not found")

// CostService loads a session with its telemetry and runs the cost workflow on it.
type CostService struct {
	Sessions  SessionStore
	Telemetry TelemetryStore
	Workflow  *costing.Workflow

	MaxEnergyPerInterval decimal.Decimal
	GracePeriod          time.Duration
}

func (c *CostService) CalculateSession(ctx context.Context, sessionId string) (models.BillingRecord, error) {
	sess, err := c.Sessions.GetByID(ctx, sessionId)
	if err != nil {
		return models.BillingRecord{}, err
	}
	if sess == nil {
		return models.BillingRecord{}, ErrSessionNotFound
	}

	readings, err := c.Telemetry.ListReadings(ctx, sessionId)
	if err != nil {
		return models.BillingRecord{}, err
	}
	events, err := c.Telemetry.ListStatusEvents(ctx, sessionId)
	if err != nil {
		return models.BillingRecord{}, err
	}

	return c.Workflow.Calculate(ctx, costing.Input{
		Session:               *sess,
		EnergyReadings:        readings,
		ConnectorStatusEvents: events,
		MaxEnergyPerInterval:  c.MaxEnergyPerInterval,
		GracePeriod:           c.GracePeriod,
	})
}
