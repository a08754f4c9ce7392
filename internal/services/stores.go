package services

import (
	"context"
	"time"

	"github.com/ethan-stone/charging-session-cost-calculation/internal/models"
)

// The interfaces below are satisfied by the pgx repositories in internal/repo.

type SessionStore interface {
	Start(ctx context.Context, s models.Session) (string, error)
	FindByTx(ctx context.Context, cp string, tx int) (*models.Session, error)
	FindOpenByConnector(ctx context.Context, cp string, connectorId int) (*models.Session, error)
	End(ctx context.Context, sessionId string, endedAt time.Time) error
	GetByID(ctx context.Context, id string) (*models.Session, error)
	SetCost(ctx context.Context, sessionId string, cost int64) error
}

type TelemetryStore interface {
	InsertReading(ctx context.Context, reading models.EnergyReading) (string, error)
	InsertStatusEvent(ctx context.Context, ev models.ConnectorStatusEvent) (string, error)
	ListReadings(ctx context.Context, sessionId string) ([]models.EnergyReading, error)
	ListStatusEvents(ctx context.Context, sessionId string) ([]models.ConnectorStatusEvent, error)
}

type RateStore interface {
	Create(ctx context.Context, rate models.Rate) (models.Rate, error)
	Get(ctx context.Context, rateId string) (*models.Rate, error)
}

type BillingLedger interface {
	Upsert(ctx context.Context, rec models.BillingRecord) (models.BillingRecord, error)
	Get(ctx context.Context, sessionId string) (*models.BillingRecord, error)
}

type EventLog interface {
	InsertRaw(ctx context.Context, ev models.RawEvent) (int64, error)
}

// BillingPublisher forwards a billing record to a downstream system.
type BillingPublisher interface {
	Publish(ctx context.Context, rec models.BillingRecord) error
}

// SessionCalculator prices a stored session.
type SessionCalculator interface {
	CalculateSession(ctx context.Context, sessionId string) (models.BillingRecord, error)
}
