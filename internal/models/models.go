package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type ConnectorStatus string

const (
	StatusCharging ConnectorStatus = "charging"
	StatusIdle     ConnectorStatus = "idle"
)

type Session struct {
	SessionId     string     `json:"sessionId"`
	ChargePointId string     `json:"chargePointId"`
	ConnectorId   int        `json:"connectorId"`
	TransactionId int        `json:"transactionId"`
	RateId        string     `json:"rateId"`
	Timezone      string     `json:"timezone"`
	StartedAt     time.Time  `json:"startedAt"`
	EndedAt       *time.Time `json:"endedAt,omitempty"`
	Cost          *int64     `json:"cost,omitempty"`
}

// EnergyReading is a cumulative meter value in kWh.
type EnergyReading struct {
	ReadingId string          `json:"readingId"`
	SessionId string          `json:"sessionId"`
	Value     decimal.Decimal `json:"value"`
	Timestamp time.Time       `json:"timestamp"`
}

type ConnectorStatusEvent struct {
	EventId   string          `json:"eventId"`
	SessionId string          `json:"sessionId"`
	Status    ConnectorStatus `json:"status"`
	Timestamp time.Time       `json:"timestamp"`
}

type BillingRecord struct {
	SessionId             string    `json:"sessionId"`
	TotalCost             int64     `json:"totalCost"`
	EnergyCost            int64     `json:"energyCost"`
	IdleCost              int64     `json:"idleCost"`
	GracePeriodAdjustment int64     `json:"gracePeriodAdjustment"`
	CalculatedAt          time.Time `json:"calculatedAt"`
}

type RawEvent struct {
	Id            int64
	ChargePointId string
	EventType     string
	Ts            time.Time
	Payload       []byte
}
