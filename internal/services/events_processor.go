package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ethan-stone/charging-session-cost-calculation/internal/models"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const energyRegister = "Energy.Active.Import.Register"

// EventsProcessor turns gateway events into sessions, meter readings and connector
// status events, and prices a session once its transaction ends.
type EventsProcessor struct {
	Events    EventLog
	Sessions  SessionStore
	Telemetry TelemetryStore
	Costs     SessionCalculator

	MaxSkew         time.Duration
	DefaultRateId   string
	DefaultTimezone string
	Now             func() time.Time
}

type gatewayEvent struct {
	Type          string           `json:"type"`
	ChargePointId string           `json:"chargePointId"`
	Ts            string           `json:"ts"`
	ConnectorId   int              `json:"connectorId"`
	TransactionId int              `json:"transactionId"`
	RateId        string           `json:"rateId"`
	Timezone      string           `json:"timezone"`
	Status        string           `json:"status"`
	MeterStartWh  *decimal.Decimal `json:"meterStartWh"`
	MeterStopWh   *decimal.Decimal `json:"meterStopWh"`
	Samples       []meterSample    `json:"samples"`
}

type meterSample struct {
	Measurand string          `json:"measurand"`
	Unit      string          `json:"unit"`
	Value     decimal.Decimal `json:"value"`
}

// Ingest stores the raw event and applies it. It returns the event type.
func (p *EventsProcessor) Ingest(ctx context.Context, raw []byte) (string, error) {
	var ev gatewayEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		return "", err
	}
	if ev.Type == "" {
		return "", errors.New("missing type")
	}
	if ev.ChargePointId == "" {
		return ev.Type, errors.New("missing chargePointId")
	}

	ts := p.eventTime(ev.Ts)
	if _, err := p.Events.InsertRaw(ctx, models.RawEvent{ChargePointId: ev.ChargePointId, EventType: ev.Type, Ts: ts, Payload: raw}); err != nil {
		return ev.Type, err
	}

	log := zerolog.Ctx(ctx).With().Str("event", ev.Type).Str("charge_point_id", ev.ChargePointId).Logger()

	switch ev.Type {
	case "TransactionStarted":
		return ev.Type, p.transactionStarted(ctx, ev, ts)

	case "MeterSample":
		sess, err := p.Sessions.FindByTx(ctx, ev.ChargePointId, ev.TransactionId)
		if err != nil || sess == nil {
			return ev.Type, err
		}
		value, ok := registerKwh(ev.Samples)
		if !ok {
			log.Debug().Msg("no energy register in meter sample")
			return ev.Type, nil
		}
		_, err = p.Telemetry.InsertReading(ctx, models.EnergyReading{SessionId: sess.SessionId, Value: value, Timestamp: ts})
		return ev.Type, err

	case "ConnectorStatusChanged":
		status, ok := connectorStatus(ev.Status)
		if !ok {
			return ev.Type, nil
		}
		sess, err := p.Sessions.FindOpenByConnector(ctx, ev.ChargePointId, ev.ConnectorId)
		if err != nil || sess == nil {
			return ev.Type, err
		}
		_, err = p.Telemetry.InsertStatusEvent(ctx, models.ConnectorStatusEvent{SessionId: sess.SessionId, Status: status, Timestamp: ts})
		return ev.Type, err

	case "TransactionEnded":
		sess, err := p.Sessions.FindByTx(ctx, ev.ChargePointId, ev.TransactionId)
		if err != nil || sess == nil {
			return ev.Type, err
		}
		if ev.MeterStopWh != nil {
			if _, err := p.Telemetry.InsertReading(ctx, models.EnergyReading{SessionId: sess.SessionId, Value: ev.MeterStopWh.Shift(-3), Timestamp: ts}); err != nil {
				return ev.Type, err
			}
		}
		if err := p.Sessions.End(ctx, sess.SessionId, ts); err != nil {
			return ev.Type, err
		}
		if p.Costs != nil {
			// The event is already applied; a failed calculation can be retried through the API.
			if rec, err := p.Costs.CalculateSession(ctx, sess.SessionId); err != nil {
				log.Warn().Err(err).Str("session_id", sess.SessionId).Msg("session cost calculation failed")
			} else {
				log.Info().Str("session_id", sess.SessionId).Int64("total_cost", rec.TotalCost).Msg("session priced")
			}
		}
	}

	return ev.Type, nil
}

func (p *EventsProcessor) transactionStarted(ctx context.Context, ev gatewayEvent, ts time.Time) error {
	rateId := ev.RateId
	if rateId == "" {
		rateId = p.DefaultRateId
	}
	if rateId == "" {
		return errors.New("missing rateId and no default rate configured")
	}
	tz := ev.Timezone
	if tz == "" {
		tz = p.DefaultTimezone
	}
	if tz == "" {
		tz = "UTC"
	}
	if _, err := time.LoadLocation(tz); err != nil {
		return fmt.Errorf("timezone %q: %w", tz, err)
	}

	sessionId, err := p.Sessions.Start(ctx, models.Session{
		ChargePointId: ev.ChargePointId,
		ConnectorId:   ev.ConnectorId,
		TransactionId: ev.TransactionId,
		RateId:        rateId,
		Timezone:      tz,
		StartedAt:     ts,
	})
	if err != nil {
		return err
	}
	if ev.MeterStartWh != nil {
		_, err = p.Telemetry.InsertReading(ctx, models.EnergyReading{SessionId: sessionId, Value: ev.MeterStartWh.Shift(-3), Timestamp: ts})
	}
	return err
}

// eventTime parses the event timestamp. Missing, malformed or out-of-skew timestamps are
// replaced by the receive time.
func (p *EventsProcessor) eventTime(raw string) time.Time {
	now := time.Now().UTC()
	if p.Now != nil {
		now = p.Now().UTC()
	}
	ts := now
	if raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			ts = t.UTC()
		}
	}
	if p.MaxSkew > 0 {
		if ts.Before(now.Add(-p.MaxSkew)) || ts.After(now.Add(p.MaxSkew)) {
			ts = now
		}
	}
	return ts
}

// registerKwh returns the last cumulative energy register of the sample set in kWh.
func registerKwh(samples []meterSample) (decimal.Decimal, bool) {
	var (
		value decimal.Decimal
		found bool
	)
	for _, s := range samples {
		if s.Measurand != energyRegister {
			continue
		}
		switch s.Unit {
		case "", "Wh":
			value, found = s.Value.Shift(-3), true
		case "kWh":
			value, found = s.Value, true
		}
	}
	return value, found
}

// connectorStatus maps an OCPP connector status to the session status it implies.
// Statuses outside a session are ignored.
func connectorStatus(ocpp string) (models.ConnectorStatus, bool) {
	switch ocpp {
	case "Charging":
		return models.StatusCharging, true
	case "Preparing", "SuspendedEV", "SuspendedEVSE", "Finishing":
		return models.StatusIdle, true
	}
	return "", false
}
