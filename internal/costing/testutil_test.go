package costing

import (
	"time"

	"github.com/ethan-stone/charging-session-cost-calculation/internal/models"
	"github.com/shopspring/decimal"
)

var baseTime = time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr[T any](v T) *T { return &v }

func reading(id string, value string, at time.Time) models.EnergyReading {
	return models.EnergyReading{ReadingId: id, SessionId: "session-1", Value: dec(value), Timestamp: at}
}

func status(s models.ConnectorStatus, at time.Time) models.ConnectorStatusEvent {
	return models.ConnectorStatusEvent{EventId: "cse-" + at.Format("150405"), SessionId: "session-1", Status: s, Timestamp: at}
}

func minutes(n float64) time.Time {
	return baseTime.Add(time.Duration(n * float64(time.Minute)))
}

// sub builds a one-second sub-interval starting at at.
func sub(t IntervalType, at time.Time, startEnergy, endEnergy string) SessionInterval {
	s, e := dec(startEnergy), dec(endEnergy)
	return SessionInterval{
		SessionId:      "session-1",
		Type:           t,
		StartTime:      at,
		EndTime:        at.Add(time.Second),
		StartEnergy:    s,
		EndEnergy:      e,
		EnergyConsumed: e.Sub(s),
		Duration:       time.Second,
	}
}

func element(r models.Restrictions, components ...models.RatePricingElementComponent) models.RatePricingElement {
	return models.RatePricingElement{Restrictions: r, Components: components}
}

func energyPrice(v string) models.RatePricingElementComponent {
	return models.RatePricingElementComponent{Type: models.ComponentEnergy, Value: dec(v)}
}

func idlePrice(v string) models.RatePricingElementComponent {
	return models.RatePricingElementComponent{Type: models.ComponentIdle, Value: dec(v)}
}
