package costing

import (
	"slices"
	"sort"
	"time"

	"github.com/ethan-stone/charging-session-cost-calculation/internal/models"
	"github.com/shopspring/decimal"
)

type IntervalType string

const (
	IntervalCharging IntervalType = "charging"
	IntervalIdle     IntervalType = "idle"
)

// SessionInterval is a half-open span [StartTime, EndTime) of a session.
type SessionInterval struct {
	SessionId      string
	Type           IntervalType
	StartTime      time.Time
	EndTime        time.Time
	StartEnergy    decimal.Decimal
	EndEnergy      decimal.Decimal
	EnergyConsumed decimal.Decimal
	Duration       time.Duration
}

// ExtractIntervals turns consecutive reading pairs into charging and idle intervals.
//
// A rising meter value yields a charging interval. A flat value yields an idle interval
// when the most recent status event strictly before the first reading of the pair is
// idle. A falling value yields nothing.
func ExtractIntervals(sessionId string, readings []models.EnergyReading, events []models.ConnectorStatusEvent) (charging, idle []SessionInterval, err error) {
	if len(readings) == 0 {
		return nil, nil, &InsufficientDataError{SessionId: sessionId, Reason: "no energy readings"}
	}
	if len(events) == 0 {
		return nil, nil, &InsufficientDataError{SessionId: sessionId, Reason: "no connector status events"}
	}

	readings = slices.Clone(readings)
	slices.SortStableFunc(readings, func(a, b models.EnergyReading) int { return a.Timestamp.Compare(b.Timestamp) })
	events = slices.Clone(events)
	slices.SortStableFunc(events, func(a, b models.ConnectorStatusEvent) int { return a.Timestamp.Compare(b.Timestamp) })

	for i := 0; i+1 < len(readings); i++ {
		cur, next := readings[i], readings[i+1]
		switch cur.Value.Cmp(next.Value) {
		case -1:
			charging = append(charging, newInterval(IntervalCharging, cur, next))
		case 0:
			st, ok := statusBefore(events, cur.Timestamp)
			if ok && st == models.StatusIdle {
				idle = append(idle, newInterval(IntervalIdle, cur, next))
			}
		}
	}
	return charging, idle, nil
}

func newInterval(t IntervalType, cur, next models.EnergyReading) SessionInterval {
	consumed := next.Value.Sub(cur.Value)
	if t == IntervalIdle {
		consumed = decimal.Zero
	}
	return SessionInterval{
		SessionId:      cur.SessionId,
		Type:           t,
		StartTime:      cur.Timestamp,
		EndTime:        next.Timestamp,
		StartEnergy:    cur.Value,
		EndEnergy:      next.Value,
		EnergyConsumed: consumed,
		Duration:       next.Timestamp.Sub(cur.Timestamp),
	}
}

// statusBefore returns the status of the latest event strictly before t. events must be
// sorted by timestamp.
func statusBefore(events []models.ConnectorStatusEvent, t time.Time) (models.ConnectorStatus, bool) {
	n := sort.Search(len(events), func(i int) bool { return !events[i].Timestamp.Before(t) })
	if n == 0 {
		return "", false
	}
	return events[n-1].Status, true
}

// IntervalValidator splits intervals into accepted and rejected sets.
type IntervalValidator func(intervals []SessionInterval) (valid, invalid []SessionInterval)

// ValidateIntervals runs validators left to right. Each validator sees only the intervals
// accepted by the previous one; rejections from every stage are accumulated.
func ValidateIntervals(intervals []SessionInterval, validators ...IntervalValidator) (valid, invalid []SessionInterval) {
	valid = intervals
	for _, v := range validators {
		var rejected []SessionInterval
		valid, rejected = v(valid)
		invalid = append(invalid, rejected...)
	}
	return valid, invalid
}

// MaxEnergyValidator rejects intervals consuming more than max, which usually points at
// a metering glitch.
func MaxEnergyValidator(max decimal.Decimal) IntervalValidator {
	return func(intervals []SessionInterval) (valid, invalid []SessionInterval) {
		for _, iv := range intervals {
			if iv.EnergyConsumed.GreaterThan(max) {
				invalid = append(invalid, iv)
			} else {
				valid = append(valid, iv)
			}
		}
		return valid, invalid
	}
}

// MergeIntervals concatenates interval sets and orders them by start time.
func MergeIntervals(sets ...[]SessionInterval) []SessionInterval {
	var out []SessionInterval
	for _, s := range sets {
		out = append(out, s...)
	}
	slices.SortStableFunc(out, func(a, b SessionInterval) int { return a.StartTime.Compare(b.StartTime) })
	return out
}
