package costing

import (
	"time"

	"github.com/shopspring/decimal"
)

// InterpolatePerSecond resamples each interval into one-second sub-intervals, linearly
// interpolating energy between the interval's start and end values. An interval of D
// seconds yields floor(D) sub-intervals; energy of a trailing fractional second is
// dropped. Intervals must already be ordered by start time.
func InterpolatePerSecond(intervals []SessionInterval) []SessionInterval {
	var out []SessionInterval
	for _, iv := range intervals {
		n := int64(iv.Duration / time.Second)
		if n <= 0 {
			continue
		}
		span := decimal.NewFromInt(int64(iv.Duration)).Shift(-9)
		delta := iv.EndEnergy.Sub(iv.StartEnergy)

		start := iv.StartEnergy
		for j := int64(0); j < n; j++ {
			end := iv.StartEnergy.Add(delta.Mul(decimal.NewFromInt(j + 1)).Div(span))
			out = append(out, SessionInterval{
				SessionId:      iv.SessionId,
				Type:           iv.Type,
				StartTime:      iv.StartTime.Add(time.Duration(j) * time.Second),
				EndTime:        iv.StartTime.Add(time.Duration(j+1) * time.Second),
				StartEnergy:    start,
				EndEnergy:      end,
				EnergyConsumed: end.Sub(start),
				Duration:       time.Second,
			})
			start = end
		}
	}
	return out
}
