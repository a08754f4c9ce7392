package costing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func interval(t IntervalType, start time.Time, d time.Duration, startEnergy, endEnergy string) SessionInterval {
	s, e := dec(startEnergy), dec(endEnergy)
	return SessionInterval{
		SessionId:      "session-1",
		Type:           t,
		StartTime:      start,
		EndTime:        start.Add(d),
		StartEnergy:    s,
		EndEnergy:      e,
		EnergyConsumed: e.Sub(s),
		Duration:       d,
	}
}

func TestInterpolatePerSecond(t *testing.T) {
	t.Run("one minute interval yields sixty contiguous seconds", func(t *testing.T) {
		subs := InterpolatePerSecond([]SessionInterval{interval(IntervalCharging, minutes(1), time.Minute, "100", "200")})

		require.Len(t, subs, 60)
		total := decimal.Zero
		for j, s := range subs {
			assert.Equal(t, minutes(1).Add(time.Duration(j)*time.Second), s.StartTime)
			assert.Equal(t, time.Second, s.Duration)
			assert.Equal(t, IntervalCharging, s.Type)
			if j > 0 {
				assert.True(t, subs[j-1].EndEnergy.Equal(s.StartEnergy), "sub-interval %d does not continue the previous one", j)
			}
			total = total.Add(s.EnergyConsumed)
		}
		assert.True(t, subs[0].StartEnergy.Equal(dec("100")))
		assert.True(t, subs[59].EndEnergy.Equal(dec("200")))
		assert.True(t, total.Equal(dec("100")), "total %s", total)
	})

	t.Run("fractional trailing second is dropped", func(t *testing.T) {
		iv := interval(IntervalCharging, baseTime, 90*time.Second+500*time.Millisecond, "0", "181")

		subs := InterpolatePerSecond([]SessionInterval{iv})

		require.Len(t, subs, 90)
		for _, s := range subs {
			assert.True(t, s.EnergyConsumed.Equal(dec("2")), "consumed %s", s.EnergyConsumed)
		}
		assert.True(t, subs[89].EndEnergy.Equal(dec("180")))
		assert.Equal(t, baseTime.Add(90*time.Second), subs[89].EndTime)
	})

	t.Run("sub-second intervals vanish", func(t *testing.T) {
		subs := InterpolatePerSecond([]SessionInterval{interval(IntervalCharging, baseTime, 999*time.Millisecond, "0", "1")})

		assert.Empty(t, subs)
	})

	t.Run("idle intervals keep constant energy", func(t *testing.T) {
		subs := InterpolatePerSecond([]SessionInterval{interval(IntervalIdle, baseTime, 3*time.Second, "50", "50")})

		require.Len(t, subs, 3)
		for _, s := range subs {
			assert.Equal(t, IntervalIdle, s.Type)
			assert.True(t, s.EnergyConsumed.IsZero())
			assert.True(t, s.StartEnergy.Equal(dec("50")))
		}
	})

	t.Run("order of input intervals is preserved", func(t *testing.T) {
		subs := InterpolatePerSecond([]SessionInterval{
			interval(IntervalCharging, baseTime, 2*time.Second, "0", "2"),
			interval(IntervalIdle, baseTime.Add(5*time.Second), time.Second, "2", "2"),
		})

		require.Len(t, subs, 3)
		assert.Equal(t, IntervalCharging, subs[1].Type)
		assert.Equal(t, IntervalIdle, subs[2].Type)
		assert.Equal(t, baseTime.Add(5*time.Second), subs[2].StartTime)
	})
}
