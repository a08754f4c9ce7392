package costing

import (
	"time"

	"github.com/ethan-stone/charging-session-cost-calculation/internal/models"
	"github.com/shopspring/decimal"
)

// EnergyCost sums energy price times energy consumed over all sub-intervals and floors
// the total.
func EnergyCost(loc *time.Location, rate models.Rate, subs []SessionInterval) int64 {
	total := decimal.Zero
	for _, sub := range subs {
		c, ok := matchedComponent(loc, rate, sub, subs, models.ComponentEnergy)
		if !ok {
			continue
		}
		total = total.Add(c.Value.Mul(sub.EnergyConsumed))
	}
	return floor(total)
}

// IdleCost sums idle price times duration in seconds over idle sub-intervals and floors
// the total.
func IdleCost(loc *time.Location, rate models.Rate, subs []SessionInterval) int64 {
	total := decimal.Zero
	for _, sub := range subs {
		if sub.Type != IntervalIdle {
			continue
		}
		c, ok := matchedComponent(loc, rate, sub, subs, models.ComponentIdle)
		if !ok {
			continue
		}
		total = total.Add(c.Value.Mul(durationSeconds(sub.Duration)))
	}
	return floor(total)
}

// graceState is the accumulator of the grace period fold.
type graceState struct {
	idleRun time.Duration
	total   decimal.Decimal
}

// step folds one sub-interval into the state. A non-idle sub-interval ends the idle run;
// an idle one without a priced idle component leaves the run untouched.
func (g graceState) step(loc *time.Location, rate models.Rate, sub SessionInterval, subs []SessionInterval, grace time.Duration) graceState {
	if sub.Type != IntervalIdle {
		return graceState{total: g.total}
	}
	c, ok := matchedComponent(loc, rate, sub, subs, models.ComponentIdle)
	if !ok {
		return g
	}
	if g.idleRun >= grace {
		return g
	}
	return graceState{
		idleRun: g.idleRun + sub.Duration,
		total:   g.total.Add(c.Value.Mul(durationSeconds(sub.Duration))),
	}
}

// GracePeriodCost is the idle cost accrued during the first grace of each contiguous
// idle run. It is subtracted from the idle cost.
func GracePeriodCost(loc *time.Location, rate models.Rate, subs []SessionInterval, grace time.Duration) int64 {
	state := graceState{total: decimal.Zero}
	for _, sub := range subs {
		state = state.step(loc, rate, sub, subs, grace)
	}
	return floor(state.total)
}

// ClampCost bounds cost by the optional minimum and maximum.
func ClampCost(cost int64, minCost, maxCost *int64) int64 {
	if minCost != nil && cost < *minCost {
		cost = *minCost
	}
	if maxCost != nil && cost > *maxCost {
		cost = *maxCost
	}
	return cost
}

func matchedComponent(loc *time.Location, rate models.Rate, sub SessionInterval, subs []SessionInterval, t models.ComponentType) (models.RatePricingElementComponent, bool) {
	idx, ok := MatchPricingElement(loc, rate, sub, subs)
	if !ok {
		return models.RatePricingElementComponent{}, false
	}
	return rate.PricingElements[idx].Component(t)
}

func durationSeconds(d time.Duration) decimal.Decimal {
	return decimal.NewFromInt(int64(d)).Shift(-9)
}

func floor(d decimal.Decimal) int64 {
	return d.Floor().IntPart()
}
