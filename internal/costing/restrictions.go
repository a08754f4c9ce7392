package costing

import (
	"time"

	"github.com/ethan-stone/charging-session-cost-calculation/internal/models"
	"github.com/shopspring/decimal"
)

// RestrictionInput is the state a pricing element is evaluated against at one instant.
type RestrictionInput struct {
	At       time.Time
	Location *time.Location
	// Elapsed and Energy are measured from the start of the first sub-interval.
	Elapsed time.Duration
	Energy  decimal.Decimal
}

// RestrictionsHold reports whether every present restriction is met. Checks run in a
// fixed order and stop at the first unmet one.
func RestrictionsHold(r models.Restrictions, in RestrictionInput) bool {
	local := in.At.In(in.Location)

	if len(r.DayOfWeek) > 0 && !onDayOfWeek(local, r.DayOfWeek) {
		return false
	}
	if r.StartDate != nil && !in.At.After(*r.StartDate) {
		return false
	}
	if r.EndDate != nil && !in.At.Before(*r.EndDate) {
		return false
	}
	if r.StartTime != nil {
		start, err := models.ParseClock(*r.StartTime)
		if err != nil || secondOfDay(local) < start {
			return false
		}
	}
	if r.EndTime != nil {
		end, err := models.ParseClock(*r.EndTime)
		if err != nil || secondOfDay(local) > end {
			return false
		}
	}
	if r.MinDuration != nil && in.Elapsed < seconds(*r.MinDuration) {
		return false
	}
	if r.MaxDuration != nil && in.Elapsed > seconds(*r.MaxDuration) {
		return false
	}
	if r.MinKwh != nil && in.Energy.LessThan(*r.MinKwh) {
		return false
	}
	if r.MaxKwh != nil && in.Energy.GreaterThan(*r.MaxKwh) {
		return false
	}
	return true
}

// MatchPricingElement returns the index of the first pricing element of rate whose
// restrictions hold at both the start and the end of current. all is the full
// sub-interval sequence; its first element anchors elapsed duration and energy.
func MatchPricingElement(loc *time.Location, rate models.Rate, current SessionInterval, all []SessionInterval) (int, bool) {
	if len(all) == 0 {
		return 0, false
	}
	first := all[0]
	atStart := RestrictionInput{
		At:       current.StartTime,
		Location: loc,
		Elapsed:  current.StartTime.Sub(first.StartTime),
		Energy:   current.StartEnergy.Sub(first.StartEnergy),
	}
	atEnd := RestrictionInput{
		At:       current.EndTime,
		Location: loc,
		Elapsed:  current.EndTime.Sub(first.StartTime),
		Energy:   current.EndEnergy.Sub(first.StartEnergy),
	}
	for i, e := range rate.PricingElements {
		if RestrictionsHold(e.Restrictions, atStart) && RestrictionsHold(e.Restrictions, atEnd) {
			return i, true
		}
	}
	return 0, false
}

func onDayOfWeek(t time.Time, days []models.Weekday) bool {
	wd := t.Weekday()
	for _, d := range days {
		if w, ok := d.Weekday(); ok && w == wd {
			return true
		}
	}
	return false
}

func secondOfDay(t time.Time) int {
	h, m, s := t.Clock()
	return h*3600 + m*60 + s
}

func seconds(n int64) time.Duration { return time.Duration(n) * time.Second }
