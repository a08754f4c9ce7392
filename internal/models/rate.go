package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type ComponentType string

const (
	ComponentEnergy ComponentType = "energy"
	ComponentFlat   ComponentType = "flat"
	ComponentIdle   ComponentType = "idle"
	ComponentTime   ComponentType = "time"
)

func (t ComponentType) Valid() bool {
	switch t {
	case ComponentEnergy, ComponentFlat, ComponentIdle, ComponentTime:
		return true
	}
	return false
}

type Weekday string

const (
	Monday    Weekday = "MONDAY"
	Tuesday   Weekday = "TUESDAY"
	Wednesday Weekday = "WEDNESDAY"
	Thursday  Weekday = "THURSDAY"
	Friday    Weekday = "FRIDAY"
	Saturday  Weekday = "SATURDAY"
	Sunday    Weekday = "SUNDAY"
)

var weekdays = map[Weekday]time.Weekday{
	Sunday:    time.Sunday,
	Monday:    time.Monday,
	Tuesday:   time.Tuesday,
	Wednesday: time.Wednesday,
	Thursday:  time.Thursday,
	Friday:    time.Friday,
	Saturday:  time.Saturday,
}

// Weekday returns the time.Weekday for a restriction day name.
func (d Weekday) Weekday() (time.Weekday, bool) {
	w, ok := weekdays[d]
	return w, ok
}

// Rate is a tariff. PricingElements are ordered; the first matching element prices a
// sub-interval.
type Rate struct {
	RateId          string               `json:"rateId"`
	MinCost         *int64               `json:"minCost,omitempty"`
	MaxCost         *int64               `json:"maxCost,omitempty"`
	PricingElements []RatePricingElement `json:"pricingElements"`
}

type RatePricingElement struct {
	ElementId    string                        `json:"elementId"`
	RateId       string                        `json:"rateId"`
	Restrictions Restrictions                  `json:"restrictions"`
	Components   []RatePricingElementComponent `json:"components"`
}

type RatePricingElementComponent struct {
	ComponentId string          `json:"componentId"`
	ElementId   string          `json:"elementId"`
	Type        ComponentType   `json:"type"`
	Value       decimal.Decimal `json:"value"`
}

// Component returns the first component of the given type.
func (e RatePricingElement) Component(t ComponentType) (RatePricingElementComponent, bool) {
	for _, c := range e.Components {
		if c.Type == t {
			return c, true
		}
	}
	return RatePricingElementComponent{}, false
}

// Restrictions gate a pricing element. Nil fields impose no constraint.
// StartTime and EndTime are wall-clock "HH:mm" in the session timezone; durations are
// seconds since the first sub-interval; kWh bounds are energy since the first sub-interval.
type Restrictions struct {
	StartDate   *time.Time       `json:"startDate,omitempty"`
	EndDate     *time.Time       `json:"endDate,omitempty"`
	StartTime   *string          `json:"startTime,omitempty"`
	EndTime     *string          `json:"endTime,omitempty"`
	MinDuration *int64           `json:"minDuration,omitempty"`
	MaxDuration *int64           `json:"maxDuration,omitempty"`
	MinKwh      *decimal.Decimal `json:"minKwh,omitempty"`
	MaxKwh      *decimal.Decimal `json:"maxKwh,omitempty"`
	DayOfWeek   []Weekday        `json:"dayOfWeek,omitempty"`
}

// ParseClock converts "HH:mm" into seconds since midnight.
func ParseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return t.Hour()*3600 + t.Minute()*60, nil
}

func (r Restrictions) Validate() error {
	var errs []error
	if r.StartTime != nil {
		if _, err := ParseClock(*r.StartTime); err != nil {
			errs = append(errs, err)
		}
	}
	if r.EndTime != nil {
		if _, err := ParseClock(*r.EndTime); err != nil {
			errs = append(errs, err)
		}
	}
	for _, d := range r.DayOfWeek {
		if _, ok := d.Weekday(); !ok {
			errs = append(errs, fmt.Errorf("invalid day of week %q", d))
		}
	}
	if r.MinDuration != nil && r.MaxDuration != nil && *r.MinDuration > *r.MaxDuration {
		errs = append(errs, errors.New("minDuration greater than maxDuration"))
	}
	if r.MinKwh != nil && r.MaxKwh != nil && r.MinKwh.GreaterThan(*r.MaxKwh) {
		errs = append(errs, errors.New("minKwh greater than maxKwh"))
	}
	return errors.Join(errs...)
}

func (r Rate) Validate() error {
	var errs []error
	if r.MinCost != nil && r.MaxCost != nil && *r.MinCost > *r.MaxCost {
		errs = append(errs, errors.New("minCost greater than maxCost"))
	}
	for i, e := range r.PricingElements {
		if err := e.Restrictions.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("pricing element %d: %w", i, err))
		}
		for _, c := range e.Components {
			if !c.Type.Valid() {
				errs = append(errs, fmt.Errorf("pricing element %d: invalid component type %q", i, c.Type))
			}
		}
	}
	return errors.Join(errs...)
}
