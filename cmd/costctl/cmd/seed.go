package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ethan-stone/charging-session-cost-calculation/internal/app"
	"github.com/ethan-stone/charging-session-cost-calculation/internal/models"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

type seedOptions struct {
	file        string
	rateId      string
	energyPrice string
	idlePrice   string
	minCost     int64
	maxCost     int64
	withSession bool
	timezone    string
}

var seedOpts seedOptions

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create a rate, and optionally a sample session priced by it",
	RunE: func(cmd *cobra.Command, args []string) error {
		rate, err := seedRate(seedOpts)
		if err != nil {
			return err
		}

		a, err := app.New(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		created, err := a.Pricing.CreateRate(cmd.Context(), rate)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "seeded rate:", created.RateId)

		if !seedOpts.withSession {
			return nil
		}
		sessionId, err := seedSession(cmd, a, created.RateId, seedOpts.timezone)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "seeded session:", sessionId)
		return nil
	},
}

func init() {
	f := seedCmd.Flags()
	f.StringVar(&seedOpts.file, "file", "", "rate definition as JSON; overrides the price flags")
	f.StringVar(&seedOpts.rateId, "rate-id", "", "rate id (generated when empty)")
	f.StringVar(&seedOpts.energyPrice, "energy-price", "0.25", "price per kWh")
	f.StringVar(&seedOpts.idlePrice, "idle-price", "", "price per idle second")
	f.Int64Var(&seedOpts.minCost, "min-cost", -1, "minimum session cost, negative for none")
	f.Int64Var(&seedOpts.maxCost, "max-cost", -1, "maximum session cost, negative for none")
	f.BoolVar(&seedOpts.withSession, "with-session", false, "also create a sample session with readings")
	f.StringVar(&seedOpts.timezone, "timezone", "UTC", "timezone of the sample session")
}

// seedRate builds the rate from a JSON file or from the price flags as a single
// unrestricted pricing element.
func seedRate(o seedOptions) (models.Rate, error) {
	if o.file != "" {
		b, err := os.ReadFile(o.file)
		if err != nil {
			return models.Rate{}, err
		}
		var rate models.Rate
		if err := json.Unmarshal(b, &rate); err != nil {
			return models.Rate{}, fmt.Errorf("parse %s: %w", o.file, err)
		}
		return rate, nil
	}

	rate := models.Rate{RateId: o.rateId}
	if o.minCost >= 0 {
		rate.MinCost = &o.minCost
	}
	if o.maxCost >= 0 {
		rate.MaxCost = &o.maxCost
	}

	var el models.RatePricingElement
	for _, p := range []struct {
		typ   models.ComponentType
		price string
	}{{models.ComponentEnergy, o.energyPrice}, {models.ComponentIdle, o.idlePrice}} {
		if p.price == "" {
			continue
		}
		v, err := decimal.NewFromString(p.price)
		if err != nil {
			return models.Rate{}, fmt.Errorf("%s price: %w", p.typ, err)
		}
		el.Components = append(el.Components, models.RatePricingElementComponent{Type: p.typ, Value: v})
	}
	if len(el.Components) == 0 {
		return models.Rate{}, errors.New("at least one of --energy-price or --idle-price is required")
	}
	rate.PricingElements = []models.RatePricingElement{el}
	return rate, nil
}

// seedSession stores an ended session with three readings one minute apart, charging
// throughout.
func seedSession(cmd *cobra.Command, a *app.App, rateId, tz string) (string, error) {
	ctx := cmd.Context()
	start := time.Now().UTC().Truncate(time.Minute).Add(-5 * time.Minute)

	sessionId, err := a.Sessions.Start(ctx, models.Session{
		ChargePointId: "CP-SEED",
		ConnectorId:   1,
		TransactionId: int(start.Unix() % 1_000_000),
		RateId:        rateId,
		Timezone:      tz,
		StartedAt:     start,
	})
	if err != nil {
		return "", err
	}
	if _, err := a.Telemetry.InsertStatusEvent(ctx, models.ConnectorStatusEvent{SessionId: sessionId, Status: models.StatusCharging, Timestamp: start}); err != nil {
		return "", err
	}
	for i, kwh := range []int64{100, 110, 120} {
		if _, err := a.Telemetry.InsertReading(ctx, models.EnergyReading{
			SessionId: sessionId,
			Value:     decimal.NewFromInt(kwh),
			Timestamp: start.Add(time.Duration(i+1) * time.Minute),
		}); err != nil {
			return "", err
		}
	}
	return sessionId, a.Sessions.End(ctx, sessionId, start.Add(4*time.Minute))
}
