package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ethan-stone/charging-session-cost-calculation/internal/app"
	"github.com/ethan-stone/charging-session-cost-calculation/internal/config"
	"github.com/ethan-stone/charging-session-cost-calculation/internal/costing"
	"github.com/ethan-stone/charging-session-cost-calculation/internal/models"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	calcSession string
	calcFile    string
)

var calculateCmd = &cobra.Command{
	Use:   "calculate",
	Short: "Price a charging session",
	Long: `Price a stored session and submit its billing record (--session), or price a
session described in a JSON file without touching the database (--file, "-" for stdin).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		switch {
		case calcSession != "" && calcFile != "":
			return errors.New("--session and --file are mutually exclusive")
		case calcFile != "":
			var in io.Reader = cmd.InOrStdin()
			if calcFile != "-" {
				f, err := os.Open(calcFile)
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			rec, err := calculateOffline(cmd.Context(), in, cfg)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), rec)
		case calcSession != "":
			a, err := app.New(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()
			rec, err := a.Costs.CalculateSession(cmd.Context(), calcSession)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), rec)
		default:
			return errors.New("one of --session or --file is required")
		}
	},
}

func init() {
	calculateCmd.Flags().StringVar(&calcSession, "session", "", "id of a stored session")
	calculateCmd.Flags().StringVar(&calcFile, "file", "", "session document to price offline")
}

// offlineSession is the document accepted by calculate --file. Unset limits fall back to
// the configured ones.
type offlineSession struct {
	Session               models.Session                `json:"session"`
	Rate                  models.Rate                   `json:"rate"`
	EnergyReadings        []models.EnergyReading        `json:"energyReadings"`
	ConnectorStatusEvents []models.ConnectorStatusEvent `json:"connectorStatusEvents"`
	MaxEnergyPerInterval  *decimal.Decimal              `json:"maxEnergyPerInterval,omitempty"`
	GracePeriod           string                        `json:"gracePeriod,omitempty"`
}

func calculateOffline(ctx context.Context, r io.Reader, cfg config.Config) (models.BillingRecord, error) {
	var doc offlineSession
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return models.BillingRecord{}, fmt.Errorf("decode session document: %w", err)
	}
	if err := doc.Rate.Validate(); err != nil {
		return models.BillingRecord{}, fmt.Errorf("invalid rate: %w", err)
	}
	if doc.Session.RateId == "" {
		doc.Session.RateId = doc.Rate.RateId
	}
	if doc.Session.Timezone == "" {
		doc.Session.Timezone = cfg.DefaultTimezone
	}

	in := costing.Input{
		Session:               doc.Session,
		EnergyReadings:        doc.EnergyReadings,
		ConnectorStatusEvents: doc.ConnectorStatusEvents,
		MaxEnergyPerInterval:  cfg.MaxEnergyPerInterval,
		GracePeriod:           cfg.GracePeriod,
	}
	if doc.MaxEnergyPerInterval != nil {
		in.MaxEnergyPerInterval = *doc.MaxEnergyPerInterval
	}
	if doc.GracePeriod != "" {
		d, err := time.ParseDuration(doc.GracePeriod)
		if err != nil {
			return models.BillingRecord{}, fmt.Errorf("gracePeriod: %w", err)
		}
		in.GracePeriod = d
	}

	wf := costing.NewWorkflow(costing.StaticRates{doc.Rate.RateId: doc.Rate}, &costing.RecordingBilling{})
	return wf.Calculate(ctx, in)
}
