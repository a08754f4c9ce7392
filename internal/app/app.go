// Package app wires the repositories, billing sinks and services shared by the binaries.
package app

import (
	"context"

	"github.com/ethan-stone/charging-session-cost-calculation/internal/billingclient"
	"github.com/ethan-stone/charging-session-cost-calculation/internal/config"
	"github.com/ethan-stone/charging-session-cost-calculation/internal/costing"
	"github.com/ethan-stone/charging-session-cost-calculation/internal/db"
	"github.com/ethan-stone/charging-session-cost-calculation/internal/queue"
	"github.com/ethan-stone/charging-session-cost-calculation/internal/repo"
	"github.com/ethan-stone/charging-session-cost-calculation/internal/services"
)

type App struct {
	Cfg config.Config
	DB  *db.DB

	Sessions  *repo.SessionsRepo
	Telemetry *repo.TelemetryRepo
	Rates     *repo.RatesRepo
	Ledger    *repo.BillingRepo
	Events    *repo.EventsRepo

	Pricing   *services.PricingService
	Billing   *services.BillingService
	Costs     *services.CostService
	Processor *services.EventsProcessor

	producer *queue.BillingProducer
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	d, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	a := &App{
		Cfg:       cfg,
		DB:        d,
		Sessions:  repo.NewSessionsRepo(d.Pool),
		Telemetry: repo.NewTelemetryRepo(d.Pool),
		Rates:     repo.NewRatesRepo(d.Pool),
		Ledger:    repo.NewBillingRepo(d.Pool),
		Events:    repo.NewEventsRepo(d.Pool),
	}

	var publishers []services.BillingPublisher
	if len(cfg.BillingKafkaBrokers) > 0 {
		p, err := queue.NewBillingProducer(cfg.BillingKafkaBrokers, cfg.BillingKafkaTopic)
		if err != nil {
			d.Close()
			return nil, err
		}
		a.producer = p
		publishers = append(publishers, p)
	}
	if cfg.BillingWebhookURL != "" {
		publishers = append(publishers, billingclient.New(cfg.BillingWebhookURL, cfg.BillingWebhookAPIKey))
	}

	a.Pricing = services.NewPricingService(a.Rates)
	a.Billing = services.NewBillingService(a.Ledger, a.Sessions, publishers...)
	a.Costs = &services.CostService{
		Sessions:             a.Sessions,
		Telemetry:            a.Telemetry,
		Workflow:             costing.NewWorkflow(a.Pricing, a.Billing),
		MaxEnergyPerInterval: cfg.MaxEnergyPerInterval,
		GracePeriod:          cfg.GracePeriod,
	}
	a.Processor = &services.EventsProcessor{
		Events:          a.Events,
		Sessions:        a.Sessions,
		Telemetry:       a.Telemetry,
		Costs:           a.Costs,
		MaxSkew:         cfg.MaxEventSkew,
		DefaultRateId:   cfg.DefaultRateId,
		DefaultTimezone: cfg.DefaultTimezone,
	}
	return a, nil
}

func (a *App) Close() error {
	defer a.DB.Close()
	if a.producer != nil {
		return a.producer.Close()
	}
	return nil
}
