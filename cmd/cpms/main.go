package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethan-stone/charging-session-cost-calculation/internal/app"
	"github.com/ethan-stone/charging-session-cost-calculation/internal/config"
	"github.com/ethan-stone/charging-session-cost-calculation/internal/httpapi"
	"github.com/ethan-stone/charging-session-cost-calculation/internal/logging"

	"github.com/rs/zerolog/log"
)

func main() {
	configPath := flag.String("config", "", "optional config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	logger := logging.Setup(cfg.Log)

	ctx, cancel := context.WithTimeout(logger.WithContext(context.Background()), 10*time.Second)
	defer cancel()

	a, err := app.New(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("startup failed")
	}
	defer a.Close()

	srv := &httpapi.Server{
		Cfg:       cfg,
		Log:       logger,
		Sessions:  a.Sessions,
		Processor: a.Processor,
		Costs:     a.Costs,
		Billing:   a.Billing,
		Rates:     a.Pricing,
	}

	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.ListenAddr).Msg("CPMS listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = httpServer.Shutdown(ctx2)
	logger.Info().Msg("CPMS shutdown complete")
}
