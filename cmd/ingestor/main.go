package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethan-stone/charging-session-cost-calculation/internal/app"
	"github.com/ethan-stone/charging-session-cost-calculation/internal/config"
	"github.com/ethan-stone/charging-session-cost-calculation/internal/logging"

	mqtt "github.com/eclipse/paho.mqtt.golang"
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

	ctx, stop := signal.NotifyContext(logger.WithContext(context.Background()), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("startup failed")
	}
	defer a.Close()

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID("cpms-ingestor-" + hostname()).
		SetAutoReconnect(true).
		SetOrderMatters(true)
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		logger.Fatal().Err(token.Error()).Msg("mqtt connect")
	}
	defer client.Disconnect(250)

	handler := func(_ mqtt.Client, msg mqtt.Message) {
		evtCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if evtType, err := a.Processor.Ingest(evtCtx, msg.Payload()); err != nil {
			logger.Error().Err(err).Str("topic", msg.Topic()).Str("event", evtType).Msg("ingest failed")
		}
	}

	if token := client.Subscribe(cfg.MQTTTopic, 1, handler); token.Wait() && token.Error() != nil {
		logger.Fatal().Err(token.Error()).Msg("subscribe failed")
	}

	logger.Info().Str("broker", cfg.MQTTBroker).Str("topic", cfg.MQTTTopic).Msg("ingestor running")
	<-ctx.Done()
	logger.Info().Msg("ingestor stopped")
}

func hostname() string {
	h, err := os.Hostname()
	if err != nil {
		return "local"
	}
	return h
}
