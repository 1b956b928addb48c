package main

import (
	"context"
	"log"
	"sync"
	"time"

	"garden-core/internal/alerts"
	"garden-core/internal/api"
	"garden-core/internal/config"
	"garden-core/internal/db"
	"garden-core/internal/ingest"
	"garden-core/internal/kafka"
	"garden-core/internal/logging"
	"garden-core/internal/mqtt"
	"garden-core/internal/notify"
	"garden-core/internal/providers"
	"garden-core/internal/trend"
	"garden-core/internal/watering"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Logging.Dir, cfg.Logging.Level)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := db.New(ctx, cfg.DB.DSN)
	if err != nil {
		logger.Errorf("Failed to connect to database: %v", err)
		log.Fatalf("Database connection failed: %v", err)
	}
	defer store.Close()

	deps := providers.NewDeps(providers.SMTPConfig{
		Server:   cfg.Email.SMTPServer,
		Port:     cfg.Email.SMTPPort,
		Username: cfg.Email.Username,
		Password: cfg.Email.Password,
		From:     cfg.Email.From,
	}, cfg.Telegram.RatePerSecond)

	notifier := notify.New(store, logger, deps, cfg.Dispatch.QueueSize,
		time.Duration(cfg.Dispatch.TestTimeoutSeconds)*time.Second)
	notifier.Start(cfg.Dispatch.MaxWorkers)
	defer notifier.Stop()

	engine := alerts.New(store, notifier, logger,
		time.Duration(cfg.Alerts.CooldownMinutes)*time.Minute)

	detector := watering.New(store, logger, cfg.Watering.MinJumpPct,
		time.Duration(cfg.Watering.LookbackMinutes)*time.Minute)

	pipeline := ingest.New(store, engine, detector, logger,
		time.Duration(cfg.Ingest.ClockSkewHours)*time.Hour)

	trends := trend.New(store, cfg.Trend.StablePct)

	var wg sync.WaitGroup

	// Stream ingestion is optional; either consumer starts only when its
	// broker is configured.
	if cfg.Kafka.Broker != "" {
		consumer := kafka.NewConsumer(kafka.Config{
			Broker:  cfg.Kafka.Broker,
			Topic:   cfg.Kafka.Topic,
			GroupID: cfg.Kafka.GroupID,
		}, pipeline, logger)
		defer consumer.Close()
		consumer.Start(ctx, &wg)
	}
	if cfg.MQTT.Broker != "" {
		consumer, err := mqtt.Connect(ctx, mqtt.Config{
			Broker:   cfg.MQTT.Broker,
			Topic:    cfg.MQTT.Topic,
			ClientID: "garden-core",
		}, pipeline, logger)
		if err != nil {
			logger.Errorf("MQTT consumer disabled: %v", err)
		} else {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := consumer.Start(ctx); err != nil {
					logger.Errorf("MQTT consumer stopped: %v", err)
				}
			}()
		}
	}

	handler := api.NewHandler(store, pipeline, trends, notifier, detector, logger)
	router := api.NewRouter(handler, logger, cfg)

	logger.Infof("Starting API server on %s", cfg.API.Port)
	if err := router.Run(cfg.API.Port); err != nil {
		logger.Errorf("API server failed: %v", err)
	}
	cancel()
	wg.Wait()
}
