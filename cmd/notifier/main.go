package main

import (
	"context"
	"os/signal"
	"syscall"

	"bookable/internal/notifier"
	"bookable/pkg/config"
	"bookable/pkg/kafka"
	kafka_config "bookable/pkg/kafka/config"
	kafka_middleware "bookable/pkg/kafka/middleware"
)

const ServiceName = "notifier"

func main() {
	cfg := config.Load(ServiceName)

	cfg.Log.Info("Starting notifier service")

	dispatcher := notifier.NewDispatcher(&notifier.LogSender{Log: cfg.Log}, cfg.Log)

	consumer, err := kafka.NewConsumer(
		kafka_config.Load(),
		cfg.NotifyTopic,
		cfg.NotifyGroupID,
		cfg.NotifyDLQTopic,
		dispatcher.Handle,
		cfg.Log,
	)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}
	consumer.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))
	consumer.Use(kafka_middleware.MetricsConsumerMiddleware())
	defer func() {
		if err := consumer.Close(); err != nil {
			cfg.Log.Warn("Failed to close Kafka consumer", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := consumer.Run(ctx); err != nil && ctx.Err() == nil {
		cfg.Log.Fatal("Consumer stopped with error", "error", err)
	}

	cfg.Log.Info("Notifier service stopped")
}
