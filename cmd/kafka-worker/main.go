package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	kafkaClient "ad-server/internal/clients/kafka"
	"ad-server/internal/config"
	"ad-server/internal/observability"
	"ad-server/internal/store"
	"ad-server/internal/workers"
)

func main() {
	logger := observability.NewLogger()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	if cfg.Kafka.Brokers == "" {
		log.Fatal("KAFKA_BROKERS is not set")
	}

	logger.Info(ctx, "starting impression pipeline worker...")

	dataStore, err := store.New(cfg.Database.ConnectionString(), logger)
	if err != nil {
		log.Fatalf("failed to initialize store: %v", err)
	}

	consumer := kafkaClient.NewConsumer(kafkaClient.ConsumerConfig{
		Brokers: strings.Split(cfg.Kafka.Brokers, ","),
		Topic:   cfg.Kafka.Topic,
		GroupID: cfg.Kafka.ConsumerGroup,
	}, logger)

	writer := workers.NewImpressionWriter(&dataStore, logger)
	pool := workers.NewWorkerPool(workers.DefaultWorkerPoolConfig(), writer, logger)
	impressionConsumer := workers.NewImpressionConsumer(consumer, pool, logger)

	go func() {
		if err := impressionConsumer.Start(ctx); err != nil && ctx.Err() == nil {
			logger.Error(ctx, "impression consumer stopped with error", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info(ctx, "shutting down impression pipeline worker...")
	cancel()
	impressionConsumer.Stop(context.Background())
	logger.Info(ctx, "impression pipeline worker exited")
}
