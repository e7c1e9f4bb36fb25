package bootstrap

import (
	"ad-server/internal/config"
	"ad-server/internal/observability"
	"ad-server/internal/store"
	"context"
	"fmt"
	"strings"

	adsHandler "ad-server/internal/ads/handler"
	adsProcessor "ad-server/internal/ads/processor"
	affiliateHandler "ad-server/internal/affiliate/handler"
	affiliateProcessor "ad-server/internal/affiliate/processor"
	kafkaClient "ad-server/internal/clients/kafka"
	redisClient "ad-server/internal/clients/redis"
	fraudHandler "ad-server/internal/fraud/handler"
	fraudProcessor "ad-server/internal/fraud/processor"
	paymentsHandler "ad-server/internal/payments/handler"
	paymentsProcessor "ad-server/internal/payments/processor"
)

// Dependencies holds all initialized application dependencies
type Dependencies struct {
	// Core
	Store  store.Store
	Logger *observability.Logger

	// Handlers
	AdsHandler       adsHandler.Handler
	AffiliateHandler affiliateHandler.Handler
	FraudHandler     fraudHandler.Handler
	PaymentsHandler  paymentsHandler.Handler

	// Clients (for cleanup)
	KafkaProducer *kafkaClient.Producer
	RedisClient   *redisClient.Client
}

// Initialize sets up all application dependencies
func Initialize(ctx context.Context, cfg *config.Config, logger *observability.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Logger: logger,
	}

	dataStore, err := store.New(cfg.Database.ConnectionString(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}
	deps.Store = dataStore

	deps.RedisClient, err = redisClient.NewClient(cfg.Redis, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize redis client: %w", err)
	}

	// The impression pipeline is optional: without brokers the ads
	// processor writes impressions directly
	if cfg.Kafka.Brokers != "" {
		deps.KafkaProducer = kafkaClient.NewProducer(kafkaClient.ProducerConfig{
			Brokers: strings.Split(cfg.Kafka.Brokers, ","),
			Topic:   cfg.Kafka.Topic,
		}, logger)
	}

	var cache adsProcessor.CampaignCache
	if deps.RedisClient != nil {
		cache = deps.RedisClient
	}
	var publisher adsProcessor.ImpressionPublisher
	if deps.KafkaProducer != nil {
		publisher = deps.KafkaProducer
	}

	adsProc := adsProcessor.New(&deps.Store, cache, publisher, cfg.Ads, logger)
	deps.AdsHandler = adsHandler.New(adsProc, logger)

	affiliateProc := affiliateProcessor.New(&deps.Store, logger)
	deps.AffiliateHandler = affiliateHandler.New(affiliateProc, logger)

	fraudProc := fraudProcessor.New(&deps.Store, cfg.Fraud, logger)
	deps.FraudHandler = fraudHandler.New(fraudProc, logger)

	paymentsProc := paymentsProcessor.New(&deps.Store, &affiliateProc, cfg.Stripe.WebhookSecret, logger)
	deps.PaymentsHandler = paymentsHandler.New(paymentsProc, logger)

	return deps, nil
}

// Cleanup closes all client connections
func (d *Dependencies) Cleanup() {
	ctx := context.Background()
	if d.KafkaProducer != nil {
		if err := d.KafkaProducer.Close(); err != nil {
			d.Logger.Error(ctx, "failed to close kafka producer", err)
		}
	}
	if err := d.RedisClient.Close(); err != nil {
		d.Logger.Error(ctx, "failed to close redis client", err)
	}
}
