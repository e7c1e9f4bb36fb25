package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

var ErrEmptyEnvironmentVariable = errors.New("empty environment variable")

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Stripe   StripeConfig
	Ads      AdsConfig
	Fraud    FraudConfig
	Server   ServerConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string
	Username string
	Password string
	Name     string
}

// RedisConfig holds Redis connection settings. Redis backs the asynq job
// queue and the campaign snapshot cache; the cache is optional.
type RedisConfig struct {
	Addr         string
	Password     string
	DB           int
	CacheEnabled bool
}

// KafkaConfig holds the impression event stream configuration. When Brokers
// is empty the impression recorder falls back to direct database writes.
type KafkaConfig struct {
	Brokers       string
	Topic         string
	ConsumerGroup string
}

// StripeConfig holds payment webhook configuration
type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
}

// AdsConfig holds the ad decision parameters
type AdsConfig struct {
	MaxBidCents        int64
	RelevanceThreshold float64
	ServeTimeout       time.Duration
	CacheTTL           time.Duration
}

// FraudConfig holds fraud detection parameters
type FraudConfig struct {
	DefaultLookback time.Duration
	ScanInterval    time.Duration
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port      int
	WebAppURI string
}

// Load reads and validates all required environment variables
func Load() (*Config, error) {
	// Load env.local in non-production environments
	if os.Getenv("GO_ENV") != "production" {
		if err := godotenv.Load("env.local"); err != nil {
			return nil, fmt.Errorf("failed to load env.local: %w", err)
		}
	}

	cfg := &Config{}

	// Database configuration
	var err error
	if cfg.Database.Host, err = requireEnv("DB_HOST"); err != nil {
		return nil, err
	}
	if cfg.Database.Username, err = requireEnv("DB_USERNAME"); err != nil {
		return nil, err
	}
	if cfg.Database.Password, err = requireEnv("DB_PASSWORD"); err != nil {
		return nil, err
	}
	if cfg.Database.Name, err = requireEnv("DB_NAME"); err != nil {
		return nil, err
	}

	// Redis configuration
	if cfg.Redis.Addr, err = requireEnv("REDIS_ADDR"); err != nil {
		return nil, err
	}
	cfg.Redis.Password = os.Getenv("REDIS_PASSWORD")
	redisDB := getEnvWithDefault("REDIS_DB", "0")
	cfg.Redis.DB, err = strconv.Atoi(redisDB)
	if err != nil {
		return nil, fmt.Errorf("failed to parse REDIS_DB: %w", err)
	}
	cfg.Redis.CacheEnabled = getEnvWithDefault("CAMPAIGN_CACHE_ENABLED", "true") == "true"

	// Kafka configuration (optional: empty brokers disables the pipeline)
	cfg.Kafka.Brokers = os.Getenv("KAFKA_BROKERS")
	cfg.Kafka.Topic = getEnvWithDefault("KAFKA_TOPIC", "ad-impressions")
	cfg.Kafka.ConsumerGroup = getEnvWithDefault("KAFKA_CONSUMER_GROUP", "impression-writers")

	// Stripe configuration
	if cfg.Stripe.SecretKey, err = requireEnv("STRIPE_SECRET_KEY"); err != nil {
		return nil, err
	}
	if cfg.Stripe.WebhookSecret, err = requireEnv("STRIPE_WEBHOOK_SECRET"); err != nil {
		return nil, err
	}

	// Ad decision parameters
	maxBid := getEnvWithDefault("ADS_MAX_BID_CENTS", "10000")
	cfg.Ads.MaxBidCents, err = strconv.ParseInt(maxBid, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ADS_MAX_BID_CENTS: %w", err)
	}
	threshold := getEnvWithDefault("ADS_RELEVANCE_THRESHOLD", "0.3")
	cfg.Ads.RelevanceThreshold, err = strconv.ParseFloat(threshold, 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ADS_RELEVANCE_THRESHOLD: %w", err)
	}
	serveTimeoutMs := getEnvWithDefault("ADS_SERVE_TIMEOUT_MS", "150")
	timeoutMs, err := strconv.Atoi(serveTimeoutMs)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ADS_SERVE_TIMEOUT_MS: %w", err)
	}
	cfg.Ads.ServeTimeout = time.Duration(timeoutMs) * time.Millisecond
	cacheTTLSec := getEnvWithDefault("ADS_CACHE_TTL_SECONDS", "30")
	ttlSec, err := strconv.Atoi(cacheTTLSec)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ADS_CACHE_TTL_SECONDS: %w", err)
	}
	cfg.Ads.CacheTTL = time.Duration(ttlSec) * time.Second

	// Fraud detection parameters
	lookbackHours := getEnvWithDefault("FRAUD_LOOKBACK_HOURS", "24")
	lookback, err := strconv.Atoi(lookbackHours)
	if err != nil {
		return nil, fmt.Errorf("failed to parse FRAUD_LOOKBACK_HOURS: %w", err)
	}
	cfg.Fraud.DefaultLookback = time.Duration(lookback) * time.Hour
	scanIntervalHours := getEnvWithDefault("FRAUD_SCAN_INTERVAL_HOURS", "6")
	scanInterval, err := strconv.Atoi(scanIntervalHours)
	if err != nil {
		return nil, fmt.Errorf("failed to parse FRAUD_SCAN_INTERVAL_HOURS: %w", err)
	}
	cfg.Fraud.ScanInterval = time.Duration(scanInterval) * time.Hour

	// Server configuration
	serverPort, err := requireEnv("SERVER_PORT")
	if err != nil {
		return nil, err
	}
	cfg.Server.Port, err = strconv.Atoi(serverPort)
	if err != nil {
		return nil, fmt.Errorf("failed to parse SERVER_PORT: %w", err)
	}
	cfg.Server.WebAppURI = getEnvWithDefault("WEBAPP_URI", "http://localhost:3000")

	return cfg, nil
}

// ConnectionString returns a PostgreSQL connection string
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s/%s",
		c.Username, c.Password, c.Host, c.Name)
}

// requireEnv retrieves an environment variable or returns an error if empty
func requireEnv(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("%s is not set: %w", key, ErrEmptyEnvironmentVariable)
	}
	return value, nil
}

// getEnvWithDefault retrieves an environment variable or returns a default value
func getEnvWithDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
