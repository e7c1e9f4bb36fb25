package redis

import (
	"ad-server/internal/config"
	"ad-server/internal/observability"
	"ad-server/internal/store"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client wraps the Redis client with observability. A nil *Client is safe to
// use: every method degrades to a cache miss.
type Client struct {
	client *redis.Client
	logger *observability.Logger
}

// NewClient creates a new Redis client for the campaign cache
func NewClient(cfg config.RedisConfig, logger *observability.Logger) (*Client, error) {
	if !cfg.CacheEnabled {
		logger.Info(context.Background(), "campaign cache is disabled, skipping redis client initialization")
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info(ctx, "connected to redis")
	return &Client{
		client: client,
		logger: logger,
	}, nil
}

// Close closes the Redis connection
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

const activeCampaignsKey = "ads:active_campaigns"

// GetCampaigns returns the cached active-campaign snapshot. The second
// return value reports whether the snapshot was present.
func (c *Client) GetCampaigns(ctx context.Context) ([]store.AdCampaign, bool, error) {
	if c == nil || c.client == nil {
		return nil, false, nil
	}

	payload, err := c.client.Get(ctx, activeCampaignsKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read campaign cache: %w", err)
	}

	var campaigns []store.AdCampaign
	if err := json.Unmarshal(payload, &campaigns); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal campaign cache: %w", err)
	}
	return campaigns, true, nil
}

// SetCampaigns stores the active-campaign snapshot with the given TTL
func (c *Client) SetCampaigns(ctx context.Context, campaigns []store.AdCampaign, ttl time.Duration) error {
	if c == nil || c.client == nil {
		return nil
	}

	payload, err := json.Marshal(campaigns)
	if err != nil {
		return fmt.Errorf("failed to marshal campaign cache: %w", err)
	}
	if err := c.client.Set(ctx, activeCampaignsKey, payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write campaign cache: %w", err)
	}
	return nil
}
