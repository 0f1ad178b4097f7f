package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/cypherlabdev/odds-scanner-service/internal/models"
)

// ErrCacheMiss is returned when nothing is cached under the key
var ErrCacheMiss = errors.New("entry not found in cache")

// RedisCache caches feed results for one refresh cycle and snapshots by ID
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// RedisCacheConfig holds Redis cache configuration
type RedisCacheConfig struct {
	Addr     string // e.g., "localhost:6379"
	Password string
	DB       int
	TTL      time.Duration // Refresh cycle, e.g. 2 * time.Minute
}

// NewRedisCache creates a new Redis cache
func NewRedisCache(config RedisCacheConfig, logger zerolog.Logger) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	return &RedisCache{
		client: client,
		ttl:    config.TTL,
		logger: logger.With().Str("component", "redis_cache").Logger(),
	}
}

// FeedKey builds the cache key of one feed result: feed:{feed}:{sport}
func FeedKey(feedName, sport string) string {
	if sport == "" {
		sport = "all"
	}
	return fmt.Sprintf("feed:%s:%s", feedName, sport)
}

// SnapshotKey builds the cache key of a snapshot: snapshot:{id}
func SnapshotKey(id uuid.UUID) string {
	return "snapshot:" + id.String()
}

// SetFeed caches a feed result, successful or failed, for one cycle
func (c *RedisCache) SetFeed(ctx context.Context, result *models.FeedResult) error {
	key := FeedKey(result.Feed, result.Sport)
	if err := c.set(ctx, key, result); err != nil {
		return err
	}

	c.logger.Debug().
		Str("key", key).
		Int("event_count", len(result.Events)).
		Bool("failed", result.Failure != nil).
		Dur("ttl", c.ttl).
		Msg("cached feed result")

	return nil
}

// GetFeed retrieves the cached result of a feed for a sport
func (c *RedisCache) GetFeed(ctx context.Context, feedName, sport string) (*models.FeedResult, error) {
	var result models.FeedResult
	if err := c.get(ctx, FeedKey(feedName, sport), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SetSnapshot caches a snapshot under its ID
func (c *RedisCache) SetSnapshot(ctx context.Context, snapshot *models.Snapshot) error {
	if err := c.set(ctx, SnapshotKey(snapshot.ID), snapshot); err != nil {
		return err
	}

	c.logger.Debug().
		Str("snapshot_id", snapshot.ID.String()).
		Dur("ttl", c.ttl).
		Msg("cached snapshot")

	return nil
}

// GetSnapshot retrieves a cached snapshot by its ID
func (c *RedisCache) GetSnapshot(ctx context.Context, id uuid.UUID) (*models.Snapshot, error) {
	var snapshot models.Snapshot
	if err := c.get(ctx, SnapshotKey(id), &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func (c *RedisCache) set(ctx context.Context, key string, value any) error {
	// Serialize to JSON
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set in Redis: %w", err)
	}
	return nil
}

func (c *RedisCache) get(ctx context.Context, key string, dest any) error {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	} else if err != nil {
		return fmt.Errorf("failed to get from Redis: %w", err)
	}

	// Deserialize
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}

	return nil
}

// Ping checks Redis connection
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}
