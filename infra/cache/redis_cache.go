package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/amirasaad/tokenswap/pkg/domain"
	"github.com/redis/go-redis/v9"
)

// RedisQuoteCache stores quote lists as JSON values in Redis.
type RedisQuoteCache struct {
	client *redis.Client
	prefix string
	logger *slog.Logger
}

// NewRedisQuoteCache creates a cache on top of an existing client.
func NewRedisQuoteCache(client *redis.Client, prefix string, logger *slog.Logger) *RedisQuoteCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisQuoteCache{client: client, prefix: prefix, logger: logger.With("component", "redis-quote-cache")}
}

// NewRedisQuoteCacheWithOptions creates the client from redis.Options.
func NewRedisQuoteCacheWithOptions(opt *redis.Options, prefix string, logger *slog.Logger) *RedisQuoteCache {
	return NewRedisQuoteCache(redis.NewClient(opt), prefix, logger)
}

func (r *RedisQuoteCache) key(key string) string {
	return r.prefix + key
}

// Get returns the cached quotes, or nil on a miss.
func (r *RedisQuoteCache) Get(ctx context.Context, key string) ([]domain.Quote, error) {
	val, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		r.logger.Debug("Redis cache miss", "key", key)
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Redis cache get error", "key", key, "error", err)
		return nil, err
	}
	var quotes []domain.Quote
	if err := json.Unmarshal(val, &quotes); err != nil {
		r.logger.Error("Redis cache unmarshal error", "key", key, "error", err)
		return nil, err
	}
	r.logger.Debug("Redis cache hit", "key", key, "quotes", len(quotes))
	return quotes, nil
}

// Set stores quotes under key for ttl.
func (r *RedisQuoteCache) Set(ctx context.Context, key string, quotes []domain.Quote, ttl time.Duration) error {
	data, err := json.Marshal(quotes)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.key(key), data, ttl).Err(); err != nil {
		r.logger.Error("Redis cache set error", "key", key, "error", err)
		return err
	}
	r.logger.Debug("Redis cache set", "key", key, "quotes", len(quotes), "ttl", ttl)
	return nil
}

// Delete removes key.
func (r *RedisQuoteCache) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.key(key)).Err()
}

// Close closes the underlying client.
func (r *RedisQuoteCache) Close() error {
	return r.client.Close()
}
