package market

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ErrCacheMiss is returned by Cache.Get when the key is absent
var ErrCacheMiss = errors.New("cache miss")

// Cache is the byte store behind CachedSource
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// RedisCache implements Cache with go-redis
type RedisCache struct {
	client redis.Cmdable
}

func NewRedisCache(client redis.Cmdable) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get from cache: %w", err)
	}
	return b, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set in cache: %w", err)
	}
	return nil
}

// CachedSource is a read-through cache in front of another source. Cache
// failures are logged; they never fail the quote.
type CachedSource struct {
	cache Cache
	next  PriceSource
	ttl   time.Duration
}

func NewCachedSource(cache Cache, next PriceSource, ttl time.Duration) *CachedSource {
	return &CachedSource{cache: cache, next: next, ttl: ttl}
}

func cacheKey(crop string) string {
	return "market:quote:" + crop
}

func (s *CachedSource) Quote(ctx context.Context, crop string) (Quote, bool, error) {
	b, err := s.cache.Get(ctx, cacheKey(crop))
	switch {
	case err == nil:
		var q Quote
		if jsonErr := json.Unmarshal(b, &q); jsonErr == nil {
			q.Source = "cache"
			return q, true, nil
		}
		log.Warn().Str("crop", crop).Msg("Discarding unreadable cached quote")
	case !errors.Is(err, ErrCacheMiss):
		log.Warn().Err(err).Str("crop", crop).Msg("Quote cache unavailable")
	}

	q, found, err := s.next.Quote(ctx, crop)
	if err != nil || !found {
		return q, found, err
	}

	if b, err := json.Marshal(q); err == nil {
		if err := s.cache.Set(ctx, cacheKey(crop), b, s.ttl); err != nil {
			log.Warn().Err(err).Str("crop", crop).Msg("Failed to cache quote")
		}
	}
	return q, true, nil
}
