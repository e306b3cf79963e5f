package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"PriceLens/internal/model"
)

// CachingFetcher decorates a Fetcher with a Redis read-through cache.
// Historical ranges rarely change, so entries live for ttl and are keyed by
// symbol and date range.
type CachingFetcher struct {
	inner     Fetcher
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

// NewCachingFetcher wraps inner. If ttl is 0 it defaults to 12 hours; an empty
// namespace becomes "prices". A nil client disables caching.
func NewCachingFetcher(rdb *redis.Client, ttl time.Duration, inner Fetcher, namespace string) *CachingFetcher {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	if namespace == "" {
		namespace = "prices"
	}
	return &CachingFetcher{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

func (c *CachingFetcher) Name() string { return c.inner.Name() + "+redis" }

// FetchDailyBars serves from cache when possible, otherwise from the inner
// fetcher, storing non-empty results. Cache failures never fail the fetch.
func (c *CachingFetcher) FetchDailyBars(ctx context.Context, symbol string, start, end time.Time) ([]model.OHLCV, error) {
	if c.rdb == nil {
		return c.inner.FetchDailyBars(ctx, symbol, start, end)
	}

	key := c.cacheKey(symbol, start, end)

	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out []model.OHLCV
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	out, err := c.inner.FetchDailyBars(ctx, symbol, start, end)
	if err != nil {
		return nil, err
	}

	// empty answers are often transient on the provider side
	if len(out) > 0 {
		if b, err := json.Marshal(out); err == nil {
			_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
		}
	}
	return out, nil
}

// Invalidate drops every cached range of symbol.
func (c *CachingFetcher) Invalidate(ctx context.Context, symbol string) error {
	if c.rdb == nil {
		return nil
	}
	pattern := fmt.Sprintf("%s:%s:*", c.namespace, safe(symbol))
	var cursor uint64
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			return nil
		}
	}
}

func (c *CachingFetcher) cacheKey(symbol string, start, end time.Time) string {
	return fmt.Sprintf("%s:%s:%s:%s",
		c.namespace,
		safe(symbol),
		start.UTC().Format(time.DateOnly),
		end.UTC().Format(time.DateOnly),
	)
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
