package market

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/riftlabs/decisioncore/internal/metrics"
)

// RedisSeriesCache provides a Redis-backed, read-through cache of candle
// series in front of a CandleProvider.
type RedisSeriesCache struct {
	provider CandleProvider
	client   *redis.Client
	ttl      time.Duration
}

// seriesCacheEntry is the JSON shape stored in Redis.
type seriesCacheEntry struct {
	Series   CandleSeries `json:"series"`
	CachedAt time.Time    `json:"cached_at"`
}

// NewRedisSeriesCache wraps provider with a Redis read-through cache. If
// client is nil the cache is disabled and every call passes through to
// provider. A zero ttl defaults to 60 seconds.
func NewRedisSeriesCache(provider CandleProvider, client *redis.Client, ttl time.Duration) *RedisSeriesCache {
	if ttl == 0 {
		ttl = 60 * time.Second
	}
	return &RedisSeriesCache{provider: provider, client: client, ttl: ttl}
}

// Candles implements CandleProvider. On a cache hit it returns the cached
// series without calling the underlying provider. On a miss, or any Redis
// error, it falls through to the provider and writes the result back to
// Redis asynchronously and best-effort.
func (c *RedisSeriesCache) Candles(ctx context.Context, instrument Instrument, timeframe string, endTS time.Time, lookbackBars int) (CandleSeries, error) {
	if c.client == nil {
		return c.provider.Candles(ctx, instrument, timeframe, endTS, lookbackBars)
	}

	key := c.buildKey(instrument, timeframe, endTS, lookbackBars)

	cacheCtx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	cached, err := c.client.Get(cacheCtx, key).Result()
	cancel()
	metrics.RecordRedisOperation("get")

	if err == nil {
		var entry seriesCacheEntry
		if unmarshalErr := json.Unmarshal([]byte(cached), &entry); unmarshalErr == nil {
			log.Debug().
				Str("instrument", string(instrument)).
				Str("timeframe", timeframe).
				Time("cached_at", entry.CachedAt).
				Msg("candle series cache hit")
			return entry.Series, nil
		}
		log.Warn().Str("key", key).Msg("failed to unmarshal cached candle series")
	} else if err != redis.Nil {
		log.Debug().Err(err).Str("key", key).Msg("redis get error, treating as cache miss")
	}

	series, err := c.provider.Candles(ctx, instrument, timeframe, endTS, lookbackBars)
	if err != nil {
		return CandleSeries{}, err
	}

	go c.set(key, series)

	return series, nil
}

func (c *RedisSeriesCache) set(key string, series CandleSeries) {
	entry := seriesCacheEntry{Series: series, CachedAt: time.Now()}
	data, err := json.Marshal(entry)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to marshal candle series for caching")
		return
	}

	setCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	metrics.RecordRedisOperation("set")
	if err := c.client.Set(setCtx, key, data, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to cache candle series")
	}
}

// Invalidate removes the cached entry for instrument/timeframe/endTS/lookbackBars.
func (c *RedisSeriesCache) Invalidate(ctx context.Context, instrument Instrument, timeframe string, endTS time.Time, lookbackBars int) error {
	if c.client == nil {
		return fmt.Errorf("cache not initialized")
	}
	key := c.buildKey(instrument, timeframe, endTS, lookbackBars)
	cacheCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	metrics.RecordRedisOperation("del")
	return c.client.Del(cacheCtx, key).Err()
}

// Clear removes every cached candle series.
func (c *RedisSeriesCache) Clear(ctx context.Context) error {
	if c.client == nil {
		return fmt.Errorf("cache not initialized")
	}

	cacheCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	iter := c.client.Scan(cacheCtx, 0, "decisioncore:candles:*", 0).Iterator()
	count := 0
	for iter.Next(cacheCtx) {
		if err := c.client.Del(cacheCtx, iter.Val()).Err(); err != nil {
			log.Warn().Err(err).Str("key", iter.Val()).Msg("failed to delete cache key")
			continue
		}
		count++
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("cache scan error: %w", err)
	}

	log.Info().Int("keys_deleted", count).Msg("cleared candle series cache")
	return nil
}

// Health checks the Redis connection.
func (c *RedisSeriesCache) Health(ctx context.Context) error {
	if c.client == nil {
		return fmt.Errorf("cache not initialized")
	}
	cacheCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := c.client.Ping(cacheCtx).Err(); err != nil {
		return fmt.Errorf("redis health check failed: %w", err)
	}
	return nil
}

func (c *RedisSeriesCache) buildKey(instrument Instrument, timeframe string, endTS time.Time, lookbackBars int) string {
	return fmt.Sprintf("decisioncore:candles:%s:%s:%d:%d", instrument, timeframe, endTS.Unix(), lookbackBars)
}
