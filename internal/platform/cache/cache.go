// Package cache stores computed series in redis as msgpack blobs
package cache

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"epimetrics/internal/platform/logger"
	"epimetrics/internal/platform/metrics"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/sync/singleflight"
)

// Cache is a prefixed key space in redis; a nil *Cache or nil client disables caching
type Cache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	group  singleflight.Group
}

// New returns a cache writing keys under prefix with the given ttl
func New(client *redis.Client, prefix string, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Cache{client: client, prefix: prefix + ":", ttl: ttl}
}

// Enabled reports whether calls reach redis
func (c *Cache) Enabled() bool { return c != nil && c.client != nil }

func (c *Cache) key(k string) string { return c.prefix + k }

// Get decodes the value under key into dest; found=false on a miss
func (c *Cache) Get(ctx context.Context, key string, dest any) (found bool, err error) {
	if !c.Enabled() {
		return false, nil
	}
	b, err := c.client.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := msgpack.Unmarshal(b, dest); err != nil {
		return false, err
	}
	return true, nil
}

// Set encodes value and stores it with the cache ttl
func (c *Cache) Set(ctx context.Context, key string, value any) error {
	if !c.Enabled() {
		return nil
	}
	b, err := msgpack.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(key), b, c.ttl).Err()
}

// Key derives a stable key from op and a request value
func Key(op string, req any) (string, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(req); err != nil {
		return "", err
	}
	sum := sha256.Sum256(buf.Bytes())
	return op + ":" + hex.EncodeToString(sum[:12]), nil
}

// Remember returns the cached value for (op, req) or computes, stores and returns it.
// Redis failures are logged and bypassed; only fn's error reaches the caller.
// Concurrent misses for the same key share one fn call.
func Remember[T any](ctx context.Context, c *Cache, op string, req any, fn func(context.Context) (T, error)) (T, error) {
	if !c.Enabled() {
		return fn(ctx)
	}
	log := logger.C(ctx).With().Str("component", "cache").Str("op", op).Logger()

	key, err := Key(op, req)
	if err != nil {
		log.Warn().Err(err).Msg("cache key failed; bypassing")
		metrics.CacheErrors.WithLabelValues(op).Inc()
		return fn(ctx)
	}

	var out T
	found, err := c.Get(ctx, key, &out)
	switch {
	case err != nil:
		log.Warn().Err(err).Str("key", key).Msg("cache read failed; bypassing")
		metrics.CacheErrors.WithLabelValues(op).Inc()
	case found:
		metrics.CacheHits.WithLabelValues(op).Inc()
		return out, nil
	default:
		metrics.CacheMisses.WithLabelValues(op).Inc()
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		res, err := fn(ctx)
		if err != nil {
			return res, err
		}
		if serr := c.Set(ctx, key, res); serr != nil {
			log.Warn().Err(serr).Str("key", key).Msg("cache write failed")
			metrics.CacheErrors.WithLabelValues(op).Inc()
		}
		return res, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}
