// Package cache keeps short-lived copies of reference data (material and
// supplier short codes, the primary production unit) in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultTTL bounds how stale a cached short code may be.
const DefaultTTL = 5 * time.Minute

const keyPrefix = "nimo-oil:ref:"

// Store is a byte-oriented key/value store.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// RedisStore is a Store on a go-redis client.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.rdb.Set(ctx, key, value, ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.rdb.Del(ctx, keys...).Err()
}

// ReferenceCache caches reference records as JSON. A nil *ReferenceCache, or
// one without a store, always loads from the database. Cache failures are
// logged and never fail the caller.
type ReferenceCache struct {
	store  Store
	ttl    time.Duration
	logger *zap.Logger
}

func NewReferenceCache(store Store, ttl time.Duration, logger *zap.Logger) *ReferenceCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReferenceCache{store: store, ttl: ttl, logger: logger}
}

func MaterialKey(id string) string { return keyPrefix + "material:" + id }
func SupplierKey(id string) string { return keyPrefix + "supplier:" + id }
func PrimaryUnitKey() string       { return keyPrefix + "unit:primary" }

// Fetch returns the cached value under key, or calls load and caches its
// result. Load errors are returned as-is and never cached.
func Fetch[T any](ctx context.Context, c *ReferenceCache, key string, load func(context.Context) (*T, error)) (*T, error) {
	if c == nil || c.store == nil {
		return load(ctx)
	}
	if raw, ok, err := c.store.Get(ctx, key); err != nil {
		c.logger.Warn("reference cache read failed", zap.String("key", key), zap.Error(err))
	} else if ok {
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			return &v, nil
		}
		c.logger.Warn("reference cache entry is corrupt", zap.String("key", key))
	}

	v, err := load(ctx)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(v); err == nil {
		if err := c.store.Set(ctx, key, raw, c.ttl); err != nil {
			c.logger.Warn("reference cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return v, nil
}

// Invalidate drops keys.
func (c *ReferenceCache) Invalidate(ctx context.Context, keys ...string) error {
	if c == nil || c.store == nil {
		return nil
	}
	return c.store.Delete(ctx, keys...)
}
