package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "sitesmith:cache:"

// RedisBackend stores entries in Redis so a cache can be shared across
// server instances. Redis expires keys natively; the Cache layer's TTL
// check still applies as a second guard against clock skew.
type RedisBackend struct {
	rdb *redis.Client
}

// RedisConfig holds connection settings for the Redis backend.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisBackend connects to Redis and verifies the connection.
func NewRedisBackend(ctx context.Context, cfg *RedisConfig) (*RedisBackend, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisBackend{rdb: rdb}, nil
}

// Get returns the entry for fingerprint, or nil on miss.
func (r *RedisBackend) Get(ctx context.Context, fingerprint string) (*Entry, error) {
	data, err := r.rdb.Get(ctx, redisKeyPrefix+fingerprint).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("corrupt cache entry: %w", err)
	}
	return &entry, nil
}

// Set stores an entry with the given TTL.
func (r *RedisBackend) Set(ctx context.Context, entry *Entry, ttl time.Duration) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, redisKeyPrefix+entry.Fingerprint, data, ttl).Err()
}

// Delete removes an entry.
func (r *RedisBackend) Delete(ctx context.Context, fingerprint string) error {
	return r.rdb.Del(ctx, redisKeyPrefix+fingerprint).Err()
}

// Close releases the underlying connection pool.
func (r *RedisBackend) Close() error {
	return r.rdb.Close()
}
