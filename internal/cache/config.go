package cache

import (
	"context"
	"time"

	"github.com/sitesmith-ai/sitesmith/internal/logging"
	"github.com/sitesmith-ai/sitesmith/pkg/types"
)

// FromConfig builds a Cache from the application configuration. A nil config
// yields an in-memory cache with the default TTL. When redis is configured
// but unreachable the cache degrades to memory rather than failing startup.
func FromConfig(ctx context.Context, cfg *types.CacheConfig) *Cache {
	var opts []Option
	if cfg != nil && cfg.TTLHours > 0 {
		opts = append(opts, WithTTL(time.Duration(cfg.TTLHours)*time.Hour))
	}

	if cfg != nil && cfg.Backend == "redis" {
		backend, err := NewRedisBackend(ctx, &RedisConfig{
			Addr: cfg.RedisAddr,
			DB:   cfg.RedisDB,
		})
		if err == nil {
			return New(backend, opts...)
		}
		logger := logging.Component("cache")
		logger.Warn().Err(err).Msg("Redis unavailable, falling back to in-memory cache")
	}

	return New(NewMemoryBackend(), opts...)
}
