// Package cache short-circuits the generation round-trip for the designated
// low-cost model tier, keyed by a fingerprint of the full request.
package cache

import (
	"context"
	"time"

	"github.com/sitesmith-ai/sitesmith/internal/logging"
	"github.com/sitesmith-ai/sitesmith/pkg/types"
)

// DefaultTTL is how long a cached response stays valid.
const DefaultTTL = 24 * time.Hour

// Entry is one cached raw response, stored pre-parse.
type Entry struct {
	Fingerprint string    `json:"fingerprint"`
	Response    string    `json:"response"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Backend is the injectable key-value store behind the cache.
type Backend interface {
	// Get returns the entry for fingerprint, or nil on miss.
	Get(ctx context.Context, fingerprint string) (*Entry, error)

	// Set stores an entry; last writer wins on identical fingerprints.
	Set(ctx context.Context, entry *Entry, ttl time.Duration) error

	// Delete removes an entry. Deleting a missing entry is not an error.
	Delete(ctx context.Context, fingerprint string) error
}

// Cache enforces TTL and eligibility on top of a Backend.
type Cache struct {
	backend Backend
	ttl     time.Duration
	now     func() time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithTTL overrides the default TTL.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) { c.ttl = ttl }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// New creates a cache over the given backend.
func New(backend Backend, opts ...Option) *Cache {
	c := &Cache{
		backend: backend,
		ttl:     DefaultTTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Eligible reports whether requests for the model may use the cache. Only
// the designated low-cost tier is cacheable; everything else bypasses the
// cache unconditionally.
func (c *Cache) Eligible(model *types.Model) bool {
	return model != nil && model.Cacheable
}

// Lookup returns the cached raw text for fingerprint, or miss. Expired
// entries are purged opportunistically and reported as a miss.
func (c *Cache) Lookup(ctx context.Context, fingerprint string) (string, bool) {
	entry, err := c.backend.Get(ctx, fingerprint)
	if err != nil {
		// A broken backend degrades to a live request, never a failure
		logger := logging.Component("cache")
		logger.Warn().Err(err).Msg("Cache lookup failed")
		return "", false
	}
	if entry == nil {
		return "", false
	}

	if c.now().Sub(entry.CreatedAt) >= c.ttl {
		if err := c.backend.Delete(ctx, fingerprint); err != nil {
			logger := logging.Component("cache")
			logger.Warn().Err(err).Msg("Failed to purge expired entry")
		}
		return "", false
	}

	return entry.Response, true
}

// Store saves the raw response text under fingerprint.
func (c *Cache) Store(ctx context.Context, fingerprint, response string) error {
	return c.backend.Set(ctx, &Entry{
		Fingerprint: fingerprint,
		Response:    response,
		CreatedAt:   c.now(),
	}, c.ttl)
}
