package location

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/saturnino-fabrica-de-software/presenca/internal/cache"
	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
)

// defaultFixTTL is how long a resolved network fix stays valid. IP
// geolocation data changes slowly, so an hour keeps the external services
// out of the hot path without serving stale mappings.
const defaultFixTTL = time.Hour

// FixCache is the subset of the TTL cache the resolver needs.
type FixCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedResolver fronts another resolver with a TTL cache keyed by IP.
// Cache failures are logged and treated as misses; the inner resolver is
// always the fallback.
type CachedResolver struct {
	inner  Resolver
	cache  FixCache
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedResolver wraps a resolver with the given cache.
func NewCachedResolver(inner Resolver, fixCache FixCache, logger *slog.Logger) *CachedResolver {
	return &CachedResolver{
		inner:  inner,
		cache:  fixCache,
		ttl:    defaultFixTTL,
		logger: logger,
	}
}

// WithTTL overrides the cache entry lifetime.
func (r *CachedResolver) WithTTL(ttl time.Duration) *CachedResolver {
	r.ttl = ttl
	return r
}

// Name implements Resolver.
func (r *CachedResolver) Name() string {
	return "cached:" + r.inner.Name()
}

// Resolve returns the cached fix for the IP when present, otherwise asks
// the inner resolver and stores the result.
func (r *CachedResolver) Resolve(ctx context.Context, ip string) (*domain.NetworkFix, error) {
	if ip == "" {
		return nil, ErrNoFix
	}

	key := "netfix:" + ip

	if data, err := r.cache.Get(ctx, key); err == nil {
		var fix domain.NetworkFix
		if err := json.Unmarshal(data, &fix); err == nil {
			return &fix, nil
		}
		// Corrupt entry, fall through to the inner resolver
	} else if !errors.Is(err, cache.ErrCacheMiss) && !errors.Is(err, cache.ErrCacheExpired) {
		if r.logger != nil {
			r.logger.Warn("network fix cache read failed", slog.String("error", err.Error()))
		}
	}

	fix, err := r.inner.Resolve(ctx, ip)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(fix); err == nil {
		if err := r.cache.Set(ctx, key, data, r.ttl); err != nil && r.logger != nil {
			r.logger.Warn("network fix cache write failed", slog.String("error", err.Error()))
		}
	}

	return fix, nil
}
