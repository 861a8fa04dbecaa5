package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/UnknownOlympus/hopmap/internal/metrics"
	"github.com/UnknownOlympus/hopmap/internal/models"
	"github.com/redis/go-redis/v9"
)

// ErrNotCached is returned by a Cache when the key has no stored coordinates.
var ErrNotCached = errors.New("coordinates not cached")

const cacheKeyPrefix = "hopmap:geocode:"

// Cache stores resolved coordinates keyed by the normalized geocoding query.
type Cache interface {
	Get(ctx context.Context, key string) (*models.Coordinates, error)
	Set(ctx context.Context, key string, coords models.Coordinates) error
}

// RedisCache is a Cache backed by Redis string values holding JSON coordinates.
type RedisCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisCache creates a cache whose entries expire after ttl. A zero ttl keeps entries forever.
func NewRedisCache(client redis.Cmdable, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// Get returns the cached coordinates or ErrNotCached.
func (rc *RedisCache) Get(ctx context.Context, key string) (*models.Coordinates, error) {
	payload, err := rc.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotCached
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cached coordinates: %w", err)
	}

	var coords models.Coordinates
	if err = json.Unmarshal(payload, &coords); err != nil {
		return nil, fmt.Errorf("failed to decode cached coordinates: %w", err)
	}

	return &coords, nil
}

// Set stores the coordinates under key.
func (rc *RedisCache) Set(ctx context.Context, key string, coords models.Coordinates) error {
	payload, err := json.Marshal(coords)
	if err != nil {
		return fmt.Errorf("failed to encode coordinates: %w", err)
	}

	if err = rc.client.Set(ctx, key, payload, rc.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache coordinates: %w", err)
	}

	return nil
}

// CachedProvider answers repeated queries from a Cache and delegates misses to the wrapped Provider.
// Cache failures are logged and bypassed. Failed geocodes are not cached.
type CachedProvider struct {
	next    Provider
	cache   Cache
	log     *slog.Logger
	metrics *metrics.Metrics
}

// NewCachedProvider wraps next with cache.
func NewCachedProvider(next Provider, cache Cache, log *slog.Logger, metrics *metrics.Metrics) *CachedProvider {
	return &CachedProvider{next: next, cache: cache, log: log, metrics: metrics}
}

// Geocode implements Provider.
func (cp *CachedProvider) Geocode(ctx context.Context, address string) (*models.Coordinates, error) {
	key := CacheKey(address)

	coords, err := cp.cache.Get(ctx, key)
	switch {
	case err == nil:
		cp.metrics.CacheLookups.WithLabelValues("hit").Inc()
		cp.log.DebugContext(ctx, "Geocode cache hit", "address", address)
		return coords, nil
	case errors.Is(err, ErrNotCached):
		cp.metrics.CacheLookups.WithLabelValues("miss").Inc()
	default:
		cp.metrics.CacheLookups.WithLabelValues("error").Inc()
		cp.log.WarnContext(ctx, "Geocode cache unavailable", "address", address, "error", err)
	}

	coords, err = cp.next.Geocode(ctx, address)
	if err != nil {
		return nil, err
	}
	if coords == nil {
		return nil, ErrEmptyResponse
	}

	if err = cp.cache.Set(ctx, key, *coords); err != nil {
		cp.log.WarnContext(ctx, "Failed to store geocode result", "address", address, "error", err)
	}

	return coords, nil
}

// CacheKey normalizes a query so that "Columbus, Ohio" and " columbus,  ohio" share an entry.
func CacheKey(address string) string {
	return cacheKeyPrefix + strings.Join(strings.Fields(strings.ToLower(address)), " ")
}
