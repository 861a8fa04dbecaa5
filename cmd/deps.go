package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/UnknownOlympus/hopmap/internal/catalog"
	"github.com/UnknownOlympus/hopmap/internal/config"
	"github.com/UnknownOlympus/hopmap/internal/geocoding"
	"github.com/UnknownOlympus/hopmap/internal/metrics"
	"github.com/UnknownOlympus/hopmap/internal/repository"
	"github.com/UnknownOlympus/hopmap/internal/search"
	"github.com/redis/go-redis/v9"
)

// buildProvider creates the configured geocoding provider, wrapped in the Redis cache
// when one is configured and reachable. The returned func releases the cache client.
func buildProvider(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	appMetrics *metrics.Metrics,
) (geocoding.Provider, func(), error) {
	provider, err := geocoding.NewProvider(geocoding.ProviderConfig{
		Type:             geocoding.ProviderType(cfg.Provider.Type),
		APIKey:           cfg.Provider.APIKey,
		RateLimit:        cfg.Provider.RateLimit,
		BaseURL:          cfg.Provider.BaseURL,
		AddressFallbacks: cfg.Provider.AddressFallbacks,
		Logger:           logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create geocoding provider: %w", err)
	}

	logger.InfoContext(ctx, "Geocoding provider initialized", "type", cfg.Provider.Type)

	if cfg.Redis.Addr == "" {
		return provider, func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err = client.Ping(ctx).Err(); err != nil {
		logger.WarnContext(ctx, "Redis unavailable, geocode cache disabled", "addr", cfg.Redis.Addr, "error", err)
		_ = client.Close()
		return provider, func() {}, nil
	}

	logger.InfoContext(ctx, "Geocode cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.TTL)
	cache := geocoding.NewRedisCache(client, cfg.Redis.TTL)

	return geocoding.NewCachedProvider(provider, cache, logger, appMetrics), func() { _ = client.Close() }, nil
}

// candidates is the brewery source for a command. repo is nil for a file catalog.
type candidates struct {
	source search.CandidateSource
	repo   *repository.Repository
	close  func()
}

// openCandidates loads the catalog file when catalogFile is set and connects to Postgres otherwise.
func openCandidates(
	ctx context.Context,
	cfg *config.Config,
	catalogFile string,
	logger *slog.Logger,
) (candidates, error) {
	if catalogFile != "" {
		cat, err := catalog.Load(catalogFile)
		if err != nil {
			return candidates{}, err
		}
		logger.InfoContext(ctx, "Brewery catalog loaded", "file", catalogFile, "breweries", cat.Len())

		return candidates{source: cat, close: func() {}}, nil
	}

	pool, err := repository.NewDatabase(
		ctx, cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Password, cfg.Database.Name,
	)
	if err != nil {
		return candidates{}, fmt.Errorf("failed to connect to DB: %w", err)
	}

	repo := repository.NewRepository(pool, logger)
	if err = repo.Migrate(ctx); err != nil {
		pool.Close()
		return candidates{}, err
	}

	return candidates{source: repo, repo: repo, close: pool.Close}, nil
}

func newSearchService(
	cfg *config.Config,
	provider geocoding.Provider,
	logger *slog.Logger,
	appMetrics *metrics.Metrics,
) *search.Service {
	resolver := search.NewResolver(provider, cfg.Provider.Type, cfg.Region, logger, appMetrics)

	return search.NewService(resolver, logger, appMetrics,
		search.WithBroadMatchThreshold(cfg.Search.BroadMatchThreshold),
		search.WithGeocodeTimeout(cfg.Search.GeocodeTimeout),
	)
}
