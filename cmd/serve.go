package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/UnknownOlympus/hopmap/internal/backfill"
	"github.com/UnknownOlympus/hopmap/internal/config"
	"github.com/UnknownOlympus/hopmap/internal/metrics"
	"github.com/UnknownOlympus/hopmap/internal/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP search API",
		Long: `Run the HTTP search API together with the optional coordinate backfill.

Configuration is read from the environment (a .env file is honoured) and from the
YAML file named by HOPMAP_CONFIG.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	// Canceled on SIGINT or SIGTERM for a graceful shutdown.
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoad()
	logger := setupLogger(cfg.Env, os.Stdout)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(reg)

	provider, closeCache, err := buildProvider(ctx, cfg, logger, appMetrics)
	if err != nil {
		return err
	}
	defer closeCache()

	store, err := openCandidates(ctx, cfg, cfg.CatalogFile, logger)
	if err != nil {
		return err
	}
	defer store.close()

	opts := []server.Option{server.WithDefaultRadius(cfg.Search.DefaultRadius)}
	if store.repo != nil {
		opts = append(opts, server.WithPinger(store.repo))
	}
	srv := server.New(logger, newSearchService(cfg, provider, logger, appMetrics), store.source, reg, opts...)

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return srv.ListenAndServe(gctx, cfg.Port)
	})

	switch {
	case !cfg.Backfill.Enabled:
	case store.repo == nil:
		logger.WarnContext(ctx, "Coordinate backfill needs a database, skipping it for the file catalog")
	default:
		worker := backfill.NewService(
			logger,
			store.repo,
			provider,
			cfg.Provider.Type,
			appMetrics,
			cfg.Backfill.Workers,
			cfg.Backfill.Interval,
			cfg.Region,
		)
		group.Go(func() error {
			worker.Run(gctx)
			return nil
		})
	}

	logger.InfoContext(ctx, "Application started. Press Ctrl+C to stop.")

	if err = group.Wait(); err != nil {
		logger.ErrorContext(ctx, "Application stopped with error", "error", err)
		return err
	}

	logger.InfoContext(ctx, "Application stopped gracefully.")

	return nil
}
