package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/UnknownOlympus/hopmap/internal/config"
	"github.com/UnknownOlympus/hopmap/internal/metrics"
	"github.com/UnknownOlympus/hopmap/internal/search"
	"github.com/olekukonko/tablewriter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

type searchOptions struct {
	location string
	radius   float64
	catalog  string
}

func newSearchCmd() *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Run a single nearby search and print the results",
		Example: `  hopmap search --location Columbus --radius 10
  hopmap search --location 43215 --catalog breweries.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.MustLoad()
			if !cmd.Flags().Changed("radius") {
				opts.radius = cfg.Search.DefaultRadius
			}
			if opts.catalog == "" {
				opts.catalog = cfg.CatalogFile
			}

			return runSearch(cmd, cfg, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.location, "location", "l", "", "city, address or ZIP code to search around")
	cmd.Flags().Float64VarP(&opts.radius, "radius", "r", 0, "search radius in miles (default from configuration)")
	cmd.Flags().StringVar(&opts.catalog, "catalog", "", "YAML brewery catalog to search instead of the database")
	_ = cmd.MarkFlagRequired("location")

	return cmd
}

func runSearch(cmd *cobra.Command, cfg *config.Config, opts searchOptions) error {
	ctx := cmd.Context()
	logger := setupLogger(cfg.Env, cmd.ErrOrStderr())
	appMetrics := metrics.NewMetrics(prometheus.NewRegistry())

	provider, closeCache, err := buildProvider(ctx, cfg, logger, appMetrics)
	if err != nil {
		return err
	}
	defer closeCache()

	store, err := openCandidates(ctx, cfg, opts.catalog, logger)
	if err != nil {
		return err
	}
	defer store.close()

	breweries, err := store.source.ListBreweries(ctx)
	if err != nil {
		return err
	}

	outcome, err := newSearchService(cfg, provider, logger, appMetrics).Nearby(ctx, opts.location, opts.radius, breweries)
	if err != nil {
		return err
	}

	printOutcome(cmd.OutOrStdout(), outcome)

	return nil
}

func printOutcome(w io.Writer, outcome search.Outcome) {
	_, _ = fmt.Fprintf(w, "%s found (%s)\n", breweryCount(len(outcome.Results)), outcome.Mode)
	if len(outcome.Results) == 0 {
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Name", "City", "Address", "Distance"})
	table.SetAutoWrapText(false)
	for _, result := range outcome.Results {
		distance := "-"
		if result.DistanceMiles != nil {
			distance = strconv.FormatFloat(*result.DistanceMiles, 'f', 1, 64) + " mi"
		}
		table.Append([]string{result.Name, result.City, result.Address, distance})
	}
	table.Render()
}

func breweryCount(n int) string {
	if n == 1 {
		return "1 brewery"
	}
	return strconv.Itoa(n) + " breweries"
}
