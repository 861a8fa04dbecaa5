package main

import (
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "hopmap",
		Short: "Find breweries near a location",
		Long: `hopmap searches a brewery directory by distance from a free-text location.

Locations are geocoded through Google Maps or Nominatim. When a location cannot be
geocoded the search falls back to matching city names, addresses and ZIP prefixes.`,
		SilenceUsage: true,
	}

	root.AddCommand(newServeCmd(), newSearchCmd())

	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
