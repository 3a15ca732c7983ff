package main

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the search result cache",
	}
	cacheCmd.AddCommand(newCacheStatsCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))
	return cacheCmd
}

func newCacheStatsCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show cache entry count, memory estimate, and hit rates",
		RunE: func(cmd *cobra.Command, args []string) error {
			aggregator, err := ctx.ensureAggregator()
			if err != nil {
				return err
			}
			stats := aggregator.CacheStats()

			if jsonOutput {
				return writeJSON(cmd, stats)
			}

			rows := [][]string{
				{"Entries", strconv.Itoa(stats.Entries)},
				{"Estimated size", humanize.Bytes(uint64(stats.EstimatedBytes))},
				{"Hits", strconv.FormatUint(stats.Hits, 10)},
				{"Misses", strconv.FormatUint(stats.Misses, 10)},
				{"Evictions", strconv.FormatUint(stats.Evictions, 10)},
			}
			fmt.Fprintln(cmd.OutOrStdout(),
				renderTable([]string{"Metric", "Value"}, rows, []columnAlignment{alignLeft, alignRight}))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of a table")
	return cmd
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Invalidate every cached search result",
		RunE: func(cmd *cobra.Command, args []string) error {
			aggregator, err := ctx.ensureAggregator()
			if err != nil {
				return err
			}
			aggregator.InvalidateCache()
			fmt.Fprintln(cmd.OutOrStdout(), "Cache cleared.")
			return nil
		},
	}
}
