package cmd

import (
	"context"

	"github.com/gnames/gn"
	"github.com/gnames/gntaxdb/internal/iojobs"
	"github.com/gnames/gntaxdb/pkg/lifecycle"
	"github.com/spf13/cobra"
)

// getStatsCmd returns the stats command.
func getStatsCmd() *cobra.Command {
	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Compute rollup counts and gene statistics",
		Long: `Compute counters and gene count statistics of every taxon.

This command:
  1. Counts annotations, assemblies and organisms under every taxon
  2. Counts annotations and assemblies of every organism
  3. Removes taxa and organisms without annotations
  4. Computes mean, median, standard deviation, min and max of coding,
     non-coding and pseudogene counts of annotations under every taxon

Run 'gntaxdb rebuild' first, so removal of taxa sees a correct tree.

Examples:
  gntaxdb stats`,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runStats(cmd)
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}
	jobFlags(statsCmd)

	return statsCmd
}

func runStats(cmd *cobra.Command) error {
	cfg.Update(jobOptions(cmd))
	return runJob(cmd.Context(),
		func(ctx context.Context, r *iojobs.Runner) (lifecycle.Summary, error) {
			return r.RunStatsAggregation(ctx)
		},
	)
}
