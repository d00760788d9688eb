package cmd

import (
	"context"

	"github.com/gnames/gn"
	"github.com/gnames/gntaxdb/internal/iofs"
	"github.com/gnames/gntaxdb/internal/iojobs"
	"github.com/gnames/gntaxdb/pkg/config"
	"github.com/gnames/gntaxdb/pkg/lifecycle"
	"github.com/spf13/cobra"
)

// getUpdateCmd returns the update command.
func getUpdateCmd() *cobra.Command {
	updateCmd := &cobra.Command{
		Use:   "update",
		Short: "Run the whole taxonomy pipeline",
		Long: `Run all taxonomy jobs in order:

  1. sync: resolve lineages of new organisms
  2. fallback: fill empty lineages of assemblies and annotations
  3. refresh: fetch lineages of stored organisms again
  4. rebuild: recompute children of all taxa
  5. stats: compute rollup counts and gene statistics

The pipeline stops at the first job that fails. Skipped taxids and failed
batches do not stop it. Downloads left in the lineage cache by interrupted
runs are removed first.

Examples:
  gntaxdb update
  gntaxdb update --metrics-file /var/lib/node_exporter/gntaxdb.prom`,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runUpdate(cmd)
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}
	jobFlags(updateCmd)

	return updateCmd
}

func runUpdate(cmd *cobra.Command) error {
	cfg.Update(jobOptions(cmd))
	if err := iofs.ClearDir(config.LineageCacheDir(cfg.HomeDir)); err != nil {
		return err
	}
	return runJob(cmd.Context(),
		func(ctx context.Context, r *iojobs.Runner) (lifecycle.Summary, error) {
			return r.RunUpdate(ctx)
		},
	)
}
