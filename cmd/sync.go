package cmd

import (
	"context"

	"github.com/gnames/gn"
	"github.com/gnames/gntaxdb/internal/iojobs"
	"github.com/gnames/gntaxdb/pkg/lifecycle"
	"github.com/spf13/cobra"
)

// getSyncCmd returns the sync command.
func getSyncCmd() *cobra.Command {
	syncCmd := &cobra.Command{
		Use:   "sync [taxid...]",
		Short: "Resolve lineages of new organisms",
		Long: `Resolve lineages of organisms that are not in the database yet.

This command:
  1. Keeps taxids that already have an organism as they are
  2. Fetches lineages of other taxids from the ENA taxonomy service
  3. Stores new organisms and the taxa of their lineages
  4. Adds parent-to-children links of new lineages
  5. Writes lineages to assemblies when taxids come from them

Without arguments taxids are taken from assemblies and annotations.
Taxids that the service does not know, or that fail to download, are
skipped and reported in the summary.

Examples:
  gntaxdb sync
  gntaxdb sync 9606 10090
  gntaxdb sync -j 4 9606`,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runSync(cmd, args)
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}
	jobFlags(syncCmd)

	return syncCmd
}

func runSync(cmd *cobra.Command, taxids []string) error {
	cfg.Update(jobOptions(cmd))
	return runJob(cmd.Context(),
		func(ctx context.Context, r *iojobs.Runner) (lifecycle.Summary, error) {
			return r.RunIncrementalSync(ctx, taxids)
		},
	)
}
