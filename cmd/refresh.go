package cmd

import (
	"context"

	"github.com/gnames/gn"
	"github.com/gnames/gntaxdb/internal/iojobs"
	"github.com/gnames/gntaxdb/pkg/lifecycle"
	"github.com/spf13/cobra"
)

// getRefreshCmd returns the refresh command.
func getRefreshCmd() *cobra.Command {
	refreshCmd := &cobra.Command{
		Use:   "refresh",
		Short: "Fetch lineages of all stored organisms again",
		Long: `Fetch lineages of all stored organisms from the ENA taxonomy service.

Names of organisms and taxa are updated in place. When the service reports
a different lineage, the organism gets the new lineage, assemblies and
annotations of the organism are rewritten and new ancestors are added to
the tree.

Before refresh, assemblies and annotations without lineage get lineages of
their organisms, and annotations that disagree with their assembly are
realigned.

Examples:
  gntaxdb refresh`,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runRefresh(cmd)
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}
	jobFlags(refreshCmd)

	return refreshCmd
}

func runRefresh(cmd *cobra.Command) error {
	cfg.Update(jobOptions(cmd))
	return runJob(cmd.Context(),
		func(ctx context.Context, r *iojobs.Runner) (lifecycle.Summary, error) {
			return r.RunRefresh(ctx)
		},
	)
}
