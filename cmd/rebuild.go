package cmd

import (
	"context"

	"github.com/gnames/gn"
	"github.com/gnames/gntaxdb/internal/iojobs"
	"github.com/gnames/gntaxdb/pkg/lifecycle"
	"github.com/spf13/cobra"
)

// getRebuildCmd returns the rebuild command.
func getRebuildCmd() *cobra.Command {
	rebuildCmd := &cobra.Command{
		Use:   "rebuild",
		Short: "Recompute children of all taxa",
		Long: `Recompute parent-to-children links from lineages of annotations,
assemblies and organisms.

Only taxa whose children differ from the stored ones are written. Taxa
with more than one parent are reported as conflicts. It is safe to run
the command many times.

Examples:
  gntaxdb rebuild
  gntaxdb rebuild --jobs 16`,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runRebuild(cmd)
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}
	jobFlags(rebuildCmd)

	return rebuildCmd
}

func runRebuild(cmd *cobra.Command) error {
	cfg.Update(jobOptions(cmd))
	return runJob(cmd.Context(),
		func(ctx context.Context, r *iojobs.Runner) (lifecycle.Summary, error) {
			return r.RunFullRebuild(ctx)
		},
	)
}
