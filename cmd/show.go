package cmd

import (
	"github.com/gnames/gn"
	"github.com/gnames/gntaxdb/internal/iobrowse"
	"github.com/spf13/cobra"
)

// getShowCmd returns the show command.
func getShowCmd() *cobra.Command {
	var ancestors, compact bool

	showCmd := &cobra.Command{
		Use:   "show <taxid>",
		Short: "Show a taxon with its children or ancestors",
		Long: `Show a taxon as JSON together with its child taxa.

With --ancestors the command prints the path from the most general taxon
down to the given one. When a taxon has more than one parent, the parent
with the greatest taxid is followed.

Examples:
  gntaxdb show 9606
  gntaxdb show 9606 --ancestors`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runShow(cmd, args[0], ancestors, !compact)
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}

	showCmd.Flags().BoolVarP(&ancestors, "ancestors", "a", false,
		"print ancestors instead of children")
	showCmd.Flags().BoolVarP(&compact, "compact", "c", false,
		"print compact JSON")

	return showCmd
}

func runShow(cmd *cobra.Command, taxid string, ancestors, pretty bool) error {
	ctx := cmd.Context()
	op, st, err := connect(ctx)
	if err != nil {
		return err
	}
	defer op.Close()

	br := iobrowse.New(st)
	if ancestors {
		res, err := br.Ancestors(ctx, taxid)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), toNodesOut(res), pretty)
	}

	n, children, err := br.Node(ctx, taxid)
	if err != nil {
		return err
	}
	out := nodeWithChildren{
		nodeOut:    toNodeOut(*n),
		ChildNodes: toNodesOut(children),
	}
	return printJSON(cmd.OutOrStdout(), out, pretty)
}
