package cmd

import (
	"github.com/gnames/gn"
	"github.com/gnames/gntaxdb/internal/iobrowse"
	"github.com/gnames/gntaxdb/pkg/taxon"
	"github.com/spf13/cobra"
)

// getListCmd returns the list command.
func getListCmd() *cobra.Command {
	var (
		q       taxon.Query
		ranks   bool
		compact bool
	)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List taxa of the tree",
		Long: `List taxa as JSON, one page at a time.

The filter matches a part of a scientific name (case-insensitive) or an
exact taxid. Taxa can be sorted by taxid, scientific_name, rank,
annotations_count, assemblies_count or organisms_count.

With --ranks the command prints the number of taxa per rank instead.

Examples:
  gntaxdb list --rank species --limit 50
  gntaxdb list -f homo -s annotations_count --desc
  gntaxdb list --taxids 9606,10090
  gntaxdb list --ranks`,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runList(cmd, q, ranks, !compact)
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}

	f := listCmd.Flags()
	f.StringVarP(&q.Filter, "filter", "f", "",
		"part of a scientific name or a taxid")
	f.StringVarP(&q.Rank, "rank", "r", "", "only taxa of this rank")
	f.StringSliceVarP(&q.TaxIDs, "taxids", "t", nil, "only these taxids")
	f.StringVarP(&q.SortBy, "sort", "s", "taxid", "field to sort by")
	f.BoolVar(&q.Desc, "desc", false, "sort in descending order")
	f.IntVarP(&q.Offset, "offset", "o", 0, "number of taxa to skip")
	f.IntVarP(&q.Limit, "limit", "l", 20, "maximum number of taxa")
	f.BoolVar(&ranks, "ranks", false, "print number of taxa per rank")
	f.BoolVarP(&compact, "compact", "c", false, "print compact JSON")

	return listCmd
}

func runList(cmd *cobra.Command, q taxon.Query, ranks, pretty bool) error {
	ctx := cmd.Context()
	op, st, err := connect(ctx)
	if err != nil {
		return err
	}
	defer op.Close()

	br := iobrowse.New(st)
	if ranks {
		res, err := br.Ranks(ctx)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), toRanksOut(res), pretty)
	}

	page, err := br.List(ctx, q)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), toPageOut(page), pretty)
}
