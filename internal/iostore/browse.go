package iostore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gnames/gnfmt"
	"github.com/gnames/gntaxdb/pkg/taxon"
	"github.com/jackc/pgx/v5"
)

const nodeColumns = `taxid, scientific_name, canonical, name_id::text, rank,
  children, annotations_count, assemblies_count, organisms_count, stats`

func scanNode(row pgx.CollectableRow) (taxon.Node, error) {
	var res taxon.Node
	var id *string
	var doc []byte
	err := row.Scan(
		&res.TaxID, &res.ScientificName, &res.Canonical, &id, &res.Rank,
		&res.Children, &res.Annotations, &res.Assemblies, &res.Organisms,
		&doc,
	)
	if err != nil {
		return res, err
	}
	if id != nil {
		res.NameID = *id
	}
	if len(doc) > 0 {
		var st taxon.Stats
		enc := gnfmt.GNjson{}
		if err = enc.Decode(doc, &st); err != nil {
			return res, err
		}
		res.Stats = &st
	}
	return res, nil
}

func (s *pgstore) ListTaxa(ctx context.Context, q taxon.Query) (taxon.Page, error) {
	res := taxon.Page{Offset: q.Offset, Limit: q.Limit}

	var conds []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if q.Rank != "" {
		conds = append(conds, "rank = "+arg(q.Rank))
	}
	if len(q.TaxIDs) > 0 {
		conds = append(conds, "taxid = ANY("+arg(q.TaxIDs)+"::text[])")
	}
	if q.Filter != "" {
		p := arg(q.Filter)
		conds = append(conds, fmt.Sprintf(
			"(taxid = %s OR strpos(lower(scientific_name), lower(%s)) > 0)", p, p,
		))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int64
	err := s.pool.QueryRow(ctx, "SELECT count(*) FROM taxon_nodes"+where, args...).
		Scan(&total)
	if err != nil {
		return res, QueryError(taxaTbl, err)
	}
	res.Total = int(total)
	if res.Total == 0 || q.Offset >= res.Total {
		return res, nil
	}

	sortBy := q.SortBy
	if sortBy == "" {
		sortBy = "taxid"
	}
	dir := "ASC"
	if q.Desc {
		dir = "DESC"
	}
	order := fmt.Sprintf(" ORDER BY %s %s, taxid %s", ident(sortBy), dir, dir)
	page := fmt.Sprintf(" OFFSET %s LIMIT %s", arg(q.Offset), arg(q.Limit))

	query := "SELECT " + nodeColumns + " FROM taxon_nodes" + where + order + page
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return res, QueryError(taxaTbl, err)
	}
	res.Taxa, err = pgx.CollectRows(rows, scanNode)
	if err != nil {
		return res, QueryError(taxaTbl, err)
	}
	return res, nil
}

func (s *pgstore) RankFrequencies(ctx context.Context) ([]taxon.RankFrequency, error) {
	q := `
SELECT rank, count(*) FROM taxon_nodes
  GROUP BY rank
  ORDER BY 2 DESC, 1`
	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, QueryError(taxaTbl, err)
	}
	res, err := pgx.CollectRows(rows, func(r pgx.CollectableRow) (taxon.RankFrequency, error) {
		var rf taxon.RankFrequency
		var n int64
		err := r.Scan(&rf.Rank, &n)
		rf.Count = int(n)
		return rf, err
	})
	if err != nil {
		return nil, QueryError(taxaTbl, err)
	}
	return res, nil
}

func (s *pgstore) Taxon(ctx context.Context, taxid string) (*taxon.Node, error) {
	q := "SELECT " + nodeColumns + " FROM taxon_nodes WHERE taxid = $1"
	rows, err := s.pool.Query(ctx, q, taxid)
	if err != nil {
		return nil, QueryError(taxaTbl, err)
	}
	res, err := pgx.CollectExactlyOneRow(rows, scanNode)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, QueryError(taxaTbl, err)
	}
	return &res, nil
}

func (s *pgstore) TaxaByIDs(ctx context.Context, taxids []string) ([]taxon.Node, error) {
	q := "SELECT " + nodeColumns +
		" FROM taxon_nodes WHERE taxid = ANY($1) ORDER BY taxid"
	rows, err := s.pool.Query(ctx, q, taxids)
	if err != nil {
		return nil, QueryError(taxaTbl, err)
	}
	res, err := pgx.CollectRows(rows, scanNode)
	if err != nil {
		return nil, QueryError(taxaTbl, err)
	}
	return res, nil
}

func (s *pgstore) Parents(ctx context.Context, taxid string) ([]string, error) {
	q := `
SELECT taxid FROM taxon_nodes
  WHERE children @> ARRAY[$1::text]
  ORDER BY taxid`
	res, err := s.collectIDs(ctx, q, taxid)
	if err != nil {
		return nil, QueryError(taxaTbl, err)
	}
	return res, nil
}

// StreamTree pages through all taxa by taxid.
func (s *pgstore) StreamTree(ctx context.Context, fn func(taxon.Node) error) error {
	q := "SELECT " + nodeColumns + `
  FROM taxon_nodes
  WHERE taxid > $1
  ORDER BY taxid
  LIMIT $2`
	var last string
	for {
		rows, err := s.pool.Query(ctx, q, last, s.pageSize)
		if err != nil {
			return StreamError(taxaTbl, err)
		}
		page, err := pgx.CollectRows(rows, scanNode)
		if err != nil {
			return StreamError(taxaTbl, err)
		}
		for _, n := range page {
			if err = fn(n); err != nil {
				return err
			}
		}
		if len(page) < s.pageSize {
			return nil
		}
		last = page[len(page)-1].TaxID
	}
}
