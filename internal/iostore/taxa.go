package iostore

import (
	"context"
	"slices"

	"github.com/gnames/gnfmt"
	"github.com/gnames/gntaxdb/pkg/hierarchy"
	"github.com/gnames/gntaxdb/pkg/taxon"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

func (s *pgstore) ExistingTaxa(ctx context.Context, taxids []string) ([]string, error) {
	q := `SELECT taxid FROM taxon_nodes WHERE taxid = ANY($1)`
	res, err := s.collectIDs(ctx, q, taxids)
	if err != nil {
		return nil, QueryError(taxaTbl, err)
	}
	return res, nil
}

// nameID converts a string UUID to its database value. Malformed or empty
// values become NULL.
func nameID(s string) pgtype.UUID {
	u, err := uuid.Parse(s)
	if err != nil {
		return pgtype.UUID{}
	}
	return pgtype.UUID{Bytes: u, Valid: true}
}

// InsertTaxa copies nodes into the table. A duplicate rejects the whole
// batch.
func (s *pgstore) InsertTaxa(ctx context.Context, nodes []taxon.Node) error {
	if len(nodes) == 0 {
		return nil
	}
	columns := []string{
		"taxid", "scientific_name", "canonical", "name_id", "rank", "children",
	}
	src := pgx.CopyFromSlice(len(nodes), func(i int) ([]any, error) {
		n := nodes[i]
		rank := n.Rank
		if rank == "" {
			rank = taxon.RankOther
		}
		return []any{
			n.TaxID, n.ScientificName, n.Canonical, nameID(n.NameID),
			rank, nonNil(n.Children),
		}, nil
	})
	_, err := s.pool.CopyFrom(ctx, pgx.Identifier{taxaTbl}, columns, src)
	if err != nil {
		return InsertError(taxaTbl, len(nodes), err)
	}
	return nil
}

func (s *pgstore) UpdateTaxa(ctx context.Context, nodes []taxon.Node) (int, error) {
	if len(nodes) == 0 {
		return 0, nil
	}
	q := `
UPDATE taxon_nodes
  SET scientific_name = $2, rank = $3, canonical = $4, name_id = $5
  WHERE taxid = $1
    AND (scientific_name, rank, canonical, name_id)
      IS DISTINCT FROM ($2, $3, $4, $5)`
	b := &pgx.Batch{}
	for _, n := range nodes {
		b.Queue(q, n.TaxID, n.ScientificName, n.Rank, n.Canonical, nameID(n.NameID))
	}
	br := s.pool.SendBatch(ctx, b)
	defer br.Close()

	var res int
	for range nodes {
		tag, err := br.Exec()
		if err != nil {
			return res, UpdateError(taxaTbl, err)
		}
		res += int(tag.RowsAffected())
	}
	return res, nil
}

func (s *pgstore) DeleteTaxa(ctx context.Context, taxids []string) (int, error) {
	q := `DELETE FROM taxon_nodes WHERE taxid = ANY($1)`
	n, err := s.exec(ctx, q, taxids)
	if err != nil {
		return 0, DeleteError(taxaTbl, err)
	}
	return n, nil
}

// AddChildren merges children into parents with one statement. Parents
// that already contain all their new children are not touched.
func (s *pgstore) AddChildren(ctx context.Context, edges []taxon.Edge) error {
	if len(edges) == 0 {
		return nil
	}
	parents := make([]string, len(edges))
	children := make([]string, len(edges))
	for i, e := range edges {
		parents[i] = e.Parent
		children[i] = e.Child
	}
	q := `
UPDATE taxon_nodes t
  SET children = ARRAY(
    SELECT u.c FROM (
      SELECT DISTINCT c FROM unnest(t.children || e.kids) AS c
    ) u
      ORDER BY u.c COLLATE "C"
  )
  FROM (
    SELECT parent, array_agg(DISTINCT child) AS kids
      FROM unnest($1::text[], $2::text[]) AS x(parent, child)
      GROUP BY parent
  ) e
  WHERE t.taxid = e.parent AND NOT t.children @> e.kids`
	if _, err := s.exec(ctx, q, parents, children); err != nil {
		return UpdateError(taxaTbl, err)
	}
	return nil
}

// StreamChildren pages through taxa by taxid. Every page is read
// completely before fn is called, so fn may write children.
func (s *pgstore) StreamChildren(
	ctx context.Context,
	fn func(taxid string, children []string) error,
) error {
	q := `
SELECT taxid, children FROM taxon_nodes
  WHERE taxid > $1
  ORDER BY taxid
  LIMIT $2`

	type row struct {
		id       string
		children []string
	}
	var last string
	for {
		rows, err := s.pool.Query(ctx, q, last, s.pageSize)
		if err != nil {
			return StreamError(taxaTbl, err)
		}
		page, err := pgx.CollectRows(rows, func(r pgx.CollectableRow) (row, error) {
			var res row
			err := r.Scan(&res.id, &res.children)
			return res, err
		})
		if err != nil {
			return StreamError(taxaTbl, err)
		}
		for _, r := range page {
			if err = fn(r.id, r.children); err != nil {
				return err
			}
		}
		if len(page) < s.pageSize {
			return nil
		}
		last = page[len(page)-1].id
	}
}

// SetChildren sends a batch of point updates.
func (s *pgstore) SetChildren(ctx context.Context, updates []hierarchy.Update) error {
	if len(updates) == 0 {
		return nil
	}
	q := `UPDATE taxon_nodes SET children = $2 WHERE taxid = $1`
	b := &pgx.Batch{}
	for _, u := range updates {
		b.Queue(q, u.TaxID, nonNil(u.Children))
	}
	br := s.pool.SendBatch(ctx, b)
	defer br.Close()

	for range updates {
		if _, err := br.Exec(); err != nil {
			return UpdateError(taxaTbl, err)
		}
	}
	return nil
}

func (s *pgstore) PullChildren(ctx context.Context, taxids []string) (int, error) {
	if len(taxids) == 0 {
		return 0, nil
	}
	q := `
UPDATE taxon_nodes
  SET children = ARRAY(
    SELECT c FROM unnest(children) AS c
      WHERE c <> ALL($1::text[])
      ORDER BY c COLLATE "C"
  )
  WHERE children && $1::text[]`
	n, err := s.exec(ctx, q, taxids)
	if err != nil {
		return 0, UpdateError(taxaTbl, err)
	}
	return n, nil
}

func (s *pgstore) ResetCounts(ctx context.Context) error {
	q := `
UPDATE taxon_nodes
  SET annotations_count = 0, assemblies_count = 0, organisms_count = 0
  WHERE annotations_count <> 0
    OR assemblies_count <> 0
    OR organisms_count <> 0`
	if _, err := s.exec(ctx, q); err != nil {
		return UpdateError(taxaTbl, err)
	}
	return nil
}

func (s *pgstore) SetCounts(
	ctx context.Context,
	kind taxon.LeafKind,
	counts map[string]int,
) error {
	col, err := countColumn(kind)
	if err != nil {
		return UpdateError(taxaTbl, err)
	}
	if len(counts) == 0 {
		return nil
	}
	ids, ns := splitCounts(counts)
	q := `
UPDATE taxon_nodes t SET ` + ident(col) + ` = c.n
  FROM unnest($1::text[], $2::int[]) AS c(taxid, n)
  WHERE t.taxid = c.taxid`
	if _, err = s.exec(ctx, q, ids, ns); err != nil {
		return UpdateError(taxaTbl, err)
	}
	return nil
}

func (s *pgstore) DeleteOrphanTaxa(ctx context.Context) ([]string, error) {
	q := `DELETE FROM taxon_nodes WHERE annotations_count = 0 RETURNING taxid`
	res, err := s.collectIDs(ctx, q)
	if err != nil {
		return nil, DeleteError(taxaTbl, err)
	}
	slices.Sort(res)
	return res, nil
}

func (s *pgstore) ResetStats(ctx context.Context) error {
	enc := gnfmt.GNjson{}
	doc, err := enc.Encode(taxon.NewStats())
	if err != nil {
		return UpdateError(taxaTbl, err)
	}
	q := `UPDATE taxon_nodes SET stats = $1::jsonb`
	if _, err = s.exec(ctx, q, string(doc)); err != nil {
		return UpdateError(taxaTbl, err)
	}
	return nil
}

// SetGeneStats writes summaries under genes.<category>.count of the stats
// document.
func (s *pgstore) SetGeneStats(
	ctx context.Context,
	cat taxon.GeneCategory,
	sums map[string]taxon.Summary,
) error {
	if len(sums) == 0 {
		return nil
	}
	enc := gnfmt.GNjson{}
	empty, err := enc.Encode(taxon.NewStats())
	if err != nil {
		return UpdateError(taxaTbl, err)
	}

	ids := make([]string, 0, len(sums))
	docs := make([]string, 0, len(sums))
	for k, v := range sums {
		bs, err := enc.Encode(v)
		if err != nil {
			return UpdateError(taxaTbl, err)
		}
		ids = append(ids, k)
		docs = append(docs, string(bs))
	}

	q := `
UPDATE taxon_nodes t
  SET stats = jsonb_set(
    COALESCE(t.stats, $4::jsonb),
    ARRAY['genes', $1::text, 'count'],
    s.doc::jsonb
  )
  FROM unnest($2::text[], $3::text[]) AS s(taxid, doc)
  WHERE t.taxid = s.taxid`
	_, err = s.exec(ctx, q, string(cat), ids, docs, string(empty))
	if err != nil {
		return UpdateError(taxaTbl, err)
	}
	return nil
}
