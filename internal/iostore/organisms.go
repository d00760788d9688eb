package iostore

import (
	"context"
	"fmt"

	"github.com/gnames/gntaxdb/pkg/taxon"
	"github.com/jackc/pgx/v5"
)

func (s *pgstore) OrganismLineages(
	ctx context.Context,
	taxids []string,
) (map[string][]string, error) {
	q := `SELECT taxid, taxon_lineage FROM organisms WHERE taxid = ANY($1)`
	rows, err := s.pool.Query(ctx, q, taxids)
	if err != nil {
		return nil, QueryError(organismsTbl, err)
	}
	defer rows.Close()

	res := make(map[string][]string, len(taxids))
	var id string
	var lin []string
	for rows.Next() {
		if err = rows.Scan(&id, &lin); err != nil {
			return nil, QueryError(organismsTbl, err)
		}
		res[id] = lin
	}
	if err = rows.Err(); err != nil {
		return nil, QueryError(organismsTbl, err)
	}
	return res, nil
}

func (s *pgstore) Organisms(
	ctx context.Context,
	taxids []string,
) (map[string]taxon.Organism, error) {
	q := `
SELECT taxid, scientific_name, common_name, taxon_lineage
  FROM organisms
  WHERE taxid = ANY($1)`
	rows, err := s.pool.Query(ctx, q, taxids)
	if err != nil {
		return nil, QueryError(organismsTbl, err)
	}
	orgs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (taxon.Organism, error) {
		var o taxon.Organism
		err := row.Scan(&o.TaxID, &o.ScientificName, &o.CommonName, &o.Lineage)
		return o, err
	})
	if err != nil {
		return nil, QueryError(organismsTbl, err)
	}

	res := make(map[string]taxon.Organism, len(orgs))
	for _, o := range orgs {
		res[o.TaxID] = o
	}
	return res, nil
}

// InsertOrganisms copies organisms into the table. COPY is a single
// statement, so a duplicate rejects the whole batch.
func (s *pgstore) InsertOrganisms(ctx context.Context, orgs []taxon.Organism) error {
	if len(orgs) == 0 {
		return nil
	}
	columns := []string{
		"taxid", "scientific_name", "common_name", "taxon_lineage",
	}
	src := pgx.CopyFromSlice(len(orgs), func(i int) ([]any, error) {
		o := orgs[i]
		return []any{
			o.TaxID, o.ScientificName, o.CommonName, nonNil(o.Lineage),
		}, nil
	})
	_, err := s.pool.CopyFrom(ctx, pgx.Identifier{organismsTbl}, columns, src)
	if err != nil {
		return InsertError(organismsTbl, len(orgs), err)
	}
	return nil
}

func (s *pgstore) UpdateOrganism(ctx context.Context, org taxon.Organism) error {
	q := `
UPDATE organisms
  SET scientific_name = $2, common_name = $3, taxon_lineage = $4
  WHERE taxid = $1`
	_, err := s.exec(ctx, q,
		org.TaxID, org.ScientificName, org.CommonName, nonNil(org.Lineage),
	)
	if err != nil {
		return UpdateError(organismsTbl, err)
	}
	return nil
}

func (s *pgstore) DeleteOrganisms(ctx context.Context, taxids []string) (int, error) {
	q := `DELETE FROM organisms WHERE taxid = ANY($1)`
	n, err := s.exec(ctx, q, taxids)
	if err != nil {
		return 0, DeleteError(organismsTbl, err)
	}
	return n, nil
}

func (s *pgstore) DeleteOrganismsInLineage(
	ctx context.Context,
	taxids []string,
) (int, error) {
	q := `DELETE FROM organisms WHERE taxon_lineage && $1::text[]`
	n, err := s.exec(ctx, q, taxids)
	if err != nil {
		return 0, DeleteError(organismsTbl, err)
	}
	return n, nil
}

// StreamOrganismIDs pages through organisms by taxid, so fn may update
// or delete organisms.
func (s *pgstore) StreamOrganismIDs(
	ctx context.Context,
	size int,
	fn func([]string) error,
) error {
	if size <= 0 {
		size = s.pageSize
	}
	q := `
SELECT taxid FROM organisms
  WHERE taxid > $1
  ORDER BY taxid
  LIMIT $2`
	var last string
	for {
		ids, err := s.collectIDs(ctx, q, last, size)
		if err != nil {
			return StreamError(organismsTbl, err)
		}
		if len(ids) == 0 {
			return nil
		}
		if err = fn(ids); err != nil {
			return err
		}
		if len(ids) < size {
			return nil
		}
		last = ids[len(ids)-1]
	}
}

func (s *pgstore) ResetOrganismCounts(ctx context.Context) error {
	q := `
UPDATE organisms SET annotations_count = 0, assemblies_count = 0
  WHERE annotations_count <> 0 OR assemblies_count <> 0`
	if _, err := s.exec(ctx, q); err != nil {
		return UpdateError(organismsTbl, err)
	}
	return nil
}

func (s *pgstore) SetOrganismCounts(
	ctx context.Context,
	kind taxon.LeafKind,
	counts map[string]int,
) error {
	if kind == taxon.Organisms {
		err := fmt.Errorf("organisms have no %s counter", kind)
		return UpdateError(organismsTbl, err)
	}
	col, err := countColumn(kind)
	if err != nil {
		return UpdateError(organismsTbl, err)
	}
	if len(counts) == 0 {
		return nil
	}
	ids, ns := splitCounts(counts)
	q := `
UPDATE organisms o SET ` + ident(col) + ` = c.n
  FROM unnest($1::text[], $2::int[]) AS c(taxid, n)
  WHERE o.taxid = c.taxid`
	if _, err = s.exec(ctx, q, ids, ns); err != nil {
		return UpdateError(organismsTbl, err)
	}
	return nil
}

func (s *pgstore) DeleteOrphanOrganisms(ctx context.Context) (int, error) {
	q := `DELETE FROM organisms WHERE annotations_count = 0`
	n, err := s.exec(ctx, q)
	if err != nil {
		return 0, DeleteError(organismsTbl, err)
	}
	return n, nil
}
