package iostore

import (
	"context"
	"fmt"

	"github.com/gnames/gntaxdb/pkg/stats"
	"github.com/gnames/gntaxdb/pkg/taxon"
)

// StreamLineages sends distinct lineages while the query runs. fn must
// not use the store.
func (s *pgstore) StreamLineages(
	ctx context.Context,
	kind taxon.LeafKind,
	fn func([]string) error,
) error {
	tbl, err := leafTable(kind)
	if err != nil {
		return StreamError(string(kind), err)
	}
	q := `
SELECT DISTINCT taxon_lineage FROM ` + ident(tbl) + `
  WHERE cardinality(taxon_lineage) > 0`
	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return StreamError(tbl, err)
	}
	defer rows.Close()

	for rows.Next() {
		var lin []string
		if err = rows.Scan(&lin); err != nil {
			return StreamError(tbl, err)
		}
		if err = fn(lin); err != nil {
			return err
		}
	}
	if err = rows.Err(); err != nil {
		return StreamError(tbl, err)
	}
	return nil
}

func (s *pgstore) LeafTaxIDs(ctx context.Context) ([]string, error) {
	q := `
SELECT taxid FROM assemblies WHERE taxid <> ''
UNION
SELECT taxid FROM annotations WHERE taxid <> ''
ORDER BY 1`
	res, err := s.collectIDs(ctx, q)
	if err != nil {
		return nil, QueryError(assembliesTbl, err)
	}
	return res, nil
}

func (s *pgstore) EmptyLineageTaxIDs(
	ctx context.Context,
	kind taxon.LeafKind,
) ([]string, error) {
	tbl, err := leafTable(kind)
	if err != nil || kind == taxon.Organisms {
		return nil, QueryError(string(kind), fmt.Errorf("not a leaf collection"))
	}
	q := `
SELECT DISTINCT taxid FROM ` + ident(tbl) + `
  WHERE cardinality(taxon_lineage) = 0 AND taxid <> ''
  ORDER BY 1`
	res, err := s.collectIDs(ctx, q)
	if err != nil {
		return nil, QueryError(tbl, err)
	}
	return res, nil
}

func (s *pgstore) SetLeafLineage(
	ctx context.Context,
	kind taxon.LeafKind,
	org taxon.Organism,
	onlyEmpty bool,
) (int, error) {
	tbl, err := leafTable(kind)
	if err != nil || kind == taxon.Organisms {
		return 0, UpdateError(string(kind), fmt.Errorf("not a leaf collection"))
	}
	q := `
UPDATE ` + ident(tbl) + `
  SET taxon_lineage = $2, organism_name = $3
  WHERE taxid = $1`
	if onlyEmpty {
		q += ` AND cardinality(taxon_lineage) = 0`
	} else {
		q += ` AND (taxon_lineage, organism_name) IS DISTINCT FROM ($2, $3)`
	}
	n, err := s.exec(ctx, q, org.TaxID, nonNil(org.Lineage), org.ScientificName)
	if err != nil {
		return 0, UpdateError(tbl, err)
	}
	return n, nil
}

func (s *pgstore) RealignAnnotations(ctx context.Context) (int, int, error) {
	q := `
UPDATE annotations a
  SET taxid = s.taxid,
      organism_name = s.organism_name,
      taxon_lineage = s.taxon_lineage
  FROM assemblies s
  WHERE a.assembly_accession = s.assembly_accession
    AND (a.taxid, a.organism_name, a.taxon_lineage)
      IS DISTINCT FROM (s.taxid, s.organism_name, s.taxon_lineage)`
	updated, err := s.exec(ctx, q)
	if err != nil {
		return 0, 0, UpdateError(annotationsTbl, err)
	}

	q = `
SELECT count(*) FROM annotations a
  WHERE NOT EXISTS (
    SELECT 1 FROM assemblies s
      WHERE s.assembly_accession = a.assembly_accession
  )`
	var orphans int64
	if err = s.pool.QueryRow(ctx, q).Scan(&orphans); err != nil {
		return updated, 0, QueryError(annotationsTbl, err)
	}
	return updated, int(orphans), nil
}

// Rollup groups records by every taxid of their lineages on the server.
func (s *pgstore) Rollup(
	ctx context.Context,
	kind taxon.LeafKind,
	fn func(taxid string, count int) error,
) error {
	tbl, err := leafTable(kind)
	if err != nil {
		return StreamError(string(kind), err)
	}
	q := `
SELECT l.taxid, count(*)
  FROM ` + ident(tbl) + ` r, unnest(r.taxon_lineage) AS l(taxid)
  GROUP BY l.taxid
  ORDER BY l.taxid`
	if err = s.streamCounts(ctx, q, fn); err != nil {
		return StreamError(tbl, err)
	}
	return nil
}

func (s *pgstore) RollupByTaxID(
	ctx context.Context,
	kind taxon.LeafKind,
	fn func(taxid string, count int) error,
) error {
	tbl, err := leafTable(kind)
	if err != nil {
		return StreamError(string(kind), err)
	}
	q := `
SELECT taxid, count(*) FROM ` + ident(tbl) + `
  WHERE taxid <> ''
  GROUP BY taxid
  ORDER BY taxid`
	if err = s.streamCounts(ctx, q, fn); err != nil {
		return StreamError(tbl, err)
	}
	return nil
}

// GeneStats computes statistics of gene counts on the server. Values are
// read from gene_category_stats.<key>.total_count of feature statistics,
// trying every key of the category. Annotations without a numeric value
// are not part of the sample.
func (s *pgstore) GeneStats(
	ctx context.Context,
	cat taxon.GeneCategory,
	fn func(taxid string, s taxon.Summary) error,
) error {
	keys := cat.Keys()
	q := `
WITH v AS (
  SELECT a.taxon_lineage,
         (SELECT (a.features_statistics->'gene_category_stats'->x.k->>'total_count')::float8
            FROM unnest($1::text[]) WITH ORDINALITY AS x(k, i)
            WHERE a.features_statistics->'gene_category_stats'->x.k->>'total_count'
              ~ '^[0-9]+(\.[0-9]+)?$'
            ORDER BY x.i
            LIMIT 1) AS n
    FROM annotations a
    WHERE a.features_statistics IS NOT NULL
)
SELECT l.taxid,
       avg(v.n),
       percentile_cont(0.5) WITHIN GROUP (ORDER BY v.n),
       stddev_pop(v.n),
       min(v.n),
       max(v.n),
       count(v.n)
  FROM v, unnest(v.taxon_lineage) AS l(taxid)
  WHERE v.n IS NOT NULL
  GROUP BY l.taxid
  ORDER BY l.taxid`

	rows, err := s.pool.Query(ctx, q, keys)
	if err != nil {
		return StreamError(annotationsTbl, err)
	}
	defer rows.Close()

	var id string
	var sum taxon.Summary
	var n int64
	for rows.Next() {
		err = rows.Scan(
			&id, &sum.Mean, &sum.Median, &sum.Std, &sum.Min, &sum.Max, &n,
		)
		if err != nil {
			return StreamError(annotationsTbl, err)
		}
		sum.N = int(n)
		if err = fn(id, stats.Normalize(sum)); err != nil {
			return err
		}
	}
	if err = rows.Err(); err != nil {
		return StreamError(annotationsTbl, err)
	}
	return nil
}
