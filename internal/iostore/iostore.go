// Package iostore implements store.Store on PostgreSQL with pgx.
//
// Inserts use COPY, so a duplicate key rejects the whole batch. Counters
// are written with UPDATE ... FROM unnest(...), children with batches of
// point updates. Large tables are read either as server-side streams or
// with keyset pagination by taxid when the callback may write to the
// same table.
package iostore

import (
	"context"
	"fmt"

	"github.com/gnames/gntaxdb/pkg/config"
	"github.com/gnames/gntaxdb/pkg/db"
	"github.com/gnames/gntaxdb/pkg/store"
	"github.com/gnames/gntaxdb/pkg/taxon"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	organismsTbl   = "organisms"
	taxaTbl        = "taxon_nodes"
	assembliesTbl  = "assemblies"
	annotationsTbl = "annotations"
)

type pgstore struct {
	pool *pgxpool.Pool
	// pageSize is the number of rows per page of keyset pagination.
	pageSize int
}

// New creates a store that uses the connection pool of the operator.
// The operator must be connected.
func New(op db.Operator, cfg *config.Config) (store.Store, error) {
	pool := op.Pool()
	if pool == nil {
		return nil, NotConnectedError()
	}
	res := pgstore{
		pool:     pool,
		pageSize: cfg.Database.BatchSize,
	}
	if res.pageSize <= 0 {
		res.pageSize = 10_000
	}
	return &res, nil
}

// leafTable returns the table of a leaf collection.
func leafTable(kind taxon.LeafKind) (string, error) {
	switch kind {
	case taxon.Assemblies:
		return assembliesTbl, nil
	case taxon.Annotations:
		return annotationsTbl, nil
	case taxon.Organisms:
		return organismsTbl, nil
	}
	return "", fmt.Errorf("unknown collection '%s'", kind)
}

// countColumn returns the column of a rollup counter.
func countColumn(kind taxon.LeafKind) (string, error) {
	switch kind {
	case taxon.Assemblies:
		return "assemblies_count", nil
	case taxon.Annotations:
		return "annotations_count", nil
	case taxon.Organisms:
		return "organisms_count", nil
	}
	return "", fmt.Errorf("unknown collection '%s'", kind)
}

func ident(s string) string {
	return pgx.Identifier{s}.Sanitize()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// splitCounts turns a map into parallel slices for unnest.
func splitCounts(counts map[string]int) ([]string, []int32) {
	ids := make([]string, 0, len(counts))
	ns := make([]int32, 0, len(counts))
	for k, v := range counts {
		ids = append(ids, k)
		ns = append(ns, int32(v))
	}
	return ids, ns
}

// exec runs a statement and returns the number of affected rows.
func (s *pgstore) exec(ctx context.Context, q string, args ...any) (int, error) {
	tag, err := s.pool.Exec(ctx, q, args...)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// collectIDs runs a query that returns one text column.
func (s *pgstore) collectIDs(ctx context.Context, q string, args ...any) ([]string, error) {
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// streamCounts sends rows of (taxid, count) to fn while the query runs.
func (s *pgstore) streamCounts(
	ctx context.Context,
	q string,
	fn func(string, int) error,
) error {
	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return err
	}
	defer rows.Close()

	var id string
	var n int64
	for rows.Next() {
		if err = rows.Scan(&id, &n); err != nil {
			return err
		}
		if err = fn(id, int(n)); err != nil {
			return err
		}
	}
	return rows.Err()
}
