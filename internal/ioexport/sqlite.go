package ioexport

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"os"
	"time"

	gntaxdb "github.com/gnames/gntaxdb/pkg"
	"github.com/gnames/gntaxdb/pkg/taxon"
	_ "modernc.org/sqlite"
)

const createTaxa = `CREATE TABLE taxa (
	taxid TEXT PRIMARY KEY,
	parent_taxid TEXT,
	scientific_name TEXT NOT NULL,
	annotations_count INTEGER NOT NULL DEFAULT 0,
	assemblies_count INTEGER NOT NULL DEFAULT 0,
	organisms_count INTEGER NOT NULL DEFAULT 0
)`

const createMeta = `CREATE TABLE meta (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
)`

const insertTaxon = `INSERT INTO taxa (taxid, parent_taxid, scientific_name,
	annotations_count, assemblies_count, organisms_count)
	VALUES (?, ?, ?, ?, ?, ?)`

// WriteSQLite replaces the file at path with a database holding the rows.
// Roots have NULL parent_taxid.
func WriteSQLite(ctx context.Context, path string, rows []taxon.FlatRow) error {
	err := os.Remove(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return SQLiteError(path, err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return SQLiteError(path, err)
	}
	defer db.Close()

	if err = write(ctx, db, rows); err != nil {
		return SQLiteError(path, err)
	}
	return nil
}

func write(ctx context.Context, db *sql.DB, rows []taxon.FlatRow) (err error) {
	for _, q := range []string{
		createTaxa,
		createMeta,
		"CREATE INDEX taxa_parent_idx ON taxa (parent_taxid)",
	} {
		if _, err = db.ExecContext(ctx, q); err != nil {
			return err
		}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, insertTaxon)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range rows {
		parent := sql.NullString{String: r.ParentTaxID, Valid: r.ParentTaxID != ""}
		_, err = stmt.ExecContext(ctx, r.TaxID, parent, r.ScientificName,
			r.Annotations, r.Assemblies, r.Organisms)
		if err != nil {
			return err
		}
	}

	meta := map[string]string{
		"version":     gntaxdb.Version,
		"exported_at": time.Now().UTC().Format(time.RFC3339),
	}
	for k, v := range meta {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO meta (key, value) VALUES (?, ?)", k, v)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}
