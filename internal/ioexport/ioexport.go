// Package ioexport writes a snapshot of the flattened taxonomy tree to a
// SQLite file and optionally publishes it to S3-compatible storage.
package ioexport

import (
	"context"
	"log/slog"

	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"
	"github.com/gnames/gntaxdb/internal/iobrowse"
)

// Exporter creates snapshots of the tree.
type Exporter struct {
	br *iobrowse.Browser
	up *Uploader
}

// New creates an Exporter. With a nil Uploader snapshots stay local.
func New(br *iobrowse.Browser, up *Uploader) *Exporter {
	return &Exporter{br: br, up: up}
}

// Export writes the flattened tree to path and uploads the file when an
// Uploader is set. It returns the number of exported taxa.
func (e *Exporter) Export(ctx context.Context, path string) (int, error) {
	rows, err := e.br.Flatten(ctx)
	if err != nil {
		return 0, SQLiteError(path, err)
	}

	if err = WriteSQLite(ctx, path, rows); err != nil {
		return 0, err
	}
	slog.Info("Exported taxonomy tree", "path", path, "taxa", len(rows))
	gn.Info("Exported <em>%s</em> taxa to %s",
		humanize.Comma(int64(len(rows))), path)

	if e.up == nil {
		return len(rows), nil
	}

	loc, err := e.up.Upload(ctx, path)
	if err != nil {
		return len(rows), err
	}
	gn.Info("Uploaded snapshot to <em>%s</em>", loc)
	return len(rows), nil
}
