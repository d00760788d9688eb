package iosync

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/gnames/gntaxdb/pkg/batch"
	"github.com/gnames/gntaxdb/pkg/lifecycle"
	"github.com/gnames/gntaxdb/pkg/lineage"
	"golang.org/x/sync/errgroup"
)

// fetched is the parsed content of one fetch batch.
type fetched struct {
	ids   []string
	cands []*lineage.Candidate
	sum   lifecycle.Summary
}

// fetchAll fetches batches of taxids concurrently and sends parsed
// batches to out in the order they are ready.
func (r *reconciler) fetchAll(
	ctx context.Context,
	taxids []string,
	out chan<- fetched,
) error {
	batches := batch.Split(taxids, r.cfg.Taxonomy.FetchBatchSize)
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(max(r.cfg.JobsNumber, 1))

	for i, ids := range batches {
		g.Go(func() error {
			f, err := r.fetchBatch(gCtx, i, ids)
			if err != nil {
				return err
			}
			select {
			case out <- f:
				return nil
			case <-gCtx.Done():
				return gCtx.Err()
			}
		})
	}
	return g.Wait()
}

// fetchBatch downloads and parses one batch. Failures of the lineage
// source are counted as skipped taxids, only cancellation is returned.
func (r *reconciler) fetchBatch(
	ctx context.Context,
	idx int,
	ids []string,
) (fetched, error) {
	res := fetched{ids: ids, sum: lifecycle.NewSummary("sync")}

	payload, n, cleanup, err := r.download(ctx, idx, ids)
	defer cleanup()
	if err != nil {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		slog.Warn("Skipping lineage batch",
			"batch", idx,
			"taxids", len(ids),
			"reason", lifecycle.SkipFetchFailed,
			"error", err,
		)
		res.sum.Skip(lifecycle.SkipFetchFailed, len(ids))
		return res, nil
	}
	if n == 0 {
		slog.Warn("Skipping lineage batch",
			"batch", idx,
			"taxids", len(ids),
			"reason", lifecycle.SkipEmptyPayload,
		)
		res.sum.Skip(lifecycle.SkipEmptyPayload, len(ids))
		return res, nil
	}

	cands, skipped, err := lineage.ParseAll(payload)
	got := make(map[string]struct{}, len(cands)+len(skipped))
	for _, e := range skipped {
		slog.Warn("Skipping lineage record",
			"batch", idx,
			"record", e.Index,
			"taxid", e.TaxID,
			"reason", lifecycle.SkipMalformedRecord,
			"error", e.Err,
		)
		got[e.TaxID] = struct{}{}
	}
	res.sum.Skip(lifecycle.SkipMalformedRecord, len(skipped))

	for _, c := range cands {
		if _, ok := got[c.Organism.TaxID]; ok {
			continue
		}
		got[c.Organism.TaxID] = struct{}{}
		res.cands = append(res.cands, c)
	}

	reason := lifecycle.SkipNotFound
	if err != nil {
		slog.Warn("Lineage payload is broken, keeping records read so far",
			"batch", idx,
			"records", len(res.cands),
			"reason", lifecycle.SkipMalformedPayload,
			"error", err,
		)
		reason = lifecycle.SkipMalformedPayload
	}
	var lost int
	for _, id := range ids {
		if _, ok := got[id]; !ok {
			lost++
		}
	}
	res.sum.Skip(reason, lost)
	return res, nil
}

// download writes the payload of a batch to a temporary file of the
// lineage cache, or to memory when there is no cache directory. The
// returned cleanup function must be called in any case.
func (r *reconciler) download(
	ctx context.Context,
	idx int,
	ids []string,
) (io.Reader, int64, func(), error) {
	noop := func() {}
	if r.cacheDir == "" {
		var buf bytes.Buffer
		n, err := r.src.Fetch(ctx, ids, &buf)
		return &buf, n, noop, err
	}

	if err := os.MkdirAll(r.cacheDir, 0755); err != nil {
		return nil, 0, noop, CacheError(r.cacheDir, err)
	}
	pattern := fmt.Sprintf("taxons_%d_%d_*.xml.gz", idx, len(ids))
	f, err := os.CreateTemp(r.cacheDir, pattern)
	if err != nil {
		return nil, 0, noop, CacheError(r.cacheDir, err)
	}
	cleanup := func() {
		f.Close()
		if err := os.Remove(f.Name()); err != nil {
			slog.Warn("Cannot remove lineage payload", "file", f.Name(), "error", err)
		}
	}

	n, err := r.src.Fetch(ctx, ids, f)
	if err != nil {
		return nil, n, cleanup, err
	}
	if _, err = f.Seek(0, io.SeekStart); err != nil {
		return nil, n, cleanup, CacheError(f.Name(), err)
	}
	return f, n, cleanup, nil
}
