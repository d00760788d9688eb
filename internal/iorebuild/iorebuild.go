// Package iorebuild implements lifecycle.Rebuilder. Children of every
// taxon are recomputed from lineages of assemblies, annotations and
// organisms, and only the differing ones are overwritten.
package iorebuild

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"
	"github.com/gnames/gntaxdb/pkg/batch"
	"github.com/gnames/gntaxdb/pkg/config"
	"github.com/gnames/gntaxdb/pkg/hierarchy"
	"github.com/gnames/gntaxdb/pkg/lifecycle"
	"github.com/gnames/gntaxdb/pkg/store"
	"github.com/gnames/gntaxdb/pkg/taxon"
	"golang.org/x/sync/errgroup"
)

type rebuilder struct {
	cfg   *config.Config
	store store.Store
}

// New creates a Rebuilder.
func New(cfg *config.Config, st store.Store) lifecycle.Rebuilder {
	return &rebuilder{cfg: cfg, store: st}
}

// Rebuild reads lineages first and only then writes. If a leaf collection
// cannot be read the pass stops before any write.
func (r *rebuilder) Rebuild(ctx context.Context) (sum lifecycle.Summary, err error) {
	start := time.Now()
	sum = lifecycle.NewSummary("rebuild")
	defer func() { sum.Duration = time.Since(start) }()

	b := hierarchy.NewBuilder()
	for _, kind := range taxon.LeafKinds() {
		err = r.store.StreamLineages(ctx, kind, func(lin []string) error {
			b.Add(lin)
			return nil
		})
		if err != nil {
			return sum, StreamError(string(kind), err)
		}
	}
	slog.Info("Folded lineages",
		"lineages", b.Lineages(),
		"parents", b.Len(),
	)

	conflicts := b.Conflicts()
	for _, c := range conflicts {
		slog.Warn("Taxon has more than one parent",
			"taxid", c.Child,
			"parents", c.Parents,
		)
	}
	sum.Conflicts = len(conflicts)

	updates, err := r.diff(ctx, b.Map(), &sum)
	if err != nil {
		return sum, err
	}
	if len(updates) == 0 {
		gn.Info("Taxonomy tree is up to date")
		return sum, nil
	}

	if err = r.write(ctx, updates, &sum); err != nil {
		return sum, err
	}
	gn.Info(
		"Updated children of <em>%s</em> taxa",
		humanize.Comma(int64(sum.Updated)),
	)
	slog.Info("Rebuild finished", "summary", sum.String())
	return sum, nil
}

// diff compares stored children with computed ones. Stored taxa missing
// from the computed map get their children cleared.
func (r *rebuilder) diff(
	ctx context.Context,
	computed map[string][]string,
	sum *lifecycle.Summary,
) ([]hierarchy.Update, error) {
	d := hierarchy.NewDiffer(computed)
	var res []hierarchy.Update
	err := r.store.StreamChildren(ctx, func(taxid string, children []string) error {
		sum.Resolved++
		if u, ok := d.Check(taxid, children); ok {
			res = append(res, u)
		}
		return nil
	})
	if err != nil {
		return nil, StreamError("taxon_nodes", err)
	}

	if missing := d.Missing(); len(missing) > 0 {
		slog.Warn("Lineages refer to taxa that are not stored",
			"taxa", len(missing),
			"first", missing[0],
		)
	}
	return res, nil
}

// write overwrites children in batches dispatched concurrently. A failed
// batch is logged and counted, other batches go on.
func (r *rebuilder) write(
	ctx context.Context,
	updates []hierarchy.Update,
	sum *lifecycle.Summary,
) error {
	bar := newProgressBar(len(updates), "Children: ")
	defer bar.Finish()

	var mu sync.Mutex
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(max(r.cfg.JobsNumber, 1))

	for _, sub := range batch.Split(updates, r.cfg.Taxonomy.UpdateBatchSize) {
		g.Go(func() error {
			err := r.store.SetChildren(gCtx, sub)
			if err != nil && gCtx.Err() != nil {
				return gCtx.Err()
			}

			mu.Lock()
			defer mu.Unlock()
			bar.Add(len(sub))
			if err != nil {
				slog.Warn("Cannot overwrite children",
					"taxa", len(sub),
					"first", sub[0].TaxID,
					"reason", lifecycle.SkipUpdateFailed,
					"error", err,
				)
				sum.Fail(lifecycle.SkipUpdateFailed, 1)
				return nil
			}
			sum.Updated += len(sub)
			return nil
		})
	}
	return g.Wait()
}
