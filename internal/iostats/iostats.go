// Package iostats implements lifecycle.Aggregator. Counts and gene
// statistics are computed by the store with grouped queries and written
// back in batches.
package iostats

import (
	"context"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"
	"github.com/gnames/gntaxdb/pkg/batch"
	"github.com/gnames/gntaxdb/pkg/config"
	"github.com/gnames/gntaxdb/pkg/lifecycle"
	"github.com/gnames/gntaxdb/pkg/store"
	"github.com/gnames/gntaxdb/pkg/taxon"
)

type aggregator struct {
	cfg   *config.Config
	store store.Store
}

// New creates an Aggregator.
func New(cfg *config.Config, st store.Store) lifecycle.Aggregator {
	return &aggregator{cfg: cfg, store: st}
}

type count struct {
	taxid string
	n     int
}

type geneStat struct {
	taxid string
	s     taxon.Summary
}

// Rollups counts records per taxon of their lineages and per organism.
// Pruning starts only after all counters are written, so a failure
// before that point deletes nothing.
func (a *aggregator) Rollups(ctx context.Context) (sum lifecycle.Summary, err error) {
	start := time.Now()
	sum = lifecycle.NewSummary("rollups")
	defer func() { sum.Duration = time.Since(start) }()

	if err = a.store.ResetCounts(ctx); err != nil {
		return sum, RollupError("reset taxa", err)
	}
	for _, kind := range taxon.LeafKinds() {
		n, err := a.rollup(ctx, kind, a.store.Rollup, a.store.SetCounts)
		if err != nil {
			return sum, RollupError(string(kind), err)
		}
		sum.Updated += n
		gn.Info("Counted %s for <em>%s</em> taxa", kind, humanize.Comma(int64(n)))
	}

	if err = a.store.ResetOrganismCounts(ctx); err != nil {
		return sum, RollupError("reset organisms", err)
	}
	for _, kind := range []taxon.LeafKind{taxon.Annotations, taxon.Assemblies} {
		n, err := a.rollup(ctx, kind, a.store.RollupByTaxID, a.store.SetOrganismCounts)
		if err != nil {
			return sum, RollupError("organism "+string(kind), err)
		}
		sum.Updated += n
	}

	if err = a.prune(ctx, &sum); err != nil {
		return sum, err
	}
	slog.Info("Rollups finished", "summary", sum.String())
	return sum, nil
}

// rollup streams counts of one collection into batched writes and
// returns the number of counted keys.
func (a *aggregator) rollup(
	ctx context.Context,
	kind taxon.LeafKind,
	read func(context.Context, taxon.LeafKind, func(string, int) error) error,
	write func(context.Context, taxon.LeafKind, map[string]int) error,
) (int, error) {
	var res int
	buf := batch.NewBuffer(a.cfg.Taxonomy.UpdateBatchSize, func(cs []count) error {
		m := make(map[string]int, len(cs))
		for _, c := range cs {
			m[c.taxid] = c.n
		}
		return write(ctx, kind, m)
	})
	err := read(ctx, kind, func(taxid string, n int) error {
		res++
		return buf.Add(count{taxid: taxid, n: n})
	})
	if err != nil {
		return res, err
	}
	return res, buf.Flush()
}

// prune deletes taxa and organisms without annotations and removes
// deleted taxa from children of the remaining ones.
func (a *aggregator) prune(ctx context.Context, sum *lifecycle.Summary) error {
	deleted, err := a.store.DeleteOrphanTaxa(ctx)
	if err != nil {
		return OrphanError("taxa", err)
	}
	sum.Deleted += len(deleted)

	for _, ids := range batch.Split(deleted, a.cfg.Taxonomy.UpdateBatchSize) {
		n, err := a.store.PullChildren(ctx, ids)
		if err != nil {
			return OrphanError("children", err)
		}
		sum.Updated += n
	}

	n, err := a.store.DeleteOrphanOrganisms(ctx)
	if err != nil {
		return OrphanError("organisms", err)
	}
	sum.Deleted += n
	if sum.Deleted > 0 {
		gn.Info(
			"Removed <em>%s</em> taxa and <em>%s</em> organisms without annotations",
			humanize.Comma(int64(len(deleted))), humanize.Comma(int64(n)),
		)
	}
	return nil
}

// Distributions resets statistics of every taxon first, so taxa without
// qualifying annotations keep zero statistics.
func (a *aggregator) Distributions(ctx context.Context) (sum lifecycle.Summary, err error) {
	start := time.Now()
	sum = lifecycle.NewSummary("distributions")
	defer func() { sum.Duration = time.Since(start) }()

	if err = a.store.ResetStats(ctx); err != nil {
		return sum, DistributionError("reset", err)
	}

	for _, cat := range taxon.GeneCategories() {
		var n int
		buf := batch.NewBuffer(a.cfg.Taxonomy.UpdateBatchSize, func(gs []geneStat) error {
			m := make(map[string]taxon.Summary, len(gs))
			for _, g := range gs {
				m[g.taxid] = g.s
			}
			return a.store.SetGeneStats(ctx, cat, m)
		})
		err = a.store.GeneStats(ctx, cat, func(taxid string, s taxon.Summary) error {
			n++
			return buf.Add(geneStat{taxid: taxid, s: s})
		})
		if err == nil {
			err = buf.Flush()
		}
		if err != nil {
			return sum, DistributionError(string(cat), err)
		}
		sum.Updated += n
		slog.Info("Gene statistics", "category", cat, "taxa", n)
	}
	slog.Info("Distributions finished", "summary", sum.String())
	return sum, nil
}
