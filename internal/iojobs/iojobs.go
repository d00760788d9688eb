// Package iojobs is the trigger surface of taxonomy jobs. Every run gets
// an id, is logged with it and is reported to metrics. Runs return a
// Summary, never a stream.
package iojobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/gnames/gntaxdb/pkg/lifecycle"
	"github.com/gnames/gntaxdb/pkg/taxon"
)

// Runner triggers reconciliation, rebuild and aggregation passes. It
// does not serialize runs, the caller must not start two full rebuilds
// at the same time.
type Runner struct {
	rec     lifecycle.Reconciler
	reb     lifecycle.Rebuilder
	agg     lifecycle.Aggregator
	metrics *metrics
}

// New creates a Runner.
func New(
	rec lifecycle.Reconciler,
	reb lifecycle.Rebuilder,
	agg lifecycle.Aggregator,
) *Runner {
	return &Runner{
		rec:     rec,
		reb:     reb,
		agg:     agg,
		metrics: newMetrics(),
	}
}

type step struct {
	name string
	fn   func(context.Context) (lifecycle.Summary, error)
}

// RunIncrementalSync resolves lineages of taxids. Without taxids it
// takes them from assemblies and annotations. A taxid that is not a
// number fails the call before any work is done.
func (r *Runner) RunIncrementalSync(
	ctx context.Context,
	taxids []string,
) (lifecycle.Summary, error) {
	for _, id := range taxids {
		if !taxon.IsTaxID(id) {
			return lifecycle.NewSummary("sync"), InvalidTaxIDError(id)
		}
	}
	return r.run(ctx, "sync", func(ctx context.Context) (lifecycle.Summary, error) {
		if len(taxids) == 0 {
			return r.rec.SyncFromLeaves(ctx)
		}
		_, sum, err := r.rec.Sync(ctx, taxids)
		return sum, err
	})
}

// RunFullRebuild recomputes children of all taxa.
func (r *Runner) RunFullRebuild(ctx context.Context) (lifecycle.Summary, error) {
	return r.run(ctx, "rebuild", r.reb.Rebuild)
}

// RunStatsAggregation writes rollup counts, prunes taxa without
// annotations and computes gene statistics.
func (r *Runner) RunStatsAggregation(ctx context.Context) (lifecycle.Summary, error) {
	return r.run(ctx, "stats", r.sequence([]step{
		{"rollups", r.agg.Rollups},
		{"distributions", r.agg.Distributions},
	}))
}

// RunRefresh fills empty lineages of assemblies and annotations from
// their organisms and then fetches all stored organisms again.
func (r *Runner) RunRefresh(ctx context.Context) (lifecycle.Summary, error) {
	return r.run(ctx, "refresh", r.sequence([]step{
		{"fallback", r.rec.Fallback},
		{"refresh", r.rec.Refresh},
	}))
}

// RunUpdate runs the whole pipeline. The tree is rebuilt before
// statistics, so pruning sees correct children.
func (r *Runner) RunUpdate(ctx context.Context) (lifecycle.Summary, error) {
	return r.run(ctx, "update", r.sequence([]step{
		{"sync", r.rec.SyncFromLeaves},
		{"fallback", r.rec.Fallback},
		{"refresh", r.rec.Refresh},
		{"rebuild", r.reb.Rebuild},
		{"rollups", r.agg.Rollups},
		{"distributions", r.agg.Distributions},
	}))
}

// Gatherer gives access to metrics of runs.
func (r *Runner) Gatherer() prometheus.Gatherer {
	return r.metrics.registry
}

// WriteMetrics writes metrics in the Prometheus text format, for the
// node exporter textfile collector. Empty path does nothing.
func (r *Runner) WriteMetrics(path string) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.metrics.registry); err != nil {
		return MetricsError(path, err)
	}
	return nil
}

// sequence runs steps one after another and merges their summaries. It
// stops at the first error.
func (r *Runner) sequence(
	steps []step,
) func(context.Context) (lifecycle.Summary, error) {
	return func(ctx context.Context) (lifecycle.Summary, error) {
		var res lifecycle.Summary
		for i, s := range steps {
			if err := ctx.Err(); err != nil {
				return res, err
			}
			slog.Info("Job step", "step", s.name, "number", i+1, "of", len(steps))
			sum, err := s.fn(ctx)
			res.Merge(sum)
			if err != nil {
				return res, err
			}
		}
		return res, nil
	}
}

func (r *Runner) run(
	ctx context.Context,
	job string,
	fn func(context.Context) (lifecycle.Summary, error),
) (lifecycle.Summary, error) {
	runID := uuid.NewString()
	log := slog.With("job", job, "run_id", runID)
	log.Info("Job started")

	start := time.Now()
	sum, err := fn(ctx)
	sum.Job = job
	sum.RunID = runID
	sum.Duration = time.Since(start)
	r.metrics.observe(sum, err)

	if err != nil {
		log.Error("Job failed", "summary", sum.String(), "error", err)
		return sum, err
	}
	log.Info("Job finished", "summary", sum.String())
	return sum, nil
}
