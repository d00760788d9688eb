// Package iosync implements lifecycle.Reconciler. It resolves lineages of
// new taxids at the lineage authority and patches the taxonomy tree
// incrementally.
//
// All work is best-effort. A batch that cannot be fetched, a record that
// cannot be parsed or a sub-batch that cannot be inserted is dropped and
// counted in the Summary. It is attempted again on the next run. Only
// store failures outside of such units and cancellation are returned as
// errors.
package iosync

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/gnames/gntaxdb/pkg/config"
	"github.com/gnames/gntaxdb/pkg/lifecycle"
	"github.com/gnames/gntaxdb/pkg/lineage"
	"github.com/gnames/gntaxdb/pkg/parserpool"
	"github.com/gnames/gntaxdb/pkg/store"
	"github.com/gnames/gntaxdb/pkg/taxon"
	"golang.org/x/sync/errgroup"
)

// RefreshBatchSize is the number of stored organisms fetched again per
// request during Refresh.
const RefreshBatchSize = 5000

type reconciler struct {
	cfg      *config.Config
	store    store.Store
	src      lineage.Source
	names    parserpool.Pool
	cacheDir string
}

// New creates a Reconciler. Payloads are kept in the lineage cache
// directory while they are parsed, or in memory if the home directory is
// not set.
func New(
	cfg *config.Config,
	st store.Store,
	src lineage.Source,
	names parserpool.Pool,
) lifecycle.Reconciler {
	res := &reconciler{
		cfg:   cfg,
		store: st,
		src:   src,
		names: names,
	}
	if cfg.HomeDir != "" {
		res.cacheDir = config.LineageCacheDir(cfg.HomeDir)
	}
	return res
}

func (r *reconciler) Sync(
	ctx context.Context,
	taxids []string,
) (map[string][]string, lifecycle.Summary, error) {
	res, _, sum, err := r.sync(ctx, taxids)
	return res, sum, err
}

// SyncFromLeaves also copies lineages of new organisms to their
// assemblies. Annotations follow their assemblies during Fallback.
func (r *reconciler) SyncFromLeaves(ctx context.Context) (lifecycle.Summary, error) {
	ids, err := r.store.LeafTaxIDs(ctx)
	if err != nil {
		return lifecycle.NewSummary("sync"), SyncError("leaf taxids", err)
	}
	_, fresh, sum, err := r.sync(ctx, ids)
	if err != nil || len(fresh) == 0 {
		return sum, err
	}

	orgs, err := r.store.Organisms(ctx, fresh)
	if err != nil {
		return sum, SyncError("new organisms", err)
	}
	for _, id := range fresh {
		org, ok := orgs[id]
		if !ok {
			continue
		}
		n, err := r.store.SetLeafLineage(ctx, taxon.Assemblies, org, false)
		if err != nil {
			if ctx.Err() != nil {
				return sum, ctx.Err()
			}
			slog.Warn("Cannot copy lineage to assemblies",
				"taxid", id,
				"reason", lifecycle.SkipUpdateFailed,
				"error", err,
			)
			sum.Fail(lifecycle.SkipUpdateFailed, 1)
			continue
		}
		sum.Updated += n
	}
	return sum, nil
}

// sync returns lineages of all resolved taxids together with taxids of
// organisms created by this run.
func (r *reconciler) sync(
	ctx context.Context,
	taxids []string,
) (res map[string][]string, fresh []string, sum lifecycle.Summary, err error) {
	start := time.Now()
	sum = lifecycle.NewSummary("sync")
	defer func() { sum.Duration = time.Since(start) }()

	ids := uniq(taxids)
	known, err := r.store.OrganismLineages(ctx, ids)
	if err != nil {
		return nil, nil, sum, SyncError("resolve", err)
	}

	var missing []string
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return known, nil, sum, nil
	}
	slog.Info("Fetching new organisms",
		"requested", len(ids),
		"known", len(known),
		"new", len(missing),
	)

	chBatch := make(chan fetched)
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(chBatch)
		return r.fetchAll(gCtx, missing, chBatch)
	})

	g.Go(func() error {
		for f := range chBatch {
			sum.Merge(f.sum)
			saved, err := r.persist(gCtx, f.cands, &sum)
			if err != nil {
				return err
			}
			fresh = append(fresh, saved...)
		}
		return nil
	})

	if err = g.Wait(); err != nil {
		return nil, nil, sum, err
	}

	res, err = r.store.OrganismLineages(ctx, ids)
	if err != nil {
		return nil, nil, sum, SyncError("reload", err)
	}
	slog.Info("Sync finished", "summary", sum.String())
	return res, fresh, sum, nil
}

func uniq(ids []string) []string {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		set[id] = struct{}{}
	}
	return slices.Sorted(maps.Keys(set))
}
