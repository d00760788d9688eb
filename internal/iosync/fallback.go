package iosync

import (
	"context"
	"log/slog"
	"time"

	"github.com/gnames/gntaxdb/pkg/lifecycle"
	"github.com/gnames/gntaxdb/pkg/taxon"
)

// Fallback first aligns annotations with their assemblies, then gives
// leaf records without lineage the lineage of their organism.
func (r *reconciler) Fallback(ctx context.Context) (sum lifecycle.Summary, err error) {
	start := time.Now()
	sum = lifecycle.NewSummary("fallback")
	defer func() { sum.Duration = time.Since(start) }()

	updated, orphans, err := r.store.RealignAnnotations(ctx)
	if err != nil {
		return sum, FallbackError("realign annotations", err)
	}
	sum.Updated += updated
	if orphans > 0 {
		slog.Warn("Annotations refer to missing assemblies", "annotations", orphans)
	}

	for _, kind := range []taxon.LeafKind{taxon.Assemblies, taxon.Annotations} {
		if err = r.fallback(ctx, kind, &sum); err != nil {
			return sum, err
		}
	}
	slog.Info("Fallback finished", "summary", sum.String())
	return sum, nil
}

func (r *reconciler) fallback(
	ctx context.Context,
	kind taxon.LeafKind,
	sum *lifecycle.Summary,
) error {
	ids, err := r.store.EmptyLineageTaxIDs(ctx, kind)
	if err != nil {
		return FallbackError(string(kind), err)
	}
	if len(ids) == 0 {
		return nil
	}
	orgs, err := r.store.Organisms(ctx, ids)
	if err != nil {
		return FallbackError(string(kind), err)
	}

	for _, id := range ids {
		org, ok := orgs[id]
		if !ok || len(org.Lineage) == 0 {
			lifecycle.Add(sum, lifecycle.Skipped[string](lifecycle.SkipNotFound, nil))
			continue
		}
		n, err := r.store.SetLeafLineage(ctx, kind, org, true)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.Warn("Cannot set lineage",
				"records", kind,
				"taxid", id,
				"reason", lifecycle.SkipUpdateFailed,
				"error", err,
			)
			sum.Fail(lifecycle.SkipUpdateFailed, 1)
			continue
		}
		lifecycle.Add(sum, lifecycle.Done(id))
		sum.Updated += n
	}
	return nil
}
