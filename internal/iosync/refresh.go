package iosync

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/gnames/gntaxdb/pkg/batch"
	"github.com/gnames/gntaxdb/pkg/lifecycle"
	"github.com/gnames/gntaxdb/pkg/lineage"
	"github.com/gnames/gntaxdb/pkg/parserpool"
	"github.com/gnames/gntaxdb/pkg/taxon"
)

// Refresh fetches stored organisms again in batches of RefreshBatchSize.
// A changed organism is overwritten, and its lineage and name are copied
// to its assemblies and annotations. Taxa get new names and ranks, new
// ancestors are inserted and linked to the tree.
func (r *reconciler) Refresh(ctx context.Context) (sum lifecycle.Summary, err error) {
	start := time.Now()
	sum = lifecycle.NewSummary("refresh")
	defer func() { sum.Duration = time.Since(start) }()

	var idx int
	err = r.store.StreamOrganismIDs(ctx, RefreshBatchSize, func(ids []string) error {
		defer func() { idx++ }()
		return r.refreshBatch(ctx, idx, ids, &sum)
	})
	if err != nil {
		if ctx.Err() != nil {
			return sum, ctx.Err()
		}
		return sum, RefreshError("organisms", err)
	}
	slog.Info("Refresh finished", "summary", sum.String())
	return sum, nil
}

func (r *reconciler) refreshBatch(
	ctx context.Context,
	idx int,
	ids []string,
	sum *lifecycle.Summary,
) error {
	f, err := r.fetchBatch(ctx, idx, ids)
	if err != nil {
		return err
	}
	sum.Merge(f.sum)
	if len(f.cands) == 0 {
		return nil
	}

	stored, err := r.store.Organisms(ctx, ids)
	if err != nil {
		return err
	}

	var cands []*lineage.Candidate
	relinked := make(map[string][]string)
	for _, c := range f.cands {
		old, ok := stored[c.Organism.TaxID]
		if !ok {
			continue
		}
		cands = append(cands, c)
		sum.Resolved++
		if sameOrganism(old, c.Organism) {
			continue
		}
		if !r.updateOrganism(ctx, c.Organism, sum) {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			continue
		}
		if !slices.Equal(old.Lineage, c.Organism.Lineage) {
			relinked[c.Organism.TaxID] = c.Organism.Lineage
		}
	}

	if err = r.refreshTaxa(ctx, cands, sum); err != nil {
		return err
	}
	if len(relinked) == 0 {
		return nil
	}

	orgIDs := make([]string, 0, len(relinked))
	for _, c := range cands {
		if _, ok := relinked[c.Organism.TaxID]; ok {
			orgIDs = append(orgIDs, c.Organism.TaxID)
		}
	}
	edges, err := r.edges(ctx, orgIDs, relinked)
	if err != nil {
		return err
	}
	r.addChildren(ctx, edges, sum)
	return ctx.Err()
}

// updateOrganism overwrites an organism and its leaf records. It returns
// false if the organism could not be written.
func (r *reconciler) updateOrganism(
	ctx context.Context,
	org taxon.Organism,
	sum *lifecycle.Summary,
) bool {
	if err := r.store.UpdateOrganism(ctx, org); err != nil {
		slog.Warn("Cannot update organism",
			"taxid", org.TaxID,
			"reason", lifecycle.SkipUpdateFailed,
			"error", err,
		)
		sum.Fail(lifecycle.SkipUpdateFailed, 1)
		return false
	}
	sum.Updated++

	for _, kind := range []taxon.LeafKind{taxon.Assemblies, taxon.Annotations} {
		n, err := r.store.SetLeafLineage(ctx, kind, org, false)
		if err != nil {
			slog.Warn("Cannot update lineage",
				"records", kind,
				"taxid", org.TaxID,
				"reason", lifecycle.SkipUpdateFailed,
				"error", err,
			)
			sum.Fail(lifecycle.SkipUpdateFailed, 1)
			continue
		}
		sum.Updated += n
	}
	return true
}

// refreshTaxa updates names and ranks of stored taxa from the authority
// and inserts taxa that appeared in new lineages.
func (r *reconciler) refreshTaxa(
	ctx context.Context,
	cands []*lineage.Candidate,
	sum *lifecycle.Summary,
) error {
	seen := make(map[string]struct{})
	var nodes []taxon.Node
	var ids []string
	for _, c := range cands {
		var fresh []taxon.Node
		for _, n := range c.Nodes {
			if _, ok := seen[n.TaxID]; ok {
				continue
			}
			seen[n.TaxID] = struct{}{}
			fresh = append(fresh, n)
			ids = append(ids, n.TaxID)
		}
		parserpool.NameNodes(r.names, c.Organism.Lineage, fresh)
		nodes = append(nodes, fresh...)
	}
	if len(nodes) == 0 {
		return nil
	}

	stored, err := r.store.ExistingTaxa(ctx, ids)
	if err != nil {
		return err
	}
	exists := make(map[string]struct{}, len(stored))
	for _, id := range stored {
		exists[id] = struct{}{}
	}

	var upd, ins []taxon.Node
	for _, n := range nodes {
		if _, ok := exists[n.TaxID]; ok {
			upd = append(upd, n)
			continue
		}
		ins = append(ins, n)
	}

	for _, sub := range batch.Split(upd, r.cfg.Taxonomy.UpdateBatchSize) {
		n, err := r.store.UpdateTaxa(ctx, sub)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.Warn("Cannot update taxa",
				"taxids", len(sub),
				"reason", lifecycle.SkipUpdateFailed,
				"error", err,
			)
			sum.Fail(lifecycle.SkipUpdateFailed, 1)
			continue
		}
		sum.Updated += n
	}

	_, err = r.insertTaxa(ctx, ins, false, sum)
	return err
}

func sameOrganism(a, b taxon.Organism) bool {
	return a.ScientificName == b.ScientificName &&
		a.CommonName == b.CommonName &&
		slices.Equal(a.Lineage, b.Lineage)
}
