package iosync

import (
	"context"
	"log/slog"
	"maps"
	"slices"

	"github.com/gnames/gntaxdb/pkg/batch"
	"github.com/gnames/gntaxdb/pkg/lifecycle"
	"github.com/gnames/gntaxdb/pkg/lineage"
	"github.com/gnames/gntaxdb/pkg/parserpool"
	"github.com/gnames/gntaxdb/pkg/taxon"
)

// persist stores organisms and taxa of one fetch batch and links their
// lineages into the tree. It returns taxids of organisms that are stored
// after the batch.
func (r *reconciler) persist(
	ctx context.Context,
	cands []*lineage.Candidate,
	sum *lifecycle.Summary,
) ([]string, error) {
	if len(cands) == 0 {
		return nil, nil
	}
	saved, err := r.saveOrganisms(ctx, cands, sum)
	if err != nil || len(saved) == 0 {
		return nil, err
	}
	if err = r.saveTaxa(ctx, saved, sum); err != nil {
		return nil, err
	}

	ids := make([]string, len(saved))
	for i, c := range saved {
		ids[i] = c.Organism.TaxID
	}
	return r.link(ctx, ids, sum)
}

// saveOrganisms inserts organisms in sub-batches. A rejected sub-batch is
// dropped as a whole and its taxids are deleted from the store.
func (r *reconciler) saveOrganisms(
	ctx context.Context,
	cands []*lineage.Candidate,
	sum *lifecycle.Summary,
) ([]*lineage.Candidate, error) {
	var res []*lineage.Candidate
	for _, sub := range batch.Split(cands, r.cfg.Taxonomy.InsertBatchSize) {
		orgs := make([]taxon.Organism, len(sub))
		ids := make([]string, len(sub))
		for i, c := range sub {
			orgs[i] = c.Organism
			ids[i] = c.Organism.TaxID
		}

		err := r.store.InsertOrganisms(ctx, orgs)
		if err == nil {
			res = append(res, sub...)
			sum.Inserted += len(sub)
			continue
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		slog.Warn("Dropping organisms batch",
			"taxids", len(ids),
			"reason", lifecycle.SkipInsertConflict,
			"error", err,
		)
		sum.Fail(lifecycle.SkipInsertConflict, 1)
		n, err := r.store.DeleteOrganisms(ctx, ids)
		if err != nil {
			return nil, SyncError("compensate organisms", err)
		}
		sum.Deleted += n
	}
	return res, nil
}

// saveTaxa inserts taxa of saved organisms that are not stored yet. The
// first occurrence of a taxid wins. When a sub-batch is rejected its taxa
// and every organism that has them in its lineage are deleted.
func (r *reconciler) saveTaxa(
	ctx context.Context,
	saved []*lineage.Candidate,
	sum *lifecycle.Summary,
) error {
	all := make(map[string]struct{})
	for _, c := range saved {
		for _, n := range c.Nodes {
			all[n.TaxID] = struct{}{}
		}
	}
	stored, err := r.store.ExistingTaxa(ctx, slices.Sorted(maps.Keys(all)))
	if err != nil {
		return SyncError("existing taxa", err)
	}
	seen := make(map[string]struct{}, len(all))
	for _, id := range stored {
		seen[id] = struct{}{}
	}

	var nodes []taxon.Node
	for _, c := range saved {
		var fresh []taxon.Node
		for _, n := range c.Nodes {
			if _, ok := seen[n.TaxID]; ok || n.TaxID == "" {
				continue
			}
			seen[n.TaxID] = struct{}{}
			fresh = append(fresh, n)
		}
		parserpool.NameNodes(r.names, c.Organism.Lineage, fresh)
		nodes = append(nodes, fresh...)
	}

	_, err = r.insertTaxa(ctx, nodes, true, sum)
	return err
}

// insertTaxa inserts nodes in sub-batches and returns the inserted ones.
// With cascade a rejected sub-batch also deletes organisms that depend
// on its taxa.
func (r *reconciler) insertTaxa(
	ctx context.Context,
	nodes []taxon.Node,
	cascade bool,
	sum *lifecycle.Summary,
) ([]taxon.Node, error) {
	var res []taxon.Node
	for _, sub := range batch.Split(nodes, r.cfg.Taxonomy.InsertBatchSize) {
		err := r.store.InsertTaxa(ctx, sub)
		if err == nil {
			res = append(res, sub...)
			sum.Inserted += len(sub)
			continue
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		ids := make([]string, len(sub))
		for i, n := range sub {
			ids[i] = n.TaxID
		}
		slog.Warn("Dropping taxa batch",
			"taxids", len(ids),
			"reason", lifecycle.SkipInsertConflict,
			"error", err,
		)
		sum.Fail(lifecycle.SkipInsertConflict, 1)

		n, err := r.store.DeleteTaxa(ctx, ids)
		if err != nil {
			return nil, SyncError("compensate taxa", err)
		}
		sum.Deleted += n
		if !cascade {
			continue
		}
		n, err = r.store.DeleteOrganismsInLineage(ctx, ids)
		if err != nil {
			return nil, SyncError("compensate organisms", err)
		}
		sum.Deleted += n
	}
	return res, nil
}

// link reloads lineages of organisms and adds every child to its parent.
// Taxa missing from the store are skipped, so a gap joins its neighbours.
// Edges only get added here, stale ones are removed by a rebuild.
func (r *reconciler) link(
	ctx context.Context,
	taxids []string,
	sum *lifecycle.Summary,
) ([]string, error) {
	lineages, err := r.store.OrganismLineages(ctx, taxids)
	if err != nil {
		return nil, SyncError("reload lineages", err)
	}
	sum.Resolved += len(lineages)
	if len(lineages) == 0 {
		return nil, nil
	}

	ids := slices.Sorted(maps.Keys(lineages))
	edges, err := r.edges(ctx, ids, lineages)
	if err != nil {
		return nil, err
	}
	r.addChildren(ctx, edges, sum)
	return ids, ctx.Err()
}

// edges returns parent/child pairs of lineages in the order of taxids,
// leaving out taxa that are not stored.
func (r *reconciler) edges(
	ctx context.Context,
	taxids []string,
	lineages map[string][]string,
) ([]taxon.Edge, error) {
	all := make(map[string]struct{})
	for _, lin := range lineages {
		for _, id := range lin {
			all[id] = struct{}{}
		}
	}
	stored, err := r.store.ExistingTaxa(ctx, slices.Sorted(maps.Keys(all)))
	if err != nil {
		return nil, SyncError("existing taxa", err)
	}
	exists := make(map[string]struct{}, len(stored))
	for _, id := range stored {
		exists[id] = struct{}{}
	}

	var res []taxon.Edge
	for _, id := range taxids {
		lin := make([]string, 0, len(lineages[id]))
		for _, t := range lineages[id] {
			if _, ok := exists[t]; ok {
				lin = append(lin, t)
			}
		}
		res = append(res, taxon.Edges(lin)...)
	}
	return res, nil
}

// addChildren writes edges in batches. A failed batch is counted and left
// for the next rebuild.
func (r *reconciler) addChildren(
	ctx context.Context,
	edges []taxon.Edge,
	sum *lifecycle.Summary,
) {
	for _, sub := range batch.Split(edges, r.cfg.Taxonomy.UpdateBatchSize) {
		err := r.store.AddChildren(ctx, sub)
		if err == nil {
			continue
		}
		if ctx.Err() != nil {
			return
		}
		slog.Warn("Cannot add children",
			"edges", len(sub),
			"reason", lifecycle.SkipUpdateFailed,
			"error", err,
		)
		sum.Fail(lifecycle.SkipUpdateFailed, 1)
	}
}
