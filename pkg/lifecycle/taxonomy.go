package lifecycle

import (
	"context"
)

// Reconciler resolves lineages of new taxids and patches the tree
// incrementally. It only adds edges, removal of stale edges belongs to
// Rebuilder.
type Reconciler interface {
	// Sync makes sure that every given taxid has an organism with a
	// lineage. It returns lineages of all taxids that are resolved after
	// the run, unresolved taxids are absent from the map.
	Sync(ctx context.Context, taxids []string) (map[string][]string, Summary, error)

	// SyncFromLeaves runs Sync for all taxids found on assemblies and
	// annotations.
	SyncFromLeaves(ctx context.Context) (Summary, error)

	// Fallback copies lineages of organisms to leaf records that have an
	// empty lineage.
	Fallback(ctx context.Context) (Summary, error)

	// Refresh fetches stored organisms again and applies changes of names
	// and lineages reported by the authority.
	Refresh(ctx context.Context) (Summary, error)
}

// Rebuilder recomputes children of every taxon from leaf lineages.
type Rebuilder interface {
	// Rebuild overwrites children sets that differ from what lineages
	// imply. Running it twice without leaf changes changes nothing.
	Rebuild(ctx context.Context) (Summary, error)
}

// Aggregator computes counts and statistics of taxa from leaf records.
type Aggregator interface {
	// Rollups writes annotation, assembly and organism counts onto taxa
	// and organisms, and deletes taxa and organisms without annotations.
	Rollups(ctx context.Context) (Summary, error)

	// Distributions computes gene count statistics of every taxon.
	Distributions(ctx context.Context) (Summary, error)
}
