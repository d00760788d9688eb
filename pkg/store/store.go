// Package store defines persistence used by taxonomy reconciliation,
// hierarchy rebuilds and statistics aggregation.
//
// Implementations must make every write idempotent when keyed by taxid:
// set-union for AddChildren, overwrite for SetChildren and counters. No
// method requires cross-record transactions except the insert methods,
// which must apply a batch entirely or not at all.
package store

import (
	"context"

	"github.com/gnames/gntaxdb/pkg/hierarchy"
	"github.com/gnames/gntaxdb/pkg/taxon"
)

// Store combines all persistence contracts.
type Store interface {
	Organisms
	Taxa
	Leaves
	Browser
}

// Organisms is the organism collection.
type Organisms interface {
	// OrganismLineages returns lineages of the given taxids that have an
	// organism.
	OrganismLineages(ctx context.Context, taxids []string) (map[string][]string, error)

	// Organisms returns stored organisms of the given taxids.
	Organisms(ctx context.Context, taxids []string) (map[string]taxon.Organism, error)

	// InsertOrganisms inserts all organisms or none of them.
	InsertOrganisms(ctx context.Context, orgs []taxon.Organism) error

	// UpdateOrganism overwrites names and lineage of an organism.
	UpdateOrganism(ctx context.Context, org taxon.Organism) error

	// DeleteOrganisms removes organisms by taxid.
	DeleteOrganisms(ctx context.Context, taxids []string) (int, error)

	// DeleteOrganismsInLineage removes organisms whose lineage contains
	// any of the taxids.
	DeleteOrganismsInLineage(ctx context.Context, taxids []string) (int, error)

	// StreamOrganismIDs sends taxids of all organisms in chunks.
	StreamOrganismIDs(ctx context.Context, size int, fn func([]string) error) error

	// ResetOrganismCounts sets counters of all organisms to zero.
	ResetOrganismCounts(ctx context.Context) error

	// SetOrganismCounts writes one counter (annotations or assemblies) of
	// organisms.
	SetOrganismCounts(ctx context.Context, kind taxon.LeafKind, counts map[string]int) error

	// DeleteOrphanOrganisms removes organisms without annotations.
	DeleteOrphanOrganisms(ctx context.Context) (int, error)
}

// Taxa is the taxon node collection.
type Taxa interface {
	// ExistingTaxa returns those of the taxids that are stored.
	ExistingTaxa(ctx context.Context, taxids []string) ([]string, error)

	// InsertTaxa inserts all nodes or none of them.
	InsertTaxa(ctx context.Context, nodes []taxon.Node) error

	// UpdateTaxa overwrites names and ranks of stored nodes.
	UpdateTaxa(ctx context.Context, nodes []taxon.Node) (int, error)

	// DeleteTaxa removes nodes by taxid.
	DeleteTaxa(ctx context.Context, taxids []string) (int, error)

	// AddChildren adds children to parents as a set union. Parents that
	// are not stored are ignored.
	AddChildren(ctx context.Context, edges []taxon.Edge) error

	// StreamChildren sends every stored node with its children.
	StreamChildren(ctx context.Context, fn func(taxid string, children []string) error) error

	// SetChildren overwrites children of nodes.
	SetChildren(ctx context.Context, updates []hierarchy.Update) error

	// PullChildren removes taxids from children of every node and returns
	// the number of changed nodes.
	PullChildren(ctx context.Context, taxids []string) (int, error)

	// ResetCounts sets rollup counters of all nodes to zero.
	ResetCounts(ctx context.Context) error

	// SetCounts writes one rollup counter of nodes.
	SetCounts(ctx context.Context, kind taxon.LeafKind, counts map[string]int) error

	// DeleteOrphanTaxa removes nodes without annotations and returns their
	// taxids.
	DeleteOrphanTaxa(ctx context.Context) ([]string, error)

	// ResetStats gives every node zero statistics of all gene categories.
	ResetStats(ctx context.Context) error

	// SetGeneStats writes statistics of one gene category.
	SetGeneStats(ctx context.Context, cat taxon.GeneCategory, stats map[string]taxon.Summary) error
}

// Leaves gives access to assemblies and annotations.
type Leaves interface {
	// StreamLineages sends every distinct lineage of a collection.
	StreamLineages(ctx context.Context, kind taxon.LeafKind, fn func([]string) error) error

	// LeafTaxIDs returns distinct taxids of assemblies and annotations.
	LeafTaxIDs(ctx context.Context) ([]string, error)

	// EmptyLineageTaxIDs returns distinct taxids of records that have no
	// lineage.
	EmptyLineageTaxIDs(ctx context.Context, kind taxon.LeafKind) ([]string, error)

	// SetLeafLineage writes lineage and organism name of an organism to
	// records with its taxid. With onlyEmpty only records without lineage
	// are changed.
	SetLeafLineage(ctx context.Context, kind taxon.LeafKind, org taxon.Organism, onlyEmpty bool) (int, error)

	// RealignAnnotations copies taxid, organism name and lineage of an
	// assembly to its annotations when they disagree. It returns the
	// number of updated annotations and the number of annotations whose
	// assembly is missing.
	RealignAnnotations(ctx context.Context) (updated int, orphans int, err error)

	// Rollup counts records of a collection per taxon of their lineages.
	Rollup(ctx context.Context, kind taxon.LeafKind, fn func(taxid string, count int) error) error

	// RollupByTaxID counts records of a collection per their own taxid.
	RollupByTaxID(ctx context.Context, kind taxon.LeafKind, fn func(taxid string, count int) error) error

	// GeneStats sends statistics of gene counts of annotations per taxon
	// of their lineages. Annotations without the value are not part of
	// the sample.
	GeneStats(ctx context.Context, cat taxon.GeneCategory, fn func(taxid string, s taxon.Summary) error) error
}

// Browser reads the tree for clients.
type Browser interface {
	// ListTaxa returns a page of nodes. The query must be normalized and
	// valid.
	ListTaxa(ctx context.Context, q taxon.Query) (taxon.Page, error)

	// RankFrequencies returns the number of nodes per rank.
	RankFrequencies(ctx context.Context) ([]taxon.RankFrequency, error)

	// Taxon returns a node or nil if it does not exist.
	Taxon(ctx context.Context, taxid string) (*taxon.Node, error)

	// TaxaByIDs returns stored nodes of the taxids, sorted by taxid.
	TaxaByIDs(ctx context.Context, taxids []string) ([]taxon.Node, error)

	// Parents returns nodes that list the taxid among their children.
	Parents(ctx context.Context, taxid string) ([]string, error)

	// StreamTree sends every node with counts and children.
	StreamTree(ctx context.Context, fn func(taxon.Node) error) error
}
