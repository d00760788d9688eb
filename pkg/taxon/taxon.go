// Package taxon contains entities of the taxonomy tree and of the records
// that point into it.
package taxon

// CellularOrganisms is the taxid of "cellular organisms". It sits between
// the root and the superkingdoms and is skipped in flattened trees.
const CellularOrganisms = "131567"

// RankOrganism is assigned to the taxon that represents an organism itself.
const RankOrganism = "organism"

// RankOther is assigned when the authority reports no rank.
const RankOther = "other"

// Organism is an organism received from the lineage authority.
type Organism struct {
	// TaxID is the stable identifier of the organism at the authority.
	TaxID string
	// ScientificName of the organism.
	ScientificName string
	// CommonName of the organism, might be empty.
	CommonName string
	// Lineage is ordered from the organism itself to the most general
	// taxon. Lineage[0] is always TaxID.
	Lineage []string
}

// Node is one taxon of the classification tree.
type Node struct {
	TaxID          string
	ScientificName string
	// Canonical is the simple canonical form of ScientificName, empty when
	// the name cannot be parsed.
	Canonical string
	// NameID is UUIDv5 of the canonical form.
	NameID   string
	Rank     string
	Children []string
	Counts
	Stats *Stats
}

// Counts are rollup counters of records whose lineage includes a taxon.
type Counts struct {
	Annotations int
	Assemblies  int
	Organisms   int
}

// Edge connects a child taxon to its parent.
type Edge struct {
	Parent string
	Child  string
}

// Edges returns parent/child pairs implied by a lineage, in lineage order.
func Edges(lineage []string) []Edge {
	if len(lineage) < 2 {
		return nil
	}
	res := make([]Edge, 0, len(lineage)-1)
	for i := 0; i < len(lineage)-1; i++ {
		res = append(res, Edge{Child: lineage[i], Parent: lineage[i+1]})
	}
	return res
}

// LeafKind names a collection of records that carry lineages.
type LeafKind string

const (
	Assemblies  LeafKind = "assemblies"
	Annotations LeafKind = "annotations"
	Organisms   LeafKind = "organisms"
)

// LeafKinds returns collections in the order they are processed.
func LeafKinds() []LeafKind {
	return []LeafKind{Annotations, Assemblies, Organisms}
}

// LeafRecord is a record of a leaf collection as seen by the taxonomy code.
type LeafRecord struct {
	ID           string
	TaxID        string
	OrganismName string
	Lineage      []string
}
