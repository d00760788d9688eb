// Package schema provides database schema models for GNtaxdb.
//
// Lineages are kept as PostgreSQL text arrays ordered from the most
// specific taxon to the most general one. GIN indexes on the arrays make
// containment queries (taxa of a lineage, parents of a child) cheap.
package schema

import (
	"encoding/json"
)

// Organism is an organism known to the lineage authority.
type Organism struct {
	// TaxID is the authority identifier of the organism.
	TaxID string `gorm:"column:taxid;primaryKey;type:varchar(20)"`

	// ScientificName of the organism.
	ScientificName string `gorm:"column:scientific_name;type:text;not null;default:''"`

	// CommonName of the organism, might be empty.
	CommonName string `gorm:"column:common_name;type:text;not null;default:''"`

	// TaxonLineage starts with TaxID and ends with the most general taxon.
	TaxonLineage []string `gorm:"column:taxon_lineage;type:text[];not null;default:'{}';index:idx_organisms_lineage,type:gin"`

	AnnotationsCount int `gorm:"column:annotations_count;not null;default:0"`
	AssembliesCount  int `gorm:"column:assemblies_count;not null;default:0"`
}

// TableName returns the PostgreSQL table name.
func (Organism) TableName() string { return "organisms" }

// TaxonNode is a node of the classification tree.
type TaxonNode struct {
	TaxID          string `gorm:"column:taxid;primaryKey;type:varchar(20)"`
	ScientificName string `gorm:"column:scientific_name;type:text;not null;default:'';index:idx_taxon_nodes_name"`

	// Canonical is the simple canonical form of the scientific name.
	Canonical string `gorm:"column:canonical;type:text;not null;default:''"`

	// NameID is UUID v5 of Canonical, NULL when the name does not parse.
	NameID *string `gorm:"column:name_id;type:uuid;index:idx_taxon_nodes_name_id"`

	Rank string `gorm:"column:rank;type:varchar(100);not null;default:'other';index:idx_taxon_nodes_rank"`

	// Children are taxids of direct descendants, sorted.
	Children []string `gorm:"column:children;type:text[];not null;default:'{}';index:idx_taxon_nodes_children,type:gin"`

	AnnotationsCount int `gorm:"column:annotations_count;not null;default:0"`
	AssembliesCount  int `gorm:"column:assemblies_count;not null;default:0"`
	OrganismsCount   int `gorm:"column:organisms_count;not null;default:0"`

	// Stats keeps gene count statistics:
	// {"genes": {"coding": {"count": {"mean": ...}}}}.
	Stats json.RawMessage `gorm:"column:stats;type:jsonb"`
}

// TableName returns the PostgreSQL table name.
func (TaxonNode) TableName() string { return "taxon_nodes" }

// Assembly is a genome assembly. Assemblies are written by the catalog,
// taxonomy code only updates their lineage and organism name.
type Assembly struct {
	AssemblyAccession string   `gorm:"column:assembly_accession;primaryKey;type:varchar(50)"`
	TaxID             string   `gorm:"column:taxid;type:varchar(20);not null;index:idx_assemblies_taxid"`
	OrganismName      string   `gorm:"column:organism_name;type:text;not null;default:''"`
	TaxonLineage      []string `gorm:"column:taxon_lineage;type:text[];not null;default:'{}';index:idx_assemblies_lineage,type:gin"`
}

// TableName returns the PostgreSQL table name.
func (Assembly) TableName() string { return "assemblies" }

// Annotation is a genome annotation of an assembly.
type Annotation struct {
	AnnotationID      string   `gorm:"column:annotation_id;primaryKey;type:varchar(100)"`
	AssemblyAccession string   `gorm:"column:assembly_accession;type:varchar(50);not null;index:idx_annotations_assembly"`
	TaxID             string   `gorm:"column:taxid;type:varchar(20);not null;index:idx_annotations_taxid"`
	OrganismName      string   `gorm:"column:organism_name;type:text;not null;default:''"`
	TaxonLineage      []string `gorm:"column:taxon_lineage;type:text[];not null;default:'{}';index:idx_annotations_lineage,type:gin"`

	// FeaturesStatistics is produced by the GFF statistics parser. Gene
	// counts are read from
	// gene_category_stats.<category>.total_count.
	FeaturesStatistics json.RawMessage `gorm:"column:features_statistics;type:jsonb"`
}

// TableName returns the PostgreSQL table name.
func (Annotation) TableName() string { return "annotations" }
