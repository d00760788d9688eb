// Package lineage reads organisms and their ancestor chains from
// ENA browser taxonomy XML.
//
// A payload looks like
//
//	<TAXON_SET>
//	  <taxon taxId="9606" scientificName="Homo sapiens" commonName="human">
//	    <lineage>
//	      <taxon taxId="9605" scientificName="Homo" rank="genus"/>
//	      ...
//	      <taxon taxId="1" scientificName="root"/>
//	    </lineage>
//	  </taxon>
//	  ...
//	</TAXON_SET>
//
// Every top-level taxon becomes a Candidate. Payloads are parsed as a
// stream, one organism subtree at a time.
package lineage

import (
	"context"
	"io"

	"github.com/gnames/gntaxdb/pkg/taxon"
)

// RootName is the name of the root of the taxonomy. The root is not kept
// in lineages.
const RootName = "root"

// Source is a client of the lineage authority.
type Source interface {
	// Fetch writes the payload for the given taxids to w and returns the
	// number of bytes written. The payload may be gzip-compressed.
	Fetch(ctx context.Context, taxids []string, w io.Writer) (int64, error)
}

// Candidate is an organism together with the taxa of its lineage,
// ready to be stored.
type Candidate struct {
	Organism taxon.Organism
	// Nodes are ordered like Organism.Lineage. The first node is the
	// organism itself with "organism" rank.
	Nodes []taxon.Node
}
