package cmd

import (
	"fmt"
	"io"

	"github.com/gnames/gnfmt"
	"github.com/gnames/gntaxdb/pkg/taxon"
)

type nodeOut struct {
	TaxID            string       `json:"taxid"`
	ScientificName   string       `json:"scientific_name"`
	Canonical        string       `json:"canonical,omitempty"`
	NameID           string       `json:"name_id,omitempty"`
	Rank             string       `json:"rank"`
	Children         []string     `json:"children"`
	AnnotationsCount int          `json:"annotations_count"`
	AssembliesCount  int          `json:"assemblies_count"`
	OrganismsCount   int          `json:"organisms_count"`
	Stats            *taxon.Stats `json:"stats,omitempty"`
}

type pageOut struct {
	Total   int       `json:"total"`
	Offset  int       `json:"offset"`
	Limit   int       `json:"limit"`
	Results []nodeOut `json:"results"`
}

type nodeWithChildren struct {
	nodeOut
	ChildNodes []nodeOut `json:"child_nodes"`
}

type rankOut struct {
	Rank  string `json:"rank"`
	Count int    `json:"count"`
}

func toNodeOut(n taxon.Node) nodeOut {
	children := n.Children
	if children == nil {
		children = []string{}
	}
	return nodeOut{
		TaxID:            n.TaxID,
		ScientificName:   n.ScientificName,
		Canonical:        n.Canonical,
		NameID:           n.NameID,
		Rank:             n.Rank,
		Children:         children,
		AnnotationsCount: n.Annotations,
		AssembliesCount:  n.Assemblies,
		OrganismsCount:   n.Organisms,
		Stats:            n.Stats,
	}
}

func toNodesOut(nodes []taxon.Node) []nodeOut {
	res := make([]nodeOut, len(nodes))
	for i, n := range nodes {
		res[i] = toNodeOut(n)
	}
	return res
}

func toPageOut(p taxon.Page) pageOut {
	return pageOut{
		Total:   p.Total,
		Offset:  p.Offset,
		Limit:   p.Limit,
		Results: toNodesOut(p.Taxa),
	}
}

func toRanksOut(rfs []taxon.RankFrequency) []rankOut {
	res := make([]rankOut, len(rfs))
	for i, v := range rfs {
		res[i] = rankOut{Rank: v.Rank, Count: v.Count}
	}
	return res
}

// printJSON writes v as JSON followed by a new line.
func printJSON(w io.Writer, v any, pretty bool) error {
	enc := gnfmt.GNjson{Pretty: pretty}
	bs, err := enc.Encode(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(bs))
	return err
}
