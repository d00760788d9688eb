// Package iobrowse reads the taxonomy tree for command line clients.
package iobrowse

import (
	"context"
	"slices"

	"github.com/gnames/gntaxdb/pkg/hierarchy"
	"github.com/gnames/gntaxdb/pkg/store"
	"github.com/gnames/gntaxdb/pkg/taxon"
)

// Browser answers read queries about the tree.
type Browser struct {
	st store.Browser
}

// New creates a Browser.
func New(st store.Browser) *Browser {
	return &Browser{st: st}
}

// List normalizes and validates the query and returns a page of taxa.
func (b *Browser) List(ctx context.Context, q taxon.Query) (taxon.Page, error) {
	q.Normalize()
	if err := q.Validate(); err != nil {
		return taxon.Page{}, QueryError(err)
	}
	res, err := b.st.ListTaxa(ctx, q)
	if err != nil {
		return taxon.Page{}, err
	}
	return res, nil
}

// Ranks returns the number of taxa per rank, most frequent first.
func (b *Browser) Ranks(ctx context.Context) ([]taxon.RankFrequency, error) {
	return b.st.RankFrequencies(ctx)
}

// Node returns a taxon together with its stored children.
func (b *Browser) Node(
	ctx context.Context,
	taxid string,
) (*taxon.Node, []taxon.Node, error) {
	n, err := b.taxon(ctx, taxid)
	if err != nil {
		return nil, nil, err
	}
	if len(n.Children) == 0 {
		return n, nil, nil
	}
	children, err := b.st.TaxaByIDs(ctx, n.Children)
	if err != nil {
		return nil, nil, err
	}
	return n, children, nil
}

// Ancestors returns the path from the most general taxon down to the
// taxon itself. When a taxon has several parents the greatest taxid is
// followed.
func (b *Browser) Ancestors(ctx context.Context, taxid string) ([]taxon.Node, error) {
	n, err := b.taxon(ctx, taxid)
	if err != nil {
		return nil, err
	}

	res := []taxon.Node{*n}
	seen := map[string]struct{}{n.TaxID: {}}
	id := n.TaxID
	for {
		parents, err := b.st.Parents(ctx, id)
		if err != nil {
			return nil, err
		}
		id = hierarchy.PickParent(parents)
		if id == "" {
			break
		}
		if _, ok := seen[id]; ok {
			break
		}
		seen[id] = struct{}{}

		p, err := b.st.Taxon(ctx, id)
		if err != nil {
			return nil, err
		}
		if p == nil {
			break
		}
		res = append(res, *p)
	}
	slices.Reverse(res)
	return res, nil
}

// Flatten returns every taxon except "cellular organisms" with one
// parent. Children of "cellular organisms" become roots.
func (b *Browser) Flatten(ctx context.Context) ([]taxon.FlatRow, error) {
	var rows []taxon.FlatRow
	parents := make(map[string][]string)
	err := b.st.StreamTree(ctx, func(n taxon.Node) error {
		if n.TaxID == taxon.CellularOrganisms {
			return nil
		}
		for _, c := range n.Children {
			parents[c] = append(parents[c], n.TaxID)
		}
		rows = append(rows, taxon.FlatRow{
			TaxID:          n.TaxID,
			ScientificName: n.ScientificName,
			Counts:         n.Counts,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	for i := range rows {
		rows[i].ParentTaxID = hierarchy.PickParent(parents[rows[i].TaxID])
	}
	return rows, nil
}

func (b *Browser) taxon(ctx context.Context, taxid string) (*taxon.Node, error) {
	if !taxon.IsTaxID(taxid) {
		return nil, QueryError(errMalformedTaxID(taxid))
	}
	n, err := b.st.Taxon(ctx, taxid)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, NotFoundError(taxid)
	}
	return n, nil
}
