package iobrowse_test

import (
	"context"
	"errors"
	"testing"

	"github.com/gnames/gn"
	"github.com/gnames/gntaxdb/internal/iobrowse"
	"github.com/gnames/gntaxdb/internal/iotesting"
	"github.com/gnames/gntaxdb/pkg/errcode"
	"github.com/gnames/gntaxdb/pkg/taxon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBrowser() *iobrowse.Browser {
	st := iotesting.NewMemStore()
	for _, n := range []taxon.Node{
		{TaxID: "131567", ScientificName: "cellular organisms", Rank: "no rank",
			Children: []string{"2759"}},
		{TaxID: "2759", ScientificName: "Eukaryota", Rank: "superkingdom",
			Children: []string{"40674"}},
		{TaxID: "40674", ScientificName: "Mammalia", Rank: "class",
			Children: []string{"9604", "10066"},
			Counts:   taxon.Counts{Annotations: 3, Assemblies: 4, Organisms: 3}},
		{TaxID: "9604", ScientificName: "Hominidae", Rank: "family",
			Children: []string{"9606"},
			Counts:   taxon.Counts{Annotations: 2, Assemblies: 3, Organisms: 2}},
		{TaxID: "10066", ScientificName: "Muridae", Rank: "family",
			Children: []string{"9606"},
			Counts:   taxon.Counts{Annotations: 1, Assemblies: 1, Organisms: 1}},
		{TaxID: "9606", ScientificName: "Homo sapiens", Rank: "species",
			Counts: taxon.Counts{Annotations: 2, Assemblies: 2, Organisms: 1}},
	} {
		st.AddTaxon(n)
	}
	return iobrowse.New(st)
}

func errCode(err error) gn.ErrorCode {
	var gnErr *gn.Error
	if errors.As(err, &gnErr) {
		return gnErr.Code
	}
	return 0
}

func TestList(t *testing.T) {
	ctx := context.Background()
	b := newBrowser()

	tests := []struct {
		msg   string
		q     taxon.Query
		total int
		ids   []string
	}{
		{"all", taxon.Query{}, 6,
			[]string{"10066", "131567", "2759", "40674", "9604", "9606"}},
		{"rank", taxon.Query{Rank: " Family "}, 2, []string{"10066", "9604"}},
		{"filter", taxon.Query{Filter: "homo"}, 1, []string{"9606"}},
		{"taxid filter", taxon.Query{Filter: "2759"}, 1, []string{"2759"}},
		{"taxids", taxon.Query{TaxIDs: []string{"9606", " 9604"}}, 2,
			[]string{"9604", "9606"}},
		{"sort", taxon.Query{SortBy: "assemblies_count", Desc: true, Limit: 2}, 6,
			[]string{"40674", "9604"}},
		{"page", taxon.Query{Offset: 4, Limit: 5}, 6, []string{"9604", "9606"}},
		{"after end", taxon.Query{Offset: 10}, 6, nil},
	}

	for _, v := range tests {
		t.Run(v.msg, func(t *testing.T) {
			res, err := b.List(ctx, v.q)
			require.NoError(t, err)
			assert.Equal(t, v.total, res.Total)
			var ids []string
			for _, n := range res.Taxa {
				ids = append(ids, n.TaxID)
			}
			assert.Equal(t, v.ids, ids)
		})
	}
}

func TestList_Invalid(t *testing.T) {
	ctx := context.Background()
	b := newBrowser()

	for _, q := range []taxon.Query{
		{SortBy: "name"},
		{Rank: "Family!"},
		{Limit: taxon.MaxLimit + 1},
		{Offset: -1},
		{TaxIDs: []string{"human"}},
	} {
		_, err := b.List(ctx, q)
		require.Error(t, err)
		assert.Equal(t, errcode.QueryInvalidError, errCode(err))
	}
}

func TestRanks(t *testing.T) {
	res, err := newBrowser().Ranks(context.Background())
	require.NoError(t, err)
	require.Len(t, res, 5)
	assert.Equal(t, taxon.RankFrequency{Rank: "family", Count: 2}, res[0])
}

func TestNode(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	b := newBrowser()

	n, children, err := b.Node(ctx, "40674")
	require.NoError(t, err)
	assert.Equal("Mammalia", n.ScientificName)
	require.Len(t, children, 2)
	assert.Equal("10066", children[0].TaxID)
	assert.Equal("9604", children[1].TaxID)

	n, children, err = b.Node(ctx, "9606")
	require.NoError(t, err)
	assert.Equal("species", n.Rank)
	assert.Empty(children)

	_, _, err = b.Node(ctx, "1")
	assert.Equal(errcode.TaxonNotFoundError, errCode(err))

	_, _, err = b.Node(ctx, "abc")
	assert.Equal(errcode.QueryInvalidError, errCode(err))
}

func TestAncestors(t *testing.T) {
	res, err := newBrowser().Ancestors(context.Background(), "9606")
	require.NoError(t, err)

	var ids []string
	for _, n := range res {
		ids = append(ids, n.TaxID)
	}
	// 9606 has two parents, the greatest taxid is followed.
	assert.Equal(t, []string{"131567", "2759", "40674", "10066", "9606"}, ids)

	_, err = newBrowser().Ancestors(context.Background(), "1")
	assert.Equal(t, errcode.TaxonNotFoundError, errCode(err))
}

func TestAncestors_Cycle(t *testing.T) {
	st := iotesting.NewMemStore()
	st.AddTaxon(taxon.Node{TaxID: "1", Children: []string{"2"}})
	st.AddTaxon(taxon.Node{TaxID: "2", Children: []string{"1"}})

	res, err := iobrowse.New(st).Ancestors(context.Background(), "2")
	require.NoError(t, err)
	assert.Len(t, res, 2)
}

func TestFlatten(t *testing.T) {
	assert := assert.New(t)
	rows, err := newBrowser().Flatten(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 5)

	byID := make(map[string]taxon.FlatRow)
	for _, r := range rows {
		byID[r.TaxID] = r
	}
	assert.NotContains(byID, taxon.CellularOrganisms)
	assert.Equal("", byID["2759"].ParentTaxID)
	assert.Equal("2759", byID["40674"].ParentTaxID)
	assert.Equal("10066", byID["9606"].ParentTaxID)
	assert.Equal("Homo sapiens", byID["9606"].ScientificName)
	assert.Equal(2, byID["9606"].Annotations)
	assert.Equal(4, byID["40674"].Assemblies)
}
