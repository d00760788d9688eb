package iostats_test

import (
	"context"
	"testing"

	"github.com/gnames/gntaxdb/internal/iostats"
	"github.com/gnames/gntaxdb/internal/iotesting"
	"github.com/gnames/gntaxdb/pkg/config"
	"github.com/gnames/gntaxdb/pkg/lifecycle"
	"github.com/gnames/gntaxdb/pkg/taxon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	human = []string{"9606", "9605", "9604", "40674"}
	chimp = []string{"9598", "9596", "9604", "40674"}
	mouse = []string{"10090", "10088", "10066", "40674"}
)

func newStore() *iotesting.MemStore {
	st := iotesting.NewMemStore()
	for _, n := range []taxon.Node{
		{TaxID: "40674", Children: []string{"10066", "9604"}},
		{TaxID: "9604", Children: []string{"9596", "9605"}},
		{TaxID: "9605", Children: []string{"9606"}},
		{TaxID: "9606"},
		{TaxID: "9596", Children: []string{"9598"}},
		{TaxID: "9598"},
		{TaxID: "10066", Children: []string{"10088"}},
		{TaxID: "10088", Children: []string{"10090"}},
		{TaxID: "10090"},
	} {
		st.AddTaxon(n)
	}
	for _, o := range []taxon.Organism{
		{TaxID: "9606", Lineage: human},
		{TaxID: "9598", Lineage: chimp},
		{TaxID: "10090", Lineage: mouse},
	} {
		st.AddOrganism(o)
	}

	st.AddAssembly("GCA_1", "9606", "Homo sapiens", human)
	st.AddAssembly("GCA_2", "9606", "Homo sapiens", human)
	st.AddAssembly("GCA_3", "9598", "Pan troglodytes", chimp)
	st.AddAssembly("GCA_4", "10090", "Mus musculus", mouse)

	st.AddAnnotation("ann1", "GCA_1", "9606", "Homo sapiens", human,
		map[taxon.GeneCategory]float64{taxon.Coding: 10, taxon.NonCoding: 5})
	st.AddAnnotation("ann2", "GCA_2", "9606", "Homo sapiens", human,
		map[taxon.GeneCategory]float64{taxon.Coding: 20})
	st.AddAnnotation("ann3", "GCA_3", "9598", "Pan troglodytes", chimp,
		map[taxon.GeneCategory]float64{taxon.Coding: 30})
	return st
}

func newAggregator(st *iotesting.MemStore) lifecycle.Aggregator {
	cfg := config.New()
	cfg.Update([]config.Option{config.OptTaxonomyUpdateBatchSize(2)})
	return iostats.New(cfg, st)
}

func TestRollups(t *testing.T) {
	assert := assert.New(t)
	st := newStore()

	sum, err := newAggregator(st).Rollups(context.Background())
	require.NoError(t, err)
	assert.Equal(4, sum.Deleted)

	tests := []struct {
		taxid string
		want  taxon.Counts
	}{
		{"40674", taxon.Counts{Annotations: 3, Assemblies: 4, Organisms: 3}},
		{"9604", taxon.Counts{Annotations: 3, Assemblies: 3, Organisms: 2}},
		{"9606", taxon.Counts{Annotations: 2, Assemblies: 2, Organisms: 1}},
		{"9598", taxon.Counts{Annotations: 1, Assemblies: 1, Organisms: 1}},
	}
	for _, v := range tests {
		n := st.Node(v.taxid)
		require.NotNil(t, n, v.taxid)
		assert.Equal(v.want, n.Counts, v.taxid)
	}

	assert.Equal(taxon.Counts{Annotations: 2, Assemblies: 2}, st.OrganismCounts("9606"))
	assert.Equal(taxon.Counts{Annotations: 1, Assemblies: 1}, st.OrganismCounts("9598"))
}

func TestRollups_Pruning(t *testing.T) {
	st := newStore()
	_, err := newAggregator(st).Rollups(context.Background())
	require.NoError(t, err)

	for _, id := range []string{"10066", "10088", "10090"} {
		assert.Nil(t, st.Node(id), id)
	}
	for parent, children := range st.ChildrenMap() {
		assert.NotContains(t, children, "10066", parent)
	}
	assert.Equal(t, []string{"9604"}, st.ChildrenMap()["40674"])

	_, ok := st.Organism("10090")
	assert.False(t, ok)
	_, ok = st.Organism("9606")
	assert.True(t, ok)
}

func TestRollups_Again(t *testing.T) {
	st := newStore()
	agg := newAggregator(st)
	ctx := context.Background()

	_, err := agg.Rollups(ctx)
	require.NoError(t, err)
	before := st.ChildrenMap()

	sum, err := agg.Rollups(ctx)
	require.NoError(t, err)
	assert.Zero(t, sum.Deleted)
	assert.Equal(t, before, st.ChildrenMap())
}

func TestDistributions(t *testing.T) {
	assert := assert.New(t)
	st := newStore()
	_, err := newAggregator(st).Distributions(context.Background())
	require.NoError(t, err)

	n := st.Node("9604")
	require.NotNil(t, n)
	require.NotNil(t, n.Stats)
	assert.Equal(taxon.Summary{
		Mean: 20, Median: 20, Std: 8.16, Min: 10, Max: 30, N: 3,
	}, n.Stats.Genes[taxon.Coding].Count)
	assert.Equal(taxon.Summary{
		Mean: 5, Median: 5, Min: 5, Max: 5, N: 1,
	}, n.Stats.Genes[taxon.NonCoding].Count)

	human := st.Node("9606").Stats.Genes[taxon.Coding].Count
	assert.Equal(15.0, human.Mean)
	assert.Equal(15.0, human.Median)
	assert.Equal(5.0, human.Std)
	assert.Equal(2, human.N)
}

func TestDistributions_Empty(t *testing.T) {
	st := newStore()
	_, err := newAggregator(st).Distributions(context.Background())
	require.NoError(t, err)

	mouse := st.Node("10090")
	require.NotNil(t, mouse)
	require.NotNil(t, mouse.Stats)
	for _, cat := range taxon.GeneCategories() {
		assert.Equal(t, taxon.Summary{}, mouse.Stats.Genes[cat].Count, cat)
	}
	assert.Equal(t, taxon.Summary{}, st.Node("9604").Stats.Genes[taxon.Pseudogene].Count)
}
