package iorebuild_test

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/gnames/gntaxdb/internal/iorebuild"
	"github.com/gnames/gntaxdb/internal/iotesting"
	"github.com/gnames/gntaxdb/pkg/config"
	"github.com/gnames/gntaxdb/pkg/hierarchy"
	"github.com/gnames/gntaxdb/pkg/lifecycle"
	"github.com/gnames/gntaxdb/pkg/taxon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	human = []string{"9606", "9605", "9604", "40674", "131567"}
	mouse = []string{"10090", "10088", "10066", "40674", "131567"}
	fly   = []string{"7227", "7215", "50557", "131567"}
)

// newStore creates taxa of all lineages with drifted children: stale
// edges, missing edges and a leftover edge of a taxon without records.
func newStore() *iotesting.MemStore {
	st := iotesting.NewMemStore()
	seen := make(map[string]bool)
	for _, lin := range [][]string{human, mouse, fly} {
		for _, id := range lin {
			if !seen[id] {
				seen[id] = true
				st.AddTaxon(taxon.Node{TaxID: id, Rank: taxon.RankOther})
			}
		}
	}
	st.AddTaxon(taxon.Node{TaxID: "9605", Children: []string{"9606", "63221"}})
	st.AddTaxon(taxon.Node{TaxID: "63221"})
	st.AddTaxon(taxon.Node{TaxID: "10066", Children: []string{"10088"}})
	st.AddTaxon(taxon.Node{TaxID: "999", Children: []string{"7227"}})

	st.AddAssembly("GCA_1", "9606", "Homo sapiens", human)
	st.AddAnnotation("ann1", "GCA_1", "9606", "Homo sapiens", human, nil)
	st.AddAssembly("GCA_2", "10090", "Mus musculus", mouse)
	st.AddOrganism(taxon.Organism{TaxID: "7227", ScientificName: "Drosophila melanogaster", Lineage: fly})
	return st
}

func newRebuilder(st *iotesting.MemStore, opts ...config.Option) lifecycle.Rebuilder {
	cfg := config.New()
	cfg.Update(opts)
	return iorebuild.New(cfg, st)
}

func leafLineages(st *iotesting.MemStore) [][]string {
	res := st.Leaves()
	for _, id := range []string{"9606", "10090", "7227"} {
		if o, ok := st.Organism(id); ok {
			res = append(res, o.Lineage)
		}
	}
	return res
}

func TestRebuild(t *testing.T) {
	assert := assert.New(t)
	st := newStore()
	r := newRebuilder(st)

	sum, err := r.Rebuild(context.Background())
	require.NoError(t, err)
	assert.Zero(sum.Failed)
	assert.Zero(sum.Conflicts)
	assert.Positive(sum.Updated)

	want := hierarchy.Build(leafLineages(st))
	got := st.ChildrenMap()
	for parent, children := range want {
		assert.Equal(children, got[parent], parent)
	}
	assert.Equal([]string{"9606"}, got["9605"])
	assert.Empty(got["999"])
	assert.Empty(got["63221"])
}

func TestRebuild_Idempotent(t *testing.T) {
	st := newStore()
	r := newRebuilder(st)
	ctx := context.Background()

	_, err := r.Rebuild(ctx)
	require.NoError(t, err)
	first := st.ChildrenMap()

	sum, err := r.Rebuild(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, st.ChildrenMap())
	assert.Zero(t, sum.Updated)
}

func TestRebuild_Completeness(t *testing.T) {
	st := newStore()
	_, err := newRebuilder(st).Rebuild(context.Background())
	require.NoError(t, err)

	tree := st.ChildrenMap()
	for _, lin := range leafLineages(st) {
		for _, e := range taxon.Edges(lin) {
			assert.Contains(t, tree[e.Parent], e.Child, "%s -> %s", e.Child, e.Parent)
		}
	}
}

func TestRebuild_NoOrphanEdges(t *testing.T) {
	st := newStore()
	_, err := newRebuilder(st).Rebuild(context.Background())
	require.NoError(t, err)

	edges := make(map[taxon.Edge]bool)
	for _, lin := range leafLineages(st) {
		for _, e := range taxon.Edges(lin) {
			edges[e] = true
		}
	}
	for parent, children := range st.ChildrenMap() {
		for _, c := range children {
			assert.True(t, edges[taxon.Edge{Parent: parent, Child: c}], "%s -> %s", c, parent)
		}
	}
}

func TestRebuild_LineageOrigin(t *testing.T) {
	st := newStore()
	r := newRebuilder(st)
	ctx := context.Background()
	_, err := r.Rebuild(ctx)
	require.NoError(t, err)
	require.Contains(t, st.ChildrenMap()["40674"], "10066")

	assert.Equal(t, 1, st.DeleteLeaves("10088"))
	_, err = newRebuilder(st).Rebuild(ctx)
	require.NoError(t, err)

	for parent, children := range st.ChildrenMap() {
		assert.False(t, slices.Contains(children, "10088"), parent)
		assert.False(t, slices.Contains(children, "10066"), parent)
	}
	assert.Equal(t, []string{"9604"}, st.ChildrenMap()["40674"])
}

func TestRebuild_Conflicts(t *testing.T) {
	st := newStore()
	st.AddAssembly("GCA_3", "9606", "Homo sapiens",
		[]string{"9606", "9605", "207598", "9604", "40674", "131567"})
	st.AddTaxon(taxon.Node{TaxID: "207598"})

	sum, err := newRebuilder(st).Rebuild(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Conflicts)

	tree := st.ChildrenMap()
	assert.Contains(t, tree["9604"], "9605")
	assert.Contains(t, tree["207598"], "9605")
	assert.Equal(t, "207598", hierarchy.PickParent([]string{"9604", "207598"}))
}

func TestRebuild_FailedBatch(t *testing.T) {
	st := newStore()
	st.SetChildrenHook = func(us []hierarchy.Update) error {
		for _, u := range us {
			if u.TaxID == "999" {
				return errors.New("write failed")
			}
		}
		return nil
	}
	r := newRebuilder(st, config.OptTaxonomyUpdateBatchSize(1), config.OptJobsNumber(2))

	sum, err := r.Rebuild(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Failed)
	assert.Equal(t, 1, sum.Reasons[lifecycle.SkipUpdateFailed])

	tree := st.ChildrenMap()
	assert.Equal(t, []string{"7227"}, tree["999"])
	assert.Equal(t, []string{"9606"}, tree["9605"])
}

func TestRebuild_Canceled(t *testing.T) {
	st := newStore()
	before := st.ChildrenMap()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newRebuilder(st).Rebuild(ctx)
	assert.Error(t, err)
	assert.Equal(t, before, st.ChildrenMap())
}
