package iosync_test

import (
	"context"
	"errors"
	"os"
	"slices"
	"testing"

	"github.com/gnames/gntaxdb/internal/iosync"
	"github.com/gnames/gntaxdb/internal/iotesting"
	"github.com/gnames/gntaxdb/pkg/config"
	"github.com/gnames/gntaxdb/pkg/lifecycle"
	"github.com/gnames/gntaxdb/pkg/parserpool"
	"github.com/gnames/gntaxdb/pkg/taxon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type a = iotesting.Ancestor

var (
	human = []a{
		{TaxID: "9605", Name: "Homo", Rank: "genus"},
		{TaxID: "9604", Name: "Hominidae", Rank: "family"},
		{TaxID: "40674", Name: "Mammalia", Rank: "class"},
		{TaxID: "131567", Name: "cellular organisms", Rank: ""},
		{TaxID: "1", Name: "root", Rank: "no rank"},
	}
	mouse = []a{
		{TaxID: "10088", Name: "Mus", Rank: "genus"},
		{TaxID: "10066", Name: "Muridae", Rank: "family"},
		{TaxID: "40674", Name: "Mammalia", Rank: "class"},
		{TaxID: "131567", Name: "cellular organisms", Rank: ""},
		{TaxID: "1", Name: "root", Rank: "no rank"},
	}
	humanLineage = []string{"9606", "9605", "9604", "40674", "131567"}
	mouseLineage = []string{"10090", "10088", "10066", "40674", "131567"}
)

func newSource() *iotesting.FakeSource {
	src := iotesting.NewFakeSource()
	src.AddRecord("9606", "Homo sapiens", human...)
	src.AddRecord("10090", "Mus musculus", mouse...)
	return src
}

func newReconciler(
	t *testing.T,
	st *iotesting.MemStore,
	src *iotesting.FakeSource,
	opts ...config.Option,
) lifecycle.Reconciler {
	t.Helper()
	cfg := config.New()
	cfg.Update(opts)
	pool := parserpool.NewPool(1)
	t.Cleanup(pool.Close)
	return iosync.New(cfg, st, src, pool)
}

func TestSync(t *testing.T) {
	assert := assert.New(t)
	st := iotesting.NewMemStore()
	src := newSource()
	r := newReconciler(t, st, src)

	res, sum, err := r.Sync(context.Background(), []string{"9606", "10090", "9606", ""})
	require.NoError(t, err)
	assert.Equal(map[string][]string{
		"9606":  humanLineage,
		"10090": mouseLineage,
	}, res)
	assert.Equal(2, sum.Resolved)
	assert.Zero(sum.Skipped)
	assert.Zero(sum.Failed)
	// 2 organisms and 8 distinct taxa
	assert.Equal(10, sum.Inserted)
	assert.Len(src.Calls(), 1)

	org, ok := st.Organism("9606")
	require.True(t, ok)
	assert.Equal("Homo sapiens", org.ScientificName)

	assert.Equal(8, st.TaxaNum())
	sp := st.Node("9606")
	require.NotNil(t, sp)
	assert.Equal(taxon.RankOrganism, sp.Rank)
	assert.Equal("Homo sapiens", sp.Canonical)
	assert.NotEmpty(sp.NameID)
	assert.Equal(taxon.RankOther, st.Node("131567").Rank)
	assert.Nil(st.Node("1"))

	children := st.ChildrenMap()
	assert.Equal([]string{"9606"}, children["9605"])
	assert.Equal([]string{"10066", "9604"}, children["40674"])
	assert.Equal([]string{"40674"}, children["131567"])
	assert.Empty(children["9606"])
}

func TestSync_Known(t *testing.T) {
	st := iotesting.NewMemStore()
	st.AddOrganism(taxon.Organism{TaxID: "9606", ScientificName: "Homo sapiens", Lineage: humanLineage})
	src := newSource()
	r := newReconciler(t, st, src)

	res, sum, err := r.Sync(context.Background(), []string{"9606"})
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{"9606": humanLineage}, res)
	assert.Zero(t, sum.Resolved)
	assert.Empty(t, src.Calls())
}

func TestSync_Twice(t *testing.T) {
	st := iotesting.NewMemStore()
	src := newSource()
	r := newReconciler(t, st, src)
	ctx := context.Background()

	res1, _, err := r.Sync(ctx, []string{"9606", "10090"})
	require.NoError(t, err)
	tree := st.ChildrenMap()

	res2, sum, err := r.Sync(ctx, []string{"9606", "10090"})
	require.NoError(t, err)
	assert.Equal(t, res1, res2)
	assert.Equal(t, tree, st.ChildrenMap())
	assert.Zero(t, sum.Inserted)
	assert.Len(t, src.Calls(), 1)
}

func TestSync_FetchFailed(t *testing.T) {
	st := iotesting.NewMemStore()
	src := newSource()
	src.FailOn("10090", errors.New("connection reset"))
	r := newReconciler(t, st, src, config.OptTaxonomyFetchBatchSize(1))

	res, sum, err := r.Sync(context.Background(), []string{"9606", "10090"})
	require.NoError(t, err)
	assert.Contains(t, res, "9606")
	assert.NotContains(t, res, "10090")
	assert.Len(t, src.Calls(), 2)
	assert.Equal(t, 1, sum.Resolved)
	assert.Equal(t, 1, sum.Reasons[lifecycle.SkipFetchFailed])

	_, ok := st.Organism("10090")
	assert.False(t, ok)
	assert.Nil(t, st.Node("10088"))
}

func TestSync_EmptyPayload(t *testing.T) {
	st := iotesting.NewMemStore()
	r := newReconciler(t, st, newSource(), config.OptTaxonomyFetchBatchSize(2))

	res, sum, err := r.Sync(context.Background(), []string{"9606", "1", "2", "3"})
	require.NoError(t, err)
	assert.Len(t, res, 1)
	assert.Equal(t, 2, sum.Reasons[lifecycle.SkipEmptyPayload])
	assert.Equal(t, 1, sum.Reasons[lifecycle.SkipNotFound])
}

func TestSync_MalformedRecord(t *testing.T) {
	st := iotesting.NewMemStore()
	src := newSource()
	src.AddRaw("111", `<taxon taxId="111" rank="species"><lineage/></taxon>`)
	r := newReconciler(t, st, src)

	res, sum, err := r.Sync(context.Background(), []string{"111", "9606", "10090"})
	require.NoError(t, err)
	require.Len(t, src.Calls(), 1)
	assert.Len(t, res, 2)
	assert.Equal(t, 2, sum.Resolved)
	assert.Equal(t, 1, sum.Skipped)
	assert.Equal(t, 1, sum.Reasons[lifecycle.SkipMalformedRecord])
}

func TestSync_MalformedPayload(t *testing.T) {
	st := iotesting.NewMemStore()
	src := newSource()
	// sorted after 9606, so it comes last in the payload
	src.AddRaw("99999", `<taxon taxId="99999" scientificName="Broken"><lineage>`)
	r := newReconciler(t, st, src)

	res, sum, err := r.Sync(context.Background(), []string{"9606", "99999"})
	require.NoError(t, err)
	assert.Contains(t, res, "9606")
	assert.Equal(t, 1, sum.Reasons[lifecycle.SkipMalformedPayload])
}

func TestSync_OrganismConflict(t *testing.T) {
	st := iotesting.NewMemStore()
	st.InsertOrganismsHook = func(orgs []taxon.Organism) error {
		for _, o := range orgs {
			if o.TaxID == "10090" {
				return iotesting.ErrDuplicate
			}
		}
		return nil
	}
	r := newReconciler(t, st, newSource(), config.OptTaxonomyInsertBatchSize(1))

	res, sum, err := r.Sync(context.Background(), []string{"9606", "10090"})
	require.NoError(t, err)
	assert.Contains(t, res, "9606")
	assert.NotContains(t, res, "10090")
	assert.Equal(t, 1, sum.Failed)
	assert.Equal(t, 1, sum.Reasons[lifecycle.SkipInsertConflict])

	assert.Nil(t, st.Node("10088"))
	assert.NotNil(t, st.Node("9605"))
	assert.NotContains(t, st.ChildrenMap()["40674"], "10066")
}

func TestSync_TaxaConflict(t *testing.T) {
	st := iotesting.NewMemStore()
	st.InsertTaxaHook = func(nodes []taxon.Node) error {
		for _, n := range nodes {
			if n.TaxID == "10088" {
				return iotesting.ErrDuplicate
			}
		}
		return nil
	}
	r := newReconciler(t, st, newSource(), config.OptTaxonomyInsertBatchSize(1))

	res, sum, err := r.Sync(context.Background(), []string{"9606", "10090"})
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{"9606": humanLineage}, res)
	assert.Equal(t, 1, sum.Resolved)
	assert.Equal(t, 1, sum.Failed)

	_, ok := st.Organism("10090")
	assert.False(t, ok)
	assert.Nil(t, st.Node("10088"))
}

func TestSync_Cache(t *testing.T) {
	home := t.TempDir()
	st := iotesting.NewMemStore()
	src := newSource()
	src.Gzip = true
	r := newReconciler(t, st, src, config.OptHomeDir(home))

	res, _, err := r.Sync(context.Background(), []string{"9606", "10090"})
	require.NoError(t, err)
	assert.Len(t, res, 2)

	entries, err := os.ReadDir(config.LineageCacheDir(home))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSync_Canceled(t *testing.T) {
	st := iotesting.NewMemStore()
	r := newReconciler(t, st, newSource())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := r.Sync(ctx, []string{"9606"})
	assert.Error(t, err)
	assert.Zero(t, st.TaxaNum())
}

func TestSyncFromLeaves(t *testing.T) {
	st := iotesting.NewMemStore()
	st.AddAssembly("GCA_1", "9606", "", nil)
	st.AddAnnotation("ann1", "GCA_1", "9606", "", nil, nil)
	st.AddAssembly("GCA_2", "10090", "", nil)
	r := newReconciler(t, st, newSource())

	sum, err := r.SyncFromLeaves(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Resolved)
	assert.Equal(t, 2, sum.Updated)

	asm, ok := st.Assembly("GCA_1")
	require.True(t, ok)
	assert.Equal(t, humanLineage, asm.Lineage)
	assert.Equal(t, "Homo sapiens", asm.OrganismName)

	ann, ok := st.Annotation("ann1")
	require.True(t, ok)
	assert.Empty(t, ann.Lineage)
}

func TestFallback(t *testing.T) {
	st := iotesting.NewMemStore()
	st.AddOrganism(taxon.Organism{TaxID: "9606", ScientificName: "Homo sapiens", Lineage: humanLineage})
	st.AddAssembly("GCA_1", "9606", "", nil)
	st.AddAssembly("GCA_2", "10090", "Mus musculus", mouseLineage)
	st.AddAnnotation("ann1", "GCA_1", "9606", "", nil, nil)
	st.AddAnnotation("ann2", "GCA_2", "9606", "Homo sapiens", humanLineage, nil)
	st.AddAnnotation("ann3", "GCA_404", "7227", "", nil, nil)
	r := newReconciler(t, st, newSource())

	sum, err := r.Fallback(context.Background())
	require.NoError(t, err)

	asm, _ := st.Assembly("GCA_1")
	assert.Equal(t, humanLineage, asm.Lineage)
	assert.Equal(t, "Homo sapiens", asm.OrganismName)

	ann1, _ := st.Annotation("ann1")
	assert.Equal(t, humanLineage, ann1.Lineage)

	ann2, _ := st.Annotation("ann2")
	assert.Equal(t, "10090", ann2.TaxID)
	assert.Equal(t, mouseLineage, ann2.Lineage)

	ann3, _ := st.Annotation("ann3")
	assert.Empty(t, ann3.Lineage)
	assert.Equal(t, 1, sum.Reasons[lifecycle.SkipNotFound])
}

func TestRefresh(t *testing.T) {
	assert := assert.New(t)
	st := iotesting.NewMemStore()
	oldLineage := []string{"9606", "9605", "40674", "131567"}
	st.AddOrganism(taxon.Organism{TaxID: "9606", ScientificName: "Homo sapien", Lineage: oldLineage})
	st.AddOrganism(taxon.Organism{TaxID: "10090", ScientificName: "Mus musculus", Lineage: mouseLineage})
	for _, n := range []taxon.Node{
		{TaxID: "9606", ScientificName: "Homo sapien", Rank: taxon.RankOrganism},
		{TaxID: "9605", ScientificName: "Homo", Rank: "genus", Children: []string{"9606"}},
		{TaxID: "40674", ScientificName: "Mammals", Rank: "class", Children: []string{"9605"}},
		{TaxID: "131567", ScientificName: "cellular organisms", Rank: taxon.RankOther},
	} {
		st.AddTaxon(n)
	}
	st.AddAssembly("GCA_1", "9606", "Homo sapien", oldLineage)
	st.AddAnnotation("ann1", "GCA_1", "9606", "Homo sapien", oldLineage, nil)
	r := newReconciler(t, st, newSource())

	sum, err := r.Refresh(context.Background())
	require.NoError(t, err)

	org, _ := st.Organism("9606")
	assert.Equal("Homo sapiens", org.ScientificName)
	assert.Equal(humanLineage, org.Lineage)

	asm, _ := st.Assembly("GCA_1")
	assert.Equal(humanLineage, asm.Lineage)
	assert.Equal("Homo sapiens", asm.OrganismName)
	ann, _ := st.Annotation("ann1")
	assert.Equal(humanLineage, ann.Lineage)

	require.NotNil(t, st.Node("9604"))
	assert.Equal("Hominidae", st.Node("9604").ScientificName)
	assert.Equal("Mammalia", st.Node("40674").ScientificName)
	assert.Equal("Homo sapiens", st.Node("9606").ScientificName)

	children := st.ChildrenMap()
	assert.Equal([]string{"9605"}, children["9604"])
	assert.True(slices.Contains(children["40674"], "9604"))

	assert.Equal(2, sum.Resolved)
	assert.Zero(sum.Failed)
}

func TestRefresh_FetchFailed(t *testing.T) {
	st := iotesting.NewMemStore()
	st.AddOrganism(taxon.Organism{TaxID: "9606", ScientificName: "Homo sapien", Lineage: humanLineage})
	src := newSource()
	src.FailOn("9606", errors.New("boom"))
	r := newReconciler(t, st, src)

	sum, err := r.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Reasons[lifecycle.SkipFetchFailed])
	org, _ := st.Organism("9606")
	assert.Equal(t, "Homo sapien", org.ScientificName)
}
