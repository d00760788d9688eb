package hierarchy_test

import (
	"testing"

	"github.com/gnames/gntaxdb/pkg/hierarchy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var lineages = [][]string{
	{"9606", "9605", "9604", "1"},
	{"9598", "9596", "9604", "1"},
	{"10090", "10088", "1"},
}

func TestBuild(t *testing.T) {
	res := hierarchy.Build(lineages)
	assert.Equal(t, map[string][]string{
		"9605":  {"9606"},
		"9596":  {"9598"},
		"9604":  {"9596", "9605"},
		"10088": {"10090"},
		"1":     {"10088", "9604"},
	}, res)
}

func TestBuildOrderIndependent(t *testing.T) {
	reversed := [][]string{lineages[2], lineages[1], lineages[0]}
	assert.Equal(t, hierarchy.Build(lineages), hierarchy.Build(reversed))
}

func TestBuilderSkipsBadPairs(t *testing.T) {
	b := hierarchy.NewBuilder()
	b.Add([]string{"1"})
	b.Add([]string{"5", "5", "", "3"})
	assert.Equal(t, 2, b.Lineages())
	assert.Equal(t, 0, b.Len())
	assert.Nil(t, b.Children("5"))
}

func TestCompleteness(t *testing.T) {
	res := hierarchy.Build(lineages)
	for _, l := range lineages {
		for i := 0; i < len(l)-1; i++ {
			assert.Contains(t, res[l[i+1]], l[i])
		}
	}
}

func TestConflicts(t *testing.T) {
	b := hierarchy.NewBuilder()
	b.Add([]string{"100", "20", "1"})
	b.Add([]string{"100", "30", "1"})
	b.Add([]string{"200", "20", "1"})

	cs := b.Conflicts()
	require.Len(t, cs, 1)
	assert.Equal(t, "100", cs[0].Child)
	assert.Equal(t, []string{"20", "30"}, cs[0].Parents)

	// the child is kept under every parent
	assert.Equal(t, []string{"100", "200"}, b.Children("20"))
	assert.Equal(t, []string{"100"}, b.Children("30"))
}

func TestPickParent(t *testing.T) {
	assert.Equal(t, "", hierarchy.PickParent(nil))
	assert.Equal(t, "30", hierarchy.PickParent([]string{"30", "20"}))
	assert.Equal(t, "100", hierarchy.PickParent([]string{"99", "100", "20"}))
}

func TestDiff(t *testing.T) {
	computed := hierarchy.Build(lineages)
	stored := map[string][]string{
		"9605":  {"9606"},
		"9604":  {"9605", "9598"},
		"1":     {"9604", "10088"},
		"9598":  {"1234"},
		"10090": {},
		"9606":  nil,
	}

	res := hierarchy.Diff(stored, computed)
	assert.Equal(t, []hierarchy.Update{
		{TaxID: "9598", Children: []string{}},
		{TaxID: "9604", Children: []string{"9596", "9605"}},
	}, res)
}

func TestDiffIdempotent(t *testing.T) {
	computed := hierarchy.Build(lineages)
	stored := hierarchy.Build(lineages)
	assert.Empty(t, hierarchy.Diff(stored, computed))
}

func TestDifferMissing(t *testing.T) {
	d := hierarchy.NewDiffer(hierarchy.Build(lineages))
	d.Check("1", []string{"9604", "10088"})
	d.Check("9604", []string{"9605", "9596"})
	d.Check("9605", []string{"9606"})
	assert.Equal(t, []string{"9596", "10088"}, d.Missing())
}
