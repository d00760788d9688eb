package parserpool_test

import (
	"sync"
	"testing"

	"github.com/gnames/gnlib/ent/nomcode"
	"github.com/gnames/gntaxdb/pkg/parserpool"
	"github.com/gnames/gntaxdb/pkg/taxon"
	"github.com/gnames/gnuuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestName(t *testing.T) {
	pool := parserpool.NewPool(2)
	defer pool.Close()

	tests := []struct {
		msg, name, canonical string
		code                 nomcode.Code
	}{
		{"species", "Homo sapiens", "Homo sapiens", nomcode.Zoological},
		{"author", "Apis mellifera Linnaeus, 1758", "Apis mellifera", nomcode.Zoological},
		{"plant", "Rosa acicularis var. acicularis", "Rosa acicularis acicularis", nomcode.Botanical},
		{"genus", "Homo", "Homo", nomcode.Zoological},
		{"empty", "", "", nomcode.Zoological},
	}

	for _, v := range tests {
		t.Run(v.msg, func(t *testing.T) {
			canonical, id := pool.Name(v.name, v.code)
			assert.Equal(t, v.canonical, canonical)
			if v.canonical == "" {
				assert.Empty(t, id)
				return
			}
			assert.Equal(t, gnuuid.New(v.canonical).String(), id)
		})
	}
}

func TestParse_UnsupportedCode(t *testing.T) {
	pool := parserpool.NewPool(1)
	defer pool.Close()

	_, err := pool.Parse("Plantago major", nomcode.Bacterial)
	assert.Error(t, err)

	canonical, id := pool.Name("Plantago major", nomcode.Bacterial)
	assert.Empty(t, canonical)
	assert.Empty(t, id)
}

func TestParse_CodeDifference(t *testing.T) {
	pool := parserpool.NewPool(1)
	defer pool.Close()

	zoo, err := pool.Parse("Aus (Bus)", nomcode.Zoological)
	require.NoError(t, err)
	bot, err := pool.Parse("Aus (Bus)", nomcode.Botanical)
	require.NoError(t, err)

	assert.Equal(t, "Bus", zoo.Canonical.Simple)
	assert.Equal(t, "Aus", bot.Canonical.Simple)
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, nomcode.Botanical,
		parserpool.CodeOf([]string{"3702", "3701", "33090", "2759"}))
	assert.Equal(t, nomcode.Botanical,
		parserpool.CodeOf([]string{"5207", "4751", "2759"}))
	assert.Equal(t, nomcode.Zoological,
		parserpool.CodeOf([]string{"9606", "9605", "2759"}))
	assert.Equal(t, nomcode.Zoological, parserpool.CodeOf(nil))
}

func TestNameNodes(t *testing.T) {
	pool := parserpool.NewPool(1)
	defer pool.Close()

	nodes := []taxon.Node{
		{TaxID: "9606", ScientificName: "Homo sapiens"},
		{TaxID: "9605", ScientificName: "Homo"},
	}
	parserpool.NameNodes(pool, []string{"9606", "9605"}, nodes)
	assert.Equal(t, "Homo sapiens", nodes[0].Canonical)
	assert.Equal(t, gnuuid.New("Homo").String(), nodes[1].NameID)
}

func TestName_Concurrent(t *testing.T) {
	pool := parserpool.NewPool(4)
	defer pool.Close()

	var wg sync.WaitGroup
	res := make([]string, 40)
	for i := range res {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res[i], _ = pool.Name("Plantago major L.", nomcode.Botanical)
		}(i)
	}
	wg.Wait()

	for _, v := range res {
		assert.Equal(t, "Plantago major", v)
	}
}
