// Package parserpool gives canonical forms and name ids to taxa using a
// pool of gnparser instances. Parsing is computation, not I/O.
package parserpool

import (
	"fmt"
	"runtime"
	"slices"

	"github.com/gnames/gnlib/ent/nomcode"
	"github.com/gnames/gnparser"
	"github.com/gnames/gnparser/ent/parsed"
	"github.com/gnames/gntaxdb/pkg/taxon"
	"github.com/gnames/gnuuid"
)

// Taxids of lineages that follow the botanical code.
const (
	Viridiplantae = "33090"
	Fungi         = "4751"
)

// Pool parses names concurrently.
type Pool interface {
	// Parse parses a name with the parser of the nomenclatural code.
	Parse(name string, code nomcode.Code) (parsed.Parsed, error)

	// Name returns the simple canonical form of a name and UUIDv5 of it.
	// Both are empty if the name cannot be parsed.
	Name(name string, code nomcode.Code) (canonical, nameID string)

	// Close releases parsers. The pool cannot be used afterwards.
	Close()
}

type pool struct {
	botanical  chan gnparser.GNparser
	zoological chan gnparser.GNparser
}

// NewPool creates botanical and zoological pools of jobsNum parsers
// each. Zero jobsNum means the number of CPUs.
func NewPool(jobsNum int) Pool {
	if jobsNum <= 0 {
		jobsNum = runtime.NumCPU()
	}
	bot := gnparser.NewConfig(gnparser.OptCode(nomcode.Botanical))
	zoo := gnparser.NewConfig(gnparser.OptCode(nomcode.Zoological))
	return &pool{
		botanical:  gnparser.NewPool(bot, jobsNum),
		zoological: gnparser.NewPool(zoo, jobsNum),
	}
}

func (p *pool) Parse(name string, code nomcode.Code) (parsed.Parsed, error) {
	var ch chan gnparser.GNparser
	switch code {
	case nomcode.Botanical:
		ch = p.botanical
	case nomcode.Zoological:
		ch = p.zoological
	default:
		return parsed.Parsed{}, fmt.Errorf("unsupported nomenclatural code: %v", code)
	}

	prs := <-ch
	res := prs.ParseName(name)
	ch <- prs
	return res, nil
}

func (p *pool) Name(name string, code nomcode.Code) (string, string) {
	res, err := p.Parse(name, code)
	if err != nil || !res.Parsed || res.Canonical == nil {
		return "", ""
	}
	c := res.Canonical.Simple
	if c == "" {
		return "", ""
	}
	return c, gnuuid.New(c).String()
}

func (p *pool) Close() {
	for _, ch := range []chan gnparser.GNparser{p.botanical, p.zoological} {
		if ch == nil {
			continue
		}
		close(ch)
		for range ch {
		}
	}
}

// CodeOf picks the nomenclatural code of names in a lineage. Plants and
// fungi are botanical, everything else is parsed as zoological.
func CodeOf(lineage []string) nomcode.Code {
	if slices.Contains(lineage, Viridiplantae) || slices.Contains(lineage, Fungi) {
		return nomcode.Botanical
	}
	return nomcode.Zoological
}

// NameNodes sets Canonical and NameID of nodes that belong to one
// lineage.
func NameNodes(p Pool, lineage []string, nodes []taxon.Node) {
	code := CodeOf(lineage)
	for i := range nodes {
		nodes[i].Canonical, nodes[i].NameID = p.Name(nodes[i].ScientificName, code)
	}
}
