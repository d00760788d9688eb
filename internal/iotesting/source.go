package iotesting

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"

	"github.com/gnames/gntaxdb/pkg/lineage"
)

// Ancestor is a lineage element of a fake record.
type Ancestor struct {
	TaxID string
	Name  string
	Rank  string
}

// FakeSource is a lineage.Source with canned records.
type FakeSource struct {
	mu      sync.Mutex
	records map[string]string
	fail    map[string]error
	calls   [][]string

	// Gzip makes payloads compressed.
	Gzip bool
}

var _ lineage.Source = (*FakeSource)(nil)

// NewFakeSource creates a FakeSource without records.
func NewFakeSource() *FakeSource {
	return &FakeSource{
		records: make(map[string]string),
		fail:    make(map[string]error),
	}
}

// AddRecord registers an organism. Ancestors go from the parent of the
// organism to the root.
func (f *FakeSource) AddRecord(taxid, name string, ancestors ...Ancestor) {
	var b strings.Builder
	fmt.Fprintf(&b, `<taxon scientificName="%s" taxId="%s" rank="species">`,
		escape(name), escape(taxid))
	b.WriteString("<lineage>")
	for _, a := range ancestors {
		b.WriteString("<taxon")
		if a.Name != "" {
			fmt.Fprintf(&b, ` scientificName="%s"`, escape(a.Name))
		}
		if a.TaxID != "" {
			fmt.Fprintf(&b, ` taxId="%s"`, escape(a.TaxID))
		}
		if a.Rank != "" {
			fmt.Fprintf(&b, ` rank="%s"`, escape(a.Rank))
		}
		b.WriteString("/>")
	}
	b.WriteString("</lineage></taxon>")
	f.AddRaw(taxid, b.String())
}

// AddRaw registers a verbatim XML fragment returned for a taxid.
func (f *FakeSource) AddRaw(taxid, fragment string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[taxid] = fragment
}

// FailOn makes every batch that contains the taxid fail with err.
func (f *FakeSource) FailOn(taxid string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[taxid] = err
}

// Calls returns taxids of every Fetch call.
func (f *FakeSource) Calls() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

// Fetch writes records of known taxids. When none of the taxids is known
// nothing is written.
func (f *FakeSource) Fetch(
	ctx context.Context,
	taxids []string,
	w io.Writer,
) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	f.mu.Lock()
	f.calls = append(f.calls, slices.Clone(taxids))
	var recs []string
	for _, id := range taxids {
		if err, ok := f.fail[id]; ok {
			f.mu.Unlock()
			return 0, err
		}
		if r, ok := f.records[id]; ok {
			recs = append(recs, r)
		}
	}
	f.mu.Unlock()

	if len(recs) == 0 {
		return 0, nil
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	buf.WriteString("<TAXON_SET>\n")
	for _, r := range recs {
		buf.WriteString(r)
		buf.WriteString("\n")
	}
	buf.WriteString("</TAXON_SET>\n")

	payload := buf.Bytes()
	if f.Gzip {
		var gz bytes.Buffer
		zw := gzip.NewWriter(&gz)
		if _, err := zw.Write(payload); err != nil {
			return 0, err
		}
		if err := zw.Close(); err != nil {
			return 0, err
		}
		payload = gz.Bytes()
	}

	n, err := w.Write(payload)
	return int64(n), err
}

func escape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
