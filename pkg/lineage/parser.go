package lineage

import (
	"bufio"
	"compress/gzip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/gnames/gntaxdb/pkg/taxon"
)

const (
	setTag   = "TAXON_SET"
	taxonTag = "taxon"
)

// RecordError describes a top-level taxon that could not be turned into
// a Candidate. Parsing continues after a RecordError.
type RecordError struct {
	// Index is the position of the record in the payload, starting at 0.
	Index int
	TaxID string
	Err   error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("record %d (taxid '%s'): %s", e.Index, e.TaxID, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

var (
	// ErrNoTaxID is returned for a top-level taxon without taxId.
	ErrNoTaxID = errors.New("taxon has no taxId")
	// ErrBadTaxID is returned for a top-level taxon with non-numeric taxId.
	ErrBadTaxID = errors.New("taxId is not a number")
	// ErrNoName is returned for a top-level taxon without scientificName.
	ErrNoName = errors.New("taxon has no scientificName")
)

type xmlTaxon struct {
	TaxID          string     `xml:"taxId,attr"`
	ScientificName string     `xml:"scientificName,attr"`
	CommonName     string     `xml:"commonName,attr"`
	Rank           string     `xml:"rank,attr"`
	Lineage        []xmlTaxon `xml:"lineage>taxon"`
}

// NewReader returns a reader of the decompressed payload. Gzip is
// detected by its magic bytes, other payloads are returned as is.
func NewReader(r io.Reader) (io.ReadCloser, error) {
	br := bufio.NewReader(r)
	sig, err := br.Peek(2)
	if err != nil && err != io.EOF {
		return nil, err
	}
	if len(sig) == 2 && sig[0] == 0x1f && sig[1] == 0x8b {
		gr, err := gzip.NewReader(br)
		if err != nil {
			return nil, err
		}
		return gr, nil
	}
	return io.NopCloser(br), nil
}

// Parse streams candidates from an uncompressed payload.
//
// A malformed top-level record yields a *RecordError and parsing goes on
// with the next record. Any other error means the payload cannot be read
// further. It is yielded once and the sequence ends.
func Parse(r io.Reader) iter.Seq2[*Candidate, error] {
	return func(yield func(*Candidate, error) bool) {
		dec := xml.NewDecoder(r)
		var stack []string
		var idx int
		for {
			tok, err := dec.Token()
			if err == io.EOF {
				return
			}
			if err != nil {
				yield(nil, err)
				return
			}

			switch t := tok.(type) {
			case xml.StartElement:
				if t.Name.Local != taxonTag || !isTopLevel(stack) {
					stack = append(stack, t.Name.Local)
					continue
				}
				var rec xmlTaxon
				// DecodeElement consumes the subtree up to its end tag,
				// so only one organism is held in memory.
				if err = dec.DecodeElement(&rec, &t); err != nil {
					yield(nil, err)
					return
				}
				cand, err := rec.candidate()
				if err != nil {
					err = &RecordError{Index: idx, TaxID: rec.TaxID, Err: err}
				}
				idx++
				if !yield(cand, err) {
					return
				}
			case xml.EndElement:
				if len(stack) > 0 {
					stack = stack[:len(stack)-1]
				}
			}
		}
	}
}

// isTopLevel checks if a taxon element starts directly under TAXON_SET or
// is the document root.
func isTopLevel(stack []string) bool {
	return len(stack) == 0 || stack[len(stack)-1] == setTag
}

func (x xmlTaxon) candidate() (*Candidate, error) {
	id := strings.TrimSpace(x.TaxID)
	name := strings.TrimSpace(x.ScientificName)
	switch {
	case id == "":
		return nil, ErrNoTaxID
	case !taxon.IsTaxID(id):
		return nil, ErrBadTaxID
	case name == "":
		return nil, ErrNoName
	}

	res := &Candidate{
		Organism: taxon.Organism{
			TaxID:          id,
			ScientificName: name,
			CommonName:     strings.TrimSpace(x.CommonName),
			Lineage:        []string{id},
		},
		Nodes: []taxon.Node{{
			TaxID:          id,
			ScientificName: name,
			Rank:           taxon.RankOrganism,
		}},
	}

	for _, v := range x.Lineage {
		lid := strings.TrimSpace(v.TaxID)
		lname := strings.TrimSpace(v.ScientificName)
		if lid == "" || lname == RootName {
			continue
		}
		rank := strings.TrimSpace(v.Rank)
		if rank == "" {
			rank = taxon.RankOther
		}
		res.Organism.Lineage = append(res.Organism.Lineage, lid)
		res.Nodes = append(res.Nodes, taxon.Node{
			TaxID:          lid,
			ScientificName: lname,
			Rank:           rank,
		})
	}
	return res, nil
}

// ParseAll reads all candidates of a payload, possibly compressed.
// Record errors are collected and returned alongside candidates. A
// payload-level error is returned as err together with the candidates
// read before it.
func ParseAll(r io.Reader) (cands []*Candidate, skipped []*RecordError, err error) {
	rc, err := NewReader(r)
	if err != nil {
		return nil, nil, err
	}
	defer rc.Close()

	for c, e := range Parse(rc) {
		if e == nil {
			cands = append(cands, c)
			continue
		}
		var recErr *RecordError
		if errors.As(e, &recErr) {
			skipped = append(skipped, recErr)
			continue
		}
		return cands, skipped, e
	}
	return cands, skipped, nil
}
