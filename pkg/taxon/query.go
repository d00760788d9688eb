package taxon

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

var rankRe = regexp.MustCompile(`^[a-z][a-z ]*[a-z]$`)

var digitsRe = regexp.MustCompile(`^[0-9]+$`)

// SortFields lists fields that taxa can be sorted by.
var SortFields = []string{
	"taxid",
	"scientific_name",
	"rank",
	"annotations_count",
	"assemblies_count",
	"organisms_count",
}

// MaxLimit is the largest page size a Query accepts.
const MaxLimit = 1000

// Query selects a page of taxa.
type Query struct {
	// Filter is a case-insensitive substring of a scientific name or an
	// exact taxid.
	Filter string
	// Rank limits output to taxa of this rank.
	Rank string
	// TaxIDs limits output to the given taxa.
	TaxIDs []string
	// SortBy is one of SortFields, empty means taxid.
	SortBy string
	// Desc reverses the order.
	Desc   bool
	Offset int
	Limit  int
}

// Normalize trims inputs and sets defaults.
func (q *Query) Normalize() {
	q.Filter = strings.TrimSpace(q.Filter)
	q.Rank = strings.ToLower(strings.TrimSpace(q.Rank))
	q.SortBy = strings.ToLower(strings.TrimSpace(q.SortBy))
	if q.SortBy == "" {
		q.SortBy = "taxid"
	}
	if q.Limit == 0 {
		q.Limit = 20
	}
	var ids []string
	for _, v := range q.TaxIDs {
		v = strings.TrimSpace(v)
		if v != "" {
			ids = append(ids, v)
		}
	}
	q.TaxIDs = ids
}

// Validate returns an error describing the first malformed field.
func (q Query) Validate() error {
	if q.Rank != "" && !rankRe.MatchString(q.Rank) {
		return fmt.Errorf("malformed rank '%s'", q.Rank)
	}
	if q.SortBy != "" && !slices.Contains(SortFields, q.SortBy) {
		return fmt.Errorf("cannot sort by '%s', use one of: %s",
			q.SortBy, strings.Join(SortFields, ", "))
	}
	if q.Offset < 0 {
		return fmt.Errorf("offset cannot be negative: %d", q.Offset)
	}
	if q.Limit < 0 || q.Limit > MaxLimit {
		return fmt.Errorf("limit must be between 0 and %d: %d",
			MaxLimit, q.Limit)
	}
	for _, v := range q.TaxIDs {
		if !IsTaxID(v) {
			return fmt.Errorf("malformed taxid '%s'", v)
		}
	}
	return nil
}

// IsTaxID checks if a string looks like a numeric taxid.
func IsTaxID(s string) bool {
	return digitsRe.MatchString(s)
}

// Page is one page of taxa and the total count of matches.
type Page struct {
	Total  int
	Offset int
	Limit  int
	Taxa   []Node
}

// RankFrequency is the number of taxa of a rank.
type RankFrequency struct {
	Rank  string
	Count int
}

// FlatRow is a row of a flattened tree.
type FlatRow struct {
	TaxID          string
	ParentTaxID    string
	ScientificName string
	Counts
}
