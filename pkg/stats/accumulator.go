package stats

import (
	"maps"
	"slices"

	"github.com/gnames/gntaxdb/pkg/taxon"
)

// Accumulator groups sample values by key during streaming aggregation.
// It is flushed in bounded portions, so callers should feed it data
// ordered by key when the corpus is large.
//
// The PostgreSQL store computes statistics in SQL and only rounds them
// with Normalize; Accumulator serves stores that have no aggregation
// pushdown, such as the in-memory store of tests.
type Accumulator struct {
	limit  int
	values map[string][]float64
}

// NewAccumulator creates an Accumulator that reports Full after limit
// distinct keys. Zero limit means no limit.
func NewAccumulator(limit int) *Accumulator {
	return &Accumulator{
		limit:  limit,
		values: make(map[string][]float64),
	}
}

// Add appends a value to the sample of a key.
func (a *Accumulator) Add(key string, v float64) {
	a.values[key] = append(a.values[key], v)
}

// Len returns the number of distinct keys.
func (a *Accumulator) Len() int {
	return len(a.values)
}

// Full is true when the number of keys reached the limit.
func (a *Accumulator) Full() bool {
	return a.limit > 0 && len(a.values) >= a.limit
}

// Flush computes summaries of all keys in sorted key order, passes them
// to fn and empties the accumulator.
func (a *Accumulator) Flush(fn func(key string, s taxon.Summary) error) error {
	keys := slices.Sorted(maps.Keys(a.values))
	for _, k := range keys {
		if err := fn(k, Compute(a.values[k])); err != nil {
			return err
		}
		delete(a.values, k)
	}
	return nil
}
