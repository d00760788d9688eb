package hierarchy

import (
	"maps"
	"slices"
)

// Update overwrites children of one taxon. Empty Children clears them.
type Update struct {
	TaxID    string
	Children []string
}

// Differ compares stored children with the computed map.
type Differ struct {
	computed map[string][]string
	seen     map[string]struct{}
}

// NewDiffer creates a Differ for a computed parent-to-children map.
func NewDiffer(computed map[string][]string) *Differ {
	return &Differ{
		computed: computed,
		seen:     make(map[string]struct{}),
	}
}

// Check compares stored children of a taxon with computed ones and
// returns an Update when they differ as sets.
func (d *Differ) Check(taxid string, stored []string) (Update, bool) {
	d.seen[taxid] = struct{}{}
	want := d.computed[taxid]
	if sameSet(stored, want) {
		return Update{}, false
	}
	if want == nil {
		want = []string{}
	}
	return Update{TaxID: taxid, Children: want}, true
}

// Missing returns computed parents that were never passed to Check,
// sorted. These are taxa that leaf lineages mention but the store lacks.
func (d *Differ) Missing() []string {
	var res []string
	for k := range d.computed {
		if _, ok := d.seen[k]; !ok {
			res = append(res, k)
		}
	}
	slices.SortFunc(res, compareIDs)
	return res
}

// Diff returns updates that turn stored children into computed ones.
// Taxa absent from stored are ignored, see Differ.Missing.
func Diff(stored, computed map[string][]string) []Update {
	d := NewDiffer(computed)
	var res []Update
	for _, k := range slices.Sorted(maps.Keys(stored)) {
		if u, ok := d.Check(k, stored[k]); ok {
			res = append(res, u)
		}
	}
	return res
}

func sameSet(a, b []string) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	sa := make(map[string]struct{}, len(a))
	for _, v := range a {
		sa[v] = struct{}{}
	}
	sb := make(map[string]struct{}, len(b))
	for _, v := range b {
		sb[v] = struct{}{}
	}
	return maps.Equal(sa, sb)
}
