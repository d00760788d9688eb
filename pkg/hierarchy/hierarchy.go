// Package hierarchy derives parent/child edges of the taxonomy tree from
// lineages stored on leaf records.
//
// The tree is treated as a materialized view of lineages. Builder folds
// lineages into a parent-to-children map without touching storage, and
// Differ compares that map with stored children to find the minimal set
// of overwrites.
package hierarchy

import (
	"maps"
	"slices"
)

// Conflict is a child taxon that lineages place under several parents.
type Conflict struct {
	Child   string
	Parents []string
}

// Builder accumulates edges from lineages.
type Builder struct {
	children map[string]map[string]struct{}
	parents  map[string]map[string]struct{}
	lineages int
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		children: make(map[string]map[string]struct{}),
		parents:  make(map[string]map[string]struct{}),
	}
}

// Add folds one lineage (most specific taxon first) into the map.
// Empty identifiers and self references are ignored.
func (b *Builder) Add(lineage []string) {
	b.lineages++
	for i := 0; i < len(lineage)-1; i++ {
		child, parent := lineage[i], lineage[i+1]
		if child == "" || parent == "" || child == parent {
			continue
		}
		addTo(b.children, parent, child)
		addTo(b.parents, child, parent)
	}
}

// Lineages returns the number of lineages folded so far.
func (b *Builder) Lineages() int {
	return b.lineages
}

// Len returns the number of parents with at least one child.
func (b *Builder) Len() int {
	return len(b.children)
}

// Children returns sorted children of a parent.
func (b *Builder) Children(parent string) []string {
	set, ok := b.children[parent]
	if !ok {
		return nil
	}
	return slices.Sorted(maps.Keys(set))
}

// Map returns the whole parent-to-children map with sorted children.
func (b *Builder) Map() map[string][]string {
	res := make(map[string][]string, len(b.children))
	for k := range b.children {
		res[k] = b.Children(k)
	}
	return res
}

// Conflicts returns children that have more than one parent, sorted by
// child.
func (b *Builder) Conflicts() []Conflict {
	var res []Conflict
	for child, set := range b.parents {
		if len(set) < 2 {
			continue
		}
		res = append(res, Conflict{
			Child:   child,
			Parents: slices.Sorted(maps.Keys(set)),
		})
	}
	slices.SortFunc(res, func(a, b Conflict) int {
		return compareIDs(a.Child, b.Child)
	})
	return res
}

// Build folds lineages and returns the resulting parent-to-children map.
func Build(lineages [][]string) map[string][]string {
	b := NewBuilder()
	for _, l := range lineages {
		b.Add(l)
	}
	return b.Map()
}

// PickParent chooses one parent when several are known. The greatest
// taxid wins, so the choice does not depend on iteration order.
func PickParent(parents []string) string {
	if len(parents) == 0 {
		return ""
	}
	return slices.MaxFunc(parents, compareIDs)
}

func addTo(m map[string]map[string]struct{}, key, val string) {
	set, ok := m[key]
	if !ok {
		set = make(map[string]struct{})
		m[key] = set
	}
	set[val] = struct{}{}
}

// compareIDs orders numeric taxids by value and falls back to string
// order for anything else.
func compareIDs(a, b string) int {
	if len(a) != len(b) && isDigits(a) && isDigits(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
