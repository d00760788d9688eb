package iotesting

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/gnames/gntaxdb/pkg/batch"
	"github.com/gnames/gntaxdb/pkg/hierarchy"
	"github.com/gnames/gntaxdb/pkg/stats"
	"github.com/gnames/gntaxdb/pkg/store"
	"github.com/gnames/gntaxdb/pkg/taxon"
)

// ErrDuplicate is returned by inserts when a key already exists.
var ErrDuplicate = errors.New("duplicate key value violates unique constraint")

type leaf struct {
	id       string
	assembly string
	taxid    string
	name     string
	lineage  []string
	genes    map[taxon.GeneCategory]float64
}

// MemStore is an in-memory store.Store. Stream methods call their
// callbacks without holding the lock, so callbacks may write to the store.
type MemStore struct {
	mu          sync.Mutex
	organisms   map[string]taxon.Organism
	orgCounts   map[string]taxon.Counts
	taxa        map[string]*taxon.Node
	assemblies  map[string]*leaf
	annotations map[string]*leaf

	// InsertOrganismsHook runs before organisms are inserted. A non-nil
	// error rejects the batch.
	InsertOrganismsHook func([]taxon.Organism) error
	// InsertTaxaHook runs before taxa are inserted.
	InsertTaxaHook func([]taxon.Node) error
	// SetChildrenHook runs before children are overwritten.
	SetChildrenHook func([]hierarchy.Update) error
}

var _ store.Store = (*MemStore)(nil)

// NewMemStore creates an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{
		organisms:   make(map[string]taxon.Organism),
		orgCounts:   make(map[string]taxon.Counts),
		taxa:        make(map[string]*taxon.Node),
		assemblies:  make(map[string]*leaf),
		annotations: make(map[string]*leaf),
	}
}

// AddOrganism stores an organism.
func (m *MemStore) AddOrganism(org taxon.Organism) {
	m.mu.Lock()
	defer m.mu.Unlock()
	org.Lineage = slices.Clone(org.Lineage)
	m.organisms[org.TaxID] = org
}

// AddTaxon stores a taxon.
func (m *MemStore) AddTaxon(n taxon.Node) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.taxa[n.TaxID] = cloneNode(&n)
}

// AddAssembly stores an assembly.
func (m *MemStore) AddAssembly(acc, taxid, name string, lineage []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assemblies[acc] = &leaf{
		id:      acc,
		taxid:   taxid,
		name:    name,
		lineage: slices.Clone(lineage),
	}
}

// AddAnnotation stores an annotation with gene counts per category.
// Categories absent from genes have no value.
func (m *MemStore) AddAnnotation(
	id, acc, taxid, name string,
	lineage []string,
	genes map[taxon.GeneCategory]float64,
) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.annotations[id] = &leaf{
		id:       id,
		assembly: acc,
		taxid:    taxid,
		name:     name,
		lineage:  slices.Clone(lineage),
		genes:    maps.Clone(genes),
	}
}

// DeleteLeaves removes assemblies and annotations whose lineage contains
// the taxid and returns the number of removed records.
func (m *MemStore) DeleteLeaves(taxid string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	var res int
	for _, coll := range []map[string]*leaf{m.assemblies, m.annotations} {
		for k, v := range coll {
			if slices.Contains(v.lineage, taxid) {
				delete(coll, k)
				res++
			}
		}
	}
	return res
}

// Assembly returns an assembly as a LeafRecord.
func (m *MemStore) Assembly(acc string) (taxon.LeafRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.assemblies[acc]
	if !ok {
		return taxon.LeafRecord{}, false
	}
	return l.record(), true
}

// Annotation returns an annotation as a LeafRecord.
func (m *MemStore) Annotation(id string) (taxon.LeafRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.annotations[id]
	if !ok {
		return taxon.LeafRecord{}, false
	}
	return l.record(), true
}

// Organism returns a stored organism.
func (m *MemStore) Organism(taxid string) (taxon.Organism, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.organisms[taxid]
	o.Lineage = slices.Clone(o.Lineage)
	return o, ok
}

// OrganismCounts returns counters of an organism.
func (m *MemStore) OrganismCounts(taxid string) taxon.Counts {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.orgCounts[taxid]
}

// Node returns a copy of a stored taxon or nil.
func (m *MemStore) Node(taxid string) *taxon.Node {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.taxa[taxid]
	if !ok {
		return nil
	}
	return cloneNode(n)
}

// ChildrenMap returns children of all stored taxa that have any.
func (m *MemStore) ChildrenMap() map[string][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	res := make(map[string][]string)
	for k, v := range m.taxa {
		if len(v.Children) > 0 {
			res[k] = slices.Clone(v.Children)
		}
	}
	return res
}

// TaxaNum returns the number of stored taxa.
func (m *MemStore) TaxaNum() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.taxa)
}

// Leaves returns lineages of all assemblies and annotations.
func (m *MemStore) Leaves() [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var res [][]string
	for _, coll := range []map[string]*leaf{m.assemblies, m.annotations} {
		for _, v := range coll {
			res = append(res, slices.Clone(v.lineage))
		}
	}
	return res
}

func (l *leaf) record() taxon.LeafRecord {
	return taxon.LeafRecord{
		ID:           l.id,
		TaxID:        l.taxid,
		OrganismName: l.name,
		Lineage:      slices.Clone(l.lineage),
	}
}

func (m *MemStore) leaves(kind taxon.LeafKind) []*leaf {
	var coll map[string]*leaf
	switch kind {
	case taxon.Assemblies:
		coll = m.assemblies
	case taxon.Annotations:
		coll = m.annotations
	case taxon.Organisms:
		res := make([]*leaf, 0, len(m.organisms))
		for _, o := range m.organisms {
			res = append(res, &leaf{
				id:      o.TaxID,
				taxid:   o.TaxID,
				name:    o.ScientificName,
				lineage: o.Lineage,
			})
		}
		return res
	}
	return slices.Collect(maps.Values(coll))
}

func cloneNode(n *taxon.Node) *taxon.Node {
	res := *n
	res.Children = slices.Clone(n.Children)
	if n.Stats != nil {
		res.Stats = &taxon.Stats{Genes: maps.Clone(n.Stats.Genes)}
	}
	return &res
}

func uniq(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	res := make([]string, 0, len(ids))
	for _, v := range ids {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		res = append(res, v)
	}
	return res
}

// Organisms

func (m *MemStore) OrganismLineages(
	_ context.Context,
	taxids []string,
) (map[string][]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	res := make(map[string][]string)
	for _, id := range taxids {
		if o, ok := m.organisms[id]; ok {
			res[id] = slices.Clone(o.Lineage)
		}
	}
	return res, nil
}

func (m *MemStore) Organisms(
	_ context.Context,
	taxids []string,
) (map[string]taxon.Organism, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	res := make(map[string]taxon.Organism)
	for _, id := range taxids {
		if o, ok := m.organisms[id]; ok {
			o.Lineage = slices.Clone(o.Lineage)
			res[id] = o
		}
	}
	return res, nil
}

func (m *MemStore) InsertOrganisms(_ context.Context, orgs []taxon.Organism) error {
	if m.InsertOrganismsHook != nil {
		if err := m.InsertOrganismsHook(orgs); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := make(map[string]struct{}, len(orgs))
	for _, o := range orgs {
		_, dup := seen[o.TaxID]
		if _, ok := m.organisms[o.TaxID]; ok || dup {
			return fmt.Errorf("organism %s: %w", o.TaxID, ErrDuplicate)
		}
		seen[o.TaxID] = struct{}{}
	}
	for _, o := range orgs {
		o.Lineage = slices.Clone(o.Lineage)
		m.organisms[o.TaxID] = o
	}
	return nil
}

func (m *MemStore) UpdateOrganism(_ context.Context, org taxon.Organism) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.organisms[org.TaxID]; !ok {
		return nil
	}
	org.Lineage = slices.Clone(org.Lineage)
	m.organisms[org.TaxID] = org
	return nil
}

func (m *MemStore) DeleteOrganisms(_ context.Context, taxids []string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var res int
	for _, id := range taxids {
		if _, ok := m.organisms[id]; ok {
			delete(m.organisms, id)
			delete(m.orgCounts, id)
			res++
		}
	}
	return res, nil
}

func (m *MemStore) DeleteOrganismsInLineage(
	_ context.Context,
	taxids []string,
) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var res int
	for k, o := range m.organisms {
		for _, id := range taxids {
			if slices.Contains(o.Lineage, id) {
				delete(m.organisms, k)
				delete(m.orgCounts, k)
				res++
				break
			}
		}
	}
	return res, nil
}

func (m *MemStore) StreamOrganismIDs(
	ctx context.Context,
	size int,
	fn func([]string) error,
) error {
	m.mu.Lock()
	ids := slices.Sorted(maps.Keys(m.organisms))
	m.mu.Unlock()
	for _, chunk := range batch.Split(ids, size) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(chunk); err != nil {
			return err
		}
	}
	return nil
}

func (m *MemStore) ResetOrganismCounts(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.orgCounts)
	return nil
}

func (m *MemStore) SetOrganismCounts(
	_ context.Context,
	kind taxon.LeafKind,
	counts map[string]int,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, n := range counts {
		if _, ok := m.organisms[id]; !ok {
			continue
		}
		c := m.orgCounts[id]
		switch kind {
		case taxon.Annotations:
			c.Annotations = n
		case taxon.Assemblies:
			c.Assemblies = n
		default:
			return fmt.Errorf("organisms have no %s counter", kind)
		}
		m.orgCounts[id] = c
	}
	return nil
}

func (m *MemStore) DeleteOrphanOrganisms(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var res int
	for id := range m.organisms {
		if m.orgCounts[id].Annotations == 0 {
			delete(m.organisms, id)
			delete(m.orgCounts, id)
			res++
		}
	}
	return res, nil
}

// Taxa

func (m *MemStore) ExistingTaxa(_ context.Context, taxids []string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var res []string
	for _, id := range uniq(taxids) {
		if _, ok := m.taxa[id]; ok {
			res = append(res, id)
		}
	}
	return res, nil
}

func (m *MemStore) InsertTaxa(_ context.Context, nodes []taxon.Node) error {
	if m.InsertTaxaHook != nil {
		if err := m.InsertTaxaHook(nodes); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := make(map[string]struct{}, len(nodes))
	for _, n := range nodes {
		_, dup := seen[n.TaxID]
		if _, ok := m.taxa[n.TaxID]; ok || dup {
			return fmt.Errorf("taxon %s: %w", n.TaxID, ErrDuplicate)
		}
		seen[n.TaxID] = struct{}{}
	}
	for _, n := range nodes {
		m.taxa[n.TaxID] = cloneNode(&n)
	}
	return nil
}

func (m *MemStore) UpdateTaxa(_ context.Context, nodes []taxon.Node) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var res int
	for _, n := range nodes {
		old, ok := m.taxa[n.TaxID]
		if !ok {
			continue
		}
		if old.ScientificName == n.ScientificName &&
			old.Rank == n.Rank &&
			old.Canonical == n.Canonical &&
			old.NameID == n.NameID {
			continue
		}
		old.ScientificName = n.ScientificName
		old.Rank = n.Rank
		old.Canonical = n.Canonical
		old.NameID = n.NameID
		res++
	}
	return res, nil
}

func (m *MemStore) DeleteTaxa(_ context.Context, taxids []string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var res int
	for _, id := range taxids {
		if _, ok := m.taxa[id]; ok {
			delete(m.taxa, id)
			res++
		}
	}
	return res, nil
}

func (m *MemStore) AddChildren(_ context.Context, edges []taxon.Edge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range edges {
		n, ok := m.taxa[e.Parent]
		if !ok || slices.Contains(n.Children, e.Child) {
			continue
		}
		n.Children = append(n.Children, e.Child)
		slices.Sort(n.Children)
	}
	return nil
}

func (m *MemStore) StreamChildren(
	ctx context.Context,
	fn func(taxid string, children []string) error,
) error {
	m.mu.Lock()
	ids := slices.Sorted(maps.Keys(m.taxa))
	children := make([][]string, len(ids))
	for i, id := range ids {
		children[i] = slices.Clone(m.taxa[id].Children)
	}
	m.mu.Unlock()

	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(id, children[i]); err != nil {
			return err
		}
	}
	return nil
}

func (m *MemStore) SetChildren(_ context.Context, updates []hierarchy.Update) error {
	if m.SetChildrenHook != nil {
		if err := m.SetChildrenHook(updates); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range updates {
		if n, ok := m.taxa[u.TaxID]; ok {
			n.Children = slices.Sorted(slices.Values(u.Children))
		}
	}
	return nil
}

func (m *MemStore) PullChildren(_ context.Context, taxids []string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var res int
	for _, n := range m.taxa {
		l := len(n.Children)
		n.Children = slices.DeleteFunc(n.Children, func(s string) bool {
			return slices.Contains(taxids, s)
		})
		if len(n.Children) != l {
			res++
		}
	}
	return res, nil
}

func (m *MemStore) ResetCounts(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.taxa {
		n.Counts = taxon.Counts{}
	}
	return nil
}

func (m *MemStore) SetCounts(
	_ context.Context,
	kind taxon.LeafKind,
	counts map[string]int,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, c := range counts {
		n, ok := m.taxa[id]
		if !ok {
			continue
		}
		switch kind {
		case taxon.Annotations:
			n.Annotations = c
		case taxon.Assemblies:
			n.Assemblies = c
		case taxon.Organisms:
			n.Organisms = c
		}
	}
	return nil
}

func (m *MemStore) DeleteOrphanTaxa(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var res []string
	for id, n := range m.taxa {
		if n.Annotations == 0 {
			res = append(res, id)
			delete(m.taxa, id)
		}
	}
	slices.Sort(res)
	return res, nil
}

func (m *MemStore) ResetStats(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.taxa {
		n.Stats = taxon.NewStats()
	}
	return nil
}

func (m *MemStore) SetGeneStats(
	_ context.Context,
	cat taxon.GeneCategory,
	sums map[string]taxon.Summary,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range sums {
		n, ok := m.taxa[id]
		if !ok {
			continue
		}
		if n.Stats == nil {
			n.Stats = taxon.NewStats()
		}
		n.Stats.Genes[cat] = taxon.CountStats{Count: s}
	}
	return nil
}

// Leaves

func (m *MemStore) StreamLineages(
	ctx context.Context,
	kind taxon.LeafKind,
	fn func([]string) error,
) error {
	m.mu.Lock()
	distinct := make(map[string][]string)
	for _, l := range m.leaves(kind) {
		if len(l.lineage) == 0 {
			continue
		}
		distinct[strings.Join(l.lineage, ",")] = slices.Clone(l.lineage)
	}
	m.mu.Unlock()

	for _, k := range slices.Sorted(maps.Keys(distinct)) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(distinct[k]); err != nil {
			return err
		}
	}
	return nil
}

func (m *MemStore) LeafTaxIDs(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	set := make(map[string]struct{})
	for _, kind := range []taxon.LeafKind{taxon.Assemblies, taxon.Annotations} {
		for _, l := range m.leaves(kind) {
			if l.taxid != "" {
				set[l.taxid] = struct{}{}
			}
		}
	}
	return slices.Sorted(maps.Keys(set)), nil
}

func (m *MemStore) EmptyLineageTaxIDs(
	_ context.Context,
	kind taxon.LeafKind,
) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	set := make(map[string]struct{})
	for _, l := range m.leaves(kind) {
		if len(l.lineage) == 0 && l.taxid != "" {
			set[l.taxid] = struct{}{}
		}
	}
	return slices.Sorted(maps.Keys(set)), nil
}

func (m *MemStore) SetLeafLineage(
	_ context.Context,
	kind taxon.LeafKind,
	org taxon.Organism,
	onlyEmpty bool,
) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if kind == taxon.Organisms {
		return 0, fmt.Errorf("organisms are not leaf records")
	}
	var res int
	for _, l := range m.leaves(kind) {
		if l.taxid != org.TaxID || (onlyEmpty && len(l.lineage) > 0) {
			continue
		}
		if l.name == org.ScientificName && slices.Equal(l.lineage, org.Lineage) {
			continue
		}
		l.lineage = slices.Clone(org.Lineage)
		l.name = org.ScientificName
		res++
	}
	return res, nil
}

func (m *MemStore) RealignAnnotations(_ context.Context) (int, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var updated, orphans int
	for _, a := range m.annotations {
		asm, ok := m.assemblies[a.assembly]
		if !ok {
			orphans++
			continue
		}
		if a.taxid == asm.taxid &&
			a.name == asm.name &&
			slices.Equal(a.lineage, asm.lineage) {
			continue
		}
		a.taxid = asm.taxid
		a.name = asm.name
		a.lineage = slices.Clone(asm.lineage)
		updated++
	}
	return updated, orphans, nil
}

func (m *MemStore) Rollup(
	ctx context.Context,
	kind taxon.LeafKind,
	fn func(taxid string, count int) error,
) error {
	m.mu.Lock()
	counts := make(map[string]int)
	for _, l := range m.leaves(kind) {
		for _, id := range uniq(l.lineage) {
			counts[id]++
		}
	}
	m.mu.Unlock()
	return emitCounts(ctx, counts, fn)
}

func (m *MemStore) RollupByTaxID(
	ctx context.Context,
	kind taxon.LeafKind,
	fn func(taxid string, count int) error,
) error {
	m.mu.Lock()
	counts := make(map[string]int)
	for _, l := range m.leaves(kind) {
		if l.taxid != "" {
			counts[l.taxid]++
		}
	}
	m.mu.Unlock()
	return emitCounts(ctx, counts, fn)
}

func emitCounts(
	ctx context.Context,
	counts map[string]int,
	fn func(string, int) error,
) error {
	for _, k := range slices.Sorted(maps.Keys(counts)) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(k, counts[k]); err != nil {
			return err
		}
	}
	return nil
}

func (m *MemStore) GeneStats(
	_ context.Context,
	cat taxon.GeneCategory,
	fn func(taxid string, s taxon.Summary) error,
) error {
	acc := stats.NewAccumulator(0)
	m.mu.Lock()
	for _, a := range m.annotations {
		v, ok := a.genes[cat]
		if !ok {
			continue
		}
		for _, id := range uniq(a.lineage) {
			acc.Add(id, v)
		}
	}
	m.mu.Unlock()
	return acc.Flush(fn)
}

// Browser

func (m *MemStore) ListTaxa(_ context.Context, q taxon.Query) (taxon.Page, error) {
	m.mu.Lock()
	var nodes []taxon.Node
	filter := strings.ToLower(q.Filter)
	for _, n := range m.taxa {
		if q.Rank != "" && n.Rank != q.Rank {
			continue
		}
		if len(q.TaxIDs) > 0 && !slices.Contains(q.TaxIDs, n.TaxID) {
			continue
		}
		if filter != "" && n.TaxID != filter &&
			!strings.Contains(strings.ToLower(n.ScientificName), filter) {
			continue
		}
		nodes = append(nodes, *cloneNode(n))
	}
	m.mu.Unlock()

	slices.SortFunc(nodes, func(a, b taxon.Node) int {
		res := compareField(q.SortBy, a, b)
		if res == 0 {
			res = cmp.Compare(a.TaxID, b.TaxID)
		}
		if q.Desc {
			res = -res
		}
		return res
	})

	res := taxon.Page{Total: len(nodes), Offset: q.Offset, Limit: q.Limit}
	if q.Offset >= len(nodes) {
		return res, nil
	}
	end := min(q.Offset+q.Limit, len(nodes))
	res.Taxa = nodes[q.Offset:end]
	return res, nil
}

func compareField(field string, a, b taxon.Node) int {
	switch field {
	case "scientific_name":
		return cmp.Compare(a.ScientificName, b.ScientificName)
	case "rank":
		return cmp.Compare(a.Rank, b.Rank)
	case "annotations_count":
		return cmp.Compare(a.Annotations, b.Annotations)
	case "assemblies_count":
		return cmp.Compare(a.Assemblies, b.Assemblies)
	case "organisms_count":
		return cmp.Compare(a.Organisms, b.Organisms)
	}
	return 0
}

func (m *MemStore) RankFrequencies(_ context.Context) ([]taxon.RankFrequency, error) {
	m.mu.Lock()
	counts := make(map[string]int)
	for _, n := range m.taxa {
		counts[n.Rank]++
	}
	m.mu.Unlock()

	res := make([]taxon.RankFrequency, 0, len(counts))
	for k, v := range counts {
		res = append(res, taxon.RankFrequency{Rank: k, Count: v})
	}
	slices.SortFunc(res, func(a, b taxon.RankFrequency) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Rank, b.Rank)
	})
	return res, nil
}

func (m *MemStore) Taxon(_ context.Context, taxid string) (*taxon.Node, error) {
	return m.Node(taxid), nil
}

func (m *MemStore) TaxaByIDs(_ context.Context, taxids []string) ([]taxon.Node, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var res []taxon.Node
	for _, id := range uniq(taxids) {
		if n, ok := m.taxa[id]; ok {
			res = append(res, *cloneNode(n))
		}
	}
	slices.SortFunc(res, func(a, b taxon.Node) int {
		return cmp.Compare(a.TaxID, b.TaxID)
	})
	return res, nil
}

func (m *MemStore) Parents(_ context.Context, taxid string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var res []string
	for id, n := range m.taxa {
		if slices.Contains(n.Children, taxid) {
			res = append(res, id)
		}
	}
	slices.Sort(res)
	return res, nil
}

func (m *MemStore) StreamTree(ctx context.Context, fn func(taxon.Node) error) error {
	m.mu.Lock()
	ids := slices.Sorted(maps.Keys(m.taxa))
	nodes := make([]taxon.Node, len(ids))
	for i, id := range ids {
		nodes[i] = *cloneNode(m.taxa[id])
	}
	m.mu.Unlock()

	for _, n := range nodes {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(n); err != nil {
			return err
		}
	}
	return nil
}
