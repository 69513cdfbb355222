// SPDX-License-Identifier: MIT
//
// File: graph.go
// Role: the conversion graph aggregate: clonal frame, loci, per-locus
// conversion lists, and the derived caches they own.
// Determinism:
//   - Conversion lists are kept ascending by StartSite; ties keep insertion order.
//   - Global conversion indices order loci by id, then conversions by list order.
// Invalidation:
//   - Every conversion edit and every clonal frame edit marks all derived
//     caches dirty. Nothing is recomputed until the next query.

package acg

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/argraph/tree"
)

// Option configures New.
type Option func(*Options)

// Options holds Graph construction parameters.
type Options struct {
	// WholeLocus restricts every conversion to span an entire locus.
	WholeLocus bool
}

// DefaultOptions returns unrestricted conversions.
func DefaultOptions() Options { return Options{} }

// WithWholeLocusMode restricts conversions to whole loci.
func WithWholeLocusMode() Option {
	return func(o *Options) { o.WholeLocus = true }
}

// Graph is an ancestral conversion graph: a clonal frame plus conversions
// filed under the locus they affect. Graph is not safe for concurrent use.
type Graph struct {
	tree        *tree.Tree
	loci        []*Locus
	convertible []*Locus
	byID        map[string]*Locus
	convs       map[*Locus][]*Conversion
	opts        Options

	regions     map[*Locus]*cached[[]Region]
	informative map[*Locus]*cached[[]Region]
	affected    *cached[*AffectedSiteList]
	events      *cached[[]CFEvent]
}

// New builds an empty Graph over t and loci. The Graph subscribes to t's
// edit notifications; t must not be shared with another Graph.
// Complexity: O(L log L) for L loci.
func New(t *tree.Tree, loci []*Locus, opts ...Option) (*Graph, error) {
	if t == nil {
		return nil, ErrNilTree
	}
	if len(loci) == 0 {
		return nil, ErrNoLoci
	}
	o := DefaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	g := &Graph{
		tree:  t,
		loci:  append([]*Locus(nil), loci...),
		byID:  make(map[string]*Locus, len(loci)),
		convs: make(map[*Locus][]*Conversion, len(loci)),
		opts:  o,
	}
	for _, l := range loci {
		if l == nil {
			return nil, fmt.Errorf("New: %w", ErrBadLocus)
		}
		if _, dup := g.byID[l.id]; dup {
			return nil, fmt.Errorf("New: locus %q: %w", l.id, ErrDuplicateLocus)
		}
		g.byID[l.id] = l
		if l.convertible {
			g.convertible = append(g.convertible, l)
			g.convs[l] = nil
		}
	}
	sort.Slice(g.convertible, func(i, j int) bool { return g.convertible[i].id < g.convertible[j].id })
	g.initCaches()

	return g, nil
}

func (g *Graph) initCaches() {
	g.regions = make(map[*Locus]*cached[[]Region], len(g.loci))
	g.informative = make(map[*Locus]*cached[[]Region], len(g.loci))
	for _, l := range g.loci {
		g.regions[l] = newCached(func() []Region { return computeRegions(l, g.convs[l]) })
		g.informative[l] = newCached(func() []Region {
			aff := g.Affected()
			keep := make([]*Conversion, 0, len(g.convs[l]))
			for _, c := range g.convs[l] {
				if aff.Count(c) > 0 {
					keep = append(keep, c)
				}
			}
			return computeRegions(l, keep)
		})
	}
	g.affected = newCached(g.computeAffected)
	g.events = newCached(func() []CFEvent { return computeCFEvents(g.tree) })
	g.tree.OnEdit(g.markDirty)
}

// markDirty invalidates every derived structure.
func (g *Graph) markDirty() {
	for _, c := range g.regions {
		c.MarkDirty()
	}
	for _, c := range g.informative {
		c.MarkDirty()
	}
	g.affected.MarkDirty()
	g.events.MarkDirty()
}

// StartEditing marks all derived structures dirty. Callers that mutate
// conversions in place (heights, nodes) call it before doing so.
func (g *Graph) StartEditing() { g.markDirty() }

// Tree returns the clonal frame.
func (g *Graph) Tree() *tree.Tree { return g.tree }

// WholeLocusMode reports whether conversions must span whole loci.
func (g *Graph) WholeLocusMode() bool { return g.opts.WholeLocus }

// Loci returns all loci in construction order.
func (g *Graph) Loci() []*Locus { return append([]*Locus(nil), g.loci...) }

// ConvertibleLoci returns the loci that allow conversions, sorted by id.
func (g *Graph) ConvertibleLoci() []*Locus { return append([]*Locus(nil), g.convertible...) }

// LocusByID returns the locus with the given id.
func (g *Graph) LocusByID(id string) (*Locus, error) {
	l, ok := g.byID[id]
	if !ok {
		return nil, fmt.Errorf("LocusByID(%q): %w", id, ErrUnknownLocus)
	}

	return l, nil
}

// TotalConvertibleSequenceLength sums the site counts of convertible loci.
func (g *Graph) TotalConvertibleSequenceLength() int {
	n := 0
	for _, l := range g.convertible {
		n += l.siteCount
	}

	return n
}

func (g *Graph) checkLocus(op string, l *Locus) error {
	if l == nil || g.byID[l.id] != l {
		return fmt.Errorf("%s: %w", op, ErrUnknownLocus)
	}
	if !l.convertible {
		return fmt.Errorf("%s: locus %q: %w", op, l.id, ErrNotConvertible)
	}

	return nil
}

func checkSpan(l *Locus, start, end int) error {
	if start < 0 || end < 0 || start >= l.siteCount || end >= l.siteCount {
		return fmt.Errorf("span [%d,%d] on %q (%d sites): %w", start, end, l.id, l.siteCount, ErrBadSpan)
	}
	if end < start && !l.circular {
		return fmt.Errorf("span [%d,%d] wraps on linear %q: %w", start, end, l.id, ErrBadSpan)
	}

	return nil
}

// AddConversion files c under c.Locus, keeping start-site order.
// Complexity: O(n) in the locus's conversion count.
func (g *Graph) AddConversion(c *Conversion) error {
	if c == nil {
		return fmt.Errorf("AddConversion: %w", ErrNilConversion)
	}
	if err := g.checkLocus("AddConversion", c.Locus); err != nil {
		return err
	}
	if err := checkSpan(c.Locus, c.StartSite, c.EndSite); err != nil {
		return fmt.Errorf("AddConversion: %w", err)
	}
	list := g.convs[c.Locus]
	for _, x := range list {
		if x == c {
			return fmt.Errorf("AddConversion: %v: %w", c, ErrDuplicateConversion)
		}
	}
	pos := sort.Search(len(list), func(i int) bool { return list[i].StartSite > c.StartSite })
	list = append(list, nil)
	copy(list[pos+1:], list[pos:])
	list[pos] = c
	g.convs[c.Locus] = list
	g.markDirty()

	return nil
}

// DeleteConversion removes c (by identity) from its locus.
// Complexity: O(n) in the locus's conversion count.
func (g *Graph) DeleteConversion(c *Conversion) error {
	if c == nil {
		return fmt.Errorf("DeleteConversion: %w", ErrNilConversion)
	}
	if err := g.checkLocus("DeleteConversion", c.Locus); err != nil {
		return err
	}
	list := g.convs[c.Locus]
	for i, x := range list {
		if x == c {
			g.convs[c.Locus] = append(list[:i], list[i+1:]...)
			g.markDirty()
			return nil
		}
	}

	return fmt.Errorf("DeleteConversion: %v: %w", c, ErrConversionAbsent)
}

// SetConversionSpan moves c to [start, end] and restores list order.
func (g *Graph) SetConversionSpan(c *Conversion, start, end int) error {
	if c == nil {
		return fmt.Errorf("SetConversionSpan: %w", ErrNilConversion)
	}
	if g.ConversionIndex(c) < 0 {
		return fmt.Errorf("SetConversionSpan: %v: %w", c, ErrConversionAbsent)
	}
	if err := checkSpan(c.Locus, start, end); err != nil {
		return fmt.Errorf("SetConversionSpan: %w", err)
	}
	c.StartSite, c.EndSite = start, end
	list := g.convs[c.Locus]
	sort.SliceStable(list, func(i, j int) bool { return list[i].StartSite < list[j].StartSite })
	g.markDirty()

	return nil
}

// Conversions returns the conversions of l in start-site order. The slice
// is owned by the Graph and must not be modified; it is invalidated by the
// next edit.
func (g *Graph) Conversions(l *Locus) []*Conversion { return g.convs[l] }

// ConvCount returns the number of conversions on l.
func (g *Graph) ConvCount(l *Locus) int { return len(g.convs[l]) }

// TotalConvCount returns the number of conversions on all loci.
func (g *Graph) TotalConvCount() int {
	n := 0
	for _, l := range g.convertible {
		n += len(g.convs[l])
	}

	return n
}

// ConversionIndex returns the global rank of c, or -1 if c is absent.
// Complexity: O(total conversions).
func (g *Graph) ConversionIndex(c *Conversion) int {
	base := 0
	for _, l := range g.convertible {
		for i, x := range g.convs[l] {
			if x == c {
				return base + i
			}
		}
		base += len(g.convs[l])
	}

	return -1
}

// ConversionAt is the inverse of ConversionIndex; nil when out of range.
func (g *Graph) ConversionAt(i int) *Conversion {
	if i < 0 {
		return nil
	}
	for _, l := range g.convertible {
		n := len(g.convs[l])
		if i < n {
			return g.convs[l][i]
		}
		i -= n
	}

	return nil
}

// AllConversions returns every conversion in global index order.
func (g *Graph) AllConversions() []*Conversion {
	out := make([]*Conversion, 0, g.TotalConvCount())
	for _, l := range g.convertible {
		out = append(out, g.convs[l]...)
	}

	return out
}

// ClonalFrameLength returns the total length of all non-root edges.
// Complexity: O(N).
func (g *Graph) ClonalFrameLength() float64 {
	lengths := make([]float64, g.tree.NodeCount())
	for i := range lengths {
		lengths[i] = g.tree.Length(i)
	}

	return floats.Sum(lengths)
}

// CheckConversion reports why c is inconsistent with the current clonal
// frame, or nil. Height1 lies strictly inside its edge, which may not be
// the root edge. Height2 lies in the closed span of its edge; on the root
// edge it is unbounded above.
func (g *Graph) CheckConversion(c *Conversion) error {
	t := g.tree
	switch {
	case c == nil:
		return ErrNilConversion
	case !t.Contains(c.Node1) || !t.Contains(c.Node2):
		return fmt.Errorf("%v: node out of range: %w", c, ErrInvalidConversion)
	case c.Height1 > c.Height2:
		return fmt.Errorf("%v: departs above arrival: %w", c, ErrInvalidConversion)
	case t.IsRoot(c.Node1):
		return fmt.Errorf("%v: departs from root edge: %w", c, ErrInvalidConversion)
	case c.Height1 <= t.Height(c.Node1) || c.Height1 >= t.ParentHeight(c.Node1):
		return fmt.Errorf("%v: departure off edge: %w", c, ErrInvalidConversion)
	case c.Height2 < t.Height(c.Node2) || c.Height2 > t.ParentHeight(c.Node2):
		return fmt.Errorf("%v: arrival off edge: %w", c, ErrInvalidConversion)
	}

	return checkSpan(c.Locus, c.StartSite, c.EndSite)
}

// IsInvalid reports whether any conversion violates CheckConversion.
// Complexity: O(total conversions).
func (g *Graph) IsInvalid() bool {
	for _, l := range g.convertible {
		for _, c := range g.convs[l] {
			if g.CheckConversion(c) != nil {
				return true
			}
		}
	}

	return false
}

// Regions returns the region list of l.
func (g *Graph) Regions(l *Locus) []Region {
	c, ok := g.regions[l]
	if !ok {
		return nil
	}

	return c.Get()
}

// RegionCount returns len(Regions(l)).
func (g *Graph) RegionCount(l *Locus) int { return len(g.Regions(l)) }

// InformativeRegions returns the region list of l built only from
// conversions with at least one affected site.
func (g *Graph) InformativeRegions(l *Locus) []Region {
	c, ok := g.informative[l]
	if !ok {
		return nil
	}

	return c.Get()
}

// Affected returns the affected-site list of the current state.
func (g *Graph) Affected() *AffectedSiteList { return g.affected.Get() }

// UselessConvCount returns the number of conversions with no affected site.
func (g *Graph) UselessConvCount() int { return g.Affected().UselessCount() }

// CFEvents returns the clonal frame event list.
func (g *Graph) CFEvents() []CFEvent { return g.events.Get() }

// Equal reports whether g and o hold equal clonal frames and equal
// conversion lists, heights compared within tol.
func (g *Graph) Equal(o *Graph, tol float64) bool {
	if o == nil || !g.tree.Equal(o.tree, tol) || len(g.convertible) != len(o.convertible) {
		return false
	}
	for i, l := range g.convertible {
		ol := o.convertible[i]
		if l.id != ol.id || len(g.convs[l]) != len(o.convs[ol]) {
			return false
		}
		for k, c := range g.convs[l] {
			if !c.Equal(o.convs[ol][k], tol) {
				return false
			}
		}
	}

	return true
}
