// SPDX-License-Identifier: MIT
//
// File: transform.go
// Role: syntax tree to *acg.Graph.
//
// Steps:
//  1. Heights from branch lengths, shifted so the lowest node sits at 0.
//  2. Every syntax node resolves to the clonal frame node below it:
//     departures to their only child, arrivals to their non-hybrid child.
//  3. Clonal frame nodes get arena indices: leaves by WithTaxa order or by
//     appearance, internal nodes by their numeric labels when these form a
//     valid numbering, otherwise in post-order.
//  4. Each #i contributes Node1/Height1 from its departure node and
//     Node2/Height2 plus span metadata from its hybrid leaf.

package newick

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/katalvlaran/argraph/acg"
	"github.com/katalvlaran/argraph/tree"
)

// computedKeys are written by Write and dropped from Middle on parse.
var computedKeys = map[string]bool{
	"conv": true, "region": true, "locus": true, "relSize": true,
	"affectedSites": true, "uselessSiteFraction": true,
}

// ParseOption configures Parse.
type ParseOption func(*parseConfig)

type parseConfig struct {
	taxa      []string
	graphOpts []acg.Option
}

// WithTaxa fixes leaf indices: the leaf labelled taxa[i] becomes node i.
// Every leaf must be listed.
func WithTaxa(taxa []string) ParseOption {
	return func(c *parseConfig) { c.taxa = append([]string(nil), taxa...) }
}

// WithGraphOptions forwards options to acg.New.
func WithGraphOptions(opts ...acg.Option) ParseOption {
	return func(c *parseConfig) { c.graphOpts = append(c.graphOpts, opts...) }
}

// Parse reads one conversion graph over loci from src.
func Parse(src string, loci []*acg.Locus, opts ...ParseOption) (*acg.Graph, error) {
	var cfg parseConfig
	for _, fn := range opts {
		fn(&cfg)
	}
	root, err := parseSyntax(src)
	if err != nil {
		return nil, err
	}

	return build(root, loci, cfg)
}

func malformed(n *syntaxNode, format string, args ...any) error {
	return fmt.Errorf("offset %d: %s: %w", n.pos, fmt.Sprintf(format, args...), ErrMalformed)
}

// assignHeights sets height = parent height - length with the root at 0,
// then shifts every height so the minimum is 0.
func assignHeights(root *syntaxNode) {
	lowest := 0.0
	var down func(n *syntaxNode)
	down = func(n *syntaxNode) {
		lowest = math.Min(lowest, n.height)
		for _, c := range n.children {
			c.height = n.height - c.length
			down(c)
		}
	}
	root.height = 0
	down(root)

	var shift func(n *syntaxNode)
	shift = func(n *syntaxNode) {
		n.height -= lowest
		for _, c := range n.children {
			shift(c)
		}
	}
	shift(root)
}

// resolve returns the clonal frame node that n stands for.
func resolve(n *syntaxNode) (*syntaxNode, error) {
	for {
		switch k := len(n.children); {
		case k == 0:
			if n.hybrid >= 0 {
				return nil, malformed(n, "hybrid leaf #%d outside an arrival node", n.hybrid)
			}
			return n, nil
		case n.hybrid >= 0:
			if k != 1 {
				return nil, malformed(n, "departure node #%d has %d children", n.hybrid, k)
			}
			n = n.children[0]
		case k == 2:
			a, b := n.children[0].isHybridLeaf(), n.children[1].isHybridLeaf()
			switch {
			case !a && !b:
				return n, nil
			case b && !a:
				n = n.children[0]
			case a && !b:
				n = n.children[1]
			default:
				return nil, malformed(n, "arrival node without a continuing lineage")
			}
		default:
			return nil, malformed(n, "node has %d children", k)
		}
	}
}

type frame struct {
	leaves, internals []*syntaxNode
	kids              map[*syntaxNode][2]*syntaxNode
	index             map[*syntaxNode]int
}

// collect gathers clonal frame nodes below n (already resolved): leaves in
// appearance order, internal nodes in post-order.
func (f *frame) collect(n *syntaxNode) error {
	if len(n.children) == 0 {
		f.leaves = append(f.leaves, n)
		return nil
	}
	var kids [2]*syntaxNode
	for i, c := range n.children {
		r, err := resolve(c)
		if err != nil {
			return err
		}
		if err := f.collect(r); err != nil {
			return err
		}
		kids[i] = r
	}
	f.kids[n] = kids
	f.internals = append(f.internals, n)

	return nil
}

func (f *frame) number(taxa []string) error {
	nLeaves := len(f.leaves)
	if taxa != nil {
		if len(taxa) != nLeaves {
			return fmt.Errorf("%d leaves for %d taxa: %w", nLeaves, len(taxa), ErrMalformed)
		}
		pos := make(map[string]int, len(taxa))
		for i, name := range taxa {
			pos[name] = i
		}
		used := make([]bool, nLeaves)
		for _, leaf := range f.leaves {
			i, ok := pos[leaf.label]
			if !ok {
				return fmt.Errorf("leaf %q: %w", leaf.label, ErrUnknownTaxon)
			}
			if used[i] {
				return malformed(leaf, "leaf %q appears twice", leaf.label)
			}
			used[i] = true
			f.index[leaf] = i
		}
	} else {
		for i, leaf := range f.leaves {
			f.index[leaf] = i
		}
	}

	labelled := make(map[int]*syntaxNode, len(f.internals))
	for _, n := range f.internals {
		v, err := strconv.Atoi(n.label)
		if !n.hasLabel || err != nil || v < nLeaves || v >= nLeaves+len(f.internals) || labelled[v] != nil {
			labelled = nil
			break
		}
		labelled[v] = n
	}
	for k, n := range f.internals {
		f.index[n] = nLeaves + k
	}
	for v, n := range labelled {
		f.index[n] = v
	}

	return nil
}

func (f *frame) tree() (*tree.Tree, error) {
	nodes := make([]tree.Node, len(f.leaves)+len(f.internals))
	for i := range nodes {
		nodes[i].Parent = tree.NoNode
	}
	for _, leaf := range f.leaves {
		i := f.index[leaf]
		nodes[i].Label = leaf.label
		nodes[i].Height = leaf.height
	}
	for _, n := range f.internals {
		i := f.index[n]
		kids := f.kids[n]
		nodes[i].Height = n.height
		nodes[i].Children = []int{f.index[kids[0]], f.index[kids[1]]}
		for _, k := range kids {
			nodes[f.index[k]].Parent = i
		}
	}
	t, err := tree.New(nodes)
	if err != nil {
		return nil, fmt.Errorf("clonal frame: %w: %w", ErrMalformed, err)
	}

	return t, nil
}

type pending struct {
	conv                *acg.Conversion
	locusID             string
	departed, arrived   bool
	hasRegion, hasLocus bool
}

func build(root *syntaxNode, loci []*acg.Locus, cfg parseConfig) (*acg.Graph, error) {
	assignHeights(root)
	cfRoot, err := resolve(root)
	if err != nil {
		return nil, err
	}
	f := &frame{kids: make(map[*syntaxNode][2]*syntaxNode), index: make(map[*syntaxNode]int)}
	if err := f.collect(cfRoot); err != nil {
		return nil, err
	}
	if err := f.number(cfg.taxa); err != nil {
		return nil, err
	}
	t, err := f.tree()
	if err != nil {
		return nil, err
	}
	g, err := acg.New(t, loci, cfg.graphOpts...)
	if err != nil {
		return nil, err
	}

	convs := make(map[int]*pending)
	var visit func(n *syntaxNode) error
	visit = func(n *syntaxNode) error {
		if n.hybrid >= 0 {
			p := convs[n.hybrid]
			if p == nil {
				p = &pending{conv: &acg.Conversion{}}
				convs[n.hybrid] = p
			}
			if err := f.attach(n, p); err != nil {
				return err
			}
		}
		for _, c := range n.children {
			if err := visit(c); err != nil {
				return err
			}
		}
		return nil
	}
	if err := visit(root); err != nil {
		return nil, err
	}

	ids := make([]int, 0, len(convs))
	for id := range convs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		p := convs[id]
		if !p.departed || !p.arrived {
			return nil, fmt.Errorf("conversion #%d lacks a departure or an arrival: %w", id, ErrMalformed)
		}
		l, err := g.LocusByID(p.locusID)
		if err != nil {
			return nil, fmt.Errorf("conversion #%d: %q: %w", id, p.locusID, ErrUnknownLocus)
		}
		p.conv.Locus = l
		if err := g.AddConversion(p.conv); err != nil {
			return nil, fmt.Errorf("conversion #%d: %w", id, err)
		}
	}

	return g, nil
}

// attach records the endpoint that hybrid node n describes.
func (f *frame) attach(n *syntaxNode, p *pending) error {
	if !n.isHybridLeaf() {
		if p.departed {
			return malformed(n, "duplicate departure for #%d", n.hybrid)
		}
		below, err := resolve(n)
		if err != nil {
			return err
		}
		p.departed = true
		p.conv.Node1, p.conv.Height1 = f.index[below], n.height
		p.conv.Meta.Bottom = joinRaw(n.meta)
		return nil
	}

	if p.arrived {
		return malformed(n, "duplicate arrival for #%d", n.hybrid)
	}
	if n.parent == nil {
		return malformed(n, "hybrid leaf #%d at the root", n.hybrid)
	}
	below, err := resolve(n.parent)
	if err != nil {
		return err
	}
	p.arrived = true
	p.conv.Node2, p.conv.Height2 = f.index[below], n.parent.height
	p.conv.Meta.Top = joinRaw(n.parent.meta)

	var extra []attr
	for _, a := range n.meta {
		switch a.Key {
		case "locus":
			p.locusID, p.hasLocus = strings.Trim(a.Value, `"`), true
		case "region":
			s, e, err := parseRegion(a.Value)
			if err != nil {
				return malformed(n, "#%d: %v", n.hybrid, err)
			}
			p.conv.StartSite, p.conv.EndSite, p.hasRegion = s, e, true
		default:
			if !computedKeys[a.Key] {
				extra = append(extra, a)
			}
		}
	}
	if !p.hasLocus || !p.hasRegion {
		return malformed(n, "#%d needs locus and region metadata", n.hybrid)
	}
	p.conv.Meta.Middle = joinRaw(extra)

	return nil
}

func parseRegion(v string) (int, int, error) {
	body, ok := strings.CutPrefix(v, "{")
	if body, ok2 := strings.CutSuffix(body, "}"); ok && ok2 {
		a, b, found := strings.Cut(body, ",")
		s, err1 := strconv.Atoi(strings.TrimSpace(a))
		e, err2 := strconv.Atoi(strings.TrimSpace(b))
		if found && err1 == nil && err2 == nil {
			return s, e, nil
		}
	}

	return 0, 0, fmt.Errorf("region %q is not {start,end}", v)
}

func joinRaw(attrs []attr) string {
	parts := make([]string, len(attrs))
	for i, a := range attrs {
		parts[i] = a.Raw
	}

	return strings.Join(parts, ", ")
}
