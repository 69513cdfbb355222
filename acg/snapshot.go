// SPDX-License-Identifier: MIT

package acg

import "github.com/katalvlaran/argraph/tree"

// Snapshot is a saved Graph state: a private clonal frame copy and deep
// copies of every conversion. Node references need no re-pointing because
// conversions hold arena indices.
type Snapshot struct {
	tree  *tree.Tree
	convs map[string][]*Conversion
}

// Save captures the current state.
// Complexity: O(N + C).
func (g *Graph) Save() *Snapshot {
	s := &Snapshot{tree: g.tree.Clone(), convs: make(map[string][]*Conversion, len(g.convertible))}
	for _, l := range g.convertible {
		s.convs[l.id] = copyConversions(g.convs[l])
	}

	return s
}

// Restore returns g to the state captured by s. The snapshot stays usable
// for further restores. Conversion pointers obtained before Restore no
// longer belong to g.
// Complexity: O(N + C).
func (g *Graph) Restore(s *Snapshot) {
	for _, l := range g.convertible {
		g.convs[l] = copyConversions(s.convs[l.id])
	}
	// CopyFrom notifies, which marks every cache dirty.
	g.tree.CopyFrom(s.tree)
}

// Copy returns an independent deep copy of g (clonal frame, conversions and
// options). Loci are shared.
func (g *Graph) Copy() *Graph {
	cp := &Graph{
		tree:        g.tree.Clone(),
		loci:        g.loci,
		convertible: g.convertible,
		byID:        g.byID,
		convs:       make(map[*Locus][]*Conversion, len(g.convs)),
		opts:        g.opts,
	}
	for l, list := range g.convs {
		cp.convs[l] = copyConversions(list)
	}
	cp.initCaches()

	return cp
}

func copyConversions(src []*Conversion) []*Conversion {
	if len(src) == 0 {
		return nil
	}
	out := make([]*Conversion, len(src))
	for i, c := range src {
		out[i] = c.Copy()
	}

	return out
}
