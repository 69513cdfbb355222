// SPDX-License-Identifier: MIT
//
// File: methods.go
// Role: Read-only queries and the small set of notifying edits on Tree.
// Determinism:
//   - Every query that returns several indices returns them ascending.

package tree

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// NodeCount returns the number of nodes (2n-1 for n leaves).
func (t *Tree) NodeCount() int { return len(t.nodes) }

// LeafCount returns the number of leaves.
func (t *Tree) LeafCount() int { return t.leafCount }

// Root returns the root index.
func (t *Tree) Root() int { return t.root }

// Node returns a copy of node i.
func (t *Tree) Node(i int) Node {
	n := t.nodes[i]
	if n.Children != nil {
		n.Children = append([]int(nil), n.Children...)
	}

	return n
}

// Height returns the height of node i.
func (t *Tree) Height(i int) float64 { return t.nodes[i].Height }

// Parent returns the parent of node i, or NoNode for the root.
func (t *Tree) Parent(i int) int { return t.nodes[i].Parent }

// Child returns the k-th child (k in {0,1}) of internal node i.
func (t *Tree) Child(i, k int) int { return t.nodes[i].Children[k] }

// Label returns the label of node i.
func (t *Tree) Label(i int) string { return t.nodes[i].Label }

// IsLeaf reports whether i is a leaf.
func (t *Tree) IsLeaf(i int) bool { return t.nodes[i].IsLeaf() }

// IsRoot reports whether i is the root.
func (t *Tree) IsRoot(i int) bool { return i == t.root }

// Contains reports whether i is a valid node index.
func (t *Tree) Contains(i int) bool { return i >= 0 && i < len(t.nodes) }

// Length returns the length of the edge above node i; zero for the root.
func (t *Tree) Length(i int) float64 {
	p := t.nodes[i].Parent
	if p == NoNode {
		return 0
	}

	return t.nodes[p].Height - t.nodes[i].Height
}

// ParentHeight returns the height of i's parent, or +Inf for the root.
func (t *Tree) ParentHeight(i int) float64 {
	p := t.nodes[i].Parent
	if p == NoNode {
		return math.Inf(1)
	}

	return t.nodes[p].Height
}

// Labels returns the leaf labels in index order.
func (t *Tree) Labels() []string {
	out := make([]string, t.leafCount)
	for i := 0; i < t.leafCount; i++ {
		out[i] = t.nodes[i].Label
	}

	return out
}

// LineagesAt returns, ascending, the nodes whose edge spans height h:
// node height <= h and (root, or parent height > h).
// Complexity: O(N).
func (t *Tree) LineagesAt(h float64) []int {
	out := make([]int, 0, t.leafCount)
	for i, n := range t.nodes {
		if n.Height > h {
			continue
		}
		if n.Parent == NoNode || t.nodes[n.Parent].Height > h {
			out = append(out, i)
		}
	}

	return out
}

// OnEdit registers fn to be called after every mutation of t.
func (t *Tree) OnEdit(fn func()) {
	if fn != nil {
		t.listeners = append(t.listeners, fn)
	}
}

func (t *Tree) notify() {
	for _, fn := range t.listeners {
		fn()
	}
}

// SetHeight changes the height of node i and notifies listeners.
// The new height is not checked against the neighbours; call Validate
// once a compound edit is complete.
func (t *Tree) SetHeight(i int, h float64) error {
	if !t.Contains(i) {
		return fmt.Errorf("SetHeight(%d): %w", i, ErrNodeNotFound)
	}
	if math.IsNaN(h) || math.IsInf(h, 0) {
		return fmt.Errorf("SetHeight(%d, %g): %w", i, h, ErrBadHeight)
	}
	t.nodes[i].Height = h
	t.notify()

	return nil
}

// Clone returns a deep copy of t without its listeners.
// Complexity: O(N).
func (t *Tree) Clone() *Tree {
	return &Tree{
		nodes:     copyNodes(t.nodes),
		root:      t.root,
		leafCount: t.leafCount,
	}
}

// CopyFrom overwrites t's arena with src's and notifies listeners.
// Listeners registered on t are kept. Used to restore a saved state.
// Complexity: O(N).
func (t *Tree) CopyFrom(src *Tree) {
	t.nodes = copyNodes(src.nodes)
	t.root = src.root
	t.leafCount = src.leafCount
	t.notify()
}

// Equal reports whether t and o have identical indices, links and labels,
// with heights equal within tol.
func (t *Tree) Equal(o *Tree, tol float64) bool {
	if o == nil || len(t.nodes) != len(o.nodes) || t.root != o.root {
		return false
	}
	for i := range t.nodes {
		a, b := t.nodes[i], o.nodes[i]
		if a.Parent != b.Parent || a.Label != b.Label || len(a.Children) != len(b.Children) {
			return false
		}
		for k := range a.Children {
			if a.Children[k] != b.Children[k] {
				return false
			}
		}
		if math.Abs(a.Height-b.Height) > tol {
			return false
		}
	}

	return true
}

// Clade returns the sorted leaf labels below node i joined with ",".
// Two trees share a topology iff their internal nodes give the same clade set.
func (t *Tree) Clade(i int) string {
	var labels []string
	_, _ = Walk(t, WithStart(i), WithOnVisit(func(j int) error {
		if t.nodes[j].IsLeaf() {
			labels = append(labels, t.nodes[j].Label)
		}
		return nil
	}))
	sort.Strings(labels)

	return strings.Join(labels, ",")
}

// CladeHeights maps every clade (see Clade) to the height of its MRCA.
// Complexity: O(N^2) in the worst case; intended for tests and reports.
func (t *Tree) CladeHeights() map[string]float64 {
	out := make(map[string]float64, len(t.nodes))
	for i := range t.nodes {
		out[t.Clade(i)] = t.nodes[i].Height
	}

	return out
}
