// SPDX-License-Identifier: MIT
//
// File: builder.go
// Role: bottom-up construction of a clonal frame.
//
// Handles are provisional: after Build, leaves are renumbered to
// [0, LeafCount) in AddLeaf order and internal nodes to
// [LeafCount, NodeCount) in Join order, so joining in post-order yields the
// conventional post-order numbering of internal nodes.

package tree

import "fmt"

// Handle identifies a node under construction.
type Handle int

type pending struct {
	label    string
	height   float64
	children []Handle
	parent   Handle
}

// Builder accumulates leaves and joins. The first error is sticky and
// returned by Build.
type Builder struct {
	items  []pending
	leaves int
	err    error
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder { return &Builder{} }

// AddLeaf adds a leaf and returns its handle.
func (b *Builder) AddLeaf(label string, height float64) Handle {
	b.items = append(b.items, pending{label: label, height: height, parent: -1})
	b.leaves++

	return Handle(len(b.items) - 1)
}

// Join creates an internal node at height above left and right.
func (b *Builder) Join(left, right Handle, height float64) Handle {
	h := Handle(len(b.items))
	b.items = append(b.items, pending{height: height, children: []Handle{left, right}, parent: -1})
	for _, c := range []Handle{left, right} {
		if c < 0 || int(c) >= int(h) || b.items[c].parent != -1 || left == right {
			if b.err == nil {
				b.err = fmt.Errorf("Join(%d,%d): %w", left, right, ErrHandleInUse)
			}
			continue
		}
		b.items[c].parent = h
	}

	return h
}

// Build assembles and validates the Tree.
// Complexity: O(N).
func (b *Builder) Build() (*Tree, error) {
	if b.err != nil {
		return nil, b.err
	}
	if len(b.items) == 0 {
		return nil, ErrEmptyTree
	}
	final := make([]int, len(b.items))
	nextLeaf, nextInternal := 0, b.leaves
	for h, it := range b.items {
		if len(it.children) == 0 {
			final[h] = nextLeaf
			nextLeaf++
		} else {
			final[h] = nextInternal
			nextInternal++
		}
	}
	nodes := make([]Node, len(b.items))
	for h, it := range b.items {
		n := Node{Label: it.label, Height: it.height, Parent: NoNode}
		if it.parent >= 0 {
			n.Parent = final[it.parent]
		}
		if len(it.children) > 0 {
			n.Children = []int{final[it.children[0]], final[it.children[1]]}
		}
		nodes[final[h]] = n
	}

	return New(nodes)
}
