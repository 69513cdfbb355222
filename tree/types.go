// SPDX-License-Identifier: MIT
//
// File: types.go
// Role: Node and Tree declarations, sentinel errors, validating constructor.
// Policy:
//   - Nodes live in an arena and are addressed by stable integer indices.
//   - Leaves occupy indices [0, LeafCount); internal nodes follow.
//   - Callers never hold pointers into the arena; they hold indices.

package tree

import (
	"errors"
	"fmt"
)

// NoNode marks an absent parent or child reference.
const NoNode = -1

// Sentinel errors for clonal frame construction and queries.
var (
	// ErrEmptyTree indicates a tree with no nodes was requested.
	ErrEmptyTree = errors.New("tree: no nodes")

	// ErrNodeNotFound indicates an index outside the node arena.
	ErrNodeNotFound = errors.New("tree: node index out of range")

	// ErrNotBinary indicates an internal node without exactly two children.
	ErrNotBinary = errors.New("tree: internal node must have exactly two children")

	// ErrBadHeight indicates a node that is higher than its parent, or a non-finite height.
	ErrBadHeight = errors.New("tree: node height inconsistent with parent")

	// ErrBadRoot indicates zero or several parentless nodes.
	ErrBadRoot = errors.New("tree: tree must have exactly one root")

	// ErrBadLinks indicates parent and child references that disagree.
	ErrBadLinks = errors.New("tree: parent/child references disagree")

	// ErrLeafOrder indicates a leaf stored after an internal node.
	ErrLeafOrder = errors.New("tree: leaves must occupy the lowest indices")

	// ErrHandleInUse indicates a Builder handle joined twice or unknown.
	ErrHandleInUse = errors.New("tree: builder handle unknown or already joined")
)

// Node is one clonal frame node.
//
// Label is the taxon name for leaves and is usually empty for internal nodes.
// Children is nil for leaves and holds exactly two indices otherwise.
type Node struct {
	Label    string
	Height   float64
	Parent   int
	Children []int
}

// IsLeaf reports whether n has no children.
func (n Node) IsLeaf() bool { return len(n.Children) == 0 }

// Tree is a rooted full binary tree stored as an arena of nodes.
//
// Every mutation goes through a Tree method, which notifies the edit
// listeners registered with OnEdit. Derived structures keyed on the tree
// (event lists, region lists) subscribe there and mark themselves dirty.
type Tree struct {
	nodes     []Node
	root      int
	leafCount int
	listeners []func()
}

// New validates nodes and returns a Tree that owns a private copy of them.
//
// Requirements: leaves first, every internal node has two children whose
// Parent points back at it, exactly one root, child height <= parent height.
// Complexity: O(N).
func New(nodes []Node) (*Tree, error) {
	if len(nodes) == 0 {
		return nil, ErrEmptyTree
	}
	t := &Tree{nodes: copyNodes(nodes), root: NoNode}
	if err := t.index(); err != nil {
		return nil, err
	}

	return t, nil
}

// index recomputes root and leafCount and validates the arena.
func (t *Tree) index() error {
	t.root = NoNode
	t.leafCount = 0
	seenInternal := false
	for i, n := range t.nodes {
		if n.IsLeaf() {
			if seenInternal {
				return fmt.Errorf("New: leaf %d after internal node: %w", i, ErrLeafOrder)
			}
			t.leafCount++
		} else {
			seenInternal = true
		}
		if n.Parent == NoNode {
			if t.root != NoNode {
				return fmt.Errorf("New: nodes %d and %d both parentless: %w", t.root, i, ErrBadRoot)
			}
			t.root = i
		}
	}
	if t.root == NoNode {
		return fmt.Errorf("New: %w", ErrBadRoot)
	}

	return t.Validate()
}

// Validate checks the structural invariants of the clonal frame.
// Complexity: O(N).
func (t *Tree) Validate() error {
	n := len(t.nodes)
	for i, node := range t.nodes {
		if node.Height != node.Height { // NaN
			return fmt.Errorf("Validate: node %d height NaN: %w", i, ErrBadHeight)
		}
		if !node.IsLeaf() && len(node.Children) != 2 {
			return fmt.Errorf("Validate: node %d has %d children: %w", i, len(node.Children), ErrNotBinary)
		}
		for _, c := range node.Children {
			if c < 0 || c >= n {
				return fmt.Errorf("Validate: node %d child %d: %w", i, c, ErrNodeNotFound)
			}
			if t.nodes[c].Parent != i {
				return fmt.Errorf("Validate: node %d child %d parent %d: %w", i, c, t.nodes[c].Parent, ErrBadLinks)
			}
			if t.nodes[c].Height > node.Height {
				return fmt.Errorf("Validate: node %d (h=%g) above parent %d (h=%g): %w",
					c, t.nodes[c].Height, i, node.Height, ErrBadHeight)
			}
		}
		if node.Parent != NoNode {
			if node.Parent < 0 || node.Parent >= n {
				return fmt.Errorf("Validate: node %d parent %d: %w", i, node.Parent, ErrNodeNotFound)
			}
			p := t.nodes[node.Parent]
			if len(p.Children) != 2 || (p.Children[0] != i && p.Children[1] != i) {
				return fmt.Errorf("Validate: node %d not a child of its parent %d: %w", i, node.Parent, ErrBadLinks)
			}
		}
	}

	return nil
}

func copyNodes(src []Node) []Node {
	dst := make([]Node, len(src))
	for i, n := range src {
		dst[i] = n
		if n.Children != nil {
			dst[i].Children = append([]int(nil), n.Children...)
		}
	}

	return dst
}
