// SPDX-License-Identifier: MIT
//
// File: walk.go
// Role: depth-first traversal of a Tree with pre-/post-order hooks.
//
// Traversal is iterative (explicit stack), so deep caterpillar trees with
// thousands of taxa do not grow the goroutine stack. Children are visited
// in stored order (child 0 first).

package tree

import "fmt"

// WalkOption configures Walk.
type WalkOption func(*WalkOptions)

// WalkOptions holds traversal parameters.
type WalkOptions struct {
	// Start is the subtree root; NoNode means the tree root.
	Start int

	// OnVisit is called on discovery (pre-order). An error aborts the walk.
	OnVisit func(i int) error

	// OnExit is called after both children finished (post-order),
	// before i is appended to WalkResult.Order. An error aborts the walk.
	OnExit func(i int) error

	// MaxDepth limits descent; -1 means unlimited, 0 visits only Start.
	MaxDepth int
}

// DefaultWalkOptions returns a whole-tree walk with no hooks or limit.
func DefaultWalkOptions() WalkOptions {
	return WalkOptions{Start: NoNode, MaxDepth: -1}
}

// WithStart restricts the walk to the subtree below i.
func WithStart(i int) WalkOption {
	return func(o *WalkOptions) { o.Start = i }
}

// WithOnVisit installs a pre-order hook.
func WithOnVisit(fn func(i int) error) WalkOption {
	return func(o *WalkOptions) { o.OnVisit = fn }
}

// WithOnExit installs a post-order hook.
func WithOnExit(fn func(i int) error) WalkOption {
	return func(o *WalkOptions) { o.OnExit = fn }
}

// WithMaxDepth limits traversal depth.
func WithMaxDepth(limit int) WalkOption {
	return func(o *WalkOptions) { o.MaxDepth = limit }
}

// WalkResult collects the post-order and the depth of each visited node
// (-1 for nodes that were not reached).
type WalkResult struct {
	Order []int
	Depth []int
}

type frame struct {
	node     int
	depth    int
	expanded bool
}

// Walk performs a depth-first traversal of t.
// Complexity: O(N) time and memory.
func Walk(t *Tree, opts ...WalkOption) (*WalkResult, error) {
	o := DefaultWalkOptions()
	for _, fn := range opts {
		fn(&o)
	}
	start := o.Start
	if start == NoNode {
		start = t.root
	}
	if !t.Contains(start) {
		return nil, fmt.Errorf("Walk(start=%d): %w", start, ErrNodeNotFound)
	}

	res := &WalkResult{
		Order: make([]int, 0, len(t.nodes)),
		Depth: make([]int, len(t.nodes)),
	}
	for i := range res.Depth {
		res.Depth[i] = -1
	}

	stack := []frame{{node: start}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if !top.expanded {
			top.expanded = true
			res.Depth[top.node] = top.depth
			if o.OnVisit != nil {
				if err := o.OnVisit(top.node); err != nil {
					return nil, fmt.Errorf("tree: OnVisit hook for %d: %w", top.node, err)
				}
			}
			if o.MaxDepth < 0 || top.depth < o.MaxDepth {
				ch := t.nodes[top.node].Children
				d := top.depth + 1
				// push in reverse so child 0 is visited first
				for k := len(ch) - 1; k >= 0; k-- {
					stack = append(stack, frame{node: ch[k], depth: d})
				}
			}
			continue
		}
		node := top.node
		stack = stack[:len(stack)-1]
		if o.OnExit != nil {
			if err := o.OnExit(node); err != nil {
				return nil, fmt.Errorf("tree: OnExit hook for %d: %w", node, err)
			}
		}
		res.Order = append(res.Order, node)
	}

	return res, nil
}

// PostOrder returns the post-order of the whole tree.
func PostOrder(t *Tree) []int {
	res, err := Walk(t)
	if err != nil {
		return nil
	}

	return res.Order
}
