// Package tree implements the clonal frame: a rooted full binary tree of
// dated nodes stored as an arena addressed by stable integer indices.
//
// What:
//
//   - Node/Tree: leaves at indices [0, n), internal nodes at [n, 2n-1).
//   - Builder: bottom-up construction (AddLeaf, Join, Build).
//   - Walk: iterative depth-first traversal with OnVisit/OnExit hooks.
//   - OnEdit listeners: every mutation (SetHeight, CopyFrom)
//     notifies subscribers so derived caches can mark themselves dirty.
//
// Why indices: structures that point into the tree (conversion endpoints)
// store plain ints, so copying or restoring the whole arena never needs a
// re-pointing pass.
//
// Complexity:
//
//   - Queries O(1); LineagesAt, Validate, Clone, CopyFrom, Walk O(N).
//
// Errors:
//
//   - ErrEmptyTree, ErrNodeNotFound, ErrNotBinary, ErrBadHeight,
//     ErrBadRoot, ErrBadLinks, ErrLeafOrder, ErrHandleInUse.
//
// Concurrency: a Tree is not safe for concurrent mutation.
package tree
