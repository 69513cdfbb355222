// SPDX-License-Identifier: MIT

// Package operators implements reversible-jump proposals over an
// *acg.Graph.
//
// What:
//
//   - MergeSplit: split one conversion into two on the same edge pair, or
//     merge two conversions sharing both edges into their envelope.
//   - RegionShift: slide one conversion's span by a uniform offset.
//   - AddRemove: birth of a conversion drawn from the model kernels, or
//     death of a uniformly chosen one.
//
// Contract:
//
//	Propose mutates the graph in place and returns the log Hastings ratio.
//	math.Inf(-1) means "reject": the operator either finished its edit or
//	never started one, so a caller holding an acg.Snapshot can always
//	restore. Operators never return errors; infeasible moves are rejects.
//
// Concurrency: operators share their graph and must be driven by a single
// goroutine.
package operators
