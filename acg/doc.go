// SPDX-License-Identifier: MIT

// Package acg implements the ancestral conversion graph: a clonal frame
// tree augmented with conversion edges, each redirecting the ancestry of a
// contiguous span of sites on one locus.
//
// What:
//
//   - Locus, Conversion: the immutable locus description and the mutable
//     conversion edge (arena node indices plus heights plus a site span).
//   - Graph: owns the clonal frame and the per-locus conversion lists, and
//     lazily derives the region list, the affected-site list and the clonal
//     frame event list.
//   - Save/Restore: O(N + C) checkpointing for propose/reject cycles.
//
// Invalidation:
//
//	Any conversion edit through Graph methods, and any clonal frame edit
//	through tree.Tree methods, marks every derived structure dirty. The next
//	query recomputes from scratch.
//
// Errors:
//
//	Precondition violations (unknown or non-convertible locus, span outside
//	the locus, absent conversion) are returned as wrapped sentinels.
//	Attachment validity is not an error path: IsInvalid is a cheap oracle.
package acg
