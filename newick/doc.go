// SPDX-License-Identifier: MIT

// Package newick reads and writes conversion graphs in extended Newick.
//
// The clonal frame is written as an ordinary rooted binary Newick tree.
// Leaves carry their taxon labels and internal nodes carry their arena
// index, so parsing restores the numbering. Each conversion adds two
// pseudo-nodes on the clonal frame edges it touches:
//
//	departure (edge above Node1, at Height1):
//	    (<rest of edge>)#i[&Bottom]:len
//	arrival (edge above Node2, at Height2):
//	    (<rest of edge>,#i[&conv=k, region={s,e}, locus="id", relSize=r, ...]:h2-h1)[&Top]:len
//
// i is the global conversion index and k the index within the locus. The
// hybrid leaf #i carries the span, locus and, unless disabled, the
// affected-site summary; caller metadata follows the computed keys. The
// root edge is written with length 0.
//
// Parsing is two stages: a recursive-descent parser builds a syntax tree
// (parser.go), then a pure transformation resolves pseudo-nodes into a
// tree.Tree and conversions (transform.go). Errors carry the byte offset
// of the offending token.
package newick
