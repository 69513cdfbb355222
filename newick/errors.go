// SPDX-License-Identifier: MIT
// Package: argraph/newick
//
// errors.go: sentinel errors and the positioned syntax error.
//
// Error policy:
//   - Lexical and grammatical problems are *SyntaxError, which unwraps to
//     ErrSyntax.
//   - Well-formed text that does not describe a conversion graph wraps
//     ErrMalformed, ErrUnknownLocus or ErrUnknownTaxon.

package newick

import (
	"errors"
	"fmt"
)

var (
	// ErrSyntax is the class of every *SyntaxError.
	ErrSyntax = errors.New("newick: syntax error")

	// ErrMalformed indicates syntactically valid input whose pseudo-nodes
	// or clonal frame do not form a conversion graph.
	ErrMalformed = errors.New("newick: malformed conversion graph")

	// ErrUnknownLocus indicates a conversion on a locus absent from the
	// supplied list.
	ErrUnknownLocus = errors.New("newick: unknown locus")

	// ErrUnknownTaxon indicates a leaf label absent from WithTaxa.
	ErrUnknownTaxon = errors.New("newick: unknown taxon")
)

// SyntaxError reports the byte offset and text of the token where parsing
// failed.
type SyntaxError struct {
	Pos   int
	Token string
	Msg   string
}

// Error implements error.
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("newick: offset %d near %q: %s", e.Pos, e.Token, e.Msg)
}

// Unwrap lets errors.Is match ErrSyntax.
func (e *SyntaxError) Unwrap() error { return ErrSyntax }
