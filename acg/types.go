// SPDX-License-Identifier: MIT
//
// File: types.go
// Role: Locus and Conversion declarations and the package sentinel errors.
// Policy:
//   - Loci are immutable after construction and shared by pointer between
//     copies of a Graph.
//   - Conversions reference clonal frame nodes by arena index, never by pointer.
//   - Site spans are inclusive: [StartSite, EndSite]. On circular loci
//     EndSite < StartSite means the span wraps past the last site to site 0.

package acg

import (
	"errors"
	"fmt"
)

var (
	// ErrNilTree indicates a Graph constructed without a clonal frame.
	ErrNilTree = errors.New("acg: nil clonal frame")

	// ErrNoLoci indicates a Graph constructed without any locus.
	ErrNoLoci = errors.New("acg: no loci")

	// ErrBadLocus indicates an empty id or a non-positive site count.
	ErrBadLocus = errors.New("acg: invalid locus")

	// ErrDuplicateLocus indicates two loci sharing an id.
	ErrDuplicateLocus = errors.New("acg: duplicate locus id")

	// ErrUnknownLocus indicates a locus that is not part of the Graph.
	ErrUnknownLocus = errors.New("acg: unknown locus")

	// ErrNotConvertible indicates an edit on a locus that forbids conversions.
	ErrNotConvertible = errors.New("acg: locus does not allow conversions")

	// ErrNilConversion indicates a nil *Conversion argument.
	ErrNilConversion = errors.New("acg: nil conversion")

	// ErrConversionAbsent indicates a conversion that is not registered.
	ErrConversionAbsent = errors.New("acg: conversion not in graph")

	// ErrDuplicateConversion indicates a conversion added twice.
	ErrDuplicateConversion = errors.New("acg: conversion already in graph")

	// ErrBadSpan indicates site bounds outside the locus, or a wrapped span
	// on a linear locus.
	ErrBadSpan = errors.New("acg: site span outside locus")

	// ErrInvalidConversion indicates attachment points inconsistent with the
	// current clonal frame.
	ErrInvalidConversion = errors.New("acg: conversion attachment invalid")
)

// Locus is one contiguously numbered genomic region.
type Locus struct {
	id          string
	siteCount   int
	circular    bool
	convertible bool
}

// LocusOption configures NewLocus.
type LocusOption func(*Locus)

// WithCircular marks the locus as circular.
func WithCircular() LocusOption {
	return func(l *Locus) { l.circular = true }
}

// WithoutConversions forbids conversions on the locus.
func WithoutConversions() LocusOption {
	return func(l *Locus) { l.convertible = false }
}

// NewLocus returns a linear, convertible locus unless options say otherwise.
func NewLocus(id string, siteCount int, opts ...LocusOption) (*Locus, error) {
	if id == "" || siteCount <= 0 {
		return nil, fmt.Errorf("NewLocus(%q, %d): %w", id, siteCount, ErrBadLocus)
	}
	l := &Locus{id: id, siteCount: siteCount, convertible: true}
	for _, fn := range opts {
		fn(l)
	}

	return l, nil
}

// ID returns the locus identifier used in serialized graphs.
func (l *Locus) ID() string { return l.id }

// SiteCount returns the number of sites; valid sites are [0, SiteCount).
func (l *Locus) SiteCount() int { return l.siteCount }

// Circular reports whether conversion spans may wrap past the last site.
func (l *Locus) Circular() bool { return l.circular }

// ConversionsAllowed reports whether conversions may be placed on l.
func (l *Locus) ConversionsAllowed() bool { return l.convertible }

// String implements fmt.Stringer.
func (l *Locus) String() string { return l.id }

// Meta holds caller-supplied metadata strings attached to a conversion's
// departure pseudo-node (Bottom), hybrid leaf (Middle) and arrival
// pseudo-node (Top) in serialized form. They are opaque to this package.
type Meta struct {
	Bottom, Middle, Top string
}

// Conversion is one recombination edge: it leaves the clonal frame on the
// edge above Node1 at Height1 (recipient side) and attaches on the edge
// above Node2 at Height2 (donor side), replacing the ancestry of sites
// [StartSite, EndSite] of Locus below Height1.
type Conversion struct {
	Locus     *Locus
	StartSite int
	EndSite   int
	Node1     int
	Height1   float64
	Node2     int
	Height2   float64
	Meta      Meta
}

// Wraps reports whether the span crosses the end of a circular locus.
func (c *Conversion) Wraps() bool { return c.EndSite < c.StartSite }

// SiteCount returns the number of sites in the span.
func (c *Conversion) SiteCount() int {
	if c.Wraps() {
		return c.Locus.siteCount - c.StartSite + c.EndSite + 1
	}

	return c.EndSite - c.StartSite + 1
}

// Covers reports whether site lies in the span.
func (c *Conversion) Covers(site int) bool {
	if c.Wraps() {
		return site >= c.StartSite || site <= c.EndSite
	}

	return site >= c.StartSite && site <= c.EndSite
}

// Segments returns the span as one or two ascending half-open intervals.
func (c *Conversion) Segments() [][2]int {
	if c.Wraps() {
		return [][2]int{{0, c.EndSite + 1}, {c.StartSite, c.Locus.siteCount}}
	}

	return [][2]int{{c.StartSite, c.EndSite + 1}}
}

// Copy returns a shallow value copy; the Locus pointer is shared.
func (c *Conversion) Copy() *Conversion {
	cp := *c

	return &cp
}

// Equal reports whether c and o describe the same conversion, with heights
// compared within tol.
func (c *Conversion) Equal(o *Conversion, tol float64) bool {
	if c == nil || o == nil {
		return c == o
	}

	return c.Locus.ID() == o.Locus.ID() &&
		c.StartSite == o.StartSite && c.EndSite == o.EndSite &&
		c.Node1 == o.Node1 && c.Node2 == o.Node2 &&
		within(c.Height1, o.Height1, tol) && within(c.Height2, o.Height2, tol) &&
		c.Meta == o.Meta
}

// String renders the conversion for logs and test failures.
func (c *Conversion) String() string {
	return fmt.Sprintf("%s[%d,%d] %d@%g -> %d@%g",
		c.Locus.ID(), c.StartSite, c.EndSite, c.Node1, c.Height1, c.Node2, c.Height2)
}

func within(a, b, tol float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}

	return d <= tol
}
