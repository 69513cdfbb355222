// SPDX-License-Identifier: MIT
// Package: argraph/operators
//
// options.go: functional options shared by every operator.
//
// Defaults:
//   - ceiling     = math.MaxInt  (split and birth always allowed)
//   - aperture    = 0.01         (shift window as a fraction of the locus)
//   - lengthModel = model.GeometricLength
//
// Option constructors panic on meaningless values; Propose never panics on
// graph state.

package operators

import (
	"math"

	"github.com/katalvlaran/argraph/model"
)

// DefaultAperture is the shift window used when WithAperture is not given.
const DefaultAperture = 0.01

// Options collects operator parameters.
type Options struct {
	Ceiling     int
	Aperture    float64
	LengthModel model.CircularLengthModel
}

// Option mutates Options.
type Option func(*Options)

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{Ceiling: math.MaxInt, Aperture: DefaultAperture, LengthModel: model.GeometricLength}
}

func buildOptions(opts []Option) Options {
	o := DefaultOptions()
	for _, fn := range opts {
		fn(&o)
	}

	return o
}

// WithCeiling sets the conversion count at and above which MergeSplit stops
// proposing splits and AddRemove stops proposing births.
func WithCeiling(n int) Option {
	if n < 1 {
		panic("operators: WithCeiling(n < 1)")
	}

	return func(o *Options) { o.Ceiling = n }
}

// WithAperture sets the RegionShift window as a fraction of the locus
// length, in (0, 1].
func WithAperture(a float64) Option {
	if !(a > 0 && a <= 1) {
		panic("operators: WithAperture outside (0, 1]")
	}

	return func(o *Options) { o.Aperture = a }
}

// WithCircularLengthModel selects the tract length law AddRemove uses on
// circular loci.
func WithCircularLengthModel(m model.CircularLengthModel) Option {
	return func(o *Options) { o.LengthModel = m }
}
