// SPDX-License-Identifier: MIT
// Package: argraph/sim
//
// options.go: functional options and deterministic defaults.
//
// Defaults:
//   - rho         = 0      (no conversions unless requested)
//   - delta       = 100    mean tract length in sites
//   - population  = nil    (required unless WithClonalFrame is set)
//   - lengthModel = model.GeometricLength
//   - clonalFrame = nil    (simulate one)
//   - wholeLocus  = false

package sim

import (
	"github.com/katalvlaran/argraph/model"
	"github.com/katalvlaran/argraph/popfunc"
	"github.com/katalvlaran/argraph/tree"
)

// DefaultDelta is the mean tract length used when WithDelta is not given.
const DefaultDelta = 100.0

// Options collects simulation parameters.
type Options struct {
	Rho         float64
	Delta       float64
	Population  popfunc.Function
	LengthModel model.CircularLengthModel
	ClonalFrame *tree.Tree
	WholeLocus  bool
}

// Option mutates Options.
type Option func(*Options)

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{Delta: DefaultDelta, LengthModel: model.GeometricLength}
}

// WithRho sets the per-site, per-unit-branch-length conversion rate.
func WithRho(rho float64) Option { return func(o *Options) { o.Rho = rho } }

// WithDelta sets the mean tract length.
func WithDelta(delta float64) Option { return func(o *Options) { o.Delta = delta } }

// WithPopulation sets the demography used for the clonal frame and for
// conversion arrival times.
func WithPopulation(p popfunc.Function) Option { return func(o *Options) { o.Population = p } }

// WithCircularLengthModel selects the tract length law on circular loci.
func WithCircularLengthModel(m model.CircularLengthModel) Option {
	return func(o *Options) { o.LengthModel = m }
}

// WithClonalFrame fixes the clonal frame instead of simulating it. The tree
// is cloned; the caller keeps ownership of t.
func WithClonalFrame(t *tree.Tree) Option { return func(o *Options) { o.ClonalFrame = t } }

// WithWholeLocusMode restricts every conversion to a whole locus.
func WithWholeLocusMode() Option { return func(o *Options) { o.WholeLocus = true } }
