// SPDX-License-Identifier: MIT

// Package sim generates ancestral conversion graphs under the neutral
// conversion model: a heterochronous coalescent clonal frame, then a
// Poisson number of conversions placed by the model package kernels.
//
// Determinism: for a given *draw.Source state the output is fixed. Draw
// order is clonal frame first, then conversion count, then per conversion
// region followed by attachment.
package sim

import (
	"fmt"
	"math"
	"sort"

	"github.com/katalvlaran/argraph/acg"
	"github.com/katalvlaran/argraph/draw"
	"github.com/katalvlaran/argraph/model"
	"github.com/katalvlaran/argraph/popfunc"
	"github.com/katalvlaran/argraph/tree"
)

// Taxon is a sampled sequence: a leaf label and its sampling height
// (0 for contemporary samples, positive for ancient ones).
type Taxon struct {
	Label  string
	Height float64
}

// SimulateClonalFrame draws a clonal frame from the heterochronous
// coalescent under pop. Leaves keep the order of taxa; internal nodes are
// numbered in coalescence order.
//
// Algorithm: samples wait in a queue sorted by height. With k active
// lineages the intensity clock advances by Exp(k(k-1)/2); if the implied
// time passes the next sample, that sample joins and the clock resets to
// its intensity; otherwise two uniformly chosen lineages merge.
// Complexity: O(n^2) for n taxa (active list removals).
func SimulateClonalFrame(taxa []Taxon, pop popfunc.Function, rng *draw.Source) (*tree.Tree, error) {
	if len(taxa) == 0 {
		return nil, ErrNoTaxa
	}
	if pop == nil {
		return nil, ErrNoPopulation
	}
	if rng == nil {
		return nil, ErrNeedRandSource
	}

	b := tree.NewBuilder()
	type sample struct {
		h      tree.Handle
		height float64
	}
	pending := make([]sample, len(taxa))
	for i, tx := range taxa {
		pending[i] = sample{h: b.AddLeaf(tx.Label, tx.Height), height: tx.Height}
	}
	sort.SliceStable(pending, func(i, j int) bool { return pending[i].height < pending[j].height })
	if len(taxa) == 1 {
		return b.Build()
	}

	var active []tree.Handle
	tau := 0.0
	for {
		k := len(active)
		chi := 0.5 * float64(k*(k-1))
		if chi > 0 {
			tau += rng.Exponential(chi)
		} else {
			tau = math.Inf(1)
		}
		t := pop.InverseIntensity(tau)

		if len(pending) > 0 && t > pending[0].height {
			active = append(active, pending[0].h)
			tau = pop.Intensity(pending[0].height)
			pending = pending[1:]
			continue
		}
		if math.IsInf(t, 0) || math.IsNaN(t) {
			return nil, fmt.Errorf("SimulateClonalFrame: %d lineages at tau=%g: %w", k, tau, ErrDegenerateCoalescent)
		}

		i := rng.IntN(k)
		left := active[i]
		active = append(active[:i], active[i+1:]...)
		j := rng.IntN(k - 1)
		right := active[j]
		active = append(active[:j], active[j+1:]...)
		active = append(active, b.Join(left, right, t))

		if len(pending) == 0 && len(active) < 2 {
			break
		}
	}

	return b.Build()
}

// Simulate returns a conversion graph over loci. The clonal frame is either
// fixed (WithClonalFrame) or simulated from taxa under the population
// function. The number of conversions is Poisson with mean
// rho * clonalFrameLength * alpha, alpha being the region sampler's total
// start weight (Σ L_i, plus delta-1 per linear locus).
func Simulate(taxa []Taxon, loci []*acg.Locus, rng *draw.Source, opts ...Option) (*acg.Graph, error) {
	o := DefaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	if rng == nil {
		return nil, ErrNeedRandSource
	}
	if o.Rho < 0 || math.IsNaN(o.Rho) || math.IsInf(o.Rho, 0) {
		return nil, fmt.Errorf("Simulate(rho=%g): %w", o.Rho, ErrBadRate)
	}
	if o.Population == nil && (o.ClonalFrame == nil || o.Rho > 0) {
		return nil, ErrNoPopulation
	}

	var (
		cf  *tree.Tree
		err error
	)
	if o.ClonalFrame != nil {
		cf = o.ClonalFrame.Clone()
	} else if cf, err = SimulateClonalFrame(taxa, o.Population, rng); err != nil {
		return nil, err
	}

	var gopts []acg.Option
	if o.WholeLocus {
		gopts = append(gopts, acg.WithWholeLocusMode())
	}
	g, err := acg.New(cf, loci, gopts...)
	if err != nil {
		return nil, fmt.Errorf("Simulate: %w", err)
	}
	if o.Rho == 0 || g.TotalConvertibleSequenceLength() == 0 {
		return g, nil
	}

	sampler, err := model.NewRegionSampler(g, o.Delta, model.WithCircularLengthModel(o.LengthModel))
	if err != nil {
		return nil, fmt.Errorf("Simulate: %w", err)
	}
	count := rng.Poisson(o.Rho * g.ClonalFrameLength() * sampler.Alpha())
	for i := 0; i < count; i++ {
		conv := &acg.Conversion{}
		sampler.DrawAffectedRegion(conv, rng)
		model.Attach(g, o.Population, conv, rng)
		if err := g.AddConversion(conv); err != nil {
			return nil, fmt.Errorf("Simulate: conversion %d: %w", i, err)
		}
	}

	return g, nil
}
