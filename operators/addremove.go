// SPDX-License-Identifier: MIT
//
// File: addremove.go
// Role: AddRemove, the birth/death move. A birth draws a conversion from
// the model kernels (region sampler, then clonal frame attachment); a death
// removes a uniformly chosen one. With T conversions before a birth,
//
//	log HR = log(1 - pAdd(T+1)) - log(T+1) - log pAdd(T) - log q(c)
//
// where q(c) is the product of region and attachment densities, and a
// death is the exact inverse.

package operators

import (
	"fmt"
	"math"

	"github.com/katalvlaran/argraph/acg"
	"github.com/katalvlaran/argraph/draw"
	"github.com/katalvlaran/argraph/model"
	"github.com/katalvlaran/argraph/popfunc"
)

// AddRemove proposes conversion births and deaths.
type AddRemove struct {
	g       *acg.Graph
	pop     popfunc.Function
	sampler *model.RegionSampler
	opts    Options
}

// NewAddRemove returns an AddRemove over g with tract length parameter
// delta. WithCeiling and WithCircularLengthModel are consulted.
func NewAddRemove(g *acg.Graph, pop popfunc.Function, delta float64, opts ...Option) (*AddRemove, error) {
	if g == nil {
		return nil, ErrNilGraph
	}
	if pop == nil {
		return nil, ErrNoPopulation
	}
	o := buildOptions(opts)
	s, err := model.NewRegionSampler(g, delta, model.WithCircularLengthModel(o.LengthModel))
	if err != nil {
		return nil, fmt.Errorf("NewAddRemove: %w", err)
	}

	return &AddRemove{g: g, pop: pop, sampler: s, opts: o}, nil
}

// Propose implements Operator.
func (op *AddRemove) Propose(rng *draw.Source) float64 {
	if rng.Float64() < moveProb(op.g.TotalConvCount(), op.opts.Ceiling) {
		return op.add(rng)
	}

	return op.remove(rng)
}

func (op *AddRemove) add(rng *draw.Source) float64 {
	total := op.g.TotalConvCount()
	c := &acg.Conversion{}
	logQ := op.sampler.DrawAffectedRegion(c, rng)
	logQ += model.Attach(op.g, op.pop, c, rng)
	if math.IsInf(logQ, -1) || math.IsNaN(logQ) {
		return reject
	}
	must("add", op.g.AddConversion(c))

	return birthLogHR(total, op.opts.Ceiling, logQ)
}

func (op *AddRemove) remove(rng *draw.Source) float64 {
	total := op.g.TotalConvCount()
	if total == 0 {
		return reject
	}
	c := op.g.ConversionAt(rng.IntN(total))
	logQ := op.sampler.AffectedRegionLogProb(c) + model.AttachmentLogDensity(op.g, op.pop, c)
	must("remove", op.g.DeleteConversion(c))

	return -birthLogHR(total-1, op.opts.Ceiling, logQ)
}

// birthLogHR is the log Hastings ratio of adding a conversion of log
// density logQ to a graph holding total conversions.
func birthLogHR(total, ceiling int, logQ float64) float64 {
	forward := math.Log(moveProb(total, ceiling)) + logQ
	reverse := math.Log(1-moveProb(total+1, ceiling)) - math.Log(float64(total+1))

	return reverse - forward
}
