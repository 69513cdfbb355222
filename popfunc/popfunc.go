// SPDX-License-Identifier: MIT
//
// Package popfunc provides effective population size trajectories N(t),
// expressed through the coalescent intensity
//
//	I(t) = ∫_0^t 1/N(s) ds
//
// so that a rate-1 exponential waiting time measured in intensity units maps
// back to calendar time with InverseIntensity. Time runs backwards from the
// present (t = 0) towards the past.
package popfunc

import (
	"errors"
	"fmt"
	"math"
)

// ErrBadParameter indicates a non-positive population size or a non-finite
// growth rate.
var ErrBadParameter = errors.New("popfunc: invalid parameter")

// Function is a population size trajectory.
type Function interface {
	// PopSize returns N(t).
	PopSize(t float64) float64

	// Intensity returns I(t).
	Intensity(t float64) float64

	// InverseIntensity returns the t with I(t) = x.
	InverseIntensity(x float64) float64

	// Integral returns I(t1) - I(t0).
	Integral(t0, t1 float64) float64
}

// Constant is N(t) = N.
type Constant struct {
	n float64
}

// NewConstant returns a constant-size trajectory.
func NewConstant(popSize float64) (*Constant, error) {
	if !(popSize > 0) || math.IsInf(popSize, 0) {
		return nil, fmt.Errorf("NewConstant(%g): %w", popSize, ErrBadParameter)
	}

	return &Constant{n: popSize}, nil
}

// PopSize returns N at every time.
func (c *Constant) PopSize(float64) float64 { return c.n }

// Intensity returns t / N.
func (c *Constant) Intensity(t float64) float64 { return t / c.n }

// InverseIntensity returns x * N.
func (c *Constant) InverseIntensity(x float64) float64 { return x * c.n }

// Integral returns (t1 - t0) / N.
func (c *Constant) Integral(t0, t1 float64) float64 { return (t1 - t0) / c.n }

// Exponential is N(t) = N0 * exp(-r t): a population that has been growing
// at rate r towards the present. r == 0 degenerates to Constant.
type Exponential struct {
	n0 float64
	r  float64
}

// NewExponential returns an exponential-growth trajectory.
func NewExponential(popSize, growthRate float64) (*Exponential, error) {
	if !(popSize > 0) || math.IsInf(popSize, 0) || math.IsNaN(growthRate) || math.IsInf(growthRate, 0) {
		return nil, fmt.Errorf("NewExponential(%g, %g): %w", popSize, growthRate, ErrBadParameter)
	}

	return &Exponential{n0: popSize, r: growthRate}, nil
}

// PopSize returns N0 * exp(-r t).
func (e *Exponential) PopSize(t float64) float64 { return e.n0 * math.Exp(-e.r*t) }

// Intensity returns (exp(r t) - 1) / (r N0).
func (e *Exponential) Intensity(t float64) float64 {
	if e.r == 0 {
		return t / e.n0
	}

	return math.Expm1(e.r*t) / (e.r * e.n0)
}

// InverseIntensity returns log(1 + x r N0) / r. For r < 0 the intensity is
// bounded above; budgets beyond the bound map to +Inf.
func (e *Exponential) InverseIntensity(x float64) float64 {
	if e.r == 0 {
		return x * e.n0
	}
	arg := x * e.r * e.n0
	if arg <= -1 {
		return math.Inf(1)
	}

	return math.Log1p(arg) / e.r
}

// Integral returns I(t1) - I(t0).
func (e *Exponential) Integral(t0, t1 float64) float64 {
	return e.Intensity(t1) - e.Intensity(t0)
}
