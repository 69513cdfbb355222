// SPDX-License-Identifier: MIT
// Package: argraph/sim
//
// errors.go: sentinel errors for the simulator.
//
// Error policy:
//   - Only sentinel variables are exposed; callers branch with errors.Is.
//   - Implementations attach context with %w at the failing call.
//   - Simulation never panics on bad input; every precondition is one of these.

package sim

import "errors"

// ErrNoTaxa indicates an empty taxon list and no fixed clonal frame.
// Usage: if errors.Is(err, ErrNoTaxa) { /* supply taxa or WithClonalFrame */ }.
var ErrNoTaxa = errors.New("sim: no taxa")

// ErrBadRate indicates a negative or non-finite conversion rate rho.
var ErrBadRate = errors.New("sim: invalid conversion rate")

// ErrNoPopulation indicates a clonal frame simulation without a population
// function.
var ErrNoPopulation = errors.New("sim: population function is required")

// ErrNeedRandSource indicates a nil *draw.Source.
var ErrNeedRandSource = errors.New("sim: random source is required")

// ErrDegenerateCoalescent indicates a population trajectory whose intensity
// is bounded, so pending lineages would coalesce at infinite height.
// Typical origin: exponential decline (negative growth) with a small budget.
var ErrDegenerateCoalescent = errors.New("sim: coalescence time diverged")
