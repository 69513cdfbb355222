// SPDX-License-Identifier: MIT
//
// Package draw centralizes deterministic random generation for simulation
// and proposal code.
//
// Goals:
//   - Determinism: same seed gives identical draws on every platform.
//   - Encapsulation: one factory; no time-based sources anywhere.
//   - Independence: Derive creates decorrelated child streams for replicates.
//
// Concurrency:
//   - A Source is NOT goroutine-safe. Give each worker its own stream via Derive.
package draw

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// DefaultSeed is used when callers pass seed == 0.
const DefaultSeed uint64 = 1

// pcgStream is the fixed PCG increment selector; only the seed varies.
const pcgStream uint64 = 0xda3e39cb94b95bdb

// Source is a seeded random stream with the distributions the samplers need.
type Source struct {
	seed uint64
	src  rand.Source
	rng  *rand.Rand
}

// New returns a deterministic Source. Policy: seed == 0 means DefaultSeed.
// Complexity: O(1).
func New(seed uint64) *Source {
	if seed == 0 {
		seed = DefaultSeed
	}
	src := rand.NewPCG(seed, pcgStream)

	return &Source{seed: seed, src: src, rng: rand.New(src)}
}

// Seed returns the effective seed of s.
func (s *Source) Seed() uint64 { return s.seed }

// deriveSeed mixes a parent value and a stream identifier (SplitMix64 finalizer).
func deriveSeed(parent, stream uint64) uint64 {
	x := parent ^ (stream + 0x9e3779b97f4a7c15)
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	x ^= x >> 31

	return x
}

// Derive returns an independent child stream. It consumes one value from s,
// so deriving the same stream id twice still yields different children.
// Call during setup, not in hot loops.
func (s *Source) Derive(stream uint64) *Source {
	return New(deriveSeed(s.rng.Uint64(), stream))
}

// Float64 returns a uniform draw in [0, 1).
func (s *Source) Float64() float64 { return s.rng.Float64() }

// Uniform returns a uniform draw in [lo, hi).
func (s *Source) Uniform(lo, hi float64) float64 { return lo + (hi-lo)*s.rng.Float64() }

// IntN returns a uniform integer in [0, n). Panics if n <= 0.
func (s *Source) IntN(n int) int { return s.rng.IntN(n) }

// Bool returns a fair coin flip.
func (s *Source) Bool() bool { return s.rng.Uint64()&1 == 1 }

// Exponential returns an exponential draw with the given rate.
func (s *Source) Exponential(rate float64) float64 {
	return distuv.Exponential{Rate: rate, Src: s.src}.Rand()
}

// Geometric returns the number of failures before the first success of a
// Bernoulli(p) sequence. p >= 1 always returns 0.
func (s *Source) Geometric(p float64) int {
	if p >= 1 {
		return 0
	}
	u := 1 - s.rng.Float64() // (0, 1]

	return int(math.Floor(math.Log(u) / math.Log1p(-p)))
}

// Poisson returns a Poisson(mean) draw; mean <= 0 returns 0.
func (s *Source) Poisson(mean float64) int {
	if mean <= 0 {
		return 0
	}

	return int(distuv.Poisson{Lambda: mean, Src: s.src}.Rand())
}

// Beta returns a Beta(a, b) draw.
func (s *Source) Beta(a, b float64) float64 {
	return distuv.Beta{Alpha: a, Beta: b, Src: s.src}.Rand()
}

// Binomial returns a Binomial(n, p) draw; n <= 0 returns 0.
func (s *Source) Binomial(n int, p float64) int {
	if n <= 0 {
		return 0
	}

	return int(distuv.Binomial{N: float64(n), P: p, Src: s.src}.Rand())
}

// BetaBinomial returns a draw from the Beta-Binomial(n, a, b) compound.
func (s *Source) BetaBinomial(n int, a, b float64) int {
	return s.Binomial(n, s.Beta(a, b))
}
