package draw_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/katalvlaran/argraph/draw"
)

func TestNew_ZeroSeedPolicy(t *testing.T) {
	a, b := draw.New(0), draw.New(draw.DefaultSeed)
	assert.Equal(t, draw.DefaultSeed, a.Seed())
	for i := 0; i < 16; i++ {
		assert.Equal(t, a.Float64(), b.Float64())
	}
}

func TestDerive_Deterministic(t *testing.T) {
	p1, p2 := draw.New(42), draw.New(42)
	c1, c2 := p1.Derive(7), p2.Derive(7)
	assert.Equal(t, c1.Seed(), c2.Seed())

	// reusing a stream id on the same parent still decorrelates
	c3 := p1.Derive(7)
	assert.NotEqual(t, c1.Seed(), c3.Seed())
}

func TestGeometric_Mean(t *testing.T) {
	s := draw.New(3)
	const p, n = 0.25, 20000
	sum := 0
	for i := 0; i < n; i++ {
		g := s.Geometric(p)
		assert.GreaterOrEqual(t, g, 0)
		sum += g
	}
	// E = (1-p)/p = 3
	assert.InDelta(t, 3.0, float64(sum)/n, 0.15)
	assert.Equal(t, 0, s.Geometric(1))
}

func TestExponential_Mean(t *testing.T) {
	s := draw.New(5)
	const rate, n = 2.0, 20000
	sum := 0.0
	for i := 0; i < n; i++ {
		x := s.Exponential(rate)
		assert.GreaterOrEqual(t, x, 0.0)
		sum += x
	}
	assert.InDelta(t, 1/rate, sum/n, 0.02)
}

func TestPoisson_Edges(t *testing.T) {
	s := draw.New(5)
	assert.Equal(t, 0, s.Poisson(0))
	assert.Equal(t, 0, s.Binomial(0, 0.5))

	sum := 0
	for i := 0; i < 5000; i++ {
		sum += s.Poisson(4)
	}
	assert.InDelta(t, 4.0, float64(sum)/5000, 0.15)
}

func TestBetaBinomial_Range(t *testing.T) {
	s := draw.New(9)
	for i := 0; i < 1000; i++ {
		k := s.BetaBinomial(10, 2, 3)
		assert.True(t, k >= 0 && k <= 10)
	}
}
