package operators_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/argraph/acg"
	"github.com/katalvlaran/argraph/draw"
	"github.com/katalvlaran/argraph/model"
	"github.com/katalvlaran/argraph/operators"
	"github.com/katalvlaran/argraph/popfunc"
	"github.com/katalvlaran/argraph/sim"
)

func constant(t *testing.T) popfunc.Function {
	t.Helper()
	p, err := popfunc.NewConstant(1)
	require.NoError(t, err)

	return p
}

func taxa(n int) []sim.Taxon {
	out := make([]sim.Taxon, n)
	for i := range out {
		out[i] = sim.Taxon{Label: string(rune('a' + i))}
	}

	return out
}

// simulated returns a graph with a few dozen conversions on one linear and
// one circular locus.
func simulated(t *testing.T, seed uint64, opts ...sim.Option) (*acg.Graph, popfunc.Function) {
	t.Helper()
	lin, err := acg.NewLocus("lin", 400)
	require.NoError(t, err)
	circ, err := acg.NewLocus("circ", 201, acg.WithCircular())
	require.NoError(t, err)
	pop := constant(t)
	opts = append([]sim.Option{sim.WithPopulation(pop), sim.WithRho(0.01), sim.WithDelta(30)}, opts...)
	g, err := sim.Simulate(taxa(6), []*acg.Locus{lin, circ}, draw.New(seed), opts...)
	require.NoError(t, err)
	require.Positive(t, g.TotalConvCount())

	return g, pop
}

// drive applies op n times, keeping every finite proposal and restoring
// after every reject. It checks that rejects need nothing but Restore and
// that kept states are valid.
func drive(t *testing.T, g *acg.Graph, op operators.Operator, rng *draw.Source, n int) (kept int) {
	t.Helper()
	for i := 0; i < n; i++ {
		snap := g.Save()
		hr := op.Propose(rng)
		require.False(t, math.IsNaN(hr), "step %d", i)
		if math.IsInf(hr, -1) {
			g.Restore(snap)
			continue
		}
		require.False(t, g.IsInvalid(), "step %d", i)
		kept++
	}

	return kept
}

func TestConstructors(t *testing.T) {
	_, err := operators.NewMergeSplit(nil)
	assert.ErrorIs(t, err, operators.ErrNilGraph)
	_, err = operators.NewRegionShift(nil)
	assert.ErrorIs(t, err, operators.ErrNilGraph)
	_, err = operators.NewAddRemove(nil, constant(t), 10)
	assert.ErrorIs(t, err, operators.ErrNilGraph)

	g, _ := simulated(t, 1)
	_, err = operators.NewAddRemove(g, nil, 10)
	assert.ErrorIs(t, err, operators.ErrNoPopulation)
	_, err = operators.NewAddRemove(g, constant(t), 0.5)
	assert.ErrorIs(t, err, model.ErrBadDelta)

	assert.Panics(t, func() { operators.WithAperture(0) })
	assert.Panics(t, func() { operators.WithCeiling(0) })
}

func TestMergeSplit_KeepsGraphValid(t *testing.T) {
	g, _ := simulated(t, 3)
	op, err := operators.NewMergeSplit(g, operators.WithCeiling(60))
	require.NoError(t, err)
	kept := drive(t, g, op, draw.New(4), 3000)
	assert.Positive(t, kept)
	assert.LessOrEqual(t, g.TotalConvCount(), 60)
}

func TestRegionShift_KeepsGraphValid(t *testing.T) {
	g, _ := simulated(t, 5)
	op, err := operators.NewRegionShift(g, operators.WithAperture(0.2))
	require.NoError(t, err)
	before := g.TotalConvCount()
	rng := draw.New(6)
	for i := 0; i < 2000; i++ {
		snap := g.Save()
		hr := op.Propose(rng)
		if math.IsInf(hr, -1) {
			g.Restore(snap)
			continue
		}
		require.Equal(t, 0.0, hr)
		require.False(t, g.IsInvalid())
	}
	assert.Equal(t, before, g.TotalConvCount())
}

func TestRegionShift_PreservesSiteCount(t *testing.T) {
	l, err := acg.NewLocus("circ", 50, acg.WithCircular())
	require.NoError(t, err)
	g, err := sim.Simulate(taxa(4), []*acg.Locus{l}, draw.New(9),
		sim.WithPopulation(constant(t)), sim.WithRho(0.05), sim.WithDelta(5))
	require.NoError(t, err)
	require.Positive(t, g.TotalConvCount())
	sizes := make(map[int]int)
	for _, c := range g.AllConversions() {
		sizes[c.SiteCount()]++
	}

	op, err := operators.NewRegionShift(g, operators.WithAperture(1))
	require.NoError(t, err)
	rng := draw.New(10)
	for i := 0; i < 200; i++ {
		require.Equal(t, 0.0, op.Propose(rng), "circular shifts never reject")
	}
	after := make(map[int]int)
	for _, c := range g.AllConversions() {
		after[c.SiteCount()]++
	}
	assert.Equal(t, sizes, after)
}

func TestOperators_RejectInWholeLocusMode(t *testing.T) {
	g, _ := simulated(t, 7, sim.WithWholeLocusMode())
	before := g.Copy()
	ms, err := operators.NewMergeSplit(g)
	require.NoError(t, err)
	rs, err := operators.NewRegionShift(g)
	require.NoError(t, err)
	rng := draw.New(1)
	for i := 0; i < 20; i++ {
		assert.True(t, math.IsInf(ms.Propose(rng), -1))
		assert.True(t, math.IsInf(rs.Propose(rng), -1))
	}
	assert.True(t, g.Equal(before, 0))
}

func TestRegionShift_RejectsWithoutConversions(t *testing.T) {
	l, err := acg.NewLocus("x", 100)
	require.NoError(t, err)
	g, err := sim.Simulate(taxa(3), []*acg.Locus{l}, draw.New(2), sim.WithPopulation(constant(t)))
	require.NoError(t, err)
	op, err := operators.NewRegionShift(g)
	require.NoError(t, err)
	assert.True(t, math.IsInf(op.Propose(draw.New(1)), -1))
}

// logTarget is the log density of a Poisson(mu) conversion process whose
// conversions follow the model kernels.
func logTarget(g *acg.Graph, s *model.RegionSampler, pop popfunc.Function, mu float64) float64 {
	lp := 0.0
	for _, c := range g.AllConversions() {
		lp += math.Log(mu) + s.AffectedRegionLogProb(c) + model.AttachmentLogDensity(g, pop, c)
	}

	return lp
}

func TestAddRemove_PoissonStationary(t *testing.T) {
	l, err := acg.NewLocus("x", 50)
	require.NoError(t, err)
	pop := constant(t)
	g, err := sim.Simulate(taxa(5), []*acg.Locus{l}, draw.New(11), sim.WithPopulation(pop))
	require.NoError(t, err)
	op, err := operators.NewAddRemove(g, pop, 5)
	require.NoError(t, err)
	s, err := model.NewRegionSampler(g, 5)
	require.NoError(t, err)

	const (
		mu    = 3.0
		steps = 20000
	)
	rng := draw.New(12)
	cur := logTarget(g, s, pop, mu)
	sum := 0
	for i := 0; i < steps; i++ {
		snap := g.Save()
		hr := op.Propose(rng)
		next := logTarget(g, s, pop, mu)
		if math.IsInf(hr, -1) || math.Log(rng.Float64()) >= hr+next-cur {
			g.Restore(snap)
		} else {
			cur = next
			require.False(t, g.IsInvalid())
		}
		sum += g.TotalConvCount()
	}
	assert.InDelta(t, mu, float64(sum)/steps, 0.25)
}

func BenchmarkMergeSplit(b *testing.B) {
	lin, _ := acg.NewLocus("lin", 2000)
	pop, _ := popfunc.NewConstant(1)
	g, _ := sim.Simulate(taxa(10), []*acg.Locus{lin}, draw.New(1),
		sim.WithPopulation(pop), sim.WithRho(0.005), sim.WithDelta(100))
	op, _ := operators.NewMergeSplit(g)
	rng := draw.New(2)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		snap := g.Save()
		op.Propose(rng)
		g.Restore(snap)
	}
}
