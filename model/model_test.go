package model_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/argraph/acg"
	"github.com/katalvlaran/argraph/draw"
	"github.com/katalvlaran/argraph/model"
	"github.com/katalvlaran/argraph/popfunc"
	"github.com/katalvlaran/argraph/tree"
)

// quartet: ((A,B):1,(C,D@0.5):1.5):3, total branch length 8.
func quartet(t *testing.T) *tree.Tree {
	t.Helper()
	b := tree.NewBuilder()
	a := b.AddLeaf("A", 0)
	bb := b.AddLeaf("B", 0)
	c := b.AddLeaf("C", 0)
	d := b.AddLeaf("D", 0.5)
	b.Join(b.Join(a, bb, 1), b.Join(c, d, 1.5), 3)
	tr, err := b.Build()
	require.NoError(t, err)

	return tr
}

func graph(t *testing.T, opts []acg.Option, loci ...*acg.Locus) *acg.Graph {
	t.Helper()
	g, err := acg.New(quartet(t), loci, opts...)
	require.NoError(t, err)

	return g
}

func locus(t *testing.T, id string, n int, opts ...acg.LocusOption) *acg.Locus {
	t.Helper()
	l, err := acg.NewLocus(id, n, opts...)
	require.NoError(t, err)

	return l
}

func constant(t *testing.T, n float64) popfunc.Function {
	t.Helper()
	p, err := popfunc.NewConstant(n)
	require.NoError(t, err)

	return p
}

func TestAttach_ProducesValidConversions(t *testing.T) {
	l := locus(t, "x", 100)
	g := graph(t, nil, l)
	pop, err := popfunc.NewExponential(1.5, 0.3)
	require.NoError(t, err)
	rng := draw.New(21)

	counts := make(map[int]int)
	const n = 20000
	for i := 0; i < n; i++ {
		c := &acg.Conversion{Locus: l, StartSite: 0, EndSite: 3}
		logP := model.Attach(g, pop, c, rng)
		require.NoError(t, g.CheckConversion(c))
		require.False(t, math.IsInf(logP, 0) || math.IsNaN(logP))
		assert.InDelta(t, model.AttachmentLogDensity(g, pop, c), logP, 1e-12)
		counts[c.Node1]++
	}
	// departure edges are hit in proportion to their length
	lengths := map[int]float64{0: 1, 1: 1, 2: 1.5, 3: 1, 4: 2, 5: 1.5}
	for node, length := range lengths {
		assert.InDelta(t, length/8, float64(counts[node])/n, 0.015, "node %d", node)
	}
	assert.Zero(t, counts[6])
}

func TestAttachmentLogDensity_Closed(t *testing.T) {
	l := locus(t, "x", 100)
	g := graph(t, nil, l)
	pop := constant(t, 1)
	c := &acg.Conversion{Locus: l, EndSite: 3, Node1: 0, Height1: 0.2, Node2: 4, Height2: 2}
	// lineages: 3 on [0.2,0.5), 4 on [0.5,1), 3 on [1,1.5), 2 on [1.5,2)
	want := -math.Log(8) - (3*0.3 + 4*0.5 + 3*0.5 + 2*0.5)
	assert.InDelta(t, want, model.AttachmentLogDensity(g, pop, c), 1e-12)

	// above the root a single lineage remains
	c = &acg.Conversion{Locus: l, EndSite: 3, Node1: 4, Height1: 2.5, Node2: 6, Height2: 4}
	want = -math.Log(8) - (2*0.5 + 1*1)
	assert.InDelta(t, want, model.AttachmentLogDensity(g, pop, c), 1e-12)

	c.Height2 = 1 // below departure
	assert.True(t, math.IsInf(model.AttachmentLogDensity(g, pop, c), -1))
}

func TestRegionSampler_Errors(t *testing.T) {
	g := graph(t, nil, locus(t, "x", 10, acg.WithoutConversions()))
	_, err := model.NewRegionSampler(g, 2)
	assert.ErrorIs(t, err, model.ErrNoConvertibleLoci)

	g = graph(t, nil, locus(t, "x", 10))
	_, err = model.NewRegionSampler(g, 0.5)
	assert.ErrorIs(t, err, model.ErrBadDelta)

	g = graph(t, nil, locus(t, "x", 9, acg.WithCircular()))
	_, err = model.NewRegionSampler(g, 4, model.WithCircularLengthModel(model.BetaBinomialLength))
	assert.ErrorIs(t, err, model.ErrBadDelta)
}

// totalProb sums the region probability over every span of every locus.
func totalProb(s *model.RegionSampler, loci ...*acg.Locus) float64 {
	sum := 0.0
	for _, l := range loci {
		n := l.SiteCount()
		for a := 0; a < n; a++ {
			for b := 0; b < n; b++ {
				c := &acg.Conversion{Locus: l, StartSite: a, EndSite: b}
				sum += math.Exp(s.AffectedRegionLogProb(c))
			}
		}
	}

	return sum
}

func TestAffectedRegionLogProb_Normalised(t *testing.T) {
	cases := []struct {
		name  string
		mode  model.CircularLengthModel
		delta float64
		whole bool
	}{
		{"geometric", model.GeometricLength, 2.5, false},
		{"betaBinomial", model.BetaBinomialLength, 2.5, false},
		{"unit-delta", model.GeometricLength, 1, false},
		{"whole-locus", model.GeometricLength, 3, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			lin := locus(t, "lin", 7)
			circ := locus(t, "circ", 11, acg.WithCircular())
			var opts []acg.Option
			if tc.whole {
				opts = append(opts, acg.WithWholeLocusMode())
			}
			g := graph(t, opts, lin, circ)
			s, err := model.NewRegionSampler(g, tc.delta, model.WithCircularLengthModel(tc.mode))
			require.NoError(t, err)
			assert.InDelta(t, 1.0, totalProb(s, lin, circ), 1e-9)
		})
	}
}

func TestDrawAffectedRegion_MatchesLogProb(t *testing.T) {
	lin := locus(t, "lin", 40)
	circ := locus(t, "circ", 31, acg.WithCircular())
	g := graph(t, nil, lin, circ)
	s, err := model.NewRegionSampler(g, 4, model.WithCircularLengthModel(model.BetaBinomialLength))
	require.NoError(t, err)
	rng := draw.New(8)

	zeroStarts, linear := 0, 0
	for i := 0; i < 5000; i++ {
		c := &acg.Conversion{}
		logP := s.DrawAffectedRegion(c, rng)
		require.False(t, math.IsInf(logP, -1), "%v", c)
		assert.Equal(t, s.AffectedRegionLogProb(c), logP)
		if c.Locus == lin {
			linear++
			assert.False(t, c.Wraps())
			if c.StartSite == 0 {
				zeroStarts++
			}
		} else {
			assert.LessOrEqual(t, c.SiteCount()-1, 15)
		}
	}
	alpha := s.Alpha()
	assert.InDelta(t, (40+4-1)/alpha, float64(linear)/5000, 0.03)
	assert.InDelta(t, 4/(40+4-1.0), float64(zeroStarts)/float64(linear), 0.03)
}

func TestChooseLocus_WholeLocusMode(t *testing.T) {
	a := locus(t, "a", 30)
	b := locus(t, "b", 10)
	g := graph(t, []acg.Option{acg.WithWholeLocusMode()}, a, b)
	s, err := model.NewRegionSampler(g, 5)
	require.NoError(t, err)

	c := &acg.Conversion{}
	logP := s.DrawAffectedRegion(c, draw.New(1))
	assert.Equal(t, 0, c.StartSite)
	assert.Equal(t, c.Locus.SiteCount()-1, c.EndSite)
	assert.InDelta(t, math.Log(float64(c.Locus.SiteCount())/40), logP, 1e-12)

	partial := &acg.Conversion{Locus: a, StartSite: 1, EndSite: 29}
	assert.True(t, math.IsInf(s.AffectedRegionLogProb(partial), -1))
}
