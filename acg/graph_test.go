package acg_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/argraph/acg"
	"github.com/katalvlaran/argraph/tree"
)

// quartet returns ((A,B):1,(C,D@0.5):1.5):3 with leaves 0..3, internal
// nodes 4 (AB), 5 (CD) and root 6.
func quartet(t *testing.T) *tree.Tree {
	t.Helper()
	b := tree.NewBuilder()
	a := b.AddLeaf("A", 0)
	bb := b.AddLeaf("B", 0)
	c := b.AddLeaf("C", 0)
	d := b.AddLeaf("D", 0.5)
	ab := b.Join(a, bb, 1)
	cd := b.Join(c, d, 1.5)
	b.Join(ab, cd, 3)
	tr, err := b.Build()
	require.NoError(t, err)

	return tr
}

func mustLocus(t *testing.T, id string, n int, opts ...acg.LocusOption) *acg.Locus {
	t.Helper()
	l, err := acg.NewLocus(id, n, opts...)
	require.NoError(t, err)

	return l
}

func newGraph(t *testing.T, loci ...*acg.Locus) *acg.Graph {
	t.Helper()
	g, err := acg.New(quartet(t), loci)
	require.NoError(t, err)

	return g
}

// conv attaches a span from leaf A's edge to leaf C's edge.
func conv(l *acg.Locus, start, end int, h1 float64) *acg.Conversion {
	return &acg.Conversion{Locus: l, StartSite: start, EndSite: end, Node1: 0, Height1: h1, Node2: 2, Height2: 1.2}
}

func TestNew_Preconditions(t *testing.T) {
	_, err := acg.New(nil, nil)
	assert.ErrorIs(t, err, acg.ErrNilTree)
	_, err = acg.New(quartet(t), nil)
	assert.ErrorIs(t, err, acg.ErrNoLoci)
	_, err = acg.New(quartet(t), []*acg.Locus{mustLocus(t, "x", 5), mustLocus(t, "x", 7)})
	assert.ErrorIs(t, err, acg.ErrDuplicateLocus)
	_, err = acg.NewLocus("", 3)
	assert.ErrorIs(t, err, acg.ErrBadLocus)
}

func TestAddDelete_Preconditions(t *testing.T) {
	lin := mustLocus(t, "lin", 10)
	frozen := mustLocus(t, "frozen", 10, acg.WithoutConversions())
	g := newGraph(t, lin, frozen)

	assert.ErrorIs(t, g.AddConversion(nil), acg.ErrNilConversion)
	assert.ErrorIs(t, g.AddConversion(conv(frozen, 0, 3, 0.5)), acg.ErrNotConvertible)
	assert.ErrorIs(t, g.AddConversion(conv(lin, 8, 2, 0.5)), acg.ErrBadSpan)
	assert.ErrorIs(t, g.AddConversion(conv(lin, 0, 10, 0.5)), acg.ErrBadSpan)
	assert.ErrorIs(t, g.AddConversion(conv(mustLocus(t, "other", 10), 0, 3, 0.5)), acg.ErrUnknownLocus)

	c := conv(lin, 2, 4, 0.5)
	require.NoError(t, g.AddConversion(c))
	assert.ErrorIs(t, g.AddConversion(c), acg.ErrDuplicateConversion)
	require.NoError(t, g.DeleteConversion(c))
	assert.ErrorIs(t, g.DeleteConversion(c), acg.ErrConversionAbsent)
	assert.Equal(t, 0, g.TotalConvCount())
}

func TestConversionOrderAndIndex(t *testing.T) {
	b := mustLocus(t, "b", 50)
	a := mustLocus(t, "a", 50)
	g := newGraph(t, b, a)
	assert.Equal(t, []*acg.Locus{a, b}, g.ConvertibleLoci())
	assert.Equal(t, 100, g.TotalConvertibleSequenceLength())

	b1 := conv(b, 30, 35, 0.5)
	b0 := conv(b, 5, 9, 0.5)
	a0 := conv(a, 10, 12, 0.5)
	for _, c := range []*acg.Conversion{b1, b0, a0} {
		require.NoError(t, g.AddConversion(c))
	}
	assert.Equal(t, []*acg.Conversion{b0, b1}, g.Conversions(b))
	assert.Equal(t, 0, g.ConversionIndex(a0))
	assert.Equal(t, 1, g.ConversionIndex(b0))
	assert.Equal(t, 2, g.ConversionIndex(b1))
	assert.Equal(t, -1, g.ConversionIndex(conv(a, 1, 2, 0.5)))
	for i := 0; i < 3; i++ {
		assert.Equal(t, i, g.ConversionIndex(g.ConversionAt(i)))
	}
	assert.Nil(t, g.ConversionAt(3))

	require.NoError(t, g.SetConversionSpan(b1, 0, 2))
	assert.Equal(t, []*acg.Conversion{b1, b0}, g.Conversions(b))

	l, err := g.LocusByID("a")
	require.NoError(t, err)
	assert.Same(t, a, l)
	_, err = g.LocusByID("zz")
	assert.ErrorIs(t, err, acg.ErrUnknownLocus)
}

func TestClonalFrameLength(t *testing.T) {
	g := newGraph(t, mustLocus(t, "x", 10))
	// A 1 + B 1 + C 1.5 + D 1 + AB 2 + CD 1.5
	assert.InDelta(t, 8.0, g.ClonalFrameLength(), 1e-12)
}

func TestIsInvalid(t *testing.T) {
	l := mustLocus(t, "x", 10)
	g := newGraph(t, l)
	c := conv(l, 0, 3, 0.5)
	require.NoError(t, g.AddConversion(c))
	assert.False(t, g.IsInvalid())

	// lower the AB node below the departure point
	require.NoError(t, g.Tree().SetHeight(4, 0.4))
	assert.True(t, g.IsInvalid())
	assert.ErrorIs(t, g.CheckConversion(c), acg.ErrInvalidConversion)
	require.NoError(t, g.Tree().SetHeight(4, 1))

	rootDeparture := &acg.Conversion{Locus: l, StartSite: 0, EndSite: 1, Node1: 6, Height1: 4, Node2: 6, Height2: 5}
	assert.ErrorIs(t, g.CheckConversion(rootDeparture), acg.ErrInvalidConversion)

	// arrival on the root edge is unbounded above
	high := &acg.Conversion{Locus: l, StartSite: 0, EndSite: 1, Node1: 4, Height1: 2, Node2: 6, Height2: 50}
	assert.NoError(t, g.CheckConversion(high))

	inverted := &acg.Conversion{Locus: l, StartSite: 0, EndSite: 1, Node1: 2, Height1: 1.2, Node2: 0, Height2: 0.5}
	assert.ErrorIs(t, g.CheckConversion(inverted), acg.ErrInvalidConversion)
}

func TestCFEvents(t *testing.T) {
	g := newGraph(t, mustLocus(t, "x", 10))
	ev := g.CFEvents()
	require.Len(t, ev, 7)
	want := []struct {
		h    float64
		k    int
		kind acg.EventKind
	}{
		{0, 1, acg.Sample}, {0, 2, acg.Sample}, {0, 3, acg.Sample},
		{0.5, 4, acg.Sample}, {1, 3, acg.Coalescence}, {1.5, 2, acg.Coalescence},
		{3, 1, acg.Coalescence},
	}
	for i, w := range want {
		assert.Equal(t, w.h, ev[i].Height, "event %d", i)
		assert.Equal(t, w.k, ev[i].LineageCount, "event %d", i)
		assert.Equal(t, w.kind, ev[i].Kind, "event %d", i)
	}
	assert.Equal(t, 6, ev[6].Node)

	// edits to the clonal frame invalidate the cached list
	require.NoError(t, g.Tree().SetHeight(6, 4))
	assert.Equal(t, 4.0, g.CFEvents()[6].Height)
}

func TestSaveRestore(t *testing.T) {
	l := mustLocus(t, "x", 20, acg.WithCircular())
	g := newGraph(t, l)
	require.NoError(t, g.AddConversion(conv(l, 15, 3, 0.5)))
	require.NoError(t, g.AddConversion(conv(l, 4, 9, 0.7)))
	before := g.Copy()
	snap := g.Save()
	regionsBefore := g.RegionCount(l)

	require.NoError(t, g.DeleteConversion(g.ConversionAt(0)))
	require.NoError(t, g.SetConversionSpan(g.ConversionAt(0), 0, 19))
	require.NoError(t, g.Tree().SetHeight(6, 7))
	assert.False(t, g.Equal(before, 1e-12))

	g.Restore(snap)
	assert.True(t, g.Equal(before, 0))
	assert.Equal(t, regionsBefore, g.RegionCount(l))
	assert.False(t, g.IsInvalid())

	// the snapshot survives a restore
	require.NoError(t, g.DeleteConversion(g.ConversionAt(1)))
	g.Restore(snap)
	assert.True(t, g.Equal(before, 0))
}

func TestCopy_Independent(t *testing.T) {
	l := mustLocus(t, "x", 20)
	g := newGraph(t, l)
	require.NoError(t, g.AddConversion(conv(l, 1, 5, 0.5)))
	cp := g.Copy()
	require.NoError(t, cp.DeleteConversion(cp.ConversionAt(0)))
	require.NoError(t, cp.Tree().SetHeight(6, 9))
	assert.Equal(t, 1, g.TotalConvCount())
	assert.Equal(t, 3.0, g.Tree().Height(6))
	assert.Equal(t, 9.0, cp.CFEvents()[6].Height)
	assert.Equal(t, 3.0, g.CFEvents()[6].Height)
}

func TestCheckConversion_EdgeBounds(t *testing.T) {
	l := mustLocus(t, "x", 10)
	g := newGraph(t, l)

	// A's edge spans [0, 1]: departures must lie strictly inside it
	for _, h1 := range []float64{0, 1} {
		c := &acg.Conversion{Locus: l, EndSite: 1, Node1: 0, Height1: h1, Node2: 6, Height2: 4}
		assert.ErrorIs(t, g.CheckConversion(c), acg.ErrInvalidConversion, "h1=%g", h1)
	}

	// arrivals may sit on either end of D's edge [0.5, 1.5]
	for _, h2 := range []float64{0.5, 1.5} {
		c := &acg.Conversion{Locus: l, EndSite: 1, Node1: 0, Height1: 0.5, Node2: 3, Height2: h2}
		assert.NoError(t, g.CheckConversion(c), "h2=%g", h2)
	}
}

func TestStartEditing_InPlaceEdit(t *testing.T) {
	l := mustLocus(t, "x", 10)
	g := newGraph(t, l)
	// B's sites 0..9 leave at 0.5 and reach D's edge; then A's 0..4 leave.
	drain := &acg.Conversion{Locus: l, EndSite: 9, Node1: 1, Height1: 0.5, Node2: 3, Height2: 1}
	c := &acg.Conversion{Locus: l, EndSite: 4, Node1: 0, Height1: 0.8, Node2: 2, Height2: 1.2}
	require.NoError(t, g.AddConversion(drain))
	require.NoError(t, g.AddConversion(c))
	require.Equal(t, 5, g.Affected().Count(c))

	// move the conversion onto the drained lineage in place
	c.Node1, c.Height1 = 1, 0.7
	g.StartEditing()
	assert.Equal(t, 0, g.Affected().Count(c))
	assert.Equal(t, 1, g.UselessConvCount())
}
