// SPDX-License-Identifier: MIT
//
// File: mergesplit.go
// Role: MergeSplit, the dimension-changing move between one conversion and
// two conversions on the same departure/arrival edge pair.
//
// Split of c = [s, e] (n sites) into a kept conversion and a sibling:
//   - cut points m1, m2 uniform on [s, e];
//   - starts (s, m1) or (m1, s) by a fair coin, ends (e, m2) or (m2, e);
//   - sibling heights: h1 uniform on the departure edge, h2 uniform on the
//     arrival edge, or root height + Exp(lambda) on the root edge with
//     lambda = 1 / (c.Height2 - root height).
//
// Merge of an ordered pair (keep, drop) sharing both edges sets keep's span
// to [min start, max end] and deletes drop. Each Hastings ratio is the exact
// inverse of the other; see splitLogHR.

package operators

import (
	"math"

	"github.com/katalvlaran/argraph/acg"
	"github.com/katalvlaran/argraph/draw"
	"github.com/katalvlaran/argraph/tree"
)

// MergeSplit toggles between splitting and merging conversions.
type MergeSplit struct {
	g    *acg.Graph
	opts Options
}

// NewMergeSplit returns a MergeSplit over g. Only WithCeiling is consulted.
func NewMergeSplit(g *acg.Graph, opts ...Option) (*MergeSplit, error) {
	if g == nil {
		return nil, ErrNilGraph
	}

	return &MergeSplit{g: g, opts: buildOptions(opts)}, nil
}

// Propose implements Operator.
func (op *MergeSplit) Propose(rng *draw.Source) float64 {
	if op.g.WholeLocusMode() || op.g.TotalConvertibleSequenceLength() == 0 {
		return reject
	}
	l := chooseLocus(op.g, rng)
	if op.g.TotalConvCount() < op.opts.Ceiling && rng.Bool() {
		return op.proposeSplit(l, rng)
	}

	return op.proposeMerge(l, rng)
}

func (op *MergeSplit) proposeSplit(l *acg.Locus, rng *draw.Source) float64 {
	n := op.g.ConvCount(l)
	if n == 0 {
		return reject
	}
	c := op.g.Conversions(l)[rng.IntN(n)]
	if c.Wraps() {
		return reject
	}
	sites := c.SiteCount()
	m1 := c.StartSite + rng.IntN(sites)
	m2 := c.StartSite + rng.IntN(sites)
	s1, s2 := c.StartSite, m1
	if rng.Bool() {
		s1, s2 = m1, c.StartSite
	}
	e1, e2 := c.EndSite, m2
	if rng.Bool() {
		e1, e2 = m2, c.EndSite
	}
	if e1 < s1 || e2 < s2 {
		return reject
	}

	t := op.g.Tree()
	h1 := rng.Uniform(t.Height(c.Node1), t.ParentHeight(c.Node1))
	var h2 float64
	if base := t.Height(c.Node2); t.IsRoot(c.Node2) {
		h2 = base + rng.Exponential(1/(c.Height2-base))
	} else {
		h2 = rng.Uniform(base, t.ParentHeight(c.Node2))
	}

	return op.split(c, s1, e1, s2, e2, h1, h2)
}

// split shrinks c to [s1, e1] and adds a sibling on [s2, e2] departing at
// h1 and arriving at h2. It returns the log Hastings ratio, or rejects
// without editing.
func (op *MergeSplit) split(c *acg.Conversion, s1, e1, s2, e2 int, h1, h2 float64) float64 {
	if h2 < h1 {
		return reject
	}
	t := op.g.Tree()
	logCut := cutLogProb(c.SiteCount(), s1, s2, e1, e2)
	logSib := siblingLogDensity(t, c, h1, h2)
	if math.IsInf(logSib, -1) || math.IsNaN(logSib) {
		return reject
	}
	n := op.g.ConvCount(c.Locus)
	total := op.g.TotalConvCount()

	sib := &acg.Conversion{
		Locus: c.Locus, StartSite: s2, EndSite: e2,
		Node1: c.Node1, Height1: h1,
		Node2: c.Node2, Height2: h2,
	}
	must("split", op.g.SetConversionSpan(c, s1, e1))
	must("split", op.g.AddConversion(sib))

	return splitLogHR(n, total, op.opts.Ceiling, logCut+logSib)
}

func (op *MergeSplit) proposeMerge(l *acg.Locus, rng *draw.Source) float64 {
	n := op.g.ConvCount(l)
	if n < 2 {
		return reject
	}
	list := op.g.Conversions(l)
	i := rng.IntN(n)
	j := rng.IntN(n - 1)
	if j >= i {
		j++
	}

	return op.merge(list[i], list[j])
}

// merge grows keep to the envelope of keep and drop, deletes drop and
// returns the log Hastings ratio, or rejects without editing.
func (op *MergeSplit) merge(keep, drop *acg.Conversion) float64 {
	if keep.Node1 != drop.Node1 || keep.Node2 != drop.Node2 || keep.Wraps() || drop.Wraps() {
		return reject
	}
	logSib := siblingLogDensity(op.g.Tree(), keep, drop.Height1, drop.Height2)
	if math.IsInf(logSib, -1) || math.IsNaN(logSib) {
		return reject
	}
	start := min(keep.StartSite, drop.StartSite)
	end := max(keep.EndSite, drop.EndSite)
	logCut := cutLogProb(end-start+1, keep.StartSite, drop.StartSite, keep.EndSite, drop.EndSite)
	n := op.g.ConvCount(keep.Locus)
	total := op.g.TotalConvCount()

	must("merge", op.g.DeleteConversion(drop))
	must("merge", op.g.SetConversionSpan(keep, start, end))

	return -splitLogHR(n-1, total-1, op.opts.Ceiling, logCut+logSib)
}

// splitLogHR is the log Hastings ratio of a split on a locus holding n
// conversions, with total conversions in the graph, where logDraw is the
// log density of the cut points and sibling heights. A merge into that
// state has ratio -splitLogHR.
func splitLogHR(n, total, ceiling int, logDraw float64) float64 {
	forward := math.Log(moveProb(total, ceiling)) - math.Log(float64(n)) + logDraw
	reverse := math.Log(1-moveProb(total+1, ceiling)) - math.Log(float64((n+1)*n))

	return reverse - forward
}

// cutLogProb is the log probability that splitting a span of n sites gives
// starts (s1, s2) and ends (e1, e2). Equal pairs arise from either coin
// outcome, hence probability 1/n instead of 1/(2n).
func cutLogProb(n, s1, s2, e1, e2 int) float64 {
	ps, pe := 0.5, 0.5
	if s1 == s2 {
		ps = 1
	}
	if e1 == e2 {
		pe = 1
	}

	return math.Log(ps/float64(n)) + math.Log(pe/float64(n))
}

// siblingLogDensity is the log density of sibling heights (h1, h2) drawn on
// the edge pair of c.
func siblingLogDensity(t *tree.Tree, c *acg.Conversion, h1, h2 float64) float64 {
	len1 := t.Length(c.Node1)
	if !(len1 > 0) || h1 < t.Height(c.Node1) || h1 > t.ParentHeight(c.Node1) {
		return reject
	}
	logP := -math.Log(len1)
	base := t.Height(c.Node2)
	if h2 < base {
		return reject
	}
	if t.IsRoot(c.Node2) {
		lambda := 1 / (c.Height2 - base)
		if math.IsInf(lambda, 0) || !(lambda > 0) {
			return reject
		}
		return logP + math.Log(lambda) - lambda*(h2-base)
	}
	len2 := t.Length(c.Node2)
	if !(len2 > 0) || h2 > t.ParentHeight(c.Node2) {
		return reject
	}

	return logP - math.Log(len2)
}
