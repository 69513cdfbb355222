// SPDX-License-Identifier: MIT
//
// File: region.go
// Role: the affected-region kernel of the conversion model: which locus a
// conversion lands on and which sites it spans, with the exact log
// probability of any given choice.
//
// Unrestricted model:
//   - Start positions are uniform over alpha = Σ_i (L_i + c_i), where
//     c_i = delta - 1 on linear loci (a tract may start before site 0 and be
//     clipped) and c_i = 0 on circular loci.
//   - On a linear locus start 0 has weight delta, any other start weight 1.
//     The tract length is geometric with mean delta, clipped at the last site.
//   - On a circular locus the start is uniform and the end wraps; see
//     CircularLengthModel for the length law.
//
// Whole-locus mode: the locus is drawn with probability L_i / Σ L_i and the
// span is the whole locus.

package model

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mathext"
	"gonum.org/v1/gonum/stat/combin"

	"github.com/katalvlaran/argraph/acg"
	"github.com/katalvlaran/argraph/draw"
)

var (
	// ErrBadDelta indicates a mean tract length below 1, or too large for
	// the Beta-Binomial law on some circular locus.
	ErrBadDelta = errors.New("model: invalid tract length parameter")

	// ErrNoConvertibleLoci indicates a graph without convertible loci.
	ErrNoConvertibleLoci = errors.New("model: no convertible loci")
)

// CircularLengthModel selects the tract length law on circular loci.
// In both the drawn quantity is m = siteCount - 1, the offset from start to end.
type CircularLengthModel int

const (
	// GeometricLength draws m ~ Geometric(1/delta) conditioned on m < L/2.
	GeometricLength CircularLengthModel = iota

	// BetaBinomialLength draws m ~ BetaBinomial(n, n/(n-delta), n/delta)
	// with n = floor((L-1)/2), so that E[m] = delta.
	BetaBinomialLength
)

// String implements fmt.Stringer.
func (m CircularLengthModel) String() string {
	if m == BetaBinomialLength {
		return "betaBinomial"
	}

	return "geometric"
}

// SamplerOption configures NewRegionSampler.
type SamplerOption func(*RegionSampler)

// WithCircularLengthModel selects the circular tract length law.
func WithCircularLengthModel(m CircularLengthModel) SamplerOption {
	return func(s *RegionSampler) { s.circular = m }
}

// RegionSampler draws and scores affected regions on the convertible loci
// of one Graph.
type RegionSampler struct {
	g        *acg.Graph
	delta    float64
	circular CircularLengthModel
}

// NewRegionSampler validates delta against the loci of g.
func NewRegionSampler(g *acg.Graph, delta float64, opts ...SamplerOption) (*RegionSampler, error) {
	s := &RegionSampler{g: g, delta: delta}
	for _, fn := range opts {
		fn(s)
	}
	loci := g.ConvertibleLoci()
	if len(loci) == 0 {
		return nil, ErrNoConvertibleLoci
	}
	if !(delta >= 1) || math.IsInf(delta, 0) {
		return nil, fmt.Errorf("NewRegionSampler(delta=%g): %w", delta, ErrBadDelta)
	}
	if s.circular == BetaBinomialLength && !g.WholeLocusMode() {
		for _, l := range loci {
			if n := float64(halfLength(l)); l.Circular() && n <= delta {
				return nil, fmt.Errorf("NewRegionSampler: locus %q allows %g trials, delta=%g: %w",
					l.ID(), n, delta, ErrBadDelta)
			}
		}
	}

	return s, nil
}

// weight is the share of start positions of l.
func (s *RegionSampler) weight(l *acg.Locus) float64 {
	if s.g.WholeLocusMode() || l.Circular() {
		return float64(l.SiteCount())
	}

	return float64(l.SiteCount()) + s.delta - 1
}

// Alpha returns the total start-position weight over convertible loci.
func (s *RegionSampler) Alpha() float64 {
	a := 0.0
	for _, l := range s.g.ConvertibleLoci() {
		a += s.weight(l)
	}

	return a
}

// locate maps u in [0, Alpha()) to a locus and the remainder inside it.
func (s *RegionSampler) locate(u float64) (*acg.Locus, float64) {
	for _, l := range s.g.ConvertibleLoci() {
		w := s.weight(l)
		if u < w {
			return l, u
		}
		u -= w
	}
	panic("model: locus choice fell through an exhaustive partition")
}

// ChooseLocus draws a locus with probability proportional to its
// start-position weight and returns it with the log of that probability.
func (s *RegionSampler) ChooseLocus(rng *draw.Source) (*acg.Locus, float64) {
	alpha := s.Alpha()
	l, _ := s.locate(rng.Float64() * alpha)

	return l, math.Log(s.weight(l) / alpha)
}

// DrawAffectedRegion sets conv's Locus, StartSite and EndSite and returns
// the log probability of the choice.
func (s *RegionSampler) DrawAffectedRegion(conv *acg.Conversion, rng *draw.Source) float64 {
	if s.g.WholeLocusMode() {
		l, logP := s.ChooseLocus(rng)
		conv.Locus, conv.StartSite, conv.EndSite = l, 0, l.SiteCount()-1
		return logP
	}

	l, u := s.locate(rng.Float64() * s.Alpha())
	n := l.SiteCount()
	conv.Locus = l
	if l.Circular() {
		conv.StartSite = min(int(u), n-1)
		conv.EndSite = (conv.StartSite + s.drawCircularOffset(l, rng)) % n
	} else {
		if u < s.delta {
			conv.StartSite = 0
		} else {
			conv.StartSite = min(int(math.Ceil(u-s.delta)), n-1)
		}
		conv.EndSite = min(conv.StartSite+rng.Geometric(1/s.delta), n-1)
	}

	return s.AffectedRegionLogProb(conv)
}

func (s *RegionSampler) drawCircularOffset(l *acg.Locus, rng *draw.Source) int {
	if s.circular == BetaBinomialLength {
		n := halfLength(l)
		return rng.BetaBinomial(n, float64(n)/(float64(n)-s.delta), float64(n)/s.delta)
	}
	k := geometricSupport(l)
	for {
		if m := rng.Geometric(1 / s.delta); m < k {
			return m
		}
	}
}

// AffectedRegionLogProb returns the log probability that DrawAffectedRegion
// picks conv's locus and span; -Inf if it never would.
func (s *RegionSampler) AffectedRegionLogProb(conv *acg.Conversion) float64 {
	l := conv.Locus
	if l == nil || !l.ConversionsAllowed() {
		return math.Inf(-1)
	}
	n := l.SiteCount()
	if s.g.WholeLocusMode() {
		if conv.StartSite != 0 || conv.EndSite != n-1 {
			return math.Inf(-1)
		}
		return math.Log(float64(n) / float64(s.g.TotalConvertibleSequenceLength()))
	}

	alpha := s.Alpha()
	if l.Circular() {
		return -math.Log(alpha) + s.circularOffsetLogProb(l, conv.SiteCount()-1)
	}
	if conv.Wraps() {
		return math.Inf(-1)
	}

	logP := -math.Log(alpha)
	if conv.StartSite == 0 {
		logP += math.Log(s.delta)
	}
	p := 1 / s.delta
	if conv.EndSite == n-1 {
		return logP + powLog(n-1-conv.StartSite, 1-p)
	}

	return logP + powLog(conv.EndSite-conv.StartSite, 1-p) + math.Log(p)
}

func (s *RegionSampler) circularOffsetLogProb(l *acg.Locus, m int) float64 {
	if s.circular == BetaBinomialLength {
		n := halfLength(l)
		if m < 0 || m > n {
			return math.Inf(-1)
		}
		a := float64(n) / (float64(n) - s.delta)
		b := float64(n) / s.delta
		return combin.LogGeneralizedBinomial(float64(n), float64(m)) +
			mathext.Lbeta(float64(m)+a, float64(n-m)+b) - mathext.Lbeta(a, b)
	}
	k := geometricSupport(l)
	if m < 0 || m >= k {
		return math.Inf(-1)
	}
	p := 1 / s.delta
	norm := -math.Expm1(float64(k) * math.Log1p(-p)) // 1 - (1-p)^k
	if p >= 1 {
		norm = 1
	}

	return powLog(m, 1-p) + math.Log(p) - math.Log(norm)
}

// halfLength is the Beta-Binomial trial count floor((L-1)/2).
func halfLength(l *acg.Locus) int { return (l.SiteCount() - 1) / 2 }

// geometricSupport is the number of offsets m with m < L/2.
func geometricSupport(l *acg.Locus) int { return (l.SiteCount() + 1) / 2 }

// powLog returns k*log(q), with 0*log(0) taken as 0.
func powLog(k int, q float64) float64 {
	if k == 0 {
		return 0
	}

	return float64(k) * math.Log(q)
}
