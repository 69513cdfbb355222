// SPDX-License-Identifier: MIT

package operators

import (
	"math"

	"github.com/katalvlaran/argraph/acg"
	"github.com/katalvlaran/argraph/draw"
)

// RegionShift slides one conversion's span by an offset uniform in
// [-radius, radius], radius = round(L*aperture)/2. The move is symmetric,
// so an accepted shift has log Hastings ratio 0.
type RegionShift struct {
	g    *acg.Graph
	opts Options
}

// NewRegionShift returns a RegionShift over g. Only WithAperture is
// consulted.
func NewRegionShift(g *acg.Graph, opts ...Option) (*RegionShift, error) {
	if g == nil {
		return nil, ErrNilGraph
	}

	return &RegionShift{g: g, opts: buildOptions(opts)}, nil
}

// Radius returns the largest offset RegionShift draws on l.
func (op *RegionShift) Radius(l *acg.Locus) int {
	return int(math.Round(float64(l.SiteCount())*op.opts.Aperture)) / 2
}

// Propose implements Operator.
func (op *RegionShift) Propose(rng *draw.Source) float64 {
	total := op.g.TotalConvCount()
	if total < 1 || op.g.WholeLocusMode() {
		return reject
	}
	c := op.g.ConversionAt(rng.IntN(total))
	r := op.Radius(c.Locus)
	offset := rng.IntN(2*r+1) - r

	start, end, ok := shiftSpan(c.Locus, c.StartSite, c.EndSite, offset)
	if !ok {
		return reject
	}
	must("shift", op.g.SetConversionSpan(c, start, end))

	return 0
}

// shiftSpan moves [start, end] by offset. Linear loci refuse spans leaving
// [0, L); circular loci wrap both ends modulo L.
func shiftSpan(l *acg.Locus, start, end, offset int) (int, int, bool) {
	n := l.SiteCount()
	s, e := start+offset, end+offset
	if !l.Circular() {
		if s < 0 || e > n-1 {
			return start, end, false
		}
		return s, e, true
	}

	return mod(s, n), mod(e, n), true
}

func mod(a, n int) int {
	if a %= n; a < 0 {
		a += n
	}

	return a
}
