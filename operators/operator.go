// SPDX-License-Identifier: MIT

package operators

import (
	"errors"
	"fmt"
	"math"

	"github.com/katalvlaran/argraph/acg"
	"github.com/katalvlaran/argraph/draw"
)

var (
	// ErrNilGraph indicates an operator constructed without a graph.
	ErrNilGraph = errors.New("operators: graph is nil")

	// ErrNoPopulation indicates AddRemove without a population function.
	ErrNoPopulation = errors.New("operators: population function is required")
)

// Operator is one reversible-jump move.
type Operator interface {
	// Propose mutates the graph and returns the log Hastings ratio, or
	// math.Inf(-1) to reject.
	Propose(rng *draw.Source) float64
}

var reject = math.Inf(-1)

// moveProb is the probability of choosing the dimension-raising move
// (split, birth) with total conversions present.
func moveProb(total, ceiling int) float64 {
	if total < ceiling {
		return 0.5
	}

	return 0
}

// chooseLocus draws a convertible locus with probability proportional to
// its site count.
func chooseLocus(g *acg.Graph, rng *draw.Source) *acg.Locus {
	z := rng.IntN(g.TotalConvertibleSequenceLength())
	for _, l := range g.ConvertibleLoci() {
		if z < l.SiteCount() {
			return l
		}
		z -= l.SiteCount()
	}
	panic("operators: locus choice fell through an exhaustive partition")
}

// must turns a graph edit error into a panic. Operators validate before
// editing, so any failure here is a broken invariant.
func must(op string, err error) {
	if err != nil {
		panic(fmt.Sprintf("operators: %s: %v", op, err))
	}
}
