// SPDX-License-Identifier: MIT
//
// File: attach.go
// Role: clonal frame attachment kernel of the conversion model.
//
// Departure: (Node1, Height1) uniform over the total non-root branch length,
// located by walking the event list with area interval * lineageCount.
// Arrival: a rate-1 exponential budget spent in coalescent intensity units,
// interval by interval, at rate lineageCount / N(t); the root interval is
// unbounded. Node2 is uniform among the lineages extant at Height2.
//
// The joint log density is
//
//	-log(CF length) - log N(h2) - Σ_i k_i ∫ 1/N(t) dt   over [h1, h2].

package model

import (
	"math"

	"github.com/katalvlaran/argraph/acg"
	"github.com/katalvlaran/argraph/draw"
	"github.com/katalvlaran/argraph/popfunc"
)

// Attach draws departure and arrival points for conv on g's clonal frame
// and returns their joint log density. With a zero-length clonal frame it
// returns -Inf and leaves conv untouched.
// Complexity: O(N) per call (event walk plus lineage scans).
func Attach(g *acg.Graph, pop popfunc.Function, conv *acg.Conversion, rng *draw.Source) float64 {
	cfLength := g.ClonalFrameLength()
	if !(cfLength > 0) {
		return math.Inf(-1)
	}
	t := g.Tree()
	events := g.CFEvents()
	last := len(events) - 1

	u := rng.Uniform(0, cfLength)
	start := -1
	for i := 0; i < last; i++ {
		interval := events[i+1].Height - events[i].Height
		area := interval * float64(events[i].LineageCount)
		if u >= area {
			u -= area
			continue
		}
		lineages := t.LineagesAt(events[i].Height)
		idx := min(int(u/interval), len(lineages)-1)
		conv.Node1 = lineages[idx]
		conv.Height1 = events[i].Height + (u - float64(idx)*interval)
		start = i
		break
	}
	if start < 0 {
		// rounding pushed u past the last interval: take the top of it
		i := last - 1
		for i > 0 && events[i+1].Height == events[i].Height {
			i--
		}
		lineages := t.LineagesAt(events[i].Height)
		conv.Node1 = lineages[len(lineages)-1]
		conv.Height1 = events[i+1].Height
		start = i
	}

	budget := rng.Exponential(1)
	for j := start; j <= last; j++ {
		k := float64(events[j].LineageCount)
		from := math.Max(events[j].Height, conv.Height1)
		area := math.Inf(1)
		if j < last {
			area = pop.Integral(from, events[j+1].Height) * k
		}
		if budget >= area {
			budget -= area
			continue
		}
		h2 := pop.InverseIntensity(pop.Intensity(from) + budget/k)
		if j < last {
			h2 = math.Min(h2, events[j+1].Height)
		}
		conv.Height2 = math.Max(h2, from)
		lineages := t.LineagesAt(events[j].Height)
		conv.Node2 = lineages[rng.IntN(len(lineages))]
		break
	}

	return AttachmentLogDensity(g, pop, conv)
}

// AttachmentLogDensity returns the log density with which Attach would
// produce conv's departure and arrival points, or -Inf if conv is not a
// valid attachment.
func AttachmentLogDensity(g *acg.Graph, pop popfunc.Function, conv *acg.Conversion) float64 {
	cfLength := g.ClonalFrameLength()
	if !(cfLength > 0) || g.CheckConversion(conv) != nil {
		return math.Inf(-1)
	}
	events := g.CFEvents()
	last := len(events) - 1

	exposure := 0.0
	for j := 0; j <= last; j++ {
		lo := math.Max(events[j].Height, conv.Height1)
		hi := conv.Height2
		if j < last {
			hi = math.Min(hi, events[j+1].Height)
		}
		if hi > lo {
			exposure += float64(events[j].LineageCount) * pop.Integral(lo, hi)
		}
	}

	return -math.Log(cfLength) - math.Log(pop.PopSize(conv.Height2)) - exposure
}
