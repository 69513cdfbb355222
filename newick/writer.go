// SPDX-License-Identifier: MIT

package newick

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/katalvlaran/argraph/acg"
)

// WriteOption configures Write.
type WriteOption func(*writeConfig)

type writeConfig struct {
	intraCFOnly bool
	noAffected  bool
}

// WithIntraCFOnly omits conversions arriving on the root edge and the
// affected-site summary.
func WithIntraCFOnly() WriteOption {
	return func(c *writeConfig) { c.intraCFOnly, c.noAffected = true, true }
}

// WithoutAffectedSites omits affectedSites and uselessSiteFraction.
func WithoutAffectedSites() WriteOption {
	return func(c *writeConfig) { c.noAffected = true }
}

type edgeEvent struct {
	arrival bool
	height  float64
	conv    *acg.Conversion
	global  int
	local   int
}

type writer struct {
	g        *acg.Graph
	affected *acg.AffectedSiteList
	events   [][]edgeEvent
	sb       strings.Builder
}

// Write serializes g as one extended Newick string terminated by ';'.
// Complexity: O((N + C) log C) plus the affected-site sweep.
func Write(g *acg.Graph, opts ...WriteOption) string {
	var cfg writeConfig
	for _, fn := range opts {
		fn(&cfg)
	}
	t := g.Tree()
	w := &writer{g: g, events: make([][]edgeEvent, t.NodeCount())}
	if !cfg.noAffected {
		w.affected = g.Affected()
	}

	global := 0
	for _, l := range g.ConvertibleLoci() {
		for k, c := range g.Conversions(l) {
			global++
			if cfg.intraCFOnly && t.IsRoot(c.Node2) {
				continue
			}
			w.events[c.Node1] = append(w.events[c.Node1], edgeEvent{height: c.Height1, conv: c, global: global - 1, local: k})
			w.events[c.Node2] = append(w.events[c.Node2], edgeEvent{arrival: true, height: c.Height2, conv: c, global: global - 1, local: k})
		}
	}
	for _, evs := range w.events {
		sort.Slice(evs, func(i, j int) bool {
			a, b := evs[i], evs[j]
			if a.height != b.height {
				return a.height > b.height
			}
			if a.arrival != b.arrival {
				return a.arrival
			}
			return a.global < b.global
		})
	}

	w.edge(t.Root())
	w.sb.WriteByte(';')

	return w.sb.String()
}

// edge writes node i together with the pseudo-nodes on the edge above it,
// oldest outermost.
func (w *writer) edge(i int) {
	t := w.g.Tree()
	evs := w.events[i]
	lengths := make([]float64, len(evs))
	last := t.ParentHeight(i)
	for k, e := range evs {
		lengths[k] = span(last, e.height)
		last = e.height
	}

	for range evs {
		w.sb.WriteByte('(')
	}
	if t.IsLeaf(i) {
		w.sb.WriteString(leafLabel(t.Label(i)))
	} else {
		w.sb.WriteByte('(')
		w.edge(t.Child(i, 0))
		w.sb.WriteByte(',')
		w.edge(t.Child(i, 1))
		w.sb.WriteByte(')')
		w.sb.WriteString(strconv.Itoa(i))
	}
	w.sb.WriteByte(':')
	w.sb.WriteString(formatFloat(span(last, t.Height(i))))

	for k := len(evs) - 1; k >= 0; k-- {
		e := evs[k]
		if e.arrival {
			w.sb.WriteString(",#")
			w.sb.WriteString(strconv.Itoa(e.global))
			w.sb.WriteString(w.hybridMeta(e))
			w.sb.WriteByte(':')
			w.sb.WriteString(formatFloat(e.conv.Height2 - e.conv.Height1))
			w.sb.WriteByte(')')
			w.sb.WriteString(metaBlock(e.conv.Meta.Top))
		} else {
			w.sb.WriteString(")#")
			w.sb.WriteString(strconv.Itoa(e.global))
			w.sb.WriteString(metaBlock(e.conv.Meta.Bottom))
		}
		w.sb.WriteByte(':')
		w.sb.WriteString(formatFloat(lengths[k]))
	}
}

func (w *writer) hybridMeta(e edgeEvent) string {
	c := e.conv
	var sb strings.Builder
	fmt.Fprintf(&sb, "[&conv=%d, region={%d,%d}, locus=\"%s\", relSize=%s",
		e.local, c.StartSite, c.EndSite, c.Locus.ID(),
		formatFloat(float64(c.SiteCount())/float64(c.Locus.SiteCount())))
	if w.affected != nil {
		fmt.Fprintf(&sb, ", affectedSites=%d, uselessSiteFraction=%s",
			w.affected.Count(c), formatFloat(1-w.affected.Fraction(c)))
	}
	if c.Meta.Middle != "" {
		sb.WriteString(", ")
		sb.WriteString(c.Meta.Middle)
	}
	sb.WriteByte(']')

	return sb.String()
}

// span is the length from top down to h; the root edge has length 0.
func span(top, h float64) float64 {
	if math.IsInf(top, 1) {
		return 0
	}

	return top - h
}

func metaBlock(s string) string {
	if s == "" {
		return ""
	}

	return "[&" + s + "]"
}

func formatFloat(x float64) string { return strconv.FormatFloat(x, 'g', -1, 64) }

// leafLabel quotes labels that would not survive as a bare word. An
// empty label is written as nothing.
func leafLabel(label string) string {
	if strings.ContainsAny(label, delimiters+" \t\r\n") {
		return "'" + strings.ReplaceAll(label, "'", "''") + "'"
	}

	return label
}
