// SPDX-License-Identifier: MIT
//
// File: affected.go
// Role: affected-site list. For every conversion, the sites whose ancestry
// it actually redirects.
//
// Algorithm (one pass per convertible locus, present to past):
//   - Each lineage carries the set of sites still ancestral to a sample.
//     A leaf starts with the whole locus; an internal node takes the union
//     of its children.
//   - At a departure on node1's edge, the conversion removes the ancestral
//     sites inside its span from that lineage and carries them. That count
//     is its affected-site count.
//   - At the arrival on node2's edge, the carried sites join that lineage.
//
// A conversion whose span is already drained by lower conversions on the
// same lineage, or that sits on sites no sample inherits, affects nothing.
// Complexity: O((N + C) log(N + C) + C*s) per locus, s the span fragment count.

package acg

import (
	"sort"

	"github.com/katalvlaran/argraph/tree"
)

// AffectedSiteList holds per-conversion affected-site counts.
type AffectedSiteList struct {
	counts map[*Conversion]int
}

// Count returns the number of affected sites of c (0 if c is unknown).
func (a *AffectedSiteList) Count(c *Conversion) int { return a.counts[c] }

// Fraction returns Count(c) / c.SiteCount().
func (a *AffectedSiteList) Fraction(c *Conversion) float64 {
	return float64(a.counts[c]) / float64(c.SiteCount())
}

// Useless reports whether c affects no site.
func (a *AffectedSiteList) Useless(c *Conversion) bool { return a.counts[c] == 0 }

// UselessCount returns the number of conversions affecting no site.
func (a *AffectedSiteList) UselessCount() int {
	n := 0
	for _, k := range a.counts {
		if k == 0 {
			n++
		}
	}

	return n
}

type sweepKind int

const (
	atNode sweepKind = iota
	atDeparture
	atArrival
)

type sweepEvent struct {
	height float64
	tier   int
	kind   sweepKind
	node   int
	conv   *Conversion
}

// Tiers order events sharing a height: conversion endpoints above the
// bottom of their edge come first, so an endpoint at the parent's height
// is seen before the parent merges its children; then nodes; then
// endpoints sitting exactly on their own node.
const (
	tierOnEdge = iota
	tierNode
	tierOnNode
)

func endpointTier(t *tree.Tree, node int, h float64) int {
	if h == t.Height(node) {
		return tierOnNode
	}

	return tierOnEdge
}

func (g *Graph) computeAffected() *AffectedSiteList {
	res := &AffectedSiteList{counts: make(map[*Conversion]int, g.TotalConvCount())}
	t := g.tree
	base := make([]sweepEvent, t.NodeCount())
	for i := range base {
		base[i] = sweepEvent{height: t.Height(i), tier: tierNode, kind: atNode, node: i}
	}

	for _, l := range g.convertible {
		convs := g.convs[l]
		if len(convs) == 0 {
			continue
		}
		events := append(make([]sweepEvent, 0, len(base)+2*len(convs)), base...)
		for _, c := range convs {
			events = append(events,
				sweepEvent{height: c.Height1, tier: endpointTier(t, c.Node1, c.Height1), kind: atDeparture, node: c.Node1, conv: c},
				sweepEvent{height: c.Height2, tier: endpointTier(t, c.Node2, c.Height2), kind: atArrival, node: c.Node2, conv: c})
		}
		sort.SliceStable(events, func(i, j int) bool {
			if events[i].height != events[j].height {
				return events[i].height < events[j].height
			}
			if events[i].tier != events[j].tier {
				return events[i].tier < events[j].tier
			}
			return events[i].kind < events[j].kind
		})

		material := make([]siteSet, t.NodeCount())
		carried := make(map[*Conversion]siteSet, len(convs))
		for _, ev := range events {
			switch ev.kind {
			case atNode:
				if t.IsLeaf(ev.node) {
					material[ev.node] = spanSet(0, l.siteCount)
				} else {
					material[ev.node] = material[t.Child(ev.node, 0)].union(material[t.Child(ev.node, 1)])
				}
			case atDeparture:
				take := material[ev.node].intersect(conversionSet(ev.conv))
				material[ev.node] = material[ev.node].subtract(take)
				carried[ev.conv] = take
				res.counts[ev.conv] = take.count()
			case atArrival:
				material[ev.node] = material[ev.node].union(carried[ev.conv])
			}
		}
	}

	return res
}
