// SPDX-License-Identifier: MIT
//
// File: regions.go
// Role: partition of a locus into maximal spans with a constant active
// conversion set (the region list).
//
// Algorithm:
//   - Each conversion contributes one or two half-open segments (two when
//     it wraps a circular locus). Segment starts and ends become boundaries.
//   - A sweep over the sorted boundaries keeps the active set; a region closes
//     only when the set changes, so adjacent spans with equal sets merge.
//   - On circular loci the first and last regions are joined across site 0
//     when their active sets match. The joined region has Left > Right.
//
// Complexity: O(B log B + B*k) for B boundaries and at most k overlapping
// conversions.

package acg

import "sort"

// Region is a maximal span of one locus with a constant active set.
// Sites run from Left up to but excluding Right; when Left >= Right on a
// circular locus the span wraps past the last site.
type Region struct {
	Locus  *Locus
	Left   int
	Right  int
	Active []*Conversion
}

// IsClonalFrame reports whether no conversion is active on r.
func (r Region) IsClonalFrame() bool { return len(r.Active) == 0 }

// Wraps reports whether r crosses the end of a circular locus.
func (r Region) Wraps() bool { return r.Right <= r.Left }

// Len returns the number of sites in r.
func (r Region) Len() int {
	if r.Wraps() {
		return r.Locus.siteCount - r.Left + r.Right
	}

	return r.Right - r.Left
}

// Contains reports whether site lies in r.
func (r Region) Contains(site int) bool {
	if r.Wraps() {
		return site >= r.Left || site < r.Right
	}

	return site >= r.Left && site < r.Right
}

// Equal reports equal boundaries and equal active sets.
func (r Region) Equal(o Region) bool {
	return r.Left == o.Left && r.Right == o.Right && sameSet(r.Active, o.Active)
}

func sameSet(a, b []*Conversion) bool {
	if len(a) != len(b) {
		return false
	}
	in := make(map[*Conversion]struct{}, len(a))
	for _, c := range a {
		in[c] = struct{}{}
	}
	for _, c := range b {
		if _, ok := in[c]; !ok {
			return false
		}
	}

	return true
}

type boundary struct {
	site  int
	conv  *Conversion
	enter bool
}

// computeRegions builds the region list of l from convs.
func computeRegions(l *Locus, convs []*Conversion) []Region {
	n := l.siteCount
	rank := make(map[*Conversion]int, len(convs))
	bounds := make([]boundary, 0, 4*len(convs))
	for i, c := range convs {
		rank[c] = i
		for _, seg := range c.Segments() {
			bounds = append(bounds,
				boundary{site: seg[0], conv: c, enter: true},
				boundary{site: seg[1], conv: c, enter: false})
		}
	}
	sort.SliceStable(bounds, func(i, j int) bool { return bounds[i].site < bounds[j].site })

	active := make(map[*Conversion]struct{}, len(convs))
	snapshot := func() []*Conversion {
		out := make([]*Conversion, 0, len(active))
		for c := range active {
			out = append(out, c)
		}
		sort.Slice(out, func(i, j int) bool { return rank[out[i]] < rank[out[j]] })
		return out
	}

	var regions []Region
	left, cur := 0, []*Conversion(nil)
	for i := 0; i < len(bounds); {
		site := bounds[i].site
		for ; i < len(bounds) && bounds[i].site == site; i++ {
			if bounds[i].enter {
				active[bounds[i].conv] = struct{}{}
			} else {
				delete(active, bounds[i].conv)
			}
		}
		if site >= n {
			break
		}
		next := snapshot()
		if sameSet(cur, next) {
			continue
		}
		if site > left {
			regions = append(regions, Region{Locus: l, Left: left, Right: site, Active: cur})
		}
		left, cur = site, next
	}
	regions = append(regions, Region{Locus: l, Left: left, Right: n, Active: cur})

	if l.circular && len(regions) > 1 {
		first, last := regions[0], regions[len(regions)-1]
		if sameSet(first.Active, last.Active) {
			joined := Region{Locus: l, Left: last.Left, Right: first.Right, Active: last.Active}
			regions = append(regions[1:len(regions)-1], joined)
		}
	}

	return regions
}
