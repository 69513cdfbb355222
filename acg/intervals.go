// SPDX-License-Identifier: MIT

package acg

// siteSet is a set of sites stored as ascending, disjoint, non-adjacent
// half-open spans. The zero value is the empty set.
type siteSet struct {
	spans [][2]int
}

func spanSet(lo, hi int) siteSet {
	if hi <= lo {
		return siteSet{}
	}

	return siteSet{spans: [][2]int{{lo, hi}}}
}

func conversionSet(c *Conversion) siteSet {
	return siteSet{spans: c.Segments()}
}

func (s siteSet) count() int {
	n := 0
	for _, sp := range s.spans {
		n += sp[1] - sp[0]
	}

	return n
}

func (s siteSet) empty() bool { return len(s.spans) == 0 }

func (s siteSet) union(o siteSet) siteSet {
	if s.empty() {
		return o
	}
	if o.empty() {
		return s
	}
	out := make([][2]int, 0, len(s.spans)+len(o.spans))
	i, j := 0, 0
	for i < len(s.spans) || j < len(o.spans) {
		var next [2]int
		if j >= len(o.spans) || (i < len(s.spans) && s.spans[i][0] <= o.spans[j][0]) {
			next = s.spans[i]
			i++
		} else {
			next = o.spans[j]
			j++
		}
		if k := len(out) - 1; k >= 0 && next[0] <= out[k][1] {
			if next[1] > out[k][1] {
				out[k][1] = next[1]
			}
			continue
		}
		out = append(out, next)
	}

	return siteSet{spans: out}
}

func (s siteSet) intersect(o siteSet) siteSet {
	var out [][2]int
	i, j := 0, 0
	for i < len(s.spans) && j < len(o.spans) {
		lo := max(s.spans[i][0], o.spans[j][0])
		hi := min(s.spans[i][1], o.spans[j][1])
		if lo < hi {
			out = append(out, [2]int{lo, hi})
		}
		if s.spans[i][1] < o.spans[j][1] {
			i++
		} else {
			j++
		}
	}

	return siteSet{spans: out}
}

func (s siteSet) subtract(o siteSet) siteSet {
	var out [][2]int
	j := 0
	for _, sp := range s.spans {
		lo := sp[0]
		for j < len(o.spans) && o.spans[j][1] <= lo {
			j++
		}
		for k := j; k < len(o.spans) && o.spans[k][0] < sp[1]; k++ {
			if o.spans[k][0] > lo {
				out = append(out, [2]int{lo, o.spans[k][0]})
			}
			if o.spans[k][1] > lo {
				lo = o.spans[k][1]
			}
		}
		if lo < sp[1] {
			out = append(out, [2]int{lo, sp[1]})
		}
	}

	return siteSet{spans: out}
}
