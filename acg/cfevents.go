// SPDX-License-Identifier: MIT

package acg

import (
	"sort"

	"github.com/katalvlaran/argraph/tree"
)

// EventKind distinguishes clonal frame events.
type EventKind int

const (
	// Sample is a leaf entering the lineage pool.
	Sample EventKind = iota
	// Coalescence is an internal node merging two lineages.
	Coalescence
)

// String implements fmt.Stringer.
func (k EventKind) String() string {
	if k == Sample {
		return "sample"
	}

	return "coalescence"
}

// CFEvent is one clonal frame event. LineageCount is the number of
// lineages extant between this event and the next one; it is 1 for the
// final (root) event.
type CFEvent struct {
	Height       float64
	LineageCount int
	Kind         EventKind
	Node         int
}

// computeCFEvents merges leaf and internal node heights into one ascending
// list. Ties put samples first, then lower node indices.
// Complexity: O(N log N).
func computeCFEvents(t *tree.Tree) []CFEvent {
	events := make([]CFEvent, t.NodeCount())
	for i := range events {
		kind := Coalescence
		if t.IsLeaf(i) {
			kind = Sample
		}
		events[i] = CFEvent{Height: t.Height(i), Kind: kind, Node: i}
	}
	sort.Slice(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if a.Height != b.Height {
			return a.Height < b.Height
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		return a.Node < b.Node
	})
	k := 0
	for i := range events {
		if events[i].Kind == Sample {
			k++
		} else {
			k--
		}
		events[i].LineageCount = k
	}

	return events
}
