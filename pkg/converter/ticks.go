package converter

import (
	"sort"

	"golang.org/x/exp/constraints"
)

// keyRange returns the smallest and largest key of m; ok is false for an empty map
func keyRange[K constraints.Integer, V any](m map[K]V) (lo, hi K, ok bool) {
	for k := range m {
		if !ok {
			lo, hi, ok = k, k, true
			continue
		}
		if k < lo {
			lo = k
		}
		if k > hi {
			hi = k
		}
	}
	return lo, hi, ok
}

// sortedKeys returns the keys of m in ascending order
func sortedKeys[K constraints.Ordered, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Span returns the first and last tick holding notes; ok is false when there are none
func (b TickBuckets) Span() (first, last int, ok bool) {
	return keyRange(b)
}

// Count returns the number of notes in the buckets
func (b TickBuckets) Count() int {
	n := 0
	for _, notes := range b {
		n += len(notes)
	}
	return n
}

// Stats counts notes by kind and sizes the grid without rendering it
func (b TickBuckets) Stats() GridStats {
	var stats GridStats
	if _, last, ok := b.Span(); ok {
		stats.Rows = last + 1
	}
	for _, notes := range b {
		for _, n := range notes {
			switch n.Kind {
			case Tap:
				stats.Taps++
			case Start:
				stats.Starts++
			case End:
				stats.Ends++
			}
		}
	}
	return stats
}

// Rows returns the row count of the longest grid in the chart
func (c *Chart) Rows() int {
	rows := 0
	for _, b := range c.Tracks {
		if _, last, ok := b.Span(); ok && last+1 > rows {
			rows = last + 1
		}
	}
	return rows
}
