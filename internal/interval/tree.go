// Package interval provides an in-memory map from genomic intervals to
// values with overlap enumeration.
package interval

import (
	"sort"

	"github.com/wjy123009/gatk/internal/genome"
)

// Entry is a stored (interval, value) pair.
type Entry[V any] struct {
	Interval genome.Interval
	Value    V
}

// Tree maps collating intervals to values and answers overlap queries with a
// binary search over a sorted slice and a backward scan that a running
// max-end array cuts short; entries that end before the query but lie under
// a longer earlier interval are still visited by the scan. The slice
// is rebuilt lazily on the first query after a Put, which suits the
// load-once query-many index use.
type Tree[V any] struct {
	entries []Entry[V]
	maxEnd  []int32 // maxEnd[i] = max(End) over entries[j..i] on entries[i]'s contig
	dirty   bool
}

// NewTree returns an empty tree.
func NewTree[V any]() *Tree[V] {
	return &Tree[V]{}
}

// Put stores value under the given interval. Storing an interval equal to
// one already present replaces its value.
func (t *Tree[V]) Put(iv genome.Interval, value V) {
	t.entries = append(t.entries, Entry[V]{Interval: iv, Value: value})
	t.dirty = true
}

// Len returns the number of distinct intervals stored.
func (t *Tree[V]) Len() int {
	t.rebuild()
	return len(t.entries)
}

// Entries returns all stored entries in collating order. The slice must not
// be modified.
func (t *Tree[V]) Entries() []Entry[V] {
	t.rebuild()
	return t.entries
}

// Overlappers returns every stored entry whose interval overlaps q, without
// duplicates. Order of the result is unspecified.
func (t *Tree[V]) Overlappers(q genome.Interval) []Entry[V] {
	t.rebuild()
	if len(t.entries) == 0 {
		return nil
	}

	// Candidates lie in the query's contig segment with start <= q.End.
	hi := sort.Search(len(t.entries), func(i int) bool {
		iv := t.entries[i].Interval
		return iv.ContigID > q.ContigID || (iv.ContigID == q.ContigID && iv.Start > q.End)
	})

	var result []Entry[V]
	for i := hi - 1; i >= 0; i-- {
		iv := t.entries[i].Interval
		if iv.ContigID != q.ContigID {
			break
		}
		// maxEnd[i] bounds every end at or before i on this contig, so
		// once it drops below q.Start nothing earlier can overlap.
		if t.maxEnd[i] < q.Start {
			break
		}
		if iv.End >= q.Start {
			result = append(result, t.entries[i])
		}
	}
	return result
}

// rebuild sorts entries, drops superseded duplicates, and recomputes the
// running max-end array.
func (t *Tree[V]) rebuild() {
	if !t.dirty {
		return
	}
	t.dirty = false

	sort.SliceStable(t.entries, func(i, j int) bool {
		return t.entries[i].Interval.Compare(t.entries[j].Interval) < 0
	})

	// Equal intervals: the latest Put wins. SliceStable keeps insertion
	// order among equals, so the last of each run survives.
	out := t.entries[:0]
	for i, e := range t.entries {
		if i+1 < len(t.entries) && t.entries[i+1].Interval.Compare(e.Interval) == 0 {
			continue
		}
		out = append(out, e)
	}
	t.entries = out

	t.maxEnd = make([]int32, len(t.entries))
	for i, e := range t.entries {
		t.maxEnd[i] = e.Interval.End
		if i > 0 && t.entries[i-1].Interval.ContigID == e.Interval.ContigID && t.maxEnd[i-1] > t.maxEnd[i] {
			t.maxEnd[i] = t.maxEnd[i-1]
		}
	}
}
