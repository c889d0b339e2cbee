package interval

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wjy123009/gatk/internal/genome"
)

func iv(contig, start, end int32) genome.Interval {
	return genome.Interval{ContigID: contig, Start: start, End: end}
}

func values(entries []Entry[uint64]) map[uint64]bool {
	got := map[uint64]bool{}
	for _, e := range entries {
		got[e.Value] = true
	}
	return got
}

func TestTreeEmpty(t *testing.T) {
	tree := NewTree[uint64]()
	assert.Zero(t, tree.Len())
	assert.Empty(t, tree.Overlappers(iv(0, 1, 100)))
}

func TestTreeSingleEntry(t *testing.T) {
	tree := NewTree[uint64]()
	tree.Put(iv(0, 100, 200), 7)

	assert.Len(t, tree.Overlappers(iv(0, 150, 150)), 1)
	assert.Len(t, tree.Overlappers(iv(0, 100, 100)), 1, "start boundary inclusive")
	assert.Len(t, tree.Overlappers(iv(0, 200, 200)), 1, "end boundary inclusive")
	assert.Empty(t, tree.Overlappers(iv(0, 99, 99)), "before start")
	assert.Empty(t, tree.Overlappers(iv(0, 201, 300)), "after end")
	assert.Empty(t, tree.Overlappers(iv(1, 150, 150)), "other contig")
}

func TestTreeOverlapping(t *testing.T) {
	tree := NewTree[uint64]()
	tree.Put(iv(0, 100, 300), 1)
	tree.Put(iv(0, 150, 250), 2)
	tree.Put(iv(0, 200, 400), 3)

	got := values(tree.Overlappers(iv(0, 170, 180)))
	assert.Equal(t, map[uint64]bool{1: true, 2: true}, got)

	got = values(tree.Overlappers(iv(0, 250, 250)))
	assert.Equal(t, map[uint64]bool{1: true, 2: true, 3: true}, got)

	got = values(tree.Overlappers(iv(0, 350, 360)))
	assert.Equal(t, map[uint64]bool{3: true}, got)
}

func TestTreeLongIntervalNotPruned(t *testing.T) {
	// A long interval with a small start must survive pruning when later
	// starts carry small ends.
	tree := NewTree[uint64]()
	tree.Put(iv(0, 1, 1000), 1)
	tree.Put(iv(0, 50, 60), 2)
	tree.Put(iv(0, 70, 80), 3)

	got := values(tree.Overlappers(iv(0, 900, 900)))
	assert.Equal(t, map[uint64]bool{1: true}, got)
}

func TestTreePutReplacesEqualInterval(t *testing.T) {
	tree := NewTree[uint64]()
	tree.Put(iv(0, 100, 200), 1)
	tree.Put(iv(0, 100, 200), 2)

	assert.Equal(t, 1, tree.Len())
	entries := tree.Overlappers(iv(0, 100, 200))
	assert.Len(t, entries, 1)
	assert.Equal(t, uint64(2), entries[0].Value, "latest put wins")
}

func TestTreeContigsIsolated(t *testing.T) {
	tree := NewTree[uint64]()
	tree.Put(iv(0, 100, 200), 1)
	tree.Put(iv(1, 100, 200), 2)
	tree.Put(iv(1, 300, 400), 3)

	assert.Equal(t, map[uint64]bool{1: true}, values(tree.Overlappers(iv(0, 150, 150))))
	assert.Equal(t, map[uint64]bool{2: true}, values(tree.Overlappers(iv(1, 150, 150))))
	assert.Empty(t, tree.Overlappers(iv(2, 150, 150)))
}

func TestTreePutAfterQuery(t *testing.T) {
	tree := NewTree[uint64]()
	tree.Put(iv(0, 100, 200), 1)
	assert.Len(t, tree.Overlappers(iv(0, 150, 150)), 1)

	tree.Put(iv(0, 140, 160), 2)
	assert.Len(t, tree.Overlappers(iv(0, 150, 150)), 2, "rebuild picks up later puts")
}

func TestTreeMatchesLinearScan(t *testing.T) {
	intervals := []genome.Interval{
		iv(0, 1000, 5000),
		iv(0, 2000, 3000),
		iv(0, 4000, 8000),
		iv(0, 6000, 7000),
		iv(0, 9000, 10000),
		iv(1, 1000, 2000),
		iv(1, 1500, 9000),
	}
	tree := NewTree[uint64]()
	for i, in := range intervals {
		tree.Put(in, uint64(i))
	}

	for contig := int32(0); contig <= 1; contig++ {
		for pos := int32(500); pos <= 11000; pos += 250 {
			q := iv(contig, pos, pos+400)

			want := map[uint64]bool{}
			for i, in := range intervals {
				if in.Overlaps(q) {
					want[uint64(i)] = true
				}
			}

			entries := tree.Overlappers(q)
			assert.Len(t, entries, len(want), "query %v", q)
			assert.Equal(t, want, values(entries), "query %v", q)
		}
	}
}
