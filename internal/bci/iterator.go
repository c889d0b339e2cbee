package bci

import (
	"github.com/wjy123009/gatk/internal/genome"
	"github.com/wjy123009/gatk/internal/interval"
)

// Iterator scans every record of a stream in file order.
//
//	it, err := r.Iterator()
//	for it.Next() {
//		rec := it.Record()
//	}
//	err = it.Err()
//	it.Close()
type Iterator[T Feature] struct {
	r    *Reader[T]
	rec  T
	err  error
	done bool
}

// Next advances to the next record, returning false at end of stream or on
// error.
func (it *Iterator[T]) Next() bool {
	if it.done || it.err != nil {
		return false
	}
	ok, err := it.r.hasNext()
	if err != nil {
		it.err = err
		return false
	}
	if !ok {
		it.done = true
		return false
	}
	rec, err := it.r.read()
	if err != nil {
		it.err = err
		return false
	}
	it.rec = rec
	return true
}

// Record returns the record Next advanced to.
func (it *Iterator[T]) Record() T { return it.rec }

// Err returns the first error encountered, if any.
func (it *Iterator[T]) Err() error { return it.err }

// Close releases the iterator's cursor.
func (it *Iterator[T]) Close() error {
	it.done = true
	return it.r.Close()
}

// QueryIterator yields the records overlapping a query interval, inflating
// only blocks the index marks as relevant. Blocks are visited in index
// enumeration order, so there is no total coordinate order across blocks;
// within a block records come out in file order.
type QueryIterator[T Feature] struct {
	r       *Reader[T]
	query   genome.Interval
	entries []interval.Entry[VirtualOffset]
	nextIdx int

	inBlock  bool
	blockPos VirtualOffset

	rec  T
	err  error
	done bool
}

// Interval returns the query interval.
func (it *QueryIterator[T]) Interval() genome.Interval { return it.query }

// Next advances to the next overlapping record, returning false when every
// relevant block is exhausted or on error.
func (it *QueryIterator[T]) Next() bool {
	if it.done || it.err != nil {
		return false
	}
	for {
		if !it.inBlock {
			if it.nextIdx >= len(it.entries) {
				it.done = true
				return false
			}
			e := it.entries[it.nextIdx]
			it.nextIdx++
			if !it.enterBlock(e.Value) {
				return false
			}
			continue
		}

		// Leaving the tracked block ends this entry's scan; the position
		// is normalized by the peek so the 48-bit comparison is exact.
		ok, err := it.r.cur.peek()
		if err != nil {
			it.err = it.r.failf(err)
			return false
		}
		if !ok || !SameBlock(it.blockPos, it.r.cur.position()) {
			it.inBlock = false
			continue
		}

		rec, err := it.r.read()
		if err != nil {
			it.err = err
			return false
		}
		riv := rec.Interval()
		// Records are sorted within the stream: once one lies past the
		// query, nothing later in this block can overlap.
		if it.query.UpstreamOf(riv) {
			it.inBlock = false
			continue
		}
		if riv.Overlaps(it.query) {
			it.rec = rec
			return true
		}
	}
}

// enterBlock positions the cursor for an index entry, seeking only when the
// cursor is in a different compressed block.
func (it *QueryIterator[T]) enterBlock(pos VirtualOffset) bool {
	ok, err := it.r.cur.peek()
	if err != nil {
		it.err = it.r.failf(err)
		return false
	}
	if !ok || !SameBlock(pos, it.r.cur.position()) {
		if err := it.r.seek(pos); err != nil {
			it.err = err
			return false
		}
	}
	it.blockPos = pos
	it.inBlock = true
	return true
}

// Record returns the record Next advanced to.
func (it *QueryIterator[T]) Record() T { return it.rec }

// Err returns the first error encountered, if any.
func (it *QueryIterator[T]) Err() error { return it.err }

// Close releases the iterator's cursor. Partial iteration leaves no state
// behind.
func (it *QueryIterator[T]) Close() error {
	it.done = true
	return it.r.Close()
}
