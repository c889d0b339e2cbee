// Package bci reads and writes block-compressed interval streams: BGZF
// containers holding a coordinate-sorted sequence of records, each bearing a
// genomic interval, with an embedded spatial index that maps block coverage
// intervals to block file offsets. The index offset is recovered from the
// final empty BGZF block, which makes the files self-describing.
package bci

import (
	"errors"
	"io"

	"github.com/wjy123009/gatk/internal/genome"
)

// Extension is the conventional file extension of a block-compressed
// interval stream.
const Extension = ".bci"

var (
	// ErrNotSorted is returned when a record is written out of collating
	// order. The writer's state is undefined afterwards.
	ErrNotSorted = errors.New("bci: records not coordinate sorted")
	// ErrCorruptTrailer is returned when the final block of a file does not
	// match the trailer template.
	ErrCorruptTrailer = errors.New("bci: corrupt trailer block")
	// ErrCorruptIndex is returned when the index section cannot be decoded.
	ErrCorruptIndex = errors.New("bci: corrupt index")
	// ErrClassMismatch is returned when a file's class tag does not match
	// the record type requested by the reader.
	ErrClassMismatch = errors.New("bci: record class mismatch")
)

// Feature is any record that bears a collating interval.
type Feature interface {
	Interval() genome.Interval
}

// WriteFunc serializes one record to w and returns its collating interval.
// The callback must not seek, and must write a byte layout its DecodeFunc
// counterpart consumes exactly.
type WriteFunc[T Feature] func(w io.Writer, rec T) (genome.Interval, error)

// DecodeFunc reads exactly one record from the reader's stream. The reader
// argument gives access to the decompressed stream and the dictionary.
type DecodeFunc[T Feature] func(r *Reader[T]) (T, error)
