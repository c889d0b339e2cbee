package bci

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/wjy123009/gatk/internal/genome"
)

// Writer writes a coordinate-sorted stream of records to a block-compressed
// interval stream, accumulating one index entry per (block, contig) span as
// block boundaries are observed. Close emits the index section and the
// trailer block; a file without a successful Close is unreadable.
//
// A Writer is owned by a single producer; it is not safe for concurrent
// use.
type Writer[T Feature] struct {
	path      string
	dict      *genome.Dictionary
	f         *os.File
	bw        *blockWriter
	writeFunc WriteFunc[T]
	logger    *zap.Logger

	last    *genome.Interval
	entries []IndexEntry

	// Tracking state for the block currently being filled.
	blockPos    VirtualOffset
	blockContig int32
	blockStart  int32
	blockEnd    int32
	firstMember bool

	closed bool
}

// NewWriter creates the file at path and emits the stream header: the class
// tag naming the record type, the version tag, and the dictionary. The
// header block is sealed so that payload blocks start on a fresh boundary.
func NewWriter[T Feature](path string, dict *genome.Dictionary, class, version string, writeFunc WriteFunc[T]) (*Writer[T], error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("bci: create %s: %w", path, err)
	}
	w := &Writer[T]{
		path:        path,
		dict:        dict,
		f:           f,
		bw:          newBlockWriter(f),
		writeFunc:   writeFunc,
		logger:      zap.NewNop(),
		firstMember: true,
	}
	if err := w.writeHeader(class, version); err != nil {
		w.bw.close()
		f.Close()
		return nil, err
	}
	return w, nil
}

// SetLogger sets the logger for debug messages.
func (w *Writer[T]) SetLogger(l *zap.Logger) {
	w.logger = l
}

// Dictionary returns the dictionary the stream was created with.
func (w *Writer[T]) Dictionary() *genome.Dictionary { return w.dict }

func (w *Writer[T]) writeHeader(class, version string) error {
	if err := writeString(w.bw, class); err != nil {
		return w.failf("write class tag to", err)
	}
	if err := writeString(w.bw, version); err != nil {
		return w.failf("write version tag to", err)
	}
	if err := writeDictionary(w.bw, w.dict); err != nil {
		return w.failf("write dictionary to", err)
	}
	if err := w.bw.flush(); err != nil {
		return w.failf("write header to", err)
	}
	return nil
}

// Write appends one record. Records must arrive in non-decreasing collating
// order; a violation returns ErrNotSorted and leaves the writer state
// undefined.
func (w *Writer[T]) Write(rec T) error {
	before, err := w.bw.position()
	if err != nil {
		return w.failf("write to", err)
	}

	cw := &countingWriter{w: w.bw}
	iv, err := w.writeFunc(cw, rec)
	if err != nil {
		return w.failf("write record to", err)
	}
	if w.last != nil && iv.Compare(*w.last) < 0 {
		return fmt.Errorf("%w: %v after %v in %s", ErrNotSorted, iv, *w.last, w.path)
	}
	after, err := w.bw.position()
	if err != nil {
		return w.failf("write to", err)
	}
	// A record that does not fit in the open block lands whole at the start
	// of the next one, so its block span begins there.
	if !SameBlock(before, after) && int64(after.Block()) == cw.n {
		if !w.firstMember {
			w.addIndexEntry()
		}
		w.firstMember = true
		before = MakeVirtualOffset(after.File(), 0)
	}

	// The first record of a block just starts the tracking state.
	if w.firstMember || w.last == nil {
		w.startBlock(before, iv)
		return nil
	}

	// A contig change within a block closes out the previous contig's
	// entry and restarts tracking at this record's offset.
	if iv.ContigID != w.blockContig {
		w.addIndexEntry()
		w.startBlock(before, iv)
		return nil
	}

	if iv.End > w.blockEnd {
		w.blockEnd = iv.End
	}
	w.setLast(iv)

	// If this record's bytes spilled into a fresh block, the tracked span
	// is complete.
	if !SameBlock(before, after) {
		w.addIndexEntry()
		w.firstMember = true
	}
	return nil
}

// Close appends any pending index entry, writes the index section, and
// terminates the file with the trailer block carrying the index offset.
func (w *Writer[T]) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	err := w.finish()
	if cerr := w.bw.close(); err == nil && cerr != nil {
		err = w.failf("close", cerr)
	}
	if cerr := w.f.Close(); err == nil && cerr != nil {
		err = w.failf("close", cerr)
	}
	return err
}

func (w *Writer[T]) finish() error {
	if !w.firstMember {
		w.addIndexEntry()
	}

	// Seal the last payload block; the position observed next is the start
	// of the index section.
	if err := w.bw.flush(); err != nil {
		return w.failf("close", err)
	}
	indexPos, err := w.bw.position()
	if err != nil {
		return w.failf("close", err)
	}

	if err := writeUint32(w.bw, uint32(len(w.entries))); err != nil {
		return w.failf("write index to", err)
	}
	for _, e := range w.entries {
		if err := e.write(w.bw); err != nil {
			return w.failf("write index to", err)
		}
	}
	if err := w.bw.flush(); err != nil {
		return w.failf("write index to", err)
	}
	if err := w.bw.close(); err != nil {
		return w.failf("close", err)
	}

	// The terminator is a prebuilt empty BGZF block; it bypasses the
	// compressor so its bytes land in the file exactly as templated.
	if err := w.bw.writeRaw(trailerBlock(indexPos)); err != nil {
		return w.failf("write trailer to", err)
	}

	w.logger.Debug("closed interval stream",
		zap.String("path", w.path),
		zap.Int("indexEntries", len(w.entries)),
		zap.Stringer("indexOffset", indexPos))
	return nil
}

func (w *Writer[T]) startBlock(pos VirtualOffset, iv genome.Interval) {
	w.blockPos = pos
	w.setLast(iv)
	w.blockContig = iv.ContigID
	w.blockStart = iv.Start
	w.blockEnd = iv.End
	w.firstMember = false
}

func (w *Writer[T]) addIndexEntry() {
	span := genome.Interval{ContigID: w.blockContig, Start: w.blockStart, End: w.blockEnd}
	w.entries = append(w.entries, IndexEntry{Interval: span, Position: w.blockPos})
}

func (w *Writer[T]) setLast(iv genome.Interval) {
	w.last = &iv
}

func (w *Writer[T]) failf(op string, err error) error {
	return fmt.Errorf("bci: %s %s: %w", op, w.path, err)
}
