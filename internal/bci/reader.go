package bci

import (
	"fmt"
	"io"
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/wjy123009/gatk/internal/genome"
	"github.com/wjy123009/gatk/internal/interval"
)

// sharedIndex is the at-most-once-loaded spatial index, shared by a reader
// and all of its clones. The mutex makes publication atomic under racing
// first queries.
type sharedIndex struct {
	mu   sync.Mutex
	tree *interval.Tree[VirtualOffset]
}

// Reader reads a block-compressed interval stream. Open recovers the index
// offset from the trailer and reads the header; the index itself is loaded
// lazily on the first query and shared with clones thereafter.
//
// A Reader owns one decompression cursor, so it supports one iteration at a
// time; Iterator and Query hand out clones with independent cursors, which
// may be consumed concurrently.
type Reader[T Feature] struct {
	path     string
	decode   DecodeFunc[T]
	indexPos VirtualOffset
	cur      *cursor
	class    string
	version  string
	dict     *genome.Dictionary
	dataPos  VirtualOffset
	index    *sharedIndex
	logger   *zap.Logger
}

// Open opens path, verifies its trailer, and reads the header. The file's
// class tag must equal class, or Open fails with ErrClassMismatch.
func Open[T Feature](path, class string, decode DecodeFunc[T]) (*Reader[T], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("bci: open %s: %w", path, err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("bci: open %s: %w", path, err)
	}
	indexPos, err := readTrailer(f, st.Size())
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	cur, err := newCursor(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("bci: open %s: %w", path, err)
	}
	r := &Reader[T]{
		path:     path,
		decode:   decode,
		indexPos: indexPos,
		cur:      cur,
		index:    &sharedIndex{},
		logger:   zap.NewNop(),
	}
	if err := r.readHeader(class); err != nil {
		cur.close()
		return nil, err
	}
	return r, nil
}

func (r *Reader[T]) readHeader(class string) error {
	var err error
	if r.class, err = readString(r.cur); err != nil {
		return fmt.Errorf("bci: read class tag from %s: %w", r.path, err)
	}
	if r.version, err = readString(r.cur); err != nil {
		return fmt.Errorf("bci: read version tag from %s: %w", r.path, err)
	}
	if r.class != class {
		return fmt.Errorf("%w: %s contains %s records, want %s", ErrClassMismatch, r.path, r.class, class)
	}
	if r.dict, err = readDictionary(r.cur); err != nil {
		return fmt.Errorf("bci: read dictionary from %s: %w", r.path, err)
	}
	// The header block was sealed by the writer; peek past its boundary so
	// dataPos addresses the first payload block.
	if _, err := r.cur.peek(); err != nil {
		return fmt.Errorf("bci: read %s: %w", r.path, err)
	}
	r.dataPos = r.cur.position()
	return nil
}

// Clone returns a reader with an independent cursor sharing the dictionary,
// header metadata, and the (lazily loaded) index.
func (r *Reader[T]) Clone() (*Reader[T], error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("bci: clone %s: %w", r.path, err)
	}
	cur, err := newCursor(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("bci: clone %s: %w", r.path, err)
	}
	return &Reader[T]{
		path:     r.path,
		decode:   r.decode,
		indexPos: r.indexPos,
		cur:      cur,
		class:    r.class,
		version:  r.version,
		dict:     r.dict,
		dataPos:  r.dataPos,
		index:    r.index,
		logger:   r.logger,
	}, nil
}

// SetLogger sets the logger for debug messages. Clones inherit the logger
// set at clone time.
func (r *Reader[T]) SetLogger(l *zap.Logger) {
	r.logger = l
}

// Dictionary returns the dictionary read from the file header.
func (r *Reader[T]) Dictionary() *genome.Dictionary { return r.dict }

// Class returns the file's record class tag.
func (r *Reader[T]) Class() string { return r.class }

// Version returns the file's version tag.
func (r *Reader[T]) Version() string { return r.version }

// SequenceNames returns the dictionary's contig names. Names may include
// contigs that no record in the file touches.
func (r *Reader[T]) SequenceNames() []string { return r.dict.Names() }

// IndexOffset returns the virtual offset of the index section.
func (r *Reader[T]) IndexOffset() VirtualOffset { return r.indexPos }

// DataOffset returns the virtual offset of the first payload block.
func (r *Reader[T]) DataOffset() VirtualOffset { return r.dataPos }

// Stream returns the decompressed stream for DecodeFunc implementations.
func (r *Reader[T]) Stream() io.Reader { return r.cur }

// Close releases the reader's cursor. The shared index, if loaded, remains
// usable by clones.
func (r *Reader[T]) Close() error {
	return r.cur.close()
}

// Iterator returns an iterator over every record in file order. The
// iterator owns a clone; Close releases it.
func (r *Reader[T]) Iterator() (*Iterator[T], error) {
	clone, err := r.Clone()
	if err != nil {
		return nil, err
	}
	if err := clone.seek(clone.dataPos); err != nil {
		clone.Close()
		return nil, err
	}
	return &Iterator[T]{r: clone}, nil
}

// Query returns an iterator over records overlapping the given 1-based
// closed range, loading the shared index on first use. Yield order follows
// index enumeration across blocks and file order within a block.
func (r *Reader[T]) Query(contig string, start, end int32) (*QueryIterator[T], error) {
	tree, err := r.ensureIndex()
	if err != nil {
		return nil, err
	}
	q, err := genome.NewInterval(r.dict, contig, start, end)
	if err != nil {
		return nil, err
	}
	clone, err := r.Clone()
	if err != nil {
		return nil, err
	}
	return &QueryIterator[T]{
		r:       clone,
		query:   q,
		entries: tree.Overlappers(q),
	}, nil
}

// ensureIndex loads and publishes the shared index exactly once.
func (r *Reader[T]) ensureIndex() (*interval.Tree[VirtualOffset], error) {
	r.index.mu.Lock()
	defer r.index.mu.Unlock()
	if r.index.tree != nil {
		return r.index.tree, nil
	}

	if err := r.seek(r.indexPos); err != nil {
		return nil, err
	}
	n, err := readUint32(r.cur)
	if err != nil {
		return nil, fmt.Errorf("bci: read index from %s: %w", r.path, err)
	}
	tree := interval.NewTree[VirtualOffset]()
	for i := uint32(0); i < n; i++ {
		e, err := readIndexEntry(r.cur, r.dict)
		if err != nil {
			return nil, fmt.Errorf("bci: read index from %s: %w", r.path, err)
		}
		tree.Put(e.Interval, e.Position)
	}
	if err := r.seek(r.dataPos); err != nil {
		return nil, err
	}

	r.index.tree = tree
	r.logger.Debug("loaded interval stream index",
		zap.String("path", r.path),
		zap.Int("entries", tree.Len()))
	return tree, nil
}

// hasNext reports whether the cursor stands before another payload record.
func (r *Reader[T]) hasNext() (bool, error) {
	ok, err := r.cur.peek()
	if err != nil {
		return false, fmt.Errorf("bci: read %s: %w", r.path, err)
	}
	if !ok {
		return false, nil
	}
	pos := r.cur.position()
	return pos > 0 && pos < r.indexPos, nil
}

func (r *Reader[T]) read() (T, error) {
	rec, err := r.decode(r)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("bci: read %s: %w", r.path, err)
	}
	return rec, nil
}

func (r *Reader[T]) failf(err error) error {
	return fmt.Errorf("bci: read %s: %w", r.path, err)
}

func (r *Reader[T]) seek(v VirtualOffset) error {
	if err := r.cur.seek(v); err != nil {
		return fmt.Errorf("bci: seek %s to %v: %w", r.path, v, err)
	}
	return nil
}
