package bci

import (
	"io"
	"os"

	"github.com/biogo/hts/bgzf"
)

// countingWriter tracks compressed bytes handed to the underlying stream.
// Once the BGZF writer's queue is drained, the count is the file offset at
// which the next compressed block will begin. With discard set, writes are
// swallowed: that is how the BGZF layer's own empty blocks and terminator
// are kept out of the file during shutdown.
type countingWriter struct {
	w       io.Writer
	n       int64
	discard bool
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	if cw.discard {
		return len(p), nil
	}
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}

// blockWriter adapts the BGZF writer to the stream's needs: observing the
// current virtual offset, sealing blocks, and appending raw bytes for the
// terminator block.
type blockWriter struct {
	cw     *countingWriter
	bg     *bgzf.Writer
	closed bool
}

func newBlockWriter(w io.Writer) *blockWriter {
	cw := &countingWriter{w: w}
	return &blockWriter{cw: cw, bg: bgzf.NewWriter(cw, 1)}
}

func (bw *blockWriter) Write(p []byte) (int, error) {
	return bw.bg.Write(p)
}

// position returns the virtual offset at which the next written byte will
// land. Wait fences any queued block compressions so the compressed byte
// count is exactly the current block's file offset.
func (bw *blockWriter) position() (VirtualOffset, error) {
	if err := bw.bg.Wait(); err != nil {
		return 0, err
	}
	next, err := bw.bg.Next()
	if err != nil {
		return 0, err
	}
	return MakeVirtualOffset(bw.cw.n, uint16(next)), nil
}

// flush seals the current block and waits until it reaches the underlying
// stream.
func (bw *blockWriter) flush() error {
	if err := bw.bg.Flush(); err != nil {
		return err
	}
	return bw.bg.Wait()
}

// close shuts the BGZF writer down after a final flush. Anything it emits
// past that point is empty blocks and its standard terminator, none of
// which belong in the file: the stream ends with its own trailer block
// instead.
func (bw *blockWriter) close() error {
	if bw.closed {
		return nil
	}
	bw.closed = true
	bw.cw.discard = true
	err := bw.bg.Close()
	bw.cw.discard = false
	return err
}

// writeRaw appends bytes to the underlying stream, bypassing the
// compressor. Callers must flush first.
func (bw *blockWriter) writeRaw(p []byte) error {
	_, err := bw.cw.Write(p)
	return err
}

// cursor adapts the BGZF reader: it tracks the virtual offset of the next
// byte to be delivered and normalizes positions at block boundaries. The
// BGZF layer leaves the position at the end of an exhausted block until the
// next read; a one-byte lookahead forces the transition so that positions
// compare correctly against block starts.
type cursor struct {
	f          *os.File
	bg         *bgzf.Reader
	pending    byte
	hasPending bool
	closed     bool
}

func newCursor(f *os.File) (*cursor, error) {
	bg, err := bgzf.NewReader(f, 1)
	if err != nil {
		return nil, err
	}
	return &cursor{f: f, bg: bg}, nil
}

// Read serves the lookahead byte first, then reads from the BGZF stream.
func (c *cursor) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if c.hasPending {
		p[0] = c.pending
		c.hasPending = false
		if len(p) == 1 {
			return 1, nil
		}
		n, err := c.bg.Read(p[1:])
		return n + 1, err
	}
	return c.bg.Read(p)
}

// peek buffers one byte so that position reflects the block that byte lives
// in. Returns false at end of stream.
func (c *cursor) peek() (bool, error) {
	if c.hasPending {
		return true, nil
	}
	var b [1]byte
	if _, err := io.ReadFull(c.bg, b[:]); err != nil {
		if err == io.EOF {
			return false, nil
		}
		return false, err
	}
	c.pending = b[0]
	c.hasPending = true
	return true, nil
}

// position returns the virtual offset of the next byte Read will deliver,
// or 0 once the cursor is closed.
func (c *cursor) position() VirtualOffset {
	if c.closed {
		return 0
	}
	end := c.bg.LastChunk().End
	v := MakeVirtualOffset(end.File, end.Block)
	if c.hasPending {
		// The pending byte came from the offset just before End, always
		// within End's block.
		v--
	}
	return v
}

func (c *cursor) seek(v VirtualOffset) error {
	c.hasPending = false
	return c.bg.Seek(bgzf.Offset{File: v.File(), Block: v.Block()})
}

func (c *cursor) close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	err := c.bg.Close()
	if cerr := c.f.Close(); err == nil {
		err = cerr
	}
	return err
}
