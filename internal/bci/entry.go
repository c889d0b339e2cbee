package bci

import (
	"fmt"
	"io"

	"github.com/wjy123009/gatk/internal/genome"
)

// IndexEntry maps one (block, contig) span to the virtual offset of the
// first record that began serializing inside that block for that contig.
// The interval is the tightest [min start, max end] over those records.
type IndexEntry struct {
	Interval genome.Interval
	Position VirtualOffset
}

// write emits the 20-byte wire form: the interval followed by the virtual
// offset as a big-endian 64-bit integer.
func (e IndexEntry) write(w io.Writer) error {
	if err := e.Interval.Write(w); err != nil {
		return err
	}
	return writeUint64(w, uint64(e.Position))
}

// readIndexEntry reads one entry, resolving its contig against the
// dictionary.
func readIndexEntry(r io.Reader, d *genome.Dictionary) (IndexEntry, error) {
	iv, err := genome.ReadInterval(r)
	if err != nil {
		return IndexEntry{}, err
	}
	c, err := d.Contig(iv.ContigID)
	if err != nil {
		return IndexEntry{}, fmt.Errorf("%w: %v", ErrCorruptIndex, err)
	}
	if iv.Start < 1 || iv.End < iv.Start || iv.End > c.Length {
		return IndexEntry{}, fmt.Errorf("%w: interval %v exceeds %s bounds", ErrCorruptIndex, iv, c.Name)
	}
	pos, err := readUint64(r)
	if err != nil {
		return IndexEntry{}, err
	}
	return IndexEntry{Interval: iv, Position: VirtualOffset(pos)}, nil
}
