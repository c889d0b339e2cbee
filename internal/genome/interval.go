package genome

import (
	"encoding/binary"
	"fmt"
	"io"
)

// IntervalSize is the fixed wire size of an interval: three big-endian
// 32-bit integers.
const IntervalSize = 12

// Interval is a collating interval: a 1-based closed coordinate range on a
// single contig, identified by the contig's dictionary index. Intervals
// order lexicographically by (contig, start, end), which is the collation
// order of records in a block-compressed interval stream.
type Interval struct {
	ContigID int32
	Start    int32
	End      int32
}

// NewInterval constructs a bounds-checked interval from a contig name.
func NewInterval(d *Dictionary, name string, start, end int32) (Interval, error) {
	c, err := d.ByName(name)
	if err != nil {
		return Interval{}, err
	}
	return MakeInterval(c, start, end)
}

// MakeInterval constructs a bounds-checked interval on the given contig.
func MakeInterval(c Contig, start, end int32) (Interval, error) {
	if start < 1 || start > c.Length {
		return Interval{}, fmt.Errorf("start %d on %s (length %d): %w", start, c.Name, c.Length, ErrOutOfBounds)
	}
	if end < start || end > c.Length {
		return Interval{}, fmt.Errorf("end %d on %s (start %d, length %d): %w", end, c.Name, start, c.Length, ErrOutOfBounds)
	}
	return Interval{ContigID: c.Index, Start: start, End: end}, nil
}

// ContigsMatch reports whether both intervals lie on the same contig.
func (i Interval) ContigsMatch(o Interval) bool { return i.ContigID == o.ContigID }

// Overlaps reports whether the intervals share at least one position.
func (i Interval) Overlaps(o Interval) bool {
	return i.ContigsMatch(o) && i.Start <= o.End && o.Start <= i.End
}

// Contains reports whether o lies entirely within i.
func (i Interval) Contains(o Interval) bool {
	return i.ContigsMatch(o) && o.Start >= i.Start && o.End <= i.End
}

// UpstreamOf reports whether i ends strictly before o begins: on an earlier
// contig, or on the same contig with i.End < o.Start. Once a reader sees a
// record downstream of its query, no later record in sorted order can
// overlap the query.
func (i Interval) UpstreamOf(o Interval) bool {
	if i.ContigID < o.ContigID {
		return true
	}
	return i.ContigID == o.ContigID && i.End < o.Start
}

// Compare orders intervals by (contig, start, end).
func (i Interval) Compare(o Interval) int {
	switch {
	case i.ContigID != o.ContigID:
		if i.ContigID < o.ContigID {
			return -1
		}
		return 1
	case i.Start != o.Start:
		if i.Start < o.Start {
			return -1
		}
		return 1
	case i.End != o.End:
		if i.End < o.End {
			return -1
		}
		return 1
	}
	return 0
}

// Hash returns the interval's hash. The formula is shared with other
// implementations of the format and must not change.
func (i Interval) Hash() uint32 {
	return 241*(241*(241*uint32(i.ContigID)+uint32(i.Start))+uint32(i.End))
}

// Name returns the interval's contig name under the given dictionary.
func (i Interval) Name(d *Dictionary) string {
	c, err := d.Contig(i.ContigID)
	if err != nil {
		return fmt.Sprintf("contig#%d", i.ContigID)
	}
	return c.Name
}

func (i Interval) String() string {
	return fmt.Sprintf("%d:%d-%d", i.ContigID, i.Start, i.End)
}

// Write emits the 12-byte wire form: contig index, start, end, each as a
// big-endian 32-bit integer.
func (i Interval) Write(w io.Writer) error {
	var buf [IntervalSize]byte
	binary.BigEndian.PutUint32(buf[0:4], uint32(i.ContigID))
	binary.BigEndian.PutUint32(buf[4:8], uint32(i.Start))
	binary.BigEndian.PutUint32(buf[8:12], uint32(i.End))
	_, err := w.Write(buf[:])
	return err
}

// ReadInterval reads the 12-byte wire form. Coordinates are not validated
// against a dictionary here; callers resolve the contig index themselves.
func ReadInterval(r io.Reader) (Interval, error) {
	var buf [IntervalSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return Interval{}, err
	}
	return Interval{
		ContigID: int32(binary.BigEndian.Uint32(buf[0:4])),
		Start:    int32(binary.BigEndian.Uint32(buf[4:8])),
		End:      int32(binary.BigEndian.Uint32(buf[8:12])),
	}, nil
}
