// Package depth defines the per-locus base-call depth record carried by
// block-compressed interval streams, with its serializer/deserializer pair.
package depth

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/wjy123009/gatk/internal/bci"
	"github.com/wjy123009/gatk/internal/genome"
)

// Stream tags identifying LocusDepth files.
const (
	ClassName = "LocusDepth"
	Version   = "1.0"
)

// recordSize is the fixed wire size: contig index, position, ref call,
// four depths.
const recordSize = 4 + 4 + 1 + 4*4

var baseForIndex = [4]byte{'A', 'C', 'G', 'T'}

// LocusDepth holds the observed depth of each base call at a single
// reference position. Its collating interval is the point
// (contig, position, position).
type LocusDepth struct {
	ContigID int32
	Position int32
	RefIndex uint8    // index into ACGT of the reference call
	Depths   [4]int32 // observed depth per base, ACGT order
}

// New builds a bounds-checked record from a contig name and a reference
// base letter.
func New(d *genome.Dictionary, contig string, pos int32, refBase byte, depths [4]int32) (LocusDepth, error) {
	iv, err := genome.NewInterval(d, contig, pos, pos)
	if err != nil {
		return LocusDepth{}, err
	}
	refIdx, err := baseIndex(refBase)
	if err != nil {
		return LocusDepth{}, err
	}
	return LocusDepth{
		ContigID: iv.ContigID,
		Position: pos,
		RefIndex: refIdx,
		Depths:   depths,
	}, nil
}

func baseIndex(b byte) (uint8, error) {
	for i, base := range baseForIndex {
		if b == base {
			return uint8(i), nil
		}
	}
	return 0, fmt.Errorf("depth: reference call %q is not one of ACGT", b)
}

// Interval returns the record's collating interval.
func (ld LocusDepth) Interval() genome.Interval {
	return genome.Interval{ContigID: ld.ContigID, Start: ld.Position, End: ld.Position}
}

// RefBase returns the reference call as a base letter.
func (ld LocusDepth) RefBase() byte {
	if ld.RefIndex < 4 {
		return baseForIndex[ld.RefIndex]
	}
	return 'N'
}

// TotalDepth returns the depth summed over all four bases.
func (ld LocusDepth) TotalDepth() int64 {
	var total int64
	for _, d := range ld.Depths {
		total += int64(d)
	}
	return total
}

func (ld LocusDepth) String() string {
	return fmt.Sprintf("%d:%d %c A:%d C:%d G:%d T:%d",
		ld.ContigID, ld.Position, ld.RefBase(),
		ld.Depths[0], ld.Depths[1], ld.Depths[2], ld.Depths[3])
}

// Encode writes one record and returns its interval; it satisfies
// bci.WriteFunc[LocusDepth].
func Encode(w io.Writer, ld LocusDepth) (genome.Interval, error) {
	var buf [recordSize]byte
	binary.BigEndian.PutUint32(buf[0:4], uint32(ld.ContigID))
	binary.BigEndian.PutUint32(buf[4:8], uint32(ld.Position))
	buf[8] = ld.RefIndex
	for i, d := range ld.Depths {
		binary.BigEndian.PutUint32(buf[9+4*i:], uint32(d))
	}
	if _, err := w.Write(buf[:]); err != nil {
		return genome.Interval{}, err
	}
	return ld.Interval(), nil
}

// Decode reads one record; it satisfies bci.DecodeFunc[LocusDepth].
func Decode(r *bci.Reader[LocusDepth]) (LocusDepth, error) {
	var buf [recordSize]byte
	if _, err := io.ReadFull(r.Stream(), buf[:]); err != nil {
		return LocusDepth{}, err
	}
	ld := LocusDepth{
		ContigID: int32(binary.BigEndian.Uint32(buf[0:4])),
		Position: int32(binary.BigEndian.Uint32(buf[4:8])),
		RefIndex: buf[8],
	}
	for i := range ld.Depths {
		ld.Depths[i] = int32(binary.BigEndian.Uint32(buf[9+4*i:]))
	}
	return ld, nil
}

// NewWriter opens a LocusDepth stream writer at path.
func NewWriter(path string, dict *genome.Dictionary) (*bci.Writer[LocusDepth], error) {
	return bci.NewWriter(path, dict, ClassName, Version, Encode)
}

// Open opens a LocusDepth stream reader.
func Open(path string) (*bci.Reader[LocusDepth], error) {
	return bci.Open(path, ClassName, Decode)
}
