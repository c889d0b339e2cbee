package bci

import (
	"encoding/binary"
	"fmt"
	"io"
)

// The file's final block is an empty BGZF block extended with an "IP" extra
// field whose 8-byte payload is the little-endian virtual offset of the
// first index block. Everything outside bytes [22,30) is fixed.
const (
	// TrailerSize is the length of the terminator block.
	TrailerSize = 40
	// pointerOffset is where the index offset is patched in.
	pointerOffset = 22
)

var trailerTemplate = [TrailerSize]byte{
	0x1f, 0x8b, // gzip ID1, ID2
	0x08,       // CM deflate
	0x04,       // FLG: FEXTRA
	0, 0, 0, 0, // modification time
	0x00,       // XFL
	0xff,       // OS unknown
	0x1c, 0x00, // XLEN = 28
	'B', 'C', 0x02, 0x00, // BC extra subfield
	39, 0, // total block size - 1
	'I', 'P', 0x08, 0x00, // IP extra subfield, 8-byte payload
	1, 2, 3, 4, 5, 6, 7, 8, // index offset, patched on close
	0x03, 0x00, // empty deflate payload
	0, 0, 0, 0, // crc32 of empty input
	0, 0, 0, 0, // uncompressed size
}

// trailerBlock returns the terminator with the index offset patched in.
func trailerBlock(index VirtualOffset) []byte {
	b := make([]byte, TrailerSize)
	copy(b, trailerTemplate[:])
	binary.LittleEndian.PutUint64(b[pointerOffset:pointerOffset+8], uint64(index))
	return b
}

// parseTrailer verifies the fixed template bytes and decodes the index
// offset. The patched region itself is not validated here; a mangled
// pointer surfaces later as a corrupt index.
func parseTrailer(b []byte) (VirtualOffset, error) {
	if len(b) != TrailerSize {
		return 0, fmt.Errorf("%w: %d trailing bytes", ErrCorruptTrailer, len(b))
	}
	for i := 0; i < pointerOffset; i++ {
		if b[i] != trailerTemplate[i] {
			return 0, fmt.Errorf("%w: byte %d is %#02x, want %#02x", ErrCorruptTrailer, i, b[i], trailerTemplate[i])
		}
	}
	for i := pointerOffset + 8; i < TrailerSize; i++ {
		if b[i] != trailerTemplate[i] {
			return 0, fmt.Errorf("%w: byte %d is %#02x, want %#02x", ErrCorruptTrailer, i, b[i], trailerTemplate[i])
		}
	}
	return VirtualOffset(binary.LittleEndian.Uint64(b[pointerOffset : pointerOffset+8])), nil
}

// readTrailer reads and parses the final block of a file of the given size.
func readTrailer(r io.ReaderAt, size int64) (VirtualOffset, error) {
	if size < TrailerSize {
		return 0, fmt.Errorf("%w: file is %d bytes", ErrCorruptTrailer, size)
	}
	b := make([]byte, TrailerSize)
	if _, err := r.ReadAt(b, size-TrailerSize); err != nil {
		return 0, err
	}
	return parseTrailer(b)
}
