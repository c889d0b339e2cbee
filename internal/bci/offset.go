package bci

import "fmt"

// VirtualOffset is a BGZF virtual file pointer: the upper 48 bits are the
// byte offset of a compressed block within the file, the lower 16 bits the
// uncompressed offset within that block.
type VirtualOffset uint64

const blockMask = ^VirtualOffset(0xffff)

// MakeVirtualOffset packs a block file offset and a within-block offset.
func MakeVirtualOffset(file int64, block uint16) VirtualOffset {
	return VirtualOffset(file)<<16 | VirtualOffset(block)
}

// File returns the byte offset of the compressed block within the file.
func (v VirtualOffset) File() int64 { return int64(v >> 16) }

// Block returns the uncompressed offset within the block.
func (v VirtualOffset) Block() uint16 { return uint16(v & 0xffff) }

func (v VirtualOffset) String() string {
	return fmt.Sprintf("%d:%d", v.File(), v.Block())
}

// SameBlock reports whether two virtual offsets address the same compressed
// block. Comparing the upper 48 bits is the only test that identifies block
// transitions correctly across partially filled blocks.
func SameBlock(a, b VirtualOffset) bool {
	return (a^b)&blockMask == 0
}
