package bci

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/wjy123009/gatk/internal/genome"
)

// The stream's scalar fields are big-endian; strings are a 2-byte
// big-endian length followed by the bytes. Only the trailer's patched index
// pointer is little-endian.

func writeUint32(w io.Writer, v uint32) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func readUint32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(buf[:]), nil
}

func writeUint64(w io.Writer, v uint64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func readUint64(r io.Reader) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(buf[:]), nil
}

func writeString(w io.Writer, s string) error {
	if len(s) > 0xffff {
		return fmt.Errorf("string tag too long: %d bytes", len(s))
	}
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], uint16(len(s)))
	if _, err := w.Write(buf[:]); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func readString(r io.Reader) (string, error) {
	var buf [2]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return "", err
	}
	n := binary.BigEndian.Uint16(buf[:])
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", err
	}
	return string(b), nil
}

// writeDictionary emits the contig count followed by each contig's length
// and name.
func writeDictionary(w io.Writer, d *genome.Dictionary) error {
	if err := writeUint32(w, uint32(d.Len())); err != nil {
		return err
	}
	for _, c := range d.Contigs() {
		if err := writeUint32(w, uint32(c.Length)); err != nil {
			return err
		}
		if err := writeString(w, c.Name); err != nil {
			return err
		}
	}
	return nil
}

func readDictionary(r io.Reader) (*genome.Dictionary, error) {
	n, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	contigs := make([]genome.Contig, 0, n)
	for i := uint32(0); i < n; i++ {
		length, err := readUint32(r)
		if err != nil {
			return nil, err
		}
		name, err := readString(r)
		if err != nil {
			return nil, err
		}
		contigs = append(contigs, genome.Contig{Name: name, Length: int32(length)})
	}
	return genome.NewDictionary(contigs)
}
