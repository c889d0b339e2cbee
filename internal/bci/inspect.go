package bci

import (
	"fmt"
	"os"

	"github.com/wjy123009/gatk/internal/genome"
)

// Info summarizes a stream's header and index without decoding any payload
// records, so it works for any record class.
type Info struct {
	Path        string
	Class       string
	Version     string
	Dict        *genome.Dictionary
	DataOffset  VirtualOffset
	IndexOffset VirtualOffset
	Entries     []IndexEntry
}

// Inspect reads path's trailer, header, and index section.
func Inspect(path string) (*Info, error) {
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
	defer cur.close()

	info := &Info{Path: path, IndexOffset: indexPos}
	if info.Class, err = readString(cur); err != nil {
		return nil, fmt.Errorf("bci: read class tag from %s: %w", path, err)
	}
	if info.Version, err = readString(cur); err != nil {
		return nil, fmt.Errorf("bci: read version tag from %s: %w", path, err)
	}
	if info.Dict, err = readDictionary(cur); err != nil {
		return nil, fmt.Errorf("bci: read dictionary from %s: %w", path, err)
	}
	if _, err := cur.peek(); err != nil {
		return nil, fmt.Errorf("bci: read %s: %w", path, err)
	}
	info.DataOffset = cur.position()

	if err := cur.seek(indexPos); err != nil {
		return nil, fmt.Errorf("bci: seek %s to %v: %w", path, indexPos, err)
	}
	n, err := readUint32(cur)
	if err != nil {
		return nil, fmt.Errorf("bci: read index from %s: %w", path, err)
	}
	info.Entries = make([]IndexEntry, 0, min(n, 4096))
	for i := uint32(0); i < n; i++ {
		e, err := readIndexEntry(cur, info.Dict)
		if err != nil {
			return nil, fmt.Errorf("bci: read index from %s: %w", path, err)
		}
		info.Entries = append(info.Entries, e)
	}
	return info, nil
}
