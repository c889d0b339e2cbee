// Package genome provides the sequence dictionary and the collating
// interval type used as both record coordinate and index key.
package genome

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownContig is returned when a contig name or index is not in
	// the dictionary.
	ErrUnknownContig = errors.New("contig not in dictionary")
	// ErrOutOfBounds is returned when interval coordinates violate the
	// contig bounds.
	ErrOutOfBounds = errors.New("interval out of contig bounds")
)

// Contig is a named reference sequence of fixed length. Index is its
// position in the dictionary.
type Contig struct {
	Name   string
	Length int32
	Index  int32
}

// Dictionary is an ordered list of contigs with name lookup.
type Dictionary struct {
	contigs []Contig
	byName  map[string]int32
}

// NewDictionary builds a dictionary from contigs in order. Each contig's
// Index is assigned from its position; any preset Index is ignored.
func NewDictionary(contigs []Contig) (*Dictionary, error) {
	d := &Dictionary{
		contigs: make([]Contig, len(contigs)),
		byName:  make(map[string]int32, len(contigs)),
	}
	for i, c := range contigs {
		if c.Name == "" {
			return nil, fmt.Errorf("contig %d has empty name", i)
		}
		if c.Length <= 0 {
			return nil, fmt.Errorf("contig %s has non-positive length %d", c.Name, c.Length)
		}
		if _, dup := d.byName[c.Name]; dup {
			return nil, fmt.Errorf("duplicate contig name %s", c.Name)
		}
		c.Index = int32(i)
		d.contigs[i] = c
		d.byName[c.Name] = c.Index
	}
	return d, nil
}

// Len returns the number of contigs.
func (d *Dictionary) Len() int { return len(d.contigs) }

// Contig returns the contig at the given index.
func (d *Dictionary) Contig(idx int32) (Contig, error) {
	if idx < 0 || int(idx) >= len(d.contigs) {
		return Contig{}, fmt.Errorf("contig index %d: %w", idx, ErrUnknownContig)
	}
	return d.contigs[idx], nil
}

// ByName returns the contig with the given name.
func (d *Dictionary) ByName(name string) (Contig, error) {
	idx, ok := d.byName[name]
	if !ok {
		return Contig{}, fmt.Errorf("contig %s: %w", name, ErrUnknownContig)
	}
	return d.contigs[idx], nil
}

// Contigs returns the contigs in dictionary order. The slice must not be
// modified.
func (d *Dictionary) Contigs() []Contig { return d.contigs }

// Names returns the contig names in dictionary order. The dictionary is
// authoritative: a name may not appear in any record of a given file.
func (d *Dictionary) Names() []string {
	names := make([]string, len(d.contigs))
	for i, c := range d.contigs {
		names[i] = c.Name
	}
	return names
}
