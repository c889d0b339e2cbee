package depth_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wjy123009/gatk/internal/bci"
	"github.com/wjy123009/gatk/internal/depth"
	"github.com/wjy123009/gatk/internal/genome"
)

func testDict(t *testing.T) *genome.Dictionary {
	t.Helper()
	d, err := genome.NewDictionary([]genome.Contig{
		{Name: "chr1", Length: 100000},
		{Name: "chr2", Length: 50000},
	})
	require.NoError(t, err)
	return d
}

func TestNewValidates(t *testing.T) {
	dict := testDict(t)

	ld, err := depth.New(dict, "chr1", 1234, 'G', [4]int32{1, 2, 3, 4})
	require.NoError(t, err)
	assert.Equal(t, int32(0), ld.ContigID)
	assert.Equal(t, int32(1234), ld.Position)
	assert.Equal(t, byte('G'), ld.RefBase())
	assert.Equal(t, int64(10), ld.TotalDepth())
	assert.Equal(t, genome.Interval{ContigID: 0, Start: 1234, End: 1234}, ld.Interval())

	_, err = depth.New(dict, "chrX", 1, 'A', [4]int32{})
	assert.ErrorIs(t, err, genome.ErrUnknownContig)

	_, err = depth.New(dict, "chr1", 0, 'A', [4]int32{})
	assert.ErrorIs(t, err, genome.ErrOutOfBounds)

	_, err = depth.New(dict, "chr1", 1, 'N', [4]int32{})
	assert.Error(t, err, "ref call must be one of ACGT")
}

func TestStreamRoundTrip(t *testing.T) {
	dict := testDict(t)
	path := filepath.Join(t.TempDir(), "depths"+bci.Extension)

	var recs []depth.LocusDepth
	for pos := int32(1); pos <= 5000; pos += 10 {
		ld, err := depth.New(dict, "chr1", pos, 'A', [4]int32{pos, 0, pos / 2, 1})
		require.NoError(t, err)
		recs = append(recs, ld)
	}
	ld, err := depth.New(dict, "chr2", 77, 'T', [4]int32{0, 0, 0, 9})
	require.NoError(t, err)
	recs = append(recs, ld)

	w, err := depth.NewWriter(path, dict)
	require.NoError(t, err)
	for _, rec := range recs {
		require.NoError(t, w.Write(rec))
	}
	require.NoError(t, w.Close())

	r, err := depth.Open(path)
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, depth.ClassName, r.Class())
	assert.Equal(t, depth.Version, r.Version())

	it, err := r.Iterator()
	require.NoError(t, err)
	var got []depth.LocusDepth
	for it.Next() {
		got = append(got, it.Record())
	}
	require.NoError(t, it.Err())
	require.NoError(t, it.Close())
	assert.Equal(t, recs, got)
}

func TestStreamQuery(t *testing.T) {
	dict := testDict(t)
	path := filepath.Join(t.TempDir(), "depths"+bci.Extension)

	w, err := depth.NewWriter(path, dict)
	require.NoError(t, err)
	for pos := int32(100); pos <= 1000; pos += 100 {
		ld, err := depth.New(dict, "chr1", pos, 'C', [4]int32{0, pos, 0, 0})
		require.NoError(t, err)
		require.NoError(t, w.Write(ld))
	}
	require.NoError(t, w.Close())

	r, err := depth.Open(path)
	require.NoError(t, err)
	defer r.Close()

	it, err := r.Query("chr1", 250, 410)
	require.NoError(t, err)
	var positions []int32
	for it.Next() {
		positions = append(positions, it.Record().Position)
	}
	require.NoError(t, it.Err())
	require.NoError(t, it.Close())
	assert.ElementsMatch(t, []int32{300, 400}, positions)
}
