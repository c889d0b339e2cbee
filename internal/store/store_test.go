package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wjy123009/gatk/internal/depth"
	"github.com/wjy123009/gatk/internal/genome"
)

func openInMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testDict(t *testing.T) *genome.Dictionary {
	t.Helper()
	d, err := genome.NewDictionary([]genome.Contig{
		{Name: "chr1", Length: 100000},
		{Name: "chr2", Length: 50000},
	})
	require.NoError(t, err)
	return d
}

func TestOpenClose(t *testing.T) {
	s := openInMemory(t)
	assert.NotNil(t, s.DB())
}

func TestWriteAndLookup(t *testing.T) {
	s := openInMemory(t)
	dict := testDict(t)

	r1, err := depth.New(dict, "chr1", 1500, 'A', [4]int32{30, 1, 0, 2})
	require.NoError(t, err)
	r2, err := depth.New(dict, "chr2", 42, 'T', [4]int32{0, 0, 5, 28})
	require.NoError(t, err)

	require.NoError(t, s.WriteLocusDepths(dict, []depth.LocusDepth{r1, r2}))

	n, err := s.CountLocusDepths()
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	row, err := s.Lookup("chr1", 1500)
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, "A", row.Ref)
	assert.Equal(t, int64(30), row.DepthA)
	assert.Equal(t, int64(2), row.DepthT)

	row, err = s.Lookup("chr1", 9999)
	require.NoError(t, err)
	assert.Nil(t, row)
}

func TestWriteReplacesOnConflict(t *testing.T) {
	s := openInMemory(t)
	dict := testDict(t)

	r1, err := depth.New(dict, "chr1", 100, 'G', [4]int32{1, 1, 1, 1})
	require.NoError(t, err)
	require.NoError(t, s.WriteLocusDepths(dict, []depth.LocusDepth{r1}))

	r1.Depths = [4]int32{9, 9, 9, 9}
	require.NoError(t, s.WriteLocusDepths(dict, []depth.LocusDepth{r1}))

	n, err := s.CountLocusDepths()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	row, err := s.Lookup("chr1", 100)
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, int64(9), row.DepthA)
}

func TestWriteEmptyBatch(t *testing.T) {
	s := openInMemory(t)
	require.NoError(t, s.WriteLocusDepths(testDict(t), nil))
}
