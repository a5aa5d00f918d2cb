package ot

import (
	"errors"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoverageSet(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "otcodec.fonts")
	defer teardown()
	//
	cov := NewCoverage(5, 3, 3, 9)
	assert.Equal(t, []GlyphIndex{3, 5, 9}, cov.Glyphs())
	assert.Equal(t, 3, cov.Len())
	inx, ok := cov.Index(5)
	assert.True(t, ok)
	assert.Equal(t, 1, inx)
	_, ok = cov.Index(4)
	assert.False(t, ok)
	assert.Equal(t, GlyphIndex(9), cov.At(2))
	//
	empty := NewCoverage()
	assert.Equal(t, 0, empty.Len())
	_, ok = empty.Index(0)
	assert.False(t, ok)
}

func TestCoverageFormatSelection(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "otcodec.fonts")
	defer teardown()
	//
	out, err := Serialize(NewCoverage(3, 5, 9).Node())
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 1, 0, 3, 0, 3, 0, 5, 0, 9}, out)
	//
	var run []GlyphIndex
	for g := GlyphIndex(10); g < 20; g++ {
		run = append(run, g)
	}
	cov := NewCoverage(run...)
	assert.Equal(t, CoverageFormatRanges, cov.Format())
	out, err = Serialize(cov.Node())
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 2, 0, 1, 0, 10, 0, 19, 0, 0}, out)
	//
	// equal sizes for both formats: list format wins
	assert.Equal(t, CoverageFormatList, NewCoverage(1, 2, 3).Format())
	assert.Equal(t, CoverageFormatList, NewCoverage().Format())
}

func TestCoverageParse(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "otcodec.fonts")
	defer teardown()
	//
	ranges := []byte{
		0, 2, 0, 2, // format 2, 2 ranges
		0, 10, 0, 12, 0, 0, // 10…12
		0, 20, 0, 20, 0, 3, // 20
	}
	cov, err := ParseCoverage(NewReader(ranges))
	require.NoError(t, err)
	assert.Equal(t, []GlyphIndex{10, 11, 12, 20}, cov.Glyphs())
	out, err := Serialize(cov.Node())
	require.NoError(t, err)
	back, err := ParseCoverage(NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, cov.Glyphs(), back.Glyphs())
	//
	unsorted := []byte{0, 1, 0, 3, 0, 9, 0, 2, 0, 5}
	cov, err = ParseCoverage(NewReader(unsorted))
	require.NoError(t, err)
	inx, ok := cov.Index(2)
	assert.True(t, ok)
	assert.Equal(t, 1, inx, "expected order of font data to be kept")
}

func TestCoverageMalformed(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "otcodec.fonts")
	defer teardown()
	//
	for name, data := range map[string][]byte{
		"format":    {0, 3, 0, 0},
		"truncated": {0, 1, 0, 4, 0, 1},
		"start":     {0, 2, 0, 1, 0, 10, 0, 12, 0, 7},
		"range":     {0, 2, 0, 1, 0, 12, 0, 10, 0, 0},
		"empty":     {0},
	} {
		_, err := ParseCoverage(NewReader(data))
		require.Error(t, err, name)
		assert.True(t, errors.Is(err, ErrMalformed), "%s: expected malformed error, got %v", name, err)
	}
}
