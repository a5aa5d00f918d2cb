package ot

import (
	"fmt"
	"sort"

	"github.com/emirpasic/gods/sets/treeset"
	"github.com/emirpasic/gods/utils"
)

// --- Coverage table module -------------------------------------------------

// Coverage denotes an indexed set of glyphs.
// Each LookupSubtable (except an Extension LookupType subtable) in a lookup references
// a Coverage table (Coverage), which specifies all the glyphs affected by a
// substitution or positioning operation described in the subtable.
// The position of a glyph within the coverage, the Coverage Index, selects the
// entry of parallel arrays in the subtable which apply to this glyph.
//
// Coverages created with NewCoverage are sorted ascending and free of duplicates.
// Coverages read from font data keep the order of the font data, as the
// Coverage Index has to correlate with the subtable's arrays.
type Coverage struct {
	glyphs   []GlyphIndex
	unsorted bool
}

// Coverage table formats
const (
	CoverageFormatList   uint16 = 1 // list of individual glyph indices
	CoverageFormatRanges uint16 = 2 // ranges of consecutive glyph indices
)

// GlyphComparator compares two glyph indices, given as interface{}.
// It is intended for ordered containers.
var GlyphComparator utils.Comparator = func(a, b interface{}) int {
	ga, gb := a.(GlyphIndex), b.(GlyphIndex)
	switch {
	case ga < gb:
		return -1
	case ga > gb:
		return 1
	}
	return 0
}

// NewCoverage creates a coverage from a set of glyphs. Glyphs will be sorted
// and duplicates removed. An empty coverage is legal.
func NewCoverage(glyphs ...GlyphIndex) Coverage {
	set := treeset.NewWith(GlyphComparator)
	for _, g := range glyphs {
		set.Add(g)
	}
	cov := Coverage{glyphs: make([]GlyphIndex, 0, set.Size())}
	for _, g := range set.Values() {
		cov.glyphs = append(cov.glyphs, g.(GlyphIndex))
	}
	return cov
}

// Len returns the number of glyphs in the coverage.
func (c Coverage) Len() int {
	return len(c.glyphs)
}

// At returns the glyph with Coverage Index i.
func (c Coverage) At(i int) GlyphIndex {
	return c.glyphs[i]
}

// Glyphs returns the glyphs of the coverage in Coverage Index order.
// Clients should treat the slice as read-only.
func (c Coverage) Glyphs() []GlyphIndex {
	return c.glyphs
}

// Index returns the Coverage Index of glyph g, and false if g is not covered.
func (c Coverage) Index(g GlyphIndex) (int, bool) {
	if c.unsorted {
		for i, cg := range c.glyphs {
			if cg == g {
				return i, true
			}
		}
		return 0, false
	}
	i := sort.Search(len(c.glyphs), func(i int) bool { return c.glyphs[i] >= g })
	if i < len(c.glyphs) && c.glyphs[i] == g {
		return i, true
	}
	return 0, false
}

// ranges counts the runs of consecutive glyph indices.
func (c Coverage) ranges() int {
	n := 0
	for i, g := range c.glyphs {
		if i == 0 || g != c.glyphs[i-1]+1 {
			n++
		}
	}
	return n
}

// Format returns the coverage format which Node will use: format 2 (range records)
// if it is strictly smaller than format 1 (glyph list), format 1 otherwise.
func (c Coverage) Format() uint16 {
	size1 := 4 + 2*len(c.glyphs)
	size2 := 4 + 6*c.ranges()
	if !c.unsorted && size2 < size1 {
		return CoverageFormatRanges
	}
	return CoverageFormatList
}

// Node creates a table node for the coverage, to be linked from a subtable.
func (c Coverage) Node() *Node {
	n := NewNode("Coverage")
	format := c.Format()
	n.U16(format)
	if format == CoverageFormatList {
		n.U16(uint16(len(c.glyphs)))
		n.Glyphs(c.glyphs)
		return n
	}
	n.U16(uint16(c.ranges()))
	for i := 0; i < len(c.glyphs); {
		j := i + 1
		for j < len(c.glyphs) && c.glyphs[j] == c.glyphs[j-1]+1 {
			j++
		}
		n.U16(uint16(c.glyphs[i])).U16(uint16(c.glyphs[j-1])).U16(uint16(i))
		i = j
	}
	return n
}

// ParseCoverage reads a coverage table at the current position of r.
// Both coverage formats are supported.
func ParseCoverage(r *Reader) (Coverage, error) {
	format, err := r.U16()
	if err != nil {
		return Coverage{}, Truncated("Coverage", err)
	}
	count, err := r.U16()
	if err != nil {
		return Coverage{}, Truncated("Coverage", err)
	}
	tracer().Debugf("coverage header format %d has count = %d ", format, count)
	var glyphs []GlyphIndex
	switch format {
	case CoverageFormatList:
		if glyphs, err = r.Glyphs(int(count)); err != nil {
			return Coverage{}, Truncated("Coverage", err)
		}
	case CoverageFormatRanges:
		if glyphs, err = parseRangeRecords(r, int(count)); err != nil {
			return Coverage{}, err
		}
	default:
		return Coverage{}, Malformed("Coverage", format, "")
	}
	cov := Coverage{glyphs: glyphs}
	for i := 1; i < len(glyphs); i++ {
		if glyphs[i] <= glyphs[i-1] {
			tracer().Infof("coverage table not sorted at index %d", i)
			cov.unsorted = true
			break
		}
	}
	return cov, nil
}

func parseRangeRecords(r *Reader, count int) ([]GlyphIndex, error) {
	glyphs := make([]GlyphIndex, 0, count)
	for i := 0; i < count; i++ {
		rec, err := r.U16Array(3)
		if err != nil {
			return nil, Truncated("Coverage", err)
		}
		from, to, start := rec[0], rec[1], rec[2]
		if to < from {
			return nil, Malformed("Coverage", CoverageFormatRanges,
				fmt.Sprintf("range record %d: end glyph %d before start glyph %d", i, to, from))
		}
		if int(start) != len(glyphs) {
			return nil, Malformed("Coverage", CoverageFormatRanges,
				fmt.Sprintf("range record %d: start coverage index %d, expected %d", i, start, len(glyphs)))
		}
		for g := int(from); g <= int(to); g++ {
			glyphs = append(glyphs, GlyphIndex(g))
		}
	}
	return glyphs, nil
}
