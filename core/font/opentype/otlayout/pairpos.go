package otlayout

import (
	"fmt"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/npillmayer/otcodec/core/font/opentype/ot"
)

// GlyphPair is a sequence of two glyphs, where Right follows Left.
type GlyphPair struct {
	Left, Right ot.GlyphIndex
}

// PairValue holds the position adjustments for a glyph pair. First applies to
// the left glyph, Second to the right glyph.
type PairValue struct {
	First, Second ot.ValueRecord
}

// Simplify simplifies both value records.
func (pv PairValue) Simplify() PairValue {
	return PairValue{First: pv.First.Simplify(), Second: pv.Second.Simplify()}
}

// PairPos is the canonical model of a GPOS LookupType 2 subtable: pair
// adjustment positioning (e.g., kerning).
//
// Models produced by the decoder hold simplified value records only
// (see ot.ValueRecord.Simplify).
type PairPos struct {
	Mapping map[GlyphPair]PairValue
}

// NewPairPos creates an empty pair adjustment.
func NewPairPos() PairPos {
	return PairPos{Mapping: make(map[GlyphPair]PairValue)}
}

// Len returns the number of glyph pairs.
func (p PairPos) Len() int {
	return len(p.Mapping)
}

// PairPosVariant is one of the wire formats of a pair adjustment. Currently
// the only implementation is *PairPosFormat1, as format 2 (class pair
// adjustment) is neither decoded nor produced.
type PairPosVariant interface {
	PosFormat() uint16  // 1
	Node() *ot.Node     // binary representation
	Canonical() PairPos // format independent model
	pairPos()
}

// PairPosFormat1 lists adjustments for pairs of individual glyphs.
// The left glyphs are collected in the coverage, and for every covered glyph
// there is a PairSet with records for each right glyph.
//
//	uint16   posFormat      1
//	Offset16 coverageOffset
//	uint16   valueFormat1
//	uint16   valueFormat2
//	uint16   pairSetCount
//	Offset16 pairSetOffsets[pairSetCount]
type PairPosFormat1 struct {
	Coverage     ot.Coverage
	ValueFormat1 ot.ValueFormat // format of value records for left glyphs
	ValueFormat2 ot.ValueFormat // format of value records for right glyphs
	PairSets     []PairSet      // parallel to Coverage
}

// PairSet holds the records for all pairs with a common left glyph.
// In binary form records are sorted by right glyph.
//
//	uint16          pairValueCount
//	PairValueRecord pairValueRecords[pairValueCount]
type PairSet []PairValueRecord

// PairValueRecord is an entry of a PairSet.
//
//	uint16      secondGlyph
//	ValueRecord valueRecord1
//	ValueRecord valueRecord2
type PairValueRecord struct {
	SecondGlyph ot.GlyphIndex
	Value1      ot.ValueRecord
	Value2      ot.ValueRecord
}

func (*PairPosFormat1) pairPos() {}

// PosFormat returns 1.
func (f *PairPosFormat1) PosFormat() uint16 { return 1 }

// Node creates the subtable node. Its children are the coverage, followed by
// the pair sets in coverage order.
func (f *PairPosFormat1) Node() *ot.Node {
	n := ot.NewNode("PairPosFormat1")
	n.U16(1).Link16(f.Coverage.Node())
	n.U16(uint16(f.ValueFormat1)).U16(uint16(f.ValueFormat2))
	n.U16(uint16(len(f.PairSets)))
	for _, set := range f.PairSets {
		n.Link16(set.node(f.ValueFormat1, f.ValueFormat2))
	}
	return n
}

func (set PairSet) node(vf1, vf2 ot.ValueFormat) *ot.Node {
	n := ot.NewNode("PairSet")
	n.U16(uint16(len(set)))
	for _, rec := range set {
		n.U16(uint16(rec.SecondGlyph))
		rec.Value1.Write(n, vf1)
		rec.Value2.Write(n, vf2)
	}
	return n
}

// Canonical collects all pairs of the subtable, with simplified value
// records. Should a glyph pair occur more than once, the last one wins.
func (f *PairPosFormat1) Canonical() PairPos {
	p := NewPairPos()
	for i, set := range f.PairSets {
		if i >= f.Coverage.Len() {
			break
		}
		left := f.Coverage.At(i)
		for _, rec := range set {
			pair := GlyphPair{Left: left, Right: rec.SecondGlyph}
			p.Mapping[pair] = PairValue{First: rec.Value1, Second: rec.Value2}.Simplify()
		}
	}
	return p
}

// --- Grouping --------------------------------------------------------------

// groupedPairs is a two-level view of a pair mapping: left glyph → (right
// glyph → PairValue). Both levels are ordered by glyph index.
type groupedPairs struct {
	left *treemap.Map
}

func groupPairs(mapping map[GlyphPair]PairValue) groupedPairs {
	g := groupedPairs{left: treemap.NewWith(ot.GlyphComparator)}
	for pair, pv := range mapping {
		var right *treemap.Map
		if r, found := g.left.Get(pair.Left); found {
			right = r.(*treemap.Map)
		} else {
			right = treemap.NewWith(ot.GlyphComparator)
			g.left.Put(pair.Left, right)
		}
		right.Put(pair.Right, pv.Simplify())
	}
	return g
}

// each calls f for every left glyph, in ascending order, with the values for
// its right glyphs in ascending order.
func (g groupedPairs) each(f func(left ot.GlyphIndex, rights []ot.GlyphIndex, values []PairValue)) {
	it := g.left.Iterator()
	for it.Next() {
		right := it.Value().(*treemap.Map)
		rights := make([]ot.GlyphIndex, 0, right.Size())
		values := make([]PairValue, 0, right.Size())
		rit := right.Iterator()
		for rit.Next() {
			rights = append(rights, rit.Key().(ot.GlyphIndex))
			values = append(values, rit.Value().(PairValue))
		}
		f(it.Key().(ot.GlyphIndex), rights, values)
	}
}

// Compile selects the wire format for p, which is always format 1.
//
// Value records are simplified, and the value formats are the smallest ones
// able to represent every record. Pair sets are ordered by left glyph, and
// records within a pair set are ordered by right glyph.
func (p PairPos) Compile() PairPosVariant {
	var lefts []ot.GlyphIndex
	var sets []PairSet
	var firsts, seconds []ot.ValueRecord
	groupPairs(p.Mapping).each(func(left ot.GlyphIndex, rights []ot.GlyphIndex, values []PairValue) {
		lefts = append(lefts, left)
		set := make(PairSet, len(rights))
		for i, right := range rights {
			set[i] = PairValueRecord{SecondGlyph: right, Value1: values[i].First, Value2: values[i].Second}
			firsts = append(firsts, values[i].First)
			seconds = append(seconds, values[i].Second)
		}
		sets = append(sets, set)
	})
	f := &PairPosFormat1{
		Coverage:     ot.NewCoverage(lefts...),
		ValueFormat1: ot.HighestFormat(firsts...),
		ValueFormat2: ot.HighestFormat(seconds...),
		PairSets:     sets,
	}
	tracer().Debugf("pair adjustment of %d pairs in %d pair sets, value formats %s / %s",
		len(firsts), len(sets), f.ValueFormat1, f.ValueFormat2)
	return f
}

// MarshalBinary compiles p into a binary subtable, which is self-contained,
// i.e. coverage, pair sets and device tables are appended to it.
func (p PairPos) MarshalBinary() ([]byte, error) {
	return ot.Serialize(p.Compile().Node())
}

// UnmarshalBinary decodes a binary pair adjustment subtable. It replaces the
// mapping of p.
func (p *PairPos) UnmarshalBinary(data []byte) error {
	m, err := ParsePairPos(ot.NewReader(data))
	if err != nil {
		return err
	}
	*p = m
	return nil
}

// --- Decoding --------------------------------------------------------------

// ParsePairPos decodes a pair adjustment subtable at the current position of
// r. Format 2 subtables result in an error matching ot.ErrUnsupported, other
// unknown formats in an error matching ot.ErrMalformed.
func ParsePairPos(r *ot.Reader) (PairPos, error) {
	v, err := ParsePairPosVariant(r)
	if err != nil {
		return PairPos{}, err
	}
	return v.Canonical(), nil
}

// ParsePairPosVariant decodes a pair adjustment subtable without normalizing
// it.
func ParsePairPosVariant(r *ot.Reader) (PairPosVariant, error) {
	format, err := r.Peek16()
	if err != nil {
		return nil, ot.Truncated("PairPos", err)
	}
	switch format {
	case 1:
		return parsePairPosFormat1(r)
	case 2:
		tracer().Infof("class based pair adjustment is not supported")
		return nil, ot.Unsupported("PairPos", format)
	}
	tracer().Errorf("pair adjustment subtable has unknown format %d", format)
	return nil, ot.Malformed("PairPos", format, "")
}

func parsePairPosFormat1(r *ot.Reader) (*PairPosFormat1, error) {
	r.Push()
	defer r.Pop()
	hdr, err := r.U16Array(5)
	if err != nil {
		return nil, ot.Truncated("PairPos", err)
	}
	f := &PairPosFormat1{
		ValueFormat1: ot.ValueFormat(hdr[2]),
		ValueFormat2: ot.ValueFormat(hdr[3]),
	}
	if err = f.ValueFormat1.Check(); err != nil {
		return nil, err
	}
	if err = f.ValueFormat2.Check(); err != nil {
		return nil, err
	}
	if hdr[1] == 0 {
		return nil, ot.Malformed("PairPos", 1, "NULL coverage offset")
	}
	err = r.Follow(hdr[1], func(r *ot.Reader) (err error) {
		f.Coverage, err = ot.ParseCoverage(r)
		return
	})
	if err != nil {
		return nil, ot.Truncated("Coverage", err)
	}
	count := int(hdr[4])
	if count != f.Coverage.Len() {
		return nil, ot.Malformed("PairPos", 1,
			fmt.Sprintf("%d pair sets for %d covered glyphs", count, f.Coverage.Len()))
	}
	offsets, err := r.U16Array(count)
	if err != nil {
		return nil, ot.Truncated("PairPos", err)
	}
	f.PairSets = make([]PairSet, count)
	for i, offset := range offsets {
		if offset == 0 {
			tracer().Debugf("pair set #%d is NULL", i)
			continue
		}
		err = r.Follow(offset, func(r *ot.Reader) (err error) {
			f.PairSets[i], err = parsePairSet(r, f.ValueFormat1, f.ValueFormat2)
			return
		})
		if err != nil {
			return nil, ot.Truncated("PairSet", err)
		}
	}
	tracer().Debugf("pair adjustment format 1 with %d pair sets, value formats %s / %s",
		count, f.ValueFormat1, f.ValueFormat2)
	return f, nil
}

// parsePairSet reads a pair set. Device offsets in value records are relative
// to the start of the pair set.
func parsePairSet(r *ot.Reader, vf1, vf2 ot.ValueFormat) (PairSet, error) {
	r.Push()
	defer r.Pop()
	count, err := r.U16()
	if err != nil {
		return nil, err
	}
	if need := int(count) * (2 + vf1.Size() + vf2.Size()); need > r.Remaining() {
		return nil, ot.Malformed("PairSet", 0,
			fmt.Sprintf("%d pair value records exceed table size", count))
	}
	set := make(PairSet, count)
	for i := range set {
		if set[i].SecondGlyph, err = r.Glyph(); err != nil {
			return nil, err
		}
		if set[i].Value1, err = ot.ReadValueRecord(r, vf1); err != nil {
			return nil, err
		}
		if set[i].Value2, err = ot.ReadValueRecord(r, vf2); err != nil {
			return nil, err
		}
	}
	return set, nil
}
