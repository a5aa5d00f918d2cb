package otlayout

import (
	"fmt"

	"github.com/npillmayer/otcodec/core/font/opentype/ot"
)

// SingleSubst is the canonical model of a GSUB LookupType 1 subtable:
// a single substitution replaces one glyph with another glyph.
//
// Every input glyph is mapped to exactly one output glyph. Chains of
// substitutions are not resolved: {a→b, b→c} substitutes a with b.
type SingleSubst struct {
	Mapping map[ot.GlyphIndex]ot.GlyphIndex
}

// NewSingleSubst creates an empty single substitution.
func NewSingleSubst() SingleSubst {
	return SingleSubst{Mapping: make(map[ot.GlyphIndex]ot.GlyphIndex)}
}

// Len returns the number of substituted glyphs.
func (s SingleSubst) Len() int {
	return len(s.Mapping)
}

// SingleSubstVariant is one of the wire formats of a single substitution,
// i.e. one of *SingleSubstFormat1 and *SingleSubstFormat2.
type SingleSubstVariant interface {
	SubstFormat() uint16    // 1 or 2
	Node() *ot.Node         // binary representation
	Canonical() SingleSubst // format independent model
	singleSubst()
}

// SingleSubstFormat1 calculates the indices of the output glyphs by adding a
// constant delta to the input glyph indices, modulo 65536.
//
//	uint16  substFormat     1
//	Offset16 coverageOffset
//	int16   deltaGlyphID
type SingleSubstFormat1 struct {
	Coverage     ot.Coverage
	DeltaGlyphID int16
}

// SingleSubstFormat2 provides an array of output glyph indices, parallel to
// the coverage of the input glyphs.
//
//	uint16  substFormat     2
//	Offset16 coverageOffset
//	uint16  glyphCount
//	uint16  substituteGlyphIDs[glyphCount]
type SingleSubstFormat2 struct {
	Coverage    ot.Coverage
	Substitutes []ot.GlyphIndex
}

func (*SingleSubstFormat1) singleSubst() {}
func (*SingleSubstFormat2) singleSubst() {}

// SubstFormat returns 1.
func (f *SingleSubstFormat1) SubstFormat() uint16 { return 1 }

// SubstFormat returns 2.
func (f *SingleSubstFormat2) SubstFormat() uint16 { return 2 }

// Node creates the subtable node, with the coverage as its child.
func (f *SingleSubstFormat1) Node() *ot.Node {
	n := ot.NewNode("SingleSubstFormat1")
	return n.U16(1).Link16(f.Coverage.Node()).I16(f.DeltaGlyphID)
}

// Node creates the subtable node, with the coverage as its child.
func (f *SingleSubstFormat2) Node() *ot.Node {
	n := ot.NewNode("SingleSubstFormat2")
	n.U16(2).Link16(f.Coverage.Node()).U16(uint16(len(f.Substitutes)))
	return n.Glyphs(f.Substitutes)
}

// Canonical maps every covered glyph to its glyph index plus the delta.
func (f *SingleSubstFormat1) Canonical() SingleSubst {
	s := NewSingleSubst()
	for _, g := range f.Coverage.Glyphs() {
		s.Mapping[g] = addDelta(g, f.DeltaGlyphID)
	}
	return s
}

// Canonical maps the glyph with Coverage Index i to substitute i.
func (f *SingleSubstFormat2) Canonical() SingleSubst {
	s := NewSingleSubst()
	for i, g := range f.Coverage.Glyphs() {
		if i >= len(f.Substitutes) {
			break
		}
		s.Mapping[g] = f.Substitutes[i]
	}
	return s
}

func addDelta(g ot.GlyphIndex, delta int16) ot.GlyphIndex {
	return ot.GlyphIndex(uint16(g) + uint16(delta))
}

// Compile selects the wire format for s.
//
// If every glyph is substituted by a glyph at the same distance (modulo
// 65536), format 1 is used. Otherwise, or if s is empty, format 2 is used.
// The coverage lists the substituted glyphs in ascending order.
func (s SingleSubst) Compile() SingleSubstVariant {
	cov := ot.NewCoverage(s.keys()...)
	glyphs := cov.Glyphs()
	if len(glyphs) > 0 {
		delta := int16(uint16(s.Mapping[glyphs[0]]) - uint16(glyphs[0]))
		uniform := true
		for _, g := range glyphs[1:] {
			if addDelta(g, delta) != s.Mapping[g] {
				uniform = false
				break
			}
		}
		if uniform {
			tracer().Debugf("single substitution of %d glyphs: format 1, delta %d", len(glyphs), delta)
			return &SingleSubstFormat1{Coverage: cov, DeltaGlyphID: delta}
		}
	}
	subst := make([]ot.GlyphIndex, len(glyphs))
	for i, g := range glyphs {
		subst[i] = s.Mapping[g]
	}
	tracer().Debugf("single substitution of %d glyphs: format 2", len(glyphs))
	return &SingleSubstFormat2{Coverage: cov, Substitutes: subst}
}

func (s SingleSubst) keys() []ot.GlyphIndex {
	keys := make([]ot.GlyphIndex, 0, len(s.Mapping))
	for g := range s.Mapping {
		keys = append(keys, g)
	}
	return keys
}

// MarshalBinary compiles s into a binary subtable, which is self-contained,
// i.e. its coverage table is appended to it.
func (s SingleSubst) MarshalBinary() ([]byte, error) {
	return ot.Serialize(s.Compile().Node())
}

// UnmarshalBinary decodes a binary single substitution subtable. It replaces
// the mapping of s.
func (s *SingleSubst) UnmarshalBinary(data []byte) error {
	m, err := ParseSingleSubst(ot.NewReader(data))
	if err != nil {
		return err
	}
	*s = m
	return nil
}

// ParseSingleSubst decodes a single substitution subtable at the current
// position of r. The format number is checked before anything else is read.
// Unknown formats result in an error matching ot.ErrMalformed.
func ParseSingleSubst(r *ot.Reader) (SingleSubst, error) {
	v, err := ParseSingleSubstVariant(r)
	if err != nil {
		return SingleSubst{}, err
	}
	return v.Canonical(), nil
}

// ParseSingleSubstVariant decodes a single substitution subtable without
// normalizing it.
func ParseSingleSubstVariant(r *ot.Reader) (SingleSubstVariant, error) {
	format, err := r.Peek16()
	if err != nil {
		return nil, ot.Truncated("SingleSubst", err)
	}
	if format != 1 && format != 2 {
		tracer().Errorf("single substitution subtable has unknown format %d", format)
		return nil, ot.Malformed("SingleSubst", format, "")
	}
	r.Push()
	defer r.Pop()
	hdr, err := r.U16Array(3)
	if err != nil {
		return nil, ot.Truncated("SingleSubst", err)
	}
	if hdr[1] == 0 {
		return nil, ot.Malformed("SingleSubst", format, "NULL coverage offset")
	}
	var cov ot.Coverage
	err = r.Follow(hdr[1], func(r *ot.Reader) (err error) {
		cov, err = ot.ParseCoverage(r)
		return
	})
	if err != nil {
		return nil, ot.Truncated("Coverage", err)
	}
	tracer().Debugf("single substitution format %d with %d covered glyphs", format, cov.Len())
	if format == 1 {
		return &SingleSubstFormat1{Coverage: cov, DeltaGlyphID: int16(hdr[2])}, nil
	}
	subst, err := r.Glyphs(int(hdr[2]))
	if err != nil {
		return nil, ot.Truncated("SingleSubst", err)
	}
	if len(subst) != cov.Len() {
		return nil, ot.Malformed("SingleSubst", format,
			fmt.Sprintf("%d substitutes for %d covered glyphs", len(subst), cov.Len()))
	}
	return &SingleSubstFormat2{Coverage: cov, Substitutes: subst}, nil
}
