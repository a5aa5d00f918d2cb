package main

import (
	"errors"
	"fmt"
	"sort"

	"github.com/npillmayer/otcodec/core/font/opentype/ot"
	"github.com/npillmayer/otcodec/core/font/opentype/otlayout"
	"gopkg.in/yaml.v3"
)

// Document is the YAML representation of a subtable model. Exactly one of
// Single and Pairs is used.
//
//	single:
//	  66: 67
//	pairs:
//	  - left: 0
//	    right: 289
//	    first: { xAdvance: -90 }
type Document struct {
	Single map[uint16]uint16 `yaml:"single"`
	Pairs  []PairEntry       `yaml:"pairs"`
}

// PairEntry is a glyph pair with its adjustments.
type PairEntry struct {
	Left   uint16 `yaml:"left"`
	Right  uint16 `yaml:"right"`
	First  Value  `yaml:"first,omitempty"`
	Second Value  `yaml:"second,omitempty"`
}

// Value is the YAML representation of an ot.ValueRecord.
type Value struct {
	XPlacement int16   `yaml:"xPlacement,omitempty"`
	YPlacement int16   `yaml:"yPlacement,omitempty"`
	XAdvance   int16   `yaml:"xAdvance,omitempty"`
	YAdvance   int16   `yaml:"yAdvance,omitempty"`
	XPlaDevice *Device `yaml:"xPlaDevice,omitempty"`
	YPlaDevice *Device `yaml:"yPlaDevice,omitempty"`
	XAdvDevice *Device `yaml:"xAdvDevice,omitempty"`
	YAdvDevice *Device `yaml:"yAdvDevice,omitempty"`
}

// Device is the YAML representation of an ot.Device. If Variation is set,
// Outer and Inner are used, otherwise Start and Deltas.
type Device struct {
	Start     uint16 `yaml:"start,omitempty"`
	Deltas    []int8 `yaml:"deltas,flow,omitempty"`
	Variation bool   `yaml:"variation,omitempty"`
	Outer     uint16 `yaml:"outer,omitempty"`
	Inner     uint16 `yaml:"inner,omitempty"`
}

func fromDevice(d *ot.Device) *Device {
	if d.IsEmpty() {
		return nil
	}
	return &Device{Start: d.StartSize, Deltas: d.Deltas, Variation: d.Variation,
		Outer: d.OuterIndex, Inner: d.InnerIndex}
}

func (d *Device) device() *ot.Device {
	if d == nil {
		return nil
	}
	return &ot.Device{StartSize: d.Start, Deltas: d.Deltas, Variation: d.Variation,
		OuterIndex: d.Outer, InnerIndex: d.Inner}
}

func fromValueRecord(vr ot.ValueRecord) Value {
	return Value{
		XPlacement: vr.XPlacement, YPlacement: vr.YPlacement,
		XAdvance: vr.XAdvance, YAdvance: vr.YAdvance,
		XPlaDevice: fromDevice(vr.XPlaDevice), YPlaDevice: fromDevice(vr.YPlaDevice),
		XAdvDevice: fromDevice(vr.XAdvDevice), YAdvDevice: fromDevice(vr.YAdvDevice),
	}
}

func (v Value) valueRecord() ot.ValueRecord {
	return ot.ValueRecord{
		XPlacement: v.XPlacement, YPlacement: v.YPlacement,
		XAdvance: v.XAdvance, YAdvance: v.YAdvance,
		XPlaDevice: v.XPlaDevice.device(), YPlaDevice: v.YPlaDevice.device(),
		XAdvDevice: v.XAdvDevice.device(), YAdvDevice: v.YAdvDevice.device(),
	}.Simplify()
}

// singleDocument creates a document from a single substitution.
func singleDocument(s otlayout.SingleSubst) Document {
	doc := Document{Single: make(map[uint16]uint16, len(s.Mapping))}
	for g, subst := range s.Mapping {
		doc.Single[uint16(g)] = uint16(subst)
	}
	return doc
}

// pairDocument creates a document from a pair adjustment. Pairs are ordered
// by left glyph, then by right glyph.
func pairDocument(p otlayout.PairPos) Document {
	doc := Document{Pairs: make([]PairEntry, 0, len(p.Mapping))}
	for pair, pv := range p.Mapping {
		doc.Pairs = append(doc.Pairs, PairEntry{
			Left:   uint16(pair.Left),
			Right:  uint16(pair.Right),
			First:  fromValueRecord(pv.First),
			Second: fromValueRecord(pv.Second),
		})
	}
	sort.Slice(doc.Pairs, func(i, j int) bool {
		a, b := doc.Pairs[i], doc.Pairs[j]
		return a.Left < b.Left || (a.Left == b.Left && a.Right < b.Right)
	})
	return doc
}

var errEmptyDocument = errors.New("document contains neither 'single' nor 'pairs'")

// readDocument parses a YAML document and returns either a single
// substitution or a pair adjustment.
func readDocument(data []byte) (*otlayout.SingleSubst, *otlayout.PairPos, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, nil, err
	}
	switch {
	case doc.Single != nil && doc.Pairs != nil:
		return nil, nil, fmt.Errorf("document contains both 'single' and 'pairs'")
	case doc.Single != nil:
		s := otlayout.NewSingleSubst()
		for g, subst := range doc.Single {
			s.Mapping[ot.GlyphIndex(g)] = ot.GlyphIndex(subst)
		}
		return &s, nil, nil
	case doc.Pairs != nil:
		p := otlayout.NewPairPos()
		for _, e := range doc.Pairs {
			pair := otlayout.GlyphPair{Left: ot.GlyphIndex(e.Left), Right: ot.GlyphIndex(e.Right)}
			p.Mapping[pair] = otlayout.PairValue{First: e.First.valueRecord(), Second: e.Second.valueRecord()}
		}
		return nil, &p, nil
	}
	return nil, nil, errEmptyDocument
}

// writeDocument writes the part of doc in use. Empty models are written as
// `single: {}` or `pairs: []`, so they may be read back.
func writeDocument(doc Document) ([]byte, error) {
	if doc.Pairs != nil {
		return yaml.Marshal(map[string][]PairEntry{"pairs": doc.Pairs})
	}
	single := doc.Single
	if single == nil {
		single = map[uint16]uint16{}
	}
	return yaml.Marshal(map[string]map[uint16]uint16{"single": single})
}
