package main

import (
	"errors"
	"testing"

	"github.com/npillmayer/otcodec/core/font/opentype/ot"
	"github.com/npillmayer/otcodec/core/font/opentype/otlayout"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const kerningYAML = `
pairs:
  - left: 0
    right: 289
    first: { xAdvance: -90 }
  - left: 332
    right: 833
    first: { xAdvance: 100 }
  - left: 0
    right: 332
    first: { xAdvance: -150 }
`

func TestEncodeKerning(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "otcodec.fonts")
	defer teardown()
	//
	format, data, err := encode([]byte(kerningYAML))
	require.NoError(t, err)
	assert.Equal(t, uint16(1), format)
	fixture, err := parseHex(`00 01 00 0e 00 04 00 00 00 02 00 16 00 20 00 01 00 02 00 00 01 4c
		00 02 01 21 ff a6 01 4c ff 6a 00 01 03 41 00 64`)
	require.NoError(t, err)
	assert.Equal(t, fixture, data)
	//
	yml, err := decode(kindPairPos, data)
	require.NoError(t, err)
	_, again, err := encode([]byte(yml))
	require.NoError(t, err)
	assert.Equal(t, data, again)
}

func TestDecodeSingle(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "otcodec.fonts")
	defer teardown()
	//
	data, err := parseHex("0x0001000600010001000200420044")
	require.NoError(t, err)
	yml, err := decode(kindSingleSubst, data)
	require.NoError(t, err)
	s, p, err := readDocument([]byte(yml))
	require.NoError(t, err)
	assert.Nil(t, p)
	require.NotNil(t, s)
	assert.Equal(t, ot.GlyphIndex(67), s.Mapping[66])
	assert.Equal(t, ot.GlyphIndex(69), s.Mapping[68])
	//
	_, err = decode(kindPairPos, data[:3])
	assert.True(t, errors.Is(err, ot.ErrMalformed))
	_, err = decode("gsub4", data)
	assert.Error(t, err)
}

func TestDocumentDevices(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "otcodec.fonts")
	defer teardown()
	//
	p := otlayout.NewPairPos()
	p.Mapping[otlayout.GlyphPair{Left: 3, Right: 4}] = otlayout.PairValue{
		First: ot.ValueRecord{
			XAdvance:   -12,
			XAdvDevice: &ot.Device{StartSize: 9, Deltas: []int8{1, 0, -1}},
		}.Simplify(),
		Second: ot.ValueRecord{
			YPlaDevice: &ot.Device{Variation: true, OuterIndex: 2, InnerIndex: 5},
		}.Simplify(),
	}
	yml, err := writeDocument(pairDocument(p))
	require.NoError(t, err)
	t.Logf("\n%s", yml)
	_, back, err := readDocument(yml)
	require.NoError(t, err)
	assert.Equal(t, p, *back)
}

func TestEmptyModels(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "otcodec.fonts")
	defer teardown()
	//
	for kind, hex := range map[string]string{
		kindSingleSubst: "00 02 00 06 00 00 00 01 00 00",
		kindPairPos:     "00 01 00 0a 00 00 00 00 00 00 00 01 00 00",
	} {
		data, err := parseHex(hex)
		require.NoError(t, err)
		yml, err := decode(kind, data)
		require.NoError(t, err, kind)
		t.Logf("%s: %q", kind, yml)
		_, again, err := encode([]byte(yml))
		require.NoError(t, err, "expected empty %s model to be accepted by encode", kind)
		assert.Equal(t, data, again, kind)
	}
	yml, err := writeDocument(Document{})
	require.NoError(t, err)
	assert.Equal(t, "single: {}\n", string(yml))
}

func TestDocumentErrors(t *testing.T) {
	_, _, err := readDocument([]byte("foo: 1\n"))
	assert.Equal(t, errEmptyDocument, err)
	_, _, err = readDocument([]byte("single: {1: 2}\npairs: []\n"))
	assert.Error(t, err)
	_, _, err = readDocument([]byte("single: [\n"))
	assert.Error(t, err)
	_, err = parseHex("0g")
	assert.Error(t, err)
}

func TestFormatHex(t *testing.T) {
	assert.Equal(t, "00 01 ff", formatHex([]byte{0, 1, 255}))
	data := make([]byte, 17)
	assert.Equal(t, "00 00 00 00 00 00 00 00 00 00 00 00 00 00 00 00\n00", formatHex(data))
}
