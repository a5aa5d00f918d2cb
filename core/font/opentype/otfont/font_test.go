package otfont

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"runtime"
	"testing"

	"github.com/klauspost/compress/zlib"
	"github.com/npillmayer/otcodec/core"
	"github.com/npillmayer/otcodec/core/font/opentype/ot"
	"github.com/npillmayer/otcodec/core/font/opentype/otlayout"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSubst() otlayout.SingleSubst {
	s := otlayout.NewSingleSubst()
	s.Mapping[66] = 67
	s.Mapping[68] = 69
	return s
}

func testKerning() otlayout.PairPos {
	p := otlayout.NewPairPos()
	adv := func(x int16) ot.ValueRecord { return ot.ValueRecord{Format: ot.XAdvance, XAdvance: x} }
	p.Mapping[otlayout.GlyphPair{Left: 0, Right: 289}] = otlayout.PairValue{First: adv(-90)}
	p.Mapping[otlayout.GlyphPair{Left: 0, Right: 332}] = otlayout.PairValue{First: adv(-150)}
	p.Mapping[otlayout.GlyphPair{Left: 332, Right: 833}] = otlayout.PairValue{First: adv(100)}
	return p
}

// classKerning is a PairPos format 2 subtable, which is not supported.
func classKerning() *ot.Node {
	return ot.NewNode("PairPosFormat2").U16(2).Link16(ot.NewCoverage(1).Node()).
		U16(uint16(ot.XAdvance)).U16(0).U16(0).U16(0).U16(1).U16(1).I16(-50)
}

func buildFont(t *testing.T, extension bool, gposExtra ...*ot.Node) []byte {
	gsub, err := CompileLayoutTable(GSUB, []Lookup{
		{Type: ot.GSubLookupTypeSingle, Subtables: []*ot.Node{testSubst().Compile().Node()}},
		{Type: ot.GSubLookupTypeLigature, Subtables: []*ot.Node{ot.NewNode("Ligature").U16(1)}},
	}, extension)
	require.NoError(t, err)
	pairs := []*ot.Node{testKerning().Compile().Node()}
	gpos, err := CompileLayoutTable(GPOS, []Lookup{
		{Type: ot.GPosLookupTypePair, Subtables: append(pairs, gposExtra...)},
	}, extension)
	require.NoError(t, err)
	return Assemble(map[ot.Tag][]byte{
		GSUB:         gsub,
		GPOS:         gpos,
		ot.T("OS/2"): {0, 4},
	})
}

func TestParseTableDirectory(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "otcodec.fonts")
	defer teardown()
	//
	otf, err := Parse(buildFont(t, false))
	require.NoError(t, err)
	assert.Equal(t, uint16(3), otf.Header.TableCount)
	assert.Equal(t, uint16(32), otf.Header.SearchRange)
	assert.Equal(t, []ot.Tag{GPOS, GSUB, ot.T("OS/2")}, otf.Tags())
	assert.Equal(t, []byte{0, 4}, otf.Table(ot.T("OS/2")))
	assert.Nil(t, otf.Table(ot.T("kern")))
	//
	_, err = Parse([]byte("no font at all"))
	assert.Error(t, err)
	assert.Equal(t, core.EINVALID, core.Code(err))
	_, err = Parse([]byte{0, 1, 0, 0, 0, 9, 0, 0})
	assert.Error(t, err)
}

func TestSubtableRefs(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "otcodec.fonts")
	defer teardown()
	//
	for _, extension := range []bool{false, true} {
		otf, err := Parse(buildFont(t, extension))
		require.NoError(t, err)
		refs, err := otf.Subtables(GSUB)
		require.NoError(t, err)
		require.Len(t, refs, 2)
		assert.Equal(t, ot.GSubLookupTypeSingle, refs[0].Type)
		assert.Equal(t, ot.GSubLookupTypeLigature, refs[1].Type)
		assert.Equal(t, 1, refs[1].Lookup)
		assert.Equal(t, extension, refs[0].Extension)
		t.Logf("%s", refs[0])
		refs, err = otf.Subtables(GPOS)
		require.NoError(t, err)
		require.Len(t, refs, 1)
		assert.Equal(t, ot.GPosLookupTypePair, refs[0].Type)
	}
	otf, err := Parse(Assemble(map[ot.Tag][]byte{ot.T("OS/2"): {0, 4}}))
	require.NoError(t, err)
	refs, err := otf.Subtables(GSUB)
	assert.NoError(t, err)
	assert.Empty(t, refs)
}

func TestScan(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "otcodec.fonts")
	defer teardown()
	//
	for _, extension := range []bool{false, true} {
		otf, err := Parse(buildFont(t, extension))
		require.NoError(t, err)
		results, err := otf.Scan(context.Background(), Options{Concurrency: 2})
		require.NoError(t, err)
		require.Len(t, results, 2, "expected ligature subtable to be skipped")
		require.NotNil(t, results[0].SingleSubst)
		assert.Equal(t, testSubst(), *results[0].SingleSubst)
		require.NotNil(t, results[1].PairPos)
		assert.Equal(t, testKerning(), *results[1].PairPos)
		assert.NoError(t, results[1].Err)
	}
}

func TestScanUnsupported(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "otcodec.fonts")
	defer teardown()
	//
	otf, err := Parse(buildFont(t, false, classKerning()))
	require.NoError(t, err)
	results, err := otf.Scan(context.Background(), Options{})
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.NotNil(t, results[1].PairPos)
	broken := results[2]
	assert.Nil(t, broken.PairPos)
	require.Error(t, broken.Err)
	assert.True(t, errors.Is(broken.Err, ot.ErrUnsupported))
	assert.Equal(t, core.EUNSUPPORTED, core.Code(broken.Err))
	assert.Contains(t, core.UserMessage(broken.Err), "GPOS lookup #0/1")
	//
	results, err = otf.Scan(context.Background(), Options{Strict: true})
	assert.True(t, errors.Is(err, ot.ErrUnsupported))
	assert.Nil(t, results)
}

func TestScanCancelled(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "otcodec.fonts")
	defer teardown()
	//
	otf, err := Parse(buildFont(t, false))
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = otf.Scan(ctx, Options{})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestExtensionRecursion(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "otcodec.fonts")
	defer teardown()
	//
	inner := ot.NewNode("Extension").U16(1).U16(uint16(ot.GSubLookupTypeSingle)).
		Link32(testSubst().Compile().Node())
	outer := ot.NewNode("Extension").U16(1).U16(uint16(ot.GSubLookupTypeExtensionSubs)).Link32(inner)
	gsub, err := CompileLayoutTable(GSUB, []Lookup{
		{Type: ot.GSubLookupTypeExtensionSubs, Subtables: []*ot.Node{outer}},
	}, false)
	require.NoError(t, err)
	otf, err := Parse(Assemble(map[ot.Tag][]byte{GSUB: gsub}))
	require.NoError(t, err)
	_, err = otf.Subtables(GSUB)
	assert.True(t, errors.Is(err, ot.ErrMalformed))
	//
	_, err = CompileLayoutTable(ot.T("kern"), nil, false)
	assert.Error(t, err)
}

func TestWOFF(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "otcodec.fonts")
	defer teardown()
	//
	sfnt, err := Parse(buildFont(t, false))
	require.NoError(t, err)
	woff := makeWOFF(t, sfnt)
	otf, err := Parse(woff)
	require.NoError(t, err)
	assert.True(t, otf.WOFF)
	assert.Equal(t, sfnt.Table(GPOS), otf.Table(GPOS))
	assert.Equal(t, sfnt.Table(ot.T("OS/2")), otf.Table(ot.T("OS/2")))
	results, err := otf.Scan(context.Background(), Options{Strict: true})
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestWOFFTableLength(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "otcodec.fonts")
	defer teardown()
	//
	var packed bytes.Buffer
	zw := zlib.NewWriter(&packed)
	table := make([]byte, 64)
	_, err := zw.Write(table)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	woff := func(origLength uint32) []byte {
		entry := woffTableEntry{
			Tag:        uint32(ot.T("OS/2")),
			Offset:     44 + 20,
			CompLength: uint32(packed.Len()),
			OrigLength: origLength,
		}
		h := woffHeader{Signature: fontTypeWOFF, Flavor: fontTypeOpenType, NumTables: 1,
			Length: entry.Offset + entry.CompLength}
		var out bytes.Buffer
		require.NoError(t, binary.Write(&out, binary.BigEndian, h))
		require.NoError(t, binary.Write(&out, binary.BigEndian, []woffTableEntry{entry}))
		out.Write(packed.Bytes())
		return out.Bytes()
	}
	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	_, err = Parse(woff(1 << 30))
	runtime.ReadMemStats(&after)
	require.Error(t, err)
	assert.Equal(t, core.EINVALID, core.Code(err))
	assert.Less(t, after.TotalAlloc-before.TotalAlloc, uint64(1<<24),
		"expected allocation to follow the inflated data, not the stated table length")
	//
	_, err = Parse(woff(63))
	assert.Error(t, err, "expected surplus inflated data to be rejected")
	otf, err := Parse(woff(64))
	require.NoError(t, err)
	assert.Equal(t, table, otf.Table(ot.T("OS/2")))
}

// makeWOFF packs the tables of a font into a WOFF 1.0 file. Tables of more
// than 16 bytes are compressed.
func makeWOFF(t *testing.T, otf *Font) []byte {
	tags := otf.Tags()
	var entries []woffTableEntry
	var data bytes.Buffer
	offset := uint32(44 + 20*len(tags))
	for _, tag := range tags {
		table := otf.Table(tag)
		packed := table
		if len(table) > 16 {
			var buf bytes.Buffer
			zw := zlib.NewWriter(&buf)
			_, err := zw.Write(table)
			require.NoError(t, err)
			require.NoError(t, zw.Close())
			if buf.Len() < len(table) {
				packed = buf.Bytes()
			}
		}
		entries = append(entries, woffTableEntry{
			Tag:        uint32(tag),
			Offset:     offset + uint32(data.Len()),
			CompLength: uint32(len(packed)),
			OrigLength: uint32(len(table)),
		})
		data.Write(packed)
		for data.Len()%4 != 0 {
			data.WriteByte(0)
		}
	}
	h := woffHeader{
		Signature: fontTypeWOFF,
		Flavor:    fontTypeOpenType,
		Length:    offset + uint32(data.Len()),
		NumTables: uint16(len(tags)),
	}
	var out bytes.Buffer
	require.NoError(t, binary.Write(&out, binary.BigEndian, h))
	require.NoError(t, binary.Write(&out, binary.BigEndian, entries))
	out.Write(data.Bytes())
	return out.Bytes()
}
