package otfont

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"sort"

	"github.com/klauspost/compress/zlib"
	"github.com/npillmayer/otcodec/core/font/opentype/ot"
)

// Font types as found in the first 4 bytes of a font file.
const (
	fontTypeOpenType uint32 = 0x4f54544f // OTTO
	fontTypeTrueType uint32 = 0x00010000
	fontTypeApple    uint32 = 0x74727565 // true
	fontTypeWOFF     uint32 = 0x774f4646 // wOFF
)

// FontHeader is the offset table at the start of an sfnt font.
type FontHeader struct {
	FontType      uint32
	TableCount    uint16
	SearchRange   uint16
	EntrySelector uint16
	RangeShift    uint16
}

// Font gives access to the tables of an OpenType font.
// A Font needs ongoing access to the font's byte data after Parse returns.
// Its elements are assumed immutable while the Font remains in use.
type Font struct {
	Header FontHeader
	WOFF   bool // font has been unpacked from a WOFF 1.0 file
	tables map[ot.Tag][]byte
}

// Parse parses the table directory of an OpenType font (sfnt or WOFF 1.0).
// Table contents are not interpreted.
func Parse(font []byte) (*Font, error) {
	r := bytes.NewReader(font)
	h := FontHeader{}
	if err := binary.Read(r, binary.BigEndian, &h); err != nil {
		return nil, errFontFormat("font header")
	}
	tracer().Debugf("header = %v, tag = %x|%s", h, h.FontType, ot.Tag(h.FontType).String())
	switch h.FontType {
	case fontTypeOpenType, fontTypeTrueType, fontTypeApple:
		return parseSFNT(font, h)
	case fontTypeWOFF:
		return parseWOFF(font)
	}
	return nil, errFontFormat(fmt.Sprintf("font type not supported: %x", h.FontType))
}

func parseSFNT(font []byte, h FontHeader) (*Font, error) {
	otf := &Font{Header: h, tables: make(map[ot.Tag][]byte)}
	// The offset table is followed immediately by the table records, 16 bytes each.
	if len(font) < 12+16*int(h.TableCount) {
		return nil, errFontFormat("table record entries")
	}
	for i, b := 0, font[12:]; i < int(h.TableCount); i, b = i+1, b[16:] {
		tag := ot.MakeTag(b[:4])
		off, size := binary.BigEndian.Uint32(b[8:12]), binary.BigEndian.Uint32(b[12:16])
		if uint64(off)+uint64(size) > uint64(len(font)) {
			return nil, errFontFormat(fmt.Sprintf("table %s exceeds font data", tag))
		}
		otf.tables[tag] = font[off : off+size]
	}
	return otf, nil
}

type woffHeader struct {
	Signature      uint32
	Flavor         uint32
	Length         uint32
	NumTables      uint16
	Reserved       uint16
	TotalSfntSize  uint32
	MajorVersion   uint16
	MinorVersion   uint16
	MetaOffset     uint32
	MetaLength     uint32
	MetaOrigLength uint32
	PrivOffset     uint32
	PrivLength     uint32
}

type woffTableEntry struct {
	Tag          uint32
	Offset       uint32
	CompLength   uint32
	OrigLength   uint32
	OrigChecksum uint32
}

// parseWOFF unpacks the tables of a WOFF 1.0 file. Tables are stored either
// uncompressed or zlib-compressed, the latter if their compressed length is
// smaller than their original length.
func parseWOFF(font []byte) (*Font, error) {
	r := bytes.NewReader(font)
	h := woffHeader{}
	if err := binary.Read(r, binary.BigEndian, &h); err != nil {
		return nil, errFontFormat("WOFF header")
	}
	entries := make([]woffTableEntry, h.NumTables)
	if err := binary.Read(r, binary.BigEndian, entries); err != nil {
		return nil, errFontFormat("WOFF table directory")
	}
	otf := &Font{
		Header: FontHeader{FontType: h.Flavor, TableCount: h.NumTables},
		WOFF:   true,
		tables: make(map[ot.Tag][]byte),
	}
	for _, e := range entries {
		tag := ot.Tag(e.Tag)
		if uint64(e.Offset)+uint64(e.CompLength) > uint64(len(font)) {
			return nil, errFontFormat(fmt.Sprintf("WOFF table %s exceeds font data", tag))
		}
		data := font[e.Offset : e.Offset+e.CompLength]
		if e.CompLength < e.OrigLength {
			zr, err := zlib.NewReader(bytes.NewReader(data))
			if err != nil {
				return nil, errFontFormat(fmt.Sprintf("WOFF table %s: %v", tag, err))
			}
			// buffer grows with the inflated data, not with OrigLength
			unpacked, err := io.ReadAll(io.LimitReader(zr, int64(e.OrigLength)+1))
			zr.Close()
			if err != nil {
				return nil, errFontFormat(fmt.Sprintf("WOFF table %s: %v", tag, err))
			}
			if len(unpacked) != int(e.OrigLength) {
				return nil, errFontFormat(fmt.Sprintf("WOFF table %s: %d bytes unpacked, header states %d",
					tag, len(unpacked), e.OrigLength))
			}
			data = unpacked
		} else if e.CompLength != e.OrigLength {
			return nil, errFontFormat(fmt.Sprintf("WOFF table %s: inconsistent lengths", tag))
		}
		tracer().Debugf("WOFF table %s: %d bytes, %d compressed", tag, e.OrigLength, e.CompLength)
		otf.tables[tag] = data
	}
	return otf, nil
}

// Table returns the binary data of the table with the given tag, or nil.
func (otf *Font) Table(tag ot.Tag) []byte {
	return otf.tables[tag]
}

// Tags returns the tags of all tables of the font, in ascending order.
func (otf *Font) Tags() []ot.Tag {
	tags := make([]ot.Tag, 0, len(otf.tables))
	for tag := range otf.tables {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}

// Assemble creates an sfnt font from a set of tables. Tables are ordered
// by tag and aligned to 4-byte boundaries. Checksums are not calculated.
//
// Assemble is meant for creating test fonts. The result will usually not be
// a font usable for text rendering.
func Assemble(tables map[ot.Tag][]byte) []byte {
	tags := make([]ot.Tag, 0, len(tables))
	for tag := range tables {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	n := uint16(len(tags))
	var searchRange, entrySelector uint16
	if n > 0 {
		searchRange = 1
		for searchRange*2 <= n {
			searchRange *= 2
			entrySelector++
		}
		searchRange *= 16
	}
	h := FontHeader{
		FontType:      fontTypeOpenType,
		TableCount:    n,
		SearchRange:   searchRange,
		EntrySelector: entrySelector,
		RangeShift:    n*16 - searchRange,
	}
	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.BigEndian, h)
	offset := uint32(12 + 16*len(tags))
	for _, tag := range tags {
		size := uint32(len(tables[tag]))
		_ = binary.Write(&buf, binary.BigEndian, []uint32{uint32(tag), 0, offset, size})
		offset += (size + 3) &^ 3
	}
	for _, tag := range tags {
		buf.Write(tables[tag])
		for pad := len(tables[tag]); pad%4 != 0; pad++ {
			buf.WriteByte(0)
		}
	}
	return buf.Bytes()
}
