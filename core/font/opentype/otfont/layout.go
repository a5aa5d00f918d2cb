package otfont

import (
	"fmt"

	"github.com/npillmayer/otcodec/core/font/opentype/ot"
)

// Tags of the layout tables
var (
	GSUB = ot.T("GSUB")
	GPOS = ot.T("GPOS")
)

// extensionType returns the lookup type of extension lookups for a layout table.
func extensionType(table ot.Tag) ot.LookupType {
	if table == GPOS {
		return ot.GPosLookupTypeExtensionPos
	}
	return ot.GSubLookupTypeExtensionSubs
}

// TypeName returns the name of a lookup type of a layout table.
func TypeName(table ot.Tag, lt ot.LookupType) string {
	if table == GPOS {
		return lt.GPosString()
	}
	return lt.GSubString()
}

// SubtableRef identifies a lookup subtable within a layout table.
type SubtableRef struct {
	Table     ot.Tag        // GSUB or GPOS
	Lookup    int           // index of the lookup in the lookup list
	Subtable  int           // index of the subtable within its lookup
	Type      ot.LookupType // lookup type, extensions resolved
	Extension bool          // subtable is referenced by an extension subtable
	Offset    int           // start of the subtable, from the start of the layout table
}

func (ref SubtableRef) String() string {
	ext := ""
	if ref.Extension {
		ext = " (ext)"
	}
	return fmt.Sprintf("%s lookup #%d/%d %s%s @%d", ref.Table, ref.Lookup, ref.Subtable,
		TypeName(ref.Table, ref.Type), ext, ref.Offset)
}

// Subtables walks the lookup list of layout table GSUB or GPOS and returns
// references to all lookup subtables. If the font does not contain the table,
// an empty list is returned.
//
// Layout table headers of versions 1.0 and 1.1 are supported.
func (otf *Font) Subtables(table ot.Tag) ([]SubtableRef, error) {
	data := otf.Table(table)
	if data == nil {
		return nil, nil
	}
	r := ot.NewReader(data)
	r.Push()
	hdr, err := r.U16Array(5) // major, minor, script list, feature list, lookup list
	if err != nil {
		return nil, ot.Truncated(table.String(), err)
	}
	if hdr[0] != 1 || hdr[1] > 1 {
		return nil, errFontFormat(fmt.Sprintf("unsupported %s version %d.%d", table, hdr[0], hdr[1]))
	}
	tracer().Debugf("%s table has version %d.%d", table, hdr[0], hdr[1])
	var refs []SubtableRef
	err = r.Follow(hdr[4], func(r *ot.Reader) error {
		r.Push()
		defer r.Pop()
		lookups, err := r.Counted()
		if err != nil {
			return err
		}
		tracer().Debugf("%s table has %d lookup list entries", table, len(lookups))
		for i, offset := range lookups {
			err = r.Follow(offset, func(r *ot.Reader) error {
				subs, err := parseLookup(r, table, i)
				refs = append(refs, subs...)
				return err
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, ot.Truncated("LookupList", err)
	}
	return refs, nil
}

// parseLookup reads a lookup table:
//
//	uint16   lookupType
//	uint16   lookupFlag
//	uint16   subTableCount
//	Offset16 subtableOffsets[subTableCount]
//	uint16   markFilteringSet   (if lookupFlag & useMarkFilteringSet)
func parseLookup(r *ot.Reader, table ot.Tag, inx int) ([]SubtableRef, error) {
	r.Push()
	defer r.Pop()
	hdr, err := r.U16Array(2)
	if err != nil {
		return nil, err
	}
	lt := ot.LookupType(hdr[0])
	offsets, err := r.Counted()
	if err != nil {
		return nil, err
	}
	tracer().Debugf("lookup #%d of type %s has %d subtables", inx, TypeName(table, lt), len(offsets))
	refs := make([]SubtableRef, len(offsets))
	for i, offset := range offsets {
		refs[i] = SubtableRef{Table: table, Lookup: inx, Subtable: i, Type: lt}
		err = r.Follow(offset, func(r *ot.Reader) error {
			refs[i].Offset = r.Pos()
			if lt != extensionType(table) {
				return nil
			}
			return resolveExtension(r, &refs[i])
		})
		if err != nil {
			return nil, err
		}
	}
	return refs, nil
}

// resolveExtension reads an extension subtable and redirects ref to the
// subtable it points to.
//
//	uint16   format               1
//	uint16   extensionLookupType
//	Offset32 extensionOffset
func resolveExtension(r *ot.Reader, ref *SubtableRef) error {
	r.Push()
	defer r.Pop()
	hdr, err := r.U16Array(2)
	if err != nil {
		return err
	}
	if hdr[0] != 1 {
		return ot.Malformed("Extension", hdr[0], "")
	}
	lt := ot.LookupType(hdr[1])
	if lt == extensionType(ref.Table) {
		tracer().Errorf("OpenType %s lookup subtable extension recursion detected", ref.Table)
		return ot.Malformed("Extension", hdr[0], "extension of an extension")
	}
	offset, err := r.U32()
	if err != nil {
		return err
	}
	tracer().Debugf("OpenType %s extension subtable is of type %s", ref.Table, TypeName(ref.Table, lt))
	ref.Type, ref.Extension = lt, true
	return r.Follow32(offset, func(r *ot.Reader) error {
		ref.Offset = r.Pos()
		return nil
	})
}

// --- Compiling layout tables -----------------------------------------------

// Lookup is a lookup of a layout table, to be compiled by CompileLayoutTable.
// Subtables are nodes as created by the Compile method of the subtable models.
type Lookup struct {
	Type      ot.LookupType
	Flag      uint16
	Subtables []*ot.Node
}

// CompileLayoutTable creates a version 1.0 GSUB or GPOS table with an empty
// script list, an empty feature list, and the given lookups.
// If extension is true, every subtable is wrapped into an extension subtable,
// which allows subtables to be placed beyond the reach of 16-bit offsets.
func CompileLayoutTable(table ot.Tag, lookups []Lookup, extension bool) ([]byte, error) {
	if table != GSUB && table != GPOS {
		return nil, errFontFormat(fmt.Sprintf("not a layout table: %s", table))
	}
	lookupList := ot.NewNode("LookupList").U16(uint16(len(lookups)))
	for _, lookup := range lookups {
		lt := lookup.Type
		if extension {
			lt = extensionType(table)
		}
		node := ot.NewNode("Lookup").U16(uint16(lt)).U16(lookup.Flag &^ 0x0010)
		node.U16(uint16(len(lookup.Subtables)))
		for _, sub := range lookup.Subtables {
			if extension {
				ext := ot.NewNode("Extension").U16(1).U16(uint16(lookup.Type))
				sub = ext.Link32(sub)
			}
			node.Link16(sub)
		}
		lookupList.Link16(node)
	}
	header := ot.NewNode(table.String()).U16(1).U16(0)
	header.Link16(ot.NewNode("ScriptList").U16(0))
	header.Link16(ot.NewNode("FeatureList").U16(0))
	header.Link16(lookupList)
	return ot.Serialize(header)
}
