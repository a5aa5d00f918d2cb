package ot

import "strconv"

// LookupType is the type of a lookup in a GSUB or GPOS table. The meaning of
// the numbers depends on the table.
type LookupType uint16

// GSUB Table Lookup Type
// https://docs.microsoft.com/en-us/typography/opentype/spec/gsub#table-organization

// GSUB Lookup Type Enumeration
const (
	GSubLookupTypeSingle          LookupType = 1 // Replace one glyph with one glyph
	GSubLookupTypeMultiple        LookupType = 2 // Replace one glyph with more than one glyph
	GSubLookupTypeAlternate       LookupType = 3 // Replace one glyph with one of many glyphs
	GSubLookupTypeLigature        LookupType = 4 // Replace multiple glyphs with one glyph
	GSubLookupTypeContext         LookupType = 5 // Replace one or more glyphs in context
	GSubLookupTypeChainingContext LookupType = 6 // Replace one or more glyphs in chained context
	GSubLookupTypeExtensionSubs   LookupType = 7 // Extension mechanism for other substitutions
	GSubLookupTypeReverseChaining LookupType = 8 // Applied in reverse order, replace single glyph in chaining context
)

const gsubLookupTypeNames = "Single|Multiple|Alternate|Ligature|Context|Chaining|Extension|Reverse"

var gsubLookupTypeInx = [...]int{0, 7, 16, 26, 35, 43, 52, 62, 70}

// GSubString interprets a lookup type as a GSUB lookup type.
func (lt LookupType) GSubString() string {
	if lt >= GSubLookupTypeSingle && lt <= GSubLookupTypeReverseChaining {
		i := lt - 1
		return gsubLookupTypeNames[gsubLookupTypeInx[i] : gsubLookupTypeInx[i+1]-1]
	}
	return strconv.Itoa(int(lt))
}

// GPOS Table
// https://docs.microsoft.com/en-us/typography/opentype/spec/gpos#table-organization

// GPOS Lookup Type Enumeration
const (
	GPosLookupTypeSingle            LookupType = 1 // Adjust position of a single glyph
	GPosLookupTypePair              LookupType = 2 // Adjust position of a pair of glyphs
	GPosLookupTypeCursive           LookupType = 3 // Attach cursive glyphs
	GPosLookupTypeMarkToBase        LookupType = 4 // Attach a combining mark to a base glyph
	GPosLookupTypeMarkToLigature    LookupType = 5 // Attach a combining mark to a ligature
	GPosLookupTypeMarkToMark        LookupType = 6 // Attach a combining mark to another mark
	GPosLookupTypeContextPos        LookupType = 7 // Position one or more glyphs in context
	GPosLookupTypeChainedContextPos LookupType = 8 // Position one or more glyphs in chained context
	GPosLookupTypeExtensionPos      LookupType = 9 // Extension mechanism for other positionings
)

const gposLookupTypeNames = "Single|Pair|Cursive|MarkToBase|MarkToLigature|MarkToMark|ContextPos|Chained|Ext"

var gposLookupTypeInx = [...]int{0, 7, 12, 20, 31, 46, 57, 68, 76, 80}

// GPosString interprets a lookup type as a GPOS lookup type.
func (lt LookupType) GPosString() string {
	if lt >= GPosLookupTypeSingle && lt <= GPosLookupTypeExtensionPos {
		i := lt - 1
		return gposLookupTypeNames[gposLookupTypeInx[i] : gposLookupTypeInx[i+1]-1]
	}
	return strconv.Itoa(int(lt))
}
