package ot

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestLookupRecordTypeString(t *testing.T) {
	if GSubLookupTypeChainingContext.GSubString() != "Chaining" {
		t.Errorf("expected GSUB_LUTYPE_Reverse_chaining to have string 'Chaining', has %s",
			GSubLookupTypeChainingContext.GSubString())
	}
	if GSubLookupTypeReverseChaining.GSubString() != "Reverse" {
		t.Errorf("expected GSUB_LUTYPE_Reverse_chaining to have string 'Reverse', has %s",
			GSubLookupTypeReverseChaining.GSubString())
	}
	if GSubLookupTypeSingle.GSubString() != "Single" {
		t.Errorf("expected GSUB lookup type 1 to have string 'Single', has %s",
			GSubLookupTypeSingle.GSubString())
	}
	if GPosLookupTypeMarkToLigature.GPosString() != "MarkToLigature" {
		t.Errorf("expected GPOS_LUTYPE_MarkToLigature to have string 'MarkToLigature', has %s",
			GPosLookupTypeMarkToLigature.GPosString())
	}
	if GPosLookupTypeExtensionPos.GPosString() != "Ext" {
		t.Errorf("expected GPOS lookup type 9 to have string 'Ext', has %s",
			GPosLookupTypeExtensionPos.GPosString())
	}
	if LookupType(12).GPosString() != "12" {
		t.Errorf("expected unknown GPOS lookup type to print as number, is %s",
			LookupType(12).GPosString())
	}
}

func TestTags(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "otcodec.fonts")
	defer teardown()
	//
	tag := Tag(0x636d6170)
	if tag.String() != "cmap" {
		t.Errorf("expected tag 0x636d6170 to be 'cmap', is %s", tag.String())
	}
	tag = MakeTag([]byte("cmap"))
	if tag.String() != "cmap" {
		t.Errorf("expected tag MakeTag(cmap) to be 'cmap', is %s", tag.String())
	}
	tag = T("cmap")
	if tag.String() != "cmap" {
		t.Errorf("expected tag T(cmap) to be 'cmap', is %s", tag.String())
	}
	if T("kern") != T("kern  x") {
		t.Errorf("expected tags to be cut to 4 letters")
	}
}
