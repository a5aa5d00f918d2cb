package main

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/image/font/sfnt"
)

// glyphNames resolves glyph indices to glyph names, as far as the font's
// 'post' table provides them. A nil *glyphNames resolves nothing.
type glyphNames struct {
	font *sfnt.Font
	buf  sfnt.Buffer
}

func newGlyphNames(data []byte) *glyphNames {
	f, err := sfnt.Parse(data)
	if err != nil {
		tracer().Infof("no glyph names available: %v", err)
		return nil
	}
	return &glyphNames{font: f}
}

// name returns the name of glyph g, or an empty string.
func (gn *glyphNames) name(g uint16) string {
	if gn == nil || int(g) >= gn.font.NumGlyphs() {
		return ""
	}
	name, err := gn.font.GlyphName(&gn.buf, sfnt.GlyphIndex(g))
	if err != nil {
		return ""
	}
	return name
}

// annotate appends a legend of glyph names to a YAML document.
func (gn *glyphNames) annotate(doc Document, yml string) string {
	if gn == nil {
		return yml
	}
	seen := make(map[uint16]bool)
	var glyphs []uint16
	add := func(g uint16) {
		if !seen[g] {
			seen[g] = true
			glyphs = append(glyphs, g)
		}
	}
	for g, subst := range doc.Single {
		add(g)
		add(subst)
	}
	for _, e := range doc.Pairs {
		add(e.Left)
		add(e.Right)
	}
	sort.Slice(glyphs, func(i, j int) bool { return glyphs[i] < glyphs[j] })
	var b strings.Builder
	b.WriteString(yml)
	for _, g := range glyphs {
		if name := gn.name(g); name != "" {
			fmt.Fprintf(&b, "# %5d = %s\n", g, name)
		}
	}
	return b.String()
}
