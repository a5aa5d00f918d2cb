/*
Package otfont locates single substitution and pair adjustment subtables in
OpenType fonts and decodes them.

A font is parsed only as far as needed: the table directory (of an sfnt or a
WOFF 1.0 file), the headers of tables GSUB and GPOS, their lookup lists and
lookups. Extension lookups (GSUB type 7, GPOS type 9) are resolved, i.e. the
subtables they point to are reported with their effective lookup type.

Subtables are decoded concurrently by `Scan`. Every subtable is decoded with
its own read cursor, so no decoding state is shared between goroutines.
Errors are reported per subtable, unless option `Strict` is set, which will
stop scanning at the first broken subtable.

For tests and tools, `CompileLayoutTable` and `Assemble` create minimal fonts
from lookup subtables compiled by package otlayout.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package otfont

import (
	"github.com/npillmayer/otcodec/core"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'otcodec.fonts'
func tracer() tracing.Trace {
	return tracing.Select("otcodec.fonts")
}

// errFontFormat produces user level errors for font parsing.
func errFontFormat(x string) error {
	return core.Error(core.EINVALID, "OpenType font format: %s", x)
}
