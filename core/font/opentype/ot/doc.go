/*
Package ot provides the binary building blocks for reading and writing
OpenType layout subtables.

Intended audience for this package are packages which decode lookup subtables
of GSUB and GPOS tables into format-independent models and compile them back
into bytes (see sister package `otlayout`). Package `ot` does not know about the
semantics of any lookup type. It offers:

▪︎ a read cursor (`Reader`), which keeps a stack of table base positions, as
offsets in OpenType are always relative to the start of an enclosing table;

▪︎ an offset graph writer (`Node`, `Serialize`), where tables are linked by
16-bit offsets and the final layout is computed only when every table is known;

▪︎ the coverage table (`Coverage`), an ordered set of glyphs, whose index positions
correlate with parallel arrays in lookup subtables;

▪︎ value records (`ValueRecord`), the flag-driven sparse records of positioning
adjustments, including device and variation-index tables.

# Offsets

The binary data of a font can be thought of as a bunch of structures
connected by links. The linking is done by offsets from link anchors
defined by the OpenType format. Usually the anchor is the start of the table containing
the offset field, i.e. the immediately enclosing table. When reading, clients
`Push` the start of a table onto the reader's base stack, and use `Follow` to
visit a linked table without losing the position within the enclosing one.
When writing, clients build a graph of nodes and call `Serialize`, which places
child tables after their parents and fills in every offset.

# Errors

Decoding errors are reported as `*FormatError` values, which implement
`core.AppError`. Malformed data (unknown format numbers, truncated tables,
inconsistent counts) match `ErrMalformed`, formats which are legal but not
handled by this module match `ErrUnsupported`.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package ot

import (
	"github.com/npillmayer/schuko/tracing"
)

// Valuable resource:
// https://docs.microsoft.com/en-us/typography/opentype/spec/chapter2

// tracer writes to trace with key 'otcodec.fonts'
func tracer() tracing.Trace {
	return tracing.Select("otcodec.fonts")
}
