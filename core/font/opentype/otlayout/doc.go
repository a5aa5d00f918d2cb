/*
Package otlayout normalizes OpenType layout subtables into format independent
models, and compiles these models back into binary subtables.

Lookup subtables of GSUB and GPOS come in different binary formats. A single
substitution may be stored as a uniform glyph index delta (format 1) or as an
explicit list of substitutes (format 2), and a pair adjustment may be stored
as glyph pairs (format 1) or glyph classes (format 2). Clients manipulating
lookups should not have to care about this. Package otlayout offers

▪︎ canonical models: `SingleSubst` (glyph → glyph) and `PairPos`
(glyph pair → pair of value records);

▪︎ decoders (`ParseSingleSubst`, `ParsePairPos`), which accept every format a
font may contain, reject unknown formats as malformed, and reject PairPos
format 2 as unsupported;

▪︎ format selection (`Compile`), which deterministically chooses a legal wire
format for a model. Compiling the same model will always produce the same
bytes, independent of the order in which the model has been built.

Wire formats are represented by types `SingleSubstFormat1`,
`SingleSubstFormat2` and `PairPosFormat1`. Clients will usually not need them,
as the models implement encoding.BinaryMarshaler and
encoding.BinaryUnmarshaler.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package otlayout

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'otcodec.fonts'
func tracer() tracing.Trace {
	return tracing.Select("otcodec.fonts")
}
