package otfont

import (
	"context"
	"runtime"

	"github.com/npillmayer/otcodec/core"
	"github.com/npillmayer/otcodec/core/font/opentype/ot"
	"github.com/npillmayer/otcodec/core/font/opentype/otlayout"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Options control scanning of a font.
type Options struct {
	Strict      bool // stop at the first subtable which cannot be decoded
	Concurrency int  // maximum number of concurrent decoders; 0 means one per CPU
}

// Result is the outcome of decoding a single lookup subtable.
// Exactly one of SingleSubst, PairPos and Err is set.
type Result struct {
	SubtableRef
	SingleSubst *otlayout.SingleSubst
	PairPos     *otlayout.PairPos
	Err         error
}

// Scan decodes all single substitution subtables (GSUB lookup type 1) and
// all pair adjustment subtables (GPOS lookup type 2) of a font.
//
// Results are returned in the order of the lookup lists, GSUB first. A
// subtable which cannot be decoded yields a Result with Err set, carrying the
// error code of the decoding error. If opts.Strict is set, Scan instead returns
// the first decoding error and no results.
// Errors in the lookup lists themselves are always returned as an error.
func (otf *Font) Scan(ctx context.Context, opts Options) ([]Result, error) {
	var refs []SubtableRef
	for _, table := range []ot.Tag{GSUB, GPOS} {
		subs, err := otf.Subtables(table)
		if err != nil {
			return nil, err
		}
		for _, ref := range subs {
			if isSingleSubst(ref) || isPairPos(ref) {
				refs = append(refs, ref)
			}
		}
	}
	tracer().Infof("scanning %d subtables", len(refs))
	n := opts.Concurrency
	if n <= 0 {
		n = runtime.NumCPU()
	}
	sem := semaphore.NewWeighted(int64(n))
	results := make([]Result, len(refs))
	g, gctx := errgroup.WithContext(ctx)
	for i := range refs {
		i := i
		if err := sem.Acquire(gctx, 1); err != nil {
			break // context cancelled; g.Wait reports the cause
		}
		g.Go(func() error {
			defer sem.Release(1)
			results[i] = otf.decode(refs[i])
			if results[i].Err != nil && opts.Strict {
				return results[i].Err
			}
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func isSingleSubst(ref SubtableRef) bool {
	return ref.Table == GSUB && ref.Type == ot.GSubLookupTypeSingle
}

func isPairPos(ref SubtableRef) bool {
	return ref.Table == GPOS && ref.Type == ot.GPosLookupTypePair
}

// decode decodes one subtable, using a read cursor of its own.
func (otf *Font) decode(ref SubtableRef) Result {
	res := Result{SubtableRef: ref}
	r := ot.NewReader(otf.Table(ref.Table)[ref.Offset:])
	var err error
	switch {
	case isSingleSubst(ref):
		var s otlayout.SingleSubst
		if s, err = otlayout.ParseSingleSubst(r); err == nil {
			res.SingleSubst = &s
		}
	case isPairPos(ref):
		var p otlayout.PairPos
		if p, err = otlayout.ParsePairPos(r); err == nil {
			res.PairPos = &p
		}
	}
	if err != nil {
		tracer().Errorf("%s: %v", ref, err)
		res.Err = core.WrapError(err, core.Code(err), "%s: %s", ref, core.UserMessage(err))
	}
	return res
}
