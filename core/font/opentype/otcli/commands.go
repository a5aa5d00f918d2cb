package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/flopp/go-findfont"
	"github.com/npillmayer/otcodec/core"
	"github.com/npillmayer/otcodec/core/font/opentype/ot"
	"github.com/npillmayer/otcodec/core/font/opentype/otfont"
	"github.com/npillmayer/otcodec/core/font/opentype/otlayout"
	"github.com/pterm/pterm"
)

// Subtable kinds
const (
	kindSingleSubst = "gsub1"
	kindPairPos     = "gpos2"
)

// DecodeCmd decodes a subtable given as hex string.
type DecodeCmd struct {
	Kind string `short:"k" enum:"gsub1,gpos2" default:"gsub1" help:"Subtable kind: gsub1 (single substitution) or gpos2 (pair adjustment)"`
	Hex  string `arg:"" name:"hex" help:"Subtable bytes as hex, whitespace is ignored"`
}

// Run is called by kong.
func (cmd *DecodeCmd) Run(cli *CLI) error {
	data, err := parseHex(cmd.Hex)
	if err != nil {
		return err
	}
	out, err := decode(cmd.Kind, data)
	if err != nil {
		return err
	}
	pterm.Println(out)
	return nil
}

// EncodeCmd encodes a YAML subtable model.
type EncodeCmd struct {
	Model string `arg:"" name:"model" type:"existingfile" help:"YAML file containing a subtable model"`
}

// Run is called by kong.
func (cmd *EncodeCmd) Run(cli *CLI) error {
	yml, err := os.ReadFile(cmd.Model)
	if err != nil {
		return core.WrapError(err, core.EMISSING, "cannot read model %s", cmd.Model)
	}
	format, data, err := encode(yml)
	if err != nil {
		return err
	}
	pterm.Info.Printfln("format %d, %d bytes", format, len(data))
	pterm.Println(formatHex(data))
	return nil
}

// ScanCmd decodes the subtables of a font.
type ScanCmd struct {
	Font    string `arg:"" name:"font" help:"Font file or name of a system font"`
	Strict  bool   `short:"s" help:"Stop at the first subtable which cannot be decoded"`
	Dump    bool   `short:"d" help:"Print the decoded subtables as YAML"`
	Workers int    `short:"w" default:"0" help:"Number of concurrent decoders, 0 for one per CPU"`
}

// Run is called by kong.
func (cmd *ScanCmd) Run(cli *CLI) error {
	f, err := loadFont(cmd.Font)
	if err != nil {
		return err
	}
	results, err := f.otf.Scan(context.Background(), otfont.Options{Strict: cmd.Strict, Concurrency: cmd.Workers})
	if err != nil {
		return err
	}
	printResults(results)
	if cmd.Dump {
		for _, res := range results {
			if res.Err == nil {
				pterm.Info.Println(res.SubtableRef.String())
				pterm.Println(f.dump(res))
			}
		}
	}
	return nil
}

// BuildCmd creates a test font from YAML models.
type BuildCmd struct {
	Out       string   `short:"o" required:"" type:"path" help:"Output font file"`
	Extension bool     `short:"x" help:"Wrap subtables into extension subtables"`
	Models    []string `arg:"" name:"model" type:"existingfile" help:"YAML files containing subtable models"`
}

// Run is called by kong.
func (cmd *BuildCmd) Run(cli *CLI) error {
	var gsub, gpos []otfont.Lookup
	for _, name := range cmd.Models {
		yml, err := os.ReadFile(name)
		if err != nil {
			return core.WrapError(err, core.EMISSING, "cannot read model %s", name)
		}
		s, p, err := readDocument(yml)
		if err != nil {
			return core.WrapError(err, core.EINVALID, "model %s", name)
		}
		if s != nil {
			gsub = append(gsub, otfont.Lookup{Type: ot.GSubLookupTypeSingle,
				Subtables: []*ot.Node{s.Compile().Node()}})
		} else {
			gpos = append(gpos, otfont.Lookup{Type: ot.GPosLookupTypePair,
				Subtables: []*ot.Node{p.Compile().Node()}})
		}
	}
	tables := make(map[ot.Tag][]byte)
	for tag, lookups := range map[ot.Tag][]otfont.Lookup{otfont.GSUB: gsub, otfont.GPOS: gpos} {
		if len(lookups) == 0 {
			continue
		}
		data, err := otfont.CompileLayoutTable(tag, lookups, cmd.Extension)
		if err != nil {
			return err
		}
		tables[tag] = data
	}
	font := otfont.Assemble(tables)
	if err := os.WriteFile(cmd.Out, font, 0644); err != nil {
		return err
	}
	pterm.Success.Printfln("wrote %s: %d GSUB lookups, %d GPOS lookups, %d bytes",
		cmd.Out, len(gsub), len(gpos), len(font))
	return nil
}

// ReplCmd starts interactive mode.
type ReplCmd struct {
	Font string `short:"f" help:"Font to load"`
}

// Run is called by kong.
func (cmd *ReplCmd) Run(cli *CLI) error {
	return runREPL(cmd.Font)
}

// --- Helpers ---------------------------------------------------------------

func parseHex(s string) ([]byte, error) {
	s = strings.Join(strings.Fields(s), "")
	s = strings.TrimPrefix(strings.ToLower(s), "0x")
	data, err := hex.DecodeString(s)
	if err != nil {
		return nil, core.WrapError(err, core.EINVALID, "not a hex string: %v", err)
	}
	return data, nil
}

func formatHex(data []byte) string {
	var b strings.Builder
	for i, c := range data {
		if i > 0 {
			if i%16 == 0 {
				b.WriteByte('\n')
			} else {
				b.WriteByte(' ')
			}
		}
		fmt.Fprintf(&b, "%02x", c)
	}
	return b.String()
}

// decode decodes a subtable of the given kind and returns its YAML model.
func decode(kind string, data []byte) (string, error) {
	var doc Document
	switch kind {
	case kindSingleSubst:
		var s otlayout.SingleSubst
		if err := s.UnmarshalBinary(data); err != nil {
			return "", err
		}
		doc = singleDocument(s)
	case kindPairPos:
		var p otlayout.PairPos
		if err := p.UnmarshalBinary(data); err != nil {
			return "", err
		}
		doc = pairDocument(p)
	default:
		return "", core.Error(core.EINVALID, "unknown subtable kind %q", kind)
	}
	yml, err := writeDocument(doc)
	return string(yml), err
}

// encode compiles a YAML model and returns the format chosen and the
// subtable bytes.
func encode(yml []byte) (uint16, []byte, error) {
	s, p, err := readDocument(yml)
	if err != nil {
		return 0, nil, core.WrapError(err, core.EINVALID, "invalid model: %v", err)
	}
	if s != nil {
		v := s.Compile()
		data, err := ot.Serialize(v.Node())
		return v.SubstFormat(), data, err
	}
	v := p.Compile()
	data, err := ot.Serialize(v.Node())
	return v.PosFormat(), data, err
}

// fontInfo is a loaded font, together with its glyph names, if available.
type fontInfo struct {
	path   string
	otf    *otfont.Font
	glyphs *glyphNames
}

// loadFont loads a font from a file or, if no such file exists, looks for a
// system font with the given name.
func loadFont(name string) (*fontInfo, error) {
	path := name
	if _, err := os.Stat(path); err != nil {
		if path, err = findfont.Find(name); err != nil {
			return nil, core.WrapError(err, core.EMISSING, "font %s not found", name)
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, core.WrapError(err, core.EMISSING, "cannot read font %s", path)
	}
	otf, err := otfont.Parse(data)
	if err != nil {
		return nil, err
	}
	tracer().Infof("loaded font %s with tables %v", path, otf.Tags())
	return &fontInfo{path: path, otf: otf, glyphs: newGlyphNames(data)}, nil
}

func (f *fontInfo) dump(res otfont.Result) string {
	var doc Document
	if res.SingleSubst != nil {
		doc = singleDocument(*res.SingleSubst)
	} else if res.PairPos != nil {
		doc = pairDocument(*res.PairPos)
	}
	yml, err := writeDocument(doc)
	if err != nil {
		return err.Error()
	}
	return f.glyphs.annotate(doc, string(yml))
}

func printResults(results []otfont.Result) {
	data := pterm.TableData{{"Table", "Lookup", "Subtable", "Type", "Ext", "Entries", "Status"}}
	var failed int
	for _, res := range results {
		entries, status := "", "ok"
		switch {
		case res.Err != nil:
			status = fmt.Sprintf("%s: %s", core.UserMessage(res.Err), pterm.Red(core.Code(res.Err)))
			failed++
		case res.SingleSubst != nil:
			entries = fmt.Sprintf("%d", res.SingleSubst.Len())
		case res.PairPos != nil:
			entries = fmt.Sprintf("%d", res.PairPos.Len())
		}
		ext := ""
		if res.Extension {
			ext = "x"
		}
		data = append(data, []string{res.Table.String(), fmt.Sprintf("%d", res.Lookup),
			fmt.Sprintf("%d", res.Subtable), otfont.TypeName(res.Table, res.Type), ext, entries, status})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
		tracer().Errorf(err.Error())
	}
	pterm.Info.Printfln("%d subtables, %d failed", len(results), failed)
}
