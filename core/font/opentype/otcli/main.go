/*
Command otcli decodes and encodes OpenType layout subtables.

	otcli decode --kind=gsub1 "00 01 00 06 00 01 00 01 00 02 00 42 00 44"
	otcli encode kerning.yaml
	otcli scan Calibri
	otcli build --out=test.otf subst.yaml kerning.yaml
	otcli repl

Subtables are given as hex strings. Decoded subtables are printed as YAML
documents, which `encode` and `build` accept as input.
*/
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/npillmayer/otcodec/core"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/pterm/pterm"
)

// tracer traces with key 'otcodec.fonts'
func tracer() tracing.Trace {
	return tracing.Select("otcodec.fonts")
}

// CLI holds the command line arguments, as interpreted by kong.
type CLI struct {
	Trace string `short:"t" enum:"Debug,Info,Error" default:"Error" help:"Trace level [Debug|Info|Error]"`

	Decode DecodeCmd `cmd:"" help:"Decode a subtable given as hex string"`
	Encode EncodeCmd `cmd:"" help:"Encode a YAML subtable model"`
	Scan   ScanCmd   `cmd:"" help:"Decode all single substitutions and pair adjustments of a font"`
	Build  BuildCmd  `cmd:"" help:"Build a test font from YAML subtable models"`
	Repl   ReplCmd   `cmd:"" help:"Start interactive mode"`
}

func main() {
	initDisplay()
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("otcli"),
		kong.Description("Decode and encode OpenType layout subtables"))
	if err := setupTracing(cli.Trace); err != nil {
		fmt.Printf("error configuring tracing")
		os.Exit(1)
	}
	err := ctx.Run(&cli)
	if err != nil {
		pterm.Error.Println(core.UserMessage(err))
		tracer().Errorf(err.Error())
		os.Exit(2)
	}
}

// setupTracing routes traces to the Go standard logger.
func setupTracing(level string) error {
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{
		"tracing.adapter":     "go",
		"trace.otcodec.fonts": level,
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		return err
	}
	tracing.SetTraceSelector(trace2go.Selector())
	tracer().SetTraceLevel(traceLevel(level))
	return nil
}

func traceLevel(level string) tracing.TraceLevel {
	switch level {
	case "Debug":
		return tracing.LevelDebug
	case "Info":
		return tracing.LevelInfo
	}
	return tracing.LevelError
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.EnableDebugMessages()
	pterm.Info.Prefix = pterm.Prefix{
		Text:  " !  ",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}
