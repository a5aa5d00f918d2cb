package main

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/npillmayer/otcodec/core/font/opentype/ot"
	"github.com/npillmayer/otcodec/core/font/opentype/otfont"
	"github.com/pterm/pterm"
)

// Intp is our interpreter object
type Intp struct {
	font    *fontInfo
	repl    *readline.Instance
	results []otfont.Result
}

func runREPL(fontname string) error {
	pterm.Info.Println("Welcome to OpenType CLI") // colored welcome message
	repl, err := readline.New("ot > ")
	if err != nil {
		return err
	}
	defer repl.Close()
	intp := &Intp{repl: repl}
	if fontname != "" {
		if err := intp.loadFont(fontname); err != nil {
			return err
		}
	}
	pterm.Info.Println("Quit with <ctrl>D") // inform user how to stop the CLI
	intp.REPL()
	return nil
}

// REPL starts interactive mode.
func (intp *Intp) REPL() {
	for {
		line, err := intp.repl.Readline()
		if err != nil { // io.EOF
			break
		}
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		cmd, err := parseCommand(line)
		if err != nil {
			pterm.Error.Println(err.Error())
			continue
		}
		quit, err := intp.execute(cmd)
		if err != nil {
			pterm.Error.Println(err.Error())
			continue
		}
		if quit {
			break
		}
	}
	pterm.Info.Println("Good bye!")
}

// Command is a line of input: an operation with an optional argument,
// e.g. "lookups:GPOS" or "show:3", followed by words.
type Command struct {
	code  int
	arg   string
	words []string
}

const (
	QUIT int = iota
	HELP
	FONT
	TABLES
	LOOKUPS
	SCAN
	SHOW
	DECODE
)

var commandCodes = map[string]int{
	"quit":    QUIT,
	"help":    HELP,
	"font":    FONT,
	"tables":  TABLES,
	"lookups": LOOKUPS,
	"scan":    SCAN,
	"show":    SHOW,
	"decode":  DECODE,
}

func parseCommand(line string) (*Command, error) {
	words := strings.Fields(line)
	c := strings.SplitN(words[0], ":", 2) // e.g. "lookups:GSUB" or "decode:gpos2"
	tracer().Infof("parse command = %v", c)
	code, ok := commandCodes[strings.ToLower(c[0])]
	if !ok {
		return &Command{code: HELP}, nil
	}
	cmd := &Command{code: code, words: words[1:]}
	if len(c) > 1 {
		cmd.arg = c[1]
	}
	return cmd, nil
}

func (intp *Intp) execute(cmd *Command) (bool, error) {
	switch cmd.code {
	case QUIT:
		return true, nil
	case HELP:
		help(cmd.arg)
	case FONT:
		name := cmd.arg
		if name == "" && len(cmd.words) > 0 {
			name = strings.Join(cmd.words, " ")
		}
		return false, intp.loadFont(name)
	case TABLES:
		if err := intp.checkFont(); err != nil {
			return false, err
		}
		pterm.Printfln("font tables: %v", intp.font.otf.Tags())
	case LOOKUPS:
		if err := intp.checkFont(); err != nil {
			return false, err
		}
		tag := otfont.GSUB
		if cmd.arg != "" {
			tag = ot.T(strings.ToUpper(cmd.arg))
		}
		refs, err := intp.font.otf.Subtables(tag)
		if err != nil {
			return false, err
		}
		for _, ref := range refs {
			pterm.Println(ref.String())
		}
		pterm.Info.Printfln("%s has %d subtables", tag, len(refs))
	case SCAN:
		if err := intp.checkFont(); err != nil {
			return false, err
		}
		results, err := intp.font.otf.Scan(context.Background(), otfont.Options{})
		if err != nil {
			return false, err
		}
		intp.results = results
		printResults(results)
	case SHOW:
		i, err := strconv.Atoi(cmd.arg)
		if err != nil || i < 0 || i >= len(intp.results) {
			return false, errors.New("show needs the number of a scan result, e.g. show:0")
		}
		res := intp.results[i]
		if res.Err != nil {
			return false, res.Err
		}
		pterm.Println(intp.font.dump(res))
	case DECODE:
		kind := cmd.arg
		if kind == "" {
			kind = kindSingleSubst
		}
		data, err := parseHex(strings.Join(cmd.words, ""))
		if err != nil {
			return false, err
		}
		out, err := decode(kind, data)
		if err != nil {
			return false, err
		}
		pterm.Println(out)
	}
	return false, nil
}

func (intp *Intp) checkFont() error {
	if intp.font == nil {
		return errors.New("no font loaded")
	}
	return nil
}

func (intp *Intp) loadFont(fontname string) (err error) {
	f, err := loadFont(fontname)
	if err == nil {
		intp.font, intp.results = f, nil
		pterm.Printfln("font tables: %v", f.otf.Tags())
	}
	return
}

func help(topic string) {
	tracer().Infof("help %v", topic)
	switch strings.ToLower(topic) {
	case "decode":
		pterm.Info.Println("decode:<kind> <hex>")
		pterm.Println(`
	Decodes a subtable and prints its model as YAML.
	<kind> is gsub1 (single substitution, default) or gpos2 (pair adjustment).
	Hex bytes may be separated by whitespace.
	`)
	case "lookups", "scan", "show":
		pterm.Info.Println("lookups:<table> / scan / show:<n>")
		pterm.Println(`
	lookups lists all lookup subtables of table GSUB (default) or GPOS.
	scan decodes all single substitutions and pair adjustments of the font.
	show prints result <n> of the last scan.
	`)
	default:
		pterm.Info.Println("Commands")
		pterm.Println(`
	font <name>       load a font file or system font
	tables            list the tables of the font
	lookups:<table>   list lookup subtables
	scan              decode subtables
	show:<n>          print a scan result
	decode:<kind> <hex>
	help:<command>
	quit
	`)
	}
}
