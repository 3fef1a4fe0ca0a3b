package main

import (
	"flag"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/npillmayer/tomark/convert"
	"github.com/npillmayer/tomark/core"
	"github.com/npillmayer/tomark/engine/rules"
	"github.com/npillmayer/tomark/engine/tomark"
	"github.com/pterm/pterm"
)

// tracer traces with key 'tomark.cli'
func tracer() tracing.Trace {
	return tracing.Select("tomark.cli")
}

func main() {
	initDisplay()

	// command line flags
	tlevel := flag.String("trace", "Info", "Trace level [Debug|Info|Error]")
	gfm := flag.Bool("gfm", true, "Use GitHub-flavoured Markdown")
	target := flag.String("target", "", "Target attribute for links")
	flag.Parse()

	// set up logging
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{
		"tracing.adapter":           "go",
		"trace.tomark.cli":          *tlevel,
		"trace.tomark.convert":      *tlevel,
		"trace.tomark.engine":       "Error",
		convert.ConfigKeyGFM:        *gfm,
		convert.ConfigKeyLinkTarget: *target,
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		core.UserError(core.WrapError(err, core.EINVALID, "error configuring tracing"))
		os.Exit(1)
	}
	tracing.SetTraceSelector(trace2go.Selector())
	pterm.Info.Println("Welcome to the tomark CLI") // colored welcome message
	tracer().Infof("Trace level is %s", *tlevel)
	//
	// set up REPL
	repl, err := readline.New("tomark > ")
	if err != nil {
		core.UserError(core.WrapError(err, core.EINTERNAL, "cannot start interactive mode"))
		os.Exit(3)
	}
	intp := &Intp{repl: repl, opts: convert.OptionsFromConfig(conf)}
	intp.convertor = convert.NewConvertor(nil, intp.opts)
	//
	// start receiving commands
	pterm.Info.Println("Quit with <ctrl>D") // inform user how to stop the CLI
	intp.REPL()                             // go into interactive mode
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

// Intp is our interpreter object
type Intp struct {
	repl      *readline.Instance
	opts      convert.Options
	convertor *convert.Convertor
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
		cmd := parseCommand(line)
		quit, err := intp.execute(cmd)
		if err != nil {
			pterm.Error.Println(core.UserMessage(err))
			tracer().Errorf(err.Error())
			continue
		}
		if quit {
			break
		}
	}
	pterm.Info.Println("Good bye!")
}

// Command is a REPL command with its argument.
type Command struct {
	code int
	arg  string
}

// Command codes
const (
	QUIT int = iota
	HELP
	HTML
	MARKDOWN
	RENDER
	RULES
	GFM
)

var commands = map[string]int{
	"quit":   QUIT,
	"help":   HELP,
	"html":   HTML,
	"md":     MARKDOWN,
	"render": RENDER,
	"rules":  RULES,
	"gfm":    GFM,
}

// parseCommand splits a line into command and argument. Within the
// argument, `\n` stands for a line break.
func parseCommand(line string) Command {
	word, arg := line, ""
	if i := strings.IndexByte(line, ' '); i >= 0 {
		word, arg = line[:i], strings.TrimSpace(line[i+1:])
	}
	code, ok := commands[strings.ToLower(word)]
	if !ok {
		code, arg = HELP, ""
	}
	tracer().Debugf("parse command = %q %q", word, arg)
	return Command{code: code, arg: strings.ReplaceAll(arg, `\n`, "\n")}
}

func (intp *Intp) execute(cmd Command) (bool, error) {
	switch cmd.code {
	case QUIT:
		return true, nil
	case HELP:
		help()
	case HTML:
		pterm.Println(intp.convertor.HTMLToMarkdown(cmd.arg))
	case MARKDOWN:
		doc, err := intp.convertor.ToDocument([]byte(cmd.arg))
		if err != nil {
			return false, err
		}
		pterm.Println(doc.String())
		md, err := intp.convertor.ToMarkdownText(doc)
		if err != nil {
			return false, err
		}
		pterm.Info.Println("Markdown")
		pterm.Println(md)
	case RENDER:
		html, err := intp.convertor.MarkdownToHTML([]byte(cmd.arg))
		if err != nil {
			return false, err
		}
		pterm.Println(html)
	case RULES:
		rs := tomark.Basic
		if intp.opts.GFM {
			rs = tomark.GFM
		}
		listRules(rs, strings.ToUpper(cmd.arg))
	case GFM:
		switch strings.ToLower(cmd.arg) {
		case "on":
			intp.opts.GFM = true
		case "off":
			intp.opts.GFM = false
		case "":
		default:
			return false, core.Error(core.EINVALID, "gfm expects 'on' or 'off', not %q", cmd.arg)
		}
		intp.convertor = convert.NewConvertor(nil, intp.opts)
		pterm.Printfln("GFM is %v", intp.opts.GFM)
	}
	return false, nil
}

// listRules prints the selectors of a rule set, node first and ancestors
// after, as they are looked up.
func listRules(rs *rules.RuleSet, prefix string) {
	selectors := rs.Selectors(prefix)
	if len(selectors) == 0 {
		pterm.Printfln("no rule for %q", prefix)
		return
	}
	for _, sel := range selectors {
		pterm.Println(sel)
	}
	pterm.Printfln("%d rules", len(selectors))
}

func help() {
	pterm.Info.Println("Commands")
	pterm.Println(`
	html <fragment>     convert an HTML fragment to Markdown
	md <markdown>       read Markdown into a document tree and write it back
	render <markdown>   render Markdown as HTML
	rules [tag]         list the rules for a tag, e.g. 'rules li'
	gfm [on|off]        switch GitHub-flavoured Markdown on or off
	quit                leave the CLI

	Use \n for line breaks within arguments.
	`)
}
