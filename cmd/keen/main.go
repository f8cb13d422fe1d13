// Package main is the entry point for the keen editor core.
//
// Without flags it opens a file, runs one highlight pass over the visible
// window, and prints the clipped rows with their spans. With -lsp it also
// launches the language server for the file's language, performs the
// initialize handshake, sends didOpen, and requests semantic tokens.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"github.com/dshills/keen/internal/clipboard"
	"github.com/dshills/keen/internal/config"
	"github.com/dshills/keen/internal/editor"
	"github.com/dshills/keen/internal/highlight"
	"github.com/dshills/keen/internal/lsp"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

type options struct {
	configPath string
	rows       int
	cols       int
	logLevel   string
	useLSP     bool
	file       string
}

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	log := newLogger(opts.logLevel)

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	ed, err := editor.Open(opts.file, opts.rows, opts.cols,
		editor.WithClipboard(clipboard.System{}),
		editor.WithIndentWidth(cfg.IndentWidth),
		editor.WithBracketPairs(cfg.PairMap()),
		editor.WithLogger(log),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open %s: %v\n", opts.file, err)
		return 1
	}

	printHighlights(ed)

	if opts.useLSP {
		if err := runLanguageServer(ed, cfg, log); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	}

	return 0
}

// printHighlights runs one tokenizer pass over the current view window and
// prints each visible row followed by its spans.
func printHighlights(ed *editor.Editor) {
	doc := ed.Document()
	view := ed.Viewport()
	profile := highlight.ProfileForLanguage(doc.LanguageID())

	windowText := doc.TextRange(view.ViewStart(), view.ViewEnd())
	res := highlight.Highlight(windowText, int(view.ViewStart()), int(ed.Caret()),
		profile, doc.Rope().RunesBefore(view.ViewStart()))

	last := view.LastLine(doc.LineCount())
	for line := view.TopLine(); line <= last; line++ {
		fmt.Printf("%*d %s\n", view.Margin()-1, line+1, view.ClipRow(doc.LineText(line)))
	}
	for _, sp := range res.Spans {
		fmt.Printf("span %s [%d,%d)\n", sp.Category, sp.Start, sp.Start+sp.Length)
	}
	if res.Brackets != nil {
		fmt.Printf("brackets open=%d close=%d\n", res.Brackets.Open, res.Brackets.Close)
	}
}

// runLanguageServer performs the initialize handshake, announces the open
// document, and prints a summary of the semantic tokens response.
func runLanguageServer(ed *editor.Editor, cfg config.Settings, log zerolog.Logger) error {
	doc := ed.Document()
	profile := highlight.ProfileForLanguage(doc.LanguageID())
	if profile == nil {
		return fmt.Errorf("no language server for %q files", doc.LanguageID())
	}
	srv := cfg.ServerFor(doc.LanguageID(), profile.ServerCommand)

	rootURI := lsp.FileURI(".")
	sess, err := lsp.Start(srv.Command, srv.Args, rootURI, lsp.WithLogger(log))
	if err != nil {
		return fmt.Errorf("starting %s: %w", srv.Command, err)
	}
	defer sess.Close()

	uri := lsp.FileURI(doc.Path())
	sent := false
	deadline := time.After(10 * time.Second)

	for {
		select {
		case msg, ok := <-sess.Messages():
			if !ok {
				return fmt.Errorf("%s: session closed", srv.Command)
			}
			switch m := msg.(type) {
			case lsp.Crash:
				return fmt.Errorf("%s crashed: %w", m.Client, m.Err)
			case lsp.Response:
				id, hasID := lsp.ResponseID(m.Body)
				if !hasID {
					continue
				}
				req, known := sess.TakePending(id)
				if !known {
					continue
				}
				switch req.Kind {
				case lsp.InitializationRequest:
					if err := sess.SendNotification(lsp.DidOpenNotification(uri, doc.LanguageID(), doc.Text(), doc.Version())); err != nil {
						return err
					}
					if _, err := sess.SendRequest(lsp.SemanticTokensRequest(uri), lsp.SemanticTokenRequest, uri); err != nil {
						return err
					}
					sent = true
				case lsp.SemanticTokenRequest:
					data := gjson.GetBytes(m.Body, "result.data")
					fmt.Printf("semantic tokens: %d values from %s\n", len(data.Array()), sess.Client())
					return nil
				}
			}
		case <-deadline:
			if !sent {
				return fmt.Errorf("%s: initialize timed out", srv.Command)
			}
			return fmt.Errorf("%s: semantic tokens timed out", srv.Command)
		}
	}
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl).With().Timestamp().Logger()
}

func parseFlags() options {
	var opts options
	var showVersion bool
	var showHelp bool

	flag.StringVar(&opts.configPath, "config", "keen.toml", "Path to configuration file")
	flag.StringVar(&opts.configPath, "c", "keen.toml", "Path to configuration file (shorthand)")
	flag.IntVar(&opts.rows, "rows", 40, "View window height in rows")
	flag.IntVar(&opts.cols, "cols", 120, "View window width in columns")
	flag.StringVar(&opts.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.BoolVar(&opts.useLSP, "lsp", false, "Launch the language server and request semantic tokens")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "keen - editor core\n\n")
		fmt.Fprintf(os.Stderr, "Usage: keen [options] <file>\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  keen main.c             Highlight the first window of a file\n")
		fmt.Fprintf(os.Stderr, "  keen -lsp main.rs       Also request semantic tokens from rust-analyzer\n")
		fmt.Fprintf(os.Stderr, "  keen -rows 10 main.c    Use a 10-row window\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("keen %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}
	opts.file = flag.Arg(0)

	return opts
}
