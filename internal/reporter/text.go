package reporter

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/fortitude-sh/fortitude/internal/rules"
)

// ANSI escapes for the text reporter. No styling library is wired in here:
// the pack's terminal-styling stack (chroma/lipgloss) was built for
// Dockerfile syntax highlighting and has no Fortran lexer to reuse, so
// level/rule-code/location colouring is done with raw SGR codes instead,
// gated by the same go-isatty TTY check the rest of the tool already uses
// for colour detection.
const (
	ansiReset  = "\x1b[0m"
	ansiBold   = "\x1b[1m"
	ansiRed    = "\x1b[31m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
	ansiGray   = "\x1b[90m"
)

func levelColor(l Level) string {
	switch l {
	case LevelError:
		return ansiRed
	case LevelNote:
		return ansiBlue
	default:
		return ansiYellow
	}
}

// TextOptions configures the text reporter.
type TextOptions struct {
	// Color enables/disables ANSI colour; nil auto-detects from the
	// writer being a terminal.
	Color *bool
	// ShowSource prints a source snippet under each diagnostic.
	ShowSource bool
}

// TextReporter renders diagnostics as human-readable terminal output, one
// block per diagnostic: a coloured header line, the message, and — when
// requested and the file's content is available — a source snippet with the
// offending span marked.
type TextReporter struct {
	w     io.Writer
	opts  TextOptions
	color bool
}

// NewTextReporter builds a TextReporter writing to w.
func NewTextReporter(w io.Writer, opts TextOptions) *TextReporter {
	color := false
	if opts.Color != nil {
		color = *opts.Color
	} else if f, ok := w.(interface{ Fd() uintptr }); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &TextReporter{w: w, opts: opts, color: color}
}

// Report implements Reporter.
func (r *TextReporter) Report(diagnostics []rules.Diagnostic, sources map[string][]byte, _ ReportMetadata) error {
	for _, d := range SortDiagnostics(diagnostics) {
		if err := r.printOne(d, sources[d.Location.File]); err != nil {
			return err
		}
	}
	return nil
}

func (r *TextReporter) printOne(d rules.Diagnostic, source []byte) error {
	level := LevelFor(d.RuleCode)
	pos := resolvePosition(d.Location, source)

	var header string
	if pos.fileLevel {
		header = fmt.Sprintf("%s:", d.Location.File)
	} else {
		header = fmt.Sprintf("%s:%d:%d:", d.Location.File, pos.startLine, pos.startColumn)
	}

	if r.color {
		fmt.Fprintf(r.w, "\n%s%s%s %s%s%s %s\n", ansiBold, header, ansiReset,
			levelColor(level)+ansiBold, strings.ToUpper(string(level)), ansiReset, d.RuleCode)
		fmt.Fprintln(r.w, d.Message)
	} else {
		fmt.Fprintf(r.w, "\n%s %s %s\n", header, strings.ToUpper(string(level)), d.RuleCode)
		fmt.Fprintln(r.w, d.Message)
	}
	if d.DocURL != "" {
		fmt.Fprintln(r.w, d.DocURL)
	}

	if r.opts.ShowSource && !pos.fileLevel && len(source) > 0 {
		r.printSource(d.Location, source, pos)
	}
	return nil
}

func (r *TextReporter) printSource(loc rules.Location, source []byte, pos resolved) {
	lines := strings.Split(string(source), "\n")
	start, end := pos.startLine, pos.endLine
	if end < start {
		end = start
	}

	const contextLines = 2
	displayStart := start - contextLines
	if displayStart < 1 {
		displayStart = 1
	}
	displayEnd := end + contextLines
	if displayEnd > len(lines) {
		displayEnd = len(lines)
	}
	if start > len(lines) || start < 1 {
		return
	}

	fmt.Fprintln(r.w)
	sep := strings.Repeat("-", 20)
	if r.color {
		fmt.Fprintf(r.w, "%s%s:%d%s\n%s%s%s\n", ansiGray, loc.File, displayStart, ansiReset, ansiGray, sep, ansiReset)
	} else {
		fmt.Fprintf(r.w, "%s:%d\n%s\n", loc.File, displayStart, sep)
	}

	for i := displayStart; i <= displayEnd; i++ {
		content := strings.TrimSuffix(lines[i-1], "\r")
		marker := "   "
		if i >= start && i <= end {
			if r.color {
				marker = ansiRed + ">>>" + ansiReset
			} else {
				marker = ">>>"
			}
		}
		if r.color {
			fmt.Fprintf(r.w, "%s%4d |%s %s %s\n", ansiGray, i, ansiReset, marker, content)
		} else {
			fmt.Fprintf(r.w, "%4d | %s %s\n", i, marker, content)
		}
	}

	if r.color {
		fmt.Fprintf(r.w, "%s%s%s\n", ansiGray, sep, ansiReset)
	} else {
		fmt.Fprintln(r.w, sep)
	}
}
