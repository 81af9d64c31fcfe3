package reporter

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fortitude-sh/fortitude/internal/rules"
)

// MarkdownReporter formats diagnostics as a concise markdown table, built
// for pasting into a PR comment or an AI agent's context window rather than
// a terminal.
type MarkdownReporter struct {
	w io.Writer
}

// NewMarkdownReporter builds a MarkdownReporter writing to w.
func NewMarkdownReporter(w io.Writer) *MarkdownReporter { return &MarkdownReporter{w: w} }

// Report implements Reporter.
func (r *MarkdownReporter) Report(diagnostics []rules.Diagnostic, sources map[string][]byte, _ ReportMetadata) error {
	if len(diagnostics) == 0 {
		_, err := fmt.Fprintln(r.w, "**No issues found**")
		return err
	}

	sorted := SortDiagnostics(diagnostics)
	fileSet := make(map[string]struct{})
	for _, d := range sorted {
		fileSet[filepath.ToSlash(d.Location.File)] = struct{}{}
	}

	if len(fileSet) == 1 {
		var filename string
		for f := range fileSet {
			filename = f
		}
		return r.writeTable(sorted, sources, filename)
	}
	return r.writeTable(sorted, sources, "")
}

// writeTable renders one table; filename is non-empty when every diagnostic
// shares a single file, in which case the File column is dropped.
func (r *MarkdownReporter) writeTable(sorted []rules.Diagnostic, sources map[string][]byte, filename string) error {
	if filename != "" {
		fmt.Fprintf(r.w, "**%d %s** in `%s`\n\n", len(sorted), pluralize(len(sorted), "issue", "issues"), filename)
		fmt.Fprintln(r.w, "| Line | Level | Rule | Issue |")
		fmt.Fprintln(r.w, "|------|-------|------|-------|")
	} else {
		fmt.Fprintf(r.w, "**%d %s** across %d files\n\n", len(sorted), pluralize(len(sorted), "issue", "issues"), len(fileSetOf(sorted)))
		fmt.Fprintln(r.w, "| File | Line | Level | Rule | Issue |")
		fmt.Fprintln(r.w, "|------|------|-------|------|-------|")
	}

	for _, d := range sorted {
		pos := resolvePosition(d.Location, sources[d.Location.File])
		line := "-"
		if !pos.fileLevel {
			line = strconv.Itoa(pos.startLine)
		}
		level := levelEmoji(LevelFor(d.RuleCode))
		if filename != "" {
			fmt.Fprintf(r.w, "| %s | %s | %s | %s |\n", line, level, d.RuleCode, escapeMarkdown(d.Message))
		} else {
			fmt.Fprintf(r.w, "| %s | %s | %s | %s | %s |\n",
				filepath.ToSlash(d.Location.File), line, level, d.RuleCode, escapeMarkdown(d.Message))
		}
	}
	return nil
}

func fileSetOf(diagnostics []rules.Diagnostic) map[string]struct{} {
	set := make(map[string]struct{})
	for _, d := range diagnostics {
		set[filepath.ToSlash(d.Location.File)] = struct{}{}
	}
	return set
}

func levelEmoji(l Level) string {
	switch l {
	case LevelError:
		return "❌"
	case LevelNote:
		return "ℹ️"
	default:
		return "⚠️"
	}
}

func escapeMarkdown(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", "")
	return s
}

func pluralize(count int, singular, plural string) string {
	if count == 1 {
		return singular
	}
	return plural
}
