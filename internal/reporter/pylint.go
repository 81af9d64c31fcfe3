package reporter

import (
	"fmt"
	"io"

	"github.com/fortitude-sh/fortitude/internal/rules"
)

// PylintReporter formats diagnostics in pylint's classic
// "file:line: [code] message" shape, which a number of editors and CI
// log-scrapers already know how to parse.
type PylintReporter struct {
	w io.Writer
}

// NewPylintReporter builds a PylintReporter writing to w.
func NewPylintReporter(w io.Writer) *PylintReporter { return &PylintReporter{w: w} }

// Report implements Reporter.
func (r *PylintReporter) Report(diagnostics []rules.Diagnostic, sources map[string][]byte, _ ReportMetadata) error {
	for _, d := range SortDiagnostics(diagnostics) {
		pos := resolvePosition(d.Location, sources[d.Location.File])
		line := pos.startLine
		if pos.fileLevel {
			line = 1
		}
		if _, err := fmt.Fprintf(r.w, "%s:%d: [%s] %s\n", d.Location.File, line, d.RuleCode, d.Message); err != nil {
			return err
		}
	}
	return nil
}
