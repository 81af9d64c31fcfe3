package reporter

import (
	"fmt"
	"io"

	"github.com/fortitude-sh/fortitude/internal/rules"
)

// ConciseReporter formats each diagnostic as a single
// "file:line:col: CODE message" line, the terse format a human scans fastest
// and a shell pipeline (grep, sort, wc -l) parses easiest.
type ConciseReporter struct {
	w io.Writer
}

// NewConciseReporter builds a ConciseReporter writing to w.
func NewConciseReporter(w io.Writer) *ConciseReporter { return &ConciseReporter{w: w} }

// Report implements Reporter.
func (r *ConciseReporter) Report(diagnostics []rules.Diagnostic, sources map[string][]byte, _ ReportMetadata) error {
	for _, d := range SortDiagnostics(diagnostics) {
		pos := resolvePosition(d.Location, sources[d.Location.File])
		var err error
		if pos.fileLevel {
			_, err = fmt.Fprintf(r.w, "%s: %s %s\n", d.Location.File, d.RuleCode, d.Message)
		} else {
			_, err = fmt.Fprintf(r.w, "%s:%d:%d: %s %s\n", d.Location.File, pos.startLine, pos.startColumn, d.RuleCode, d.Message)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
