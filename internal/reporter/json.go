package reporter

import (
	"encoding/json"
	"io"
	"path/filepath"

	"github.com/fortitude-sh/fortitude/internal/rules"
)

// jsonDiagnostic is the wire shape for one diagnostic in JSON/JSON-Lines
// output: byte ranges plus resolved 1-based line/column positions, so a
// consumer never needs its own source map.
type jsonDiagnostic struct {
	RuleCode    string `json:"code"`
	Message     string `json:"message"`
	Detail      string `json:"detail,omitempty"`
	DocURL      string `json:"url,omitempty"`
	Level       Level  `json:"level"`
	File        string `json:"file"`
	StartLine   int    `json:"start_line,omitempty"`
	StartColumn int    `json:"start_column,omitempty"`
	EndLine     int    `json:"end_line,omitempty"`
	EndColumn   int    `json:"end_column,omitempty"`
	Fixable     bool   `json:"fixable"`
	FixTitle    string `json:"fix_title,omitempty"`
}

func toJSONDiagnostic(d rules.Diagnostic, source []byte) jsonDiagnostic {
	pos := resolvePosition(d.Location, source)
	out := jsonDiagnostic{
		RuleCode: d.RuleCode,
		Message:  d.Message,
		Detail:   d.Detail,
		DocURL:   d.DocURL,
		Level:    LevelFor(d.RuleCode),
		File:     filepath.ToSlash(d.Location.File),
	}
	if !pos.fileLevel {
		out.StartLine, out.StartColumn = pos.startLine, pos.startColumn
		out.EndLine, out.EndColumn = pos.endLine, pos.endColumn
	}
	if d.Fix != nil {
		out.Fixable = true
		out.FixTitle = d.Fix.Title
	}
	return out
}

// JSONOutput is the top-level structure for `--format json`.
type JSONOutput struct {
	Diagnostics  []jsonDiagnostic `json:"diagnostics"`
	FilesScanned int              `json:"files_scanned"`
	RulesEnabled int              `json:"rules_enabled"`
}

// JSONReporter formats diagnostics as one pretty-printed JSON document.
type JSONReporter struct {
	w io.Writer
}

// NewJSONReporter builds a JSONReporter writing to w.
func NewJSONReporter(w io.Writer) *JSONReporter { return &JSONReporter{w: w} }

// Report implements Reporter.
func (r *JSONReporter) Report(diagnostics []rules.Diagnostic, sources map[string][]byte, metadata ReportMetadata) error {
	sorted := SortDiagnostics(diagnostics)
	out := JSONOutput{
		Diagnostics:  make([]jsonDiagnostic, 0, len(sorted)),
		FilesScanned: metadata.FilesScanned,
		RulesEnabled: metadata.RulesEnabled,
	}
	for _, d := range sorted {
		out.Diagnostics = append(out.Diagnostics, toJSONDiagnostic(d, sources[d.Location.File]))
	}

	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// JSONLinesReporter formats diagnostics as newline-delimited JSON, one
// object per line, for consumers that want to stream a run's results.
type JSONLinesReporter struct {
	w io.Writer
}

// NewJSONLinesReporter builds a JSONLinesReporter writing to w.
func NewJSONLinesReporter(w io.Writer) *JSONLinesReporter { return &JSONLinesReporter{w: w} }

// Report implements Reporter.
func (r *JSONLinesReporter) Report(diagnostics []rules.Diagnostic, sources map[string][]byte, _ ReportMetadata) error {
	enc := json.NewEncoder(r.w)
	for _, d := range SortDiagnostics(diagnostics) {
		if err := enc.Encode(toJSONDiagnostic(d, sources[d.Location.File])); err != nil {
			return err
		}
	}
	return nil
}
