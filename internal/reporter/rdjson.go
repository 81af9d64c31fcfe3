package reporter

import (
	"encoding/json"
	"io"
	"path/filepath"

	"github.com/fortitude-sh/fortitude/internal/rules"
)

// RDJSON is reviewdog's Diagnostic format (rdjson), consumed by the reviewdog
// CLI to post inline PR review comments from an arbitrary linter's output.
// See: https://github.com/reviewdog/reviewdog/blob/master/proto/rdf/jsonschema/DiagnosticResult.jsonschema

type rdPosition struct {
	Line   int `json:"line"`
	Column int `json:"column,omitempty"`
}

type rdRange struct {
	Start rdPosition `json:"start"`
	End   rdPosition `json:"end,omitempty"`
}

type rdLocation struct {
	Path  string  `json:"path"`
	Range rdRange `json:"range,omitempty"`
}

type rdCode struct {
	Value string `json:"value"`
	URL   string `json:"url,omitempty"`
}

type rdDiagnostic struct {
	Message  string     `json:"message"`
	Location rdLocation `json:"location"`
	Severity string     `json:"severity"`
	Code     rdCode     `json:"code"`
}

type rdSource struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

type rdResult struct {
	Source      rdSource       `json:"source"`
	Diagnostics []rdDiagnostic `json:"diagnostics"`
}

// RDJSONReporter formats diagnostics as reviewdog's rdjson Diagnostic
// format.
type RDJSONReporter struct {
	w        io.Writer
	toolName string
}

// NewRDJSONReporter builds an RDJSONReporter writing to w, naming toolName
// as the diagnostics' source.
func NewRDJSONReporter(w io.Writer, toolName string) *RDJSONReporter {
	if toolName == "" {
		toolName = defaultToolName
	}
	return &RDJSONReporter{w: w, toolName: toolName}
}

// Report implements Reporter.
func (r *RDJSONReporter) Report(diagnostics []rules.Diagnostic, sources map[string][]byte, _ ReportMetadata) error {
	result := rdResult{
		Source:      rdSource{Name: r.toolName, URL: defaultToolURI},
		Diagnostics: make([]rdDiagnostic, 0, len(diagnostics)),
	}

	for _, d := range SortDiagnostics(diagnostics) {
		pos := resolvePosition(d.Location, sources[d.Location.File])
		loc := rdLocation{Path: filepath.ToSlash(d.Location.File)}
		if !pos.fileLevel {
			loc.Range = rdRange{
				Start: rdPosition{Line: pos.startLine, Column: pos.startColumn},
				End:   rdPosition{Line: pos.endLine, Column: pos.endColumn},
			}
		}
		result.Diagnostics = append(result.Diagnostics, rdDiagnostic{
			Message:  d.Message,
			Location: loc,
			Severity: rdSeverity(LevelFor(d.RuleCode)),
			Code:     rdCode{Value: d.RuleCode, URL: d.DocURL},
		})
	}

	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func rdSeverity(l Level) string {
	switch l {
	case LevelError:
		return "ERROR"
	case LevelNote:
		return "INFO"
	default:
		return "WARNING"
	}
}
