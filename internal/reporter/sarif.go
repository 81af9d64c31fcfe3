package reporter

import (
	"io"
	"path/filepath"
	"sort"

	"github.com/owenrumney/go-sarif/v3/pkg/report/v210/sarif"

	"github.com/fortitude-sh/fortitude/internal/rules"
)

const (
	defaultToolName = "fortitude"
	defaultToolURI  = "https://github.com/fortitude-sh/fortitude"
)

// SARIFReporter formats diagnostics as SARIF 2.1.0, the format GitHub Code
// Scanning and Azure DevOps both consume for uploaded static-analysis
// results.
//
// See: https://docs.oasis-open.org/sarif/sarif/v2.1.0/
type SARIFReporter struct {
	w                     io.Writer
	toolName, toolVersion string
	toolURI               string
}

// NewSARIFReporter builds a SARIFReporter writing to w.
func NewSARIFReporter(w io.Writer, toolName, toolVersion, toolURI string) *SARIFReporter {
	if toolName == "" {
		toolName = defaultToolName
	}
	if toolURI == "" {
		toolURI = defaultToolURI
	}
	return &SARIFReporter{w: w, toolName: toolName, toolVersion: toolVersion, toolURI: toolURI}
}

// Report implements Reporter.
func (r *SARIFReporter) Report(diagnostics []rules.Diagnostic, sources map[string][]byte, _ ReportMetadata) error {
	report := sarif.NewReport()
	run := sarif.NewRunWithInformationURI(r.toolName, r.toolURI)
	if r.toolVersion != "" {
		run.Tool.Driver.WithVersion(r.toolVersion)
	}

	ruleSet := make(map[string]rules.Diagnostic)
	fileSet := make(map[string]struct{})
	for _, d := range diagnostics {
		if _, ok := ruleSet[d.RuleCode]; !ok {
			ruleSet[d.RuleCode] = d
		}
		fileSet[filepath.ToSlash(d.Location.File)] = struct{}{}
	}

	ruleCodes := make([]string, 0, len(ruleSet))
	for code := range ruleSet {
		ruleCodes = append(ruleCodes, code)
	}
	sort.Strings(ruleCodes)
	for _, code := range ruleCodes {
		d := ruleSet[code]
		rule := run.AddRule(code)
		if d.Detail != "" {
			rule.WithShortDescription(sarif.NewMultiformatMessageString().WithText(d.Detail))
		}
		if d.DocURL != "" {
			rule.WithHelpURI(d.DocURL)
		}
	}

	files := make([]string, 0, len(fileSet))
	for f := range fileSet {
		files = append(files, f)
	}
	sort.Strings(files)
	for _, f := range files {
		run.AddDistinctArtifact(f)
	}

	for _, d := range SortDiagnostics(diagnostics) {
		filePath := filepath.ToSlash(d.Location.File)
		pos := resolvePosition(d.Location, sources[d.Location.File])

		result := sarif.NewRuleResult(d.RuleCode).
			WithMessage(sarif.NewTextMessage(d.Message)).
			WithLevel(sarifLevel(LevelFor(d.RuleCode)))

		artifactLocation := sarif.NewSimpleArtifactLocation(filePath)
		physicalLocation := sarif.NewPhysicalLocation().WithArtifactLocation(artifactLocation)

		if !pos.fileLevel {
			region := sarif.NewRegion().WithStartLine(pos.startLine).WithStartColumn(pos.startColumn)
			if pos.endLine > 0 {
				region.WithEndLine(pos.endLine)
				if pos.endColumn > 0 {
					region.WithEndColumn(pos.endColumn)
				}
			}
			physicalLocation.WithRegion(region)
		}

		result.WithLocations([]*sarif.Location{sarif.NewLocationWithPhysicalLocation(physicalLocation)})
		run.AddResult(result)
	}

	report.AddRun(run)
	return report.PrettyWrite(r.w)
}

func sarifLevel(l Level) string {
	switch l {
	case LevelError:
		return "error"
	case LevelNote:
		return "note"
	default:
		return "warning"
	}
}
