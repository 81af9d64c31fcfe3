package reporter

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/fortitude-sh/fortitude/internal/rules"
)

// AzureReporter formats diagnostics as Azure Pipelines logging commands,
// rendered as build annotations in the Azure DevOps UI.
//
// Format: ##vso[task.logissue type=warning;sourcepath=file;linenumber=N;columnnumber=N;code=CODE]message
//
// See: https://learn.microsoft.com/azure/devops/pipelines/scripts/logging-commands
type AzureReporter struct {
	w io.Writer
}

// NewAzureReporter builds an AzureReporter writing to w.
func NewAzureReporter(w io.Writer) *AzureReporter { return &AzureReporter{w: w} }

// Report implements Reporter.
func (r *AzureReporter) Report(diagnostics []rules.Diagnostic, sources map[string][]byte, _ ReportMetadata) error {
	for _, d := range SortDiagnostics(diagnostics) {
		level := azureIssueType(LevelFor(d.RuleCode))
		pos := resolvePosition(d.Location, sources[d.Location.File])
		path := filepath.ToSlash(d.Location.File)

		parts := []string{"type=" + level, "sourcepath=" + path}
		if !pos.fileLevel {
			parts = append(parts, fmt.Sprintf("linenumber=%d", pos.startLine))
			parts = append(parts, fmt.Sprintf("columnnumber=%d", pos.startColumn))
		}
		parts = append(parts, "code="+d.RuleCode)

		if _, err := fmt.Fprintf(r.w, "##vso[task.logissue %s]%s\n", strings.Join(parts, ";"), escapeAzureMessage(d.Message)); err != nil {
			return err
		}
	}
	return nil
}

func azureIssueType(l Level) string {
	if l == LevelError {
		return "error"
	}
	return "warning"
}

// escapeAzureMessage escapes the characters Azure's logging command parser
// treats specially within a message.
func escapeAzureMessage(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "]", ")")
	return s
}
