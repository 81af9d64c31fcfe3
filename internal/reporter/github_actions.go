package reporter

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/fortitude-sh/fortitude/internal/rules"
)

// GitHubActionsReporter formats diagnostics as GitHub Actions workflow
// commands, rendered as inline annotations in the Actions UI.
//
// Format: ::{level} file={file},line={line},col={col}::{message}
//
// See: https://docs.github.com/actions/using-workflows/workflow-commands-for-github-actions
type GitHubActionsReporter struct {
	w io.Writer
}

// NewGitHubActionsReporter builds a GitHubActionsReporter writing to w.
func NewGitHubActionsReporter(w io.Writer) *GitHubActionsReporter {
	return &GitHubActionsReporter{w: w}
}

// Report implements Reporter.
func (r *GitHubActionsReporter) Report(diagnostics []rules.Diagnostic, sources map[string][]byte, _ ReportMetadata) error {
	for _, d := range SortDiagnostics(diagnostics) {
		level := githubLevel(LevelFor(d.RuleCode))
		pos := resolvePosition(d.Location, sources[d.Location.File])
		filePath := filepath.ToSlash(d.Location.File)

		parts := []string{"file=" + escapeGitHubProperty(filePath)}
		if !pos.fileLevel {
			parts = append(parts, fmt.Sprintf("line=%d", pos.startLine))
			parts = append(parts, fmt.Sprintf("col=%d", pos.startColumn))
			if pos.endLine > pos.startLine {
				parts = append(parts, fmt.Sprintf("endLine=%d", pos.endLine))
			}
		}
		parts = append(parts, "title="+escapeGitHubProperty(d.RuleCode))

		if _, err := fmt.Fprintf(r.w, "::%s %s::%s\n", level, strings.Join(parts, ","), escapeGitHubMessage(d.Message)); err != nil {
			return err
		}
	}
	return nil
}

func githubLevel(l Level) string {
	switch l {
	case LevelError:
		return "error"
	case LevelNote:
		return "notice"
	default:
		return "warning"
	}
}

// escapeGitHubMessage escapes "%", "\r", "\n" per GitHub's escapeData rules.
func escapeGitHubMessage(s string) string {
	s = strings.ReplaceAll(s, "%", "%25")
	s = strings.ReplaceAll(s, "\r", "%0D")
	s = strings.ReplaceAll(s, "\n", "%0A")
	return s
}

// escapeGitHubProperty additionally escapes ":" and "," per GitHub's
// escapeProperty rules.
func escapeGitHubProperty(s string) string {
	s = escapeGitHubMessage(s)
	s = strings.ReplaceAll(s, ":", "%3A")
	s = strings.ReplaceAll(s, ",", "%2C")
	return s
}
