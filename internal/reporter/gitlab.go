package reporter

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/fortitude-sh/fortitude/internal/rules"
)

// gitlabSeverity maps a Level onto GitLab's Code Quality severities.
// See: https://docs.gitlab.com/ee/ci/testing/code_quality.html
func gitlabSeverity(l Level) string {
	switch l {
	case LevelError:
		return "major"
	case LevelNote:
		return "info"
	default:
		return "minor"
	}
}

type gitlabLocationLines struct {
	Begin int `json:"begin"`
	End   int `json:"end,omitempty"`
}

type gitlabLocation struct {
	Path  string              `json:"path"`
	Lines gitlabLocationLines `json:"lines"`
}

type gitlabIssue struct {
	Description string         `json:"description"`
	CheckName   string         `json:"check_name"`
	Fingerprint string         `json:"fingerprint"`
	Severity    string         `json:"severity"`
	Location    gitlabLocation `json:"location"`
}

// GitLabReporter formats diagnostics as a GitLab Code Quality report, the
// JSON array GitLab CI renders as merge-request annotations when published
// via the `codequality` artifact report type.
type GitLabReporter struct {
	w io.Writer
}

// NewGitLabReporter builds a GitLabReporter writing to w.
func NewGitLabReporter(w io.Writer) *GitLabReporter { return &GitLabReporter{w: w} }

// Report implements Reporter.
func (r *GitLabReporter) Report(diagnostics []rules.Diagnostic, sources map[string][]byte, _ ReportMetadata) error {
	sorted := SortDiagnostics(diagnostics)
	issues := make([]gitlabIssue, 0, len(sorted))
	for _, d := range sorted {
		pos := resolvePosition(d.Location, sources[d.Location.File])
		path := filepath.ToSlash(d.Location.File)
		line := pos.startLine
		endLine := pos.endLine
		if pos.fileLevel {
			line = 1
		}
		issues = append(issues, gitlabIssue{
			Description: d.Message,
			CheckName:   d.RuleCode,
			Fingerprint: gitlabFingerprint(path, d.RuleCode, d.Location.Range.Start),
			Severity:    gitlabSeverity(LevelFor(d.RuleCode)),
			Location:    gitlabLocation{Path: path, Lines: gitlabLocationLines{Begin: line, End: endLine}},
		})
	}

	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	return enc.Encode(issues)
}

// gitlabFingerprint derives GitLab's required stable per-issue identifier
// from the triple that already totally orders a diagnostic within a file:
// path, rule code, and starting byte offset.
func gitlabFingerprint(path, ruleCode string, start int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%s:%d", path, ruleCode, start)))
	return hex.EncodeToString(sum[:])
}
