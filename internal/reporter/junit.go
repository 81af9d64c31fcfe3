package reporter

import (
	"encoding/xml"
	"fmt"
	"io"
	"path/filepath"
	"sort"

	"github.com/fortitude-sh/fortitude/internal/rules"
)

type junitTestSuites struct {
	XMLName    xml.Name         `xml:"testsuites"`
	Name       string           `xml:"name,attr"`
	Tests      int              `xml:"tests,attr"`
	Failures   int              `xml:"failures,attr"`
	TestSuites []junitTestSuite `xml:"testsuite"`
}

type junitTestSuite struct {
	Name      string          `xml:"name,attr"`
	Tests     int             `xml:"tests,attr"`
	Failures  int             `xml:"failures,attr"`
	TestCases []junitTestCase `xml:"testcase"`
}

type junitTestCase struct {
	Name      string        `xml:"name,attr"`
	ClassName string        `xml:"classname,attr"`
	Failure   *junitFailure `xml:"failure,omitempty"`
}

type junitFailure struct {
	Type    string `xml:"type,attr"`
	Message string `xml:"message,attr"`
	Text    string `xml:",chardata"`
}

// JUnitReporter formats diagnostics as JUnit XML, one testsuite per file
// with diagnostics (files without any get no suite) and one (failing)
// testcase per diagnostic, letting a CI system that
// already renders JUnit reports (GitLab, Jenkins, Azure, CircleCI) show
// fortitude's findings without a dedicated integration.
type JUnitReporter struct {
	w        io.Writer
	toolName string
}

// NewJUnitReporter builds a JUnitReporter writing to w.
func NewJUnitReporter(w io.Writer, toolName string) *JUnitReporter {
	if toolName == "" {
		toolName = defaultToolName
	}
	return &JUnitReporter{w: w, toolName: toolName}
}

// Report implements Reporter.
func (r *JUnitReporter) Report(diagnostics []rules.Diagnostic, sources map[string][]byte, _ ReportMetadata) error {
	byFile := make(map[string][]rules.Diagnostic)
	var files []string
	for _, d := range SortDiagnostics(diagnostics) {
		file := filepath.ToSlash(d.Location.File)
		if _, ok := byFile[file]; !ok {
			files = append(files, file)
		}
		byFile[file] = append(byFile[file], d)
	}
	sort.Strings(files)

	suites := make([]junitTestSuite, 0, len(files))
	for _, file := range files {
		fileDiags := byFile[file]
		cases := make([]junitTestCase, 0, len(fileDiags))
		for _, d := range fileDiags {
			pos := resolvePosition(d.Location, sources[d.Location.File])
			location := "file level"
			if !pos.fileLevel {
				location = fmt.Sprintf("line %d, column %d", pos.startLine, pos.startColumn)
			}
			cases = append(cases, junitTestCase{
				Name:      fmt.Sprintf("%s: %s", d.RuleCode, d.Message),
				ClassName: file,
				Failure: &junitFailure{
					Type:    d.RuleCode,
					Message: d.Message,
					Text:    fmt.Sprintf("%s\n%s", location, d.Detail),
				},
			})
		}
		suites = append(suites, junitTestSuite{
			Name:      file,
			Tests:     len(cases),
			Failures:  len(cases),
			TestCases: cases,
		})
	}

	output := junitTestSuites{
		Name:       r.toolName,
		Tests:      len(diagnostics),
		Failures:   len(diagnostics),
		TestSuites: suites,
	}

	data, err := xml.MarshalIndent(output, "", "  ")
	if err != nil {
		return err
	}
	if _, err := io.WriteString(r.w, xml.Header); err != nil {
		return err
	}
	_, err = r.w.Write(append(data, '\n'))
	return err
}
