// Package reporter formats a run's diagnostics for a human or a consuming
// tool. Every format renders the same []rules.Diagnostic; they differ only
// in how much of it they keep and how they lay it out.
package reporter

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gkampitakis/ciinfo"

	"github.com/fortitude-sh/fortitude/internal/rules"
)

// ReportMetadata carries run-wide context a format may want alongside the
// diagnostics themselves.
type ReportMetadata struct {
	// FilesScanned is the total number of files that were analysed.
	FilesScanned int
	// RulesEnabled is the total number of rules active for this run.
	RulesEnabled int
}

// Reporter formats and writes one run's diagnostics.
type Reporter interface {
	// Report writes diagnostics to the configured output. sources maps
	// each diagnostic's Location.File to its already-read content, for
	// formats that render a source snippet.
	Report(diagnostics []rules.Diagnostic, sources map[string][]byte, metadata ReportMetadata) error
}

// Level is the coarse severity a format maps a diagnostic onto for display
// or for a consumer's own triage (GitHub annotation level, SARIF level).
// fortitude's rule table carries no per-rule severity field; level is
// derived structurally from the rule's category.
type Level string

const (
	LevelError   Level = "error"
	LevelWarning Level = "warning"
	LevelNote    Level = "note"
)

// LevelFor derives a diagnostic's display level from its rule code: the
// error category is always an error, fortitude's own meta-diagnostics are
// notes, and everything else is a warning.
func LevelFor(ruleCode string) Level {
	category, _, ok := rules.ParseCode(ruleCode)
	if !ok {
		return LevelWarning
	}
	switch category {
	case rules.CategoryError:
		return LevelError
	case rules.CategoryFortitudeMeta:
		return LevelNote
	default:
		return LevelWarning
	}
}

// SortDiagnostics returns diagnostics in the core total order (file, start
// offset, end offset, rule code); every format sorts through this so output
// ordering never depends on analysis/goroutine completion order.
func SortDiagnostics(diagnostics []rules.Diagnostic) []rules.Diagnostic {
	return rules.SortDiagnostics(diagnostics)
}

// Format names one of the supported output formats.
type Format string

const (
	FormatText         Format = "text"
	FormatConcise       Format = "concise"
	FormatJSON          Format = "json"
	FormatJSONLines     Format = "json-lines"
	FormatSARIF         Format = "sarif"
	FormatGitHubActions Format = "github-actions"
	FormatGitLab        Format = "gitlab"
	FormatAzure         Format = "azure"
	FormatPylint        Format = "pylint"
	FormatRDJSON        Format = "rdjson"
	FormatJUnit         Format = "junit"
	FormatMarkdown      Format = "markdown"
)

// ParseFormat parses a CLI-facing format name, including each format's
// short aliases.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "text", "":
		return FormatText, nil
	case "concise":
		return FormatConcise, nil
	case "json":
		return FormatJSON, nil
	case "json-lines", "jsonl", "ndjson":
		return FormatJSONLines, nil
	case "sarif":
		return FormatSARIF, nil
	case "github-actions", "github":
		return FormatGitHubActions, nil
	case "gitlab":
		return FormatGitLab, nil
	case "azure", "azure-pipelines":
		return FormatAzure, nil
	case "pylint":
		return FormatPylint, nil
	case "rdjson":
		return FormatRDJSON, nil
	case "junit":
		return FormatJUnit, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unknown format: %q", s)
	}
}

// ciFormatsByVendor maps ciinfo's vendor name to the report format that
// consumes its native annotation syntax.
var ciFormatsByVendor = map[string]Format{
	"github actions":  FormatGitHubActions,
	"gitlab ci":       FormatGitLab,
	"azure pipelines": FormatAzure,
}

// formatForCIVendor looks up the report format matching a CI vendor name
// as reported by ciinfo.Name, case-insensitively.
func formatForCIVendor(vendor string) (Format, bool) {
	format, ok := ciFormatsByVendor[strings.ToLower(vendor)]
	return format, ok
}

// DetectCIFormat returns the output format matching the CI system fortitude
// is currently running under, and true if one was detected. It reports
// false outside CI (ciinfo.IsCI is false) or under a CI vendor with no
// native annotation format.
func DetectCIFormat() (Format, bool) {
	if !ciinfo.IsCI {
		return "", false
	}
	return formatForCIVendor(ciinfo.Name)
}

// Options configures reporter construction.
type Options struct {
	Format Format
	Writer io.Writer

	// Color enables/disables colored output (text format only); nil
	// auto-detects from the writer.
	Color *bool
	// ShowSource enables source snippets (text format only).
	ShowSource bool

	ToolName    string
	ToolVersion string
	ToolURI     string
}

// DefaultOptions returns text-format Options writing to stdout with
// fortitude's tool identity filled in. `check` does not use it; it builds
// its Options from its flags and resolved settings.
func DefaultOptions() Options {
	return Options{
		Format:      FormatText,
		Writer:      os.Stdout,
		ShowSource:  true,
		ToolName:    "fortitude",
		ToolURI:     "https://github.com/fortitude-sh/fortitude",
		ToolVersion: "dev",
	}
}

// New builds the Reporter named by opts.Format.
func New(opts Options) (Reporter, error) {
	if opts.Writer == nil {
		opts.Writer = os.Stdout
	}

	switch opts.Format {
	case FormatText, "":
		return NewTextReporter(opts.Writer, TextOptions{Color: opts.Color, ShowSource: opts.ShowSource}), nil
	case FormatConcise:
		return NewConciseReporter(opts.Writer), nil
	case FormatJSON:
		return NewJSONReporter(opts.Writer), nil
	case FormatJSONLines:
		return NewJSONLinesReporter(opts.Writer), nil
	case FormatSARIF:
		return NewSARIFReporter(opts.Writer, opts.ToolName, opts.ToolVersion, opts.ToolURI), nil
	case FormatGitHubActions:
		return NewGitHubActionsReporter(opts.Writer), nil
	case FormatGitLab:
		return NewGitLabReporter(opts.Writer), nil
	case FormatAzure:
		return NewAzureReporter(opts.Writer), nil
	case FormatPylint:
		return NewPylintReporter(opts.Writer), nil
	case FormatRDJSON:
		return NewRDJSONReporter(opts.Writer, opts.ToolName), nil
	case FormatJUnit:
		return NewJUnitReporter(opts.Writer, opts.ToolName), nil
	case FormatMarkdown:
		return NewMarkdownReporter(opts.Writer), nil
	default:
		return nil, fmt.Errorf("unknown format: %q", opts.Format)
	}
}

// GetWriter resolves a --output argument ("stdout", "stderr", or a
// path) into a writer and its closer.
func GetWriter(path string) (io.Writer, func() error, error) {
	switch path {
	case "stdout", "":
		return os.Stdout, func() error { return nil }, nil
	case "stderr":
		return os.Stderr, func() error { return nil }, nil
	default:
		f, err := os.Create(path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create output file: %w", err)
		}
		return f, f.Close, nil
	}
}
