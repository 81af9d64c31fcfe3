// Package rules defines the value types and interfaces shared by every rule
// body and by the registry, selector, analyser, and fix engine that drive
// them: diagnostics, edits, fixes, rule metadata, and the three rule
// entry-point kinds (path, text, AST).
package rules

import (
	"github.com/fortitude-sh/fortitude/internal/cst"
	"github.com/fortitude-sh/fortitude/internal/sourcemap"
	"github.com/fortitude-sh/fortitude/internal/symtab"
)

// Group is the stability tier a rule belongs to.
type Group int

const (
	GroupStable Group = iota
	GroupPreview
	GroupDeprecated
	GroupRemoved
)

// String implements fmt.Stringer.
func (g Group) String() string {
	switch g {
	case GroupStable:
		return "stable"
	case GroupPreview:
		return "preview"
	case GroupDeprecated:
		return "deprecated"
	case GroupRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// FixAvailability describes whether, and how reliably, a rule can propose a
// fix.
type FixAvailability int

const (
	FixNone FixAvailability = iota
	FixSometimes
	FixAlways
)

// String implements fmt.Stringer.
func (f FixAvailability) String() string {
	switch f {
	case FixNone:
		return "none"
	case FixSometimes:
		return "sometimes"
	case FixAlways:
		return "always"
	default:
		return "unknown"
	}
}

// Context is the narrow view of resolved settings a rule body needs. It is
// defined here, not in the config package, so that rule interfaces do not
// create an import cycle between internal/rules and internal/config; a
// *config.Settings satisfies this interface structurally.
type Context interface {
	// Preview reports whether preview-group rules are enabled for this run.
	Preview() bool
	// LineLength is the configured maximum source line length.
	LineLength() int
	// TargetStandard is the configured Fortran standard (e.g. "f2018").
	TargetStandard() string
	// RuleOptions returns the raw per-rule option map for ruleCode, or nil.
	RuleOptions(ruleCode string) map[string]any
}

// RuleMetadata is the static, registry-facing description of a rule.
type RuleMetadata struct {
	Category        Category
	Suffix          string // code without the category prefix, e.g. "001"
	Name            string // kebab-case stable name, e.g. "module-missing-implicit-none"
	Group           Group
	FixAvailability FixAvailability
	Summary         string // one-line summary shown by `explain`/listings
}

// Code returns the full rule code, e.g. "C001".
func (m RuleMetadata) Code() string {
	return string(m.Category.Prefix()) + m.Suffix
}

// Rule is the capability every rule body implements regardless of its
// entry-point kind.
type Rule interface {
	Metadata() RuleMetadata
}

// PathRule checks properties of a file's path alone (name, extension,
// location) without reading its content.
type PathRule interface {
	Rule
	CheckPath(ctx Context, path string) []Diagnostic
}

// TextRule checks a file's raw source text without needing a parsed tree
// (line length, trailing whitespace, tab usage).
type TextRule interface {
	Rule
	CheckText(ctx Context, file string, sm *sourcemap.SourceMap) []Diagnostic
}

// AstRule checks parsed syntax nodes. NodeKinds declares the non-empty set
// of CST node kinds the rule subscribes to; the analyser's entry-point index
// invokes CheckNode only when visiting a node of one of those kinds.
type AstRule interface {
	Rule
	NodeKinds() []string
	CheckNode(ctx Context, file string, node cst.Node, sm *sourcemap.SourceMap, scopes *symtab.Stack) []Diagnostic
}

// ConfigurableRule is implemented by rules that accept per-rule options
// beyond the global Context. gen/jsonschema.go reads DefaultOptions() to
// describe them in the generated schema. Neither the analyser nor settings
// resolution calls ValidateOptions or decodes ctx.RuleOptions(code) into
// DefaultOptions()'s type; rule bodies receive the raw option map.
type ConfigurableRule interface {
	Rule
	DefaultOptions() any
	ValidateOptions(options map[string]any) error
}
