// Package analyzer implements the per-file analyser (C9): the three-phase
// path→text→AST scan that drives every rule body over a single source
// file, maintaining the symbol-table stack as it walks and collecting the
// allow comments that will later suppress some of what it finds.
package analyzer

import (
	"fmt"

	"github.com/fortitude-sh/fortitude/internal/cst"
	"github.com/fortitude-sh/fortitude/internal/directive"
	"github.com/fortitude-sh/fortitude/internal/log"
	"github.com/fortitude-sh/fortitude/internal/rules"
	"github.com/fortitude-sh/fortitude/internal/selector"
	"github.com/fortitude-sh/fortitude/internal/sourcemap"
	"github.com/fortitude-sh/fortitude/internal/symtab"
)

// MaxFileSize is the largest source file the analyser will read: spec's 4
// GiB "fits the byte length in 32 bits" guarantee.
const MaxFileSize = 1 << 32

// EntryPointIndex maps a CST node kind to the AST rules that subscribe to
// it, built once per run from the enabled RuleTable.
type EntryPointIndex map[string][]rules.AstRule

// BuildEntryPointIndex constructs the index from every registered AstRule
// enabled in table.
func BuildEntryPointIndex(reg *rules.Registry, table *selector.RuleTable) EntryPointIndex {
	idx := make(EntryPointIndex)
	for _, r := range reg.All() {
		ast, ok := r.(rules.AstRule)
		if !ok {
			continue
		}
		if !table.Enabled(r.Metadata().Code()) {
			continue
		}
		for _, kind := range ast.NodeKinds() {
			idx[kind] = append(idx[kind], ast)
		}
	}
	return idx
}

// PathRules and TextRules are likewise precomputed once per run.
func enabledPathRules(reg *rules.Registry, table *selector.RuleTable) []rules.PathRule {
	var out []rules.PathRule
	for _, r := range reg.All() {
		if pr, ok := r.(rules.PathRule); ok && table.Enabled(r.Metadata().Code()) {
			out = append(out, pr)
		}
	}
	return out
}

func enabledTextRules(reg *rules.Registry, table *selector.RuleTable) []rules.TextRule {
	var out []rules.TextRule
	for _, r := range reg.All() {
		if tr, ok := r.(rules.TextRule); ok && table.Enabled(r.Metadata().Code()) {
			out = append(out, tr)
		}
	}
	return out
}

// Result is the per-file analyser's output.
type Result struct {
	Diagnostics []rules.Diagnostic
	Skipped     bool
}

// Analyzer holds the per-run precomputed indexes so repeated File calls
// across many files in a parallel driver don't recompute them.
type Analyzer struct {
	reg       *rules.Registry
	table     *selector.RuleTable
	settings  rules.Context
	pathRules []rules.PathRule
	textRules []rules.TextRule
	entryIdx  EntryPointIndex
	parser    *cst.Parser

	ioErrorCode     string
	syntaxErrorCode string
}

// New builds an Analyzer bound to one run's settings and parser. The parser
// must be bound to the concrete Fortran grammar by the caller (cmd/fortitude);
// this package only ever calls Parser.Parse.
func New(reg *rules.Registry, table *selector.RuleTable, settings rules.Context, parser *cst.Parser) *Analyzer {
	return &Analyzer{
		reg:       reg,
		table:     table,
		settings:  settings,
		pathRules: enabledPathRules(reg, table),
		textRules: enabledTextRules(reg, table),
		entryIdx:  BuildEntryPointIndex(reg, table),
		parser:    parser,
	}
}

func (a *Analyzer) lookupMetaCodes() (ioCode, syntaxCode string) {
	if a.ioErrorCode == "" {
		if r, ok := a.reg.GetByName("io-error"); ok {
			a.ioErrorCode = r.Metadata().Code()
		}
	}
	if a.syntaxErrorCode == "" {
		if r, ok := a.reg.GetByName("syntax-error"); ok {
			a.syntaxErrorCode = r.Metadata().Code()
		}
	}
	return a.ioErrorCode, a.syntaxErrorCode
}

// File runs the three-phase scan over one file's already-read content.
// readErr, if non-nil, short-circuits straight to the IoError diagnostic
// (or a skip with no diagnostic, if that meta-rule is disabled).
func (a *Analyzer) File(path string, content []byte, readErr error) Result {
	ioCode, syntaxCode := a.lookupMetaCodes()

	if readErr != nil || len(content) > MaxFileSize {
		if ioCode != "" && a.table.Enabled(ioCode) {
			msg := "file could not be read"
			if len(content) > MaxFileSize {
				msg = "file exceeds the 4 GiB size limit"
			} else if readErr != nil {
				msg = fmt.Sprintf("file could not be read: %v", readErr)
			}
			return Result{Diagnostics: []rules.Diagnostic{
				rules.NewDiagnostic(ioCode, msg, rules.NewFileLocation(path)),
			}, Skipped: true}
		}
		return Result{Skipped: true}
	}

	var diags []rules.Diagnostic

	for _, r := range a.pathRules {
		diags = append(diags, r.CheckPath(a.settings, path)...)
	}

	sm := sourcemap.New(content)
	for _, r := range a.textRules {
		diags = append(diags, r.CheckText(a.settings, path, sm)...)
	}

	tree := a.parser.Parse(content)
	defer tree.Close()

	if tree.HasError() && syntaxCode != "" && a.table.Enabled(syntaxCode) {
		diags = append(diags, rules.NewDiagnostic(syntaxCode,
			"source could not be fully parsed; analysis continues on the partial tree",
			rules.NewFileLocation(path),
		))
	}

	root := tree.Root()
	if root.IsZero() {
		return Result{Diagnostics: rules.SortDiagnostics(diags)}
	}

	scopes := symtab.NewStack()
	var comments []directive.AllowComment

	var walk func(node cst.Node)
	walk = func(node cst.Node) {
		pushed := false
		if symtab.IsScopeNode(node.Kind()) {
			scopes.Push(symtab.Build(node, content))
			pushed = true
		}

		if node.Kind() == "comment" {
			if found, ok := directive.Gather(node, a.reg, sm); ok {
				comments = append(comments, found...)
			}
		}

		for _, rule := range a.entryIdx[node.Kind()] {
			if found := rule.CheckNode(a.settings, path, node, sm, scopes); found != nil {
				diags = append(diags, found...)
			}
		}

		for _, child := range node.NamedChildren() {
			walk(child)
		}

		if pushed {
			scopes.Pop()
		}
	}
	walk(root)

	diags = dropInvariantViolations(diags, len(content))

	kept, _ := directive.Check(path, diags, comments, a.table, a.reg)
	kept = filterPerFileIgnores(a.settings, path, kept)

	return Result{Diagnostics: rules.SortDiagnostics(kept)}
}

// dropInvariantViolations enforces spec's internal-invariant error policy: a
// rule that reports a range outside the file, or a fix whose own edits
// overlap, has its diagnostic dropped rather than corrupting the run. Each
// offending rule logs at most once per process.
func dropInvariantViolations(diags []rules.Diagnostic, contentLen int) []rules.Diagnostic {
	out := diags[:0:0]
	for _, d := range diags {
		if !d.Location.IsFileLevel() && (d.Location.Range.Start < 0 || d.Location.Range.End > contentLen || d.Location.Range.Start > d.Location.Range.End) {
			log.WarnOnce("range:"+d.RuleCode, "rule ", d.RuleCode, " reported a range outside the file; diagnostic dropped")
			continue
		}
		if d.Fix != nil && d.Fix.SelfOverlaps() {
			log.WarnOnce("selfoverlap:"+d.RuleCode, "rule ", d.RuleCode, " produced a self-overlapping fix; diagnostic dropped")
			continue
		}
		out = append(out, d)
	}
	return out
}

// perFileIgnoreChecker is the narrow interface Settings satisfies; declared
// here (not in rules.Context) because per-file ignores are a config-layer
// concern, not something a rule body ever consults directly.
type perFileIgnoreChecker interface {
	IsRuleIgnoredForPath(path, code string) bool
}

func filterPerFileIgnores(settings rules.Context, path string, diags []rules.Diagnostic) []rules.Diagnostic {
	checker, ok := settings.(perFileIgnoreChecker)
	if !ok {
		return diags
	}
	out := diags[:0:0]
	for _, d := range diags {
		if !checker.IsRuleIgnoredForPath(path, d.RuleCode) {
			out = append(out, d)
		}
	}
	return out
}
