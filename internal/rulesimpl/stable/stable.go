// Package stable holds fortitude's always-on rule bodies: the sample drawn
// from each rule-entry-point kind and fix-availability level that exercises
// the registry, selector, analyser, and fix engine end to end.
package stable

import (
	"fmt"
	"strings"

	"github.com/fortitude-sh/fortitude/internal/cst"
	"github.com/fortitude-sh/fortitude/internal/rules"
	"github.com/fortitude-sh/fortitude/internal/sourcemap"
	"github.com/fortitude-sh/fortitude/internal/symtab"
)

func init() {
	rules.Register(moduleMissingImplicitNone{})
	rules.Register(missingIntent{})
	rules.Register(doublePrecision{})
	rules.Register(pauseStatement{})
	rules.Register(elseClauseMissingSpace{})
	rules.Register(lineTooLong{})

	// M001 named this rule under the old "modules" category prefix before
	// fortitude split modernisation concerns out of it.
	rules.RegisterRedirect("M001", "MOD001")
}

// scopeHeaderKinds are the node kinds whose implicit-none contract this
// rule checks: modules, submodules, and the top-level program unit.
var scopeHeaderKinds = []string{"module", "submodule", "program"}

// moduleMissingImplicitNone is C001: every module, submodule, and program
// must contain an `implicit none` statement.
type moduleMissingImplicitNone struct{}

func (moduleMissingImplicitNone) Metadata() rules.RuleMetadata {
	return rules.RuleMetadata{
		Category:        rules.CategoryCorrectness,
		Suffix:          "001",
		Name:            "module-missing-implicit-none",
		Group:           rules.GroupStable,
		FixAvailability: rules.FixAlways,
		Summary:         "module, submodule, or program is missing an 'implicit none' statement",
	}
}

func (moduleMissingImplicitNone) NodeKinds() []string { return scopeHeaderKinds }

func (r moduleMissingImplicitNone) CheckNode(_ rules.Context, file string, node cst.Node, sm *sourcemap.SourceMap, _ *symtab.Stack) []rules.Diagnostic {
	if hasImplicitNone(node) {
		return nil
	}
	header, ok := node.Child(0)
	if !ok {
		return nil
	}
	_, headerEnd := header.ByteRange()
	start, end := node.ByteRange()

	diag := rules.NewDiagnostic(r.Metadata().Code(),
		fmt.Sprintf("%s missing 'implicit none'", node.Kind()),
		rules.NewLocation(file, rules.NewTextRange(start, end)),
	)

	indent := sm.Indentation(headerEnd)
	insertText := "\n" + indent + "implicit none"
	fix := rules.SafeFix("insert 'implicit none'", rules.InsertEdit(headerEnd, insertText))
	return []rules.Diagnostic{diag.WithFix(fix)}
}

func hasImplicitNone(node cst.Node) bool {
	for _, c := range node.NamedChildren() {
		if c.Kind() != "implicit_statement" {
			continue
		}
		for _, g := range c.NamedChildren() {
			if g.Kind() == "none" {
				return true
			}
		}
		if text, ok := c.Text(); ok && strings.Contains(strings.ToLower(text), "none") {
			return true
		}
	}
	return false
}

// missingIntent is C121: dummy arguments of a subroutine or function should
// declare an explicit intent.
type missingIntent struct{}

func (missingIntent) Metadata() rules.RuleMetadata {
	return rules.RuleMetadata{
		Category:        rules.CategoryCorrectness,
		Suffix:          "121",
		Name:            "missing-intent",
		Group:           rules.GroupStable,
		FixAvailability: rules.FixNone,
		Summary:         "dummy argument has no declared intent",
	}
}

func (missingIntent) NodeKinds() []string { return []string{"subroutine", "function"} }

func (r missingIntent) CheckNode(_ rules.Context, file string, node cst.Node, _ *sourcemap.SourceMap, scopes *symtab.Stack) []rules.Diagnostic {
	params, ok := node.ChildByField("parameters")
	if !ok {
		return nil
	}
	table := scopes.Top()
	if table == nil {
		return nil
	}

	var out []rules.Diagnostic
	for _, p := range params.NamedChildren() {
		name, ok := p.Text()
		if !ok {
			continue
		}
		v, ok := table.Get(name)
		if !ok || v.Decl.IntentAttribute() != symtab.IntentNone {
			continue
		}
		start, end := v.Declarator.ByteRange()
		out = append(out, rules.NewDiagnostic(r.Metadata().Code(),
			fmt.Sprintf("dummy argument '%s' has no declared intent", name),
			rules.NewLocation(file, rules.NewTextRange(start, end)),
		))
	}
	return out
}

// doublePrecision is MOD001: `double precision`/`double complex` should be
// replaced with an explicit-kind `real`/`complex`. No autofix: the right
// kind alias depends on a project's own kind module.
type doublePrecision struct{}

func (doublePrecision) Metadata() rules.RuleMetadata {
	return rules.RuleMetadata{
		Category:        rules.CategoryModernisation,
		Suffix:          "001",
		Name:            "double-precision",
		Group:           rules.GroupStable,
		FixAvailability: rules.FixNone,
		Summary:         "prefer an explicit-kind real/complex to double precision/double complex",
	}
}

func (doublePrecision) NodeKinds() []string { return []string{"intrinsic_type"} }

func (r doublePrecision) CheckNode(_ rules.Context, file string, node cst.Node, _ *sourcemap.SourceMap, _ *symtab.Stack) []rules.Diagnostic {
	text, ok := node.Text()
	if !ok {
		return nil
	}
	lower := strings.ToLower(strings.Join(strings.Fields(text), " "))
	var preferred string
	switch lower {
	case "double precision":
		preferred = "real(real64)"
	case "double complex":
		preferred = "complex(real64)"
	default:
		return nil
	}
	start, end := node.ByteRange()
	return []rules.Diagnostic{
		rules.NewDiagnostic(r.Metadata().Code(),
			fmt.Sprintf("prefer '%s' to '%s' (see 'iso_fortran_env')", preferred, lower),
			rules.NewLocation(file, rules.NewTextRange(start, end)),
		),
	}
}

// pauseStatement is OB001: `pause` was deleted from the language in
// Fortran 95.
type pauseStatement struct{}

func (pauseStatement) Metadata() rules.RuleMetadata {
	return rules.RuleMetadata{
		Category:        rules.CategoryObsolescent,
		Suffix:          "001",
		Name:            "pause-statement",
		Group:           rules.GroupStable,
		FixAvailability: rules.FixSometimes,
		Summary:         "'pause' statements are a deleted feature",
	}
}

func (pauseStatement) NodeKinds() []string { return []string{"file_position_statement"} }

func (r pauseStatement) CheckNode(_ rules.Context, file string, node cst.Node, _ *sourcemap.SourceMap, _ *symtab.Stack) []rules.Diagnostic {
	head, ok := node.Child(0)
	if !ok {
		return nil
	}
	text, ok := head.Text()
	if !ok || strings.ToLower(text) != "pause" {
		return nil
	}
	start, end := node.ByteRange()
	loc := rules.NewLocation(file, rules.NewTextRange(start, end))
	fix := rules.UnsafeFix("use 'read(*, *)' instead", rules.ReplaceEdit(loc.Range, "read(*, *)"))
	return []rules.Diagnostic{
		rules.NewDiagnostic(r.Metadata().Code(), "'pause' statements are a deleted feature", loc).WithFix(fix),
	}
}

// elseClauseMissingSpace is S001: `elseif`/`elsewhere` should read `else
// if`/`else where`.
type elseClauseMissingSpace struct{}

func (elseClauseMissingSpace) Metadata() rules.RuleMetadata {
	return rules.RuleMetadata{
		Category:        rules.CategoryStyle,
		Suffix:          "001",
		Name:            "else-clause-missing-space",
		Group:           rules.GroupStable,
		FixAvailability: rules.FixAlways,
		Summary:         "'elseif'/'elsewhere' should read 'else if'/'else where'",
	}
}

func (elseClauseMissingSpace) NodeKinds() []string {
	return []string{"elseif_clause", "elsewhere_clause"}
}

func (r elseClauseMissingSpace) CheckNode(_ rules.Context, file string, node cst.Node, _ *sourcemap.SourceMap, _ *symtab.Stack) []rules.Diagnostic {
	head, ok := node.Child(0)
	if !ok {
		return nil
	}
	text, ok := head.Text()
	if !ok {
		return nil
	}
	var message string
	switch strings.ToLower(text) {
	case "elseif":
		message = "prefer 'else if' over 'elseif'"
	case "elsewhere":
		message = "prefer 'else where' over 'elsewhere'"
	default:
		return nil
	}
	start, end := head.ByteRange()
	loc := rules.NewLocation(file, rules.NewTextRange(start, end))
	fix := rules.SafeFix("add missing space", rules.InsertEdit(start+4, " "))
	return []rules.Diagnostic{rules.NewDiagnostic(r.Metadata().Code(), message, loc).WithFix(fix)}
}

// lineTooLong is S002: lines beyond the configured maximum are hard to read
// in a split terminal or a code-review diff.
type lineTooLong struct{}

func (lineTooLong) Metadata() rules.RuleMetadata {
	return rules.RuleMetadata{
		Category:        rules.CategoryStyle,
		Suffix:          "002",
		Name:            "line-too-long",
		Group:           rules.GroupStable,
		FixAvailability: rules.FixNone,
		Summary:         "line exceeds the configured maximum length",
	}
}

func (r lineTooLong) CheckText(ctx rules.Context, file string, sm *sourcemap.SourceMap) []rules.Diagnostic {
	limit := ctx.LineLength()
	if limit <= 0 {
		return nil
	}
	var out []rules.Diagnostic
	for i := 0; i < sm.LineCount(); i++ {
		line := sm.Line(i)
		if len(line) <= limit {
			continue
		}
		start := sm.LineStart(i) + limit
		end := sm.LineEnd(i)
		out = append(out, rules.NewDiagnostic(r.Metadata().Code(),
			fmt.Sprintf("line is %d characters long, exceeds the limit of %d", len(line), limit),
			rules.NewLocation(file, rules.NewTextRange(start, end)),
		))
	}
	return out
}
