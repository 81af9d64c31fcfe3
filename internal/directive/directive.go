// Package directive implements fortitude's one suppression syntax:
//
//	! allow(rule[, rule...])
//
// An allow comment is a CST "comment" node whose text matches the form
// above; it suppresses diagnostics raised anywhere within the next named
// sibling statement's full line span (from the start of the line the
// statement begins on, to the end of the line it ends on).
package directive

import (
	"regexp"
	"strings"

	"github.com/fortitude-sh/fortitude/internal/cst"
	"github.com/fortitude-sh/fortitude/internal/rules"
	"github.com/fortitude-sh/fortitude/internal/selector"
	"github.com/fortitude-sh/fortitude/internal/sourcemap"
)

var (
	allowCommentPattern = regexp.MustCompile(`!\s*allow\((.*)\)\s*$`)
	ruleTokenPattern    = regexp.MustCompile(`\w[-\w\d]*`)
)

// AllowComment is one rule reference parsed out of an allow comment's
// argument list.
type AllowComment struct {
	Code  string          // the code or name as written
	Rule  rules.Rule      // resolved rule, nil if unrecognised
	Range rules.TextRange // the suppressed statement's full line span
	Loc   rules.TextRange // the span of Code within the comment itself
}

// Gather inspects node; if it is a comment matching the allow-comment form,
// it returns the parsed rule references. ok is false if node is not an
// allow comment, or if it has no next named sibling to apply to (a trailing
// allow comment suppresses nothing and produces no diagnostic).
func Gather(node cst.Node, reg *rules.Registry, sm *sourcemap.SourceMap) ([]AllowComment, bool) {
	if node.Kind() != "comment" {
		return nil, false
	}
	text, ok := node.Text()
	if !ok {
		return nil, false
	}
	m := allowCommentPattern.FindStringSubmatch(text)
	if m == nil {
		return nil, false
	}

	next, ok := node.NextNamedSibling()
	if !ok {
		return nil, false
	}
	nextStart, nextEnd := next.ByteRange()
	startLine, _ := sm.PositionAt(nextStart)
	endLine, _ := sm.PositionAt(nextEnd)
	appliedRange := rules.NewTextRange(sm.LineStart(startLine), sm.LineEnd(endLine))

	commentStart, _ := node.ByteRange()
	argsOffset := strings.Index(text, "(") + 1
	argsStart := commentStart + argsOffset
	args := m[1]

	var out []AllowComment
	for _, loc := range ruleTokenPattern.FindAllStringIndex(args, -1) {
		code := args[loc[0]:loc[1]]
		tokenRange := rules.NewTextRange(argsStart+loc[0], argsStart+loc[1])

		resolved := code
		if target, ok := reg.Redirect(code); ok {
			resolved = target
		}
		rule, _ := reg.Resolve(resolved)

		out = append(out, AllowComment{
			Code:  code,
			Rule:  rule,
			Range: appliedRange,
			Loc:   tokenRange,
		})
	}
	return out, true
}

// metaCode looks up a meta-diagnostic's registered code by its stable name;
// rulesimpl/meta registers these at init, so a miss means that package was
// not imported by the binary wiring them together.
func metaCode(reg *rules.Registry, name string) (string, bool) {
	r, ok := reg.GetByName(name)
	if !ok {
		return "", false
	}
	return r.Metadata().Code(), true
}

// Check applies comments against diagnostics: diagnostics covered by a
// resolved allow comment are removed and returned separately as suppressed;
// meta-diagnostics about the comments themselves (unknown code, redirected
// code, duplicate, unused, or disabled) are appended to the kept set when
// their own meta-rule is enabled in table.
func Check(file string, diagnostics []rules.Diagnostic, comments []AllowComment, table *selector.RuleTable, reg *rules.Registry) (kept, suppressed []rules.Diagnostic) {
	suppressedIdx := make(map[int]bool)
	usedCodes := make(map[string]bool)

outer:
	for i, d := range diagnostics {
		for _, c := range comments {
			if c.Rule == nil {
				continue
			}
			code := c.Rule.Metadata().Code()
			if code == d.RuleCode && c.Range.Contains(d.Location.Range) {
				usedCodes[code] = true
				suppressedIdx[i] = true
				continue outer
			}
		}
	}

	for i, d := range diagnostics {
		if !suppressedIdx[i] {
			kept = append(kept, d)
		} else {
			suppressed = append(suppressed, d)
		}
	}

	seenCodes := make(map[string]bool)
	for _, c := range comments {
		redirected, wasRedirected := reg.Redirect(c.Code)

		if wasRedirected {
			if code, ok := metaCode(reg, "redirected-allow-comment"); ok && table.Enabled(code) {
				newRule, _ := reg.Resolve(redirected)
				newName := redirected
				if newRule != nil {
					newName = newRule.Metadata().Name
				}
				kept = append(kept, rules.NewDiagnostic(code,
					"allow comment names a redirected rule",
					rules.NewLocation(file, c.Loc),
				).WithFix(rules.SafeFix("update allow comment to "+newName, rules.ReplaceEdit(c.Loc, newName))))
			}
		}

		effectiveCode := c.Code
		if wasRedirected {
			effectiveCode = redirected
		}

		switch {
		case c.Rule == nil:
			if code, ok := metaCode(reg, "invalid-rule-code-or-name"); ok && table.Enabled(code) {
				kept = append(kept, rules.NewDiagnostic(code,
					"unrecognised rule code or name in allow comment: "+effectiveCode,
					rules.NewLocation(file, c.Loc),
				))
			}
		default:
			code := c.Rule.Metadata().Code()
			if seenCodes[code] {
				if metaC, ok := metaCode(reg, "duplicated-allow-comment"); ok && table.Enabled(metaC) {
					kept = append(kept, rules.NewDiagnostic(metaC,
						"rule named more than once in allow comment: "+c.Code,
						rules.NewLocation(file, c.Loc),
					))
				}
				continue
			}
			seenCodes[code] = true

			if usedCodes[code] {
				continue
			}
			if table.Enabled(code) {
				if metaC, ok := metaCode(reg, "unused-allow-comment"); ok && table.Enabled(metaC) {
					kept = append(kept, rules.NewDiagnostic(metaC,
						"allow comment did not suppress any diagnostic: "+effectiveCode,
						rules.NewLocation(file, c.Loc),
					))
				}
			} else if metaC, ok := metaCode(reg, "disabled-allow-comment"); ok && table.Enabled(metaC) {
				kept = append(kept, rules.NewDiagnostic(metaC,
					"allow comment names a rule that is not enabled: "+effectiveCode,
					rules.NewLocation(file, c.Loc),
				))
			}
		}
	}

	rules.SortDiagnostics(kept)
	return kept, suppressed
}
