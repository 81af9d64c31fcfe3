// Package meta registers fortitude's own meta-diagnostics: the rules that
// fire about the allow-comment mechanism itself, plus the io-error and
// syntax-error rules, rather than about Fortran source. They carry no
// CheckPath/CheckText/CheckNode entry point — the directive package emits
// the allow-comment diagnostics as it resolves allow comments, and the
// analyser emits io-error and syntax-error — but they must still be real
// registry entries so they can be selected, ignored, and reported on like
// any other rule.
package meta

import "github.com/fortitude-sh/fortitude/internal/rules"

type metaRule struct {
	meta rules.RuleMetadata
}

func (r metaRule) Metadata() rules.RuleMetadata { return r.meta }

func register(suffix, name, summary string) {
	rules.Register(metaRule{meta: rules.RuleMetadata{
		Category:        rules.CategoryFortitudeMeta,
		Suffix:          suffix,
		Name:            name,
		Group:           rules.GroupStable,
		FixAvailability: rules.FixNone,
		Summary:         summary,
	}})
}

func init() {
	rules.Register(metaRule{meta: rules.RuleMetadata{
		Category:        rules.CategoryFortitudeMeta,
		Suffix:          "002",
		Name:            "redirected-allow-comment",
		Group:           rules.GroupStable,
		FixAvailability: rules.FixAlways,
		Summary:         "an allow comment names a rule code or name that has been redirected",
	}})
	register("001", "invalid-rule-code-or-name", "an allow comment names a rule code or name fortitude does not recognise")
	register("003", "duplicated-allow-comment", "an allow comment names the same rule more than once")
	register("004", "unused-allow-comment", "an allow comment did not suppress any diagnostic")
	register("005", "disabled-allow-comment", "an allow comment names a rule that is not enabled for this run")
	register("006", "io-error", "a file could not be read, or exceeded the 4 GiB size limit")
	register("007", "syntax-error", "the grammar could not fully parse a file; analysis continued on the partial tree")
}
