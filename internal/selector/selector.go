// Package selector resolves the user-facing selection surface — category
// codes, prefix codes, exact rule codes, and the ALL sentinel, combined via
// select/extend-select/ignore — into the RuleTable a run actually enforces.
package selector

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fortitude-sh/fortitude/internal/rules"
)

// Kind distinguishes the four selector shapes spec §4.6 names.
type Kind int

const (
	KindAll Kind = iota
	KindCategory
	KindPrefix
	KindRule
)

// Specificity orders selector kinds from least to most specific; within
// KindPrefix, the code's length breaks further ties (a longer prefix is more
// specific than a shorter one).
type Specificity int

const (
	SpecAll Specificity = iota
	SpecCategory
	SpecPrefix1
	SpecPrefix2
	SpecPrefix3
	SpecPrefix4
	SpecRule
)

// Selector is one parsed entry from a select/extend-select/ignore list.
type Selector struct {
	Kind           Kind
	Category       rules.Category
	Code           string // category-relative suffix; "" for KindAll and bare KindCategory
	RedirectedFrom string // original code text, if this selector was reached via a redirect
}

// Raw renders the selector back to its canonical code form, e.g. "E" or
// "E001".
func (s Selector) Raw() string {
	if s.Kind == KindAll {
		return "ALL"
	}
	return s.Category.Prefix() + s.Code
}

// Specificity classifies s for the select/ignore resolution order.
func (s Selector) Specificity() Specificity {
	switch s.Kind {
	case KindAll:
		return SpecAll
	case KindCategory:
		return SpecCategory
	case KindRule:
		return SpecRule
	default:
		switch len(s.Code) {
		case 1:
			return SpecPrefix1
		case 2:
			return SpecPrefix2
		case 3:
			return SpecPrefix3
		default:
			return SpecPrefix4
		}
	}
}

// IsExact reports whether s names a single rule.
func (s Selector) IsExact() bool { return s.Kind == KindRule }

// Parse resolves a selector string against reg, following at most one
// redirect hop (per rules.Registry.Redirect) and also accepting a rule's
// full name in place of its code.
func Parse(reg *rules.Registry, s string) (Selector, error) {
	if s == "ALL" {
		return Selector{Kind: KindAll}, nil
	}

	redirectedFrom := ""
	resolved := s
	if target, ok := reg.Redirect(s); ok {
		redirectedFrom = s
		resolved = target
	}

	if rule, ok := reg.GetByName(resolved); ok {
		resolved = rule.Metadata().Code()
	}

	category, code, ok := rules.ParseCode(resolved)
	if !ok {
		return Selector{}, fmt.Errorf("selector: unknown selector %q", s)
	}

	if code == "" {
		return Selector{Kind: KindCategory, Category: category, RedirectedFrom: redirectedFrom}, nil
	}

	matches := reg.ByCategory(category)
	var withPrefix []rules.Rule
	for _, r := range matches {
		if strings.HasPrefix(r.Metadata().Suffix, code) {
			withPrefix = append(withPrefix, r)
		}
	}
	if len(withPrefix) == 0 {
		return Selector{}, fmt.Errorf("selector: unknown selector %q", s)
	}

	kind := KindPrefix
	if len(withPrefix) == 1 && withPrefix[0].Metadata().Suffix == code {
		kind = KindRule
	}
	return Selector{Kind: kind, Category: category, Code: code, RedirectedFrom: redirectedFrom}, nil
}

// matchRules returns every rule reg knows about that falls under sel,
// ignoring group filtering (preview/deprecated/removed); callers apply
// group filtering afterward via includeByGroup.
func matchRules(reg *rules.Registry, sel Selector) []rules.Rule {
	switch sel.Kind {
	case KindAll:
		return reg.All()
	case KindCategory:
		return reg.ByCategory(sel.Category)
	default:
		var out []rules.Rule
		for _, r := range reg.ByCategory(sel.Category) {
			if strings.HasPrefix(r.Metadata().Suffix, sel.Code) {
				out = append(out, r)
			}
		}
		return out
	}
}

// Options controls how a selector list resolves into a RuleTable.
type Options struct {
	Select        []Selector
	ExtendSelect  []Selector
	Ignore        []Selector
	Preview       bool
	ExplicitPreview bool // require explicit (exact) selection of preview rules
}

// RuleTable is the resolved outcome of a selection: the set of enabled rule
// codes. It carries no per-rule fix setting.
type RuleTable struct {
	enabled map[string]bool // rule code -> enabled
}

// Empty returns a RuleTable enforcing nothing.
func Empty() *RuleTable {
	return &RuleTable{enabled: make(map[string]bool)}
}

// Enabled reports whether code is active in t.
func (t *RuleTable) Enabled(code string) bool { return t.enabled[code] }

// Codes returns every enabled rule code, sorted.
func (t *RuleTable) Codes() []string {
	out := make([]string, 0, len(t.enabled))
	for c := range t.enabled {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Warning is a resolution-time diagnostic about the selector list itself
// (not about any source file) — an empty preview selection, a deprecated or
// removed rule reference, or a followed redirect.
type Warning struct {
	Message string
}

// includeByGroup applies the group-filter: stable rules are always
// eligible; preview rules require preview mode (and, if ExplicitPreview is
// set, an exact selector); deprecated rules are eligible outside preview
// mode, and in preview mode only via an exact selector; removed rules are eligible only via an exact
// selector (and are rejected downstream by the caller).
func includeByGroup(r rules.Rule, sel Selector, opt Options) bool {
	switch r.Metadata().Group {
	case rules.GroupStable:
		return true
	case rules.GroupPreview:
		return opt.Preview && (sel.IsExact() || !opt.ExplicitPreview)
	case rules.GroupDeprecated:
		return !opt.Preview || sel.IsExact()
	case rules.GroupRemoved:
		return sel.IsExact()
	default:
		return false
	}
}

// Resolve implements spec §4.6's deterministic selection algorithm: seed the
// enabled set from --select (or every stable/enabled-by-default rule if
// --select was not given), then walk select/extend-select/ignore together in
// increasing specificity order, and finally collect warnings for removed,
// deprecated, and empty-preview selectors.
func Resolve(reg *rules.Registry, opt Options) (*RuleTable, []Warning, error) {
	enabled := make(map[string]bool)

	selectGiven := len(opt.Select) > 0
	if !selectGiven {
		for _, r := range reg.All() {
			if r.Metadata().Group == rules.GroupStable {
				enabled[r.Metadata().Code()] = true
			}
		}
	}

	var allSelectors []Selector
	allSelectors = append(allSelectors, opt.Select...)
	allSelectors = append(allSelectors, opt.ExtendSelect...)

	for spec := SpecAll; spec <= SpecRule; spec++ {
		for _, sel := range allSelectors {
			if sel.Specificity() != spec {
				continue
			}
			for _, r := range matchRules(reg, sel) {
				if includeByGroup(r, sel, opt) {
					enabled[r.Metadata().Code()] = true
				}
			}
		}
		for _, sel := range opt.Ignore {
			if sel.Specificity() != spec {
				continue
			}
			for _, r := range matchRules(reg, sel) {
				delete(enabled, r.Metadata().Code())
			}
		}
	}

	var warnings []Warning
	seenRemoved := map[string]bool{}
	seenDeprecated := map[string]bool{}
	for _, sel := range allSelectors {
		matched := matchRules(reg, sel)
		if len(matched) == 0 {
			continue
		}
		allRemoved, allDeprecated := true, true
		for _, r := range matched {
			if r.Metadata().Group != rules.GroupRemoved {
				allRemoved = false
			}
			if r.Metadata().Group != rules.GroupDeprecated {
				allDeprecated = false
			}
		}
		if sel.IsExact() && allRemoved && !seenRemoved[sel.Raw()] {
			seenRemoved[sel.Raw()] = true
			warnings = append(warnings, Warning{Message: fmt.Sprintf("rule `%s` was removed and cannot be selected", sel.Raw())})
		}
		if sel.IsExact() && allDeprecated && !seenDeprecated[sel.Raw()] {
			seenDeprecated[sel.Raw()] = true
			warnings = append(warnings, Warning{Message: fmt.Sprintf("rule `%s` is deprecated", sel.Raw())})
		}
		if sel.RedirectedFrom != "" {
			warnings = append(warnings, Warning{Message: fmt.Sprintf("`%s` has been remapped to `%s`", sel.RedirectedFrom, sel.Raw())})
		}
		if !opt.Preview {
			onlyPreview := true
			for _, r := range matched {
				if r.Metadata().Group != rules.GroupPreview {
					onlyPreview = false
				}
			}
			if onlyPreview {
				warnings = append(warnings, Warning{Message: fmt.Sprintf("selection `%s` only matches preview rules, but preview mode is not enabled", sel.Raw())})
			}
		}
	}

	for code := range enabled {
		if r, ok := reg.GetByCode(code); ok && r.Metadata().Group == rules.GroupRemoved {
			return nil, warnings, fmt.Errorf("selector: rule %s was removed and cannot be enabled", code)
		}
	}

	return &RuleTable{enabled: enabled}, warnings, nil
}
