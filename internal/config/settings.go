package config

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/fortitude-sh/fortitude/internal/rules"
	"github.com/fortitude-sh/fortitude/internal/selector"
)

// Settings is the fully resolved, run-ready view of a Configuration: a
// compiled RuleTable, compiled per-file ignore patterns, and the scalar
// knobs rule bodies read through the rules.Context interface. *Settings
// satisfies rules.Context structurally, so internal/rules never imports
// this package.
type Settings struct {
	cfg          *Configuration
	table        *selector.RuleTable
	perFileIgnore []compiledIgnore
	ruleOptions  map[string]map[string]any
}

type compiledIgnore struct {
	pattern string
	codes   map[string]bool
}

// Resolve builds Settings from a Configuration and the registry of known
// rules, parsing every selector string and running spec's select/ignore
// resolution algorithm.
func Resolve(cfg *Configuration, reg *rules.Registry) (*Settings, []selector.Warning, error) {
	parse := func(codes []string) ([]selector.Selector, error) {
		out := make([]selector.Selector, 0, len(codes))
		for _, c := range codes {
			sel, err := selector.Parse(reg, c)
			if err != nil {
				return nil, err
			}
			out = append(out, sel)
		}
		return out, nil
	}

	sel, err := parse(cfg.Check.Select)
	if err != nil {
		return nil, nil, err
	}
	ext, err := parse(cfg.Check.ExtendSelect)
	if err != nil {
		return nil, nil, err
	}
	ign, err := parse(cfg.Check.Ignore)
	if err != nil {
		return nil, nil, err
	}

	table, warnings, err := selector.Resolve(reg, selector.Options{
		Select:          sel,
		ExtendSelect:    ext,
		Ignore:          ign,
		Preview:         cfg.Preview,
		ExplicitPreview: cfg.Check.ExplicitPreview,
	})
	if err != nil {
		return nil, warnings, err
	}

	var perFile []compiledIgnore
	for pattern, codeStrs := range cfg.Check.PerFileIgnores {
		if !doublestar.ValidatePattern(pattern) {
			return nil, warnings, fmt.Errorf("config: invalid per-file-ignores pattern %q", pattern)
		}
		codes := map[string]bool{}
		for _, c := range codeStrs {
			codeSel, err := selector.Parse(reg, c)
			if err != nil {
				return nil, warnings, err
			}
			for _, r := range matchRules(reg, codeSel) {
				codes[r.Metadata().Code()] = true
			}
		}
		perFile = append(perFile, compiledIgnore{pattern: pattern, codes: codes})
	}

	ruleOptions := flattenRuleOptions(cfg.Rules)

	return &Settings{cfg: cfg, table: table, perFileIgnore: perFile, ruleOptions: ruleOptions}, warnings, nil
}

// flattenRuleOptions reads the [rules.<CODE>] tables from the config file
// into a flat code -> options map. Each top-level key under "rules" is
// already a rule code (e.g. "MOD014"), so no namespace indirection is
// required.
func flattenRuleOptions(raw map[string]map[string]any) map[string]map[string]any {
	out := make(map[string]map[string]any, len(raw))
	for code, opts := range raw {
		out[code] = opts
	}
	return out
}

func matchRules(reg *rules.Registry, sel selector.Selector) []rules.Rule {
	switch sel.Kind {
	case selector.KindAll:
		return reg.All()
	case selector.KindCategory:
		return reg.ByCategory(sel.Category)
	default:
		var out []rules.Rule
		for _, r := range reg.ByCategory(sel.Category) {
			if len(sel.Code) <= len(r.Metadata().Suffix) && r.Metadata().Suffix[:len(sel.Code)] == sel.Code {
				out = append(out, r)
			}
		}
		return out
	}
}

// Preview implements rules.Context.
func (s *Settings) Preview() bool { return s.cfg.Preview }

// LineLength implements rules.Context.
func (s *Settings) LineLength() int { return s.cfg.LineLength }

// TargetStandard implements rules.Context.
func (s *Settings) TargetStandard() string { return s.cfg.TargetStandard }

// RuleOptions implements rules.Context.
func (s *Settings) RuleOptions(ruleCode string) map[string]any {
	return s.ruleOptions[ruleCode]
}

// RuleTable returns the resolved selection: which rules are enabled.
func (s *Settings) RuleTable() *selector.RuleTable { return s.table }

// Fix reports whether --fix (or check.fix) was requested for this run.
func (s *Settings) Fix() bool { return s.cfg.Check.Fix }

// FixUnsafe reports whether unsafe fixes may also be applied.
func (s *Settings) FixUnsafe() bool { return s.cfg.Check.FixUnsafe }

// RespectGitignore reports whether file discovery should skip
// gitignore-matched paths.
func (s *Settings) RespectGitignore() bool { return s.cfg.RespectGitignore }

// Exclude returns the configured exclude and extend-exclude glob patterns,
// combined.
func (s *Settings) Exclude() []string {
	out := make([]string, 0, len(s.cfg.Exclude)+len(s.cfg.ExtendExclude))
	out = append(out, s.cfg.Exclude...)
	out = append(out, s.cfg.ExtendExclude...)
	return out
}

// OutputFormat returns the configured reporter format name.
func (s *Settings) OutputFormat() string { return s.cfg.Output.Format }

// OutputPath returns the configured output destination ("stdout", "stderr",
// or a file path).
func (s *Settings) OutputPath() string { return s.cfg.Output.Path }

// ShowSource reports whether text-format reports should include source
// snippets.
func (s *Settings) ShowSource() bool { return s.cfg.Output.ShowSource }

// LoggingLevel returns the configured logrus level name.
func (s *Settings) LoggingLevel() string { return s.cfg.Logging.Level }

// IsRuleIgnoredForPath reports whether path matches a per-file-ignores
// pattern naming code.
func (s *Settings) IsRuleIgnoredForPath(path, code string) bool {
	for _, ig := range s.perFileIgnore {
		if !ig.codes[code] {
			continue
		}
		if ok, _ := doublestar.Match(ig.pattern, path); ok {
			return true
		}
	}
	return false
}

// EnabledRules returns the sorted set of enabled rule codes for this run.
func (s *Settings) EnabledRules() []string { return s.table.Codes() }

// RuleEnabled reports whether code is enabled, independent of any
// per-file-ignore (callers check IsRuleIgnoredForPath separately once a
// path is known).
func (s *Settings) RuleEnabled(code string) bool { return s.table.Enabled(code) }
