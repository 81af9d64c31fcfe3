package directive_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortitude-sh/fortitude/internal/directive"
	"github.com/fortitude-sh/fortitude/internal/rules"
	"github.com/fortitude-sh/fortitude/internal/selector"

	_ "github.com/fortitude-sh/fortitude/internal/rulesimpl/meta"
	_ "github.com/fortitude-sh/fortitude/internal/rulesimpl/stable"
)

func reg(t *testing.T) *rules.Registry {
	t.Helper()
	return rules.DefaultRegistry()
}

func tableEnabling(t *testing.T, codes ...string) *selector.RuleTable {
	t.Helper()
	var sels []selector.Selector
	for _, c := range codes {
		sel, err := selector.Parse(reg(t), c)
		require.NoError(t, err)
		sels = append(sels, sel)
	}
	table, _, err := selector.Resolve(reg(t), selector.Options{Select: sels})
	require.NoError(t, err)
	return table
}

func allowComment(t *testing.T, code string, r rules.TextRange) directive.AllowComment {
	t.Helper()
	rule, _ := reg(t).GetByCode(code)
	return directive.AllowComment{Code: code, Rule: rule, Range: rules.NewTextRange(0, 100), Loc: r}
}

func TestCheckSuppressesCoveredDiagnostic(t *testing.T) {
	table := tableEnabling(t, "S002")
	d := rules.NewDiagnostic("S002", "line too long", rules.NewLocation("f.f90", rules.NewTextRange(10, 20)))
	comment := allowComment(t, "S002", rules.NewTextRange(0, 5))

	kept, suppressed := directive.Check("f.f90", []rules.Diagnostic{d}, []directive.AllowComment{comment}, table, reg(t))
	assert.Empty(t, kept)
	require.Len(t, suppressed, 1)
	assert.Equal(t, "S002", suppressed[0].RuleCode)
}

func TestCheckLeavesUncoveredDiagnosticAlone(t *testing.T) {
	table := tableEnabling(t, "S002", "FORT004")
	d := rules.NewDiagnostic("S002", "line too long", rules.NewLocation("f.f90", rules.NewTextRange(10, 20)))
	comment := allowComment(t, "S002", rules.NewTextRange(0, 5))
	comment.Range = rules.NewTextRange(200, 300) // does not cover d's range

	kept, suppressed := directive.Check("f.f90", []rules.Diagnostic{d}, []directive.AllowComment{comment}, table, reg(t))
	require.Len(t, kept, 2, "the original diagnostic plus an unused-allow-comment meta diagnostic")
	assert.Empty(t, suppressed)
}

func TestCheckUnusedAllowCommentReportsMeta(t *testing.T) {
	table := tableEnabling(t, "S002", "FORT004")
	comment := allowComment(t, "S002", rules.NewTextRange(0, 5))
	comment.Range = rules.NewTextRange(200, 300)

	kept, _ := directive.Check("f.f90", nil, []directive.AllowComment{comment}, table, reg(t))
	require.Len(t, kept, 1)
	assert.Equal(t, "FORT004", kept[0].RuleCode)
}

func TestCheckUnrecognisedCodeReportsMeta(t *testing.T) {
	table := tableEnabling(t, "S002", "FORT001")
	comment := directive.AllowComment{Code: "ZZZ999", Rule: nil, Range: rules.NewTextRange(0, 100), Loc: rules.NewTextRange(0, 5)}

	kept, _ := directive.Check("f.f90", nil, []directive.AllowComment{comment}, table, reg(t))
	require.Len(t, kept, 1)
	assert.Equal(t, "FORT001", kept[0].RuleCode)
}

func TestCheckDisabledRuleReportsMeta(t *testing.T) {
	table := tableEnabling(t, "C001", "FORT005") // S002 not enabled here
	comment := allowComment(t, "S002", rules.NewTextRange(0, 5))

	kept, _ := directive.Check("f.f90", nil, []directive.AllowComment{comment}, table, reg(t))
	require.Len(t, kept, 1)
	assert.Equal(t, "FORT005", kept[0].RuleCode)
}

func TestCheckDuplicateCommentReportsMetaOnce(t *testing.T) {
	table := tableEnabling(t, "S002", "FORT003")
	d := rules.NewDiagnostic("S002", "line too long", rules.NewLocation("f.f90", rules.NewTextRange(10, 20)))
	first := allowComment(t, "S002", rules.NewTextRange(0, 5))
	second := allowComment(t, "S002", rules.NewTextRange(6, 11))

	kept, suppressed := directive.Check("f.f90", []rules.Diagnostic{d}, []directive.AllowComment{first, second}, table, reg(t))
	require.Len(t, suppressed, 1)
	require.Len(t, kept, 1)
	assert.Equal(t, "FORT003", kept[0].RuleCode)
}

func TestCheckRedirectedCodeReportsMeta(t *testing.T) {
	table := tableEnabling(t, "MOD001", "FORT002")
	comment := directive.AllowComment{Code: "M001", Rule: nil, Range: rules.NewTextRange(0, 100), Loc: rules.NewTextRange(0, 5)}
	if r, ok := reg(t).Resolve("M001"); ok {
		comment.Rule = r
	}

	kept, _ := directive.Check("f.f90", nil, []directive.AllowComment{comment}, table, reg(t))
	var codes []string
	for _, d := range kept {
		codes = append(codes, d.RuleCode)
	}
	assert.Contains(t, codes, "FORT002")
}
