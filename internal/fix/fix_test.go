package fix_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortitude-sh/fortitude/internal/fix"
	"github.com/fortitude-sh/fortitude/internal/rules"
)

func diagWithSafeFix(code, title string, r rules.TextRange, newText string) rules.Diagnostic {
	d := rules.NewDiagnostic(code, code+" message", rules.NewLocation("f.f90", r))
	f := rules.SafeFix(title, rules.ReplaceEdit(r, newText))
	return d.WithFix(f)
}

func TestRunGenerateModeNeverMutates(t *testing.T) {
	source := []byte("double precision x\n")
	d := diagWithSafeFix("MOD001", "use real64", rules.NewTextRange(0, len("double precision")), "real(real64)")

	res := fix.Run(source, []rules.Diagnostic{d}, fix.ModeGenerate, false, nil)
	assert.Equal(t, source, res.TransformedText)
	assert.Len(t, res.Applied, 1, "ModeGenerate still computes what would apply")
}

func TestRunApplyModeAppliesSafeFix(t *testing.T) {
	source := []byte("double precision x\n")
	d := diagWithSafeFix("MOD001", "use real64", rules.NewTextRange(0, len("double precision")), "real(real64)")

	res := fix.Run(source, []rules.Diagnostic{d}, fix.ModeApply, false, func(c []byte) []rules.Diagnostic { return nil })
	assert.Equal(t, "real(real64) x\n", string(res.TransformedText))
	assert.Len(t, res.Applied, 1)
	assert.Empty(t, res.Residual)
}

func TestRunApplyModeSkipsUnsafeWithoutOptIn(t *testing.T) {
	source := []byte("pause\n")
	r := rules.NewTextRange(0, len("pause"))
	d := rules.NewDiagnostic("OB001", "pause statement", rules.NewLocation("f.f90", r)).
		WithFix(rules.UnsafeFix("replace with read", rules.ReplaceEdit(r, "read(*, *)")))

	res := fix.Run(source, []rules.Diagnostic{d}, fix.ModeApply, false, func(c []byte) []rules.Diagnostic { return nil })
	assert.Equal(t, source, res.TransformedText)
	assert.Empty(t, res.Applied)
	require.Len(t, res.Residual, 1)
	assert.Equal(t, "OB001", res.Residual[0].RuleCode)
}

func TestRunApplyModeAppliesUnsafeWhenAllowed(t *testing.T) {
	source := []byte("pause\n")
	r := rules.NewTextRange(0, len("pause"))
	d := rules.NewDiagnostic("OB001", "pause statement", rules.NewLocation("f.f90", r)).
		WithFix(rules.UnsafeFix("replace with read", rules.ReplaceEdit(r, "read(*, *)")))

	res := fix.Run(source, []rules.Diagnostic{d}, fix.ModeApply, true, func(c []byte) []rules.Diagnostic { return nil })
	assert.Equal(t, "read(*, *)\n", string(res.TransformedText))
	assert.Len(t, res.Applied, 1)
}

func TestRunConflictingFixesKeepFirstByOffsetThenCode(t *testing.T) {
	source := []byte("xxxxxxxxxx\n")
	overlap := rules.NewTextRange(0, 5)
	first := rules.NewDiagnostic("A001", "a", rules.NewLocation("f.f90", overlap)).
		WithFix(rules.SafeFix("a fix", rules.ReplaceEdit(overlap, "AAAAA")))
	second := rules.NewDiagnostic("B001", "b", rules.NewLocation("f.f90", overlap)).
		WithFix(rules.SafeFix("b fix", rules.ReplaceEdit(overlap, "BBBBB")))

	res := fix.Run(source, []rules.Diagnostic{second, first}, fix.ModeGenerate, false, nil)
	require.Len(t, res.Applied, 1)
	assert.Equal(t, "A001", res.Applied[0].RuleCode)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, fix.SkipConflict, res.Skipped[0].Reason)
	assert.Equal(t, "B001", res.Skipped[0].Diagnostic.RuleCode)

	require.Len(t, res.Residual, 1)
	assert.Equal(t, "B001", res.Residual[0].RuleCode, "residual keeps the skipped fix's own diagnostic")
	assert.Equal(t, "b", res.Residual[0].Message, "residual keeps the original message, not a synthesized shell")
	assert.Contains(t, res.Residual[0].Detail, "conflicts with another fix")
	require.NotNil(t, res.Residual[0].Fix, "residual keeps the unapplied fix for display")
}

func TestRunDisplayOnlyFixNeverApplied(t *testing.T) {
	source := []byte("x\n")
	r := rules.NewTextRange(0, 1)
	d := rules.NewDiagnostic("P001", "precision note", rules.NewLocation("f.f90", r)).
		WithFix(rules.DisplayFix("informational", rules.ReplaceEdit(r, "y")))

	res := fix.Run(source, []rules.Diagnostic{d}, fix.ModeApply, true, func(c []byte) []rules.Diagnostic { return nil })
	assert.Equal(t, source, res.TransformedText)
	assert.Empty(t, res.Applied)
	require.Len(t, res.Residual, 1)
	assert.Equal(t, "P001", res.Residual[0].RuleCode)
}

func TestRunApplyModeConvergesAcrossPasses(t *testing.T) {
	source := []byte("aa\n")
	calls := 0
	reanalyze := func(c []byte) []rules.Diagnostic {
		calls++
		if string(c) == "ab\n" {
			r := rules.NewTextRange(1, 2)
			return []rules.Diagnostic{
				rules.NewDiagnostic("X002", "x2", rules.NewLocation("f.f90", r)).
					WithFix(rules.SafeFix("fix b", rules.ReplaceEdit(r, "c"))),
			}
		}
		return nil
	}

	// Seed pass 1 with a fix that turns "aa\n" into "ab\n" so pass 2's
	// reanalyze reports the next fix; this exercises the convergence loop
	// re-invoking reanalyze until no further fix applies.
	seed := rules.NewDiagnostic("X000", "seed", rules.NewLocation("f.f90", rules.NewTextRange(1, 2))).
		WithFix(rules.SafeFix("seed fix", rules.ReplaceEdit(rules.NewTextRange(1, 2), "b")))

	res := fix.Run(source, []rules.Diagnostic{seed}, fix.ModeApply, false, reanalyze)
	assert.Equal(t, "ac\n", string(res.TransformedText))
	assert.GreaterOrEqual(t, res.Passes, 2)
	assert.GreaterOrEqual(t, calls, 1)
}
