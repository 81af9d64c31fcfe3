package stable

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortitude-sh/fortitude/internal/rules"
	"github.com/fortitude-sh/fortitude/internal/sourcemap"
)

// fixedContext is a minimal rules.Context for exercising TextRule bodies
// without pulling in the config package.
type fixedContext struct {
	lineLength int
}

func (c fixedContext) Preview() bool                             { return false }
func (c fixedContext) LineLength() int                           { return c.lineLength }
func (c fixedContext) TargetStandard() string                    { return "f2018" }
func (c fixedContext) RuleOptions(ruleCode string) map[string]any { return nil }

func TestStableRulesRegisterWithUniqueCodes(t *testing.T) {
	seen := make(map[string]bool)
	for _, rule := range []rules.Rule{
		moduleMissingImplicitNone{},
		missingIntent{},
		doublePrecision{},
		pauseStatement{},
		elseClauseMissingSpace{},
		lineTooLong{},
	} {
		code := rule.Metadata().Code()
		assert.False(t, seen[code], "duplicate code %s", code)
		seen[code] = true
		assert.NotEmpty(t, rule.Metadata().Category.Prefix())
	}
}

func TestM001RedirectsToMOD001(t *testing.T) {
	target, ok := rules.DefaultRegistry().Redirect("M001")
	require.True(t, ok)
	assert.Equal(t, "MOD001", target)

	rule, ok := rules.DefaultRegistry().GetByCode("M001")
	require.True(t, ok)
	assert.Equal(t, "MOD001", rule.Metadata().Code())
}

func TestLineTooLongFlagsOverlimitLines(t *testing.T) {
	longLine := strings.Repeat("x", 90)
	source := []byte("short\n" + longLine + "\nshort\n")
	sm := sourcemap.New(source)
	ctx := fixedContext{lineLength: 80}

	diags := lineTooLong{}.CheckText(ctx, "p.f90", sm)
	require.Len(t, diags, 1)
	assert.Equal(t, "S002", diags[0].RuleCode)
	assert.Equal(t, sm.LineStart(1)+80, diags[0].Location.Range.Start)
}

func TestLineTooLongRespectsDisabledLimit(t *testing.T) {
	sm := sourcemap.New([]byte("whatever, however long, does not matter here\n"))
	ctx := fixedContext{lineLength: 0}
	assert.Nil(t, lineTooLong{}.CheckText(ctx, "p.f90", sm))
}

