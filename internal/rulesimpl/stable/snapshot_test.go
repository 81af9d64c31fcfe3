package stable

import (
	"os"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"

	"github.com/fortitude-sh/fortitude/internal/rules"
)

// TestMain runs go-snaps' cleanup pass after the package's tests finish,
// removing any snapshot entry no test referenced this run.
func TestMain(m *testing.M) {
	v := m.Run()
	snaps.Clean(m)
	os.Exit(v)
}

func TestStableRuleMetadataSnapshots(t *testing.T) {
	for _, rule := range []rules.Rule{
		moduleMissingImplicitNone{},
		missingIntent{},
		doublePrecision{},
		pauseStatement{},
		elseClauseMissingSpace{},
		lineTooLong{},
	} {
		rule := rule
		t.Run(rule.Metadata().Code(), func(t *testing.T) {
			snaps.MatchStandaloneJSON(t, rule.Metadata())
		})
	}
}
