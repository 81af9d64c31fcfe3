package cmd

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/fortitude-sh/fortitude/internal/driver"
	"github.com/fortitude-sh/fortitude/internal/rules"
)

func runExitCodeCase(t *testing.T, args []string, result driver.CheckResult, anyFixed bool) int {
	t.Helper()
	var got int
	cmd := &cli.Command{
		Name: "check",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "exit-zero"},
			&cli.BoolFlag{Name: "exit-non-zero-on-fix"},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			got = determineExitCode(cmd, result, anyFixed)
			return nil
		},
	}
	require.NoError(t, cmd.Run(context.Background(), append([]string{"check"}, args...)))
	return got
}

func TestDetermineExitCodeCleanRunIsSuccess(t *testing.T) {
	code := runExitCodeCase(t, nil, driver.CheckResult{}, false)
	assert.Equal(t, ExitSuccess, code)
}

func TestDetermineExitCodeDiagnosticsAreViolations(t *testing.T) {
	result := driver.CheckResult{Diagnostics: []rules.Diagnostic{
		rules.NewDiagnostic("S002", "line too long", rules.NewLocation("f.f90", rules.PointRange(0))),
	}}
	code := runExitCodeCase(t, nil, result, false)
	assert.Equal(t, ExitViolations, code)
}

func TestDetermineExitCodeExitZeroOverridesDiagnostics(t *testing.T) {
	result := driver.CheckResult{Diagnostics: []rules.Diagnostic{
		rules.NewDiagnostic("S002", "line too long", rules.NewLocation("f.f90", rules.PointRange(0))),
	}}
	code := runExitCodeCase(t, []string{"--exit-zero"}, result, false)
	assert.Equal(t, ExitSuccess, code)
}

func TestDetermineExitCodeExitNonZeroOnFix(t *testing.T) {
	code := runExitCodeCase(t, []string{"--exit-non-zero-on-fix"}, driver.CheckResult{}, true)
	assert.Equal(t, ExitViolations, code)
}

func TestDetermineExitCodeExitNonZeroOnFixRequiresAFix(t *testing.T) {
	code := runExitCodeCase(t, []string{"--exit-non-zero-on-fix"}, driver.CheckResult{}, false)
	assert.Equal(t, ExitSuccess, code)
}

func TestBuildOverridesCapturesSetFlagsOnly(t *testing.T) {
	cmd := &cli.Command{
		Name: "check",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "line-length"},
			&cli.StringFlag{Name: "target-standard"},
			&cli.StringSliceFlag{Name: "select"},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			ov := buildOverrides(cmd)
			assert.Equal(t, []string{"S002"}, ov.Select)
			require.NotNil(t, ov.LineLength)
			assert.Equal(t, 100, *ov.LineLength)
			assert.Equal(t, "", ov.TargetStandard, "unset flag leaves the override zero-valued")
			return nil
		},
	}
	require.NoError(t, cmd.Run(context.Background(), []string{"check", "--select", "S002", "--line-length", "100"}))
}
