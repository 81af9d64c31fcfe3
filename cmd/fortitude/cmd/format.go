package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

// formatCommand is a preview stub for source reformatting: the command
// surface exists so `fortitude.toml`'s eventual [format] table and CI
// pipelines invoking it fail predictably, but no rewrite runs.
func formatCommand() *cli.Command {
	return &cli.Command{
		Name:      "format",
		Usage:     "Format Fortran source (preview, not implemented)",
		ArgsUsage: "[FILE...]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "check",
				Usage: "Exit non-zero if any file would be reformatted (accepted, not implemented)",
			},
		},
		Action: func(_ context.Context, _ *cli.Command) error {
			fmt.Fprintln(os.Stderr, "fortitude: format is a preview stub and is not implemented in this build")
			return cli.Exit("", ExitConfigError)
		},
	}
}
