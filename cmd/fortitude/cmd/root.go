// Package cmd wires fortitude's subcommands onto a urfave/cli/v3 app: the
// CLI parser, TTY/colour behaviour, and subcommand dispatch (C13).
package cmd

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/fortitude-sh/fortitude/internal/version"
)

// Exit codes shared across subcommands.
const (
	ExitSuccess     = 0
	ExitViolations  = 1
	ExitConfigError = 2
	ExitNoFiles     = 3
)

// NewApp builds the fortitude CLI application.
func NewApp() *cli.Command {
	return &cli.Command{
		Name:    "fortitude",
		Usage:   "A static analysis linter and autofixer for modern Fortran",
		Version: version.Version(),
		Description: `fortitude checks Fortran source files for correctness, style, and
modernisation issues, and can rewrite source in place to fix many of them.

Examples:
  fortitude check src/
  fortitude check --select=C,MOD --fix src/*.f90
  fortitude explain MOD001`,
		Commands: []*cli.Command{
			checkCommand(),
			explainCommand(),
			preprocessCommand(),
			formatCommand(),
			serverCommand(),
			versionCommand(),
		},
	}
}

// Execute runs the CLI application against os.Args.
func Execute() error {
	return NewApp().Run(context.Background(), os.Args)
}
