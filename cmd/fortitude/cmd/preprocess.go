package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

// preprocessCommand is a stub surface for the fixed-form-to-free-form/
// cpp-style macro preprocessor: it accepts the expected flags, but runs no
// macro expansion and reads no [preprocess] table from fortitude.toml.
func preprocessCommand() *cli.Command {
	return &cli.Command{
		Name:      "preprocess",
		Usage:     "Run the Fortran preprocessor over input (not implemented)",
		ArgsUsage: "[FILE...]",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "define",
				Usage: "Preprocessor macro definition NAME=VALUE (accepted, not expanded)",
			},
			&cli.StringSliceFlag{
				Name:  "include",
				Usage: "Additional include search directory (accepted, not expanded)",
			},
		},
		Action: func(_ context.Context, _ *cli.Command) error {
			fmt.Fprintln(os.Stderr, "fortitude: preprocessing not implemented in this build")
			return cli.Exit("", ExitConfigError)
		},
	}
}
