package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

// serverCommand is a stub: the Language Server Protocol transport isn't
// implemented. The flag surface still parses so scripts invoking
// `fortitude server --stdio` fail with a clear message instead of
// "unknown command".
func serverCommand() *cli.Command {
	return &cli.Command{
		Name:  "server",
		Usage: "Start the Language Server Protocol server (not implemented)",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "stdio",
				Usage: "Use stdin/stdout for communication (required)",
				Value: true,
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			if !cmd.Bool("stdio") {
				fmt.Fprintln(os.Stderr, "fortitude: only --stdio transport is supported")
				return cli.Exit("", ExitConfigError)
			}
			fmt.Fprintln(os.Stderr, "fortitude: server not implemented in this build")
			return cli.Exit("", ExitConfigError)
		},
	}
}
