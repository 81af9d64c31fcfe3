// Command fortitude is a static analysis linter and autofixer for modern
// Fortran source code.
package main

import (
	"fmt"
	"os"

	"github.com/fortitude-sh/fortitude/cmd/fortitude/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
