// Command sigil plays, checks and replays sigil levels.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/sigil/internal/cli"
)

func main() {
	root := cli.NewRootCommand(newWindowCommand)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
