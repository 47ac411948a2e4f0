// cmd/blockundo/main.go
package main

import (
	"fmt"
	"os"

	"github.com/bethropolis/blockundo/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
