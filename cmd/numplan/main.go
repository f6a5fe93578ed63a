package main

import (
	"fmt"
	"os"

	"github.com/numplan/numplan/internal/cli"
	"github.com/numplan/numplan/internal/cli/ui"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.SetVersion(version, commit, date)
	if err := cli.Execute(); err != nil {
		fmt.Fprint(os.Stderr, ui.FormatError(err.Error()))
		os.Exit(1)
	}
}
