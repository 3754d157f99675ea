// iris - command line client for the IRIS platform
//
// Every command maps onto one SDK call from pkg/iris:
// 1. Resolves credentials (flags, then IRIS_* env, then the credential file)
// 2. Calls the API, retrying transient failures on reads
// 3. Prints a table, or JSON with --json
//
// Ctrl-C cancels in-flight requests and workflow polling.
package main

import (
	"fmt"
	"os"

	"github.com/iris-platform/iris-go/internal/commands"
)

// Version information (set by goreleaser)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)

	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error: "+commands.FormatError(err))
		os.Exit(1)
	}
}
