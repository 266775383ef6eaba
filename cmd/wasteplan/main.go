// Command wasteplan is the waste-stream planning and diversion CLI.
package main

import (
	"errors"
	"os"

	"github.com/reclaimops/wasteplan/internal/cli"
	"github.com/reclaimops/wasteplan/pkg/version"
)

func main() {
	os.Exit(run())
}

// run executes the root command and maps its error to a process exit
// code. Diversion-target violations carry their own code; every other
// error exits 1.
func run() int {
	rootCmd := cli.NewRootCmd(version.GetVersion())
	err := rootCmd.Execute()
	return extractDiversionExitCode(err)
}

// extractDiversionExitCode returns the exit code for err: 0 for nil,
// the embedded code for a DiversionExitError (including wrapped ones),
// and 1 for anything else.
func extractDiversionExitCode(err error) int {
	if err == nil {
		return 0
	}

	var exitErr *cli.DiversionExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode
	}

	return 1
}
