// Package main is the entry point for the tokenwarehouse CLI.
package main

import (
	"errors"
	"os"

	"github.com/poutila/tokenwarehouse/internal/cli"
	"github.com/poutila/tokenwarehouse/internal/logging"
)

// Build-time variables set by GoReleaser via ldflags.
//
//nolint:gochecknoglobals // Version variables must be package-level for ldflags injection
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	info := cli.BuildInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	}

	rootCmd := cli.NewRootCommand(info)

	err := rootCmd.Execute()
	if err != nil && !errors.Is(err, cli.ErrExtractionIssues) {
		// Extraction issues are already reported; everything else is not.
		logging.Default().Error("command failed", logging.FieldError, err)
	}

	return cli.ExitCodeFromError(err)
}
