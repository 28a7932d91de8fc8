// Package main is the entry point for the draftcommit CLI: a git commit
// wrapper that drafts the commit message from the staged diff.
package main

import (
	"fmt"
	"os"

	"github.com/draftcommit/draftcommit/internal/cmd"
	apperrors "github.com/draftcommit/draftcommit/internal/pkg/errors"
)

// Version information - set via ldflags during build
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := cmd.NewRootCmd(version, commit, date)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, apperrors.FormatError(err))
		os.Exit(apperrors.GetExitCode(err))
	}
}
