// Package cmd contains the CLI command definitions for draftcommit.
package cmd

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for the draftcommit CLI.
func NewRootCmd(version, commitHash, date string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "draftcommit",
		Short: "Draft git commit messages from your staged diff",
		Long: `draftcommit wraps git commit: it reads your staged diff, asks a
text-generation provider (Gemini or OpenAI) for a commit message, and
lets you review, edit, and confirm before the commit runs.

If the preferred provider fails, the other configured provider is tried
once; if both fail you can type the message yourself.`,
		Version: version,
		// Errors are formatted once in main with the right exit code.
		SilenceErrors: true,
		SilenceUsage:  true,
		// Running the bare binary is the same as running commit.
		RunE: func(cmd *cobra.Command, args []string) error {
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			yes, _ := cmd.Flags().GetBool("yes")
			output, _ := cmd.Flags().GetString("output")
			noCache, _ := cmd.Flags().GetBool("no-cache")

			flags := &CommitFlags{
				DryRun:     dryRun,
				Yes:        yes,
				OutputFile: output,
				NoCache:    noCache,
			}

			return runCommit(cmd, flags)
		},
	}

	rootCmd.SetVersionTemplate(`draftcommit {{.Version}}
Commit: ` + commitHash + `
Built:  ` + date + "\n")

	// Global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().String("config", "", "Config file path (default: ~/.draftcommit/config.yaml)")
	rootCmd.PersistentFlags().String("provider", "", "Preferred provider for this run (gemini, openai)")
	rootCmd.PersistentFlags().String("model", "", "Model to use for this run")

	// Commit flags on the root for the default action
	rootCmd.Flags().Bool("dry-run", false, "Generate message without committing")
	rootCmd.Flags().BoolP("yes", "y", false, "Skip interactive confirmation and commit immediately")
	rootCmd.Flags().StringP("output", "o", "", "Write generated message to file (implies --dry-run)")
	rootCmd.Flags().Bool("no-cache", false, "Bypass the message cache")

	rootCmd.AddCommand(NewCommitCmd())
	rootCmd.AddCommand(NewGenerateCmd())
	rootCmd.AddCommand(NewConfigCmd())
	rootCmd.AddCommand(NewHistoryCmd())

	return rootCmd
}
