package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/draftcommit/draftcommit/internal/app"
	"github.com/draftcommit/draftcommit/internal/pkg/config"
	apperrors "github.com/draftcommit/draftcommit/internal/pkg/errors"
	"github.com/draftcommit/draftcommit/internal/pkg/git"
	"github.com/draftcommit/draftcommit/internal/pkg/history"
	"github.com/draftcommit/draftcommit/internal/pkg/processor"
	"github.com/draftcommit/draftcommit/internal/pkg/security"
	"github.com/draftcommit/draftcommit/internal/pkg/ui"
)

// CommitFlags holds the flags for the commit command.
type CommitFlags struct {
	DryRun     bool
	Yes        bool
	OutputFile string
	NoCache    bool
}

// NewCommitCmd creates the commit command.
func NewCommitCmd() *cobra.Command {
	flags := &CommitFlags{}

	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Generate a commit message and commit with it",
		Long: `Generate a commit message from your staged changes, then commit
with it after review.

The staged diff is sent to the preferred provider; on failure the
fallback provider is tried once, and when both fail you can enter the
message manually.

Examples:
  draftcommit commit              # Interactive commit
  draftcommit commit --yes        # Auto-accept generated message
  draftcommit commit --dry-run    # Generate without committing
  draftcommit commit -o msg.txt   # Save message to file`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommit(cmd, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.DryRun, "dry-run", false, "Generate message without committing")
	cmd.Flags().BoolVarP(&flags.Yes, "yes", "y", false, "Skip interactive confirmation and commit immediately")
	cmd.Flags().StringVarP(&flags.OutputFile, "output", "o", "", "Write generated message to file (implies --dry-run)")
	cmd.Flags().BoolVar(&flags.NoCache, "no-cache", false, "Bypass the message cache")

	return cmd
}

// runCommit executes the commit command logic.
func runCommit(cmd *cobra.Command, flags *CommitFlags) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	verbose, _ := cmd.Flags().GetBool("verbose")
	configPath, _ := cmd.Flags().GetString("config")
	providerOverride, _ := cmd.Flags().GetString("provider")
	modelOverride, _ := cmd.Flags().GetString("model")

	apperrors.SetVerbose(verbose)

	cfgMgr, err := config.NewManager(configPath)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrInvalidConfig, "failed to create config manager")
	}

	if configPath != "" {
		apperrors.Debug("Using custom config path: %s", configPath)
	}

	if !cfgMgr.ConfigExists() && !flags.Yes {
		if err := ui.RunInteractiveSetup(cfgMgr); err != nil {
			return fmt.Errorf("setup failed: %w", err)
		}
	}

	// Flag overrides go in before Load so flags outrank env and file.
	// They never persist.
	if providerOverride != "" {
		if providerOverride != config.ProviderGemini && providerOverride != config.ProviderOpenAI {
			return apperrors.New(apperrors.ErrInvalidArguments,
				fmt.Sprintf("unknown provider %q (expected gemini or openai)", providerOverride))
		}
		cfgMgr.SetOverride("providers.preferred", providerOverride)
		apperrors.Debug("Provider overridden via flag: %s", providerOverride)
	}
	if modelOverride != "" {
		// The override targets the provider that will run first; pair it
		// with --provider when the default preference is not in play.
		target := providerOverride
		if target == "" {
			target = config.ProviderGemini
		}
		if target == config.ProviderOpenAI {
			cfgMgr.SetOverride("providers.openai_model", modelOverride)
		} else {
			cfgMgr.SetOverride("providers.gemini_model", modelOverride)
		}
		apperrors.Debug("Model overridden via flag: %s", modelOverride)
	}

	cfg, err := cfgMgr.Load()
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrInvalidConfig, "failed to load config")
	}

	if flags.OutputFile != "" {
		flags.DryRun = true
	}

	if !cfg.Security.WarningAcknowledged {
		if err := showSecurityWarning(cfgMgr, flags.Yes); err != nil {
			return err
		}
	}

	if verbose {
		apperrors.Info("Preferred provider: %s", preferredOrDefault(cfg))
		if cfg.Providers.GeminiAPIKey != "" {
			apperrors.Info("Gemini key (config): %s", security.MaskAPIKey(cfg.Providers.GeminiAPIKey))
		}
		if cfg.Providers.OpenAIAPIKey != "" {
			apperrors.Info("OpenAI key (config): %s", security.MaskAPIKey(cfg.Providers.OpenAIAPIKey))
		}
		if flags.DryRun {
			apperrors.Info("Dry-run mode enabled")
		}
	}

	workDir, err := os.Getwd()
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrFileSystemError, "failed to determine working directory")
	}

	gitClient := git.NewClient()
	msgProcessor := processor.NewProcessor()

	var uiMgr ui.Manager
	if flags.Yes {
		uiMgr = ui.NewNonInteractiveManager()
	} else {
		uiMgr = ui.NewDefaultManager(cfg.UI.ColorEnabled, cfg.UI.Editor)
	}

	var historyMgr history.Manager
	if cfg.History.Enabled {
		historyMgr = history.NewFileManager(cfg.History.FilePath, cfg.History.MaxEntries)
	}

	service := app.NewCommitService(
		gitClient,
		msgProcessor,
		uiMgr,
		historyMgr,
		cfg,
		workDir,
	)

	opts := &app.CommitOptions{
		DryRun:     flags.DryRun,
		OutputFile: flags.OutputFile,
		NoCache:    flags.NoCache,
	}

	return service.GenerateAndCommit(ctx, opts)
}

// preferredOrDefault returns the configured preference, defaulting to
// Gemini.
func preferredOrDefault(cfg *config.Config) string {
	if cfg != nil && cfg.Providers.Preferred != "" {
		return cfg.Providers.Preferred
	}
	return config.ProviderGemini
}

// showSecurityWarning displays the first-use warning and records the
// acknowledgment.
func showSecurityWarning(cfgMgr *config.ViperManager, autoAccept bool) error {
	fmt.Print(security.FirstUseWarning)

	if autoAccept {
		fmt.Println("Auto-acknowledging security warning (--yes flag)")
	} else {
		fmt.Print("Do you understand and wish to continue? [y/N]: ")
		reader := bufio.NewReader(os.Stdin)
		response, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}

		response = strings.TrimSpace(strings.ToLower(response))
		if response != "y" && response != "yes" {
			return apperrors.NewUserAbortedError()
		}
	}

	if err := cfgMgr.AcknowledgeSecurityWarning(); err != nil {
		apperrors.Warn("Failed to save security acknowledgment: %v", err)
	}

	fmt.Println(security.FirstUseAcknowledgment)
	fmt.Println()

	return nil
}
