// Package app contains the application layer orchestrating the commit
// workflow.
package app

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/draftcommit/draftcommit/internal/pkg/ai"
	"github.com/draftcommit/draftcommit/internal/pkg/cache"
	"github.com/draftcommit/draftcommit/internal/pkg/config"
	apperrors "github.com/draftcommit/draftcommit/internal/pkg/errors"
	"github.com/draftcommit/draftcommit/internal/pkg/git"
	"github.com/draftcommit/draftcommit/internal/pkg/history"
	"github.com/draftcommit/draftcommit/internal/pkg/processor"
	"github.com/draftcommit/draftcommit/internal/pkg/ui"
)

// writeFile is a variable to allow mocking in tests.
var writeFile = os.WriteFile

// CommitOptions contains options for the commit workflow.
type CommitOptions struct {
	DryRun       bool
	OutputFile   string
	CustomPrompt string
	NoCache      bool
}

// generator abstracts the provider chain so tests can run the workflow
// without the network.
type generator interface {
	Generate(ctx context.Context, req *ai.GenerateRequest) (*ai.ChainResult, error)
}

// CommitService orchestrates the commit message generation workflow.
//
// The pipeline is strictly ordered: staged diff first, credentials
// second, providers third, post-processing fourth, and the commit runs
// exactly once at the very end. An empty staging area stops the run
// before any credential lookup or network traffic.
type CommitService struct {
	gitClient    git.Client
	msgProcessor processor.MessageProcessor
	uiManager    ui.Manager
	historyMgr   history.Manager
	config       *config.Config
	cache        cache.Manager
	workDir      string

	// Replaceable seams for tests.
	resolve    func(cfg *config.Config, workDir string) (*config.Resolution, error)
	buildChain func(res *config.Resolution) (generator, error)
}

// NewCommitService creates a new CommitService with the given dependencies.
func NewCommitService(
	gitClient git.Client,
	msgProcessor processor.MessageProcessor,
	uiManager ui.Manager,
	historyMgr history.Manager,
	cfg *config.Config,
	workDir string,
) *CommitService {
	var cacheManager cache.Manager
	if cfg != nil && cfg.Cache.Enabled {
		ttl := time.Duration(cfg.Cache.TTLMinutes) * time.Minute
		if ttl <= 0 {
			ttl = cache.DefaultTTL
		}
		maxEntries := cfg.Cache.MaxEntries
		if maxEntries <= 0 {
			maxEntries = cache.DefaultMaxEntries
		}
		cacheManager = cache.NewMessageCache(maxEntries, ttl)
	}

	s := &CommitService{
		gitClient:    gitClient,
		msgProcessor: msgProcessor,
		uiManager:    uiManager,
		historyMgr:   historyMgr,
		config:       cfg,
		cache:        cacheManager,
		workDir:      workDir,
	}

	s.resolve = config.Resolve
	s.buildChain = func(res *config.Resolution) (generator, error) {
		providers := config.ProvidersConfig{}
		if cfg != nil {
			providers = cfg.Providers
		}
		chain, err := ai.NewChainFromResolution(res, providers)
		if err != nil {
			return nil, err
		}
		chain.SetPostProcessor(msgProcessor.Process)
		return chain, nil
	}

	return s
}

// GenerateAndCommit runs the complete workflow: check staged changes,
// resolve credentials, generate, post-process, confirm, commit.
func (s *CommitService) GenerateAndCommit(ctx context.Context, opts *CommitOptions) error {
	if opts == nil {
		opts = &CommitOptions{}
	}

	// Step 1: Staged changes, before anything that could touch the
	// network or prompt for credentials.
	hasChanges, err := s.gitClient.HasStagedChanges(ctx)
	if err != nil {
		return err
	}
	if !hasChanges {
		return apperrors.NewEmptyDiffError()
	}

	spinner := s.uiManager.ShowSpinner("Collecting staged changes...")
	spinner.Start()
	diff, err := s.gitClient.StagedDiff(ctx)
	spinner.Stop()
	if err != nil {
		return err
	}

	// Step 2: Credentials. A missing key fails here, not mid-request.
	res, err := s.resolve(s.config, s.workDir)
	if err != nil {
		return err
	}

	// Step 3: Generate, via cache when the same staging was already
	// drafted this session.
	message, source, provider, err := s.generateMessage(ctx, opts, diff, res)
	if err != nil {
		return err
	}

	// Step 4: Display and confirm.
	if err := s.uiManager.DisplayMessage(message); err != nil {
		return err
	}

	action, err := s.uiManager.PromptAction()
	if err != nil {
		return err
	}

	switch action {
	case ui.ActionAccept:
		return s.handleAccept(ctx, opts, message, source, provider, diff)

	case ui.ActionEdit:
		edited, err := s.uiManager.EditMessage(message)
		if err != nil {
			return err
		}
		if strings.TrimSpace(edited) == "" {
			return apperrors.NewUserAbortedError()
		}
		return s.handleAccept(ctx, opts, edited, history.SourceManual, provider, diff)

	default:
		return apperrors.NewUserAbortedError()
	}
}

// generateMessage produces the commit message text via cache, the
// provider chain, or manual entry. It returns the message, its history
// source, and the provider that produced it (empty for manual entry).
func (s *CommitService) generateMessage(
	ctx context.Context,
	opts *CommitOptions,
	diff *git.Diff,
	res *config.Resolution,
) (string, string, string, error) {
	model := ""
	if s.config != nil {
		model = ai.ModelFor(res.Provider, s.config.Providers)
	}

	cacheKey := ""
	if s.cache != nil && !opts.NoCache && opts.CustomPrompt == "" {
		cacheKey = cache.GenerateKey(diff.Content, res.Provider, model)
		if cached, ok := s.cache.Get(cacheKey); ok {
			return cached.Text, sourceFor(cached.Provider, res.Provider), cached.Provider, nil
		}
	}

	chain, err := s.buildChain(res)
	if err != nil {
		return "", "", "", err
	}

	spinner := s.uiManager.ShowSpinner(fmt.Sprintf("Drafting commit message via %s...", res.Provider))
	spinner.Start()
	result, err := chain.Generate(ctx, &ai.GenerateRequest{
		Diff:         diff,
		CustomPrompt: opts.CustomPrompt,
	})
	spinner.Stop()
	if err != nil {
		return "", "", "", err
	}

	if result.Manual {
		for _, attempt := range result.Attempts {
			s.uiManager.ShowError(fmt.Errorf("%s: %w", attempt.Provider, attempt.Err))
		}
		message, err := s.uiManager.ManualEntry("All providers failed. Enter the commit message yourself.")
		if err != nil {
			return "", "", "", err
		}
		return message, history.SourceManual, "", nil
	}

	if s.cache != nil && cacheKey != "" {
		s.cache.Set(cacheKey, cache.Message{
			Text:     result.Response.Text,
			Provider: result.Response.Provider,
		}, 0)
	}

	return result.Response.Text, sourceFor(result.Response.Provider, res.Provider), result.Response.Provider, nil
}

// sourceFor classifies a message by which provider produced it.
func sourceFor(producer, preferred string) string {
	if producer == preferred {
		return history.SourceGenerated
	}
	return history.SourceFallback
}

// handleAccept commits or writes the message, depending on options.
// This is the only place Commit is called. History is recorded after
// the commit succeeds, so a failed commit never leaves an entry
// claiming otherwise.
func (s *CommitService) handleAccept(
	ctx context.Context,
	opts *CommitOptions,
	message string,
	source string,
	provider string,
	diff *git.Diff,
) error {
	if opts.DryRun {
		s.recordHistory(opts, message, source, provider, diff)
		if opts.OutputFile != "" {
			return s.writeToFile(opts.OutputFile, message)
		}
		s.uiManager.ShowSuccess("Dry-run complete - message generated but not committed")
		return nil
	}

	spinner := s.uiManager.ShowSpinner("Committing changes...")
	spinner.Start()
	err := s.gitClient.Commit(ctx, message)
	spinner.Stop()

	if err != nil {
		return err
	}

	s.recordHistory(opts, message, source, provider, diff)

	s.uiManager.ShowSuccess("Successfully committed!")
	return nil
}

// recordHistory saves the message best effort; it never blocks the run.
func (s *CommitService) recordHistory(opts *CommitOptions, message, source, provider string, diff *git.Diff) {
	if s.historyMgr == nil || s.config == nil || !s.config.History.Enabled {
		return
	}

	entry := &history.Entry{
		Message:   message,
		Provider:  provider,
		Source:    source,
		DiffFiles: diff.Stats.TotalFiles,
		Committed: !opts.DryRun,
	}
	if provider != "" {
		entry.Model = ai.ModelFor(provider, s.config.Providers)
	}
	if err := s.historyMgr.Save(entry); err != nil {
		s.uiManager.ShowError(fmt.Errorf("warning: failed to save to history: %w", err))
	}
}

// writeToFile writes the commit message to a file.
func (s *CommitService) writeToFile(filePath, content string) error {
	if err := writeFile(filePath, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write to file %s: %w", filePath, err)
	}

	s.uiManager.ShowSuccess(fmt.Sprintf("Message written to %s", filePath))
	return nil
}
