// Package git provides the staged-diff and commit operations for draftcommit.
package git

import (
	"bufio"
	"bytes"
	"context"
	"os/exec"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/draftcommit/draftcommit/internal/pkg/errors"
)

const (
	// CommandTimeout is the default timeout for git commands.
	CommandTimeout = 10 * time.Second
)

// Diff holds the staged changes of one invocation. The content is captured
// once and never mutated afterwards.
type Diff struct {
	Content string
	Stats   Stats
}

// Stats contains per-invocation diff statistics from git diff --numstat.
type Stats struct {
	TotalFiles     int
	TotalAdditions int
	TotalDeletions int
	BinaryFiles    int
}

// IsEmpty reports whether the diff carries no content.
func (d *Diff) IsEmpty() bool {
	return strings.TrimSpace(d.Content) == ""
}

// Client defines the interface for git operations.
type Client interface {
	HasStagedChanges(ctx context.Context) (bool, error)
	StagedDiff(ctx context.Context) (*Diff, error)
	Commit(ctx context.Context, message string) error
}

// DefaultClient implements the Client interface using exec.CommandContext.
type DefaultClient struct {
	// workDir is the working directory for git commands.
	// If empty, uses the current directory.
	workDir string
}

// NewClient creates a new DefaultClient.
func NewClient() *DefaultClient {
	return &DefaultClient{}
}

// NewClientWithWorkDir creates a new DefaultClient with a specific working directory.
func NewClientWithWorkDir(workDir string) *DefaultClient {
	return &DefaultClient{workDir: workDir}
}

// HasStagedChanges checks if there are any staged changes in the repository.
func (c *DefaultClient) HasStagedChanges(ctx context.Context) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, CommandTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", "diff", "--cached", "--quiet")
	if c.workDir != "" {
		cmd.Dir = c.workDir
	}

	err := cmd.Run()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return false, apperrors.NewTimeoutError(ctx.Err())
		}
		// Exit code 1 means there are differences (staged changes exist)
		if exitErr, ok := err.(*exec.ExitError); ok {
			if exitErr.ExitCode() == 1 {
				return true, nil
			}
		}
		return false, apperrors.NewGitError(err, "")
	}
	// Exit code 0 means no differences
	return false, nil
}

// StagedDiff captures the full staged diff and its statistics.
// Returns an EmptyDiff error when nothing is staged, so the pipeline fails
// before any credential lookup or network call.
func (c *DefaultClient) StagedDiff(ctx context.Context) (*Diff, error) {
	hasChanges, err := c.HasStagedChanges(ctx)
	if err != nil {
		return nil, err
	}
	if !hasChanges {
		return nil, apperrors.NewEmptyDiffError()
	}

	ctx, cancel := context.WithTimeout(ctx, CommandTimeout)
	defer cancel()

	diffCmd := exec.CommandContext(ctx, "git", "diff", "--cached")
	if c.workDir != "" {
		diffCmd.Dir = c.workDir
	}

	diffOutput, err := diffCmd.Output()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, apperrors.NewTimeoutError(ctx.Err())
		}
		if exitErr, ok := err.(*exec.ExitError); ok {
			return nil, apperrors.NewGitError(err, string(exitErr.Stderr))
		}
		return nil, apperrors.NewGitError(err, "")
	}

	numstatCmd := exec.CommandContext(ctx, "git", "diff", "--cached", "--numstat")
	if c.workDir != "" {
		numstatCmd.Dir = c.workDir
	}

	numstatOutput, err := numstatCmd.Output()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, apperrors.NewTimeoutError(ctx.Err())
		}
		if exitErr, ok := err.(*exec.ExitError); ok {
			return nil, apperrors.NewGitError(err, string(exitErr.Stderr))
		}
		return nil, apperrors.NewGitError(err, "")
	}

	diff := &Diff{
		Content: string(diffOutput),
		Stats:   parseNumstat(numstatOutput),
	}

	if diff.IsEmpty() {
		return nil, apperrors.NewEmptyDiffError()
	}

	return diff, nil
}

// Commit executes a git commit with the given message.
func (c *DefaultClient) Commit(ctx context.Context, message string) error {
	ctx, cancel := context.WithTimeout(ctx, CommandTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", "commit", "-m", message)
	if c.workDir != "" {
		cmd.Dir = c.workDir
	}

	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return apperrors.NewTimeoutError(ctx.Err())
		}
		return apperrors.NewGitError(err, string(output))
	}
	return nil
}

// parseNumstat parses the output of git diff --numstat.
// Format: additions<TAB>deletions<TAB>filepath
// Binary files show as: -<TAB>-<TAB>filepath
func parseNumstat(output []byte) Stats {
	var stats Stats
	scanner := bufio.NewScanner(bytes.NewReader(output))

	for scanner.Scan() {
		parts := strings.Split(scanner.Text(), "\t")
		if len(parts) < 3 {
			continue
		}

		addStr, delStr := parts[0], parts[1]
		stats.TotalFiles++

		if addStr == "-" && delStr == "-" {
			stats.BinaryFiles++
			continue
		}

		additions, _ := strconv.Atoi(addStr)
		deletions, _ := strconv.Atoi(delStr)
		stats.TotalAdditions += additions
		stats.TotalDeletions += deletions
	}

	return stats
}
