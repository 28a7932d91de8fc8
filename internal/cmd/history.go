package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/draftcommit/draftcommit/internal/pkg/config"
	"github.com/draftcommit/draftcommit/internal/pkg/history"
)

const (
	// DefaultHistoryLimit is the default number of history entries to display.
	DefaultHistoryLimit = 20
)

// NewHistoryCmd creates the history command and its subcommands.
func NewHistoryCmd() *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "View commit message history",
		Long: `View the history of generated commit messages.

By default, displays the most recent 20 entries.

Examples:
  draftcommit history           # Show last 20 entries
  draftcommit history --limit 5 # Show last 5 entries
  draftcommit history clear     # Clear all history`,
		RunE: runHistoryList,
	}

	historyCmd.Flags().IntP("limit", "l", DefaultHistoryLimit, "Number of entries to display")

	historyCmd.AddCommand(newHistoryClearCmd())

	return historyCmd
}

// runHistoryList displays the history entries.
func runHistoryList(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")

	configPath, _ := cmd.Flags().GetString("config")
	mgr, err := config.NewManager(configPath)
	if err != nil {
		return fmt.Errorf("failed to create config manager: %w", err)
	}

	cfg, err := mgr.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if !cfg.History.Enabled {
		fmt.Println("History is disabled. Enable it with: draftcommit config set history.enabled true")
		return nil
	}

	historyMgr := history.NewFileManager(cfg.History.FilePath, cfg.History.MaxEntries)

	entries, err := historyMgr.List(limit)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	if len(entries) == 0 {
		fmt.Println("No history entries found.")
		return nil
	}

	fmt.Printf("Showing %d most recent entries:\n\n", len(entries))

	// Most recent first.
	for i := len(entries) - 1; i >= 0; i-- {
		printHistoryEntry(entries[i], len(entries)-i)
	}

	return nil
}

// printHistoryEntry formats and prints a single history entry.
func printHistoryEntry(entry *history.Entry, index int) {
	timestamp := entry.Timestamp.Format(time.RFC3339)

	status := "not committed"
	if entry.Committed {
		status = "committed"
	}

	fmt.Printf("[%d] %s (%s)\n", index, timestamp, status)

	if entry.Source != "" {
		fmt.Printf("    Source: %s", entry.Source)
		if entry.Provider != "" {
			fmt.Printf(" via %s", entry.Provider)
			if entry.Model != "" {
				fmt.Printf(" (%s)", entry.Model)
			}
		}
		fmt.Println()
	}

	if entry.DiffFiles > 0 {
		fmt.Printf("    Files: %d\n", entry.DiffFiles)
	}

	fmt.Println("    Message:")
	for _, line := range strings.Split(entry.Message, "\n") {
		fmt.Printf("      %s\n", line)
	}

	fmt.Println()
}

// newHistoryClearCmd creates the 'history clear' subcommand.
func newHistoryClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear all history entries",
		Long: `Delete all entries from the history file.

This action cannot be undone.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			mgr, err := config.NewManager(configPath)
			if err != nil {
				return fmt.Errorf("failed to create config manager: %w", err)
			}

			cfg, err := mgr.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			historyMgr := history.NewFileManager(cfg.History.FilePath, cfg.History.MaxEntries)

			if err := historyMgr.Clear(); err != nil {
				return fmt.Errorf("failed to clear history: %w", err)
			}

			fmt.Println("History cleared successfully.")
			return nil
		},
	}
}
