package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"loopguard/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect and maintain the download history",
	}

	historyCmd.AddCommand(newHistoryListCommand(ctx))
	historyCmd.AddCommand(newHistoryPruneCommand(ctx))
	historyCmd.AddCommand(newHistoryClearCommand(ctx))
	historyCmd.AddCommand(newHistoryHealthCommand(ctx))

	return historyCmd
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var statusFilter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List history entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			var statuses []history.Status
			if trimmed := strings.TrimSpace(statusFilter); trimmed != "" {
				status, ok := history.ParseStatus(trimmed)
				if !ok {
					return fmt.Errorf("unknown status %q (expected one of %v)", trimmed, history.AllStatuses())
				}
				statuses = append(statuses, status)
			}

			entries, err := store.List(cmd.Context(), statuses...)
			if err != nil {
				return fmt.Errorf("list history: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "History is empty")
				return nil
			}

			now := time.Now()
			window := store.Window()
			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				active := "expired"
				if entry.ActiveAt(now, window) {
					active = "active"
				}
				rows = append(rows, []string{
					fmt.Sprintf("%d", entry.ID),
					entry.DisplayName,
					entry.Category,
					string(entry.Status),
					active,
					entry.Age(now).Round(time.Second).String(),
					entry.JobID,
				})
			}
			fmt.Fprintln(out, renderTable(out,
				[]string{"ID", "Name", "Category", "Status", "Window", "Age", "Job ID"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
			))

			stats, err := store.Stats(cmd.Context())
			if err != nil {
				return fmt.Errorf("history stats: %w", err)
			}
			fmt.Fprintf(out, "%d total (%d pending, %d success, %d failed)\n",
				len(entries),
				stats[history.StatusPending],
				stats[history.StatusSuccess],
				stats[history.StatusFailed],
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&statusFilter, "status", "", "Only show entries with this status (pending, success, failed)")
	return cmd
}

func newHistoryPruneCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Remove entries older than the detection window",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			removed, err := store.Prune(cmd.Context(), time.Now())
			if err != nil {
				return fmt.Errorf("prune history: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d expired entries\n", removed)
			return nil
		},
	}
}

func newHistoryClearCommand(ctx *commandContext) *cobra.Command {
	var confirmed bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove all history entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirmed {
				return fmt.Errorf("history clear removes every entry; re-run with --yes to confirm")
			}
			store, err := ctx.openStore()
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			removed, err := store.Clear(cmd.Context())
			if err != nil {
				return fmt.Errorf("clear history: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d entries\n", removed)
			return nil
		},
	}

	cmd.Flags().BoolVar(&confirmed, "yes", false, "Confirm removal of all entries")
	return cmd
}

func newHistoryHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the history database",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			health, err := store.CheckHealth(cmd.Context())
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Database:  %s\n", health.DBPath)
			fmt.Fprintf(out, "Exists:    %s\n", yesNo(health.DatabaseExists))
			fmt.Fprintf(out, "Readable:  %s\n", yesNo(health.DatabaseReadable))
			fmt.Fprintf(out, "Table:     %s\n", yesNo(health.TableExists))
			fmt.Fprintf(out, "Integrity: %s\n", yesNo(health.IntegrityCheck))
			fmt.Fprintf(out, "Entries:   %d\n", health.TotalEntries)
			if err != nil {
				return fmt.Errorf("history health: %w", err)
			}
			return nil
		},
	}
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
