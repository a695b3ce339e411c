package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"onboard/internal/progress"
)

func newSessionsCommand(cmdCtx *commandContext) *cobra.Command {
	sessionsCmd := &cobra.Command{
		Use:   "sessions",
		Short: "Inspect and maintain onboarding sessions",
	}
	sessionsCmd.AddCommand(newSessionsListCommand(cmdCtx))
	sessionsCmd.AddCommand(newSessionsDeleteCommand(cmdCtx))
	sessionsCmd.AddCommand(newSessionsPurgeCommand(cmdCtx))
	return sessionsCmd
}

func newSessionsListCommand(cmdCtx *commandContext) *cobra.Command {
	var statusFilter string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var statuses []progress.SessionStatus
			if statusFilter != "" {
				status, ok := progress.ParseSessionStatus(statusFilter)
				if !ok {
					return fmt.Errorf("unknown status %q", statusFilter)
				}
				statuses = append(statuses, status)
			}

			return cmdCtx.withStore(func(ctx context.Context, store *progress.Store) error {
				sessions, err := store.ListSessions(ctx, statuses...)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, sessions)
				}

				rows := make([][]string, 0, len(sessions))
				for _, session := range sessions {
					completed := ""
					if session.CompletedAt != nil {
						completed = session.CompletedAt.Local().Format("2006-01-02 15:04")
					}
					rows = append(rows, []string{
						session.ID,
						formatStatus(session.Status),
						fmt.Sprintf("%d/%d", session.CurrentStep, session.TotalSteps),
						session.CreatedAt.Local().Format("2006-01-02 15:04"),
						completed,
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]tableColumn{
						{Title: "Session"},
						{Title: "Status"},
						{Title: "Step", Numeric: true},
						{Title: "Created"},
						{Title: "Completed"},
					},
					rows,
				))

				stats, err := store.SessionStats(ctx)
				if err != nil {
					return err
				}
				total := 0
				for _, count := range stats {
					total += count
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d session(s), %d completed, %d pending review\n",
					total, stats[progress.SessionCompleted], stats[progress.SessionPendingReview])
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&statusFilter, "status", "", "Filter by session status")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit sessions as JSON")
	return cmd
}

func newSessionsDeleteCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <session-id>",
		Short: "Delete one session and all its progress rows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdCtx.withStore(func(ctx context.Context, store *progress.Store) error {
				deleted, err := store.DeleteSession(ctx, args[0])
				if err != nil {
					return err
				}
				if !deleted {
					return fmt.Errorf("session %q not found", args[0])
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted session %s\n", args[0])
				return nil
			})
		},
	}
}

func newSessionsPurgeCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Remove completed sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdCtx.withStore(func(ctx context.Context, store *progress.Store) error {
				purged, err := store.PurgeCompleted(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Purged %s\n", pluralSessions(purged))
				return nil
			})
		},
	}
}

func pluralSessions(count int64) string {
	if count == 1 {
		return "1 session"
	}
	return strconv.FormatInt(count, 10) + " sessions"
}
