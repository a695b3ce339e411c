package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"onboard/internal/autosave"
	"onboard/internal/engine"
)

func newFieldCommand(cmdCtx *commandContext) *cobra.Command {
	fieldCmd := &cobra.Command{
		Use:   "field",
		Short: "Field-level progress operations",
	}
	fieldCmd.AddCommand(newFieldSetCommand(cmdCtx))
	fieldCmd.AddCommand(newFieldAutosaveCommand(cmdCtx))
	return fieldCmd
}

func newFieldAutosaveCommand(cmdCtx *commandContext) *cobra.Command {
	var actor string
	var at string

	cmd := &cobra.Command{
		Use:   "autosave <session-id> <stage> <field> <value>",
		Short: "Best-effort save of one field's value",
		Long: "Persists a partial field value with last-write-wins semantics. " +
			"Unlike 'field set', persistence failures are absorbed: the command " +
			"reports the outcome and exits cleanly so a caller's edit loop is " +
			"never blocked. Only an unknown session, stage, or field fails.",
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			stageNumber, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid stage number %q", args[1])
			}
			var clientTimestamp time.Time
			if at != "" {
				clientTimestamp, err = time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("invalid --at timestamp %q: %w", at, err)
				}
			}
			return cmdCtx.withReconciler(func(ctx context.Context, rec *autosave.Reconciler) error {
				result := rec.Save(ctx, autosave.Write{
					SessionID:       args[0],
					StageNumber:     stageNumber,
					FieldName:       args[2],
					Value:           parseValue(args[3]),
					ClientTimestamp: clientTimestamp,
					Actor:           actor,
				})
				out := cmd.OutOrStdout()
				switch result.Outcome {
				case autosave.OutcomeApplied:
					fmt.Fprintf(out, "Saved %s\n", args[2])
				case autosave.OutcomeStale:
					fmt.Fprintf(out, "Ignored stale write for %s; a newer value is already stored\n", args[2])
				case autosave.OutcomeSoftFailed:
					fmt.Fprintf(out, "Could not save %s right now; resend the value (ref %s)\n",
						args[2], result.CorrelationID)
				case autosave.OutcomeRejected:
					return result.Err
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&actor, "actor", "", "User recorded on the change")
	cmd.Flags().StringVar(&at, "at", "", "Client timestamp of the edit (RFC3339); defaults to now")
	return cmd
}

func newFieldSetCommand(cmdCtx *commandContext) *cobra.Command {
	var actor string

	cmd := &cobra.Command{
		Use:   "set <session-id> <stage> <field> <value>",
		Short: "Set one field's value",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			stageNumber, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid stage number %q", args[1])
			}
			return cmdCtx.withEngine(func(ctx context.Context, eng *engine.Engine) error {
				summary, err := eng.UpdateField(ctx, args[0], stageNumber, args[2], parseValue(args[3]), actor)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved %s; session now %s complete\n",
					args[2], formatPercent(summary.ProgressPercentage))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&actor, "actor", "", "User recorded on the change")
	return cmd
}
