package main

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"onboard/internal/engine"
	"onboard/internal/progress"
)

func newStageCommand(cmdCtx *commandContext) *cobra.Command {
	stageCmd := &cobra.Command{
		Use:   "stage",
		Short: "Stage-level progress operations",
	}
	stageCmd.AddCommand(newStageSaveCommand(cmdCtx))
	stageCmd.AddCommand(newStageSubmitCommand(cmdCtx))
	return stageCmd
}

func newStageSaveCommand(cmdCtx *commandContext) *cobra.Command {
	var data string
	var actor string

	cmd := &cobra.Command{
		Use:   "save <session-id> <stage>",
		Short: "Save stage fields without submitting",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStageUpdate(cmdCtx, cmd, args, data, actor, false)
		},
	}

	cmd.Flags().StringVarP(&data, "data", "d", "", "Stage fields as a JSON object")
	cmd.Flags().StringVar(&actor, "actor", "", "User recorded on the change")
	return cmd
}

func newStageSubmitCommand(cmdCtx *commandContext) *cobra.Command {
	var data string
	var actor string

	cmd := &cobra.Command{
		Use:   "submit <session-id> <stage>",
		Short: "Submit a stage as completed (validation enforced)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStageUpdate(cmdCtx, cmd, args, data, actor, true)
		},
	}

	cmd.Flags().StringVarP(&data, "data", "d", "", "Stage fields as a JSON object")
	cmd.Flags().StringVar(&actor, "actor", "", "User recorded on the change")
	return cmd
}

func runStageUpdate(cmdCtx *commandContext, cmd *cobra.Command, args []string, data, actor string, completed bool) error {
	stageNumber, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid stage number %q", args[1])
	}
	payload, err := parsePayload(data)
	if err != nil {
		return err
	}

	return cmdCtx.withEngine(func(ctx context.Context, eng *engine.Engine) error {
		summary, err := eng.UpdateStage(ctx, args[0], stageNumber, payload, completed, actor)
		if validationErr, ok := progress.AsValidationError(err); ok {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Stage %d was not completed; fix the following fields:\n", validationErr.StageNumber)
			fields := make([]string, 0, len(validationErr.Errors))
			for field := range validationErr.Errors {
				fields = append(fields, field)
			}
			sort.Strings(fields)
			for _, field := range fields {
				fmt.Fprintf(out, "  %s: %s\n", field, validationErr.Errors[field])
			}
			return err
		}
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if completed {
			fmt.Fprintf(out, "Stage %d submitted; session now %s complete\n",
				stageNumber, formatPercent(summary.ProgressPercentage))
		} else {
			fmt.Fprintf(out, "Stage %d saved; session now %s complete\n",
				stageNumber, formatPercent(summary.ProgressPercentage))
		}
		if summary.Status == progress.SessionCompleted {
			fmt.Fprintf(out, "Onboarding for %s is complete\n", summary.SessionID)
		}
		return nil
	})
}
