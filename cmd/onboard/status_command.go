package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"onboard/internal/engine"
)

func newStatusCommand(cmdCtx *commandContext) *cobra.Command {
	var jsonOutput bool
	var showFields bool

	cmd := &cobra.Command{
		Use:   "status <session-id>",
		Short: "Show onboarding progress for a property",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdCtx.withEngine(func(ctx context.Context, eng *engine.Engine) error {
				summary, err := eng.Progress(ctx, args[0])
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, summary)
				}
				renderStatus(cmd, summary, showFields)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the full summary as JSON")
	cmd.Flags().BoolVar(&showFields, "fields", false, "Include per-field detail")
	return cmd
}

func renderStatus(cmd *cobra.Command, summary *engine.Summary, showFields bool) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Session %s (%s)\n", summary.SessionID, formatStatus(summary.Status))
	fmt.Fprintf(out, "Step %d of %d, %s complete, ~%d min remaining\n",
		summary.CurrentStep, summary.TotalSteps,
		formatPercent(summary.ProgressPercentage), summary.EstimatedTimeRemaining)
	fmt.Fprintf(out, "Stages: %d completed, %d skipped; fields: %d/%d completed, %d skipped\n",
		summary.StepsCompleted, summary.StepsSkipped,
		summary.FieldsCompleted, summary.TotalFields, summary.FieldsSkipped)

	rows := make([][]string, 0, len(summary.PerStage))
	for _, stage := range summary.PerStage {
		rows = append(rows, []string{
			strconv.Itoa(stage.StageNumber),
			stage.Name,
			formatStatus(stage.Status),
			fmt.Sprintf("%d/%d", stage.FieldsCompleted, stage.FieldsTotal),
			yesNo(stage.Required),
			summarizeValidation(stage.ValidationErrors),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]tableColumn{
			{Title: "#", Numeric: true},
			{Title: "Stage"},
			{Title: "Status"},
			{Title: "Fields", Numeric: true},
			{Title: "Required"},
			{Title: "Validation", MaxWidth: 48},
		},
		rows,
	))

	if showFields {
		for _, stage := range summary.PerStage {
			fieldRows := make([][]string, 0, len(stage.Fields))
			for _, field := range stage.Fields {
				fieldRows = append(fieldRows, []string{
					field.Name,
					formatStatus(field.Status),
					yesNo(field.Required),
					yesNo(field.Skipped),
					formatValue(field.Value),
				})
			}
			fmt.Fprintf(out, "\n%s\n", stage.Name)
			fmt.Fprintln(out, renderTable(
				[]tableColumn{
					{Title: "Field"},
					{Title: "Status"},
					{Title: "Required"},
					{Title: "Skipped"},
					{Title: "Value", MaxWidth: 40},
				},
				fieldRows,
			))
		}
	}

	if len(summary.ActiveSkips) > 0 {
		skipRows := make([][]string, 0, len(summary.ActiveSkips))
		for _, skip := range summary.ActiveSkips {
			target := fmt.Sprintf("stage %d", skip.StageNumber)
			if skip.FieldName != "" {
				target = fmt.Sprintf("stage %d / %s", skip.StageNumber, skip.FieldName)
			}
			skipRows = append(skipRows, []string{
				string(skip.ItemType),
				target,
				skip.Reason,
				skip.SkippedBy,
				skip.SkippedAt.Local().Format("2006-01-02 15:04"),
			})
		}
		fmt.Fprintln(out, "\nActive skips")
		fmt.Fprintln(out, renderTable(
			[]tableColumn{
				{Title: "Type"},
				{Title: "Target"},
				{Title: "Reason", MaxWidth: 40},
				{Title: "By"},
				{Title: "When"},
			},
			skipRows,
		))
	}
}
