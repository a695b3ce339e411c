package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"onboard/internal/engine"
)

func newSkipCommand(cmdCtx *commandContext) *cobra.Command {
	skipCmd := &cobra.Command{
		Use:   "skip",
		Short: "Skip a field or stage",
	}
	skipCmd.AddCommand(newSkipFieldCommand(cmdCtx))
	skipCmd.AddCommand(newSkipStageCommand(cmdCtx))
	return skipCmd
}

func newUnskipCommand(cmdCtx *commandContext) *cobra.Command {
	unskipCmd := &cobra.Command{
		Use:   "unskip",
		Short: "Lift a skip from a field or stage",
	}
	unskipCmd.AddCommand(newUnskipFieldCommand(cmdCtx))
	unskipCmd.AddCommand(newUnskipStageCommand(cmdCtx))
	return unskipCmd
}

func newSkipFieldCommand(cmdCtx *commandContext) *cobra.Command {
	var reason, category, actor string

	cmd := &cobra.Command{
		Use:   "field <session-id> <stage> <field>",
		Short: "Skip one field",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			stageNumber, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid stage number %q", args[1])
			}
			return cmdCtx.withEngine(func(ctx context.Context, eng *engine.Engine) error {
				summary, err := eng.SkipField(ctx, args[0], stageNumber, args[2], engine.SkipRequest{
					Reason: reason, Category: category, Actor: actor,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Skipped %s; %d active skip(s)\n", args[2], len(summary.ActiveSkips))
				return nil
			})
		},
	}

	addSkipFlags(cmd, &reason, &category, &actor)
	return cmd
}

func newSkipStageCommand(cmdCtx *commandContext) *cobra.Command {
	var reason, category, actor string

	cmd := &cobra.Command{
		Use:   "stage <session-id> <stage>",
		Short: "Skip a whole stage",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			stageNumber, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid stage number %q", args[1])
			}
			return cmdCtx.withEngine(func(ctx context.Context, eng *engine.Engine) error {
				summary, err := eng.SkipStage(ctx, args[0], stageNumber, engine.SkipRequest{
					Reason: reason, Category: category, Actor: actor,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Skipped stage %d; session now %s complete\n",
					stageNumber, formatPercent(summary.ProgressPercentage))
				return nil
			})
		},
	}

	addSkipFlags(cmd, &reason, &category, &actor)
	return cmd
}

func newUnskipFieldCommand(cmdCtx *commandContext) *cobra.Command {
	var actor string

	cmd := &cobra.Command{
		Use:   "field <session-id> <stage> <field>",
		Short: "Lift a field skip",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			stageNumber, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid stage number %q", args[1])
			}
			return cmdCtx.withEngine(func(ctx context.Context, eng *engine.Engine) error {
				summary, err := eng.UnskipField(ctx, args[0], stageNumber, args[2], actor)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Unskipped %s; %d active skip(s)\n", args[2], len(summary.ActiveSkips))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&actor, "actor", "", "User recorded on the change")
	return cmd
}

func newUnskipStageCommand(cmdCtx *commandContext) *cobra.Command {
	var actor string

	cmd := &cobra.Command{
		Use:   "stage <session-id> <stage>",
		Short: "Lift a stage skip",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			stageNumber, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid stage number %q", args[1])
			}
			return cmdCtx.withEngine(func(ctx context.Context, eng *engine.Engine) error {
				summary, err := eng.UnskipStage(ctx, args[0], stageNumber, actor)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Unskipped stage %d; session now %s complete\n",
					stageNumber, formatPercent(summary.ProgressPercentage))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&actor, "actor", "", "User recorded on the change")
	return cmd
}

func addSkipFlags(cmd *cobra.Command, reason, category, actor *string) {
	cmd.Flags().StringVarP(reason, "reason", "r", "", "Why the item is being skipped")
	cmd.Flags().StringVar(category, "category", "", "Skip category for reporting")
	cmd.Flags().StringVar(actor, "actor", "", "User recorded on the change")
}
