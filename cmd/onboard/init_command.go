package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"onboard/internal/engine"
)

func newInitCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "init <session-id>",
		Short: "Initialize onboarding progress for a property",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdCtx.withEngine(func(ctx context.Context, eng *engine.Engine) error {
				summary, err := eng.Initialize(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Session %s ready: %d stages, %d fields\n",
					summary.SessionID, summary.TotalSteps, summary.TotalFields)
				return nil
			})
		},
	}
}
