package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"onboard/internal/catalog"
)

func newCatalogCommand() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:         "catalog",
		Short:       "Show the onboarding stage catalog",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if jsonOutput {
				return writeJSON(cmd, catalog.Stages())
			}

			rows := make([][]string, 0, catalog.StageCount())
			for _, stage := range catalog.Stages() {
				rows = append(rows, []string{
					strconv.Itoa(stage.Number),
					stage.Name,
					strconv.Itoa(stage.Weight),
					yesNo(stage.Required),
					strconv.Itoa(len(stage.Fields)),
					strconv.Itoa(len(stage.RequiredFieldNames())),
					strconv.Itoa(stage.EstimatedMinutes),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]tableColumn{
					{Title: "#", Numeric: true},
					{Title: "Stage"},
					{Title: "Weight", Numeric: true},
					{Title: "Required"},
					{Title: "Fields", Numeric: true},
					{Title: "Required Fields", Numeric: true},
					{Title: "Est. Min", Numeric: true},
				},
				rows,
			))
			fmt.Fprintf(cmd.OutOrStdout(), "%d stages, %d fields, ~%d minutes total\n",
				catalog.StageCount(), catalog.TotalFields(), catalog.TotalEstimatedMinutes())
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the catalog as JSON")
	return cmd
}
