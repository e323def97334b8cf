package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"prunarr/internal/purge"
)

func newPlanCommand(ctx *commandContext) *cobra.Command {
	var requestsFile string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show which listed movies would be deleted, without deleting",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := applyRequestsFile(cfg, requestsFile); err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			runner, err := purge.NewRunner(cfg, logger)
			if err != nil {
				return err
			}
			plan, err := runner.Plan(cmd.Context())
			if err != nil {
				return err
			}

			if jsonOutput {
				return writeJSON(cmd, plan)
			}
			out := cmd.OutOrStdout()
			if len(plan.Items) > 0 {
				fmt.Fprintln(out, renderPlanTable(plan))
			}
			fmt.Fprintf(out, "%d would be deleted (%d GB), %d not in catalog\n", plan.Matched, plan.TotalGB, plan.Missing)
			return nil
		},
	}

	cmd.Flags().StringVarP(&requestsFile, "file", "f", "", "Request list CSV (overrides paths.requests_file)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the plan as JSON")
	return cmd
}

func renderPlanTable(plan *purge.Plan) string {
	rows := make([][]string, 0, len(plan.Items))
	for i, item := range plan.Items {
		row := []string{strconv.Itoa(i + 1), item.Requested, "no", "", "", ""}
		if item.Match {
			row[2] = "yes"
			row[3] = yearText(item.Year)
			row[4] = sizeText(item.SizeOnDisk)
			row[5] = item.Path
		}
		rows = append(rows, row)
	}
	return renderTable(
		[]string{"#", "Requested", "Match", "Year", "Size", "Path"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
		[]string{"", "", strconv.Itoa(plan.Matched), "Total", sizeText(plan.TotalBytes), ""},
	)
}
