package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"prunarr/internal/purge"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var requestsFile string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Delete every listed movie found in Radarr and write the reports",
		Long: "Reads the request list, fetches the Radarr catalog, deletes each matching movie " +
			"including its files, and writes movies_deleted.json and movies_not_found.json " +
			"under results_dir/<YYYY_MM_DD>/.",
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
			store, err := ctx.openHistory()
			if err != nil {
				return err
			}
			if store != nil {
				defer store.Close()
			}

			runner, err := purge.NewRunner(cfg, logger, purge.WithHistory(store))
			if err != nil {
				return err
			}
			result, runErr := runner.Run(cmd.Context())
			if result == nil {
				return runErr
			}

			if jsonOutput {
				if err := writeJSON(cmd, runViewFromResult(result)); err != nil {
					return err
				}
				return runErr
			}

			out := cmd.OutOrStdout()
			if len(result.Outcomes) > 0 {
				fmt.Fprintln(out, renderOutcomeTable(result.Outcomes, result.Summary.SpaceSavedBytes))
			}
			fmt.Fprintln(out, summaryLine(result.Summary.DeletedCount, result.Summary.NotFoundCount, result.Summary.SpaceSavedGB))
			if result.Reports.Dir != "" {
				fmt.Fprintf(out, "Reports: %s\n", result.Reports.Dir)
			}
			fmt.Fprintf(out, "Run ID: %s\n", result.RunID)
			return runErr
		},
	}

	cmd.Flags().StringVarP(&requestsFile, "file", "f", "", "Request list CSV (overrides paths.requests_file)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the run result as JSON")
	return cmd
}
