package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"prunarr/internal/history"
)

var errHistoryDisabled = errors.New("run history is disabled (history.enabled = false)")

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(ctx, func(store *history.Store) error {
				runs, err := store.ListRuns(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if jsonOutput {
					views := make([]runView, 0, len(runs))
					for _, run := range runs {
						views = append(views, runViewFromHistory(run))
					}
					return writeJSON(cmd, views)
				}
				out := cmd.OutOrStdout()
				if len(runs) == 0 {
					fmt.Fprintln(out, "No runs recorded")
					return nil
				}
				fmt.Fprintln(out, renderHistoryTable(runs))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum runs to show (0 for all)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output runs as JSON")

	cmd.AddCommand(newHistoryShowCommand(ctx))
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one run with every per-title outcome",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			return withHistory(ctx, func(store *history.Store) error {
				run, err := store.GetRun(cmd.Context(), id)
				if err != nil {
					return err
				}
				if run == nil {
					return fmt.Errorf("run %s not found", id)
				}
				if jsonOutput {
					return writeJSON(cmd, runViewFromHistory(*run))
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Run ID:    %s\n", run.ID)
				fmt.Fprintf(out, "Started:   %s (%s)\n", run.StartedAt.Local().Format("2006-01-02 15:04:05"), humanize.Time(run.StartedAt))
				fmt.Fprintf(out, "Duration:  %s\n", run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond))
				fmt.Fprintf(out, "Requested: %d\n", run.Requested)
				fmt.Fprintln(out, summaryLine(run.DeletedCount, run.NotFoundCount, run.SpaceSavedGB))
				if run.DeletedReport != "" {
					fmt.Fprintf(out, "Reports:   %s\n", run.DeletedReport)
					fmt.Fprintf(out, "           %s\n", run.NotFoundReport)
				}
				if len(run.Outcomes) > 0 {
					fmt.Fprintln(out, renderOutcomeTable(run.Outcomes, run.SpaceSavedBytes))
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the run as JSON")
	return cmd
}

func withHistory(ctx *commandContext, fn func(*history.Store) error) error {
	store, err := ctx.openHistory()
	if err != nil {
		return err
	}
	if store == nil {
		return errHistoryDisabled
	}
	defer store.Close()
	return fn(store)
}

func renderHistoryTable(runs []history.Run) string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			run.ID,
			run.StartedAt.Local().Format("2006-01-02 15:04"),
			strconv.Itoa(run.Requested),
			strconv.Itoa(run.DeletedCount),
			strconv.Itoa(run.NotFoundCount),
			strconv.FormatInt(run.SpaceSavedGB, 10),
		})
	}
	return renderTable(
		[]string{"Run ID", "Started", "Requested", "Deleted", "Not found", "GB"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight},
		nil,
	)
}
