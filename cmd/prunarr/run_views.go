package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"

	"prunarr/internal/history"
	"prunarr/internal/purge"
	"prunarr/internal/reconcile"
)

type outcomeView struct {
	Title           string  `json:"title"`
	Result          string  `json:"result"`
	Year            int     `json:"year,omitempty"`
	Path            string  `json:"path,omitempty"`
	SizeOnDiskBytes int64   `json:"size_on_disk_bytes,omitempty"`
	SizeOnDiskGB    float64 `json:"size_on_disk_gb,omitempty"`
	Reason          string  `json:"reason,omitempty"`
}

type runView struct {
	RunID           string        `json:"run_id"`
	StartedAt       string        `json:"started_at"`
	FinishedAt      string        `json:"finished_at"`
	DateDeleted     string        `json:"date_deleted"`
	Requested       int           `json:"requested"`
	Deleted         int           `json:"deleted"`
	NotFound        int           `json:"not_found"`
	SpaceSavedBytes int64         `json:"space_saved_bytes"`
	SpaceSavedGB    int64         `json:"space_saved_gb"`
	DeletedReport   string        `json:"deleted_report,omitempty"`
	NotFoundReport  string        `json:"not_found_report,omitempty"`
	Collisions      []string      `json:"collisions,omitempty"`
	Outcomes        []outcomeView `json:"outcomes,omitempty"`
}

func outcomeViews(outcomes []reconcile.Outcome) []outcomeView {
	views := make([]outcomeView, 0, len(outcomes))
	for _, o := range outcomes {
		view := outcomeView{
			Title:  o.Title,
			Result: o.Kind.String(),
			Reason: string(o.Reason),
		}
		if o.Kind == reconcile.OutcomeDeleted {
			view.Year = o.Year
			view.Path = o.Path
			view.SizeOnDiskBytes = o.SizeOnDisk
			view.SizeOnDiskGB = reconcile.GB(o.SizeOnDisk)
		}
		views = append(views, view)
	}
	return views
}

func runViewFromResult(result *purge.Result) runView {
	return runView{
		RunID:           result.RunID,
		StartedAt:       result.StartedAt.UTC().Format(time.RFC3339),
		FinishedAt:      result.FinishedAt.UTC().Format(time.RFC3339),
		DateDeleted:     result.Summary.DateStamp(),
		Requested:       result.Requested,
		Deleted:         result.Summary.DeletedCount,
		NotFound:        result.Summary.NotFoundCount,
		SpaceSavedBytes: result.Summary.SpaceSavedBytes,
		SpaceSavedGB:    result.Summary.SpaceSavedGB,
		DeletedReport:   result.Reports.Deleted,
		NotFoundReport:  result.Reports.NotFound,
		Collisions:      result.Collisions,
		Outcomes:        outcomeViews(result.Outcomes),
	}
}

func runViewFromHistory(run history.Run) runView {
	return runView{
		RunID:           run.ID,
		StartedAt:       run.StartedAt.UTC().Format(time.RFC3339),
		FinishedAt:      run.FinishedAt.UTC().Format(time.RFC3339),
		DateDeleted:     run.DateDeleted,
		Requested:       run.Requested,
		Deleted:         run.DeletedCount,
		NotFound:        run.NotFoundCount,
		SpaceSavedBytes: run.SpaceSavedBytes,
		SpaceSavedGB:    run.SpaceSavedGB,
		DeletedReport:   run.DeletedReport,
		NotFoundReport:  run.NotFoundReport,
		Outcomes:        outcomeViews(run.Outcomes),
	}
}

func renderOutcomeTable(outcomes []reconcile.Outcome, savedBytes int64) string {
	rows := make([][]string, 0, len(outcomes))
	for i, o := range outcomes {
		row := []string{strconv.Itoa(i + 1), o.Title, o.Kind.String(), "", "", string(o.Reason)}
		if o.Kind == reconcile.OutcomeDeleted {
			row[3] = yearText(o.Year)
			row[4] = sizeText(o.SizeOnDisk)
		}
		rows = append(rows, row)
	}
	return renderTable(
		[]string{"#", "Title", "Result", "Year", "Size", "Reason"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
		[]string{"", "", "", "Total", sizeText(savedBytes), ""},
	)
}

func summaryLine(deleted, notFound int, savedGB int64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Deleted %s, freed %d GB", humanize.Comma(int64(deleted))+" "+english.PluralWord(deleted, "movie", ""), savedGB)
	if notFound > 0 {
		fmt.Fprintf(&b, "; %d not found", notFound)
	}
	return b.String()
}

func sizeText(bytes int64) string {
	if bytes <= 0 {
		return "0 B"
	}
	return humanize.Bytes(uint64(bytes))
}

func yearText(year int) string {
	if year <= 0 {
		return ""
	}
	return strconv.Itoa(year)
}
