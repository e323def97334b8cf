package history_test

import (
	"context"
	"testing"
	"time"

	"prunarr/internal/history"
	"prunarr/internal/reconcile"
	"prunarr/internal/testsupport"
)

func sampleRun(id string, started time.Time) history.Run {
	return history.Run{
		ID:              id,
		StartedAt:       started,
		FinishedAt:      started.Add(3 * time.Second),
		DateDeleted:     reconcile.DateStamp(started),
		Requested:       3,
		DeletedCount:    2,
		NotFoundCount:   1,
		SpaceSavedBytes: 7_000_000_000,
		SpaceSavedGB:    7,
		DeletedReport:   "/tmp/results/movies_deleted.json",
		NotFoundReport:  "/tmp/results/movies_not_found.json",
		Outcomes: []reconcile.Outcome{
			reconcile.Deleted("Inception", reconcile.Entry{ID: 1, Year: 2010, Path: "/m/Inception", SizeOnDisk: 4_000_000_000}),
			reconcile.Deleted("Up", reconcile.Entry{ID: 2, Year: 2009, Path: "/m/Up", SizeOnDisk: 3_000_000_000}),
			reconcile.NotFound("Gone Girl", reconcile.ReasonNotInCatalog),
		},
	}
}

func TestRecordAndGetRun(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	ctx := context.Background()

	started := time.Date(2024, 3, 9, 14, 0, 0, 0, time.UTC)
	if err := store.RecordRun(ctx, sampleRun("run-1", started)); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}

	got, err := store.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got == nil {
		t.Fatal("expected run, got nil")
	}
	if !got.StartedAt.Equal(started) {
		t.Fatalf("started_at = %v, want %v", got.StartedAt, started)
	}
	if got.DateDeleted != "2024_03_09" || got.SpaceSavedGB != 7 || got.Requested != 3 {
		t.Fatalf("unexpected run row: %+v", got)
	}
	if len(got.Outcomes) != 3 {
		t.Fatalf("expected 3 outcomes, got %d", len(got.Outcomes))
	}
	first := got.Outcomes[0]
	if first.Kind != reconcile.OutcomeDeleted || first.Title != "Inception" || first.Year != 2010 || first.SizeOnDisk != 4_000_000_000 {
		t.Fatalf("unexpected first outcome: %+v", first)
	}
	last := got.Outcomes[2]
	if last.Kind != reconcile.OutcomeNotFound || last.Reason != reconcile.ReasonNotInCatalog {
		t.Fatalf("unexpected last outcome: %+v", last)
	}
}

func TestGetRunMissingReturnsNil(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)

	got, err := store.GetRun(context.Background(), "nope")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil run, got %+v", got)
	}
}

func TestListRunsNewestFirstWithLimit(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		if err := store.RecordRun(ctx, sampleRun(id, base.Add(time.Duration(i)*24*time.Hour))); err != nil {
			t.Fatalf("RecordRun %s: %v", id, err)
		}
	}

	runs, err := store.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "c" || runs[1].ID != "b" {
		t.Fatalf("unexpected order: %+v", runs)
	}
	if runs[0].Outcomes != nil {
		t.Fatal("list should not load outcomes")
	}

	all, err := store.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("ListRuns all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(all))
	}
}

func TestRecordRunRejectsDuplicateID(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	ctx := context.Background()

	run := sampleRun("dup", time.Now())
	if err := store.RecordRun(ctx, run); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}
	if err := store.RecordRun(ctx, run); err == nil {
		t.Fatal("expected duplicate id error")
	}
	outcomes, err := store.Outcomes(ctx, "dup")
	if err != nil {
		t.Fatalf("Outcomes: %v", err)
	}
	if len(outcomes) != 3 {
		t.Fatalf("duplicate insert should roll back; got %d outcomes", len(outcomes))
	}
}

func TestReopenKeepsRuns(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	ctx := context.Background()

	store, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := store.RecordRun(ctx, sampleRun("keep", time.Now())); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened := testsupport.MustOpenHistory(t, cfg)
	runs, err := reopened.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != "keep" {
		t.Fatalf("unexpected runs after reopen: %+v", runs)
	}
}
