package purge_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"prunarr/internal/config"
	"prunarr/internal/notifications"
	"prunarr/internal/purge"
	"prunarr/internal/reconcile"
	"prunarr/internal/report"
	"prunarr/internal/runlock"
	"prunarr/internal/services"
	"prunarr/internal/services/radarr"
	"prunarr/internal/testsupport"
)

type recordingNotifier struct {
	mu        sync.Mutex
	completed []notifications.RunSummary
	errors    []string
}

func (n *recordingNotifier) NotifyRunCompleted(_ context.Context, summary notifications.RunSummary) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.completed = append(n.completed, summary)
	return nil
}

func (n *recordingNotifier) NotifyError(_ context.Context, _ error, label string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, label)
	return nil
}

func (n *recordingNotifier) TestNotification(context.Context) error { return nil }

var fixedNow = time.Date(2024, 3, 9, 14, 30, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func scenarioCatalog() []radarr.Movie {
	return []radarr.Movie{
		{ID: 1, Title: "Inception", Year: 2010, Path: "/movies/Inception (2010)", SizeOnDisk: 5_000_000_000},
		{ID: 2, Title: "Up!", Year: 2009, Path: "/movies/Up (2009)", SizeOnDisk: 3_000_000_000},
	}
}

func newRunner(t *testing.T, cfg *config.Config, notifier notifications.Service) *purge.Runner {
	t.Helper()
	store := testsupport.MustOpenHistory(t, cfg)
	runner, err := purge.NewRunner(cfg, nil,
		purge.WithNotifier(notifier),
		purge.WithHistory(store),
		purge.WithClock(clock),
	)
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	return runner
}

func TestRunDeletesMatchesAndWritesReports(t *testing.T) {
	srv := testsupport.NewRadarrServer(t, "k", scenarioCatalog()...)
	cfg := testsupport.NewConfig(t,
		testsupport.WithRadarr(srv.URL, "k"),
		testsupport.WithRequests("Inception", "Up", "Gone Girl"),
	)
	notifier := &recordingNotifier{}
	store := testsupport.MustOpenHistory(t, cfg)
	runner, err := purge.NewRunner(cfg, nil,
		purge.WithNotifier(notifier),
		purge.WithHistory(store),
		purge.WithClock(clock),
	)
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}

	result, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.Summary.DeletedCount != 2 || result.Summary.SpaceSavedGB != 8 || result.Summary.NotFoundCount != 1 {
		t.Fatalf("unexpected summary: %+v", result.Summary)
	}
	if got := srv.Deleted(); len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("unexpected deletions: %v", got)
	}
	for _, q := range srv.DeleteQueries() {
		if !strings.Contains(q, "deleteFiles=true") || !strings.Contains(q, "addImportExclusion=false") {
			t.Fatalf("unexpected delete query: %s", q)
		}
	}

	wantDir := filepath.Join(cfg.Paths.ResultsDir, "2024_03_09")
	if result.Reports.Dir != wantDir {
		t.Fatalf("report dir = %s, want %s", result.Reports.Dir, wantDir)
	}
	deleted, notFound, err := report.Read(wantDir)
	if err != nil {
		t.Fatalf("report.Read: %v", err)
	}
	if deleted.Summary.MoviesDeleted != 2 || deleted.Summary.SpaceSavedGB != 8 || deleted.Summary.DateDeleted != "2024_03_09" {
		t.Fatalf("unexpected report summary: %+v", deleted.Summary)
	}
	if len(deleted.MoviesDeleted) != 2 || deleted.MoviesDeleted[0].Title != "Inception" || deleted.MoviesDeleted[1].Title != "Up" {
		t.Fatalf("unexpected deleted movies: %+v", deleted.MoviesDeleted)
	}
	if len(notFound.MoviesNotFound) != 1 || notFound.MoviesNotFound[0].Title != "Gone Girl" {
		t.Fatalf("unexpected not found: %+v", notFound.MoviesNotFound)
	}

	runs, err := store.ListRuns(context.Background(), 0)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != result.RunID || runs[0].DeletedReport != result.Reports.Deleted {
		t.Fatalf("unexpected history: %+v", runs)
	}

	if len(notifier.completed) != 1 || notifier.completed[0].Deleted != 2 || notifier.completed[0].SpaceSavedGB != 8 {
		t.Fatalf("unexpected notifications: %+v", notifier.completed)
	}
	if len(notifier.errors) != 0 {
		t.Fatalf("unexpected error notifications: %v", notifier.errors)
	}
}

func TestRunEmptyCatalog(t *testing.T) {
	srv := testsupport.NewRadarrServer(t, "k")
	cfg := testsupport.NewConfig(t,
		testsupport.WithRadarr(srv.URL, "k"),
		testsupport.WithRequests("Nonexistent Film"),
	)
	runner := newRunner(t, cfg, &recordingNotifier{})

	result, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Summary.DeletedCount != 0 || result.Summary.SpaceSavedGB != 0 || result.Summary.NotFoundCount != 1 {
		t.Fatalf("unexpected summary: %+v", result.Summary)
	}
	deleted, notFound, err := report.Read(result.Reports.Dir)
	if err != nil {
		t.Fatalf("report.Read: %v", err)
	}
	if deleted.MoviesDeleted == nil || len(deleted.MoviesDeleted) != 0 {
		t.Fatalf("expected empty deleted list, got %+v", deleted.MoviesDeleted)
	}
	if len(notFound.MoviesNotFound) != 1 || notFound.MoviesNotFound[0].Title != "Nonexistent Film" {
		t.Fatalf("unexpected not found: %+v", notFound.MoviesNotFound)
	}
}

func TestRunCatalogFailureIsFatalAndWritesNothing(t *testing.T) {
	srv := testsupport.NewRadarrServer(t, "k", scenarioCatalog()...)
	srv.FailList()
	cfg := testsupport.NewConfig(t,
		testsupport.WithRadarr(srv.URL, "k"),
		testsupport.WithRequests("Inception"),
	)
	notifier := &recordingNotifier{}
	store := testsupport.MustOpenHistory(t, cfg)
	runner, err := purge.NewRunner(cfg, nil, purge.WithNotifier(notifier), purge.WithHistory(store), purge.WithClock(clock))
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}

	result, err := runner.Run(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if result != nil {
		t.Fatalf("expected nil result, got %+v", result)
	}
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient error, got %v", err)
	}
	if len(srv.Deleted()) != 0 {
		t.Fatal("no deletion may happen when the catalog fetch fails")
	}
	if _, statErr := os.Stat(filepath.Join(cfg.Paths.ResultsDir, "2024_03_09")); !os.IsNotExist(statErr) {
		t.Fatalf("expected no report dir, stat err = %v", statErr)
	}
	runs, err := store.ListRuns(context.Background(), 0)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 0 {
		t.Fatalf("expected no history rows, got %d", len(runs))
	}
	if len(notifier.errors) != 1 || notifier.errors[0] != "catalog fetch" {
		t.Fatalf("unexpected error notifications: %v", notifier.errors)
	}
}

func TestRunDegradesDeleteFailuresToNotFound(t *testing.T) {
	movies := append(scenarioCatalog(),
		radarr.Movie{ID: 3, Title: "Heat", Year: 1995, Path: "/movies/Heat (1995)", SizeOnDisk: 2_000_000_000},
	)
	srv := testsupport.NewRadarrServer(t, "k", movies...)
	srv.Vanish(2)
	srv.FailDelete(3, 500)
	cfg := testsupport.NewConfig(t,
		testsupport.WithRadarr(srv.URL, "k"),
		testsupport.WithRequests("Inception", "Up", "Heat"),
	)
	runner := newRunner(t, cfg, &recordingNotifier{})

	result, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Outcomes) != 3 {
		t.Fatalf("expected 3 outcomes, got %d", len(result.Outcomes))
	}
	want := []struct {
		kind   reconcile.OutcomeKind
		reason reconcile.NotFoundReason
	}{
		{reconcile.OutcomeDeleted, ""},
		{reconcile.OutcomeNotFound, reconcile.ReasonAbsentOnDelete},
		{reconcile.OutcomeNotFound, reconcile.ReasonDeleteFailed},
	}
	for i, w := range want {
		got := result.Outcomes[i]
		if got.Kind != w.kind || got.Reason != w.reason {
			t.Fatalf("outcome %d = %+v, want kind %v reason %q", i, got, w.kind, w.reason)
		}
	}
	if result.Summary.SpaceSavedGB != 5 {
		t.Fatalf("space saved = %d, want 5", result.Summary.SpaceSavedGB)
	}
}

func TestRunHonoursImportExclusionSetting(t *testing.T) {
	srv := testsupport.NewRadarrServer(t, "k", scenarioCatalog()...)
	cfg := testsupport.NewConfig(t,
		testsupport.WithRadarr(srv.URL, "k"),
		testsupport.WithRequests("Inception"),
	)
	cfg.Radarr.AddImportExclusion = true
	runner := newRunner(t, cfg, &recordingNotifier{})

	if _, err := runner.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	queries := srv.DeleteQueries()
	if len(queries) != 1 || !strings.Contains(queries[0], "addImportExclusion=true") {
		t.Fatalf("unexpected queries: %v", queries)
	}
}

func TestRunMissingRequestsFile(t *testing.T) {
	srv := testsupport.NewRadarrServer(t, "k", scenarioCatalog()...)
	cfg := testsupport.NewConfig(t, testsupport.WithRadarr(srv.URL, "k"))
	notifier := &recordingNotifier{}
	runner := newRunner(t, cfg, notifier)

	_, err := runner.Run(context.Background())
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
	if len(notifier.errors) != 1 || notifier.errors[0] != "request list" {
		t.Fatalf("unexpected error notifications: %v", notifier.errors)
	}
}

func TestRunRefusesConcurrentRun(t *testing.T) {
	srv := testsupport.NewRadarrServer(t, "k", scenarioCatalog()...)
	cfg := testsupport.NewConfig(t,
		testsupport.WithRadarr(srv.URL, "k"),
		testsupport.WithRequests("Inception"),
	)
	held, err := runlock.Acquire(cfg.LockPath())
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	t.Cleanup(func() { _ = held.Release() })

	runner := newRunner(t, cfg, &recordingNotifier{})
	if _, err := runner.Run(context.Background()); !errors.Is(err, runlock.ErrRunInProgress) {
		t.Fatalf("expected ErrRunInProgress, got %v", err)
	}
	if len(srv.Deleted()) != 0 {
		t.Fatal("locked run must not delete")
	}
}

func TestRunReportWriteFailureStillRecordsHistory(t *testing.T) {
	srv := testsupport.NewRadarrServer(t, "k", scenarioCatalog()...)
	cfg := testsupport.NewConfig(t,
		testsupport.WithRadarr(srv.URL, "k"),
		testsupport.WithRequests("Inception"),
	)
	if err := os.MkdirAll(cfg.Paths.ResultsDir, 0o755); err != nil {
		t.Fatal(err)
	}
	// A plain file where the dated directory belongs blocks the report write.
	if err := os.WriteFile(filepath.Join(cfg.Paths.ResultsDir, "2024_03_09"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	notifier := &recordingNotifier{}
	store := testsupport.MustOpenHistory(t, cfg)
	runner, err := purge.NewRunner(cfg, nil, purge.WithNotifier(notifier), purge.WithHistory(store), purge.WithClock(clock))
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}

	result, err := runner.Run(context.Background())
	if err == nil {
		t.Fatal("expected report write error")
	}
	if result == nil || result.Summary.DeletedCount != 1 {
		t.Fatalf("expected result with the deletion, got %+v", result)
	}
	runs, err := store.ListRuns(context.Background(), 0)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 1 || runs[0].DeletedReport != "" {
		t.Fatalf("unexpected history: %+v", runs)
	}
	if len(notifier.completed) != 0 || len(notifier.errors) != 1 || notifier.errors[0] != "report write" {
		t.Fatalf("unexpected notifications: completed=%v errors=%v", notifier.completed, notifier.errors)
	}
}

func TestNewRunnerRequiresAPIKey(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithRadarr("http://127.0.0.1:7878", ""))
	if _, err := purge.NewRunner(cfg, nil); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestPlanDoesNotDelete(t *testing.T) {
	srv := testsupport.NewRadarrServer(t, "k", scenarioCatalog()...)
	cfg := testsupport.NewConfig(t,
		testsupport.WithRadarr(srv.URL, "k"),
		testsupport.WithRequests("Inception", "Up", "Gone Girl"),
	)
	runner := newRunner(t, cfg, &recordingNotifier{})

	plan, err := runner.Plan(context.Background())
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if plan.Matched != 2 || plan.Missing != 1 || plan.TotalGB != 8 {
		t.Fatalf("unexpected plan totals: %+v", plan)
	}
	if !plan.Items[1].Match || plan.Items[1].Requested != "Up" || plan.Items[1].Path != "/movies/Up (2009)" {
		t.Fatalf("unexpected item: %+v", plan.Items[1])
	}
	if plan.Items[2].Match || plan.Items[2].Key != "Gone Girl" {
		t.Fatalf("unexpected item: %+v", plan.Items[2])
	}
	if len(srv.Deleted()) != 0 || len(srv.DeleteQueries()) != 0 {
		t.Fatal("plan must not delete")
	}
}
