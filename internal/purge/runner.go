package purge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"prunarr/internal/config"
	"prunarr/internal/history"
	"prunarr/internal/logging"
	"prunarr/internal/notifications"
	"prunarr/internal/preflight"
	"prunarr/internal/reconcile"
	"prunarr/internal/report"
	"prunarr/internal/requests"
	"prunarr/internal/runlock"
	"prunarr/internal/services"
	"prunarr/internal/services/radarr"
)

// Runner executes reconciliation runs against one Radarr instance.
type Runner struct {
	cfg      *config.Config
	logger   *slog.Logger
	catalog  radarr.API
	notifier notifications.Service
	history  *history.Store
	now      func() time.Time
}

// Option customizes a Runner.
type Option func(*Runner)

// WithCatalog replaces the Radarr client built from config.
func WithCatalog(api radarr.API) Option {
	return func(r *Runner) {
		if api != nil {
			r.catalog = api
		}
	}
}

// WithNotifier replaces the ntfy service built from config.
func WithNotifier(svc notifications.Service) Option {
	return func(r *Runner) {
		if svc != nil {
			r.notifier = svc
		}
	}
}

// WithHistory records runs into store. Without it, runs are not persisted.
func WithHistory(store *history.Store) Option {
	return func(r *Runner) {
		r.history = store
	}
}

// WithClock overrides the time source used for run timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRunner wires a runner from config. The Radarr client is only built when
// no catalog option is supplied, and it requires an API key.
func NewRunner(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Runner, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "purge", "new runner", "config required", nil)
	}
	r := &Runner{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "purge"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.catalog == nil {
		if err := cfg.RequireAPIKey(); err != nil {
			return nil, err
		}
		client, err := radarr.NewFromConfig(cfg)
		if err != nil {
			return nil, err
		}
		r.catalog = client
	}
	if r.notifier == nil {
		r.notifier = notifications.NewService(cfg)
	}
	return r, nil
}

// Result describes a finished run.
type Result struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Requested  int
	Outcomes   []reconcile.Outcome
	Summary    reconcile.Summary
	Reports    report.Paths
	Collisions []string
}

// Run performs one full reconciliation: read the request list, fetch the
// catalog, delete matches, then write reports and history. A non-nil Result
// alongside an error means deletions happened but the reports could not be
// written.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	lock, err := runlock.Acquire(r.cfg.LockPath())
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			r.logger.Warn("failed to release run lock", logging.Error(err))
		}
	}()

	started := r.now()
	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, r.logger)

	logger.Info("run started",
		logging.String("requests_file", r.cfg.Paths.RequestsFile),
		logging.String("radarr_url", r.cfg.Radarr.URL),
		logging.String(logging.FieldEventType, "run_start"),
	)

	if err := r.checkOutputs(); err != nil {
		return nil, r.fail(ctx, logger, "preflight", err)
	}

	requested, err := requests.ReadFile(r.cfg.Paths.RequestsFile)
	if err != nil {
		return nil, r.fail(ctx, logger, "request list", err)
	}
	logger.Info("request list loaded", logging.Int("count", len(requested)))

	index, err := r.fetchIndex(ctx, logger)
	if err != nil {
		return nil, r.fail(ctx, logger, "catalog fetch", err)
	}

	outcomes, summary := reconcile.Reconcile(ctx, requested, index, r.deleter(),
		reconcile.WithLogger(logger),
		reconcile.WithRunStart(started),
	)

	result := &Result{
		RunID:      runID,
		StartedAt:  started,
		Requested:  len(requested),
		Outcomes:   outcomes,
		Summary:    summary,
		Collisions: index.Collisions(),
	}

	deletedDoc, notFoundDoc := report.Build(outcomes, summary)
	paths, writeErr := report.Write(r.cfg.Paths.ResultsDir, deletedDoc, notFoundDoc)
	if writeErr != nil {
		writeErr = fmt.Errorf("write reports: %w", writeErr)
	} else {
		result.Reports = paths
		logger.Info("reports written",
			logging.String("deleted_report", paths.Deleted),
			logging.String("not_found_report", paths.NotFound),
			logging.String(logging.FieldEventType, "reports_written"),
		)
	}
	result.FinishedAt = r.now()

	r.record(ctx, logger, result)

	if writeErr != nil {
		return result, r.fail(ctx, logger, "report write", writeErr)
	}

	if err := r.notifier.NotifyRunCompleted(ctx, notifications.RunSummary{
		RunID:        runID,
		Requested:    result.Requested,
		Deleted:      summary.DeletedCount,
		NotFound:     summary.NotFoundCount,
		SpaceSavedGB: summary.SpaceSavedGB,
		Duration:     result.FinishedAt.Sub(started),
	}); err != nil {
		logging.WarnWithContext(logger, "run notification failed", "notification_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "no push notification for this run"),
			logging.String(logging.FieldErrorHint, "verify notifications.ntfy_topic"),
		)
	}

	logger.Info("run finished",
		logging.Duration("duration", result.FinishedAt.Sub(started)),
		logging.String(logging.FieldEventType, "run_complete"),
	)
	return result, nil
}

func (r *Runner) checkOutputs() error {
	if err := r.cfg.EnsureDirectories(); err != nil {
		return services.Wrap(services.ErrConfiguration, "preflight", "ensure directories", "", err)
	}
	checks := []preflight.Result{
		preflight.CheckDirectoryAccess("Results directory", r.cfg.Paths.ResultsDir),
		preflight.CheckDirectoryAccess("State directory", r.cfg.Paths.StateDir),
	}
	if failed := preflight.Failed(checks); len(failed) > 0 {
		return services.Wrap(services.ErrConfiguration, "preflight", failed[0].Name, failed[0].Detail, nil)
	}
	return nil
}

// fetchIndex loads the whole catalog before any deletion starts.
func (r *Runner) fetchIndex(ctx context.Context, logger *slog.Logger) (*reconcile.Index, error) {
	movies, err := r.catalog.ListMovies(ctx)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "catalog", "list movies", "fetch failed before any deletion", err)
	}
	index := reconcile.BuildIndex(entriesFromMovies(movies))
	logger.Info("catalog fetched",
		logging.Int("movies", len(movies)),
		logging.Int("distinct_titles", index.Len()),
	)
	for _, key := range index.Collisions() {
		logging.WarnWithContext(logger, "catalog titles collide after normalization; later entry wins", "catalog_collision",
			logging.String("title", key),
			logging.String(logging.FieldImpact, "earlier movie with this title is unreachable by name"),
			logging.String(logging.FieldErrorHint, "rename one of the movies in Radarr to disambiguate"),
		)
	}
	return index, nil
}

func (r *Runner) deleter() reconcile.Deleter {
	opts := radarr.DeleteOptions{
		DeleteFiles:        true,
		AddImportExclusion: r.cfg.Radarr.AddImportExclusion,
	}
	return reconcile.DeleterFunc(func(ctx context.Context, entry reconcile.Entry) (reconcile.DeleteStatus, error) {
		err := r.catalog.DeleteMovie(ctx, entry.ID, opts)
		switch {
		case err == nil:
			return reconcile.DeleteOK, nil
		case errors.Is(err, services.ErrNotFound):
			return reconcile.DeleteNotFound, nil
		default:
			return reconcile.DeleteOK, err
		}
	})
}

func (r *Runner) record(ctx context.Context, logger *slog.Logger, result *Result) {
	if r.history == nil {
		return
	}
	run := history.Run{
		ID:              result.RunID,
		StartedAt:       result.StartedAt,
		FinishedAt:      result.FinishedAt,
		DateDeleted:     result.Summary.DateStamp(),
		Requested:       result.Requested,
		DeletedCount:    result.Summary.DeletedCount,
		NotFoundCount:   result.Summary.NotFoundCount,
		SpaceSavedBytes: result.Summary.SpaceSavedBytes,
		SpaceSavedGB:    result.Summary.SpaceSavedGB,
		DeletedReport:   result.Reports.Deleted,
		NotFoundReport:  result.Reports.NotFound,
		Outcomes:        result.Outcomes,
	}
	// Deletions are done by now; history is best effort.
	if err := r.history.RecordRun(context.WithoutCancel(ctx), run); err != nil {
		logging.WarnWithContext(logger, "failed to record run history", "history_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "run missing from prunarr history"),
			logging.String(logging.FieldErrorHint, "check state_dir permissions"),
		)
	}
}

// fail logs a fatal run error and pushes an error notification.
func (r *Runner) fail(ctx context.Context, logger *slog.Logger, stage string, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	logging.ErrorWithContext(logger, "run failed", "run_failed",
		logging.String(logging.FieldStage, stage),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, services.Hint(err)),
	)
	if notifyErr := r.notifier.NotifyError(context.WithoutCancel(ctx), err, stage); notifyErr != nil {
		logging.WarnWithContext(logger, "error notification failed", "notification_failed",
			logging.Error(notifyErr),
			logging.String(logging.FieldImpact, "failure was not pushed"),
		)
	}
	return err
}

func entriesFromMovies(movies []radarr.Movie) []reconcile.Entry {
	entries := make([]reconcile.Entry, 0, len(movies))
	for _, movie := range movies {
		size := movie.SizeOnDisk
		if size < 0 {
			size = 0
		}
		entries = append(entries, reconcile.Entry{
			ID:         movie.ID,
			Title:      movie.Title,
			Year:       movie.Year,
			Path:       movie.Path,
			SizeOnDisk: size,
		})
	}
	return entries
}
