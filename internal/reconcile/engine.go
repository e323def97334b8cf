package reconcile

import (
	"context"
	"log/slog"
	"time"

	"prunarr/internal/logging"
)

type options struct {
	logger   *slog.Logger
	runStart time.Time
}

// Option customizes a Reconcile call.
type Option func(*options)

// WithLogger sets the logger that receives per-title and summary lines.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithRunStart pins the run start used for Summary.DateDeleted.
func WithRunStart(t time.Time) Option {
	return func(o *options) {
		o.runStart = t
	}
}

// Reconcile resolves each requested title against index, in order, and deletes
// matches through deleter. Exactly one outcome is produced per request and no
// per-title failure stops the loop. Titles left unattempted because ctx ended
// are recorded as not found.
func Reconcile(ctx context.Context, requested []string, index *Index, deleter Deleter, opts ...Option) ([]Outcome, Summary) {
	o := options{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.runStart.IsZero() {
		o.runStart = time.Now()
	}
	logger := o.logger

	outcomes := make([]Outcome, 0, len(requested))
	for i, title := range requested {
		key := Normalize(title)
		outcome := resolve(ctx, logger, key, index, deleter)
		logOutcome(logger, i+1, len(requested), outcome)
		outcomes = append(outcomes, outcome)
	}

	summary := Summarize(outcomes, o.runStart)
	logger.Info("movies deleted",
		logging.Int("count", summary.DeletedCount),
		logging.String(logging.FieldEventType, "run_summary"))
	logger.Info("space saved",
		logging.Int64("gb", summary.SpaceSavedGB),
		logging.Int64("bytes", summary.SpaceSavedBytes),
		logging.String(logging.FieldEventType, "run_summary"))
	logger.Info("movies could not be found",
		logging.Int("count", summary.NotFoundCount),
		logging.String(logging.FieldEventType, "run_summary"))
	return outcomes, summary
}

func resolve(ctx context.Context, logger *slog.Logger, key string, index *Index, deleter Deleter) Outcome {
	entry, ok := index.Lookup(key)
	if !ok {
		return NotFound(key, ReasonNotInCatalog)
	}
	if err := ctx.Err(); err != nil {
		logging.WarnWithContext(logger, "run canceled before delete; recorded as not found", "movie_delete_skipped",
			logging.String("title", key),
			logging.Error(err),
			logging.String(logging.FieldImpact, "movie kept in catalog"),
			logging.String(logging.FieldErrorHint, "rerun to process remaining titles"),
		)
		return NotFound(key, ReasonCanceled)
	}
	if deleter == nil {
		return NotFound(key, ReasonDeleteFailed)
	}
	status, err := deleter.Delete(ctx, entry)
	if err != nil {
		logging.WarnWithContext(logger, "movie delete failed; recorded as not found", "movie_delete_failed",
			logging.String("title", key),
			logging.Int64("movie_id", entry.ID),
			logging.Error(err),
			logging.String(logging.FieldImpact, "movie kept in catalog"),
			logging.String(logging.FieldErrorHint, "check Radarr reachability and rerun for this title"),
		)
		return NotFound(key, ReasonDeleteFailed)
	}
	if status == DeleteNotFound {
		logger.Info("movie already gone from catalog",
			logging.String("title", key),
			logging.Int64("movie_id", entry.ID),
			logging.Int("year", entry.Year),
			logging.String("path", entry.Path),
			logging.String(logging.FieldEventType, "movie_absent_on_delete"),
		)
		return NotFound(key, ReasonAbsentOnDelete)
	}
	return Deleted(key, entry)
}

func logOutcome(logger *slog.Logger, position, total int, outcome Outcome) {
	if outcome.Kind == OutcomeDeleted {
		logger.Info("movie deleted",
			logging.String("title", outcome.Title),
			logging.Int("year", outcome.Year),
			logging.String("path", outcome.Path),
			logging.Int64("size_on_disk_bytes", outcome.SizeOnDisk),
			logging.Float64("size_on_disk_gb", GB(outcome.SizeOnDisk)),
			logging.Int("position", position),
			logging.Int("total", total),
			logging.String(logging.FieldEventType, "movie_deleted"),
		)
		return
	}
	logger.Info("movie not found",
		logging.String("title", outcome.Title),
		logging.String("reason", string(outcome.Reason)),
		logging.Int("position", position),
		logging.Int("total", total),
		logging.String(logging.FieldEventType, "movie_not_found"),
	)
}
