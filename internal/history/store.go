package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"prunarr/internal/config"
	"prunarr/internal/reconcile"
)

// timeLayout is fixed width so started_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Run is one persisted reconciliation run.
type Run struct {
	ID              string
	StartedAt       time.Time
	FinishedAt      time.Time
	DateDeleted     string
	Requested       int
	DeletedCount    int
	NotFoundCount   int
	SpaceSavedBytes int64
	SpaceSavedGB    int64
	DeletedReport   string
	NotFoundReport  string
	Outcomes        []reconcile.Outcome
}

// Store manages run history persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database and applies migrations.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.HistoryPath())
}

// OpenPath opens the history database at an explicit path.
func OpenPath(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// RecordRun stores a run and its outcomes in one transaction.
func (s *Store) RecordRun(ctx context.Context, run Run) error {
	if run.ID == "" {
		return errors.New("record run: id required")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin record tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (
            id, started_at, finished_at, date_deleted, requested_count,
            deleted_count, not_found_count, space_saved_bytes, space_saved_gb,
            deleted_report, not_found_report
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.StartedAt.UTC().Format(timeLayout),
		run.FinishedAt.UTC().Format(timeLayout),
		run.DateDeleted,
		run.Requested,
		run.DeletedCount,
		run.NotFoundCount,
		run.SpaceSavedBytes,
		run.SpaceSavedGB,
		run.DeletedReport,
		run.NotFoundReport,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO run_outcomes (run_id, position, kind, title, year, path, size_on_disk_bytes, reason)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare outcome insert: %w", err)
	}
	defer stmt.Close()

	for i, outcome := range run.Outcomes {
		if _, err := stmt.ExecContext(ctx,
			run.ID, i, outcome.Kind.String(), outcome.Title, outcome.Year, outcome.Path,
			outcome.SizeOnDisk, string(outcome.Reason),
		); err != nil {
			return fmt.Errorf("insert outcome %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

const runColumns = `id, started_at, finished_at, date_deleted, requested_count, deleted_count,
    not_found_count, space_saved_bytes, space_saved_gb, deleted_report, not_found_report`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var run Run
	var started, finished string
	if err := row.Scan(
		&run.ID, &started, &finished, &run.DateDeleted, &run.Requested, &run.DeletedCount,
		&run.NotFoundCount, &run.SpaceSavedBytes, &run.SpaceSavedGB, &run.DeletedReport, &run.NotFoundReport,
	); err != nil {
		return nil, err
	}
	var err error
	if run.StartedAt, err = time.Parse(timeLayout, started); err != nil {
		return nil, fmt.Errorf("parse started_at: %w", err)
	}
	if run.FinishedAt, err = time.Parse(timeLayout, finished); err != nil {
		return nil, fmt.Errorf("parse finished_at: %w", err)
	}
	return &run, nil
}

// ListRuns returns the most recent runs first, without outcomes. A limit <= 0
// returns every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// GetRun returns a run with its outcomes, or nil when id is unknown.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	outcomes, err := s.Outcomes(ctx, id)
	if err != nil {
		return nil, err
	}
	run.Outcomes = outcomes
	return run, nil
}

// Outcomes returns a run's outcomes in request order.
func (s *Store) Outcomes(ctx context.Context, runID string) ([]reconcile.Outcome, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT kind, title, year, path, size_on_disk_bytes, reason
        FROM run_outcomes WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("list outcomes: %w", err)
	}
	defer rows.Close()

	var outcomes []reconcile.Outcome
	for rows.Next() {
		var kind, reason string
		var outcome reconcile.Outcome
		if err := rows.Scan(&kind, &outcome.Title, &outcome.Year, &outcome.Path, &outcome.SizeOnDisk, &reason); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		outcome.Kind = parseKind(kind)
		outcome.Reason = reconcile.NotFoundReason(reason)
		outcomes = append(outcomes, outcome)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outcomes: %w", err)
	}
	return outcomes, nil
}

func parseKind(value string) reconcile.OutcomeKind {
	switch value {
	case reconcile.OutcomeDeleted.String():
		return reconcile.OutcomeDeleted
	case reconcile.OutcomeNotFound.String():
		return reconcile.OutcomeNotFound
	default:
		return 0
	}
}
