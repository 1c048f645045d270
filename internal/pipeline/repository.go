package pipeline

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/andresuchdata/tms-dashboard/internal/repository/postgres"
)

// RunRecorder persists fetch runs and their week jobs.
type RunRecorder interface {
	CreateRun(ctx context.Context, run *FetchRun) error
	UpdateRun(ctx context.Context, run *FetchRun) error
	CreateWeekJob(ctx context.Context, job *WeekJob) error
	UpdateWeekJob(ctx context.Context, job *WeekJob) error
}

// NopRecorder is used when no database is configured.
type NopRecorder struct{}

func (NopRecorder) CreateRun(context.Context, *FetchRun) error    { return nil }
func (NopRecorder) UpdateRun(context.Context, *FetchRun) error    { return nil }
func (NopRecorder) CreateWeekJob(context.Context, *WeekJob) error { return nil }
func (NopRecorder) UpdateWeekJob(context.Context, *WeekJob) error { return nil }

// Repository handles database operations for fetch tracking
type Repository struct {
	db *postgres.DB
}

// NewRepository creates a new fetch run repository. Writes go through
// db.WithTx so they share its concurrency limit.
func NewRepository(db *postgres.DB) *Repository {
	return &Repository{db: db}
}

// CreateRun inserts a new fetch run record
func (r *Repository) CreateRun(ctx context.Context, run *FetchRun) error {
	query := `
		INSERT INTO fetch_runs (
			id, name, range_start, range_end, status,
			total_weeks, failed_weeks, total_orders, started_at
		) VALUES (:id, :name, :range_start, :range_end, :status,
			:total_weeks, :failed_weeks, :total_orders, :started_at)
	`

	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.NamedExecContext(ctx, query, run)
		return err
	})
}

// UpdateRun updates an existing fetch run
func (r *Repository) UpdateRun(ctx context.Context, run *FetchRun) error {
	query := `
		UPDATE fetch_runs
		SET status = :status, failed_weeks = :failed_weeks, total_orders = :total_orders,
		    completed_at = :completed_at, error_message = :error_message
		WHERE id = :id
	`

	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.NamedExecContext(ctx, query, run)
		return err
	})
}

// GetRun retrieves a fetch run by ID. It returns nil when the run does not exist.
func (r *Repository) GetRun(ctx context.Context, id string) (*FetchRun, error) {
	query := `
		SELECT id, name, range_start, range_end, status, total_weeks,
		       failed_weeks, total_orders, started_at, completed_at, error_message
		FROM fetch_runs
		WHERE id = $1
	`

	run := &FetchRun{}
	err := r.db.GetContext(ctx, run, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return run, nil
}

// ListRecentRuns returns the latest runs, newest first
func (r *Repository) ListRecentRuns(ctx context.Context, limit int) ([]FetchRun, error) {
	query := `
		SELECT id, name, range_start, range_end, status, total_weeks,
		       failed_weeks, total_orders, started_at, completed_at, error_message
		FROM fetch_runs
		ORDER BY started_at DESC
		LIMIT $1
	`

	var runs []FetchRun
	if err := r.db.SelectContext(ctx, &runs, query, limit); err != nil {
		return nil, err
	}
	return runs, nil
}

// CreateWeekJob inserts a week job record
func (r *Repository) CreateWeekJob(ctx context.Context, job *WeekJob) error {
	query := `
		INSERT INTO fetch_week_jobs (run_id, week_key, status, orders, attempts, error_message)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		return tx.QueryRowxContext(
			ctx, query,
			job.RunID, job.WeekKey, job.Status, job.Orders, job.Attempts, job.ErrorMessage,
		).Scan(&job.ID)
	})
}

// UpdateWeekJob updates an existing week job
func (r *Repository) UpdateWeekJob(ctx context.Context, job *WeekJob) error {
	query := `
		UPDATE fetch_week_jobs
		SET status = :status, orders = :orders, attempts = :attempts,
		    error_message = :error_message, processed_at = :processed_at
		WHERE id = :id
	`

	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.NamedExecContext(ctx, query, job)
		return err
	})
}

// GetWeekJobsByRunID retrieves all week jobs of a run
func (r *Repository) GetWeekJobsByRunID(ctx context.Context, runID string) ([]WeekJob, error) {
	query := `
		SELECT id, run_id, week_key, status, orders, attempts, error_message, processed_at
		FROM fetch_week_jobs
		WHERE run_id = $1
		ORDER BY week_key
	`

	var jobs []WeekJob
	if err := r.db.SelectContext(ctx, &jobs, query, runID); err != nil {
		return nil, err
	}
	return jobs, nil
}
