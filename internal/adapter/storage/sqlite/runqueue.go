package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/bnema/recap/internal/domain"
	"github.com/bnema/recap/internal/port"
)

const (
	runColumns = `id, job_id, mode, source_path, original_name, options_json, status, error_message,
attempts, created_at, started_at, completed_at`

	insertRunSQL = `INSERT INTO pipeline_runs (job_id, mode, source_path, original_name, options_json, status, created_at)
VALUES (?, ?, ?, ?, ?, 'pending', ?) RETURNING ` + runColumns

	claimRunSQL = `UPDATE pipeline_runs SET status = 'running', attempts = attempts + 1, started_at = ?
WHERE id = (SELECT id FROM pipeline_runs WHERE status = 'pending' ORDER BY id LIMIT 1)
RETURNING ` + runColumns

	completeRunSQL = `UPDATE pipeline_runs SET status = 'done', error_message = '', completed_at = ? WHERE id = ?`

	failRunSQL = `UPDATE pipeline_runs SET status = 'failed', error_message = ?, completed_at = ? WHERE id = ?`

	resetStalledSQL = `UPDATE pipeline_runs SET status = 'pending', started_at = NULL WHERE status = 'running'`

	listRunsByJobSQL = `SELECT ` + runColumns + ` FROM pipeline_runs WHERE job_id = ? ORDER BY id`
)

// RunQueue persists asynchronous pipeline runs next to the event log.
type RunQueue struct {
	db *sql.DB
}

func NewRunQueue(store *Store) *RunQueue {
	return &RunQueue{db: store.db}
}

func (q *RunQueue) Enqueue(run *domain.Run) (*domain.Run, error) {
	ctx := context.Background()
	if err := domain.ValidateJobID(run.JobID); err != nil {
		return nil, err
	}
	options := run.OptionsJSON
	if options == "" {
		options = "{}"
	}
	return scanRun(q.db.QueryRowContext(ctx, insertRunSQL,
		run.JobID,
		string(run.Mode),
		run.SourcePath,
		run.OriginalName,
		options,
		formatTime(time.Now()),
	))
}

func (q *RunQueue) Claim() (*domain.Run, error) {
	ctx := context.Background()
	run, err := scanRun(q.db.QueryRowContext(ctx, claimRunSQL, formatTime(time.Now())))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return run, nil
}

func (q *RunQueue) Complete(runID int64) error {
	ctx := context.Background()
	_, err := q.db.ExecContext(ctx, completeRunSQL, formatTime(time.Now()), runID)
	return err
}

func (q *RunQueue) Fail(runID int64, errMsg string) error {
	ctx := context.Background()
	_, err := q.db.ExecContext(ctx, failRunSQL, errMsg, formatTime(time.Now()), runID)
	return err
}

func (q *RunQueue) ResetStalled() error {
	ctx := context.Background()
	_, err := q.db.ExecContext(ctx, resetStalledSQL)
	return err
}

func (q *RunQueue) ListByJob(jobID string) ([]domain.Run, error) {
	ctx := context.Background()
	rows, err := q.db.QueryContext(ctx, listRunsByJobSQL, jobID)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

func scanRun(row scanner) (*domain.Run, error) {
	var (
		r                      domain.Run
		mode, status           string
		createdAt              string
		startedAt, completedAt sql.NullString
	)
	err := row.Scan(
		&r.ID,
		&r.JobID,
		&mode,
		&r.SourcePath,
		&r.OriginalName,
		&r.OptionsJSON,
		&status,
		&r.ErrorMessage,
		&r.Attempts,
		&createdAt,
		&startedAt,
		&completedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan run: %w", err)
	}
	r.Mode = domain.RunMode(mode)
	r.Status = domain.RunStatus(status)
	if r.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if r.StartedAt, err = parseNullTime(startedAt); err != nil {
		return nil, err
	}
	if r.CompletedAt, err = parseNullTime(completedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

var _ port.RunQueue = (*RunQueue)(nil)
