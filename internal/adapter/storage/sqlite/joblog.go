package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bnema/recap/internal/domain"
	"github.com/bnema/recap/internal/port"
)

const (
	insertEventSQL = `INSERT INTO stage_events (job_id, activity, details, created_at) VALUES (?, ?, ?, ?)`

	selectEventsSQL = `SELECT job_id, activity, details, created_at FROM stage_events
WHERE job_id = ? ORDER BY id`

	selectLatestSQL = `SELECT job_id, activity, details, created_at FROM stage_events
WHERE job_id = ? AND activity = ? ORDER BY id DESC LIMIT 1`

	selectStateSQL = `SELECT job_id, state, last_activity, last_error, event_count, created_at, updated_at
FROM job_states WHERE job_id = ?`

	listStatesSQL = `SELECT job_id, state, last_activity, last_error, event_count, created_at, updated_at
FROM job_states ORDER BY updated_at DESC, job_id`

	upsertStateSQL = `INSERT INTO job_states (job_id, state, last_activity, last_error, event_count, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (job_id) DO UPDATE SET
    state = excluded.state,
    last_activity = excluded.last_activity,
    last_error = excluded.last_error,
    event_count = excluded.event_count,
    updated_at = excluded.updated_at`
)

// Append inserts the event and advances the job's state record in one
// transaction.
func (s *Store) Append(ctx context.Context, jobID string, activity domain.Activity, details map[string]any) (*domain.StageEvent, error) {
	if err := domain.ValidateJobID(jobID); err != nil {
		return nil, err
	}
	if !activity.Valid() {
		return nil, fmt.Errorf("append event: unknown activity %q", activity)
	}
	if details == nil {
		details = map[string]any{}
	}
	payload, err := json.Marshal(details)
	if err != nil {
		return nil, fmt.Errorf("encode %s details: %w", activity, err)
	}

	event := &domain.StageEvent{
		Timestamp: time.Now().UTC(),
		JobID:     jobID,
		Activity:  activity,
	}
	if err := json.Unmarshal(payload, &event.Details); err != nil {
		return nil, fmt.Errorf("decode %s details: %w", activity, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin append: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, insertEventSQL, jobID, string(activity), string(payload), formatTime(event.Timestamp)); err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}

	status, err := scanState(tx.QueryRowContext(ctx, selectStateSQL, jobID))
	if errors.Is(err, domain.ErrNotFound) {
		status = &domain.JobStatus{JobID: jobID}
	} else if err != nil {
		return nil, err
	}
	status.Apply(*event)
	event.Seq = status.EventCount

	if _, err := tx.ExecContext(ctx, upsertStateSQL,
		status.JobID,
		string(status.State),
		string(status.LastActivity),
		status.LastError,
		status.EventCount,
		formatTime(status.CreatedAt),
		formatTime(status.UpdatedAt),
	); err != nil {
		return nil, fmt.Errorf("update job state: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit append: %w", err)
	}
	return event, nil
}

func (s *Store) Query(ctx context.Context, jobID string) ([]domain.StageEvent, error) {
	rows, err := s.db.QueryContext(ctx, selectEventsSQL, jobID)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	events := []domain.StageEvent{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		e.Seq = len(events) + 1
		events = append(events, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

func (s *Store) FindLatest(ctx context.Context, jobID string, activity domain.Activity) (*domain.StageEvent, error) {
	e, err := scanEvent(s.db.QueryRowContext(ctx, selectLatestSQL, jobID, string(activity)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return e, err
}

func (s *Store) State(ctx context.Context, jobID string) (*domain.JobStatus, error) {
	return scanState(s.db.QueryRowContext(ctx, selectStateSQL, jobID))
}

func (s *Store) ListJobs(ctx context.Context) ([]domain.JobStatus, error) {
	rows, err := s.db.QueryContext(ctx, listStatesSQL)
	if err != nil {
		return nil, fmt.Errorf("list job states: %w", err)
	}
	defer rows.Close()

	var jobs []domain.JobStatus
	for rows.Next() {
		st, err := scanState(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate job states: %w", err)
	}
	return jobs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(row scanner) (*domain.StageEvent, error) {
	var (
		e         domain.StageEvent
		activity  string
		details   string
		createdAt string
	)
	if err := row.Scan(&e.JobID, &activity, &details, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan event: %w", err)
	}
	e.Activity = domain.Activity(activity)
	if err := json.Unmarshal([]byte(details), &e.Details); err != nil {
		return nil, fmt.Errorf("decode stored details of %s: %w", activity, err)
	}
	ts, err := parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	e.Timestamp = ts
	return &e, nil
}

func scanState(row scanner) (*domain.JobStatus, error) {
	var (
		st                   domain.JobStatus
		state, lastActivity  string
		createdAt, updatedAt string
	)
	err := row.Scan(&st.JobID, &state, &lastActivity, &st.LastError, &st.EventCount, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scan job state: %w", err)
	}
	st.State = domain.JobState(state)
	st.LastActivity = domain.Activity(lastActivity)
	if st.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if st.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &st, nil
}

var _ port.JobLog = (*Store)(nil)
