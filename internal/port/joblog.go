package port

import (
	"context"

	"github.com/bnema/recap/internal/domain"
)

// JobLog is the append-only per-job event store. It is the only source of
// pipeline truth.
type JobLog interface {
	Append(ctx context.Context, jobID string, activity domain.Activity, details map[string]any) (*domain.StageEvent, error)
	// Query returns the job's events in append order, or an empty slice for
	// unknown jobs.
	Query(ctx context.Context, jobID string) ([]domain.StageEvent, error)
	// FindLatest returns domain.ErrNotFound when no event of that kind exists.
	FindLatest(ctx context.Context, jobID string, activity domain.Activity) (*domain.StageEvent, error)
	State(ctx context.Context, jobID string) (*domain.JobStatus, error)
	ListJobs(ctx context.Context) ([]domain.JobStatus, error)
	Close() error
}
