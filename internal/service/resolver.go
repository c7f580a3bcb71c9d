package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/bnema/recap/internal/domain"
	"github.com/bnema/recap/internal/port"
)

// Resolver finds the completed event a stage depends on.
type Resolver struct {
	log port.JobLog
}

func NewResolver(log port.JobLog) *Resolver {
	return &Resolver{log: log}
}

// Require returns the latest event of the required activity, or a
// *domain.PrerequisiteMissingError naming it.
func (r *Resolver) Require(ctx context.Context, jobID string, stage domain.Stage, required domain.Activity) (*domain.StageEvent, error) {
	event, err := r.log.FindLatest(ctx, jobID, required)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, &domain.PrerequisiteMissingError{JobID: jobID, Stage: stage, Required: required}
	}
	if err != nil {
		return nil, fmt.Errorf("resolve %s for %s: %w", required, stage, err)
	}
	return event, nil
}

// Resolve decodes the details of the required event into v.
func (r *Resolver) Resolve(ctx context.Context, jobID string, stage domain.Stage, required domain.Activity, v any) error {
	event, err := r.Require(ctx, jobID, stage, required)
	if err != nil {
		return err
	}
	if err := event.Decode(v); err != nil {
		return fmt.Errorf("job %s: %w", jobID, err)
	}
	return nil
}
