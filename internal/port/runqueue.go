package port

import "github.com/bnema/recap/internal/domain"

type RunQueue interface {
	Enqueue(run *domain.Run) (*domain.Run, error)
	// Claim returns nil without error when nothing is pending.
	Claim() (*domain.Run, error)
	Complete(runID int64) error
	Fail(runID int64, errMsg string) error
	ResetStalled() error
	ListByJob(jobID string) ([]domain.Run, error)
}
