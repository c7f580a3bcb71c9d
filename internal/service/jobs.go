package service

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/bnema/recap/internal/domain"
	"github.com/bnema/recap/internal/infrastructure/logger"
	"github.com/bnema/recap/internal/port"
	"github.com/bnema/recap/internal/validation"
)

// Submission is an uploaded recording waiting to be queued. TempPath must
// live on the same file system as the uploads directory.
type Submission struct {
	JobID        string
	OriginalName string
	TempPath     string
	Mode         domain.RunMode
	Options      domain.RunOptions
}

// JobService stores uploads and queues asynchronous runs.
type JobService struct {
	queue  port.RunQueue
	layout Layout
}

func NewJobService(queue port.RunQueue, layout Layout) *JobService {
	return &JobService{queue: queue, layout: layout}
}

// Submit moves the upload under uploads/{jobId}{ext} and enqueues a run. The
// job log is untouched until a worker ingests the file.
func (s *JobService) Submit(sub Submission) (*domain.Run, error) {
	if sub.JobID == "" {
		sub.JobID = domain.NewJobID()
	}
	if err := checkJobID(sub.JobID); err != nil {
		return nil, err
	}
	switch sub.Mode {
	case "":
		sub.Mode = domain.RunModeSummarize
	case domain.RunModeFull, domain.RunModeSummarize:
	default:
		return nil, domain.NewValidationError("mode", "unknown mode %q", sub.Mode)
	}
	name := validation.SanitizeFilename(sub.OriginalName)
	if err := validation.ValidateExtension(name); err != nil {
		return nil, domain.NewValidationError("file", "%v", err)
	}
	if err := domain.Validate(sub.Options); err != nil {
		return nil, err
	}
	opts, err := json.Marshal(sub.Options)
	if err != nil {
		return nil, fmt.Errorf("encode run options: %w", err)
	}

	if err := os.MkdirAll(s.layout.Uploads(), 0755); err != nil {
		logger.Error.Printf("failed to create upload directory: %v", err)
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	uploadPath := s.layout.UploadPath(sub.JobID, name)
	if err := os.Rename(sub.TempPath, uploadPath); err != nil {
		logger.Error.Printf("failed to save upload %s: %v", name, err)
		return nil, fmt.Errorf("failed to save upload: %w", err)
	}

	run, err := s.queue.Enqueue(&domain.Run{
		JobID:        sub.JobID,
		Mode:         sub.Mode,
		SourcePath:   uploadPath,
		OriginalName: name,
		OptionsJSON:  string(opts),
	})
	if err != nil {
		os.Remove(uploadPath)
		logger.Error.Printf("failed to enqueue run for job %s: %v", sub.JobID, err)
		return nil, fmt.Errorf("failed to enqueue run: %w", err)
	}

	logger.Info.Printf("job %s queued: file=%s, mode=%s, run=%d", sub.JobID, name, sub.Mode, run.ID)
	return run, nil
}

func (s *JobService) Runs(jobID string) ([]domain.Run, error) {
	if err := checkJobID(jobID); err != nil {
		return nil, err
	}
	return s.queue.ListByJob(jobID)
}
