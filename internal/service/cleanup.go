package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bnema/recap/internal/domain"
	"github.com/bnema/recap/internal/infrastructure/logger"
	"github.com/bnema/recap/internal/port"
)

// Cleaner deletes a job's file artifacts. It never touches the job log.
type Cleaner struct {
	log      port.JobLog
	layout   Layout
	observer StageObserver
	events   EventPublisher
}

func NewCleaner(log port.JobLog, layout Layout, observer StageObserver, events EventPublisher) *Cleaner {
	if observer == nil {
		observer = nopObserver{}
	}
	if events == nil {
		events = nopPublisher{}
	}
	return &Cleaner{log: log, layout: layout, observer: observer, events: events}
}

// Cleanup removes segments, thumbnails, outputs, temp files and the stored
// upload of a job. Missing artifacts count as zero, so running it twice is
// safe. Jobs with no events get a report but no cleanup_completed event.
func (c *Cleaner) Cleanup(ctx context.Context, jobID string) (*domain.CleanupReport, error) {
	report := &domain.CleanupReport{
		JobID: jobID,
		Deleted: map[string]int{
			domain.CleanupSegments:   0,
			domain.CleanupThumbnails: 0,
			domain.CleanupOutputs:    0,
			domain.CleanupTemp:       0,
			domain.CleanupUploads:    0,
		},
	}

	var errs []error
	count := func(category string, n int, err error) {
		report.Deleted[category] += n
		report.Total += n
		if err != nil {
			errs = append(errs, err)
		}
	}

	n, err := removeTree(c.layout.SegmentDir(jobID))
	count(domain.CleanupSegments, n, err)
	n, err = removeTree(c.layout.ThumbnailDir(jobID))
	count(domain.CleanupThumbnails, n, err)
	n, err = removeFiles(c.layout.SummaryPath(jobID), c.layout.PreviewPath(jobID))
	count(domain.CleanupOutputs, n, err)
	n, err = removeFiles(c.layout.TempFiles(jobID)...)
	count(domain.CleanupTemp, n, err)

	// Job ids never contain dots, so this cannot match another job's upload.
	uploads, err := filepath.Glob(filepath.Join(c.layout.Uploads(), jobID+".*"))
	if err != nil {
		errs = append(errs, err)
	}
	n, err = removeFiles(uploads...)
	count(domain.CleanupUploads, n, err)

	if err := errors.Join(errs...); err != nil {
		return report, fmt.Errorf("cleanup job %s: %w", jobID, err)
	}

	for category, deleted := range report.Deleted {
		c.observer.ObserveCleanup(category, deleted)
	}

	events, err := c.log.Query(ctx, jobID)
	if err != nil {
		return report, err
	}
	if len(events) == 0 {
		return report, nil
	}

	details, err := domain.NewDetails(report)
	if err != nil {
		return report, err
	}
	event, err := c.log.Append(context.WithoutCancel(ctx), jobID, domain.ActivityCleanupCompleted, details)
	if err != nil {
		return report, fmt.Errorf("append %s: %w", domain.ActivityCleanupCompleted, err)
	}
	c.events.Publish(jobID, *event)
	logger.Info.Printf("job %s: cleanup removed %d files", jobID, report.Total)
	return report, nil
}

// removeTree deletes dir and returns how many regular files it held.
func removeTree(dir string) (int, error) {
	n := 0
	err := filepath.WalkDir(dir, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			n++
		}
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if err := os.RemoveAll(dir); err != nil {
		return 0, err
	}
	return n, nil
}

func removeFiles(paths ...string) (int, error) {
	n := 0
	for _, path := range paths {
		err := os.Remove(path)
		switch {
		case err == nil:
			n++
		case errors.Is(err, fs.ErrNotExist):
		default:
			return n, err
		}
	}
	return n, nil
}
