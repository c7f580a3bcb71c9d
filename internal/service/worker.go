package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/bnema/recap/internal/domain"
	"github.com/bnema/recap/internal/infrastructure/backoff"
	"github.com/bnema/recap/internal/infrastructure/logger"
	"github.com/bnema/recap/internal/port"
)

// Runner executes the convenience flows of a queued run.
type Runner interface {
	ProcessFull(ctx context.Context, jobID, sourcePath, originalName string, opts domain.RunOptions) (*domain.PipelineResult, error)
	ProcessAndSummarize(ctx context.Context, jobID, sourcePath, originalName string, opts domain.RunOptions) (*domain.PipelineResult, error)
}

// RunObserver tracks runs in flight.
type RunObserver interface {
	RunStarted()
	RunFinished()
}

type nopRunObserver struct{}

func (nopRunObserver) RunStarted()  {}
func (nopRunObserver) RunFinished() {}

const (
	idleMinDelay = 250 * time.Millisecond
	idleMaxDelay = 5 * time.Second
	claimBackoff = 2 * time.Second
)

// WorkerPool polls the run queue. Idle workers back off exponentially.
type WorkerPool struct {
	queue    port.RunQueue
	runner   Runner
	observer RunObserver
	workers  int
	idle     *backoff.Backoff
	wg       sync.WaitGroup
}

func NewWorkerPool(queue port.RunQueue, runner Runner, observer RunObserver, workers int) *WorkerPool {
	if observer == nil {
		observer = nopRunObserver{}
	}
	return &WorkerPool{
		queue:    queue,
		runner:   runner,
		observer: observer,
		workers:  max(workers, 1),
		idle:     backoff.New(idleMinDelay, idleMaxDelay, 2),
	}
}

func (wp *WorkerPool) Start(ctx context.Context) {
	// Runs left "running" by a previous process go back to pending.
	if err := wp.queue.ResetStalled(); err != nil {
		logger.Error.Printf("failed to reset stalled runs: %v", err)
	}

	for i := range wp.workers {
		wp.wg.Add(1)
		go wp.runWorker(ctx, i)
	}
	logger.Info.Printf("started %d workers", wp.workers)
}

// Wait blocks until every worker has returned after ctx is done.
func (wp *WorkerPool) Wait() {
	wp.wg.Wait()
}

func (wp *WorkerPool) runWorker(ctx context.Context, id int) {
	defer wp.wg.Done()
	idle := backoff.NewCounter(wp.idle)

	for {
		select {
		case <-ctx.Done():
			logger.Info.Printf("worker %d shutting down", id)
			return
		default:
		}

		run, err := wp.queue.Claim()
		if err != nil {
			logger.Error.Printf("worker %d: failed to claim run: %v", id, err)
			sleep(ctx, claimBackoff)
			continue
		}
		if run == nil {
			sleep(ctx, idle.Miss())
			continue
		}
		if n := idle.Misses(); n > 0 {
			logger.Debug.Printf("worker %d: claimed run %d after %d empty polls", id, run.ID, n)
		}
		idle.Reset()

		logger.Info.Printf("worker %d: processing run %d (job=%s, mode=%s, attempt=%d)", id, run.ID, run.JobID, run.Mode, run.Attempts)
		wp.processRun(ctx, run)
	}
}

func (wp *WorkerPool) processRun(ctx context.Context, run *domain.Run) {
	wp.observer.RunStarted()
	defer wp.observer.RunFinished()

	err := wp.execute(ctx, run)
	if err != nil {
		logger.Error.Printf("run %d (job %s) failed: %v", run.ID, run.JobID, err)
		if failErr := wp.queue.Fail(run.ID, err.Error()); failErr != nil {
			logger.Error.Printf("failed to mark run %d failed: %v", run.ID, failErr)
		}
		return
	}

	if err := wp.queue.Complete(run.ID); err != nil {
		logger.Error.Printf("failed to mark run %d done: %v", run.ID, err)
		return
	}
	logger.Info.Printf("run %d completed", run.ID)
}

func (wp *WorkerPool) execute(ctx context.Context, run *domain.Run) error {
	opts := domain.DefaultRunOptions()
	if run.OptionsJSON != "" {
		if err := json.Unmarshal([]byte(run.OptionsJSON), &opts); err != nil {
			return fmt.Errorf("decode run options: %w", err)
		}
	}

	var err error
	switch run.Mode {
	case domain.RunModeFull:
		_, err = wp.runner.ProcessFull(ctx, run.JobID, run.SourcePath, run.OriginalName, opts)
	case domain.RunModeSummarize:
		_, err = wp.runner.ProcessAndSummarize(ctx, run.JobID, run.SourcePath, run.OriginalName, opts)
	default:
		err = fmt.Errorf("unknown run mode: %s", run.Mode)
	}
	return err
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
