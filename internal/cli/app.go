package cli

import (
	"errors"
	"fmt"

	"github.com/bnema/recap/config"
	"github.com/bnema/recap/internal/adapter/detector/httpdetector"
	"github.com/bnema/recap/internal/adapter/media/ffmpeg"
	"github.com/bnema/recap/internal/adapter/storage/ndjson"
	"github.com/bnema/recap/internal/adapter/storage/sqlite"
	"github.com/bnema/recap/internal/adapter/transcriber/whisper"
	"github.com/bnema/recap/internal/infrastructure/logger"
	"github.com/bnema/recap/internal/infrastructure/metrics"
	"github.com/bnema/recap/internal/port"
	"github.com/bnema/recap/internal/service"
)

// App is the wired pipeline shared by every command. The run queue always
// lives in sqlite; the job log follows JOBLOG_BACKEND.
type App struct {
	Config   *config.Config
	Layout   service.Layout
	Store    *sqlite.Store
	Log      port.JobLog
	Queue    *sqlite.RunQueue
	Metrics  *metrics.Metrics
	Events   *service.EventBus
	Pipeline *service.Pipeline
	Jobs     *service.JobService
}

func NewApp(cfg *config.Config) (*App, error) {
	layout := service.NewLayout(cfg.DataDir)
	if err := layout.Ensure(); err != nil {
		return nil, fmt.Errorf("failed to create data directories: %w", err)
	}

	store, err := sqlite.NewStore(layout.Root())
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	var joblog port.JobLog = store
	if cfg.JobLogBackend == config.BackendNDJSON {
		nd, err := ndjson.NewStore(layout.Logs())
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("failed to open ndjson job log: %w", err)
		}
		joblog = nd
	}

	m := metrics.New()
	events := service.NewEventBus()
	queue := sqlite.NewRunQueue(store)

	deps := service.Dependencies{
		Log:            joblog,
		Media:          ffmpeg.NewTool(cfg.FFmpegBin, cfg.FFprobeBin),
		Transcriber:    whisper.NewTranscriber(cfg.WhisperBin, cfg.WhisperModel, cfg.TranscribeLanguage),
		Layout:         layout,
		MaxUploadBytes: cfg.MaxUploadBytes(),
		Observer:       m,
		Events:         events,
	}
	if cfg.DetectorURL != "" {
		deps.Detector = httpdetector.NewClient(cfg.DetectorURL, cfg.DetectorAPIKey, cfg.DetectorTimeout)
	} else {
		logger.Warn.Printf("DETECTOR_URL not set, moments come from the transcript heuristic")
	}

	logger.Info.Printf("data dir %s, job log backend %s", layout.Root(), cfg.JobLogBackend)

	return &App{
		Config:   cfg,
		Layout:   layout,
		Store:    store,
		Log:      joblog,
		Queue:    queue,
		Metrics:  m,
		Events:   events,
		Pipeline: service.NewPipeline(deps),
		Jobs:     service.NewJobService(queue, layout),
	}, nil
}

func (a *App) Close() error {
	var errs []error
	if a.Log != port.JobLog(a.Store) {
		errs = append(errs, a.Log.Close())
	}
	errs = append(errs, a.Store.Close())
	logger.Sync()
	return errors.Join(errs...)
}
