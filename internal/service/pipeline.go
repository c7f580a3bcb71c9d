package service

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/bnema/recap/internal/domain"
	"github.com/bnema/recap/internal/infrastructure/logger"
	"github.com/bnema/recap/internal/port"
	"github.com/bnema/recap/internal/validation"
)

// Stage outcomes reported to the StageObserver.
const (
	OutcomeCompleted = "completed"
	OutcomeFailed    = "failed"
	OutcomeRejected  = "rejected"
)

// StageObserver records stage timings and counters.
type StageObserver interface {
	ObserveStage(stage, outcome string, elapsed time.Duration)
	ObserveFallback(reason string)
	ObserveCleanup(category string, deleted int)
}

type nopObserver struct{}

func (nopObserver) ObserveStage(string, string, time.Duration) {}
func (nopObserver) ObserveFallback(string)                     {}
func (nopObserver) ObserveCleanup(string, int)                 {}

type nopPublisher struct{}

func (nopPublisher) Publish(string, domain.StageEvent) {}

// Dependencies wires a Pipeline. Detector may be nil, in which case moment
// analysis always uses the heuristic fallback.
type Dependencies struct {
	Log            port.JobLog
	Media          port.MediaTool
	Transcriber    port.Transcriber
	Detector       port.MomentDetector
	Layout         Layout
	MaxUploadBytes int64
	Observer       StageObserver
	Events         EventPublisher
}

// Pipeline runs the stages of a job. Each stage resolves its inputs from the
// job log, calls one collaborator and appends exactly one completion or
// failure event before returning.
type Pipeline struct {
	log            port.JobLog
	resolver       *Resolver
	media          port.MediaTool
	transcriber    port.Transcriber
	detector       port.MomentDetector
	layout         Layout
	maxUploadBytes int64
	observer       StageObserver
	events         EventPublisher
	cleaner        *Cleaner
}

func NewPipeline(deps Dependencies) *Pipeline {
	p := &Pipeline{
		log:            deps.Log,
		resolver:       NewResolver(deps.Log),
		media:          deps.Media,
		transcriber:    deps.Transcriber,
		detector:       deps.Detector,
		layout:         deps.Layout,
		maxUploadBytes: deps.MaxUploadBytes,
		observer:       deps.Observer,
		events:         deps.Events,
	}
	if p.observer == nil {
		p.observer = nopObserver{}
	}
	if p.events == nil {
		p.events = nopPublisher{}
	}
	p.cleaner = NewCleaner(deps.Log, deps.Layout, p.observer, p.events)
	return p
}

func (p *Pipeline) Layout() Layout {
	return p.layout
}

// observe reports a finished stage. Rejections are errors raised before the
// stage logged anything.
func (p *Pipeline) observe(stage domain.Stage, start time.Time, err error) {
	outcome := OutcomeCompleted
	switch {
	case err == nil:
	case domain.IsValidation(err), domain.IsPrerequisiteMissing(err):
		outcome = OutcomeRejected
	default:
		outcome = OutcomeFailed
	}
	p.observer.ObserveStage(string(stage), outcome, time.Since(start))
}

// record appends an event and publishes it. Log writes outlive the caller's
// deadline so a timed out stage still gets its failure event.
func (p *Pipeline) record(ctx context.Context, jobID string, activity domain.Activity, payload any) (*domain.StageEvent, error) {
	details, err := domain.NewDetails(payload)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", activity, err)
	}
	return p.appendDetails(ctx, jobID, activity, details)
}

func (p *Pipeline) appendDetails(ctx context.Context, jobID string, activity domain.Activity, details map[string]any) (*domain.StageEvent, error) {
	event, err := p.log.Append(context.WithoutCancel(ctx), jobID, activity, details)
	if err != nil {
		logger.Error.Printf("job %s: failed to append %s: %v", jobID, activity, err)
		return nil, fmt.Errorf("append %s: %w", activity, err)
	}
	p.events.Publish(jobID, *event)
	return event, nil
}

// fail removes the stage's partial outputs, logs the failure event and
// returns cause.
func (p *Pipeline) fail(ctx context.Context, jobID string, activity domain.Activity, cause error, partial ...string) error {
	for _, path := range partial {
		removeQuietly(path)
	}
	logger.Error.Printf("job %s: %s: %s", jobID, activity, logger.SanitizeForLog(logger.Truncate(cause.Error(), logger.MaxFieldLength)))
	if _, err := p.appendDetails(ctx, jobID, activity, domain.FailureDetails(cause)); err != nil {
		return errors.Join(cause, err)
	}
	return cause
}

func removeQuietly(path string) {
	if path == "" {
		return
	}
	if err := os.RemoveAll(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn.Printf("failed to remove partial output %s: %v", path, err)
	}
}

func checkJobID(jobID string) error {
	if err := domain.ValidateJobID(jobID); err != nil {
		return domain.NewValidationError("jobId", "%q: %v", jobID, err)
	}
	return nil
}

// Ingest validates the source recording and records its metadata. Nothing is
// logged when the file is rejected.
func (p *Pipeline) Ingest(ctx context.Context, jobID, sourcePath, originalName string) (result *domain.IngestResult, err error) {
	start := time.Now()
	defer func() { p.observe(domain.StageIngest, start, err) }()

	if err := checkJobID(jobID); err != nil {
		return nil, err
	}
	if originalName == "" {
		originalName = filepath.Base(sourcePath)
	}
	originalName = validation.SanitizeFilename(originalName)

	info, err := os.Stat(sourcePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.NewValidationError("source", "file %s does not exist", sourcePath)
		}
		return nil, fmt.Errorf("stat source: %w", err)
	}
	if info.IsDir() {
		return nil, domain.NewValidationError("source", "%s is a directory", sourcePath)
	}
	if info.Size() == 0 {
		return nil, domain.NewValidationError("source", "file is empty")
	}
	if p.maxUploadBytes > 0 && info.Size() > p.maxUploadBytes {
		return nil, domain.NewValidationError("source", "file is %s, limit is %s",
			domain.FormatSize(info.Size()), domain.FormatSize(p.maxUploadBytes))
	}
	if err := validation.ValidateVideoFile(sourcePath, originalName); err != nil {
		return nil, domain.NewValidationError("source", "%v", err)
	}

	md, err := p.media.Probe(ctx, sourcePath)
	if err != nil {
		return nil, err
	}
	if !md.HasVideo {
		return nil, domain.NewValidationError("source", "no video stream found")
	}
	if md.Duration <= 0 {
		return nil, domain.NewValidationError("source", "video duration is zero")
	}
	if md.Size == 0 {
		md.Size = info.Size()
	}
	md.Fingerprint, err = fingerprint(sourcePath)
	if err != nil {
		return nil, err
	}

	if _, err := p.record(ctx, jobID, domain.ActivityProcessingStarted, domain.IngestStarted{
		FileName:   originalName,
		SourcePath: sourcePath,
		Size:       info.Size(),
	}); err != nil {
		return nil, err
	}

	result = &domain.IngestResult{SourcePath: sourcePath, OriginalName: originalName, Metadata: *md}
	if _, err := p.record(ctx, jobID, domain.ActivityMetadataExtracted, result); err != nil {
		return nil, err
	}
	logger.Info.Printf("job %s: ingested %s (%s, %dx%d, %s)", jobID, originalName,
		domain.FormatDuration(md.Duration), md.Width, md.Height, domain.FormatSize(md.Size))
	return result, nil
}

// fingerprint is the hex BLAKE2b-256 digest of the file.
func fingerprint(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open source: %w", err)
	}
	defer f.Close()

	h, err := blake2b.New256(nil)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash source: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// ExtractAudio writes the mono 16 kHz track the transcriber expects. A source
// without audio completes with an empty AudioPath.
func (p *Pipeline) ExtractAudio(ctx context.Context, jobID string) (result *domain.AudioResult, err error) {
	start := time.Now()
	defer func() { p.observe(domain.StageAudio, start, err) }()

	var ingest domain.IngestResult
	if err := p.resolver.Resolve(ctx, jobID, domain.StageAudio, domain.ActivityMetadataExtracted, &ingest); err != nil {
		return nil, err
	}

	result = &domain.AudioResult{SourcePath: ingest.SourcePath, HasAudio: ingest.Metadata.HasAudio}
	if ingest.Metadata.HasAudio {
		out := p.layout.AudioPath(jobID)
		if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
			return nil, p.fail(ctx, jobID, domain.ActivityAudioExtractionFailed, fmt.Errorf("create temp directory: %w", err))
		}
		if err := p.media.ExtractAudio(ctx, ingest.SourcePath, out); err != nil {
			return nil, p.fail(ctx, jobID, domain.ActivityAudioExtractionFailed, err, out)
		}
		info, err := os.Stat(out)
		if err != nil {
			return nil, p.fail(ctx, jobID, domain.ActivityAudioExtractionFailed, fmt.Errorf("audio output missing: %w", err), out)
		}
		result.AudioPath = out
		result.Size = info.Size()
	} else {
		logger.Warn.Printf("job %s: source has no audio stream, transcript will be empty", jobID)
	}

	if _, err := p.record(ctx, jobID, domain.ActivityAudioExtractionCompleted, result); err != nil {
		return nil, err
	}
	return result, nil
}

// Transcribe turns the extracted audio into a transcript.
func (p *Pipeline) Transcribe(ctx context.Context, jobID string, opts domain.TranscriptionOptions) (result *domain.TranscriptionResult, err error) {
	start := time.Now()
	defer func() { p.observe(domain.StageTranscribe, start, err) }()

	if err := domain.Validate(opts); err != nil {
		return nil, err
	}
	var audio domain.AudioResult
	if err := p.resolver.Resolve(ctx, jobID, domain.StageTranscribe, domain.ActivityAudioExtractionCompleted, &audio); err != nil {
		return nil, err
	}
	if _, err := p.record(ctx, jobID, domain.ActivityTranscriptionStarted, map[string]any{"audioPath": audio.AudioPath}); err != nil {
		return nil, err
	}

	result = &domain.TranscriptionResult{AudioPath: audio.AudioPath}
	if audio.AudioPath != "" {
		tr, err := p.transcriber.Transcribe(ctx, audio.AudioPath, opts)
		if err != nil {
			return nil, p.fail(ctx, jobID, domain.ActivityTranscriptionFailed, err)
		}
		result.Transcript = *tr
	}
	if result.Transcript.Segments == nil {
		result.Transcript.Segments = []domain.TranscriptSegment{}
	}

	if _, err := p.record(ctx, jobID, domain.ActivityTranscriptionCompleted, result); err != nil {
		return nil, err
	}
	logger.Info.Printf("job %s: transcribed %d words in %d segments", jobID, result.Transcript.WordCount, len(result.Transcript.Segments))
	return result, nil
}

// AnalyzeMoments asks the detector for moments. An unusable response
// switches to HeuristicMoments; only transport and service failures fail the
// stage.
func (p *Pipeline) AnalyzeMoments(ctx context.Context, jobID string, opts domain.DetectionOptions) (result *domain.DetectionResult, err error) {
	start := time.Now()
	defer func() { p.observe(domain.StageMoments, start, err) }()

	if err := domain.Validate(opts); err != nil {
		return nil, err
	}
	var transcription domain.TranscriptionResult
	if err := p.resolver.Resolve(ctx, jobID, domain.StageMoments, domain.ActivityTranscriptionCompleted, &transcription); err != nil {
		return nil, err
	}
	var ingest domain.IngestResult
	if err := p.resolver.Resolve(ctx, jobID, domain.StageMoments, domain.ActivityMetadataExtracted, &ingest); err != nil {
		return nil, err
	}
	if _, err := p.record(ctx, jobID, domain.ActivityMomentAnalysisStarted, map[string]any{
		"detector": p.detector != nil,
		"options":  opts,
	}); err != nil {
		return nil, err
	}

	duration := ingest.Metadata.Duration
	reason := FallbackNotConfigured
	if p.detector != nil {
		detected, err := p.detector.Detect(ctx, domain.DetectionRequest{
			JobID:         jobID,
			VideoPath:     ingest.SourcePath,
			VideoDuration: duration,
			Transcript:    transcription.Transcript,
			Options:       opts,
		})
		switch {
		case err == nil:
			kept, discarded := NormalizeMoments(detected.Moments, duration)
			if discarded > 0 {
				logger.Warn.Printf("job %s: discarded %d of %d detected moments", jobID, discarded, len(detected.Moments))
			}
			if len(kept) > 0 {
				result = detected
				result.Moments = kept
				result.Discarded = discarded
				result.Source = domain.DetectionSourceDetector
				result.Summary.TotalMoments = len(kept)
			} else {
				reason = FallbackNoMoments
			}
		case domain.IsParse(err):
			logger.Warn.Printf("job %s: %s", jobID, logger.SanitizeForLog(logger.Truncate(err.Error(), logger.MaxFieldLength)))
			reason = FallbackParseError
		default:
			return nil, p.fail(ctx, jobID, domain.ActivityMomentAnalysisFailed, err)
		}
	}

	if result == nil {
		moments, summary := HeuristicMoments(transcription.Transcript, duration)
		if len(moments) == 0 {
			return nil, p.fail(ctx, jobID, domain.ActivityMomentAnalysisFailed,
				domain.NewValidationError("moments", "no moments could be derived from the recording"))
		}
		p.observer.ObserveFallback(reason)
		logger.Info.Printf("job %s: using heuristic moments (%s)", jobID, reason)
		result = &domain.DetectionResult{
			Moments:        moments,
			Summary:        summary,
			Source:         domain.DetectionSourceHeuristic,
			FallbackReason: reason,
		}
	}

	if _, err := p.record(ctx, jobID, domain.ActivityMomentAnalysisCompleted, result); err != nil {
		return nil, err
	}
	logger.Info.Printf("job %s: %d moments (%s)", jobID, len(result.Moments), result.Source)
	return result, nil
}

// JobView is a job's derived state with its full history.
type JobView struct {
	Status domain.JobStatus    `json:"status"`
	Events []domain.StageEvent `json:"events"`
}

// Status returns domain.ErrNotFound for jobs without events.
func (p *Pipeline) Status(ctx context.Context, jobID string) (*JobView, error) {
	if err := checkJobID(jobID); err != nil {
		return nil, err
	}
	events, err := p.log.Query(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, domain.ErrNotFound
	}
	status, err := p.log.State(ctx, jobID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		status = domain.StatusFromEvents(jobID, events)
	}
	return &JobView{Status: *status, Events: events}, nil
}

func (p *Pipeline) ListJobs(ctx context.Context) ([]domain.JobStatus, error) {
	return p.log.ListJobs(ctx)
}

// Cleanup removes the job's artifacts. See Cleaner.
func (p *Pipeline) Cleanup(ctx context.Context, jobID string) (report *domain.CleanupReport, err error) {
	start := time.Now()
	defer func() { p.observe(domain.StageCleanup, start, err) }()

	if err := checkJobID(jobID); err != nil {
		return nil, err
	}
	return p.cleaner.Cleanup(ctx, jobID)
}
