package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bnema/recap/internal/domain"
	"github.com/bnema/recap/internal/infrastructure/logger"
	"github.com/bnema/recap/internal/port"
)

const (
	previewWidth  = 640
	previewPreset = "veryfast"
	previewCRF    = 30
)

// selectMoments resolves the analysed moments and applies the filter.
func (p *Pipeline) selectMoments(ctx context.Context, jobID string, stage domain.Stage, filter domain.FilterOptions) (*domain.DetectionResult, *domain.IngestResult, []domain.Moment, error) {
	var detection domain.DetectionResult
	if err := p.resolver.Resolve(ctx, jobID, stage, domain.ActivityMomentAnalysisCompleted, &detection); err != nil {
		return nil, nil, nil, err
	}
	var ingest domain.IngestResult
	if err := p.resolver.Resolve(ctx, jobID, stage, domain.ActivityMetadataExtracted, &ingest); err != nil {
		return nil, nil, nil, err
	}
	return &detection, &ingest, FilterMoments(detection.Moments, filter), nil
}

// Summarize cuts the selected moments into clips and composes them into the
// summary video.
func (p *Pipeline) Summarize(ctx context.Context, jobID string, opts domain.SummaryOptions) (result *domain.SummaryResult, err error) {
	start := time.Now()
	defer func() { p.observe(domain.StageSummarize, start, err) }()

	if err := domain.Validate(opts); err != nil {
		return nil, err
	}
	detection, ingest, selected, err := p.selectMoments(ctx, jobID, domain.StageSummarize, opts.Filter)
	if err != nil {
		return nil, err
	}
	if _, err := p.record(ctx, jobID, domain.ActivitySummarizationStarted, map[string]any{
		"sourceMoments": len(detection.Moments),
		"selected":      len(selected),
		"options":       opts,
	}); err != nil {
		return nil, err
	}
	if len(selected) == 0 {
		return nil, p.fail(ctx, jobID, domain.ActivitySummarizationFailed,
			domain.NewValidationError("filter", "no moments left after filtering %d candidates", len(detection.Moments)))
	}

	comp := opts.Composition
	segDir := p.layout.SegmentDir(jobID)
	if err := os.MkdirAll(segDir, 0755); err != nil {
		return nil, p.fail(ctx, jobID, domain.ActivitySummarizationFailed, fmt.Errorf("create segment directory: %w", err))
	}

	var written []string
	segments := make([]domain.Segment, 0, len(selected))
	for i, m := range selected {
		seg := segmentFor(i+1, m)
		seg.Path = filepath.Join(segDir, seg.Filename)
		written = append(written, seg.Path)
		if err := p.media.ExtractSegment(ctx, port.ExtractSegmentRequest{
			Input:    ingest.SourcePath,
			Output:   seg.Path,
			Start:    m.StartTime,
			Duration: seg.Duration,
			Preset:   comp.Quality.Preset,
			CRF:      comp.Quality.CRF,
		}); err != nil {
			return nil, p.fail(ctx, jobID, domain.ActivitySummarizationFailed,
				fmt.Errorf("extract segment %d: %w", seg.Index, err), written...)
		}
		if info, err := os.Stat(seg.Path); err == nil {
			seg.FileSize = info.Size()
		}
		segments = append(segments, seg)
	}

	if comp.Thumbnails {
		p.thumbnails(ctx, jobID, segments)
		written = append(written, p.layout.ThumbnailDir(jobID))
	}

	ordered := SortSegments(segments, comp.SortBy)
	plan := PlanComposition(ordered, comp)
	renderOpts := comp
	renderOpts.Audio.Enabled = comp.Audio.Enabled && ingest.Metadata.HasAudio

	out := p.layout.SummaryPath(jobID)
	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return nil, p.fail(ctx, jobID, domain.ActivitySummarizationFailed, fmt.Errorf("create output directory: %w", err), written...)
	}
	if err := p.media.Compose(ctx, domain.ComposeRequest{
		JobID:      jobID,
		Segments:   ordered,
		OutputPath: out,
		WorkDir:    segDir,
		Width:      ingest.Metadata.Width,
		Height:     ingest.Metadata.Height,
		Options:    renderOpts,
		Plan:       plan,
	}); err != nil {
		return nil, p.fail(ctx, jobID, domain.ActivitySummarizationFailed, err, append(written, out)...)
	}

	result = &domain.SummaryResult{
		OutputPath:    out,
		SourceMoments: len(detection.Moments),
		Segments:      ordered,
		Plan:          plan,
		Filter:        opts.Filter,
		Source:        detection.Source,
	}
	result.Stats = p.stats(ctx, out, ordered, plan, ingest.Metadata.Duration)

	if comp.Preview {
		previewPath := p.layout.PreviewPath(jobID)
		if err := p.renderPreview(ctx, jobID, ordered, renderOpts, plan, ingest.Metadata, previewPath); err != nil {
			removeQuietly(previewPath)
			logger.Warn.Printf("job %s: preview render failed: %v", jobID, err)
			result.PreviewError = err.Error()
		} else {
			result.PreviewPath = previewPath
		}
	}

	if _, err := p.record(ctx, jobID, domain.ActivitySummarizationCompleted, result); err != nil {
		return nil, err
	}
	logger.Info.Printf("job %s: summary %s, %d segments, %s -> %s (%.2f%%)", jobID, out, len(ordered),
		domain.FormatDuration(result.Stats.OriginalDuration), domain.FormatDuration(result.Stats.FinalDuration),
		result.Stats.CompressionRatio)
	return result, nil
}

func segmentFor(index int, m domain.Moment) domain.Segment {
	return domain.Segment{
		Index:             index,
		Title:             m.Title,
		Category:          m.Category,
		Importance:        m.Importance,
		OriginalStartTime: m.StartTime,
		OriginalEndTime:   m.EndTime,
		Duration:          m.Duration(),
		Filename:          SegmentFilename(index, m.Title),
	}
}

// stats measures the composed file. The estimate stands in when probing the
// output fails.
func (p *Pipeline) stats(ctx context.Context, out string, segments []domain.Segment, plan domain.CompositionPlan, sourceDuration float64) domain.SummaryStats {
	var original float64
	for _, s := range segments {
		original += s.Duration
	}
	final := plan.EstimatedDuration
	var size int64
	if md, err := p.media.Probe(ctx, out); err != nil {
		logger.Warn.Printf("probe summary %s: %v", out, err)
	} else {
		final = md.Duration
		size = md.Size
	}
	if size == 0 {
		if info, err := os.Stat(out); err == nil {
			size = info.Size()
		}
	}
	return domain.SummaryStats{
		SourceDuration:   sourceDuration,
		OriginalDuration: original,
		FinalDuration:    final,
		CompressionRatio: CompressionRatio(original, final),
		OutputSize:       size,
	}
}

// thumbnails grabs a frame from the middle of each clip. Failures only cost
// the thumbnail.
func (p *Pipeline) thumbnails(ctx context.Context, jobID string, segments []domain.Segment) {
	dir := p.layout.ThumbnailDir(jobID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		logger.Warn.Printf("job %s: create thumbnail directory: %v", jobID, err)
		return
	}
	for i := range segments {
		path := filepath.Join(dir, ThumbnailFilename(segments[i].Index))
		if err := p.media.Thumbnail(ctx, segments[i].Path, path, segments[i].Duration/2); err != nil {
			logger.Warn.Printf("job %s: thumbnail for segment %d: %v", jobID, segments[i].Index, err)
			continue
		}
		segments[i].Thumbnail = path
	}
}

func (p *Pipeline) renderPreview(ctx context.Context, jobID string, segments []domain.Segment, opts domain.CompositionOptions, plan domain.CompositionPlan, md domain.MediaMetadata, out string) error {
	width, height := previewWidth, previewWidth*9/16
	if md.Width > 0 && md.Height > 0 {
		height = previewWidth * md.Height / md.Width
	}
	height -= height % 2
	opts.Quality = domain.QualityOptions{Preset: previewPreset, CRF: previewCRF}
	return p.media.Compose(ctx, domain.ComposeRequest{
		JobID:      jobID,
		Segments:   segments,
		OutputPath: out,
		WorkDir:    p.layout.SegmentDir(jobID),
		Width:      width,
		Height:     height,
		Options:    opts,
		Plan:       plan,
	})
}

// QuickSummary selects and plans without rendering. Its ratio compares the
// estimate with the whole recording. It has no failure event; an empty
// selection is returned as a validation error.
func (p *Pipeline) QuickSummary(ctx context.Context, jobID string, opts domain.SummaryOptions) (result *domain.QuickSummaryResult, err error) {
	start := time.Now()
	defer func() { p.observe(domain.StageQuickSummary, start, err) }()

	if err := domain.Validate(opts); err != nil {
		return nil, err
	}
	detection, ingest, selected, err := p.selectMoments(ctx, jobID, domain.StageQuickSummary, opts.Filter)
	if err != nil {
		return nil, err
	}
	if len(selected) == 0 {
		return nil, domain.NewValidationError("filter", "no moments left after filtering %d candidates", len(detection.Moments))
	}

	segments := make([]domain.Segment, 0, len(selected))
	for i, m := range selected {
		segments = append(segments, segmentFor(i+1, m))
	}
	ordered := SortSegments(segments, opts.Composition.SortBy)
	plan := PlanComposition(ordered, opts.Composition)

	result = &domain.QuickSummaryResult{
		SourceMoments:    len(detection.Moments),
		Moments:          selected,
		Segments:         ordered,
		Plan:             plan,
		SourceDuration:   ingest.Metadata.Duration,
		CompressionRatio: CompressionRatio(ingest.Metadata.Duration, plan.EstimatedDuration),
	}
	if _, err := p.record(ctx, jobID, domain.ActivityQuickSummaryCompleted, result); err != nil {
		return nil, err
	}
	return result, nil
}

// ProcessFull runs every stage up to moment analysis.
func (p *Pipeline) ProcessFull(ctx context.Context, jobID, sourcePath, originalName string, opts domain.RunOptions) (*domain.PipelineResult, error) {
	return p.process(ctx, domain.RunModeFull, jobID, sourcePath, originalName, opts)
}

// ProcessAndSummarize runs every stage through summarization.
func (p *Pipeline) ProcessAndSummarize(ctx context.Context, jobID, sourcePath, originalName string, opts domain.RunOptions) (*domain.PipelineResult, error) {
	return p.process(ctx, domain.RunModeSummarize, jobID, sourcePath, originalName, opts)
}

func (p *Pipeline) process(ctx context.Context, mode domain.RunMode, jobID, sourcePath, originalName string, opts domain.RunOptions) (*domain.PipelineResult, error) {
	start := time.Now()
	result := &domain.PipelineResult{Mode: mode}

	failed := func(stage domain.Stage, err error) (*domain.PipelineResult, error) {
		// A source that never made it through ingest leaves no job behind.
		if stage != domain.StageIngest && checkJobID(jobID) == nil {
			details := domain.FailureDetails(err)
			details["stage"] = string(stage)
			details["mode"] = string(mode)
			if _, appendErr := p.appendDetails(ctx, jobID, domain.ActivityFullPipelineFailed, details); appendErr != nil {
				logger.Error.Printf("job %s: %v", jobID, appendErr)
			}
		}
		return nil, fmt.Errorf("%s stage: %w", stage, err)
	}

	if _, err := p.Ingest(ctx, jobID, sourcePath, originalName); err != nil {
		return failed(domain.StageIngest, err)
	}
	result.Stages = append(result.Stages, domain.StageIngest)

	if _, err := p.ExtractAudio(ctx, jobID); err != nil {
		return failed(domain.StageAudio, err)
	}
	result.Stages = append(result.Stages, domain.StageAudio)

	if _, err := p.Transcribe(ctx, jobID, opts.Transcription); err != nil {
		return failed(domain.StageTranscribe, err)
	}
	result.Stages = append(result.Stages, domain.StageTranscribe)

	detection, err := p.AnalyzeMoments(ctx, jobID, opts.Detection)
	if err != nil {
		return failed(domain.StageMoments, err)
	}
	result.Stages = append(result.Stages, domain.StageMoments)
	result.Moments = len(detection.Moments)
	result.Source = detection.Source

	if mode == domain.RunModeSummarize {
		summary, err := p.Summarize(ctx, jobID, opts.Summary)
		if err != nil {
			return failed(domain.StageSummarize, err)
		}
		result.Stages = append(result.Stages, domain.StageSummarize)
		result.SummaryPath = summary.OutputPath
	}

	result.Elapsed = time.Since(start).Seconds()
	if _, err := p.record(ctx, jobID, domain.ActivityFullPipelineCompleted, result); err != nil {
		return nil, err
	}
	logger.Info.Printf("job %s: %s pipeline completed in %.1fs", jobID, mode, result.Elapsed)
	return result, nil
}

// RunStage dispatches a discrete stage by name with JSON encoded options.
// Ingest needs a source file and is not reachable here.
func (p *Pipeline) RunStage(ctx context.Context, jobID string, stage domain.Stage, rawOpts []byte) (any, error) {
	decode := func(v any) error {
		if len(rawOpts) == 0 {
			return nil
		}
		if err := json.Unmarshal(rawOpts, v); err != nil {
			return domain.NewValidationError("options", "%v", err)
		}
		return nil
	}

	switch stage {
	case domain.StageAudio:
		return p.ExtractAudio(ctx, jobID)
	case domain.StageTranscribe:
		var opts domain.TranscriptionOptions
		if err := decode(&opts); err != nil {
			return nil, err
		}
		return p.Transcribe(ctx, jobID, opts)
	case domain.StageMoments:
		var opts domain.DetectionOptions
		if err := decode(&opts); err != nil {
			return nil, err
		}
		return p.AnalyzeMoments(ctx, jobID, opts)
	case domain.StageSummarize, domain.StageQuickSummary:
		opts := domain.DefaultSummaryOptions()
		if err := decode(&opts); err != nil {
			return nil, err
		}
		if stage == domain.StageQuickSummary {
			return p.QuickSummary(ctx, jobID, opts)
		}
		return p.Summarize(ctx, jobID, opts)
	case domain.StageCleanup:
		return p.Cleanup(ctx, jobID)
	case domain.StageIngest:
		return nil, domain.NewValidationError("stage", "ingest requires a source file")
	}
	return nil, domain.NewValidationError("stage", "unknown stage %q", stage)
}
