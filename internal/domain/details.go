package domain

// Typed payloads stored in the details of completion events. Stages read
// their inputs back through StageEvent.Decode.

type IngestStarted struct {
	FileName   string `json:"fileName"`
	SourcePath string `json:"sourcePath"`
	Size       int64  `json:"size"`
}

// IngestResult is the metadata_extracted payload.
type IngestResult struct {
	SourcePath   string        `json:"sourcePath"`
	OriginalName string        `json:"originalName"`
	Metadata     MediaMetadata `json:"metadata"`
}

// AudioResult is the audio_extraction_completed payload. AudioPath is empty
// when the source carries no audio stream.
type AudioResult struct {
	AudioPath  string `json:"audioPath"`
	SourcePath string `json:"sourcePath"`
	Size       int64  `json:"size"`
	HasAudio   bool   `json:"hasAudio"`
}

type TranscriptionResult struct {
	AudioPath  string     `json:"audioPath"`
	Transcript Transcript `json:"transcript"`
}

// SummaryResult is the video_summarization_completed payload.
type SummaryResult struct {
	OutputPath    string          `json:"outputPath"`
	PreviewPath   string          `json:"previewPath,omitempty"`
	PreviewError  string          `json:"previewError,omitempty"`
	SourceMoments int             `json:"sourceMoments"`
	Segments      []Segment       `json:"segments"`
	Plan          CompositionPlan `json:"plan"`
	Stats         SummaryStats    `json:"stats"`
	Filter        FilterOptions   `json:"filter"`
	Source        DetectionSource `json:"detectionSource"`
}

// QuickSummaryResult selects and plans without rendering anything.
type QuickSummaryResult struct {
	SourceMoments    int             `json:"sourceMoments"`
	Moments          []Moment        `json:"moments"`
	Segments         []Segment       `json:"segments"`
	Plan             CompositionPlan `json:"plan"`
	SourceDuration   float64         `json:"sourceDuration"`
	CompressionRatio float64         `json:"compressionRatio"`
}

// Cleanup categories reported by CleanupReport.
const (
	CleanupSegments   = "segments"
	CleanupThumbnails = "thumbnails"
	CleanupOutputs    = "outputs"
	CleanupTemp       = "temp"
	CleanupUploads    = "uploads"
)

// CleanupReport counts the files removed per category. Missing artifacts
// count as zero.
type CleanupReport struct {
	JobID   string         `json:"jobId"`
	Deleted map[string]int `json:"deleted"`
	Total   int            `json:"total"`
}

// PipelineResult is the full_pipeline_completed payload.
type PipelineResult struct {
	Mode        RunMode         `json:"mode"`
	Stages      []Stage         `json:"stages"`
	Moments     int             `json:"moments"`
	Source      DetectionSource `json:"detectionSource"`
	SummaryPath string          `json:"summaryPath,omitempty"`
	Elapsed     float64         `json:"elapsedSeconds"`
}

// RunOptions carries the per-stage options of a convenience flow.
type RunOptions struct {
	Transcription TranscriptionOptions `json:"transcription"`
	Detection     DetectionOptions     `json:"detection"`
	Summary       SummaryOptions       `json:"summary"`
}

func DefaultRunOptions() RunOptions {
	return RunOptions{Summary: DefaultSummaryOptions()}
}
