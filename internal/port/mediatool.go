package port

import (
	"context"

	"github.com/bnema/recap/internal/domain"
)

// ExtractSegmentRequest cuts [Start, Start+Duration) of Input into Output.
type ExtractSegmentRequest struct {
	Input    string
	Output   string
	Start    float64
	Duration float64
	Preset   string
	CRF      int
}

// MediaTool is the media-processing collaborator (ffmpeg/ffprobe).
type MediaTool interface {
	Probe(ctx context.Context, inputPath string) (*domain.MediaMetadata, error)
	ExtractAudio(ctx context.Context, inputPath, outputPath string) error
	ExtractSegment(ctx context.Context, req ExtractSegmentRequest) error
	Compose(ctx context.Context, req domain.ComposeRequest) error
	Thumbnail(ctx context.Context, inputPath, outputPath string, at float64) error
}
