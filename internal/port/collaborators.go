package port

import (
	"context"

	"github.com/bnema/recap/internal/domain"
)

// Transcriber is the speech-to-text collaborator.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string, opts domain.TranscriptionOptions) (*domain.Transcript, error)
}

// MomentDetector is the multimodal moment-detection collaborator. A response
// that cannot be decoded is reported as *domain.ParseError.
type MomentDetector interface {
	Detect(ctx context.Context, req domain.DetectionRequest) (*domain.DetectionResult, error)
}
