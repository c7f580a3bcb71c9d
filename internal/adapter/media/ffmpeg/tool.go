package ffmpeg

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/bnema/recap/internal/domain"
	"github.com/bnema/recap/internal/infrastructure/logger"
	"github.com/bnema/recap/internal/port"
)

var (
	ErrEmptyPath   = errors.New("path is empty")
	ErrInvalidPath = errors.New("path contains a null byte")
)

const stderrTail = 20

type runFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

// Tool runs ffmpeg and ffprobe as the media collaborator.
type Tool struct {
	ffmpeg  string
	ffprobe string
	run     runFunc
}

func NewTool(ffmpegBin, ffprobeBin string) *Tool {
	return &Tool{ffmpeg: ffmpegBin, ffprobe: ffprobeBin, run: execute}
}

func validatePath(path string) error {
	if path == "" {
		return ErrEmptyPath
	}
	if strings.ContainsRune(path, '\x00') {
		return ErrInvalidPath
	}
	return nil
}

func validatePaths(input, output string) error {
	if err := validatePath(input); err != nil {
		return fmt.Errorf("invalid input path: %w", err)
	}
	if err := validatePath(output); err != nil {
		return fmt.Errorf("invalid output path: %w", err)
	}
	return nil
}

func execute(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, &runError{err: err, stderr: tail(stderr.String(), stderrTail)}
	}
	return stdout.Bytes(), nil
}

type runError struct {
	err    error
	stderr string
}

func (e *runError) Error() string {
	if e.stderr == "" {
		return e.err.Error()
	}
	return e.err.Error() + ": " + e.stderr
}

func (e *runError) Unwrap() error {
	return e.err
}

func tail(s string, lines int) string {
	parts := strings.Split(strings.TrimSpace(s), "\n")
	if len(parts) > lines {
		parts = parts[len(parts)-lines:]
	}
	return strings.Join(parts, "\n")
}

// collaboratorError keeps the tool's message verbatim and classifies
// deadline expiry as a timeout.
func collaboratorError(ctx context.Context, tool, op string, err error) error {
	status := domain.StatusFailed
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		status = domain.StatusTimeout
	}
	var execErr *exec.Error
	if errors.As(err, &execErr) {
		status = domain.StatusUnavailable
	}
	return &domain.CollaboratorError{
		Collaborator: tool,
		Op:           op,
		Status:       status,
		Message:      err.Error(),
		Err:          err,
	}
}

func (t *Tool) ffmpegRun(ctx context.Context, op string, args []string) error {
	logger.Debug.Printf("ffmpeg %s: %s", op, logger.Truncate(strings.Join(args, " "), logger.MaxFieldLength))
	if _, err := t.run(ctx, t.ffmpeg, args...); err != nil {
		return collaboratorError(ctx, "ffmpeg", op, err)
	}
	return nil
}

func probeArgs(input string) []string {
	return []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		input,
	}
}

func (t *Tool) Probe(ctx context.Context, inputPath string) (*domain.MediaMetadata, error) {
	if err := validatePath(inputPath); err != nil {
		return nil, fmt.Errorf("invalid input path: %w", err)
	}

	output, err := t.run(ctx, t.ffprobe, probeArgs(inputPath)...)
	if err != nil {
		return nil, collaboratorError(ctx, "ffprobe", "probe", err)
	}

	var probe domain.ProbeResult
	if err := json.Unmarshal(output, &probe); err != nil {
		return nil, &domain.ParseError{Source: "ffprobe", Reason: "output is not valid JSON", Err: err}
	}
	md := probe.Metadata()
	return &md, nil
}

// audioArgs produces 16 kHz mono PCM, the input format of the transcriber.
func audioArgs(input, output string) []string {
	return []string{
		"-i", input,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		"-y", output,
	}
}

func (t *Tool) ExtractAudio(ctx context.Context, inputPath, outputPath string) error {
	if err := validatePaths(inputPath, outputPath); err != nil {
		return err
	}
	return t.ffmpegRun(ctx, "extract audio", audioArgs(inputPath, outputPath))
}

func segmentArgs(req port.ExtractSegmentRequest) []string {
	preset := req.Preset
	if preset == "" {
		preset = "medium"
	}
	return []string{
		"-ss", formatSeconds(req.Start),
		"-i", req.Input,
		"-t", formatSeconds(req.Duration),
		"-c:v", "libx264",
		"-preset", preset,
		"-crf", strconv.Itoa(req.CRF),
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-b:a", "128k",
		"-avoid_negative_ts", "make_zero",
		"-movflags", "+faststart",
		"-y", req.Output,
	}
}

func (t *Tool) ExtractSegment(ctx context.Context, req port.ExtractSegmentRequest) error {
	if err := validatePaths(req.Input, req.Output); err != nil {
		return err
	}
	if req.Start < 0 || req.Duration <= 0 {
		return domain.NewValidationError("segment", "invalid range start=%.3f duration=%.3f", req.Start, req.Duration)
	}
	return t.ffmpegRun(ctx, "extract segment", segmentArgs(req))
}

func thumbnailArgs(input, output string, at float64) []string {
	return []string{
		"-ss", formatSeconds(at),
		"-i", input,
		"-vframes", "1",
		"-vf", "scale=320:-2",
		"-f", "image2",
		"-y", output,
	}
}

func (t *Tool) Thumbnail(ctx context.Context, inputPath, outputPath string, at float64) error {
	if err := validatePaths(inputPath, outputPath); err != nil {
		return err
	}
	if at < 0 {
		at = 0
	}
	return t.ffmpegRun(ctx, "thumbnail", thumbnailArgs(inputPath, outputPath, at))
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

var _ port.MediaTool = (*Tool)(nil)
