package ffmpeg

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"

	"github.com/bnema/recap/internal/domain"
	"github.com/bnema/recap/internal/port"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr error
	}{
		{
			name:    "valid path",
			path:    "/tmp/video.mp4",
			wantErr: nil,
		},
		{
			name:    "valid path with spaces",
			path:    "/tmp/my video.mp4",
			wantErr: nil,
		},
		{
			name:    "valid relative path",
			path:    "video.mp4",
			wantErr: nil,
		},
		{
			name:    "empty path",
			path:    "",
			wantErr: ErrEmptyPath,
		},
		{
			name:    "path with null byte in middle",
			path:    "/tmp/\x00video.mp4",
			wantErr: ErrInvalidPath,
		},
		{
			name:    "path with null byte at end",
			path:    "/tmp/video.mp4\x00",
			wantErr: ErrInvalidPath,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validatePath(tt.path)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("validatePath(%q) = %v, want %v", tt.path, err, tt.wantErr)
			}
		})
	}
}

type recordedCall struct {
	name string
	args []string
}

func fakeTool(out []byte, err error) (*Tool, *[]recordedCall) {
	var calls []recordedCall
	tool := NewTool("ffmpeg", "ffprobe")
	tool.run = func(_ context.Context, name string, args ...string) ([]byte, error) {
		calls = append(calls, recordedCall{name: name, args: args})
		return out, err
	}
	return tool, &calls
}

func TestTool_PathValidation(t *testing.T) {
	tool, calls := fakeTool(nil, nil)
	ctx := context.Background()

	_, err := tool.Probe(ctx, "")
	assert.ErrorContains(t, err, "invalid input path")

	err = tool.ExtractAudio(ctx, "/tmp/video.mp4", "")
	assert.ErrorContains(t, err, "invalid output path")

	err = tool.ExtractSegment(ctx, port.ExtractSegmentRequest{Input: "/tmp/\x00v.mp4", Output: "/tmp/s.mp4", Duration: 1})
	assert.ErrorContains(t, err, "invalid input path")

	err = tool.Thumbnail(ctx, "/tmp/video.mp4", "/tmp/\x00thumb.jpg", 1)
	assert.ErrorContains(t, err, "invalid output path")

	assert.Empty(t, *calls, "no process should be started for invalid paths")
}

func TestTool_Probe(t *testing.T) {
	out := []byte(`{
		"format": {"format_name": "mov,mp4,m4a", "duration": "125.400000", "size": "1048576", "bit_rate": "66893"},
		"streams": [
			{"codec_type": "video", "codec_name": "h264", "width": 1920, "height": 1080, "avg_frame_rate": "30000/1001"},
			{"codec_type": "audio", "codec_name": "aac", "sample_rate": "48000", "channels": 2}
		]
	}`)
	tool, calls := fakeTool(out, nil)

	md, err := tool.Probe(context.Background(), "/data/uploads/a.mp4")

	require.NoError(t, err)
	assert.Equal(t, 125.4, md.Duration)
	assert.Equal(t, 1920, md.Width)
	assert.Equal(t, 1080, md.Height)
	assert.Equal(t, int64(1048576), md.Size)
	assert.True(t, md.HasVideo)
	assert.True(t, md.HasAudio)
	assert.InDelta(t, 29.97, md.FrameRate, 0.01)
	require.Len(t, *calls, 1)
	assert.Equal(t, "ffprobe", (*calls)[0].name)
	assert.Equal(t, "/data/uploads/a.mp4", (*calls)[0].args[len((*calls)[0].args)-1])
}

func TestTool_Probe_MalformedOutput(t *testing.T) {
	tool, _ := fakeTool([]byte("not json"), nil)

	_, err := tool.Probe(context.Background(), "/tmp/a.mp4")

	assert.True(t, domain.IsParse(err))
}

func TestTool_RunFailureIsCollaboratorError(t *testing.T) {
	tool, _ := fakeTool(nil, &runError{err: errors.New("exit status 1"), stderr: "Invalid data found when processing input"})

	err := tool.ExtractAudio(context.Background(), "/tmp/a.mp4", "/tmp/a.wav")

	ce, ok := domain.AsCollaborator(err)
	require.True(t, ok)
	assert.Equal(t, "ffmpeg", ce.Collaborator)
	assert.Equal(t, "extract audio", ce.Op)
	assert.Equal(t, domain.StatusFailed, ce.Status)
	assert.Contains(t, ce.Message, "Invalid data found when processing input")
}

func TestTool_MissingBinaryIsUnavailable(t *testing.T) {
	tool, _ := fakeTool(nil, &exec.Error{Name: "ffmpeg", Err: exec.ErrNotFound})

	err := tool.ExtractAudio(context.Background(), "/tmp/a.mp4", "/tmp/a.wav")

	ce, ok := domain.AsCollaborator(err)
	require.True(t, ok)
	assert.Equal(t, domain.StatusUnavailable, ce.Status)
}

func TestTool_ExtractSegment_RejectsEmptyRange(t *testing.T) {
	tool, calls := fakeTool(nil, nil)

	err := tool.ExtractSegment(context.Background(), port.ExtractSegmentRequest{Input: "/tmp/a.mp4", Output: "/tmp/s.mp4", Start: 5, Duration: 0})

	assert.True(t, domain.IsValidation(err))
	assert.Empty(t, *calls)
}

func TestSegmentArgs(t *testing.T) {
	args := segmentArgs(port.ExtractSegmentRequest{
		Input:    "/data/uploads/a.mp4",
		Output:   "/data/segments/job/segment_01_intro.mp4",
		Start:    90,
		Duration: 12.5,
		Preset:   "fast",
		CRF:      20,
	})

	joined := strings.Join(args, " ")
	assert.True(t, strings.HasPrefix(joined, "-ss 90.000 -i /data/uploads/a.mp4 -t 12.500"), joined)
	assert.Contains(t, joined, "-preset fast")
	assert.Contains(t, joined, "-crf 20")
	assert.Equal(t, "/data/segments/job/segment_01_intro.mp4", args[len(args)-1])
}

func TestAudioArgs(t *testing.T) {
	args := audioArgs("/in.mp4", "/out.wav")

	assert.Equal(t, []string{"-i", "/in.mp4", "-vn", "-ac", "1", "-ar", "16000", "-c:a", "pcm_s16le", "-y", "/out.wav"}, args)
}

func TestThumbnailArgs(t *testing.T) {
	args := thumbnailArgs("/in.mp4", "/thumb.jpg", 42.25)

	assert.Equal(t, []string{"-ss", "42.250", "-i", "/in.mp4", "-vframes", "1", "-vf", "scale=320:-2", "-f", "image2", "-y", "/thumb.jpg"}, args)
}
