package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorrectTimestamp(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{1, 1},
		{1.5, 90},
		{3.2, 192},
		{9.99, 599.4},
		{10, 10},
		{45, 45},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, CorrectTimestamp(tt.in), 1e-9, "input %v", tt.in)
	}
}

func TestMoment_InRange(t *testing.T) {
	assert.True(t, Moment{StartTime: 0, EndTime: 10}.InRange(10))
	assert.False(t, Moment{StartTime: 5, EndTime: 5}.InRange(10))
	assert.False(t, Moment{StartTime: -1, EndTime: 5}.InRange(10))
	assert.False(t, Moment{StartTime: 5, EndTime: 11}.InRange(10))
	assert.True(t, Moment{StartTime: 5, EndTime: 500}.InRange(0), "unknown duration")
}

func TestValidate_FieldPaths(t *testing.T) {
	err := Validate(Moment{Title: "x", StartTime: 5, EndTime: 3, Importance: 5})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "endTime", ve.Field)

	err = Validate(Moment{Title: "x", StartTime: 0, EndTime: 3, Importance: 11})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "importance", ve.Field)

	opts := DefaultSummaryOptions()
	opts.Filter.SortMomentsBy = "random"
	require.ErrorAs(t, Validate(opts), &ve)
	assert.Equal(t, "filter.sortMomentsBy", ve.Field)

	opts = DefaultSummaryOptions()
	opts.Composition.Quality.Preset = "turbo"
	require.ErrorAs(t, Validate(opts), &ve)
	assert.Equal(t, "composition.quality.preset", ve.Field)

	assert.NoError(t, Validate(DefaultRunOptions()))
}

func TestValidateJobID(t *testing.T) {
	assert.NoError(t, ValidateJobID(NewJobID()))
	assert.NoError(t, ValidateJobID("demo_2026-03"))
	for _, bad := range []string{"", "-lead", "a/b", "../x", "a.b", "with space"} {
		assert.ErrorIs(t, ValidateJobID(bad), ErrInvalidJobID, bad)
	}
}

func TestProbeResult_Metadata(t *testing.T) {
	var probe ProbeResult
	require.NoError(t, json.Unmarshal([]byte(`{
		"format": {"format_name": "mov,mp4,m4a", "duration": "N/A", "size": "1048576", "bit_rate": "800000"},
		"streams": [
			{"codec_type": "video", "codec_name": "h264", "width": 1920, "height": 1080,
			 "avg_frame_rate": "0/0", "r_frame_rate": "30000/1001", "duration": "12.5"},
			{"codec_type": "audio", "codec_name": "aac"}
		]
	}`), &probe))

	md := probe.Metadata()

	assert.Equal(t, 12.5, md.Duration, "stream duration when the container has none")
	assert.InDelta(t, 29.97, md.FrameRate, 0.01)
	assert.Equal(t, int64(1048576), md.Size)
	assert.Equal(t, int64(800000), md.Bitrate)
	assert.True(t, md.HasVideo)
	assert.True(t, md.HasAudio)
	assert.Equal(t, "aac", md.AudioCodec)

	var silent ProbeResult
	silent.Format.Duration = "30"
	silent.Streams = []ProbeStream{{CodecType: "video"}}
	assert.False(t, silent.Metadata().HasAudio)
	assert.Equal(t, 30.0, silent.Metadata().Duration)
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "0:00", FormatDuration(-3))
	assert.Equal(t, "1:05", FormatDuration(65.9))
	assert.Equal(t, "1:00:01", FormatDuration(3601))

	assert.Equal(t, "512 B", FormatSize(512))
	assert.Equal(t, "1.5 KB", FormatSize(1536))
	assert.Equal(t, "500.0 MB", FormatSize(500<<20))
	assert.Equal(t, "2.0 GB", FormatSize(2<<30))
}
