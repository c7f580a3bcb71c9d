package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// ProbeResult is the subset of `ffprobe -show_format -show_streams` output
// ingest reads. ffprobe reports most numbers as strings.
type ProbeResult struct {
	Format struct {
		FormatName string `json:"format_name"`
		Duration   string `json:"duration"`
		Size       string `json:"size"`
		BitRate    string `json:"bit_rate"`
	} `json:"format"`
	Streams []ProbeStream `json:"streams"`
}

type ProbeStream struct {
	CodecType    string `json:"codec_type"`
	CodecName    string `json:"codec_name"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	RFrameRate   string `json:"r_frame_rate"`
	AvgFrameRate string `json:"avg_frame_rate"`
	Duration     string `json:"duration"`
}

// MediaMetadata is what the media collaborator reports about a file.
type MediaMetadata struct {
	Duration    float64 `json:"duration"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	FrameRate   float64 `json:"frameRate"`
	Bitrate     int64   `json:"bitrate"`
	Size        int64   `json:"size"`
	HasVideo    bool    `json:"hasVideo"`
	HasAudio    bool    `json:"hasAudio"`
	Format      string  `json:"format"`
	VideoCodec  string  `json:"videoCodec,omitempty"`
	AudioCodec  string  `json:"audioCodec,omitempty"`
	Fingerprint string  `json:"fingerprint,omitempty"`
}

func (p *ProbeResult) firstStream(codecType string) (ProbeStream, bool) {
	for _, s := range p.Streams {
		if s.CodecType == codecType {
			return s, true
		}
	}
	return ProbeStream{}, false
}

// Metadata flattens the probe output. The container duration is preferred;
// screen recorders often leave it empty and only tag the video stream.
func (p *ProbeResult) Metadata() MediaMetadata {
	md := MediaMetadata{
		Duration: probeFloat(p.Format.Duration),
		Size:     probeInt(p.Format.Size),
		Bitrate:  probeInt(p.Format.BitRate),
		Format:   p.Format.FormatName,
	}

	if video, ok := p.firstStream("video"); ok {
		md.HasVideo = true
		md.Width, md.Height = video.Width, video.Height
		md.VideoCodec = video.CodecName
		if md.FrameRate = frameRate(video.AvgFrameRate); md.FrameRate == 0 {
			md.FrameRate = frameRate(video.RFrameRate)
		}
		if md.Duration == 0 {
			md.Duration = probeFloat(video.Duration)
		}
	}
	if audio, ok := p.firstStream("audio"); ok {
		md.HasAudio = true
		md.AudioCodec = audio.CodecName
	}
	return md
}

// frameRate reads ffprobe's "num/den" notation; "0/0" means unknown.
func frameRate(fraction string) float64 {
	num, den, ok := strings.Cut(fraction, "/")
	if !ok {
		return probeFloat(fraction)
	}
	d := probeFloat(den)
	if d == 0 {
		return 0
	}
	return probeFloat(num) / d
}

func probeFloat(v string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0
	}
	return f
}

func probeInt(v string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// FormatDuration renders seconds as m:ss, or h:mm:ss past the hour.
func FormatDuration(seconds float64) string {
	total := int(seconds)
	if total <= 0 {
		return "0:00"
	}
	h, m, s := total/3600, total%3600/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// FormatSize renders a byte count with a binary unit.
func FormatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	value, exp := float64(n)/unit, 0
	for value >= unit && exp < 2 {
		value /= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", value, "KMG"[exp])
}
