package ffmpeg

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/bnema/recap/internal/domain"
)

const (
	defaultWidth  = 1280
	defaultHeight = 720
	outputFPS     = 30
	sampleRate    = 48000
)

func (t *Tool) Compose(ctx context.Context, req domain.ComposeRequest) error {
	if len(req.Segments) == 0 {
		return domain.NewValidationError("segments", "nothing to compose")
	}
	if err := validatePath(req.OutputPath); err != nil {
		return fmt.Errorf("invalid output path: %w", err)
	}
	for _, seg := range req.Segments {
		if err := validatePath(seg.Path); err != nil {
			return fmt.Errorf("invalid segment path %d: %w", seg.Index, err)
		}
	}
	return t.ffmpegRun(ctx, "compose", composeArgs(req))
}

// composeArgs builds a single filter graph: every segment is normalized to
// one size, frame rate and sample rate, optionally sped up, then joined with
// xfade/acrossfade or concat. The intro card is concatenated in front
// without a transition.
func composeArgs(req domain.ComposeRequest) []string {
	opts := req.Options
	w, h := req.Width, req.Height
	if w <= 0 || h <= 0 {
		w, h = defaultWidth, defaultHeight
	}
	withAudio := opts.Audio.Enabled
	speed := 1.0
	if opts.Speed.Enabled && opts.Speed.Factor > 0 {
		speed = opts.Speed.Factor
	}

	var args []string
	for _, seg := range req.Segments {
		args = append(args, "-i", seg.Path)
	}
	n := len(req.Segments)
	introIdx := -1
	if opts.Intro.Enabled && opts.Intro.Duration > 0 {
		introIdx = n
		d := formatSeconds(opts.Intro.Duration)
		args = append(args, "-f", "lavfi", "-t", d, "-i", fmt.Sprintf("color=c=black:s=%dx%d:r=%d", w, h, outputFPS))
		if withAudio {
			args = append(args, "-f", "lavfi", "-t", d, "-i", fmt.Sprintf("anullsrc=r=%d:cl=stereo", sampleRate))
		}
	}

	var graph []string
	durations := make([]float64, n)
	for i, seg := range req.Segments {
		durations[i] = seg.Duration / speed
		v := fmt.Sprintf("[%d:v]scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2,setsar=1,fps=%d,format=yuv420p", i, w, h, w, h, outputFPS)
		if speed != 1 {
			v += fmt.Sprintf(",setpts=PTS/%s", trimFloat(speed))
		} else {
			v += ",setpts=PTS-STARTPTS"
		}
		graph = append(graph, v+fmt.Sprintf("[v%d]", i))
		if withAudio {
			a := fmt.Sprintf("[%d:a]aresample=%d,aformat=channel_layouts=stereo", i, sampleRate)
			if speed != 1 {
				a += "," + atempoChain(speed)
			}
			graph = append(graph, a+fmt.Sprintf("[a%d]", i))
		}
	}

	vOut, aOut := "v0", "a0"
	switch {
	case n == 1:
	case opts.Transitions.Enabled && opts.Transitions.Duration > 0:
		vOut, aOut, graph = joinWithTransitions(graph, durations, opts.Transitions, withAudio)
	default:
		var in strings.Builder
		for i := 0; i < n; i++ {
			in.WriteString(fmt.Sprintf("[v%d]", i))
			if withAudio {
				in.WriteString(fmt.Sprintf("[a%d]", i))
			}
		}
		vOut, aOut = "vcat", "acat"
		graph = append(graph, fmt.Sprintf("%sconcat=n=%d:v=1:a=%d[%s]%s", in.String(), n, boolInt(withAudio), vOut, audioLabel(withAudio, aOut)))
	}

	if introIdx >= 0 {
		intro := fmt.Sprintf("[%d:v]drawtext=text='%s':fontcolor=white:fontsize=%d:x=(w-text_w)/2:y=(h-text_h)/2,format=yuv420p[vintro]",
			introIdx, escapeDrawtext(opts.Intro.Text), h/12)
		graph = append(graph, intro)
		if withAudio {
			graph = append(graph, fmt.Sprintf("[%d:a]aformat=channel_layouts=stereo[aintro]", introIdx+1))
			graph = append(graph, fmt.Sprintf("[vintro][aintro][%s][%s]concat=n=2:v=1:a=1[vfinal][afinal]", vOut, aOut))
			aOut = "afinal"
		} else {
			graph = append(graph, fmt.Sprintf("[vintro][%s]concat=n=2:v=1:a=0[vfinal]", vOut))
		}
		vOut = "vfinal"
	}

	if withAudio && opts.Audio.Normalize {
		graph = append(graph, fmt.Sprintf("[%s]loudnorm=I=-16:TP=-1.5:LRA=11[anorm]", aOut))
		aOut = "anorm"
	}

	preset := opts.Quality.Preset
	if preset == "" {
		preset = "medium"
	}
	args = append(args, "-filter_complex", strings.Join(graph, ";"), "-map", "["+vOut+"]")
	if withAudio {
		args = append(args, "-map", "["+aOut+"]", "-c:a", "aac", "-b:a", "128k")
	} else {
		args = append(args, "-an")
	}
	args = append(args,
		"-c:v", "libx264",
		"-preset", preset,
		"-crf", strconv.Itoa(opts.Quality.CRF),
		"-pix_fmt", "yuv420p",
		"-movflags", "+faststart",
		"-y", req.OutputPath,
	)
	return args
}

// joinWithTransitions chains xfade over the labelled streams. The offset of
// the k-th transition is the running output length minus its overlap.
func joinWithTransitions(graph []string, durations []float64, tr domain.TransitionOptions, withAudio bool) (string, string, []string) {
	kind := tr.Type
	if kind == "" {
		kind = "fade"
	}
	td := tr.Duration
	for _, d := range durations {
		if d <= td {
			td = d / 2
		}
	}

	vPrev, aPrev := "v0", "a0"
	length := durations[0]
	for i := 1; i < len(durations); i++ {
		offset := length - td
		vNext, aNext := fmt.Sprintf("vx%d", i), fmt.Sprintf("ax%d", i)
		graph = append(graph, fmt.Sprintf("[%s][v%d]xfade=transition=%s:duration=%s:offset=%s[%s]",
			vPrev, i, kind, trimFloat(td), trimFloat(offset), vNext))
		if withAudio {
			graph = append(graph, fmt.Sprintf("[%s][a%d]acrossfade=d=%s[%s]", aPrev, i, trimFloat(td), aNext))
		}
		vPrev, aPrev = vNext, aNext
		length = offset + durations[i]
	}
	return vPrev, aPrev, graph
}

// atempoChain splits factor into steps inside atempo's [0.5, 2] range.
func atempoChain(factor float64) string {
	var steps []string
	for factor > 2 {
		steps = append(steps, "atempo=2")
		factor /= 2
	}
	for factor < 0.5 {
		steps = append(steps, "atempo=0.5")
		factor /= 0.5
	}
	steps = append(steps, "atempo="+trimFloat(factor))
	return strings.Join(steps, ",")
}

func escapeDrawtext(s string) string {
	r := strings.NewReplacer(
		`\`, `\\\\`,
		`'`, `\\\'`,
		`:`, `\\:`,
		`%`, `\\%`,
		"\n", " ",
	)
	return r.Replace(s)
}

func audioLabel(withAudio bool, label string) string {
	if !withAudio {
		return ""
	}
	return "[" + label + "]"
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
