package ffmpeg

import (
	"context"
	"strings"
	"testing"

	"github.com/bnema/recap/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func composeRequest(durations ...float64) domain.ComposeRequest {
	req := domain.ComposeRequest{
		JobID:      "job-1",
		OutputPath: "/data/output/summary_job-1.mp4",
		Width:      1920,
		Height:     1080,
		Options:    domain.DefaultCompositionOptions(),
	}
	for i, d := range durations {
		req.Segments = append(req.Segments, domain.Segment{
			Index:    i + 1,
			Path:     "/data/segments/job-1/segment_" + string(rune('1'+i)) + ".mp4",
			Duration: d,
		})
	}
	return req
}

func filterGraph(t *testing.T, args []string) string {
	t.Helper()
	for i, a := range args {
		if a == "-filter_complex" {
			require.Less(t, i+1, len(args))
			return args[i+1]
		}
	}
	t.Fatal("no -filter_complex argument")
	return ""
}

func TestComposeArgs_Concat(t *testing.T) {
	args := composeArgs(composeRequest(10, 20, 30))
	graph := filterGraph(t, args)

	assert.Contains(t, graph, "[v0][a0][v1][a1][v2][a2]concat=n=3:v=1:a=1[vcat][acat]")
	assert.NotContains(t, graph, "xfade")
	assert.Contains(t, strings.Join(args, " "), "-map [vcat] -map [acat]")
	assert.Equal(t, "/data/output/summary_job-1.mp4", args[len(args)-1])
}

func TestComposeArgs_Transitions(t *testing.T) {
	req := composeRequest(10, 20, 30)
	req.Options.Transitions = domain.TransitionOptions{Enabled: true, Type: "dissolve", Duration: 1}

	graph := filterGraph(t, composeArgs(req))

	assert.Contains(t, graph, "[v0][v1]xfade=transition=dissolve:duration=1:offset=9[vx1]")
	assert.Contains(t, graph, "[vx1][v2]xfade=transition=dissolve:duration=1:offset=28[vx2]")
	assert.Contains(t, graph, "[ax1][a2]acrossfade=d=1[ax2]")
}

func TestComposeArgs_SpeedAndNormalize(t *testing.T) {
	req := composeRequest(10, 20)
	req.Options.Speed = domain.SpeedOptions{Enabled: true, Factor: 3}
	req.Options.Audio.Normalize = true

	args := composeArgs(req)
	graph := filterGraph(t, args)

	assert.Contains(t, graph, "setpts=PTS/3")
	assert.Contains(t, graph, "atempo=2,atempo=1.5")
	assert.Contains(t, graph, "[acat]loudnorm=I=-16:TP=-1.5:LRA=11[anorm]")
	assert.Contains(t, strings.Join(args, " "), "-map [anorm]")
}

func TestComposeArgs_IntroWithoutAudio(t *testing.T) {
	req := composeRequest(10)
	req.Options.Audio.Enabled = false
	req.Options.Intro = domain.IntroOptions{Enabled: true, Duration: 3, Text: "Sprint demo: part 1"}

	args := composeArgs(req)
	graph := filterGraph(t, args)
	joined := strings.Join(args, " ")

	assert.Contains(t, joined, "-f lavfi -t 3.000 -i color=c=black:s=1920x1080:r=30")
	assert.NotContains(t, joined, "anullsrc")
	assert.Contains(t, graph, `drawtext=text='Sprint demo\\: part 1'`)
	assert.Contains(t, graph, "[vintro][v0]concat=n=2:v=1:a=0[vfinal]")
	assert.Contains(t, joined, "-an")
	assert.NotContains(t, graph, "[0:a]")
}

func TestAtempoChain(t *testing.T) {
	assert.Equal(t, "atempo=1.5", atempoChain(1.5))
	assert.Equal(t, "atempo=2,atempo=2", atempoChain(4))
	assert.Equal(t, "atempo=0.5,atempo=0.5", atempoChain(0.25))
}

func TestTool_Compose_RequiresSegments(t *testing.T) {
	tool, calls := fakeTool(nil, nil)

	err := tool.Compose(context.Background(), domain.ComposeRequest{OutputPath: "/tmp/out.mp4"})

	assert.True(t, domain.IsValidation(err))
	assert.Empty(t, *calls)
}
