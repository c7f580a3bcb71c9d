package whisper

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/bnema/recap/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleOutput = `{
	"result": {"language": "en"},
	"transcription": [
		{"offsets": {"from": 0, "to": 4200}, "text": " Open the terminal and run make.",
		 "tokens": [{"text": "[_BEG_]", "p": 0.1}, {"text": " Open", "p": 0.9}, {"text": " the", "p": 0.7}]},
		{"offsets": {"from": 4200, "to": 9000}, "text": "   ", "tokens": []},
		{"offsets": {"from": 9000, "to": 15500}, "text": " Now deploy it.",
		 "tokens": [{"text": " Now", "p": 0.8}]}
	]
}`

func TestParseOutput(t *testing.T) {
	tr, err := parseOutput([]byte(sampleOutput))

	require.NoError(t, err)
	assert.Equal(t, "en", tr.Language)
	require.Len(t, tr.Segments, 2)
	assert.Equal(t, domain.TranscriptSegment{Start: 0, End: 4.2, Text: "Open the terminal and run make."}, tr.Segments[0])
	assert.Equal(t, 9.0, tr.Segments[1].Start)
	assert.Equal(t, 15.5, tr.Segments[1].End)
	assert.Equal(t, "Open the terminal and run make. Now deploy it.", tr.Text)
	assert.Equal(t, 9, tr.WordCount)
	assert.InDelta(t, 0.8, tr.Confidence, 1e-9)
}

func TestParseOutput_Invalid(t *testing.T) {
	_, err := parseOutput([]byte("{"))

	assert.True(t, domain.IsParse(err))
}

func TestTranscriber_Transcribe(t *testing.T) {
	dir := t.TempDir()
	audio := filepath.Join(dir, "job-1_audio.wav")

	tr := NewTranscriber("whisper-cli", "/models/base.bin", "en")
	var gotArgs []string
	tr.run = func(_ context.Context, name string, args ...string) (string, error) {
		gotArgs = args
		return "", os.WriteFile(filepath.Join(dir, "job-1_audio.transcript.json"), []byte(sampleOutput), 0o600)
	}

	result, err := tr.Transcribe(context.Background(), audio, domain.TranscriptionOptions{Prompt: "kubectl, helm"})

	require.NoError(t, err)
	assert.Len(t, result.Segments, 2)
	assert.Equal(t, []string{
		"-m", "/models/base.bin",
		"-f", audio,
		"-l", "en",
		"-ojf",
		"-of", filepath.Join(dir, "job-1_audio.transcript"),
		"-np",
		"--prompt", "kubectl, helm",
	}, gotArgs)

	_, statErr := os.Stat(filepath.Join(dir, "job-1_audio.transcript.json"))
	assert.True(t, os.IsNotExist(statErr), "intermediate JSON should be removed")
}

func TestTranscriber_Transcribe_CommandFails(t *testing.T) {
	tr := NewTranscriber("whisper-cli", "/models/base.bin", "")
	tr.run = func(context.Context, string, ...string) (string, error) {
		return "loading model\nerror: failed to open audio file", errors.New("exit status 2")
	}

	_, err := tr.Transcribe(context.Background(), filepath.Join(t.TempDir(), "a.wav"), domain.TranscriptionOptions{})

	ce, ok := domain.AsCollaborator(err)
	require.True(t, ok)
	assert.Equal(t, "whisper", ce.Collaborator)
	assert.Equal(t, domain.StatusFailed, ce.Status)
	assert.Contains(t, ce.Message, "failed to open audio file")
}

func TestTranscriber_Transcribe_NoOutputFile(t *testing.T) {
	tr := NewTranscriber("whisper-cli", "/models/base.bin", "")
	tr.run = func(context.Context, string, ...string) (string, error) { return "", nil }

	_, err := tr.Transcribe(context.Background(), filepath.Join(t.TempDir(), "a.wav"), domain.TranscriptionOptions{})

	assert.True(t, domain.IsParse(err))
}
