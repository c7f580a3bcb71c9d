package whisper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/bnema/recap/internal/domain"
	"github.com/bnema/recap/internal/infrastructure/logger"
	"github.com/bnema/recap/internal/port"
)

type runFunc func(ctx context.Context, name string, args ...string) (string, error)

// Transcriber shells out to the whisper.cpp CLI and reads its full JSON
// output (-ojf).
type Transcriber struct {
	bin             string
	model           string
	defaultLanguage string
	run             runFunc
}

func NewTranscriber(bin, model, defaultLanguage string) *Transcriber {
	return &Transcriber{bin: bin, model: model, defaultLanguage: defaultLanguage, run: runCommand}
}

func runCommand(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var output strings.Builder
	cmd.Stdout = &output
	cmd.Stderr = &output
	err := cmd.Run()
	return output.String(), err
}

func (t *Transcriber) args(audioPath, outPrefix string, opts domain.TranscriptionOptions) []string {
	lang := opts.Language
	if lang == "" {
		lang = t.defaultLanguage
	}
	if lang == "" {
		lang = "auto"
	}
	args := []string{
		"-m", t.model,
		"-f", audioPath,
		"-l", lang,
		"-ojf",
		"-of", outPrefix,
		"-np",
	}
	if opts.Prompt != "" {
		args = append(args, "--prompt", opts.Prompt)
	}
	return args
}

func (t *Transcriber) Transcribe(ctx context.Context, audioPath string, opts domain.TranscriptionOptions) (*domain.Transcript, error) {
	if audioPath == "" || strings.ContainsRune(audioPath, '\x00') {
		return nil, domain.NewValidationError("audioPath", "invalid audio path")
	}
	outPrefix := strings.TrimSuffix(audioPath, filepath.Ext(audioPath)) + ".transcript"
	jsonPath := outPrefix + ".json"
	defer os.Remove(jsonPath)

	output, err := t.run(ctx, t.bin, t.args(audioPath, outPrefix, opts)...)
	if err != nil {
		status := domain.StatusFailed
		var execErr *exec.Error
		switch {
		case errors.As(err, &execErr):
			status = domain.StatusUnavailable
		case errors.Is(ctx.Err(), context.DeadlineExceeded):
			status = domain.StatusTimeout
		}
		logger.Debug.Printf("whisper output: %s", logger.Truncate(output, logger.MaxFieldLength))
		return nil, &domain.CollaboratorError{
			Collaborator: "whisper",
			Op:           "transcribe",
			Status:       status,
			Message:      fmt.Sprintf("%v: %s", err, lastLine(output)),
			Err:          err,
		}
	}

	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, &domain.ParseError{Source: "whisper", Reason: "missing JSON output", Err: err}
	}
	return parseOutput(data)
}

type fullOutput struct {
	Result struct {
		Language string `json:"language"`
	} `json:"result"`
	Transcription []struct {
		Offsets struct {
			From int64 `json:"from"`
			To   int64 `json:"to"`
		} `json:"offsets"`
		Text   string `json:"text"`
		Tokens []struct {
			Text string  `json:"text"`
			P    float64 `json:"p"`
		} `json:"tokens"`
	} `json:"transcription"`
}

// parseOutput converts whisper's millisecond offsets to seconds. Confidence
// is the mean probability of non-special tokens.
func parseOutput(data []byte) (*domain.Transcript, error) {
	var out fullOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, &domain.ParseError{Source: "whisper", Reason: "invalid JSON output", Err: err}
	}

	tr := &domain.Transcript{Language: out.Result.Language, Segments: []domain.TranscriptSegment{}}
	var texts []string
	var pSum float64
	var pCount int
	for _, seg := range out.Transcription {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		tr.Segments = append(tr.Segments, domain.TranscriptSegment{
			Start: float64(seg.Offsets.From) / 1000,
			End:   float64(seg.Offsets.To) / 1000,
			Text:  text,
		})
		texts = append(texts, text)
		for _, tok := range seg.Tokens {
			if strings.HasPrefix(tok.Text, "[_") {
				continue
			}
			pSum += tok.P
			pCount++
		}
	}
	tr.Text = strings.Join(texts, " ")
	tr.WordCount = domain.CountWords(tr.Text)
	if pCount > 0 {
		tr.Confidence = pSum / float64(pCount)
	}
	return tr, nil
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

var _ port.Transcriber = (*Transcriber)(nil)
