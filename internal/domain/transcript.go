package domain

import "strings"

type TranscriptSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Transcript is the result of the transcription stage.
type Transcript struct {
	Text       string              `json:"text"`
	Segments   []TranscriptSegment `json:"segments"`
	WordCount  int                 `json:"wordCount"`
	Confidence float64             `json:"confidence"`
	Language   string              `json:"language"`
}

// Span returns the start of the first and the end of the last segment.
func (t Transcript) Span() (start, end float64) {
	if len(t.Segments) == 0 {
		return 0, 0
	}
	return t.Segments[0].Start, t.Segments[len(t.Segments)-1].End
}

func CountWords(s string) int {
	return len(strings.Fields(s))
}

type TranscriptionOptions struct {
	Language string `json:"language,omitempty" validate:"omitempty,min=2,max=8"`
	Prompt   string `json:"prompt,omitempty" validate:"max=1000"`
}
