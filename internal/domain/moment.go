package domain

const (
	MinImportance = 1
	MaxImportance = 10
)

// Categories produced by the detector prompt and the heuristic fallback.
// Detectors may return other values; they pass through unchanged.
const (
	CategoryWorkflow       = "workflow"
	CategoryDemonstration  = "demonstration"
	CategoryExplanation    = "explanation"
	CategoryProblemSolving = "problem_solving"
	CategoryInsight        = "insight"
	CategoryOverview       = "overview"
)

// Moment is a salient time range of the source video.
type Moment struct {
	Title           string  `json:"title" validate:"required"`
	Description     string  `json:"description"`
	StartTime       float64 `json:"startTime" validate:"gte=0"`
	EndTime         float64 `json:"endTime" validate:"gtfield=StartTime"`
	Importance      int     `json:"importance" validate:"min=1,max=10"`
	Category        string  `json:"category"`
	Reason          string  `json:"reason"`
	WorkflowContext string  `json:"workflowContext"`
}

func (m Moment) Duration() float64 {
	return m.EndTime - m.StartTime
}

// InRange reports whether 0 <= start < end <= videoDuration. A non-positive
// videoDuration means the upper bound is unknown and not checked.
func (m Moment) InRange(videoDuration float64) bool {
	if m.StartTime < 0 || m.StartTime >= m.EndTime {
		return false
	}
	if videoDuration > 0 && m.EndTime > videoDuration {
		return false
	}
	return true
}

// CorrectTimestamp undoes a known detector quirk: values strictly between 1
// and 10 are minutes written as decimals and are converted to seconds.
func CorrectTimestamp(v float64) float64 {
	if v > 1 && v < 10 {
		return v * 60
	}
	return v
}

// MomentSummary is the detector's description of the whole recording.
type MomentSummary struct {
	Overview        string   `json:"overview"`
	TotalMoments    int      `json:"totalMoments"`
	PrimaryWorkflow string   `json:"primaryWorkflow"`
	KeyTopics       []string `json:"keyTopics,omitempty"`
}

type DetectionSource string

const (
	DetectionSourceDetector  DetectionSource = "detector"
	DetectionSourceHeuristic DetectionSource = "heuristic"
)

// DetectionResult is what the moment analysis stage records.
type DetectionResult struct {
	Moments        []Moment        `json:"moments"`
	Summary        MomentSummary   `json:"summary"`
	Source         DetectionSource `json:"source"`
	FallbackReason string          `json:"fallbackReason,omitempty"`
	Discarded      int             `json:"discarded"`
}

// DetectionRequest is the input handed to a moment detector.
type DetectionRequest struct {
	JobID         string
	VideoPath     string
	VideoDuration float64
	Transcript    Transcript
	Options       DetectionOptions
}

type DetectionOptions struct {
	Prompt     string `json:"prompt,omitempty"`
	MaxMoments int    `json:"maxMoments,omitempty" validate:"omitempty,min=1,max=50"`
}
