package domain

// SortOrder is the final ordering applied by the moment filter.
type SortOrder string

const (
	SortChronological SortOrder = "chronological"
	SortImportance    SortOrder = "importance"
	SortDuration      SortOrder = "duration"
)

// FilterOptions selects and orders detected moments. Nil fields are unset.
type FilterOptions struct {
	MinImportance     *int      `json:"minImportance,omitempty" validate:"omitempty,min=1,max=10"`
	IncludeCategories []string  `json:"includeCategories,omitempty" validate:"omitempty,dive,required"`
	MaxMomentDuration *float64  `json:"maxMomentDuration,omitempty" validate:"omitempty,gt=0"`
	MaxMoments        *int      `json:"maxMoments,omitempty" validate:"omitempty,min=1"`
	SortMomentsBy     SortOrder `json:"sortMomentsBy,omitempty" validate:"omitempty,oneof=chronological importance duration"`
}

// SortPolicy orders extracted segments right before composition.
type SortPolicy string

const (
	SortPolicyOrder         SortPolicy = "order"
	SortPolicyImportance    SortPolicy = "importance"
	SortPolicyDuration      SortPolicy = "duration"
	SortPolicyChronological SortPolicy = "chronological"
)

type TransitionOptions struct {
	Enabled  bool    `json:"enabled"`
	Type     string  `json:"type" validate:"omitempty,oneof=fade dissolve wipeleft wiperight slideleft slideright"`
	Duration float64 `json:"duration" validate:"gte=0,lte=5"`
}

type IntroOptions struct {
	Enabled  bool    `json:"enabled"`
	Duration float64 `json:"duration" validate:"gte=0,lte=30"`
	Text     string  `json:"text" validate:"max=200"`
}

type SpeedOptions struct {
	Enabled bool    `json:"enabled"`
	Factor  float64 `json:"factor" validate:"gt=0,lte=4"`
}

type QualityOptions struct {
	Preset string `json:"preset" validate:"oneof=ultrafast superfast veryfast faster fast medium slow slower veryslow"`
	CRF    int    `json:"crf" validate:"min=0,max=51"`
}

type AudioOptions struct {
	Enabled   bool `json:"enabled"`
	Normalize bool `json:"normalize"`
}

// CompositionOptions controls how selected segments are rendered.
type CompositionOptions struct {
	Transitions TransitionOptions `json:"transitions"`
	Intro       IntroOptions      `json:"intro"`
	Speed       SpeedOptions      `json:"speed"`
	Quality     QualityOptions    `json:"quality"`
	Audio       AudioOptions      `json:"audio"`
	SortBy      SortPolicy        `json:"sortBy,omitempty" validate:"omitempty,oneof=order importance duration chronological"`
	Preview     bool              `json:"preview"`
	Thumbnails  bool              `json:"thumbnails"`
}

func DefaultCompositionOptions() CompositionOptions {
	return CompositionOptions{
		Transitions: TransitionOptions{Type: "fade", Duration: 0.5},
		Intro:       IntroOptions{Duration: 3},
		Speed:       SpeedOptions{Factor: 1},
		Quality:     QualityOptions{Preset: "medium", CRF: 23},
		Audio:       AudioOptions{Enabled: true},
		SortBy:      SortPolicyOrder,
	}
}

// CompositionPlan is advisory metadata derived from segments and options.
type CompositionPlan struct {
	TotalSegments     int               `json:"totalSegments"`
	EstimatedDuration float64           `json:"estimatedDuration"`
	Transitions       TransitionOptions `json:"transitions"`
	Intro             IntroOptions      `json:"intro"`
	Speed             SpeedOptions      `json:"speed"`
	Quality           QualityOptions    `json:"quality"`
	Audio             AudioOptions      `json:"audio"`
}

// Segment is one extracted clip, owned by the job's segment directory.
type Segment struct {
	Index             int     `json:"index"`
	Title             string  `json:"title"`
	Category          string  `json:"category"`
	Importance        int     `json:"importance"`
	OriginalStartTime float64 `json:"originalStartTime"`
	OriginalEndTime   float64 `json:"originalEndTime"`
	Duration          float64 `json:"duration"`
	Filename          string  `json:"filename"`
	Path              string  `json:"path"`
	FileSize          int64   `json:"fileSize"`
	Thumbnail         string  `json:"thumbnail,omitempty"`
}

// SummaryOptions is the caller input of the summarize and quick summary stages.
type SummaryOptions struct {
	Filter      FilterOptions      `json:"filter"`
	Composition CompositionOptions `json:"composition"`
}

func DefaultSummaryOptions() SummaryOptions {
	return SummaryOptions{Composition: DefaultCompositionOptions()}
}

// SummaryStats compares the composed artifact with its inputs.
type SummaryStats struct {
	SourceDuration   float64 `json:"sourceDuration"`
	OriginalDuration float64 `json:"originalDuration"`
	FinalDuration    float64 `json:"finalDuration"`
	CompressionRatio float64 `json:"compressionRatio"`
	OutputSize       int64   `json:"outputSize"`
}

// ComposeRequest is handed to the media tool to render the final artifact.
type ComposeRequest struct {
	JobID      string
	Segments   []Segment
	OutputPath string
	WorkDir    string
	Width      int
	Height     int
	Options    CompositionOptions
	Plan       CompositionPlan
}
