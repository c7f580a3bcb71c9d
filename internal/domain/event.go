package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type Activity string

const (
	ActivityProcessingStarted        Activity = "processing_started"
	ActivityMetadataExtracted        Activity = "metadata_extracted"
	ActivityAudioExtractionCompleted Activity = "audio_extraction_completed"
	ActivityAudioExtractionFailed    Activity = "audio_extraction_failed"
	ActivityTranscriptionStarted     Activity = "transcription_started"
	ActivityTranscriptionCompleted   Activity = "transcription_completed"
	ActivityTranscriptionFailed      Activity = "transcription_failed"
	ActivityMomentAnalysisStarted    Activity = "moment_analysis_started"
	ActivityMomentAnalysisCompleted  Activity = "moment_analysis_completed"
	ActivityMomentAnalysisFailed     Activity = "moment_analysis_failed"
	ActivitySummarizationStarted     Activity = "video_summarization_started"
	ActivitySummarizationCompleted   Activity = "video_summarization_completed"
	ActivitySummarizationFailed      Activity = "video_summarization_failed"
	ActivityQuickSummaryCompleted    Activity = "quick_summary_completed"
	ActivityFullPipelineCompleted    Activity = "full_pipeline_completed"
	ActivityFullPipelineFailed       Activity = "full_pipeline_failed"
	ActivityCleanupCompleted         Activity = "cleanup_completed"
)

var knownActivities = map[Activity]bool{
	ActivityProcessingStarted:        true,
	ActivityMetadataExtracted:        true,
	ActivityAudioExtractionCompleted: true,
	ActivityAudioExtractionFailed:    true,
	ActivityTranscriptionStarted:     true,
	ActivityTranscriptionCompleted:   true,
	ActivityTranscriptionFailed:      true,
	ActivityMomentAnalysisStarted:    true,
	ActivityMomentAnalysisCompleted:  true,
	ActivityMomentAnalysisFailed:     true,
	ActivitySummarizationStarted:     true,
	ActivitySummarizationCompleted:   true,
	ActivitySummarizationFailed:      true,
	ActivityQuickSummaryCompleted:    true,
	ActivityFullPipelineCompleted:    true,
	ActivityFullPipelineFailed:       true,
	ActivityCleanupCompleted:         true,
}

func (a Activity) Valid() bool {
	return knownActivities[a]
}

func (a Activity) IsFailure() bool {
	return strings.HasSuffix(string(a), "_failed")
}

// StageEvent is one immutable entry of a job's log.
type StageEvent struct {
	Timestamp time.Time      `json:"timestamp"`
	JobID     string         `json:"jobId"`
	Activity  Activity       `json:"activity"`
	Details   map[string]any `json:"details"`
	// Seq is the 1-based position of the event in its job's history, set by
	// JobLog.Append and JobLog.Query. Timestamps are not guaranteed to follow
	// append order; Seq is.
	Seq int `json:"seq,omitempty"`
}

// Decode unmarshals the event details into v.
func (e *StageEvent) Decode(v any) error {
	data, err := json.Marshal(e.Details)
	if err != nil {
		return fmt.Errorf("encode %s details: %w", e.Activity, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s details: %w", e.Activity, err)
	}
	return nil
}

// ErrorMessage returns the "error" detail of a failure event.
func (e *StageEvent) ErrorMessage() string {
	if msg, ok := e.Details["error"].(string); ok {
		return msg
	}
	return ""
}

// NewDetails converts a typed payload into an event details map.
func NewDetails(v any) (map[string]any, error) {
	if v == nil {
		return map[string]any{}, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode details: %w", err)
	}
	details := map[string]any{}
	if err := json.Unmarshal(data, &details); err != nil {
		return nil, fmt.Errorf("details must encode to an object: %w", err)
	}
	return details, nil
}

// FailureDetails is the payload of every *_failed event.
func FailureDetails(err error) map[string]any {
	details := map[string]any{"error": err.Error()}
	if ce, ok := AsCollaborator(err); ok {
		details["collaborator"] = ce.Collaborator
		details["status"] = string(ce.Status)
	}
	return details
}
