package domain

import "time"

// Stage names a discrete pipeline step that can be invoked on its own.
type Stage string

const (
	StageIngest       Stage = "ingest"
	StageAudio        Stage = "audio"
	StageTranscribe   Stage = "transcribe"
	StageMoments      Stage = "moments"
	StageSummarize    Stage = "summarize"
	StageQuickSummary Stage = "quick-summary"
	StageCleanup      Stage = "cleanup"
)

func ParseStage(s string) (Stage, bool) {
	switch Stage(s) {
	case StageIngest, StageAudio, StageTranscribe, StageMoments, StageSummarize, StageQuickSummary, StageCleanup:
		return Stage(s), true
	}
	return "", false
}

// JobState is the explicit status of a job, derived by folding its events
// through Transition.
type JobState string

const (
	JobStateUnknown        JobState = ""
	JobStateCreated        JobState = "created"
	JobStateValidated      JobState = "validated"
	JobStateAudioExtracted JobState = "audio_extracted"
	JobStateTranscribed    JobState = "transcribed"
	JobStateAnalyzed       JobState = "analyzed"
	JobStateSummarized     JobState = "summarized"
	JobStateCleaned        JobState = "cleaned"
	JobStateFailed         JobState = "failed"
)

var completionStates = map[Activity]JobState{
	ActivityProcessingStarted:        JobStateCreated,
	ActivityMetadataExtracted:        JobStateValidated,
	ActivityAudioExtractionCompleted: JobStateAudioExtracted,
	ActivityTranscriptionCompleted:   JobStateTranscribed,
	ActivityMomentAnalysisCompleted:  JobStateAnalyzed,
	ActivitySummarizationCompleted:   JobStateSummarized,
	ActivityCleanupCompleted:         JobStateCleaned,
}

// Transition returns the state reached after appending activity to a job in
// state from. Started markers and informational events leave the state alone;
// re-running an earlier stage moves the job back to that stage's state.
func Transition(from JobState, activity Activity) JobState {
	if activity.IsFailure() {
		return JobStateFailed
	}
	if to, ok := completionStates[activity]; ok {
		return to
	}
	if from == JobStateUnknown {
		return JobStateCreated
	}
	return from
}

// DeriveState folds a job's history in append order.
func DeriveState(events []StageEvent) JobState {
	state := JobStateUnknown
	for _, e := range events {
		state = Transition(state, e.Activity)
	}
	return state
}

// JobStatus is the explicit state record kept alongside a job's events.
type JobStatus struct {
	JobID        string    `json:"jobId"`
	State        JobState  `json:"state"`
	LastActivity Activity  `json:"lastActivity"`
	LastError    string    `json:"lastError,omitempty"`
	EventCount   int       `json:"eventCount"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Apply advances the record with a newly appended event.
func (s *JobStatus) Apply(e StageEvent) {
	if s.EventCount == 0 {
		s.CreatedAt = e.Timestamp
	}
	s.JobID = e.JobID
	s.State = Transition(s.State, e.Activity)
	s.LastActivity = e.Activity
	if e.Activity.IsFailure() {
		s.LastError = e.ErrorMessage()
	} else if s.State != JobStateFailed {
		s.LastError = ""
	}
	s.EventCount++
	s.UpdatedAt = e.Timestamp
}

// StatusFromEvents rebuilds a JobStatus by replaying events.
func StatusFromEvents(jobID string, events []StageEvent) *JobStatus {
	status := &JobStatus{JobID: jobID}
	for _, e := range events {
		status.Apply(e)
	}
	return status
}
