package domain

import (
	"database/sql"
	"regexp"
	"time"

	"github.com/google/uuid"
)

var jobIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,63}$`)

// NewJobID returns a time-ordered, collision-resistant job identifier.
func NewJobID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// ValidateJobID rejects identifiers that are unsafe to embed in file names.
func ValidateJobID(id string) error {
	if !jobIDPattern.MatchString(id) {
		return ErrInvalidJobID
	}
	return nil
}

// RunMode selects which convenience flow a queued run executes.
type RunMode string

const (
	RunModeFull      RunMode = "full"
	RunModeSummarize RunMode = "summarize"
)

type RunStatus string

const (
	RunStatusPending RunStatus = "pending"
	RunStatusRunning RunStatus = "running"
	RunStatusDone    RunStatus = "done"
	RunStatusFailed  RunStatus = "failed"
)

// Run is a queued asynchronous pipeline invocation for one job.
type Run struct {
	ID           int64
	JobID        string
	Mode         RunMode
	SourcePath   string
	OriginalName string
	OptionsJSON  string
	Status       RunStatus
	ErrorMessage string
	Attempts     int64
	CreatedAt    time.Time
	StartedAt    sql.NullTime
	CompletedAt  sql.NullTime
}
