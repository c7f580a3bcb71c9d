package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidJobID = errors.New("invalid job id")
)

// ValidationError reports user-correctable input problems. It is never retried.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Message
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Message)
}

func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// PrerequisiteMissingError is returned when a stage cannot find the completed
// event of the stage it depends on. No event is logged for the attempted stage.
type PrerequisiteMissingError struct {
	JobID    string
	Stage    Stage
	Required Activity
}

func (e *PrerequisiteMissingError) Error() string {
	return fmt.Sprintf("job %s: stage %s requires %s, run the missing stage first", e.JobID, e.Stage, e.Required)
}

// CollaboratorStatus classifies failures of external tools and services.
type CollaboratorStatus string

const (
	StatusFailed               CollaboratorStatus = "failed"
	StatusRateLimited          CollaboratorStatus = "rate_limited"
	StatusAuthenticationFailed CollaboratorStatus = "authentication_failed"
	StatusTimeout              CollaboratorStatus = "timeout"
	StatusUnavailable          CollaboratorStatus = "unavailable"
)

// CollaboratorError wraps a failure of ffmpeg, the transcriber or the moment
// detector. Message is kept verbatim from the collaborator.
type CollaboratorError struct {
	Collaborator string
	Op           string
	Status       CollaboratorStatus
	Message      string
	Err          error
}

func (e *CollaboratorError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Collaborator)
	if e.Op != "" {
		sb.WriteString(" ")
		sb.WriteString(e.Op)
	}
	if e.Status != "" && e.Status != StatusFailed {
		sb.WriteString(" (")
		sb.WriteString(string(e.Status))
		sb.WriteString(")")
	}
	sb.WriteString(": ")
	switch {
	case e.Message != "":
		sb.WriteString(e.Message)
	case e.Err != nil:
		sb.WriteString(e.Err.Error())
	default:
		sb.WriteString("unknown failure")
	}
	return sb.String()
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}

// ParseError reports a collaborator response that could not be decoded into
// the expected shape.
type ParseError struct {
	Source string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse %s response: %s: %v", e.Source, e.Reason, e.Err)
	}
	return fmt.Sprintf("parse %s response: %s", e.Source, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsPrerequisiteMissing(err error) bool {
	var pe *PrerequisiteMissingError
	return errors.As(err, &pe)
}

func IsParse(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// AsCollaborator returns the CollaboratorError in err's chain, if any.
func AsCollaborator(err error) (*CollaboratorError, bool) {
	var ce *CollaboratorError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
