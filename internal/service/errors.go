package service

import (
	"errors"
	"fmt"
)

// SubmissionErrorKind discriminates why a submission was rejected.
type SubmissionErrorKind string

const (
	UnknownService      SubmissionErrorKind = "unknown_service"
	MissingField        SubmissionErrorKind = "missing_field"
	NoAttachments       SubmissionErrorKind = "no_attachments"
	DisallowedExtension SubmissionErrorKind = "disallowed_extension"
	LocationConflict    SubmissionErrorKind = "location_conflict"
	PersistenceFailure  SubmissionErrorKind = "persistence_failure"
)

// SubmissionError is a rejected submission. Every rejection names the
// specific validation that failed so the caller can correct and retry;
// the original input is never consumed by a failure.
type SubmissionError struct {
	Kind     SubmissionErrorKind
	Field    string // set for MissingField
	Filename string // set for DisallowedExtension
	Cause    error  // set for PersistenceFailure
}

func (e *SubmissionError) Error() string {
	switch e.Kind {
	case UnknownService:
		return "unknown service"
	case MissingField:
		return fmt.Sprintf("required field missing: %s", e.Field)
	case NoAttachments:
		return "at least one attachment is required"
	case DisallowedExtension:
		return fmt.Sprintf("file type not allowed: %s", e.Filename)
	case LocationConflict:
		return "could not allocate a unique storage location"
	case PersistenceFailure:
		return fmt.Sprintf("failed to persist submission: %v", e.Cause)
	}
	return string(e.Kind)
}

func (e *SubmissionError) Unwrap() error {
	return e.Cause
}

// AsSubmissionError unwraps err into a *SubmissionError when possible.
func AsSubmissionError(err error) (*SubmissionError, bool) {
	var se *SubmissionError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
