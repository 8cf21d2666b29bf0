package messages

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned for a non-positive look-back window,
	// a malformed category filter, or an invalid registration.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrDuplicateSource is returned when a source name is registered twice.
	ErrDuplicateSource = errors.New("duplicate source")

	// ErrSourceFailure is wrapped by every SourceError.
	ErrSourceFailure = errors.New("source failure")
)

// SourceError reports a producer that failed during aggregation.
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source %q failed: %v", e.Source, e.Err)
}

// Unwrap exposes both ErrSourceFailure and the producer's own error to errors.Is.
func (e *SourceError) Unwrap() []error {
	return []error{ErrSourceFailure, e.Err}
}
