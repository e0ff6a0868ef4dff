// Package apperrors defines the error kinds shared across the ingestion and
// query pipelines. Callers classify failures with errors.Is and map kinds to
// transport codes at the edge.
package apperrors

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation covers bad input shape: empty query, non-positive top_k,
	// unsupported file extension, missing path.
	ErrValidation = errors.New("validation error")

	// ErrNotFound covers unknown job, document or chunk ids.
	ErrNotFound = errors.New("not found")

	// ErrEmptyContent is the expected condition for text that is empty after
	// trimming. It is not an internal failure.
	ErrEmptyContent = errors.New("empty content")

	// ErrServiceUnavailable covers unreachable external dependencies:
	// embedding, rerank, generation, storage backends.
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrProcessing covers unexpected failures during pipeline execution.
	ErrProcessing = errors.New("processing error")

	// ErrConflict is returned to the loser of a job claim race.
	ErrConflict = errors.New("conflict")

	// ErrDatabase covers catalog and registry persistence failures.
	ErrDatabase = errors.New("database error")
)

func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func NotFound(kind, id string) error {
	return fmt.Errorf("%w: %s %q", ErrNotFound, kind, id)
}

// Wrap attaches a kind to an underlying cause so both survive errors.Is.
func Wrap(kind error, context string, cause error) error {
	if cause == nil {
		return fmt.Errorf("%w: %s", kind, context)
	}
	return fmt.Errorf("%w: %s: %w", kind, context, cause)
}
