package executor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrNoPagesProduced is returned when a run selects no pages at all.
	ErrNoPagesProduced = errors.New("no pages produced")
	// ErrEmptySelection marks an input whose page selection is empty.
	ErrEmptySelection = errors.New("page selection is empty")
	// ErrInvalidChunkSize is returned for a chunked split below one page.
	ErrInvalidChunkSize = errors.New("pages per file must be at least 1")
)

// InputError records why a merge input was skipped.
type InputError struct {
	Path      string    // Input that was skipped
	Message   string    // Short reason, e.g. "open failed"
	Err       error     // Underlying error
	Timestamp time.Time // When the input was skipped
}

// NewInputError creates a new InputError with the current timestamp.
func NewInputError(path, msg string, err error) *InputError {
	return &InputError{
		Path:      path,
		Message:   msg,
		Err:       err,
		Timestamp: time.Now(),
	}
}

// Error implements the error interface for InputError.
func (e *InputError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("input %s: %s", e.Path, e.Message))
	if e.Err != nil {
		sb.WriteString(fmt.Sprintf(": %v", e.Err))
	}
	return sb.String()
}

// Unwrap returns the underlying error for error wrapping support.
func (e *InputError) Unwrap() error {
	return e.Err
}

// OutputError reports a failure to produce one output file.
type OutputError struct {
	Path  string // Target path, empty if naming itself failed
	Index int    // 1-based output index, 0 for a merge
	Err   error
}

// Error implements the error interface for OutputError.
func (e *OutputError) Error() string {
	switch {
	case e.Index > 0 && e.Path != "":
		return fmt.Sprintf("output %d (%s): %v", e.Index, e.Path, e.Err)
	case e.Index > 0:
		return fmt.Sprintf("output %d: %v", e.Index, e.Err)
	default:
		return fmt.Sprintf("output %s: %v", e.Path, e.Err)
	}
}

// Unwrap returns the underlying error.
func (e *OutputError) Unwrap() error {
	return e.Err
}

// IsCancelled reports whether err is or wraps context.Canceled.
func IsCancelled(err error) bool {
	return err != nil && errors.Is(err, context.Canceled)
}

// IsOutputError checks if the error is or wraps an OutputError.
func IsOutputError(err error) bool {
	if err == nil {
		return false
	}
	var oe *OutputError
	return errors.As(err, &oe)
}
