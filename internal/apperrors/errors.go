// Package apperrors provides the export error taxonomy.
//
// Every error carries one sentinel for classification via errors.Is(). Only
// configuration errors, unwritable output, and cancellation abort a run; the
// rest are recorded against a single job or task.
package apperrors

import (
	"errors"
	"fmt"
)

// Sentinel errors for classification via errors.Is().
var (
	ErrConfig               = errors.New("config error")
	ErrArtifactNotFound     = errors.New("artifact not found")
	ErrUnknownTaskVariant   = errors.New("unknown task variant")
	ErrPermissionDenied     = errors.New("permission denied")
	ErrLibraryScopeMismatch = errors.New("library scope mismatch")
	ErrOutputUnwritable     = errors.New("output unwritable")
	ErrCancelled            = errors.New("run cancelled")
)

// Error provides structured error with context.
type Error struct {
	Sentinel error  // Wrapped sentinel for errors.Is() classification
	Message  string // Human-readable message
	Op       string // Operation that failed (e.g., "workspace.export")
	Path     string // Workspace or local path involved, if any
	Cause    error  // Underlying error
}

// Error returns the human-readable error message.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap exposes both the sentinel and the cause.
func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Sentinel}
	}

	return []error{e.Sentinel, e.Cause}
}

// Config creates a configuration error for a specific setting.
func Config(field, message string) error {
	msg := message
	if field != "" {
		msg = fmt.Sprintf("%s: %s", field, message)
	}

	return &Error{
		Sentinel: ErrConfig,
		Message:  msg,
		Path:     field,
	}
}

// ArtifactNotFound creates a not found error for a referenced artifact.
func ArtifactNotFound(path, reason string) error {
	return &Error{
		Sentinel: ErrArtifactNotFound,
		Message:  fmt.Sprintf("artifact %s not found: %s", path, reason),
		Path:     path,
	}
}

// ArtifactNotFoundCause demotes an underlying failure to a not found error.
func ArtifactNotFoundCause(path string, cause error) error {
	return &Error{
		Sentinel: ErrArtifactNotFound,
		Message:  fmt.Sprintf("artifact %s not found: %v", path, cause),
		Path:     path,
		Cause:    cause,
	}
}

// UnknownVariant creates an error for a task whose type key is not recognized.
func UnknownVariant(taskKey, variant string) error {
	return &Error{
		Sentinel: ErrUnknownTaskVariant,
		Message:  fmt.Sprintf("task %q has unsupported variant %q", taskKey, variant),
	}
}

// PermissionDenied creates an error for a rejected artifact fetch.
func PermissionDenied(op, path string, cause error) error {
	return &Error{
		Sentinel: ErrPermissionDenied,
		Message:  fmt.Sprintf("%s %s: permission denied", op, path),
		Op:       op,
		Path:     path,
		Cause:    cause,
	}
}

// LibraryScopeMismatch creates an error for an environment_key without exactly one environment.
func LibraryScopeMismatch(taskKey, envKey string, matches int) error {
	return &Error{
		Sentinel: ErrLibraryScopeMismatch,
		Message: fmt.Sprintf("task %q references environment_key %q which matches %d environments (want 1)",
			taskKey, envKey, matches),
	}
}

// OutputUnwritable wraps a failure to persist export output.
func OutputUnwritable(op, path string, cause error) error {
	return &Error{
		Sentinel: ErrOutputUnwritable,
		Message:  fmt.Sprintf("%s %s: %v", op, path, cause),
		Op:       op,
		Path:     path,
		Cause:    cause,
	}
}

// Cancelled wraps a context error observed between jobs.
func Cancelled(cause error) error {
	return &Error{
		Sentinel: ErrCancelled,
		Message:  fmt.Sprintf("export run cancelled: %v", cause),
		Cause:    cause,
	}
}

// IsFatal reports whether err aborts the whole export run.
func IsFatal(err error) bool {
	return errors.Is(err, ErrConfig) ||
		errors.Is(err, ErrOutputUnwritable) ||
		errors.Is(err, ErrCancelled)
}
