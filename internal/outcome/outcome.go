// Package outcome provides the tagged success-or-failure value passed between
// pipeline stages. A stage never returns a bare error: it returns a Result whose
// payload can only be read after the failure branch has been checked.
package outcome

import (
	"errors"
	"fmt"
)

// Kind classifies a Failure.
type Kind string

const (
	// SchemaViolation means generated or supplied data did not match its contract.
	SchemaViolation Kind = "schema_violation"
	// GenerationError means the text/vision model call failed (transport, quota, timeout).
	GenerationError Kind = "generation_error"
	// EmptyGeneration means the model answered but the essential field was empty.
	EmptyGeneration Kind = "empty_generation"
	// IncompleteProfile means a profile lacked fields required for rendering.
	IncompleteProfile Kind = "incomplete_profile"
	// ImageGenerationError means the image generator failed.
	ImageGenerationError Kind = "image_generation_error"
)

// Failure is a terminal, typed stage failure.
type Failure struct {
	Kind    Kind
	Message string
	Cause   error
	// Fields lists missing field names for IncompleteProfile failures.
	Fields []string
}

func (f *Failure) Error() string {
	if f.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", f.Kind, f.Message, f.Cause)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

func (f *Failure) Unwrap() error {
	return f.Cause
}

// Newf builds a Failure with a formatted message.
func Newf(kind Kind, format string, args ...any) *Failure {
	return &Failure{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds a Failure carrying the underlying cause.
func Wrap(kind Kind, message string, cause error) *Failure {
	return &Failure{Kind: kind, Message: message, Cause: cause}
}

// As extracts a Failure from an error chain.
func As(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

// IsKind reports whether err is a Failure of the given kind.
func IsKind(err error, kind Kind) bool {
	f, ok := As(err)
	return ok && f.Kind == kind
}

// Result is either a value of T or a Failure, never both.
type Result[T any] struct {
	value   T
	failure *Failure
}

// Ok wraps a successful value.
func Ok[T any](v T) Result[T] {
	return Result[T]{value: v}
}

// Fail wraps a Failure. A nil failure is replaced by a GenerationError so that
// a Result built with Fail can never be mistaken for a success.
func Fail[T any](f *Failure) Result[T] {
	if f == nil {
		f = Newf(GenerationError, "unspecified failure")
	}
	return Result[T]{failure: f}
}

// Forward re-tags a failed Result as a failed Result of another payload type.
// It panics when r is a success; callers check Failed first.
func Forward[T, U any](r Result[U]) Result[T] {
	if r.failure == nil {
		panic("outcome: Forward called on a successful result")
	}
	return Result[T]{failure: r.failure}
}

// Failed reports whether the Result holds a Failure.
func (r Result[T]) Failed() bool {
	return r.failure != nil
}

// Failure returns the Failure, or nil on success.
func (r Result[T]) Failure() *Failure {
	return r.failure
}

// Value returns the payload together with the Failure. The payload is the
// zero value whenever the Failure is non-nil.
func (r Result[T]) Value() (T, *Failure) {
	if r.failure != nil {
		var zero T
		return zero, r.failure
	}
	return r.value, nil
}

// Err returns the Failure as an error (nil on success), for edges that speak error.
func (r Result[T]) Err() error {
	if r.failure == nil {
		return nil
	}
	return r.failure
}
