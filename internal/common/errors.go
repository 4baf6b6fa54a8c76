// Package common defines the error taxonomy shared by the client layers.
// Callers should use errors.Is / errors.As to match these values.
package common

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// Validation failures are detected locally, before any remote call.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned only where absence is not a valid outcome.
	ErrNotFound = errors.New("not found")

	// Duplicate-action errors are resolved locally without a remote call.
	ErrAlreadyLiked = errors.New("note already liked")
	ErrLikePending  = errors.New("like already in progress")

	// Remote failures.
	ErrRemote       = errors.New("remote call failed")
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNoIdentity is returned when an operation needs a signed-in identity.
	ErrNoIdentity = errors.New("no identity")
)

// ValidationError describes a single rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError builds a ValidationError for field.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// RemoteError wraps a failure returned by the remote service for operation Op.
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

func (e *RemoteError) Is(target error) bool {
	return target == ErrRemote
}

// Remote wraps err as a RemoteError unless it is nil or already a validation
// or duplicate-action failure.
func Remote(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrValidation) || errors.Is(err, ErrAlreadyLiked) || errors.Is(err, ErrLikePending) {
		return err
	}
	return &RemoteError{Op: op, Err: err}
}

// IsRetryable reports whether err is likely to succeed on retry
// (connectivity problems and timeouts).
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrUnavailable) || errors.Is(err, context.DeadlineExceeded)
}

// Describe turns err into a message suitable for showing to a user.
func Describe(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		var msgs []string
		for _, ve := range validationErrors(err) {
			msgs = append(msgs, ve.Message)
		}
		if len(msgs) > 0 {
			return strings.Join(msgs, "; ")
		}
		return err.Error()
	case errors.Is(err, ErrAlreadyLiked):
		return "You have already liked this note"
	case IsRetryable(err):
		return "Network error. Please check your connection and try again."
	case errors.Is(err, ErrUnauthorized):
		return "Unauthorized: please sign in again"
	default:
		return err.Error()
	}
}

func validationErrors(err error) []*ValidationError {
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		var out []*ValidationError
		for _, e := range j.Unwrap() {
			out = append(out, validationErrors(e)...)
		}
		return out
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return []*ValidationError{ve}
	}
	return nil
}
