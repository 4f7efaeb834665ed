package entities

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound marks a remote lookup that completed but matched nothing.
var ErrNotFound = errors.New("not found")

// FailureKind separates infrastructure failures that may succeed on a later
// run from failures that will keep failing until the declaration or the
// deployment changes. It annotates an outcome and never changes its status.
type FailureKind string

const (
	FailureNone      FailureKind = ""
	FailurePermanent FailureKind = "permanent"
	FailureTransient FailureKind = "transient"
)

// MalformedConfigError is returned when a declaration lacks a required field
// or has it in the wrong shape.
type MalformedConfigError struct {
	SourceID string
	Field    string
	Reason   string
	Err      error
}

func (e *MalformedConfigError) Error() string {
	msg := fmt.Sprintf("malformed declaration %q", e.SourceID)
	if e.Field != "" {
		msg += fmt.Sprintf(": field %q", e.Field)
	}
	if e.Reason != "" {
		msg += " " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedConfigError) Unwrap() error { return e.Err }

// RepoStateUnavailableError is returned when any remote call needed to build
// a RepoState failed. No partial state accompanies it.
type RepoStateUnavailableError struct {
	SCMIdentifier string
	Step          string
	Err           error
}

func (e *RepoStateUnavailableError) Error() string {
	return fmt.Sprintf("repository %q unavailable (%s): %v", e.SCMIdentifier, e.Step, e.Err)
}

func (e *RepoStateUnavailableError) Unwrap() error { return e.Err }

// TransientError marks a gateway failure caused by the transport: timeouts,
// rate limiting, server-side errors. Gateways wrap such failures with it.
type TransientError struct {
	Err error
}

// NewTransientError wraps err as transient. A nil err stays nil.
func NewTransientError(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Err: err}
}

func (e *TransientError) Error() string { return "transient: " + e.Err.Error() }

func (e *TransientError) Unwrap() error { return e.Err }

// IsTransient reports whether err was caused by a transient failure.
func IsTransient(err error) bool {
	var transient *TransientError
	if errors.As(err, &transient) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// ClassifyFailure returns the FailureKind for err.
func ClassifyFailure(err error) FailureKind {
	switch {
	case err == nil:
		return FailureNone
	case IsTransient(err):
		return FailureTransient
	default:
		return FailurePermanent
	}
}
