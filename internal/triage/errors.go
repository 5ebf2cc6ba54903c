package triage

import "fmt"

// ErrorKind classifies triage-call failures.
type ErrorKind string

const (
	// TransportFailure covers network errors, non-2xx statuses and timeouts.
	TransportFailure ErrorKind = "transport_failure"
	// MalformedOutput covers responses with no extractable JSON object.
	MalformedOutput ErrorKind = "malformed_output"
)

// Error is the failure type for the triage call. It is contained entirely
// within the background pipeline and never reaches the intake caller.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("triage %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("triage %s", e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind ErrorKind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}
