package dokarkiv

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by Client wraps exactly one of these, so
// callers can decide with errors.Is whether a business transaction is worth
// retrying later.
var (
	// ErrClientRejected is returned for 4xx responses. The request will not
	// succeed if repeated unchanged.
	ErrClientRejected = errors.New("dokarkiv rejected the request")

	// ErrNotFound is returned when updating or finalizing a journalpost that
	// does not exist. It is also an ErrClientRejected.
	ErrNotFound = fmt.Errorf("journalpost does not exist: %w", ErrClientRejected)

	// ErrConflictUnrecoverable is returned for a 409 whose body does not
	// identify the existing journalpost.
	ErrConflictUnrecoverable = errors.New("conflict without existing journalpost id")

	// ErrServerUnavailable is returned for 5xx responses and timeouts that
	// remained after the transport's retries.
	ErrServerUnavailable = errors.New("dokarkiv unavailable")

	// ErrTransport is returned for I/O failures that are neither timeouts nor
	// HTTP error statuses, and for undecodable success bodies.
	ErrTransport = errors.New("dokarkiv transport failure")
)

// Error describes a failed Client operation.
type Error struct {
	// Op is the operation that failed, e.g. "OpprettOgFerdigstill".
	Op string

	// StatusCode is the HTTP status, or 0 when no response was received.
	StatusCode int

	JournalpostID      string
	CallID             string
	EksternReferanseID string

	// Msg is an optional human readable detail.
	Msg string

	// Err is one of the kinds above, possibly wrapping the underlying cause.
	Err error
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.StatusCode
	}
	return 0
}

// IsRetryable reports whether repeating the whole business operation later
// may succeed.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrServerUnavailable) || errors.Is(err, ErrTransport)
}

// kindError joins a kind with its cause so both match errors.Is.
type kindError struct {
	kind  error
	cause error
}

func (e *kindError) Error() string {
	return fmt.Sprintf("%v: %v", e.kind, e.cause)
}

func (e *kindError) Unwrap() []error {
	return []error{e.kind, e.cause}
}

func withCause(kind, cause error) error {
	if cause == nil {
		return kind
	}
	return &kindError{kind: kind, cause: cause}
}
