package orbit

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a client error so callers can react without string
// matching. The categories are mutually exclusive.
type ErrorKind string

const (
	// ErrKindTransport means the request never completed (DNS, connect,
	// broken pipe). Safe to retry from the caller's side.
	ErrKindTransport ErrorKind = "transport"

	// ErrKindTimeout means the stream timeout (or a caller deadline) fired.
	ErrKindTimeout ErrorKind = "timeout"

	// ErrKindCanceled means the caller canceled the request. Not a failure
	// in the usual sense, but surfaced so the generator can stop cleanly.
	ErrKindCanceled ErrorKind = "canceled"

	// ErrKindHTTP means the server answered with a non-2xx status.
	ErrKindHTTP ErrorKind = "http"

	// ErrKindProtocol means the server reported a fatal condition inside an
	// otherwise successful response (an error frame in the stream).
	ErrKindProtocol ErrorKind = "protocol"
)

// Error represents a failure talking to the Orbit server.
type Error struct {
	// Kind is the error category.
	Kind ErrorKind

	// Message is a human-readable description. For protocol errors this is
	// the server-supplied message, passed through verbatim.
	Message string

	// HTTPStatus is the HTTP status code, when one was received.
	HTTPStatus int

	// RequestID is the X-Request-ID of the failed request, when known.
	RequestID string

	err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.HTTPStatus > 0 {
		return fmt.Sprintf("orbit: %s (kind=%s, status=%d)", e.Message, e.Kind, e.HTTPStatus)
	}
	return fmt.Sprintf("orbit: %s (kind=%s)", e.Message, e.Kind)
}

// Unwrap returns the wrapped cause, if any. Timeout and cancellation errors
// wrap the originating context error so errors.Is(err, context.Canceled)
// and errors.Is(err, context.DeadlineExceeded) keep working.
func (e *Error) Unwrap() error {
	return e.err
}

// Retryable reports whether the caller may reasonably retry the request.
// The client never retries on its own.
func (e *Error) Retryable() bool {
	switch e.Kind {
	case ErrKindTransport, ErrKindTimeout:
		return true
	case ErrKindHTTP:
		return e.HTTPStatus == 429 || e.HTTPStatus >= 500
	}
	return false
}

// AsError extracts *Error from an error.
//
// Example:
//
//	if e, ok := orbit.AsError(err); ok && e.Kind == orbit.ErrKindHTTP {
//		log.Printf("server said: %s", e.Message)
//	}
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsTimeout reports whether err is a stream or request timeout.
func IsTimeout(err error) bool {
	e, ok := AsError(err)
	return ok && e.Kind == ErrKindTimeout
}

// IsCanceled reports whether err is a caller-initiated cancellation.
func IsCanceled(err error) bool {
	e, ok := AsError(err)
	return ok && e.Kind == ErrKindCanceled
}
