package engine

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Kind identifies a failure class surfaced to callers.
type Kind string

const (
	KindInvalidMode            Kind = "invalid_mode"
	KindInvalidInput           Kind = "invalid_input"
	KindNoTranscript           Kind = "no_transcript"
	KindUpstreamUnavailable    Kind = "upstream_unavailable"
	KindUpstreamTimeout        Kind = "upstream_timeout"
	KindGenerationUnavailable  Kind = "generation_unavailable"
	KindAnswerGenerationFailed Kind = "answer_generation_failed"
	KindFetchFailed            Kind = "fetch_failed"
	KindInternal               Kind = "internal"
)

// Sentinels for errors.Is checks. Any *Error of the same kind matches.
var (
	ErrInvalidMode            = &Error{Kind: KindInvalidMode}
	ErrInvalidInput           = &Error{Kind: KindInvalidInput}
	ErrNoTranscript           = &Error{Kind: KindNoTranscript}
	ErrUpstreamUnavailable    = &Error{Kind: KindUpstreamUnavailable}
	ErrUpstreamTimeout        = &Error{Kind: KindUpstreamTimeout}
	ErrGenerationUnavailable  = &Error{Kind: KindGenerationUnavailable}
	ErrAnswerGenerationFailed = &Error{Kind: KindAnswerGenerationFailed}
	ErrFetchFailed            = &Error{Kind: KindFetchFailed}
)

// Error is the only error type that leaves a component boundary.
// Message is meant for display; Err keeps the underlying cause for logs.
type Error struct {
	Kind    Kind
	Message string
	Status  int // upstream HTTP status, fetch_failed only
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error with the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// NewError builds an *Error of the given kind.
func NewError(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Err: cause}
}

// InvalidInput reports an empty or malformed caller argument.
func InvalidInput(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidInput, Message: fmt.Sprintf(format, args...)}
}

// FetchFailed reports a non-2xx upstream response.
func FetchFailed(status int, reason string) *Error {
	return &Error{Kind: KindFetchFailed, Status: status, Message: "fetch failed: " + reason}
}

// Upstream converts a transport error into upstream_timeout or
// upstream_unavailable. Errors that already carry a Kind pass through.
func Upstream(err error, msg string) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	if IsTimeout(err) {
		return &Error{Kind: KindUpstreamTimeout, Message: msg + ": timed out", Err: err}
	}
	return &Error{Kind: KindUpstreamUnavailable, Message: msg + ": unavailable", Err: err}
}

// IsTimeout reports whether err is a deadline or network timeout.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// KindOf returns the Kind carried by err, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// ErrorPayload is the structured {kind, message} shape returned to callers.
type ErrorPayload struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Status  int    `json:"status,omitempty"`
}

// PayloadOf renders err for display. The message never includes the cause.
func PayloadOf(err error) ErrorPayload {
	var e *Error
	if errors.As(err, &e) {
		msg := e.Message
		if msg == "" {
			msg = string(e.Kind)
		}
		return ErrorPayload{Kind: e.Kind, Message: msg, Status: e.Status}
	}
	return ErrorPayload{Kind: KindInternal, Message: "internal error"}
}
