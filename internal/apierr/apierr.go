// Package apierr classifies errors returned by the summarization
// provider so callers can decide between retrying and giving up.
package apierr

import (
	"errors"
	"fmt"
	"time"
)

// Kind buckets a provider error by how it should be handled.
type Kind int

const (
	KindUnknown Kind = iota
	// KindRateLimited: per-minute quota hit, retry after backoff.
	KindRateLimited
	// KindTransient: timeouts, connection resets, 5xx responses.
	KindTransient
	// KindAuth: bad or revoked API key, never retryable.
	KindAuth
	// KindInvalidRequest: malformed request, never retryable.
	KindInvalidRequest
	// KindQuotaExhausted: hard billing quota, retrying cannot help.
	KindQuotaExhausted
)

func (k Kind) String() string {
	switch k {
	case KindRateLimited:
		return "rate_limited"
	case KindTransient:
		return "transient"
	case KindAuth:
		return "auth"
	case KindInvalidRequest:
		return "invalid_request"
	case KindQuotaExhausted:
		return "quota_exhausted"
	default:
		return "unknown"
	}
}

// Error wraps a provider error with its classification and an optional
// provider-reported retry hint.
type Error struct {
	Kind       Kind
	Message    string
	RetryAfter time.Duration
	Cause      error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New creates a classified error.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Wrap wraps an existing error with a classification.
func Wrap(err error, kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg, Cause: err}
}

// IsKind reports whether err carries the given classification.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// IsRetryable reports whether another attempt could plausibly succeed.
// Unclassified errors are treated as transient: the provider SDK wraps
// network failures in plain errors.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var e *Error
	if !errors.As(err, &e) {
		return true
	}
	switch e.Kind {
	case KindRateLimited, KindTransient:
		return true
	default:
		return false
	}
}

// RetryAfter returns the provider-reported retry hint, if any.
func RetryAfter(err error) time.Duration {
	var e *Error
	if errors.As(err, &e) {
		return e.RetryAfter
	}
	return 0
}
