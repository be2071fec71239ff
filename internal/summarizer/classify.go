package summarizer

import (
	"context"
	"errors"
	"strings"

	"video-extract/internal/apierr"
)

// Classify maps a raw Gemini client error onto an API error kind. The
// SDK surfaces HTTP status and gRPC codes as message text, so this is
// string matching by necessity.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	var appErr *apierr.Error
	if errors.As(err, &appErr) {
		return err
	}

	msg := err.Error()
	lower := strings.ToLower(msg)

	switch {
	case strings.Contains(lower, "quota") && !strings.Contains(msg, "429"):
		return apierr.Wrap(err, apierr.KindQuotaExhausted, "quota exhausted")
	case strings.Contains(msg, "429"),
		strings.Contains(msg, "RESOURCE_EXHAUSTED"),
		strings.Contains(lower, "rate limit"):
		return apierr.Wrap(err, apierr.KindRateLimited, "rate limited")
	case strings.Contains(msg, "401"),
		strings.Contains(msg, "403"),
		strings.Contains(msg, "PERMISSION_DENIED"),
		strings.Contains(lower, "api key"):
		return apierr.Wrap(err, apierr.KindAuth, "authentication failed")
	case strings.Contains(msg, "400"),
		strings.Contains(msg, "INVALID_ARGUMENT"):
		return apierr.Wrap(err, apierr.KindInvalidRequest, "invalid request")
	case strings.Contains(msg, "500"),
		strings.Contains(msg, "502"),
		strings.Contains(msg, "503"),
		strings.Contains(msg, "UNAVAILABLE"),
		strings.Contains(lower, "timeout"),
		strings.Contains(lower, "deadline exceeded"),
		errors.Is(err, context.DeadlineExceeded):
		return apierr.Wrap(err, apierr.KindTransient, "transient provider error")
	default:
		return apierr.Wrap(err, apierr.KindUnknown, "provider error")
	}
}
