package summarizer

import (
	"context"

	"video-extract/internal/slides"
)

// Summarizer produces a structured summary for a single slide. The
// int result is the actual token count reported by the provider, used
// to reconcile budget reservations.
type Summarizer interface {
	Summarize(ctx context.Context, slide *slides.Slide) (*slides.Summary, int, error)
	EstimateTokens(slide *slides.Slide) int
}
