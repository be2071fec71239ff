// Package aligner partitions transcript segments across slide time
// windows.
package aligner

import (
	"context"
	"math"
	"sort"

	"video-extract/internal/logger"
	"video-extract/internal/slides"
	"video-extract/internal/transcript"
)

// Aligner assigns each transcript segment to exactly one slide.
type Aligner struct {
	logger logger.Logger
}

func New(log logger.Logger) *Aligner {
	return &Aligner{logger: log}
}

// Align populates each slide's transcript chunk. Slide i owns the
// window [timestamp_i, timestamp_{i+1}), the last window is open-ended,
// and a segment belongs to the window containing its start time.
// Speech before the first slide attaches to slide 0, so no leading
// segment is ever lost. Chunks are replaced, not appended, making the
// operation idempotent.
func (a *Aligner) Align(ctx context.Context, deck []*slides.Slide, segments []transcript.Segment) {
	if len(deck) == 0 {
		return
	}

	// Both inputs are produced sorted; sort defensively rather than
	// weaken the merge invariant.
	sort.SliceStable(deck, func(i, j int) bool { return deck[i].Timestamp < deck[j].Timestamp })
	segments = transcript.Normalize(segments)

	for _, slide := range deck {
		slide.Transcript = nil
	}

	cursor := 0
	for i, slide := range deck {
		windowEnd := math.Inf(1)
		if i+1 < len(deck) {
			windowEnd = deck[i+1].Timestamp
		}

		// Windows are contiguous and the cursor only advances, so a
		// start-before-window-end check is sufficient; it also attaches
		// speech preceding the first slide to slide 0.
		for cursor < len(segments) && segments[cursor].Start < windowEnd {
			slide.Transcript = append(slide.Transcript, segments[cursor])
			cursor++
		}
	}

	a.logger.Info(ctx, "Aligned %d transcript segments across %d slides", len(segments), len(deck))
}
