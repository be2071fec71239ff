package slides

import (
	"strings"

	"video-extract/internal/transcript"
)

// Summary is the model-generated analysis of one slide.
type Summary struct {
	Title     string   `json:"title"`
	Body      string   `json:"body"`
	KeyPoints []string `json:"key_points"`
	Topics    []string `json:"topics,omitempty"`
}

// Slide is one visually distinct unit of the presentation. Created by
// the deduplicator, then enriched in place by the aligner, OCR and
// summarization stages. Slides are ordered identically by Index and
// Timestamp and owned by a single run.
type Slide struct {
	Index         int                  `json:"index"`
	Timestamp     float64              `json:"timestamp"`
	ImagePath     string               `json:"image_path"`
	Hash          string               `json:"perceptual_hash,omitempty"`
	OCRText       string               `json:"ocr_text,omitempty"`
	Transcript    []transcript.Segment `json:"transcript_chunk"`
	Summary       *Summary             `json:"summary"`
	FailureReason string               `json:"failure_reason,omitempty"`
}

// TranscriptText returns the slide's spoken content as a single string.
func (s *Slide) TranscriptText() string {
	return transcript.Join(s.Transcript)
}

// WordCount counts words across the slide's transcript chunk.
func (s *Slide) WordCount() int {
	text := s.TranscriptText()
	if text == "" {
		return 0
	}
	return len(strings.Fields(text))
}
