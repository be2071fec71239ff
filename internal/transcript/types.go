package transcript

import (
	"errors"
	"sort"
	"strings"
)

// ErrNoTranscript is returned when no transcript exists for a video in
// any of the requested languages.
var ErrNoTranscript = errors.New("no transcript available")

// Segment is one timestamped piece of spoken text. Segments are
// immutable once produced and ordered ascending by Start.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Normalize sorts segments by start time and drops empty or inverted
// entries, so downstream merges can rely on ordering.
func Normalize(segments []Segment) []Segment {
	out := make([]Segment, 0, len(segments))
	for _, s := range segments {
		s.Text = strings.TrimSpace(s.Text)
		if s.Text == "" || s.End <= s.Start {
			continue
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

// Join concatenates segment texts with single spaces.
func Join(segments []Segment) string {
	texts := make([]string, 0, len(segments))
	for _, s := range segments {
		if s.Text != "" {
			texts = append(texts, s.Text)
		}
	}
	return strings.Join(texts, " ")
}
