package output

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"video-extract/internal/logger"
	"video-extract/internal/pipeline"
	"video-extract/internal/slides"
	"video-extract/internal/transcript"
)

func sampleReport() *pipeline.Report {
	return &pipeline.Report{
		RunID:       "test-run",
		Source:      "dQw4w9WgXcQ",
		Model:       "gemini-2.5-flash",
		GeneratedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		State:       pipeline.StateComplete,
		Slides: []*slides.Slide{
			{
				Index:     0,
				Timestamp: 0,
				ImagePath: "slides/slide_0000_0.00s.png",
				OCRText:   "Agenda",
				Transcript: []transcript.Segment{
					{Start: 0, End: 2, Text: "welcome everyone"},
				},
				Summary: &slides.Summary{
					Title:     "Agenda Overview",
					Body:      "Introduces the talk structure.",
					KeyPoints: []string{"three sections", "questions at the end"},
					Topics:    []string{"agenda"},
				},
			},
			{
				Index:         1,
				Timestamp:     65,
				ImagePath:     "slides/slide_0001_65.00s.png",
				FailureReason: "[auth] authentication failed",
			},
		},
	}
}

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00"},
		{59.9, "00:59"},
		{65, "01:05"},
		{3600, "60:00"},
	}
	for _, tt := range tests {
		if got := formatTimestamp(tt.seconds); got != tt.want {
			t.Errorf("formatTimestamp(%v) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestRenderMarkdown(t *testing.T) {
	content := renderMarkdown(sampleReport())

	for _, want := range []string{
		"# Video Analysis Report: dQw4w9WgXcQ",
		"## Overview",
		"- **Total slides processed:** 2",
		"- **Slides with content:** 1",
		"- **Main topics:** agenda",
		"## Slide 1: Agenda Overview",
		"(00:00)",
		"Agenda",
		"welcome everyone",
		"- three sections",
		"**Topics:** agenda",
		"## Slide 2: Slide 2",
		"### Summarization Failed",
		"[auth] authentication failed",
		"(01:05)",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestMainTopics(t *testing.T) {
	deck := []*slides.Slide{
		{Summary: &slides.Summary{Topics: []string{"concurrency", "channels"}}},
		{Summary: &slides.Summary{Topics: []string{"concurrency", "scheduling"}}},
		{Summary: &slides.Summary{Topics: []string{"concurrency", "channels", "gc"}}},
		{FailureReason: "rate limited"},
	}

	got := mainTopics(deck, 3)
	want := []string{"concurrency", "channels", "gc"}
	if len(got) != len(want) {
		t.Fatalf("mainTopics = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("mainTopics[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if got := mainTopics(nil, 5); len(got) != 0 {
		t.Errorf("mainTopics(empty) = %v, want none", got)
	}
}

func TestSlidesWithContent(t *testing.T) {
	deck := []*slides.Slide{
		{Summary: &slides.Summary{Body: "real content"}},
		{Summary: &slides.Summary{Body: "No summary available."}},
		{Summary: &slides.Summary{}},
		{FailureReason: "rate limited"},
	}
	if got := slidesWithContent(deck); got != 1 {
		t.Errorf("slidesWithContent = %d, want 1", got)
	}
}

func TestMarkdownWriter(t *testing.T) {
	dir := t.TempDir()
	w := NewMarkdown(dir, logger.New("error"))

	if err := w.Write(context.Background(), sampleReport()); err != nil {
		t.Fatalf("Write: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "summary.md"))
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.Contains(string(data), "Video Analysis Report") {
		t.Error("report content missing header")
	}
}

func TestJSONWriter(t *testing.T) {
	dir := t.TempDir()
	w := NewJSON(dir, logger.New("error"))

	if err := w.Write(context.Background(), sampleReport()); err != nil {
		t.Fatalf("Write: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "summary.json"))
	if err != nil {
		t.Fatalf("read report: %v", err)
	}

	var decoded pipeline.Report
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal report: %v", err)
	}
	if decoded.RunID != "test-run" || len(decoded.Slides) != 2 {
		t.Errorf("decoded report mismatch: %+v", decoded)
	}
	if decoded.Slides[1].FailureReason == "" {
		t.Error("failure reason lost in json round trip")
	}
}

func TestForFormat(t *testing.T) {
	log := logger.New("error")
	for _, format := range []string{"", "md", "markdown", "json", "docx"} {
		if _, err := ForFormat(format, t.TempDir(), log); err != nil {
			t.Errorf("ForFormat(%q): %v", format, err)
		}
	}
	if _, err := ForFormat("pdf", t.TempDir(), log); err == nil {
		t.Error("ForFormat(pdf) should fail")
	}
}
