package output

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"video-extract/internal/logger"
	"video-extract/internal/pipeline"
	"video-extract/internal/slides"
)

type MarkdownWriter struct {
	dir    string
	logger logger.Logger
}

func NewMarkdown(dir string, log logger.Logger) *MarkdownWriter {
	return &MarkdownWriter{dir: dir, logger: log}
}

func (w *MarkdownWriter) Write(ctx context.Context, report *pipeline.Report) error {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(w.dir, "summary.md")
	if err := os.WriteFile(path, []byte(renderMarkdown(report)), 0644); err != nil {
		return fmt.Errorf("write markdown report: %w", err)
	}

	w.logger.Info(ctx, "wrote markdown report: %s", path)
	return nil
}

func renderMarkdown(report *pipeline.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Video Analysis Report: %s\n\n", report.Source)
	fmt.Fprintf(&b, "**Generated:** %s\n", report.GeneratedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "**Model:** %s\n", report.Model)
	fmt.Fprintf(&b, "**Total Slides:** %d\n", len(report.Slides))
	if report.DryRun {
		b.WriteString("**Mode:** dry run (no summarization calls were made)\n")
	}

	b.WriteString("\n## Overview\n\n")
	fmt.Fprintf(&b, "- **Total slides processed:** %d\n", len(report.Slides))
	fmt.Fprintf(&b, "- **Slides with content:** %d\n", slidesWithContent(report.Slides))
	if topics := mainTopics(report.Slides, 5); len(topics) > 0 {
		fmt.Fprintf(&b, "- **Main topics:** %s\n", strings.Join(topics, ", "))
	}

	b.WriteString("\n## Table of Contents\n\n")

	for _, slide := range report.Slides {
		fmt.Fprintf(&b, "- [Slide %d: %s](#slide-%d) (%s)\n",
			slide.Index+1, slideTitle(slide), slide.Index+1, formatTimestamp(slide.Timestamp))
	}

	b.WriteString("\n---\n")

	for _, slide := range report.Slides {
		b.WriteString("\n")
		renderSlideMarkdown(&b, slide)
	}

	return b.String()
}

func renderSlideMarkdown(b *strings.Builder, slide *slides.Slide) {
	fmt.Fprintf(b, "## Slide %d: %s\n\n", slide.Index+1, slideTitle(slide))
	fmt.Fprintf(b, "**Timestamp:** %s\n", formatTimestamp(slide.Timestamp))
	if wc := slide.WordCount(); wc > 0 {
		fmt.Fprintf(b, "**Word count:** %d\n", wc)
	}
	b.WriteString("\n")

	if slide.ImagePath != "" {
		fmt.Fprintf(b, "![Slide %d](%s)\n\n", slide.Index+1, filepath.Base(slide.ImagePath))
	}

	if slide.OCRText != "" {
		fmt.Fprintf(b, "### Text Visible on Slide\n\n```\n%s\n```\n\n", strings.TrimSpace(slide.OCRText))
	}

	if text := slide.TranscriptText(); text != "" {
		fmt.Fprintf(b, "### Spoken Content\n\n```\n%s\n```\n\n", strings.TrimSpace(text))
	}

	if slide.Summary != nil {
		fmt.Fprintf(b, "### Summary\n\n%s\n\n", slide.Summary.Body)
		if len(slide.Summary.KeyPoints) > 0 {
			b.WriteString("### Key Points\n\n")
			for _, point := range slide.Summary.KeyPoints {
				fmt.Fprintf(b, "- %s\n", point)
			}
			b.WriteString("\n")
		}
		if len(slide.Summary.Topics) > 0 {
			fmt.Fprintf(b, "**Topics:** %s\n\n", strings.Join(slide.Summary.Topics, ", "))
		}
	} else if slide.FailureReason != "" {
		fmt.Fprintf(b, "### Summarization Failed\n\n> %s\n\n", slide.FailureReason)
	}

	b.WriteString("---\n")
}

func slidesWithContent(deck []*slides.Slide) int {
	n := 0
	for _, slide := range deck {
		if slide.Summary != nil && slide.Summary.Body != "" && slide.Summary.Body != "No summary available." {
			n++
		}
	}
	return n
}

// mainTopics returns the most frequent summary topics across the run,
// most common first, ties broken alphabetically.
func mainTopics(deck []*slides.Slide, limit int) []string {
	counts := make(map[string]int)
	for _, slide := range deck {
		if slide.Summary == nil {
			continue
		}
		for _, topic := range slide.Summary.Topics {
			counts[topic]++
		}
	}

	topics := make([]string, 0, len(counts))
	for topic := range counts {
		topics = append(topics, topic)
	}
	sort.Slice(topics, func(i, j int) bool {
		if counts[topics[i]] != counts[topics[j]] {
			return counts[topics[i]] > counts[topics[j]]
		}
		return topics[i] < topics[j]
	})

	if len(topics) > limit {
		topics = topics[:limit]
	}
	return topics
}

func slideTitle(slide *slides.Slide) string {
	if slide.Summary != nil && slide.Summary.Title != "" {
		return slide.Summary.Title
	}
	return fmt.Sprintf("Slide %d", slide.Index+1)
}
