// Package output renders a finished run into report files.
package output

import (
	"context"
	"fmt"

	"video-extract/internal/logger"
	"video-extract/internal/pipeline"
)

// Writer renders a run report into one output file.
type Writer interface {
	Write(ctx context.Context, report *pipeline.Report) error
}

// ForFormat returns the writer for a format name. Markdown is the
// default; a report can be written in several formats by calling
// ForFormat once per format.
func ForFormat(format, dir string, log logger.Logger) (Writer, error) {
	switch format {
	case "", "md", "markdown":
		return NewMarkdown(dir, log), nil
	case "json":
		return NewJSON(dir, log), nil
	case "docx":
		return NewDocx(dir, log), nil
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
}

// formatTimestamp renders seconds as mm:ss.
func formatTimestamp(seconds float64) string {
	m := int(seconds) / 60
	s := int(seconds) % 60
	return fmt.Sprintf("%02d:%02d", m, s)
}
