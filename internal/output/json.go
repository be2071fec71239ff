package output

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"video-extract/internal/logger"
	"video-extract/internal/pipeline"
)

type JSONWriter struct {
	dir    string
	logger logger.Logger
}

func NewJSON(dir string, log logger.Logger) *JSONWriter {
	return &JSONWriter{dir: dir, logger: log}
}

func (w *JSONWriter) Write(ctx context.Context, report *pipeline.Report) error {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	path := filepath.Join(w.dir, "summary.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write json report: %w", err)
	}

	w.logger.Info(ctx, "wrote json report: %s", path)
	return nil
}
