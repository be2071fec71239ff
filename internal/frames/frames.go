// Package frames produces candidate slide frames from a video using
// ffmpeg scene-change detection, with uniform sampling as a fallback.
package frames

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"video-extract/internal/logger"
	"video-extract/pkg/executor"
)

// ErrExtractionFailed is returned when no frame could be produced from
// the source video.
var ErrExtractionFailed = errors.New("frame extraction failed")

// Frame is a raw candidate slide: a grabbed still and where in the
// video it came from. Frames are ordered ascending by timestamp.
type Frame struct {
	Timestamp float64
	Path      string
}

const uniformInterval = 30.0

var rePtsTime = regexp.MustCompile(`pts_time:(\d+\.?\d*)`)

// Extractor grabs candidate frames for one video.
type Extractor struct {
	executor       executor.Executor
	logger         logger.Logger
	videoPath      string
	outputDir      string
	sceneThreshold float64
	minGap         float64
	maxFrames      int
}

func NewExtractor(exec executor.Executor, log logger.Logger, videoPath, outputDir string, sceneThreshold, minGap float64, maxFrames int) *Extractor {
	return &Extractor{
		executor:       exec,
		logger:         log,
		videoPath:      videoPath,
		outputDir:      outputDir,
		sceneThreshold: sceneThreshold,
		minGap:         minGap,
		maxFrames:      maxFrames,
	}
}

// Extract detects scene changes and grabs one still per change. When
// the detector fires on nothing (static camera, screen recording of a
// single page) it falls back to uniform sampling so downstream always
// has material to work with.
func (e *Extractor) Extract(ctx context.Context) ([]Frame, error) {
	if err := os.MkdirAll(e.outputDir, 0755); err != nil {
		return nil, fmt.Errorf("create frames dir: %w", err)
	}

	timestamps, err := e.detectScenes(ctx)
	if err != nil {
		e.logger.Warn(ctx, "Scene detection failed, falling back to uniform sampling: %v", err)
		timestamps = nil
	}

	if len(timestamps) == 0 {
		e.logger.Info(ctx, "No scene changes detected, sampling every %.0fs", uniformInterval)
		timestamps, err = e.uniformTimestamps(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
		}
	}

	timestamps = filterTimestamps(timestamps, e.minGap)
	if e.maxFrames > 0 && len(timestamps) > e.maxFrames {
		e.logger.Warn(ctx, "Too many candidate frames (%d), limiting to %d", len(timestamps), e.maxFrames)
		timestamps = timestamps[:e.maxFrames]
	}

	frames := make([]Frame, 0, len(timestamps))
	for i, ts := range timestamps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path := filepath.Join(e.outputDir, fmt.Sprintf("slide_%04d_%.2fs.png", i, ts))
		if err := e.grabFrame(ctx, ts, path); err != nil {
			e.logger.Warn(ctx, "Failed to grab frame at %.2fs: %v", ts, err)
			continue
		}
		frames = append(frames, Frame{Timestamp: ts, Path: path})
	}

	if len(frames) == 0 {
		return nil, fmt.Errorf("%w: no frames grabbed from %s", ErrExtractionFailed, e.videoPath)
	}

	e.logger.Info(ctx, "Extracted %d candidate frames", len(frames))
	return frames, nil
}

// detectScenes runs ffmpeg's scene filter and collects the timestamps
// it reports via showinfo on stderr.
func (e *Extractor) detectScenes(ctx context.Context) ([]float64, error) {
	args := []string{
		"-i", e.videoPath,
		"-vf", fmt.Sprintf("select='gt(scene,%g)',showinfo", e.sceneThreshold),
		"-vsync", "vfr",
		"-f", "null",
		"-",
	}

	output, err := e.executor.ExecuteStderr(ctx, "ffmpeg", args...)
	if err != nil {
		return nil, fmt.Errorf("ffmpeg scene detection: %w", err)
	}

	timestamps := parseSceneTimes(output)
	e.logger.Info(ctx, "Detected %d scene changes", len(timestamps))
	return timestamps, nil
}

// parseSceneTimes extracts pts_time values from showinfo stderr lines.
func parseSceneTimes(ffmpegStderr string) []float64 {
	var timestamps []float64
	for _, line := range strings.Split(ffmpegStderr, "\n") {
		if !strings.Contains(line, "showinfo") || !strings.Contains(line, "pts_time") {
			continue
		}
		m := rePtsTime.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if ts, err := strconv.ParseFloat(m[1], 64); err == nil {
			timestamps = append(timestamps, ts)
		}
	}
	return timestamps
}

// filterTimestamps drops candidates closer than minGap to the previous
// kept one. Scene detection double-fires on fades and transitions.
func filterTimestamps(timestamps []float64, minGap float64) []float64 {
	if len(timestamps) == 0 {
		return nil
	}
	filtered := []float64{timestamps[0]}
	for _, ts := range timestamps[1:] {
		if ts-filtered[len(filtered)-1] >= minGap {
			filtered = append(filtered, ts)
		}
	}
	return filtered
}

func (e *Extractor) uniformTimestamps(ctx context.Context) ([]float64, error) {
	duration, err := e.probeDuration(ctx)
	if err != nil {
		return nil, err
	}

	var timestamps []float64
	for t := 0.0; t < duration; t += uniformInterval {
		timestamps = append(timestamps, t)
	}
	return timestamps, nil
}

func (e *Extractor) probeDuration(ctx context.Context) (float64, error) {
	args := []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		e.videoPath,
	}

	output, err := e.executor.Execute(ctx, "ffprobe", args...)
	if err != nil {
		return 0, fmt.Errorf("ffprobe duration: %w", err)
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(output), 64)
	if err != nil || duration <= 0 {
		return 0, fmt.Errorf("invalid duration %q", strings.TrimSpace(output))
	}
	return duration, nil
}

func (e *Extractor) grabFrame(ctx context.Context, timestamp float64, outputPath string) error {
	args := []string{
		"-ss", fmt.Sprintf("%.3f", timestamp),
		"-i", e.videoPath,
		"-vframes", "1",
		"-q:v", "2",
		"-y",
		outputPath,
	}

	if _, err := e.executor.Execute(ctx, "ffmpeg", args...); err != nil {
		return err
	}
	if _, err := os.Stat(outputPath); err != nil {
		return fmt.Errorf("frame file missing: %w", err)
	}
	return nil
}
