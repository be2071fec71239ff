// Package video acquires the source video: YouTube ID parsing and
// download through yt-dlp.
package video

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"video-extract/internal/logger"
	"video-extract/pkg/executor"
)

var (
	reVideoID  = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)
	reURLForms = []*regexp.Regexp{
		regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/|youtube\.com/embed/)([^&\n?#]+)`),
		regexp.MustCompile(`youtube\.com/watch\?.*v=([^&\n?#]+)`),
	}
)

// ExtractID returns the 11-character video ID from a YouTube URL, or
// the input itself when it already is an ID.
func ExtractID(urlOrID string) (string, error) {
	if reVideoID.MatchString(urlOrID) {
		return urlOrID, nil
	}
	for _, re := range reURLForms {
		if m := re.FindStringSubmatch(urlOrID); m != nil {
			return m[1], nil
		}
	}
	return "", fmt.Errorf("could not extract video ID from %q", urlOrID)
}

// Downloader fetches YouTube videos to a temp location for frame
// extraction.
type Downloader struct {
	executor executor.Executor
	logger   logger.Logger
	tempDir  string
}

func NewDownloader(exec executor.Executor, log logger.Logger, tempDir string) *Downloader {
	return &Downloader{executor: exec, logger: log, tempDir: tempDir}
}

// Download fetches the video capped at 720p (slides stay legible and
// frame extraction is much faster) and returns its path plus a cleanup
// func that removes the temp directory.
func (d *Downloader) Download(ctx context.Context, videoID string) (string, func(), error) {
	dir, err := os.MkdirTemp(d.tempDir, "video-*")
	if err != nil {
		return "", nil, fmt.Errorf("create video temp dir: %w", err)
	}
	cleanup := func() { os.RemoveAll(dir) }

	url := "https://www.youtube.com/watch?v=" + videoID
	args := []string{
		"-f", "best[height<=720]/best",
		"--no-warnings",
		"-o", filepath.Join(dir, videoID+".%(ext)s"),
		url,
	}

	d.logger.Info(ctx, "Downloading video %s", videoID)
	if _, err := d.executor.Execute(ctx, "yt-dlp", args...); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("yt-dlp download: %w", err)
	}

	matches, err := filepath.Glob(filepath.Join(dir, videoID+".*"))
	if err != nil || len(matches) == 0 {
		cleanup()
		return "", nil, fmt.Errorf("downloaded video not found for %s", videoID)
	}

	d.logger.Info(ctx, "Downloaded video: %s", matches[0])
	return matches[0], cleanup, nil
}
