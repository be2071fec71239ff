package transcript

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"video-extract/internal/logger"
	"video-extract/pkg/executor"
)

// YouTubeSource fetches published or auto-generated subtitles for a
// YouTube video through yt-dlp, without downloading the video itself.
type YouTubeSource struct {
	executor executor.Executor
	logger   logger.Logger
	videoID  string
	language string
	tempDir  string
}

func NewYouTubeSource(exec executor.Executor, log logger.Logger, videoID, language, tempDir string) *YouTubeSource {
	return &YouTubeSource{
		executor: exec,
		logger:   log,
		videoID:  videoID,
		language: language,
		tempDir:  tempDir,
	}
}

// Fetch downloads the subtitle track and parses it into segments.
func (s *YouTubeSource) Fetch(ctx context.Context) ([]Segment, error) {
	dir, err := os.MkdirTemp(s.tempDir, "subs-*")
	if err != nil {
		return nil, fmt.Errorf("create subtitle temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	url := "https://www.youtube.com/watch?v=" + s.videoID
	args := []string{
		"--skip-download",
		"--write-subs",
		"--write-auto-subs",
		"--sub-langs", s.language,
		"--sub-format", "vtt",
		"--no-warnings",
		"-o", filepath.Join(dir, "transcript"),
		url,
	}

	s.logger.Info(ctx, "Fetching transcript for %s (language: %s)", s.videoID, s.language)
	if _, err := s.executor.Execute(ctx, "yt-dlp", args...); err != nil {
		return nil, fmt.Errorf("yt-dlp subtitles: %w", err)
	}

	matches, err := filepath.Glob(filepath.Join(dir, "transcript*.vtt"))
	if err != nil || len(matches) == 0 {
		return nil, fmt.Errorf("video %s: %w", s.videoID, ErrNoTranscript)
	}

	content, err := os.ReadFile(matches[0])
	if err != nil {
		return nil, fmt.Errorf("read subtitle file: %w", err)
	}

	segments := ParseVTT(string(content))
	if len(segments) == 0 {
		return nil, fmt.Errorf("video %s: %w", s.videoID, ErrNoTranscript)
	}

	s.logger.Info(ctx, "Fetched %d transcript segments", len(segments))
	return segments, nil
}
