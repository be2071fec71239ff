package transcript

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"video-extract/internal/config"
	"video-extract/internal/logger"
	"video-extract/pkg/executor"
)

// LocalSource transcribes a local video file with whisper.cpp: the
// audio track is extracted to 16kHz mono WAV, transcribed to SRT, and
// parsed into segments.
type LocalSource struct {
	executor  executor.Executor
	logger    logger.Logger
	videoPath string
	cfg       config.WhisperConfig
	tempDir   string
}

func NewLocalSource(exec executor.Executor, log logger.Logger, videoPath string, cfg config.WhisperConfig, tempDir string) *LocalSource {
	return &LocalSource{
		executor:  exec,
		logger:    log,
		videoPath: videoPath,
		cfg:       cfg,
		tempDir:   tempDir,
	}
}

func (s *LocalSource) Fetch(ctx context.Context) ([]Segment, error) {
	if s.cfg.ModelPath == "" {
		return nil, fmt.Errorf("whisper.model_path not configured for local file %s: %w", s.videoPath, ErrNoTranscript)
	}

	audioPath, err := s.extractAudio(ctx)
	if err != nil {
		return nil, err
	}
	defer os.Remove(audioPath)

	srtPath, err := s.transcribe(ctx, audioPath)
	if err != nil {
		return nil, err
	}
	defer os.Remove(srtPath)

	content, err := os.ReadFile(srtPath)
	if err != nil {
		return nil, fmt.Errorf("read srt: %w", err)
	}

	segments := ParseSRT(string(content))
	if len(segments) == 0 {
		return nil, fmt.Errorf("file %s: %w", s.videoPath, ErrNoTranscript)
	}

	s.logger.Info(ctx, "Transcribed %d segments from %s", len(segments), filepath.Base(s.videoPath))
	return segments, nil
}

// extractAudio converts the video's audio track to 16kHz mono WAV,
// the input format whisper.cpp expects.
func (s *LocalSource) extractAudio(ctx context.Context) (string, error) {
	audioPath := filepath.Join(s.tempDir,
		strings.TrimSuffix(filepath.Base(s.videoPath), filepath.Ext(s.videoPath))+"_audio.wav")

	args := []string{
		"-i", s.videoPath,
		"-vn",
		"-ar", "16000",
		"-ac", "1",
		"-c:a", "pcm_s16le",
		"-y",
		audioPath,
	}

	if _, err := s.executor.Execute(ctx, "ffmpeg", args...); err != nil {
		return "", fmt.Errorf("ffmpeg extract audio: %w", err)
	}

	return audioPath, nil
}

func (s *LocalSource) transcribe(ctx context.Context, audioPath string) (string, error) {
	outputPrefix := strings.TrimSuffix(audioPath, filepath.Ext(audioPath))

	s.logger.Info(ctx, "Transcribing with whisper (%d threads): %s", s.cfg.Threads, audioPath)

	args := []string{
		"-m", s.cfg.ModelPath,
		"-f", audioPath,
		"-osrt",
		"-l", s.cfg.Language,
		"-t", strconv.Itoa(s.cfg.Threads),
		"--output-file", outputPrefix,
	}

	if _, err := s.executor.Execute(ctx, s.cfg.BinaryPath, args...); err != nil {
		return "", fmt.Errorf("whisper transcribe: %w", err)
	}

	return outputPrefix + ".srt", nil
}
