package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"video-extract/internal/aligner"
	"video-extract/internal/budget"
	"video-extract/internal/config"
	"video-extract/internal/frames"
	"video-extract/internal/logger"
	"video-extract/internal/ocr"
	"video-extract/internal/output"
	"video-extract/internal/pipeline"
	"video-extract/internal/retry"
	"video-extract/internal/slides"
	"video-extract/internal/summarizer"
	"video-extract/internal/transcript"
	"video-extract/internal/video"
	"video-extract/internal/watcher"
	"video-extract/pkg/executor"
)

func main() {
	var (
		configPath     = flag.String("config", "config.yaml", "path to config file")
		format         = flag.String("format", "", "output format: markdown, json or docx")
		sceneThreshold = flag.Float64("scene-threshold", 0, "scene change sensitivity (0.0-1.0)")
		maxSlides      = flag.Int("max-slides", 0, "maximum number of slides to extract")
		tier           = flag.Int("tier", -1, "API usage tier (0-5)")
		dryRun         = flag.Bool("dry-run", false, "skip summarization calls, emit placeholders")
		noOCR          = flag.Bool("no-ocr", false, "disable on-slide text extraction")
		noVision       = flag.Bool("no-vision", false, "summarize from text only, without slide images")
		language       = flag.String("language", "", "transcript language code")
		watchMode      = flag.Bool("watch", false, "watch a directory for dropped video files")
		logLevel       = flag.String("log-level", "", "log level: debug, info, warn, error")
		outputDir      = flag.String("output-dir", "", "directory for generated reports")
	)
	flag.Usage = usage
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	applyOverrides(cfg, *format, *sceneThreshold, *maxSlides, *tier, *noOCR, *noVision, *language, *logLevel, *outputDir)

	log := logger.New(cfg.Logging.Level)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := ensureDirectories(cfg); err != nil {
		log.Error(ctx, "Failed to create directories: %v", err)
		os.Exit(1)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info(ctx, "shutdown signal received")
		cancel()
	}()

	app := &app{cfg: cfg, logger: log, executor: executor.New(), dryRun: *dryRun}

	if *watchMode {
		err = app.watch(ctx)
	} else {
		if flag.NArg() != 1 {
			usage()
			os.Exit(2)
		}
		err = app.processOne(ctx, flag.Arg(0))
	}
	if err != nil && err != context.Canceled {
		log.Error(ctx, "%v", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage:\n  %s [flags] <youtube-url-or-id>\n  %s -watch [flags]\n\nFlags:\n",
		filepath.Base(os.Args[0]), filepath.Base(os.Args[0]))
	flag.PrintDefaults()
}

func applyOverrides(cfg *config.Config, format string, sceneThreshold float64, maxSlides, tier int, noOCR, noVision bool, language, logLevel, outputDir string) {
	if format != "" {
		cfg.Output.Format = format
	}
	if sceneThreshold > 0 {
		cfg.Slides.SceneThreshold = sceneThreshold
	}
	if maxSlides > 0 {
		cfg.Slides.MaxSlides = maxSlides
	}
	if tier >= 0 && tier <= 5 {
		cfg.Gemini.Tier = tier
	}
	if noOCR {
		cfg.OCR.Enabled = false
	}
	if noVision {
		cfg.Gemini.UseVision = false
	}
	if language != "" {
		cfg.Output.Language = language
		cfg.Whisper.Language = language
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if outputDir != "" {
		cfg.Paths.Output = outputDir
	}
}

// ensureDirectories creates required directories if they don't exist
func ensureDirectories(cfg *config.Config) error {
	for _, dir := range []string{cfg.Paths.Output, cfg.Paths.Temp} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

type app struct {
	cfg      *config.Config
	logger   logger.Logger
	executor executor.Executor
	dryRun   bool
}

// processOne runs the pipeline once for a YouTube URL, a bare video ID
// or a local video file.
func (a *app) processOne(ctx context.Context, target string) error {
	if info, err := os.Stat(target); err == nil && !info.IsDir() {
		name := strings.TrimSuffix(filepath.Base(target), filepath.Ext(target))
		source := transcript.NewLocalSource(a.executor, a.logger, target, a.cfg.Whisper, a.cfg.Paths.Temp)
		return a.run(ctx, name, target, source)
	}

	videoID, err := video.ExtractID(target)
	if err != nil {
		return err
	}

	a.logger.Info(ctx, "processing video %s", videoID)

	downloader := video.NewDownloader(a.executor, a.logger, a.cfg.Paths.Temp)
	videoPath, cleanup, err := downloader.Download(ctx, videoID)
	if err != nil {
		return fmt.Errorf("download video: %w", err)
	}
	defer cleanup()

	source := transcript.NewYouTubeSource(a.executor, a.logger, videoID, a.cfg.Output.Language, a.cfg.Paths.Temp)
	return a.run(ctx, videoID, videoPath, source)
}

// watch blocks, running the pipeline for each video dropped into the
// watch directory. Local files are transcribed with whisper instead of
// fetching YouTube captions.
func (a *app) watch(ctx context.Context) error {
	if a.cfg.Paths.Watch == "" {
		return fmt.Errorf("paths.watch must be set for watch mode")
	}
	if err := os.MkdirAll(a.cfg.Paths.Watch, 0755); err != nil {
		return fmt.Errorf("create watch dir: %w", err)
	}

	handler := func(ctx context.Context, videoPath string) error {
		name := strings.TrimSuffix(filepath.Base(videoPath), filepath.Ext(videoPath))
		source := transcript.NewLocalSource(a.executor, a.logger, videoPath, a.cfg.Whisper, a.cfg.Paths.Temp)
		return a.run(ctx, name, videoPath, source)
	}

	w, err := watcher.New(a.cfg.Paths.Watch, handler, a.logger, a.cfg.Gemini.MaxConcurrent)
	if err != nil {
		return err
	}
	defer w.Stop()

	return w.Start(ctx)
}

// run assembles and executes one pipeline over an already-local video
// file, then writes the report. A cancelled run still writes whatever
// slides finished.
func (a *app) run(ctx context.Context, name, videoPath string, source pipeline.TranscriptSource) error {
	videoDir := filepath.Join(a.cfg.Paths.Output, name)
	slidesDir := filepath.Join(videoDir, "slides")
	if err := os.MkdirAll(slidesDir, 0755); err != nil {
		return fmt.Errorf("create slides dir: %w", err)
	}

	limits := a.cfg.Limits()
	tracker := budget.New(limits.RequestsPerMinute, limits.TokensPerMinute, a.cfg.Gemini.SafetyMargin)
	coordinator := retry.New(retry.Config{
		MaxAttempts: a.cfg.Retry.MaxAttempts,
		BaseDelay:   time.Duration(a.cfg.Retry.BaseDelay * float64(time.Second)),
	}, tracker, a.logger)

	frameSrc := frames.NewExtractor(a.executor, a.logger, videoPath, slidesDir,
		a.cfg.Slides.SceneThreshold, a.cfg.Slides.MinSlideDuration, a.cfg.Slides.MaxSlides*4)

	var ocrClient pipeline.OCRClient
	if a.cfg.OCR.Enabled {
		ocrClient = ocr.New(a.executor, a.logger, a.cfg.OCR.TesseractCmd, a.cfg.Paths.Temp)
	}

	summ := summarizer.New(a.cfg.Gemini.APIKeys, a.cfg.Gemini.Model, a.cfg.Gemini.UseVision, a.logger)

	p := pipeline.New(
		a.logger,
		source,
		frameSrc,
		slides.NewDeduper(a.logger, a.cfg.Slides.SceneThreshold),
		aligner.New(a.logger),
		ocrClient,
		summ,
		coordinator,
		pipeline.Options{
			Source:           name,
			Model:            a.cfg.Gemini.Model,
			MaxSlides:        a.cfg.Slides.MaxSlides,
			MinSlideDuration: a.cfg.Slides.MinSlideDuration,
			MaxConcurrent:    a.cfg.Gemini.MaxConcurrent,
			DryRun:           a.dryRun,
		},
	)

	report, runErr := p.Run(ctx)
	if report != nil && len(report.Slides) > 0 {
		writer, err := output.ForFormat(a.cfg.Output.Format, videoDir, a.logger)
		if err != nil {
			return err
		}
		if err := writer.Write(ctx, report); err != nil {
			return err
		}
	}
	return runErr
}
