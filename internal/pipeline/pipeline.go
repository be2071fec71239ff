// Package pipeline sequences a single video run: frame extraction,
// slide deduplication, transcript alignment, OCR and budget-gated
// summarization, ending in a per-slide report.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"video-extract/internal/frames"
	"video-extract/internal/logger"
	"video-extract/internal/retry"
	"video-extract/internal/slides"
	"video-extract/internal/transcript"
)

// State names the stage a run has reached. Transitions are strictly
// forward; StateFailed is terminal and reachable from any stage.
type State string

const (
	StateInit        State = "INIT"
	StateFramesReady State = "FRAMES_READY"
	StateDeduped     State = "DEDUPED"
	StateAligned     State = "ALIGNED"
	StateOCRDone     State = "OCR_DONE"
	StateSummarizing State = "SUMMARIZING"
	StateComplete    State = "COMPLETE"
	StateFailed      State = "FAILED"
)

// ErrAllSlidesFailed is returned when no slide produced a summary.
var ErrAllSlidesFailed = errors.New("no slide produced a summary")

// TranscriptSource yields the spoken-word segments for the video.
type TranscriptSource interface {
	Fetch(ctx context.Context) ([]transcript.Segment, error)
}

// FrameSource yields candidate slide frames with timestamps.
type FrameSource interface {
	Extract(ctx context.Context) ([]frames.Frame, error)
}

// OCRClient extracts on-slide text from a frame image.
type OCRClient interface {
	Recognize(ctx context.Context, imagePath string) (string, error)
}

// SlideSummarizer produces a structured summary for one slide and
// reports actual provider token usage.
type SlideSummarizer interface {
	Summarize(ctx context.Context, slide *slides.Slide) (*slides.Summary, int, error)
	EstimateTokens(slide *slides.Slide) int
}

// SlideDeduper collapses raw frames into distinct slides.
type SlideDeduper interface {
	Dedup(ctx context.Context, input []frames.Frame, maxSlides int, minDuration float64) ([]*slides.Slide, error)
}

// Report is the run's final record, one entry per slide in index order.
type Report struct {
	RunID       string          `json:"run_id"`
	Source      string          `json:"source"`
	Model       string          `json:"model"`
	GeneratedAt time.Time       `json:"generated_at"`
	State       State           `json:"state"`
	DryRun      bool            `json:"dry_run"`
	Slides      []*slides.Slide `json:"slides"`
}

// Options configure a single run.
type Options struct {
	Source           string
	Model            string
	MaxSlides        int
	MinSlideDuration float64
	MaxConcurrent    int
	DryRun           bool
}

// Pipeline drives one video through every stage. Each run owns its
// slide list and budget window; nothing is shared across runs.
type Pipeline struct {
	logger      logger.Logger
	transcripts TranscriptSource
	frames      FrameSource
	deduper     SlideDeduper
	aligner     Aligner
	ocr         OCRClient // nil disables OCR
	summarizer  SlideSummarizer
	coordinator *retry.Coordinator
	opts        Options

	state State
}

// Aligner attaches transcript segments to slide windows.
type Aligner interface {
	Align(ctx context.Context, deck []*slides.Slide, segments []transcript.Segment)
}

func New(
	log logger.Logger,
	transcripts TranscriptSource,
	frameSrc FrameSource,
	deduper SlideDeduper,
	align Aligner,
	ocr OCRClient,
	summ SlideSummarizer,
	coordinator *retry.Coordinator,
	opts Options,
) *Pipeline {
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 1
	}
	return &Pipeline{
		logger:      log,
		transcripts: transcripts,
		frames:      frameSrc,
		deduper:     deduper,
		aligner:     align,
		ocr:         ocr,
		summarizer:  summ,
		coordinator: coordinator,
		opts:        opts,
		state:       StateInit,
	}
}

// State returns the stage the last Run reached.
func (p *Pipeline) State() State { return p.state }

// Run executes the full pipeline. On cancellation mid-summarization it
// still returns a partial report covering slides that finished, with
// the context error alongside.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	report := &Report{
		RunID:       uuid.NewString(),
		Source:      p.opts.Source,
		Model:       p.opts.Model,
		GeneratedAt: time.Now(),
		DryRun:      p.opts.DryRun,
	}
	p.setState(ctx, StateInit)

	segments, err := p.transcripts.Fetch(ctx)
	if err != nil {
		return p.fail(ctx, report, fmt.Errorf("fetch transcript: %w", err))
	}
	p.logger.Info(ctx, "transcript fetched: %d segments", len(segments))

	rawFrames, err := p.frames.Extract(ctx)
	if err != nil {
		return p.fail(ctx, report, fmt.Errorf("extract frames: %w", err))
	}
	p.setState(ctx, StateFramesReady)

	deck, err := p.deduper.Dedup(ctx, rawFrames, p.opts.MaxSlides, p.opts.MinSlideDuration)
	if err != nil {
		return p.fail(ctx, report, fmt.Errorf("deduplicate slides: %w", err))
	}
	report.Slides = deck
	p.setState(ctx, StateDeduped)

	p.aligner.Align(ctx, deck, segments)
	p.setState(ctx, StateAligned)

	if p.ocr != nil {
		p.runOCR(ctx, deck)
		p.setState(ctx, StateOCRDone)
	}

	p.setState(ctx, StateSummarizing)

	if p.opts.DryRun {
		for _, slide := range deck {
			slide.Summary = dryRunSummary(slide)
		}
		p.setState(ctx, StateComplete)
		report.State = StateComplete
		return report, nil
	}

	successes := p.summarizeAll(ctx, deck)

	if err := ctx.Err(); err != nil {
		p.logger.Warn(ctx, "run cancelled, emitting partial output (%d slides summarized)", successes)
		p.state = StateFailed
		report.State = StateFailed
		return report, err
	}

	if successes == 0 {
		report.State = StateFailed
		p.state = StateFailed
		return report, ErrAllSlidesFailed
	}

	p.setState(ctx, StateComplete)
	report.State = StateComplete
	p.logger.Info(ctx, "run complete: %d/%d slides summarized", successes, len(deck))
	return report, nil
}

// runOCR enriches slides with on-slide text. OCR failures are soft;
// the slide just proceeds without text.
func (p *Pipeline) runOCR(ctx context.Context, deck []*slides.Slide) {
	for _, slide := range deck {
		if ctx.Err() != nil {
			return
		}
		text, err := p.ocr.Recognize(ctx, slide.ImagePath)
		if err != nil {
			p.logger.Warn(ctx, "ocr failed for slide %d: %v", slide.Index, err)
			continue
		}
		slide.OCRText = text
	}
}

// summarizeAll drives every slide through the budget-gated summarizer
// with a bounded worker pool and returns the number of successes.
// Slide order in the deck is never disturbed; workers write only to
// their own slide.
func (p *Pipeline) summarizeAll(ctx context.Context, deck []*slides.Slide) int {
	sem := newSemaphore(p.opts.MaxConcurrent)
	var wg sync.WaitGroup
	var mu sync.Mutex
	successes := 0

	for _, slide := range deck {
		if err := sem.acquire(ctx); err != nil {
			slide.FailureReason = "cancelled before summarization"
			continue
		}

		wg.Add(1)
		go func(sl *slides.Slide) {
			defer wg.Done()
			defer sem.release()

			estimated := p.summarizer.EstimateTokens(sl)
			summary, err := retry.Execute(ctx, p.coordinator, estimated,
				func(ctx context.Context) (*slides.Summary, int, error) {
					return p.summarizer.Summarize(ctx, sl)
				})
			if err != nil {
				p.logger.Error(ctx, "slide %d summarization failed: %v", sl.Index, err)
				sl.Summary = nil
				sl.FailureReason = err.Error()
				return
			}

			sl.Summary = summary
			mu.Lock()
			successes++
			mu.Unlock()
			p.logger.Info(ctx, "slide %d summarized", sl.Index)
		}(slide)
	}

	wg.Wait()
	return successes
}

func (p *Pipeline) setState(ctx context.Context, next State) {
	p.state = next
	p.logger.Debug(ctx, "pipeline state: %s", next)
}

func (p *Pipeline) fail(ctx context.Context, report *Report, err error) (*Report, error) {
	p.state = StateFailed
	report.State = StateFailed
	p.logger.Error(ctx, "run failed: %v", err)
	return report, err
}

func dryRunSummary(slide *slides.Slide) *slides.Summary {
	return &slides.Summary{
		Title: fmt.Sprintf("[DRY RUN] Slide %d", slide.Index+1),
		Body: fmt.Sprintf("[DRY RUN] This would be a summary of slide %d with %d words from transcript.",
			slide.Index+1, slide.WordCount()),
		KeyPoints: []string{
			"[DRY RUN] Key point 1",
			"[DRY RUN] Key point 2",
			"[DRY RUN] Key point 3",
		},
		Topics: []string{"topic1", "topic2", "topic3"},
	}
}
