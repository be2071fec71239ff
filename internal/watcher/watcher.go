package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"video-extract/internal/logger"
)

var videoExtensions = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".avi":  true,
	".mkv":  true,
	".webm": true,
	".m4v":  true,
	".flv":  true,
}

type implWatcher struct {
	watchDir      string
	handler       EventHandler
	logger        logger.Logger
	watcher       *fsnotify.Watcher
	maxConcurrent int
	semaphore     chan struct{}
	wg            sync.WaitGroup
}

// Start blocks, dispatching each new video file to the handler. Each
// run gets its own pipeline; the semaphore bounds concurrent runs.
func (w *implWatcher) Start(ctx context.Context) error {
	w.logger.Info(ctx, "watching %s for new videos (max concurrent: %d)", w.watchDir, w.maxConcurrent)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info(ctx, "waiting for in-flight runs to finish")
			w.wg.Wait()
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if event.Op&fsnotify.Create != fsnotify.Create {
				continue
			}
			if !isVideoFile(event.Name) {
				w.logger.Debug(ctx, "ignoring non-video file: %s", event.Name)
				continue
			}

			w.logger.Info(ctx, "new video detected: %s", event.Name)
			if err := waitUntilStable(ctx, event.Name); err != nil {
				w.logger.Warn(ctx, "skipping %s: %v", event.Name, err)
				continue
			}

			select {
			case w.semaphore <- struct{}{}:
				w.wg.Add(1)
				go func(videoPath string) {
					defer w.wg.Done()
					defer func() { <-w.semaphore }()

					if err := w.handler(ctx, videoPath); err != nil {
						w.logger.Error(ctx, "failed to process %s: %v", videoPath, err)
					}
				}(event.Name)
			case <-ctx.Done():
				w.logger.Info(ctx, "waiting for in-flight runs to finish")
				w.wg.Wait()
				return ctx.Err()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error(ctx, "watcher error: %v", err)
		}
	}
}

func (w *implWatcher) Stop() error {
	return w.watcher.Close()
}

// waitUntilStable polls the file size until two consecutive reads
// agree, so a video still being copied in is not picked up half-written.
func waitUntilStable(ctx context.Context, path string) error {
	var lastSize int64 = -1
	for i := 0; i < 20; i++ {
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("stat video: %w", err)
		}
		if info.Size() == lastSize {
			return nil
		}
		lastSize = info.Size()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(500 * time.Millisecond):
		}
	}
	return fmt.Errorf("file size never settled: %s", path)
}

func isVideoFile(path string) bool {
	return videoExtensions[strings.ToLower(filepath.Ext(path))]
}
