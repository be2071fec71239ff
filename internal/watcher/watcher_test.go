package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"video-extract/internal/logger"
)

func TestIsVideoFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/drop/lecture.mp4", true},
		{"/drop/LECTURE.MP4", true},
		{"/drop/talk.mkv", true},
		{"/drop/clip.webm", true},
		{"/drop/notes.txt", false},
		{"/drop/thumb.png", false},
		{"/drop/noext", false},
	}
	for _, tt := range tests {
		if got := isVideoFile(tt.path); got != tt.want {
			t.Errorf("isVideoFile(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestWaitUntilStable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "video.mp4")
	if err := os.WriteFile(path, []byte("complete file"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := waitUntilStable(context.Background(), path); err != nil {
		t.Errorf("waitUntilStable on settled file: %v", err)
	}

	if err := waitUntilStable(context.Background(), filepath.Join(t.TempDir(), "missing.mp4")); err == nil {
		t.Error("waitUntilStable on missing file should fail")
	}
}

func TestStartDrainsInFlightRunsOnCancel(t *testing.T) {
	if testing.Short() {
		t.Skip("relies on file-settle polling delays")
	}

	dir := t.TempDir()
	started := make(chan struct{})
	release := make(chan struct{})
	var finished atomic.Bool

	handler := func(ctx context.Context, videoPath string) error {
		close(started)
		<-release
		finished.Store(true)
		return nil
	}

	w, err := New(dir, handler, logger.New("error"), 1)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Start(ctx) }()

	writeVideo := func(name string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte("video bytes"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	writeVideo("first.mp4")
	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("handler never started")
	}

	// A second video fills the concurrency slot queue while the first
	// run is still in flight.
	writeVideo("second.mp4")
	time.Sleep(1200 * time.Millisecond)

	cancel()
	select {
	case err := <-errCh:
		t.Fatalf("Start returned %v before the in-flight run finished", err)
	case <-time.After(200 * time.Millisecond):
	}

	close(release)
	select {
	case err := <-errCh:
		if err != context.Canceled {
			t.Errorf("Start() error = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Start never returned after the run finished")
	}

	if !finished.Load() {
		t.Error("Start returned without draining the in-flight run")
	}
}

func TestNewRejectsMissingDir(t *testing.T) {
	handler := func(ctx context.Context, videoPath string) error { return nil }
	if _, err := New("/nonexistent/dir", handler, nil, 2); err == nil {
		t.Error("New on missing directory should fail")
	}
}
