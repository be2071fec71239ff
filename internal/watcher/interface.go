package watcher

import "context"

// Watcher monitors a drop directory for new video files.
type Watcher interface {
	Start(ctx context.Context) error
	Stop() error
}

// EventHandler processes one newly dropped video file.
type EventHandler func(ctx context.Context, videoPath string) error
